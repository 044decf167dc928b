// Package seed loads start-up data: default settings and the sample
// membership plans.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gymadmin/internal/core"
	"gymadmin/internal/log"
	"gymadmin/internal/services"
)

//go:embed default.yaml
var defaultSeed []byte

type Data struct {
	Settings map[string]string `yaml:"settings"`
	Plans    []Plan            `yaml:"plans"`
}

type Plan struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Duration    int    `yaml:"duration"`
	Price       string `yaml:"price"`
	Active      *bool  `yaml:"active"`
}

// Result counts what Apply inserted.
type Result struct {
	Settings int
	Plans    int
}

// Default returns the embedded seed.
func Default() (Data, error) {
	return Parse(defaultSeed)
}

// Load reads the seed at path, or the embedded one when path is empty.
func Load(path string) (Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes seed YAML. Unknown keys are rejected so typos surface.
func Parse(raw []byte) (Data, error) {
	var d Data
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Data{}, fmt.Errorf("decode seed: %w", err)
	}
	for i, p := range d.Plans {
		if _, err := p.input(); err != nil {
			return Data{}, fmt.Errorf("plan %d (%s): %w", i, p.Name, err)
		}
	}
	return d, nil
}

func (p Plan) input() (core.PlanInput, error) {
	price, err := core.ParseMoney(p.Price)
	if err != nil {
		return core.PlanInput{}, err
	}
	in := core.PlanInput{
		Name:     p.Name,
		Duration: p.Duration,
		Price:    price,
		Active:   p.Active,
	}
	if p.Description != "" {
		desc := p.Description
		in.Description = &desc
	}
	if err := in.Plan(time.Time{}).Validate(); err != nil {
		return core.PlanInput{}, err
	}
	return in, nil
}

// Apply inserts missing settings, and the plans when the plan table is
// empty. Seeded plans go straight to the store and are not activity-logged.
func Apply(ctx context.Context, svc *services.GymService, d Data, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Nop()
	}
	var res Result

	n, err := svc.EnsureSettings(ctx, d.Settings)
	if err != nil {
		return res, fmt.Errorf("seed settings: %w", err)
	}
	res.Settings = n

	store := svc.Store()
	existing, err := store.ListPlans(ctx)
	if err != nil {
		return res, fmt.Errorf("list plans: %w", err)
	}
	if len(existing) == 0 {
		now := svc.Now()
		for _, p := range d.Plans {
			in, err := p.input()
			if err != nil {
				return res, fmt.Errorf("plan %s: %w", p.Name, err)
			}
			if _, err := store.CreatePlan(ctx, in.Plan(now)); err != nil {
				return res, fmt.Errorf("create plan %s: %w", p.Name, err)
			}
			res.Plans++
		}
	}

	logger.InfoContext(ctx, "Seed applied",
		log.FieldOperation, log.OpSeed,
		"settings_added", res.Settings,
		"plans_added", res.Plans)
	return res, nil
}
