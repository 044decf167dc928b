package core

import (
	"strings"
	"time"
)

// MembershipPlan is a purchasable plan; Duration is in days.
type MembershipPlan struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Duration    int       `json:"duration"`
	Price       Money     `json:"price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PlanInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Duration    int     `json:"duration"`
	Price       Money   `json:"price"`
	Active      *bool   `json:"active"`
}

func (in PlanInput) Plan(now time.Time) MembershipPlan {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return MembershipPlan{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Duration:    in.Duration,
		Price:       in.Price,
		Active:      active,
		CreatedAt:   now.UTC(),
	}
}

type PlanPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration"`
	Price       *Money  `json:"price"`
	Active      *bool   `json:"active"`
}

func (p PlanPatch) Apply(pl MembershipPlan) MembershipPlan {
	if p.Name != nil {
		pl.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		pl.Description = p.Description
	}
	if p.Duration != nil {
		pl.Duration = *p.Duration
	}
	if p.Price != nil {
		pl.Price = *p.Price
	}
	if p.Active != nil {
		pl.Active = *p.Active
	}
	return pl
}

func (pl MembershipPlan) Validate() error {
	var v validator
	v.required("name", pl.Name)
	v.maxLen("name", pl.Name, 200)
	v.check(pl.Duration > 0, "duration", "must be a positive number of days")
	v.check(pl.Price.Validate() == nil, "price", "must be a positive amount")
	return v.err()
}

// DisplayName returns the plan's name or UnknownName.
func (pl *MembershipPlan) DisplayName() string {
	if pl == nil || strings.TrimSpace(pl.Name) == "" {
		return UnknownName
	}
	return pl.Name
}
