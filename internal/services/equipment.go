package services

import (
	"context"
	"fmt"

	"gymadmin/internal/core"
)

func (s *GymService) ListEquipment(ctx context.Context) ([]core.Equipment, error) {
	items, err := s.store.ListEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

func (s *GymService) GetEquipment(ctx context.Context, id int64) (core.Equipment, error) {
	e, err := s.store.GetEquipment(ctx, id)
	if err != nil {
		return core.Equipment{}, fmt.Errorf("get equipment: %w", err)
	}
	return e, nil
}

func (s *GymService) CreateEquipment(ctx context.Context, in core.EquipmentInput) (core.Equipment, error) {
	e := in.Equipment(s.clock())
	if err := e.Validate(); err != nil {
		return core.Equipment{}, err
	}

	created, err := s.store.CreateEquipment(ctx, e)
	if err != nil {
		return core.Equipment{}, fmt.Errorf("create equipment: %w", err)
	}
	s.touch()

	s.record(ctx, core.ActionEquipmentAdded, "New equipment added: "+created.Name, created.ID, core.EntityEquipment)
	return created, nil
}

func (s *GymService) UpdateEquipment(ctx context.Context, id int64, patch core.EquipmentPatch) (core.Equipment, error) {
	current, err := s.GetEquipment(ctx, id)
	if err != nil {
		return core.Equipment{}, err
	}

	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.Equipment{}, err
	}

	updated, err := s.store.UpdateEquipment(ctx, next)
	if err != nil {
		return core.Equipment{}, fmt.Errorf("update equipment: %w", err)
	}
	s.touch()

	s.record(ctx, core.ActionEquipmentUpdated, "Equipment updated: "+updated.Name, updated.ID, core.EntityEquipment)
	return updated, nil
}
