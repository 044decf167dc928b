package services

import (
	"context"
	"errors"
	"fmt"

	"gymadmin/internal/core"
)

// DefaultActivityLimit caps the activity list when no limit is requested.
const DefaultActivityLimit = 100

// ListActivity returns the newest entries first. limit <= 0 selects
// DefaultActivityLimit.
func (s *GymService) ListActivity(ctx context.Context, limit int) ([]core.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	entries, err := s.store.ListActivity(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}

func (s *GymService) ListSettings(ctx context.Context) ([]core.Setting, error) {
	settings, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

func (s *GymService) GetSetting(ctx context.Context, key string) (core.Setting, error) {
	if err := core.ValidateSettingKey(key); err != nil {
		return core.Setting{}, err
	}
	st, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return core.Setting{}, fmt.Errorf("get setting: %w", err)
	}
	return st, nil
}

// UpdateSetting stores a value under key, creating the key when it does not
// exist yet. Settings changes are not activity-logged.
func (s *GymService) UpdateSetting(ctx context.Context, key string, upd core.SettingUpdate) (core.Setting, error) {
	if err := core.ValidateSettingKey(key); err != nil {
		return core.Setting{}, err
	}
	if err := upd.Validate(); err != nil {
		return core.Setting{}, err
	}

	st, err := s.store.PutSetting(ctx, core.Setting{Key: key, Value: *upd.Value, UpdatedAt: s.clock().UTC()})
	if err != nil {
		return core.Setting{}, fmt.Errorf("put setting: %w", err)
	}
	s.touch()
	return st, nil
}

// EnsureSettings inserts each default whose key is missing. Existing values
// are never overwritten. It returns how many keys were inserted.
func (s *GymService) EnsureSettings(ctx context.Context, defaults map[string]string) (int, error) {
	inserted := 0
	for key, value := range defaults {
		_, err := s.store.GetSetting(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, core.ErrNotFound) {
			return inserted, fmt.Errorf("get setting %s: %w", key, err)
		}
		if _, err := s.store.PutSetting(ctx, core.Setting{Key: key, Value: value, UpdatedAt: s.clock().UTC()}); err != nil {
			return inserted, fmt.Errorf("put setting %s: %w", key, err)
		}
		inserted++
	}
	return inserted, nil
}
