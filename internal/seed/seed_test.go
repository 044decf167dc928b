package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymadmin/internal/core"
	"gymadmin/internal/log"
	"gymadmin/internal/services"
	"gymadmin/internal/storage"
)

func newService() *services.GymService {
	return services.NewGymService(storage.NewMemoryStore(),
		services.WithClock(func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }),
		services.WithLocation(time.UTC),
		services.WithLogger(log.Nop()))
}

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "TRY", d.Settings["currency"])
	assert.Equal(t, "6:00 AM - 10:00 PM", d.Settings[core.SettingBusinessHours])
	require.Len(t, d.Plans, 4)
	assert.Equal(t, "Standard Monthly", d.Plans[0].Name)
	assert.Equal(t, 365, d.Plans[2].Duration)
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "setings:\n  a: b\n"},
		{"bad price", "plans:\n  - name: X\n    duration: 30\n    price: free\n"},
		{"zero duration", "plans:\n  - name: X\n    duration: 0\n    price: \"1.00\"\n"},
		{"not yaml", "plans: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  currency: EUR\n"), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "EUR", d.Settings["currency"])
	assert.Empty(t, d.Plans)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	d, err := Default()
	require.NoError(t, err)

	res, err := Apply(ctx, svc, d, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Settings: 3, Plans: 4}, res)

	res, err = Apply(ctx, svc, d, log.Nop())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	plans, err := svc.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 4)
	assert.Equal(t, "89.99", plans[1].Price.String())
	assert.True(t, plans[1].Active)

	activity, err := svc.ListActivity(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, activity)
}

func TestApplyKeepsExistingValues(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	eur := "EUR"
	_, err := svc.UpdateSetting(ctx, "currency", core.SettingUpdate{Value: &eur})
	require.NoError(t, err)

	d, err := Default()
	require.NoError(t, err)
	res, err := Apply(ctx, svc, d, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Settings)

	st, err := svc.GetSetting(ctx, "currency")
	require.NoError(t, err)
	assert.Equal(t, "EUR", st.Value)

	st, err = svc.GetSetting(ctx, core.SettingBusinessHours)
	require.NoError(t, err)
	assert.Equal(t, "6:00 AM - 10:00 PM", st.Value)
}
