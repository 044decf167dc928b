//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresStoreConformance(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("gym"),
		postgrescontainer.WithUsername("gym"),
		postgrescontainer.WithPassword("gym"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	runStoreConformance(t, func(t *testing.T) Store {
		s := waitForPostgresStore(t, ctx, connStr)
		_, err := s.DB().ExecContext(ctx, `TRUNCATE members, membership_plans, subscriptions, payments,
			attendance, equipment, settings, activity_logs RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

// waitForPostgresStore retries until the container accepts connections.
func waitForPostgresStore(t *testing.T, ctx context.Context, connStr string) *SQLStore {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for {
		s, err := NewPostgresStore(ctx, connStr)
		if err == nil {
			return s
		}
		if time.Now().After(deadline) {
			require.NoError(t, err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}
