package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gymadmin/internal/core"
	"gymadmin/internal/log"
	"gymadmin/internal/services"
	"gymadmin/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (c *countingExpirer) ExpireLapsed(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	exp := &countingExpirer{}
	w := NewExpiryWorker(exp, 10*time.Millisecond, log.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return exp.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRunKeepsGoingAfterFailure(t *testing.T) {
	exp := &countingExpirer{err: errors.New("store down")}
	w := NewExpiryWorker(exp, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return exp.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRunOnceExpiresLapsedSubscriptions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	svc := services.NewGymService(storage.NewMemoryStore(),
		services.WithClock(func() time.Time { return now }),
		services.WithLocation(time.UTC),
		services.WithLogger(log.Nop()))

	m, err := svc.CreateMember(ctx, core.MemberInput{FullName: "Jane Doe", Email: "jane@example.com", Phone: "1"})
	require.NoError(t, err)
	p, err := svc.CreatePlan(ctx, core.PlanInput{Name: "Monthly", Duration: 30, Price: core.Money{Cents: 4999}})
	require.NoError(t, err)

	lapsed := core.NewDate(2025, 6, 14)
	onEndDate := core.NewDate(2025, 6, 15)
	for _, end := range []core.Date{lapsed, onEndDate} {
		_, err := svc.CreateSubscription(ctx, core.SubscriptionInput{
			MemberID: m.ID, PlanID: p.ID, StartDate: core.NewDate(2025, 5, 1), EndDate: &end,
		})
		require.NoError(t, err)
	}

	n, err := NewExpiryWorker(svc, time.Hour, log.Nop()).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	subs, err := svc.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.StatusExpired, subs[0].Status)
	assert.Equal(t, core.StatusActive, subs[1].Status)
}
