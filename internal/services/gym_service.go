// Package services holds the domain operations behind the HTTP API. Every
// mutation is written to the store first; the activity-log append and the
// event publish that follow are best effort and never fail the request.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gymadmin/internal/core"
	"gymadmin/internal/events"
	"gymadmin/internal/log"
	"gymadmin/internal/observability"
	"gymadmin/internal/storage"
)

// DefaultCurrency is used in payment descriptions when the currency setting
// is missing.
const DefaultCurrency = "TRY"

// GymService orchestrates record writes, the activity trail and event
// publishing.
type GymService struct {
	store     storage.Store
	publisher events.Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
	clock     func() time.Time
	loc       *time.Location
	revision  atomic.Uint64
}

type Option func(*GymService)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *GymService) { s.clock = clock }
}

// WithLocation sets the gym's local time zone used for "today".
func WithLocation(loc *time.Location) Option {
	return func(s *GymService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *GymService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *GymService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewGymService(store storage.Store, opts ...Option) *GymService {
	s := &GymService{
		store:     store,
		publisher: events.Nop{},
		logger:    log.New(log.DefaultConfig()),
		clock:     time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentService)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Now returns the current time in the gym's location.
func (s *GymService) Now() time.Time {
	return s.clock().In(s.loc)
}

// Today returns the gym's current calendar date.
func (s *GymService) Today() core.Date {
	return core.DateOf(s.Now())
}

func (s *GymService) Location() *time.Location {
	return s.loc
}

// Store exposes the underlying store for read-only consumers such as the
// report loader.
func (s *GymService) Store() storage.Store {
	return s.store
}

// Revision increases after every successful write. Caches of derived data
// key on it.
func (s *GymService) Revision() uint64 {
	return s.revision.Load()
}

func (s *GymService) touch() {
	s.revision.Add(1)
}

// Ping checks the store.
func (s *GymService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// record appends one activity entry and publishes it. Failures are logged
// and swallowed.
func (s *GymService) record(ctx context.Context, action, description string, entityID int64, entityType string) {
	entry := core.NewActivity(action, description, entityID, entityType, s.clock())

	saved, err := s.store.AppendActivity(ctx, entry)
	observability.RecordActivityAppend(action, err)
	if err != nil {
		s.events.LogError(ctx, "Failed to append activity log", err, log.ComponentService, log.OpAppend,
			log.NewFields().WithAction(action).WithEntity(entityType, entityID))
		return
	}
	s.events.LogActivity(ctx, action, entityType, entityID)

	err = s.publisher.Publish(ctx, saved)
	observability.RecordEventPublish(err)
	if err != nil {
		s.events.LogError(ctx, "Failed to publish activity event", err, log.ComponentService, log.OpPublish,
			log.NewFields().WithAction(action).WithEntity(entityType, entityID))
	}
}

// memberName resolves a member for a description; lookup failures render as
// core.UnknownName.
func (s *GymService) memberName(ctx context.Context, id int64) string {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return core.UnknownName
	}
	return m.DisplayName()
}

func (s *GymService) planName(ctx context.Context, id int64) string {
	p, err := s.store.GetPlan(ctx, id)
	if err != nil {
		return core.UnknownName
	}
	return p.DisplayName()
}

// requireMember returns the member or a wrapped core.ErrNotFound.
func (s *GymService) requireMember(ctx context.Context, id int64) (core.Member, error) {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return core.Member{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// Close releases the publisher and the store.
func (s *GymService) Close() error {
	var errs []error
	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("publisher: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}
	return errors.Join(errs...)
}
