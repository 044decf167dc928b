package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gymadmin/internal/core"
)

// table is an id-keyed row set with its own sequence.
type table[T any] struct {
	rows map[int64]T
	next int64
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[int64]T)}
}

func (t *table[T]) insert(v T, setID func(*T, int64)) T {
	t.next++
	setID(&v, t.next)
	t.rows[t.next] = v
	return v
}

func (t *table[T]) get(id int64) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) replace(id int64, v T) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = v
	return true
}

func (t *table[T]) list() []T {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

// MemoryStore keeps every table in process memory. It is the default backend
// for development and tests.
type MemoryStore struct {
	mu            sync.Mutex
	members       table[core.Member]
	plans         table[core.MembershipPlan]
	subscriptions table[core.Subscription]
	payments      table[core.Payment]
	attendance    table[core.AttendanceRecord]
	equipment     table[core.Equipment]
	settings      table[core.Setting]
	settingKeys   map[string]int64
	activity      table[core.ActivityLogEntry]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members:       newTable[core.Member](),
		plans:         newTable[core.MembershipPlan](),
		subscriptions: newTable[core.Subscription](),
		payments:      newTable[core.Payment](),
		attendance:    newTable[core.AttendanceRecord](),
		equipment:     newTable[core.Equipment](),
		settings:      newTable[core.Setting](),
		settingKeys:   make(map[string]int64),
		activity:      newTable[core.ActivityLogEntry](),
	}
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, core.ErrNotFound)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetMember(_ context.Context, id int64) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members.get(id)
	if !ok {
		return core.Member{}, notFound("member", id)
	}
	return m, nil
}

func (s *MemoryStore) ListMembers(context.Context) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members.list(), nil
}

func (s *MemoryStore) CreateMember(_ context.Context, m core.Member) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members.insert(m, func(v *core.Member, id int64) { v.ID = id }), nil
}

func (s *MemoryStore) UpdateMember(_ context.Context, m core.Member) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.members.replace(m.ID, m) {
		return core.Member{}, notFound("member", m.ID)
	}
	return m, nil
}

func (s *MemoryStore) GetPlan(_ context.Context, id int64) (core.MembershipPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans.get(id)
	if !ok {
		return core.MembershipPlan{}, notFound("plan", id)
	}
	return p, nil
}

func (s *MemoryStore) ListPlans(context.Context) ([]core.MembershipPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans.list(), nil
}

func (s *MemoryStore) CreatePlan(_ context.Context, p core.MembershipPlan) (core.MembershipPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans.insert(p, func(v *core.MembershipPlan, id int64) { v.ID = id }), nil
}

func (s *MemoryStore) UpdatePlan(_ context.Context, p core.MembershipPlan) (core.MembershipPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.plans.replace(p.ID, p) {
		return core.MembershipPlan{}, notFound("plan", p.ID)
	}
	return p, nil
}

func (s *MemoryStore) GetSubscription(_ context.Context, id int64) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions.get(id)
	if !ok {
		return core.Subscription{}, notFound("subscription", id)
	}
	return sub, nil
}

func (s *MemoryStore) ListSubscriptions(context.Context) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions.list(), nil
}

func (s *MemoryStore) CreateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions.insert(sub, func(v *core.Subscription, id int64) { v.ID = id }), nil
}

func (s *MemoryStore) UpdateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.subscriptions.replace(sub.ID, sub) {
		return core.Subscription{}, notFound("subscription", sub.ID)
	}
	return sub, nil
}

func (s *MemoryStore) GetPayment(_ context.Context, id int64) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments.get(id)
	if !ok {
		return core.Payment{}, notFound("payment", id)
	}
	return p, nil
}

func (s *MemoryStore) ListPayments(context.Context) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments.list(), nil
}

func (s *MemoryStore) CreatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments.insert(p, func(v *core.Payment, id int64) { v.ID = id }), nil
}

func (s *MemoryStore) GetAttendance(_ context.Context, id int64) (core.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendance.get(id)
	if !ok {
		return core.AttendanceRecord{}, notFound("attendance", id)
	}
	return a, nil
}

func (s *MemoryStore) ListAttendance(context.Context) ([]core.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attendance.list(), nil
}

func (s *MemoryStore) CreateAttendance(_ context.Context, a core.AttendanceRecord) (core.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attendance.insert(a, func(v *core.AttendanceRecord, id int64) { v.ID = id }), nil
}

func (s *MemoryStore) UpdateAttendance(_ context.Context, a core.AttendanceRecord) (core.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attendance.replace(a.ID, a) {
		return core.AttendanceRecord{}, notFound("attendance", a.ID)
	}
	return a, nil
}

func (s *MemoryStore) SetCheckOut(_ context.Context, id int64, t time.Time) (core.AttendanceRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendance.get(id)
	if !ok {
		return core.AttendanceRecord{}, false, notFound("attendance", id)
	}
	first := a.CheckOutTime == nil
	a.CheckOutTime = &t
	s.attendance.replace(id, a)
	return a, first, nil
}

func (s *MemoryStore) GetEquipment(_ context.Context, id int64) (core.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.equipment.get(id)
	if !ok {
		return core.Equipment{}, notFound("equipment", id)
	}
	return e, nil
}

func (s *MemoryStore) ListEquipment(context.Context) ([]core.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment.list(), nil
}

func (s *MemoryStore) CreateEquipment(_ context.Context, e core.Equipment) (core.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment.insert(e, func(v *core.Equipment, id int64) { v.ID = id }), nil
}

func (s *MemoryStore) UpdateEquipment(_ context.Context, e core.Equipment) (core.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.equipment.replace(e.ID, e) {
		return core.Equipment{}, notFound("equipment", e.ID)
	}
	return e, nil
}

func (s *MemoryStore) GetSetting(_ context.Context, key string) (core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.settingKeys[key]
	if !ok {
		return core.Setting{}, fmt.Errorf("setting %q: %w", key, core.ErrNotFound)
	}
	st, _ := s.settings.get(id)
	return st, nil
}

func (s *MemoryStore) ListSettings(context.Context) ([]core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.list(), nil
}

func (s *MemoryStore) PutSetting(_ context.Context, st core.Setting) (core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.settingKeys[st.Key]; ok {
		st.ID = id
		s.settings.replace(id, st)
		return st, nil
	}
	st = s.settings.insert(st, func(v *core.Setting, id int64) { v.ID = id })
	s.settingKeys[st.Key] = st.ID
	return st, nil
}

func (s *MemoryStore) AppendActivity(_ context.Context, e core.ActivityLogEntry) (core.ActivityLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity.insert(e, func(v *core.ActivityLogEntry, id int64) { v.ID = id }), nil
}

func (s *MemoryStore) ListActivity(_ context.Context, limit int) ([]core.ActivityLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.activity.list()
	return newestFirst(rows, limit), nil
}

// newestFirst orders entries by timestamp descending, then id descending,
// and truncates to limit when positive.
func newestFirst(rows []core.ActivityLogEntry, limit int) []core.ActivityLogEntry {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.After(rows[j].Timestamp)
		}
		return rows[i].ID > rows[j].ID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
