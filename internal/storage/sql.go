package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gymadmin/internal/core"
)

// Dialect selects placeholder syntax and migrations.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// timestampLayout is fixed-width so that TEXT ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// rebind rewrites ? placeholders into $n for postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// SQLStore implements Store over database/sql. The same queries run on
// SQLite and Postgres; dates, timestamps and money use one encoding on both.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database. Migrations must already be applied.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for tooling.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func queryOne[T any](ctx context.Context, s *SQLStore, entity string, id any, query string, scan func(rowScanner) (T, error), args ...any) (T, error) {
	v, err := scan(s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s %v: %w", entity, id, core.ErrNotFound)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s: %w", entity, err)
	}
	return v, nil
}

func queryAll[T any](ctx context.Context, s *SQLStore, entity string, query string, scan func(rowScanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	return out, nil
}

func (s *SQLStore) insert(ctx context.Context, entity, query string, args ...any) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert %s: %w", entity, err)
	}
	return id, nil
}

func (s *SQLStore) update(ctx context.Context, entity string, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, core.ErrNotFound)
	}
	return nil
}

// Members

const memberColumns = `id, full_name, email, phone, address, date_of_birth, gender,
	emergency_contact, emergency_phone, notes, active, created_at`

func scanMember(rs rowScanner) (core.Member, error) {
	var (
		m                                                  core.Member
		address, dob, gender, emContact, emPhone, notes, c sql.NullString
	)
	if err := rs.Scan(&m.ID, &m.FullName, &m.Email, &m.Phone, &address, &dob, &gender,
		&emContact, &emPhone, &notes, &m.Active, &c); err != nil {
		return m, err
	}
	var err error
	m.Address = fromNullString(address)
	m.Gender = fromNullString(gender)
	m.EmergencyContact = fromNullString(emContact)
	m.EmergencyPhone = fromNullString(emPhone)
	m.Notes = fromNullString(notes)
	if m.DateOfBirth, err = fromNullDate(dob); err != nil {
		return m, err
	}
	if m.CreatedAt, err = parseTimestamp(c.String); err != nil {
		return m, err
	}
	return m, nil
}

func (s *SQLStore) GetMember(ctx context.Context, id int64) (core.Member, error) {
	return queryOne(ctx, s, "member", id, `SELECT `+memberColumns+` FROM members WHERE id = ?`, scanMember, id)
}

func (s *SQLStore) ListMembers(ctx context.Context) ([]core.Member, error) {
	return queryAll(ctx, s, "members", `SELECT `+memberColumns+` FROM members ORDER BY id`, scanMember)
}

func (s *SQLStore) CreateMember(ctx context.Context, m core.Member) (core.Member, error) {
	id, err := s.insert(ctx, "member", `INSERT INTO members (full_name, email, phone, address, date_of_birth, gender,
		emergency_contact, emergency_phone, notes, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		m.FullName, m.Email, m.Phone, toNullString(m.Address), toNullDate(m.DateOfBirth), toNullString(m.Gender),
		toNullString(m.EmergencyContact), toNullString(m.EmergencyPhone), toNullString(m.Notes), m.Active,
		formatTimestamp(m.CreatedAt))
	if err != nil {
		return core.Member{}, err
	}
	m.ID = id
	return m, nil
}

func (s *SQLStore) UpdateMember(ctx context.Context, m core.Member) (core.Member, error) {
	err := s.update(ctx, "member", m.ID, `UPDATE members SET full_name = ?, email = ?, phone = ?, address = ?,
		date_of_birth = ?, gender = ?, emergency_contact = ?, emergency_phone = ?, notes = ?, active = ?
		WHERE id = ?`,
		m.FullName, m.Email, m.Phone, toNullString(m.Address), toNullDate(m.DateOfBirth), toNullString(m.Gender),
		toNullString(m.EmergencyContact), toNullString(m.EmergencyPhone), toNullString(m.Notes), m.Active, m.ID)
	if err != nil {
		return core.Member{}, err
	}
	return m, nil
}

// Plans

const planColumns = `id, name, description, duration_days, price_cents, active, created_at`

func scanPlan(rs rowScanner) (core.MembershipPlan, error) {
	var (
		p       core.MembershipPlan
		desc, c sql.NullString
	)
	if err := rs.Scan(&p.ID, &p.Name, &desc, &p.Duration, &p.Price.Cents, &p.Active, &c); err != nil {
		return p, err
	}
	p.Description = fromNullString(desc)
	var err error
	if p.CreatedAt, err = parseTimestamp(c.String); err != nil {
		return p, err
	}
	return p, nil
}

func (s *SQLStore) GetPlan(ctx context.Context, id int64) (core.MembershipPlan, error) {
	return queryOne(ctx, s, "plan", id, `SELECT `+planColumns+` FROM membership_plans WHERE id = ?`, scanPlan, id)
}

func (s *SQLStore) ListPlans(ctx context.Context) ([]core.MembershipPlan, error) {
	return queryAll(ctx, s, "plans", `SELECT `+planColumns+` FROM membership_plans ORDER BY id`, scanPlan)
}

func (s *SQLStore) CreatePlan(ctx context.Context, p core.MembershipPlan) (core.MembershipPlan, error) {
	id, err := s.insert(ctx, "plan", `INSERT INTO membership_plans (name, description, duration_days, price_cents, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		p.Name, toNullString(p.Description), p.Duration, p.Price.Cents, p.Active, formatTimestamp(p.CreatedAt))
	if err != nil {
		return core.MembershipPlan{}, err
	}
	p.ID = id
	return p, nil
}

func (s *SQLStore) UpdatePlan(ctx context.Context, p core.MembershipPlan) (core.MembershipPlan, error) {
	err := s.update(ctx, "plan", p.ID, `UPDATE membership_plans SET name = ?, description = ?, duration_days = ?,
		price_cents = ?, active = ? WHERE id = ?`,
		p.Name, toNullString(p.Description), p.Duration, p.Price.Cents, p.Active, p.ID)
	if err != nil {
		return core.MembershipPlan{}, err
	}
	return p, nil
}

// Subscriptions

const subscriptionColumns = `id, member_id, plan_id, start_date, end_date, status, created_at`

func scanSubscription(rs rowScanner) (core.Subscription, error) {
	var (
		sub           core.Subscription
		start, end, c string
	)
	if err := rs.Scan(&sub.ID, &sub.MemberID, &sub.PlanID, &start, &end, &sub.Status, &c); err != nil {
		return sub, err
	}
	var err error
	if sub.StartDate, err = core.ParseDate(start); err != nil {
		return sub, err
	}
	if sub.EndDate, err = core.ParseDate(end); err != nil {
		return sub, err
	}
	if sub.CreatedAt, err = parseTimestamp(c); err != nil {
		return sub, err
	}
	return sub, nil
}

func (s *SQLStore) GetSubscription(ctx context.Context, id int64) (core.Subscription, error) {
	return queryOne(ctx, s, "subscription", id, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, scanSubscription, id)
}

func (s *SQLStore) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	return queryAll(ctx, s, "subscriptions", `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY id`, scanSubscription)
}

func (s *SQLStore) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	id, err := s.insert(ctx, "subscription", `INSERT INTO subscriptions (member_id, plan_id, start_date, end_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		sub.MemberID, sub.PlanID, sub.StartDate.String(), sub.EndDate.String(), sub.Status, formatTimestamp(sub.CreatedAt))
	if err != nil {
		return core.Subscription{}, err
	}
	sub.ID = id
	return sub, nil
}

func (s *SQLStore) UpdateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	err := s.update(ctx, "subscription", sub.ID, `UPDATE subscriptions SET member_id = ?, plan_id = ?, start_date = ?,
		end_date = ?, status = ? WHERE id = ?`,
		sub.MemberID, sub.PlanID, sub.StartDate.String(), sub.EndDate.String(), sub.Status, sub.ID)
	if err != nil {
		return core.Subscription{}, err
	}
	return sub, nil
}

// Payments

const paymentColumns = `id, member_id, subscription_id, amount_cents, payment_date, payment_method, notes, created_at`

func scanPayment(rs rowScanner) (core.Payment, error) {
	var (
		p       core.Payment
		subID   sql.NullInt64
		date, c string
		notes   sql.NullString
	)
	if err := rs.Scan(&p.ID, &p.MemberID, &subID, &p.Amount.Cents, &date, &p.PaymentMethod, &notes, &c); err != nil {
		return p, err
	}
	p.SubscriptionID = fromNullInt64(subID)
	p.Notes = fromNullString(notes)
	var err error
	if p.PaymentDate, err = core.ParseDate(date); err != nil {
		return p, err
	}
	if p.CreatedAt, err = parseTimestamp(c); err != nil {
		return p, err
	}
	return p, nil
}

func (s *SQLStore) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	return queryOne(ctx, s, "payment", id, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, scanPayment, id)
}

func (s *SQLStore) ListPayments(ctx context.Context) ([]core.Payment, error) {
	return queryAll(ctx, s, "payments", `SELECT `+paymentColumns+` FROM payments ORDER BY id`, scanPayment)
}

func (s *SQLStore) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	id, err := s.insert(ctx, "payment", `INSERT INTO payments (member_id, subscription_id, amount_cents, payment_date,
		payment_method, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		p.MemberID, toNullInt64(p.SubscriptionID), p.Amount.Cents, p.PaymentDate.String(), p.PaymentMethod,
		toNullString(p.Notes), formatTimestamp(p.CreatedAt))
	if err != nil {
		return core.Payment{}, err
	}
	p.ID = id
	return p, nil
}

// Attendance

const attendanceColumns = `id, member_id, check_in_time, check_out_time, created_at`

func scanAttendance(rs rowScanner) (core.AttendanceRecord, error) {
	var (
		a     core.AttendanceRecord
		in, c string
		out   sql.NullString
	)
	if err := rs.Scan(&a.ID, &a.MemberID, &in, &out, &c); err != nil {
		return a, err
	}
	var err error
	if a.CheckInTime, err = parseTimestamp(in); err != nil {
		return a, err
	}
	if out.Valid {
		t, err := parseTimestamp(out.String)
		if err != nil {
			return a, err
		}
		a.CheckOutTime = &t
	}
	if a.CreatedAt, err = parseTimestamp(c); err != nil {
		return a, err
	}
	return a, nil
}

func (s *SQLStore) GetAttendance(ctx context.Context, id int64) (core.AttendanceRecord, error) {
	return queryOne(ctx, s, "attendance", id, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, scanAttendance, id)
}

func (s *SQLStore) ListAttendance(ctx context.Context) ([]core.AttendanceRecord, error) {
	return queryAll(ctx, s, "attendance", `SELECT `+attendanceColumns+` FROM attendance ORDER BY id`, scanAttendance)
}

func (s *SQLStore) CreateAttendance(ctx context.Context, a core.AttendanceRecord) (core.AttendanceRecord, error) {
	id, err := s.insert(ctx, "attendance", `INSERT INTO attendance (member_id, check_in_time, check_out_time, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`,
		a.MemberID, formatTimestamp(a.CheckInTime), toNullTimestamp(a.CheckOutTime), formatTimestamp(a.CreatedAt))
	if err != nil {
		return core.AttendanceRecord{}, err
	}
	a.ID = id
	return a, nil
}

func (s *SQLStore) UpdateAttendance(ctx context.Context, a core.AttendanceRecord) (core.AttendanceRecord, error) {
	err := s.update(ctx, "attendance", a.ID, `UPDATE attendance SET member_id = ?, check_in_time = ?, check_out_time = ?
		WHERE id = ?`,
		a.MemberID, formatTimestamp(a.CheckInTime), toNullTimestamp(a.CheckOutTime), a.ID)
	if err != nil {
		return core.AttendanceRecord{}, err
	}
	return a, nil
}

// SetCheckOut claims the first check-out with a conditional update, then
// falls back to a plain update when the record was already checked out.
func (s *SQLStore) SetCheckOut(ctx context.Context, id int64, t time.Time) (core.AttendanceRecord, bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`UPDATE attendance SET check_out_time = ?
		WHERE id = ? AND check_out_time IS NULL`), formatTimestamp(t), id)
	if err != nil {
		return core.AttendanceRecord{}, false, fmt.Errorf("update attendance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.AttendanceRecord{}, false, fmt.Errorf("update attendance: %w", err)
	}
	first := n == 1
	if !first {
		err := s.update(ctx, "attendance", id, `UPDATE attendance SET check_out_time = ? WHERE id = ?`, formatTimestamp(t), id)
		if err != nil {
			return core.AttendanceRecord{}, false, err
		}
	}
	rec, err := s.GetAttendance(ctx, id)
	if err != nil {
		return core.AttendanceRecord{}, false, err
	}
	return rec, first, nil
}

// Equipment

const equipmentColumns = `id, name, category, purchase_date, purchase_price_cents, maintenance_date, status, notes, created_at`

func scanEquipment(rs rowScanner) (core.Equipment, error) {
	var (
		e                            core.Equipment
		purchase, maintenance, notes sql.NullString
		price                        sql.NullInt64
		c                            string
	)
	if err := rs.Scan(&e.ID, &e.Name, &e.Category, &purchase, &price, &maintenance, &e.Status, &notes, &c); err != nil {
		return e, err
	}
	var err error
	if e.PurchaseDate, err = fromNullDate(purchase); err != nil {
		return e, err
	}
	if e.MaintenanceDate, err = fromNullDate(maintenance); err != nil {
		return e, err
	}
	if price.Valid {
		e.PurchasePrice = &core.Money{Cents: price.Int64}
	}
	e.Notes = fromNullString(notes)
	if e.CreatedAt, err = parseTimestamp(c); err != nil {
		return e, err
	}
	return e, nil
}

func (s *SQLStore) GetEquipment(ctx context.Context, id int64) (core.Equipment, error) {
	return queryOne(ctx, s, "equipment", id, `SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, scanEquipment, id)
}

func (s *SQLStore) ListEquipment(ctx context.Context) ([]core.Equipment, error) {
	return queryAll(ctx, s, "equipment", `SELECT `+equipmentColumns+` FROM equipment ORDER BY id`, scanEquipment)
}

func (s *SQLStore) CreateEquipment(ctx context.Context, e core.Equipment) (core.Equipment, error) {
	id, err := s.insert(ctx, "equipment", `INSERT INTO equipment (name, category, purchase_date, purchase_price_cents,
		maintenance_date, status, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		e.Name, e.Category, toNullDate(e.PurchaseDate), toNullMoney(e.PurchasePrice), toNullDate(e.MaintenanceDate),
		e.Status, toNullString(e.Notes), formatTimestamp(e.CreatedAt))
	if err != nil {
		return core.Equipment{}, err
	}
	e.ID = id
	return e, nil
}

func (s *SQLStore) UpdateEquipment(ctx context.Context, e core.Equipment) (core.Equipment, error) {
	err := s.update(ctx, "equipment", e.ID, `UPDATE equipment SET name = ?, category = ?, purchase_date = ?,
		purchase_price_cents = ?, maintenance_date = ?, status = ?, notes = ? WHERE id = ?`,
		e.Name, e.Category, toNullDate(e.PurchaseDate), toNullMoney(e.PurchasePrice), toNullDate(e.MaintenanceDate),
		e.Status, toNullString(e.Notes), e.ID)
	if err != nil {
		return core.Equipment{}, err
	}
	return e, nil
}

// Settings

const settingColumns = `id, setting_key, value, updated_at`

func scanSetting(rs rowScanner) (core.Setting, error) {
	var (
		st core.Setting
		u  string
	)
	if err := rs.Scan(&st.ID, &st.Key, &st.Value, &u); err != nil {
		return st, err
	}
	var err error
	if st.UpdatedAt, err = parseTimestamp(u); err != nil {
		return st, err
	}
	return st, nil
}

func (s *SQLStore) GetSetting(ctx context.Context, key string) (core.Setting, error) {
	return queryOne(ctx, s, "setting", key, `SELECT `+settingColumns+` FROM settings WHERE setting_key = ?`, scanSetting, key)
}

func (s *SQLStore) ListSettings(ctx context.Context) ([]core.Setting, error) {
	return queryAll(ctx, s, "settings", `SELECT `+settingColumns+` FROM settings ORDER BY id`, scanSetting)
}

func (s *SQLStore) PutSetting(ctx context.Context, st core.Setting) (core.Setting, error) {
	id, err := s.insert(ctx, "setting", `INSERT INTO settings (setting_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (setting_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		RETURNING id`,
		st.Key, st.Value, formatTimestamp(st.UpdatedAt))
	if err != nil {
		return core.Setting{}, err
	}
	st.ID = id
	return st, nil
}

// Activity log

const activityColumns = `id, action, description, entity_id, entity_type, occurred_at`

func scanActivity(rs rowScanner) (core.ActivityLogEntry, error) {
	var (
		e          core.ActivityLogEntry
		entityID   sql.NullInt64
		entityType sql.NullString
		ts         string
	)
	if err := rs.Scan(&e.ID, &e.Action, &e.Description, &entityID, &entityType, &ts); err != nil {
		return e, err
	}
	e.EntityID = fromNullInt64(entityID)
	e.EntityType = fromNullString(entityType)
	var err error
	if e.Timestamp, err = parseTimestamp(ts); err != nil {
		return e, err
	}
	return e, nil
}

func (s *SQLStore) AppendActivity(ctx context.Context, e core.ActivityLogEntry) (core.ActivityLogEntry, error) {
	id, err := s.insert(ctx, "activity", `INSERT INTO activity_logs (action, description, entity_id, entity_type, occurred_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		e.Action, e.Description, toNullInt64(e.EntityID), toNullString(e.EntityType), formatTimestamp(e.Timestamp))
	if err != nil {
		return core.ActivityLogEntry{}, err
	}
	e.ID = id
	return e, nil
}

func (s *SQLStore) ListActivity(ctx context.Context, limit int) ([]core.ActivityLogEntry, error) {
	q := `SELECT ` + activityColumns + ` FROM activity_logs ORDER BY occurred_at DESC, id DESC`
	if limit > 0 {
		return queryAll(ctx, s, "activity", q+` LIMIT ?`, scanActivity, limit)
	}
	return queryAll(ctx, s, "activity", q, scanActivity)
}

// Encoding helpers

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func toNullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func toNullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func fromNullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func toNullMoney(m *core.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Cents, Valid: true}
}

func toNullDate(d *core.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func fromNullDate(ns sql.NullString) (*core.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := core.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func toNullTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTimestamp(*t), Valid: true}
}
