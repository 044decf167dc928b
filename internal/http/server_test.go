package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

var fixedNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

type testServer struct {
	t   *testing.T
	srv *Server
	svc *services.GymService
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	svc := services.NewGymService(storage.NewMemoryStore(),
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithLocation(time.UTC),
		services.WithLogger(log.Nop()),
	)
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitRPS = 1000
		cfg.RateLimitBurst = 1000
	}
	cfg.Logger = log.Nop()
	srv := NewServer(cfg, svc)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{t: t, srv: srv, svc: svc}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) create(path string, body any) map[string]any {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, path, body)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](ts.t, rec)
}

func (ts *testServer) activity() []core.ActivityLogEntry {
	ts.t.Helper()
	rec := ts.do(http.MethodGet, "/api/activity-logs", nil)
	require.Equal(ts.t, http.StatusOK, rec.Code)
	return decode[[]core.ActivityLogEntry](ts.t, rec)
}

func countActions(entries []core.ActivityLogEntry, action string) int {
	n := 0
	for _, e := range entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

func TestCreateMember_JaneDoe(t *testing.T) {
	ts := newTestServer(t, Config{})

	created := ts.create("/api/members", map[string]any{
		"fullName": "Jane Doe",
		"email":    "jane@example.com",
		"phone":    "555-0100",
	})
	id := int64(created["id"].(float64))
	assert.Positive(t, id)
	assert.NotEmpty(t, created["createdAt"])
	assert.Equal(t, true, created["active"])

	rec := ts.do(http.MethodGet, "/api/members", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decode[[]core.Member](t, rec)
	require.Len(t, members, 1)
	assert.Equal(t, "Jane Doe", members[0].FullName)

	entries := ts.activity()
	require.Equal(t, 1, countActions(entries, core.ActionMemberAdded))
	require.NotNil(t, entries[0].EntityID)
	assert.Equal(t, id, *entries[0].EntityID)
	assert.Equal(t, core.EntityMembers, *entries[0].EntityType)
	assert.Equal(t, "New member added: Jane Doe", entries[0].Description)
}

func TestCreateMember_ValidationEnvelope(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec := ts.do(http.MethodPost, "/api/members", map[string]any{"fullName": "", "email": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorBody](t, rec)
	assert.NotEmpty(t, body.Message)
	fields := make(map[string]bool)
	for _, fe := range body.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["fullName"])
	assert.True(t, fields["email"])
	assert.True(t, fields["phone"])
	assert.Empty(t, ts.activity())
}

func TestMalformedBodies(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"fullName":"A","email":"a@b.co","phone":"1","favouriteColour":"red"}`},
		{"broken json", `{"fullName":`},
		{"empty", ``},
		{"trailing data", `{"fullName":"A","email":"a@b.co","phone":"1"} {}`},
		{"wrong type", `{"fullName":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/api/members", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[errorBody](t, rec).Message, "Invalid request body")
		})
	}
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		path string
		msg  string
	}{
		{"/api/members/99", "Member not found"},
		{"/api/members/abc", "Not found"},
		{"/api/members/99999999999999999999", "Member not found"},
		{"/api/membership-plans/3", "Membership plan not found"},
		{"/api/attendance/1", "Attendance record not found"},
		{"/api/settings/missing", "Setting not found"},
		{"/api/members/99/payments", "Member not found"},
		{"/api/nowhere", "Not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := ts.do(http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, tt.msg, decode[errorBody](t, rec).Message)
		})
	}

	rec := ts.do(http.MethodDelete, "/api/members/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSubscriptionMissingReferenceIs404(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec := ts.do(http.MethodPost, "/api/subscriptions", map[string]any{
		"memberId": 7, "planId": 1, "startDate": "2025-06-01",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Member not found", decode[errorBody](t, rec).Message)
}

func seedSubscription(t *testing.T, ts *testServer) int64 {
	t.Helper()
	member := ts.create("/api/members", map[string]any{
		"fullName": "Jane Doe", "email": "jane@example.com", "phone": "555-0100",
	})
	plan := ts.create("/api/membership-plans", map[string]any{
		"name": "Standard Monthly", "duration": 30, "price": "49.99",
	})
	sub := ts.create("/api/subscriptions", map[string]any{
		"memberId":  member["id"],
		"planId":    plan["id"],
		"startDate": "2025-06-01",
	})
	assert.Equal(t, "2025-07-01", sub["endDate"])
	assert.Equal(t, core.StatusActive, sub["status"])
	return int64(sub["id"].(float64))
}

func TestExpiringThisWeekAfterPatch(t *testing.T) {
	ts := newTestServer(t, Config{})
	subID := seedSubscription(t, ts)

	before := decode[map[string]any](t, ts.do(http.MethodGet, "/api/reports", nil))
	expiring := before["expiring"].(map[string]any)
	assert.Len(t, expiring["thisWeek"], 0)
	assert.Len(t, expiring["thisMonth"], 1)

	rec := ts.do(http.MethodPatch, "/api/subscriptions/"+itoa(subID), map[string]any{"endDate": "2025-06-16"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[map[string]any](t, rec)
	expiring = report["expiring"].(map[string]any)
	assert.Len(t, expiring["today"], 0)
	assert.Len(t, expiring["thisWeek"], 1)
	assert.Len(t, expiring["thisMonth"], 0)

	entries := ts.activity()
	require.NotEmpty(t, entries)
	assert.Equal(t, core.ActionSubscriptionUpdated, entries[0].Action)
	assert.Equal(t, "Subscription updated for Jane Doe: Standard Monthly", entries[0].Description)
}

func TestCheckOutLoggedOnce(t *testing.T) {
	ts := newTestServer(t, Config{})
	member := ts.create("/api/members", map[string]any{
		"fullName": "Jane Doe", "email": "jane@example.com", "phone": "555-0100",
	})

	visit := ts.create("/api/attendance", map[string]any{"memberId": member["id"]})
	path := "/api/attendance/" + itoa(int64(visit["id"].(float64)))

	for _, out := range []string{"2025-06-15T11:00:00Z", "2025-06-15T11:30:00Z"} {
		rec := ts.do(http.MethodPatch, path, map[string]any{"checkOutTime": out})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := ts.do(http.MethodGet, path, nil)
	got := decode[core.AttendanceRecord](t, rec)
	require.NotNil(t, got.CheckOutTime)
	assert.Equal(t, "2025-06-15T11:30:00Z", got.CheckOutTime.UTC().Format(time.RFC3339))

	entries := ts.activity()
	assert.Equal(t, 1, countActions(entries, core.ActionCheckIn))
	assert.Equal(t, 1, countActions(entries, core.ActionCheckOut))

	rec = ts.do(http.MethodPatch, path, map[string]any{"checkOutTime": "2025-06-15T08:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentsAreImmutable(t *testing.T) {
	ts := newTestServer(t, Config{})
	member := ts.create("/api/members", map[string]any{
		"fullName": "Jane Doe", "email": "jane@example.com", "phone": "555-0100",
	})
	p := ts.create("/api/payments", map[string]any{
		"memberId": member["id"], "amount": "49.99", "paymentMethod": "card",
	})
	assert.Equal(t, "49.99", p["amount"])
	assert.Equal(t, "2025-06-15", p["paymentDate"])

	rec := ts.do(http.MethodPatch, "/api/payments/"+itoa(int64(p["id"].(float64))), map[string]any{"amount": "1.00"})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	entries := ts.activity()
	assert.Equal(t, "Payment received from Jane Doe: 49.99 TRY", entries[0].Description)
}

func TestSettingsUpsert(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec := ts.do(http.MethodPatch, "/api/settings/currency", map[string]any{"value": "EUR"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "EUR", decode[core.Setting](t, rec).Value)

	rec = ts.do(http.MethodGet, "/api/settings/currency", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPatch, "/api/settings/currency", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/settings", nil)
	assert.Len(t, decode[[]core.Setting](t, rec), 1)
	assert.Empty(t, ts.activity(), "settings changes are not logged")
}

func TestActivityLimit(t *testing.T) {
	ts := newTestServer(t, Config{})
	for i := 0; i < 3; i++ {
		ts.create("/api/equipment", map[string]any{"name": "Rower", "category": "cardio"})
	}

	rec := ts.do(http.MethodGet, "/api/activity-logs?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]core.ActivityLogEntry](t, rec)
	require.Len(t, entries, 2)
	assert.Greater(t, entries[0].ID, entries[1].ID)

	rec = ts.do(http.MethodGet, "/api/activity-logs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t, Config{})
	seedSubscription(t, ts)

	rec := ts.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[map[string]any](t, rec)

	assert.Equal(t, float64(1), d["totalMembers"])
	assert.Equal(t, float64(1), d["activeMembers"])
	assert.Equal(t, "0.00", d["monthlyRevenue"])
	assert.Len(t, d["recentActivity"], 3)
	expiring := d["expiringMemberships"].([]any)
	require.Len(t, expiring, 1)
	first := expiring[0].(map[string]any)
	assert.Equal(t, "Jane Doe", first["memberName"])
	assert.Equal(t, "Standard Monthly", first["planName"])
}

func TestReportsReflectWrites(t *testing.T) {
	ts := newTestServer(t, Config{})

	growth := func() float64 {
		rec := ts.do(http.MethodGet, "/api/reports", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		r := decode[map[string]any](t, rec)
		months := r["memberGrowth"].([]any)
		return months[len(months)-1].(map[string]any)["count"].(float64)
	}

	assert.Equal(t, float64(0), growth())
	ts.create("/api/members", map[string]any{"fullName": "Jane Doe", "email": "jane@example.com", "phone": "1"})
	assert.Equal(t, float64(1), growth())
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, Config{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := ts.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := ts.do(http.MethodGet, "/api/members", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestReadyReportsStoreFailure(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "gym.db"))
	require.NoError(t, err)
	svc := services.NewGymService(store, services.WithLogger(log.Nop()))
	srv := NewServer(Config{Logger: log.Nop()}, svc)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	require.NoError(t, store.Close())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Config{RateLimitRPS: 0.01, RateLimitBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, ts.do(http.MethodGet, "/api/members", nil).Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/healthz", nil).Code, "probes are not limited")
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
