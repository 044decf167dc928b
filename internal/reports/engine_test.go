package reports

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymadmin/internal/core"
)

var now = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) core.Date { return core.NewDate(y, int(m), d) }

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func checkIns(times ...time.Time) []core.AttendanceRecord {
	out := make([]core.AttendanceRecord, 0, len(times))
	for i, t := range times {
		out = append(out, core.AttendanceRecord{ID: int64(i + 1), MemberID: 1, CheckInTime: t})
	}
	return out
}

func TestMemberGrowthIsCumulative(t *testing.T) {
	members := []core.Member{
		{ID: 1, CreatedAt: at(2023, time.March, 3, 9, 0)},
		{ID: 2, CreatedAt: at(2024, time.September, 30, 23, 59)},
		{ID: 3, CreatedAt: at(2025, time.January, 1, 0, 0)},
		{ID: 4, CreatedAt: at(2025, time.June, 14, 12, 0)},
	}

	got := MemberGrowth(members, now)
	require.Len(t, got, 12)

	assert.Equal(t, "2024-07", got[0].Month)
	assert.Equal(t, "Jul", got[0].Label)
	assert.Equal(t, "2025-06", got[11].Month)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, 2, got[2].Count, "September includes its last day")
	assert.Equal(t, 4, got[11].Count)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Count, got[i-1].Count, "month %s", got[i].Month)
	}
}

func TestPlanDistributionCountsActiveOnly(t *testing.T) {
	plans := []core.MembershipPlan{
		{ID: 2, Name: "Premium Monthly"},
		{ID: 1, Name: "Standard Monthly"},
		{ID: 3, Name: "Elite Quarterly"},
	}
	subs := []core.Subscription{
		{ID: 1, PlanID: 1, Status: core.StatusActive},
		{ID: 2, PlanID: 1, Status: core.StatusActive},
		{ID: 3, PlanID: 2, Status: core.StatusActive},
		{ID: 4, PlanID: 2, Status: core.StatusExpired},
		{ID: 5, PlanID: 3, Status: core.StatusCancelled},
	}

	want := []PlanCount{
		{PlanID: 1, PlanName: "Standard Monthly", Count: 2},
		{PlanID: 2, PlanName: "Premium Monthly", Count: 1},
	}
	if diff := cmp.Diff(want, PlanDistribution(plans, subs)); diff != "" {
		t.Errorf("PlanDistribution mismatch (-want +got):\n%s", diff)
	}
}

func TestRevenueByMonthIsExact(t *testing.T) {
	var payments []core.Payment
	for i := 0; i < 1000; i++ {
		payments = append(payments, core.Payment{
			ID:          int64(i + 1),
			Amount:      core.Money{Cents: 1},
			PaymentDate: date(2025, time.June, 1+i%15),
		})
	}
	payments = append(payments, core.Payment{ID: 2000, Amount: core.Money{Cents: 4999}, PaymentDate: date(2025, time.May, 31)})
	payments = append(payments, core.Payment{ID: 2001, Amount: core.Money{Cents: 100}, PaymentDate: date(2024, time.June, 30)})

	got := RevenueByMonth(payments, now)
	require.Len(t, got, 12)
	assert.Equal(t, core.Money{Cents: 1000}, got[11].Revenue)
	assert.Equal(t, "10.00", got[11].Revenue.String())
	assert.Equal(t, core.Money{Cents: 4999}, got[10].Revenue)
	assert.Equal(t, "2024-07", got[0].Month)
	assert.True(t, got[0].Revenue.IsZero(), "June of last year is outside the window")
}

func TestAttendanceByWeekday(t *testing.T) {
	// 2025-06-15 is a Sunday.
	records := checkIns(
		at(2025, time.June, 15, 8, 0),
		at(2025, time.June, 15, 9, 0),
		at(2025, time.June, 16, 9, 0),
		at(2025, time.June, 21, 9, 0),
	)

	got := AttendanceByWeekday(records, time.UTC)
	want := []WeekdayCount{
		{Day: 0, Label: "Sun", Count: 2},
		{Day: 1, Label: "Mon", Count: 1},
		{Day: 2, Label: "Tue"},
		{Day: 3, Label: "Wed"},
		{Day: 4, Label: "Thu"},
		{Day: 5, Label: "Fri"},
		{Day: 6, Label: "Sat", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AttendanceByWeekday mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Sun", BusiestDay(got))
}

func TestAttendanceByWeekdayUsesLocation(t *testing.T) {
	trt := time.FixedZone("TRT", 3*60*60)
	// 22:30 UTC on Saturday is 01:30 Sunday in UTC+3.
	records := checkIns(at(2025, time.June, 14, 22, 30))

	got := AttendanceByWeekday(records, trt)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, 0, got[6].Count)
}

func TestBusiestDayWithoutCheckIns(t *testing.T) {
	assert.Equal(t, "N/A", BusiestDay(AttendanceByWeekday(nil, time.UTC)))
}

func TestExpiringBucketsAreExclusive(t *testing.T) {
	today := date(2025, time.June, 15)
	var subs []core.Subscription
	for d := -3; d <= 40; d++ {
		subs = append(subs, core.Subscription{
			ID:        int64(len(subs) + 1),
			Status:    core.StatusActive,
			StartDate: today.AddDays(-30),
			EndDate:   today.AddDays(d),
		})
	}
	subs = append(subs, core.Subscription{ID: 100, Status: core.StatusCancelled, EndDate: today})

	b := Expiring(subs, now)

	seen := make(map[int64]string)
	for name, bucket := range map[string][]core.Subscription{
		"today": b.Today, "thisWeek": b.ThisWeek, "thisMonth": b.ThisMonth,
	} {
		for _, s := range bucket {
			prev, dup := seen[s.ID]
			require.False(t, dup, "subscription %d in %s and %s", s.ID, prev, name)
			seen[s.ID] = name
		}
	}

	require.Len(t, b.Today, 1)
	assert.True(t, b.Today[0].EndDate.Equal(today))
	assert.Len(t, b.ThisWeek, 7)
	// June 23 to July 15 inclusive.
	assert.Len(t, b.ThisMonth, 23)

	monthEnd := today.AddMonths(1)
	for _, s := range subs {
		if s.Status != core.StatusActive || s.EndDate.Before(today) || s.EndDate.After(monthEnd) {
			assert.NotContains(t, seen, s.ID)
			continue
		}
		assert.Contains(t, seen, s.ID, "end date %s", s.EndDate)
	}
}

func TestExpiringTomorrowIsThisWeek(t *testing.T) {
	subs := []core.Subscription{{ID: 1, Status: core.StatusActive, EndDate: date(2025, time.June, 16)}}

	b := Expiring(subs, now)
	assert.Empty(t, b.Today)
	assert.Len(t, b.ThisWeek, 1)
	assert.Empty(t, b.ThisMonth)
}

func TestPeakHours(t *testing.T) {
	var times []time.Time
	add := func(hour, n int) {
		for i := 0; i < n; i++ {
			times = append(times, at(2025, time.June, 1+i%28, hour, i%60))
		}
	}
	add(18, 50)
	add(19, 30)
	add(9, 20)
	add(6, 5)

	assert.Equal(t, []string{"6PM", "7PM", "9AM"}, PeakHours(checkIns(times...), time.UTC))
}

func TestPeakHoursTiesAndEmpty(t *testing.T) {
	records := checkIns(
		at(2025, time.June, 1, 20, 0),
		at(2025, time.June, 1, 7, 0),
	)
	assert.Equal(t, []string{"7AM", "8PM"}, PeakHours(records, time.UTC))
	assert.Empty(t, PeakHours(nil, time.UTC))
}

func TestHourLabel(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "12AM"},
		{1, "1AM"},
		{11, "11AM"},
		{12, "12PM"},
		{13, "1PM"},
		{18, "6PM"},
		{23, "11PM"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HourLabel(tt.hour), "hour %d", tt.hour)
	}
}

func TestAverageDailyAttendance(t *testing.T) {
	var times []time.Time
	for i := 0; i < 6; i++ {
		times = append(times, at(2025, time.June, 14, 7+i, 0))
	}
	for i := 0; i < 4; i++ {
		times = append(times, at(2025, time.June, 15, 6+i, 0))
	}
	// Outside the window on both sides.
	times = append(times, at(2025, time.May, 16, 23, 0), at(2025, time.June, 15, 11, 0))

	assert.Equal(t, 5.0, AverageDailyAttendance(checkIns(times...), now))
}

func TestAverageDailyAttendanceWindowStart(t *testing.T) {
	records := checkIns(at(2025, time.May, 17, 0, 0), at(2025, time.May, 17, 5, 0), at(2025, time.June, 1, 5, 0))
	assert.Equal(t, 1.5, AverageDailyAttendance(records, now))
}

func TestAverageDailyAttendanceEmpty(t *testing.T) {
	got := AverageDailyAttendance(nil, now)
	assert.Equal(t, 0.0, got)
	assert.False(t, math.IsNaN(got))
}

func TestRevenueSummary(t *testing.T) {
	payments := []core.Payment{
		{ID: 1, Amount: core.Money{Cents: 15000}, PaymentDate: date(2025, time.June, 2)},
		{ID: 2, Amount: core.Money{Cents: 10000}, PaymentDate: date(2025, time.May, 20)},
	}

	got := Revenue(payments, now)
	require.NotNil(t, got.GrowthPercent)
	assert.Equal(t, 50.0, *got.GrowthPercent)
	assert.Equal(t, core.Money{Cents: 15000}, got.ThisMonth)

	got = Revenue(payments[:1], now)
	assert.Nil(t, got.GrowthPercent)
}

func TestRevenueByPlan(t *testing.T) {
	subID := func(id int64) *int64 { return &id }
	snap := Snapshot{
		Plans: []core.MembershipPlan{{ID: 1, Name: "Standard"}, {ID: 2, Name: "Premium"}},
		Subscriptions: []core.Subscription{
			{ID: 10, PlanID: 1},
			{ID: 11, PlanID: 2},
		},
		Payments: []core.Payment{
			{ID: 1, SubscriptionID: subID(10), Amount: core.Money{Cents: 2500}},
			{ID: 2, SubscriptionID: subID(11), Amount: core.Money{Cents: 7500}},
			{ID: 3, Amount: core.Money{Cents: 99999}},
			{ID: 4, SubscriptionID: subID(99), Amount: core.Money{Cents: 1}},
		},
	}

	want := []PlanRevenue{
		{PlanID: 1, PlanName: "Standard", Revenue: core.Money{Cents: 2500}, SharePercent: 25},
		{PlanID: 2, PlanName: "Premium", Revenue: core.Money{Cents: 7500}, SharePercent: 75},
	}
	if diff := cmp.Diff(want, RevenueByPlan(snap)); diff != "" {
		t.Errorf("RevenueByPlan mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, RevenueByPlan(Snapshot{}))
}

func TestStats(t *testing.T) {
	snap := Snapshot{
		Members: []core.Member{
			{ID: 1, CreatedAt: at(2025, time.June, 2, 9, 0)},
			{ID: 2, CreatedAt: at(2025, time.May, 2, 9, 0)},
			{ID: 3, CreatedAt: at(2025, time.June, 10, 9, 0)},
		},
		Plans: []core.MembershipPlan{{ID: 1, Name: "Standard"}, {ID: 2, Name: "Premium"}},
		Subscriptions: []core.Subscription{
			{ID: 1, MemberID: 1, PlanID: 2, Status: core.StatusActive, EndDate: date(2025, time.July, 1)},
			{ID: 2, MemberID: 2, PlanID: 2, Status: core.StatusActive, EndDate: date(2025, time.June, 1)},
			{ID: 3, MemberID: 3, PlanID: 1, Status: core.StatusExpired, EndDate: date(2025, time.June, 1)},
		},
	}

	got := Stats(snap, now)
	want := MembershipStats{
		NewMembersThisMonth: 2,
		RetentionRate:       33,
		MostPopularPlan:     "Premium",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsEmpty(t *testing.T) {
	got := Stats(Snapshot{Plans: []core.MembershipPlan{{ID: 1, Name: "Standard"}}}, now)
	assert.Equal(t, 0, got.RetentionRate)
	assert.Equal(t, "None", got.MostPopularPlan)
}

func TestBuildHasNoNaN(t *testing.T) {
	r := Build(Snapshot{}, now)

	assert.Len(t, r.MemberGrowth, 12)
	assert.Len(t, r.RevenueByMonth, 12)
	assert.Len(t, r.AttendanceByWeekday, 7)
	assert.NotNil(t, r.PlanDistribution)
	assert.NotNil(t, r.PeakHours)
	assert.Equal(t, "N/A", r.BusiestDay)
	assert.False(t, math.IsNaN(r.AverageDailyAttendance))
	assert.Nil(t, r.Revenue.GrowthPercent)
	assert.Equal(t, MemberTotals{}, r.Members)
}

func TestBuildMemberTotals(t *testing.T) {
	r := Build(Snapshot{Members: []core.Member{
		{ID: 1, FullName: "Jane Doe", Active: true, CreatedAt: at(2025, time.January, 1, 9, 0)},
		{ID: 2, FullName: "John Roe", Active: false, CreatedAt: at(2025, time.February, 1, 9, 0)},
		{ID: 3, FullName: "Ada Poe", Active: true, CreatedAt: at(2025, time.June, 2, 9, 0)},
	}}, now)

	assert.Equal(t, MemberTotals{Total: 3, Active: 2}, r.Members)
}

func TestDashboard(t *testing.T) {
	snap := Snapshot{
		Members: []core.Member{
			{ID: 1, FullName: "Jane Doe", Active: true, CreatedAt: at(2025, time.January, 1, 9, 0)},
			{ID: 2, FullName: "John Roe", Active: false, CreatedAt: at(2025, time.January, 1, 9, 0)},
		},
		Plans: []core.MembershipPlan{{ID: 1, Name: "Standard Monthly"}},
		Subscriptions: []core.Subscription{
			{ID: 1, MemberID: 1, PlanID: 1, Status: core.StatusActive, EndDate: date(2025, time.July, 10)},
			{ID: 2, MemberID: 2, PlanID: 1, Status: core.StatusActive, EndDate: date(2025, time.June, 20)},
			{ID: 3, MemberID: 9, PlanID: 1, Status: core.StatusActive, EndDate: date(2025, time.August, 1)},
			{ID: 4, MemberID: 1, PlanID: 1, Status: core.StatusActive, EndDate: date(2025, time.June, 14)},
		},
		Payments: []core.Payment{
			{ID: 1, Amount: core.Money{Cents: 4999}, PaymentDate: date(2025, time.June, 1)},
			{ID: 2, Amount: core.Money{Cents: 8999}, PaymentDate: date(2025, time.May, 31)},
		},
		Attendance: checkIns(at(2025, time.June, 15, 7, 0), at(2025, time.June, 14, 7, 0)),
	}

	var recent []core.ActivityLogEntry
	for i := 15; i > 0; i-- {
		recent = append(recent, core.ActivityLogEntry{ID: int64(i), Action: core.ActionCheckIn})
	}

	d := BuildDashboard(snap, recent, now)

	assert.Equal(t, 2, d.TotalMembers)
	assert.Equal(t, 1, d.ActiveMembers)
	assert.Equal(t, core.Money{Cents: 4999}, d.MonthlyRevenue)
	assert.Equal(t, 1, d.TodayVisits)
	require.Len(t, d.RecentActivity, RecentActivityLimit)
	assert.Equal(t, int64(15), d.RecentActivity[0].ID)

	require.Len(t, d.ExpiringMemberships, 2)
	assert.Equal(t, int64(2), d.ExpiringMemberships[0].Subscription.ID)
	assert.Equal(t, "John Roe", d.ExpiringMemberships[0].MemberName)
	assert.Equal(t, 5, d.ExpiringMemberships[0].DaysLeft)
	assert.Equal(t, "Jane Doe", d.ExpiringMemberships[1].MemberName)
	assert.Equal(t, "Standard Monthly", d.ExpiringMemberships[1].PlanName)
}

func TestExpiringSoonUnknownNames(t *testing.T) {
	snap := Snapshot{
		Subscriptions: []core.Subscription{{ID: 1, MemberID: 7, PlanID: 8, Status: core.StatusActive, EndDate: date(2025, time.June, 15)}},
	}
	got := ExpiringSoon(snap, date(2025, time.June, 15))
	require.Len(t, got, 1)
	assert.Equal(t, core.UnknownName, got[0].MemberName)
	assert.Equal(t, core.UnknownName, got[0].PlanName)
	assert.Equal(t, 0, got[0].DaysLeft)
}

type stubSource struct {
	members []core.Member
	err     error
}

func (s stubSource) ListMembers(context.Context) ([]core.Member, error) { return s.members, nil }
func (s stubSource) ListPlans(context.Context) ([]core.MembershipPlan, error) {
	return nil, nil
}
func (s stubSource) ListSubscriptions(context.Context) ([]core.Subscription, error) {
	return nil, nil
}
func (s stubSource) ListPayments(ctx context.Context) ([]core.Payment, error) {
	return nil, s.err
}
func (s stubSource) ListAttendance(context.Context) ([]core.AttendanceRecord, error) {
	return nil, nil
}

func TestLoad(t *testing.T) {
	src := stubSource{members: []core.Member{{ID: 1}}}
	snap, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, snap.Members, 1)

	boom := errors.New("disk gone")
	_, err = Load(context.Background(), stubSource{err: boom})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load payments")
}
