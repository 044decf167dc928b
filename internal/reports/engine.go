package reports

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gymadmin/internal/core"
)

const (
	trailingMonths   = 12
	averageWindow    = 30
	peakHourCount    = 3
	noBusiestDay     = "N/A"
	noPopularPlan    = "None"
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan"
)

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// MonthCount is a cumulative member count at the end of a month.
type MonthCount struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthRevenue is the revenue dated within one calendar month.
type MonthRevenue struct {
	Month   string     `json:"month"`
	Label   string     `json:"label"`
	Revenue core.Money `json:"revenue"`
}

// PlanCount is the number of active subscriptions on a plan.
type PlanCount struct {
	PlanID   int64  `json:"planId"`
	PlanName string `json:"planName"`
	Count    int    `json:"count"`
}

// WeekdayCount is the number of check-ins on one weekday, Sunday = 0.
type WeekdayCount struct {
	Day   int    `json:"day"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ExpiringBuckets partitions active subscriptions by how soon they end.
type ExpiringBuckets struct {
	Today     []core.Subscription `json:"today"`
	ThisWeek  []core.Subscription `json:"thisWeek"`
	ThisMonth []core.Subscription `json:"thisMonth"`
}

// RevenueSummary compares this month's takings with the previous month's.
type RevenueSummary struct {
	ThisMonth     core.Money `json:"thisMonth"`
	PreviousMonth core.Money `json:"previousMonth"`
	// GrowthPercent is nil when the previous month had no revenue.
	GrowthPercent *float64 `json:"growthPercent"`
}

// PlanRevenue is one plan's share of subscription-linked payments.
type PlanRevenue struct {
	PlanID       int64      `json:"planId"`
	PlanName     string     `json:"planName"`
	Revenue      core.Money `json:"revenue"`
	SharePercent float64    `json:"sharePercent"`
}

// MemberTotals counts members and those flagged active.
type MemberTotals struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// SubscriptionTotals counts subscriptions and those with active status.
type SubscriptionTotals struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// MembershipStats is the membership summary card.
type MembershipStats struct {
	NewMembersThisMonth  int     `json:"newMembersThisMonth"`
	RetentionRate        int     `json:"retentionRate"`
	MostPopularPlan      string  `json:"mostPopularPlan"`
	AverageDailyCheckIns float64 `json:"averageDailyCheckIns"`
}

// Report is the /api/reports bundle.
type Report struct {
	GeneratedAt            time.Time          `json:"generatedAt"`
	MemberGrowth           []MonthCount       `json:"memberGrowth"`
	PlanDistribution       []PlanCount        `json:"planDistribution"`
	RevenueByMonth         []MonthRevenue     `json:"revenueByMonth"`
	AttendanceByWeekday    []WeekdayCount     `json:"attendanceByWeekday"`
	Expiring               ExpiringBuckets    `json:"expiring"`
	PeakHours              []string           `json:"peakHours"`
	AverageDailyAttendance float64            `json:"averageDailyAttendance"`
	Revenue                RevenueSummary     `json:"revenue"`
	RevenueByPlan          []PlanRevenue      `json:"revenueByPlan"`
	Members                MemberTotals       `json:"members"`
	Subscriptions          SubscriptionTotals `json:"subscriptions"`
	BusiestDay             string             `json:"busiestDay"`
	MembershipStats        MembershipStats    `json:"membershipStats"`
}

// Build computes every report section. now carries the gym's location.
func Build(snap Snapshot, now time.Time) Report {
	weekdays := AttendanceByWeekday(snap.Attendance, now.Location())
	return Report{
		GeneratedAt:            now,
		MemberGrowth:           MemberGrowth(snap.Members, now),
		PlanDistribution:       PlanDistribution(snap.Plans, snap.Subscriptions),
		RevenueByMonth:         RevenueByMonth(snap.Payments, now),
		AttendanceByWeekday:    weekdays,
		Expiring:               Expiring(snap.Subscriptions, now),
		PeakHours:              PeakHours(snap.Attendance, now.Location()),
		AverageDailyAttendance: AverageDailyAttendance(snap.Attendance, now),
		Revenue:                Revenue(snap.Payments, now),
		RevenueByPlan:          RevenueByPlan(snap),
		Members:                Members(snap.Members),
		Subscriptions:          Subscriptions(snap.Subscriptions),
		BusiestDay:             BusiestDay(weekdays),
		MembershipStats:        Stats(snap, now),
	}
}

// monthStarts returns the first instant of each of the trailing months
// ending at now's month, oldest first.
func monthStarts(now time.Time) []time.Time {
	out := make([]time.Time, 0, trailingMonths)
	for i := trailingMonths - 1; i >= 0; i-- {
		out = append(out, time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location()))
	}
	return out
}

// MemberGrowth counts, for each trailing month, the members created on or
// before the end of that month. The series never decreases.
func MemberGrowth(members []core.Member, now time.Time) []MonthCount {
	starts := monthStarts(now)
	out := make([]MonthCount, 0, len(starts))
	for _, start := range starts {
		next := start.AddDate(0, 1, 0)
		n := 0
		for _, m := range members {
			if m.CreatedAt.Before(next) {
				n++
			}
		}
		out = append(out, MonthCount{
			Month: start.Format(monthKeyLayout),
			Label: start.Format(monthLabelLayout),
			Count: n,
		})
	}
	return out
}

// PlanDistribution counts active subscriptions per plan, omitting plans with
// none, ordered by plan id.
func PlanDistribution(plans []core.MembershipPlan, subs []core.Subscription) []PlanCount {
	counts := make(map[int64]int)
	for _, s := range subs {
		if s.IsActive() {
			counts[s.PlanID]++
		}
	}

	sorted := append([]core.MembershipPlan(nil), plans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	out := []PlanCount{}
	for i := range sorted {
		if n := counts[sorted[i].ID]; n > 0 {
			out = append(out, PlanCount{PlanID: sorted[i].ID, PlanName: sorted[i].DisplayName(), Count: n})
		}
	}
	return out
}

// RevenueByMonth sums payments by the calendar month of their payment date.
func RevenueByMonth(payments []core.Payment, now time.Time) []MonthRevenue {
	starts := monthStarts(now)
	out := make([]MonthRevenue, 0, len(starts))
	for _, start := range starts {
		out = append(out, MonthRevenue{
			Month:   start.Format(monthKeyLayout),
			Label:   start.Format(monthLabelLayout),
			Revenue: sumMonth(payments, start.Year(), start.Month()),
		})
	}
	return out
}

func sumMonth(payments []core.Payment, year int, month time.Month) core.Money {
	var total core.Money
	for _, p := range payments {
		if p.PaymentDate.SameMonth(year, month) {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// AttendanceByWeekday buckets check-ins by local weekday, Sunday first.
func AttendanceByWeekday(records []core.AttendanceRecord, loc *time.Location) []WeekdayCount {
	var counts [7]int
	for _, r := range records {
		counts[r.CheckInTime.In(loc).Weekday()]++
	}
	out := make([]WeekdayCount, 7)
	for d := range counts {
		out[d] = WeekdayCount{Day: d, Label: weekdayLabels[d], Count: counts[d]}
	}
	return out
}

// Expiring partitions active subscriptions that have not ended yet. The
// checks run in order today, week, month so each lands in one bucket at
// most.
func Expiring(subs []core.Subscription, now time.Time) ExpiringBuckets {
	today := core.DateOf(now)
	weekEnd := today.AddDays(7)
	monthEnd := today.AddMonths(1)

	b := ExpiringBuckets{
		Today:     []core.Subscription{},
		ThisWeek:  []core.Subscription{},
		ThisMonth: []core.Subscription{},
	}
	for _, s := range subs {
		if !s.IsActive() || s.EndDate.Before(today) {
			continue
		}
		switch {
		case s.EndDate.Equal(today):
			b.Today = append(b.Today, s)
		case !s.EndDate.After(weekEnd):
			b.ThisWeek = append(b.ThisWeek, s)
		case !s.EndDate.After(monthEnd):
			b.ThisMonth = append(b.ThisMonth, s)
		}
	}
	return b
}

// PeakHours ranks local check-in hours by count, ties to the earlier hour,
// and returns up to three 12-hour labels. Hours without check-ins are never
// listed.
func PeakHours(records []core.AttendanceRecord, loc *time.Location) []string {
	var counts [24]int
	for _, r := range records {
		counts[r.CheckInTime.In(loc).Hour()]++
	}

	hours := make([]int, 0, 24)
	for h, n := range counts {
		if n > 0 {
			hours = append(hours, h)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool { return counts[hours[i]] > counts[hours[j]] })

	if len(hours) > peakHourCount {
		hours = hours[:peakHourCount]
	}
	out := make([]string, 0, len(hours))
	for _, h := range hours {
		out = append(out, HourLabel(h))
	}
	return out
}

// HourLabel formats an hour of day as 12AM..11PM.
func HourLabel(hour int) string {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	if hour < 12 {
		return fmt.Sprintf("%dAM", h)
	}
	return fmt.Sprintf("%dPM", h)
}

// AverageDailyAttendance divides the check-ins of the last 30 local days,
// today included, by the number of distinct days that had any. It returns 0
// when there were none.
func AverageDailyAttendance(records []core.AttendanceRecord, now time.Time) float64 {
	today := core.DateOf(now)
	first := today.AddDays(-(averageWindow - 1))
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, now.Location())

	days := make(map[core.Date]struct{})
	total := 0
	for _, r := range records {
		if r.CheckInTime.Before(start) || r.CheckInTime.After(now) {
			continue
		}
		total++
		days[core.DateOf(r.CheckInTime.In(now.Location()))] = struct{}{}
	}
	if len(days) == 0 {
		return 0
	}
	return round2(float64(total) / float64(len(days)))
}

// Revenue compares this month's takings with the previous month's.
func Revenue(payments []core.Payment, now time.Time) RevenueSummary {
	prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	s := RevenueSummary{
		ThisMonth:     sumMonth(payments, now.Year(), now.Month()),
		PreviousMonth: sumMonth(payments, prev.Year(), prev.Month()),
	}
	if s.PreviousMonth.Cents != 0 {
		g := round2(float64(s.ThisMonth.Cents-s.PreviousMonth.Cents) / float64(s.PreviousMonth.Cents) * 100)
		s.GrowthPercent = &g
	}
	return s
}

// RevenueByPlan groups payments linked to a subscription by that
// subscription's plan. Shares are percentages of the linked total.
func RevenueByPlan(snap Snapshot) []PlanRevenue {
	subPlan := make(map[int64]int64, len(snap.Subscriptions))
	for _, s := range snap.Subscriptions {
		subPlan[s.ID] = s.PlanID
	}

	sums := make(map[int64]core.Money)
	var total core.Money
	for _, p := range snap.Payments {
		if p.SubscriptionID == nil {
			continue
		}
		planID, ok := subPlan[*p.SubscriptionID]
		if !ok {
			continue
		}
		sums[planID] = sums[planID].Add(p.Amount)
		total = total.Add(p.Amount)
	}

	plans := snap.planByID()
	ids := make([]int64, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]PlanRevenue, 0, len(ids))
	for _, id := range ids {
		pr := PlanRevenue{PlanID: id, PlanName: plans[id].DisplayName(), Revenue: sums[id]}
		if total.Cents != 0 {
			pr.SharePercent = round2(float64(sums[id].Cents) / float64(total.Cents) * 100)
		}
		out = append(out, pr)
	}
	return out
}

// Members counts members by their active flag.
func Members(members []core.Member) MemberTotals {
	t := MemberTotals{Total: len(members)}
	for _, m := range members {
		if m.Active {
			t.Active++
		}
	}
	return t
}

// Subscriptions counts subscriptions by status, ignoring end dates.
func Subscriptions(subs []core.Subscription) SubscriptionTotals {
	t := SubscriptionTotals{Total: len(subs)}
	for _, s := range subs {
		if s.IsActive() {
			t.Active++
		}
	}
	return t
}

// BusiestDay names the weekday with the most check-ins; ties go to the
// earlier day of the week.
func BusiestDay(weekdays []WeekdayCount) string {
	best := -1
	for i, w := range weekdays {
		if w.Count > 0 && (best < 0 || w.Count > weekdays[best].Count) {
			best = i
		}
	}
	if best < 0 {
		return noBusiestDay
	}
	return weekdays[best].Label
}

// Stats computes the membership summary shown on the dashboard.
func Stats(snap Snapshot, now time.Time) MembershipStats {
	st := MembershipStats{
		MostPopularPlan:      MostPopularPlan(snap.Plans, snap.Subscriptions),
		AverageDailyCheckIns: AverageDailyAttendance(snap.Attendance, now),
	}

	for _, m := range snap.Members {
		c := m.CreatedAt.In(now.Location())
		if c.Year() == now.Year() && c.Month() == now.Month() {
			st.NewMembersThisMonth++
		}
	}

	if len(snap.Members) > 0 {
		active := len(currentSubscriptions(snap.Subscriptions, core.DateOf(now)))
		st.RetentionRate = int(math.Round(float64(active) / float64(len(snap.Members)) * 100))
	}
	return st
}

// MostPopularPlan returns the plan with the most subscriptions of any status,
// ties to the lower plan id, or "None" when no plan has any.
func MostPopularPlan(plans []core.MembershipPlan, subs []core.Subscription) string {
	counts := make(map[int64]int)
	for _, s := range subs {
		counts[s.PlanID]++
	}

	var best *core.MembershipPlan
	for i := range plans {
		p := &plans[i]
		n := counts[p.ID]
		if n == 0 {
			continue
		}
		if best == nil || n > counts[best.ID] || (n == counts[best.ID] && p.ID < best.ID) {
			best = p
		}
	}
	if best == nil {
		return noPopularPlan
	}
	return best.DisplayName()
}

// currentSubscriptions returns active subscriptions that have not ended.
func currentSubscriptions(subs []core.Subscription, today core.Date) []core.Subscription {
	out := make([]core.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.IsActive() && !s.EndDate.Before(today) {
			out = append(out, s)
		}
	}
	return out
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
