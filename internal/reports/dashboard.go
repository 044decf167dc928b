package reports

import (
	"sort"
	"time"

	"gymadmin/internal/core"
)

const (
	expiringHorizonDays = 30
	expiringLimit       = 10
	// RecentActivityLimit is how many log entries the dashboard shows.
	RecentActivityLimit = 10
)

// ExpiringMembership is a subscription ending soon, with display names.
type ExpiringMembership struct {
	Subscription core.Subscription `json:"subscription"`
	MemberName   string            `json:"memberName"`
	PlanName     string            `json:"planName"`
	DaysLeft     int               `json:"daysLeft"`
}

// Dashboard is the /api/dashboard payload.
type Dashboard struct {
	TotalMembers        int                     `json:"totalMembers"`
	ActiveMembers       int                     `json:"activeMembers"`
	MonthlyRevenue      core.Money              `json:"monthlyRevenue"`
	TodayVisits         int                     `json:"todayVisits"`
	RecentActivity      []core.ActivityLogEntry `json:"recentActivity"`
	ExpiringMemberships []ExpiringMembership    `json:"expiringMemberships"`
	MembershipStats     MembershipStats         `json:"membershipStats"`
}

// BuildDashboard assembles the dashboard. recent must already be newest
// first; it is truncated to RecentActivityLimit.
func BuildDashboard(snap Snapshot, recent []core.ActivityLogEntry, now time.Time) Dashboard {
	today := core.DateOf(now)

	members := Members(snap.Members)
	d := Dashboard{
		TotalMembers:        members.Total,
		ActiveMembers:       members.Active,
		MonthlyRevenue:      sumMonth(snap.Payments, now.Year(), now.Month()),
		RecentActivity:      recent,
		ExpiringMemberships: ExpiringSoon(snap, today),
		MembershipStats:     Stats(snap, now),
	}
	if d.RecentActivity == nil {
		d.RecentActivity = []core.ActivityLogEntry{}
	}
	if len(d.RecentActivity) > RecentActivityLimit {
		d.RecentActivity = d.RecentActivity[:RecentActivityLimit]
	}

	for _, a := range snap.Attendance {
		if core.DateOf(a.CheckInTime.In(now.Location())).Equal(today) {
			d.TodayVisits++
		}
	}
	return d
}

// ExpiringSoon lists active subscriptions ending within the next 30 days,
// soonest first, at most ten.
func ExpiringSoon(snap Snapshot, today core.Date) []ExpiringMembership {
	horizon := today.AddDays(expiringHorizonDays)

	subs := currentSubscriptions(snap.Subscriptions, today)
	subs = filterSubs(subs, func(s core.Subscription) bool { return !s.EndDate.After(horizon) })
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].EndDate.Before(subs[j].EndDate) })
	if len(subs) > expiringLimit {
		subs = subs[:expiringLimit]
	}

	members := snap.memberByID()
	plans := snap.planByID()
	out := make([]ExpiringMembership, 0, len(subs))
	for _, s := range subs {
		out = append(out, ExpiringMembership{
			Subscription: s,
			MemberName:   members[s.MemberID].DisplayName(),
			PlanName:     plans[s.PlanID].DisplayName(),
			DaysLeft:     int(s.EndDate.Sub(today.Time).Hours() / 24),
		})
	}
	return out
}

func filterSubs(subs []core.Subscription, keep func(core.Subscription) bool) []core.Subscription {
	out := subs[:0]
	for _, s := range subs {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
