package core

import "time"

// AttendanceRecord is one visit. CheckOutTime stays nil until the member
// leaves.
type AttendanceRecord struct {
	ID           int64      `json:"id"`
	MemberID     int64      `json:"memberId"`
	CheckInTime  time.Time  `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type AttendanceInput struct {
	MemberID    int64      `json:"memberId"`
	CheckInTime *time.Time `json:"checkInTime"`
}

// Record builds the record to insert; check-in defaults to now.
func (in AttendanceInput) Record(now time.Time) AttendanceRecord {
	checkIn := now
	if in.CheckInTime != nil {
		checkIn = *in.CheckInTime
	}
	return AttendanceRecord{
		MemberID:    in.MemberID,
		CheckInTime: checkIn.UTC(),
		CreatedAt:   now.UTC(),
	}
}

type AttendancePatch struct {
	CheckOutTime *time.Time `json:"checkOutTime"`
}

func (p AttendancePatch) Apply(a AttendanceRecord) AttendanceRecord {
	if p.CheckOutTime != nil {
		t := p.CheckOutTime.UTC()
		a.CheckOutTime = &t
	}
	return a
}

func (a AttendanceRecord) Validate() error {
	var v validator
	v.check(a.MemberID > 0, "memberId", "is required")
	v.check(!a.CheckInTime.IsZero(), "checkInTime", "is required")
	if a.CheckOutTime != nil {
		v.check(!a.CheckOutTime.Before(a.CheckInTime), "checkOutTime", "must not be before checkInTime")
	}
	return v.err()
}

// CheckedOut reports whether a check-out time has been recorded.
func (a AttendanceRecord) CheckedOut() bool {
	return a.CheckOutTime != nil
}
