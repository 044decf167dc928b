package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateParseAndJSON(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !d.Equal(NewDate(2025, 3, 9)) {
		t.Fatalf("unexpected date %v", d)
	}

	ts, err := ParseDate("2025-03-09T23:30:00+02:00")
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	if ts.String() != "2025-03-09" {
		t.Fatalf("expected date part in its own offset, got %s", ts)
	}

	if _, err := ParseDate("09/03/2025"); err == nil {
		t.Fatalf("expected error for foreign layout")
	}

	out, _ := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2025, 12, 31)})
	if string(out) != `{"d":"2025-12-31"}` {
		t.Fatalf("unexpected encoding %s", out)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, 1, 31)
	if got := d.AddDays(1).String(); got != "2025-02-01" {
		t.Fatalf("AddDays: %s", got)
	}
	if !d.Before(d.AddDays(1)) || !d.AddDays(1).After(d) {
		t.Fatalf("ordering broken")
	}
	if !d.SameMonth(2025, time.January) || d.SameMonth(2025, time.February) {
		t.Fatalf("SameMonth broken")
	}
}

func TestMemberValidate(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	good := MemberInput{FullName: "Jane Doe", Email: "jane@example.com", Phone: "555-0100"}.Member(now)
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !good.Active {
		t.Fatalf("active should default to true")
	}

	other := "robot"
	bads := []struct {
		name   string
		member Member
		field  string
	}{
		{"missing name", Member{Email: "a@b.c", Phone: "1"}, "fullName"},
		{"bad email", Member{FullName: "A", Email: "nope", Phone: "1"}, "email"},
		{"missing phone", Member{FullName: "A", Email: "a@b.c"}, "phone"},
		{"bad gender", Member{FullName: "A", Email: "a@b.c", Phone: "1", Gender: &other}, "gender"},
	}
	for _, tc := range bads {
		err := tc.member.Validate()
		ve, ok := AsValidation(err)
		if !ok {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if ve.Errors[0].Field != tc.field {
			t.Fatalf("%s: expected field %s, got %+v", tc.name, tc.field, ve.Errors)
		}
	}
}

func TestValidationCollectsAllFields(t *testing.T) {
	err := Member{}.Validate()
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error")
	}
	if len(ve.Errors) != 3 {
		t.Fatalf("expected 3 field errors, got %+v", ve.Errors)
	}
}

func TestSubscriptionEndDate(t *testing.T) {
	now := time.Now()
	plan := &MembershipPlan{ID: 1, Name: "Standard Monthly", Duration: 30, Price: Money{Cents: 4999}}

	s := SubscriptionInput{MemberID: 1, PlanID: 1, StartDate: NewDate(2025, 1, 1)}.Subscription(plan, now)
	if s.EndDate.String() != "2025-01-31" {
		t.Fatalf("expected derived end date, got %s", s.EndDate)
	}
	if s.Status != StatusActive {
		t.Fatalf("status should default to active, got %s", s.Status)
	}

	end := NewDate(2024, 12, 31)
	bad := SubscriptionInput{MemberID: 1, PlanID: 1, StartDate: NewDate(2025, 1, 1), EndDate: &end}.Subscription(plan, now)
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error when endDate precedes startDate")
	}

	sameDay := NewDate(2025, 1, 1)
	single := SubscriptionInput{MemberID: 1, PlanID: 1, StartDate: sameDay, EndDate: &sameDay}.Subscription(plan, now)
	if err := single.Validate(); err != nil {
		t.Fatalf("single-day subscription should be valid, got %v", err)
	}
}

func TestAttendanceCheckOutOrdering(t *testing.T) {
	in := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	rec := AttendanceInput{MemberID: 1, CheckInTime: &in}.Record(in)

	early := in.Add(-time.Minute)
	if err := (AttendancePatch{CheckOutTime: &early}).Apply(rec).Validate(); err == nil {
		t.Fatalf("expected error for checkout before checkin")
	}

	late := in.Add(time.Hour)
	out := (AttendancePatch{CheckOutTime: &late}).Apply(rec)
	if err := out.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !out.CheckedOut() {
		t.Fatalf("expected checked out")
	}
}

func TestPaymentValidate(t *testing.T) {
	today := NewDate(2025, 5, 1)
	p := PaymentInput{MemberID: 1, Amount: Money{Cents: 4999}, PaymentMethod: MethodBankTransfer}.Payment(today, time.Now())
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !p.PaymentDate.Equal(today) {
		t.Fatalf("payment date should default to today")
	}

	p.PaymentMethod = "crypto"
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestEquipmentDefaults(t *testing.T) {
	e := EquipmentInput{Name: "Treadmill", Category: "cardio"}.Equipment(time.Now())
	if e.Status != EquipmentOperational {
		t.Fatalf("status should default to operational")
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	e.Status = "broken"
	if err := e.Validate(); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
