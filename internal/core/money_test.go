package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"49.99", 4999, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		4999:   "49.99",
		100000: "1000.00",
		-250:   "-2.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("%d: want %q, got %q", cents, want, got)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var fromString, fromNumber Money
	if err := json.Unmarshal([]byte(`"89.99"`), &fromString); err != nil {
		t.Fatalf("string: %v", err)
	}
	if err := json.Unmarshal([]byte(`89.99`), &fromNumber); err != nil {
		t.Fatalf("number: %v", err)
	}
	if fromString.Cents != 8999 || fromNumber.Cents != 8999 {
		t.Fatalf("expected 8999 cents, got %d and %d", fromString.Cents, fromNumber.Cents)
	}

	out, err := json.Marshal(Money{Cents: 49999})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"499.99"` {
		t.Fatalf("unexpected encoding %s", out)
	}

	var bad Money
	if err := json.Unmarshal([]byte(`"-3"`), &bad); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestMoneySumIsExact(t *testing.T) {
	// 0.1 repeated in binary floating point drifts; cents must not.
	var total Money
	for i := 0; i < 1000; i++ {
		total = total.Add(Money{Cents: 10})
	}
	if total.String() != "100.00" {
		t.Fatalf("expected 100.00, got %s", total)
	}
}
