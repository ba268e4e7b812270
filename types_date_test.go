package fund

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), true},
		{"2025-1-5", NewDate(2025, time.January, 5), true},
		{"15/01/2025", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("ParseDate(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDateEndOfYear(t *testing.T) {
	d := NewDate(2025, time.March, 10)
	if got := d.EndOfYear(); got != NewDate(2025, time.December, 31) {
		t.Errorf("EndOfYear() = %s, want 2025-12-31", got)
	}
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2025, time.January, 15)
	b := a.Add(1)
	if !a.Before(b) || !b.After(a) {
		t.Errorf("ordering broken between %s and %s", a, b)
	}
	if a.Add(0) != a {
		t.Errorf("Add(0) should be identity")
	}
}
