package time

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	c := NewFixed(Date(2026, time.February, 6))
	if !c.Now().Equal(Date(2026, time.February, 6)) {
		t.Fatalf("Now = %v", c.Now())
	}
	c.Advance(24 * time.Hour)
	if c.Now().Day() != 7 {
		t.Fatalf("Advance = %v", c.Now())
	}
	c.Set(Date(2027, time.January, 1))
	if c.Now().Year() != 2027 {
		t.Fatalf("Set = %v", c.Now())
	}
	if _, ok := Or(nil).(System); !ok {
		t.Fatalf("Or(nil) should be System")
	}
	if Or(c) != Clock(c) {
		t.Fatalf("Or(c) should be c")
	}
}

func TestWithin(t *testing.T) {
	from := Date(2026, time.February, 1)
	to := Date(2026, time.March, 1)
	cases := []struct {
		at   time.Time
		to   *time.Time
		want bool
	}{
		{Date(2026, time.January, 31), nil, false},
		{from, nil, true},
		{Date(2030, time.January, 1), nil, true},
		{Date(2026, time.February, 28), &to, true},
		{to, &to, false},
	}
	for _, c := range cases {
		if got := Within(c.at, from, c.to); got != c.want {
			t.Fatalf("Within(%v) = %v, want %v", c.at, got, c.want)
		}
	}
	if Ptr(time.Time{}) != nil || Ptr(from) == nil {
		t.Fatalf("Ptr mismatch")
	}
}
