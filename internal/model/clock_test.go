package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWallClockUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		hour int
	}{
		{`"2024-04-10T08:30:00"`, 8},
		{`"2024-04-10T08:30"`, 8},
		{`"2024-04-10 08:30:00"`, 8},
		{`"2024-04-10T08:30:00-03:00"`, 8},
		{`"2024-04-10T08:30:00.123Z"`, 8},
	}
	for _, tt := range tests {
		var w WallClock
		if err := json.Unmarshal([]byte(tt.in), &w); err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		if n := Naive(w.Time); n.Hour() != tt.hour || n.Minute() != 30 || n.Location() != time.UTC {
			t.Errorf("%s: naive = %v", tt.in, n)
		}
	}

	var w WallClock
	if err := json.Unmarshal([]byte(`"10/04/2024"`), &w); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestDayBounds(t *testing.T) {
	d := time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC)
	if got := StartOfDay(d); !got.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", got)
	}
	end := EndOfDay(d)
	if end.Day() != 29 || end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDay = %v", end)
	}
}

func TestCascadeResultTotal(t *testing.T) {
	r := CascadeResult{Plans: 1, Prescriptions: 2, Payments: 3, Sessions: 5}
	if r.Dependents() != 11 {
		t.Errorf("Dependents = %d, want 11", r.Dependents())
	}
	if r.Total() != 12 {
		t.Errorf("Total = %d, want 12", r.Total())
	}
}
