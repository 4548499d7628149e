package report

import (
	"testing"
	"time"

	"github.com/personal-system/personal-backend/internal/model"
)

func TestComputeAdherence(t *testing.T) {
	tests := []struct {
		name         string
		in           AdherenceInput
		wantExpected int
		wantRate     float64
	}{
		{
			name:         "thirty day month",
			in:           AdherenceInput{StudentID: 1, Month: RefMonth{2024, time.April}, WeeklyFrequency: 3, Qualifying: 10},
			wantExpected: 15,
			wantRate:     0.6667,
		},
		{
			name:         "bonus sessions raise the target",
			in:           AdherenceInput{StudentID: 1, Month: RefMonth{2024, time.April}, WeeklyFrequency: 3, BonusSessions: 5, Qualifying: 10},
			wantExpected: 20,
			wantRate:     0.5,
		},
		{
			name:         "short february",
			in:           AdherenceInput{StudentID: 1, Month: RefMonth{2023, time.February}, WeeklyFrequency: 2, Qualifying: 8},
			wantExpected: 8,
			wantRate:     1,
		},
		{
			name:         "nothing expected",
			in:           AdherenceInput{StudentID: 1, Month: RefMonth{2024, time.April}, Qualifying: 3},
			wantExpected: 0,
			wantRate:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAdherence(tt.in)
			if got.ExpectedSessions != tt.wantExpected {
				t.Errorf("expected = %d, want %d", got.ExpectedSessions, tt.wantExpected)
			}
			if got.AdherenceRate != tt.wantRate {
				t.Errorf("rate = %v, want %v", got.AdherenceRate, tt.wantRate)
			}
			if got.CompletedSessions != tt.in.Qualifying {
				t.Errorf("completed = %d, want %d", got.CompletedSessions, tt.in.Qualifying)
			}
			if got.ReferenceMonth != tt.in.Month.String() {
				t.Errorf("reference month = %q", got.ReferenceMonth)
			}
		})
	}
}

func TestSessionQualifies(t *testing.T) {
	tests := []struct {
		performed, makeup, want bool
	}{
		{true, false, true},
		{true, true, true},
		{false, false, true},
		{false, true, false},
	}
	for _, tt := range tests {
		if got := SessionQualifies(tt.performed, tt.makeup); got != tt.want {
			t.Errorf("SessionQualifies(%v, %v) = %v", tt.performed, tt.makeup, got)
		}
	}
}

func TestDeriveIsPure(t *testing.T) {
	s := model.Student{ID: 7, Name: "Ana"}
	a := Derive(s, true, 4)
	b := Derive(s, true, 4)
	if a != b {
		t.Fatalf("Derive not deterministic: %+v vs %+v", a, b)
	}
	if a.FinancialStatus != model.FinancialStatusPaid || a.SessionsThisMonth != 4 {
		t.Errorf("unexpected view %+v", a)
	}
	if got := Derive(s, false, 0).FinancialStatus; got != model.FinancialStatusOverdue {
		t.Errorf("unpaid status = %q", got)
	}
}
