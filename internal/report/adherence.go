package report

import (
	"math"

	"github.com/personal-system/personal-backend/internal/model"
)

// SessionQualifies reports whether a session counts toward adherence: it was
// performed, or it was missed without needing a make-up.
func SessionQualifies(performed, needsMakeup bool) bool {
	return performed || !needsMakeup
}

// AdherenceInput carries what ComputeAdherence needs for one student-month.
type AdherenceInput struct {
	StudentID       int
	Month           RefMonth
	WeeklyFrequency int
	BonusSessions   int
	Qualifying      int
}

// ComputeAdherence turns the counts of one student-month into a report.
func ComputeAdherence(in AdherenceInput) model.AdherenceReport {
	expected := in.WeeklyFrequency*in.Month.Weeks() + in.BonusSessions
	rate := 0.0
	if expected > 0 {
		rate = Round4(float64(in.Qualifying) / float64(expected))
	}
	return model.AdherenceReport{
		StudentID:         in.StudentID,
		ReferenceMonth:    in.Month.String(),
		ExpectedSessions:  expected,
		CompletedSessions: in.Qualifying,
		AdherenceRate:     rate,
	}
}

// Round4 rounds half away from zero to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
