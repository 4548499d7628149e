// Package report holds the monthly aggregation rules: reference-month
// arithmetic, payment status, adherence and the financial KPI snapshot.
// Everything here is pure; the services feed it rows read from the store.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRefMonth is returned when a reference month is not "MM/YYYY".
var ErrInvalidRefMonth = errors.New("referencia_mes deve estar no formato MM/YYYY")

// RefMonth is a billing period. Its canonical text form is "MM/YYYY".
type RefMonth struct {
	Year  int
	Month time.Month
}

// RefMonthOf returns the reference month containing t.
func RefMonthOf(t time.Time) RefMonth {
	return RefMonth{Year: t.Year(), Month: t.Month()}
}

// ParseRefMonth parses "MM/YYYY". Single-digit months ("3/2024") are
// accepted and canonicalised by String.
func ParseRefMonth(s string) (RefMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return RefMonth{}, ErrInvalidRefMonth
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return RefMonth{}, ErrInvalidRefMonth
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return RefMonth{}, ErrInvalidRefMonth
	}
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return RefMonth{}, ErrInvalidRefMonth
	}
	return RefMonth{Year: year, Month: time.Month(month)}, nil
}

func (r RefMonth) String() string {
	return fmt.Sprintf("%02d/%04d", int(r.Month), r.Year)
}

// Start is the first day of the month at 00:00:00, naive.
func (r RefMonth) Start() time.Time {
	return time.Date(r.Year, r.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the month at 23:59:59, naive.
func (r RefMonth) End() time.Time {
	return r.Start().AddDate(0, 1, 0).Add(-time.Second)
}

// Bounds returns Start and End.
func (r RefMonth) Bounds() (time.Time, time.Time) {
	return r.Start(), r.End()
}

// Days is the number of calendar days in the month.
func (r RefMonth) Days() int {
	return r.Start().AddDate(0, 1, -1).Day()
}

// Weeks is ceil(Days/7): 4 for a 28-day February, 5 otherwise.
func (r RefMonth) Weeks() int {
	return (r.Days() + 6) / 7
}

// AddMonths shifts the month by n, crossing year boundaries.
func (r RefMonth) AddMonths(n int) RefMonth {
	return RefMonthOf(r.Start().AddDate(0, n, 0))
}

// Before reports whether r is earlier than o.
func (r RefMonth) Before(o RefMonth) bool {
	if r.Year != o.Year {
		return r.Year < o.Year
	}
	return r.Month < o.Month
}

// TrailingMonths returns the n months ending at current, oldest first.
func TrailingMonths(current RefMonth, n int) []RefMonth {
	if n <= 0 {
		return nil
	}
	months := make([]RefMonth, n)
	for i := 0; i < n; i++ {
		months[i] = current.AddMonths(i - (n - 1))
	}
	return months
}
