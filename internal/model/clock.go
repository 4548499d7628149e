package model

import (
	"fmt"
	"strings"
	"time"
)

// Naive keeps the wall clock of t and drops its zone. Session timestamps are
// stored in a TIMESTAMP column without time zone and are read back in UTC
// carrying that same wall clock.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// StartOfDay returns 00:00:00 of t's calendar day, naive.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of t's calendar day, naive.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Microsecond)
}

// wallClockLayouts are the accepted input forms of a WallClock, tried in
// order. Values with an offset keep their wall clock; the offset is dropped.
var wallClockLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// WallClock is a request timestamp that may or may not carry a zone offset.
type WallClock struct {
	time.Time
}

// UnmarshalJSON accepts RFC 3339 and zone-less ISO 8601 timestamps.
func (w *WallClock) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			w.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}
