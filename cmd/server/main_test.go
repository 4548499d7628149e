package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestInitUsesRFC3339Timestamps(t *testing.T) {
	if zerolog.TimeFieldFormat != time.RFC3339 {
		t.Errorf("TimeFieldFormat = %q, want RFC3339", zerolog.TimeFieldFormat)
	}
}
