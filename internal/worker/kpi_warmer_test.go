package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/model"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (s *countingRefresher) Refresh(context.Context) (*model.FinancialKPIs, error) {
	s.calls.Add(1)
	return &model.FinancialKPIs{}, s.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestKPIWarmerDebouncesBursts(t *testing.T) {
	src := &countingRefresher{}
	w := NewKPIWarmer(nil, src, zerolog.Nop())
	w.debounce = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan model.FinanceEvent)
	done := make(chan struct{})
	go func() {
		w.run(ctx, events)
		close(done)
	}()

	// Initial warm-up on start.
	waitFor(t, func() bool { return src.calls.Load() == 1 })

	for i := 0; i < 5; i++ {
		events <- model.FinanceEvent{Type: model.FinanceEventPaymentCreated}
	}
	waitFor(t, func() bool { return src.calls.Load() == 2 })

	events <- model.FinanceEvent{Type: model.FinanceEventPaymentCreated}
	waitFor(t, func() bool { return src.calls.Load() == 3 })

	cancel()
	<-done
	if got := src.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestKPIWarmerSurvivesErrorsAndStopsOnClosedFeed(t *testing.T) {
	src := &countingRefresher{err: errors.New("db down")}
	w := NewKPIWarmer(nil, src, zerolog.Nop())
	w.debounce = time.Millisecond

	events := make(chan model.FinanceEvent)
	done := make(chan struct{})
	go func() {
		w.run(context.Background(), events)
		close(done)
	}()

	events <- model.FinanceEvent{Type: model.FinanceEventPaymentCreated}
	waitFor(t, func() bool { return src.calls.Load() == 2 })
	close(events)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("warmer did not stop after the feed closed")
	}
}
