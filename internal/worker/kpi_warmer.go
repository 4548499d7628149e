package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/model"
)

const (
	// WarmDebounce groups bursts of payment events into one recomputation.
	WarmDebounce = 2 * time.Second
	// WarmTimeout bounds a single recomputation.
	WarmTimeout = 10 * time.Second
)

// FinanceFeed delivers payment change events.
type FinanceFeed interface {
	Events(ctx context.Context) (<-chan model.FinanceEvent, error)
}

// KPIRefresher recomputes the KPI snapshot and overwrites the cached one.
type KPIRefresher interface {
	Refresh(ctx context.Context) (*model.FinancialKPIs, error)
}

// KPIWarmer recomputes the dashboard KPIs shortly after payments change, so
// the next dashboard read is served from the cache.
type KPIWarmer struct {
	feed     FinanceFeed
	kpis     KPIRefresher
	debounce time.Duration
	log      zerolog.Logger
}

func NewKPIWarmer(feed FinanceFeed, kpis KPIRefresher, log zerolog.Logger) *KPIWarmer {
	return &KPIWarmer{
		feed:     feed,
		kpis:     kpis,
		debounce: WarmDebounce,
		log:      log.With().Str("component", "kpi_warmer").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

// Start warms the cache once, then after every burst of finance events,
// until ctx is cancelled.
func (w *KPIWarmer) Start(ctx context.Context) {
	events, err := w.feed.Events(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("KPIWarmer could not subscribe to the finance feed")
		return
	}
	w.run(ctx, events)
}

func (w *KPIWarmer) run(ctx context.Context, events <-chan model.FinanceEvent) {
	w.log.Info().Msg("KPIWarmer started")
	w.warm(ctx)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending int
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("KPIWarmer stopped")
			return

		case _, ok := <-events:
			if !ok {
				w.log.Warn().Msg("Finance feed closed")
				return
			}
			pending++
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			}

		case <-timerC:
			w.log.Debug().Int("events", pending).Msg("Warming KPIs after payment changes")
			w.warm(ctx)
			timer, timerC, pending = nil, nil, 0
		}
	}
}

func (w *KPIWarmer) warm(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, WarmTimeout)
	defer cancel()

	if _, err := w.kpis.Refresh(warmCtx); err != nil && ctx.Err() == nil {
		w.log.Error().Err(err).Msg("KPI warm-up failed")
	}
}
