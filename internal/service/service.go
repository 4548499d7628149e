package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/model"
)

// Clock returns "now" as a zone-less wall clock value in the application's
// time zone.
type Clock func() time.Time

// NewClock returns a Clock reading the system time in loc.
func NewClock(loc *time.Location) Clock {
	return func() time.Time {
		return model.Naive(time.Now().In(loc))
	}
}

// KPICache stores financial KPI snapshots per reference month.
type KPICache interface {
	GetKPIs(ctx context.Context, refMonth string) (*model.FinancialKPIs, bool, error)
	SetKPIs(ctx context.Context, refMonth string, kpis *model.FinancialKPIs) error
	InvalidateKPIs(ctx context.Context, refMonth string) error
}

// EventPublisher fans finance events out to dashboard subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.FinanceEvent) error
}

// financeNotifier keeps the KPI cache and the event feed in step with writes.
// Both dependencies are optional; failures are logged and never fail the
// write that triggered them.
type financeNotifier struct {
	cache KPICache
	pub   EventPublisher
	log   zerolog.Logger
}

func (n financeNotifier) invalidate(ctx context.Context, refMonth string) {
	if n.cache == nil {
		return
	}
	if err := n.cache.InvalidateKPIs(ctx, refMonth); err != nil {
		n.log.Warn().Err(err).Str("referencia_mes", refMonth).Msg("Failed to invalidate KPI snapshot")
	}
}

func (n financeNotifier) publish(ctx context.Context, ev model.FinanceEvent) {
	if n.pub == nil {
		return
	}
	if err := n.pub.Publish(ctx, ev); err != nil {
		n.log.Warn().Err(err).Str("type", string(ev.Type)).Int("pagamento_id", ev.PaymentID).Msg("Failed to publish finance event")
	}
}
