package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/apperror"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/report"
	"github.com/personal-system/personal-backend/internal/repository"
)

// FinanceService builds the fleet-wide financial snapshot.
type FinanceService struct {
	payments repository.PaymentRepository
	students repository.StudentRepository
	cache    KPICache
	now      Clock
	log      zerolog.Logger
}

// NewFinanceService creates a new FinanceService. cache may be nil.
func NewFinanceService(payments repository.PaymentRepository, students repository.StudentRepository, cache KPICache, now Clock, log zerolog.Logger) *FinanceService {
	return &FinanceService{
		payments: payments,
		students: students,
		cache:    cache,
		now:      now,
		log:      log.With().Str("component", "finance_service").Logger(),
	}
}

// KPIs returns the snapshot for the current reference month, from the cache
// when a fresh one exists.
func (s *FinanceService) KPIs(ctx context.Context) (*model.FinancialKPIs, error) {
	month := report.RefMonthOf(s.now())
	key := month.String()

	if s.cache != nil {
		cached, ok, err := s.cache.GetKPIs(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("referencia_mes", key).Msg("KPI cache read failed")
		} else if ok {
			return cached, nil
		}
	}
	return s.compute(ctx, month)
}

// Refresh recomputes the snapshot from the store and overwrites the cached
// one. A snapshot written by a read that raced a payment write does not
// survive the next Refresh.
func (s *FinanceService) Refresh(ctx context.Context) (*model.FinancialKPIs, error) {
	return s.compute(ctx, report.RefMonthOf(s.now()))
}

func (s *FinanceService) compute(ctx context.Context, month report.RefMonth) (*model.FinancialKPIs, error) {
	key := month.String()

	revenue, paid, err := s.payments.MonthTotals(ctx, key)
	if err != nil {
		return nil, apperror.Internal(err, "month totals")
	}
	total, err := s.students.Count(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "count students")
	}

	months := report.TrailingMonths(month, report.SeriesLength)
	from := months[0].Start()
	to := month.AddMonths(1).Start()
	byMonth, err := s.payments.RevenueByPaymentMonth(ctx, from, to)
	if err != nil {
		return nil, apperror.Internal(err, "revenue by month")
	}

	kpis := report.ComputeKPIs(report.KPIInput{
		Month:          month,
		Revenue:        revenue,
		StudentsPaid:   paid,
		TotalStudents:  total,
		RevenueByMonth: report.BucketByMonth(byMonth),
	})

	if s.cache != nil {
		if err := s.cache.SetKPIs(ctx, key, &kpis); err != nil {
			s.log.Warn().Err(err).Str("referencia_mes", key).Msg("KPI cache write failed")
		}
	}
	return &kpis, nil
}
