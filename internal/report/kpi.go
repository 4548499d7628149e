package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-system/personal-backend/internal/model"
)

// SeriesLength is the size of the trailing revenue series.
const SeriesLength = 12

// KPIInput carries the store totals behind the financial snapshot.
type KPIInput struct {
	Month         RefMonth
	Revenue       decimal.Decimal
	StudentsPaid  int
	TotalStudents int
	// RevenueByMonth buckets payment amounts by the month of their payment
	// date. Months absent from the map had no revenue.
	RevenueByMonth map[RefMonth]decimal.Decimal
}

// ComputeKPIs builds the snapshot. Divisions by zero yield zero and the
// revenue series always has SeriesLength points, oldest first.
func ComputeKPIs(in KPIInput) model.FinancialKPIs {
	delinquent := in.TotalStudents - in.StudentsPaid
	if delinquent < 0 {
		delinquent = 0
	}

	rate := 0.0
	if in.TotalStudents > 0 {
		rate = Round4(float64(delinquent) / float64(in.TotalStudents))
	}

	ticket := decimal.Zero
	if in.StudentsPaid > 0 {
		ticket = in.Revenue.Div(decimal.NewFromInt(int64(in.StudentsPaid))).Round(2)
	}

	series := make([]model.MonthlyRevenue, 0, SeriesLength)
	for _, m := range TrailingMonths(in.Month, SeriesLength) {
		v, ok := in.RevenueByMonth[m]
		if !ok {
			v = decimal.Zero
		}
		series = append(series, model.MonthlyRevenue{
			ReferenceMonth: m.String(),
			Revenue:        v.Round(2),
		})
	}

	return model.FinancialKPIs{
		ReferenceMonth:     in.Month.String(),
		Revenue:            in.Revenue.Round(2),
		AverageTicket:      ticket,
		DelinquencyRate:    rate,
		TotalStudents:      in.TotalStudents,
		StudentsPaid:       in.StudentsPaid,
		StudentsDelinquent: delinquent,
		MonthlyRevenue:     series,
	}
}

// BucketByMonth folds month-truncated timestamps into RefMonth keys.
func BucketByMonth(rows map[time.Time]decimal.Decimal) map[RefMonth]decimal.Decimal {
	out := make(map[RefMonth]decimal.Decimal, len(rows))
	for t, v := range rows {
		m := RefMonthOf(t)
		out[m] = out[m].Add(v)
	}
	return out
}
