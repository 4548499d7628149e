package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is rendered as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// MonthlyRevenue is one point of the trailing revenue series.
type MonthlyRevenue struct {
	ReferenceMonth string          `json:"referencia_mes"`
	Revenue        decimal.Decimal `json:"receita"`
}

// FinancialKPIs is the fleet-wide financial snapshot for the current month.
type FinancialKPIs struct {
	ReferenceMonth     string           `json:"referencia_mes"`
	Revenue            decimal.Decimal  `json:"receita_total"`
	AverageTicket      decimal.Decimal  `json:"ticket_medio"`
	DelinquencyRate    float64          `json:"inadimplencia"`
	TotalStudents      int              `json:"total_alunos"`
	StudentsPaid       int              `json:"alunos_em_dia"`
	StudentsDelinquent int              `json:"alunos_inadimplentes"`
	MonthlyRevenue     []MonthlyRevenue `json:"receita_mensal_12m"`
}

// FinanceEventType names a payment change pushed to the dashboard feed.
type FinanceEventType string

const (
	FinanceEventPaymentCreated FinanceEventType = "payment.created"
	FinanceEventPaymentUpdated FinanceEventType = "payment.updated"
	FinanceEventPaymentDeleted FinanceEventType = "payment.deleted"
)

// FinanceEvent is published on every payment write.
type FinanceEvent struct {
	Type           FinanceEventType `json:"type"`
	PaymentID      int              `json:"pagamento_id"`
	StudentID      int              `json:"aluno_id"`
	ReferenceMonth string           `json:"referencia_mes"`
	Amount         decimal.Decimal  `json:"valor"`
	OccurredAt     time.Time        `json:"occurred_at"`
}
