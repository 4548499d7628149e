package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was made. Any non-empty text is accepted;
// these are the values the dashboard offers.
type PaymentMethod string

const (
	PaymentMethodPIX    PaymentMethod = "PIX"
	PaymentMethodCash   PaymentMethod = "Dinheiro"
	PaymentMethodCredit PaymentMethod = "Cartão de Crédito"
	PaymentMethodDebit  PaymentMethod = "Cartão de Débito"
)

// Payment is a monthly-fee payment (pagamento). ReferenceMonth ("MM/YYYY")
// attributes it to a billing period independently of PaymentDate.
type Payment struct {
	ID             int             `json:"id"`
	StudentID      int             `json:"aluno_id"`
	Amount         decimal.Decimal `json:"valor"`
	PaymentDate    time.Time       `json:"data_pagamento"`
	ReferenceMonth string          `json:"referencia_mes"`
	Method         PaymentMethod   `json:"forma_pagamento"`
	Note           *string         `json:"observacao"`
	BonusSessions  *int            `json:"quantidade_aulas"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreatePaymentRequest is the payload for registering a payment. The
// reference month is always the current month.
type CreatePaymentRequest struct {
	StudentID     int     `json:"aluno_id" binding:"required,gt=0"`
	Amount        float64 `json:"valor" binding:"required,gt=0"`
	Method        string  `json:"forma_pagamento" binding:"omitempty,max=50"`
	Note          *string `json:"observacao" binding:"omitempty,max=1000"`
	BonusSessions *int    `json:"quantidade_aulas" binding:"omitempty,min=0,max=100"`
}

// UpdatePaymentRequest replaces the editable fields of a payment.
type UpdatePaymentRequest struct {
	Amount float64 `json:"valor" binding:"required,gt=0"`
	Method string  `json:"forma_pagamento" binding:"omitempty,max=50"`
	Note   *string `json:"observacao" binding:"omitempty,max=1000"`
}

// ListPaymentsQuery is the query string of GET /pagamentos.
type ListPaymentsQuery struct {
	StudentID      *int   `form:"aluno_id" binding:"omitempty,gt=0"`
	ReferenceMonth string `form:"referencia_mes" binding:"omitempty,refmonth"`
}

// PaymentFilter narrows a payment listing.
type PaymentFilter struct {
	StudentID      *int
	ReferenceMonth string
}
