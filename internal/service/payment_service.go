package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/personal-system/personal-backend/internal/apperror"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/report"
	"github.com/personal-system/personal-backend/internal/repository"
)

const maxPaymentMethodLen = 50

// PaymentService handles monthly-fee payments.
type PaymentService struct {
	payments repository.PaymentRepository
	students repository.StudentRepository
	notify   financeNotifier
	now      Clock
	log      zerolog.Logger
}

// NewPaymentService creates a new PaymentService. cache and pub may be nil.
func NewPaymentService(
	payments repository.PaymentRepository,
	students repository.StudentRepository,
	cache KPICache,
	pub EventPublisher,
	now Clock,
	log zerolog.Logger,
) *PaymentService {
	l := log.With().Str("component", "payment_service").Logger()
	return &PaymentService{
		payments: payments,
		students: students,
		notify:   financeNotifier{cache: cache, pub: pub, log: l},
		now:      now,
		log:      l,
	}
}

// Create registers a payment dated today and attributed to the current
// reference month.
func (s *PaymentService) Create(ctx context.Context, req model.CreatePaymentRequest) (*model.Payment, error) {
	amount, err := paymentAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	method, err := paymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if req.BonusSessions != nil && *req.BonusSessions < 0 {
		return nil, apperror.Validation("quantidade_aulas", "Quantidade de aulas não pode ser negativa")
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", req.StudentID)
		}
		return nil, apperror.Internal(err, "get student")
	}

	now := s.now()
	p := model.Payment{
		StudentID:      req.StudentID,
		Amount:         amount,
		PaymentDate:    model.StartOfDay(now),
		ReferenceMonth: report.RefMonthOf(now).String(),
		Method:         method,
		Note:           req.Note,
		BonusSessions:  req.BonusSessions,
	}
	if err := s.payments.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", req.StudentID)
		}
		return nil, apperror.Internal(err, "create payment")
	}

	s.log.Info().
		Int("pagamento_id", p.ID).
		Int("aluno_id", p.StudentID).
		Str("referencia_mes", p.ReferenceMonth).
		Str("valor", p.Amount.StringFixed(2)).
		Msg("Payment registered")
	s.changed(ctx, model.FinanceEventPaymentCreated, p)
	return &p, nil
}

// Get returns one payment.
func (s *PaymentService) Get(ctx context.Context, id int) (*model.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Pagamento %d não encontrado", id)
		}
		return nil, apperror.Internal(err, "get payment")
	}
	return p, nil
}

// List returns payments matching q, newest payment date first.
func (s *PaymentService) List(ctx context.Context, q model.ListPaymentsQuery) ([]model.Payment, error) {
	f := model.PaymentFilter{StudentID: q.StudentID}
	if q.ReferenceMonth != "" {
		month, err := report.ParseRefMonth(q.ReferenceMonth)
		if err != nil {
			return nil, apperror.Validation("referencia_mes", "%s", err.Error())
		}
		f.ReferenceMonth = month.String()
	}
	payments, err := s.payments.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err, "list payments")
	}
	return payments, nil
}

// Update replaces amount, method and note. Student, date and reference
// month never change.
func (s *PaymentService) Update(ctx context.Context, id int, req model.UpdatePaymentRequest) (*model.Payment, error) {
	amount, err := paymentAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	method, err := paymentMethod(req.Method)
	if err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Amount = amount
	p.Method = method
	p.Note = req.Note

	if err := s.payments.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Pagamento %d não encontrado", id)
		}
		return nil, apperror.Internal(err, "update payment")
	}
	s.changed(ctx, model.FinanceEventPaymentUpdated, *p)
	return p, nil
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, id int) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Pagamento %d não encontrado", id)
		}
		return apperror.Internal(err, "delete payment")
	}
	s.log.Info().Int("pagamento_id", id).Msg("Payment deleted")
	s.changed(ctx, model.FinanceEventPaymentDeleted, *p)
	return nil
}

// changed drops the KPI snapshots the payment can affect and notifies the
// dashboard feed.
func (s *PaymentService) changed(ctx context.Context, typ model.FinanceEventType, p model.Payment) {
	current := report.RefMonthOf(s.now()).String()
	s.notify.invalidate(ctx, current)
	if p.ReferenceMonth != current {
		s.notify.invalidate(ctx, p.ReferenceMonth)
	}
	s.notify.publish(ctx, model.FinanceEvent{
		Type:           typ,
		PaymentID:      p.ID,
		StudentID:      p.StudentID,
		ReferenceMonth: p.ReferenceMonth,
		Amount:         p.Amount,
		OccurredAt:     s.now(),
	})
}

func paymentAmount(v float64) (decimal.Decimal, error) {
	amount := decimal.NewFromFloat(v).Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, apperror.Validation("valor", "Valor deve ser maior que zero")
	}
	return amount, nil
}

func paymentMethod(s string) (model.PaymentMethod, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.PaymentMethodPIX, nil
	}
	if utf8.RuneCountInString(s) > maxPaymentMethodLen {
		return "", apperror.Validation("forma_pagamento", "Forma de pagamento deve ter no máximo %d caracteres", maxPaymentMethodLen)
	}
	return model.PaymentMethod(s), nil
}
