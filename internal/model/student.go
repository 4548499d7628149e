package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialStatus is the derived payment state of a student for the current
// reference month.
type FinancialStatus string

const (
	FinancialStatusPaid    FinancialStatus = "em_dia"
	FinancialStatusOverdue FinancialStatus = "atrasado"
)

// Student represents a trainer's client (aluno).
type Student struct {
	ID              int             `json:"id"`
	Name            string          `json:"nome"`
	CPF             string          `json:"cpf"`
	EnrollmentDate  time.Time       `json:"data_inicio"`
	DueDay          int             `json:"dia_vencimento"`
	WeeklyFrequency int             `json:"frequencia_semanal_plano"`
	MonthlyFee      decimal.Decimal `json:"valor_mensalidade"`
	Age             *int            `json:"idade"`
	Goals           *string         `json:"objetivo"`
	Restrictions    *string         `json:"restricoes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StudentView is the read model returned by every student read path: the
// persisted student plus the two values derived for the current month.
type StudentView struct {
	Student
	FinancialStatus   FinancialStatus `json:"status_financeiro"`
	SessionsThisMonth int             `json:"aulas_feitas_mes"`
}

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	Name            string  `json:"nome" binding:"required,min=2,max=100"`
	CPF             string  `json:"cpf" binding:"required,cpf"`
	Age             *int    `json:"idade" binding:"omitempty,min=0,max=120"`
	Goals           *string `json:"objetivo" binding:"omitempty,max=2000"`
	Restrictions    *string `json:"restricoes" binding:"omitempty,max=2000"`
	MonthlyFee      float64 `json:"valor_mensalidade" binding:"required,gt=0"`
	WeeklyFrequency int     `json:"frequencia_semanal_plano" binding:"required,gt=0,max=14"`
	DueDay          int     `json:"dia_vencimento" binding:"required,min=1,max=31"`
}

// UpdateStudentRequest is the partial-update payload for a student. Nil
// fields are left untouched. CPF cannot be changed.
type UpdateStudentRequest struct {
	Name            *string  `json:"nome" binding:"omitempty,min=2,max=100"`
	Age             *int     `json:"idade" binding:"omitempty,min=0,max=120"`
	Goals           *string  `json:"objetivo" binding:"omitempty,max=2000"`
	Restrictions    *string  `json:"restricoes" binding:"omitempty,max=2000"`
	MonthlyFee      *float64 `json:"valor_mensalidade" binding:"omitempty,gt=0"`
	WeeklyFrequency *int     `json:"frequencia_semanal_plano" binding:"omitempty,gt=0,max=14"`
	DueDay          *int     `json:"dia_vencimento" binding:"omitempty,min=1,max=31"`
}

// CascadeResult counts the rows removed together with a student.
type CascadeResult struct {
	Plans         int64 `json:"planos"`
	Prescriptions int64 `json:"prescricoes"`
	Payments      int64 `json:"pagamentos"`
	Sessions      int64 `json:"sessoes"`
}

// Dependents is the number of rows owned by the student.
func (r CascadeResult) Dependents() int64 {
	return r.Plans + r.Prescriptions + r.Payments + r.Sessions
}

// Total is Dependents plus the student row itself.
func (r CascadeResult) Total() int64 {
	return r.Dependents() + 1
}
