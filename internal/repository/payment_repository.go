package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/personal-system/personal-backend/internal/model"
)

// PaymentRepository handles payment data access and the monthly totals the
// financial reports are built from.
type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id int) (*model.Payment, error)
	List(ctx context.Context, f model.PaymentFilter) ([]model.Payment, error)
	// Update replaces amount, method and note.
	Update(ctx context.Context, p *model.Payment) error
	Delete(ctx context.Context, id int) error

	ExistsForMonth(ctx context.Context, studentID int, refMonth string) (bool, error)
	// StudentsPaidForMonth returns the ids of students with at least one
	// payment attributed to refMonth.
	StudentsPaidForMonth(ctx context.Context, refMonth string) (map[int]bool, error)
	SumBonusSessions(ctx context.Context, studentID int, refMonth string) (int, error)
	// MonthTotals returns the revenue attributed to refMonth and the number
	// of distinct students who paid it.
	MonthTotals(ctx context.Context, refMonth string) (decimal.Decimal, int, error)
	// RevenueByPaymentMonth sums amounts by the month of their payment date,
	// for payment dates in [from, to). Keys are first-of-month dates.
	RevenueByPaymentMonth(ctx context.Context, from, to time.Time) (map[time.Time]decimal.Decimal, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

const paymentColumns = `id, aluno_id, valor, data_pagamento, referencia_mes, forma_pagamento, observacao,
	quantidade_aulas, created_at, updated_at`

func scanPayment(row pgx.Row, p *model.Payment) error {
	return row.Scan(&p.ID, &p.StudentID, &p.Amount, &p.PaymentDate, &p.ReferenceMonth, &p.Method, &p.Note,
		&p.BonusSessions, &p.CreatedAt, &p.UpdatedAt)
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO pagamentos (aluno_id, valor, data_pagamento, referencia_mes, forma_pagamento,
			observacao, quantidade_aulas)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		p.StudentID, p.Amount, p.PaymentDate, p.ReferenceMonth, p.Method, p.Note, p.BonusSessions,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *paymentRepository) GetByID(ctx context.Context, id int) (*model.Payment, error) {
	p := &model.Payment{}
	if err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM pagamentos WHERE id = $1`, id), p); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *paymentRepository) List(ctx context.Context, f model.PaymentFilter) ([]model.Payment, error) {
	var w whereBuilder
	if f.StudentID != nil {
		w.add("aluno_id = $%d", *f.StudentID)
	}
	if f.ReferenceMonth != "" {
		w.add("referencia_mes = $%d", f.ReferenceMonth)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM pagamentos`+w.String()+` ORDER BY data_pagamento DESC, id DESC`,
		w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) Update(ctx context.Context, p *model.Payment) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE pagamentos
		 SET valor = $1, forma_pagamento = $2, observacao = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4
		 RETURNING updated_at`,
		p.Amount, p.Method, p.Note, p.ID,
	).Scan(&p.UpdatedAt)
	return translate(err)
}

func (r *paymentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pagamentos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *paymentRepository) ExistsForMonth(ctx context.Context, studentID int, refMonth string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pagamentos WHERE aluno_id = $1 AND referencia_mes = $2)`,
		studentID, refMonth,
	).Scan(&exists)
	return exists, err
}

func (r *paymentRepository) StudentsPaidForMonth(ctx context.Context, refMonth string) (map[int]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT aluno_id FROM pagamentos WHERE referencia_mes = $1`, refMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paid := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		paid[id] = true
	}
	return paid, rows.Err()
}

func (r *paymentRepository) SumBonusSessions(ctx context.Context, studentID int, refMonth string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantidade_aulas), 0) FROM pagamentos WHERE aluno_id = $1 AND referencia_mes = $2`,
		studentID, refMonth,
	).Scan(&n)
	return n, err
}

func (r *paymentRepository) MonthTotals(ctx context.Context, refMonth string) (decimal.Decimal, int, error) {
	var (
		revenue decimal.Decimal
		paid    int
	)
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(valor), 0), COUNT(DISTINCT aluno_id) FROM pagamentos WHERE referencia_mes = $1`,
		refMonth,
	).Scan(&revenue, &paid)
	return revenue, paid, err
}

func (r *paymentRepository) RevenueByPaymentMonth(ctx context.Context, from, to time.Time) (map[time.Time]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc('month', data_pagamento)::date AS mes, SUM(valor)
		 FROM pagamentos
		 WHERE data_pagamento >= $1 AND data_pagamento < $2
		 GROUP BY mes`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[time.Time]decimal.Decimal)
	for rows.Next() {
		var (
			month time.Time
			sum   decimal.Decimal
		)
		if err := rows.Scan(&month, &sum); err != nil {
			return nil, err
		}
		out[month] = sum
	}
	return out, rows.Err()
}
