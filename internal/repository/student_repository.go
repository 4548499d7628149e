package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/personal-system/personal-backend/internal/model"
)

// StudentRepository handles student data access.
type StudentRepository interface {
	Create(ctx context.Context, s *model.Student) error
	GetByID(ctx context.Context, id int) (*model.Student, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	List(ctx context.Context) ([]model.Student, error)
	Update(ctx context.Context, s *model.Student) error
	// Delete removes the student and everything it owns in one transaction
	// and reports how many dependent rows went with it.
	Delete(ctx context.Context, id int) (model.CascadeResult, error)
	Count(ctx context.Context) (int, error)
}

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

const studentColumns = `id, nome, COALESCE(cpf, ''), data_inicio, dia_vencimento, frequencia_semanal_plano,
	valor_mensalidade, idade, objetivo, restricoes, created_at, updated_at`

func scanStudent(row pgx.Row, s *model.Student) error {
	return row.Scan(&s.ID, &s.Name, &s.CPF, &s.EnrollmentDate, &s.DueDay, &s.WeeklyFrequency,
		&s.MonthlyFee, &s.Age, &s.Goals, &s.Restrictions, &s.CreatedAt, &s.UpdatedAt)
}

func (r *studentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO alunos (nome, cpf, data_inicio, dia_vencimento, frequencia_semanal_plano,
			valor_mensalidade, idade, objetivo, restricoes)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.CPF, s.EnrollmentDate, s.DueDay, s.WeeklyFrequency,
		s.MonthlyFee, s.Age, s.Goals, s.Restrictions,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return translate(err)
}

func (r *studentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM alunos WHERE id = $1`, id), s)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

func (r *studentRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM alunos WHERE cpf = $1)`, cpf).Scan(&exists)
	return exists, err
}

func (r *studentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+studentColumns+` FROM alunos ORDER BY nome ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *studentRepository) Update(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE alunos
		 SET nome = $1, dia_vencimento = $2, frequencia_semanal_plano = $3, valor_mensalidade = $4,
			idade = $5, objetivo = $6, restricoes = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8
		 RETURNING updated_at`,
		s.Name, s.DueDay, s.WeeklyFrequency, s.MonthlyFee, s.Age, s.Goals, s.Restrictions, s.ID,
	).Scan(&s.UpdatedAt)
	return translate(err)
}

func (r *studentRepository) Delete(ctx context.Context, id int) (model.CascadeResult, error) {
	var res model.CascadeResult
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Lock the row so the counts match what the cascade removes.
		var locked int
		if err := tx.QueryRow(ctx, `SELECT id FROM alunos WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return err
		}
		err := tx.QueryRow(ctx,
			`SELECT
				(SELECT COUNT(*) FROM planos_treino WHERE aluno_id = $1),
				(SELECT COUNT(*) FROM prescricoes_exercicio pe
					JOIN planos_treino pt ON pt.id = pe.plano_treino_id WHERE pt.aluno_id = $1),
				(SELECT COUNT(*) FROM pagamentos WHERE aluno_id = $1),
				(SELECT COUNT(*) FROM sessoes_treino WHERE aluno_id = $1)`, id,
		).Scan(&res.Plans, &res.Prescriptions, &res.Payments, &res.Sessions)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM alunos WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return model.CascadeResult{}, translate(err)
	}
	return res, nil
}

func (r *studentRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alunos`).Scan(&n)
	return n, err
}
