package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/personal-system/personal-backend/internal/model"
)

// PlanRepository handles workout plans and their exercise prescriptions.
type PlanRepository interface {
	// CreateWithPrescriptions persists the plan and every prescription in a
	// single transaction. On error nothing is written.
	CreateWithPrescriptions(ctx context.Context, p *model.Plan) error
	GetByID(ctx context.Context, id int) (*model.Plan, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.Plan, error)
	SetActive(ctx context.Context, id int, active bool) error
	Delete(ctx context.Context, id int) error

	AddPrescription(ctx context.Context, p *model.Prescription) error
	GetPrescription(ctx context.Context, id int) (*model.Prescription, error)
	UpdatePrescription(ctx context.Context, p *model.Prescription) error
	DeletePrescription(ctx context.Context, id int) error
}

type planRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(pool *pgxpool.Pool) PlanRepository {
	return &planRepository{pool: pool}
}

const prescriptionColumns = `id, plano_treino_id, nome_exercicio, series, repeticoes, carga_kg,
	tempo_descanso_segundos, notas_tecnicas`

func scanPrescription(row pgx.Row, p *model.Prescription) error {
	return row.Scan(&p.ID, &p.PlanID, &p.ExerciseName, &p.Sets, &p.Reps, &p.LoadKg, &p.RestSeconds, &p.TechniqueNotes)
}

func insertPrescription(ctx context.Context, q querier, p *model.Prescription) error {
	return q.QueryRow(ctx,
		`INSERT INTO prescricoes_exercicio (plano_treino_id, nome_exercicio, series, repeticoes, carga_kg,
			tempo_descanso_segundos, notas_tecnicas)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		p.PlanID, p.ExerciseName, p.Sets, p.Reps, p.LoadKg, p.RestSeconds, p.TechniqueNotes,
	).Scan(&p.ID)
}

func (r *planRepository) CreateWithPrescriptions(ctx context.Context, p *model.Plan) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO planos_treino (aluno_id, titulo, objetivo_estrategico, esta_ativo, data_criacao)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			p.StudentID, p.Title, p.Objective, p.Active, p.CreatedAt,
		).Scan(&p.ID)
		if err != nil {
			return err
		}
		for i := range p.Prescriptions {
			p.Prescriptions[i].PlanID = p.ID
			if err := insertPrescription(ctx, tx, &p.Prescriptions[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Ids handed out inside a rolled back transaction do not exist.
		p.ID = 0
		for i := range p.Prescriptions {
			p.Prescriptions[i].ID = 0
			p.Prescriptions[i].PlanID = 0
		}
		return translate(err)
	}
	return nil
}

func (r *planRepository) GetByID(ctx context.Context, id int) (*model.Plan, error) {
	p := &model.Plan{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, aluno_id, titulo, objetivo_estrategico, esta_ativo, data_criacao
		 FROM planos_treino WHERE id = $1`, id,
	).Scan(&p.ID, &p.StudentID, &p.Title, &p.Objective, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}

	byPlan, err := r.prescriptionsFor(ctx, []int{p.ID})
	if err != nil {
		return nil, err
	}
	p.Prescriptions = byPlan[p.ID]
	if p.Prescriptions == nil {
		p.Prescriptions = []model.Prescription{}
	}
	return p, nil
}

func (r *planRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Plan, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, aluno_id, titulo, objetivo_estrategico, esta_ativo, data_criacao
		 FROM planos_treino WHERE aluno_id = $1
		 ORDER BY data_criacao DESC, id DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []model.Plan{}
	var ids []int
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Title, &p.Objective, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return plans, nil
	}

	byPlan, err := r.prescriptionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		plans[i].Prescriptions = byPlan[plans[i].ID]
		if plans[i].Prescriptions == nil {
			plans[i].Prescriptions = []model.Prescription{}
		}
	}
	return plans, nil
}

func (r *planRepository) prescriptionsFor(ctx context.Context, planIDs []int) (map[int][]model.Prescription, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+prescriptionColumns+` FROM prescricoes_exercicio
		 WHERE plano_treino_id = ANY($1) ORDER BY id ASC`, planIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]model.Prescription, len(planIDs))
	for rows.Next() {
		var p model.Prescription
		if err := scanPrescription(rows, &p); err != nil {
			return nil, err
		}
		out[p.PlanID] = append(out[p.PlanID], p)
	}
	return out, rows.Err()
}

func (r *planRepository) SetActive(ctx context.Context, id int, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE planos_treino SET esta_ativo = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *planRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM planos_treino WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *planRepository) AddPrescription(ctx context.Context, p *model.Prescription) error {
	return translate(insertPrescription(ctx, r.pool, p))
}

func (r *planRepository) GetPrescription(ctx context.Context, id int) (*model.Prescription, error) {
	p := &model.Prescription{}
	err := scanPrescription(r.pool.QueryRow(ctx,
		`SELECT `+prescriptionColumns+` FROM prescricoes_exercicio WHERE id = $1`, id), p)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *planRepository) UpdatePrescription(ctx context.Context, p *model.Prescription) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE prescricoes_exercicio
		 SET nome_exercicio = $1, series = $2, repeticoes = $3, carga_kg = $4,
			tempo_descanso_segundos = $5, notas_tecnicas = $6
		 WHERE id = $7`,
		p.ExerciseName, p.Sets, p.Reps, p.LoadKg, p.RestSeconds, p.TechniqueNotes, p.ID,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *planRepository) DeletePrescription(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prescricoes_exercicio WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
