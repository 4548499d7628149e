package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/personal-system/personal-backend/internal/model"
)

// SessionRepository handles training session data access.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id int) (*model.Session, error)
	// List returns one page ordered by timestamp descending plus the total
	// number of rows matching the filter.
	List(ctx context.Context, f model.SessionFilter) ([]model.Session, int, error)
	Delete(ctx context.Context, id int) error

	// CountPerformedSince counts performed sessions at or after since.
	CountPerformedSince(ctx context.Context, studentID int, since time.Time) (int, error)
	// CountPerformedSinceByStudent is CountPerformedSince for every student
	// at once. Students without sessions are absent from the map.
	CountPerformedSinceByStudent(ctx context.Context, since time.Time) (map[int]int, error)
	// CountQualifying counts sessions in [start, end] that were performed or
	// missed without needing a make-up.
	CountQualifying(ctx context.Context, studentID int, start, end time.Time) (int, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionColumns = `id, aluno_id, plano_treino_id, data_hora, realizada, observacoes_performance,
	motivo_ausencia, precisa_reposicao, created_at`

func scanSession(row pgx.Row, s *model.Session) error {
	return row.Scan(&s.ID, &s.StudentID, &s.PlanID, &s.Timestamp, &s.Performed, &s.PerformanceNotes,
		&s.AbsenceReason, &s.NeedsMakeup, &s.CreatedAt)
}

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sessoes_treino (aluno_id, plano_treino_id, data_hora, realizada,
			observacoes_performance, motivo_ausencia, precisa_reposicao)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		s.StudentID, s.PlanID, s.Timestamp, s.Performed, s.PerformanceNotes, s.AbsenceReason, s.NeedsMakeup,
	).Scan(&s.ID, &s.CreatedAt)
	return translate(err)
}

func (r *sessionRepository) GetByID(ctx context.Context, id int) (*model.Session, error) {
	s := &model.Session{}
	if err := scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessoes_treino WHERE id = $1`, id), s); err != nil {
		return nil, translate(err)
	}
	return s, nil
}

func (r *sessionRepository) List(ctx context.Context, f model.SessionFilter) ([]model.Session, int, error) {
	var w whereBuilder
	if f.StudentID != nil {
		w.add("aluno_id = $%d", *f.StudentID)
	}
	if f.Performed != nil {
		w.add("realizada = $%d", *f.Performed)
	}
	if f.From != nil {
		w.add("data_hora >= $%d", model.StartOfDay(*f.From))
	}
	if f.To != nil {
		w.add("data_hora <= $%d", model.EndOfDay(*f.To))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessoes_treino`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + sessionColumns + ` FROM sessoes_treino` + w.String() +
		` ORDER BY data_hora DESC, id DESC LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		var s model.Session
		if err := scanSession(rows, &s); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, rows.Err()
}

func (r *sessionRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessoes_treino WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepository) CountPerformedSince(ctx context.Context, studentID int, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessoes_treino WHERE aluno_id = $1 AND realizada AND data_hora >= $2`,
		studentID, since,
	).Scan(&n)
	return n, err
}

func (r *sessionRepository) CountPerformedSinceByStudent(ctx context.Context, since time.Time) (map[int]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT aluno_id, COUNT(*) FROM sessoes_treino
		 WHERE realizada AND data_hora >= $1 GROUP BY aluno_id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var id, n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *sessionRepository) CountQualifying(ctx context.Context, studentID int, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessoes_treino
		 WHERE aluno_id = $1 AND data_hora >= $2 AND data_hora <= $3
		   AND (realizada OR NOT precisa_reposicao)`,
		studentID, start, end,
	).Scan(&n)
	return n, err
}
