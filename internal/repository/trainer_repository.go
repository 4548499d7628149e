package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/personal-system/personal-backend/internal/model"
)

// TrainerRepository handles trainer login data access.
type TrainerRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.Trainer, error)
	Create(ctx context.Context, t *model.Trainer) error
}

type trainerRepository struct {
	pool *pgxpool.Pool
}

// NewTrainerRepository creates a new TrainerRepository.
func NewTrainerRepository(pool *pgxpool.Pool) TrainerRepository {
	return &trainerRepository{pool: pool}
}

func (r *trainerRepository) GetByUsername(ctx context.Context, username string) (*model.Trainer, error) {
	t := &model.Trainer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, usuario, nome, password_hash, created_at FROM trainers WHERE usuario = $1`, username,
	).Scan(&t.ID, &t.Username, &t.Name, &t.PasswordHash, &t.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (r *trainerRepository) Create(ctx context.Context, t *model.Trainer) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO trainers (usuario, nome, password_hash) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		t.Username, t.Name, t.PasswordHash,
	).Scan(&t.ID, &t.CreatedAt)
	return translate(err)
}
