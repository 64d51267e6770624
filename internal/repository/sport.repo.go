package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"sportmatch-service/internal/domain"
)

type SportRepository struct {
	db *pgxpool.Pool
}

func NewSportRepository(db *pgxpool.Pool) *SportRepository {
	return &SportRepository{db: db}
}

func (r *SportRepository) List(ctx context.Context) ([]domain.Sport, error) {
	const q = `SELECT id, name FROM sports ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sports []domain.Sport
	for rows.Next() {
		var s domain.Sport
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		sports = append(sports, s)
	}
	return sports, rows.Err()
}

func (r *SportRepository) Exists(ctx context.Context, sportID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM sports WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, sportID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
