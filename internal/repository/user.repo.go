package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/xerrors"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user row and an empty profile at setup step 1 in one
// transaction. Profiles are never created in a partially complete state.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const qUser = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`
	if err := tx.QueryRow(ctx, qUser, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt); err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrEmailAlreadyInUse
		}
		return err
	}

	const qProfile = `
		INSERT INTO user_profiles (user_id, setup_step, profile_complete, created_at, updated_at)
		VALUES ($1, 1, FALSE, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, qProfile, user.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	user := &domain.User{}
	err := r.db.QueryRow(ctx, q, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	user := &domain.User{}
	err := r.db.QueryRow(ctx, q, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
