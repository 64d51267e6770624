package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/xerrors"
)

type FriendRepository struct {
	db *pgxpool.Pool
}

func NewFriendRepository(db *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{db: db}
}

func (r *FriendRepository) Create(ctx context.Context, req *domain.FriendRequest) error {
	const q = `
		INSERT INTO friend_requests (id, from_user, to_user, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.db.QueryRow(ctx, q, req.ID, req.FromUser, req.ToUser, string(req.Status)).
		Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *FriendRepository) GetByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	const q = `
		SELECT id, from_user, to_user, status, created_at, updated_at
		FROM friend_requests
		WHERE id = $1
	`

	req := &domain.FriendRequest{}
	var status string
	err := r.db.QueryRow(ctx, q, id).Scan(&req.ID, &req.FromUser, &req.ToUser, &status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrFriendRequestUnknown
		}
		return nil, err
	}
	req.Status = domain.FriendRequestStatus(status)
	return req, nil
}

// ActiveBetween reports whether a pending or accepted request links the two
// users in either direction.
func (r *FriendRepository) ActiveBetween(ctx context.Context, userA, userB string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE status IN ('pending', 'accepted')
			  AND ((from_user = $1 AND to_user = $2) OR (from_user = $2 AND to_user = $1))
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, q, userA, userB).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *FriendRepository) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE status = 'accepted'
			  AND ((from_user = $1 AND to_user = $2) OR (from_user = $2 AND to_user = $1))
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, q, userA, userB).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *FriendRepository) UpdateStatus(ctx context.Context, id string, status domain.FriendRequestStatus) error {
	const q = `
		UPDATE friend_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.db.Exec(ctx, q, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrFriendRequestClosed
	}
	return nil
}

func (r *FriendRepository) ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	const q = `
		SELECT id, from_user, to_user, status, created_at, updated_at
		FROM friend_requests
		WHERE to_user = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.FriendRequest
	for rows.Next() {
		var req domain.FriendRequest
		var status string
		if err := rows.Scan(&req.ID, &req.FromUser, &req.ToUser, &status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		req.Status = domain.FriendRequestStatus(status)
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ListFriends returns the ids of everyone linked by an accepted request.
func (r *FriendRepository) ListFriends(ctx context.Context, userID string) ([]string, error) {
	const q = `
		SELECT CASE WHEN from_user = $1 THEN to_user ELSE from_user END
		FROM friend_requests
		WHERE status = 'accepted' AND (from_user = $1 OR to_user = $1)
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
