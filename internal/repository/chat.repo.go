package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"sportmatch-service/internal/domain"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	const q = `
		INSERT INTO chat_messages (id, from_user, to_user, body, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	return r.db.QueryRow(ctx, q, msg.ID, msg.FromUser, msg.ToUser, msg.Body).Scan(&msg.CreatedAt)
}

// Conversation lists messages between two users, newest first.
func (r *ChatRepository) Conversation(ctx context.Context, userID, otherID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const q = `
		SELECT id, from_user, to_user, body, created_at, read_at
		FROM chat_messages
		WHERE (from_user = $1 AND to_user = $2) OR (from_user = $2 AND to_user = $1)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, q, userID, otherID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.FromUser, &m.ToUser, &m.Body, &m.CreatedAt, &m.ReadAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkRead marks everything the other user sent as read.
func (r *ChatRepository) MarkRead(ctx context.Context, userID, otherID string) error {
	const q = `
		UPDATE chat_messages
		SET read_at = NOW()
		WHERE to_user = $1 AND from_user = $2 AND read_at IS NULL
	`

	_, err := r.db.Exec(ctx, q, userID, otherID)
	return err
}
