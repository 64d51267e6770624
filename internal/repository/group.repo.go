package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/xerrors"
)

type GroupRepository struct {
	db *pgxpool.Pool
}

func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroup inserts the group and its owner membership in one transaction.
func (r *GroupRepository) CreateGroup(ctx context.Context, group *domain.Group) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const qGroup = `
		INSERT INTO groups (name, description, owner_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, qGroup, group.Name, group.Description, group.OwnerID).
		Scan(&group.ID, &group.CreatedAt); err != nil {
		return err
	}

	const qMember = `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
	`
	if _, err := tx.Exec(ctx, qMember, group.ID, group.OwnerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *GroupRepository) GetGroup(ctx context.Context, groupID int64) (*domain.Group, error) {
	const q = `
		SELECT g.id, g.name, g.description, g.owner_id, g.created_at,
		       (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id)
		FROM groups g
		WHERE g.id = $1
	`

	group := &domain.Group{}
	var description *string
	err := r.db.QueryRow(ctx, q, groupID).Scan(
		&group.ID, &group.Name, &description, &group.OwnerID, &group.CreatedAt, &group.MemberCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrGroupNotFound
		}
		return nil, err
	}
	if description != nil {
		group.Description = *description
	}
	return group, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID int64, userID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, groupID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID int64, userID string) error {
	const q = `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := r.db.Exec(ctx, q, groupID, userID); err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrAlreadyMember
		}
		if xerrors.ParsePGErrorCode(err) == "23503" {
			return xerrors.ErrGroupNotFound
		}
		return err
	}
	return nil
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID int64, userID string) error {
	const q = `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, q, groupID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotGroupMember
	}
	return nil
}

func (r *GroupRepository) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	const q = `
		SELECT g.id, g.name, g.description, g.owner_id, g.created_at,
		       (SELECT COUNT(*) FROM group_members gm2 WHERE gm2.group_id = g.id)
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC
	`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		var description *string
		if err := rows.Scan(&g.ID, &g.Name, &description, &g.OwnerID, &g.CreatedAt, &g.MemberCount); err != nil {
			return nil, err
		}
		if description != nil {
			g.Description = *description
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Posts

func (r *GroupRepository) CreatePost(ctx context.Context, post *domain.GroupPost) error {
	const q = `
		INSERT INTO group_posts (group_id, author_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, q, post.GroupID, post.AuthorID, post.Body).Scan(&post.ID, &post.CreatedAt)
}

func (r *GroupRepository) GetPost(ctx context.Context, postID int64) (*domain.GroupPost, error) {
	const q = `
		SELECT p.id, p.group_id, p.author_id, p.body, p.created_at,
		       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id),
		       (SELECT COUNT(*) FROM post_comments pc WHERE pc.post_id = p.id)
		FROM group_posts p
		WHERE p.id = $1
	`

	post := &domain.GroupPost{}
	err := r.db.QueryRow(ctx, q, postID).Scan(
		&post.ID, &post.GroupID, &post.AuthorID, &post.Body, &post.CreatedAt,
		&post.LikeCount, &post.CommentCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (r *GroupRepository) ListPosts(ctx context.Context, groupID int64, limit int) ([]domain.GroupPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	const q = `
		SELECT p.id, p.group_id, p.author_id, p.body, p.created_at,
		       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id),
		       (SELECT COUNT(*) FROM post_comments pc WHERE pc.post_id = p.id)
		FROM group_posts p
		WHERE p.group_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, q, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.GroupPost
	for rows.Next() {
		var p domain.GroupPost
		if err := rows.Scan(&p.ID, &p.GroupID, &p.AuthorID, &p.Body, &p.CreatedAt, &p.LikeCount, &p.CommentCount); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *GroupRepository) DeletePost(ctx context.Context, postID int64) error {
	const q = `DELETE FROM group_posts WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, postID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *GroupRepository) CreateComment(ctx context.Context, comment *domain.PostComment) error {
	const q = `
		INSERT INTO post_comments (post_id, author_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, q, comment.PostID, comment.AuthorID, comment.Body).
		Scan(&comment.ID, &comment.CreatedAt)
}

// LikePost records a like once per user. Returns false when the user had
// already liked the post.
func (r *GroupRepository) LikePost(ctx context.Context, postID int64, userID string) (bool, error) {
	const q = `
		INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (post_id, user_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, q, postID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
