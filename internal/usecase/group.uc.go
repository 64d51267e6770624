package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/internal/ws"
	"sportmatch-service/pkg/xerrors"
)

const (
	maxGroupNameLen   = 100
	maxGroupDescLen   = 500
	maxPostBodyLen    = 5000
	maxCommentBodyLen = 1000
)

// GroupStore is the slice of the group repository the community flow needs.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *domain.Group) error
	GetGroup(ctx context.Context, groupID int64) (*domain.Group, error)
	IsMember(ctx context.Context, groupID int64, userID string) (bool, error)
	AddMember(ctx context.Context, groupID int64, userID string) error
	RemoveMember(ctx context.Context, groupID int64, userID string) error
	ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error)
	CreatePost(ctx context.Context, post *domain.GroupPost) error
	GetPost(ctx context.Context, postID int64) (*domain.GroupPost, error)
	ListPosts(ctx context.Context, groupID int64, limit int) ([]domain.GroupPost, error)
	DeletePost(ctx context.Context, postID int64) error
	CreateComment(ctx context.Context, comment *domain.PostComment) error
	LikePost(ctx context.Context, postID int64, userID string) (bool, error)
}

type GroupUsecase struct {
	groups    GroupStore
	publisher Publisher
	logger    *zap.Logger
}

func NewGroupUsecase(groups GroupStore, publisher Publisher, logger *zap.Logger) *GroupUsecase {
	return &GroupUsecase{
		groups:    groups,
		publisher: publisher,
		logger:    logger,
	}
}

func (uc *GroupUsecase) Create(ctx context.Context, ownerID string, req *domain.CreateGroupRequest) (*domain.Group, xerrors.FieldErrors, error) {
	fields := xerrors.FieldErrors{}
	if req.Name == "" {
		fields["name"] = "Group name is required"
	} else if len(req.Name) > maxGroupNameLen {
		fields["name"] = fmt.Sprintf("Group name must not exceed %d characters", maxGroupNameLen)
	}
	if len(req.Description) > maxGroupDescLen {
		fields["description"] = fmt.Sprintf("Description must not exceed %d characters", maxGroupDescLen)
	}
	if !fields.Empty() {
		return nil, fields, nil
	}

	group := &domain.Group{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if err := uc.groups.CreateGroup(ctx, group); err != nil {
		return nil, nil, err
	}
	group.MemberCount = 1

	uc.logger.Info("Group created",
		zap.Int64("group_id", group.ID),
		zap.String("owner_id", ownerID))
	return group, nil, nil
}

func (uc *GroupUsecase) Get(ctx context.Context, groupID int64) (*domain.Group, error) {
	return uc.groups.GetGroup(ctx, groupID)
}

func (uc *GroupUsecase) Join(ctx context.Context, groupID int64, userID string) error {
	if err := uc.groups.AddMember(ctx, groupID, userID); err != nil {
		return err
	}
	uc.logger.Info("Member joined group",
		zap.Int64("group_id", groupID),
		zap.String("user_id", userID))
	return nil
}

// Leave removes the membership. The owner leaving does not dissolve the
// group; posts and other memberships stay intact.
func (uc *GroupUsecase) Leave(ctx context.Context, groupID int64, userID string) error {
	return uc.groups.RemoveMember(ctx, groupID, userID)
}

func (uc *GroupUsecase) GroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	return uc.groups.ListGroupsForUser(ctx, userID)
}

// requireMember resolves the group and checks membership in one place.
func (uc *GroupUsecase) requireMember(ctx context.Context, groupID int64, userID string) error {
	member, err := uc.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		if _, err := uc.groups.GetGroup(ctx, groupID); err != nil {
			return err
		}
		return xerrors.ErrNotGroupMember
	}
	return nil
}

// CreatePost publishes a post to a group the author belongs to and emits
// post.created on the group channel.
func (uc *GroupUsecase) CreatePost(ctx context.Context, groupID int64, authorID string, req *domain.CreatePostRequest) (*domain.GroupPost, xerrors.FieldErrors, error) {
	fields := xerrors.FieldErrors{}
	if req.Body == "" {
		fields["body"] = "Post body is required"
	} else if len(req.Body) > maxPostBodyLen {
		fields["body"] = fmt.Sprintf("Post must not exceed %d characters", maxPostBodyLen)
	}
	if !fields.Empty() {
		return nil, fields, nil
	}

	if err := uc.requireMember(ctx, groupID, authorID); err != nil {
		return nil, nil, err
	}

	post := &domain.GroupPost{
		GroupID:  groupID,
		AuthorID: authorID,
		Body:     req.Body,
	}
	if err := uc.groups.CreatePost(ctx, post); err != nil {
		return nil, nil, err
	}

	uc.emit(ctx, groupID, ws.EventPostCreated, post)

	uc.logger.Info("Post created",
		zap.Int64("post_id", post.ID),
		zap.Int64("group_id", groupID))
	return post, nil, nil
}

func (uc *GroupUsecase) Posts(ctx context.Context, groupID int64, userID string, limit int) ([]domain.GroupPost, error) {
	if err := uc.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return uc.groups.ListPosts(ctx, groupID, limit)
}

// DeletePost removes a post. Only its author may delete it; the event lets
// subscribed members drop it from their feeds.
func (uc *GroupUsecase) DeletePost(ctx context.Context, postID int64, userID string) error {
	post, err := uc.groups.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return xerrors.ErrNotPostAuthor
	}

	if err := uc.groups.DeletePost(ctx, postID); err != nil {
		return err
	}

	uc.emit(ctx, post.GroupID, ws.EventPostDeleted, map[string]int64{"post_id": postID})
	return nil
}

func (uc *GroupUsecase) AddComment(ctx context.Context, postID int64, authorID string, req *domain.CreateCommentRequest) (*domain.PostComment, xerrors.FieldErrors, error) {
	fields := xerrors.FieldErrors{}
	if req.Body == "" {
		fields["body"] = "Comment body is required"
	} else if len(req.Body) > maxCommentBodyLen {
		fields["body"] = fmt.Sprintf("Comment must not exceed %d characters", maxCommentBodyLen)
	}
	if !fields.Empty() {
		return nil, fields, nil
	}

	post, err := uc.groups.GetPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if err := uc.requireMember(ctx, post.GroupID, authorID); err != nil {
		return nil, nil, err
	}

	comment := &domain.PostComment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     req.Body,
	}
	if err := uc.groups.CreateComment(ctx, comment); err != nil {
		return nil, nil, err
	}

	uc.emit(ctx, post.GroupID, ws.EventCommentAdded, comment)
	return comment, nil, nil
}

// LikePost records a like. Liking twice is a no-op and emits no event.
func (uc *GroupUsecase) LikePost(ctx context.Context, postID int64, userID string) error {
	post, err := uc.groups.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := uc.requireMember(ctx, post.GroupID, userID); err != nil {
		return err
	}

	liked, err := uc.groups.LikePost(ctx, postID, userID)
	if err != nil {
		return err
	}
	if liked {
		uc.emit(ctx, post.GroupID, ws.EventPostLiked, map[string]interface{}{
			"post_id": postID,
			"user_id": userID,
		})
	}
	return nil
}

// emit publishes a group event. Failures are logged; the write that caused
// the event has already committed.
func (uc *GroupUsecase) emit(ctx context.Context, groupID int64, event string, data interface{}) {
	if err := uc.publisher.Publish(ctx, ws.GroupChannel(groupID), event, data); err != nil {
		uc.logger.Warn("Failed to publish group event",
			zap.Int64("group_id", groupID),
			zap.String("event", event),
			zap.Error(err))
	}
}
