package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/xerrors"
)

type fakeGroupStore struct {
	groups  map[int64]*domain.Group
	members map[int64]map[string]bool
	posts   map[int64]*domain.GroupPost
	likes   map[int64]map[string]bool

	nextPostID int64
	deleted    []int64
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		groups:     map[int64]*domain.Group{},
		members:    map[int64]map[string]bool{},
		posts:      map[int64]*domain.GroupPost{},
		likes:      map[int64]map[string]bool{},
		nextPostID: 1,
	}
}

func (f *fakeGroupStore) CreateGroup(ctx context.Context, group *domain.Group) error {
	group.ID = int64(len(f.groups) + 1)
	f.groups[group.ID] = group
	f.members[group.ID] = map[string]bool{group.OwnerID: true}
	return nil
}

func (f *fakeGroupStore) GetGroup(ctx context.Context, groupID int64) (*domain.Group, error) {
	g, ok := f.groups[groupID]
	if !ok {
		return nil, xerrors.ErrGroupNotFound
	}
	return g, nil
}

func (f *fakeGroupStore) IsMember(ctx context.Context, groupID int64, userID string) (bool, error) {
	return f.members[groupID][userID], nil
}

func (f *fakeGroupStore) AddMember(ctx context.Context, groupID int64, userID string) error {
	if _, ok := f.groups[groupID]; !ok {
		return xerrors.ErrGroupNotFound
	}
	if f.members[groupID][userID] {
		return xerrors.ErrAlreadyMember
	}
	f.members[groupID][userID] = true
	return nil
}

func (f *fakeGroupStore) RemoveMember(ctx context.Context, groupID int64, userID string) error {
	if !f.members[groupID][userID] {
		return xerrors.ErrNotGroupMember
	}
	delete(f.members[groupID], userID)
	return nil
}

func (f *fakeGroupStore) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	return nil, nil
}

func (f *fakeGroupStore) CreatePost(ctx context.Context, post *domain.GroupPost) error {
	post.ID = f.nextPostID
	f.nextPostID++
	f.posts[post.ID] = post
	return nil
}

func (f *fakeGroupStore) GetPost(ctx context.Context, postID int64) (*domain.GroupPost, error) {
	p, ok := f.posts[postID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

func (f *fakeGroupStore) ListPosts(ctx context.Context, groupID int64, limit int) ([]domain.GroupPost, error) {
	return nil, nil
}

func (f *fakeGroupStore) DeletePost(ctx context.Context, postID int64) error {
	if _, ok := f.posts[postID]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.posts, postID)
	f.deleted = append(f.deleted, postID)
	return nil
}

func (f *fakeGroupStore) CreateComment(ctx context.Context, comment *domain.PostComment) error {
	comment.ID = 1
	return nil
}

func (f *fakeGroupStore) LikePost(ctx context.Context, postID int64, userID string) (bool, error) {
	if f.likes[postID] == nil {
		f.likes[postID] = map[string]bool{}
	}
	if f.likes[postID][userID] {
		return false, nil
	}
	f.likes[postID][userID] = true
	return true, nil
}

func newGroupFixture(t *testing.T) (*GroupUsecase, *fakeGroupStore, *fakePublisher) {
	t.Helper()
	store := newFakeGroupStore()
	pub := &fakePublisher{}
	uc := NewGroupUsecase(store, pub, zap.NewNop())

	_, fields, err := uc.Create(context.Background(), "owner", &domain.CreateGroupRequest{Name: "Morning Runners"})
	require.NoError(t, err)
	require.True(t, fields.Empty())
	return uc, store, pub
}

func TestCreatePostRequiresMembership(t *testing.T) {
	uc, store, pub := newGroupFixture(t)

	_, _, err := uc.CreatePost(context.Background(), 1, "stranger", &domain.CreatePostRequest{Body: "hi"})

	assert.ErrorIs(t, err, xerrors.ErrNotGroupMember)
	assert.Empty(t, store.posts)
	assert.Empty(t, pub.events)
}

func TestCreatePostEmitsEvent(t *testing.T) {
	uc, _, pub := newGroupFixture(t)

	post, fields, err := uc.CreatePost(context.Background(), 1, "owner", &domain.CreatePostRequest{Body: "hi"})

	require.NoError(t, err)
	require.True(t, fields.Empty())
	require.Len(t, pub.events, 1)
	assert.Equal(t, "group.1", pub.events[0].channel)
	assert.Equal(t, "post.created", pub.events[0].event)
	assert.NotZero(t, post.ID)
}

func TestDeletePostAuthorOnly(t *testing.T) {
	uc, store, pub := newGroupFixture(t)
	require.NoError(t, uc.Join(context.Background(), 1, "member"))

	post, _, err := uc.CreatePost(context.Background(), 1, "owner", &domain.CreatePostRequest{Body: "hi"})
	require.NoError(t, err)
	pub.events = nil

	err = uc.DeletePost(context.Background(), post.ID, "member")
	assert.ErrorIs(t, err, xerrors.ErrNotPostAuthor)
	assert.Empty(t, store.deleted)

	err = uc.DeletePost(context.Background(), post.ID, "owner")
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "post.deleted", pub.events[0].event)
}

// The second like is silently absorbed and emits nothing.
func TestLikePostOncePerUser(t *testing.T) {
	uc, _, pub := newGroupFixture(t)

	post, _, err := uc.CreatePost(context.Background(), 1, "owner", &domain.CreatePostRequest{Body: "hi"})
	require.NoError(t, err)
	pub.events = nil

	require.NoError(t, uc.LikePost(context.Background(), post.ID, "owner"))
	require.NoError(t, uc.LikePost(context.Background(), post.ID, "owner"))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "post.liked", pub.events[0].event)
}

func TestAddCommentEmitsEvent(t *testing.T) {
	uc, _, pub := newGroupFixture(t)

	post, _, err := uc.CreatePost(context.Background(), 1, "owner", &domain.CreatePostRequest{Body: "hi"})
	require.NoError(t, err)
	pub.events = nil

	comment, fields, err := uc.AddComment(context.Background(), post.ID, "owner", &domain.CreateCommentRequest{Body: "nice"})

	require.NoError(t, err)
	require.True(t, fields.Empty())
	assert.NotZero(t, comment.ID)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "comment.added", pub.events[0].event)
}
