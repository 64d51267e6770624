package usecase

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/xerrors"
)

type fakeChatStore struct {
	inserted []*domain.ChatMessage
	marked   [][2]string
}

func (f *fakeChatStore) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	f.inserted = append(f.inserted, msg)
	return nil
}

func (f *fakeChatStore) Conversation(ctx context.Context, userID, otherID string, limit int) ([]domain.ChatMessage, error) {
	return nil, nil
}

func (f *fakeChatStore) MarkRead(ctx context.Context, userID, otherID string) error {
	f.marked = append(f.marked, [2]string{userID, otherID})
	return nil
}

type fakeFriendChecker struct {
	friends bool
}

func (f *fakeFriendChecker) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	return f.friends, nil
}

type publishedEvent struct {
	channel string
	event   string
	data    interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, channel, event string, data interface{}) error {
	f.events = append(f.events, publishedEvent{channel: channel, event: event, data: data})
	return f.err
}

func TestSendRequiresFriendship(t *testing.T) {
	store := &fakeChatStore{}
	uc := NewChatUsecase(store, &fakeFriendChecker{friends: false}, &fakePublisher{}, zap.NewNop())

	_, _, err := uc.Send(context.Background(), "u1", &domain.SendMessageRequest{
		ToUser: "u2",
		Body:   "hey",
	})

	assert.ErrorIs(t, err, xerrors.ErrNotFriends)
	assert.Empty(t, store.inserted)
}

func TestSendStoresAndPublishes(t *testing.T) {
	store := &fakeChatStore{}
	pub := &fakePublisher{}
	uc := NewChatUsecase(store, &fakeFriendChecker{friends: true}, pub, zap.NewNop())

	msg, fields, err := uc.Send(context.Background(), "u1", &domain.SendMessageRequest{
		ToUser: "u2",
		Body:   "hey",
	})

	require.NoError(t, err)
	require.True(t, fields.Empty())
	require.Len(t, store.inserted, 1)
	assert.NotEmpty(t, msg.ID)

	// The event targets the recipient's private channel.
	require.Len(t, pub.events, 1)
	assert.Equal(t, "chat.u2", pub.events[0].channel)
	assert.Equal(t, "message.sent", pub.events[0].event)
}

func TestSendValidatesBody(t *testing.T) {
	uc := NewChatUsecase(&fakeChatStore{}, &fakeFriendChecker{friends: true}, &fakePublisher{}, zap.NewNop())

	_, fields, err := uc.Send(context.Background(), "u1", &domain.SendMessageRequest{ToUser: "u2"})

	require.NoError(t, err)
	assert.Contains(t, fields, "body")
}

// A broken event pipeline must not fail the send; the message is durable.
func TestSendSurvivesPublishFailure(t *testing.T) {
	store := &fakeChatStore{}
	pub := &fakePublisher{err: io.ErrClosedPipe}
	uc := NewChatUsecase(store, &fakeFriendChecker{friends: true}, pub, zap.NewNop())

	msg, fields, err := uc.Send(context.Background(), "u1", &domain.SendMessageRequest{
		ToUser: "u2",
		Body:   "hey",
	})

	require.NoError(t, err)
	assert.True(t, fields.Empty())
	assert.NotNil(t, msg)
	assert.Len(t, store.inserted, 1)
}

func TestConversationMarksRead(t *testing.T) {
	store := &fakeChatStore{}
	uc := NewChatUsecase(store, &fakeFriendChecker{friends: true}, &fakePublisher{}, zap.NewNop())

	_, err := uc.Conversation(context.Background(), "u1", "u2", 0)

	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"u1", "u2"}}, store.marked)
}

func TestConversationRequiresFriendship(t *testing.T) {
	uc := NewChatUsecase(&fakeChatStore{}, &fakeFriendChecker{friends: false}, &fakePublisher{}, zap.NewNop())

	_, err := uc.Conversation(context.Background(), "u1", "u2", 0)

	assert.ErrorIs(t, err, xerrors.ErrNotFriends)
}
