package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/internal/ws"
	"sportmatch-service/pkg/utils/id"
	"sportmatch-service/pkg/xerrors"
)

const maxMessageLen = 2000

// Publisher pushes realtime events onto the fan-out channel.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, data interface{}) error
}

// ChatStore is the slice of the chat repository the messaging flow needs.
type ChatStore interface {
	Insert(ctx context.Context, msg *domain.ChatMessage) error
	Conversation(ctx context.Context, userID, otherID string, limit int) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, userID, otherID string) error
}

// FriendChecker guards messaging behind an accepted friendship.
type FriendChecker interface {
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
}

type ChatUsecase struct {
	messages  ChatStore
	friends   FriendChecker
	publisher Publisher
	logger    *zap.Logger
}

func NewChatUsecase(messages ChatStore, friends FriendChecker, publisher Publisher, logger *zap.Logger) *ChatUsecase {
	return &ChatUsecase{
		messages:  messages,
		friends:   friends,
		publisher: publisher,
		logger:    logger,
	}
}

// Send persists a message to a friend and emits it on the recipient's chat
// channel. Delivery failures do not fail the send; the message is already
// stored and shows up on the next conversation fetch.
func (uc *ChatUsecase) Send(ctx context.Context, fromUser string, req *domain.SendMessageRequest) (*domain.ChatMessage, xerrors.FieldErrors, error) {
	fields := xerrors.FieldErrors{}
	if req.ToUser == "" {
		fields["to_user"] = "Recipient is required"
	}
	if req.Body == "" {
		fields["body"] = "Message body is required"
	} else if len(req.Body) > maxMessageLen {
		fields["body"] = fmt.Sprintf("Message must not exceed %d characters", maxMessageLen)
	}
	if !fields.Empty() {
		return nil, fields, nil
	}

	friends, err := uc.friends.AreFriends(ctx, fromUser, req.ToUser)
	if err != nil {
		return nil, nil, err
	}
	if !friends {
		return nil, nil, xerrors.ErrNotFriends
	}

	msg := &domain.ChatMessage{
		ID:       id.GenerateULID("msg"),
		FromUser: fromUser,
		ToUser:   req.ToUser,
		Body:     req.Body,
	}
	if err := uc.messages.Insert(ctx, msg); err != nil {
		return nil, nil, err
	}

	if err := uc.publisher.Publish(ctx, ws.ChatChannel(req.ToUser), ws.EventMessageSent, msg); err != nil {
		uc.logger.Warn("Failed to publish chat message event",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	uc.logger.Info("Message sent",
		zap.String("message_id", msg.ID),
		zap.String("from_user", fromUser),
		zap.String("to_user", req.ToUser))
	return msg, nil, nil
}

// Conversation returns the message history with a friend, newest first, and
// marks the other side's messages as read.
func (uc *ChatUsecase) Conversation(ctx context.Context, userID, otherID string, limit int) ([]domain.ChatMessage, error) {
	friends, err := uc.friends.AreFriends(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, xerrors.ErrNotFriends
	}

	msgs, err := uc.messages.Conversation(ctx, userID, otherID, limit)
	if err != nil {
		return nil, err
	}

	if err := uc.messages.MarkRead(ctx, userID, otherID); err != nil {
		uc.logger.Warn("Failed to mark conversation read",
			zap.String("user_id", userID),
			zap.String("other_id", otherID),
			zap.Error(err))
	}
	return msgs, nil
}
