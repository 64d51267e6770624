package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/xerrors"
)

// FriendStore is the slice of the friend repository the request flow needs.
type FriendStore interface {
	Create(ctx context.Context, req *domain.FriendRequest) error
	GetByID(ctx context.Context, id string) (*domain.FriendRequest, error)
	ActiveBetween(ctx context.Context, userA, userB string) (bool, error)
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.FriendRequestStatus) error
	ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error)
	ListFriends(ctx context.Context, userID string) ([]string, error)
}

type FriendUsecase struct {
	friends FriendStore
	users   UserStore
	logger  *zap.Logger
}

func NewFriendUsecase(friends FriendStore, users UserStore, logger *zap.Logger) *FriendUsecase {
	return &FriendUsecase{
		friends: friends,
		users:   users,
		logger:  logger,
	}
}

// Send creates a pending request. At most one active request may exist
// between two users, regardless of direction.
func (uc *FriendUsecase) Send(ctx context.Context, fromUser, toUser string) (*domain.FriendRequest, error) {
	if fromUser == toUser {
		return nil, xerrors.ErrSelfFriendRequest
	}

	if _, err := uc.users.GetByID(ctx, toUser); err != nil {
		return nil, err
	}

	friends, err := uc.friends.AreFriends(ctx, fromUser, toUser)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, xerrors.ErrAlreadyFriends
	}

	active, err := uc.friends.ActiveBetween(ctx, fromUser, toUser)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, xerrors.ErrFriendRequestExists
	}

	req := &domain.FriendRequest{
		ID:       uuid.NewString(),
		FromUser: fromUser,
		ToUser:   toUser,
		Status:   domain.FriendPending,
	}
	if err := uc.friends.Create(ctx, req); err != nil {
		return nil, err
	}

	uc.logger.Info("Friend request sent",
		zap.String("request_id", req.ID),
		zap.String("from_user", fromUser),
		zap.String("to_user", toUser))
	return req, nil
}

// Respond accepts or declines a pending request. Only the recipient may
// respond; anyone else sees the request as unknown.
func (uc *FriendUsecase) Respond(ctx context.Context, userID, requestID string, accept bool) (*domain.FriendRequest, error) {
	req, err := uc.friends.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ToUser != userID {
		return nil, xerrors.ErrFriendRequestUnknown
	}

	status := domain.FriendDeclined
	if accept {
		status = domain.FriendAccepted
	}
	if err := uc.friends.UpdateStatus(ctx, requestID, status); err != nil {
		return nil, err
	}
	req.Status = status

	uc.logger.Info("Friend request resolved",
		zap.String("request_id", requestID),
		zap.String("status", string(status)))
	return req, nil
}

func (uc *FriendUsecase) Incoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return uc.friends.ListIncoming(ctx, userID)
}

func (uc *FriendUsecase) Friends(ctx context.Context, userID string) ([]string, error) {
	return uc.friends.ListFriends(ctx, userID)
}
