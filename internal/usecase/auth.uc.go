package usecase

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/jwtutil"
	"sportmatch-service/pkg/utils/id"
	"sportmatch-service/pkg/xerrors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 8

// UserStore is the slice of the user repository the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type AuthUsecase struct {
	users  UserStore
	tokens *jwtutil.Manager
	idGen  *id.Snowflake
	logger *zap.Logger
}

func NewAuthUsecase(users UserStore, tokens *jwtutil.Manager, idGen *id.Snowflake, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		tokens: tokens,
		idGen:  idGen,
		logger: logger,
	}
}

// Register creates the user together with an empty profile at setup step 1
// and returns a session token. The caller lands in the setup flow.
func (uc *AuthUsecase) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error) {
	if !emailRegex.MatchString(req.Email) {
		return nil, "", xerrors.ErrInvalidEmailFormat
	}
	if len(req.Password) < minPasswordLen {
		return nil, "", xerrors.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	uc.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, token, nil
}

// Login verifies credentials and issues a session token. A missing user and
// a wrong password produce the same error.
func (uc *AuthUsecase) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	user, err := uc.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, "", xerrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", xerrors.ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	uc.logger.Info("User logged in", zap.String("user_id", user.ID))
	return user, token, nil
}
