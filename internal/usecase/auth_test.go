package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/jwtutil"
	"sportmatch-service/pkg/utils/id"
	"sportmatch-service/pkg/xerrors"
)

type memUserStore struct {
	byEmail map[string]*domain.User
}

func (m *memUserStore) Create(ctx context.Context, user *domain.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return xerrors.ErrEmailAlreadyInUse
	}
	user.CreatedAt = time.Now()
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	return user, nil
}

func (m *memUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func newAuthUsecase() (*AuthUsecase, *memUserStore) {
	store := &memUserStore{byEmail: map[string]*domain.User{}}
	sf, _ := id.NewSnowflake(1)
	tokens := jwtutil.NewManager("test-secret", "sportmatch", "sportmatch-web", time.Hour)
	return NewAuthUsecase(store, tokens, sf, zap.NewNop()), store
}

func TestRegisterValidation(t *testing.T) {
	uc, _ := newAuthUsecase()

	_, _, err := uc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "not-an-email",
		Password: "longenough",
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidEmailFormat)

	_, _, err = uc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "a@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, xerrors.ErrPasswordTooShort)
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	uc, store := newAuthUsecase()

	user, token, err := uc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "a@example.com",
		Password: "correct horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)

	stored := store.byEmail["a@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc, _ := newAuthUsecase()

	_, _, err := uc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "a@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, _, err = uc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "a@example.com",
		Password: "correct horse",
	})
	assert.ErrorIs(t, err, xerrors.ErrEmailAlreadyInUse)
}

// Unknown email and wrong password are indistinguishable to the caller.
func TestLoginInvalidCredentials(t *testing.T) {
	uc, _ := newAuthUsecase()

	_, _, err := uc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "a@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, _, err = uc.Login(context.Background(), &domain.LoginRequest{
		Email:    "a@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)

	_, _, err = uc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestLoginIssuesValidToken(t *testing.T) {
	uc, _ := newAuthUsecase()
	tokens := jwtutil.NewManager("test-secret", "sportmatch", "sportmatch-web", time.Hour)

	registered, _, err := uc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "a@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	user, token, err := uc.Login(context.Background(), &domain.LoginRequest{
		Email:    "a@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := tokens.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
}
