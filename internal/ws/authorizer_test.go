package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"sportmatch-service/pkg/xerrors"
)

type fakeMembership struct {
	members map[int64]map[string]bool
}

func (f *fakeMembership) IsMember(ctx context.Context, groupID int64, userID string) (bool, error) {
	return f.members[groupID][userID], nil
}

func TestAuthorizeChatChannel(t *testing.T) {
	auth := NewChannelAuthorizer(&fakeMembership{})

	assert.NoError(t, auth.Authorize(context.Background(), "u1", "chat.u1"))
	assert.ErrorIs(t, auth.Authorize(context.Background(), "u1", "chat.u2"), xerrors.ErrChannelUnauthorized)
}

func TestAuthorizeGroupChannel(t *testing.T) {
	auth := NewChannelAuthorizer(&fakeMembership{
		members: map[int64]map[string]bool{7: {"u1": true}},
	})

	assert.NoError(t, auth.Authorize(context.Background(), "u1", "group.7"))
	assert.ErrorIs(t, auth.Authorize(context.Background(), "u2", "group.7"), xerrors.ErrChannelUnauthorized)
	assert.ErrorIs(t, auth.Authorize(context.Background(), "u1", "group.8"), xerrors.ErrChannelUnauthorized)
}

func TestAuthorizeMalformedChannel(t *testing.T) {
	auth := NewChannelAuthorizer(&fakeMembership{})

	assert.ErrorIs(t, auth.Authorize(context.Background(), "u1", "group.abc"), xerrors.ErrChannelUnauthorized)
	assert.ErrorIs(t, auth.Authorize(context.Background(), "u1", "presence.lobby"), xerrors.ErrChannelUnauthorized)
}
