package ws

import (
	"context"
	"strconv"
	"strings"

	"sportmatch-service/pkg/xerrors"
)

// GroupMembership is satisfied by the group repository.
type GroupMembership interface {
	IsMember(ctx context.Context, groupID int64, userID string) (bool, error)
}

// ChannelAuthorizer decides whether a user may join a named channel.
type ChannelAuthorizer interface {
	Authorize(ctx context.Context, userID, channel string) error
}

type channelAuthorizer struct {
	groups GroupMembership
}

func NewChannelAuthorizer(groups GroupMembership) ChannelAuthorizer {
	return &channelAuthorizer{groups: groups}
}

// Authorize enforces the two channel families: chat.<userId> is private to
// its owner, group.<groupId> is open to group members.
func (a *channelAuthorizer) Authorize(ctx context.Context, userID, channel string) error {
	switch {
	case strings.HasPrefix(channel, "chat."):
		if strings.TrimPrefix(channel, "chat.") != userID {
			return xerrors.ErrChannelUnauthorized
		}
		return nil

	case strings.HasPrefix(channel, "group."):
		groupID, err := strconv.ParseInt(strings.TrimPrefix(channel, "group."), 10, 64)
		if err != nil {
			return xerrors.ErrChannelUnauthorized
		}
		member, err := a.groups.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !member {
			return xerrors.ErrChannelUnauthorized
		}
		return nil

	default:
		return xerrors.ErrChannelUnauthorized
	}
}
