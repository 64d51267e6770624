// Package rtclient maintains a single realtime connection to the sportmatch
// websocket endpoint and a deduplicated set of named channel subscriptions.
// It is the client-side counterpart of the server hub: subscriptions are
// created on first use, reused on repeat calls, and torn down explicitly.
package rtclient

import (
	"encoding/json"
	"strconv"
)

type Kind string

const (
	// KindPrivate channels require the session token handshake during dial;
	// the server only admits the owning user.
	KindPrivate Kind = "private"
	KindPublic  Kind = "public"
)

// Event names, mirrored from the server hub.
const (
	EventMessageSent  = "message.sent"
	EventPostCreated  = "post.created"
	EventCommentAdded = "comment.added"
	EventPostLiked    = "post.liked"
	EventPostDeleted  = "post.deleted"

	eventSubscriptionError = "subscription.error"
)

func ChatChannel(userID string) string {
	return "chat." + userID
}

func GroupChannel(groupID int64) string {
	return "group." + strconv.FormatInt(groupID, 10)
}

// Event is one frame received from the server.
type Event struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type MessageHandler func(data json.RawMessage)

// GroupCallbacks configures the group channel events. Nil slots attach no
// listener for that event.
type GroupCallbacks struct {
	OnPostCreated  MessageHandler
	OnCommentAdded MessageHandler
	OnPostLiked    MessageHandler
	OnPostDeleted  MessageHandler
}

// Subscription is the registry's bookkeeping entry for one channel. At most
// one live Subscription exists per channel name.
type Subscription struct {
	Name string
	Kind Kind

	handlers map[string]MessageHandler
}
