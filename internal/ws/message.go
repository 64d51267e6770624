package ws

import (
	"encoding/json"
	"strconv"
)

// Channel and event names shared with connected clients.
const (
	EventMessageSent  = "message.sent"
	EventPostCreated  = "post.created"
	EventCommentAdded = "comment.added"
	EventPostLiked    = "post.liked"
	EventPostDeleted  = "post.deleted"

	// Control events emitted by the hub itself.
	EventSubscribed        = "subscription.succeeded"
	EventSubscriptionError = "subscription.error"
)

func ChatChannel(userID string) string {
	return "chat." + userID
}

func GroupChannel(groupID int64) string {
	return "group." + strconv.FormatInt(groupID, 10)
}

// Event is the frame pushed to subscribers.
type Event struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ClientFrame is what a connected client sends upstream.
type ClientFrame struct {
	Action  string `json:"action"` // subscribe | unsubscribe
	Channel string `json:"channel"`
}
