package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dialHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, userID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestHubSubscribeAndDispatch(t *testing.T) {
	hub := NewHub(NewChannelAuthorizer(&fakeMembership{}), zap.NewNop())
	conn := dialHub(t, hub, "u1")

	require.NoError(t, conn.WriteJSON(ClientFrame{Action: "subscribe", Channel: "chat.u1"}))

	ack := readEvent(t, conn)
	require.Equal(t, EventSubscribed, ack.Event)
	require.Equal(t, "chat.u1", ack.Channel)

	payload, _ := json.Marshal(map[string]string{"body": "hello"})
	hub.Dispatch(Event{Channel: "chat.u1", Event: EventMessageSent, Data: payload})

	event := readEvent(t, conn)
	assert.Equal(t, EventMessageSent, event.Event)
	assert.JSONEq(t, `{"body":"hello"}`, string(event.Data))
}

func TestHubRejectsForeignChatChannel(t *testing.T) {
	hub := NewHub(NewChannelAuthorizer(&fakeMembership{}), zap.NewNop())
	conn := dialHub(t, hub, "u1")

	require.NoError(t, conn.WriteJSON(ClientFrame{Action: "subscribe", Channel: "chat.u2"}))

	event := readEvent(t, conn)
	assert.Equal(t, EventSubscriptionError, event.Event)
	assert.Equal(t, "chat.u2", event.Channel)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(NewChannelAuthorizer(&fakeMembership{}), zap.NewNop())
	conn := dialHub(t, hub, "u1")

	require.NoError(t, conn.WriteJSON(ClientFrame{Action: "subscribe", Channel: "chat.u1"}))
	readEvent(t, conn) // ack

	require.NoError(t, conn.WriteJSON(ClientFrame{Action: "unsubscribe", Channel: "chat.u1"}))

	// Unsubscribe has no ack; give the hub a moment to process the frame.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.channels["chat.u1"]) == 0
	}, time.Second, 10*time.Millisecond)

	hub.Dispatch(Event{Channel: "chat.u1", Event: EventMessageSent})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var event Event
	err := conn.ReadJSON(&event)
	assert.Error(t, err, "no event should arrive after unsubscribe")
}

func TestHubGroupChannelMembership(t *testing.T) {
	members := &fakeMembership{members: map[int64]map[string]bool{7: {"u1": true}}}
	hub := NewHub(NewChannelAuthorizer(members), zap.NewNop())

	member := dialHub(t, hub, "u1")
	outsider := dialHub(t, hub, "u2")

	require.NoError(t, member.WriteJSON(ClientFrame{Action: "subscribe", Channel: "group.7"}))
	assert.Equal(t, EventSubscribed, readEvent(t, member).Event)

	require.NoError(t, outsider.WriteJSON(ClientFrame{Action: "subscribe", Channel: "group.7"}))
	assert.Equal(t, EventSubscriptionError, readEvent(t, outsider).Event)
}

func TestHubClientCount(t *testing.T) {
	hub := NewHub(NewChannelAuthorizer(&fakeMembership{}), zap.NewNop())
	require.Equal(t, 0, hub.ClientCount())

	conn := dialHub(t, hub, "u1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
