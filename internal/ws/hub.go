package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the CORS layer in front
	},
}

// Hub owns every live websocket connection and the channel membership table.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{} // channel name -> members

	auth   ChannelAuthorizer
	logger *zap.Logger
}

func NewHub(auth ChannelAuthorizer, logger *zap.Logger) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		channels: make(map[string]map[*Client]struct{}),
		auth:     auth,
		logger:   logger,
	}
}

// Client is one websocket connection with its channel subscriptions.
type Client struct {
	ID       string
	UserID   string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
	channels map[string]struct{}
}

// ServeWS upgrades the request and starts the client pumps. The caller has
// already authenticated the user.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket connection",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	client := &Client{
		ID:       userID + "_" + uuid.NewString(),
		UserID:   userID,
		conn:     conn,
		send:     make(chan []byte, 256),
		hub:      h,
		channels: make(map[string]struct{}),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("Websocket connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", userID))

	go client.writePump()
	go client.readPump()
}

// Dispatch sends an event to every local member of its channel. Delivery
// order within one channel follows the order events arrive here.
func (h *Hub) Dispatch(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.channels[event.Channel] {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("Client send buffer full, dropping event",
				zap.String("client_id", client.ID),
				zap.String("channel", event.Channel))
		}
	}
}

func (h *Hub) subscribe(ctx context.Context, c *Client, channel string) {
	if err := h.auth.Authorize(ctx, c.UserID, channel); err != nil {
		h.logger.Warn("Channel subscription rejected",
			zap.String("user_id", c.UserID),
			zap.String("channel", channel),
			zap.Error(err))
		c.sendControl(channel, EventSubscriptionError, err.Error())
		return
	}

	h.mu.Lock()
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]struct{})
	}
	h.channels[channel][c] = struct{}{}
	c.channels[channel] = struct{}{}
	h.mu.Unlock()

	c.sendControl(channel, EventSubscribed, "")
}

func (h *Hub) unsubscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropMembership(c, channel)
}

// dropMembership requires h.mu held.
func (h *Hub) dropMembership(c *Client, channel string) {
	delete(c.channels, channel)
	if members, ok := h.channels[channel]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for channel := range c.channels {
		h.dropMembership(c, channel)
	}
	close(c.send)
	h.mu.Unlock()

	h.logger.Info("Websocket disconnected",
		zap.String("client_id", c.ID),
		zap.String("user_id", c.UserID))
}

// ClientCount is used by the health endpoint.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump handles subscribe/unsubscribe frames from the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("Websocket read error",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		var frame ClientFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.sendControl("", EventSubscriptionError, "invalid frame")
			continue
		}

		switch frame.Action {
		case "subscribe":
			c.hub.subscribe(context.Background(), c, frame.Channel)
		case "unsubscribe":
			c.hub.unsubscribe(c, frame.Channel)
		default:
			c.sendControl(frame.Channel, EventSubscriptionError, "unknown action: "+frame.Action)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendControl(channel, event, message string) {
	var data json.RawMessage
	if message != "" {
		data, _ = json.Marshal(map[string]string{"message": message})
	}
	payload, err := json.Marshal(Event{Channel: channel, Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}
