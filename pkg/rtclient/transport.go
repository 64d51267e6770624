package rtclient

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is one live realtime connection.
type Conn interface {
	Subscribe(name string) error
	Leave(name string) error
	Read() (*Event, error)
	Close() error
}

// Transport dials the realtime endpoint. The registry calls Connect exactly
// once per connection lifetime.
type Transport interface {
	Connect(ctx context.Context) (Conn, error)
}

type clientFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// WebsocketTransport dials the service's /ws endpoint over gorilla/websocket.
// The session token doubles as the private-channel authorization handshake:
// the server validates it before any channel can be joined.
type WebsocketTransport struct {
	URL   string
	Token string
}

func NewWebsocketTransport(url, token string) *WebsocketTransport {
	return &WebsocketTransport{URL: url, Token: token}
}

func (t *WebsocketTransport) Connect(ctx context.Context) (Conn, error) {
	header := http.Header{}
	if t.Token != "" {
		header.Set("Authorization", "Bearer "+t.Token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.URL, header)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *wsConn) Subscribe(name string) error {
	return c.writeFrame(clientFrame{Action: "subscribe", Channel: name})
}

func (c *wsConn) Leave(name string) error {
	return c.writeFrame(clientFrame{Action: "unsubscribe", Channel: name})
}

func (c *wsConn) writeFrame(frame clientFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame)
}

func (c *wsConn) Read() (*Event, error) {
	event := &Event{}
	if err := c.conn.ReadJSON(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (c *wsConn) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Close()
}
