package rtclient_test

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sportmatch-service/pkg/rtclient"
	"sportmatch-service/pkg/xerrors"
)

type fakeConn struct {
	mu         sync.Mutex
	subscribes []string
	leaves     []string
	closed     bool
	leaveErr   error

	events chan *rtclient.Event
}

func (c *fakeConn) Subscribe(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribes = append(c.subscribes, name)
	return nil
}

func (c *fakeConn) Leave(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaves = append(c.leaves, name)
	return c.leaveErr
}

func (c *fakeConn) Read() (*rtclient.Event, error) {
	ev, ok := <-c.events
	if !ok {
		return nil, io.EOF
	}
	return ev, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

func (c *fakeConn) push(channel, event string, data interface{}) {
	raw, _ := json.Marshal(data)
	c.events <- &rtclient.Event{Channel: channel, Event: event, Data: raw}
}

func (c *fakeConn) subscribeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscribes)
}

func (c *fakeConn) leaveNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.leaves...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeTransport struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (t *fakeTransport) Connect(ctx context.Context) (rtclient.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conn := &fakeConn{events: make(chan *rtclient.Event, 16)}
	t.conns = append(t.conns, conn)
	return conn, nil
}

func (t *fakeTransport) dials() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

func (t *fakeTransport) last() *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conns[len(t.conns)-1]
}

func newRegistry(t *testing.T) (*rtclient.Registry, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{}
	reg := rtclient.New(transport, zap.NewNop())
	require.NoError(t, reg.Connect(context.Background()))
	return reg, transport
}

func TestSubscribeBeforeConnect(t *testing.T) {
	reg := rtclient.New(&fakeTransport{}, zap.NewNop())

	_, err := reg.SubscribeChat("u1", nil)

	assert.ErrorIs(t, err, xerrors.ErrNotConnected)
}

func TestConnectIsIdempotent(t *testing.T) {
	reg, transport := newRegistry(t)

	require.NoError(t, reg.Connect(context.Background()))
	require.NoError(t, reg.Connect(context.Background()))

	assert.Equal(t, 1, transport.dials())
	reg.Teardown()
}

// A second subscribe to the same channel returns the existing handle and
// sends no second frame to the server.
func TestSubscribeDeduplicates(t *testing.T) {
	reg, transport := newRegistry(t)
	defer reg.Teardown()

	first, err := reg.SubscribeChat("u1", func(json.RawMessage) {})
	require.NoError(t, err)
	second, err := reg.SubscribeChat("u1", func(json.RawMessage) {})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, transport.last().subscribeCount())
	assert.Len(t, reg.Subscriptions(), 1)
}

func TestDispatchInvokesHandler(t *testing.T) {
	reg, transport := newRegistry(t)
	defer reg.Teardown()

	got := make(chan json.RawMessage, 1)
	_, err := reg.SubscribeChat("u1", func(data json.RawMessage) {
		got <- data
	})
	require.NoError(t, err)

	transport.last().push("chat.u1", rtclient.EventMessageSent, map[string]string{"body": "hi"})

	select {
	case data := <-got:
		assert.JSONEq(t, `{"body":"hi"}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestDispatchIgnoresUnknownChannel(t *testing.T) {
	reg, transport := newRegistry(t)
	defer reg.Teardown()

	got := make(chan json.RawMessage, 1)
	_, err := reg.SubscribeChat("u1", func(data json.RawMessage) {
		got <- data
	})
	require.NoError(t, err)

	transport.last().push("chat.someone-else", rtclient.EventMessageSent, map[string]string{"body": "hi"})
	transport.last().push("chat.u1", rtclient.EventMessageSent, map[string]string{"body": "mine"})

	data := <-got
	assert.JSONEq(t, `{"body":"mine"}`, string(data))
	assert.Empty(t, got)
}

func TestGroupCallbacksRouteByEvent(t *testing.T) {
	reg, transport := newRegistry(t)
	defer reg.Teardown()

	events := make(chan string, 4)
	_, err := reg.SubscribeGroup(7, rtclient.GroupCallbacks{
		OnPostCreated: func(json.RawMessage) { events <- "created" },
		OnPostLiked:   func(json.RawMessage) { events <- "liked" },
	})
	require.NoError(t, err)

	conn := transport.last()
	conn.push("group.7", rtclient.EventPostCreated, nil)
	conn.push("group.7", rtclient.EventCommentAdded, nil) // no callback wired
	conn.push("group.7", rtclient.EventPostLiked, nil)

	assert.Equal(t, "created", <-events)
	assert.Equal(t, "liked", <-events)
}

func TestUnsubscribeUnknownIsNoop(t *testing.T) {
	reg, _ := newRegistry(t)
	defer reg.Teardown()

	reg.Unsubscribe("chat.unknown")
	reg.Unsubscribe("chat.unknown")
}

// A failed leave still removes the local entry; a later subscribe starts
// fresh instead of reusing stale state.
func TestUnsubscribeRemovesEntryOnLeaveFailure(t *testing.T) {
	reg, transport := newRegistry(t)
	defer reg.Teardown()

	_, err := reg.SubscribeChat("u1", nil)
	require.NoError(t, err)

	conn := transport.last()
	conn.mu.Lock()
	conn.leaveErr = io.ErrClosedPipe
	conn.mu.Unlock()

	reg.Unsubscribe("chat.u1")

	assert.Empty(t, reg.Subscriptions())
}

func TestTeardownClearsEverything(t *testing.T) {
	reg, transport := newRegistry(t)

	_, err := reg.SubscribeChat("u1", nil)
	require.NoError(t, err)
	_, err = reg.SubscribeGroup(7, rtclient.GroupCallbacks{})
	require.NoError(t, err)

	reg.Teardown()

	conn := transport.last()
	assert.ElementsMatch(t, []string{"chat.u1", "group.7"}, conn.leaveNames())
	assert.True(t, conn.isClosed())
	assert.Empty(t, reg.Subscriptions())

	// Torn down means disconnected until the next Connect.
	_, err = reg.SubscribeChat("u1", nil)
	assert.ErrorIs(t, err, xerrors.ErrNotConnected)

	// Repeat teardown is safe.
	reg.Teardown()
}

func TestReconnectAfterTeardown(t *testing.T) {
	reg, transport := newRegistry(t)

	_, err := reg.SubscribeChat("u1", nil)
	require.NoError(t, err)
	reg.Teardown()

	require.NoError(t, reg.Connect(context.Background()))
	defer reg.Teardown()

	assert.Equal(t, 2, transport.dials())

	_, err = reg.SubscribeChat("u1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"chat.u1"}, reg.Subscriptions())
}

func TestChannelErrorReachesObserver(t *testing.T) {
	reg, transport := newRegistry(t)
	defer reg.Teardown()

	errs := make(chan error, 1)
	reg.OnChannelError(func(channel string, err error) {
		errs <- err
	})

	_, err := reg.SubscribeGroup(7, rtclient.GroupCallbacks{})
	require.NoError(t, err)

	transport.last().push("group.7", "subscription.error", map[string]string{"message": "not a member"})

	select {
	case err := <-errs:
		var chErr *rtclient.ChannelError
		require.ErrorAs(t, err, &chErr)
		assert.Equal(t, "group.7", chErr.Channel)
		assert.Equal(t, "not a member", chErr.Message)
	case <-time.After(time.Second):
		t.Fatal("observer was not invoked")
	}
}
