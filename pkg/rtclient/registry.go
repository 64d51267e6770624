package rtclient

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"sportmatch-service/pkg/xerrors"
)

// Registry owns the connection handle and the subscription table. All
// mutations happen synchronously within each call; event dispatch runs on a
// single reader goroutine, so per-channel delivery order follows the wire.
type Registry struct {
	mu        sync.Mutex
	transport Transport
	logger    *zap.Logger
	onError   func(channel string, err error)

	conn Conn
	subs map[string]*Subscription
}

func New(transport Transport, logger *zap.Logger) *Registry {
	return &Registry{
		transport: transport,
		logger:    logger,
		subs:      make(map[string]*Subscription),
	}
}

// OnChannelError installs the generic per-channel error observer. Errors are
// always logged; the observer is an optional extra hook.
func (r *Registry) OnChannelError(fn func(channel string, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = fn
}

// Connect establishes the realtime connection. Idempotent: an existing
// connection is reused, the transport is not re-dialed. Connection errors
// propagate to the caller; no retry is attempted here.
func (r *Registry) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return nil
	}

	conn, err := r.transport.Connect(ctx)
	if err != nil {
		return err
	}
	r.conn = conn

	go r.dispatchLoop(conn)
	return nil
}

// SubscribeChat subscribes to the caller's private chat channel and wires
// onMessage to the message-sent event. Repeat calls for the same user return
// the existing subscription unchanged: no second listener, no callback swap.
func (r *Registry) SubscribeChat(userID string, onMessage MessageHandler) (*Subscription, error) {
	handlers := map[string]MessageHandler{}
	if onMessage != nil {
		handlers[EventMessageSent] = onMessage
	}
	return r.subscribe(ChatChannel(userID), KindPrivate, handlers)
}

// SubscribeGroup subscribes to a public group channel. Only the callbacks
// provided are wired; omitted ones are a no-op, not an error.
func (r *Registry) SubscribeGroup(groupID int64, cbs GroupCallbacks) (*Subscription, error) {
	handlers := map[string]MessageHandler{}
	if cbs.OnPostCreated != nil {
		handlers[EventPostCreated] = cbs.OnPostCreated
	}
	if cbs.OnCommentAdded != nil {
		handlers[EventCommentAdded] = cbs.OnCommentAdded
	}
	if cbs.OnPostLiked != nil {
		handlers[EventPostLiked] = cbs.OnPostLiked
	}
	if cbs.OnPostDeleted != nil {
		handlers[EventPostDeleted] = cbs.OnPostDeleted
	}
	return r.subscribe(GroupChannel(groupID), KindPublic, handlers)
}

func (r *Registry) subscribe(name string, kind Kind, handlers map[string]MessageHandler) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil, xerrors.ErrNotConnected
	}

	if sub, ok := r.subs[name]; ok {
		return sub, nil
	}

	if err := r.conn.Subscribe(name); err != nil {
		return nil, err
	}

	sub := &Subscription{
		Name:     name,
		Kind:     kind,
		handlers: handlers,
	}
	r.subs[name] = sub
	return sub, nil
}

// Unsubscribe leaves the named channel. Unknown names are a no-op. A failed
// leave is reported but the local entry is removed regardless, so the
// registry never holds state pending a retry.
func (r *Registry) Unsubscribe(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsubscribeLocked(name)
}

// unsubscribeLocked requires r.mu held.
func (r *Registry) unsubscribeLocked(name string) {
	if _, ok := r.subs[name]; !ok {
		return
	}

	if r.conn != nil {
		if err := r.conn.Leave(name); err != nil {
			r.logger.Warn("Failed to leave channel",
				zap.String("channel", name),
				zap.Error(err))
			r.reportLocked(name, err)
		}
	}
	delete(r.subs, name)
}

// Teardown leaves every channel, clears the table, and closes the
// connection. Channel order is unspecified. Idempotent: a torn-down registry
// tolerates repeat calls. Reconnecting afterwards requires Connect.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name := range r.subs {
		r.unsubscribeLocked(name)
	}

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			r.logger.Warn("Failed to close realtime connection", zap.Error(err))
		}
		r.conn = nil
	}
}

// Subscriptions returns the currently registered channel names.
func (r *Registry) Subscriptions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.subs))
	for name := range r.subs {
		names = append(names, name)
	}
	return names
}

func (r *Registry) dispatchLoop(conn Conn) {
	for {
		event, err := conn.Read()
		if err != nil {
			r.mu.Lock()
			stale := r.conn != conn
			r.mu.Unlock()
			if !stale {
				// Connection dropped outside of teardown. Surface it and
				// leave reconnection to the caller.
				r.logger.Warn("Realtime connection closed", zap.Error(err))
				r.report("", err)
			}
			return
		}
		r.dispatch(event)
	}
}

func (r *Registry) dispatch(event *Event) {
	r.mu.Lock()
	sub, ok := r.subs[event.Channel]
	var handler MessageHandler
	if ok {
		handler = sub.handlers[event.Event]
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	if event.Event == eventSubscriptionError {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(event.Data, &payload)
		r.logger.Warn("Channel error",
			zap.String("channel", event.Channel),
			zap.String("message", payload.Message))
		r.report(event.Channel, &ChannelError{Channel: event.Channel, Message: payload.Message})
		return
	}

	if handler != nil {
		handler(event.Data)
	}
}

func (r *Registry) report(channel string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reportLocked(channel, err)
}

// reportLocked requires r.mu held.
func (r *Registry) reportLocked(channel string, err error) {
	if r.onError != nil {
		fn := r.onError
		go fn(channel, err)
	}
}

// ChannelError carries a per-channel failure from the server.
type ChannelError struct {
	Channel string
	Message string
}

func (e *ChannelError) Error() string {
	return "channel " + e.Channel + ": " + e.Message
}
