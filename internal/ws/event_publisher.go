package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const realtimeEventsKey = "realtime_events"

// EventPublisher fans realtime events out over redis so every service
// instance can deliver them to its local websocket clients.
type EventPublisher struct {
	rdb *redis.Client
}

func NewEventPublisher(rdb *redis.Client) *EventPublisher {
	return &EventPublisher{rdb: rdb}
}

func (p *EventPublisher) Publish(ctx context.Context, channel, event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(Event{
		Channel: channel,
		Event:   event,
		Data:    raw,
	})
	if err != nil {
		return err
	}

	if err := p.rdb.Publish(ctx, realtimeEventsKey, payload).Err(); err != nil {
		log.Printf("[WARN] failed to publish %s on %s: %v", event, channel, err)
		return err
	}

	return nil
}
