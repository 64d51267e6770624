package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// ListenRealtimeEvents forwards redis-published events to local subscribers.
// Runs until ctx is cancelled.
func ListenRealtimeEvents(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.Subscribe(ctx, realtimeEventsKey)
	ch := sub.Channel()

	for msg := range ch {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Println("Error parsing realtime event:", err)
			continue
		}
		hub.Dispatch(event)
	}
}
