// Package events relays the in-process narrative event bus to Redis
// Pub/Sub, one channel per session, for SSE distribution to browsers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	enginevents "github.com/wildlight/questline/pkg/events"
)

// Envelope is the shape published on the wire. Observers switch on the
// event name; payload shapes match the in-process bus exactly.
type Envelope struct {
	Type      enginevents.Type `json:"type"`
	SessionID string           `json:"session_id"`
	Payload   any              `json:"payload,omitempty"`
}

// Relay forwards bus events of one session to its Redis channel.
type Relay struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRelay creates a relay on an existing Redis client.
func NewRelay(client *redis.Client, logger *slog.Logger) *Relay {
	return &Relay{client: client, logger: logger}
}

// Channel returns the Pub/Sub channel name for a session.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("story-events:%s", sessionID.String())
}

// Attach subscribes the relay to the bus. Every published event is
// forwarded; publish failures are logged and dropped, matching the
// fire-and-forget contract of the bridge.
func (r *Relay) Attach(bus *enginevents.Bus, sessionID uuid.UUID) *enginevents.Subscription {
	channel := Channel(sessionID)
	return bus.Subscribe(func(event enginevents.Event) {
		env := Envelope{
			Type:      event.Type,
			SessionID: sessionID.String(),
			Payload:   event.Payload,
		}
		data, err := json.Marshal(env)
		if err != nil {
			r.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
			return
		}
		if err := r.client.Publish(context.Background(), channel, data).Err(); err != nil {
			r.logger.Error("Failed to publish event", "error", err, "channel", channel)
			return
		}
		r.logger.Debug("Event relayed",
			"channel", channel,
			"event_type", event.Type,
		)
	})
}

// Subscribe opens a Redis subscription on a session's channel, for SSE
// handlers. The caller owns the returned PubSub and must close it.
func (r *Relay) Subscribe(ctx context.Context, sessionID uuid.UUID) *redis.PubSub {
	return r.client.Subscribe(ctx, Channel(sessionID))
}
