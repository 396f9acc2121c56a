package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const changesChannel = "graphdeck:graph-changes"

// GraphChange announces that a graph was mutated by some session.
type GraphChange struct {
	GraphID   string    `json:"graph_id"`
	NodeName  string    `json:"node_name,omitempty"`
	Kind      string    `json:"kind"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
}

// Broadcaster publishes and receives graph changes over Redis pub/sub.
type Broadcaster struct {
	client *redis.Client
	log    *slog.Logger
}

// NewBroadcaster wraps an existing client.
func NewBroadcaster(client *redis.Client, log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &Broadcaster{client: client, log: log}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr string, log *slog.Logger) (*Broadcaster, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return NewBroadcaster(client, log), nil
}

// Close releases the client.
func (b *Broadcaster) Close() error {
	return b.client.Close()
}

// Publish announces a change to every subscribed session.
func (b *Broadcaster) Publish(ctx context.Context, change GraphChange) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal graph change: %w", err)
	}
	if err := b.client.Publish(ctx, changesChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish graph change: %w", err)
	}
	return nil
}

// Subscribe delivers changes until ctx is done. The returned channel is
// closed when the subscription ends. Malformed messages are logged and skipped.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan GraphChange, error) {
	sub := b.client.Subscribe(ctx, changesChannel)
	// Receive blocks until the subscription is confirmed
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", changesChannel, err)
	}

	out := make(chan GraphChange)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change GraphChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					b.log.Warn("Skipping malformed graph change", "error", err)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
