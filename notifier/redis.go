package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisBridge relays hub events over a Redis pub/sub channel so that other
// processes bound to the same persisted store observe mutations they did not
// make. Local delivery is the hub's job; the bridge only carries the
// cross-process leg and filters out this process's own messages on the way
// back in (they were already delivered locally).
type RedisBridge struct {
	client  *redis.Client
	hub     *Hub
	channel string
	origin  string // Identifies this process instance in relayed events
	cancel  context.CancelFunc
}

// NewRedisBridge connects to Redis and verifies the connection.
func NewRedisBridge(addr, password, channel, origin string, hub *Hub) (*RedisBridge, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBridge{
		client:  client,
		hub:     hub,
		channel: channel,
		origin:  origin,
	}, nil
}

// Start begins relaying in both directions: local hub events out to the Redis
// channel, and remote events from other processes into the local hub.
func (b *RedisBridge) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	events, unsubscribe := b.hub.Subscribe()
	sub := b.client.Subscribe(ctx, b.channel)

	// Outbound: local mutations to other processes.
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if event.Origin != "" && event.Origin != b.origin {
					continue // Relayed from elsewhere, do not echo back out
				}
				event.Origin = b.origin
				payload, err := json.Marshal(event)
				if err != nil {
					log.Printf("ERROR: [RedisBridge] Failed to marshal event '%s': %v", event.Type, err)
					continue
				}
				if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
					log.Printf("WARN: [RedisBridge] Failed to publish event '%s' to channel '%s': %v", event.Type, b.channel, err)
				}
			}
		}
	}()

	// Inbound: remote mutations into the local hub.
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("WARN: [RedisBridge] Dropping malformed event payload on channel '%s': %v", b.channel, err)
					continue
				}
				if event.Origin == b.origin {
					continue // Our own message coming back around
				}
				b.hub.Publish(event)
			}
		}
	}()

	log.Printf("INFO: [RedisBridge] Relaying store-change events on channel '%s'.", b.channel)
}

// Close stops both relay goroutines and closes the Redis connection.
func (b *RedisBridge) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.client.Close()
}
