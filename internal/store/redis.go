package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultEventsKey is the list the API publishes domain events to and the
// worker consumes from. Both binaries take it from this wrapper so they can
// never drift apart.
const DefaultEventsKey = "attendance:events"

// Redis wraps the shared client together with the event-list key.
type Redis struct {
	Client    *redis.Client
	EventsKey string
}

// NewRedis creates a client with short timeouts. No connection is made until
// first use; callers that need liveness check Healthy.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client, EventsKey: DefaultEventsKey}
}

// Healthy verifies connectivity with a bounded ping. A nil receiver reports
// false so callers that run without Redis need no special case.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the client's pooled connections.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
