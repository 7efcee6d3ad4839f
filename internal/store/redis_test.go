package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRedisDefaults(t *testing.T) {
	r := NewRedis("localhost:6379")
	require.NotNil(t, r.Client)
	require.Equal(t, DefaultEventsKey, r.EventsKey)
}

func TestHealthyToleratesNilAndUnreachable(t *testing.T) {
	var r *Redis
	require.False(t, r.Healthy(context.Background()))
	require.False(t, (&Redis{}).Healthy(context.Background()))

	// Nothing listens on port 1; the ping must fail, not hang.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.False(t, NewRedis("127.0.0.1:1").Healthy(ctx))
}
