package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) (*Broadcaster, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	b := NewBroadcaster(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestPublishSubscribe(t *testing.T) {
	b, _ := newTestBroadcaster(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := b.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, GraphChange{GraphID: "g1", NodeName: "N1", Kind: "node_deleted", SessionID: "s1"}))

	select {
	case got := <-changes:
		assert.Equal(t, "g1", got.GraphID)
		assert.Equal(t, "N1", got.NodeName)
		assert.Equal(t, "s1", got.SessionID)
		assert.False(t, got.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for graph change")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-changes
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribe_SkipsMalformed(t *testing.T) {
	b, mr := newTestBroadcaster(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := b.Subscribe(ctx)
	require.NoError(t, err)

	mr.Publish(changesChannel, "not json")
	require.NoError(t, b.Publish(ctx, GraphChange{GraphID: "g2", Kind: "node_deleted"}))

	select {
	case got := <-changes:
		assert.Equal(t, "g2", got.GraphID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for graph change")
	}
}

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Dial(ctx, "127.0.0.1:1", nil)
	assert.Error(t, err)
}
