package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"skillhive/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()
	assert.NoError(t, n.PushUser(ctx, "1", Event{Type: EventNotification}))
	assert.NoError(t, n.PublishChange(ctx, events.Change{Collection: "users"}))
	assert.NoError(t, n.BridgeChanges(ctx, events.NewBus(1)))
}

func TestChannels(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:42", UserChannel("42"))
	assert.Equal(t, "changes:tasks", ChangeChannel("tasks"))

	id, ok := userFromChannel("notifications:user:abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
	_, ok = userFromChannel("notifications:user:")
	assert.False(t, ok)
}

func TestNotifier_PushUserReachesSubscriber(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == UserChannel("7") {
			got <- payload
		}
	}, "notifications:user:*"))

	require.NoError(t, n.PushUser(ctx, "7", Event{Type: EventNotification, Payload: map[string]string{"message": "hi"}}))

	select {
	case payload := <-got:
		var ev struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		assert.Equal(t, EventNotification, ev.Type)
		assert.Equal(t, "hi", ev.Payload["message"])
	case <-time.After(testEventuallyTimeout):
		t.Fatal("push not received")
	}
}

func TestNotifier_BridgeChangesBetweenProcesses(t *testing.T) {
	rdb := newRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	busA, busB := events.NewBus(16), events.NewBus(16)
	nA, nB := NewNotifier(rdb), NewNotifier(rdb)
	require.NoError(t, nA.BridgeChanges(ctx, busA))
	require.NoError(t, nB.BridgeChanges(ctx, busB))

	subA := busA.Subscribe()
	defer subA.Close()
	subB := busB.Subscribe()
	defer subB.Close()

	busA.Publish(events.Change{Collection: "tasks", Op: events.OpSave})

	// local subscriber sees the original
	first := <-subA.C()
	assert.Empty(t, first.Origin)

	select {
	case c := <-subB.C():
		assert.Equal(t, "tasks", c.Collection)
		assert.Equal(t, nA.Origin(), c.Origin)
	case <-time.After(testEventuallyTimeout):
		t.Fatal("change not bridged")
	}

	// A ignores its own echo and B does not re-publish the bridged change.
	assert.Never(t, func() bool {
		return len(subA.C()) > 0 || len(subB.C()) > 0
	}, 20*testPollInterval, testPollInterval)
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		payloads <- payload
	}, "notifications:user:*"))

	require.NoError(t, n.PushUser(context.Background(), "1", Event{Type: "before"}))
	assert.Eventually(t, func() bool { return len(payloads) == 1 }, testEventuallyTimeout, testPollInterval)

	cancel()
	time.Sleep(20 * time.Millisecond)
	<-payloads

	require.NoError(t, n.PushUser(context.Background(), "1", Event{Type: "after"}))
	assert.Never(t, func() bool { return len(payloads) > 0 }, 200*time.Millisecond, testPollInterval)
}

func TestNotifier_SubscriberRecoversFromPanic(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 2)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, _ string) {
		calls <- struct{}{}
		panic("boom")
	}, "notifications:user:*"))

	require.NoError(t, n.PushUser(ctx, "1", Event{Type: "a"}))
	require.NoError(t, n.PushUser(ctx, "1", Event{Type: "b"}))
	assert.Eventually(t, func() bool { return len(calls) == 2 }, testEventuallyTimeout, testPollInterval)
}
