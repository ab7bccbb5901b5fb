// Package notifications provides real-time delivery: live notification pushes
// per user, and propagation of change signals between processes and to
// websocket clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"skillhive/internal/events"
	"skillhive/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix   = "notifications:user:"
	changeChannelPrefix = "changes:"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Event types.
const (
	EventChange       = "change"
	EventNotification = "notification"
	EventDropped      = "messages_dropped"
)

// changeEnvelope is the Redis payload for a bridged change.
type changeEnvelope struct {
	Origin string        `json:"origin"`
	Change events.Change `json:"change"`
}

// Notifier publishes live pushes and change signals into Redis channels.
// With a nil client, user pushes are delivered to the locally wired hub only.
type Notifier struct {
	rdb    *redis.Client
	origin string

	mu    sync.RWMutex
	local func(userID string, payload []byte)
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, origin: uuid.NewString()}
}

// Origin identifies this process on bridged change signals.
func (n *Notifier) Origin() string { return n.origin }

func (n *Notifier) setLocal(fn func(userID string, payload []byte)) {
	n.mu.Lock()
	n.local = fn
	n.mu.Unlock()
}

// PushUser sends a live event to every connection of userID.
func (n *Notifier) PushUser(ctx context.Context, userID string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if n.rdb == nil {
		n.mu.RLock()
		local := n.local
		n.mu.RUnlock()
		if local != nil {
			local(userID, payload)
		}
		return nil
	}
	if err := n.rdb.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("publish_user").Inc()
		return err
	}
	return nil
}

// PublishChange forwards a local change to other processes.
func (n *Notifier) PublishChange(ctx context.Context, c events.Change) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(changeEnvelope{Origin: n.origin, Change: c})
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := n.rdb.Publish(ctx, ChangeChannel(c.Collection), payload).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("publish_change").Inc()
		return err
	}
	return nil
}

// StartPatternSubscriber subscribes to patterns and calls onMessage for each
// incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string), patterns ...string,
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, patterns...)
	// Wait for the subscription to be confirmed so publishes right after
	// start are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		observability.RedisErrors.WithLabelValues("psubscribe").Inc()
		return fmt.Errorf("psubscribe %v: %w", patterns, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.Logger.Error("panic in pattern subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// BridgeChanges mirrors the local bus onto Redis and replays changes made by
// other processes into it. Each process ignores its own echo.
func (n *Notifier) BridgeChanges(ctx context.Context, bus *events.Bus) error {
	if n.rdb == nil {
		return nil
	}

	err := n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		var env changeEnvelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			observability.Logger.Warn("invalid change payload", slog.String("error", err.Error()))
			return
		}
		if env.Origin == n.origin {
			return
		}
		env.Change.Origin = env.Origin
		bus.Publish(env.Change)
	}, changeChannelPrefix+"*")
	if err != nil {
		return err
	}

	sub := bus.Subscribe()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-sub.C():
				if !ok {
					return
				}
				if c.Origin != "" {
					continue
				}
				if err := n.PublishChange(ctx, c); err != nil && ctx.Err() == nil {
					observability.Logger.Warn("change bridge publish failed",
						slog.String("collection", c.Collection),
						slog.String("error", err.Error()))
				}
			}
		}
	}()
	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// ChangeChannel derives the Redis channel name for a collection's changes.
func ChangeChannel(collection string) string {
	return changeChannelPrefix + collection
}

func userFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, userChannelPrefix)
	return id, ok && id != ""
}
