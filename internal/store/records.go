package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/observability"
)

// Storage keys. They match the keys the browser build used so exported
// snapshots stay interchangeable.
const (
	KeyUsers         = "skillhive_db_users_v2"
	KeyCredentials   = "skillhive_db_credentials"
	KeySkills        = "skillhive_db_skills"
	KeyMatches       = "skillhive_db_matches"
	KeySessions      = "skillhive_db_sessions"
	KeyFeedbacks     = "skillhive_db_feedbacks"
	KeyNotifications = "skillhive_db_notifications"
	KeyTasks         = "skillhive_db_tasks"
	KeyReports       = "skillhive_db_reports"
	KeyMessages      = "skillhive_db_messages_v4"
	KeyTyping        = "skillhive_typing"
	KeyPosts         = "skillhive_db_posts"
	KeyWhiteboard    = "skillhive_db_whiteboard"
)

// Collection names carried by change signals.
const (
	Users         = "users"
	Credentials   = "credentials"
	Skills        = "skills"
	Matches       = "matches"
	Sessions      = "sessions"
	Feedbacks     = "feedbacks"
	Notifications = "notifications"
	Tasks         = "tasks"
	Reports       = "reports"
	Messages      = "messages"
	Typing        = "typing"
	Posts         = "posts"
	Whiteboard    = "whiteboard"
)

// Collection addresses one record list and knows its default dataset.
type Collection[T any] struct {
	Name string
	Key  string
	// Seed returns a fresh copy of the default records.
	Seed func() []T
}

func (c Collection[T]) seed() []T {
	if c.Seed == nil {
		return []T{}
	}
	s := c.Seed()
	if s == nil {
		return []T{}
	}
	return s
}

// Document addresses a single JSON value (a map) stored under one key.
type Document[T any] struct {
	Name  string
	Key   string
	Empty func() T
}

// Records layers typed collections over a KV and fires the change signal.
type Records struct {
	kv          KV
	pub         events.Publisher
	reseedBelow map[string]int
}

// Option configures Records.
type Option func(*Records)

// WithReseedBelow rewrites the seed into collection whenever its stored list
// holds fewer than n records. n <= 0 disables the check.
func WithReseedBelow(collection string, n int) Option {
	return func(r *Records) {
		if n > 0 {
			r.reseedBelow[collection] = n
		}
	}
}

// NewRecords builds a Records. A nil publisher discards change signals.
func NewRecords(kv KV, pub events.Publisher, opts ...Option) *Records {
	if pub == nil {
		pub = events.Discard{}
	}
	r := &Records{kv: kv, pub: pub, reseedBelow: make(map[string]int)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Publisher returns the change signal the records fire on.
func (r *Records) Publisher() events.Publisher { return r.pub }

func (r *Records) signal(collection string, op events.Op, id string) {
	r.pub.Publish(events.Change{Collection: collection, Op: op, ID: id})
}

// decodeList parses raw into a list. A malformed value yields the seed and
// fallback=true; the stored bytes are left alone.
func decodeList[T any](ctx context.Context, c Collection[T], raw []byte) (list []T, fallback bool) {
	if err := json.Unmarshal(raw, &list); err != nil {
		observability.NewStoreLogger(c.Name).LogFallback(ctx, err)
		return c.seed(), true
	}
	if list == nil {
		list = []T{}
	}
	return list, false
}

func (r *Records) needsReseed(collection string, n int) bool {
	threshold, ok := r.reseedBelow[collection]
	return ok && n < threshold
}

// Load returns the collection, seeding it on first access.
func Load[T any](ctx context.Context, r *Records, c Collection[T]) ([]T, error) {
	logger := observability.NewStoreLogger(c.Name)
	raw, ok, err := r.kv.Get(ctx, c.Key)
	if err != nil {
		logger.LogError(ctx, err, "load")
		return nil, models.NewUnavailableError("record store", err)
	}
	observability.StoreOperations.WithLabelValues(c.Name, "load", "ok").Inc()

	if !ok {
		seed := c.seed()
		if err := writeJSON(ctx, r.kv, c.Key, seed); err != nil {
			logger.LogError(ctx, err, "seed")
			return nil, models.NewUnavailableError("record store", err)
		}
		return seed, nil
	}

	list, fallback := decodeList(ctx, c, raw)
	if !fallback && r.needsReseed(c.Name, len(list)) {
		seed := c.seed()
		if err := writeJSON(ctx, r.kv, c.Key, seed); err != nil {
			logger.LogError(ctx, err, "reseed")
			return nil, models.NewUnavailableError("record store", err)
		}
		return seed, nil
	}
	return list, nil
}

// Save overwrites the collection with list and fires the change signal.
func Save[T any](ctx context.Context, r *Records, c Collection[T], list []T) error {
	if list == nil {
		list = []T{}
	}
	if err := writeJSON(ctx, r.kv, c.Key, list); err != nil {
		observability.NewStoreLogger(c.Name).LogError(ctx, err, "save")
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewUnavailableError("record store", err)
	}
	observability.StoreOperations.WithLabelValues(c.Name, "save", "ok").Inc()
	observability.NewStoreLogger(c.Name).LogWrite(ctx, "save", len(list))
	r.signal(c.Name, events.OpSave, "")
	return nil
}

// MutateFunc edits a collection in place. It returns the new list and whether
// anything changed; returning changed=false skips the write and the signal.
type MutateFunc[T any] func(list []T) ([]T, bool, error)

// Mutate performs an atomic read-modify-write of the collection and fires one
// change signal when fn reports a change. Errors returned by fn pass through
// unchanged.
func Mutate[T any](ctx context.Context, r *Records, c Collection[T], fn MutateFunc[T]) error {
	written := -1
	update := func(cur []byte, exists bool) ([]byte, bool, error) {
		written = -1
		list := c.seed()
		if exists {
			var fallback bool
			list, fallback = decodeList(ctx, c, cur)
			if !fallback && r.needsReseed(c.Name, len(list)) {
				list = c.seed()
			}
		}
		next, changed, err := fn(list)
		if err != nil || !changed {
			return nil, false, err
		}
		if next == nil {
			next = []T{}
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, false, models.NewInternalError(fmt.Errorf("encode %s: %w", c.Name, err))
		}
		written = len(next)
		return out, true, nil
	}

	if err := r.kv.Update(ctx, c.Key, update); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		observability.NewStoreLogger(c.Name).LogError(ctx, err, "mutate")
		return models.NewUnavailableError("record store", err)
	}
	observability.StoreOperations.WithLabelValues(c.Name, "mutate", "ok").Inc()
	if written < 0 {
		return nil
	}
	observability.NewStoreLogger(c.Name).LogWrite(ctx, "mutate", written)
	r.signal(c.Name, events.OpSave, "")
	return nil
}

// LoadDoc returns the document under d.Key, or d.Empty() when unset or malformed.
func LoadDoc[T any](ctx context.Context, r *Records, d Document[T]) (T, error) {
	raw, ok, err := r.kv.Get(ctx, d.Key)
	if err != nil {
		observability.NewStoreLogger(d.Name).LogError(ctx, err, "load")
		var zero T
		return zero, models.NewUnavailableError("record store", err)
	}
	if !ok {
		return d.Empty(), nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		observability.NewStoreLogger(d.Name).LogFallback(ctx, err)
		return d.Empty(), nil
	}
	return v, nil
}

// MutateDoc is Mutate for documents. id is carried on the change signal.
func MutateDoc[T any](ctx context.Context, r *Records, d Document[T], id string, fn func(T) (T, bool, error)) error {
	changedAny := false
	update := func(cur []byte, exists bool) ([]byte, bool, error) {
		v := d.Empty()
		if exists {
			if err := json.Unmarshal(cur, &v); err != nil {
				observability.NewStoreLogger(d.Name).LogFallback(ctx, err)
				v = d.Empty()
			}
		}
		changedAny = false
		next, changed, err := fn(v)
		if err != nil || !changed {
			return nil, false, err
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, false, models.NewInternalError(fmt.Errorf("encode %s: %w", d.Name, err))
		}
		changedAny = true
		return out, true, nil
	}

	if err := r.kv.Update(ctx, d.Key, update); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		observability.NewStoreLogger(d.Name).LogError(ctx, err, "mutate")
		return models.NewUnavailableError("record store", err)
	}
	if changedAny {
		r.signal(d.Name, events.OpUpdate, id)
	}
	return nil
}

func writeJSON(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("encode %s: %w", key, err))
	}
	return kv.Set(ctx, key, b)
}
