package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skillhive/internal/events"
	"skillhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

var items = Collection[item]{
	Name: "items",
	Key:  "test_items",
	Seed: func() []item { return []item{{ID: "a"}, {ID: "b"}} },
}

func newTestRecords(t *testing.T, opts ...Option) (*Records, *MemoryKV, *events.Subscription) {
	t.Helper()
	kv := NewMemoryKV()
	bus := events.NewBus(32)
	sub := bus.Subscribe()
	t.Cleanup(sub.Close)
	return NewRecords(kv, bus, opts...), kv, sub
}

func drain(sub *events.Subscription) []events.Change {
	var out []events.Change
	for {
		select {
		case c := <-sub.C():
			out = append(out, c)
		default:
			return out
		}
	}
}

func TestLoad_SeedsOnFirstAccessWithoutSignal(t *testing.T) {
	r, kv, sub := newTestRecords(t)
	ctx := context.Background()

	list, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "a"}, {ID: "b"}}, list)

	raw, ok, err := kv.Get(ctx, items.Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"a","count":0},{"id":"b","count":0}]`, string(raw))
	assert.Empty(t, drain(sub))
}

func TestLoad_MalformedValueFallsBackToSeed(t *testing.T) {
	r, kv, _ := newTestRecords(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, items.Key, []byte("{not json")))

	list, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	raw, _, _ := kv.Get(ctx, items.Key)
	assert.Equal(t, "{not json", string(raw))
}

func TestSaveThenLoad_RoundTripsAndSignals(t *testing.T) {
	r, _, sub := newTestRecords(t)
	ctx := context.Background()
	want := []item{{ID: "x", Count: 3}, {ID: "y", Count: 1}, {ID: "z"}}

	require.NoError(t, Save(ctx, r, items, want))
	got, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	changes := drain(sub)
	require.Len(t, changes, 1)
	assert.Equal(t, "items", changes[0].Collection)
	assert.Equal(t, events.OpSave, changes[0].Op)
}

func TestSave_EmptyListStaysEmpty(t *testing.T) {
	r, _, _ := newTestRecords(t)
	ctx := context.Background()

	require.NoError(t, Save[item](ctx, r, items, nil))
	got, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestLoad_ReseedsShortCollection(t *testing.T) {
	r, _, _ := newTestRecords(t, WithReseedBelow("items", 2))
	ctx := context.Background()

	require.NoError(t, Save(ctx, r, items, []item{{ID: "only"}}))
	got, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "a"}, {ID: "b"}}, got)
}

func TestLoad_ReseedDisabledWithZeroThreshold(t *testing.T) {
	r, _, _ := newTestRecords(t, WithReseedBelow("items", 0))
	ctx := context.Background()

	require.NoError(t, Save(ctx, r, items, []item{{ID: "only"}}))
	got, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "only"}}, got)
}

func TestMutate_NoChangeSkipsWriteAndSignal(t *testing.T) {
	r, _, sub := newTestRecords(t)
	ctx := context.Background()
	_, err := Load(ctx, r, items)
	require.NoError(t, err)

	err = Mutate(ctx, r, items, func(list []item) ([]item, bool, error) {
		return list, false, nil
	})
	require.NoError(t, err)
	assert.Empty(t, drain(sub))
}

func TestMutate_ErrorPassesThrough(t *testing.T) {
	r, _, sub := newTestRecords(t)
	ctx := context.Background()

	err := Mutate(ctx, r, items, func(list []item) ([]item, bool, error) {
		return nil, false, models.NewNotFoundError("Item", "q")
	})
	assert.True(t, models.IsNotFound(err))
	assert.Empty(t, drain(sub))
}

func TestMutate_ConcurrentIncrementsAreNotLost(t *testing.T) {
	r, _, _ := newTestRecords(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := Mutate(ctx, r, items, func(list []item) ([]item, bool, error) {
				list[0].Count++
				return list, true, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Equal(t, 50, got[0].Count)
}

// Two callers that Load, modify and Save on their own race: the later Save
// overwrites the earlier one's change.
func TestLoadSave_LastWriterWinsLosesUpdate(t *testing.T) {
	r, _, _ := newTestRecords(t)
	ctx := context.Background()

	first, err := Load(ctx, r, items)
	require.NoError(t, err)
	second, err := Load(ctx, r, items)
	require.NoError(t, err)

	first[0].Count += 10
	second[1].Count += 5
	require.NoError(t, Save(ctx, r, items, first))
	require.NoError(t, Save(ctx, r, items, second))

	got, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Equal(t, 0, got[0].Count, "first writer's update is lost")
	assert.Equal(t, 5, got[1].Count)
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingKV) Set(context.Context, string, []byte) error         { return f.err }
func (f failingKV) Update(context.Context, string, UpdateFunc) error  { return f.err }
func (f failingKV) Delete(context.Context, string) error              { return f.err }

func TestRecords_TransportFailureIsUnavailable(t *testing.T) {
	r := NewRecords(failingKV{err: errors.New("connection refused")}, nil)
	ctx := context.Background()

	_, err := Load(ctx, r, items)
	assert.Equal(t, models.CodeUnavailable, models.ErrorCode(err))

	err = Save(ctx, r, items, []item{{ID: "a"}})
	assert.Equal(t, models.CodeUnavailable, models.ErrorCode(err))

	err = Mutate(ctx, r, items, func(list []item) ([]item, bool, error) { return list, true, nil })
	assert.Equal(t, models.CodeUnavailable, models.ErrorCode(err))
}

type flags map[string]time.Time

var flagDoc = Document[flags]{
	Name:  "flags",
	Key:   "test_flags",
	Empty: func() flags { return flags{} },
}

func TestDocument_MutateAndLoad(t *testing.T) {
	r, kv, sub := newTestRecords(t)
	ctx := context.Background()

	empty, err := LoadDoc(ctx, r, flagDoc)
	require.NoError(t, err)
	assert.Empty(t, empty)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err = MutateDoc(ctx, r, flagDoc, "m1", func(f flags) (flags, bool, error) {
		f["m1:u1"] = at
		return f, true, nil
	})
	require.NoError(t, err)

	got, err := LoadDoc(ctx, r, flagDoc)
	require.NoError(t, err)
	assert.True(t, got["m1:u1"].Equal(at))

	changes := drain(sub)
	require.Len(t, changes, 1)
	assert.Equal(t, "m1", changes[0].ID)

	require.NoError(t, kv.Set(ctx, flagDoc.Key, []byte("garbage")))
	got, err = LoadDoc(ctx, r, flagDoc)
	require.NoError(t, err)
	assert.Empty(t, got)
}
