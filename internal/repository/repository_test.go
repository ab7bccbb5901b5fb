package repository

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (*Repositories, *events.Bus) {
	t.Helper()
	bus := events.NewBus(256)
	records := store.NewRecords(store.NewMemoryKV(), bus, store.WithReseedBelow(store.Users, 10))
	return NewLocal(records, "password123"), bus
}

func TestUserRepository_CreateRejectsDuplicateEmail(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	err := repos.Users.Create(ctx, &models.User{ID: "new", Email: "PRIYA@skillhive.dev"})
	assert.True(t, models.IsConflict(err))

	require.NoError(t, repos.Users.Create(ctx, &models.User{ID: "new", Email: "new@skillhive.dev"}))
	got, err := repos.Users.GetByEmail(ctx, "new@skillhive.dev")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
}

func TestUserRepository_GetMissing(t *testing.T) {
	repos, _ := newTestRepos(t)
	_, err := repos.Users.GetByID(context.Background(), "nope")
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_DeleteDoesNotCascade(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Users.Delete(ctx, "2"))

	_, err := repos.Users.GetByID(ctx, "2")
	assert.True(t, models.IsNotFound(err))

	skill, err := repos.Skills.GetByID(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "2", skill.OwnerID)

	matches, err := repos.Matches.ListForUser(ctx, "2")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestUserRepository_AddCredits(t *testing.T) {
	repos, bus := newTestRepos(t)
	ctx := context.Background()
	sub := bus.Subscribe(store.Users)
	defer sub.Close()

	u, err := repos.Users.AddCredits(ctx, "3", 10)
	require.NoError(t, err)
	assert.Equal(t, 140, u.Credits)
	assert.Len(t, sub.C(), 1)
}

func TestCredentialRepository_SeedAndPut(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	c, err := repos.Credentials.Get(ctx, "1")
	require.NoError(t, err)
	assert.NotEmpty(t, c.PasswordHash)

	require.NoError(t, repos.Credentials.Put(ctx, models.Credential{UserID: "1", PasswordHash: "x"}))
	c, err = repos.Credentials.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "x", c.PasswordHash)
}

func TestTaskRepository_CompleteTransitions(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := repos.Tasks.Complete(ctx, "t1", "2", at)
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	task, err := repos.Tasks.Complete(ctx, "t1", "3", at)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, task.CompletedAt.Equal(at))

	_, err = repos.Tasks.Complete(ctx, "t1", "3", at)
	assert.True(t, models.IsConflict(err))

	_, err = repos.Tasks.Complete(ctx, "missing", "3", at)
	assert.True(t, models.IsNotFound(err))

	n, err := repos.Tasks.CountCompleted(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTaskRepository_ConcurrentCompleteSucceedsOnce(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repos.Tasks.Complete(ctx, "t2", "3", time.Now()); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestNotificationRepository_NewestFirstAndMarkRead(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Notifications.Create(ctx, &models.Notification{ID: "a", UserID: "7", Message: "first"}))
	require.NoError(t, repos.Notifications.Create(ctx, &models.Notification{ID: "b", UserID: "7", Message: "second"}))

	list, err := repos.Notifications.ListForUser(ctx, "7")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	require.NoError(t, repos.Notifications.MarkRead(ctx, "a"))
	n, err := repos.Notifications.MarkAllRead(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.True(t, models.IsNotFound(repos.Notifications.MarkRead(ctx, "zzz")))
}

func TestMessageRepository_OrderAndMarkRead(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Messages.Create(ctx, &models.Message{ID: "late", MatchID: "m1", SenderID: "2", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, repos.Messages.Create(ctx, &models.Message{ID: "early", MatchID: "m1", SenderID: "3", Timestamp: base}))
	require.NoError(t, repos.Messages.Create(ctx, &models.Message{ID: "other", MatchID: "m2", SenderID: "3", Timestamp: base}))

	list, err := repos.Messages.ListForMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].ID)

	n, err := repos.Messages.MarkRead(ctx, "m1", "3")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, _ = repos.Messages.ListForMatch(ctx, "m1")
	assert.False(t, list[0].Read, "reader's own message stays unread")
	assert.True(t, list[1].Read)
}

func TestTypingRepository_Expires(t *testing.T) {
	records := store.NewRecords(store.NewMemoryKV(), nil)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := &typingRepository{records: records, now: func() time.Time { return now }}
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "m1", "2", true))
	typing, err := repo.IsTyping(ctx, "m1", "2")
	require.NoError(t, err)
	assert.True(t, typing)

	now = now.Add(TypingTTL + time.Second)
	typing, err = repo.IsTyping(ctx, "m1", "2")
	require.NoError(t, err)
	assert.False(t, typing)

	require.NoError(t, repo.Set(ctx, "m1", "3", true))
	require.NoError(t, repo.Set(ctx, "m1", "3", false))
	typing, _ = repo.IsTyping(ctx, "m1", "3")
	assert.False(t, typing)
}

func TestWhiteboardRepository_SaveAndGet(t *testing.T) {
	repos, bus := newTestRepos(t)
	ctx := context.Background()
	sub := bus.Subscribe(store.Whiteboard)
	defer sub.Close()

	_, err := repos.Whiteboards.Get(ctx, "m1")
	assert.True(t, models.IsNotFound(err))

	board := &models.Whiteboard{ID: "m1", Items: []json.RawMessage{json.RawMessage(`{"x":1}`)}}
	require.NoError(t, repos.Whiteboards.Save(ctx, board))

	got, err := repos.Whiteboards.Get(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.JSONEq(t, `{"x":1}`, string(got.Items[0]))

	change := <-sub.C()
	assert.Equal(t, "m1", change.ID)
}

func TestPostRepository_NewestFirstAndUpdate(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Posts.Create(ctx, &models.Post{ID: "new", CreatedAt: time.Now().UTC()}))
	posts, err := repos.Posts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", posts[0].ID)

	p, err := repos.Posts.Update(ctx, "p2", func(p *models.Post) (bool, error) {
		p.Likes = append(p.Likes, "9")
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, p.Likes)
}

func TestReportRepository_SetStatus(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Reports.SetStatus(ctx, "r1", models.ReportDismissed))
	reports, err := repos.Reports.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ReportDismissed, reports[0].Status)
	assert.True(t, models.IsNotFound(repos.Reports.SetStatus(ctx, "nope", models.ReportResolved)))
}
