package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/notifications"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSeedPassword = "password123"

type pushRecorder struct {
	mu     sync.Mutex
	pushes map[string][]notifications.Event
	err    error
}

func (p *pushRecorder) PushUser(_ context.Context, userID string, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushes == nil {
		p.pushes = map[string][]notifications.Event{}
	}
	p.pushes[userID] = append(p.pushes[userID], ev)
	return p.err
}

func (p *pushRecorder) count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes[userID])
}

type notificationRepoStub struct {
	createFn func(context.Context, *models.Notification) error
}

func (s *notificationRepoStub) ListForUser(context.Context, string) ([]models.Notification, error) {
	return nil, nil
}
func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) MarkRead(context.Context, string) error { return nil }
func (s *notificationRepoStub) MarkAllRead(context.Context, string) (int, error) {
	return 0, nil
}

type replierStub struct {
	replyFn func(ctx context.Context, title, content string) string
}

func (s replierStub) PostReply(ctx context.Context, title, content string) string {
	return s.replyFn(ctx, title, content)
}

type fixture struct {
	repos  *repository.Repositories
	svc    *Services
	pusher *pushRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

// newFixtureWith builds services over a fresh seeded memory store. edit may
// swap repositories before the services are wired.
func newFixtureWith(t *testing.T, edit func(*repository.Repositories)) *fixture {
	t.Helper()
	records := store.NewRecords(store.NewMemoryKV(), events.Discard{}, store.WithReseedBelow(store.Users, 10))
	repos := repository.NewLocal(records, testSeedPassword)
	if edit != nil {
		edit(repos)
	}
	pusher := &pushRecorder{}
	svc := New(Deps{Repos: repos, Pusher: pusher})
	svc.Users.hashCost = bcrypt.MinCost
	return &fixture{repos: repos, svc: svc, pusher: pusher}
}

func (f *fixture) notificationsFor(t *testing.T, userID string, typ models.NotificationType) []models.Notification {
	t.Helper()
	all, err := f.repos.Notifications.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	var out []models.Notification
	for _, n := range all {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.repos.Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

var errBoom = errors.New("boom")
