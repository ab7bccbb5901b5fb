package service

import (
	"context"
	"encoding/json"
	"testing"

	"skillhive/internal/models"
	"skillhive/internal/notifications"
	"skillhive/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_NotifyPushesLive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.svc.Notifications.Notify(ctx, "6", "hello", models.NotifySystem, "")
	require.NoError(t, err)

	f.pusher.mu.Lock()
	pushes := f.pusher.pushes["6"]
	f.pusher.mu.Unlock()
	require.Len(t, pushes, 1)
	assert.Equal(t, notifications.EventNotification, pushes[0].Type)
	assert.Equal(t, n, pushes[0].Payload)

	list, err := f.svc.Notifications.ListForUser(ctx, "6")
	require.NoError(t, err)
	assert.Equal(t, n.ID, list[0].ID)

	count, err := f.svc.Notifications.MarkAllRead(ctx, "6")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 1)
}

func TestNotificationService_PushFailureKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.pusher.err = errBoom

	n, err := f.svc.Notifications.Notify(context.Background(), "6", "hello", models.NotifySystem, "")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
}

func TestNotificationService_FanoutSwallowsStoreFailure(t *testing.T) {
	f := newFixtureWith(t, func(r *repository.Repositories) {
		r.Notifications = &notificationRepoStub{createFn: func(context.Context, *models.Notification) error {
			return errBoom
		}}
	})

	_, err := f.svc.Notifications.Notify(context.Background(), "6", "x", models.NotifySystem, "")
	assert.ErrorIs(t, err, errBoom)
	assert.NotPanics(t, func() {
		f.svc.Notifications.Fanout(context.Background(), "6", "x", models.NotifySystem, "")
	})
}

func TestReportService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Reports.Report(ctx, ReportInput{ReporterID: "7", ReportedID: "8", Reason: "Rude in chat"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, r.Status)
	assert.Equal(t, "Rude in chat", r.Description)

	_, err = f.svc.Reports.Report(ctx, ReportInput{ReporterID: "7", ReportedID: "7", Reason: "me"})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	assert.Equal(t, models.CodeValidation, models.ErrorCode(f.svc.Reports.Resolve(ctx, r.ID, models.ReportPending)))
	require.NoError(t, f.svc.Reports.Resolve(ctx, r.ID, models.ReportDismissed))

	list, err := f.svc.Reports.List(ctx)
	require.NoError(t, err)
	for _, got := range list {
		if got.ID == r.ID {
			assert.Equal(t, models.ReportDismissed, got.Status)
		}
	}
}

func TestWhiteboardService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.Whiteboards.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	items := []json.RawMessage{json.RawMessage(`{"x":1,"y":2}`)}
	_, err = f.svc.Whiteboards.Save(ctx, "m1", "9", items)
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	_, err = f.svc.Whiteboards.Save(ctx, "m1", "3", items)
	require.NoError(t, err)

	got, err := f.svc.Whiteboards.Get(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.JSONEq(t, `{"x":1,"y":2}`, string(got.Items[0]))
}

func TestBadgeService_Catalog(t *testing.T) {
	f := newFixture(t)
	catalog := f.svc.Badges.Catalog()
	require.Len(t, catalog, 4)

	catalog[0].Name = "mutated"
	assert.NotEqual(t, "mutated", f.svc.Badges.Catalog()[0].Name)
}
