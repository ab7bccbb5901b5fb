package service

import (
	"context"
	"log/slog"
	"time"

	"skillhive/internal/models"
	"skillhive/internal/notifications"
	"skillhive/internal/observability"
	"skillhive/internal/repository"
)

// NotificationService appends notifications and pushes them to live clients.
type NotificationService struct {
	repo   repository.NotificationRepository
	pusher LivePusher
	now    func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, pusher LivePusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher, now: nowUTC}
}

// Notify appends one notification for userID, newest first. There is no
// deduplication and no rate limit.
func (s *NotificationService) Notify(ctx context.Context, userID, message string, typ models.NotificationType, matchID string) (*models.Notification, error) {
	n := &models.Notification{
		ID:        newID(),
		UserID:    userID,
		Message:   message,
		Type:      typ,
		CreatedAt: s.now(),
		MatchID:   matchID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		observability.Notifications.WithLabelValues(string(typ), "error").Inc()
		return nil, err
	}
	observability.Notifications.WithLabelValues(string(typ), "ok").Inc()

	if s.pusher != nil {
		if err := s.pusher.PushUser(ctx, userID, notifications.Event{Type: notifications.EventNotification, Payload: n}); err != nil {
			observability.Logger.WarnContext(ctx, "live notification push failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}
	return n, nil
}

// Fanout is Notify for callers that must not fail because of a notification.
func (s *NotificationService) Fanout(ctx context.Context, userID, message string, typ models.NotificationType, matchID string) {
	if _, err := s.Notify(ctx, userID, message, typ, matchID); err != nil {
		observability.Logger.ErrorContext(ctx, "notification fan-out failed",
			slog.String("user_id", userID),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
