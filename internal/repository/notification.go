package repository

import (
	"context"

	"skillhive/internal/models"
	"skillhive/internal/store"
)

type notificationRepository struct {
	records *store.Records
}

// NewNotificationRepository returns a NotificationRepository backed by the record store.
func NewNotificationRepository(records *store.Records) NotificationRepository {
	return &notificationRepository{records: records}
}

// ListForUser relies on Create prepending, so stored order is newest first.
func (r *notificationRepository) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	all, err := store.Load(ctx, r.records, notificationsCollection)
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0)
	for _, n := range all {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return store.Mutate(ctx, r.records, notificationsCollection, func(all []models.Notification) ([]models.Notification, bool, error) {
		return append([]models.Notification{*n}, all...), true, nil
	})
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	return store.Mutate(ctx, r.records, notificationsCollection, func(all []models.Notification) ([]models.Notification, bool, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, false, models.NewNotFoundError("Notification", id)
		}
		if all[i].Read {
			return all, false, nil
		}
		all[i].Read = true
		return all, true, nil
	})
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var n int
	err := store.Mutate(ctx, r.records, notificationsCollection, func(all []models.Notification) ([]models.Notification, bool, error) {
		n = 0
		for i := range all {
			if all[i].UserID == userID && !all[i].Read {
				all[i].Read = true
				n++
			}
		}
		return all, n > 0, nil
	})
	return n, err
}
