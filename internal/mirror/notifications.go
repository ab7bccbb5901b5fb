package mirror

import (
	"context"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"gorm.io/gorm"
)

type notificationRepository struct {
	base
}

// NewNotificationRepository returns a NotificationRepository on the
// notifications table.
func NewNotificationRepository(db *gorm.DB, pub events.Publisher) repository.NotificationRepository {
	return &notificationRepository{base: newBase(db, pub)}
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	q, done := r.query(ctx, "select", "notifications")
	defer done()
	var rows []notificationRow
	if err := q.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Notification", "*")
	}
	return rowsToModels[notificationRow, models.Notification](rows), nil
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	q, done := r.query(ctx, "insert", "notifications")
	defer done()
	row := notificationFromModel(n)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Notification", n.ID)
	}
	r.signal(store.Notifications, events.OpCreate, n.ID)
	return nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	q, done := r.query(ctx, "update", "notifications")
	defer done()
	res := q.Model(&notificationRow{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return mapError(res.Error, "Notification", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	r.signal(store.Notifications, events.OpUpdate, id)
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	q, done := r.query(ctx, "update", "notifications")
	defer done()
	res := q.Model(&notificationRow{}).Where("user_id = ? AND read = ?", userID, false).Update("read", true)
	if res.Error != nil {
		return 0, mapError(res.Error, "Notification", userID)
	}
	if res.RowsAffected > 0 {
		r.signal(store.Notifications, events.OpUpdate, "")
	}
	return int(res.RowsAffected), nil
}
