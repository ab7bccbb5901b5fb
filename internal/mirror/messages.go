package mirror

import (
	"context"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"gorm.io/gorm"
)

type messageRepository struct {
	base
}

// NewMessageRepository returns a MessageRepository on the messages table.
func NewMessageRepository(db *gorm.DB, pub events.Publisher) repository.MessageRepository {
	return &messageRepository{base: newBase(db, pub)}
}

func (r *messageRepository) ListForMatch(ctx context.Context, matchID string) ([]models.Message, error) {
	q, done := r.query(ctx, "select", "messages")
	defer done()
	var rows []messageRow
	if err := q.Where("match_id = ?", matchID).Order("timestamp ASC").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Message", "*")
	}
	return rowsToModels[messageRow, models.Message](rows), nil
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	q, done := r.query(ctx, "insert", "messages")
	defer done()
	row := messageFromModel(msg)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Message", msg.ID)
	}
	r.signal(store.Messages, events.OpCreate, msg.ID)
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, matchID, readerID string) (int, error) {
	q, done := r.query(ctx, "update", "messages")
	defer done()
	res := q.Model(&messageRow{}).
		Where("match_id = ? AND sender_id <> ? AND read = ?", matchID, readerID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, mapError(res.Error, "Message", matchID)
	}
	if res.RowsAffected > 0 {
		r.signal(store.Messages, events.OpUpdate, matchID)
	}
	return int(res.RowsAffected), nil
}
