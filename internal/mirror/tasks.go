package mirror

import (
	"context"
	"time"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"gorm.io/gorm"
)

type taskRepository struct {
	base
}

// NewTaskRepository returns a TaskRepository on the tasks table.
func NewTaskRepository(db *gorm.DB, pub events.Publisher) repository.TaskRepository {
	return &taskRepository{base: newBase(db, pub)}
}

func (r *taskRepository) ListForUser(ctx context.Context, userID string) ([]models.Task, error) {
	q, done := r.query(ctx, "select", "tasks")
	defer done()
	var rows []taskRow
	if err := q.Where("user_id = ?", userID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Task", "*")
	}
	return rowsToModels[taskRow, models.Task](rows), nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	q, done := r.query(ctx, "select", "tasks")
	defer done()
	var row taskRow
	if err := q.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(err, "Task", id)
	}
	t := row.toModel()
	return &t, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	q, done := r.query(ctx, "insert", "tasks")
	defer done()
	row := taskFromModel(task)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Task", task.ID)
	}
	r.signal(store.Tasks, events.OpCreate, task.ID)
	return nil
}

// Complete flips a pending task in one conditional UPDATE. When no row matches,
// the task is re-read to tell a missing, foreign or already completed task apart.
func (r *taskRepository) Complete(ctx context.Context, id, userID string, at time.Time) (*models.Task, error) {
	q, done := r.query(ctx, "update", "tasks")
	res := q.Model(&taskRow{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, string(models.TaskPending)).
		Updates(map[string]any{
			"status":       string(models.TaskCompleted),
			"completed_at": at,
		})
	done()
	if res.Error != nil {
		return nil, mapError(res.Error, "Task", id)
	}

	if res.RowsAffected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.UserID != userID {
			return nil, models.NewForbiddenError("task belongs to another user")
		}
		return nil, models.NewConflictError("task already completed")
	}

	r.signal(store.Tasks, events.OpUpdate, id)
	return r.GetByID(ctx, id)
}

func (r *taskRepository) CountCompleted(ctx context.Context, userID string) (int, error) {
	q, done := r.query(ctx, "count", "tasks")
	defer done()
	var n int64
	err := q.Model(&taskRow{}).
		Where("user_id = ? AND status = ?", userID, string(models.TaskCompleted)).
		Count(&n).Error
	if err != nil {
		return 0, mapError(err, "Task", "*")
	}
	return int(n), nil
}
