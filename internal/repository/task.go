package repository

import (
	"context"
	"time"

	"skillhive/internal/models"
	"skillhive/internal/store"
)

type taskRepository struct {
	records *store.Records
}

// NewTaskRepository returns a TaskRepository backed by the record store.
func NewTaskRepository(records *store.Records) TaskRepository {
	return &taskRepository{records: records}
}

func (r *taskRepository) ListForUser(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := store.Load(ctx, r.records, tasksCollection)
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0)
	for _, t := range tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	tasks, err := store.Load(ctx, r.records, tasksCollection)
	if err != nil {
		return nil, err
	}
	if i := indexOf(tasks, id); i >= 0 {
		return &tasks[i], nil
	}
	return nil, models.NewNotFoundError("Task", id)
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return store.Mutate(ctx, r.records, tasksCollection, func(tasks []models.Task) ([]models.Task, bool, error) {
		return append(tasks, *task), true, nil
	})
}

func (r *taskRepository) Complete(ctx context.Context, id, userID string, at time.Time) (*models.Task, error) {
	var out models.Task
	err := store.Mutate(ctx, r.records, tasksCollection, func(tasks []models.Task) ([]models.Task, bool, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, false, models.NewNotFoundError("Task", id)
		}
		t := &tasks[i]
		if t.UserID != userID {
			return nil, false, models.NewForbiddenError("task belongs to another user")
		}
		if t.Status == models.TaskCompleted {
			return nil, false, models.NewConflictError("task already completed")
		}
		completedAt := at
		t.Status = models.TaskCompleted
		t.CompletedAt = &completedAt
		out = *t
		return tasks, true, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *taskRepository) CountCompleted(ctx context.Context, userID string) (int, error) {
	tasks, err := r.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tasks {
		if t.Status == models.TaskCompleted {
			n++
		}
	}
	return n, nil
}
