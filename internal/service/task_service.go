package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"skillhive/internal/models"
	"skillhive/internal/observability"
	"skillhive/internal/repository"
	"skillhive/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type TaskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	badges *BadgeService
	now    func() time.Time
}

type CreateTaskInput struct {
	UserID      string            `json:"userId" validate:"required"`
	Title       string            `json:"title" validate:"notblank,max=200"`
	Description string            `json:"description" validate:"max=2000"`
	Difficulty  models.Difficulty `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
}

// CompletedTask is the result of completing a task.
type CompletedTask struct {
	Task    *models.Task `json:"task"`
	Credits int          `json:"credits"`
	Badges  []string     `json:"newBadges"`
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, badges *BadgeService) *TaskService {
	return &TaskService{tasks: tasks, users: users, badges: badges, now: nowUTC}
}

func (s *TaskService) ListForUser(ctx context.Context, userID string) ([]models.Task, error) {
	return s.tasks.ListForUser(ctx, userID)
}

// Create stores a pending task whose reward follows its difficulty.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	t := &models.Task{
		ID:            newID(),
		UserID:        in.UserID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Difficulty:    in.Difficulty,
		CreditsReward: in.Difficulty.Reward(),
		Status:        models.TaskPending,
		CreatedAt:     s.now(),
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Complete moves the task to completed and pays its reward. A second call for
// the same task returns a conflict error and pays nothing.
func (s *TaskService) Complete(ctx context.Context, id, userID string) (*CompletedTask, error) {
	span, ctx := observability.NewSpan(ctx, "TaskService.Complete", attribute.String("task.id", id))
	defer span.End()

	task, err := s.tasks.Complete(ctx, id, userID, s.now())
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	user, err := s.users.AddCredits(ctx, userID, task.CreditsReward)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	awarded, err := s.badges.CheckAndAward(ctx, userID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "badge check failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	if awarded == nil {
		awarded = []string{}
	}
	return &CompletedTask{Task: task, Credits: user.Credits, Badges: awarded}, nil
}
