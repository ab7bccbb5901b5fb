// Package service implements the SkillHive domain operations on top of the
// repository interfaces.
package service

import (
	"context"
	"time"

	"skillhive/internal/ai"
	"skillhive/internal/config"
	"skillhive/internal/notifications"
	"skillhive/internal/repository"

	"github.com/google/uuid"
)

// LivePusher delivers a live event to one user's connected clients.
type LivePusher interface {
	PushUser(ctx context.Context, userID string, ev notifications.Event) error
}

// Services bundles every domain service.
type Services struct {
	Users         *UserService
	Skills        *SkillService
	Matches       *MatchService
	Messages      *MessageService
	Notifications *NotificationService
	Tasks         *TaskService
	Reports       *ReportService
	Feed          *FeedService
	Whiteboards   *WhiteboardService
	Badges        *BadgeService
	Media         *MediaService
	Assistant     *ai.Assistant
}

// Deps are the collaborators New wires into the services.
type Deps struct {
	Repos     *repository.Repositories
	Pusher    LivePusher
	Assistant *ai.Assistant
	Config    *config.Config
}

// New builds the service graph.
func New(d Deps) *Services {
	r := d.Repos
	notes := NewNotificationService(r.Notifications, d.Pusher)
	badges := NewBadgeService(r.Users, r.Tasks, r.Matches, r.Sessions, notes)
	assistant := d.Assistant
	if assistant == nil {
		assistant = ai.NewAssistant(nil, ai.Config{})
	}
	return &Services{
		Users:         NewUserService(r.Users, r.Credentials, notes),
		Skills:        NewSkillService(r.Skills, r.Users, badges, notes),
		Matches:       NewMatchService(r.Matches, r.Sessions, r.Feedbacks, r.Messages, r.Users, badges, notes),
		Messages:      NewMessageService(r.Messages, r.Matches, r.Users, r.Typing, notes),
		Notifications: notes,
		Tasks:         NewTaskService(r.Tasks, r.Users, badges),
		Reports:       NewReportService(r.Reports, r.Users),
		Feed:          NewFeedService(r.Posts, assistant),
		Whiteboards:   NewWhiteboardService(r.Whiteboards, r.Matches),
		Badges:        badges,
		Media:         NewMediaService(d.Config),
		Assistant:     assistant,
	}
}

var newID = uuid.NewString

func nowUTC() time.Time { return time.Now().UTC() }
