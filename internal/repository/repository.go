// Package repository defines the data access interfaces used by the domain
// services and implements them on top of the record store. The remote
// mirror (package mirror) implements the same interfaces over PostgreSQL.
package repository

import (
	"context"
	"time"

	"skillhive/internal/models"
)

// EditFunc changes a record in place and reports whether anything changed.
// Implementations may call it more than once, so it must not have side effects
// beyond the record it is given.
type EditFunc[T any] func(*T) (bool, error)

// UserRepository defines persistence operations for user profiles.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create fails with a conflict error when the email is taken.
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, fn EditFunc[models.User]) (*models.User, error)
	// AddCredits increments the balance atomically.
	AddCredits(ctx context.Context, id string, delta int) (*models.User, error)
	// Delete removes only the profile; skills, matches and messages stay.
	Delete(ctx context.Context, id string) error
}

// CredentialRepository stores password hashes apart from profiles.
type CredentialRepository interface {
	Get(ctx context.Context, userID string) (*models.Credential, error)
	Put(ctx context.Context, cred models.Credential) error
}

// SkillRepository defines persistence operations for skill listings.
type SkillRepository interface {
	List(ctx context.Context) ([]models.Skill, error)
	GetByID(ctx context.Context, id string) (*models.Skill, error)
	Create(ctx context.Context, skill *models.Skill) error
	Delete(ctx context.Context, id string) error
}

// MatchRepository defines persistence operations for matches.
type MatchRepository interface {
	List(ctx context.Context) ([]models.Match, error)
	ListForUser(ctx context.Context, userID string) ([]models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	Create(ctx context.Context, match *models.Match) error
	Update(ctx context.Context, id string, fn EditFunc[models.Match]) (*models.Match, error)
}

// SessionRepository stores held exchange sessions.
type SessionRepository interface {
	ListForMatches(ctx context.Context, matchIDs []string) ([]models.Session, error)
	Create(ctx context.Context, session *models.Session) error
}

// FeedbackRepository stores session ratings.
type FeedbackRepository interface {
	ListForUser(ctx context.Context, toUserID string) ([]models.Feedback, error)
	Create(ctx context.Context, feedback *models.Feedback) error
}

// MessageRepository stores match chat history.
type MessageRepository interface {
	// ListForMatch returns messages in ascending timestamp order.
	ListForMatch(ctx context.Context, matchID string) ([]models.Message, error)
	Create(ctx context.Context, msg *models.Message) error
	// MarkRead flags every message in the match not sent by readerID as read.
	MarkRead(ctx context.Context, matchID, readerID string) (int, error)
}

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	// ListForUser returns notifications newest first.
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// TaskRepository stores learning tasks.
type TaskRepository interface {
	ListForUser(ctx context.Context, userID string) ([]models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	// Complete moves a pending task owned by userID to completed in one atomic
	// step. A task that is already completed yields a conflict error.
	Complete(ctx context.Context, id, userID string, at time.Time) (*models.Task, error)
	CountCompleted(ctx context.Context, userID string) (int, error)
}

// ReportRepository stores moderation reports.
type ReportRepository interface {
	List(ctx context.Context) ([]models.Report, error)
	Create(ctx context.Context, report *models.Report) error
	SetStatus(ctx context.Context, id string, status models.ReportStatus) error
}

// PostRepository stores the community feed.
type PostRepository interface {
	// List returns posts newest first.
	List(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id string, fn EditFunc[models.Post]) (*models.Post, error)
}

// TypingRepository tracks short-lived typing indicators.
type TypingRepository interface {
	Set(ctx context.Context, matchID, userID string, typing bool) error
	IsTyping(ctx context.Context, matchID, userID string) (bool, error)
}

// WhiteboardRepository stores whiteboard documents by board id.
type WhiteboardRepository interface {
	Get(ctx context.Context, boardID string) (*models.Whiteboard, error)
	Save(ctx context.Context, board *models.Whiteboard) error
}

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Users         UserRepository
	Credentials   CredentialRepository
	Skills        SkillRepository
	Matches       MatchRepository
	Sessions      SessionRepository
	Feedbacks     FeedbackRepository
	Messages      MessageRepository
	Notifications NotificationRepository
	Tasks         TaskRepository
	Reports       ReportRepository
	Posts         PostRepository
	Typing        TypingRepository
	Whiteboards   WhiteboardRepository
}
