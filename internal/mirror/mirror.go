// Package mirror implements the repository interfaces on the hosted
// PostgreSQL schema. Every write fires the change signal so that subscribers
// behave the same as with the record store.
package mirror

import (
	"context"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/observability"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type base struct {
	db  *gorm.DB
	pub events.Publisher
}

func newBase(db *gorm.DB, pub events.Publisher) base {
	if pub == nil {
		pub = events.Discard{}
	}
	return base{db: db, pub: pub}
}

func (b base) signal(collection string, op events.Op, id string) {
	b.pub.Publish(events.Change{Collection: collection, Op: op, ID: id})
}

// query starts a statement bound to ctx and records its latency.
func (b base) query(ctx context.Context, operation, table string) (*gorm.DB, func()) {
	return b.db.WithContext(ctx), observability.TrackQuery(operation, table)
}

// NewRemote builds every repository on the hosted schema. Typing flags and
// whiteboards have no hosted table and stay in local.
func NewRemote(db *gorm.DB, rdb *redis.Client, pub events.Publisher, local *store.Records) *repository.Repositories {
	return &repository.Repositories{
		Users:         NewUserRepository(db, rdb, pub),
		Credentials:   NewCredentialRepository(db),
		Skills:        NewSkillRepository(db, pub),
		Matches:       NewMatchRepository(db, pub),
		Sessions:      NewSessionRepository(db, pub),
		Feedbacks:     NewFeedbackRepository(db, pub),
		Messages:      NewMessageRepository(db, pub),
		Notifications: NewNotificationRepository(db, pub),
		Tasks:         NewTaskRepository(db, pub),
		Reports:       NewReportRepository(db, pub),
		Posts:         NewPostRepository(db, pub),
		Typing:        repository.NewTypingRepository(local),
		Whiteboards:   repository.NewWhiteboardRepository(local),
	}
}

// SeedData is the initial content written by Seed.
type SeedData struct {
	Users       []models.User
	Credentials []models.Credential
	Skills      []models.Skill
	Matches     []models.Match
	Tasks       []models.Task
	Posts       []models.Post
}

// Seed inserts rows for users and their catalog data when the profiles table is
// empty. It is used by cmd/seed and by development bootstraps.
func Seed(ctx context.Context, db *gorm.DB, repos *repository.Repositories, data SeedData) error {
	var count int64
	if err := db.WithContext(ctx).Model(&profileRow{}).Count(&count).Error; err != nil {
		return mapError(err, "User", "*")
	}
	if count > 0 {
		return nil
	}
	for i := range data.Users {
		if err := repos.Users.Create(ctx, &data.Users[i]); err != nil {
			return err
		}
	}
	for _, c := range data.Credentials {
		if err := repos.Credentials.Put(ctx, c); err != nil {
			return err
		}
	}
	for i := range data.Skills {
		if err := repos.Skills.Create(ctx, &data.Skills[i]); err != nil {
			return err
		}
	}
	for i := range data.Matches {
		if err := repos.Matches.Create(ctx, &data.Matches[i]); err != nil {
			return err
		}
	}
	for i := range data.Tasks {
		if err := repos.Tasks.Create(ctx, &data.Tasks[i]); err != nil {
			return err
		}
	}
	for i := range data.Posts {
		if err := repos.Posts.Create(ctx, &data.Posts[i]); err != nil {
			return err
		}
	}
	return nil
}
