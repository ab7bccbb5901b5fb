package repository

import (
	"skillhive/internal/models"
	"skillhive/internal/seed"
	"skillhive/internal/store"
)

var (
	usersCollection         = store.Collection[models.User]{Name: store.Users, Key: store.KeyUsers, Seed: seed.Users}
	skillsCollection        = store.Collection[models.Skill]{Name: store.Skills, Key: store.KeySkills, Seed: seed.Skills}
	matchesCollection       = store.Collection[models.Match]{Name: store.Matches, Key: store.KeyMatches, Seed: seed.Matches}
	sessionsCollection      = store.Collection[models.Session]{Name: store.Sessions, Key: store.KeySessions, Seed: seed.Sessions}
	feedbacksCollection     = store.Collection[models.Feedback]{Name: store.Feedbacks, Key: store.KeyFeedbacks, Seed: seed.Feedbacks}
	messagesCollection      = store.Collection[models.Message]{Name: store.Messages, Key: store.KeyMessages, Seed: seed.Messages}
	notificationsCollection = store.Collection[models.Notification]{Name: store.Notifications, Key: store.KeyNotifications, Seed: seed.Notifications}
	tasksCollection         = store.Collection[models.Task]{Name: store.Tasks, Key: store.KeyTasks, Seed: seed.Tasks}
	reportsCollection       = store.Collection[models.Report]{Name: store.Reports, Key: store.KeyReports, Seed: seed.Reports}
	postsCollection         = store.Collection[models.Post]{Name: store.Posts, Key: store.KeyPosts, Seed: seed.Posts}
)

func credentialsCollection(seedPassword string) store.Collection[models.Credential] {
	return store.Collection[models.Credential]{
		Name: store.Credentials,
		Key:  store.KeyCredentials,
		Seed: seed.Credentials(seedPassword),
	}
}

// indexOf returns the position of the record with id, or -1.
func indexOf[T interface{ RecordID() string }](list []T, id string) int {
	for i := range list {
		if list[i].RecordID() == id {
			return i
		}
	}
	return -1
}

// NewLocal builds every repository on top of the record store.
func NewLocal(records *store.Records, seedPassword string) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(records),
		Credentials:   NewCredentialRepository(records, seedPassword),
		Skills:        NewSkillRepository(records),
		Matches:       NewMatchRepository(records),
		Sessions:      NewSessionRepository(records),
		Feedbacks:     NewFeedbackRepository(records),
		Messages:      NewMessageRepository(records),
		Notifications: NewNotificationRepository(records),
		Tasks:         NewTaskRepository(records),
		Reports:       NewReportRepository(records),
		Posts:         NewPostRepository(records),
		Typing:        NewTypingRepository(records),
		Whiteboards:   NewWhiteboardRepository(records),
	}
}
