package service

import (
	"context"
	"fmt"

	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/seed"
)

// BadgeService owns the static badge catalog and the award rules.
type BadgeService struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	matches  repository.MatchRepository
	sessions repository.SessionRepository
	notes    *NotificationService
	catalog  []models.Badge
}

func NewBadgeService(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	matches repository.MatchRepository,
	sessions repository.SessionRepository,
	notes *NotificationService,
) *BadgeService {
	return &BadgeService{
		users:    users,
		tasks:    tasks,
		matches:  matches,
		sessions: sessions,
		notes:    notes,
		catalog:  seed.Badges(),
	}
}

func (s *BadgeService) Catalog() []models.Badge {
	out := make([]models.Badge, len(s.catalog))
	copy(out, s.catalog)
	return out
}

func (s *BadgeService) name(id string) string {
	for _, b := range s.catalog {
		if b.ID == id {
			return b.Name
		}
	}
	return id
}

// CheckAndAward grants every badge the user now qualifies for and returns the
// ids that were added:
//   - Task Master at five completed tasks
//   - Verified Expert once a skill is verified
//   - Mentor after the first completed session
func (s *BadgeService) CheckAndAward(ctx context.Context, userID string) ([]string, error) {
	completed, err := s.tasks.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.completedSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	var added []string
	_, err = s.users.Update(ctx, userID, func(u *models.User) (bool, error) {
		added = added[:0]
		earn := func(id string, qualifies bool) {
			if !qualifies || u.HasBadge(id) {
				return
			}
			u.Badges = append(u.Badges, id)
			added = append(added, id)
		}
		earn(models.BadgeTaskMaster, completed >= models.TaskMasterThreshold)
		earn(models.BadgeVerifiedExpert, len(u.VerifiedSkills) > 0)
		earn(models.BadgeMentor, sessions > 0)
		return len(added) > 0, nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range added {
		s.notes.Fanout(ctx, userID, fmt.Sprintf("You earned the %s badge!", s.name(id)), models.NotifyBadge, "")
	}
	return added, nil
}

func (s *BadgeService) completedSessions(ctx context.Context, userID string) (int, error) {
	matches, err := s.matches.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	sessions, err := s.sessions.ListForMatches(ctx, ids)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, se := range sessions {
		if se.Status == models.SessionCompleted {
			n++
		}
	}
	return n, nil
}
