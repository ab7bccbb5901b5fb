package service

import (
	"context"
	"strings"

	"skillhive/internal/ai"
	"skillhive/internal/models"
	"skillhive/internal/observability"
	"skillhive/internal/repository"
	"skillhive/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// VerifiedMessage is the badge notification sent on a first skill verification.
const VerifiedMessage = "Skill verified! Badge earned."

// QuizPassMark is the number of correct answers needed to verify a skill.
const QuizPassMark = 4

type SkillService struct {
	skills repository.SkillRepository
	users  repository.UserRepository
	badges *BadgeService
	notes  *NotificationService
}

type AddSkillInput struct {
	Name        string            `json:"name" validate:"notblank,max=120"`
	Category    string            `json:"category" validate:"notblank,max=80"`
	Description string            `json:"description" validate:"max=2000"`
	OwnerID     string            `json:"ownerId" validate:"required"`
	Tags        []string          `json:"tags" validate:"max=20,dive,max=40"`
	Level       models.SkillLevel `json:"level" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
}

// QuizResult reports the outcome of a verification quiz.
type QuizResult struct {
	Score    int  `json:"score"`
	Total    int  `json:"total"`
	Passed   bool `json:"passed"`
	Verified bool `json:"verified"`
}

func NewSkillService(skills repository.SkillRepository, users repository.UserRepository, badges *BadgeService, notes *NotificationService) *SkillService {
	return &SkillService{skills: skills, users: users, badges: badges, notes: notes}
}

func (s *SkillService) List(ctx context.Context) ([]models.Skill, error) {
	return s.skills.List(ctx)
}

// Add stores the listing and then appends its id to the owner's skillsOffered.
// The two writes are not transactional.
func (s *SkillService) Add(ctx context.Context, in AddSkillInput) (*models.Skill, error) {
	span, ctx := observability.NewSpan(ctx, "SkillService.Add")
	defer span.End()

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.OwnerID); err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	skill := &models.Skill{
		ID:          newID(),
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		OwnerID:     in.OwnerID,
		Tags:        tags,
		Level:       in.Level,
	}
	if err := s.skills.Create(ctx, skill); err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.String("skill.id", skill.ID))

	_, err := s.users.Update(ctx, in.OwnerID, func(u *models.User) (bool, error) {
		var changed bool
		u.SkillsOffered, changed = models.AppendUnique(u.SkillsOffered, skill.ID)
		return changed, nil
	})
	if err != nil {
		span.SetError(err)
		return skill, err
	}
	return skill, nil
}

func (s *SkillService) Get(ctx context.Context, id string) (*models.Skill, error) {
	return s.skills.GetByID(ctx, id)
}

func (s *SkillService) Delete(ctx context.Context, id string) error {
	return s.skills.Delete(ctx, id)
}

// Verify marks skillID as verified for userID. It returns false when the skill
// was already verified, in which case nothing else happens.
func (s *SkillService) Verify(ctx context.Context, userID, skillID string) (bool, error) {
	if _, err := s.skills.GetByID(ctx, skillID); err != nil {
		return false, err
	}

	var added bool
	_, err := s.users.Update(ctx, userID, func(u *models.User) (bool, error) {
		u.VerifiedSkills, added = models.AppendUnique(u.VerifiedSkills, skillID)
		if added {
			u.Badges, _ = models.AppendUnique(u.Badges, models.BadgeVerifiedExpert)
		}
		return added, nil
	})
	if err != nil || !added {
		return false, err
	}

	s.notes.Fanout(ctx, userID, VerifiedMessage, models.NotifyBadge, "")
	return true, nil
}

// VerifyWithQuiz grades answers against questions and verifies the skill when
// at least QuizPassMark answers are correct.
func (s *SkillService) VerifyWithQuiz(ctx context.Context, userID, skillID string, questions []ai.QuizQuestion, answers []int) (*QuizResult, error) {
	if len(questions) == 0 {
		return nil, models.NewValidationError("quiz has no questions")
	}
	if len(answers) != len(questions) {
		return nil, models.NewValidationError("answer count does not match question count")
	}

	res := &QuizResult{Total: len(questions)}
	for i, q := range questions {
		if answers[i] == q.CorrectIndex {
			res.Score++
		}
	}
	res.Passed = res.Score >= QuizPassMark
	if !res.Passed {
		return res, nil
	}

	verified, err := s.Verify(ctx, userID, skillID)
	if err != nil {
		return nil, err
	}
	res.Verified = verified
	return res, nil
}
