package service

import (
	"context"
	"errors"
	"strings"

	"skillhive/internal/models"
	"skillhive/internal/observability"
	"skillhive/internal/repository"
	"skillhive/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeMessage is the system notification sent to every new account.
const WelcomeMessage = "Welcome to SkillHive!"

type UserService struct {
	users    repository.UserRepository
	creds    repository.CredentialRepository
	notes    *NotificationService
	hashCost int
}

type RegisterInput struct {
	Name         string `json:"name" validate:"notblank,max=120"`
	Email        string `json:"email" validate:"required,email,max=254"`
	Password     string `json:"password" validate:"required,pwd"`
	Bio          string `json:"bio" validate:"max=2000"`
	Availability string `json:"availability" validate:"max=120"`
}

func NewUserService(users repository.UserRepository, creds repository.CredentialRepository, notes *NotificationService) *UserService {
	return &UserService{users: users, creds: creds, notes: notes, hashCost: bcrypt.DefaultCost}
}

// Register creates an account with the starting balance and the Newcomer badge.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "UserService.Register")
	defer span.End()

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, models.NewConflictError("email already registered")
	} else if !models.IsNotFound(err) {
		span.SetError(err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		ID:             newID(),
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		Bio:            in.Bio,
		Availability:   in.Availability,
		SkillsOffered:  []string{},
		SkillsWanted:   []string{},
		VerifiedSkills: []string{},
		BlockedUsers:   []string{},
		Rating:         models.StartingRating,
		Role:           models.RoleUser,
		Credits:        models.StartingCredits,
		Badges:         []string{models.BadgeNewcomer},
	}
	if err := s.users.Create(ctx, user); err != nil {
		span.SetError(err)
		return nil, err
	}
	if err := s.creds.Put(ctx, models.Credential{UserID: user.ID, PasswordHash: string(hash)}); err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.String("user.id", user.ID))

	s.notes.Fanout(ctx, user.ID, WelcomeMessage, models.NotifySystem, "")
	return user, nil
}

// Authenticate checks a password against the stored bcrypt hash.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := models.NewUnauthorizedError("invalid email or password")

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	cred, err := s.creds.Get(ctx, user.ID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalid
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Update applies a member's own profile edits.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, id, func(u *models.User) (bool, error) {
		patch.Apply(u)
		return true, nil
	})
}

// AdminUpdate applies an admin edit, which may also change role, balance and badges.
func (s *UserService) AdminUpdate(ctx context.Context, id string, patch models.AdminUserPatch) (*models.User, error) {
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, id, func(u *models.User) (bool, error) {
		patch.Apply(u)
		return true, nil
	})
}

// Delete removes the profile only. Skills, matches and messages are kept.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// Block adds targetID to the user's block list. Blocking twice is a no-op.
func (s *UserService) Block(ctx context.Context, userID, targetID string) (*models.User, error) {
	if userID == targetID {
		return nil, models.NewValidationError("cannot block yourself")
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, userID, func(u *models.User) (bool, error) {
		var changed bool
		u.BlockedUsers, changed = models.AppendUnique(u.BlockedUsers, targetID)
		return changed, nil
	})
}

func (s *UserService) Unblock(ctx context.Context, userID, targetID string) (*models.User, error) {
	return s.users.Update(ctx, userID, func(u *models.User) (bool, error) {
		if !u.HasBlocked(targetID) {
			return false, nil
		}
		u.BlockedUsers = models.Remove(u.BlockedUsers, targetID)
		return true, nil
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
