package repository

import (
	"context"
	"strings"

	"skillhive/internal/models"
	"skillhive/internal/store"
)

type userRepository struct {
	records *store.Records
}

// NewUserRepository returns a UserRepository backed by the record store.
func NewUserRepository(records *store.Records) UserRepository {
	return &userRepository{records: records}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	return store.Load(ctx, r.records, usersCollection)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(users, id); i >= 0 {
		return &users[i], nil
	}
	return nil, models.NewNotFoundError("User", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return store.Mutate(ctx, r.records, usersCollection, func(users []models.User) ([]models.User, bool, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, user.Email) {
				return nil, false, models.NewConflictError("email already registered")
			}
			if u.ID == user.ID {
				return nil, false, models.NewConflictError("user id already exists")
			}
		}
		return append(users, *user), true, nil
	})
}

func (r *userRepository) Update(ctx context.Context, id string, fn EditFunc[models.User]) (*models.User, error) {
	var out models.User
	err := store.Mutate(ctx, r.records, usersCollection, func(users []models.User) ([]models.User, bool, error) {
		i := indexOf(users, id)
		if i < 0 {
			return nil, false, models.NewNotFoundError("User", id)
		}
		changed, err := fn(&users[i])
		if err != nil {
			return nil, false, err
		}
		out = users[i]
		return users, changed, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepository) AddCredits(ctx context.Context, id string, delta int) (*models.User, error) {
	return r.Update(ctx, id, func(u *models.User) (bool, error) {
		if delta == 0 {
			return false, nil
		}
		u.Credits += delta
		return true, nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return store.Mutate(ctx, r.records, usersCollection, func(users []models.User) ([]models.User, bool, error) {
		i := indexOf(users, id)
		if i < 0 {
			return nil, false, models.NewNotFoundError("User", id)
		}
		return append(users[:i], users[i+1:]...), true, nil
	})
}

type credentialRepository struct {
	records    *store.Records
	collection store.Collection[models.Credential]
}

// NewCredentialRepository returns a CredentialRepository backed by the record
// store. Seeded accounts share seedPassword.
func NewCredentialRepository(records *store.Records, seedPassword string) CredentialRepository {
	return &credentialRepository{records: records, collection: credentialsCollection(seedPassword)}
}

func (r *credentialRepository) Get(ctx context.Context, userID string) (*models.Credential, error) {
	creds, err := store.Load(ctx, r.records, r.collection)
	if err != nil {
		return nil, err
	}
	if i := indexOf(creds, userID); i >= 0 {
		return &creds[i], nil
	}
	return nil, models.NewNotFoundError("Credential", userID)
}

func (r *credentialRepository) Put(ctx context.Context, cred models.Credential) error {
	return store.Mutate(ctx, r.records, r.collection, func(creds []models.Credential) ([]models.Credential, bool, error) {
		if i := indexOf(creds, cred.UserID); i >= 0 {
			creds[i] = cred
			return creds, true, nil
		}
		return append(creds, cred), true, nil
	})
}
