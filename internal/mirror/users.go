package mirror

import (
	"context"

	"skillhive/internal/cache"
	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/observability"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	base
	rdb *redis.Client
}

// NewUserRepository returns a UserRepository on the profiles table. Profile
// reads go through the Redis cache when rdb is set.
func NewUserRepository(db *gorm.DB, rdb *redis.Client, pub events.Publisher) repository.UserRepository {
	return &userRepository{base: newBase(db, pub), rdb: rdb}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	q, done := r.query(ctx, "select", "profiles")
	defer done()
	var rows []profileRow
	if err := q.Order("name").Find(&rows).Error; err != nil {
		return nil, mapError(err, "User", "*")
	}
	return rowsToModels[profileRow, models.User](rows), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var row profileRow
	err := cache.Aside(ctx, r.rdb, cache.ProfileKey(id), &row, cache.ProfileTTL, func() error {
		return r.load(ctx, r.db, id, &row)
	})
	if err != nil {
		return nil, err
	}
	u := row.toModel()
	return &u, nil
}

func (r *userRepository) load(ctx context.Context, db *gorm.DB, id string, row *profileRow) error {
	defer observability.TrackQuery("select", "profiles")()
	if err := db.WithContext(ctx).Where("id = ?", id).First(row).Error; err != nil {
		return mapError(err, "User", id)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q, done := r.query(ctx, "select", "profiles")
	defer done()
	var row profileRow
	if err := q.Where("LOWER(email) = LOWER(?)", email).First(&row).Error; err != nil {
		return nil, mapError(err, "User", email)
	}
	u := row.toModel()
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if existing, err := r.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return models.NewConflictError("email already registered")
	} else if err != nil && !models.IsNotFound(err) {
		return err
	}

	q, done := r.query(ctx, "insert", "profiles")
	defer done()
	row := profileFromModel(user)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "User", user.ID)
	}
	r.signal(store.Users, events.OpCreate, user.ID)
	return nil
}

func (r *userRepository) Update(ctx context.Context, id string, fn repository.EditFunc[models.User]) (*models.User, error) {
	var out models.User
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row profileRow
		if err := r.load(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), id, &row); err != nil {
			return err
		}
		u := row.toModel()
		var err error
		if changed, err = fn(&u); err != nil {
			return err
		}
		out = u
		if !changed {
			return nil
		}
		defer observability.TrackQuery("update", "profiles")()
		next := profileFromModel(&u)
		next.ID = id
		return tx.Save(&next).Error
	})
	if err != nil {
		return nil, mapError(err, "User", id)
	}
	if changed {
		cache.Invalidate(ctx, r.rdb, cache.ProfileKey(id))
		r.signal(store.Users, events.OpUpdate, id)
	}
	return &out, nil
}

// AddCredits increments in SQL so concurrent awards never overwrite each other.
func (r *userRepository) AddCredits(ctx context.Context, id string, delta int) (*models.User, error) {
	q, done := r.query(ctx, "update", "profiles")
	res := q.Model(&profileRow{}).Where("id = ?", id).
		UpdateColumn("credits", gorm.Expr("credits + ?", delta))
	done()
	if res.Error != nil {
		return nil, mapError(res.Error, "User", id)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}
	cache.Invalidate(ctx, r.rdb, cache.ProfileKey(id))
	r.signal(store.Users, events.OpUpdate, id)
	return r.GetByID(ctx, id)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	q, done := r.query(ctx, "delete", "profiles")
	res := q.Where("id = ?", id).Delete(&profileRow{})
	done()
	if res.Error != nil {
		return mapError(res.Error, "User", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.Invalidate(ctx, r.rdb, cache.ProfileKey(id))
	r.signal(store.Users, events.OpDelete, id)
	return nil
}

type credentialRepository struct {
	base
}

// NewCredentialRepository returns a CredentialRepository on the credentials table.
func NewCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository{base: newBase(db, nil)}
}

func (r *credentialRepository) Get(ctx context.Context, userID string) (*models.Credential, error) {
	q, done := r.query(ctx, "select", "credentials")
	defer done()
	var row credentialRow
	if err := q.Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, mapError(err, "Credential", userID)
	}
	c := row.toModel()
	return &c, nil
}

func (r *credentialRepository) Put(ctx context.Context, cred models.Credential) error {
	q, done := r.query(ctx, "upsert", "credentials")
	defer done()
	row := credentialRow{UserID: cred.UserID, PasswordHash: cred.PasswordHash}
	err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(&row).Error
	return mapError(err, "Credential", cred.UserID)
}
