package mirror

import (
	"context"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postRepository struct {
	base
}

// NewPostRepository returns a PostRepository on the posts table.
func NewPostRepository(db *gorm.DB, pub events.Publisher) repository.PostRepository {
	return &postRepository{base: newBase(db, pub)}
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	q, done := r.query(ctx, "select", "posts")
	defer done()
	var rows []postRow
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Post", "*")
	}
	return rowsToModels[postRow, models.Post](rows), nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	q, done := r.query(ctx, "select", "posts")
	defer done()
	var row postRow
	if err := q.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(err, "Post", id)
	}
	p := row.toModel()
	return &p, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	q, done := r.query(ctx, "insert", "posts")
	defer done()
	row := postFromModel(post)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Post", post.ID)
	}
	r.signal(store.Posts, events.OpCreate, post.ID)
	return nil
}

func (r *postRepository) Update(ctx context.Context, id string, fn repository.EditFunc[models.Post]) (*models.Post, error) {
	var out models.Post
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row postRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		p := row.toModel()
		var err error
		if changed, err = fn(&p); err != nil {
			return err
		}
		out = p
		if !changed {
			return nil
		}
		next := postFromModel(&p)
		next.ID = id
		return tx.Select("*").Save(&next).Error
	})
	if err != nil {
		return nil, mapError(err, "Post", id)
	}
	if changed {
		r.signal(store.Posts, events.OpUpdate, id)
	}
	return &out, nil
}
