package repository

import (
	"context"
	"sort"

	"skillhive/internal/models"
	"skillhive/internal/store"
)

type postRepository struct {
	records *store.Records
}

// NewPostRepository returns a PostRepository backed by the record store.
func NewPostRepository(records *store.Records) PostRepository {
	return &postRepository{records: records}
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	posts, err := store.Load(ctx, r.records, postsCollection)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	posts, err := store.Load(ctx, r.records, postsCollection)
	if err != nil {
		return nil, err
	}
	if i := indexOf(posts, id); i >= 0 {
		return &posts[i], nil
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return store.Mutate(ctx, r.records, postsCollection, func(posts []models.Post) ([]models.Post, bool, error) {
		return append([]models.Post{*post}, posts...), true, nil
	})
}

func (r *postRepository) Update(ctx context.Context, id string, fn EditFunc[models.Post]) (*models.Post, error) {
	var out models.Post
	err := store.Mutate(ctx, r.records, postsCollection, func(posts []models.Post) ([]models.Post, bool, error) {
		i := indexOf(posts, id)
		if i < 0 {
			return nil, false, models.NewNotFoundError("Post", id)
		}
		changed, err := fn(&posts[i])
		if err != nil {
			return nil, false, err
		}
		out = posts[i]
		return posts, changed, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
