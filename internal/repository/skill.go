package repository

import (
	"context"

	"skillhive/internal/models"
	"skillhive/internal/store"
)

type skillRepository struct {
	records *store.Records
}

// NewSkillRepository returns a SkillRepository backed by the record store.
func NewSkillRepository(records *store.Records) SkillRepository {
	return &skillRepository{records: records}
}

func (r *skillRepository) List(ctx context.Context) ([]models.Skill, error) {
	return store.Load(ctx, r.records, skillsCollection)
}

func (r *skillRepository) GetByID(ctx context.Context, id string) (*models.Skill, error) {
	skills, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(skills, id); i >= 0 {
		return &skills[i], nil
	}
	return nil, models.NewNotFoundError("Skill", id)
}

func (r *skillRepository) Create(ctx context.Context, skill *models.Skill) error {
	return store.Mutate(ctx, r.records, skillsCollection, func(skills []models.Skill) ([]models.Skill, bool, error) {
		return append(skills, *skill), true, nil
	})
}

func (r *skillRepository) Delete(ctx context.Context, id string) error {
	return store.Mutate(ctx, r.records, skillsCollection, func(skills []models.Skill) ([]models.Skill, bool, error) {
		i := indexOf(skills, id)
		if i < 0 {
			return nil, false, models.NewNotFoundError("Skill", id)
		}
		return append(skills[:i], skills[i+1:]...), true, nil
	})
}
