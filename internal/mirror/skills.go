package mirror

import (
	"context"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"gorm.io/gorm"
)

type skillRepository struct {
	base
}

// NewSkillRepository returns a SkillRepository on the skills table.
func NewSkillRepository(db *gorm.DB, pub events.Publisher) repository.SkillRepository {
	return &skillRepository{base: newBase(db, pub)}
}

func (r *skillRepository) List(ctx context.Context) ([]models.Skill, error) {
	q, done := r.query(ctx, "select", "skills")
	defer done()
	var rows []skillRow
	if err := q.Order("name").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Skill", "*")
	}
	return rowsToModels[skillRow, models.Skill](rows), nil
}

func (r *skillRepository) GetByID(ctx context.Context, id string) (*models.Skill, error) {
	q, done := r.query(ctx, "select", "skills")
	defer done()
	var row skillRow
	if err := q.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(err, "Skill", id)
	}
	s := row.toModel()
	return &s, nil
}

func (r *skillRepository) Create(ctx context.Context, skill *models.Skill) error {
	q, done := r.query(ctx, "insert", "skills")
	defer done()
	row := skillFromModel(skill)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Skill", skill.ID)
	}
	r.signal(store.Skills, events.OpCreate, skill.ID)
	return nil
}

func (r *skillRepository) Delete(ctx context.Context, id string) error {
	q, done := r.query(ctx, "delete", "skills")
	defer done()
	res := q.Where("id = ?", id).Delete(&skillRow{})
	if res.Error != nil {
		return mapError(res.Error, "Skill", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Skill", id)
	}
	r.signal(store.Skills, events.OpDelete, id)
	return nil
}
