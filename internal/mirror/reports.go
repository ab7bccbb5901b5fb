package mirror

import (
	"context"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"gorm.io/gorm"
)

type reportRepository struct {
	base
}

// NewReportRepository returns a ReportRepository on the reports table.
func NewReportRepository(db *gorm.DB, pub events.Publisher) repository.ReportRepository {
	return &reportRepository{base: newBase(db, pub)}
}

func (r *reportRepository) List(ctx context.Context) ([]models.Report, error) {
	q, done := r.query(ctx, "select", "reports")
	defer done()
	var rows []reportRow
	if err := q.Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Report", "*")
	}
	return rowsToModels[reportRow, models.Report](rows), nil
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	q, done := r.query(ctx, "insert", "reports")
	defer done()
	row := reportFromModel(report)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Report", report.ID)
	}
	r.signal(store.Reports, events.OpCreate, report.ID)
	return nil
}

func (r *reportRepository) SetStatus(ctx context.Context, id string, status models.ReportStatus) error {
	q, done := r.query(ctx, "update", "reports")
	defer done()
	res := q.Model(&reportRow{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return mapError(res.Error, "Report", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Report", id)
	}
	r.signal(store.Reports, events.OpUpdate, id)
	return nil
}
