package repository

import (
	"context"

	"skillhive/internal/models"
	"skillhive/internal/store"
)

type reportRepository struct {
	records *store.Records
}

// NewReportRepository returns a ReportRepository backed by the record store.
func NewReportRepository(records *store.Records) ReportRepository {
	return &reportRepository{records: records}
}

func (r *reportRepository) List(ctx context.Context) ([]models.Report, error) {
	return store.Load(ctx, r.records, reportsCollection)
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return store.Mutate(ctx, r.records, reportsCollection, func(reports []models.Report) ([]models.Report, bool, error) {
		return append(reports, *report), true, nil
	})
}

func (r *reportRepository) SetStatus(ctx context.Context, id string, status models.ReportStatus) error {
	return store.Mutate(ctx, r.records, reportsCollection, func(reports []models.Report) ([]models.Report, bool, error) {
		i := indexOf(reports, id)
		if i < 0 {
			return nil, false, models.NewNotFoundError("Report", id)
		}
		reports[i].Status = status
		return reports, true, nil
	})
}
