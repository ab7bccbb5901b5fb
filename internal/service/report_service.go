package service

import (
	"context"

	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/validation"
)

type ReportService struct {
	reports repository.ReportRepository
	users   repository.UserRepository
}

type ReportInput struct {
	ReporterID string `json:"reporterId" validate:"required"`
	ReportedID string `json:"reportedId" validate:"required,nefield=ReporterID"`
	Reason     string `json:"reason" validate:"notblank,max=500"`
}

func NewReportService(reports repository.ReportRepository, users repository.UserRepository) *ReportService {
	return &ReportService{reports: reports, users: users}
}

// Report files a pending report against another user.
func (s *ReportService) Report(ctx context.Context, in ReportInput) (*models.Report, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.ReportedID); err != nil {
		return nil, err
	}
	r := &models.Report{
		ID:          newID(),
		ReporterID:  in.ReporterID,
		ReportedID:  in.ReportedID,
		Reason:      in.Reason,
		Description: in.Reason,
		Status:      models.ReportPending,
		Timestamp:   nowUTC(),
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	return s.reports.List(ctx)
}

// Resolve closes a report as resolved or dismissed.
func (s *ReportService) Resolve(ctx context.Context, id string, status models.ReportStatus) error {
	switch status {
	case models.ReportResolved, models.ReportDismissed:
	default:
		return models.NewValidationError("status must be resolved or dismissed")
	}
	return s.reports.SetStatus(ctx, id, status)
}
