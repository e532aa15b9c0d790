package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/validation"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ExistsOpenByReporterAndJob(ctx context.Context, reporterID, jobID uuid.UUID) (bool, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Report, error)
	Close(ctx context.Context, id uuid.UUID) error
}

// ReportService files and resolves moderation reports.
type ReportService struct {
	reports ReportRepository
	jobs    jobLookup
	users   userLocator
}

func NewReportService(reports ReportRepository, jobs jobLookup, users userLocator) *ReportService {
	return &ReportService{reports: reports, jobs: jobs, users: users}
}

type ReportInput struct {
	TargetID uuid.UUID
	JobID    *uuid.UUID
	Reason   string
}

// File opens a report against a user, optionally tied to a job. One open
// report per reporter and job is enough.
func (s *ReportService) File(ctx context.Context, reporterID uuid.UUID, in ReportInput) (*models.Report, error) {
	if err := validation.ValidateNonEmpty("reason", in.Reason); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("reason", in.Reason, 0, validation.MaxCommentLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.TargetID == reporterID {
		return nil, apperror.New(apperror.ErrCodeValidation, "you cannot report yourself")
	}
	if _, err := s.users.GetByID(ctx, in.TargetID); err != nil {
		return nil, mapRepoError(err)
	}
	if in.JobID != nil {
		if _, err := s.jobs.GetByID(ctx, *in.JobID); err != nil {
			return nil, mapRepoError(err)
		}
		dup, err := s.reports.ExistsOpenByReporterAndJob(ctx, reporterID, *in.JobID)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to check existing reports")
		}
		if dup {
			return nil, apperror.New(apperror.ErrCodeConflict, "you already have an open report for this job request")
		}
	}

	report := &models.Report{
		ID:         uuid.New(),
		ReporterID: reporterID,
		TargetID:   in.TargetID,
		JobID:      in.JobID,
		Reason:     in.Reason,
		Open:       true,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to file report")
	}
	return report, nil
}

// ListOpen returns the admin moderation queue.
func (s *ReportService) ListOpen(ctx context.Context, role string, limit, offset int) ([]models.Report, error) {
	if role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only admins can list reports")
	}
	limit, offset = clampPage(limit, offset)
	reports, err := s.reports.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list reports")
	}
	return reports, nil
}

// Close resolves an open report.
func (s *ReportService) Close(ctx context.Context, reportID uuid.UUID, role string) error {
	if role != models.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "only admins can close reports")
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return mapRepoError(err)
	}
	if !report.Open {
		return apperror.New(apperror.ErrCodeInvalidState, "report is already closed")
	}
	if err := s.reports.Close(ctx, reportID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to close report")
	}
	return nil
}
