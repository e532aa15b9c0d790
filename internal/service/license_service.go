package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/validation"
)

type LicenseRepository interface {
	Create(ctx context.Context, license *models.License) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.License, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.License, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasApproved(ctx context.Context, workerID uuid.UUID) (bool, error)
}

// LicenseService manages worker credentials and the admin review queue.
type LicenseService struct {
	licenses LicenseRepository
	outbox   OutboxEnqueuer
}

func NewLicenseService(licenses LicenseRepository, outbox OutboxEnqueuer) *LicenseService {
	return &LicenseService{licenses: licenses, outbox: outbox}
}

// Submit files a new license for review. It enters the queue PENDING.
func (s *LicenseService) Submit(ctx context.Context, workerID uuid.UUID, role, filename string, description *string) (*models.License, error) {
	if role != models.RoleWorker {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only workers can submit licenses")
	}
	if err := validation.ValidateNonEmpty("filename", filename); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if description != nil {
		if err := validation.ValidateLength("description", *description, 0, validation.MaxCommentLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	license := &models.License{
		ID:          uuid.New(),
		WorkerID:    workerID,
		Filename:    filename,
		Description: description,
		Status:      models.LicenseStatusPending,
	}
	if err := s.licenses.Create(ctx, license); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to submit license")
	}
	return license, nil
}

func (s *LicenseService) ListOwn(ctx context.Context, workerID uuid.UUID) ([]models.License, error) {
	licenses, err := s.licenses.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list licenses")
	}
	return licenses, nil
}

// ListPending returns the admin review queue.
func (s *LicenseService) ListPending(ctx context.Context, role string, limit, offset int) ([]models.License, error) {
	if role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only admins can review licenses")
	}
	limit, offset = clampPage(limit, offset)
	licenses, err := s.licenses.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list pending licenses")
	}
	return licenses, nil
}

// Review approves or rejects a pending license and notifies the worker.
func (s *LicenseService) Review(ctx context.Context, licenseID uuid.UUID, role string, approve bool) (*models.License, error) {
	if role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only admins can review licenses")
	}

	license, err := s.licenses.GetByID(ctx, licenseID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if license.Status != models.LicenseStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "license was already reviewed")
	}

	status := models.LicenseStatusRejected
	note := licenseRejectedNote(license.WorkerID)
	if approve {
		status = models.LicenseStatusApproved
		note = licenseApprovedNote(license.WorkerID)
	}

	if err := s.licenses.SetStatus(ctx, licenseID, status); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to update license")
	}
	// Review outcome notification is best effort.
	_ = s.outbox.Enqueue(ctx, note)

	license.Status = status
	return license, nil
}

// Delete removes the worker's own license.
func (s *LicenseService) Delete(ctx context.Context, licenseID, callerID uuid.UUID) error {
	license, err := s.licenses.GetByID(ctx, licenseID)
	if err != nil {
		return mapRepoError(err)
	}
	if license.WorkerID != callerID {
		return apperror.New(apperror.ErrCodeForbidden, "you can only delete your own licenses")
	}
	if err := s.licenses.Delete(ctx, licenseID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to delete license")
	}
	return nil
}
