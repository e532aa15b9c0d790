package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
)

// OfferRepository is the storage surface the arbitration engine needs.
type OfferRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ExistsPending(ctx context.Context, jobID, workerID uuid.UUID) (bool, error)
	Create(ctx context.Context, offer *models.Offer, note *models.OutboxNotification) error
	Accept(ctx context.Context, offerID uuid.UUID, note *models.OutboxNotification) (int, error)
	Update(ctx context.Context, offer *models.Offer, note *models.OutboxNotification) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	LowestPendingPrice(ctx context.Context, jobID uuid.UUID) (float64, error)
	ListForWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.OfferWithJob, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.OfferWithWorker, error)
}

// JobRepoForOffers is the job lookup the engine needs.
type JobRepoForOffers interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// OfferService owns the offer state machine and the accept-one/reject-rest
// arbitration.
type OfferService struct {
	offers OfferRepository
	jobs   JobRepoForOffers
}

func NewOfferService(offers OfferRepository, jobs JobRepoForOffers) *OfferService {
	return &OfferService{offers: offers, jobs: jobs}
}

// Create submits a PENDING offer on a job and queues a notification to the
// job's customer.
func (s *OfferService) Create(ctx context.Context, jobID, workerID uuid.UUID, role string, price float64, comment *string) (*models.Offer, error) {
	if role != models.RoleWorker {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only workers can make offers on job requests")
	}
	if price < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "price must not be negative")
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.Status == models.JobStatusHidden {
		return nil, apperror.ErrJobNotFound
	}
	if job.Status != models.JobStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "job request is not open for offers")
	}

	exists, err := s.offers.ExistsPending(ctx, jobID, workerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to check existing offers")
	}
	if exists {
		return nil, apperror.ErrOfferAlreadyExists
	}

	offer := &models.Offer{
		ID:       uuid.New(),
		JobID:    jobID,
		WorkerID: workerID,
		Price:    price,
		Comment:  comment,
	}
	note := newOfferNote(job.CustomerID, job.Title, price, offer.ID)
	if err := s.offers.Create(ctx, offer, note); err != nil {
		if errors.Is(err, repository.ErrDuplicateOffer) {
			return nil, apperror.ErrOfferAlreadyExists
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to create offer")
	}

	return offer, nil
}

// Accept is the arbitration transition: the chosen offer becomes ACCEPTED,
// every sibling PENDING offer becomes REJECTED and the job advances to
// ACCEPTED, all in one transaction. Only the job's customer may accept,
// and only while the offer is still PENDING. Whoever loses a concurrent
// race observes the InvalidState error.
func (s *OfferService) Accept(ctx context.Context, offerID, callerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	job, err := s.jobs.GetByID(ctx, offer.JobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.CustomerID != callerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the job's customer can accept offers")
	}
	if offer.Status != models.OfferStatusPending {
		return nil, apperror.ErrOfferNotPending
	}

	note := offerAcceptedNote(offer.WorkerID, job.Title, job.ID)
	if _, err := s.offers.Accept(ctx, offerID, note); err != nil {
		if errors.Is(err, repository.ErrOfferNotPending) {
			return nil, apperror.ErrOfferNotPending
		}
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, apperror.ErrOfferNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to accept offer")
	}

	offer.Status = models.OfferStatusAccepted
	return offer, nil
}

// Withdraw retracts the worker's own PENDING offer.
func (s *OfferService) Withdraw(ctx context.Context, offerID, callerID uuid.UUID) error {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return mapRepoError(err)
	}
	if offer.WorkerID != callerID {
		return apperror.New(apperror.ErrCodeForbidden, "you can only withdraw your own offers")
	}
	if offer.Status != models.OfferStatusPending {
		return apperror.ErrOfferNotPending
	}

	if err := s.offers.UpdateStatus(ctx, offerID, models.OfferStatusWithdrawn); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to withdraw offer")
	}
	return nil
}

// Update edits price/comment of the worker's own PENDING offer. A price
// change re-notifies the customer; created_at is reset either way so the
// customer sees the offer as fresh.
func (s *OfferService) Update(ctx context.Context, offerID, callerID uuid.UUID, price float64, comment *string) (*models.Offer, error) {
	if price < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "price must not be negative")
	}

	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if offer.WorkerID != callerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "you can only update your own offers")
	}
	if offer.Status != models.OfferStatusPending {
		return nil, apperror.ErrOfferNotPending
	}

	var note *models.OutboxNotification
	if offer.Price != price {
		job, err := s.jobs.GetByID(ctx, offer.JobID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		note = newOfferNote(job.CustomerID, job.Title, price, offer.ID)
	}

	offer.Price = price
	offer.Comment = comment
	if err := s.offers.Update(ctx, offer, note); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to update offer")
	}
	return offer, nil
}

// Delete removes an offer from the worker's list. Only settled offers may
// go: REJECTED and WITHDRAWN rows are removed physically, DONE rows are
// only hidden because ratings still reference them.
func (s *OfferService) Delete(ctx context.Context, offerID, callerID uuid.UUID) error {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return mapRepoError(err)
	}
	if offer.WorkerID != callerID {
		return apperror.New(apperror.ErrCodeForbidden, "you can only delete your own offers")
	}

	switch offer.Status {
	case models.OfferStatusDone:
		if err := s.offers.UpdateStatus(ctx, offerID, models.OfferStatusHidden); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to hide offer")
		}
		return nil
	case models.OfferStatusRejected, models.OfferStatusWithdrawn:
		if err := s.offers.Delete(ctx, offerID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to delete offer")
		}
		return nil
	default:
		return apperror.New(apperror.ErrCodeInvalidState,
			"only offers with state REJECTED, WITHDRAWN or DONE can be deleted")
	}
}

// FindLowestPrice returns the minimum among the job's PENDING offers,
// 0 when none are pending.
func (s *OfferService) FindLowestPrice(ctx context.Context, jobID uuid.UUID) (float64, error) {
	lowest, err := s.offers.LowestPendingPrice(ctx, jobID)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to compute lowest price")
	}
	return lowest, nil
}

// ListForWorker returns the worker's sent offers, hidden ones excluded.
func (s *OfferService) ListForWorker(ctx context.Context, workerID uuid.UUID, role string, limit, offset int) ([]models.OfferWithJob, error) {
	if role != models.RoleWorker {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only workers can see their sent job offers")
	}
	limit, offset = clampPage(limit, offset)
	offers, err := s.offers.ListForWorker(ctx, workerID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list offers")
	}
	return offers, nil
}

// ListForCustomer returns received offers across the customer's jobs.
func (s *OfferService) ListForCustomer(ctx context.Context, customerID uuid.UUID, role string) ([]models.OfferWithWorker, error) {
	if role != models.RoleCustomer {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only customers can see their received job offers")
	}
	offers, err := s.offers.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list offers")
	}
	return offers, nil
}

// mapRepoError converts repository sentinels into API error conditions.
func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrJobNotFound):
		return apperror.ErrJobNotFound
	case errors.Is(err, repository.ErrOfferNotFound):
		return apperror.ErrOfferNotFound
	case errors.Is(err, repository.ErrAlertNotFound):
		return apperror.ErrAlertNotFound
	case errors.Is(err, repository.ErrRatingNotFound):
		return apperror.ErrRatingNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return apperror.ErrUserNotFound
	case errors.Is(err, repository.ErrPropertyNotFound):
		return apperror.ErrPropertyNotFound
	case errors.Is(err, repository.ErrLicenseNotFound):
		return apperror.ErrLicenseNotFound
	case errors.Is(err, repository.ErrReportNotFound):
		return apperror.ErrReportNotFound
	case errors.Is(err, repository.ErrImageNotFound):
		return apperror.New(apperror.ErrCodeNotFound, "image not found")
	default:
		return apperror.Wrap(err, apperror.ErrCodeInternal, "storage failure")
	}
}
