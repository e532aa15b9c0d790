package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/goroutine"
	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
)

type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkDone(ctx context.Context, jobID uuid.UUID, notes ...*models.OutboxNotification) (*models.Offer, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Job, error)
	FindOpenForWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.JobWithMinPrice, error)
	SearchOpenForWorker(ctx context.Context, workerID uuid.UUID, filter repository.JobSearchFilter, limit, offset int) ([]models.JobWithMinPrice, error)
	SearchForCustomer(ctx context.Context, customerID uuid.UUID, filter repository.JobSearchFilter, limit, offset int) ([]models.Job, error)
}

type PropertyRepoForJobs interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type OfferRepoForJobs interface {
	FindAcceptedByJobID(ctx context.Context, jobID uuid.UUID) (*models.Offer, error)
}

type LicenseChecker interface {
	HasApproved(ctx context.Context, workerID uuid.UUID) (bool, error)
}

type ReportChecker interface {
	ExistsOpenByJobID(ctx context.Context, jobID uuid.UUID) (bool, error)
}

// AlertFanOut matches a freshly created job against saved searches.
// Runs outside the request path.
type AlertFanOut interface {
	FanOut(ctx context.Context, jobID uuid.UUID)
}

type userLocator interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// JobService owns the job lifecycle: PENDING -> ACCEPTED -> DONE, plus
// the HIDDEN soft-delete branch.
type JobService struct {
	jobs       JobRepository
	offers     OfferRepoForJobs
	properties PropertyRepoForJobs
	licenses   LicenseChecker
	reports    ReportChecker
	users      userLocator
	alerts     AlertFanOut
}

func NewJobService(jobs JobRepository, offers OfferRepoForJobs, properties PropertyRepoForJobs, licenses LicenseChecker, reports ReportChecker, users userLocator, alerts AlertFanOut) *JobService {
	return &JobService{
		jobs:       jobs,
		offers:     offers,
		properties: properties,
		licenses:   licenses,
		reports:    reports,
		users:      users,
		alerts:     alerts,
	}
}

type JobInput struct {
	Title       string
	Description string
	Category    string
	Deadline    *time.Time
	PropertyID  *uuid.UUID
}

func (s *JobService) validateInput(ctx context.Context, customerID uuid.UUID, in JobInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperror.New(apperror.ErrCodeValidation, "title must not be empty")
	}
	if len(in.Title) > 255 {
		return apperror.New(apperror.ErrCodeValidation, "title must not exceed 255 characters")
	}
	if len(in.Description) > 4095 {
		return apperror.New(apperror.ErrCodeValidation, "description must not exceed 4095 characters")
	}
	if _, ok := models.ValidCategories[in.Category]; !ok {
		return apperror.New(apperror.ErrCodeValidation, "unknown category")
	}
	if in.Deadline != nil && in.Deadline.Before(time.Now()) {
		return apperror.New(apperror.ErrCodeValidation, "deadline must be in the future")
	}
	if in.PropertyID != nil {
		property, err := s.properties.GetByID(ctx, *in.PropertyID)
		if err != nil {
			return mapRepoError(err)
		}
		if property.CustomerID != customerID {
			return apperror.New(apperror.ErrCodeForbidden, "property belongs to another customer")
		}
	}
	return nil
}

// Create posts a new PENDING job and fans it out to matching search
// alerts in the background.
func (s *JobService) Create(ctx context.Context, customerID uuid.UUID, role string, in JobInput) (*models.Job, error) {
	if role != models.RoleCustomer {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only customers can post job requests")
	}
	if err := s.validateInput(ctx, customerID, in); err != nil {
		return nil, err
	}

	job := &models.Job{
		ID:          uuid.New(),
		CustomerID:  customerID,
		PropertyID:  in.PropertyID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Deadline:    in.Deadline,
		Status:      models.JobStatusPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to create job request")
	}

	if s.alerts != nil {
		jobID := job.ID
		goroutine.SafeGo(func() {
			matchCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			s.alerts.FanOut(matchCtx, jobID)
		})
	}
	return job, nil
}

// GetByID applies the visibility rules: hidden jobs exist only for their
// customer; everyone else gets not-found.
func (s *JobService) GetByID(ctx context.Context, jobID, callerID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.Status == models.JobStatusHidden && job.CustomerID != callerID {
		return nil, apperror.ErrJobNotFound
	}
	return job, nil
}

// Update edits an open job. Jobs with an accepted offer are locked in.
func (s *JobService) Update(ctx context.Context, jobID, callerID uuid.UUID, in JobInput) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.CustomerID != callerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "you can only edit your own job requests")
	}
	if job.Status == models.JobStatusHidden {
		// A hidden job looks deleted to its owner too.
		return nil, apperror.New(apperror.ErrCodeNotFound, "job request not found")
	}
	if job.Status != models.JobStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "job request can no longer be edited")
	}
	if err := s.validateInput(ctx, callerID, in); err != nil {
		return nil, err
	}

	job.Title = in.Title
	job.Description = in.Description
	job.Category = in.Category
	job.Deadline = in.Deadline
	job.PropertyID = in.PropertyID
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to update job request")
	}
	return job, nil
}

// MarkDone completes an ACCEPTED job together with its accepted offer
// and queues the rating prompt for the worker.
func (s *JobService) MarkDone(ctx context.Context, jobID, callerID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.CustomerID != callerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the job's customer can mark it done")
	}
	if job.Status != models.JobStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "only accepted job requests can be marked done")
	}

	accepted, err := s.offers.FindAcceptedByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNoAcceptedOffer) {
			return nil, apperror.ErrNoAcceptedOffer
		}
		return nil, mapRepoError(err)
	}

	note := jobDoneNote(accepted.WorkerID, job.Title, job.ID)
	if _, err := s.jobs.MarkDone(ctx, jobID, note); err != nil {
		if errors.Is(err, repository.ErrNoAcceptedOffer) {
			return nil, apperror.ErrNoAcceptedOffer
		}
		return nil, mapRepoError(err)
	}
	job.Status = models.JobStatusDone
	return job, nil
}

// Delete removes a job on behalf of its customer or an admin. PENDING
// jobs (and the
// ACCEPTED ones whose work never happened) vanish physically with their
// offers and images; DONE jobs carry ratings and are only hidden, as is
// any job with an open report so admins keep the evidence. Deleting
// twice is an error.
func (s *JobService) Delete(ctx context.Context, jobID, callerID uuid.UUID, role string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return mapRepoError(err)
	}
	if job.CustomerID != callerID && role != models.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "you can only delete your own job requests")
	}

	if job.Status == models.JobStatusHidden {
		return apperror.ErrJobAlreadyDeleted
	}

	reported, err := s.reports.ExistsOpenByJobID(ctx, jobID)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to check reports")
	}
	if job.Status == models.JobStatusDone || reported {
		if err := s.jobs.SetStatus(ctx, jobID, models.JobStatusHidden); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to hide job request")
		}
		return nil
	}

	if err := s.jobs.DeleteCascade(ctx, jobID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to delete job request")
	}
	return nil
}

// ListForCustomer returns the customer's own jobs, hidden ones included.
func (s *JobService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Job, error) {
	jobs, err := s.jobs.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list job requests")
	}
	return jobs, nil
}

// ListOpenForWorker returns PENDING jobs the worker can still bid on.
// Requires an approved license.
func (s *JobService) ListOpenForWorker(ctx context.Context, workerID uuid.UUID, role string, limit, offset int) ([]models.JobWithMinPrice, error) {
	if role != models.RoleWorker {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only workers can browse open job requests")
	}
	approved, err := s.licenses.HasApproved(ctx, workerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to check license")
	}
	if !approved {
		// Unlicensed workers see nothing rather than an error.
		return []models.JobWithMinPrice{}, nil
	}
	limit, offset = clampPage(limit, offset)
	jobs, err := s.jobs.FindOpenForWorker(ctx, workerID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list open job requests")
	}
	return jobs, nil
}

// SearchOpenForWorker filters the open-jobs feed by title, categories
// and distance from the worker's stored coordinates.
func (s *JobService) SearchOpenForWorker(ctx context.Context, workerID uuid.UUID, role string, filter repository.JobSearchFilter, limit, offset int) ([]models.JobWithMinPrice, error) {
	if role != models.RoleWorker {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only workers can browse open job requests")
	}
	approved, err := s.licenses.HasApproved(ctx, workerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to check license")
	}
	if !approved {
		return []models.JobWithMinPrice{}, nil
	}
	if filter.MaxKm != nil {
		worker, err := s.users.GetByID(ctx, workerID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		if worker.Latitude == nil || worker.Longitude == nil {
			return nil, apperror.New(apperror.ErrCodeValidation,
				"a home address is required for distance search")
		}
		filter.WorkerLat = worker.Latitude
		filter.WorkerLon = worker.Longitude
	}
	limit, offset = clampPage(limit, offset)
	jobs, err := s.jobs.SearchOpenForWorker(ctx, workerID, filter, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to search job requests")
	}
	return jobs, nil
}

// SearchForCustomer filters the customer's own jobs.
func (s *JobService) SearchForCustomer(ctx context.Context, customerID uuid.UUID, filter repository.JobSearchFilter, limit, offset int) ([]models.Job, error) {
	limit, offset = clampPage(limit, offset)
	jobs, err := s.jobs.SearchForCustomer(ctx, customerID, filter, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to search job requests")
	}
	return jobs, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
