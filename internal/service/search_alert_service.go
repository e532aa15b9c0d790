package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
)

type SearchAlertRepository interface {
	Create(ctx context.Context, alert *models.SearchAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SearchAlert, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.SearchAlert, error)
	ExistsDuplicate(ctx context.Context, alert *models.SearchAlert) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ResetCount(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	MatchAndIncrement(ctx context.Context, jobID uuid.UUID) ([]models.SearchAlert, error)
}

type OutboxEnqueuer interface {
	Enqueue(ctx context.Context, note *models.OutboxNotification) error
}

type jobLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// SearchAlertService manages saved searches and runs the fan-out that
// matches new jobs against them.
type SearchAlertService struct {
	alerts SearchAlertRepository
	jobs   jobLookup
	outbox OutboxEnqueuer
	log    *logrus.Logger
}

func NewSearchAlertService(alerts SearchAlertRepository, jobs jobLookup, outbox OutboxEnqueuer, log *logrus.Logger) *SearchAlertService {
	return &SearchAlertService{alerts: alerts, jobs: jobs, outbox: outbox, log: log}
}

type SearchAlertInput struct {
	Keywords    *string
	Categories  []string
	MaxDistance *float64
}

// Create saves a new alert for the worker. An alert identical in
// keywords, categories and distance to an existing one is rejected.
func (s *SearchAlertService) Create(ctx context.Context, workerID uuid.UUID, role string, in SearchAlertInput) (*models.SearchAlert, error) {
	if role != models.RoleWorker {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only workers can save search alerts")
	}
	for _, c := range in.Categories {
		if _, ok := models.ValidCategories[c]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "unknown category")
		}
	}
	if in.MaxDistance != nil && *in.MaxDistance <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "max distance must be positive")
	}
	if in.Keywords != nil && len(*in.Keywords) > 255 {
		return nil, apperror.New(apperror.ErrCodeValidation, "keywords must not exceed 255 characters")
	}

	categories := append([]string(nil), in.Categories...)
	sort.Strings(categories)

	alert := &models.SearchAlert{
		ID:          uuid.New(),
		WorkerID:    workerID,
		Keywords:    in.Keywords,
		Categories:  categories,
		MaxDistance: in.MaxDistance,
		Active:      true,
	}
	dup, err := s.alerts.ExistsDuplicate(ctx, alert)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to check for duplicate alert")
	}
	if dup {
		return nil, apperror.ErrAlertAlreadyExists
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to create search alert")
	}
	return alert, nil
}

func (s *SearchAlertService) List(ctx context.Context, workerID uuid.UUID) ([]models.SearchAlert, error) {
	alerts, err := s.alerts.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list search alerts")
	}
	return alerts, nil
}

func (s *SearchAlertService) owned(ctx context.Context, alertID, callerID uuid.UUID) (*models.SearchAlert, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if alert.WorkerID != callerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "you can only manage your own search alerts")
	}
	return alert, nil
}

// SetActive pauses or resumes notification delivery. The match counter
// keeps running either way.
func (s *SearchAlertService) SetActive(ctx context.Context, alertID, callerID uuid.UUID, active bool) error {
	if _, err := s.owned(ctx, alertID, callerID); err != nil {
		return err
	}
	if err := s.alerts.SetActive(ctx, alertID, active); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to update search alert")
	}
	return nil
}

// ResetCount zeroes the unseen-match counter after the worker viewed
// the results.
func (s *SearchAlertService) ResetCount(ctx context.Context, alertID, callerID uuid.UUID) error {
	if _, err := s.owned(ctx, alertID, callerID); err != nil {
		return err
	}
	if err := s.alerts.ResetCount(ctx, alertID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to reset search alert count")
	}
	return nil
}

func (s *SearchAlertService) Delete(ctx context.Context, alertID, callerID uuid.UUID) error {
	if _, err := s.owned(ctx, alertID, callerID); err != nil {
		return err
	}
	if err := s.alerts.Delete(ctx, alertID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to delete search alert")
	}
	return nil
}

// FanOut matches the job against all saved searches: every match bumps
// the alert's counter, and active alerts additionally get a notification
// queued. One failing recipient never blocks the rest, and nothing here
// surfaces back to the job-posting request.
func (s *SearchAlertService) FanOut(ctx context.Context, jobID uuid.UUID) {
	matched, err := s.alerts.MatchAndIncrement(ctx, jobID)
	if err != nil {
		s.log.WithError(err).WithField("job_id", jobID).Error("search alert matching failed")
		return
	}
	if len(matched) == 0 {
		return
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		s.log.WithError(err).WithField("job_id", jobID).Error("search alert fan-out: job lookup failed")
		return
	}

	for _, alert := range matched {
		if !alert.Active {
			continue
		}
		note := alertMatchNote(alert.WorkerID, job.Title, alert.ID)
		if err := s.outbox.Enqueue(ctx, note); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"job_id":   jobID,
				"alert_id": alert.ID,
			}).Error("search alert fan-out: enqueue failed")
		}
	}
}
