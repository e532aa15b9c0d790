package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
)

type mockAlertRepo struct {
	mock.Mock
}

func (m *mockAlertRepo) Create(ctx context.Context, alert *models.SearchAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *mockAlertRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SearchAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchAlert), args.Error(1)
}

func (m *mockAlertRepo) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.SearchAlert, error) {
	args := m.Called(ctx, workerID)
	return args.Get(0).([]models.SearchAlert), args.Error(1)
}

func (m *mockAlertRepo) ExistsDuplicate(ctx context.Context, alert *models.SearchAlert) (bool, error) {
	args := m.Called(ctx, alert)
	return args.Bool(0), args.Error(1)
}

func (m *mockAlertRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *mockAlertRepo) ResetCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAlertRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAlertRepo) MatchAndIncrement(ctx context.Context, jobID uuid.UUID) ([]models.SearchAlert, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchAlert), args.Error(1)
}

type mockOutbox struct {
	mock.Mock
}

func (m *mockOutbox) Enqueue(ctx context.Context, note *models.OutboxNotification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

type mockJobLookup struct {
	mock.Mock
}

func (m *mockJobLookup) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func newAlertService() (*SearchAlertService, *mockAlertRepo, *mockJobLookup, *mockOutbox) {
	alerts := new(mockAlertRepo)
	jobs := new(mockJobLookup)
	outbox := new(mockOutbox)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewSearchAlertService(alerts, jobs, outbox, log), alerts, jobs, outbox
}

func TestSearchAlertService_Create_SortsCategories(t *testing.T) {
	svc, alerts, _, _ := newAlertService()
	ctx := context.Background()
	workerID := uuid.New()

	alerts.On("ExistsDuplicate", ctx, mock.AnythingOfType("*models.SearchAlert")).Return(false, nil)
	alerts.On("Create", ctx, mock.AnythingOfType("*models.SearchAlert")).Return(nil)

	alert, err := svc.Create(ctx, workerID, models.RoleWorker, SearchAlertInput{
		Categories: []string{models.CategoryPlumbing, models.CategoryCarpentry},
	})

	assert.NoError(t, err)
	assert.True(t, alert.Active)
	assert.Equal(t, []string{models.CategoryCarpentry, models.CategoryPlumbing}, []string(alert.Categories))
}

func TestSearchAlertService_Create_Validation(t *testing.T) {
	svc, _, _, _ := newAlertService()
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), models.RoleCustomer, SearchAlertInput{})
	assert.True(t, apperror.IsForbidden(err))

	_, err = svc.Create(ctx, uuid.New(), models.RoleWorker, SearchAlertInput{Categories: []string{"BAKING"}})
	assert.True(t, apperror.IsValidation(err))

	zero := 0.0
	_, err = svc.Create(ctx, uuid.New(), models.RoleWorker, SearchAlertInput{MaxDistance: &zero})
	assert.True(t, apperror.IsValidation(err))
}

func TestSearchAlertService_Create_Duplicate(t *testing.T) {
	svc, alerts, _, _ := newAlertService()
	ctx := context.Background()

	alerts.On("ExistsDuplicate", ctx, mock.AnythingOfType("*models.SearchAlert")).Return(true, nil)

	_, err := svc.Create(ctx, uuid.New(), models.RoleWorker, SearchAlertInput{})
	assert.ErrorIs(t, err, apperror.ErrAlertAlreadyExists)
	alerts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSearchAlertService_SetActive_OwnershipCheck(t *testing.T) {
	svc, alerts, _, _ := newAlertService()
	ctx := context.Background()

	alertID := uuid.New()
	alerts.On("GetByID", ctx, alertID).Return(&models.SearchAlert{ID: alertID, WorkerID: uuid.New()}, nil)

	err := svc.SetActive(ctx, alertID, uuid.New(), false)
	assert.True(t, apperror.IsForbidden(err))
}

func TestSearchAlertService_FanOut_NotifiesActiveOnly(t *testing.T) {
	svc, alerts, jobs, outbox := newAlertService()
	ctx := context.Background()

	jobID := uuid.New()
	activeWorker := uuid.New()
	pausedWorker := uuid.New()

	alerts.On("MatchAndIncrement", ctx, jobID).Return([]models.SearchAlert{
		{ID: uuid.New(), WorkerID: activeWorker, Active: true},
		{ID: uuid.New(), WorkerID: pausedWorker, Active: false},
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Title: "Mow the lawn"}, nil)
	outbox.On("Enqueue", ctx, mock.AnythingOfType("*models.OutboxNotification")).Return(nil)

	svc.FanOut(ctx, jobID)

	outbox.AssertNumberOfCalls(t, "Enqueue", 1)
	note := outbox.Calls[0].Arguments.Get(1).(*models.OutboxNotification)
	assert.Equal(t, activeWorker, note.UserID)
}

func TestSearchAlertService_FanOut_EnqueueFailureIsIsolated(t *testing.T) {
	svc, alerts, jobs, outbox := newAlertService()
	ctx := context.Background()

	jobID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	alerts.On("MatchAndIncrement", ctx, jobID).Return([]models.SearchAlert{
		{ID: uuid.New(), WorkerID: first, Active: true},
		{ID: uuid.New(), WorkerID: second, Active: true},
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Title: "Mow the lawn"}, nil)
	outbox.On("Enqueue", ctx, mock.MatchedBy(func(n *models.OutboxNotification) bool {
		return n.UserID == first
	})).Return(errors.New("outbox down"))
	outbox.On("Enqueue", ctx, mock.MatchedBy(func(n *models.OutboxNotification) bool {
		return n.UserID == second
	})).Return(nil)

	svc.FanOut(ctx, jobID)

	// The second recipient still gets its notification.
	outbox.AssertNumberOfCalls(t, "Enqueue", 2)
}

func TestSearchAlertService_FanOut_NoMatchesNoLookup(t *testing.T) {
	svc, alerts, jobs, outbox := newAlertService()
	ctx := context.Background()

	jobID := uuid.New()
	alerts.On("MatchAndIncrement", ctx, jobID).Return([]models.SearchAlert{}, nil)

	svc.FanOut(ctx, jobID)

	jobs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	outbox.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}
