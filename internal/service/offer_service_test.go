package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
)

type mockOfferRepo struct {
	mock.Mock
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *mockOfferRepo) ExistsPending(ctx context.Context, jobID, workerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, jobID, workerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *models.Offer, note *models.OutboxNotification) error {
	args := m.Called(ctx, offer, note)
	return args.Error(0)
}

func (m *mockOfferRepo) Accept(ctx context.Context, offerID uuid.UUID, note *models.OutboxNotification) (int, error) {
	args := m.Called(ctx, offerID, note)
	return args.Int(0), args.Error(1)
}

func (m *mockOfferRepo) Update(ctx context.Context, offer *models.Offer, note *models.OutboxNotification) error {
	args := m.Called(ctx, offer, note)
	return args.Error(0)
}

func (m *mockOfferRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockOfferRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOfferRepo) LowestPendingPrice(ctx context.Context, jobID uuid.UUID) (float64, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockOfferRepo) ListForWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.OfferWithJob, error) {
	args := m.Called(ctx, workerID, limit, offset)
	return args.Get(0).([]models.OfferWithJob), args.Error(1)
}

func (m *mockOfferRepo) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.OfferWithWorker, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.OfferWithWorker), args.Error(1)
}

type mockJobRepoForOffers struct {
	mock.Mock
}

func (m *mockJobRepoForOffers) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func TestOfferService_Create_Success(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	jobID := uuid.New()
	workerID := uuid.New()
	customerID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: customerID,
		Title:      "Fix the kitchen sink",
		Status:     models.JobStatusPending,
	}, nil)
	offers.On("ExistsPending", ctx, jobID, workerID).Return(false, nil)
	offers.On("Create", ctx, mock.AnythingOfType("*models.Offer"), mock.AnythingOfType("*models.OutboxNotification")).Return(nil)

	offer, err := svc.Create(ctx, jobID, workerID, models.RoleWorker, 120.50, nil)

	assert.NoError(t, err)
	assert.NotNil(t, offer)
	assert.NotEqual(t, uuid.Nil, offer.ID)
	assert.Equal(t, workerID, offer.WorkerID)

	// The queued notification targets the customer and carries the offer id.
	note := offers.Calls[1].Arguments.Get(2).(*models.OutboxNotification)
	assert.Equal(t, customerID, note.UserID)
	assert.Equal(t, "offer-"+offer.ID.String(), note.Tag)
}

func TestOfferService_Create_RoleAndPriceChecks(t *testing.T) {
	svc := NewOfferService(new(mockOfferRepo), new(mockJobRepoForOffers))
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), uuid.New(), models.RoleCustomer, 10, nil)
	assert.True(t, apperror.IsForbidden(err))

	_, err = svc.Create(ctx, uuid.New(), uuid.New(), models.RoleWorker, -1, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestOfferService_Create_JobNotOpen(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusAccepted}, nil)

	_, err := svc.Create(ctx, jobID, uuid.New(), models.RoleWorker, 10, nil)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestOfferService_Create_HiddenJobLooksMissing(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusHidden}, nil)

	_, err := svc.Create(ctx, jobID, uuid.New(), models.RoleWorker, 10, nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestOfferService_Create_Duplicate(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	jobID := uuid.New()
	workerID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusPending}, nil)
	offers.On("ExistsPending", ctx, jobID, workerID).Return(true, nil)

	_, err := svc.Create(ctx, jobID, workerID, models.RoleWorker, 10, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestOfferService_Create_DuplicateRace(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	jobID := uuid.New()
	workerID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusPending}, nil)
	offers.On("ExistsPending", ctx, jobID, workerID).Return(false, nil)
	offers.On("Create", ctx, mock.Anything, mock.Anything).Return(repository.ErrDuplicateOffer)

	// A concurrent insert slipped between the check and the write.
	_, err := svc.Create(ctx, jobID, workerID, models.RoleWorker, 10, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestOfferService_Accept_Success(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	customerID := uuid.New()
	workerID := uuid.New()
	jobID := uuid.New()
	offerID := uuid.New()

	offers.On("GetByID", ctx, offerID).Return(&models.Offer{
		ID:       offerID,
		JobID:    jobID,
		WorkerID: workerID,
		Status:   models.OfferStatusPending,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: customerID,
		Title:      "Paint the fence",
		Status:     models.JobStatusPending,
	}, nil)
	offers.On("Accept", ctx, offerID, mock.AnythingOfType("*models.OutboxNotification")).Return(2, nil)

	offer, err := svc.Accept(ctx, offerID, customerID)

	assert.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, offer.Status)

	// The winner's notification goes to the worker.
	note := offers.Calls[1].Arguments.Get(2).(*models.OutboxNotification)
	assert.Equal(t, workerID, note.UserID)
}

func TestOfferService_Accept_NotTheCustomer(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	jobID := uuid.New()
	offerID := uuid.New()
	offers.On("GetByID", ctx, offerID).Return(&models.Offer{ID: offerID, JobID: jobID, Status: models.OfferStatusPending}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: uuid.New()}, nil)

	_, err := svc.Accept(ctx, offerID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
}

func TestOfferService_Accept_AlreadySettled(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	customerID := uuid.New()
	jobID := uuid.New()
	offerID := uuid.New()
	offers.On("GetByID", ctx, offerID).Return(&models.Offer{ID: offerID, JobID: jobID, Status: models.OfferStatusRejected}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: customerID}, nil)

	_, err := svc.Accept(ctx, offerID, customerID)
	assert.ErrorIs(t, err, apperror.ErrOfferNotPending)
}

func TestOfferService_Accept_LosesRace(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	customerID := uuid.New()
	jobID := uuid.New()
	offerID := uuid.New()

	// Still PENDING at read time, but another accept commits first.
	offers.On("GetByID", ctx, offerID).Return(&models.Offer{ID: offerID, JobID: jobID, Status: models.OfferStatusPending}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: customerID, Status: models.JobStatusPending}, nil)
	offers.On("Accept", ctx, offerID, mock.Anything).Return(0, repository.ErrOfferNotPending)

	_, err := svc.Accept(ctx, offerID, customerID)
	assert.ErrorIs(t, err, apperror.ErrOfferNotPending)
}

func TestOfferService_Withdraw(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockJobRepoForOffers))
	ctx := context.Background()

	workerID := uuid.New()
	offerID := uuid.New()
	offers.On("GetByID", ctx, offerID).Return(&models.Offer{ID: offerID, WorkerID: workerID, Status: models.OfferStatusPending}, nil)
	offers.On("UpdateStatus", ctx, offerID, models.OfferStatusWithdrawn).Return(nil)

	assert.NoError(t, svc.Withdraw(ctx, offerID, workerID))

	// Someone else's offer stays untouched.
	err := svc.Withdraw(ctx, offerID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
}

func TestOfferService_Update_PriceChangeRenotifies(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	workerID := uuid.New()
	jobID := uuid.New()
	offerID := uuid.New()

	offers.On("GetByID", ctx, offerID).Return(&models.Offer{
		ID:       offerID,
		JobID:    jobID,
		WorkerID: workerID,
		Price:    100,
		Status:   models.OfferStatusPending,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: uuid.New(), Title: "Tile the bathroom"}, nil)
	offers.On("Update", ctx, mock.AnythingOfType("*models.Offer"), mock.AnythingOfType("*models.OutboxNotification")).Return(nil)

	offer, err := svc.Update(ctx, offerID, workerID, 90, nil)

	assert.NoError(t, err)
	assert.Equal(t, 90.0, offer.Price)
	offers.AssertCalled(t, "Update", ctx, mock.AnythingOfType("*models.Offer"), mock.AnythingOfType("*models.OutboxNotification"))
}

func TestOfferService_Update_SamePriceStaysQuiet(t *testing.T) {
	offers := new(mockOfferRepo)
	jobs := new(mockJobRepoForOffers)
	svc := NewOfferService(offers, jobs)
	ctx := context.Background()

	workerID := uuid.New()
	offerID := uuid.New()
	comment := "can start monday"

	offers.On("GetByID", ctx, offerID).Return(&models.Offer{
		ID:       offerID,
		WorkerID: workerID,
		Price:    100,
		Status:   models.OfferStatusPending,
	}, nil)
	offers.On("Update", ctx, mock.AnythingOfType("*models.Offer"), (*models.OutboxNotification)(nil)).Return(nil)

	_, err := svc.Update(ctx, offerID, workerID, 100, &comment)

	assert.NoError(t, err)
	jobs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestOfferService_Delete_ByStatus(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockJobRepoForOffers))
	ctx := context.Background()
	workerID := uuid.New()

	doneID := uuid.New()
	offers.On("GetByID", ctx, doneID).Return(&models.Offer{ID: doneID, WorkerID: workerID, Status: models.OfferStatusDone}, nil)
	offers.On("UpdateStatus", ctx, doneID, models.OfferStatusHidden).Return(nil)
	assert.NoError(t, svc.Delete(ctx, doneID, workerID))
	offers.AssertNotCalled(t, "Delete", mock.Anything, doneID)

	rejectedID := uuid.New()
	offers.On("GetByID", ctx, rejectedID).Return(&models.Offer{ID: rejectedID, WorkerID: workerID, Status: models.OfferStatusRejected}, nil)
	offers.On("Delete", ctx, rejectedID).Return(nil)
	assert.NoError(t, svc.Delete(ctx, rejectedID, workerID))

	pendingID := uuid.New()
	offers.On("GetByID", ctx, pendingID).Return(&models.Offer{ID: pendingID, WorkerID: workerID, Status: models.OfferStatusPending}, nil)
	err := svc.Delete(ctx, pendingID, workerID)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestOfferService_ListForWorker_ClampsPaging(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockJobRepoForOffers))
	ctx := context.Background()
	workerID := uuid.New()

	offers.On("ListForWorker", ctx, workerID, 20, 0).Return([]models.OfferWithJob{}, nil)

	_, err := svc.ListForWorker(ctx, workerID, models.RoleWorker, 0, -5)
	assert.NoError(t, err)
	offers.AssertCalled(t, "ListForWorker", ctx, workerID, 20, 0)

	_, err = svc.ListForWorker(ctx, workerID, models.RoleCustomer, 10, 0)
	assert.True(t, apperror.IsForbidden(err))
}
