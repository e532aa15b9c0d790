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

type mockRatingRepo struct {
	mock.Mock
}

func (m *mockRatingRepo) Create(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockRatingRepo) GetByAuthorAndJob(ctx context.Context, fromUserID, jobID uuid.UUID) (*models.Rating, error) {
	args := m.Called(ctx, fromUserID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *mockRatingRepo) Update(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockRatingRepo) ListLatestByRecipient(ctx context.Context, toUserID uuid.UUID, limit int) ([]models.Rating, error) {
	args := m.Called(ctx, toUserID, limit)
	return args.Get(0).([]models.Rating), args.Error(1)
}

func (m *mockRatingRepo) Stats(ctx context.Context, toUserID uuid.UUID) (*models.RatingStats, error) {
	args := m.Called(ctx, toUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingStats), args.Error(1)
}

type mockOfferRepoForRatings struct {
	mock.Mock
}

func (m *mockOfferRepoForRatings) FindDoneByJobID(ctx context.Context, jobID uuid.UUID) (*models.Offer, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func newRatingService() (*RatingService, *mockRatingRepo, *mockJobLookup, *mockOfferRepoForRatings) {
	ratings := new(mockRatingRepo)
	jobs := new(mockJobLookup)
	offers := new(mockOfferRepoForRatings)
	return NewRatingService(ratings, jobs, offers), ratings, jobs, offers
}

func doneJobFixture() (jobID, customerID, workerID uuid.UUID, job *models.Job, offer *models.Offer) {
	jobID = uuid.New()
	customerID = uuid.New()
	workerID = uuid.New()
	job = &models.Job{ID: jobID, CustomerID: customerID, Status: models.JobStatusDone}
	offer = &models.Offer{ID: uuid.New(), JobID: jobID, WorkerID: workerID, Status: models.OfferStatusDone}
	return
}

func TestRatingService_Rate_CustomerRatesWorker(t *testing.T) {
	svc, ratings, jobs, offers := newRatingService()
	ctx := context.Background()

	jobID, customerID, workerID, job, offer := doneJobFixture()
	jobs.On("GetByID", ctx, jobID).Return(job, nil)
	offers.On("FindDoneByJobID", ctx, jobID).Return(offer, nil)
	ratings.On("Create", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)

	rating, err := svc.Rate(ctx, jobID, customerID, 5, nil)

	assert.NoError(t, err)
	assert.Equal(t, workerID, rating.ToUserID)
	assert.Equal(t, customerID, rating.FromUserID)
}

func TestRatingService_Rate_WorkerRatesCustomer(t *testing.T) {
	svc, ratings, jobs, offers := newRatingService()
	ctx := context.Background()

	jobID, customerID, workerID, job, offer := doneJobFixture()
	jobs.On("GetByID", ctx, jobID).Return(job, nil)
	offers.On("FindDoneByJobID", ctx, jobID).Return(offer, nil)
	ratings.On("Create", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)

	rating, err := svc.Rate(ctx, jobID, workerID, 4, nil)

	assert.NoError(t, err)
	assert.Equal(t, customerID, rating.ToUserID)
}

func TestRatingService_Rate_OutsiderForbidden(t *testing.T) {
	svc, _, jobs, offers := newRatingService()
	ctx := context.Background()

	jobID, _, _, job, offer := doneJobFixture()
	jobs.On("GetByID", ctx, jobID).Return(job, nil)
	offers.On("FindDoneByJobID", ctx, jobID).Return(offer, nil)

	_, err := svc.Rate(ctx, jobID, uuid.New(), 5, nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestRatingService_Rate_UnfinishedJob(t *testing.T) {
	svc, _, jobs, _ := newRatingService()
	ctx := context.Background()

	jobID := uuid.New()
	customerID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: customerID,
		Status:     models.JobStatusAccepted,
	}, nil)

	_, err := svc.Rate(ctx, jobID, customerID, 5, nil)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestRatingService_Rate_HiddenJobStaysRatable(t *testing.T) {
	svc, ratings, jobs, offers := newRatingService()
	ctx := context.Background()

	jobID, customerID, _, job, offer := doneJobFixture()
	job.Status = models.JobStatusHidden
	jobs.On("GetByID", ctx, jobID).Return(job, nil)
	offers.On("FindDoneByJobID", ctx, jobID).Return(offer, nil)
	ratings.On("Create", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)

	_, err := svc.Rate(ctx, jobID, customerID, 3, nil)
	assert.NoError(t, err)
}

func TestRatingService_Rate_StarsRange(t *testing.T) {
	svc, _, _, _ := newRatingService()
	ctx := context.Background()

	_, err := svc.Rate(ctx, uuid.New(), uuid.New(), 0, nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Rate(ctx, uuid.New(), uuid.New(), 6, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestRatingService_Rate_Duplicate(t *testing.T) {
	svc, ratings, jobs, offers := newRatingService()
	ctx := context.Background()

	jobID, customerID, _, job, offer := doneJobFixture()
	jobs.On("GetByID", ctx, jobID).Return(job, nil)
	offers.On("FindDoneByJobID", ctx, jobID).Return(offer, nil)
	ratings.On("Create", ctx, mock.AnythingOfType("*models.Rating")).Return(repository.ErrDuplicateRating)

	_, err := svc.Rate(ctx, jobID, customerID, 5, nil)
	assert.ErrorIs(t, err, apperror.ErrRatingAlreadyExists)
}

func TestRatingService_Rate_NoCompletedOffer(t *testing.T) {
	svc, _, jobs, offers := newRatingService()
	ctx := context.Background()

	jobID := uuid.New()
	customerID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: customerID,
		Status:     models.JobStatusDone,
	}, nil)
	offers.On("FindDoneByJobID", ctx, jobID).Return(nil, repository.ErrOfferNotFound)

	_, err := svc.Rate(ctx, jobID, customerID, 5, nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRatingService_Update(t *testing.T) {
	svc, ratings, _, _ := newRatingService()
	ctx := context.Background()

	jobID := uuid.New()
	callerID := uuid.New()
	ratings.On("GetByAuthorAndJob", ctx, callerID, jobID).Return(&models.Rating{
		ID:         uuid.New(),
		FromUserID: callerID,
		JobID:      jobID,
		Stars:      2,
	}, nil)
	ratings.On("Update", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)

	rating, err := svc.Update(ctx, jobID, callerID, 4, nil)

	assert.NoError(t, err)
	assert.Equal(t, 4, rating.Stars)
}

func TestRatingService_Latest_ClampsLimit(t *testing.T) {
	svc, ratings, _, _ := newRatingService()
	ctx := context.Background()
	userID := uuid.New()

	ratings.On("ListLatestByRecipient", ctx, userID, 10).Return([]models.Rating{}, nil)

	_, err := svc.Latest(ctx, userID, 500)
	assert.NoError(t, err)
	ratings.AssertCalled(t, "ListLatestByRecipient", ctx, userID, 10)
}
