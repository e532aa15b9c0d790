package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByAuthorAndJob(ctx context.Context, fromUserID, jobID uuid.UUID) (*models.Rating, error)
	Update(ctx context.Context, rating *models.Rating) error
	ListLatestByRecipient(ctx context.Context, toUserID uuid.UUID, limit int) ([]models.Rating, error)
	Stats(ctx context.Context, toUserID uuid.UUID) (*models.RatingStats, error)
}

type OfferRepoForRatings interface {
	FindDoneByJobID(ctx context.Context, jobID uuid.UUID) (*models.Offer, error)
}

// RatingService gates feedback on finished work: only the two parties of
// a completed job may rate, each exactly once per job, and the recipient
// is always the counterparty.
type RatingService struct {
	ratings RatingRepository
	jobs    jobLookup
	offers  OfferRepoForRatings
}

func NewRatingService(ratings RatingRepository, jobs jobLookup, offers OfferRepoForRatings) *RatingService {
	return &RatingService{ratings: ratings, jobs: jobs, offers: offers}
}

// resolveRecipient returns who the caller is rating on this job, or a
// Forbidden error when the caller was not a party to it. Hiding a done
// job or offer does not revoke eligibility.
func (s *RatingService) resolveRecipient(ctx context.Context, jobID, callerID uuid.UUID) (uuid.UUID, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return uuid.Nil, mapRepoError(err)
	}
	if job.Status != models.JobStatusDone && job.Status != models.JobStatusHidden {
		return uuid.Nil, apperror.New(apperror.ErrCodeInvalidState, "job request is not finished yet")
	}

	offer, err := s.offers.FindDoneByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return uuid.Nil, apperror.New(apperror.ErrCodeNotFound, "job request has no completed offer")
		}
		return uuid.Nil, mapRepoError(err)
	}

	switch callerID {
	case job.CustomerID:
		return offer.WorkerID, nil
	case offer.WorkerID:
		return job.CustomerID, nil
	default:
		return uuid.Nil, apperror.New(apperror.ErrCodeForbidden, "only the parties of the job can rate it")
	}
}

// Rate creates the caller's rating for the job's counterparty.
func (s *RatingService) Rate(ctx context.Context, jobID, callerID uuid.UUID, stars int, comment *string) (*models.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "stars must be between 1 and 5")
	}
	if comment != nil && len(*comment) > 1023 {
		return nil, apperror.New(apperror.ErrCodeValidation, "comment must not exceed 1023 characters")
	}

	recipient, err := s.resolveRecipient(ctx, jobID, callerID)
	if err != nil {
		return nil, err
	}

	rating := &models.Rating{
		ID:         uuid.New(),
		FromUserID: callerID,
		ToUserID:   recipient,
		JobID:      jobID,
		Stars:      stars,
		Comment:    comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrDuplicateRating) {
			return nil, apperror.ErrRatingAlreadyExists
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to create rating")
	}
	return rating, nil
}

// Update edits the caller's existing rating for the job.
func (s *RatingService) Update(ctx context.Context, jobID, callerID uuid.UUID, stars int, comment *string) (*models.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "stars must be between 1 and 5")
	}
	rating, err := s.ratings.GetByAuthorAndJob(ctx, callerID, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	rating.Stars = stars
	rating.Comment = comment
	if err := s.ratings.Update(ctx, rating); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to update rating")
	}
	return rating, nil
}

// GetOwn returns the caller's rating for the job, if any.
func (s *RatingService) GetOwn(ctx context.Context, jobID, callerID uuid.UUID) (*models.Rating, error) {
	rating, err := s.ratings.GetByAuthorAndJob(ctx, callerID, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return rating, nil
}

// Latest returns the newest ratings a user has received.
func (s *RatingService) Latest(ctx context.Context, userID uuid.UUID, limit int) ([]models.Rating, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	ratings, err := s.ratings.ListLatestByRecipient(ctx, userID, limit)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list ratings")
	}
	return ratings, nil
}

// Stats returns the user's rating average and count.
func (s *RatingService) Stats(ctx context.Context, userID uuid.UUID) (*models.RatingStats, error) {
	stats, err := s.ratings.Stats(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to load rating stats")
	}
	return stats, nil
}
