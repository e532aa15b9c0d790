package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
	"github.com/thorzos/handyhub-backend/internal/storage"
)

type JobImageRepository interface {
	Add(ctx context.Context, jobID uuid.UUID, filePath, contentType string) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobImage, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.JobImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ImageStore interface {
	Save(ctx context.Context, jobID uuid.UUID, originalName string, r io.Reader) (string, string, error)
	Open(ctx context.Context, relativePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, relativePath string) error
}

const maxImagesPerJob = 5

// JobImageService manages the photo gallery of a job.
type JobImageService struct {
	images JobImageRepository
	jobs   jobLookup
	store  ImageStore
}

func NewJobImageService(images JobImageRepository, jobs jobLookup, store ImageStore) *JobImageService {
	return &JobImageService{images: images, jobs: jobs, store: store}
}

func (s *JobImageService) ownedJob(ctx context.Context, jobID, callerID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.CustomerID != callerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "you can only manage images of your own job requests")
	}
	return job, nil
}

// Upload attaches a photo to the job.
func (s *JobImageService) Upload(ctx context.Context, jobID, callerID uuid.UUID, originalName string, r io.Reader) (*models.JobImage, error) {
	if _, err := s.ownedJob(ctx, jobID, callerID); err != nil {
		return nil, err
	}

	existing, err := s.images.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list images")
	}
	if len(existing) >= maxImagesPerJob {
		return nil, apperror.New(apperror.ErrCodeValidation, "a job request can have at most 5 images")
	}

	path, contentType, err := s.store.Save(ctx, jobID, originalName, r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotAnImage):
			return nil, apperror.New(apperror.ErrCodeValidation, "file is not an image")
		case errors.Is(err, storage.ErrTooLarge):
			return nil, apperror.New(apperror.ErrCodeValidation, "file exceeds the upload limit")
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to store image")
		}
	}

	id, err := s.images.Add(ctx, jobID, path, contentType)
	if err != nil {
		_ = s.store.Delete(ctx, path)
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to save image")
	}

	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return image, nil
}

// List returns the job's gallery; the job must be visible to the caller.
func (s *JobImageService) List(ctx context.Context, jobID, callerID uuid.UUID) ([]models.JobImage, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.Status == models.JobStatusHidden && job.CustomerID != callerID {
		return nil, apperror.ErrJobNotFound
	}
	images, err := s.images.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list images")
	}
	return images, nil
}

// Open streams a stored image.
func (s *JobImageService) Open(ctx context.Context, imageID uuid.UUID) (*models.JobImage, io.ReadCloser, error) {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil, nil, apperror.New(apperror.ErrCodeNotFound, "image not found")
		}
		return nil, nil, mapRepoError(err)
	}
	rc, err := s.store.Open(ctx, image.FilePath)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to open image")
	}
	return image, rc, nil
}

// Delete removes one image from the gallery and from disk.
func (s *JobImageService) Delete(ctx context.Context, imageID, callerID uuid.UUID) error {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "image not found")
		}
		return mapRepoError(err)
	}
	if _, err := s.ownedJob(ctx, image.JobID, callerID); err != nil {
		return err
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		return mapRepoError(err)
	}
	_ = s.store.Delete(ctx, image.FilePath)
	return nil
}
