package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// JobImageRepository persists photo attachments of jobs.
type JobImageRepository struct {
	db *sqlx.DB
}

func NewJobImageRepository(db *sqlx.DB) *JobImageRepository {
	return &JobImageRepository{db: db}
}

const jobImageColumns = `id, job_id, file_path, content_type, position, created_at`

// Add appends an image at the end of the job's gallery.
func (r *JobImageRepository) Add(ctx context.Context, jobID uuid.UUID, filePath, contentType string) (uuid.UUID, error) {
	var id uuid.UUID
	query := `
		INSERT INTO job_images (job_id, file_path, content_type, position)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM job_images WHERE job_id = $1))
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query, jobID, filePath, contentType).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("job image repository: insert %w", err)
	}
	return id, nil
}

func (r *JobImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JobImage, error) {
	var image models.JobImage
	if err := r.db.GetContext(ctx, &image,
		`SELECT `+jobImageColumns+` FROM job_images WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("job image repository: get %w", err)
	}
	return &image, nil
}

func (r *JobImageRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.JobImage, error) {
	images := []models.JobImage{}
	if err := r.db.SelectContext(ctx, &images,
		`SELECT `+jobImageColumns+` FROM job_images WHERE job_id = $1 ORDER BY position`, jobID); err != nil {
		return nil, fmt.Errorf("job image repository: list %w", err)
	}
	return images, nil
}

func (r *JobImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM job_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("job image repository: delete %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrImageNotFound
	}
	return nil
}
