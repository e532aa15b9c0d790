package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/repository/common"
)

// RatingRepository persists ratings between job counterparties.
type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating. The unique index on (from_user_id, job_id)
// backs the one-rating-per-author-per-job invariant.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (from_user_id, to_user_id, job_id, stars, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		rating.FromUserID, rating.ToUserID, rating.JobID, rating.Stars, rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "ratings_from_user_job_key") {
			return ErrDuplicateRating
		}
		return fmt.Errorf("rating repository: insert %w", err)
	}
	return nil
}

// GetByAuthorAndJob returns the rating a user left on a job, if any.
func (r *RatingRepository) GetByAuthorAndJob(ctx context.Context, fromUserID, jobID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	query := `
		SELECT id, from_user_id, to_user_id, job_id, stars, comment, created_at
		FROM ratings
		WHERE from_user_id = $1 AND job_id = $2
	`
	if err := r.db.GetContext(ctx, &rating, query, fromUserID, jobID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("rating repository: get by author and job %w", err)
	}
	return &rating, nil
}

// Update rewrites stars/comment of an existing rating.
func (r *RatingRepository) Update(ctx context.Context, rating *models.Rating) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ratings SET stars = $2, comment = $3 WHERE id = $1`,
		rating.ID, rating.Stars, rating.Comment)
	if err != nil {
		return fmt.Errorf("rating repository: update %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRatingNotFound
	}
	return nil
}

// ListLatestByRecipient returns the most recent ratings a user received.
func (r *RatingRepository) ListLatestByRecipient(ctx context.Context, toUserID uuid.UUID, limit int) ([]models.Rating, error) {
	ratings := []models.Rating{}
	query := `
		SELECT id, from_user_id, to_user_id, job_id, stars, comment, created_at
		FROM ratings
		WHERE to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &ratings, query, toUserID, limit); err != nil {
		return nil, fmt.Errorf("rating repository: list latest %w", err)
	}
	return ratings, nil
}

// Stats returns the average and count of a user's received ratings.
func (r *RatingRepository) Stats(ctx context.Context, toUserID uuid.UUID) (*models.RatingStats, error) {
	var stats models.RatingStats
	query := `
		SELECT COALESCE(AVG(stars), 0)::float8 AS average, COUNT(*) AS count
		FROM ratings
		WHERE to_user_id = $1
	`
	row := r.db.QueryRowxContext(ctx, query, toUserID)
	if err := row.Scan(&stats.Average, &stats.Count); err != nil {
		return nil, fmt.Errorf("rating repository: stats %w", err)
	}
	return &stats, nil
}
