package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// SearchAlertRepository persists workers' saved searches.
type SearchAlertRepository struct {
	db *sqlx.DB
}

func NewSearchAlertRepository(db *sqlx.DB) *SearchAlertRepository {
	return &SearchAlertRepository{db: db}
}

// Create inserts an alert.
func (r *SearchAlertRepository) Create(ctx context.Context, alert *models.SearchAlert) error {
	query := `
		INSERT INTO search_alerts (worker_id, keywords, categories, max_distance, active, count)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING id, count, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		alert.WorkerID, alert.Keywords, alert.Categories, alert.MaxDistance, alert.Active,
	).Scan(&alert.ID, &alert.Count, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("search alert repository: insert %w", err)
	}
	return nil
}

// GetByID returns an alert by id.
func (r *SearchAlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SearchAlert, error) {
	var alert models.SearchAlert
	query := `
		SELECT id, worker_id, keywords, categories, max_distance, active, count, created_at
		FROM search_alerts
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("search alert repository: get by id %w", err)
	}
	return &alert, nil
}

// ListByWorker returns all of the worker's alerts.
func (r *SearchAlertRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.SearchAlert, error) {
	alerts := []models.SearchAlert{}
	query := `
		SELECT id, worker_id, keywords, categories, max_distance, active, count, created_at
		FROM search_alerts
		WHERE worker_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &alerts, query, workerID); err != nil {
		return nil, fmt.Errorf("search alert repository: list by worker %w", err)
	}
	return alerts, nil
}

// ExistsDuplicate reports whether the worker already has an alert with the
// same keywords, max distance and category set.
func (r *SearchAlertRepository) ExistsDuplicate(ctx context.Context, alert *models.SearchAlert) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM search_alerts
			WHERE worker_id = $1
			  AND keywords IS NOT DISTINCT FROM $2
			  AND max_distance IS NOT DISTINCT FROM $3
			  AND (SELECT ARRAY(SELECT unnest(categories) ORDER BY 1))
			      = (SELECT ARRAY(SELECT unnest($4::text[]) ORDER BY 1))
		)
	`
	if err := r.db.GetContext(ctx, &exists, query,
		alert.WorkerID, alert.Keywords, alert.MaxDistance, alert.Categories); err != nil {
		return false, fmt.Errorf("search alert repository: exists duplicate %w", err)
	}
	return exists, nil
}

// SetActive flips the notification flag.
func (r *SearchAlertRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE search_alerts SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("search alert repository: set active %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// ResetCount zeroes the match counter.
func (r *SearchAlertRepository) ResetCount(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE search_alerts SET count = 0 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("search alert repository: reset count %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// Delete removes an alert.
func (r *SearchAlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM search_alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("search alert repository: delete %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// MatchAndIncrement finds every alert matching the job (category set,
// keyword against title/description, haversine distance between the job's
// property and the worker) and increments its counter in the same
// statement. Counting is unconditional; the caller decides notification
// based on the returned Active flags.
func (r *SearchAlertRepository) MatchAndIncrement(ctx context.Context, jobID uuid.UUID) ([]models.SearchAlert, error) {
	alerts := []models.SearchAlert{}
	query := `
		UPDATE search_alerts sa
		SET count = sa.count + 1
		FROM users w, job_requests jr
		LEFT JOIN properties p ON p.id = jr.property_id
		WHERE w.id = sa.worker_id
		  AND jr.id = $1
		  AND (
		      cardinality(sa.categories) = 0
		      OR jr.category = ANY(sa.categories)
		  )
		  AND (
		      sa.keywords IS NULL
		      OR jr.title ILIKE '%' || sa.keywords || '%'
		      OR jr.description ILIKE '%' || sa.keywords || '%'
		  )
		  AND (
		      sa.max_distance IS NULL
		      OR (
		          p.latitude IS NOT NULL AND p.longitude IS NOT NULL
		          AND w.latitude IS NOT NULL AND w.longitude IS NOT NULL
		          AND (6371 * acos(
		              cos(radians(w.latitude)) * cos(radians(p.latitude)) * cos(radians(p.longitude) - radians(w.longitude))
		              + sin(radians(w.latitude)) * sin(radians(p.latitude))
		          )) < sa.max_distance
		      )
		  )
		RETURNING sa.id, sa.worker_id, sa.keywords, sa.categories, sa.max_distance,
		          sa.active, sa.count, sa.created_at
	`
	if err := r.db.SelectContext(ctx, &alerts, query, jobID); err != nil {
		return nil, fmt.Errorf("search alert repository: match and increment %w", err)
	}
	return alerts, nil
}
