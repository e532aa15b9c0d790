package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/repository/common"
)

// JobRepository persists job requests.
type JobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// JobSearchFilter narrows job listings. Zero values mean "no filter".
type JobSearchFilter struct {
	Title      string
	Categories []string
	Statuses   []string
	Deadline   *time.Time
	PropertyID *uuid.UUID

	// Worker-side distance filter against the job's property coordinates.
	WorkerLat *float64
	WorkerLon *float64
	MaxKm     *float64
}

// GetByID returns a job by id, including HIDDEN ones; visibility is the
// service's call.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	query := `
		SELECT id, customer_id, property_id, title, description, category, deadline, status, created_at
		FROM job_requests
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository: get by id %w", err)
	}
	return &job, nil
}

// Create inserts a PENDING job.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO job_requests (customer_id, property_id, title, description, category, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'PENDING')
		RETURNING id, status, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		job.CustomerID, job.PropertyID, job.Title, job.Description, job.Category, job.Deadline,
	).Scan(&job.ID, &job.Status, &job.CreatedAt)
	if err != nil {
		return fmt.Errorf("job repository: insert job %w", err)
	}
	return nil
}

// Update rewrites the editable fields, leaving status untouched.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE job_requests
		SET property_id = $2, title = $3, description = $4, category = $5, deadline = $6
		WHERE id = $1
	`, job.ID, job.PropertyID, job.Title, job.Description, job.Category, job.Deadline)
	if err != nil {
		return fmt.Errorf("job repository: update job %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// SetStatus updates only the job status.
func (r *JobRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE job_requests SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("job repository: set status %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// MarkDone completes the job: inside one transaction the job row is
// locked, the ACCEPTED offer is required, and both move to DONE.
func (r *JobRepository) MarkDone(ctx context.Context, jobID uuid.UUID, notes ...*models.OutboxNotification) (*models.Offer, error) {
	var accepted models.Offer
	err := common.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var status string
		if err := tx.GetContext(ctx, &status,
			`SELECT status FROM job_requests WHERE id = $1 FOR UPDATE`, jobID); err != nil {
			if err == sql.ErrNoRows {
				return ErrJobNotFound
			}
			return fmt.Errorf("job repository: lock job %w", err)
		}

		offerQuery := `
			SELECT id, job_id, worker_id, price, comment, status, created_at
			FROM job_offers
			WHERE job_id = $1 AND status = 'ACCEPTED'
		`
		if err := tx.GetContext(ctx, &accepted, offerQuery, jobID); err != nil {
			if err == sql.ErrNoRows {
				return ErrNoAcceptedOffer
			}
			return fmt.Errorf("job repository: find accepted offer %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE job_offers SET status = 'DONE' WHERE id = $1`, accepted.ID); err != nil {
			return fmt.Errorf("job repository: complete offer %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE job_requests SET status = 'DONE' WHERE id = $1`, jobID); err != nil {
			return fmt.Errorf("job repository: complete job %w", err)
		}

		accepted.Status = models.OfferStatusDone

		for _, note := range notes {
			insert := `
				INSERT INTO notification_outbox (user_id, title, body, url, tag)
				VALUES ($1, $2, $3, $4, $5)
			`
			if _, err := tx.ExecContext(ctx, insert,
				note.UserID, note.Title, note.Body, note.URL, note.Tag); err != nil {
				return fmt.Errorf("job repository: enqueue notification %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &accepted, nil
}

// DeleteCascade physically removes the job with its offers and images.
func (r *JobRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return common.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM job_images WHERE job_id = $1`, id); err != nil {
			return fmt.Errorf("job repository: delete images %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM job_offers WHERE job_id = $1`, id); err != nil {
			return fmt.Errorf("job repository: delete offers %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM job_requests WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("job repository: delete job %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrJobNotFound
		}
		return nil
	})
}

// ListByCustomer returns the customer's jobs, HIDDEN excluded.
func (r *JobRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Job, error) {
	jobs := []models.Job{}
	query := `
		SELECT id, customer_id, property_id, title, description, category, deadline, status, created_at
		FROM job_requests
		WHERE customer_id = $1 AND status <> 'HIDDEN'
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &jobs, query, customerID); err != nil {
		return nil, fmt.Errorf("job repository: list by customer %w", err)
	}
	return jobs, nil
}

// FindOpenForWorker lists PENDING jobs from non-banned customers,
// excluding jobs on which the worker already has a PENDING offer; each
// row carries the lowest PENDING price.
func (r *JobRepository) FindOpenForWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.JobWithMinPrice, error) {
	jobs := []models.JobWithMinPrice{}
	query := `
		SELECT j.id, j.customer_id, j.property_id, j.title, j.description, j.category,
		       j.deadline, j.status, j.created_at,
		       COALESCE((
		           SELECT MIN(o.price) FROM job_offers o
		           WHERE o.job_id = j.id AND o.status = 'PENDING'
		       ), 0) AS lowest_price
		FROM job_requests j
		JOIN users c ON c.id = j.customer_id AND c.banned = FALSE
		WHERE j.status = 'PENDING'
		  AND NOT EXISTS (
		      SELECT 1 FROM job_offers mine
		      WHERE mine.job_id = j.id AND mine.worker_id = $1 AND mine.status = 'PENDING'
		  )
		ORDER BY j.created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &jobs, query, workerID, limit, offset); err != nil {
		return nil, fmt.Errorf("job repository: find open %w", err)
	}
	return jobs, nil
}

// SearchOpenForWorker is FindOpenForWorker plus title/category/deadline
// and haversine distance filters.
func (r *JobRepository) SearchOpenForWorker(ctx context.Context, workerID uuid.UUID, filter JobSearchFilter, limit, offset int) ([]models.JobWithMinPrice, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "j.status = 'PENDING'")
	conds = append(conds, fmt.Sprintf(`NOT EXISTS (
		SELECT 1 FROM job_offers mine
		WHERE mine.job_id = j.id AND mine.worker_id = %s AND mine.status = 'PENDING'
	)`, arg(workerID)))

	if filter.Title != "" {
		conds = append(conds, fmt.Sprintf("j.title ILIKE '%%' || %s || '%%'", arg(filter.Title)))
	}
	if len(filter.Categories) > 0 {
		conds = append(conds, fmt.Sprintf("j.category = ANY(%s)", arg(pq.Array(filter.Categories))))
	}
	if filter.Deadline != nil {
		conds = append(conds, fmt.Sprintf("j.deadline <= %s", arg(*filter.Deadline)))
	}
	if filter.MaxKm != nil && filter.WorkerLat != nil && filter.WorkerLon != nil {
		lat := arg(*filter.WorkerLat)
		lon := arg(*filter.WorkerLon)
		km := arg(*filter.MaxKm)
		conds = append(conds, fmt.Sprintf(`(
			p.latitude IS NOT NULL AND p.longitude IS NOT NULL
			AND (6371 * acos(
				cos(radians(%[1]s)) * cos(radians(p.latitude)) * cos(radians(p.longitude) - radians(%[2]s))
				+ sin(radians(%[1]s)) * sin(radians(p.latitude))
			)) < %[3]s
		)`, lat, lon, km))
	}

	query := fmt.Sprintf(`
		SELECT j.id, j.customer_id, j.property_id, j.title, j.description, j.category,
		       j.deadline, j.status, j.created_at,
		       COALESCE((
		           SELECT MIN(o.price) FROM job_offers o
		           WHERE o.job_id = j.id AND o.status = 'PENDING'
		       ), 0) AS lowest_price
		FROM job_requests j
		JOIN users c ON c.id = j.customer_id AND c.banned = FALSE
		LEFT JOIN properties p ON p.id = j.property_id
		WHERE %s
		ORDER BY j.created_at DESC
		LIMIT %s OFFSET %s
	`, strings.Join(conds, " AND "), arg(limit), arg(offset))

	jobs := []models.JobWithMinPrice{}
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("job repository: search open %w", err)
	}
	return jobs, nil
}

// SearchForCustomer filters the customer's own jobs.
func (r *JobRepository) SearchForCustomer(ctx context.Context, customerID uuid.UUID, filter JobSearchFilter, limit, offset int) ([]models.Job, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, fmt.Sprintf("j.customer_id = %s", arg(customerID)))
	conds = append(conds, "j.status <> 'HIDDEN'")

	if filter.Title != "" {
		conds = append(conds, fmt.Sprintf("j.title ILIKE '%%' || %s || '%%'", arg(filter.Title)))
	}
	if len(filter.Categories) > 0 {
		conds = append(conds, fmt.Sprintf("j.category = ANY(%s)", arg(pq.Array(filter.Categories))))
	}
	if len(filter.Statuses) > 0 {
		conds = append(conds, fmt.Sprintf("j.status = ANY(%s)", arg(pq.Array(filter.Statuses))))
	}
	if filter.Deadline != nil {
		conds = append(conds, fmt.Sprintf("j.deadline <= %s", arg(*filter.Deadline)))
	}
	if filter.PropertyID != nil {
		conds = append(conds, fmt.Sprintf("j.property_id = %s", arg(*filter.PropertyID)))
	}

	query := fmt.Sprintf(`
		SELECT j.id, j.customer_id, j.property_id, j.title, j.description, j.category,
		       j.deadline, j.status, j.created_at
		FROM job_requests j
		WHERE %s
		ORDER BY j.created_at DESC
		LIMIT %s OFFSET %s
	`, strings.Join(conds, " AND "), arg(limit), arg(offset))

	jobs := []models.Job{}
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("job repository: search for customer %w", err)
	}
	return jobs, nil
}
