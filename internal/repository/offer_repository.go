package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/repository/common"
)

// Repository-level errors.
var (
	ErrJobNotFound      = errors.New("job request not found")
	ErrOfferNotFound    = errors.New("job offer not found")
	ErrOfferNotPending  = errors.New("offer is not pending")
	ErrNoAcceptedOffer  = errors.New("no accepted offer")
	ErrDuplicateOffer   = errors.New("duplicate pending offer")
	ErrDuplicateRating  = errors.New("duplicate rating")
	ErrDuplicateUser    = errors.New("username or email already taken")
	ErrAlertNotFound    = errors.New("search alert not found")
	ErrRatingNotFound   = errors.New("rating not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrLicenseNotFound  = errors.New("license not found")
	ErrReportNotFound   = errors.New("report not found")
	ErrImageNotFound    = errors.New("job image not found")
	ErrChatNotFound     = errors.New("chat not found")
)

// OfferRepository persists job offers and owns the arbitration transaction.
type OfferRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// GetByID returns an offer by id.
func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	query := `
		SELECT id, job_id, worker_id, price, comment, status, created_at
		FROM job_offers
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &offer, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("offer repository: get by id %w", err)
	}
	return &offer, nil
}

// ExistsPending reports whether the worker already has a PENDING offer on
// the job.
func (r *OfferRepository) ExistsPending(ctx context.Context, jobID, workerID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM job_offers
			WHERE job_id = $1 AND worker_id = $2 AND status = 'PENDING'
		)
	`
	if err := r.db.GetContext(ctx, &exists, query, jobID, workerID); err != nil {
		return false, fmt.Errorf("offer repository: exists pending %w", err)
	}
	return exists, nil
}

// Create inserts a PENDING offer and enqueues the customer notification in
// the same transaction. The partial unique index on (job_id, worker_id)
// backs the duplicate-bid check under concurrency.
func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer, note *models.OutboxNotification) error {
	return common.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO job_offers (id, job_id, worker_id, price, comment, status)
			VALUES ($1, $2, $3, $4, $5, 'PENDING')
			RETURNING status, created_at
		`
		err := tx.QueryRowxContext(ctx, query,
			offer.ID, offer.JobID, offer.WorkerID, offer.Price, offer.Comment,
		).Scan(&offer.Status, &offer.CreatedAt)
		if err != nil {
			if common.IsUniqueViolation(err, "job_offers_one_pending_per_worker") {
				return ErrDuplicateOffer
			}
			return fmt.Errorf("offer repository: insert offer %w", err)
		}

		return enqueueNotification(ctx, tx, note)
	})
}

// Accept performs the arbitration transaction: the job row is locked, the
// offer moves to ACCEPTED, every sibling PENDING offer to REJECTED and the
// job to ACCEPTED. A chat between the two parties and the acceptance
// notification are created in the same transaction. Returns the number of
// rejected siblings.
func (r *OfferRepository) Accept(ctx context.Context, offerID uuid.UUID, note *models.OutboxNotification) (int, error) {
	var rejected int
	err := common.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Serializes concurrent accepts on siblings of the same job.
		var job models.Job
		lockQuery := `
			SELECT j.id, j.customer_id, j.status
			FROM job_requests j
			JOIN job_offers o ON o.job_id = j.id
			WHERE o.id = $1
			FOR UPDATE OF j
		`
		if err := tx.GetContext(ctx, &job, lockQuery, offerID); err != nil {
			if err == sql.ErrNoRows {
				return ErrOfferNotFound
			}
			return fmt.Errorf("offer repository: lock job %w", err)
		}

		// Re-check inside the lock: a concurrent accept may have rejected
		// this offer already.
		var offer models.Offer
		offerQuery := `SELECT id, job_id, worker_id, price, status FROM job_offers WHERE id = $1`
		if err := tx.GetContext(ctx, &offer, offerQuery, offerID); err != nil {
			return fmt.Errorf("offer repository: reload offer %w", err)
		}
		if offer.Status != models.OfferStatusPending {
			return ErrOfferNotPending
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE job_offers SET status = 'ACCEPTED' WHERE id = $1`, offerID); err != nil {
			return fmt.Errorf("offer repository: accept offer %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE job_offers SET status = 'REJECTED'
			WHERE job_id = $1 AND id <> $2 AND status = 'PENDING'
		`, offer.JobID, offerID)
		if err != nil {
			return fmt.Errorf("offer repository: reject siblings %w", err)
		}
		n, _ := res.RowsAffected()
		rejected = int(n)

		if _, err := tx.ExecContext(ctx,
			`UPDATE job_requests SET status = 'ACCEPTED' WHERE id = $1`, offer.JobID); err != nil {
			return fmt.Errorf("offer repository: advance job %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chats (job_id, customer_id, worker_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (job_id) DO NOTHING
		`, offer.JobID, job.CustomerID, offer.WorkerID); err != nil {
			return fmt.Errorf("offer repository: create chat %w", err)
		}

		return enqueueNotification(ctx, tx, note)
	})
	return rejected, err
}

// UpdateStatus sets the status of a single offer.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE job_offers SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("offer repository: update status %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// Update rewrites price/comment and resets created_at, optionally
// re-notifying the customer in the same transaction.
func (r *OfferRepository) Update(ctx context.Context, offer *models.Offer, note *models.OutboxNotification) error {
	return common.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE job_offers
			SET price = $2, comment = $3, created_at = NOW()
			WHERE id = $1
			RETURNING created_at
		`
		if err := tx.QueryRowxContext(ctx, query, offer.ID, offer.Price, offer.Comment).
			Scan(&offer.CreatedAt); err != nil {
			if err == sql.ErrNoRows {
				return ErrOfferNotFound
			}
			return fmt.Errorf("offer repository: update offer %w", err)
		}

		if note == nil {
			return nil
		}
		return enqueueNotification(ctx, tx, note)
	})
}

// Delete physically removes an offer row.
func (r *OfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM job_offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("offer repository: delete offer %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// FindAcceptedByJobID returns the job's ACCEPTED offer, if any.
func (r *OfferRepository) FindAcceptedByJobID(ctx context.Context, jobID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	query := `
		SELECT id, job_id, worker_id, price, comment, status, created_at
		FROM job_offers
		WHERE job_id = $1 AND status = 'ACCEPTED'
	`
	if err := r.db.GetContext(ctx, &offer, query, jobID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoAcceptedOffer
		}
		return nil, fmt.Errorf("offer repository: find accepted %w", err)
	}
	return &offer, nil
}

// FindDoneByJobID returns the job's DONE (or HIDDEN, post-deletion) offer.
// Used by the rating eligibility checks.
func (r *OfferRepository) FindDoneByJobID(ctx context.Context, jobID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	query := `
		SELECT id, job_id, worker_id, price, comment, status, created_at
		FROM job_offers
		WHERE job_id = $1 AND status IN ('DONE', 'HIDDEN')
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &offer, query, jobID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("offer repository: find done %w", err)
	}
	return &offer, nil
}

// LowestPendingPrice computes the minimum price among the job's PENDING
// offers, 0 when there are none.
func (r *OfferRepository) LowestPendingPrice(ctx context.Context, jobID uuid.UUID) (float64, error) {
	var lowest float64
	query := `
		SELECT COALESCE(MIN(price), 0)
		FROM job_offers
		WHERE job_id = $1 AND status = 'PENDING'
	`
	if err := r.db.GetContext(ctx, &lowest, query, jobID); err != nil {
		return 0, fmt.Errorf("offer repository: lowest pending price %w", err)
	}
	return lowest, nil
}

// ListForWorker returns the worker's sent offers (HIDDEN excluded), each
// with its job and the job's lowest PENDING price.
func (r *OfferRepository) ListForWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.OfferWithJob, error) {
	offers := []models.OfferWithJob{}
	query := `
		SELECT o.id, o.job_id, o.worker_id, o.price, o.comment, o.status, o.created_at,
		       j.title AS job_title, j.status AS job_status,
		       COALESCE((
		           SELECT MIN(p.price) FROM job_offers p
		           WHERE p.job_id = j.id AND p.status = 'PENDING'
		       ), 0) AS lowest_price
		FROM job_offers o
		JOIN job_requests j ON j.id = o.job_id
		WHERE o.worker_id = $1 AND o.status <> 'HIDDEN'
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &offers, query, workerID, limit, offset); err != nil {
		return nil, fmt.Errorf("offer repository: list for worker %w", err)
	}
	return offers, nil
}

// ListForCustomer returns offers on the customer's jobs, filtered by the
// job-status visibility matrix: for PENDING jobs only PENDING offers, for
// ACCEPTED/DONE jobs only the winning offer's trail.
func (r *OfferRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.OfferWithWorker, error) {
	offers := []models.OfferWithWorker{}
	query := `
		SELECT o.id, o.job_id, o.worker_id, o.price, o.comment, o.status, o.created_at,
		       w.username AS worker_username,
		       (SELECT AVG(r.stars)::float8 FROM ratings r WHERE r.to_user_id = w.id) AS worker_rating,
		       j.title AS job_title, j.status AS job_status
		FROM job_offers o
		JOIN job_requests j ON j.id = o.job_id
		JOIN users w ON w.id = o.worker_id
		WHERE j.customer_id = $1
		  AND (
		      (j.status = 'PENDING' AND o.status = 'PENDING')
		      OR (j.status IN ('ACCEPTED', 'DONE') AND o.status IN ('ACCEPTED', 'DONE', 'HIDDEN'))
		  )
		ORDER BY o.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &offers, query, customerID); err != nil {
		return nil, fmt.Errorf("offer repository: list for customer %w", err)
	}
	return offers, nil
}

// enqueueNotification inserts an outbox row within the caller's transaction.
func enqueueNotification(ctx context.Context, tx *sqlx.Tx, note *models.OutboxNotification) error {
	if note == nil {
		return nil
	}
	query := `
		INSERT INTO notification_outbox (user_id, title, body, url, tag)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := tx.QueryRowxContext(ctx, query,
		note.UserID, note.Title, note.Body, note.URL, note.Tag,
	).Scan(&note.ID, &note.CreatedAt); err != nil {
		return fmt.Errorf("offer repository: enqueue notification %w", err)
	}
	return nil
}
