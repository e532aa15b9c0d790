package models

import (
	"time"

	"github.com/google/uuid"
)

// Job is a customer-posted task open for worker offers.
type Job struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	CustomerID  uuid.UUID  `db:"customer_id" json:"customer_id"`
	PropertyID  *uuid.UUID `db:"property_id" json:"property_id,omitempty"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Category    string     `db:"category" json:"category"`
	Deadline    *time.Time `db:"deadline" json:"deadline,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// JobWithMinPrice is the worker-facing listing row: the job plus the
// lowest price among its currently PENDING offers (0 when none).
type JobWithMinPrice struct {
	Job
	LowestPrice float64 `db:"lowest_price" json:"lowest_price"`
}

// JobImage is a photo attached to a job.
type JobImage struct {
	ID          uuid.UUID `db:"id" json:"id"`
	JobID       uuid.UUID `db:"job_id" json:"job_id"`
	FilePath    string    `db:"file_path" json:"file_path"`
	ContentType string    `db:"content_type" json:"content_type"`
	Position    int       `db:"position" json:"position"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
