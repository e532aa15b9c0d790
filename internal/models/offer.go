package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer is a worker's priced bid on a job. CreatedAt is reset when the
// offer is edited so the customer can tell it changed.
type Offer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	JobID     uuid.UUID `db:"job_id" json:"job_id"`
	WorkerID  uuid.UUID `db:"worker_id" json:"worker_id"`
	Price     float64   `db:"price" json:"price"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OfferWithJob is a worker's sent-offers listing row.
type OfferWithJob struct {
	Offer
	JobTitle    string  `db:"job_title" json:"job_title"`
	JobStatus   string  `db:"job_status" json:"job_status"`
	LowestPrice float64 `db:"lowest_price" json:"lowest_price"`
}

// OfferWithWorker is a customer's received-offers listing row.
type OfferWithWorker struct {
	Offer
	WorkerUsername string   `db:"worker_username" json:"worker_username"`
	WorkerRating   *float64 `db:"worker_rating" json:"worker_rating,omitempty"`
	JobTitle       string   `db:"job_title" json:"job_title"`
	JobStatus      string   `db:"job_status" json:"job_status"`
}
