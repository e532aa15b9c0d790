package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is feedback between the two parties of a completed job.
// The recipient is always derived server-side from the job's accepted
// offer, never supplied by the client.
type Rating struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FromUserID uuid.UUID `db:"from_user_id" json:"from_user_id"`
	ToUserID   uuid.UUID `db:"to_user_id" json:"to_user_id"`
	JobID      uuid.UUID `db:"job_id" json:"job_id"`
	Stars      int       `db:"stars" json:"stars"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RatingStats aggregates a user's received ratings.
type RatingStats struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
