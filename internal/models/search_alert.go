package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SearchAlert is a worker's saved search used for proactive job matching.
// Count increments on every matching job regardless of Active; Active only
// gates notification delivery.
type SearchAlert struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	WorkerID    uuid.UUID      `db:"worker_id" json:"worker_id"`
	Keywords    *string        `db:"keywords" json:"keywords,omitempty"`
	Categories  pq.StringArray `db:"categories" json:"categories"`
	MaxDistance *float64       `db:"max_distance" json:"max_distance,omitempty"`
	Active      bool           `db:"active" json:"active"`
	Count       int            `db:"count" json:"count"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
