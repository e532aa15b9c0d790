package models

import (
	"time"

	"github.com/google/uuid"
)

// License is a worker's credential document. Only workers with at least
// one APPROVED license see open jobs.
type License struct {
	ID          uuid.UUID `db:"id" json:"id"`
	WorkerID    uuid.UUID `db:"worker_id" json:"worker_id"`
	Filename    string    `db:"filename" json:"filename"`
	Description *string   `db:"description" json:"description,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
