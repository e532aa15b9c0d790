package models

import (
	"time"

	"github.com/google/uuid"
)

// Report flags a user or a job for admin review. An open report against a
// job forces soft deletion instead of physical removal.
type Report struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ReporterID uuid.UUID  `db:"reporter_id" json:"reporter_id"`
	TargetID   uuid.UUID  `db:"target_id" json:"target_id"`
	JobID      *uuid.UUID `db:"job_id" json:"job_id,omitempty"`
	Reason     string     `db:"reason" json:"reason"`
	Open       bool       `db:"open" json:"open"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
