package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat links the customer and worker of a job. Message transport is
// handled elsewhere; these records exist here so the user deletion
// cascade can reassign them.
type Chat struct {
	ID         uuid.UUID `db:"id" json:"id"`
	JobID      uuid.UUID `db:"job_id" json:"job_id"`
	CustomerID uuid.UUID `db:"customer_id" json:"customer_id"`
	WorkerID   uuid.UUID `db:"worker_id" json:"worker_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage is one message inside a chat.
type ChatMessage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ChatID    uuid.UUID `db:"chat_id" json:"chat_id"`
	SenderID  uuid.UUID `db:"sender_id" json:"sender_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
