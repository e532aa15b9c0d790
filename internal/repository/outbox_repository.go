package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// OutboxRepository stores pending notifications. Producers insert rows
// inside their own transactions; the dispatcher sweeps unsent rows after
// commit, so delivery can never roll back a state change.
type OutboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue inserts a row outside any producer transaction. Used for
// notifications with no companion state change (e.g. alert matches).
func (r *OutboxRepository) Enqueue(ctx context.Context, note *models.OutboxNotification) error {
	query := `
		INSERT INTO notification_outbox (user_id, title, body, url, tag)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		note.UserID, note.Title, note.Body, note.URL, note.Tag,
	).Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		return fmt.Errorf("outbox repository: enqueue %w", err)
	}
	return nil
}

// ListUnsent returns the oldest undelivered rows below the attempt cap.
func (r *OutboxRepository) ListUnsent(ctx context.Context, maxAttempts, limit int) ([]models.OutboxNotification, error) {
	notes := []models.OutboxNotification{}
	query := `
		SELECT id, user_id, title, body, url, tag, attempts, sent_at, created_at
		FROM notification_outbox
		WHERE sent_at IS NULL AND attempts < $1
		ORDER BY created_at
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &notes, query, maxAttempts, limit); err != nil {
		return nil, fmt.Errorf("outbox repository: list unsent %w", err)
	}
	return notes, nil
}

// MarkSent stamps a row as delivered.
func (r *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notification_outbox SET sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("outbox repository: mark sent %w", err)
	}
	return nil
}

// IncrementAttempts records a failed delivery attempt.
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notification_outbox SET attempts = attempts + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("outbox repository: increment attempts %w", err)
	}
	return nil
}
