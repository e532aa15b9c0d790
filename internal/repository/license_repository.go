package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// LicenseRepository persists worker credential documents.
type LicenseRepository struct {
	db *sqlx.DB
}

func NewLicenseRepository(db *sqlx.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

func (r *LicenseRepository) Create(ctx context.Context, license *models.License) error {
	query := `
		INSERT INTO licenses (worker_id, filename, description, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING id, status, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		license.WorkerID, license.Filename, license.Description,
	).Scan(&license.ID, &license.Status, &license.CreatedAt)
	if err != nil {
		return fmt.Errorf("license repository: insert %w", err)
	}
	return nil
}

func (r *LicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	var license models.License
	query := `
		SELECT id, worker_id, filename, description, status, created_at
		FROM licenses
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &license, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("license repository: get by id %w", err)
	}
	return &license, nil
}

func (r *LicenseRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.License, error) {
	licenses := []models.License{}
	query := `
		SELECT id, worker_id, filename, description, status, created_at
		FROM licenses
		WHERE worker_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &licenses, query, workerID); err != nil {
		return nil, fmt.Errorf("license repository: list by worker %w", err)
	}
	return licenses, nil
}

// ListPending returns licenses awaiting admin review.
func (r *LicenseRepository) ListPending(ctx context.Context, limit, offset int) ([]models.License, error) {
	licenses := []models.License{}
	query := `
		SELECT id, worker_id, filename, description, status, created_at
		FROM licenses
		WHERE status = 'PENDING'
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &licenses, query, limit, offset); err != nil {
		return nil, fmt.Errorf("license repository: list pending %w", err)
	}
	return licenses, nil
}

func (r *LicenseRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE licenses SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("license repository: set status %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLicenseNotFound
	}
	return nil
}

func (r *LicenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM licenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("license repository: delete %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLicenseNotFound
	}
	return nil
}

// HasApproved reports whether the worker holds an APPROVED license. This
// gates job visibility for workers.
func (r *LicenseRepository) HasApproved(ctx context.Context, workerID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM licenses WHERE worker_id = $1 AND status = 'APPROVED')`
	if err := r.db.GetContext(ctx, &exists, query, workerID); err != nil {
		return false, fmt.Errorf("license repository: has approved %w", err)
	}
	return exists, nil
}
