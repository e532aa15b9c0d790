package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// ReportRepository persists abuse reports.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (reporter_id, target_id, job_id, reason, open)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, open, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		report.ReporterID, report.TargetID, report.JobID, report.Reason,
	).Scan(&report.ID, &report.Open, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("report repository: insert %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	query := `
		SELECT id, reporter_id, target_id, job_id, reason, open, created_at
		FROM reports
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}
	return &report, nil
}

// ExistsOpenByJobID reports whether the job has any open report against
// it, which forces soft deletion.
func (r *ReportRepository) ExistsOpenByJobID(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM reports WHERE job_id = $1 AND open = TRUE)`
	if err := r.db.GetContext(ctx, &exists, query, jobID); err != nil {
		return false, fmt.Errorf("report repository: exists open by job %w", err)
	}
	return exists, nil
}

// ExistsOpenByReporterAndJob backs the one-open-report-per-reporter rule.
func (r *ReportRepository) ExistsOpenByReporterAndJob(ctx context.Context, reporterID, jobID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reports WHERE reporter_id = $1 AND job_id = $2 AND open = TRUE
		)
	`
	if err := r.db.GetContext(ctx, &exists, query, reporterID, jobID); err != nil {
		return false, fmt.Errorf("report repository: exists open by reporter %w", err)
	}
	return exists, nil
}

func (r *ReportRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Report, error) {
	reports := []models.Report{}
	query := `
		SELECT id, reporter_id, target_id, job_id, reason, open, created_at
		FROM reports
		WHERE open = TRUE
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &reports, query, limit, offset); err != nil {
		return nil, fmt.Errorf("report repository: list open %w", err)
	}
	return reports, nil
}

func (r *ReportRepository) Close(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reports SET open = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("report repository: close %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReportNotFound
	}
	return nil
}
