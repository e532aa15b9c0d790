package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// PropertyRepository persists customer properties.
type PropertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (customer_id, name, address, area, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		property.CustomerID, property.Name, property.Address,
		property.Area, property.Latitude, property.Longitude,
	).Scan(&property.ID, &property.CreatedAt)
	if err != nil {
		return fmt.Errorf("property repository: insert %w", err)
	}
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	query := `
		SELECT id, customer_id, name, address, area, latitude, longitude, created_at
		FROM properties
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &property, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("property repository: get by id %w", err)
	}
	return &property, nil
}

func (r *PropertyRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Property, error) {
	properties := []models.Property{}
	query := `
		SELECT id, customer_id, name, address, area, latitude, longitude, created_at
		FROM properties
		WHERE customer_id = $1
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &properties, query, customerID); err != nil {
		return nil, fmt.Errorf("property repository: list by customer %w", err)
	}
	return properties, nil
}

func (r *PropertyRepository) Update(ctx context.Context, property *models.Property) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE properties
		SET name = $2, address = $3, area = $4, latitude = $5, longitude = $6
		WHERE id = $1
	`, property.ID, property.Name, property.Address, property.Area, property.Latitude, property.Longitude)
	if err != nil {
		return fmt.Errorf("property repository: update %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// Delete removes the property, detaching any jobs still pointing at it.
func (r *PropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE job_requests SET property_id = NULL WHERE property_id = $1`, id); err != nil {
		return fmt.Errorf("property repository: detach jobs %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("property repository: delete %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
