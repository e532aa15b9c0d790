package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is a customer-owned location a job can reference. Coordinates
// come from the area lookup and stay nil when geocoding fails.
type Property struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CustomerID uuid.UUID `db:"customer_id" json:"customer_id"`
	Name       string    `db:"name" json:"name"`
	Address    string    `db:"address" json:"address"`
	Area       *string   `db:"area" json:"area,omitempty"`
	Latitude   *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude  *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
