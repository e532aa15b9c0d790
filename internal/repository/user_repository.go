package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/repository/common"
)

// UserRepository persists accounts and owns the deletion cascade.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, role, address, latitude, longitude, banned, created_at`

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role,
		user.Address, user.Latitude, user.Longitude,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "") {
			return ErrDuplicateUser
		}
		return fmt.Errorf("user repository: insert %w", err)
	}
	return nil
}

// GetByID returns a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return &user, nil
}

// GetByUsername returns a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by username %w", err)
	}
	return &user, nil
}

// GetSentinel returns the "deleted user" placeholder account.
func (r *UserRepository) GetSentinel(ctx context.Context) (*models.User, error) {
	return r.GetByUsername(ctx, models.SentinelUsername)
}

// UpdateProfile stores the mutable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = $2, address = $3, latitude = $4, longitude = $5 WHERE id = $1`,
		user.ID, user.Email, user.Address, user.Latitude, user.Longitude)
	if err != nil {
		if common.IsUniqueViolation(err, "") {
			return ErrDuplicateUser
		}
		return fmt.Errorf("user repository: update profile %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateCoordinates stores geocoded coordinates, nil clears them.
func (r *UserRepository) UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lon *float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET latitude = $2, longitude = $3 WHERE id = $1`, id, lat, lon)
	if err != nil {
		return fmt.Errorf("user repository: update coordinates %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetBanned flips the banned flag.
func (r *UserRepository) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET banned = $2 WHERE id = $1`, id, banned)
	if err != nil {
		return fmt.Errorf("user repository: set banned %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteCascade removes the account in one transaction: subscriptions and
// alerts go away, historical records are reauthored to the sentinel, the
// customer's PENDING jobs are deleted outright and ACCEPTED ones are
// forced to DONE together with their accepted offer so in-progress work is
// never orphaned.
func (r *UserRepository) DeleteCascade(ctx context.Context, userID, sentinelID uuid.UUID) error {
	return common.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		steps := []struct {
			desc  string
			query string
			args  []interface{}
		}{
			{"delete push subscriptions",
				`DELETE FROM push_subscriptions WHERE user_id = $1`,
				[]interface{}{userID}},
			{"delete pending outbox",
				`DELETE FROM notification_outbox WHERE user_id = $1 AND sent_at IS NULL`,
				[]interface{}{userID}},
			{"delete search alerts",
				`DELETE FROM search_alerts WHERE worker_id = $1`,
				[]interface{}{userID}},
			{"reassign ratings authored",
				`UPDATE ratings SET from_user_id = $2 WHERE from_user_id = $1`,
				[]interface{}{userID, sentinelID}},
			{"reassign ratings received",
				`UPDATE ratings SET to_user_id = $2 WHERE to_user_id = $1`,
				[]interface{}{userID, sentinelID}},
			{"reassign reports filed",
				`UPDATE reports SET reporter_id = $2 WHERE reporter_id = $1`,
				[]interface{}{userID, sentinelID}},
			{"reassign reports received",
				`UPDATE reports SET target_id = $2 WHERE target_id = $1`,
				[]interface{}{userID, sentinelID}},
			{"reassign licenses",
				`UPDATE licenses SET worker_id = $2 WHERE worker_id = $1`,
				[]interface{}{userID, sentinelID}},
			{"reassign chat messages",
				`UPDATE chat_messages SET sender_id = $2 WHERE sender_id = $1`,
				[]interface{}{userID, sentinelID}},
			{"reassign chats as customer",
				`UPDATE chats SET customer_id = $2 WHERE customer_id = $1`,
				[]interface{}{userID, sentinelID}},
			{"reassign chats as worker",
				`UPDATE chats SET worker_id = $2 WHERE worker_id = $1`,
				[]interface{}{userID, sentinelID}},

			// Worker side: sent offers survive under the sentinel.
			{"reassign sent offers",
				`UPDATE job_offers SET worker_id = $2 WHERE worker_id = $1`,
				[]interface{}{userID, sentinelID}},

			// Customer side, ordered: drop images and offers of the
			// PENDING jobs first, then the jobs themselves.
			{"delete images of pending jobs",
				`DELETE FROM job_images WHERE job_id IN
					(SELECT id FROM job_requests WHERE customer_id = $1 AND status = 'PENDING')`,
				[]interface{}{userID}},
			{"delete offers of pending jobs",
				`DELETE FROM job_offers WHERE job_id IN
					(SELECT id FROM job_requests WHERE customer_id = $1 AND status = 'PENDING')`,
				[]interface{}{userID}},
			{"delete pending jobs",
				`DELETE FROM job_requests WHERE customer_id = $1 AND status = 'PENDING'`,
				[]interface{}{userID}},

			// In-progress work completes instead of dangling.
			{"complete accepted offers of accepted jobs",
				`UPDATE job_offers SET status = 'DONE'
				 WHERE status = 'ACCEPTED' AND job_id IN
					(SELECT id FROM job_requests WHERE customer_id = $1 AND status = 'ACCEPTED')`,
				[]interface{}{userID}},
			{"complete accepted jobs",
				`UPDATE job_requests SET status = 'DONE' WHERE customer_id = $1 AND status = 'ACCEPTED'`,
				[]interface{}{userID}},

			{"detach properties from remaining jobs",
				`UPDATE job_requests SET property_id = NULL WHERE customer_id = $1`,
				[]interface{}{userID}},
			{"reassign remaining jobs",
				`UPDATE job_requests SET customer_id = $2 WHERE customer_id = $1`,
				[]interface{}{userID, sentinelID}},
			{"delete properties",
				`DELETE FROM properties WHERE customer_id = $1`,
				[]interface{}{userID}},

			{"delete account",
				`DELETE FROM users WHERE id = $1`,
				[]interface{}{userID}},
		}

		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, step.query, step.args...); err != nil {
				return fmt.Errorf("user repository: %s %w", step.desc, err)
			}
		}
		return nil
	})
}
