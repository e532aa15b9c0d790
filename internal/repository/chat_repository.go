package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// ChatRepository reads the chats created when an offer is accepted.
// Message transport lives outside this service.
type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// ListForUser returns the chats a user participates in, either side.
func (r *ChatRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	chats := []models.Chat{}
	query := `
		SELECT id, job_id, customer_id, worker_id, created_at
		FROM chats
		WHERE customer_id = $1 OR worker_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &chats, query, userID); err != nil {
		return nil, fmt.Errorf("chat repository: list for user %w", err)
	}
	return chats, nil
}

// GetByID returns one chat.
func (r *ChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	query := `SELECT id, job_id, customer_id, worker_id, created_at FROM chats WHERE id = $1`
	if err := r.db.GetContext(ctx, &chat, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("chat repository: get %w", err)
	}
	return &chat, nil
}

// SaveMessage persists one message.
func (r *ChatRepository) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (chat_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, msg.ChatID, msg.SenderID, msg.Body).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("chat repository: insert message %w", err)
	}
	return nil
}

// ListMessages returns a chat's messages in order.
func (r *ChatRepository) ListMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	query := `
		SELECT id, chat_id, sender_id, body, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &messages, query, chatID, limit, offset); err != nil {
		return nil, fmt.Errorf("chat repository: list messages %w", err)
	}
	return messages, nil
}
