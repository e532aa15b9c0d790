package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
)

type ChatRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	ListMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]models.ChatMessage, error)
}

// ChatService exposes the chat rooms created when an offer is accepted.
type ChatService struct {
	chats ChatRepository
}

func NewChatService(chats ChatRepository) *ChatService {
	return &ChatService{chats: chats}
}

func (s *ChatService) List(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list chats")
	}
	return chats, nil
}

// Messages returns the history of a chat the caller belongs to.
func (s *ChatService) Messages(ctx context.Context, chatID, callerID uuid.UUID, limit, offset int) ([]models.ChatMessage, error) {
	chats, err := s.chats.ListForUser(ctx, callerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to load chats")
	}
	member := false
	for _, c := range chats {
		if c.ID == chatID {
			member = true
			break
		}
	}
	if !member {
		return nil, apperror.New(apperror.ErrCodeForbidden, "you are not a participant of this chat")
	}

	limit, offset = clampPage(limit, offset)
	messages, err := s.chats.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to load messages")
	}
	return messages, nil
}
