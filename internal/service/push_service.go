package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
)

type PushSubscriptionRepository interface {
	Save(ctx context.Context, sub *models.PushSubscription) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error
}

// PushService registers browser push endpoints.
type PushService struct {
	subs PushSubscriptionRepository
}

func NewPushService(subs PushSubscriptionRepository) *PushService {
	return &PushService{subs: subs}
}

type SubscriptionInput struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Subscribe stores or refreshes a push endpoint for the user.
func (s *PushService) Subscribe(ctx context.Context, userID uuid.UUID, in SubscriptionInput) (*models.PushSubscription, error) {
	if !strings.HasPrefix(in.Endpoint, "https://") {
		return nil, apperror.New(apperror.ErrCodeValidation, "endpoint must be an https URL")
	}
	if in.P256dh == "" || in.Auth == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "subscription keys are required")
	}

	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: in.Endpoint,
		P256dh:   in.P256dh,
		Auth:     in.Auth,
	}
	if err := s.subs.Save(ctx, sub); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to save subscription")
	}
	return sub, nil
}

// Unsubscribe drops one of the user's endpoints.
func (s *PushService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	if err := s.subs.DeleteByEndpoint(ctx, userID, endpoint); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to delete subscription")
	}
	return nil
}

// List returns the user's registered endpoints.
func (s *PushService) List(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	subs, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list subscriptions")
	}
	return subs, nil
}
