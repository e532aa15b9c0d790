package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
	"github.com/thorzos/handyhub-backend/internal/validation"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetSentinel(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
	DeleteCascade(ctx context.Context, userID, sentinelID uuid.UUID) error
}

// UserService covers profiles, moderation and the account deletion
// cascade.
type UserService struct {
	users UserRepository
	areas AreaLookup
	log   *logrus.Logger
}

func NewUserService(users UserRepository, areas AreaLookup, log *logrus.Logger) *UserService {
	return &UserService{users: users, areas: areas, log: log}
}

// PublicProfile is what other users see.
type PublicProfile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Area     *string   `json:"area,omitempty"`
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

// GetPublic returns the profile another user may see.
func (s *UserService) GetPublic(ctx context.Context, userID uuid.UUID) (*PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return &PublicProfile{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Area:     user.Address,
	}, nil
}

type ProfileUpdate struct {
	Email   string
	Address *string
}

// UpdateProfile edits the caller's own profile. An address change
// re-resolves the home coordinates used for distance search; a failed
// lookup just leaves them empty.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*models.User, error) {
	if !validation.IsValidEmail(in.Email) {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid email address")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	addressChanged := !equalPtr(user.Address, in.Address)
	user.Email = in.Email
	user.Address = in.Address
	if addressChanged {
		user.Latitude = nil
		user.Longitude = nil
		if in.Address != nil && strings.TrimSpace(*in.Address) != "" {
			area, err := s.areas.Lookup(ctx, *in.Address)
			if err != nil {
				s.log.WithError(err).WithField("user_id", userID).Warn("area lookup failed")
			} else if area != nil {
				user.Latitude = &area.Latitude
				user.Longitude = &area.Longitude
			}
		}
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperror.New(apperror.ErrCodeConflict, "email is already in use")
		}
		return nil, mapRepoError(err)
	}
	return user, nil
}

// Delete removes an account. Users delete themselves; admins may delete
// anyone except other admins. Historical records move to the sentinel
// account so finished jobs, ratings and chats stay intact.
func (s *UserService) Delete(ctx context.Context, targetID, callerID uuid.UUID, callerRole string) error {
	if targetID != callerID && callerRole != models.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "you can only delete your own account")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return mapRepoError(err)
	}
	if target.Role == models.RoleAdmin && targetID != callerID {
		return apperror.New(apperror.ErrCodeForbidden, "admin accounts cannot be deleted by others")
	}
	if target.Username == models.SentinelUsername {
		return apperror.New(apperror.ErrCodeForbidden, "this account cannot be deleted")
	}

	sentinel, err := s.users.GetSentinel(ctx)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "sentinel account missing")
	}

	if err := s.users.DeleteCascade(ctx, targetID, sentinel.ID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to delete account")
	}
	return nil
}

// SetBanned flips moderation state. Banned customers keep their data but
// their open jobs stop appearing in worker feeds.
func (s *UserService) SetBanned(ctx context.Context, targetID uuid.UUID, callerRole string, banned bool) error {
	if callerRole != models.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "only admins can ban users")
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return mapRepoError(err)
	}
	if target.Role == models.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "admin accounts cannot be banned")
	}
	if err := s.users.SetBanned(ctx, targetID, banned); err != nil {
		return mapRepoError(err)
	}
	return nil
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
