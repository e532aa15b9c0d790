package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
	"github.com/thorzos/handyhub-backend/internal/validation"
)

// AuthRepository is the storage surface for registration and login.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService handles registration and credential checks.
type AuthService struct {
	users        AuthRepository
	areas        AreaLookup
	tokenManager *TokenManager
	log          *logrus.Logger
}

func NewAuthService(users AuthRepository, areas AreaLookup, tokenManager *TokenManager, log *logrus.Logger) *AuthService {
	return &AuthService{users: users, areas: areas, tokenManager: tokenManager, log: log}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
	Address  *string
}

type LoginInput struct {
	Username string
	Password string
}

// AuthResult is the outcome of registration or login.
type AuthResult struct {
	User      *models.User
	TokenPair *TokenPair
}

// Register creates a new customer or worker account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.Role != models.RoleCustomer && in.Role != models.RoleWorker {
		return nil, apperror.New(apperror.ErrCodeValidation, "role must be customer or worker")
	}
	if strings.TrimSpace(in.Username) == models.SentinelUsername {
		return nil, apperror.New(apperror.ErrCodeValidation, "username is reserved")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to hash password")
	}

	user := &models.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(passHash),
		Role:         in.Role,
		Address:      in.Address,
	}
	if in.Address != nil && strings.TrimSpace(*in.Address) != "" {
		area, err := s.areas.Lookup(ctx, *in.Address)
		if err != nil {
			s.log.WithError(err).Warn("area lookup failed during registration")
		} else if area != nil {
			user.Latitude = &area.Latitude
			user.Longitude = &area.Longitude
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperror.New(apperror.ErrCodeConflict, "username or email is already taken")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to create account")
	}

	pair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to issue tokens")
	}
	return &AuthResult{User: user, TokenPair: pair}, nil
}

// Login checks credentials and issues a token pair. A wrong username and
// a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if user.Banned {
		return nil, apperror.New(apperror.ErrCodeForbidden, "account is banned")
	}

	pair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to issue tokens")
	}
	return &AuthResult{User: user, TokenPair: pair}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid refresh token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid refresh token subject")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if user.Banned {
		return nil, apperror.New(apperror.ErrCodeForbidden, "account is banned")
	}

	pair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to issue tokens")
	}
	return pair, nil
}
