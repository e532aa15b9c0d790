package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAuthRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newAuthService() (*AuthService, *mockAuthRepo, *mockAreaLookup) {
	users := new(mockAuthRepo)
	areas := new(mockAreaLookup)
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewAuthService(users, areas, tokens, log), users, areas
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	res, err := svc.Register(ctx, RegisterInput{
		Username: "bob the builder",
		Email:    "bob@example.com",
		Password: "Sup3rSecret",
		Role:     models.RoleWorker,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleWorker, res.User.Role)
	assert.NotEmpty(t, res.TokenPair.AccessToken)
	assert.NotEmpty(t, res.TokenPair.RefreshToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("Sup3rSecret")))
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	cases := []RegisterInput{
		{Username: "ab", Email: "a@b.com", Password: "Sup3rSecret", Role: models.RoleWorker},
		{Username: "bobby", Email: "not-an-email", Password: "Sup3rSecret", Role: models.RoleWorker},
		{Username: "bobby", Email: "a@b.com", Password: "weak", Role: models.RoleWorker},
		{Username: "bobby", Email: "a@b.com", Password: "Sup3rSecret", Role: models.RoleAdmin},
		{Username: models.SentinelUsername, Email: "a@b.com", Password: "Sup3rSecret", Role: models.RoleWorker},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.True(t, apperror.IsValidation(err), "input %q should be rejected", in.Username)
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repository.ErrDuplicateUser)

	_, err := svc.Register(ctx, RegisterInput{
		Username: "bobby",
		Email:    "bob@example.com",
		Password: "Sup3rSecret",
		Role:     models.RoleCustomer,
	})
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	users.On("GetByUsername", ctx, "bobby").Return(&models.User{
		ID:           uuid.New(),
		Username:     "bobby",
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
	}, nil)

	res, err := svc.Login(ctx, LoginInput{Username: "bobby", Password: "Sup3rSecret"})

	assert.NoError(t, err)
	assert.NotEmpty(t, res.TokenPair.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	users.On("GetByUsername", ctx, "bobby").Return(&models.User{
		ID:           uuid.New(),
		Username:     "bobby",
		PasswordHash: string(hash),
	}, nil)
	users.On("GetByUsername", ctx, "nobody").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, LoginInput{Username: "bobby", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	// Unknown usernames fail identically.
	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_Banned(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	users.On("GetByUsername", ctx, "bobby").Return(&models.User{
		ID:           uuid.New(),
		Username:     "bobby",
		PasswordHash: string(hash),
		Banned:       true,
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Username: "bobby", Password: "Sup3rSecret"})
	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_RoundTrip(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Username: "bobby", Role: models.RoleCustomer}
	pair, err := svc.tokenManager.GeneratePair(user)
	assert.NoError(t, err)

	users.On("GetByID", ctx, user.ID).Return(user, nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Username: "bobby", Role: models.RoleCustomer}
	pair, err := svc.tokenManager.GeneratePair(user)
	assert.NoError(t, err)

	// Tokens are signed with different secrets, so an access token can
	// never pass as a refresh token.
	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.Error(t, err)
}
