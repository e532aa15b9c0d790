package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/thorzos/handyhub-backend/internal/geo"
	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
	"github.com/thorzos/handyhub-backend/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetSentinel(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	args := m.Called(ctx, id, banned)
	return args.Error(0)
}

func (m *mockUserRepo) DeleteCascade(ctx context.Context, userID, sentinelID uuid.UUID) error {
	args := m.Called(ctx, userID, sentinelID)
	return args.Error(0)
}

type mockAreaLookup struct {
	mock.Mock
}

func (m *mockAreaLookup) Lookup(ctx context.Context, address string) (*geo.Area, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.Area), args.Error(1)
}

func newUserService() (*UserService, *mockUserRepo, *mockAreaLookup) {
	users := new(mockUserRepo)
	areas := new(mockAreaLookup)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewUserService(users, areas, log), users, areas
}

func TestUserService_UpdateProfile_AddressChangeResolvesCoordinates(t *testing.T) {
	svc, users, areas := newUserService()
	ctx := context.Background()
	userID := uuid.New()

	oldAddr := "Old Street 1"
	users.On("GetByID", ctx, userID).Return(&models.User{
		ID:      userID,
		Email:   "old@example.com",
		Address: &oldAddr,
	}, nil)
	areas.On("Lookup", ctx, "New Street 2").Return(&geo.Area{Latitude: 47.07, Longitude: 15.44}, nil)
	users.On("UpdateProfile", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	newAddr := "New Street 2"
	user, err := svc.UpdateProfile(ctx, userID, ProfileUpdate{Email: "new@example.com", Address: &newAddr})

	assert.NoError(t, err)
	assert.Equal(t, 47.07, *user.Latitude)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestUserService_UpdateProfile_SameAddressSkipsLookup(t *testing.T) {
	svc, users, areas := newUserService()
	ctx := context.Background()
	userID := uuid.New()

	addr := "Main Square 3"
	lat := 1.0
	users.On("GetByID", ctx, userID).Return(&models.User{
		ID:       userID,
		Address:  &addr,
		Latitude: &lat,
	}, nil)
	users.On("UpdateProfile", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.UpdateProfile(ctx, userID, ProfileUpdate{Email: "same@example.com", Address: &addr})

	assert.NoError(t, err)
	assert.Equal(t, &lat, user.Latitude)
	areas.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestUserService_UpdateProfile_DuplicateEmail(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()
	userID := uuid.New()

	users.On("GetByID", ctx, userID).Return(&models.User{ID: userID}, nil)
	users.On("UpdateProfile", ctx, mock.AnythingOfType("*models.User")).Return(repository.ErrDuplicateUser)

	_, err := svc.UpdateProfile(ctx, userID, ProfileUpdate{Email: "taken@example.com"})
	assert.True(t, apperror.IsConflict(err))
}

func TestUserService_Delete_SelfDeletion(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	userID := uuid.New()
	sentinelID := uuid.New()
	users.On("GetByID", ctx, userID).Return(&models.User{ID: userID, Role: models.RoleCustomer, Username: "alice"}, nil)
	users.On("GetSentinel", ctx).Return(&models.User{ID: sentinelID, Username: models.SentinelUsername}, nil)
	users.On("DeleteCascade", ctx, userID, sentinelID).Return(nil)

	assert.NoError(t, svc.Delete(ctx, userID, userID, models.RoleCustomer))
}

func TestUserService_Delete_OthersNeedAdmin(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	err := svc.Delete(ctx, uuid.New(), uuid.New(), models.RoleCustomer)
	assert.True(t, apperror.IsForbidden(err))
}

func TestUserService_Delete_AdminCannotRemovePeers(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	targetID := uuid.New()
	users.On("GetByID", ctx, targetID).Return(&models.User{ID: targetID, Role: models.RoleAdmin, Username: "root"}, nil)

	err := svc.Delete(ctx, targetID, uuid.New(), models.RoleAdmin)
	assert.True(t, apperror.IsForbidden(err))
}

func TestUserService_Delete_SentinelProtected(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	targetID := uuid.New()
	users.On("GetByID", ctx, targetID).Return(&models.User{
		ID:       targetID,
		Role:     models.RoleCustomer,
		Username: models.SentinelUsername,
	}, nil)

	err := svc.Delete(ctx, targetID, uuid.New(), models.RoleAdmin)
	assert.True(t, apperror.IsForbidden(err))
}

func TestUserService_SetBanned(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	targetID := uuid.New()
	users.On("GetByID", ctx, targetID).Return(&models.User{ID: targetID, Role: models.RoleWorker}, nil)
	users.On("SetBanned", ctx, targetID, true).Return(nil)

	assert.NoError(t, svc.SetBanned(ctx, targetID, models.RoleAdmin, true))

	err := svc.SetBanned(ctx, targetID, models.RoleWorker, true)
	assert.True(t, apperror.IsForbidden(err))
}

func TestUserService_SetBanned_AdminsUntouchable(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	targetID := uuid.New()
	users.On("GetByID", ctx, targetID).Return(&models.User{ID: targetID, Role: models.RoleAdmin}, nil)

	err := svc.SetBanned(ctx, targetID, models.RoleAdmin, true)
	assert.True(t, apperror.IsForbidden(err))
}
