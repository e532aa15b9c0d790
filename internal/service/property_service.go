package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thorzos/handyhub-backend/internal/geo"
	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/pkg/apperror"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AreaLookup resolves an address to an area name and coordinates.
type AreaLookup interface {
	Lookup(ctx context.Context, address string) (*geo.Area, error)
}

// PropertyService manages customer locations. Geocoding is best effort:
// a failed lookup leaves the property without coordinates, which only
// disables distance matching for jobs at that property.
type PropertyService struct {
	properties PropertyRepository
	areas      AreaLookup
	log        *logrus.Logger
}

func NewPropertyService(properties PropertyRepository, areas AreaLookup, log *logrus.Logger) *PropertyService {
	return &PropertyService{properties: properties, areas: areas, log: log}
}

type PropertyInput struct {
	Name    string
	Address string
}

func validatePropertyInput(in PropertyInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.New(apperror.ErrCodeValidation, "name must not be empty")
	}
	if len(in.Name) > 255 {
		return apperror.New(apperror.ErrCodeValidation, "name must not exceed 255 characters")
	}
	if strings.TrimSpace(in.Address) == "" {
		return apperror.New(apperror.ErrCodeValidation, "address must not be empty")
	}
	if len(in.Address) > 511 {
		return apperror.New(apperror.ErrCodeValidation, "address must not exceed 511 characters")
	}
	return nil
}

func (s *PropertyService) geocode(ctx context.Context, property *models.Property) {
	area, err := s.areas.Lookup(ctx, property.Address)
	if err != nil {
		s.log.WithError(err).WithField("property_id", property.ID).Warn("area lookup failed")
		return
	}
	if area == nil {
		return
	}
	property.Area = &area.Name
	property.Latitude = &area.Latitude
	property.Longitude = &area.Longitude
}

func (s *PropertyService) Create(ctx context.Context, customerID uuid.UUID, role string, in PropertyInput) (*models.Property, error) {
	if role != models.RoleCustomer {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only customers can manage properties")
	}
	if err := validatePropertyInput(in); err != nil {
		return nil, err
	}

	property := &models.Property{
		ID:         uuid.New(),
		CustomerID: customerID,
		Name:       in.Name,
		Address:    in.Address,
	}
	s.geocode(ctx, property)

	if err := s.properties.Create(ctx, property); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to create property")
	}
	return property, nil
}

func (s *PropertyService) owned(ctx context.Context, propertyID, callerID uuid.UUID) (*models.Property, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if property.CustomerID != callerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "you can only manage your own properties")
	}
	return property, nil
}

func (s *PropertyService) Update(ctx context.Context, propertyID, callerID uuid.UUID, in PropertyInput) (*models.Property, error) {
	property, err := s.owned(ctx, propertyID, callerID)
	if err != nil {
		return nil, err
	}
	if err := validatePropertyInput(in); err != nil {
		return nil, err
	}

	addressChanged := property.Address != in.Address
	property.Name = in.Name
	property.Address = in.Address
	if addressChanged {
		property.Area = nil
		property.Latitude = nil
		property.Longitude = nil
		s.geocode(ctx, property)
	}

	if err := s.properties.Update(ctx, property); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to update property")
	}
	return property, nil
}

func (s *PropertyService) Get(ctx context.Context, propertyID, callerID uuid.UUID) (*models.Property, error) {
	return s.owned(ctx, propertyID, callerID)
}

func (s *PropertyService) List(ctx context.Context, customerID uuid.UUID) ([]models.Property, error) {
	properties, err := s.properties.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to list properties")
	}
	return properties, nil
}

// Delete removes the property. Jobs referencing it keep existing, just
// without a location.
func (s *PropertyService) Delete(ctx context.Context, propertyID, callerID uuid.UUID) error {
	if _, err := s.owned(ctx, propertyID, callerID); err != nil {
		return err
	}
	if err := s.properties.Delete(ctx, propertyID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to delete property")
	}
	return nil
}
