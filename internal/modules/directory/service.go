package directory

import (
	"context"

	"societyhub/internal/domain"
	"societyhub/internal/pkg/clock"
	"societyhub/internal/pkg/logger"
	"societyhub/internal/pkg/validator"
)

type Service struct {
	users      UserRepository
	apartments ApartmentRepository
	amenities  AmenityRepository
}

func NewService(users UserRepository, apartments ApartmentRepository, amenities AmenityRepository) *Service {
	return &Service{users: users, apartments: apartments, amenities: amenities}
}

func (s *Service) Me(ctx context.Context, actor domain.Actor) (*Profile, error) {
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	out := &Profile{User: u}
	if u.ApartmentID != nil {
		if out.Apartment, err = s.apartments.GetByID(ctx, *u.ApartmentID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CreateUser registers a society member. Residents must belong to an
// existing apartment.
func (s *Service) CreateUser(ctx context.Context, actor domain.Actor, req CreateUserRequest) (*domain.User, error) {
	if !actor.Is(domain.RoleAdmin) {
		return nil, domain.Forbidden("only admins can register users")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Role == domain.RoleResident && req.ApartmentID == nil {
		return nil, domain.InvalidFields("resident needs an apartment", map[string]string{"ApartmentID": "required"})
	}
	if req.ApartmentID != nil {
		if _, err := s.apartments.GetByID(ctx, *req.ApartmentID); err != nil {
			return nil, err
		}
	}

	u := &domain.User{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        req.Role,
		ApartmentID: req.ApartmentID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "user registered", "new_user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, actor domain.Actor, role domain.UserRole) ([]domain.User, error) {
	if !actor.Is(domain.RoleAdmin) {
		return nil, domain.Forbidden("only admins can list users")
	}
	return s.users.List(ctx, role)
}

// ListAmenities hides inactive amenities from everyone but admins.
func (s *Service) ListAmenities(ctx context.Context, actor domain.Actor) ([]domain.Amenity, error) {
	return s.amenities.List(ctx, !actor.Is(domain.RoleAdmin))
}

func (s *Service) GetAmenity(ctx context.Context, id int64) (*domain.Amenity, error) {
	return s.amenities.GetByID(ctx, id)
}

func (s *Service) CreateAmenity(ctx context.Context, actor domain.Actor, req CreateAmenityRequest) (*domain.Amenity, error) {
	if !actor.Is(domain.RoleAdmin) {
		return nil, domain.Forbidden("only admins can add amenities")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if req.OpenTime != "" {
		opens, closes, err := openingHours(req.OpenTime, req.CloseTime)
		if err != nil {
			return nil, err
		}
		req.OpenTime, req.CloseTime = opens, closes
	}

	a := &domain.Amenity{
		Name:        req.Name,
		Description: req.Description,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
		IsActive:    !req.Inactive,
	}
	if err := s.amenities.Create(ctx, a); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "amenity created", "amenity_id", a.ID, "name", a.Name)
	return a, nil
}

// openingHours normalises both bounds to zero-padded "15:04" and requires
// open to come strictly before close on the same day.
func openingHours(openTime, closeTime string) (string, string, error) {
	opens, err := clock.WallClock(openTime)
	if err != nil {
		return "", "", domain.InvalidFields("invalid opening hours", map[string]string{"OpenTime": "datetime"})
	}
	closes, err := clock.WallClock(closeTime)
	if err != nil {
		return "", "", domain.InvalidFields("invalid opening hours", map[string]string{"CloseTime": "datetime"})
	}
	if opens >= closes {
		return "", "", domain.Invalid("open_time must be before close_time")
	}
	return opens, closes, nil
}

func (s *Service) ListApartments(ctx context.Context) ([]domain.Apartment, error) {
	return s.apartments.List(ctx)
}

func (s *Service) CreateApartment(ctx context.Context, actor domain.Actor, req CreateApartmentRequest) (*domain.Apartment, error) {
	if !actor.Is(domain.RoleAdmin) {
		return nil, domain.Forbidden("only admins can add apartments")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	a := &domain.Apartment{Block: req.Block, Number: req.Number, Floor: req.Floor}
	if err := s.apartments.Create(ctx, a); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "apartment created", "apartment_id", a.ID)
	return a, nil
}
