package directory

import (
	"context"

	"societyhub/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, role domain.UserRole) ([]domain.User, error)
}

type ApartmentRepository interface {
	Create(ctx context.Context, a *domain.Apartment) error
	GetByID(ctx context.Context, id int64) (*domain.Apartment, error)
	List(ctx context.Context) ([]domain.Apartment, error)
}

type AmenityRepository interface {
	Create(ctx context.Context, a *domain.Amenity) error
	GetByID(ctx context.Context, id int64) (*domain.Amenity, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Amenity, error)
}
