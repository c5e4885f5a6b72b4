package booking

import (
	"context"
	"time"

	"societyhub/internal/domain"
	"societyhub/internal/repository"
)

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindOverlapping(ctx context.Context, amenityID int64, start, end time.Time, excludeID *int64) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, ch repository.BookingStatusChange) error
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
}

// AmenityRepository defines the amenity lookups bookings need.
type AmenityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Amenity, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Amenity, error)
}

// UserRepository resolves the owner of a booking made on someone's behalf.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
