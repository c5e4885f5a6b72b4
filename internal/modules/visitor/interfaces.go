package visitor

import (
	"context"
	"time"

	"societyhub/internal/domain"
	"societyhub/internal/repository"
)

type VisitorRepository interface {
	Create(ctx context.Context, v *domain.Visitor) error
	GetByID(ctx context.Context, id int64) (*domain.Visitor, error)
	Checkout(ctx context.Context, id, by int64, at time.Time) error
	List(ctx context.Context, f repository.VisitorFilter) ([]domain.Visitor, error)
	Count(ctx context.Context, f repository.VisitorFilter) (int64, error)
}

type ApartmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Apartment, error)
}

// PreApprovalCompleter closes the pre-approval a departing visitor came in on.
type PreApprovalCompleter interface {
	CompleteLinked(ctx context.Context, preApprovalID int64) error
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
