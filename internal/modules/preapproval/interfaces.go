package preapproval

import (
	"context"

	"societyhub/internal/domain"
	"societyhub/internal/repository"
)

type PreApprovalRepository interface {
	Create(ctx context.Context, p *domain.PreApprovedVisitor) error
	GetByID(ctx context.Context, id int64) (*domain.PreApprovedVisitor, error)
	UpdateStatus(ctx context.Context, id int64, ch repository.PreApprovalStatusChange) error
	List(ctx context.Context, f repository.PreApprovalFilter) ([]domain.PreApprovedVisitor, error)
	CountByStatus(ctx context.Context, f repository.PreApprovalFilter) (map[domain.PreApprovalStatus]int64, error)
	ExpireOverdue(ctx context.Context, today string) (int64, error)
}

// VisitorWriter records the visitor a pre-approval turns into on arrival.
type VisitorWriter interface {
	Create(ctx context.Context, v *domain.Visitor) error
	CountByPreApproval(ctx context.Context, preApprovalID int64) (int64, error)
}

type ApartmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Apartment, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
