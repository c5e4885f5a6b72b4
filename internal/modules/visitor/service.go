package visitor

import (
	"context"
	"time"

	"societyhub/internal/domain"
	"societyhub/internal/metrics"
	"societyhub/internal/pkg/clock"
	"societyhub/internal/pkg/logger"
	"societyhub/internal/pkg/validator"
	"societyhub/internal/repository"
)

type Service struct {
	visitors     VisitorRepository
	apartments   ApartmentRepository
	preApprovals PreApprovalCompleter
	tx           Transactor
	clock        clock.Clock
	loc          *time.Location
}

func NewService(
	visitors VisitorRepository,
	apartments ApartmentRepository,
	preApprovals PreApprovalCompleter,
	tx Transactor,
	clk clock.Clock,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		visitors:     visitors,
		apartments:   apartments,
		preApprovals: preApprovals,
		tx:           tx,
		clock:        clk,
		loc:          loc,
	}
}

// LogEntry records a walk-in visitor as inside.
func (s *Service) LogEntry(ctx context.Context, actor domain.Actor, in LogEntryInput) (v *domain.Visitor, err error) {
	defer func() { metrics.ObserveTransition("visitor", "entry", err) }()

	if !actor.Is(domain.RoleGuard, domain.RoleAdmin) {
		return nil, domain.Forbidden("only guards and admins can log visitors")
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.apartments.GetByID(ctx, in.ApartmentID); err != nil {
		return nil, err
	}

	v = &domain.Visitor{
		Name:          in.Name,
		MobileNumber:  in.MobileNumber,
		Purpose:       in.Purpose,
		ApartmentID:   in.ApartmentID,
		VehicleNumber: in.VehicleNumber,
		EntryTime:     s.clock.Now(),
		Status:        domain.VisitorInside,
		CreatedBy:     actor.UserID,
	}
	if err := s.visitors.Create(ctx, v); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "visitor entered", "visitor_id", v.ID, "apartment_id", v.ApartmentID)
	return v, nil
}

// Checkout moves an inside visitor to checked_out. A linked pre-approval in
// arrived is completed in the same transaction.
func (s *Service) Checkout(ctx context.Context, actor domain.Actor, id int64) (v *domain.Visitor, err error) {
	defer func() { metrics.ObserveTransition("visitor", "checkout", err) }()

	if !actor.Is(domain.RoleGuard, domain.RoleAdmin) {
		return nil, domain.Forbidden("only guards and admins can check visitors out")
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.visitors.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := domain.NextVisitorStatus(current.Status, domain.VisitorCheckout); err != nil {
			return err
		}

		exit := s.clock.Now()
		if exit.Before(current.EntryTime) {
			exit = current.EntryTime
		}
		if err := s.visitors.Checkout(ctx, current.ID, actor.UserID, exit); err != nil {
			return err
		}

		if current.PreApprovedVisitorID != nil && s.preApprovals != nil {
			if err := s.preApprovals.CompleteLinked(ctx, *current.PreApprovedVisitorID); err != nil {
				return err
			}
		}

		v, err = s.visitors.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		logger.WarnContext(ctx, "visitor checkout refused", "visitor_id", id, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "visitor checked out", "visitor_id", v.ID)
	return v, nil
}

func (s *Service) ListActive(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Visitor, error) {
	if !actor.Is(domain.RoleGuard, domain.RoleAdmin) {
		return nil, domain.Forbidden("only guards and admins can view active visitors")
	}
	return s.visitors.List(ctx, repository.VisitorFilter{
		Status: domain.VisitorInside,
		Limit:  limit,
		Offset: offset,
	})
}

// ListByDay lists visitors who entered on the society-local date.
func (s *Service) ListByDay(ctx context.Context, actor domain.Actor, date string, limit, offset int) ([]domain.Visitor, error) {
	if !actor.Is(domain.RoleGuard, domain.RoleAdmin) {
		return nil, domain.Forbidden("only guards and admins can view the visitor log")
	}
	if date == "" {
		date = clock.Today(s.clock, s.loc)
	}
	from, to, err := clock.DayBounds(date, s.loc)
	if err != nil {
		return nil, domain.InvalidFields("invalid date", map[string]string{"date": "must be YYYY-MM-DD"})
	}
	return s.visitors.List(ctx, repository.VisitorFilter{
		EnteredFrom: &from,
		EnteredTo:   &to,
		Limit:       limit,
		Offset:      offset,
	})
}

// ListByApartment is the visit history of one apartment. Residents may only
// read their own.
func (s *Service) ListByApartment(ctx context.Context, actor domain.Actor, apartmentID int64, limit, offset int) ([]domain.Visitor, error) {
	switch {
	case actor.Is(domain.RoleGuard, domain.RoleAdmin):
	case actor.Is(domain.RoleResident) && actor.LivesIn(apartmentID):
	default:
		return nil, domain.Forbidden("visitor history belongs to another apartment")
	}
	if _, err := s.apartments.GetByID(ctx, apartmentID); err != nil {
		return nil, err
	}
	return s.visitors.List(ctx, repository.VisitorFilter{
		ApartmentID: apartmentID,
		Limit:       limit,
		Offset:      offset,
	})
}

func (s *Service) Stats(ctx context.Context, actor domain.Actor) (*Stats, error) {
	if !actor.Is(domain.RoleGuard, domain.RoleAdmin) {
		return nil, domain.Forbidden("only guards and admins can view visitor stats")
	}

	today := clock.Today(s.clock, s.loc)
	from, to, err := clock.DayBounds(today, s.loc)
	if err != nil {
		return nil, err
	}

	out := &Stats{Date: today}
	if out.Inside, err = s.visitors.Count(ctx, repository.VisitorFilter{Status: domain.VisitorInside}); err != nil {
		return nil, err
	}
	if out.TodayTotal, err = s.visitors.Count(ctx, repository.VisitorFilter{EnteredFrom: &from, EnteredTo: &to}); err != nil {
		return nil, err
	}
	if out.CheckedOutToday, err = s.visitors.Count(ctx, repository.VisitorFilter{
		Status:     domain.VisitorCheckedOut,
		ExitedFrom: &from,
		ExitedTo:   &to,
	}); err != nil {
		return nil, err
	}
	return out, nil
}
