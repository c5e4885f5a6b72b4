package preapproval

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
	preApprovals PreApprovalRepository
	visitors     VisitorWriter
	apartments   ApartmentRepository
	tx           Transactor
	clock        clock.Clock
	loc          *time.Location
}

func NewService(
	preApprovals PreApprovalRepository,
	visitors VisitorWriter,
	apartments ApartmentRepository,
	tx Transactor,
	clk clock.Clock,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		preApprovals: preApprovals,
		visitors:     visitors,
		apartments:   apartments,
		tx:           tx,
		clock:        clk,
		loc:          loc,
	}
}

// Today is the society-local calendar date used for expiry.
func (s *Service) Today() string {
	return clock.Today(s.clock, s.loc)
}

// Create records an expected visitor in pending. Past dates are accepted.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (p *domain.PreApprovedVisitor, err error) {
	defer func() { metrics.ObserveTransition("preapproval", "create", err) }()

	if !actor.Is(domain.RoleResident, domain.RoleAdmin) {
		return nil, domain.Forbidden("only residents and admins can pre-approve visitors")
	}
	if in.ApartmentID == 0 && actor.ApartmentID != nil {
		in.ApartmentID = *actor.ApartmentID
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if in.ApartmentID == 0 {
		return nil, domain.InvalidFields("apartment is required", map[string]string{"ApartmentID": "required"})
	}
	if actor.Is(domain.RoleResident) && !actor.LivesIn(in.ApartmentID) {
		return nil, domain.Forbidden("residents can only pre-approve visitors for their own apartment")
	}
	if in.ExpectedTimeFrom, in.ExpectedTimeTo, err = expectedWindow(in.ExpectedTimeFrom, in.ExpectedTimeTo); err != nil {
		return nil, err
	}
	if _, err := s.apartments.GetByID(ctx, in.ApartmentID); err != nil {
		return nil, err
	}

	p = &domain.PreApprovedVisitor{
		Name:             in.Name,
		MobileNumber:     in.MobileNumber,
		Purpose:          in.Purpose,
		ApartmentID:      in.ApartmentID,
		ExpectedDate:     in.ExpectedDate,
		ExpectedTimeFrom: in.ExpectedTimeFrom,
		ExpectedTimeTo:   in.ExpectedTimeTo,
		NumberOfPersons:  in.NumberOfPersons,
		Status:           domain.PreApprovalPending,
		CreatedBy:        actor.UserID,
		Notes:            in.Notes,
	}
	if err := s.preApprovals.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "pre-approval created", "pre_approval_id", p.ID, "apartment_id", p.ApartmentID, "expected_date", p.ExpectedDate)
	return p, nil
}

// expectedWindow zero-pads the optional "15:04" bounds and, when both are
// given, requires from to come strictly before to.
func expectedWindow(from, to string) (string, string, error) {
	var err error
	if from != "" {
		if from, err = clock.WallClock(from); err != nil {
			return "", "", domain.InvalidFields("invalid expected time", map[string]string{"ExpectedTimeFrom": "datetime"})
		}
	}
	if to != "" {
		if to, err = clock.WallClock(to); err != nil {
			return "", "", domain.InvalidFields("invalid expected time", map[string]string{"ExpectedTimeTo": "datetime"})
		}
	}
	if from != "" && to != "" && from >= to {
		return "", "", domain.Invalid("expected_time_from must be before expected_time_to")
	}
	return from, to, nil
}

// MarkArrived flips a pending pre-approval to arrived and logs the visitor
// as inside, both in one transaction.
func (s *Service) MarkArrived(ctx context.Context, actor domain.Actor, id int64) (out *Arrival, err error) {
	defer func() { metrics.ObserveTransition("preapproval", "arrive", err) }()

	if !actor.Is(domain.RoleGuard, domain.RoleAdmin) {
		return nil, domain.Forbidden("only guards and admins can confirm arrivals")
	}

	today := s.Today()
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.preApprovals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		from := domain.EffectiveStatus(*p, today)
		next, err := domain.NextPreApprovalStatus(from, domain.PreApprovalArrive)
		if err != nil {
			return err
		}

		// A pre-approval is promoted to at most one visitor.
		linked, err := s.visitors.CountByPreApproval(ctx, p.ID)
		if err != nil {
			return err
		}
		if linked > 0 {
			return &domain.TransitionError{Entity: "pre-approval", From: string(from), Event: string(domain.PreApprovalArrive)}
		}

		now := s.clock.Now()
		if err := s.preApprovals.UpdateStatus(ctx, p.ID, repository.PreApprovalStatusChange{
			From:  from,
			To:    next,
			At:    now,
			Today: today,
		}); err != nil {
			return err
		}

		v := &domain.Visitor{
			Name:                 p.Name,
			MobileNumber:         p.MobileNumber,
			Purpose:              p.Purpose,
			ApartmentID:          p.ApartmentID,
			EntryTime:            now,
			Status:               domain.VisitorInside,
			CreatedBy:            actor.UserID,
			PreApprovedVisitorID: &p.ID,
		}
		if err := s.visitors.Create(ctx, v); err != nil {
			return err
		}

		p, err = s.preApprovals.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		out = &Arrival{PreApproval: p, Visitor: v}
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "pre-approval arrival refused", "pre_approval_id", id, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "pre-approved visitor arrived", "pre_approval_id", id, "visitor_id", out.Visitor.ID)
	return out, nil
}

// Cancel is allowed for the creator or an admin while pending.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id int64) (p *domain.PreApprovedVisitor, err error) {
	defer func() { metrics.ObserveTransition("preapproval", "cancel", err) }()

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.preApprovals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.Is(domain.RoleAdmin) && current.CreatedBy != actor.UserID {
			return domain.Forbidden("only the creator or an admin can cancel a pre-approval")
		}
		p, err = s.transition(ctx, current, domain.PreApprovalCancel)
		return err
	})
	if err != nil {
		logger.WarnContext(ctx, "pre-approval cancel refused", "pre_approval_id", id, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "pre-approval cancelled", "pre_approval_id", id)
	return p, nil
}

// Complete closes an arrived pre-approval.
func (s *Service) Complete(ctx context.Context, actor domain.Actor, id int64) (p *domain.PreApprovedVisitor, err error) {
	defer func() { metrics.ObserveTransition("preapproval", "complete", err) }()

	if !actor.Is(domain.RoleGuard, domain.RoleAdmin) {
		return nil, domain.Forbidden("only guards and admins can complete a visit")
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.preApprovals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		p, err = s.transition(ctx, current, domain.PreApprovalComplete)
		return err
	})
	if err != nil {
		logger.WarnContext(ctx, "pre-approval complete refused", "pre_approval_id", id, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "pre-approval completed", "pre_approval_id", id)
	return p, nil
}

// CompleteLinked completes the pre-approval a departing visitor came in on.
// Records no longer in arrived are left alone.
func (s *Service) CompleteLinked(ctx context.Context, id int64) error {
	current, err := s.preApprovals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != domain.PreApprovalArrived {
		return nil
	}
	_, err = s.transition(ctx, current, domain.PreApprovalComplete)
	if err == nil {
		metrics.ObserveTransition("preapproval", "complete", nil)
	}
	return err
}

func (s *Service) transition(ctx context.Context, current *domain.PreApprovedVisitor, ev domain.PreApprovalEvent) (*domain.PreApprovedVisitor, error) {
	today := s.Today()
	from := domain.EffectiveStatus(*current, today)
	next, err := domain.NextPreApprovalStatus(from, ev)
	if err != nil {
		return nil, err
	}
	if err := s.preApprovals.UpdateStatus(ctx, current.ID, repository.PreApprovalStatusChange{
		From:  from,
		To:    next,
		At:    s.clock.Now(),
		Today: today,
	}); err != nil {
		return nil, err
	}
	return s.preApprovals.GetByID(ctx, current.ID)
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.PreApprovedVisitor, error) {
	p, err := s.preApprovals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Is(domain.RoleResident) && !actor.LivesIn(p.ApartmentID) && p.CreatedBy != actor.UserID {
		return nil, domain.Forbidden("pre-approval belongs to another apartment")
	}
	p.Status = domain.EffectiveStatus(*p, s.Today())
	return p, nil
}

// List returns pre-approvals with their effective status. Residents only
// see their own apartment.
func (s *Service) List(ctx context.Context, actor domain.Actor, f ListFilter) ([]domain.PreApprovedVisitor, error) {
	rf, err := s.repoFilter(actor, f)
	if err != nil {
		return nil, err
	}
	rows, err := s.preApprovals.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Status = domain.EffectiveStatus(rows[i], rf.Today)
	}
	return rows, nil
}

// Counts returns the number of pre-approvals per effective status.
func (s *Service) Counts(ctx context.Context, actor domain.Actor, f ListFilter) (map[domain.PreApprovalStatus]int64, error) {
	f.Status = ""
	rf, err := s.repoFilter(actor, f)
	if err != nil {
		return nil, err
	}
	return s.preApprovals.CountByStatus(ctx, rf)
}

func (s *Service) repoFilter(actor domain.Actor, f ListFilter) (repository.PreApprovalFilter, error) {
	if f.Status != "" && !f.Status.Valid() {
		return repository.PreApprovalFilter{}, domain.InvalidFields("invalid filter", map[string]string{"status": "unknown status"})
	}
	if f.Date != "" {
		if _, err := time.Parse(domain.DateLayout, f.Date); err != nil {
			return repository.PreApprovalFilter{}, domain.InvalidFields("invalid filter", map[string]string{"date": "must be YYYY-MM-DD"})
		}
	}

	switch {
	case actor.Is(domain.RoleGuard, domain.RoleAdmin):
	case actor.Is(domain.RoleResident):
		if actor.ApartmentID == nil {
			return repository.PreApprovalFilter{}, domain.Forbidden("resident has no apartment")
		}
		if f.ApartmentID != 0 && f.ApartmentID != *actor.ApartmentID {
			return repository.PreApprovalFilter{}, domain.Forbidden("residents can only view their own apartment")
		}
		f.ApartmentID = *actor.ApartmentID
	default:
		return repository.PreApprovalFilter{}, domain.Forbidden("unknown role")
	}

	return repository.PreApprovalFilter{
		Status:       f.Status,
		ExpectedDate: f.Date,
		ApartmentID:  f.ApartmentID,
		Today:        s.Today(),
		Limit:        f.Limit,
		Offset:       f.Offset,
	}, nil
}

// ExpireOverdue writes expired onto pending pre-approvals dated before
// today. Reads already treat them as expired.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.preApprovals.ExpireOverdue(ctx, s.Today())
	if err != nil {
		logger.ErrorContext(ctx, "pre-approval expiry sweep failed", "error", err)
		return 0, err
	}
	metrics.AddExpired(n)
	if n > 0 {
		logger.InfoContext(ctx, "pre-approvals expired", "count", n)
	}
	return n, nil
}
