package booking

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
	bookings  BookingRepository
	amenities AmenityRepository
	users     UserRepository
	tx        Transactor
	clock     clock.Clock
	loc       *time.Location
}

func NewService(
	bookings BookingRepository,
	amenities AmenityRepository,
	users UserRepository,
	tx Transactor,
	clk clock.Clock,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		bookings:  bookings,
		amenities: amenities,
		users:     users,
		tx:        tx,
		clock:     clk,
		loc:       loc,
	}
}

// CheckConflict reports every active booking of the amenity overlapping the
// half-open window [start, end). It has no side effects.
func (s *Service) CheckConflict(ctx context.Context, amenityID int64, start, end time.Time, excludeID *int64) (*ConflictResult, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	if _, err := s.amenities.GetByID(ctx, amenityID); err != nil {
		return nil, err
	}
	return s.findConflicts(ctx, amenityID, start, end, excludeID)
}

func (s *Service) findConflicts(ctx context.Context, amenityID int64, start, end time.Time, excludeID *int64) (*ConflictResult, error) {
	rows, err := s.bookings.FindOverlapping(ctx, amenityID, start, end, excludeID)
	if err != nil {
		return nil, err
	}

	res := &ConflictResult{Conflicts: make([]domain.Booking, 0, len(rows))}
	window := domain.Interval{Start: start, End: end}
	for _, b := range rows {
		if !domain.Overlaps(window, b.Window()) {
			continue
		}
		res.Conflicts = append(res.Conflicts, b)
	}
	if len(res.Conflicts) > 0 {
		res.Conflict = true
		first := res.Conflicts[0]
		res.First = &first
	}
	return res, nil
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (b *domain.Booking, err error) {
	defer func() { metrics.ObserveTransition("booking", "create", err) }()

	if !actor.Is(domain.RoleResident, domain.RoleAdmin) {
		return nil, domain.Forbidden("only residents and admins can book amenities")
	}
	if in.UserID == 0 {
		in.UserID = actor.UserID
	}
	if in.UserID != actor.UserID {
		if !actor.Is(domain.RoleAdmin) {
			return nil, domain.Forbidden("residents can only book for themselves")
		}
		owner, err := s.users.GetByID(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if owner.Role != domain.RoleResident {
			return nil, domain.Forbidden("bookings can only be made for residents")
		}
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if err := validateWindow(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		amenity, err := s.amenities.GetForUpdate(ctx, in.AmenityID)
		if err != nil {
			return err
		}
		if !amenity.IsActive {
			return domain.Invalid("amenity %q is not accepting bookings", amenity.Name)
		}
		if err := s.withinOpeningHours(*amenity, in.StartTime, in.EndTime); err != nil {
			return err
		}

		res, err := s.findConflicts(ctx, amenity.ID, in.StartTime, in.EndTime, nil)
		if err != nil {
			return err
		}
		if res.Conflict {
			return &domain.ConflictError{AmenityID: amenity.ID, Conflicts: res.Conflicts}
		}

		b = &domain.Booking{
			UserID:    in.UserID,
			AmenityID: amenity.ID,
			StartTime: in.StartTime.UTC(),
			EndTime:   in.EndTime.UTC(),
			Status:    domain.BookingPending,
			Notes:     in.Notes,
		}
		return s.bookings.Create(ctx, b)
	})
	if err != nil {
		logger.WarnContext(ctx, "booking create refused", "amenity_id", in.AmenityID, "user_id", in.UserID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "booking created", "booking_id", b.ID, "amenity_id", b.AmenityID, "user_id", b.UserID)
	return b, nil
}

// Approve moves a PENDING booking to APPROVED after re-checking the slot
// inside the amenity lock.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, bookingID int64) (b *domain.Booking, err error) {
	defer func() { metrics.ObserveTransition("booking", "approve", err) }()

	if !actor.Is(domain.RoleAdmin) {
		return nil, domain.Forbidden("only admins can approve bookings")
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		next, err := domain.NextBookingStatus(current.Status, domain.BookingApprove)
		if err != nil {
			return err
		}

		if _, err := s.amenities.GetForUpdate(ctx, current.AmenityID); err != nil {
			return err
		}
		res, err := s.findConflicts(ctx, current.AmenityID, current.StartTime, current.EndTime, &current.ID)
		if err != nil {
			return err
		}
		if res.Conflict {
			return &domain.ConflictError{AmenityID: current.AmenityID, Conflicts: res.Conflicts}
		}

		if err := s.bookings.UpdateStatus(ctx, current.ID, repository.BookingStatusChange{
			From:       current.Status,
			To:         next,
			ReviewedBy: actor.UserID,
			At:         s.clock.Now(),
		}); err != nil {
			return err
		}

		b, err = s.bookings.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		logger.WarnContext(ctx, "booking approve refused", "booking_id", bookingID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "booking approved", "booking_id", b.ID, "amenity_id", b.AmenityID)
	return b, nil
}

// Reject moves a PENDING booking to REJECTED and soft-deletes it, freeing
// its slot.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, bookingID int64, reason string) (b *domain.Booking, err error) {
	defer func() { metrics.ObserveTransition("booking", "reject", err) }()

	if !actor.Is(domain.RoleAdmin) {
		return nil, domain.Forbidden("only admins can reject bookings")
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		next, err := domain.NextBookingStatus(current.Status, domain.BookingReject)
		if err != nil {
			return err
		}

		if err := s.bookings.UpdateStatus(ctx, current.ID, repository.BookingStatusChange{
			From:       current.Status,
			To:         next,
			ReviewedBy: actor.UserID,
			At:         s.clock.Now(),
			Reason:     reason,
			SoftDelete: true,
		}); err != nil {
			return err
		}

		b, err = s.bookings.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		logger.WarnContext(ctx, "booking reject refused", "booking_id", bookingID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "booking rejected", "booking_id", b.ID, "amenity_id", b.AmenityID)
	return b, nil
}

// GetByID is visible to admins and to the booking's owner.
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(domain.RoleAdmin) && b.UserID != actor.UserID {
		return nil, domain.Forbidden("booking belongs to another user")
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.List(ctx, repository.BookingFilter{
		UserID: actor.UserID,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Service) List(ctx context.Context, actor domain.Actor, f repository.BookingFilter) ([]domain.Booking, error) {
	if !actor.Is(domain.RoleAdmin) {
		return nil, domain.Forbidden("only admins can list all bookings")
	}
	if f.Status != "" && f.Status != domain.BookingPending && f.Status != domain.BookingApproved {
		return nil, domain.InvalidFields("invalid filter", map[string]string{"status": "must be PENDING or APPROVED"})
	}
	return s.bookings.List(ctx, f)
}

// Availability returns the amenity's opening window on the local date and
// the free gaps left by active bookings.
func (s *Service) Availability(ctx context.Context, amenityID int64, date string) (*Availability, error) {
	amenity, err := s.amenities.GetByID(ctx, amenityID)
	if err != nil {
		return nil, err
	}

	open, close, err := s.openingWindow(*amenity, date)
	if err != nil {
		return nil, err
	}

	booked, err := s.bookings.FindOverlapping(ctx, amenity.ID, open, close, nil)
	if err != nil {
		return nil, err
	}

	busy := make([]domain.Interval, 0, len(booked))
	for _, b := range booked {
		busy = append(busy, b.Window())
	}

	return &Availability{
		AmenityID: amenity.ID,
		Date:      date,
		Open:      open,
		Close:     close,
		Booked:    booked,
		Free:      subtractBusy(open, close, busy),
	}, nil
}

func (s *Service) openingWindow(a domain.Amenity, date string) (time.Time, time.Time, error) {
	if !a.HasOpeningHours() {
		start, end, err := clock.DayBounds(date, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.InvalidFields("invalid date", map[string]string{"date": "must be YYYY-MM-DD"})
		}
		return start, end, nil
	}

	open, err := clock.At(date, a.OpenTime, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InvalidFields("invalid date", map[string]string{"date": "must be YYYY-MM-DD"})
	}
	close, err := clock.At(date, a.CloseTime, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return open, close, nil
}

func (s *Service) withinOpeningHours(a domain.Amenity, start, end time.Time) error {
	if !a.HasOpeningHours() {
		return nil
	}
	date := start.In(s.loc).Format(domain.DateLayout)
	open, close, err := s.openingWindow(a, date)
	if err != nil {
		return err
	}
	if start.Before(open) || end.After(close) {
		return domain.Invalid("%s is open %s-%s", a.Name, a.OpenTime, a.CloseTime)
	}
	return nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.InvalidFields("invalid time window", map[string]string{"start_time": "required", "end_time": "required"})
	}
	if !start.Before(end) {
		return domain.Invalid("start time must be before end time")
	}
	return nil
}
