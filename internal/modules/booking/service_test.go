package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"societyhub/internal/domain"
	"societyhub/internal/pkg/clock"
	"societyhub/internal/repository"
	"societyhub/internal/testdb"
)

var testNow = time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	bookings *repository.BookingRepository
	society  testdb.Society
}

func setupTestService(t *testing.T) fixture {
	t.Helper()
	db := testdb.Open(t)
	society := testdb.Seed(t, db)
	bookings := repository.NewBookingRepository(db)
	svc := NewService(
		bookings,
		repository.NewAmenityRepository(db),
		repository.NewUserRepository(db),
		repository.NewTxManager(db),
		clock.NewFixed(testNow),
		time.UTC,
	)
	return fixture{db: db, svc: svc, bookings: bookings, society: society}
}

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2026-03-02 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func (f fixture) book(t *testing.T, actor domain.Actor, amenityID int64, from, to string) *domain.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), actor, CreateInput{
		AmenityID: amenityID,
		StartTime: at(from),
		EndTime:   at(to),
	})
	require.NoError(t, err)
	return b
}

func TestCreate_InsertsPending(t *testing.T) {
	f := setupTestService(t)

	b := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	assert.NotZero(t, b.ID)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, f.society.Resident.UserID, b.UserID)
	assert.True(t, b.StartTime.Equal(at("09:00")))
	assert.Nil(t, b.DeletedAt)
}

func TestCreate_RejectsInvertedOrEmptyWindow(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.society.Resident, CreateInput{AmenityID: f.society.Gym.ID, StartTime: at("10:00"), EndTime: at("09:00")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create(ctx, f.society.Resident, CreateInput{AmenityID: f.society.Gym.ID, StartTime: at("10:00"), EndTime: at("10:00")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreate_Authorization(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	in := CreateInput{AmenityID: f.society.Gym.ID, StartTime: at("09:00"), EndTime: at("10:00")}

	_, err := f.svc.Create(ctx, f.society.Guard, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	other := in
	other.UserID = f.society.Neighbour.UserID
	_, err = f.svc.Create(ctx, f.society.Resident, other)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	b, err := f.svc.Create(ctx, f.society.Admin, other)
	require.NoError(t, err)
	assert.Equal(t, f.society.Neighbour.UserID, b.UserID)
}

func TestCreate_OnBehalfRequiresExistingResident(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	in := CreateInput{AmenityID: f.society.Gym.ID, StartTime: at("09:00"), EndTime: at("10:00")}

	missing := in
	missing.UserID = 4242
	_, err := f.svc.Create(ctx, f.society.Admin, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	guard := in
	guard.UserID = f.society.Guard.UserID
	_, err = f.svc.Create(ctx, f.society.Admin, guard)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mine, err := f.svc.ListMine(ctx, f.society.Guard, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCreate_UnknownAmenity(t *testing.T) {
	f := setupTestService(t)

	_, err := f.svc.Create(context.Background(), f.society.Resident, CreateInput{AmenityID: 999, StartTime: at("09:00"), EndTime: at("10:00")})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_OutsideOpeningHours(t *testing.T) {
	f := setupTestService(t)

	_, err := f.svc.Create(context.Background(), f.society.Resident, CreateInput{AmenityID: f.society.Gym.ID, StartTime: at("21:30"), EndTime: at("22:30")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// clubhouse has no opening hours
	f.book(t, f.society.Resident, f.society.Clubhouse.ID, "21:30", "23:30")
}

func TestCreate_InactiveAmenity(t *testing.T) {
	f := setupTestService(t)
	pool := &domain.Amenity{Name: "Pool", IsActive: false}
	require.NoError(t, repository.NewAmenityRepository(f.db).Create(context.Background(), pool))

	_, err := f.svc.Create(context.Background(), f.society.Resident, CreateInput{AmenityID: pool.ID, StartTime: at("09:00"), EndTime: at("10:00")})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCheckConflict_BackToBackDoesNotConflict(t *testing.T) {
	f := setupTestService(t)
	f.book(t, f.society.Resident, f.society.Gym.ID, "10:00", "11:00")

	res, err := f.svc.CheckConflict(context.Background(), f.society.Gym.ID, at("11:00"), at("12:00"), nil)
	require.NoError(t, err)
	assert.False(t, res.Conflict)
	assert.Nil(t, res.First)
	assert.Empty(t, res.Conflicts)

	res, err = f.svc.CheckConflict(context.Background(), f.society.Gym.ID, at("09:00"), at("10:00"), nil)
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckConflict_OverlapWithApproved(t *testing.T) {
	f := setupTestService(t)
	b := f.book(t, f.society.Resident, f.society.Gym.ID, "10:00", "12:00")
	_, err := f.svc.Approve(context.Background(), f.society.Admin, b.ID)
	require.NoError(t, err)

	res, err := f.svc.CheckConflict(context.Background(), f.society.Gym.ID, at("11:00"), at("13:00"), nil)

	require.NoError(t, err)
	assert.True(t, res.Conflict)
	require.NotNil(t, res.First)
	assert.Equal(t, b.ID, res.First.ID)
}

func TestCheckConflict_ReportsEveryOverlap(t *testing.T) {
	f := setupTestService(t)
	first := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")
	second := f.book(t, f.society.Neighbour, f.society.Gym.ID, "10:30", "11:30")
	f.book(t, f.society.Neighbour, f.society.Clubhouse.ID, "09:00", "12:00")

	res, err := f.svc.CheckConflict(context.Background(), f.society.Gym.ID, at("09:30"), at("11:00"), nil)

	require.NoError(t, err)
	require.Len(t, res.Conflicts, 2)
	assert.Equal(t, first.ID, res.Conflicts[0].ID)
	assert.Equal(t, second.ID, res.Conflicts[1].ID)
	assert.Equal(t, first.ID, res.First.ID)
}

func TestCheckConflict_ExcludesSelf(t *testing.T) {
	f := setupTestService(t)
	b := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	res, err := f.svc.CheckConflict(context.Background(), f.society.Gym.ID, at("09:00"), at("10:00"), &b.ID)

	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckConflict_Validation(t *testing.T) {
	f := setupTestService(t)

	_, err := f.svc.CheckConflict(context.Background(), f.society.Gym.ID, at("10:00"), at("09:00"), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.CheckConflict(context.Background(), 404, at("09:00"), at("10:00"), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_ConflictCarriesBookings(t *testing.T) {
	f := setupTestService(t)
	existing := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	_, err := f.svc.Create(context.Background(), f.society.Neighbour, CreateInput{AmenityID: f.society.Gym.ID, StartTime: at("09:30"), EndTime: at("10:30")})

	require.ErrorIs(t, err, domain.ErrConflict)
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)
	require.Len(t, cerr.Conflicts, 1)
	assert.Equal(t, existing.ID, cerr.Conflicts[0].ID)
}

func TestApprove_FromPendingOnly(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	b := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	approved, err := f.svc.Approve(ctx, f.society.Admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, f.society.Admin.UserID, *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)
	assert.True(t, approved.ReviewedAt.Equal(testNow))

	_, err = f.svc.Approve(ctx, f.society.Admin, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Reject(ctx, f.society.Admin, b.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApprove_RejectedBookingRefused(t *testing.T) {
	f := setupTestService(t)
	b := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")
	_, err := f.svc.Reject(context.Background(), f.society.Admin, b.ID, "maintenance")
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), f.society.Admin, b.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	f := setupTestService(t)
	b := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	_, err := f.svc.Approve(context.Background(), f.society.Resident, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Reject(context.Background(), f.society.Guard, b.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, stored.Status)
}

func TestApprove_NotFound(t *testing.T) {
	f := setupTestService(t)

	_, err := f.svc.Approve(context.Background(), f.society.Admin, 12345)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_RecheckCatchesOverlapThatSlippedIn(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	first := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	// bypass the service to simulate a booking written by a racing request
	racer := &domain.Booking{UserID: f.society.Neighbour.UserID, AmenityID: f.society.Gym.ID, StartTime: at("09:30"), EndTime: at("10:30"), Status: domain.BookingPending}
	require.NoError(t, f.bookings.Create(ctx, racer))

	_, err := f.svc.Approve(ctx, f.society.Admin, first.ID)

	require.ErrorIs(t, err, domain.ErrConflict)
	stored, err := f.bookings.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, stored.Status)
}

func TestReject_SoftDeletesAndFreesSlot(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	b := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	rejected, err := f.svc.Reject(ctx, f.society.Admin, b.ID, "gym closed for cleaning")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingRejected, rejected.Status)
	require.NotNil(t, rejected.DeletedAt)
	assert.Equal(t, "gym closed for cleaning", rejected.RejectionReason)

	res, err := f.svc.CheckConflict(ctx, f.society.Gym.ID, at("09:00"), at("10:00"), nil)
	require.NoError(t, err)
	assert.False(t, res.Conflict)

	mine, err := f.svc.ListMine(ctx, f.society.Resident, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, mine)

	f.book(t, f.society.Neighbour, f.society.Gym.ID, "09:00", "10:00")
}

func TestScenario_GymDoubleBooking(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	first := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")
	assert.Equal(t, domain.BookingPending, first.Status)

	_, err := f.svc.Approve(ctx, f.society.Admin, first.ID)
	require.NoError(t, err)

	res, err := f.svc.CheckConflict(ctx, f.society.Gym.ID, at("09:30"), at("10:30"), nil)
	require.NoError(t, err)
	assert.True(t, res.Conflict)
	require.NotNil(t, res.First)
	assert.Equal(t, first.ID, res.First.ID)

	_, err = f.svc.Create(ctx, f.society.Neighbour, CreateInput{AmenityID: f.society.Gym.ID, StartTime: at("09:30"), EndTime: at("10:30")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestNoTwoActiveBookingsOverlap(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	actors := []domain.Actor{f.society.Resident, f.society.Neighbour}

	// sweep 90-minute requests every 30 minutes across the morning
	for i := 0; i < 16; i++ {
		start := at("06:00").Add(time.Duration(i) * 30 * time.Minute)
		_, err := f.svc.Create(ctx, actors[i%2], CreateInput{AmenityID: f.society.Gym.ID, StartTime: start, EndTime: start.Add(90 * time.Minute)})
		if err != nil {
			require.ErrorIs(t, err, domain.ErrConflict)
		}
	}

	active, err := f.svc.List(ctx, f.society.Admin, repository.BookingFilter{AmenityID: f.society.Gym.ID})
	require.NoError(t, err)
	require.NotEmpty(t, active)
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			assert.False(t, domain.Overlaps(active[i].Window(), active[j].Window()),
				"bookings %d and %d overlap", active[i].ID, active[j].ID)
		}
	}
}

func TestApprove_ConcurrentCallsOnlyOneWins(t *testing.T) {
	f := setupTestService(t)
	b := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Approve(context.Background(), f.society.Admin, b.ID)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, 1, ok)
}

func TestList_AdminFilters(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	a := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")
	f.book(t, f.society.Resident, f.society.Clubhouse.ID, "09:00", "10:00")
	r := f.book(t, f.society.Neighbour, f.society.Gym.ID, "11:00", "12:00")
	_, err := f.svc.Approve(ctx, f.society.Admin, a.ID)
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, f.society.Admin, r.ID, "")
	require.NoError(t, err)

	approved, err := f.svc.List(ctx, f.society.Admin, repository.BookingFilter{Status: domain.BookingApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, a.ID, approved[0].ID)

	gym, err := f.svc.List(ctx, f.society.Admin, repository.BookingFilter{AmenityID: f.society.Gym.ID})
	require.NoError(t, err)
	assert.Len(t, gym, 1)

	_, err = f.svc.List(ctx, f.society.Admin, repository.BookingFilter{Status: domain.BookingRejected})
	assert.ErrorIs(t, err, domain.ErrValidation, "rejected bookings are not listable")

	hidden, err := f.svc.GetByID(ctx, f.society.Admin, r.ID)
	require.NoError(t, err)
	assert.NotNil(t, hidden.DeletedAt)

	_, err = f.svc.List(ctx, f.society.Admin, repository.BookingFilter{Status: "CANCELLED"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.List(ctx, f.society.Resident, repository.BookingFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetByID_OwnerOrAdmin(t *testing.T) {
	f := setupTestService(t)
	b := f.book(t, f.society.Resident, f.society.Gym.ID, "09:00", "10:00")

	_, err := f.svc.GetByID(context.Background(), f.society.Resident, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), f.society.Admin, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), f.society.Neighbour, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAvailability_FreeGaps(t *testing.T) {
	f := setupTestService(t)
	f.book(t, f.society.Resident, f.society.Gym.ID, "08:00", "09:00")
	f.book(t, f.society.Neighbour, f.society.Gym.ID, "09:00", "10:30")
	f.book(t, f.society.Resident, f.society.Gym.ID, "20:00", "22:00")

	av, err := f.svc.Availability(context.Background(), f.society.Gym.ID, "2026-03-02")

	require.NoError(t, err)
	assert.True(t, av.Open.Equal(at("06:00")))
	assert.True(t, av.Close.Equal(at("22:00")))
	assert.Len(t, av.Booked, 3)
	require.Len(t, av.Free, 2)
	assert.True(t, av.Free[0].Start.Equal(at("06:00")))
	assert.True(t, av.Free[0].End.Equal(at("08:00")))
	assert.True(t, av.Free[1].Start.Equal(at("10:30")))
	assert.True(t, av.Free[1].End.Equal(at("20:00")))
}

func TestAvailability_LocalTimeZone(t *testing.T) {
	f := setupTestService(t)
	ist := time.FixedZone("IST", 5*3600+1800)
	f.svc.loc = ist

	av, err := f.svc.Availability(context.Background(), f.society.Gym.ID, "2026-03-02")

	require.NoError(t, err)
	assert.True(t, av.Open.Equal(time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC)))
	require.Len(t, av.Free, 1)
}

func TestAvailability_BadDate(t *testing.T) {
	f := setupTestService(t)

	_, err := f.svc.Availability(context.Background(), f.society.Clubhouse.ID, "March 2")

	assert.ErrorIs(t, err, domain.ErrValidation)
}
