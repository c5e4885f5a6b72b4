package visitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyhub/internal/domain"
	"societyhub/internal/modules/preapproval"
	"societyhub/internal/repository"
	"societyhub/internal/testdb"
)

// manualClock is advanced by tests.
type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	svc          *Service
	preApprovals *preapproval.Service
	clock        *manualClock
	society      testdb.Society
}

func setupTestService(t *testing.T) fixture {
	t.Helper()
	db := testdb.Open(t)
	society := testdb.Seed(t, db)
	clk := &manualClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	visitors := repository.NewVisitorRepository(db)
	apartments := repository.NewApartmentRepository(db)
	tx := repository.NewTxManager(db)
	pre := preapproval.NewService(repository.NewPreApprovalRepository(db), visitors, apartments, tx, clk, time.UTC)

	return fixture{
		svc:          NewService(visitors, apartments, pre, tx, clk, time.UTC),
		preApprovals: pre,
		clock:        clk,
		society:      society,
	}
}

func (f fixture) walkIn(t *testing.T, apartmentID int64) *domain.Visitor {
	t.Helper()
	v, err := f.svc.LogEntry(context.Background(), f.society.Guard, LogEntryInput{
		Name:         "Plumber",
		MobileNumber: "9811111111",
		Purpose:      "Repair",
		ApartmentID:  apartmentID,
	})
	require.NoError(t, err)
	return v
}

func TestLogEntry_Inside(t *testing.T) {
	f := setupTestService(t)

	v := f.walkIn(t, f.society.ApartmentA)

	assert.NotZero(t, v.ID)
	assert.Equal(t, domain.VisitorInside, v.Status)
	assert.True(t, v.EntryTime.Equal(f.clock.now))
	assert.Nil(t, v.ExitTime)
	assert.Nil(t, v.PreApprovedVisitorID)
}

func TestLogEntry_Validation(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	_, err := f.svc.LogEntry(ctx, f.society.Guard, LogEntryInput{Name: "X", Purpose: "Y", ApartmentID: f.society.ApartmentA})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.LogEntry(ctx, f.society.Guard, LogEntryInput{Name: "X", MobileNumber: "1", Purpose: "Y", ApartmentID: 404})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.LogEntry(ctx, f.society.Resident, LogEntryInput{Name: "X", MobileNumber: "1", Purpose: "Y", ApartmentID: f.society.ApartmentA})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogEntry_ManyVisitorsInside(t *testing.T) {
	f := setupTestService(t)
	f.walkIn(t, f.society.ApartmentA)
	f.walkIn(t, f.society.ApartmentA)
	f.walkIn(t, f.society.ApartmentB)

	active, err := f.svc.ListActive(context.Background(), f.society.Guard, 0, 0)

	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestCheckout_OnceOnly(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	v := f.walkIn(t, f.society.ApartmentA)
	f.clock.Advance(45 * time.Minute)

	out, err := f.svc.Checkout(ctx, f.society.Guard, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorCheckedOut, out.Status)
	require.NotNil(t, out.ExitTime)
	assert.False(t, out.ExitTime.Before(out.EntryTime))
	assert.True(t, out.ExitTime.Equal(f.clock.now))
	require.NotNil(t, out.CheckedOutBy)
	assert.Equal(t, f.society.Guard.UserID, *out.CheckedOutBy)

	_, err = f.svc.Checkout(ctx, f.society.Guard, v.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	active, err := f.svc.ListActive(ctx, f.society.Guard, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCheckout_ExitNeverBeforeEntry(t *testing.T) {
	f := setupTestService(t)
	v := f.walkIn(t, f.society.ApartmentA)
	f.clock.Advance(-time.Minute)

	out, err := f.svc.Checkout(context.Background(), f.society.Guard, v.ID)

	require.NoError(t, err)
	assert.True(t, out.ExitTime.Equal(out.EntryTime))
}

func TestCheckout_NotFoundAndForbidden(t *testing.T) {
	f := setupTestService(t)
	v := f.walkIn(t, f.society.ApartmentA)

	_, err := f.svc.Checkout(context.Background(), f.society.Guard, 5150)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Checkout(context.Background(), f.society.Resident, v.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCheckout_CompletesLinkedPreApproval(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	p, err := f.preApprovals.Create(ctx, f.society.Resident, preapproval.CreateInput{
		Name:            "Aunt",
		Purpose:         "Family",
		ExpectedDate:    "2026-03-01",
		NumberOfPersons: 1,
	})
	require.NoError(t, err)
	arrival, err := f.preApprovals.MarkArrived(ctx, f.society.Guard, p.ID)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.Checkout(ctx, f.society.Guard, arrival.Visitor.ID)
	require.NoError(t, err)

	got, err := f.preApprovals.Get(ctx, f.society.Admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PreApprovalCompleted, got.Status)
}

func TestListByDay(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.walkIn(t, f.society.ApartmentA)
	f.clock.Advance(24 * time.Hour)
	f.walkIn(t, f.society.ApartmentB)
	f.walkIn(t, f.society.ApartmentB)

	day1, err := f.svc.ListByDay(ctx, f.society.Guard, "2026-03-01", 0, 0)
	require.NoError(t, err)
	assert.Len(t, day1, 1)

	today, err := f.svc.ListByDay(ctx, f.society.Admin, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, today, 2)

	_, err = f.svc.ListByDay(ctx, f.society.Guard, "yesterday", 0, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListByDay_SocietyTimeZone(t *testing.T) {
	f := setupTestService(t)
	f.svc.loc = time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC is already the next day in IST
	f.clock.now = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	f.walkIn(t, f.society.ApartmentA)

	rows, err := f.svc.ListByDay(context.Background(), f.society.Guard, "2026-03-02", 0, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = f.svc.ListByDay(context.Background(), f.society.Guard, "2026-03-01", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListByApartment(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.walkIn(t, f.society.ApartmentA)
	f.walkIn(t, f.society.ApartmentB)

	rows, err := f.svc.ListByApartment(ctx, f.society.Resident, f.society.ApartmentA, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.society.ApartmentA, rows[0].ApartmentID)

	_, err = f.svc.ListByApartment(ctx, f.society.Resident, f.society.ApartmentB, 0, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	rows, err = f.svc.ListByApartment(ctx, f.society.Guard, f.society.ApartmentB, 0, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStats(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	early := f.walkIn(t, f.society.ApartmentA)
	f.walkIn(t, f.society.ApartmentB)
	f.clock.Advance(time.Hour)
	_, err := f.svc.Checkout(ctx, f.society.Guard, early.ID)
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx, f.society.Guard)

	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", stats.Date)
	assert.Equal(t, int64(1), stats.Inside)
	assert.Equal(t, int64(2), stats.TodayTotal)
	assert.Equal(t, int64(1), stats.CheckedOutToday)

	_, err = f.svc.Stats(ctx, f.society.Resident)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
