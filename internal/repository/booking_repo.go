package repository

import (
	"context"
	"fmt"
	"time"

	"societyhub/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID              int64          `gorm:"column:id;primaryKey"`
	UserID          int64          `gorm:"column:user_id;not null;index"`
	AmenityID       int64          `gorm:"column:amenity_id;not null;index:idx_bookings_amenity_window,priority:1"`
	StartTime       time.Time      `gorm:"column:start_time;not null;index:idx_bookings_amenity_window,priority:2"`
	EndTime         time.Time      `gorm:"column:end_time;not null"`
	Status          string         `gorm:"column:status;type:varchar(16);not null;index"`
	Notes           *string        `gorm:"column:notes;type:text"`
	ReviewedBy      *int64         `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time     `gorm:"column:reviewed_at"`
	RejectionReason *string        `gorm:"column:rejection_reason;type:text"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:              m.ID,
		UserID:          m.UserID,
		AmenityID:       m.AmenityID,
		StartTime:       m.StartTime.UTC(),
		EndTime:         m.EndTime.UTC(),
		Status:          domain.BookingStatus(m.Status),
		Notes:           strVal(m.Notes),
		ReviewedBy:      m.ReviewedBy,
		ReviewedAt:      m.ReviewedAt,
		RejectionReason: strVal(m.RejectionReason),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		b.DeletedAt = &t
	}
	return b
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:        b.ID,
		UserID:    b.UserID,
		AmenityID: b.AmenityID,
		StartTime: b.StartTime.UTC(),
		EndTime:   b.EndTime.UTC(),
		Status:    string(b.Status),
		Notes:     strPtr(b.Notes),
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		if isOverlapViolation(err) {
			return fmt.Errorf("amenity %d: %w", b.AmenityID, domain.ErrConflict)
		}
		return err
	}
	*b = *toDomainBooking(m)
	return nil
}

// GetByID also returns soft-deleted (rejected) bookings so callers can
// report their status.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := conn(ctx, r.db).Unscoped().First(&m, id).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}
	return toDomainBooking(m), nil
}

// FindOverlapping returns active bookings of the amenity intersecting the
// half-open window [start, end), ordered by start time.
func (r *BookingRepository) FindOverlapping(ctx context.Context, amenityID int64, start, end time.Time, excludeID *int64) ([]domain.Booking, error) {
	q := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("amenity_id = ?", amenityID).
		Where("status IN ?", activeStatuses()).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC())
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var rows []bookingModel
	if err := q.Order("start_time, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

// BookingStatusChange describes a reviewed transition.
type BookingStatusChange struct {
	From       domain.BookingStatus
	To         domain.BookingStatus
	ReviewedBy int64
	At         time.Time
	Reason     string
	SoftDelete bool
}

// UpdateStatus applies the change only if the booking is still in From.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, ch BookingStatusChange) error {
	updates := map[string]any{
		"status":      string(ch.To),
		"reviewed_by": ch.ReviewedBy,
		"reviewed_at": ch.At.UTC(),
	}
	if ch.Reason != "" {
		updates["rejection_reason"] = ch.Reason
	}
	if ch.SoftDelete {
		updates["deleted_at"] = ch.At.UTC()
	}

	tx := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(ch.From)).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return staleState("booking", id)
	}
	return nil
}

type BookingFilter struct {
	UserID    int64
	AmenityID int64
	Status    domain.BookingStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// List never returns rejected (soft-deleted) bookings.
func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)

	q := conn(ctx, r.db).Model(&bookingModel{})
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.AmenityID > 0 {
		q = q.Where("amenity_id = ?", f.AmenityID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.From != nil {
		q = q.Where("end_time > ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("start_time < ?", f.To.UTC())
	}

	var rows []bookingModel
	if err := q.Order("start_time, id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func activeStatuses() []string {
	out := make([]string, 0, len(domain.ActiveBookingStatuses))
	for _, s := range domain.ActiveBookingStatuses {
		out = append(out, string(s))
	}
	return out
}

func toDomainBookings(rows []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out
}
