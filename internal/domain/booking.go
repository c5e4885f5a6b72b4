package domain

import "time"

type BookingStatus string

const (
	BookingPending  BookingStatus = "PENDING"
	BookingApproved BookingStatus = "APPROVED"
	BookingRejected BookingStatus = "REJECTED"
)

// ActiveBookingStatuses are the statuses that occupy an amenity slot.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingApproved}

type Booking struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	AmenityID       int64         `json:"amenity_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Status          BookingStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	ReviewedBy      *int64        `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time    `json:"reviewed_at,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
}

// Interval is a half-open time window [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (b Booking) Window() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Overlaps reports whether two half-open intervals intersect. Windows that
// only touch at an edge do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
