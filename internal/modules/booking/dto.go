package booking

import (
	"time"

	"societyhub/internal/domain"
)

type CreateBookingRequest struct {
	AmenityID int64     `json:"amenity_id" binding:"required"`
	UserID    int64     `json:"user_id"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Notes     string    `json:"notes"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CreateInput is the service-level booking request. UserID zero books for
// the actor.
type CreateInput struct {
	UserID    int64     `validate:"gte=0"`
	AmenityID int64     `validate:"required,gt=0"`
	StartTime time.Time `validate:"required"`
	EndTime   time.Time `validate:"required"`
	Notes     string    `validate:"max=500"`
}

func (r CreateBookingRequest) Input() CreateInput {
	return CreateInput{
		UserID:    r.UserID,
		AmenityID: r.AmenityID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Notes:     r.Notes,
	}
}

// ConflictResult is the outcome of a conflict check. First is the earliest
// conflicting booking; Conflicts lists all of them ordered by start.
type ConflictResult struct {
	Conflict  bool             `json:"conflict"`
	First     *domain.Booking  `json:"conflicting_booking,omitempty"`
	Conflicts []domain.Booking `json:"conflicts"`
}

type Availability struct {
	AmenityID int64             `json:"amenity_id"`
	Date      string            `json:"date"`
	Open      time.Time         `json:"open"`
	Close     time.Time         `json:"close"`
	Booked    []domain.Booking  `json:"booked"`
	Free      []domain.Interval `json:"free"`
}
