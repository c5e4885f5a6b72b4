package domain

import "time"

// Amenity is a bookable shared facility. OpenTime and CloseTime are local
// "15:04" wall-clock bounds; both empty means the amenity is open all day.
type Amenity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	OpenTime    string    `json:"open_time,omitempty"`
	CloseTime   string    `json:"close_time,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a Amenity) HasOpeningHours() bool {
	return a.OpenTime != "" && a.CloseTime != ""
}
