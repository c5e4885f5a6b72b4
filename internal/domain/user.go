package domain

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleResident UserRole = "resident"
	RoleGuard    UserRole = "guard"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleResident, RoleGuard:
		return true
	}
	return false
}

type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone,omitempty"`
	Role        UserRole  `json:"role" validate:"required,oneof=admin resident guard"`
	ApartmentID *int64    `json:"apartment_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Actor is the already-authenticated identity performing an operation.
// It is passed explicitly into every service call.
type Actor struct {
	UserID      int64    `json:"user_id"`
	Role        UserRole `json:"role"`
	ApartmentID *int64   `json:"apartment_id,omitempty"`
}

func (a Actor) Is(roles ...UserRole) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// LivesIn reports whether the actor is registered to the given apartment.
func (a Actor) LivesIn(apartmentID int64) bool {
	return a.ApartmentID != nil && *a.ApartmentID == apartmentID
}
