package directory

import "societyhub/internal/domain"

type CreateAmenityRequest struct {
	Name        string `json:"name" binding:"required" validate:"required,max=80"`
	Description string `json:"description" validate:"max=500"`
	OpenTime    string `json:"open_time" validate:"required_with=CloseTime,omitempty,datetime=15:04"`
	CloseTime   string `json:"close_time" validate:"required_with=OpenTime,omitempty,datetime=15:04"`
	Inactive    bool   `json:"inactive"`
}

type CreateApartmentRequest struct {
	Block  string `json:"block" binding:"required" validate:"required,max=10"`
	Number string `json:"number" binding:"required" validate:"required,max=10"`
	Floor  int    `json:"floor" validate:"gte=0"`
}

type CreateUserRequest struct {
	Name        string          `json:"name" binding:"required" validate:"required,max=120"`
	Email       string          `json:"email" binding:"required" validate:"required,email"`
	Phone       string          `json:"phone" validate:"max=20"`
	Role        domain.UserRole `json:"role" binding:"required" validate:"required,oneof=admin resident guard"`
	ApartmentID *int64          `json:"apartment_id"`
}

// Profile is the caller's directory entry plus their apartment, if any.
type Profile struct {
	User      *domain.User      `json:"user"`
	Apartment *domain.Apartment `json:"apartment,omitempty"`
}
