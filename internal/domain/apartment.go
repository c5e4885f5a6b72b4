package domain

import "time"

type Apartment struct {
	ID        int64     `json:"id"`
	Block     string    `json:"block" validate:"required"`
	Number    string    `json:"number" validate:"required"`
	Floor     int       `json:"floor"`
	CreatedAt time.Time `json:"created_at"`
}
