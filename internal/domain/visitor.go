package domain

import "time"

type VisitorStatus string

const (
	VisitorInside     VisitorStatus = "inside"
	VisitorCheckedOut VisitorStatus = "checked_out"
)

type Visitor struct {
	ID                   int64         `json:"id"`
	Name                 string        `json:"name"`
	MobileNumber         string        `json:"mobile_number"`
	Purpose              string        `json:"purpose"`
	ApartmentID          int64         `json:"apartment_id"`
	VehicleNumber        string        `json:"vehicle_number,omitempty"`
	EntryTime            time.Time     `json:"entry_time"`
	ExitTime             *time.Time    `json:"exit_time,omitempty"`
	Status               VisitorStatus `json:"status"`
	CreatedBy            int64         `json:"created_by"`
	CheckedOutBy         *int64        `json:"checked_out_by,omitempty"`
	PreApprovedVisitorID *int64        `json:"pre_approved_visitor_id,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}
