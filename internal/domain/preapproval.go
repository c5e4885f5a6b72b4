package domain

import "time"

type PreApprovalStatus string

const (
	PreApprovalPending   PreApprovalStatus = "pending"
	PreApprovalArrived   PreApprovalStatus = "arrived"
	PreApprovalExpired   PreApprovalStatus = "expired"
	PreApprovalCancelled PreApprovalStatus = "cancelled"
	PreApprovalCompleted PreApprovalStatus = "completed"
)

func (s PreApprovalStatus) Valid() bool {
	switch s {
	case PreApprovalPending, PreApprovalArrived, PreApprovalExpired, PreApprovalCancelled, PreApprovalCompleted:
		return true
	}
	return false
}

// DateLayout is the calendar-date format used for expected visit dates.
const DateLayout = "2006-01-02"

type PreApprovedVisitor struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	MobileNumber     string            `json:"mobile_number,omitempty"`
	Purpose          string            `json:"purpose"`
	ApartmentID      int64             `json:"apartment_id"`
	ExpectedDate     string            `json:"expected_date"`
	ExpectedTimeFrom string            `json:"expected_time_from,omitempty"`
	ExpectedTimeTo   string            `json:"expected_time_to,omitempty"`
	NumberOfPersons  int               `json:"number_of_persons"`
	Status           PreApprovalStatus `json:"status"`
	CreatedBy        int64             `json:"created_by"`
	Notes            string            `json:"notes,omitempty"`
	ArrivedAt        *time.Time        `json:"arrived_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// EffectiveStatus derives the status a reader should observe: a pending
// pre-approval whose expected date is strictly before today is expired,
// whether or not that has been written back yet. today is a DateLayout date.
func EffectiveStatus(p PreApprovedVisitor, today string) PreApprovalStatus {
	if p.Status == PreApprovalPending && p.ExpectedDate < today {
		return PreApprovalExpired
	}
	return p.Status
}
