package preapproval

import "societyhub/internal/domain"

type CreatePreApprovalRequest struct {
	Name             string `json:"name" binding:"required"`
	MobileNumber     string `json:"mobile_number"`
	Purpose          string `json:"purpose" binding:"required"`
	ApartmentID      int64  `json:"apartment_id"`
	ExpectedDate     string `json:"expected_date" binding:"required"`
	ExpectedTimeFrom string `json:"expected_time_from"`
	ExpectedTimeTo   string `json:"expected_time_to"`
	NumberOfPersons  *int   `json:"number_of_persons"`
	Notes            string `json:"notes"`
}

// CreateInput is the service-level request. ApartmentID zero means the
// actor's own apartment.
type CreateInput struct {
	Name             string `validate:"required,max=120"`
	MobileNumber     string `validate:"omitempty,max=20"`
	Purpose          string `validate:"required,max=200"`
	ApartmentID      int64  `validate:"gte=0"`
	ExpectedDate     string `validate:"required,datetime=2006-01-02"`
	ExpectedTimeFrom string `validate:"omitempty,datetime=15:04"`
	ExpectedTimeTo   string `validate:"omitempty,datetime=15:04"`
	NumberOfPersons  int    `validate:"gte=1"`
	Notes            string `validate:"max=500"`
}

func (r CreatePreApprovalRequest) Input() CreateInput {
	persons := 1
	if r.NumberOfPersons != nil {
		persons = *r.NumberOfPersons
	}
	return CreateInput{
		Name:             r.Name,
		MobileNumber:     r.MobileNumber,
		Purpose:          r.Purpose,
		ApartmentID:      r.ApartmentID,
		ExpectedDate:     r.ExpectedDate,
		ExpectedTimeFrom: r.ExpectedTimeFrom,
		ExpectedTimeTo:   r.ExpectedTimeTo,
		NumberOfPersons:  persons,
		Notes:            r.Notes,
	}
}

type ListFilter struct {
	Status      domain.PreApprovalStatus
	Date        string
	ApartmentID int64
	Limit       int
	Offset      int
}

// Arrival is the outcome of MarkArrived.
type Arrival struct {
	PreApproval *domain.PreApprovedVisitor `json:"pre_approval"`
	Visitor     *domain.Visitor            `json:"visitor"`
}
