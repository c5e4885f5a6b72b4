package visitor

type LogEntryRequest struct {
	Name          string `json:"name" binding:"required"`
	MobileNumber  string `json:"mobile_number" binding:"required"`
	Purpose       string `json:"purpose" binding:"required"`
	ApartmentID   int64  `json:"apartment_id" binding:"required"`
	VehicleNumber string `json:"vehicle_number"`
}

type LogEntryInput struct {
	Name          string `validate:"required,max=120"`
	MobileNumber  string `validate:"required,max=20"`
	Purpose       string `validate:"required,max=200"`
	ApartmentID   int64  `validate:"required,gt=0"`
	VehicleNumber string `validate:"max=20"`
}

func (r LogEntryRequest) Input() LogEntryInput {
	return LogEntryInput(r)
}

type Stats struct {
	Inside          int64  `json:"inside"`
	TodayTotal      int64  `json:"today_total"`
	CheckedOutToday int64  `json:"checked_out_today"`
	Date            string `json:"date"`
}
