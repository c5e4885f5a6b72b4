package domain

// Transition tables for the three lifecycles. Anything not listed is refused.

type BookingEvent string

const (
	BookingApprove BookingEvent = "approve"
	BookingReject  BookingEvent = "reject"
)

type bookingTransition struct {
	From  BookingStatus
	Event BookingEvent
	To    BookingStatus
}

var bookingTransitions = []bookingTransition{
	{From: BookingPending, Event: BookingApprove, To: BookingApproved},
	{From: BookingPending, Event: BookingReject, To: BookingRejected},
}

func NextBookingStatus(from BookingStatus, ev BookingEvent) (BookingStatus, error) {
	for _, tr := range bookingTransitions {
		if tr.From == from && tr.Event == ev {
			return tr.To, nil
		}
	}
	return from, &TransitionError{Entity: "booking", From: string(from), Event: string(ev)}
}

type PreApprovalEvent string

const (
	PreApprovalArrive   PreApprovalEvent = "arrive"
	PreApprovalCancel   PreApprovalEvent = "cancel"
	PreApprovalExpire   PreApprovalEvent = "expire"
	PreApprovalComplete PreApprovalEvent = "complete"
)

type preApprovalTransition struct {
	From  PreApprovalStatus
	Event PreApprovalEvent
	To    PreApprovalStatus
}

var preApprovalTransitions = []preApprovalTransition{
	{From: PreApprovalPending, Event: PreApprovalArrive, To: PreApprovalArrived},
	{From: PreApprovalPending, Event: PreApprovalCancel, To: PreApprovalCancelled},
	{From: PreApprovalPending, Event: PreApprovalExpire, To: PreApprovalExpired},
	{From: PreApprovalArrived, Event: PreApprovalComplete, To: PreApprovalCompleted},
}

func NextPreApprovalStatus(from PreApprovalStatus, ev PreApprovalEvent) (PreApprovalStatus, error) {
	for _, tr := range preApprovalTransitions {
		if tr.From == from && tr.Event == ev {
			return tr.To, nil
		}
	}
	return from, &TransitionError{Entity: "pre-approval", From: string(from), Event: string(ev)}
}

type VisitorEvent string

const VisitorCheckout VisitorEvent = "checkout"

func NextVisitorStatus(from VisitorStatus, ev VisitorEvent) (VisitorStatus, error) {
	if from == VisitorInside && ev == VisitorCheckout {
		return VisitorCheckedOut, nil
	}
	return from, &TransitionError{Entity: "visitor", From: string(from), Event: string(ev)}
}
