package overtime

import "errors"

var (
	ErrRequestNotFound            = errors.New("overtime request not found")
	ErrOverlapViolation           = errors.New("overtime window overlaps the work shift")
	ErrRequestAlreadyProcessed    = errors.New("overtime request has already been processed")
	ErrActiveRequestExists        = errors.New("employee already has an overtime request for this date")
	ErrOvertimeRequestNotApproved = errors.New("overtime request for today has not been approved")
	ErrOvertimeLateRejected       = errors.New("check-in is after the overtime end; the overtime request was rejected")
	ErrInvalidTimeRange           = errors.New("overtime start and end must differ")
)
