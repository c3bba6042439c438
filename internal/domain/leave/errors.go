package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrLeaveRequestNotPending       = errors.New("only pending leave requests can be deleted")
	ErrInvalidLeaveRange            = errors.New("leave end date must not be before start date")
)
