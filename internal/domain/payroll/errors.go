package payroll

import "errors"

var (
	ErrSalaryRecordNotFound    = errors.New("salary record not found")
	ErrSalaryRecordPaid        = errors.New("salary record already paid, cannot modify")
	ErrInvalidPeriod           = errors.New("invalid payroll period")
	ErrInvalidConfiguration    = errors.New("invalid payroll configuration")
	ErrSalaryPeriodMissing     = errors.New("no salary record exists for the preceding month")
	ErrAdvanceLimitExceeded    = errors.New("advance exceeds the allowed share of last month's net salary")
	ErrAdvanceNotFound         = errors.New("advance request not found")
	ErrAdvanceAlreadyProcessed = errors.New("advance request already processed")
	ErrAdvanceApproved         = errors.New("approved advance requests cannot be deleted")
	ErrAdvanceDateInPast       = errors.New("advance date must not be in the past")
)
