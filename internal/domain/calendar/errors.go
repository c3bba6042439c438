package calendar

import "errors"

var (
	ErrShiftNotConfigured  = errors.New("work shift is not configured")
	ErrShiftAlreadyExists  = errors.New("a work shift already exists")
	ErrInvalidShiftWindow  = errors.New("shift start time must be before end time")
	ErrHolidayNotFound     = errors.New("holiday not found")
	ErrInvalidHolidayRange = errors.New("holiday start date must not be after end date")
)
