package attendance

import "errors"

// Attendance domain errors
var (
	// Scan errors
	ErrTokenInvalid     = errors.New("scan token is invalid")
	ErrTokenExpired     = errors.New("scan token has expired, please refresh the code")
	ErrOffDayNoOvertime = errors.New("today is a day off and there is no approved overtime")
	ErrAlreadyCompleted = errors.New("attendance for today is already complete")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidCorrection  = errors.New("check-out time must not be before check-in time")
)
