package attendance

import (
	"time"
)

type Status string

const (
	StatusOnTime           Status = "ON_TIME"
	StatusLate             Status = "LATE"
	StatusFull             Status = "FULL"
	StatusNotFull          Status = "NOT_FULL"
	StatusAbsent           Status = "ABSENT"
	StatusAbsentPermission Status = "ABSENT_PERMISSION"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOnTime, StatusLate, StatusFull, StatusNotFull, StatusAbsent, StatusAbsentPermission:
		return true
	}
	return false
}

// IsAbsence reports whether the status marks a day without attendance.
func (s Status) IsAbsence() bool {
	return s == StatusAbsent || s == StatusAbsentPermission
}

// Label is the human readable form shown by clients.
func (s Status) Label() string {
	switch s {
	case StatusOnTime:
		return "On time"
	case StatusLate:
		return "Late"
	case StatusFull:
		return "Full day"
	case StatusNotFull:
		return "Incomplete day"
	case StatusAbsent:
		return "Absent"
	case StatusAbsentPermission:
		return "Absent (approved leave)"
	}
	return string(s)
}

// State is the scan state machine position of a record.
type State int

const (
	StateNoRecord State = iota
	StateCheckedIn
	StateCheckedOut
)

type Record struct {
	ID                string
	EmployeeID        string
	WorkDate          time.Time
	CheckInTime       *time.Time
	CheckOutTime      *time.Time
	LateMinutes       int
	EarlyLeaveMinutes int
	Status            Status
	AutoClosed        bool
	Note              *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	EmployeeCode *string
	EmployeeName *string
}

// State treats a seeded absence (no check-in) like a missing record so the
// employee can still check in.
func (r *Record) State() State {
	switch {
	case r == nil || r.CheckInTime == nil:
		return StateNoRecord
	case r.CheckOutTime == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}
