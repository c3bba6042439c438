package attendance

import "time"

// StatusInput carries everything the stored status depends on.
type StatusInput struct {
	CheckInTime       *time.Time
	CheckOutTime      *time.Time
	LateMinutes       int
	EarlyLeaveMinutes int
	OnApprovedLeave   bool
	AutoClosed        bool
}

// DeriveStatus is the only place a record's status is computed.
//
//	no check-in          -> ABSENT_PERMISSION with approved leave, else ABSENT
//	checked in only      -> LATE when late, else ON_TIME
//	auto-closed          -> LATE when late, else FULL
//	checked in and out   -> FULL with no late or early minutes, else NOT_FULL
func DeriveStatus(in StatusInput) Status {
	if in.CheckInTime == nil {
		if in.OnApprovedLeave {
			return StatusAbsentPermission
		}
		return StatusAbsent
	}

	if in.CheckOutTime == nil || in.AutoClosed {
		if in.LateMinutes > 0 {
			return StatusLate
		}
		if in.CheckOutTime == nil {
			return StatusOnTime
		}
		return StatusFull
	}

	if in.LateMinutes > 0 || in.EarlyLeaveMinutes > 0 {
		return StatusNotFull
	}
	return StatusFull
}

// LateMinutes is the whole minutes between shiftStart and a later scan.
func LateMinutes(scan, shiftStart time.Time) int {
	return wholeMinutes(scan.Sub(shiftStart))
}

// EarlyLeaveMinutes is the whole minutes between an earlier scan and shiftEnd.
func EarlyLeaveMinutes(scan, shiftEnd time.Time) int {
	return wholeMinutes(shiftEnd.Sub(scan))
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
