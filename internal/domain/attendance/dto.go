package attendance

import (
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type Action string

const (
	ActionCheckIn  Action = "CHECK_IN"
	ActionCheckOut Action = "CHECK_OUT"
)

type ScanRequest struct {
	Token string `json:"token"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	} else if len(r.Token) > 1024 {
		errs.Add("token", "token must not exceed 1024 characters")
	}

	return errs.Err()
}

type ScanResponse struct {
	Success      bool   `json:"success"`
	EmployeeName string `json:"employee_name"`
	Message      string `json:"message"`
	Action       Action `json:"action"`
}

type IssueTokenRequest struct {
	EmployeeID string `json:"employee_id"`
}

func (r *IssueTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	return errs.Err()
}

type IssueTokenResponse struct {
	Token     string `json:"token"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}

type DailyFilter struct {
	Date string
}

func (f *DailyFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != "" {
		if _, ok := validator.IsValidDate(f.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

// CorrectionRequest edits a record by hand. Times are "HH:MM" on the record's
// work date; an empty string clears the time.
type CorrectionRequest struct {
	ID           string  `json:"-"`
	Status       *string `json:"status,omitempty"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
	Note         *string `json:"note,omitempty"`
}

func (r *CorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.Status != nil && !Status(*r.Status).IsValid() {
		errs.Add("status", "status is not a valid attendance status")
	}
	if r.CheckInTime != nil && *r.CheckInTime != "" && !validator.IsValidTimeOfDay(*r.CheckInTime) {
		errs.Add("check_in_time", "check_in_time must be in HH:MM format")
	}
	if r.CheckOutTime != nil && *r.CheckOutTime != "" && !validator.IsValidTimeOfDay(*r.CheckOutTime) {
		errs.Add("check_out_time", "check_out_time must be in HH:MM format")
	}
	if r.Note != nil && len(*r.Note) > 1000 {
		errs.Add("note", "note must not exceed 1000 characters")
	}
	if r.Status == nil && r.CheckInTime == nil && r.CheckOutTime == nil && r.Note == nil {
		errs.Add("body", "at least one field must be provided")
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID                string  `json:"id"`
	EmployeeID        string  `json:"employee_id"`
	EmployeeCode      *string `json:"employee_code,omitempty"`
	EmployeeName      *string `json:"employee_name,omitempty"`
	WorkDate          string  `json:"work_date"`
	CheckInTime       *string `json:"check_in_time"`
	CheckOutTime      *string `json:"check_out_time"`
	LateMinutes       int     `json:"late_minutes"`
	EarlyLeaveMinutes int     `json:"early_leave_minutes"`
	Status            string  `json:"status"`
	StatusLabel       string  `json:"status_label"`
	AutoClosed        bool    `json:"auto_closed"`
	Note              *string `json:"note,omitempty"`
}
