package overtime

import (
	"strings"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type CreateOvertimeRequest struct {
	EmployeeID  string  `json:"employee_id"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	WorkContent *string `json:"work_content,omitempty"`
}

func (r *CreateOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	validateWindow(&errs, r.StartTime, r.EndTime)
	if r.WorkContent != nil && len(*r.WorkContent) > 2000 {
		errs.Add("work_content", "work_content must not exceed 2000 characters")
	}

	return errs.Err()
}

type UpdateOvertimeRequest struct {
	ID          string  `json:"-"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	WorkContent *string `json:"work_content,omitempty"`
}

func (r *UpdateOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}
	if r.StartTime != nil && !validator.IsValidTimeOfDay(*r.StartTime) {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	if r.EndTime != nil && !validator.IsValidTimeOfDay(*r.EndTime) {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if r.WorkContent != nil && len(*r.WorkContent) > 2000 {
		errs.Add("work_content", "work_content must not exceed 2000 characters")
	}

	return errs.Err()
}

type ReviewOvertimeRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *ReviewOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if s := Status(r.Status); s != StatusApproved && s != StatusRejected {
		errs.Add("status", "status must be approved or rejected")
	}

	return errs.Err()
}

type OvertimeFilter struct {
	EmployeeID *string
	Status     *string
	DateFrom   *string
	DateTo     *string
	Page       int
	Limit      int
}

func (f *OvertimeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "status must be pending, approved or rejected")
	}
	if f.DateFrom != nil {
		if _, ok := validator.IsValidDate(*f.DateFrom); !ok {
			errs.Add("date_from", "date_from must be in YYYY-MM-DD format")
		}
	}
	if f.DateTo != nil {
		if _, ok := validator.IsValidDate(*f.DateTo); !ok {
			errs.Add("date_to", "date_to must be in YYYY-MM-DD format")
		}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	return errs.Err()
}

type OvertimeResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Hours        string  `json:"hours"`
	Status       string  `json:"status"`
	WorkContent  *string `json:"work_content,omitempty"`
	Amount       string  `json:"amount"`
	ReviewedAt   *string `json:"reviewed_at,omitempty"`
}

type ListOvertimeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Requests   []OvertimeResponse `json:"requests"`
}

func validateWindow(errs *validator.ValidationErrors, start, end string) {
	okStart := validator.IsValidTimeOfDay(start)
	okEnd := validator.IsValidTimeOfDay(end)
	if !okStart {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	if !okEnd {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if okStart && okEnd && strings.TrimSpace(start) == strings.TrimSpace(end) {
		errs.Add("end_time", "end_time must differ from start_time")
	}
}
