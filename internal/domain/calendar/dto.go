package calendar

import (
	"strings"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type UpdateShiftRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidTimeOfDay(r.StartTime) {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	if !validator.IsValidTimeOfDay(r.EndTime) {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if len(errs) == 0 {
		start, _ := ParseTimeOfDay(r.StartTime)
		end, _ := ParseTimeOfDay(r.EndTime)
		if !start.Before(end) {
			errs.Add("end_time", "end_time must be after start_time")
		}
	}

	return errs.Err()
}

type ShiftResponse struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	UpdatedAt string `json:"updated_at"`
}

type CreateHolidayRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsAnnual  bool   `json:"is_annual"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(strings.TrimSpace(r.Name)) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

type HolidayFilter struct {
	Year *int
}

type HolidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsAnnual  bool   `json:"is_annual"`
}
