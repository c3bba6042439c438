package overtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type OvertimeServiceImpl struct {
	tx database.Transactor
	overtime.OvertimeRepository
	employee.EmployeeRepository
	calendar calendar.Reference
}

func NewOvertimeService(
	tx database.Transactor,
	overtimeRepo overtime.OvertimeRepository,
	employeeRepo employee.EmployeeRepository,
	cal calendar.Reference,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		tx:                 tx,
		OvertimeRepository: overtimeRepo,
		EmployeeRepository: employeeRepo,
		calendar:           cal,
	}
}

// Create implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Create(ctx context.Context, req overtime.CreateOvertimeRequest) (overtime.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	if _, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	date, _ := validator.ParseDate(req.Date)
	iv := overtime.BuildInterval(date, calendar.MustParseTimeOfDay(req.StartTime), calendar.MustParseTimeOfDay(req.EndTime), s.calendar.Location())

	var created overtime.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkShiftOverlap(ctx, date, iv); err != nil {
			return err
		}

		existing, err := s.OvertimeRepository.GetActiveByEmployeeAndDate(ctx, req.EmployeeID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return overtime.ErrActiveRequestExists
		}

		created, err = s.OvertimeRepository.Create(ctx, overtime.Request{
			EmployeeID:  req.EmployeeID,
			Date:        date,
			StartTime:   iv.Start,
			EndTime:     iv.End,
			Hours:       overtime.Hours(iv.Start, iv.End),
			Status:      overtime.StatusPending,
			WorkContent: req.WorkContent,
			Amount:      decimal.Zero,
		})
		return err
	})
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	return s.mapToResponse(created), nil
}

// Update implements overtime.OvertimeService. Only pending requests can change.
func (s *OvertimeServiceImpl) Update(ctx context.Context, req overtime.UpdateOvertimeRequest) (overtime.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	loc := s.calendar.Location()

	var updated overtime.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.OvertimeRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if current.Status != overtime.StatusPending {
			return overtime.ErrRequestAlreadyProcessed
		}

		date := current.Date
		if req.Date != nil {
			date, _ = validator.ParseDate(*req.Date)
		}
		start := calendar.TimeOfDayOf(current.StartTime, loc)
		if req.StartTime != nil {
			start = calendar.MustParseTimeOfDay(*req.StartTime)
		}
		end := calendar.TimeOfDayOf(current.EndTime, loc)
		if req.EndTime != nil {
			end = calendar.MustParseTimeOfDay(*req.EndTime)
		}
		if start == end {
			return overtime.ErrInvalidTimeRange
		}

		iv := overtime.BuildInterval(date, start, end, loc)
		if err := s.checkShiftOverlap(ctx, date, iv); err != nil {
			return err
		}

		if !date.Equal(current.Date) {
			existing, err := s.OvertimeRepository.GetActiveByEmployeeAndDate(ctx, current.EmployeeID, date)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != current.ID {
				return overtime.ErrActiveRequestExists
			}
		}

		current.Date = date
		current.StartTime = iv.Start
		current.EndTime = iv.End
		current.Hours = overtime.Hours(iv.Start, iv.End)
		if req.WorkContent != nil {
			current.WorkContent = req.WorkContent
		}

		if err := s.OvertimeRepository.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	return s.mapToResponse(updated), nil
}

// Review implements overtime.OvertimeService. Approval re-checks the shift
// overlap because the shift or holidays may have changed since submission.
func (s *OvertimeServiceImpl) Review(ctx context.Context, req overtime.ReviewOvertimeRequest) (overtime.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	next := overtime.Status(req.Status)

	var reviewed overtime.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.OvertimeRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if !current.CanTransitionTo(next) {
			return overtime.ErrRequestAlreadyProcessed
		}

		if next == overtime.StatusApproved {
			if err := s.checkShiftOverlap(ctx, current.Date, current.Interval()); err != nil {
				return err
			}
		}

		now := s.calendar.Now()
		current.Status = next
		current.ReviewedAt = &now
		if err := s.OvertimeRepository.Update(ctx, current); err != nil {
			return err
		}
		reviewed = current
		return nil
	})
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	slog.Info("Overtime request reviewed", "id", reviewed.ID, "employee_id", reviewed.EmployeeID, "status", reviewed.Status)
	return s.mapToResponse(reviewed), nil
}

// Delete implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return overtime.ErrRequestNotFound
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.OvertimeRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != overtime.StatusPending {
			return overtime.ErrRequestAlreadyProcessed
		}
		return s.OvertimeRepository.Delete(ctx, id)
	})
}

// GetByID implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) GetByID(ctx context.Context, id string) (overtime.OvertimeResponse, error) {
	if !validator.IsValidUUID(id) {
		return overtime.OvertimeResponse{}, overtime.ErrRequestNotFound
	}

	req, err := s.OvertimeRepository.GetByID(ctx, id)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	return s.mapToResponse(req), nil
}

// List implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) List(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	if err := filter.Validate(); err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	requests, total, err := s.OvertimeRepository.List(ctx, filter)
	if err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	responses := make([]overtime.OvertimeResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, s.mapToResponse(r))
	}

	return overtime.ListOvertimeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}

// checkShiftOverlap rejects windows that intersect the shift on a working
// day. A window running past midnight is also checked against the next
// day's shift.
func (s *OvertimeServiceImpl) checkShiftOverlap(ctx context.Context, date time.Time, iv overtime.Interval) error {
	loc := s.calendar.Location()

	days := []time.Time{date}
	if calendar.DateOf(iv.End, loc).After(date) {
		days = append(days, date.AddDate(0, 0, 1))
	}

	for _, day := range days {
		working, err := s.calendar.IsWorkingDay(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to resolve working day: %w", err)
		}
		if !working {
			continue
		}

		shift, err := s.calendar.ShiftWindow(ctx)
		if errors.Is(err, calendar.ErrShiftNotConfigured) {
			return nil
		}
		if err != nil {
			return err
		}

		w := shift.WindowOn(day, loc)
		if overtime.Overlaps(iv, overtime.Interval{Start: w.Start, End: w.End}) {
			return overtime.ErrOverlapViolation
		}
	}
	return nil
}

func (s *OvertimeServiceImpl) mapToResponse(r overtime.Request) overtime.OvertimeResponse {
	loc := s.calendar.Location()

	resp := overtime.OvertimeResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Date:         calendar.FormatDate(r.Date),
		StartTime:    r.StartTime.In(loc).Format(time.RFC3339),
		EndTime:      r.EndTime.In(loc).Format(time.RFC3339),
		Hours:        r.Hours.StringFixed(2),
		Status:       string(r.Status),
		WorkContent:  r.WorkContent,
		Amount:       r.Amount.StringFixed(2),
	}
	if r.ReviewedAt != nil {
		reviewed := r.ReviewedAt.In(loc).Format(time.RFC3339)
		resp.ReviewedAt = &reviewed
	}
	return resp
}
