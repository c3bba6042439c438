package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type CalendarServiceImpl struct {
	calendar.ShiftRepository
	calendar.HolidayRepository
	loc   *time.Location
	clock func() time.Time
}

// NewCalendarService builds the calendar reference. A nil clock uses time.Now.
func NewCalendarService(
	shiftRepo calendar.ShiftRepository,
	holidayRepo calendar.HolidayRepository,
	loc *time.Location,
	clock func() time.Time,
) calendar.CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	return &CalendarServiceImpl{
		ShiftRepository:   shiftRepo,
		HolidayRepository: holidayRepo,
		loc:               loc,
		clock:             clock,
	}
}

// Location implements calendar.Reference.
func (s *CalendarServiceImpl) Location() *time.Location {
	return s.loc
}

// Now implements calendar.Reference.
func (s *CalendarServiceImpl) Now() time.Time {
	return s.clock().In(s.loc)
}

// ShiftWindow implements calendar.Reference.
func (s *CalendarServiceImpl) ShiftWindow(ctx context.Context) (calendar.Shift, error) {
	shift, err := s.ShiftRepository.Get(ctx)
	if err != nil {
		return calendar.Shift{}, err
	}
	if shift == nil {
		return calendar.Shift{}, calendar.ErrShiftNotConfigured
	}
	return *shift, nil
}

// HolidayCovering implements calendar.Reference.
func (s *CalendarServiceImpl) HolidayCovering(ctx context.Context, date time.Time) (*calendar.Holiday, error) {
	candidates, err := s.HolidayRepository.ListCandidates(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	for _, h := range candidates {
		if h.Covers(date) {
			return &h, nil
		}
	}
	return nil, nil
}

// IsWorkingDay implements calendar.Reference.
func (s *CalendarServiceImpl) IsWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	dayType, err := s.DayTypeOf(ctx, date)
	if err != nil {
		return false, err
	}
	return dayType == calendar.DayTypeWeekday, nil
}

// DayTypeOf implements calendar.Reference. A holiday on a weekend counts as a holiday.
func (s *CalendarServiceImpl) DayTypeOf(ctx context.Context, date time.Time) (calendar.DayType, error) {
	holiday, err := s.HolidayCovering(ctx, date)
	if err != nil {
		return "", err
	}
	if holiday != nil {
		return calendar.DayTypeHoliday, nil
	}
	if calendar.IsWeekend(date) {
		return calendar.DayTypeWeekend, nil
	}
	return calendar.DayTypeWeekday, nil
}

// GetShift implements calendar.CalendarService.
func (s *CalendarServiceImpl) GetShift(ctx context.Context) (calendar.ShiftResponse, error) {
	shift, err := s.ShiftWindow(ctx)
	if err != nil {
		return calendar.ShiftResponse{}, err
	}
	return mapShiftToResponse(shift), nil
}

// UpdateShift implements calendar.CalendarService. The single shift row is
// created on first use and updated afterwards.
func (s *CalendarServiceImpl) UpdateShift(ctx context.Context, req calendar.UpdateShiftRequest) (calendar.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.ShiftResponse{}, err
	}

	start := calendar.MustParseTimeOfDay(req.StartTime)
	end := calendar.MustParseTimeOfDay(req.EndTime)

	existing, err := s.ShiftRepository.Get(ctx)
	if err != nil {
		return calendar.ShiftResponse{}, err
	}

	if existing == nil {
		created, err := s.ShiftRepository.Create(ctx, calendar.Shift{StartTime: start, EndTime: end})
		if err == nil {
			slog.Info("Work shift configured", "start", start.String(), "end", end.String())
			return mapShiftToResponse(created), nil
		}
		if !errors.Is(err, calendar.ErrShiftAlreadyExists) {
			return calendar.ShiftResponse{}, err
		}
		// Lost a race with a concurrent create; update the row that won.
		if existing, err = s.ShiftRepository.Get(ctx); err != nil {
			return calendar.ShiftResponse{}, err
		}
		if existing == nil {
			return calendar.ShiftResponse{}, calendar.ErrShiftNotConfigured
		}
	}

	existing.StartTime = start
	existing.EndTime = end
	updated, err := s.ShiftRepository.Update(ctx, *existing)
	if err != nil {
		return calendar.ShiftResponse{}, err
	}

	slog.Info("Work shift updated", "start", start.String(), "end", end.String())
	return mapShiftToResponse(updated), nil
}

// CreateHoliday implements calendar.CalendarService.
func (s *CalendarServiceImpl) CreateHoliday(ctx context.Context, req calendar.CreateHolidayRequest) (calendar.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.HolidayResponse{}, err
	}

	start, _ := validator.ParseDate(req.StartDate)
	end, _ := validator.ParseDate(req.EndDate)

	created, err := s.HolidayRepository.Create(ctx, calendar.Holiday{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		IsAnnual:  req.IsAnnual,
	})
	if err != nil {
		return calendar.HolidayResponse{}, err
	}
	return mapHolidayToResponse(created), nil
}

// ListHolidays implements calendar.CalendarService.
func (s *CalendarServiceImpl) ListHolidays(ctx context.Context, filter calendar.HolidayFilter) ([]calendar.HolidayResponse, error) {
	holidays, err := s.HolidayRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]calendar.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, mapHolidayToResponse(h))
	}
	return responses, nil
}

// DeleteHoliday implements calendar.CalendarService.
func (s *CalendarServiceImpl) DeleteHoliday(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return calendar.ErrHolidayNotFound
	}
	return s.HolidayRepository.Delete(ctx, id)
}

func mapShiftToResponse(s calendar.Shift) calendar.ShiftResponse {
	return calendar.ShiftResponse{
		ID:        s.ID,
		StartTime: s.StartTime.String(),
		EndTime:   s.EndTime.String(),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

func mapHolidayToResponse(h calendar.Holiday) calendar.HolidayResponse {
	return calendar.HolidayResponse{
		ID:        h.ID,
		Name:      h.Name,
		StartDate: calendar.FormatDate(h.StartDate),
		EndDate:   calendar.FormatDate(h.EndDate),
		IsAnnual:  h.IsAnnual,
	}
}
