package calendar

import "time"

type Shift struct {
	ID        string
	StartTime TimeOfDay
	EndTime   TimeOfDay
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window is a concrete half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowOn returns the shift's instants on the given civil date.
func (s Shift) WindowOn(date time.Time, loc *time.Location) Window {
	return Window{Start: s.StartTime.On(date, loc), End: s.EndTime.On(date, loc)}
}

type Holiday struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsAnnual  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether date falls inside the holiday's inclusive range.
// Annual holidays repeat on the same month/day span every year from the
// year of StartDate on, including spans that wrap across New Year.
func (h Holiday) Covers(date time.Time) bool {
	if !h.IsAnnual {
		return !date.Before(h.StartDate) && !date.After(h.EndDate)
	}

	span := int(h.EndDate.Sub(h.StartDate).Hours() / 24)
	for _, year := range []int{date.Year() - 1, date.Year()} {
		if year < h.StartDate.Year() {
			continue
		}
		start := time.Date(year, h.StartDate.Month(), h.StartDate.Day(), 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, span)
		if !date.Before(start) && !date.After(end) {
			return true
		}
	}
	return false
}

type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

func (d DayType) IsValid() bool {
	switch d {
	case DayTypeWeekday, DayTypeWeekend, DayTypeHoliday:
		return true
	}
	return false
}
