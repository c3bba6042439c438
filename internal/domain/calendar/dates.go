package calendar

import "time"

const DateLayout = "2006-01-02"

// DateOf returns the civil date of t in loc as a UTC midnight value. Work
// dates are always carried in this form so they compare and persist cleanly.
func DateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MonthRange returns the first and last civil dates of a month.
func MonthRange(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// PreviousMonth returns the month/year immediately before the given period.
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
