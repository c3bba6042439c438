package overtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/shopspring/decimal"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses the half-open rule a.Start < b.End && a.End > b.Start, which
// is symmetric in its operands.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// BuildInterval places start/end on date in loc. An end before the start
// means the window runs past midnight into the next day.
func BuildInterval(date time.Time, start, end calendar.TimeOfDay, loc *time.Location) Interval {
	iv := Interval{Start: start.On(date, loc), End: end.On(date, loc)}
	if end.Before(start) {
		iv.End = end.On(date.AddDate(0, 0, 1), loc)
	}
	return iv
}

var hoursPerMillisecond = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

// Hours returns end-start in hours rounded to two decimals, never negative.
func Hours(start, end time.Time) decimal.Decimal {
	d := end.Sub(start)
	if d <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(d.Milliseconds()).Div(hoursPerMillisecond).Round(2)
}

type Adjustment string

const (
	AdjustmentNone         Adjustment = "none"
	AdjustmentStartPulled  Adjustment = "start_pulled"
	AdjustmentEndPulled    Adjustment = "end_pulled"
	AdjustmentLateRejected Adjustment = "late_rejected"
)

// ReconcileCheckIn applies an actual check-in at `at` to an approved request.
// A check-in after the planned end rejects the request and appends an audit
// note; a check-in after the planned start moves the start forward. The
// window is never extended.
func ReconcileCheckIn(req Request, at time.Time, loc *time.Location) (Request, Adjustment) {
	if req.Status != StatusApproved {
		return req, AdjustmentNone
	}

	if at.After(req.EndTime) {
		note := fmt.Sprintf("[Auto-rejected: checked in at %s, after overtime end %s]",
			at.In(loc).Format("15:04:05"), req.EndTime.In(loc).Format("15:04"))
		req.WorkContent = appendNote(req.WorkContent, note)
		req.Status = StatusRejected
		return req, AdjustmentLateRejected
	}

	if at.After(req.StartTime) {
		req.StartTime = at
		req.Hours = Hours(req.StartTime, req.EndTime)
		return req, AdjustmentStartPulled
	}

	return req, AdjustmentNone
}

// ReconcileCheckOut applies an actual check-out at `at`. The end is pulled
// back when the employee leaves before the planned end, but never before the
// start.
func ReconcileCheckOut(req Request, at time.Time) (Request, Adjustment) {
	if req.Status != StatusApproved || !at.Before(req.EndTime) {
		return req, AdjustmentNone
	}

	end := at
	if end.Before(req.StartTime) {
		end = req.StartTime
	}
	req.EndTime = end
	req.Hours = Hours(req.StartTime, req.EndTime)
	return req, AdjustmentEndPulled
}

func appendNote(content *string, note string) *string {
	var s string
	if content != nil {
		s = strings.TrimSpace(*content)
	}
	if s != "" {
		s += " "
	}
	s += note
	return &s
}
