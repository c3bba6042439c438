package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
)

type ReconciliationJobs struct {
	reconciliationSvc reconciliation.ReconciliationService
	calendar          calendar.Reference
	hour              int
}

// NewReconciliationJobs builds the daily reconciliation job. hour is the
// local hour at which the current work date is reconciled.
func NewReconciliationJobs(
	reconciliationSvc reconciliation.ReconciliationService,
	cal calendar.Reference,
	hour int,
) *ReconciliationJobs {
	return &ReconciliationJobs{
		reconciliationSvc: reconciliationSvc,
		calendar:          cal,
		hour:              hour,
	}
}

func (j *ReconciliationJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("reconcile_attendance", interval, j.ReconcileAttendance)
}

// ReconcileAttendance runs every tick. In hour 0 it reconciles yesterday in
// full; in every other hour it closes out yesterday's records that are still
// open, so overtime ending later in the night is picked up by the first tick
// after its end. At the configured hour it also reconciles today.
func (j *ReconciliationJobs) ReconcileAttendance(ctx context.Context) error {
	now := j.calendar.Now()
	today := calendar.DateOf(now, j.calendar.Location())
	yesterday := today.AddDate(0, 0, -1)

	var errs []error
	if now.Hour() == 0 {
		if err := j.reconcile(ctx, yesterday); err != nil {
			errs = append(errs, err)
		}
	} else if err := j.closeOut(ctx, yesterday); err != nil {
		errs = append(errs, err)
	}

	if now.Hour() == j.hour {
		if err := j.reconcile(ctx, today); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (j *ReconciliationJobs) closeOut(ctx context.Context, date time.Time) error {
	resp, err := j.reconciliationSvc.CloseOut(ctx, reconciliation.ReconcileRequest{Date: calendar.FormatDate(date)})
	if err != nil {
		return fmt.Errorf("close out %s: %w", calendar.FormatDate(date), err)
	}
	if resp.AutoCheckoutCount > 0 {
		slog.Info("Cron: Closed out overnight attendance", "date", resp.Date, "auto_checkout_count", resp.AutoCheckoutCount)
	}
	return nil
}

func (j *ReconciliationJobs) reconcile(ctx context.Context, date time.Time) error {
	slog.Info("Cron: Starting attendance reconciliation", "date", calendar.FormatDate(date))

	resp, err := j.reconciliationSvc.Reconcile(ctx, reconciliation.ReconcileRequest{Date: calendar.FormatDate(date)})
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", calendar.FormatDate(date), err)
	}

	slog.Info("Cron: Attendance reconciled",
		"date", resp.Date,
		"auto_checkout_count", resp.AutoCheckoutCount,
		"added_count", resp.AddedCount,
		"off_day", resp.OffDay,
		"failures", len(resp.Failures),
	)
	return nil
}
