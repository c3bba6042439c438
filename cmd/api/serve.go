package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appHTTP "github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/logger"
	"github.com/spf13/cobra"
)

const version = "v1.0.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the reconciliation scheduler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	JWTService := jwt.NewJWTService(a.cfg.JWT.Secret, a.cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            a.cfg.App.Env,
			Version:        version,
			AllowedOrigins: a.cfg.App.CORSAllowedOrigins,
			LogLevel:       logger.ParseLevel(a.cfg.App.LogLevel),
		},
		JWTService,
		appHTTP.NewAttendanceHandler(a.attendance, a.reconciliation),
		appHTTP.NewCalendarHandler(a.calendar),
		appHTTP.NewOvertimeHandler(a.overtime),
		appHTTP.NewLeaveHandler(a.leave),
		appHTTP.NewPayrollHandler(a.payroll, a.advances),
	)

	var scheduler *cron.Scheduler
	if a.cfg.Attendance.ReconcileEnabled {
		scheduler = cron.NewScheduler()
		cron.NewReconciliationJobs(a.reconciliation, a.calendar, a.cfg.Attendance.ReconcileHour).
			RegisterJobs(scheduler, a.cfg.Attendance.ReconcileInterval)
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Server running", "address", server.Addr, "timezone", a.cfg.App.Timezone)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig.String())
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			if scheduler != nil {
				scheduler.Stop()
			}
			return fmt.Errorf("server failed: %w", err)
		}
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	slog.Info("Server stopped")
	return nil
}
