package http

import (
	"io"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
	// LogOutput defaults to stdout.
	LogOutput io.Writer
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	calendarHandler CalendarHandler,
	overtimeHandler OvertimeHandler,
	leaveHandler LeaveHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()

	output := opts.LogOutput
	if output == nil {
		output = os.Stdout
	}
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-timekeeping"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Kiosk endpoint, the scan token is the credential.
		r.Post("/attendance/scan", attendanceHandler.Scan)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/tokens", attendanceHandler.IssueToken)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", attendanceHandler.ListDaily)
					r.Patch("/{id}", attendanceHandler.Correct)
					r.Post("/reconcile", attendanceHandler.Reconcile)
				})
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/shift", calendarHandler.GetShift)
				r.Get("/holidays", calendarHandler.ListHolidays)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Put("/shift", calendarHandler.UpdateShift)
					r.Post("/holidays", calendarHandler.CreateHoliday)
					r.Delete("/holidays/{id}", calendarHandler.DeleteHoliday)
				})
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Get("/", overtimeHandler.List)
				r.Post("/", overtimeHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", overtimeHandler.Get)
					r.Put("/", overtimeHandler.Update)
					r.Delete("/", overtimeHandler.Delete)
					r.With(middleware.AdminOnly).Post("/review", overtimeHandler.Review)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/", leaveHandler.ListRequests)
				r.Post("/", leaveHandler.CreateRequest)
				r.Delete("/{id}", leaveHandler.DeleteRequest)
				r.With(middleware.AdminOnly).Post("/{id}/review", leaveHandler.ReviewRequest)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/advances", func(r chi.Router) {
					r.Get("/", payrollHandler.ListAdvances)
					r.Post("/", payrollHandler.CreateAdvance)
					r.Delete("/{id}", payrollHandler.DeleteAdvance)
					r.With(middleware.AdminOnly).Post("/{id}/review", payrollHandler.ReviewAdvance)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/runs", payrollHandler.Run)
					r.Get("/records", payrollHandler.ListRecords)
					r.Get("/records/{employeeID}", payrollHandler.GetRecord)
					r.Post("/records/{id}/pay", payrollHandler.MarkPaid)
					r.Get("/preview/{employeeID}", payrollHandler.Preview)
					r.Get("/configuration", payrollHandler.GetConfiguration)
					r.Put("/configuration", payrollHandler.ReplaceConfiguration)
				})
			})
		})
	})
	return r
}
