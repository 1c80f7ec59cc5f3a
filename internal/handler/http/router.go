package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	FrontendURL string
	AppName     string
	Version     string
	Env         string
}

func NewRouter(JWTService jwt.Service, opts RouterOptions, scheduleHandler ScheduleHandler, attendanceHandler AttendanceHandler, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			// Punches come from devices and self-service clients.
			r.Post("/employees/{employeeID}/punches", attendanceHandler.RecordPunch)

			// Manager or owner
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Route("/work-schedules", func(r chi.Router) {
					r.Get("/", scheduleHandler.ListWorkSchedules)
					r.Post("/", scheduleHandler.CreateWorkSchedule)
				})

				r.Post("/holidays", attendanceHandler.CreateHoliday)

				r.Route("/employees/{employeeID}", func(r chi.Router) {
					r.Get("/schedule-assignments", scheduleHandler.ListEmployeeScheduleAssignments)
					r.Post("/schedule-assignments", scheduleHandler.AssignSchedule)
					r.Post("/shifts", scheduleHandler.SetShift)

					r.Get("/daily-time-records", attendanceHandler.ListRecords)
					r.Post("/daily-time-records/compute", attendanceHandler.ComputeRange)
					r.Put("/daily-time-records/{date}/overtime-approval", attendanceHandler.SetOvertimeApproval)

					r.Post("/compensations", payrollHandler.SetCompensation)
					r.Post("/adjustments", payrollHandler.CreateAdjustment)
				})

				r.Route("/payroll-periods", func(r chi.Router) {
					r.Get("/", payrollHandler.ListPeriods)
					r.Post("/", payrollHandler.CreatePeriod)

					r.Route("/{periodID}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetPeriod)
						r.Post("/open", payrollHandler.OpenPeriod)
						r.Post("/run", payrollHandler.RunPeriod)
						r.Post("/mark-computed", payrollHandler.MarkComputed)
						r.Post("/approve", payrollHandler.ApprovePeriod)
						r.Post("/reopen", payrollHandler.ReopenPeriod)
						r.Get("/runs", payrollHandler.ListRuns)
						r.Get("/audit-events", payrollHandler.ListAuditEvents)

						// Owner only
						r.With(middleware.RequireOwner).Post("/close", payrollHandler.ClosePeriod)

						r.Route("/entries", func(r chi.Router) {
							r.Get("/", payrollHandler.ListEntries)
							r.Route("/{employeeID}", func(r chi.Router) {
								r.Get("/", payrollHandler.GetEntry)
								r.Post("/compute", payrollHandler.ComputeEntry)
								r.Post("/approve", payrollHandler.ApproveEntry)
								r.Post("/reject", payrollHandler.RejectEntry)
								r.Post("/reopen", payrollHandler.ReopenEntry)
							})
						})
					})
				})
			})
		})
	})
	return r
}
