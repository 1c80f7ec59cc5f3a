package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-engine-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-engine-go/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
	scheduleService "github.com/cmlabs-hris/payroll-engine-go/internal/service/schedule"
	statutoryService "github.com/cmlabs-hris/payroll-engine-go/internal/service/statutory"
)

const (
	appName    = "payroll-engine"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.App.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		ApplicationName:  appName,
		StatementTimeout: cfg.Database.StatementTimeout,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)

	employeeRepo := postgresql.NewEmployeeRepository(db)
	workScheduleRepo := postgresql.NewWorkScheduleRepository(db)
	employeeScheduleAssignmentRepo := postgresql.NewEmployeeScheduleAssignmentRepository(db)
	shiftRosterRepo := postgresql.NewShiftRosterRepository(db)
	punchRepo := postgresql.NewPunchRepository(db)
	dtrRepo := postgresql.NewDailyTimeRecordRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	statutoryTableRepo := postgresql.NewStatutoryTableRepository(db)

	payrollRepos := payrollService.Repositories{
		Periods:      postgresql.NewPeriodRepository(db),
		Entries:      postgresql.NewEntryRepository(db),
		Compensation: postgresql.NewCompensationRepository(db),
		Adjustments:  postgresql.NewAdjustmentRepository(db),
		Runs:         postgresql.NewRunRepository(db),
		Audit:        postgresql.NewAuditRepository(db),
		Employees:    employeeRepo,
		TimeRecords:  dtrRepo,
		Schedules:    workScheduleRepo,
		Tables:       statutoryTableRepo,
	}
	rates := payrollService.Rates{
		AnnualWorkDays: cfg.Payroll.AnnualWorkDays,
		HoursPerDay:    cfg.Payroll.HoursPerDay,
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	resolver := scheduleService.NewResolver(workScheduleRepo, employeeScheduleAssignmentRepo, shiftRosterRepo)
	scheduleSvc := scheduleService.NewScheduleService(transactor, workScheduleRepo, employeeScheduleAssignmentRepo, shiftRosterRepo)
	dtrSvc := attendanceService.NewDTRService(
		transactor,
		resolver,
		punchRepo,
		dtrRepo,
		holidayRepo,
		employeeRepo,
		attendanceService.NewCalculator(cfg.Location()),
		cfg.Payroll.PunchWindow,
	)
	tableSvc := statutoryService.NewTableService(transactor, statutoryTableRepo)
	entrySvc := payrollService.NewEntryService(transactor, payrollRepos, rates)
	orchestrator := payrollService.NewRunOrchestrator(transactor, payrollRepos, rates, payrollService.RunConfig{
		Concurrency:     cfg.Payroll.Concurrency,
		EmployeeTimeout: cfg.Payroll.EmployeeTimeout,
	})
	inputSvc := payrollService.NewInputService(payrollRepos.Compensation, payrollRepos.Adjustments, employeeRepo)

	if cfg.App.SeedDefaults {
		if err := tableSvc.EnsureSeedTables(ctx); err != nil {
			slog.Error("Failed to seed statutory tables", "error", err)
			os.Exit(1)
		}
		if err := scheduleSvc.EnsureDefaultSchedules(ctx); err != nil {
			slog.Error("Failed to seed work schedules", "error", err)
			os.Exit(1)
		}
	}

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(dtrSvc, cfg.Location(), cfg.Payroll.DTRJobInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.RouterOptions{
			FrontendURL: cfg.App.FrontendURL,
			AppName:     appName,
			Version:     appVersion,
			Env:         cfg.App.Env,
		},
		appHTTP.NewScheduleHandler(scheduleSvc),
		appHTTP.NewAttendanceHandler(dtrSvc),
		appHTTP.NewPayrollHandler(entrySvc, orchestrator, inputSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
