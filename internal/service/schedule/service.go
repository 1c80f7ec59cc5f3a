package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgconn"
)

type scheduleServiceImpl struct {
	transactor                 database.Transactor
	workScheduleRepo           schedule.WorkScheduleRepository
	employeeScheduleAssignRepo schedule.EmployeeScheduleAssignmentRepository
	shiftRosterRepo            schedule.ShiftRosterRepository
}

// CreateWorkSchedule implements schedule.ScheduleService.
func (s *scheduleServiceImpl) CreateWorkSchedule(ctx context.Context, req schedule.CreateWorkScheduleRequest) (schedule.WorkSchedule, error) {
	if err := req.Validate(); err != nil {
		return schedule.WorkSchedule{}, err
	}

	ws, err := req.ToWorkSchedule()
	if err != nil {
		return schedule.WorkSchedule{}, err
	}

	created, err := s.workScheduleRepo.Create(ctx, ws)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to create work schedule: %w", err)
	}
	return created, nil
}

// AssignSchedule implements schedule.ScheduleService.
func (s *scheduleServiceImpl) AssignSchedule(ctx context.Context, req schedule.AssignScheduleRequest) (schedule.EmployeeScheduleAssignment, error) {
	if err := req.Validate(); err != nil {
		return schedule.EmployeeScheduleAssignment{}, err
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	assignment := schedule.EmployeeScheduleAssignment{
		EmployeeID:     req.EmployeeID,
		WorkScheduleID: req.WorkScheduleID,
		StartDate:      startDate,
	}
	if req.EndDate != nil {
		endDate, _ := time.Parse("2006-01-02", *req.EndDate)
		assignment.EndDate = &endDate
	}

	var created schedule.EmployeeScheduleAssignment
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.workScheduleRepo.GetByID(ctx, req.WorkScheduleID); err != nil {
			return err
		}

		existing, err := s.employeeScheduleAssignRepo.GetByEmployeeID(ctx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee schedule assignments: %w", err)
		}
		for _, e := range existing {
			if e.Overlaps(assignment) {
				return schedule.ErrOverlappingScheduleAssignment
			}
		}

		created, err = s.employeeScheduleAssignRepo.Create(ctx, assignment)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				// Check for exclusion violation (SQL state code '23P01')
				if pgErr.Code == "23P01" && pgErr.ConstraintName == "no_overlapping_schedules" {
					return schedule.ErrOverlappingScheduleAssignment
				}
			}
			return fmt.Errorf("failed to create employee schedule assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return schedule.EmployeeScheduleAssignment{}, err
	}

	return created, nil
}

// SetShift implements schedule.ScheduleService.
func (s *scheduleServiceImpl) SetShift(ctx context.Context, req schedule.SetShiftRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	if err := s.shiftRosterRepo.Upsert(ctx, schedule.ShiftRosterEntry{
		EmployeeID: req.EmployeeID,
		Date:       date,
		ShiftName:  req.ShiftName,
	}); err != nil {
		return fmt.Errorf("failed to set shift: %w", err)
	}
	return nil
}

// ListEmployeeScheduleAssignments implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ListEmployeeScheduleAssignments(ctx context.Context, employeeID string) ([]schedule.EmployeeScheduleAssignment, error) {
	if employeeID == "" {
		return nil, schedule.ErrEmployeeIDRequired
	}
	return s.employeeScheduleAssignRepo.GetByEmployeeID(ctx, employeeID)
}

// ListWorkSchedules implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ListWorkSchedules(ctx context.Context) ([]schedule.WorkSchedule, error) {
	return s.workScheduleRepo.List(ctx)
}

// EnsureDefaultSchedules implements schedule.ScheduleService.
func (s *scheduleServiceImpl) EnsureDefaultSchedules(ctx context.Context) error {
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.workScheduleRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list work schedules: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}

		for _, ws := range fixtures.GetAllDefaultWorkSchedules() {
			if _, err := s.workScheduleRepo.Create(ctx, ws); err != nil {
				return fmt.Errorf("failed to seed work schedule %q: %w", ws.Name, err)
			}
		}
		slog.Info("Seeded default work schedules", "count", len(fixtures.GetAllDefaultWorkSchedules()))
		return nil
	})
}

func NewScheduleService(
	transactor database.Transactor,
	workScheduleRepo schedule.WorkScheduleRepository,
	employeeScheduleAssignRepo schedule.EmployeeScheduleAssignmentRepository,
	shiftRosterRepo schedule.ShiftRosterRepository,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		transactor:                 transactor,
		workScheduleRepo:           workScheduleRepo,
		employeeScheduleAssignRepo: employeeScheduleAssignRepo,
		shiftRosterRepo:            shiftRosterRepo,
	}
}
