package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

type dtrServiceImpl struct {
	transactor   database.Transactor
	resolver     schedule.Resolver
	punchRepo    attendance.PunchRepository
	dtrRepo      attendance.DailyTimeRecordRepository
	holidayRepo  attendance.HolidayRepository
	employeeRepo employee.EmployeeRepository
	calculator   *Calculator
	punchWindow  time.Duration
}

// ComputeDay implements attendance.DTRService.
func (s *dtrServiceImpl) ComputeDay(ctx context.Context, employeeID string, date time.Time, now time.Time) (attendance.DailyTimeRecord, error) {
	if employeeID == "" {
		return attendance.DailyTimeRecord{}, attendance.ErrEmployeeRequired
	}
	date = schedule.DateOnly(date)

	var saved attendance.DailyTimeRecord
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}

		resolved, err := s.resolver.Resolve(ctx, employeeID, date)
		if err != nil {
			return err
		}

		holiday, err := s.holidayFor(ctx, emp, date)
		if err != nil {
			return err
		}

		window := s.calculator.PunchWindow(resolved, date, s.punchWindow)
		punches, err := s.punchRepo.ListBetween(ctx, employeeID, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("failed to list punches: %w", err)
		}

		rec := s.calculator.Calculate(DayInput{
			EmployeeID: employeeID,
			Date:       date,
			Schedule:   resolved,
			Holiday:    holiday,
			Punches:    punches,
			Now:        now,
		})

		saved, err = s.dtrRepo.Upsert(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to save daily time record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.DailyTimeRecord{}, err
	}

	if saved.NeedsReview {
		slog.Warn("DTR needs review",
			"employee_id", employeeID,
			"date", date.Format("2006-01-02"),
			"status", saved.Status,
			"reason", *saved.ReviewReason,
		)
	}
	return saved, nil
}

// holidayFor returns the holiday applying to the employee on date. A regular
// holiday wins over a special one on the same date.
func (s *dtrServiceImpl) holidayFor(ctx context.Context, emp employee.Employee, date time.Time) (*attendance.Holiday, error) {
	holidays, err := s.holidayRepo.ListBetween(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	var found *attendance.Holiday
	for i := range holidays {
		h := holidays[i]
		if !h.AppliesTo(emp.WorkLocation) {
			continue
		}
		if found == nil || (found.Type != attendance.HolidayRegular && h.Type == attendance.HolidayRegular) {
			found = &h
		}
	}
	return found, nil
}

// ComputeRange implements attendance.DTRService.
func (s *dtrServiceImpl) ComputeRange(ctx context.Context, employeeID string, from, to time.Time, now time.Time) ([]attendance.DailyTimeRecord, error) {
	from, to = schedule.DateOnly(from), schedule.DateOnly(to)
	if to.Before(from) {
		return nil, attendance.ErrInvalidDateRange
	}

	records := make([]attendance.DailyTimeRecord, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		rec, err := s.ComputeDay(ctx, employeeID, d, now)
		if err != nil {
			return nil, fmt.Errorf("compute %s: %w", d.Format("2006-01-02"), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ComputeDayForActive implements attendance.DTRService.
func (s *dtrServiceImpl) ComputeDayForActive(ctx context.Context, date time.Time, now time.Time) (int, int, error) {
	employees, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list active employees: %w", err)
	}

	computed, failed := 0, 0
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return computed, failed, err
		}
		if _, err := s.ComputeDay(ctx, emp.ID, date, now); err != nil {
			failed++
			slog.Error("Failed to compute DTR", "employee_id", emp.ID, "date", date.Format("2006-01-02"), "error", err)
			continue
		}
		computed++
	}
	return computed, failed, nil
}

// RecordPunch implements attendance.DTRService.
func (s *dtrServiceImpl) RecordPunch(ctx context.Context, req attendance.RecordPunchRequest) (attendance.RawPunch, error) {
	if err := req.Validate(); err != nil {
		return attendance.RawPunch{}, err
	}

	punch, err := s.punchRepo.Create(ctx, attendance.RawPunch{
		EmployeeID: req.EmployeeID,
		Direction:  attendance.Direction(req.Direction),
		Timestamp:  req.Timestamp,
		Source:     strings.TrimSpace(req.Source),
	})
	if err != nil {
		return attendance.RawPunch{}, fmt.Errorf("failed to record punch: %w", err)
	}
	return punch, nil
}

// ListRecords implements attendance.DTRService.
func (s *dtrServiceImpl) ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.DailyTimeRecord, error) {
	if employeeID == "" {
		return nil, attendance.ErrEmployeeRequired
	}
	if to.Before(from) {
		return nil, attendance.ErrInvalidDateRange
	}
	return s.dtrRepo.ListByEmployeeRange(ctx, employeeID, schedule.DateOnly(from), schedule.DateOnly(to))
}

// SetOvertimeApproved implements attendance.DTRService.
func (s *dtrServiceImpl) SetOvertimeApproved(ctx context.Context, req attendance.SetOvertimeApprovalRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	if err := s.dtrRepo.SetOvertimeApproved(ctx, req.EmployeeID, date, req.Approved); err != nil {
		return fmt.Errorf("failed to set overtime approval: %w", err)
	}
	return nil
}

// CreateHoliday implements attendance.DTRService.
func (s *dtrServiceImpl) CreateHoliday(ctx context.Context, req attendance.CreateHolidayRequest) (attendance.Holiday, error) {
	if err := req.Validate(); err != nil {
		return attendance.Holiday{}, err
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	h := attendance.Holiday{
		Date:       date,
		Name:       strings.TrimSpace(req.Name),
		Type:       attendance.HolidayType(req.Type),
		IsNational: req.IsNational,
	}
	if !req.IsNational {
		h.WorkLocation = req.WorkLocation
	}

	created, err := s.holidayRepo.Create(ctx, h)
	if err != nil {
		return attendance.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return created, nil
}

func NewDTRService(
	transactor database.Transactor,
	resolver schedule.Resolver,
	punchRepo attendance.PunchRepository,
	dtrRepo attendance.DailyTimeRecordRepository,
	holidayRepo attendance.HolidayRepository,
	employeeRepo employee.EmployeeRepository,
	calculator *Calculator,
	punchWindow time.Duration,
) attendance.DTRService {
	return &dtrServiceImpl{
		transactor:   transactor,
		resolver:     resolver,
		punchRepo:    punchRepo,
		dtrRepo:      dtrRepo,
		holidayRepo:  holidayRepo,
		employeeRepo: employeeRepo,
		calculator:   calculator,
		punchWindow:  punchWindow,
	}
}
