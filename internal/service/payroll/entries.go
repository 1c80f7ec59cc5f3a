package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	statutorysvc "github.com/cmlabs-hris/payroll-engine-go/internal/service/statutory"
)

// Repositories groups the stores the payroll services read and write.
type Repositories struct {
	Periods      payroll.PeriodRepository
	Entries      payroll.EntryRepository
	Compensation payroll.CompensationRepository
	Adjustments  payroll.AdjustmentRepository
	Runs         payroll.RunRepository
	Audit        payroll.AuditRepository
	Employees    employee.EmployeeRepository
	TimeRecords  attendance.DailyTimeRecordRepository
	Schedules    schedule.WorkScheduleRepository
	Tables       statutory.TableReader
}

type entryServiceImpl struct {
	transactor database.Transactor
	repos      Repositories
	rates      Rates
}

func newEntryService(transactor database.Transactor, repos Repositories, rates Rates) *entryServiceImpl {
	return &entryServiceImpl{
		transactor: transactor,
		repos:      repos,
		rates:      rates,
	}
}

func NewEntryService(transactor database.Transactor, repos Repositories, rates Rates) payroll.EntryService {
	return newEntryService(transactor, repos, rates)
}

// runComputer returns a computer whose table lookups are cached for its lifetime.
func (s *entryServiceImpl) runComputer() *Computer {
	tables := statutorysvc.NewRunCache(s.repos.Tables)
	return NewComputer(
		statutorysvc.NewContributionResolver(tables),
		statutorysvc.NewWithholdingCalculator(tables),
		s.rates,
	)
}

// ComputeEntry implements payroll.EntryService.
func (s *entryServiceImpl) ComputeEntry(ctx context.Context, periodID, employeeID string) (payroll.Entry, error) {
	return s.computeWith(ctx, periodID, employeeID, s.runComputer())
}

func computable(period payroll.Period) error {
	switch period.Status {
	case payroll.PeriodStatusOpen:
		return nil
	case payroll.PeriodStatusClosed:
		return payroll.ErrPeriodClosed
	}
	return fmt.Errorf("%w: period is %s", payroll.ErrPeriodNotOpen, period.Status)
}

func (s *entryServiceImpl) computeWith(ctx context.Context, periodID, employeeID string, computer *Computer) (payroll.Entry, error) {
	var saved payroll.Entry
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.repos.Periods.GetForShare(ctx, periodID)
		if err != nil {
			return err
		}
		if err := computable(period); err != nil {
			return err
		}

		existing, err := s.repos.Entries.GetByPeriodAndEmployee(ctx, periodID, employeeID)
		switch {
		case err == nil && existing.Status == payroll.EntryStatusApproved:
			return payroll.ErrEntryApproved
		case err != nil && !errors.Is(err, payroll.ErrEntryNotFound):
			return fmt.Errorf("failed to get existing entry: %w", err)
		}

		emp, err := s.repos.Employees.GetByID(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}
		compensation, err := s.repos.Compensation.GetEffective(ctx, employeeID, period.CutoffEnd)
		if err != nil {
			return err
		}
		records, err := s.repos.TimeRecords.ListByEmployeeRange(ctx, employeeID, period.CutoffStart, period.CutoffEnd)
		if err != nil {
			return fmt.Errorf("failed to list time records: %w", err)
		}
		schedules, err := s.schedulesFor(ctx, records)
		if err != nil {
			return err
		}
		adjustments, err := s.repos.Adjustments.ListApplicable(ctx, employeeID, period.CutoffStart, period.CutoffEnd)
		if err != nil {
			return fmt.Errorf("failed to list adjustments: %w", err)
		}

		entry, err := computer.ComputeEntry(ctx, ComputeInput{
			Period:       period,
			Employee:     emp,
			Compensation: compensation,
			Records:      records,
			Schedules:    schedules,
			Adjustments:  adjustments,
		})
		if err != nil {
			return err
		}

		now := time.Now()
		entry.ComputedAt = &now
		saved, err = s.repos.Entries.Save(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
		return nil
	})
	if err != nil {
		s.demote(ctx, periodID, employeeID, err)
		return payroll.Entry{}, err
	}
	return saved, nil
}

// demote moves a stale computed entry back to draft after a failed
// recomputation so it drops out of period totals.
func (s *entryServiceImpl) demote(ctx context.Context, periodID, employeeID string, cause error) {
	if payroll.ClassifyFailure(cause) == payroll.FailureStateTransition {
		return
	}
	ctx = context.WithoutCancel(ctx)
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.repos.Periods.GetForShare(ctx, periodID)
		if err != nil || period.Status != payroll.PeriodStatusOpen {
			return err
		}
		entry, err := s.repos.Entries.GetByPeriodAndEmployee(ctx, periodID, employeeID)
		if errors.Is(err, payroll.ErrEntryNotFound) {
			return nil
		}
		if err != nil || entry.Status != payroll.EntryStatusComputed {
			return err
		}
		_, err = s.repos.Entries.UpdateStatus(ctx, entry.ID, payroll.EntryStatusComputed, payroll.EntryStatusDraft, nil)
		return err
	})
	if err != nil {
		slog.Error("failed to demote stale payroll entry", "period_id", periodID, "employee_id", employeeID, "error", err)
	}
}

func (s *entryServiceImpl) schedulesFor(ctx context.Context, records []attendance.DailyTimeRecord) (map[string]schedule.WorkSchedule, error) {
	schedules := make(map[string]schedule.WorkSchedule)
	for _, r := range records {
		if r.WorkScheduleID == nil {
			continue
		}
		if _, ok := schedules[*r.WorkScheduleID]; ok {
			continue
		}
		ws, err := s.repos.Schedules.GetByID(ctx, *r.WorkScheduleID)
		if err != nil {
			return nil, fmt.Errorf("failed to get work schedule %s: %w", *r.WorkScheduleID, err)
		}
		schedules[ws.ID] = ws
	}
	return schedules, nil
}

// GetEntry implements payroll.EntryService.
func (s *entryServiceImpl) GetEntry(ctx context.Context, periodID, employeeID string) (payroll.Entry, error) {
	return s.repos.Entries.GetByPeriodAndEmployee(ctx, periodID, employeeID)
}

// ListEntries implements payroll.EntryService.
func (s *entryServiceImpl) ListEntries(ctx context.Context, periodID string) ([]payroll.Entry, error) {
	if _, err := s.repos.Periods.GetByID(ctx, periodID); err != nil {
		return nil, err
	}
	return s.repos.Entries.ListByPeriod(ctx, periodID)
}

// ApproveEntry implements payroll.EntryService.
func (s *entryServiceImpl) ApproveEntry(ctx context.Context, req payroll.EntryTransitionRequest) (payroll.Entry, error) {
	return s.transition(ctx, req, payroll.EntryStatusComputed, payroll.EntryStatusApproved, payroll.AuditEntryApproved)
}

// RejectEntry implements payroll.EntryService.
func (s *entryServiceImpl) RejectEntry(ctx context.Context, req payroll.EntryTransitionRequest) (payroll.Entry, error) {
	return s.transition(ctx, req, payroll.EntryStatusComputed, payroll.EntryStatusDraft, payroll.AuditEntryRejected)
}

// ReopenEntry implements payroll.EntryService.
func (s *entryServiceImpl) ReopenEntry(ctx context.Context, req payroll.EntryTransitionRequest) (payroll.Entry, error) {
	entry, err := s.transition(ctx, req, payroll.EntryStatusApproved, payroll.EntryStatusDraft, payroll.AuditEntryReopened)
	if err != nil {
		return payroll.Entry{}, err
	}
	slog.Warn("payroll entry reopened",
		"period_id", req.PeriodID,
		"employee_id", req.EmployeeID,
		"actor_id", req.ActorID,
	)
	return entry, nil
}

func (s *entryServiceImpl) transition(ctx context.Context, req payroll.EntryTransitionRequest, from, to payroll.EntryStatus, action payroll.AuditAction) (payroll.Entry, error) {
	var updated payroll.Entry
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.repos.Periods.GetForShare(ctx, req.PeriodID)
		if err != nil {
			return err
		}
		switch period.Status {
		case payroll.PeriodStatusClosed:
			return payroll.ErrPeriodClosed
		case payroll.PeriodStatusOpen:
		case payroll.PeriodStatusComputed:
			// Totals are aggregated; entries may only move within the counted set.
			if to == payroll.EntryStatusDraft {
				return fmt.Errorf("%w: reopen the period before moving an entry back to draft", payroll.ErrInvalidEntryTransition)
			}
		default:
			return fmt.Errorf("%w: period is %s", payroll.ErrInvalidEntryTransition, period.Status)
		}

		entry, err := s.repos.Entries.GetByPeriodAndEmployee(ctx, req.PeriodID, req.EmployeeID)
		if err != nil {
			return err
		}
		if entry.Status != from {
			return fmt.Errorf("%w: entry is %s, expected %s", payroll.ErrInvalidEntryTransition, entry.Status, from)
		}

		var actor *string
		if to == payroll.EntryStatusApproved {
			actor = &req.ActorID
		}
		updated, err = s.repos.Entries.UpdateStatus(ctx, entry.ID, from, to, actor)
		if err != nil {
			return err
		}

		return s.repos.Audit.Record(ctx, payroll.AuditEvent{
			PeriodID:   req.PeriodID,
			EntryID:    &entry.ID,
			Action:     action,
			FromStatus: string(from),
			ToStatus:   string(to),
			ActorID:    req.ActorID,
			Reason:     req.Reason,
		})
	})
	if err != nil {
		return payroll.Entry{}, err
	}
	return updated, nil
}
