package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SystemActor is recorded on transitions the orchestrator makes on its own.
const SystemActor = "system"

// RunConfig bounds batch computation.
type RunConfig struct {
	Concurrency     int
	EmployeeTimeout time.Duration
}

// inflightRuns counts runs per period in this process. Entry transactions
// also hold the period row FOR SHARE, which covers other processes.
type inflightRuns struct {
	mu   sync.Mutex
	runs map[string]int
}

func (f *inflightRuns) begin(periodID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[periodID]++
}

func (f *inflightRuns) end(periodID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runs[periodID]--; f.runs[periodID] <= 0 {
		delete(f.runs, periodID)
	}
}

func (f *inflightRuns) active(periodID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[periodID] > 0
}

type runOrchestratorImpl struct {
	transactor database.Transactor
	repos      Repositories
	entries    *entryServiceImpl
	config     RunConfig
	inflight   *inflightRuns
}

func NewRunOrchestrator(transactor database.Transactor, repos Repositories, rates Rates, config RunConfig) payroll.RunOrchestrator {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.EmployeeTimeout <= 0 {
		config.EmployeeTimeout = 30 * time.Second
	}
	return &runOrchestratorImpl{
		transactor: transactor,
		repos:      repos,
		entries:    newEntryService(transactor, repos, rates),
		config:     config,
		inflight:   &inflightRuns{runs: make(map[string]int)},
	}
}

// CreatePeriod implements payroll.RunOrchestrator.
func (s *runOrchestratorImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.Period, error) {
	if err := req.Validate(); err != nil {
		return payroll.Period{}, err
	}
	start, _ := time.Parse(dateLayout, req.CutoffStart)
	end, _ := time.Parse(dateLayout, req.CutoffEnd)
	payDate, _ := time.Parse(dateLayout, req.PayDate)

	period := payroll.Period{
		Name:         req.Name,
		CutoffStart:  start,
		CutoffEnd:    end,
		PayDate:      payDate,
		PayFrequency: statutory.PayPeriodType(req.PayFrequency),
		Status:       payroll.PeriodStatusDraft,
	}

	var created payroll.Period
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repos.Periods.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list payroll periods: %w", err)
		}
		for _, p := range existing {
			if p.Overlaps(period) {
				return fmt.Errorf("%w: %s", payroll.ErrOverlappingPeriod, p.Name)
			}
		}

		created, err = s.repos.Periods.Create(ctx, period)
		return err
	})
	if err != nil {
		return payroll.Period{}, err
	}
	return created, nil
}

// GetPeriod implements payroll.RunOrchestrator.
func (s *runOrchestratorImpl) GetPeriod(ctx context.Context, periodID string) (payroll.Period, error) {
	return s.repos.Periods.GetByID(ctx, periodID)
}

// ListPeriods implements payroll.RunOrchestrator.
func (s *runOrchestratorImpl) ListPeriods(ctx context.Context) ([]payroll.Period, error) {
	return s.repos.Periods.List(ctx)
}

// ListRuns implements payroll.RunOrchestrator.
func (s *runOrchestratorImpl) ListRuns(ctx context.Context, periodID string) ([]payroll.RunRecord, error) {
	return s.repos.Runs.ListByPeriod(ctx, periodID)
}

// ListAuditEvents implements payroll.RunOrchestrator.
func (s *runOrchestratorImpl) ListAuditEvents(ctx context.Context, periodID string) ([]payroll.AuditEvent, error) {
	return s.repos.Audit.ListByPeriod(ctx, periodID)
}

// eligible returns the employees to compute and the requested IDs that are not
// employed during the cutoff.
func (s *runOrchestratorImpl) eligible(ctx context.Context, period payroll.Period, requested []string) ([]employee.Employee, []string, error) {
	employees, err := s.repos.Employees.ListEmployedDuring(ctx, period.CutoffStart, period.CutoffEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list eligible employees: %w", err)
	}
	if len(requested) == 0 {
		return employees, nil, nil
	}

	byID := make(map[string]employee.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}
	var (
		selected   []employee.Employee
		ineligible []string
	)
	for _, id := range requested {
		if emp, ok := byID[id]; ok {
			selected = append(selected, emp)
		} else {
			ineligible = append(ineligible, id)
		}
	}
	return selected, ineligible, nil
}

// Run implements payroll.RunOrchestrator. One employee's failure never aborts
// the others. Cancelling ctx stops new computations from starting; those
// already started run to completion.
func (s *runOrchestratorImpl) Run(ctx context.Context, req payroll.RunRequest) (payroll.RunReport, error) {
	period, err := s.repos.Periods.GetByID(ctx, req.PeriodID)
	if err != nil {
		return payroll.RunReport{}, err
	}
	if err := computable(period); err != nil {
		return payroll.RunReport{}, err
	}

	employees, ineligible, err := s.eligible(ctx, period, req.EmployeeIDs)
	if err != nil {
		return payroll.RunReport{}, err
	}

	s.inflight.begin(period.ID)
	defer s.inflight.end(period.ID)

	startedAt := time.Now()
	computer := s.entries.runComputer()
	results := make([]error, len(employees))
	started := make([]bool, len(employees))

	slog.Info("payroll run started", "period_id", period.ID, "employees", len(employees), "concurrency", s.config.Concurrency)

	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)
	for i, emp := range employees {
		if ctx.Err() != nil {
			break
		}
		started[i] = true
		g.Go(func() error {
			ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.EmployeeTimeout)
			defer cancel()
			_, results[i] = s.entries.computeWith(ectx, period.ID, emp.ID, computer)
			return nil
		})
	}
	_ = g.Wait()

	report := payroll.RunReport{
		RunID:        uuid.Must(uuid.NewV7()).String(),
		PeriodID:     period.ID,
		Requested:    len(employees) + len(ineligible),
		PeriodStatus: period.Status,
	}
	for _, id := range ineligible {
		report.Failures = append(report.Failures, payroll.EmployeeFailure{
			EmployeeID: id,
			Kind:       payroll.FailureIncompleteInput,
			Reason:     "not employed during cutoff",
		})
	}
	for i, emp := range employees {
		switch {
		case !started[i]:
			report.NotStarted = append(report.NotStarted, emp.ID)
		case results[i] != nil:
			failure := payroll.EmployeeFailure{
				EmployeeID: emp.ID,
				Kind:       payroll.ClassifyFailure(results[i]),
				Reason:     results[i].Error(),
			}
			report.Failures = append(report.Failures, failure)
			slog.Warn("payroll entry failed",
				"period_id", period.ID,
				"employee_id", emp.ID,
				"kind", failure.Kind,
				"error", results[i],
			)
		default:
			report.Succeeded = append(report.Succeeded, emp.ID)
		}
	}

	// The run is over; bookkeeping must complete even if the caller went away.
	actx := context.WithoutCancel(ctx)

	totals, err := s.repos.Periods.RecomputeTotals(actx, period.ID)
	if err != nil {
		return report, fmt.Errorf("failed to aggregate period totals: %w", err)
	}
	if !totals.Gross.Sub(totals.Deductions).Equal(totals.Net) {
		slog.Error("period totals do not reconcile",
			"period_id", period.ID,
			"gross", totals.Gross,
			"deductions", totals.Deductions,
			"net", totals.Net,
		)
		return report, fmt.Errorf("%w: gross %s - deductions %s != net %s", payroll.ErrPeriodTotalMismatch, totals.Gross, totals.Deductions, totals.Net)
	}
	report.Totals = totals

	cancelled := len(report.NotStarted) > 0
	if len(req.EmployeeIDs) == 0 && len(report.Failures) == 0 && !cancelled {
		updated, err := s.transitionPeriod(actx, period.ID, payroll.PeriodStatusOpen, payroll.PeriodStatusComputed, payroll.AuditPeriodComputed, SystemActor, nil)
		if err != nil {
			return report, err
		}
		report.PeriodStatus = updated.Status
	}

	if _, err := s.repos.Runs.Create(actx, payroll.RunRecord{
		ID:         report.RunID,
		PeriodID:   period.ID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Requested:  report.Requested,
		Succeeded:  len(report.Succeeded),
		Failures:   report.Failures,
		Cancelled:  cancelled,
		Totals:     totals,
	}); err != nil {
		return report, fmt.Errorf("failed to record payroll run: %w", err)
	}

	slog.Info("payroll run finished",
		"period_id", period.ID,
		"run_id", report.RunID,
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failures),
		"not_started", len(report.NotStarted),
		"period_status", report.PeriodStatus,
		"duration", time.Since(startedAt),
	)

	if cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

func (s *runOrchestratorImpl) transitionPeriod(ctx context.Context, periodID string, from, to payroll.PeriodStatus, action payroll.AuditAction, actorID string, reason *string) (payroll.Period, error) {
	if !from.CanTransition(to) {
		return payroll.Period{}, fmt.Errorf("%w: %s to %s", payroll.ErrInvalidPeriodTransition, from, to)
	}
	var updated payroll.Period
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.repos.Periods.UpdateStatus(ctx, periodID, from, to)
		if err != nil {
			return err
		}
		return s.repos.Audit.Record(ctx, payroll.AuditEvent{
			PeriodID:   periodID,
			Action:     action,
			FromStatus: string(from),
			ToStatus:   string(to),
			ActorID:    actorID,
			Reason:     reason,
		})
	})
	if err != nil {
		return payroll.Period{}, err
	}
	return updated, nil
}

// OpenPeriod implements payroll.RunOrchestrator.
func (s *runOrchestratorImpl) OpenPeriod(ctx context.Context, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
	return s.transitionPeriod(ctx, req.PeriodID, payroll.PeriodStatusDraft, payroll.PeriodStatusOpen, payroll.AuditPeriodOpened, req.ActorID, req.Reason)
}

// MarkComputed implements payroll.RunOrchestrator. Without Override it
// requires every eligible employee to hold a computed or approved entry.
func (s *runOrchestratorImpl) MarkComputed(ctx context.Context, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
	if s.inflight.active(req.PeriodID) {
		return payroll.Period{}, payroll.ErrComputationInFlight
	}
	period, err := s.repos.Periods.GetByID(ctx, req.PeriodID)
	if err != nil {
		return payroll.Period{}, err
	}
	if period.Status != payroll.PeriodStatusOpen {
		return payroll.Period{}, fmt.Errorf("%w: period is %s", payroll.ErrInvalidPeriodTransition, period.Status)
	}

	employees, _, err := s.eligible(ctx, period, nil)
	if err != nil {
		return payroll.Period{}, err
	}
	counted, err := s.repos.Entries.CountedEmployeeIDs(ctx, period.ID)
	if err != nil {
		return payroll.Period{}, fmt.Errorf("failed to list computed entries: %w", err)
	}
	var pending []string
	for _, emp := range employees {
		if !slices.Contains(counted, emp.ID) {
			pending = append(pending, emp.ID)
		}
	}

	action := payroll.AuditPeriodComputed
	if len(pending) > 0 {
		if !req.Override {
			return payroll.Period{}, fmt.Errorf("%w: %d employee(s)", payroll.ErrPendingEntries, len(pending))
		}
		action = payroll.AuditPeriodComputedForced
		slog.Warn("payroll period marked computed with pending employees",
			"period_id", period.ID,
			"pending", pending,
			"actor_id", req.ActorID,
		)
	}

	// Totals must reflect exactly the counted entries at the moment of transition.
	if _, err := s.repos.Periods.RecomputeTotals(ctx, period.ID); err != nil {
		return payroll.Period{}, fmt.Errorf("failed to aggregate period totals: %w", err)
	}
	return s.transitionPeriod(ctx, period.ID, payroll.PeriodStatusOpen, payroll.PeriodStatusComputed, action, req.ActorID, req.Reason)
}

// ApprovePeriod implements payroll.RunOrchestrator. Every computed entry is
// approved along with the period.
func (s *runOrchestratorImpl) ApprovePeriod(ctx context.Context, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
	var updated payroll.Period
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.repos.Periods.UpdateStatus(ctx, req.PeriodID, payroll.PeriodStatusComputed, payroll.PeriodStatusApproved)
		if err != nil {
			return err
		}
		approved, err := s.repos.Entries.ApproveComputed(ctx, req.PeriodID, req.ActorID)
		if err != nil {
			return fmt.Errorf("failed to approve entries: %w", err)
		}
		totals, err := s.repos.Periods.RecomputeTotals(ctx, req.PeriodID)
		if err != nil {
			return fmt.Errorf("failed to aggregate period totals: %w", err)
		}
		updated.GrossTotal, updated.DeductionsTotal, updated.NetTotal, updated.EmployeeCount = totals.Gross, totals.Deductions, totals.Net, totals.EmployeeCount
		slog.Info("payroll period approved", "period_id", req.PeriodID, "entries", approved, "actor_id", req.ActorID)
		return s.repos.Audit.Record(ctx, payroll.AuditEvent{
			PeriodID:   req.PeriodID,
			Action:     payroll.AuditPeriodApproved,
			FromStatus: string(payroll.PeriodStatusComputed),
			ToStatus:   string(payroll.PeriodStatusApproved),
			ActorID:    req.ActorID,
			Reason:     req.Reason,
		})
	})
	if err != nil {
		return payroll.Period{}, err
	}
	return updated, nil
}

// ReopenPeriod implements payroll.RunOrchestrator.
func (s *runOrchestratorImpl) ReopenPeriod(ctx context.Context, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
	period, err := s.repos.Periods.GetByID(ctx, req.PeriodID)
	if err != nil {
		return payroll.Period{}, err
	}
	switch period.Status {
	case payroll.PeriodStatusComputed, payroll.PeriodStatusApproved:
	case payroll.PeriodStatusClosed:
		return payroll.Period{}, payroll.ErrPeriodClosed
	default:
		return payroll.Period{}, fmt.Errorf("%w: cannot reopen a %s period", payroll.ErrInvalidPeriodTransition, period.Status)
	}
	updated, err := s.transitionPeriod(ctx, period.ID, period.Status, payroll.PeriodStatusOpen, payroll.AuditPeriodReopened, req.ActorID, req.Reason)
	if err != nil {
		return payroll.Period{}, err
	}
	slog.Warn("payroll period reopened", "period_id", period.ID, "from", period.Status, "actor_id", req.ActorID)
	return updated, nil
}

// ClosePeriod implements payroll.RunOrchestrator. The period row is locked
// NOWAIT so a close never interleaves with an entry write; adjustments applied
// by approved entries are consumed in the same transaction.
func (s *runOrchestratorImpl) ClosePeriod(ctx context.Context, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
	if s.inflight.active(req.PeriodID) {
		return payroll.Period{}, payroll.ErrComputationInFlight
	}

	var closed payroll.Period
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.repos.Periods.GetForClose(ctx, req.PeriodID)
		if err != nil {
			return err
		}
		switch period.Status {
		case payroll.PeriodStatusApproved:
		case payroll.PeriodStatusClosed:
			return payroll.ErrPeriodClosed
		default:
			return fmt.Errorf("%w: cannot close a %s period", payroll.ErrInvalidPeriodTransition, period.Status)
		}

		entries, err := s.repos.Entries.ListByPeriod(ctx, period.ID)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		consumed := 0
		for _, entry := range entries {
			if entry.Status != payroll.EntryStatusApproved {
				continue
			}
			for _, l := range entry.Earnings {
				if l.AdjustmentID != nil {
					if err := s.repos.Adjustments.Consume(ctx, *l.AdjustmentID, l.Amount); err != nil {
						return fmt.Errorf("failed to consume adjustment %s: %w", *l.AdjustmentID, err)
					}
					consumed++
				}
			}
			for _, l := range entry.Deductions {
				if l.AdjustmentID != nil {
					if err := s.repos.Adjustments.Consume(ctx, *l.AdjustmentID, l.Amount); err != nil {
						return fmt.Errorf("failed to consume adjustment %s: %w", *l.AdjustmentID, err)
					}
					consumed++
				}
			}
		}

		closed, err = s.repos.Periods.UpdateStatus(ctx, period.ID, payroll.PeriodStatusApproved, payroll.PeriodStatusClosed)
		if err != nil {
			return err
		}
		slog.Info("payroll period closed", "period_id", period.ID, "adjustments_consumed", consumed, "actor_id", req.ActorID)
		return s.repos.Audit.Record(ctx, payroll.AuditEvent{
			PeriodID:   period.ID,
			Action:     payroll.AuditPeriodClosed,
			FromStatus: string(payroll.PeriodStatusApproved),
			ToStatus:   string(payroll.PeriodStatusClosed),
			ActorID:    req.ActorID,
			Reason:     req.Reason,
		})
	})
	if err != nil {
		return payroll.Period{}, err
	}
	return closed, nil
}
