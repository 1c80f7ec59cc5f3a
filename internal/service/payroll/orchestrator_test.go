package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payrollHarness struct {
	periods      *memoryPeriods
	entries      *memoryEntries
	compensation *memoryCompensation
	adjustments  *memoryAdjustments
	runs         *memoryRuns
	audit        *memoryAudit
	records      *memoryTimeRecords

	orchestrator payroll.RunOrchestrator
	entrySvc     payroll.EntryService
	inputs       payroll.InputService
	period       payroll.Period
}

func newPayrollHarness(t *testing.T, employees ...employee.Employee) *payrollHarness {
	t.Helper()
	entries := &memoryEntries{}
	h := &payrollHarness{
		periods:      &memoryPeriods{entries: entries},
		entries:      entries,
		compensation: &memoryCompensation{},
		adjustments:  &memoryAdjustments{},
		runs:         &memoryRuns{},
		audit:        &memoryAudit{},
		records:      &memoryTimeRecords{},
	}
	repos := Repositories{
		Periods:      h.periods,
		Entries:      h.entries,
		Compensation: h.compensation,
		Adjustments:  h.adjustments,
		Runs:         h.runs,
		Audit:        h.audit,
		Employees:    memoryEmployees(employees),
		TimeRecords:  h.records,
		Schedules:    memorySchedules(standardSchedules()),
		Tables:       fixtureTables{},
	}
	rates := Rates{AnnualWorkDays: 261, HoursPerDay: 8}
	h.orchestrator = NewRunOrchestrator(directTransactor{}, repos, rates, RunConfig{Concurrency: 4, EmployeeTimeout: 5 * time.Second})
	h.entrySvc = NewEntryService(directTransactor{}, repos, rates)
	h.inputs = NewInputService(h.compensation, h.adjustments, memoryEmployees(employees))

	period, err := h.periods.Create(context.Background(), semiMonthly())
	require.NoError(t, err)
	h.period = period
	return h
}

// ready gives the employee compensation and a clean cutoff of time records.
func (h *payrollHarness) ready(t *testing.T, employeeID string) {
	t.Helper()
	h.withCompensation(t, employeeID)
	h.withAttendance(t, employeeID)
}

func (h *payrollHarness) withCompensation(t *testing.T, employeeID string) {
	t.Helper()
	c := monthlyPay("30000")
	c.EmployeeID = employeeID
	_, err := h.compensation.Create(context.Background(), c)
	require.NoError(t, err)
}

func (h *payrollHarness) withAttendance(t *testing.T, employeeID string) {
	t.Helper()
	for _, rec := range fullAttendance(employeeID, day(1), day(15)) {
		_, err := h.records.Upsert(context.Background(), rec)
		require.NoError(t, err)
	}
}

func (h *payrollHarness) flagForReview(t *testing.T, employeeID string, date time.Time) {
	t.Helper()
	rec, err := h.records.GetByEmployeeAndDate(context.Background(), employeeID, date)
	require.NoError(t, err)
	reason := attendance.ReasonMissingClockOut
	rec.NeedsReview, rec.ReviewReason = true, &reason
	_, err = h.records.Upsert(context.Background(), rec)
	require.NoError(t, err)
}

func (h *payrollHarness) transition(actor string) payroll.PeriodTransitionRequest {
	return payroll.PeriodTransitionRequest{PeriodID: h.period.ID, ActorID: actor}
}

func (h *payrollHarness) entryRequest(employeeID string) payroll.EntryTransitionRequest {
	return payroll.EntryTransitionRequest{PeriodID: h.period.ID, EmployeeID: employeeID, ActorID: "operator-1"}
}

func (h *payrollHarness) currentPeriod(t *testing.T) payroll.Period {
	t.Helper()
	p, err := h.orchestrator.GetPeriod(context.Background(), h.period.ID)
	require.NoError(t, err)
	return p
}

func TestRun_IsolatesEmployeeFailures(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"), staff("emp-2"), staff("emp-3"))
	h.ready(t, "emp-1")
	h.withAttendance(t, "emp-2")
	h.ready(t, "emp-3")
	h.flagForReview(t, "emp-3", day(3))

	report, err := h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: h.period.ID})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, []string{"emp-1"}, report.Succeeded)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, "emp-2", report.Failures[0].EmployeeID)
	assert.Equal(t, payroll.FailureIncompleteInput, report.Failures[0].Kind)
	assert.Contains(t, report.Failures[0].Reason, payroll.ErrNoCompensation.Error())
	assert.Equal(t, "emp-3", report.Failures[1].EmployeeID)
	assert.Contains(t, report.Failures[1].Reason, "2025-09-03")

	assert.Equal(t, payroll.PeriodStatusOpen, report.PeriodStatus)
	assertDec(t, "15000.00", report.Totals.Gross)
	assertDec(t, "13335.05", report.Totals.Net)
	assert.Equal(t, 1, report.Totals.EmployeeCount)

	period := h.currentPeriod(t)
	assert.Equal(t, payroll.PeriodStatusOpen, period.Status)
	assertDec(t, "1664.95", period.DeductionsTotal)

	runs, err := h.orchestrator.ListRuns(context.Background(), h.period.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, 1, runs[0].Succeeded)
	assert.Len(t, runs[0].Failures, 2)
	assert.False(t, runs[0].Cancelled)
}

func TestRun_CleanRunMarksComputed(t *testing.T) {
	var employees []employee.Employee
	for i := 0; i < 24; i++ {
		employees = append(employees, staff(fmt.Sprintf("emp-%02d", i)))
	}
	h := newPayrollHarness(t, employees...)
	for _, emp := range employees {
		h.ready(t, emp.ID)
	}

	report, err := h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: h.period.ID})
	require.NoError(t, err)

	assert.Empty(t, report.Failures)
	assert.Len(t, report.Succeeded, 24)
	assert.Equal(t, payroll.PeriodStatusComputed, report.PeriodStatus)
	assertDec(t, "360000.00", report.Totals.Gross)
	assertDec(t, "320041.20", report.Totals.Net)
	assert.Equal(t, payroll.PeriodStatusComputed, h.currentPeriod(t).Status)
	assert.Contains(t, h.audit.actions(), payroll.AuditPeriodComputed)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"), staff("emp-2"))
	h.ready(t, "emp-1")
	h.ready(t, "emp-2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := h.orchestrator.Run(ctx, payroll.RunRequest{PeriodID: h.period.ID})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"emp-1", "emp-2"}, report.NotStarted)
	assert.Empty(t, report.Succeeded)
	assert.Equal(t, payroll.PeriodStatusOpen, h.currentPeriod(t).Status)

	require.Len(t, h.runs.items, 1)
	assert.True(t, h.runs.items[0].Cancelled)
}

func TestRun_RequiresOpenPeriod(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))

	draft, err := h.orchestrator.CreatePeriod(context.Background(), payroll.CreatePeriodRequest{
		Name:         "September 2025 B",
		CutoffStart:  "2025-09-16",
		CutoffEnd:    "2025-09-30",
		PayDate:      "2025-10-05",
		PayFrequency: "semi_monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, draft.Status)

	_, err = h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: draft.ID})
	assert.ErrorIs(t, err, payroll.ErrPeriodNotOpen)

	opened, err := h.orchestrator.OpenPeriod(context.Background(), payroll.PeriodTransitionRequest{PeriodID: draft.ID, ActorID: "operator-1"})
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusOpen, opened.Status)

	_, err = h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: "missing"})
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
}

func TestCreatePeriod_RejectsOverlappingCutoffs(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))
	ctx := context.Background()

	_, err := h.orchestrator.CreatePeriod(ctx, payroll.CreatePeriodRequest{
		Name:         "September 2025 A (rerun)",
		CutoffStart:  "2025-09-10",
		CutoffEnd:    "2025-09-25",
		PayDate:      "2025-09-30",
		PayFrequency: "semi_monthly",
	})
	assert.ErrorIs(t, err, payroll.ErrOverlappingPeriod)

	monthly, err := h.orchestrator.CreatePeriod(ctx, payroll.CreatePeriodRequest{
		Name:         "September 2025",
		CutoffStart:  "2025-09-01",
		CutoffEnd:    "2025-09-30",
		PayDate:      "2025-10-05",
		PayFrequency: "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, monthly.Status)

	_, err = h.orchestrator.CreatePeriod(ctx, payroll.CreatePeriodRequest{
		Name:         "September 2025 B",
		CutoffStart:  "2025-09-15",
		CutoffEnd:    "2025-09-30",
		PayDate:      "2025-10-05",
		PayFrequency: "semi_monthly",
	})
	assert.ErrorIs(t, err, payroll.ErrOverlappingPeriod, "cutoffs share the 15th")

	periods, err := h.orchestrator.ListPeriods(ctx)
	require.NoError(t, err)
	assert.Len(t, periods, 2)
}

func TestRun_PartialRunLeavesPeriodOpen(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"), staff("emp-2"))
	h.ready(t, "emp-1")
	h.ready(t, "emp-2")

	report, err := h.orchestrator.Run(context.Background(), payroll.RunRequest{
		PeriodID:    h.period.ID,
		EmployeeIDs: []string{"emp-1", "emp-ghost"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"emp-1"}, report.Succeeded)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "emp-ghost", report.Failures[0].EmployeeID)
	assert.Equal(t, payroll.PeriodStatusOpen, report.PeriodStatus)
}

func TestMarkComputed_OverrideRequiredForPending(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"), staff("emp-2"))
	h.ready(t, "emp-1")
	h.withAttendance(t, "emp-2")

	_, err := h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: h.period.ID})
	require.NoError(t, err)

	_, err = h.orchestrator.MarkComputed(context.Background(), h.transition("operator-1"))
	assert.ErrorIs(t, err, payroll.ErrPendingEntries)

	req := h.transition("operator-1")
	req.Override = true
	period, err := h.orchestrator.MarkComputed(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusComputed, period.Status)
	assert.Contains(t, h.audit.actions(), payroll.AuditPeriodComputedForced)
	assertDec(t, "15000.00", h.currentPeriod(t).GrossTotal)

	_, err = h.orchestrator.MarkComputed(context.Background(), req)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodTransition)
}

func TestLifecycle_CloseFreezesEntriesAndConsumesAdjustments(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))
	h.ready(t, "emp-1")
	adj, err := h.inputs.CreateAdjustment(context.Background(), payroll.CreateAdjustmentRequest{
		EmployeeID:    "emp-1",
		Category:      "earning",
		Code:          "SIGNING",
		Amount:        dec("2000"),
		Frequency:     "one_time",
		EffectiveFrom: "2025-09-01",
		IsTaxable:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, adj.RemainingOccurrences)
	assert.Equal(t, 1, *adj.RemainingOccurrences)

	report, err := h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: h.period.ID})
	require.NoError(t, err)
	require.Equal(t, payroll.PeriodStatusComputed, report.PeriodStatus)
	assertDec(t, "17000.00", report.Totals.Gross)

	_, err = h.orchestrator.ClosePeriod(context.Background(), h.transition("operator-1"))
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodTransition)

	approved, err := h.orchestrator.ApprovePeriod(context.Background(), h.transition("operator-1"))
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusApproved, approved.Status)

	before, err := h.entrySvc.GetEntry(context.Background(), h.period.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.EntryStatusApproved, before.Status)

	closed, err := h.orchestrator.ClosePeriod(context.Background(), h.transition("operator-1"))
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
	assert.Equal(t, 0, *h.adjustments.items[0].RemainingOccurrences)

	_, err = h.entrySvc.ComputeEntry(context.Background(), h.period.ID, "emp-1")
	assert.ErrorIs(t, err, payroll.ErrPeriodClosed)
	_, err = h.entrySvc.ReopenEntry(context.Background(), h.entryRequest("emp-1"))
	assert.ErrorIs(t, err, payroll.ErrPeriodClosed)
	_, err = h.orchestrator.ReopenPeriod(context.Background(), h.transition("operator-1"))
	assert.ErrorIs(t, err, payroll.ErrPeriodClosed)
	_, err = h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: h.period.ID})
	assert.ErrorIs(t, err, payroll.ErrPeriodClosed)

	after, err := h.entrySvc.GetEntry(context.Background(), h.period.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	assert.Equal(t, []payroll.AuditAction{
		payroll.AuditPeriodComputed,
		payroll.AuditPeriodApproved,
		payroll.AuditPeriodClosed,
	}, h.audit.actions())
}

func TestLifecycle_EntryLeavesCountedSetOnlyInOpenPeriod(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"), staff("emp-2"))
	h.ready(t, "emp-1")
	h.ready(t, "emp-2")
	ctx := context.Background()

	report, err := h.orchestrator.Run(ctx, payroll.RunRequest{PeriodID: h.period.ID})
	require.NoError(t, err)
	require.Equal(t, payroll.PeriodStatusComputed, report.PeriodStatus)
	assert.Equal(t, 2, report.Totals.EmployeeCount)

	_, err = h.entrySvc.RejectEntry(ctx, h.entryRequest("emp-2"))
	assert.ErrorIs(t, err, payroll.ErrInvalidEntryTransition)

	_, err = h.entrySvc.ApproveEntry(ctx, h.entryRequest("emp-1"))
	require.NoError(t, err)
	_, err = h.entrySvc.ReopenEntry(ctx, h.entryRequest("emp-1"))
	assert.ErrorIs(t, err, payroll.ErrInvalidEntryTransition)

	_, err = h.orchestrator.ReopenPeriod(ctx, h.transition("operator-1"))
	require.NoError(t, err)
	rejected, err := h.entrySvc.RejectEntry(ctx, h.entryRequest("emp-2"))
	require.NoError(t, err)
	assert.Equal(t, payroll.EntryStatusDraft, rejected.Status)

	req := h.transition("operator-1")
	req.Override = true
	computed, err := h.orchestrator.MarkComputed(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, computed.EmployeeCount)

	approved, err := h.orchestrator.ApprovePeriod(ctx, h.transition("operator-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, approved.EmployeeCount)
	assertDec(t, "15000.00", approved.GrossTotal)

	closed, err := h.orchestrator.ClosePeriod(ctx, h.transition("owner-1"))
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusClosed, closed.Status)
	assert.Equal(t, 1, closed.EmployeeCount)
	assertDec(t, "15000.00", closed.GrossTotal)
}

func TestClosePeriod_RejectsWhileComputationInFlight(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))
	h.ready(t, "emp-1")
	_, err := h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: h.period.ID})
	require.NoError(t, err)
	_, err = h.orchestrator.ApprovePeriod(context.Background(), h.transition("operator-1"))
	require.NoError(t, err)

	t.Run("row lock held", func(t *testing.T) {
		h.periods.locked = true
		defer func() { h.periods.locked = false }()

		_, err := h.orchestrator.ClosePeriod(context.Background(), h.transition("operator-1"))
		assert.ErrorIs(t, err, payroll.ErrComputationInFlight)
	})

	t.Run("run in this process", func(t *testing.T) {
		inflight := h.orchestrator.(*runOrchestratorImpl).inflight
		inflight.begin(h.period.ID)
		defer inflight.end(h.period.ID)

		_, err := h.orchestrator.ClosePeriod(context.Background(), h.transition("operator-1"))
		assert.ErrorIs(t, err, payroll.ErrComputationInFlight)
	})

	closed, err := h.orchestrator.ClosePeriod(context.Background(), h.transition("operator-1"))
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusClosed, closed.Status)
}

func TestReopenPeriod(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))
	h.ready(t, "emp-1")

	_, err := h.orchestrator.ReopenPeriod(context.Background(), h.transition("operator-1"))
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodTransition)

	_, err = h.orchestrator.Run(context.Background(), payroll.RunRequest{PeriodID: h.period.ID})
	require.NoError(t, err)

	reason := "late punch corrections"
	req := h.transition("operator-1")
	req.Reason = &reason
	period, err := h.orchestrator.ReopenPeriod(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusOpen, period.Status)

	events, err := h.orchestrator.ListAuditEvents(context.Background(), h.period.ID)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, payroll.AuditPeriodReopened, last.Action)
	assert.Equal(t, "computed", last.FromStatus)
	assert.Equal(t, &reason, last.Reason)
}

func TestEntry_ApprovedEntryRequiresReopen(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))
	h.ready(t, "emp-1")
	ctx := context.Background()

	entry, err := h.entrySvc.ComputeEntry(ctx, h.period.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.EntryStatusComputed, entry.Status)
	assert.NotNil(t, entry.ComputedAt)

	approved, err := h.entrySvc.ApproveEntry(ctx, h.entryRequest("emp-1"))
	require.NoError(t, err)
	assert.Equal(t, payroll.EntryStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "operator-1", *approved.ApprovedBy)

	_, err = h.entrySvc.ComputeEntry(ctx, h.period.ID, "emp-1")
	assert.ErrorIs(t, err, payroll.ErrEntryApproved)

	reopened, err := h.entrySvc.ReopenEntry(ctx, h.entryRequest("emp-1"))
	require.NoError(t, err)
	assert.Equal(t, payroll.EntryStatusDraft, reopened.Status)
	assert.Contains(t, h.audit.actions(), payroll.AuditEntryReopened)

	recomputed, err := h.entrySvc.ComputeEntry(ctx, h.period.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, recomputed.ID)
	assertDec(t, "13335.05", recomputed.NetPay)
}

func TestEntry_RejectReturnsToDraft(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))
	h.ready(t, "emp-1")
	ctx := context.Background()

	_, err := h.entrySvc.ComputeEntry(ctx, h.period.ID, "emp-1")
	require.NoError(t, err)

	rejected, err := h.entrySvc.RejectEntry(ctx, h.entryRequest("emp-1"))
	require.NoError(t, err)
	assert.Equal(t, payroll.EntryStatusDraft, rejected.Status)

	_, err = h.entrySvc.RejectEntry(ctx, h.entryRequest("emp-1"))
	assert.ErrorIs(t, err, payroll.ErrInvalidEntryTransition)
	_, err = h.entrySvc.ApproveEntry(ctx, h.entryRequest("emp-1"))
	assert.ErrorIs(t, err, payroll.ErrInvalidEntryTransition)
}

func TestEntry_FailedRecomputeDropsStaleEntry(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))
	h.ready(t, "emp-1")
	ctx := context.Background()

	_, err := h.entrySvc.ComputeEntry(ctx, h.period.ID, "emp-1")
	require.NoError(t, err)

	h.flagForReview(t, "emp-1", day(9))
	_, err = h.entrySvc.ComputeEntry(ctx, h.period.ID, "emp-1")
	assert.ErrorIs(t, err, payroll.ErrUnresolvedTimeRecords)

	entry, err := h.entrySvc.GetEntry(ctx, h.period.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.EntryStatusDraft, entry.Status)

	counted, err := h.entries.CountedEmployeeIDs(ctx, h.period.ID)
	require.NoError(t, err)
	assert.Empty(t, counted)
}

func TestInputService_Validation(t *testing.T) {
	h := newPayrollHarness(t, staff("emp-1"))
	ctx := context.Background()

	_, err := h.inputs.SetCompensation(ctx, payroll.SetCompensationRequest{EmployeeID: "emp-1", RateType: "hourly"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "rate_type")
	assert.Contains(t, verrs.ToMap(), "basic_salary")

	_, err = h.inputs.SetCompensation(ctx, payroll.SetCompensationRequest{
		EmployeeID:    "emp-404",
		BasicSalary:   dec("25000"),
		RateType:      "monthly",
		EffectiveDate: "2025-01-01",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	comp, err := h.inputs.SetCompensation(ctx, payroll.SetCompensationRequest{
		EmployeeID:    "emp-1",
		BasicSalary:   dec("25000"),
		RateType:      "monthly",
		EffectiveDate: "2025-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.RateTypeMonthly, comp.RateType)

	_, err = h.inputs.CreateAdjustment(ctx, payroll.CreateAdjustmentRequest{
		EmployeeID:    "emp-1",
		Category:      "earning",
		Code:          "X",
		Amount:        dec("10"),
		Frequency:     "recurring",
		EffectiveFrom: "2025-09-10",
		EffectiveTo:   strPtr("2025-09-01"),
	})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "effective_to")
}

func strPtr(s string) *string { return &s }
