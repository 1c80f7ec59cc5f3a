package payroll

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	"github.com/shopspring/decimal"
)

type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixtureTables serves the seed tables from their effective date onward.
type fixtureTables struct{}

func (fixtureTables) ActiveSSSTable(_ context.Context, asOf time.Time) (statutory.SSSTable, error) {
	if asOf.Before(fixtures.SeedEffectiveFrom) {
		return statutory.SSSTable{}, statutory.ErrNoActiveTable
	}
	t := fixtures.GetDefaultSSSTable()
	t.ID = "sss-2025"
	return t, nil
}

func (fixtureTables) ActivePhilHealthTable(_ context.Context, asOf time.Time) (statutory.PhilHealthTable, error) {
	if asOf.Before(fixtures.SeedEffectiveFrom) {
		return statutory.PhilHealthTable{}, statutory.ErrNoActiveTable
	}
	t := fixtures.GetDefaultPhilHealthTable()
	t.ID = "philhealth-2025"
	return t, nil
}

func (fixtureTables) ActivePagIBIGTable(_ context.Context, asOf time.Time) (statutory.PagIBIGTable, error) {
	if asOf.Before(fixtures.SeedEffectiveFrom) {
		return statutory.PagIBIGTable{}, statutory.ErrNoActiveTable
	}
	t := fixtures.GetDefaultPagIBIGTable()
	t.ID = "pagibig-2025"
	return t, nil
}

func (fixtureTables) ActiveWithholdingTable(_ context.Context, payPeriod statutory.PayPeriodType, asOf time.Time) (statutory.WithholdingTaxTable, error) {
	if asOf.Before(fixtures.SeedEffectiveFrom) {
		return statutory.WithholdingTaxTable{}, statutory.ErrNoActiveTable
	}
	for _, t := range fixtures.GetDefaultWithholdingTables() {
		if t.PayPeriod == payPeriod {
			t.ID = "wht-" + string(payPeriod)
			return t, nil
		}
	}
	return statutory.WithholdingTaxTable{}, statutory.ErrNoActiveTable
}

type memoryEmployees []employee.Employee

func (m memoryEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, e := range m {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m memoryEmployees) ListEmployedDuring(_ context.Context, from, to time.Time) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range m {
		if e.EmployedDuring(from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memoryEmployees) GetActive(context.Context) ([]employee.Employee, error) {
	return m, nil
}

type memorySchedules map[string]schedule.WorkSchedule

func (m memorySchedules) Create(_ context.Context, ws schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	m[ws.ID] = ws
	return ws, nil
}

func (m memorySchedules) GetByID(_ context.Context, id string) (schedule.WorkSchedule, error) {
	ws, ok := m[id]
	if !ok {
		return schedule.WorkSchedule{}, schedule.ErrWorkScheduleNotFound
	}
	return ws, nil
}

func (m memorySchedules) List(context.Context) ([]schedule.WorkSchedule, error) {
	var out []schedule.WorkSchedule
	for _, ws := range m {
		out = append(out, ws)
	}
	return out, nil
}

type memoryTimeRecords struct {
	mu    sync.Mutex
	items map[string]attendance.DailyTimeRecord
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(dateLayout)
}

func (m *memoryTimeRecords) Upsert(_ context.Context, rec attendance.DailyTimeRecord) (attendance.DailyTimeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]attendance.DailyTimeRecord)
	}
	m.items[recordKey(rec.EmployeeID, rec.Date)] = rec
	return rec, nil
}

func (m *memoryTimeRecords) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (attendance.DailyTimeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.items[recordKey(employeeID, date)]
	if !ok {
		return attendance.DailyTimeRecord{}, attendance.ErrDailyTimeRecordNotFound
	}
	return rec, nil
}

func (m *memoryTimeRecords) ListByEmployeeRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.DailyTimeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.DailyTimeRecord
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if rec, ok := m.items[recordKey(employeeID, d)]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryTimeRecords) SetOvertimeApproved(_ context.Context, employeeID string, date time.Time, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey(employeeID, date)
	rec, ok := m.items[key]
	if !ok {
		return attendance.ErrDailyTimeRecordNotFound
	}
	rec.OvertimeApproved = approved
	m.items[key] = rec
	return nil
}

type memoryCompensation struct {
	mu    sync.Mutex
	items []payroll.Compensation
}

func (m *memoryCompensation) GetEffective(_ context.Context, employeeID string, asOf time.Time) (payroll.Compensation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		best  payroll.Compensation
		found bool
	)
	for _, c := range m.items {
		if c.EmployeeID == employeeID && !c.EffectiveDate.After(asOf) && (!found || c.EffectiveDate.After(best.EffectiveDate)) {
			best, found = c, true
		}
	}
	if !found {
		return payroll.Compensation{}, payroll.ErrNoCompensation
	}
	return best, nil
}

func (m *memoryCompensation) Create(_ context.Context, c payroll.Compensation) (payroll.Compensation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = fmt.Sprintf("comp-%d", len(m.items)+1)
	m.items = append(m.items, c)
	return c, nil
}

type memoryAdjustments struct {
	mu    sync.Mutex
	items []payroll.Adjustment
}

func (m *memoryAdjustments) ListApplicable(_ context.Context, employeeID string, from, to time.Time) ([]payroll.Adjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.Adjustment
	for _, a := range m.items {
		if a.EmployeeID == employeeID && a.AppliesTo(from, to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryAdjustments) Create(_ context.Context, a payroll.Adjustment) (payroll.Adjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = fmt.Sprintf("adj-%d", len(m.items)+1)
	m.items = append(m.items, a)
	return a, nil
}

func (m *memoryAdjustments) Consume(_ context.Context, id string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.items {
		if a.ID != id {
			continue
		}
		if a.RemainingOccurrences != nil {
			n := *a.RemainingOccurrences - 1
			m.items[i].RemainingOccurrences = &n
		}
		if a.RemainingBalance != nil {
			b := a.RemainingBalance.Sub(amount)
			m.items[i].RemainingBalance = &b
		}
		return nil
	}
	return payroll.ErrAdjustmentNotFound
}

type memoryEntries struct {
	mu    sync.Mutex
	items map[string]payroll.Entry
	seq   int
}

func entryKey(periodID, employeeID string) string {
	return periodID + "|" + employeeID
}

func (m *memoryEntries) GetByPeriodAndEmployee(_ context.Context, periodID, employeeID string) (payroll.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[entryKey(periodID, employeeID)]
	if !ok {
		return payroll.Entry{}, payroll.ErrEntryNotFound
	}
	return e, nil
}

func (m *memoryEntries) ListByPeriod(_ context.Context, periodID string) ([]payroll.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.Entry
	for _, e := range m.items {
		if e.PeriodID == periodID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b payroll.Entry) int { return strings.Compare(a.EmployeeID, b.EmployeeID) })
	return out, nil
}

func (m *memoryEntries) Save(_ context.Context, e payroll.Entry) (payroll.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]payroll.Entry)
	}
	key := entryKey(e.PeriodID, e.EmployeeID)
	if prev, ok := m.items[key]; ok {
		e.ID = prev.ID
	} else {
		m.seq++
		e.ID = fmt.Sprintf("entry-%d", m.seq)
	}
	m.items[key] = e
	return e, nil
}

func (m *memoryEntries) UpdateStatus(_ context.Context, id string, from, to payroll.EntryStatus, actorID *string) (payroll.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.items {
		if e.ID != id {
			continue
		}
		if e.Status != from {
			return payroll.Entry{}, payroll.ErrInvalidEntryTransition
		}
		e.Status = to
		e.ApprovedBy = actorID
		if to == payroll.EntryStatusApproved {
			now := time.Now()
			e.ApprovedAt = &now
		} else {
			e.ApprovedAt = nil
		}
		m.items[key] = e
		return e, nil
	}
	return payroll.Entry{}, payroll.ErrEntryNotFound
}

func (m *memoryEntries) ApproveComputed(_ context.Context, periodID, actorID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, e := range m.items {
		if e.PeriodID == periodID && e.Status == payroll.EntryStatusComputed {
			e.Status = payroll.EntryStatusApproved
			e.ApprovedBy = &actorID
			m.items[key] = e
			n++
		}
	}
	return n, nil
}

func (m *memoryEntries) CountedEmployeeIDs(_ context.Context, periodID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.items {
		if e.PeriodID == periodID && e.Status.Counted() {
			out = append(out, e.EmployeeID)
		}
	}
	return out, nil
}

type memoryPeriods struct {
	mu      sync.Mutex
	items   map[string]payroll.Period
	entries *memoryEntries
	// locked simulates a concurrent FOR SHARE holder.
	locked bool
}

func (m *memoryPeriods) Create(_ context.Context, p payroll.Period) (payroll.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]payroll.Period)
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("period-%d", len(m.items)+1)
	}
	m.items[p.ID] = p
	return p, nil
}

func (m *memoryPeriods) GetByID(_ context.Context, id string) (payroll.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (m *memoryPeriods) List(context.Context) ([]payroll.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.Period
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryPeriods) GetForShare(ctx context.Context, id string) (payroll.Period, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryPeriods) GetForClose(ctx context.Context, id string) (payroll.Period, error) {
	if m.locked {
		return payroll.Period{}, payroll.ErrComputationInFlight
	}
	return m.GetByID(ctx, id)
}

func (m *memoryPeriods) UpdateStatus(_ context.Context, id string, from, to payroll.PeriodStatus) (payroll.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	if p.Status != from {
		return payroll.Period{}, payroll.ErrInvalidPeriodTransition
	}
	p.Status = to
	if to == payroll.PeriodStatusClosed {
		now := time.Now()
		p.ClosedAt = &now
	}
	m.items[id] = p
	return p, nil
}

func (m *memoryPeriods) RecomputeTotals(ctx context.Context, id string) (payroll.PeriodTotals, error) {
	entries, err := m.entries.ListByPeriod(ctx, id)
	if err != nil {
		return payroll.PeriodTotals{}, err
	}
	var totals payroll.PeriodTotals
	for _, e := range entries {
		if !e.Status.Counted() {
			continue
		}
		totals.Gross = totals.Gross.Add(e.GrossPay)
		totals.Deductions = totals.Deductions.Add(e.TotalDeductions)
		totals.Net = totals.Net.Add(e.NetPay)
		totals.EmployeeCount++
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.items[id]
	p.GrossTotal, p.DeductionsTotal, p.NetTotal, p.EmployeeCount = totals.Gross, totals.Deductions, totals.Net, totals.EmployeeCount
	m.items[id] = p
	return totals, nil
}

type memoryRuns struct {
	mu    sync.Mutex
	items []payroll.RunRecord
}

func (m *memoryRuns) Create(_ context.Context, r payroll.RunRecord) (payroll.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, r)
	return r, nil
}

func (m *memoryRuns) ListByPeriod(_ context.Context, periodID string) ([]payroll.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.RunRecord
	for _, r := range m.items {
		if r.PeriodID == periodID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memoryAudit struct {
	mu    sync.Mutex
	items []payroll.AuditEvent
}

func (m *memoryAudit) Record(_ context.Context, e payroll.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, e)
	return nil
}

func (m *memoryAudit) ListByPeriod(_ context.Context, periodID string) ([]payroll.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.AuditEvent
	for _, e := range m.items {
		if e.PeriodID == periodID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryAudit) actions() []payroll.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.AuditAction
	for _, e := range m.items {
		out = append(out, e.Action)
	}
	return out
}
