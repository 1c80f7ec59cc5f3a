package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft    PeriodStatus = "draft"
	PeriodStatusOpen     PeriodStatus = "open"
	PeriodStatusComputed PeriodStatus = "computed"
	PeriodStatusApproved PeriodStatus = "approved"
	PeriodStatusClosed   PeriodStatus = "closed"
)

// Closed is terminal. Moving back to open from computed or approved is a
// logged reopen.
var periodTransitions = map[PeriodStatus][]PeriodStatus{
	PeriodStatusDraft:    {PeriodStatusOpen},
	PeriodStatusOpen:     {PeriodStatusComputed},
	PeriodStatusComputed: {PeriodStatusApproved, PeriodStatusOpen},
	PeriodStatusApproved: {PeriodStatusClosed, PeriodStatusOpen},
}

// CanTransition reports whether the period state machine allows s -> to.
func (s PeriodStatus) CanTransition(to PeriodStatus) bool {
	for _, next := range periodTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Period is one pay run over [CutoffStart, CutoffEnd].
type Period struct {
	ID           string
	Name         string
	CutoffStart  time.Time
	CutoffEnd    time.Time
	PayDate      time.Time
	PayFrequency statutory.PayPeriodType
	Status       PeriodStatus

	// Totals are written only by the aggregation pass after a run.
	GrossTotal      decimal.Decimal
	DeductionsTotal decimal.Decimal
	NetTotal        decimal.Decimal
	EmployeeCount   int

	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overlaps reports whether both periods share a pay frequency and at least one cutoff day.
func (p Period) Overlaps(other Period) bool {
	if p.PayFrequency != other.PayFrequency {
		return false
	}
	return !p.CutoffStart.After(other.CutoffEnd) && !other.CutoffStart.After(p.CutoffEnd)
}

// PeriodTotals is the result of the aggregation pass.
type PeriodTotals struct {
	Gross         decimal.Decimal
	Deductions    decimal.Decimal
	Net           decimal.Decimal
	EmployeeCount int
}

// EntryStatus enum
type EntryStatus string

const (
	EntryStatusDraft    EntryStatus = "draft"
	EntryStatusComputed EntryStatus = "computed"
	EntryStatusApproved EntryStatus = "approved"
)

// Counted reports whether the entry contributes to period totals.
func (s EntryStatus) Counted() bool {
	return s == EntryStatusComputed || s == EntryStatusApproved
}

// RateType says how BasicSalary is quoted.
type RateType string

const (
	RateTypeMonthly RateType = "monthly"
	RateTypeDaily   RateType = "daily"
)

// Compensation is effective from EffectiveDate until superseded by a later record.
type Compensation struct {
	ID            string
	EmployeeID    string
	BasicSalary   decimal.Decimal
	RateType      RateType
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// TimeSummary aggregates the cutoff's DTRs.
type TimeSummary struct {
	PresentDays             int `json:"present_days"`
	AbsentDays              int `json:"absent_days"`
	RestDays                int `json:"rest_days"`
	RestDaysWorked          int `json:"rest_days_worked"`
	HolidayDays             int `json:"holiday_days"`
	UnworkedRegularHolidays int `json:"unworked_regular_holidays"`

	WorkMinutes               int `json:"work_minutes"`
	LateMinutes               int `json:"late_minutes"`
	UndertimeMinutes          int `json:"undertime_minutes"`
	OvertimeMinutes           int `json:"overtime_minutes"`
	UnapprovedOvertimeMinutes int `json:"unapproved_overtime_minutes"`
	NightDiffMinutes          int `json:"night_diff_minutes"`
	HolidayWorkedMinutes      int `json:"holiday_worked_minutes"`
}

// EarningType enum
type EarningType string

const (
	EarningBasic           EarningType = "basic"
	EarningOvertime        EarningType = "overtime"
	EarningRestDayOvertime EarningType = "rest_day_overtime"
	EarningNightDiff       EarningType = "night_differential"
	EarningHolidayPremium  EarningType = "holiday_premium"
	EarningAdjustment      EarningType = "adjustment"
)

// DeductionType enum
type DeductionType string

const (
	DeductionSSS            DeductionType = "sss"
	DeductionPhilHealth     DeductionType = "philhealth"
	DeductionPagIBIG        DeductionType = "pagibig"
	DeductionWithholdingTax DeductionType = "withholding_tax"
	DeductionTardiness      DeductionType = "tardiness"
	DeductionAdjustment     DeductionType = "adjustment"
)

// Earning is one ordered line item. Amount is rounded once to 2dp.
type Earning struct {
	ID           string
	EntryID      string
	Type         EarningType
	Code         string
	Description  string
	Basis        decimal.Decimal
	Rate         decimal.Decimal
	Amount       decimal.Decimal
	Taxable      bool
	AdjustmentID *string
	SortOrder    int
}

// Deduction is one ordered line item. Amount is the employee share and counts
// toward TotalDeductions; EmployerAmount is informational.
type Deduction struct {
	ID              string
	EntryID         string
	Type            DeductionType
	Code            string
	Description     string
	Basis           decimal.Decimal
	Rate            decimal.Decimal
	Amount          decimal.Decimal
	EmployerAmount  decimal.Decimal
	IsEmployeeShare bool
	IsEmployerShare bool
	AdjustmentID    *string
	SortOrder       int
}

// Entry is the per-(period, employee) payroll snapshot.
type Entry struct {
	ID         string
	PeriodID   string
	EmployeeID string

	// Snapshot at computation time.
	EmployeeCode string
	EmployeeName string
	BasicSalary  decimal.Decimal
	RateType     RateType
	Summary      TimeSummary

	GrossPay        decimal.Decimal
	TaxableIncome   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal

	Status     EntryStatus
	Earnings   []Earning
	Deductions []Deduction

	ComputedAt *time.Time
	ApprovedAt *time.Time
	ApprovedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reconcile checks that line items sum exactly to the entry totals.
func (e Entry) Reconcile() error {
	gross := decimal.Zero
	for _, l := range e.Earnings {
		gross = gross.Add(l.Amount)
	}
	deductions := decimal.Zero
	for _, l := range e.Deductions {
		deductions = deductions.Add(l.Amount)
	}

	switch {
	case !gross.Equal(e.GrossPay):
		return &LineItemMismatchError{Field: "gross_pay", Total: e.GrossPay, LineSum: gross}
	case !deductions.Equal(e.TotalDeductions):
		return &LineItemMismatchError{Field: "total_deductions", Total: e.TotalDeductions, LineSum: deductions}
	case !e.GrossPay.Sub(e.TotalDeductions).Equal(e.NetPay):
		return &LineItemMismatchError{Field: "net_pay", Total: e.NetPay, LineSum: e.GrossPay.Sub(e.TotalDeductions)}
	}
	return nil
}

// AdjustmentCategory enum
type AdjustmentCategory string

const (
	AdjustmentEarning   AdjustmentCategory = "earning"
	AdjustmentDeduction AdjustmentCategory = "deduction"
)

// AdjustmentFrequency enum
type AdjustmentFrequency string

const (
	AdjustmentOneTime   AdjustmentFrequency = "one_time"
	AdjustmentRecurring AdjustmentFrequency = "recurring"
)

// Adjustment is an earning or deduction produced outside the pipeline
// (allowances, bonuses, loan amortization). Occurrences and balance are
// consumed when the period closes.
type Adjustment struct {
	ID                   string
	EmployeeID           string
	Category             AdjustmentCategory
	Code                 string
	Description          string
	Amount               decimal.Decimal
	Frequency            AdjustmentFrequency
	EffectiveFrom        time.Time
	EffectiveTo          *time.Time
	RemainingOccurrences *int
	RemainingBalance     *decimal.Decimal
	IsTaxable            bool
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// AppliesTo reports whether the adjustment is live for a cutoff.
func (a Adjustment) AppliesTo(from, to time.Time) bool {
	if !a.IsActive || a.EffectiveFrom.After(to) {
		return false
	}
	if a.EffectiveTo != nil && a.EffectiveTo.Before(from) {
		return false
	}
	if a.RemainingOccurrences != nil && *a.RemainingOccurrences <= 0 {
		return false
	}
	if a.RemainingBalance != nil && !a.RemainingBalance.IsPositive() {
		return false
	}
	return true
}

// PeriodAmount is the amount applied in one period, capped at the remaining balance.
func (a Adjustment) PeriodAmount() decimal.Decimal {
	if a.RemainingBalance != nil && a.RemainingBalance.LessThan(a.Amount) {
		return *a.RemainingBalance
	}
	return a.Amount
}

// RunRecord is the persisted report of one orchestrator run.
type RunRecord struct {
	ID         string
	PeriodID   string
	StartedAt  time.Time
	FinishedAt time.Time
	Requested  int
	Succeeded  int
	Failures   []EmployeeFailure
	Cancelled  bool
	Totals     PeriodTotals
}

// EmployeeFailure is one entry of the failing-employee list surfaced after a run.
type EmployeeFailure struct {
	EmployeeID string      `json:"employee_id"`
	Kind       FailureKind `json:"kind"`
	Reason     string      `json:"reason"`
}

// RunReport is returned to the caller of a run.
type RunReport struct {
	RunID        string
	PeriodID     string
	Requested    int
	Succeeded    []string
	Failures     []EmployeeFailure
	NotStarted   []string
	Totals       PeriodTotals
	PeriodStatus PeriodStatus
}

// AuditAction enum
type AuditAction string

const (
	AuditPeriodOpened         AuditAction = "period_opened"
	AuditPeriodComputed       AuditAction = "period_computed"
	AuditPeriodComputedForced AuditAction = "period_computed_override"
	AuditPeriodApproved       AuditAction = "period_approved"
	AuditPeriodReopened       AuditAction = "period_reopened"
	AuditPeriodClosed         AuditAction = "period_closed"
	AuditEntryApproved        AuditAction = "entry_approved"
	AuditEntryRejected        AuditAction = "entry_rejected"
	AuditEntryReopened        AuditAction = "entry_reopened"
)

// AuditEvent records a state transition and who made it.
type AuditEvent struct {
	ID         string
	PeriodID   string
	EntryID    *string
	Action     AuditAction
	FromStatus string
	ToStatus   string
	ActorID    string
	Reason     *string
	CreatedAt  time.Time
}
