package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PeriodRepository interface {
	Create(ctx context.Context, period Period) (Period, error)
	GetByID(ctx context.Context, id string) (Period, error)
	List(ctx context.Context) ([]Period, error)
	// GetForShare locks the period row FOR SHARE in the current transaction.
	// Entry writes hold it so a close cannot interleave with them.
	GetForShare(ctx context.Context, id string) (Period, error)
	// GetForClose locks the row FOR UPDATE NOWAIT and returns
	// ErrComputationInFlight when an entry transaction holds it.
	GetForClose(ctx context.Context, id string) (Period, error)
	// UpdateStatus moves the period from -> to and fails with
	// ErrInvalidPeriodTransition when the row is not in from.
	UpdateStatus(ctx context.Context, id string, from, to PeriodStatus) (Period, error)
	// RecomputeTotals aggregates counted entries in one statement and stores the result.
	RecomputeTotals(ctx context.Context, id string) (PeriodTotals, error)
}

type EntryRepository interface {
	// GetByPeriodAndEmployee returns the entry with its line items.
	GetByPeriodAndEmployee(ctx context.Context, periodID, employeeID string) (Entry, error)
	ListByPeriod(ctx context.Context, periodID string) ([]Entry, error)
	// Save upserts the entry by (period, employee) and replaces every line item.
	Save(ctx context.Context, entry Entry) (Entry, error)
	// UpdateStatus fails with ErrInvalidEntryTransition when the row is not in from.
	UpdateStatus(ctx context.Context, id string, from, to EntryStatus, actorID *string) (Entry, error)
	// ApproveComputed approves every computed entry of the period.
	ApproveComputed(ctx context.Context, periodID, actorID string) (int64, error)
	// CountedEmployeeIDs lists employees whose entry is computed or approved.
	CountedEmployeeIDs(ctx context.Context, periodID string) ([]string, error)
}

type CompensationRepository interface {
	// GetEffective returns the latest record with effective_date <= asOf, or ErrNoCompensation.
	GetEffective(ctx context.Context, employeeID string, asOf time.Time) (Compensation, error)
	Create(ctx context.Context, compensation Compensation) (Compensation, error)
}

type AdjustmentRepository interface {
	// ListApplicable returns active adjustments whose window intersects [from, to].
	ListApplicable(ctx context.Context, employeeID string, from, to time.Time) ([]Adjustment, error)
	Create(ctx context.Context, adjustment Adjustment) (Adjustment, error)
	// Consume decrements remaining occurrences by one and remaining balance by amount.
	Consume(ctx context.Context, id string, amount decimal.Decimal) error
}

type RunRepository interface {
	Create(ctx context.Context, run RunRecord) (RunRecord, error)
	ListByPeriod(ctx context.Context, periodID string) ([]RunRecord, error)
}

type AuditRepository interface {
	Record(ctx context.Context, event AuditEvent) error
	ListByPeriod(ctx context.Context, periodID string) ([]AuditEvent, error)
}
