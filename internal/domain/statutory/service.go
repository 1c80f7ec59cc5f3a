package statutory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Contribution is the monthly employee/employer split for one scheme.
type Contribution struct {
	Scheme        Scheme
	TableID       string
	Basis         decimal.Decimal
	EmployeeShare decimal.Decimal
	// EmployerShare includes the SSS EC contribution.
	EmployerShare decimal.Decimal
}

// ContributionResolver selects the active table for a scheme and date and
// performs the bracket lookup.
type ContributionResolver interface {
	Resolve(ctx context.Context, scheme Scheme, salary decimal.Decimal, asOf time.Time) (Contribution, error)
}

// WithholdingCalculator computes withholding tax for one pay period.
type WithholdingCalculator interface {
	Compute(ctx context.Context, taxable decimal.Decimal, payPeriod PayPeriodType, asOf time.Time) (decimal.Decimal, error)
}

// TableService manages table versions.
type TableService interface {
	// EnsureSeedTables inserts the seed versions for any scheme or pay period
	// that has no active table on the seed effective date.
	EnsureSeedTables(ctx context.Context) error
}
