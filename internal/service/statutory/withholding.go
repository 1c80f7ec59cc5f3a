package statutory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

type withholdingCalculatorImpl struct {
	tables statutory.TableReader
}

// Compute implements statutory.WithholdingCalculator.
// tax = base_tax + excess_rate * (taxable - bracket.min), rounded half-up to 2dp once.
func (c *withholdingCalculatorImpl) Compute(ctx context.Context, taxable decimal.Decimal, payPeriod statutory.PayPeriodType, asOf time.Time) (decimal.Decimal, error) {
	if !slices.Contains(statutory.PayPeriodValues, string(payPeriod)) {
		return decimal.Zero, fmt.Errorf("%w: %q", statutory.ErrUnknownPayPeriod, payPeriod)
	}

	// The table is resolved even for zero income so a missing table is never masked.
	table, err := c.tables.ActiveWithholdingTable(ctx, payPeriod, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve %s withholding table: %w", payPeriod, err)
	}
	if !taxable.IsPositive() {
		return decimal.Zero, nil
	}

	bracket, ok, err := table.Lookup(taxable)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, nil
	}

	tax := bracket.BaseTax.Add(bracket.ExcessRate.Mul(taxable.Sub(bracket.Min)))
	return tax.Round(2), nil
}

func NewWithholdingCalculator(tables statutory.TableReader) statutory.WithholdingCalculator {
	return &withholdingCalculatorImpl{tables: tables}
}
