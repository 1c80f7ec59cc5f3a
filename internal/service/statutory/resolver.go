package statutory

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

type contributionResolverImpl struct {
	tables statutory.TableReader
}

// Resolve implements statutory.ContributionResolver. Shares are monthly and unrounded;
// the caller prorates to the pay period and rounds once.
func (r *contributionResolverImpl) Resolve(ctx context.Context, scheme statutory.Scheme, salary decimal.Decimal, asOf time.Time) (statutory.Contribution, error) {
	if salary.IsNegative() {
		salary = decimal.Zero
	}

	switch scheme {
	case statutory.SchemeSSS:
		table, err := r.tables.ActiveSSSTable(ctx, asOf)
		if err != nil {
			return statutory.Contribution{}, fmt.Errorf("failed to resolve sss table: %w", err)
		}
		bracket, err := table.Lookup(salary)
		if err != nil {
			return statutory.Contribution{}, err
		}
		return statutory.Contribution{
			Scheme:        scheme,
			TableID:       table.ID,
			Basis:         bracket.MonthlySalaryCredit,
			EmployeeShare: bracket.EmployeeShare,
			EmployerShare: bracket.EmployerShare.Add(bracket.EmployeeCompensation),
		}, nil

	case statutory.SchemePhilHealth:
		table, err := r.tables.ActivePhilHealthTable(ctx, asOf)
		if err != nil {
			return statutory.Contribution{}, fmt.Errorf("failed to resolve philhealth table: %w", err)
		}
		tier, err := table.Lookup(salary)
		if err != nil {
			return statutory.Contribution{}, err
		}
		basis := clamp(salary, tier.SalaryFloor, tier.SalaryCeiling)
		premium := basis.Mul(tier.PremiumRate)
		return statutory.Contribution{
			Scheme:        scheme,
			TableID:       table.ID,
			Basis:         basis,
			EmployeeShare: clamp(premium.Mul(tier.EmployeeShareRate), tier.MinContribution, tier.MaxContribution),
			EmployerShare: clamp(premium.Mul(tier.EmployerShareRate), tier.MinContribution, tier.MaxContribution),
		}, nil

	case statutory.SchemePagIBIG:
		table, err := r.tables.ActivePagIBIGTable(ctx, asOf)
		if err != nil {
			return statutory.Contribution{}, fmt.Errorf("failed to resolve pagibig table: %w", err)
		}
		tier, err := table.Lookup(salary)
		if err != nil {
			return statutory.Contribution{}, err
		}
		basis := decimal.Min(salary, tier.MaxFundSalary)
		return statutory.Contribution{
			Scheme:        scheme,
			TableID:       table.ID,
			Basis:         basis,
			EmployeeShare: basis.Mul(tier.EmployeeRate),
			EmployerShare: basis.Mul(tier.EmployerRate),
		}, nil
	}

	return statutory.Contribution{}, fmt.Errorf("%w: %q", statutory.ErrUnknownScheme, scheme)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if hi.IsPositive() && v.GreaterThan(hi) {
		return hi
	}
	return v
}

// NewContributionResolver creates a resolver over the given tables. Pass a
// NewRunCache reader to resolve each table once per payroll run.
func NewContributionResolver(tables statutory.TableReader) statutory.ContributionResolver {
	return &contributionResolverImpl{tables: tables}
}
