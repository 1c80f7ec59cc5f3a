package statutory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Scheme is a statutory contribution scheme.
type Scheme string

const (
	SchemeSSS        Scheme = "sss"
	SchemePhilHealth Scheme = "philhealth"
	SchemePagIBIG    Scheme = "pagibig"
)

var Schemes = []Scheme{SchemeSSS, SchemePhilHealth, SchemePagIBIG}

// TableVersion is shared by all effective-dated tables. Versions are append-only;
// retiring a version flips IsActive rather than editing brackets.
type TableVersion struct {
	ID            string
	EffectiveFrom time.Time
	IsActive      bool
	CreatedAt     time.Time
}

// SSSBracket maps a compensation range to a Monthly Salary Credit and fixed monthly shares.
type SSSBracket struct {
	Range
	MonthlySalaryCredit decimal.Decimal `json:"monthly_salary_credit"`
	EmployeeShare       decimal.Decimal `json:"employee_share"`
	EmployerShare       decimal.Decimal `json:"employer_share"`
	// EmployeeCompensation is the employer-only EC contribution.
	EmployeeCompensation decimal.Decimal `json:"ec_share"`
}

type SSSTable struct {
	TableVersion
	Brackets []SSSBracket
}

// PhilHealthTier applies PremiumRate to the salary clamped to [SalaryFloor, SalaryCeiling];
// each share is then clamped to [MinContribution, MaxContribution].
type PhilHealthTier struct {
	Range
	PremiumRate       decimal.Decimal `json:"premium_rate"`
	SalaryFloor       decimal.Decimal `json:"salary_floor"`
	SalaryCeiling     decimal.Decimal `json:"salary_ceiling"`
	EmployeeShareRate decimal.Decimal `json:"employee_share_rate"`
	EmployerShareRate decimal.Decimal `json:"employer_share_rate"`
	MinContribution   decimal.Decimal `json:"min_contribution"`
	MaxContribution   decimal.Decimal `json:"max_contribution"`
}

type PhilHealthTable struct {
	TableVersion
	Tiers []PhilHealthTier
}

// PagIBIGTier applies rates to the salary capped at MaxFundSalary.
type PagIBIGTier struct {
	Range
	EmployeeRate  decimal.Decimal `json:"employee_rate"`
	EmployerRate  decimal.Decimal `json:"employer_rate"`
	MaxFundSalary decimal.Decimal `json:"max_fund_salary"`
}

type PagIBIGTable struct {
	TableVersion
	Tiers []PagIBIGTier
}

func (t SSSTable) ranges() []Range {
	out := make([]Range, len(t.Brackets))
	for i, b := range t.Brackets {
		out[i] = b.Range
	}
	return out
}

func (t PhilHealthTable) ranges() []Range {
	out := make([]Range, len(t.Tiers))
	for i, b := range t.Tiers {
		out[i] = b.Range
	}
	return out
}

func (t PagIBIGTable) ranges() []Range {
	out := make([]Range, len(t.Tiers))
	for i, b := range t.Tiers {
		out[i] = b.Range
	}
	return out
}

// Validate checks the partition invariant over [0, inf).
func (t SSSTable) Validate() error        { return ValidatePartition(t.ranges(), decimal.Zero) }
func (t PhilHealthTable) Validate() error { return ValidatePartition(t.ranges(), decimal.Zero) }
func (t PagIBIGTable) Validate() error    { return ValidatePartition(t.ranges(), decimal.Zero) }

// Lookup returns the bracket containing salary.
func (t SSSTable) Lookup(salary decimal.Decimal) (SSSBracket, error) {
	i, err := locate(t.ranges(), salary)
	if err != nil {
		return SSSBracket{}, fmt.Errorf("sss table %s: %w", t.ID, err)
	}
	return t.Brackets[i], nil
}

func (t PhilHealthTable) Lookup(salary decimal.Decimal) (PhilHealthTier, error) {
	i, err := locate(t.ranges(), salary)
	if err != nil {
		return PhilHealthTier{}, fmt.Errorf("philhealth table %s: %w", t.ID, err)
	}
	return t.Tiers[i], nil
}

func (t PagIBIGTable) Lookup(salary decimal.Decimal) (PagIBIGTier, error) {
	i, err := locate(t.ranges(), salary)
	if err != nil {
		return PagIBIGTier{}, fmt.Errorf("pagibig table %s: %w", t.ID, err)
	}
	return t.Tiers[i], nil
}

// PayPeriodType keys withholding tables.
type PayPeriodType string

const (
	PayPeriodDaily       PayPeriodType = "daily"
	PayPeriodWeekly      PayPeriodType = "weekly"
	PayPeriodSemiMonthly PayPeriodType = "semi_monthly"
	PayPeriodMonthly     PayPeriodType = "monthly"
)

var PayPeriodValues = []string{
	string(PayPeriodDaily),
	string(PayPeriodWeekly),
	string(PayPeriodSemiMonthly),
	string(PayPeriodMonthly),
}

// WithholdingTaxBracket: tax = BaseTax + ExcessRate * (compensation - Min).
type WithholdingTaxBracket struct {
	Range
	BaseTax    decimal.Decimal `json:"base_tax"`
	ExcessRate decimal.Decimal `json:"excess_rate"`
}

type WithholdingTaxTable struct {
	TableVersion
	PayPeriod PayPeriodType
	Brackets  []WithholdingTaxBracket
}

func (t WithholdingTaxTable) ranges() []Range {
	out := make([]Range, len(t.Brackets))
	for i, b := range t.Brackets {
		out[i] = b.Range
	}
	return out
}

// Validate checks the partition invariant starting at the lowest bracket's minimum.
// Compensation below that minimum is the zero bracket.
func (t WithholdingTaxTable) Validate() error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%w: table has no brackets", ErrBracketPartition)
	}
	floor := t.Brackets[0].Min
	for _, b := range t.Brackets[1:] {
		floor = decimal.Min(floor, b.Min)
	}
	return ValidatePartition(t.ranges(), floor)
}

// Lookup returns the bracket for compensation; ok is false below the lowest bracket.
func (t WithholdingTaxTable) Lookup(compensation decimal.Decimal) (bracket WithholdingTaxBracket, ok bool, err error) {
	lowest := true
	for _, b := range t.Brackets {
		if !compensation.LessThan(b.Min) {
			lowest = false
			break
		}
	}
	if lowest {
		return WithholdingTaxBracket{}, false, nil
	}
	i, err := locate(t.ranges(), compensation)
	if err != nil {
		return WithholdingTaxBracket{}, false, fmt.Errorf("withholding table %s: %w", t.ID, err)
	}
	return t.Brackets[i], true, nil
}
