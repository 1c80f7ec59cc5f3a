package fixtures

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func bounded(min, max string) statutory.Range {
	return statutory.Range{Min: dec(min), Max: decPtr(max)}
}

func unbounded(min string) statutory.Range {
	return statutory.Range{Min: dec(min)}
}

// SeedEffectiveFrom is the effective date of every seeded table.
var SeedEffectiveFrom = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// ==========================================
// SSS
// ==========================================

// GetDefaultSSSTable returns the SSS schedule: MSC from 4,000 to 30,000 in 500 steps,
// employee 4.5% and employer 9.5% of MSC, EC 10 below MSC 15,000 and 30 from there.
func GetDefaultSSSTable() statutory.SSSTable {
	var (
		employeeRate = dec("0.045")
		employerRate = dec("0.095")
		step         = decimal.NewFromInt(500)
		halfStep     = decimal.NewFromInt(250)
		lowestMSC    = decimal.NewFromInt(4000)
		highestMSC   = decimal.NewFromInt(30000)
		ecThreshold  = decimal.NewFromInt(15000)
	)

	bracket := func(r statutory.Range, msc decimal.Decimal) statutory.SSSBracket {
		ec := decimal.NewFromInt(10)
		if msc.GreaterThanOrEqual(ecThreshold) {
			ec = decimal.NewFromInt(30)
		}
		return statutory.SSSBracket{
			Range:                r,
			MonthlySalaryCredit:  msc,
			EmployeeShare:        msc.Mul(employeeRate).Round(2),
			EmployerShare:        msc.Mul(employerRate).Round(2),
			EmployeeCompensation: ec,
		}
	}

	brackets := make([]statutory.SSSBracket, 0, 53)

	// Below 4,250 maps to the lowest credit.
	firstMax := lowestMSC.Add(halfStep)
	brackets = append(brackets, bracket(statutory.Range{Min: decimal.Zero, Max: &firstMax}, lowestMSC))

	for msc := lowestMSC.Add(step); msc.LessThan(highestMSC); msc = msc.Add(step) {
		lo := msc.Sub(halfStep)
		hi := msc.Add(halfStep)
		brackets = append(brackets, bracket(statutory.Range{Min: lo, Max: &hi}, msc))
	}

	brackets = append(brackets, bracket(statutory.Range{Min: highestMSC.Sub(halfStep)}, highestMSC))

	return statutory.SSSTable{
		TableVersion: statutory.TableVersion{EffectiveFrom: SeedEffectiveFrom, IsActive: true},
		Brackets:     brackets,
	}
}

// ==========================================
// PHILHEALTH
// ==========================================

// GetDefaultPhilHealthTable returns a single 5% tier with a 10,000 floor and 100,000 ceiling,
// split equally between employee and employer.
func GetDefaultPhilHealthTable() statutory.PhilHealthTable {
	return statutory.PhilHealthTable{
		TableVersion: statutory.TableVersion{EffectiveFrom: SeedEffectiveFrom, IsActive: true},
		Tiers: []statutory.PhilHealthTier{
			{
				Range:             unbounded("0"),
				PremiumRate:       dec("0.05"),
				SalaryFloor:       dec("10000"),
				SalaryCeiling:     dec("100000"),
				EmployeeShareRate: dec("0.5"),
				EmployerShareRate: dec("0.5"),
				MinContribution:   dec("250"),
				MaxContribution:   dec("2500"),
			},
		},
	}
}

// ==========================================
// PAG-IBIG
// ==========================================

// GetDefaultPagIBIGTable returns the HDMF tiers with fund salary capped at 10,000.
func GetDefaultPagIBIGTable() statutory.PagIBIGTable {
	return statutory.PagIBIGTable{
		TableVersion: statutory.TableVersion{EffectiveFrom: SeedEffectiveFrom, IsActive: true},
		Tiers: []statutory.PagIBIGTier{
			{Range: bounded("0", "1500"), EmployeeRate: dec("0.01"), EmployerRate: dec("0.02"), MaxFundSalary: dec("10000")},
			{Range: unbounded("1500"), EmployeeRate: dec("0.02"), EmployerRate: dec("0.02"), MaxFundSalary: dec("10000")},
		},
	}
}

// ==========================================
// WITHHOLDING TAX
// ==========================================

type taxRow struct {
	min, max, base, rate string
}

func withholdingTable(period statutory.PayPeriodType, rows []taxRow) statutory.WithholdingTaxTable {
	brackets := make([]statutory.WithholdingTaxBracket, 0, len(rows))
	for _, r := range rows {
		rng := unbounded(r.min)
		if r.max != "" {
			rng = bounded(r.min, r.max)
		}
		brackets = append(brackets, statutory.WithholdingTaxBracket{
			Range:      rng,
			BaseTax:    dec(r.base),
			ExcessRate: dec(r.rate),
		})
	}
	return statutory.WithholdingTaxTable{
		TableVersion: statutory.TableVersion{EffectiveFrom: SeedEffectiveFrom, IsActive: true},
		PayPeriod:    period,
		Brackets:     brackets,
	}
}

// GetDefaultWithholdingTables returns the graduated withholding tables for every pay period.
func GetDefaultWithholdingTables() []statutory.WithholdingTaxTable {
	return []statutory.WithholdingTaxTable{
		withholdingTable(statutory.PayPeriodDaily, []taxRow{
			{"0", "685", "0", "0"},
			{"685", "1096", "0", "0.15"},
			{"1096", "2192", "61.65", "0.20"},
			{"2192", "5479", "280.85", "0.25"},
			{"5479", "21918", "1102.60", "0.30"},
			{"21918", "", "6034.30", "0.35"},
		}),
		withholdingTable(statutory.PayPeriodWeekly, []taxRow{
			{"0", "4808", "0", "0"},
			{"4808", "7692", "0", "0.15"},
			{"7692", "15385", "432.60", "0.20"},
			{"15385", "38462", "1971.20", "0.25"},
			{"38462", "153846", "7740.45", "0.30"},
			{"153846", "", "42355.65", "0.35"},
		}),
		withholdingTable(statutory.PayPeriodSemiMonthly, []taxRow{
			{"0", "10417", "0", "0"},
			{"10417", "16667", "0", "0.15"},
			{"16667", "33333", "937.50", "0.20"},
			{"33333", "83333", "4270.70", "0.25"},
			{"83333", "333333", "16770.70", "0.30"},
			{"333333", "", "91770.70", "0.35"},
		}),
		withholdingTable(statutory.PayPeriodMonthly, []taxRow{
			{"0", "20833", "0", "0"},
			{"20833", "33333", "0", "0.15"},
			{"33333", "66667", "1875", "0.20"},
			{"66667", "166667", "8541.80", "0.25"},
			{"166667", "666667", "33541.80", "0.30"},
			{"666667", "", "183541.80", "0.35"},
		}),
	}
}
