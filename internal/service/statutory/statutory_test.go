package statutory

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTables is an in-memory statutory.TableRepository.
type memoryTables struct {
	sss         []statutory.SSSTable
	philhealth  []statutory.PhilHealthTable
	pagibig     []statutory.PagIBIGTable
	withholding []statutory.WithholdingTaxTable
	reads       int
}

func latest[T any](versions []T, version func(T) statutory.TableVersion, match func(T) bool, asOf time.Time) (T, error) {
	var (
		best  T
		found bool
	)
	for _, v := range versions {
		tv := version(v)
		if !tv.IsActive || tv.EffectiveFrom.After(asOf) || !match(v) {
			continue
		}
		if !found || tv.EffectiveFrom.After(version(best).EffectiveFrom) {
			best, found = v, true
		}
	}
	if !found {
		return best, statutory.ErrNoActiveTable
	}
	return best, nil
}

func always[T any](T) bool { return true }

func (m *memoryTables) ActiveSSSTable(_ context.Context, asOf time.Time) (statutory.SSSTable, error) {
	m.reads++
	return latest(m.sss, func(t statutory.SSSTable) statutory.TableVersion { return t.TableVersion }, always[statutory.SSSTable], asOf)
}

func (m *memoryTables) ActivePhilHealthTable(_ context.Context, asOf time.Time) (statutory.PhilHealthTable, error) {
	m.reads++
	return latest(m.philhealth, func(t statutory.PhilHealthTable) statutory.TableVersion { return t.TableVersion }, always[statutory.PhilHealthTable], asOf)
}

func (m *memoryTables) ActivePagIBIGTable(_ context.Context, asOf time.Time) (statutory.PagIBIGTable, error) {
	m.reads++
	return latest(m.pagibig, func(t statutory.PagIBIGTable) statutory.TableVersion { return t.TableVersion }, always[statutory.PagIBIGTable], asOf)
}

func (m *memoryTables) ActiveWithholdingTable(_ context.Context, payPeriod statutory.PayPeriodType, asOf time.Time) (statutory.WithholdingTaxTable, error) {
	m.reads++
	return latest(m.withholding,
		func(t statutory.WithholdingTaxTable) statutory.TableVersion { return t.TableVersion },
		func(t statutory.WithholdingTaxTable) bool { return t.PayPeriod == payPeriod },
		asOf)
}

func (m *memoryTables) CreateSSSTable(_ context.Context, t statutory.SSSTable) (statutory.SSSTable, error) {
	m.sss = append(m.sss, t)
	return t, nil
}

func (m *memoryTables) CreatePhilHealthTable(_ context.Context, t statutory.PhilHealthTable) (statutory.PhilHealthTable, error) {
	m.philhealth = append(m.philhealth, t)
	return t, nil
}

func (m *memoryTables) CreatePagIBIGTable(_ context.Context, t statutory.PagIBIGTable) (statutory.PagIBIGTable, error) {
	m.pagibig = append(m.pagibig, t)
	return t, nil
}

func (m *memoryTables) CreateWithholdingTable(_ context.Context, t statutory.WithholdingTaxTable) (statutory.WithholdingTaxTable, error) {
	m.withholding = append(m.withholding, t)
	return t, nil
}

type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func seeded(t *testing.T) *memoryTables {
	t.Helper()
	m := &memoryTables{}
	require.NoError(t, NewTableService(directTransactor{}, m).EnsureSeedTables(context.Background()))
	return m
}

var asOf = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEnsureSeedTables_Idempotent(t *testing.T) {
	m := seeded(t)
	require.NoError(t, NewTableService(directTransactor{}, m).EnsureSeedTables(context.Background()))

	assert.Len(t, m.sss, 1)
	assert.Len(t, m.philhealth, 1)
	assert.Len(t, m.pagibig, 1)
	assert.Len(t, m.withholding, 4)
}

func TestResolve_SeedScenario(t *testing.T) {
	resolver := NewContributionResolver(seeded(t))
	monthly := dec("30000")

	tests := []struct {
		scheme   statutory.Scheme
		employee string
		employer string
	}{
		{statutory.SchemeSSS, "1350", "2880"},
		{statutory.SchemePhilHealth, "750", "750"},
		{statutory.SchemePagIBIG, "200", "200"},
	}
	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			c, err := resolver.Resolve(context.Background(), tt.scheme, monthly, asOf)
			require.NoError(t, err)
			assert.True(t, c.EmployeeShare.Equal(dec(tt.employee)), "employee %s", c.EmployeeShare)
			assert.True(t, c.EmployerShare.Equal(dec(tt.employer)), "employer %s", c.EmployerShare)
		})
	}
}

func TestResolve_PhilHealthClamps(t *testing.T) {
	resolver := NewContributionResolver(seeded(t))

	tests := []struct {
		name     string
		salary   string
		employee string
	}{
		{"below floor uses floor", "5000", "250"},
		{"inside band", "40000", "1000"},
		{"above ceiling uses ceiling", "250000", "2500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := resolver.Resolve(context.Background(), statutory.SchemePhilHealth, dec(tt.salary), asOf)
			require.NoError(t, err)
			assert.True(t, c.EmployeeShare.Equal(dec(tt.employee)), "got %s", c.EmployeeShare)
		})
	}
}

func TestResolve_PagIBIGLowTier(t *testing.T) {
	resolver := NewContributionResolver(seeded(t))

	c, err := resolver.Resolve(context.Background(), statutory.SchemePagIBIG, dec("1000"), asOf)
	require.NoError(t, err)
	assert.True(t, c.EmployeeShare.Equal(dec("10")))
	assert.True(t, c.EmployerShare.Equal(dec("20")))
}

func TestResolve_NoActiveTable(t *testing.T) {
	resolver := NewContributionResolver(seeded(t))

	_, err := resolver.Resolve(context.Background(), statutory.SchemeSSS, dec("30000"), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, statutory.ErrNoActiveTable)
}

func TestResolve_LatestActiveVersionWins(t *testing.T) {
	m := seeded(t)
	newer := fixtures.GetDefaultPagIBIGTable()
	newer.ID = "2025-07"
	newer.EffectiveFrom = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	newer.Tiers[1].MaxFundSalary = dec("5000")
	m.pagibig = append(m.pagibig, newer)

	retired := fixtures.GetDefaultPagIBIGTable()
	retired.ID = "retired"
	retired.EffectiveFrom = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	retired.IsActive = false
	retired.Tiers[1].MaxFundSalary = dec("1")
	m.pagibig = append(m.pagibig, retired)

	resolver := NewContributionResolver(m)

	before, err := resolver.Resolve(context.Background(), statutory.SchemePagIBIG, dec("30000"), asOf)
	require.NoError(t, err)
	assert.True(t, before.EmployeeShare.Equal(dec("200")))

	after, err := resolver.Resolve(context.Background(), statutory.SchemePagIBIG, dec("30000"), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-07", after.TableID)
	assert.True(t, after.EmployeeShare.Equal(dec("100")))
}

func TestResolve_UnknownScheme(t *testing.T) {
	_, err := NewContributionResolver(seeded(t)).Resolve(context.Background(), "gsis", dec("1"), asOf)
	assert.ErrorIs(t, err, statutory.ErrUnknownScheme)
}

func TestWithholding_Compute(t *testing.T) {
	calc := NewWithholdingCalculator(seeded(t))

	tests := []struct {
		name    string
		taxable string
		period  statutory.PayPeriodType
		want    string
	}{
		{"scenario semi-monthly", "13850", statutory.PayPeriodSemiMonthly, "514.95"},
		{"zero bracket", "10000", statutory.PayPeriodSemiMonthly, "0"},
		{"bracket floor", "16667", statutory.PayPeriodSemiMonthly, "937.50"},
		{"rounds once half up", "10417.03", statutory.PayPeriodSemiMonthly, "0"},
		{"rounds half up at cent", "10417.10", statutory.PayPeriodSemiMonthly, "0.02"},
		{"monthly top bracket", "700000", statutory.PayPeriodMonthly, "195208.35"},
		{"negative taxable", "-5", statutory.PayPeriodWeekly, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := calc.Compute(context.Background(), dec(tt.taxable), tt.period, asOf)
			require.NoError(t, err)
			assert.True(t, tax.Equal(dec(tt.want)), "got %s", tax)
		})
	}
}

func TestWithholding_UnknownPayPeriod(t *testing.T) {
	_, err := NewWithholdingCalculator(seeded(t)).Compute(context.Background(), dec("1000"), "fortnightly", asOf)
	assert.ErrorIs(t, err, statutory.ErrUnknownPayPeriod)
}

func TestWithholding_NoActiveTableForZeroIncome(t *testing.T) {
	calc := NewWithholdingCalculator(seeded(t))
	before := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	for _, taxable := range []string{"0", "-250", "13850"} {
		_, err := calc.Compute(context.Background(), dec(taxable), statutory.PayPeriodSemiMonthly, before)
		assert.ErrorIs(t, err, statutory.ErrNoActiveTable, "taxable %s", taxable)
	}
}

func TestRunCache_ReadsEachTableOnce(t *testing.T) {
	m := seeded(t)
	m.reads = 0
	resolver := NewContributionResolver(NewRunCache(m))

	for i := 0; i < 5; i++ {
		for _, scheme := range statutory.Schemes {
			_, err := resolver.Resolve(context.Background(), scheme, dec("30000"), asOf)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, len(statutory.Schemes), m.reads)
}
