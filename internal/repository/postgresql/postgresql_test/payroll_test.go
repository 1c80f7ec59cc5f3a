package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func createOpenPeriod(t *testing.T, ctx context.Context, repo payroll.PeriodRepository) payroll.Period {
	t.Helper()
	period, err := repo.Create(ctx, payroll.Period{
		Name:         "2025-01 A",
		CutoffStart:  day("2025-01-01"),
		CutoffEnd:    day("2025-01-15"),
		PayDate:      day("2025-01-20"),
		PayFrequency: statutory.PayPeriodSemiMonthly,
		Status:       payroll.PeriodStatusDraft,
	})
	require.NoError(t, err)
	period, err = repo.UpdateStatus(ctx, period.ID, payroll.PeriodStatusDraft, payroll.PeriodStatusOpen)
	require.NoError(t, err)
	return period
}

func sampleEntry(periodID, employeeID string) payroll.Entry {
	now := time.Now()
	return payroll.Entry{
		PeriodID:        periodID,
		EmployeeID:      employeeID,
		EmployeeCode:    "E-001",
		EmployeeName:    "Ana Cruz",
		BasicSalary:     dec("30000"),
		RateType:        payroll.RateTypeMonthly,
		Summary:         payroll.TimeSummary{PresentDays: 11, WorkMinutes: 5280},
		GrossPay:        dec("15000.00"),
		TaxableIncome:   dec("14000.00"),
		TotalDeductions: dec("1000.00"),
		NetPay:          dec("14000.00"),
		Status:          payroll.EntryStatusComputed,
		ComputedAt:      &now,
		Earnings: []payroll.Earning{
			{Type: payroll.EarningBasic, Code: "BASIC", Description: "Basic pay", Amount: dec("15000.00"), Taxable: true, SortOrder: 1},
		},
		Deductions: []payroll.Deduction{
			{Type: payroll.DeductionSSS, Code: "sss-2025", Amount: dec("750.00"), EmployerAmount: dec("1440.00"), IsEmployeeShare: true, SortOrder: 2},
			{Type: payroll.DeductionWithholdingTax, Code: "WTAX", Amount: dec("250.00"), IsEmployeeShare: true, SortOrder: 1},
		},
	}
}

func TestPeriodRepository_ConditionalStatus(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPeriodRepository(setup.DB)

	period := createOpenPeriod(t, ctx, repo)
	assert.Equal(t, payroll.PeriodStatusOpen, period.Status)

	_, err := repo.UpdateStatus(ctx, period.ID, payroll.PeriodStatusApproved, payroll.PeriodStatusClosed)
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriodTransition))

	_, err = repo.UpdateStatus(ctx, "0195f0a0-0000-7000-8000-000000000000", payroll.PeriodStatusOpen, payroll.PeriodStatusComputed)
	assert.True(t, errors.Is(err, payroll.ErrPeriodNotFound))

	_, err = repo.Create(ctx, payroll.Period{
		Name: period.Name, CutoffStart: day("2025-02-01"), CutoffEnd: day("2025-02-15"),
		PayDate: day("2025-02-20"), PayFrequency: period.PayFrequency, Status: payroll.PeriodStatusDraft,
	})
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriod))

	_, err = repo.Create(ctx, payroll.Period{
		Name: "2025-01 A rerun", CutoffStart: day("2025-01-15"), CutoffEnd: day("2025-01-31"),
		PayDate: day("2025-02-05"), PayFrequency: period.PayFrequency, Status: payroll.PeriodStatusDraft,
	})
	assert.True(t, errors.Is(err, payroll.ErrOverlappingPeriod))

	_, err = repo.Create(ctx, payroll.Period{
		Name: "2025-01", CutoffStart: day("2025-01-01"), CutoffEnd: day("2025-01-31"),
		PayDate: day("2025-02-05"), PayFrequency: statutory.PayPeriodMonthly, Status: payroll.PeriodStatusDraft,
	})
	assert.NoError(t, err)
}

func TestEntryRepository_SaveReplacesLinesAndTotals(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	periods := postgresql.NewPeriodRepository(setup.DB)
	entries := postgresql.NewEntryRepository(setup.DB)
	transactor := postgresql.NewTransactor(setup.DB)

	employeeID, err := setup.CreateEmployee(ctx, "E-001", "Ana Cruz", "2024-01-01")
	require.NoError(t, err)
	period := createOpenPeriod(t, ctx, periods)

	var saved payroll.Entry
	err = transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		saved, err = entries.Save(ctx, sampleEntry(period.ID, employeeID))
		return err
	})
	require.NoError(t, err)
	require.NoError(t, saved.Reconcile())
	require.Len(t, saved.Deductions, 2)
	assert.Equal(t, payroll.DeductionWithholdingTax, saved.Deductions[0].Type)
	assert.Equal(t, 11, saved.Summary.PresentDays)

	again := sampleEntry(period.ID, employeeID)
	again.Deductions = again.Deductions[:1]
	again.TotalDeductions = dec("750.00")
	again.NetPay = dec("14250.00")
	resaved, err := entries.Save(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, resaved.ID)
	assert.Len(t, resaved.Deductions, 1)

	totals, err := periods.RecomputeTotals(ctx, period.ID)
	require.NoError(t, err)
	assert.True(t, totals.Gross.Equal(dec("15000")))
	assert.True(t, totals.Net.Equal(dec("14250")))
	assert.Equal(t, 1, totals.EmployeeCount)

	actor := "approver-1"
	approved, err := entries.UpdateStatus(ctx, saved.ID, payroll.EntryStatusComputed, payroll.EntryStatusApproved, &actor)
	require.NoError(t, err)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, actor, *approved.ApprovedBy)

	_, err = entries.UpdateStatus(ctx, saved.ID, payroll.EntryStatusComputed, payroll.EntryStatusApproved, &actor)
	assert.True(t, errors.Is(err, payroll.ErrInvalidEntryTransition))
}

func TestPeriodRepository_CloseWaitsForNoEntryWriter(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	periods := postgresql.NewPeriodRepository(setup.DB)
	transactor := postgresql.NewTransactor(setup.DB)
	period := createOpenPeriod(t, ctx, periods)

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			if _, err := periods.GetForShare(ctx, period.ID); err != nil {
				close(holding)
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := periods.GetForClose(ctx, period.ID)
		return err
	})
	assert.True(t, errors.Is(err, payroll.ErrComputationInFlight))

	close(release)
	require.NoError(t, <-done)

	err = transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := periods.GetForClose(ctx, period.ID)
		return err
	})
	require.NoError(t, err)
}

func TestAdjustmentRepository_Consume(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAdjustmentRepository(setup.DB)

	employeeID, err := setup.CreateEmployee(ctx, "E-001", "Ana Cruz", "2024-01-01")
	require.NoError(t, err)

	balance := dec("1500")
	loan, err := repo.Create(ctx, payroll.Adjustment{
		EmployeeID:       employeeID,
		Category:         payroll.AdjustmentDeduction,
		Code:             "LOAN",
		Amount:           dec("1000"),
		Frequency:        payroll.AdjustmentRecurring,
		EffectiveFrom:    day("2025-01-01"),
		RemainingBalance: &balance,
		IsActive:         true,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Consume(ctx, loan.ID, loan.PeriodAmount()))
	applicable, err := repo.ListApplicable(ctx, employeeID, day("2025-01-16"), day("2025-01-31"))
	require.NoError(t, err)
	require.Len(t, applicable, 1)
	assert.True(t, applicable[0].PeriodAmount().Equal(dec("500")))
	assert.Nil(t, applicable[0].RemainingOccurrences)

	require.NoError(t, repo.Consume(ctx, loan.ID, applicable[0].PeriodAmount()))
	applicable, err = repo.ListApplicable(ctx, employeeID, day("2025-02-01"), day("2025-02-15"))
	require.NoError(t, err)
	assert.Empty(t, applicable)
}
