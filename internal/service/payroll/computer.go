package payroll

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	sixty          = decimal.NewFromInt(60)
	twelve         = decimal.NewFromInt(12)
	regularHoliday = decimal.NewFromInt(2)
	specialHoliday = decimal.RequireFromString("1.3")
)

// Rates converts a basic salary into daily and hourly rates.
type Rates struct {
	AnnualWorkDays int
	HoursPerDay    int
}

// PeriodsPerMonth is the number of pay periods of freq in one month.
func (r Rates) PeriodsPerMonth(freq statutory.PayPeriodType) (decimal.Decimal, error) {
	switch freq {
	case statutory.PayPeriodSemiMonthly:
		return decimal.NewFromInt(2), nil
	case statutory.PayPeriodMonthly:
		return decimal.NewFromInt(1), nil
	case statutory.PayPeriodWeekly:
		return decimal.NewFromInt(52).Div(twelve), nil
	case statutory.PayPeriodDaily:
		return decimal.NewFromInt(int64(r.AnnualWorkDays)).Div(twelve), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", statutory.ErrUnknownPayPeriod, freq)
}

// DailyRate converts the compensation into a daily rate.
func (r Rates) DailyRate(c payroll.Compensation) decimal.Decimal {
	if c.RateType == payroll.RateTypeDaily {
		return c.BasicSalary
	}
	return c.BasicSalary.Mul(twelve).Div(decimal.NewFromInt(int64(r.AnnualWorkDays)))
}

// ComputeInput is everything one entry computation reads.
type ComputeInput struct {
	Period       payroll.Period
	Employee     employee.Employee
	Compensation payroll.Compensation
	Records      []attendance.DailyTimeRecord
	// Schedules is keyed by WorkSchedule.ID.
	Schedules   map[string]schedule.WorkSchedule
	Adjustments []payroll.Adjustment
}

// Computer builds a payroll entry from its inputs. It performs no writes.
type Computer struct {
	contributions statutory.ContributionResolver
	withholding   statutory.WithholdingCalculator
	rates         Rates
}

func NewComputer(contributions statutory.ContributionResolver, withholding statutory.WithholdingCalculator, rates Rates) *Computer {
	return &Computer{
		contributions: contributions,
		withholding:   withholding,
		rates:         rates,
	}
}

// pay holds unrounded money accumulated from the DTRs.
type pay struct {
	overtime        decimal.Decimal
	restDayOvertime decimal.Decimal
	nightDiff       decimal.Decimal
	holidayPremium  decimal.Decimal
	overtimeMinutes int
	restDayMinutes  int
}

// entryBuilder appends ordered line items and keeps running totals.
type entryBuilder struct {
	entry payroll.Entry
	seq   int
}

func (b *entryBuilder) earning(l payroll.Earning) {
	b.seq++
	l.SortOrder = b.seq
	b.entry.Earnings = append(b.entry.Earnings, l)
	b.entry.GrossPay = b.entry.GrossPay.Add(l.Amount)
}

func (b *entryBuilder) deduction(l payroll.Deduction) {
	b.seq++
	l.SortOrder = b.seq
	b.entry.Deductions = append(b.entry.Deductions, l)
	b.entry.TotalDeductions = b.entry.TotalDeductions.Add(l.Amount)
}

// ComputeEntry computes the entry for one employee and period. The returned
// entry has status computed and reconciled line items.
func (c *Computer) ComputeEntry(ctx context.Context, in ComputeInput) (payroll.Entry, error) {
	period := in.Period
	from, to := employmentSpan(in.Employee, period)
	if to.Before(from) {
		return payroll.Entry{}, fmt.Errorf("employee %s not employed during cutoff: %w", in.Employee.ID, payroll.ErrMissingTimeRecords)
	}

	records, err := recordsInSpan(in.Records, from, to)
	if err != nil {
		return payroll.Entry{}, err
	}

	ppm, err := c.rates.PeriodsPerMonth(period.PayFrequency)
	if err != nil {
		return payroll.Entry{}, err
	}
	daily := c.rates.DailyRate(in.Compensation)
	hourly := daily.Div(decimal.NewFromInt(int64(c.rates.HoursPerDay)))

	summary, amounts := summarize(records, in.Schedules, hourly)

	b := &entryBuilder{entry: payroll.Entry{
		PeriodID:     period.ID,
		EmployeeID:   in.Employee.ID,
		EmployeeCode: in.Employee.EmployeeCode,
		EmployeeName: in.Employee.FullName,
		BasicSalary:  in.Compensation.BasicSalary,
		RateType:     in.Compensation.RateType,
		Summary:      summary,
		Status:       payroll.EntryStatusComputed,
	}}

	// Basic pay
	fullPeriod := from.Equal(dateOnly(period.CutoffStart)) && to.Equal(dateOnly(period.CutoffEnd))
	var basic payroll.Earning
	if in.Compensation.RateType == payroll.RateTypeMonthly && fullPeriod {
		base := in.Compensation.BasicSalary.Div(ppm)
		amount := base.Sub(daily.Mul(decimal.NewFromInt(int64(summary.AbsentDays))))
		basic = payroll.Earning{
			Type:        payroll.EarningBasic,
			Description: fmt.Sprintf("Basic pay less %d absent day(s)", summary.AbsentDays),
			Basis:       base.Round(2),
			Rate:        daily.Round(4),
			Amount:      decimal.Max(amount, decimal.Zero).Round(2),
			Taxable:     true,
		}
	} else {
		days := decimal.NewFromInt(int64(summary.PresentDays + summary.UnworkedRegularHolidays))
		basic = payroll.Earning{
			Type:        payroll.EarningBasic,
			Description: "Basic pay for paid days",
			Basis:       days,
			Rate:        daily.Round(4),
			Amount:      days.Mul(daily).Round(2),
			Taxable:     true,
		}
	}
	b.earning(basic)

	hours := func(minutes int) decimal.Decimal {
		return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
	}
	premiums := []struct {
		typ         payroll.EarningType
		description string
		minutes     int
		amount      decimal.Decimal
	}{
		{payroll.EarningOvertime, "Approved overtime", amounts.overtimeMinutes, amounts.overtime},
		{payroll.EarningRestDayOvertime, "Approved rest day work", amounts.restDayMinutes, amounts.restDayOvertime},
		{payroll.EarningNightDiff, "Night differential", summary.NightDiffMinutes, amounts.nightDiff},
		{payroll.EarningHolidayPremium, "Holiday premium", summary.HolidayWorkedMinutes, amounts.holidayPremium},
	}
	for _, p := range premiums {
		amount := p.amount.Round(2)
		if amount.IsZero() {
			continue
		}
		b.earning(payroll.Earning{
			Type:        p.typ,
			Description: p.description,
			Basis:       hours(p.minutes),
			Rate:        hourly.Round(4),
			Amount:      amount,
			Taxable:     true,
		})
	}

	nonTaxable := decimal.Zero
	for _, adj := range in.Adjustments {
		if adj.Category != payroll.AdjustmentEarning || !adj.AppliesTo(period.CutoffStart, period.CutoffEnd) {
			continue
		}
		amount := adj.PeriodAmount().Round(2)
		if !adj.IsTaxable {
			nonTaxable = nonTaxable.Add(amount)
		}
		b.earning(payroll.Earning{
			Type:         payroll.EarningAdjustment,
			Code:         adj.Code,
			Description:  adj.Description,
			Basis:        adj.Amount,
			Rate:         decimal.NewFromInt(1),
			Amount:       amount,
			Taxable:      adj.IsTaxable,
			AdjustmentID: &adj.ID,
		})
	}

	// Pre-tax deductions
	preTax := decimal.Zero
	if late := summary.LateMinutes + summary.UndertimeMinutes; late > 0 {
		amount := decimal.NewFromInt(int64(late)).Div(sixty).Mul(hourly).Round(2)
		if amount.IsPositive() {
			preTax = preTax.Add(amount)
			b.deduction(payroll.Deduction{
				Type:            payroll.DeductionTardiness,
				Description:     "Late and undertime",
				Basis:           hours(late),
				Rate:            hourly.Round(4),
				Amount:          amount,
				IsEmployeeShare: true,
			})
		}
	}

	asOf := period.CutoffEnd
	monthlyBasis := basic.Amount.Mul(ppm).Round(2)
	for _, scheme := range statutory.Schemes {
		contribution, err := c.contributions.Resolve(ctx, scheme, monthlyBasis, asOf)
		if err != nil {
			return payroll.Entry{}, fmt.Errorf("failed to resolve %s contribution: %w", scheme, err)
		}
		employeeShare := contribution.EmployeeShare.Div(ppm).Round(2)
		employerShare := contribution.EmployerShare.Div(ppm).Round(2)
		preTax = preTax.Add(employeeShare)
		b.deduction(payroll.Deduction{
			Type:            contributionDeduction[scheme],
			Code:            contribution.TableID,
			Description:     strings.ToUpper(string(scheme)) + " contribution",
			Basis:           contribution.Basis,
			Rate:            decimal.NewFromInt(1).Div(ppm).Round(4),
			Amount:          employeeShare,
			EmployerAmount:  employerShare,
			IsEmployeeShare: true,
			IsEmployerShare: employerShare.IsPositive(),
		})
	}

	taxable := decimal.Max(b.entry.GrossPay.Sub(nonTaxable).Sub(preTax), decimal.Zero)
	tax, err := c.withholding.Compute(ctx, taxable, period.PayFrequency, asOf)
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to compute withholding tax: %w", err)
	}
	b.entry.TaxableIncome = taxable
	b.deduction(payroll.Deduction{
		Type:            payroll.DeductionWithholdingTax,
		Description:     "Withholding tax",
		Basis:           taxable,
		Amount:          tax,
		IsEmployeeShare: true,
	})

	for _, adj := range in.Adjustments {
		if adj.Category != payroll.AdjustmentDeduction || !adj.AppliesTo(period.CutoffStart, period.CutoffEnd) {
			continue
		}
		b.deduction(payroll.Deduction{
			Type:            payroll.DeductionAdjustment,
			Code:            adj.Code,
			Description:     adj.Description,
			Basis:           adj.Amount,
			Rate:            decimal.NewFromInt(1),
			Amount:          adj.PeriodAmount().Round(2),
			IsEmployeeShare: true,
			AdjustmentID:    &adj.ID,
		})
	}

	b.entry.NetPay = b.entry.GrossPay.Sub(b.entry.TotalDeductions)
	if err := b.entry.Reconcile(); err != nil {
		return payroll.Entry{}, err
	}
	return b.entry, nil
}

var contributionDeduction = map[statutory.Scheme]payroll.DeductionType{
	statutory.SchemeSSS:        payroll.DeductionSSS,
	statutory.SchemePhilHealth: payroll.DeductionPhilHealth,
	statutory.SchemePagIBIG:    payroll.DeductionPagIBIG,
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// employmentSpan clips the cutoff to the employee's employment dates.
func employmentSpan(emp employee.Employee, period payroll.Period) (time.Time, time.Time) {
	from, to := dateOnly(period.CutoffStart), dateOnly(period.CutoffEnd)
	if hire := dateOnly(emp.HireDate); hire.After(from) {
		from = hire
	}
	if emp.ResignationDate != nil {
		if last := dateOnly(*emp.ResignationDate); last.Before(to) {
			to = last
		}
	}
	return from, to
}

// recordsInSpan requires exactly one reviewed DTR per day of [from, to].
func recordsInSpan(all []attendance.DailyTimeRecord, from, to time.Time) ([]attendance.DailyTimeRecord, error) {
	byDate := make(map[string]attendance.DailyTimeRecord, len(all))
	for _, r := range all {
		byDate[r.Date.Format(dateLayout)] = r
	}

	var (
		records []attendance.DailyTimeRecord
		missing []string
		review  []string
	)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		r, ok := byDate[key]
		switch {
		case !ok:
			missing = append(missing, key)
		case r.NeedsReview:
			review = append(review, key)
		default:
			records = append(records, r)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", payroll.ErrMissingTimeRecords, strings.Join(missing, ", "))
	}
	if len(review) > 0 {
		return nil, fmt.Errorf("%w: %s", payroll.ErrUnresolvedTimeRecords, strings.Join(review, ", "))
	}
	return records, nil
}

func summarize(records []attendance.DailyTimeRecord, schedules map[string]schedule.WorkSchedule, hourly decimal.Decimal) (payroll.TimeSummary, pay) {
	var (
		s payroll.TimeSummary
		p pay
	)
	valued := func(minutes int, multiplier decimal.Decimal) decimal.Decimal {
		return decimal.NewFromInt(int64(minutes)).Div(sixty).Mul(hourly).Mul(multiplier)
	}

	for _, r := range records {
		var ws schedule.WorkSchedule
		if r.WorkScheduleID != nil {
			ws = schedules[*r.WorkScheduleID]
		}

		switch r.Status {
		case attendance.StatusPresent:
			if r.IsRestDay {
				s.RestDaysWorked++
			} else {
				s.PresentDays++
			}
		case attendance.StatusAbsent:
			s.AbsentDays++
		case attendance.StatusHoliday:
			s.HolidayDays++
			if r.HolidayType != nil && *r.HolidayType == attendance.HolidayRegular {
				s.UnworkedRegularHolidays++
			}
		case attendance.StatusRestDay:
			s.RestDays++
		}

		s.WorkMinutes += r.WorkMinutes
		s.LateMinutes += r.LateMinutes
		s.UndertimeMinutes += r.UndertimeMinutes
		s.NightDiffMinutes += r.NightDiffMinutes

		paid := r.PaidOvertimeMinutes()
		s.OvertimeMinutes += paid
		s.UnapprovedOvertimeMinutes += r.OvertimeMinutes - paid
		if r.IsRestDay {
			p.restDayMinutes += paid
			p.restDayOvertime = p.restDayOvertime.Add(valued(paid, ws.Overtime.RestDayMultiplier))
		} else {
			p.overtimeMinutes += paid
			p.overtime = p.overtime.Add(valued(paid, ws.Overtime.Multiplier))
		}
		p.nightDiff = p.nightDiff.Add(valued(r.NightDiffMinutes, ws.NightDiff.Multiplier))

		if r.HolidayType != nil && r.WorkMinutes > 0 {
			s.HolidayWorkedMinutes += r.WorkMinutes
			multiplier := specialHoliday
			if *r.HolidayType == attendance.HolidayRegular {
				multiplier = regularHoliday
			}
			p.holidayPremium = p.holidayPremium.Add(valued(r.WorkMinutes, multiplier.Sub(decimal.NewFromInt(1))))
		}
	}
	return s, p
}
