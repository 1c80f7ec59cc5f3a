package payroll

import (
	"slices"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePeriodRequest struct {
	Name         string `json:"name"`
	CutoffStart  string `json:"cutoff_start"`
	CutoffEnd    string `json:"cutoff_end"`
	PayDate      string `json:"pay_date"`
	PayFrequency string `json:"pay_frequency"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	start, okStart := validator.IsValidDate(r.CutoffStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "cutoff_start", Message: "invalid date format, use YYYY-MM-DD"})
	}
	end, okEnd := validator.IsValidDate(r.CutoffEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "cutoff_end", Message: "invalid date format, use YYYY-MM-DD"})
	}
	payDate, okPay := validator.IsValidDate(r.PayDate)
	if !okPay {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "invalid date format, use YYYY-MM-DD"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "cutoff_end", Message: "must not be before cutoff_start"})
	}
	if okStart && okPay && payDate.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must not be before cutoff_start"})
	}
	if !slices.Contains(statutory.PayPeriodValues, r.PayFrequency) {
		errs = append(errs, validator.ValidationError{Field: "pay_frequency", Message: "must be one of daily, weekly, semi_monthly, monthly"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunRequest struct {
	PeriodID string `json:"-"`
	// EmployeeIDs narrows the run; empty means every eligible employee.
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

type PeriodTransitionRequest struct {
	PeriodID string `json:"-"`
	ActorID  string `json:"-"`
	// Override lets MarkComputed proceed with pending or failed employees.
	Override bool    `json:"override"`
	Reason   *string `json:"reason,omitempty"`
}

type EntryTransitionRequest struct {
	PeriodID   string  `json:"-"`
	EmployeeID string  `json:"-"`
	ActorID    string  `json:"-"`
	Reason     *string `json:"reason,omitempty"`
}

type SetCompensationRequest struct {
	EmployeeID    string          `json:"employee_id"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	RateType      string          `json:"rate_type"`
	EffectiveDate string          `json:"effective_date"`
}

func (r *SetCompensationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.BasicSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be greater than 0"})
	}
	if r.RateType != string(RateTypeMonthly) && r.RateType != string(RateTypeDaily) {
		errs = append(errs, validator.ValidationError{Field: "rate_type", Message: "must be monthly or daily"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "invalid date format, use YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateAdjustmentRequest struct {
	EmployeeID       string           `json:"employee_id"`
	Category         string           `json:"category"`
	Code             string           `json:"code"`
	Description      string           `json:"description"`
	Amount           decimal.Decimal  `json:"amount"`
	Frequency        string           `json:"frequency"`
	EffectiveFrom    string           `json:"effective_from"`
	EffectiveTo      *string          `json:"effective_to,omitempty"`
	Occurrences      *int             `json:"occurrences,omitempty"`
	RemainingBalance *decimal.Decimal `json:"remaining_balance,omitempty"`
	IsTaxable        bool             `json:"is_taxable"`
}

func (r *CreateAdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if r.Category != string(AdjustmentEarning) && r.Category != string(AdjustmentDeduction) {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "must be earning or deduction"})
	}
	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than 0"})
	}
	if r.Frequency != string(AdjustmentOneTime) && r.Frequency != string(AdjustmentRecurring) {
		errs = append(errs, validator.ValidationError{Field: "frequency", Message: "must be one_time or recurring"})
	}
	from, okFrom := validator.IsValidDate(r.EffectiveFrom)
	if !okFrom {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "invalid date format, use YYYY-MM-DD"})
	}
	if r.EffectiveTo != nil {
		to, ok := validator.IsValidDate(*r.EffectiveTo)
		switch {
		case !ok:
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "invalid date format, use YYYY-MM-DD"})
		case okFrom && to.Before(from):
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "must not be before effective_from"})
		}
	}
	if r.Occurrences != nil && *r.Occurrences <= 0 {
		errs = append(errs, validator.ValidationError{Field: "occurrences", Message: "must be greater than 0"})
	}
	if r.RemainingBalance != nil && !r.RemainingBalance.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "remaining_balance", Message: "must be greater than 0"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	CutoffStart     string          `json:"cutoff_start"`
	CutoffEnd       string          `json:"cutoff_end"`
	PayDate         string          `json:"pay_date"`
	PayFrequency    string          `json:"pay_frequency"`
	Status          string          `json:"status"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	DeductionsTotal decimal.Decimal `json:"deductions_total"`
	NetTotal        decimal.Decimal `json:"net_total"`
	EmployeeCount   int             `json:"employee_count"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
}

func NewPeriodResponse(p Period) PeriodResponse {
	return PeriodResponse{
		ID:              p.ID,
		Name:            p.Name,
		CutoffStart:     p.CutoffStart.Format("2006-01-02"),
		CutoffEnd:       p.CutoffEnd.Format("2006-01-02"),
		PayDate:         p.PayDate.Format("2006-01-02"),
		PayFrequency:    string(p.PayFrequency),
		Status:          string(p.Status),
		GrossTotal:      p.GrossTotal,
		DeductionsTotal: p.DeductionsTotal,
		NetTotal:        p.NetTotal,
		EmployeeCount:   p.EmployeeCount,
		ClosedAt:        p.ClosedAt,
	}
}

type LineItemResponse struct {
	Type           string           `json:"type"`
	Code           string           `json:"code,omitempty"`
	Description    string           `json:"description"`
	Basis          decimal.Decimal  `json:"basis"`
	Rate           decimal.Decimal  `json:"rate"`
	Amount         decimal.Decimal  `json:"amount"`
	EmployerAmount *decimal.Decimal `json:"employer_amount,omitempty"`
	Taxable        *bool            `json:"taxable,omitempty"`
}

type EntryResponse struct {
	ID              string             `json:"id"`
	PeriodID        string             `json:"period_id"`
	EmployeeID      string             `json:"employee_id"`
	EmployeeCode    string             `json:"employee_code"`
	EmployeeName    string             `json:"employee_name"`
	BasicSalary     decimal.Decimal    `json:"basic_salary"`
	RateType        string             `json:"rate_type"`
	Summary         TimeSummary        `json:"summary"`
	GrossPay        decimal.Decimal    `json:"gross_pay"`
	TaxableIncome   decimal.Decimal    `json:"taxable_income"`
	TotalDeductions decimal.Decimal    `json:"total_deductions"`
	NetPay          decimal.Decimal    `json:"net_pay"`
	Status          string             `json:"status"`
	Earnings        []LineItemResponse `json:"earnings"`
	Deductions      []LineItemResponse `json:"deductions"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
}

func NewEntryResponse(e Entry) EntryResponse {
	resp := EntryResponse{
		ID:              e.ID,
		PeriodID:        e.PeriodID,
		EmployeeID:      e.EmployeeID,
		EmployeeCode:    e.EmployeeCode,
		EmployeeName:    e.EmployeeName,
		BasicSalary:     e.BasicSalary,
		RateType:        string(e.RateType),
		Summary:         e.Summary,
		GrossPay:        e.GrossPay,
		TaxableIncome:   e.TaxableIncome,
		TotalDeductions: e.TotalDeductions,
		NetPay:          e.NetPay,
		Status:          string(e.Status),
		Earnings:        make([]LineItemResponse, 0, len(e.Earnings)),
		Deductions:      make([]LineItemResponse, 0, len(e.Deductions)),
		ApprovedAt:      e.ApprovedAt,
	}
	for _, l := range e.Earnings {
		taxable := l.Taxable
		resp.Earnings = append(resp.Earnings, LineItemResponse{
			Type:        string(l.Type),
			Code:        l.Code,
			Description: l.Description,
			Basis:       l.Basis,
			Rate:        l.Rate,
			Amount:      l.Amount,
			Taxable:     &taxable,
		})
	}
	for _, l := range e.Deductions {
		employer := l.EmployerAmount
		resp.Deductions = append(resp.Deductions, LineItemResponse{
			Type:           string(l.Type),
			Code:           l.Code,
			Description:    l.Description,
			Basis:          l.Basis,
			Rate:           l.Rate,
			Amount:         l.Amount,
			EmployerAmount: &employer,
		})
	}
	return resp
}

type RunReportResponse struct {
	RunID        string            `json:"run_id"`
	PeriodID     string            `json:"period_id"`
	Requested    int               `json:"requested"`
	Succeeded    []string          `json:"succeeded"`
	Failures     []EmployeeFailure `json:"failures"`
	NotStarted   []string          `json:"not_started,omitempty"`
	GrossTotal   decimal.Decimal   `json:"gross_total"`
	NetTotal     decimal.Decimal   `json:"net_total"`
	PeriodStatus string            `json:"period_status"`
}

func NewRunReportResponse(r RunReport) RunReportResponse {
	return RunReportResponse{
		RunID:        r.RunID,
		PeriodID:     r.PeriodID,
		Requested:    r.Requested,
		Succeeded:    r.Succeeded,
		Failures:     r.Failures,
		NotStarted:   r.NotStarted,
		GrossTotal:   r.Totals.Gross,
		NetTotal:     r.Totals.Net,
		PeriodStatus: string(r.PeriodStatus),
	}
}

type CompensationResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	RateType      string          `json:"rate_type"`
	EffectiveDate string          `json:"effective_date"`
}

func NewCompensationResponse(c Compensation) CompensationResponse {
	return CompensationResponse{
		ID:            c.ID,
		EmployeeID:    c.EmployeeID,
		BasicSalary:   c.BasicSalary,
		RateType:      string(c.RateType),
		EffectiveDate: c.EffectiveDate.Format("2006-01-02"),
	}
}

type AdjustmentResponse struct {
	ID                   string           `json:"id"`
	EmployeeID           string           `json:"employee_id"`
	Category             string           `json:"category"`
	Code                 string           `json:"code"`
	Description          string           `json:"description"`
	Amount               decimal.Decimal  `json:"amount"`
	Frequency            string           `json:"frequency"`
	EffectiveFrom        string           `json:"effective_from"`
	EffectiveTo          *string          `json:"effective_to,omitempty"`
	RemainingOccurrences *int             `json:"remaining_occurrences,omitempty"`
	RemainingBalance     *decimal.Decimal `json:"remaining_balance,omitempty"`
	IsTaxable            bool             `json:"is_taxable"`
	IsActive             bool             `json:"is_active"`
}

func NewAdjustmentResponse(a Adjustment) AdjustmentResponse {
	resp := AdjustmentResponse{
		ID:                   a.ID,
		EmployeeID:           a.EmployeeID,
		Category:             string(a.Category),
		Code:                 a.Code,
		Description:          a.Description,
		Amount:               a.Amount,
		Frequency:            string(a.Frequency),
		EffectiveFrom:        a.EffectiveFrom.Format("2006-01-02"),
		RemainingOccurrences: a.RemainingOccurrences,
		RemainingBalance:     a.RemainingBalance,
		IsTaxable:            a.IsTaxable,
		IsActive:             a.IsActive,
	}
	if a.EffectiveTo != nil {
		to := a.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &to
	}
	return resp
}

type RunRecordResponse struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Requested  int               `json:"requested"`
	Succeeded  int               `json:"succeeded"`
	Failures   []EmployeeFailure `json:"failures"`
	Cancelled  bool              `json:"cancelled"`
	GrossTotal decimal.Decimal   `json:"gross_total"`
	NetTotal   decimal.Decimal   `json:"net_total"`
}

func NewRunRecordResponse(r RunRecord) RunRecordResponse {
	return RunRecordResponse{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Requested:  r.Requested,
		Succeeded:  r.Succeeded,
		Failures:   r.Failures,
		Cancelled:  r.Cancelled,
		GrossTotal: r.Totals.Gross,
		NetTotal:   r.Totals.Net,
	}
}

type AuditEventResponse struct {
	Action     string    `json:"action"`
	EntryID    *string   `json:"entry_id,omitempty"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewAuditEventResponse(e AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		Action:     string(e.Action),
		EntryID:    e.EntryID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		ActorID:    e.ActorID,
		Reason:     e.Reason,
		CreatedAt:  e.CreatedAt,
	}
}
