package schedule

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

type CreateWorkScheduleRequest struct {
	Name               string          `json:"name"`
	Kind               string          `json:"kind"`
	WorkDays           []int           `json:"work_days"` // 0=Sunday ... 6=Saturday
	GracePeriodMinutes int             `json:"grace_period_minutes"`
	Break              BreakRule       `json:"break"`
	Overtime           OvertimeRule    `json:"overtime"`
	NightDiff          NightDiffRule   `json:"night_diff"`
	Config             json.RawMessage `json:"config"`
}

func (r *CreateWorkScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if !slices.Contains(KindValues, r.Kind) {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be one of fixed, flexible, shifting, compressed"})
	}
	for _, d := range r.WorkDays {
		if d < 0 || d > 6 {
			errs = append(errs, validator.ValidationError{Field: "work_days", Message: "must be between 0 and 6"})
			break
		}
	}
	if r.GracePeriodMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "grace_period_minutes", Message: "must be non-negative"})
	}
	if r.Break.DurationMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "break.duration_minutes", Message: "must be non-negative"})
	}
	if r.Overtime.Multiplier.IsNegative() || r.Overtime.RestDayMultiplier.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime", Message: "multipliers must be non-negative"})
	}
	if r.NightDiff.Multiplier.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "night_diff.multiplier", Message: "must be non-negative"})
	}
	if len(r.Config) == 0 {
		errs = append(errs, validator.ValidationError{Field: "config", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToWorkSchedule decodes the variant config and builds the schedule value.
func (r *CreateWorkScheduleRequest) ToWorkSchedule() (WorkSchedule, error) {
	kind := Kind(r.Kind)
	variant, err := UnmarshalVariant(kind, r.Config)
	if err != nil {
		return WorkSchedule{}, err
	}
	if err := validateVariant(variant); err != nil {
		return WorkSchedule{}, err
	}

	days := make([]time.Weekday, 0, len(r.WorkDays))
	for _, d := range r.WorkDays {
		days = append(days, time.Weekday(d))
	}

	return WorkSchedule{
		Name:               r.Name,
		Version:            1,
		Kind:               kind,
		WorkDays:           days,
		GracePeriodMinutes: r.GracePeriodMinutes,
		Break:              r.Break,
		Overtime:           r.Overtime,
		NightDiff:          r.NightDiff,
		Config:             variant,
	}, nil
}

func validateVariant(v Variant) error {
	var errs validator.ValidationErrors
	switch c := v.(type) {
	case FixedConfig:
		if c.Shift.Minutes() == 0 {
			errs = append(errs, validator.ValidationError{Field: "config.shift", Message: "must not be empty"})
		}
	case CompressedConfig:
		if c.Shift.Minutes() == 0 {
			errs = append(errs, validator.ValidationError{Field: "config.shift", Message: "must not be empty"})
		}
	case FlexibleConfig:
		if c.RequiredDailyMinutes <= 0 {
			errs = append(errs, validator.ValidationError{Field: "config.required_daily_minutes", Message: "must be positive"})
		}
	case ShiftingConfig:
		if len(c.Shifts) == 0 {
			errs = append(errs, validator.ValidationError{Field: "config.shifts", Message: "at least one shift is required"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignScheduleRequest struct {
	EmployeeID     string  `json:"employee_id"`
	WorkScheduleID string  `json:"work_schedule_id"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
}

func (r *AssignScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if validator.IsEmpty(r.WorkScheduleID) {
		errs = append(errs, validator.ValidationError{Field: "work_schedule_id", Message: "is required"})
	}
	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: ErrInvalidDateFormat.Error()})
	}
	if r.EndDate != nil {
		end, ok := validator.IsValidDate(*r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrInvalidDateFormat.Error()})
		} else if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SetShiftRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	ShiftName  string `json:"shift_name"`
}

func (r *SetShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: ErrInvalidDateFormat.Error()})
	}
	if validator.IsEmpty(r.ShiftName) {
		errs = append(errs, validator.ValidationError{Field: "shift_name", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WorkScheduleResponse struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Version            int           `json:"version"`
	Kind               string        `json:"kind"`
	WorkDays           []int         `json:"work_days"`
	GracePeriodMinutes int           `json:"grace_period_minutes"`
	Break              BreakRule     `json:"break"`
	Overtime           OvertimeRule  `json:"overtime"`
	NightDiff          NightDiffRule `json:"night_diff"`
	Config             Variant       `json:"config"`
	CreatedAt          time.Time     `json:"created_at"`
}

func NewWorkScheduleResponse(ws WorkSchedule) WorkScheduleResponse {
	days := make([]int, len(ws.WorkDays))
	for i, d := range ws.WorkDays {
		days[i] = int(d)
	}
	return WorkScheduleResponse{
		ID:                 ws.ID,
		Name:               ws.Name,
		Version:            ws.Version,
		Kind:               string(ws.Kind),
		WorkDays:           days,
		GracePeriodMinutes: ws.GracePeriodMinutes,
		Break:              ws.Break,
		Overtime:           ws.Overtime,
		NightDiff:          ws.NightDiff,
		Config:             ws.Config,
		CreatedAt:          ws.CreatedAt,
	}
}

type AssignmentResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	WorkScheduleID string  `json:"work_schedule_id"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
}

func NewAssignmentResponse(a EmployeeScheduleAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		WorkScheduleID: a.WorkScheduleID,
		StartDate:      a.StartDate.Format("2006-01-02"),
	}
	if a.EndDate != nil {
		end := a.EndDate.Format("2006-01-02")
		resp.EndDate = &end
	}
	return resp
}
