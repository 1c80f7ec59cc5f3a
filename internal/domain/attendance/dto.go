package attendance

import (
	"slices"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

type RecordPunchRequest struct {
	EmployeeID string    `json:"employee_id"`
	Direction  string    `json:"direction"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

func (r *RecordPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !slices.Contains(DirectionValues, r.Direction) {
		errs = append(errs, validator.ValidationError{Field: "direction", Message: "must be one of in, break_out, break_in, out"})
	}
	if r.Timestamp.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "is required"})
	}
	if validator.IsEmpty(r.Source) {
		errs = append(errs, validator.ValidationError{Field: "source", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ComputeRangeRequest struct {
	EmployeeID string `json:"employee_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

func (r *ComputeRangeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	from, okFrom := validator.IsValidDate(r.From)
	if !okFrom {
		errs = append(errs, validator.ValidationError{Field: "from", Message: "invalid date format, use YYYY-MM-DD"})
	}
	to, okTo := validator.IsValidDate(r.To)
	if !okTo {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "invalid date format, use YYYY-MM-DD"})
	}
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "must not be before from"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DailyTimeRecordResponse is the read contract downstream reporting consumes.
type DailyTimeRecordResponse struct {
	EmployeeID       string         `json:"employee_id"`
	Date             string         `json:"date"`
	WorkScheduleID   *string        `json:"work_schedule_id,omitempty"`
	ShiftName        *string        `json:"shift_name,omitempty"`
	Status           string         `json:"status"`
	FirstIn          *string        `json:"first_in,omitempty"`
	LastOut          *string        `json:"last_out,omitempty"`
	WorkMinutes      int            `json:"work_minutes"`
	BreakMinutes     int            `json:"break_minutes"`
	LateMinutes      int            `json:"late_minutes"`
	UndertimeMinutes int            `json:"undertime_minutes"`
	OvertimeMinutes  int            `json:"overtime_minutes"`
	NightDiffMinutes int            `json:"night_diff_minutes"`
	OvertimeApproved bool           `json:"overtime_approved"`
	IsRestDay        bool           `json:"is_rest_day"`
	HolidayType      *string        `json:"holiday_type,omitempty"`
	NeedsReview      bool           `json:"needs_review"`
	ReviewReason     *string        `json:"review_reason,omitempty"`
	Anomalies        []PunchAnomaly `json:"anomalies,omitempty"`
}

func NewDailyTimeRecordResponse(d DailyTimeRecord) DailyTimeRecordResponse {
	resp := DailyTimeRecordResponse{
		EmployeeID:       d.EmployeeID,
		Date:             d.Date.Format("2006-01-02"),
		WorkScheduleID:   d.WorkScheduleID,
		ShiftName:        d.ShiftName,
		Status:           string(d.Status),
		WorkMinutes:      d.WorkMinutes,
		BreakMinutes:     d.BreakMinutes,
		LateMinutes:      d.LateMinutes,
		UndertimeMinutes: d.UndertimeMinutes,
		OvertimeMinutes:  d.OvertimeMinutes,
		NightDiffMinutes: d.NightDiffMinutes,
		OvertimeApproved: d.OvertimeApproved,
		IsRestDay:        d.IsRestDay,
		NeedsReview:      d.NeedsReview,
		ReviewReason:     d.ReviewReason,
		Anomalies:        d.Anomalies,
	}
	if d.FirstIn != nil {
		s := d.FirstIn.Format(time.RFC3339)
		resp.FirstIn = &s
	}
	if d.LastOut != nil {
		s := d.LastOut.Format(time.RFC3339)
		resp.LastOut = &s
	}
	if d.HolidayType != nil {
		s := string(*d.HolidayType)
		resp.HolidayType = &s
	}
	return resp
}

type SetOvertimeApprovalRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Approved   bool   `json:"approved"`
}

func (r *SetOvertimeApprovalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "invalid date format, use YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateHolidayRequest struct {
	Date         string  `json:"date"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	IsNational   bool    `json:"is_national"`
	WorkLocation *string `json:"work_location,omitempty"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "invalid date format, use YYYY-MM-DD"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.Type != string(HolidayRegular) && r.Type != string(HolidaySpecial) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be regular or special"})
	}
	if !r.IsNational && (r.WorkLocation == nil || validator.IsEmpty(*r.WorkLocation)) {
		errs = append(errs, validator.ValidationError{Field: "work_location", Message: "is required for non-national holidays"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PunchResponse struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	EmployeeID string    `json:"employee_id"`
	Direction  string    `json:"direction"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

func NewPunchResponse(p RawPunch) PunchResponse {
	return PunchResponse{
		ID:         p.ID,
		Seq:        p.Seq,
		EmployeeID: p.EmployeeID,
		Direction:  string(p.Direction),
		Timestamp:  p.Timestamp,
		Source:     p.Source,
	}
}

type HolidayResponse struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	IsNational   bool    `json:"is_national"`
	WorkLocation *string `json:"work_location,omitempty"`
}

func NewHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:           h.ID,
		Date:         h.Date.Format("2006-01-02"),
		Name:         h.Name,
		Type:         string(h.Type),
		IsNational:   h.IsNational,
		WorkLocation: h.WorkLocation,
	}
}
