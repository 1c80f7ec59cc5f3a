package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
)

// DayInput is everything the calculator reads for one employee-date.
type DayInput struct {
	EmployeeID string
	Date       time.Time
	// Schedule is nil when no assignment covers the date.
	Schedule *schedule.ResolvedSchedule
	// Holiday is the calendar entry applying to the employee, if any.
	Holiday *attendance.Holiday
	Punches []attendance.RawPunch
	// Now decides whether the day has closed. The calculator never reads the process clock.
	Now time.Time
}

// Calculator produces DailyTimeRecords. It is pure: identical input yields identical output.
type Calculator struct {
	loc *time.Location
}

// NewCalculator anchors schedule wall-clock times in loc.
func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{loc: loc}
}

// strategy is the per-kind part of the calculation.
type strategy interface {
	// window anchors the day's scheduled span on date.
	window(date time.Time, loc *time.Location) Interval
	// expectedMinutes is the length of a normal day, breaks included.
	expectedMinutes(ws schedule.WorkSchedule) int
	// lateMinutes is the tardiness of a first clock-in, after grace.
	lateMinutes(firstIn time.Time, ws schedule.WorkSchedule, date time.Time, loc *time.Location) int
	// score sets late, undertime and overtime once work minutes are known.
	score(rec *attendance.DailyTimeRecord, worked Interval, ws schedule.WorkSchedule, date time.Time, loc *time.Location)
}

// strategyFor dispatches on the schedule variant. Compressed and resolved
// Shifting days are scored against a single shift window like Fixed days.
// ok is false when a Shifting day has no usable roster entry.
func strategyFor(rs *schedule.ResolvedSchedule) (strategy, bool) {
	switch cfg := rs.Schedule.Config.(type) {
	case schedule.FixedConfig:
		return windowStrategy{shift: cfg.Shift}, true
	case schedule.CompressedConfig:
		return windowStrategy{shift: cfg.Shift}, true
	case schedule.ShiftingConfig:
		if rs.ShiftName == nil {
			return nil, false
		}
		shift, ok := cfg.Shifts[*rs.ShiftName]
		if !ok {
			return nil, false
		}
		return windowStrategy{shift: shift}, true
	case schedule.FlexibleConfig:
		return flexibleStrategy{cfg: cfg}, true
	}
	return nil, false
}

type windowStrategy struct {
	shift schedule.ShiftWindow
}

func (s windowStrategy) window(date time.Time, loc *time.Location) Interval {
	start, end := s.shift.On(date, loc)
	return Interval{Start: start, End: end}
}

func (s windowStrategy) expectedMinutes(schedule.WorkSchedule) int {
	return s.shift.Minutes()
}

func (s windowStrategy) lateMinutes(firstIn time.Time, ws schedule.WorkSchedule, date time.Time, loc *time.Location) int {
	late := minutesBetween(s.window(date, loc).Start, firstIn)
	if late <= ws.GracePeriodMinutes {
		return 0
	}
	return late
}

func (s windowStrategy) score(rec *attendance.DailyTimeRecord, worked Interval, ws schedule.WorkSchedule, date time.Time, loc *time.Location) {
	scheduled := s.window(date, loc)

	rec.LateMinutes = s.lateMinutes(worked.Start, ws, date, loc)
	rec.UndertimeMinutes = minutesBetween(worked.End, scheduled.End)
	rec.OvertimeMinutes = applyThreshold(minutesBetween(scheduled.End, worked.End), ws.Overtime.ThresholdMinutes)
}

type flexibleStrategy struct {
	cfg schedule.FlexibleConfig
}

func (s flexibleStrategy) window(date time.Time, loc *time.Location) Interval {
	start, end := s.cfg.Band.On(date, loc)
	return Interval{Start: start, End: end}
}

func (s flexibleStrategy) expectedMinutes(ws schedule.WorkSchedule) int {
	return s.cfg.RequiredDailyMinutes + ws.Break.DurationMinutes
}

func (flexibleStrategy) lateMinutes(time.Time, schedule.WorkSchedule, time.Time, *time.Location) int {
	return 0
}

// score measures against required minutes rather than a start time. Core hours
// are mandatory presence regardless of the total.
func (s flexibleStrategy) score(rec *attendance.DailyTimeRecord, worked Interval, ws schedule.WorkSchedule, date time.Time, loc *time.Location) {
	required := s.cfg.RequiredDailyMinutes
	rec.LateMinutes = 0
	rec.UndertimeMinutes = max(0, required-rec.WorkMinutes)
	rec.OvertimeMinutes = applyThreshold(max(0, rec.WorkMinutes-required), ws.Overtime.ThresholdMinutes)

	if s.cfg.Core.Start != s.cfg.Core.End {
		coreStart, coreEnd := s.cfg.Core.On(date, loc)
		if worked.Start.After(coreStart) || worked.End.Before(coreEnd) {
			flag(rec, attendance.ReasonCoreHoursAbsence)
		}
	}
}

// Calculate builds the DailyTimeRecord for one employee-date.
func (c *Calculator) Calculate(in DayInput) attendance.DailyTimeRecord {
	date := schedule.DateOnly(in.Date)
	rec := attendance.DailyTimeRecord{
		EmployeeID: in.EmployeeID,
		Date:       date,
	}
	if in.Holiday != nil {
		t := in.Holiday.Type
		rec.HolidayType = &t
	}

	punches := Reconcile(in.Punches)
	rec.Anomalies = punches.Anomalies

	if in.Schedule == nil {
		rec.Status = attendance.StatusNoSchedule
		rec.FirstIn, rec.LastOut = punches.FirstIn, punches.LastOut
		flag(&rec, attendance.ReasonNoSchedule)
		return rec
	}

	ws := in.Schedule.Schedule
	scheduleID, version := ws.ID, ws.Version
	rec.WorkScheduleID = &scheduleID
	rec.ScheduleVersion = &version
	rec.ShiftName = in.Schedule.ShiftName
	rec.IsRestDay = !ws.IsWorkDay(date.Weekday())

	strat, resolvable := strategyFor(in.Schedule)
	closed := in.Now.After(c.dayClose(date, strat, resolvable))

	if punches.FirstIn == nil {
		switch {
		case in.Holiday != nil:
			rec.Status = attendance.StatusHoliday
		case rec.IsRestDay:
			rec.Status = attendance.StatusRestDay
		case !resolvable:
			rec.Status = attendance.StatusNoSchedule
			flag(&rec, attendance.ReasonShiftUnresolvable)
		default:
			rec.Status = attendance.StatusAbsent
			switch {
			case !closed:
				flag(&rec, attendance.ReasonDayNotClosed)
			case len(punches.Anomalies) > 0:
				flag(&rec, attendance.ReasonInvalidPunches)
			}
		}
		return rec
	}

	if !resolvable && !rec.IsRestDay {
		rec.Status = attendance.StatusNoSchedule
		rec.FirstIn, rec.LastOut = punches.FirstIn, punches.LastOut
		flag(&rec, attendance.ReasonShiftUnresolvable)
		return rec
	}

	rec.Status = attendance.StatusPresent
	rec.FirstIn = punches.FirstIn

	if punches.LastOut == nil {
		if resolvable && !rec.IsRestDay {
			rec.LateMinutes = strat.lateMinutes(*punches.FirstIn, ws, date, c.loc)
		}
		// An open day is kept out of payroll until it closes and is recomputed.
		if closed {
			flag(&rec, attendance.ReasonMissingClockOut)
		} else {
			flag(&rec, attendance.ReasonDayNotClosed)
		}
		return rec
	}
	rec.LastOut = punches.LastOut

	worked := Interval{Start: *punches.FirstIn, End: *punches.LastOut}
	span := worked.Minutes()

	breakMinutes := 0
	for _, b := range punches.Breaks {
		breakMinutes += b.Minutes()
	}
	if len(punches.Breaks) == 0 {
		expected := 0
		if resolvable {
			expected = strat.expectedMinutes(ws)
		}
		breakMinutes = c.autoBreak(ws, worked, date, expected)
	}
	rec.BreakMinutes = min(breakMinutes, span)
	rec.WorkMinutes = span - rec.BreakMinutes
	rec.NightDiffMinutes = c.nightDiff(ws.NightDiff, date, worked, punches.Breaks)

	if rec.IsRestDay {
		rec.OvertimeMinutes = rec.WorkMinutes
		return rec
	}

	strat.score(&rec, worked, ws, date, c.loc)
	return rec
}

// PunchWindow returns the span whose punches belong to the employee-date. Day
// schedules cover at least the calendar day; overnight shifts cover the shift
// widened by margin so the previous night's clock-out is not picked up.
func (c *Calculator) PunchWindow(rs *schedule.ResolvedSchedule, date time.Time, margin time.Duration) Interval {
	date = schedule.DateOnly(date)
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.loc)
	day := Interval{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}
	if rs == nil {
		return day
	}
	strat, ok := strategyFor(rs)
	if !ok {
		return day
	}

	w := strat.window(date, c.loc)
	out := Interval{Start: w.Start.Add(-margin), End: w.End.Add(margin)}
	if !w.End.After(day.End) {
		if day.Start.Before(out.Start) {
			out.Start = day.Start
		}
		if day.End.After(out.End) {
			out.End = day.End
		}
	}
	return out
}

// dayClose is the instant after which the day's record is final.
func (c *Calculator) dayClose(date time.Time, strat strategy, resolvable bool) time.Time {
	if resolvable {
		return strat.window(date, c.loc).End
	}
	return time.Date(date.Year(), date.Month(), date.Day()+1, 0, 0, 0, 0, c.loc)
}

// autoBreak deducts the configured break when no break pair was punched. A
// timed break is deducted when the worked span covers it; an anytime break
// when the span exceeds half of a normal day.
func (c *Calculator) autoBreak(ws schedule.WorkSchedule, worked Interval, date time.Time, expected int) int {
	dur := ws.Break.DurationMinutes
	if dur <= 0 {
		return 0
	}

	if ws.Break.Start != nil {
		start := ws.Break.Start.On(date, c.loc)
		if start.Before(worked.Start) {
			// Breaks on overnight shifts fall on the next calendar day.
			start = ws.Break.Start.On(date.AddDate(0, 0, 1), c.loc)
		}
		end := start.Add(time.Duration(dur) * time.Minute)
		if !start.Before(worked.Start) && !end.After(worked.End) {
			return dur
		}
		return 0
	}

	if worked.Minutes() > max(dur, expected/2) {
		return dur
	}
	return 0
}

// nightDiff is the worked time inside the night window, excluding punched breaks.
// The window is anchored on the previous, current and next day to catch
// shifts that start before or end after midnight.
func (c *Calculator) nightDiff(rule schedule.NightDiffRule, date time.Time, worked Interval, breaks []Interval) int {
	if rule.Window.Start == rule.Window.End {
		return 0
	}

	total := 0
	for offset := -1; offset <= 1; offset++ {
		start, end := rule.Window.On(date.AddDate(0, 0, offset), c.loc)
		night := Interval{Start: start, End: end}
		total += worked.Overlap(night)
		for _, b := range breaks {
			total -= b.Overlap(night)
		}
	}
	return max(0, total)
}

func minutesBetween(from, to time.Time) int {
	return Interval{Start: from, End: to}.Minutes()
}

func applyThreshold(minutes, threshold int) int {
	if minutes < threshold {
		return 0
	}
	return minutes
}

// flag marks the record for review, keeping the first reason.
func flag(rec *attendance.DailyTimeRecord, reason string) {
	rec.NeedsReview = true
	if rec.ReviewReason == nil {
		r := reason
		rec.ReviewReason = &r
	}
}
