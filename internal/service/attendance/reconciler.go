package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
)

// Interval is a closed-open span of wall time.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Minutes() int {
	if !i.End.After(i.Start) {
		return 0
	}
	return int(i.End.Sub(i.Start) / time.Minute)
}

// Overlap returns the minutes shared by i and o.
func (i Interval) Overlap(o Interval) int {
	start, end := i.Start, i.End
	if o.Start.After(start) {
		start = o.Start
	}
	if o.End.Before(end) {
		end = o.End
	}
	return Interval{Start: start, End: end}.Minutes()
}

// Reconciled is the valid punch sequence for one employee-day.
type Reconciled struct {
	FirstIn   *time.Time
	LastOut   *time.Time
	Breaks    []Interval
	Anomalies []attendance.PunchAnomaly
}

type punchState int

const (
	awaitingIn punchState = iota
	working
	onBreak
	clockedOut
)

// Reconcile walks the punches expecting in, (break_out, break_in)*, out.
// Punches are ordered by timestamp with Seq breaking ties; timestamps are
// truncated to the minute so every pair boundary lands on a whole minute.
// Out-of-sequence punches are kept as anomalies and excluded from time math.
// A break_out with no matching break_in is dropped.
func Reconcile(punches []attendance.RawPunch) Reconciled {
	sorted := make([]attendance.RawPunch, len(punches))
	copy(sorted, punches)
	for i := range sorted {
		sorted[i].Timestamp = sorted[i].Timestamp.Truncate(time.Minute)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].Seq < sorted[j].Seq
	})

	var (
		out        Reconciled
		state      = awaitingIn
		breakStart time.Time
	)

	reject := func(p attendance.RawPunch, reason string) {
		out.Anomalies = append(out.Anomalies, attendance.PunchAnomaly{
			PunchID:   p.ID,
			Direction: p.Direction,
			Timestamp: p.Timestamp,
			Reason:    reason,
		})
	}

	for _, p := range sorted {
		ts := p.Timestamp
		switch state {
		case awaitingIn:
			switch p.Direction {
			case attendance.DirectionIn:
				out.FirstIn = &ts
				state = working
			default:
				reject(p, string(p.Direction)+" before in")
			}

		case working:
			switch p.Direction {
			case attendance.DirectionIn:
				reject(p, "duplicate in")
			case attendance.DirectionBreakOut:
				breakStart = ts
				state = onBreak
			case attendance.DirectionBreakIn:
				reject(p, "break_in before break_out")
			case attendance.DirectionOut:
				out.LastOut = &ts
				state = clockedOut
			default:
				reject(p, "unknown direction")
			}

		case onBreak:
			switch p.Direction {
			case attendance.DirectionBreakIn:
				out.Breaks = append(out.Breaks, Interval{Start: breakStart, End: ts})
				state = working
			case attendance.DirectionBreakOut:
				reject(p, "duplicate break_out")
			case attendance.DirectionIn:
				reject(p, "in during break")
			case attendance.DirectionOut:
				reject(p, "out before break_in")
			default:
				reject(p, "unknown direction")
			}

		case clockedOut:
			reject(p, "punch after out")
		}
	}

	return out
}
