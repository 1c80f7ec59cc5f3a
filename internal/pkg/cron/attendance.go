package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
)

// nightlyRunHour is the local hour in which the DTR job does its work.
const nightlyRunHour = 1

type AttendanceJobs struct {
	dtrService attendance.DTRService
	location   *time.Location
	interval   time.Duration
	now        func() time.Time
}

func NewAttendanceJobs(dtrService attendance.DTRService, location *time.Location, interval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		dtrService: dtrService,
		location:   location,
		interval:   interval,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("compute_daily_time_records", j.interval, j.ComputeDailyTimeRecords, WithTimeout(j.interval))
}

// ComputeDailyTimeRecords recomputes the two most recent closed days for every
// active employee. The second pass picks up night shifts that ended after the
// first one ran.
func (j *AttendanceJobs) ComputeDailyTimeRecords(ctx context.Context) error {
	now := j.now().In(j.location)
	if now.Hour() != nightlyRunHour {
		return nil
	}

	slog.Info("Cron: Starting daily time record job")

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	totalComputed, totalFailed := 0, 0
	for _, offset := range []int{-2, -1} {
		date := today.AddDate(0, 0, offset)
		computed, failed, err := j.dtrService.ComputeDayForActive(ctx, date, now)
		if err != nil {
			return fmt.Errorf("failed to compute daily time records for %s: %w", date.Format("2006-01-02"), err)
		}
		totalComputed += computed
		totalFailed += failed
	}

	slog.Info("Cron: Daily time record job finished", "computed", totalComputed, "failed", totalFailed)
	return nil
}
