package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type punchRepositoryImpl struct {
	db *database.DB
}

// Create implements attendance.PunchRepository. Seq comes from a bigserial column.
func (p *punchRepositoryImpl) Create(ctx context.Context, punch attendance.RawPunch) (attendance.RawPunch, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO raw_punches (id, employee_id, direction, punched_at, source, captured_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW())
		RETURNING id, seq, captured_at
	`

	err := q.QueryRow(ctx, query, punch.EmployeeID, punch.Direction, punch.Timestamp, punch.Source).
		Scan(&punch.ID, &punch.Seq, &punch.CapturedAt)
	if err != nil {
		return attendance.RawPunch{}, fmt.Errorf("failed to create punch: %w", err)
	}
	return punch, nil
}

// ListBetween implements attendance.PunchRepository.
func (p *punchRepositoryImpl) ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.RawPunch, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, seq, employee_id, direction, punched_at, source, captured_at
		FROM raw_punches
		WHERE employee_id = $1 AND punched_at >= $2 AND punched_at < $3
		ORDER BY punched_at, seq
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}
	defer rows.Close()

	var punches []attendance.RawPunch
	for rows.Next() {
		var punch attendance.RawPunch
		if err := rows.Scan(
			&punch.ID, &punch.Seq, &punch.EmployeeID, &punch.Direction,
			&punch.Timestamp, &punch.Source, &punch.CapturedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, punch)
	}
	return punches, rows.Err()
}

func NewPunchRepository(db *database.DB) attendance.PunchRepository {
	return &punchRepositoryImpl{db: db}
}

type dailyTimeRecordRepositoryImpl struct {
	db *database.DB
}

const dailyTimeRecordColumns = `
	id, employee_id, date, work_schedule_id, schedule_version, shift_name, status,
	first_in, last_out, work_minutes, break_minutes, late_minutes, undertime_minutes,
	overtime_minutes, night_diff_minutes, overtime_approved, is_rest_day, holiday_type,
	needs_review, review_reason, anomalies, created_at, updated_at
`

func scanDailyTimeRecord(row pgx.Row) (attendance.DailyTimeRecord, error) {
	var (
		r         attendance.DailyTimeRecord
		anomalies []byte
	)
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Date, &r.WorkScheduleID, &r.ScheduleVersion, &r.ShiftName, &r.Status,
		&r.FirstIn, &r.LastOut, &r.WorkMinutes, &r.BreakMinutes, &r.LateMinutes, &r.UndertimeMinutes,
		&r.OvertimeMinutes, &r.NightDiffMinutes, &r.OvertimeApproved, &r.IsRestDay, &r.HolidayType,
		&r.NeedsReview, &r.ReviewReason, &anomalies, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return attendance.DailyTimeRecord{}, err
	}
	if len(anomalies) > 0 {
		if err := json.Unmarshal(anomalies, &r.Anomalies); err != nil {
			return attendance.DailyTimeRecord{}, fmt.Errorf("failed to decode anomalies: %w", err)
		}
	}
	return r, nil
}

// Upsert implements attendance.DailyTimeRecordRepository.
func (d *dailyTimeRecordRepositoryImpl) Upsert(ctx context.Context, record attendance.DailyTimeRecord) (attendance.DailyTimeRecord, error) {
	q := GetQuerier(ctx, d.db)

	anomalies := record.Anomalies
	if anomalies == nil {
		anomalies = []attendance.PunchAnomaly{}
	}
	anomaliesJSON, err := json.Marshal(anomalies)
	if err != nil {
		return attendance.DailyTimeRecord{}, fmt.Errorf("failed to encode anomalies: %w", err)
	}

	query := `
		INSERT INTO daily_time_records (
			id, employee_id, date, work_schedule_id, schedule_version, shift_name, status,
			first_in, last_out, work_minutes, break_minutes, late_minutes, undertime_minutes,
			overtime_minutes, night_diff_minutes, is_rest_day, holiday_type,
			needs_review, review_reason, anomalies, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2::date, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, NOW(), NOW()
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			work_schedule_id   = EXCLUDED.work_schedule_id,
			schedule_version   = EXCLUDED.schedule_version,
			shift_name         = EXCLUDED.shift_name,
			status             = EXCLUDED.status,
			first_in           = EXCLUDED.first_in,
			last_out           = EXCLUDED.last_out,
			work_minutes       = EXCLUDED.work_minutes,
			break_minutes      = EXCLUDED.break_minutes,
			late_minutes       = EXCLUDED.late_minutes,
			undertime_minutes  = EXCLUDED.undertime_minutes,
			overtime_minutes   = EXCLUDED.overtime_minutes,
			night_diff_minutes = EXCLUDED.night_diff_minutes,
			is_rest_day        = EXCLUDED.is_rest_day,
			holiday_type       = EXCLUDED.holiday_type,
			needs_review       = EXCLUDED.needs_review,
			review_reason      = EXCLUDED.review_reason,
			anomalies          = EXCLUDED.anomalies,
			updated_at         = NOW()
		RETURNING ` + dailyTimeRecordColumns

	saved, err := scanDailyTimeRecord(q.QueryRow(ctx, query,
		record.EmployeeID, record.Date, record.WorkScheduleID, record.ScheduleVersion, record.ShiftName, record.Status,
		record.FirstIn, record.LastOut, record.WorkMinutes, record.BreakMinutes, record.LateMinutes, record.UndertimeMinutes,
		record.OvertimeMinutes, record.NightDiffMinutes, record.IsRestDay, record.HolidayType,
		record.NeedsReview, record.ReviewReason, anomaliesJSON,
	))
	if err != nil {
		return attendance.DailyTimeRecord{}, fmt.Errorf("failed to upsert daily time record: %w", err)
	}
	return saved, nil
}

// GetByEmployeeAndDate implements attendance.DailyTimeRecordRepository.
func (d *dailyTimeRecordRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.DailyTimeRecord, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT ` + dailyTimeRecordColumns + ` FROM daily_time_records WHERE employee_id = $1 AND date = $2::date`

	record, err := scanDailyTimeRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DailyTimeRecord{}, attendance.ErrDailyTimeRecordNotFound
		}
		return attendance.DailyTimeRecord{}, fmt.Errorf("failed to get daily time record: %w", err)
	}
	return record, nil
}

// ListByEmployeeRange implements attendance.DailyTimeRecordRepository. Both bounds are inclusive.
func (d *dailyTimeRecordRepositoryImpl) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.DailyTimeRecord, error) {
	q := GetQuerier(ctx, d.db)

	query := `
		SELECT ` + dailyTimeRecordColumns + `
		FROM daily_time_records
		WHERE employee_id = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily time records: %w", err)
	}
	defer rows.Close()

	var records []attendance.DailyTimeRecord
	for rows.Next() {
		record, err := scanDailyTimeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily time record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SetOvertimeApproved implements attendance.DailyTimeRecordRepository.
func (d *dailyTimeRecordRepositoryImpl) SetOvertimeApproved(ctx context.Context, employeeID string, date time.Time, approved bool) error {
	q := GetQuerier(ctx, d.db)

	commandTag, err := q.Exec(ctx, `
		UPDATE daily_time_records
		SET overtime_approved = $3, updated_at = NOW()
		WHERE employee_id = $1 AND date = $2::date
	`, employeeID, date, approved)
	if err != nil {
		return fmt.Errorf("failed to set overtime approval: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return attendance.ErrDailyTimeRecordNotFound
	}
	return nil
}

func NewDailyTimeRecordRepository(db *database.DB) attendance.DailyTimeRecordRepository {
	return &dailyTimeRecordRepositoryImpl{db: db}
}

type holidayRepositoryImpl struct {
	db *database.DB
}

// ListBetween implements attendance.HolidayRepository.
func (h *holidayRepositoryImpl) ListBetween(ctx context.Context, from, to time.Time) ([]attendance.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		SELECT id, date, name, type, is_national, work_location
		FROM holidays
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date, name
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []attendance.Holiday
	for rows.Next() {
		var holiday attendance.Holiday
		if err := rows.Scan(&holiday.ID, &holiday.Date, &holiday.Name, &holiday.Type, &holiday.IsNational, &holiday.WorkLocation); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, holiday)
	}
	return holidays, rows.Err()
}

// Create implements attendance.HolidayRepository.
func (h *holidayRepositoryImpl) Create(ctx context.Context, holiday attendance.Holiday) (attendance.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		INSERT INTO holidays (id, date, name, type, is_national, work_location)
		VALUES (uuidv7(), $1::date, $2, $3, $4, $5)
		RETURNING id
	`

	err := q.QueryRow(ctx, query, holiday.Date, holiday.Name, holiday.Type, holiday.IsNational, holiday.WorkLocation).
		Scan(&holiday.ID)
	if err != nil {
		return attendance.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return holiday, nil
}

func NewHolidayRepository(db *database.DB) attendance.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}
