package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

const workScheduleColumns = `
	id, name, version, kind, work_days, grace_period_minutes,
	break_rule, overtime_rule, night_diff_rule, config, created_at
`

func scanWorkSchedule(row pgx.Row) (schedule.WorkSchedule, error) {
	var (
		ws       schedule.WorkSchedule
		workDays []int32
	)
	var breakJSON, otJSON, ndJSON, cfgJSON []byte
	err := row.Scan(
		&ws.ID, &ws.Name, &ws.Version, &ws.Kind, &workDays, &ws.GracePeriodMinutes,
		&breakJSON, &otJSON, &ndJSON, &cfgJSON, &ws.CreatedAt,
	)
	if err != nil {
		return schedule.WorkSchedule{}, err
	}

	for _, d := range workDays {
		ws.WorkDays = append(ws.WorkDays, time.Weekday(d))
	}
	if err := json.Unmarshal(breakJSON, &ws.Break); err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to decode break rule: %w", err)
	}
	if err := json.Unmarshal(otJSON, &ws.Overtime); err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to decode overtime rule: %w", err)
	}
	if err := json.Unmarshal(ndJSON, &ws.NightDiff); err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to decode night differential rule: %w", err)
	}
	ws.Config, err = schedule.UnmarshalVariant(ws.Kind, cfgJSON)
	if err != nil {
		return schedule.WorkSchedule{}, err
	}
	return ws, nil
}

// Create implements schedule.WorkScheduleRepository. Versions are numbered per name.
func (w *workScheduleRepositoryImpl) Create(ctx context.Context, workSchedule schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	workDays := make([]int32, 0, len(workSchedule.WorkDays))
	for _, d := range workSchedule.WorkDays {
		workDays = append(workDays, int32(d))
	}
	breakJSON, err := json.Marshal(workSchedule.Break)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to encode break rule: %w", err)
	}
	otJSON, err := json.Marshal(workSchedule.Overtime)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to encode overtime rule: %w", err)
	}
	ndJSON, err := json.Marshal(workSchedule.NightDiff)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to encode night differential rule: %w", err)
	}
	cfgJSON, err := schedule.MarshalVariant(workSchedule.Config)
	if err != nil {
		return schedule.WorkSchedule{}, err
	}

	query := `
		INSERT INTO work_schedules (
			id, name, version, kind, work_days, grace_period_minutes,
			break_rule, overtime_rule, night_diff_rule, config, created_at
		)
		SELECT uuidv7(), $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4, $5, $6, $7, $8, NOW()
		FROM work_schedules
		WHERE name = $1
		RETURNING ` + workScheduleColumns

	created, err := scanWorkSchedule(q.QueryRow(ctx, query,
		workSchedule.Name, workSchedule.Config.Kind(), workDays, workSchedule.GracePeriodMinutes,
		breakJSON, otJSON, ndJSON, cfgJSON,
	))
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to create work schedule: %w", err)
	}
	return created, nil
}

// GetByID implements schedule.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) GetByID(ctx context.Context, id string) (schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	query := `SELECT ` + workScheduleColumns + ` FROM work_schedules WHERE id = $1`

	ws, err := scanWorkSchedule(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.WorkSchedule{}, schedule.ErrWorkScheduleNotFound
		}
		return schedule.WorkSchedule{}, fmt.Errorf("failed to get work schedule: %w", err)
	}
	return ws, nil
}

// List implements schedule.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) List(ctx context.Context) ([]schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	query := `SELECT ` + workScheduleColumns + ` FROM work_schedules ORDER BY name, version`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.WorkSchedule
	for rows.Next() {
		ws, err := scanWorkSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work schedule: %w", err)
		}
		schedules = append(schedules, ws)
	}
	return schedules, rows.Err()
}

func NewWorkScheduleRepository(db *database.DB) schedule.WorkScheduleRepository {
	return &workScheduleRepositoryImpl{db: db}
}
