package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRosterRepository struct {
	db *database.DB
}

// GetShiftName implements schedule.ShiftRosterRepository.
func (r *shiftRosterRepository) GetShiftName(ctx context.Context, employeeID string, date time.Time) (string, error) {
	q := GetQuerier(ctx, r.db)

	var name string
	err := q.QueryRow(ctx, `
		SELECT shift_name FROM shift_rosters
		WHERE employee_id = $1 AND date = $2::date
	`, employeeID, date).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", schedule.ErrShiftNotRostered
		}
		return "", fmt.Errorf("failed to get rostered shift: %w", err)
	}
	return name, nil
}

// Upsert implements schedule.ShiftRosterRepository.
func (r *shiftRosterRepository) Upsert(ctx context.Context, entry schedule.ShiftRosterEntry) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO shift_rosters (employee_id, date, shift_name, updated_at)
		VALUES ($1, $2::date, $3, NOW())
		ON CONFLICT (employee_id, date) DO UPDATE SET
			shift_name = EXCLUDED.shift_name,
			updated_at = NOW()
	`, entry.EmployeeID, entry.Date, entry.ShiftName)
	if err != nil {
		return fmt.Errorf("failed to upsert shift roster: %w", err)
	}
	return nil
}

func NewShiftRosterRepository(db *database.DB) schedule.ShiftRosterRepository {
	return &shiftRosterRepository{db: db}
}
