package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) payroll.CompensationRepository {
	return &compensationRepository{db: db}
}

func (r *compensationRepository) GetEffective(ctx context.Context, employeeID string, asOf time.Time) (payroll.Compensation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, basic_salary, rate_type, effective_date, created_at
		FROM employee_compensations
		WHERE employee_id = $1 AND effective_date <= $2::date
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1
	`

	var c payroll.Compensation
	err := q.QueryRow(ctx, query, employeeID, asOf).
		Scan(&c.ID, &c.EmployeeID, &c.BasicSalary, &c.RateType, &c.EffectiveDate, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Compensation{}, payroll.ErrNoCompensation
		}
		return payroll.Compensation{}, fmt.Errorf("failed to get compensation: %w", err)
	}
	return c, nil
}

func (r *compensationRepository) Create(ctx context.Context, compensation payroll.Compensation) (payroll.Compensation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_compensations (id, employee_id, basic_salary, rate_type, effective_date, created_at)
		VALUES (uuidv7(), $1, $2, $3, $4::date, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		compensation.EmployeeID, compensation.BasicSalary, compensation.RateType, compensation.EffectiveDate,
	).Scan(&compensation.ID, &compensation.CreatedAt)
	if err != nil {
		return payroll.Compensation{}, fmt.Errorf("failed to create compensation: %w", err)
	}
	return compensation, nil
}

type adjustmentRepository struct {
	db *database.DB
}

func NewAdjustmentRepository(db *database.DB) payroll.AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

const adjustmentColumns = `
	id, employee_id, category, code, description, amount, frequency,
	effective_from, effective_to, remaining_occurrences, remaining_balance,
	is_taxable, is_active, created_at, updated_at
`

func scanAdjustment(row pgx.Row) (payroll.Adjustment, error) {
	var a payroll.Adjustment
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.Category, &a.Code, &a.Description, &a.Amount, &a.Frequency,
		&a.EffectiveFrom, &a.EffectiveTo, &a.RemainingOccurrences, &a.RemainingBalance,
		&a.IsTaxable, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *adjustmentRepository) ListApplicable(ctx context.Context, employeeID string, from, to time.Time) ([]payroll.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + adjustmentColumns + `
		FROM payroll_adjustments
		WHERE employee_id = $1
		  AND is_active = TRUE
		  AND effective_from <= $3::date
		  AND (effective_to IS NULL OR effective_to >= $2::date)
		  AND (remaining_occurrences IS NULL OR remaining_occurrences > 0)
		  AND (remaining_balance IS NULL OR remaining_balance > 0)
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []payroll.Adjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

func (r *adjustmentRepository) Create(ctx context.Context, adjustment payroll.Adjustment) (payroll.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_adjustments (
			id, employee_id, category, code, description, amount, frequency,
			effective_from, effective_to, remaining_occurrences, remaining_balance,
			is_taxable, is_active, created_at, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7::date, $8::date, $9, $10, $11, $12, NOW(), NOW())
		RETURNING ` + adjustmentColumns

	created, err := scanAdjustment(q.QueryRow(ctx, query,
		adjustment.EmployeeID, adjustment.Category, adjustment.Code, adjustment.Description, adjustment.Amount, adjustment.Frequency,
		adjustment.EffectiveFrom, adjustment.EffectiveTo, adjustment.RemainingOccurrences, adjustment.RemainingBalance,
		adjustment.IsTaxable, adjustment.IsActive,
	))
	if err != nil {
		return payroll.Adjustment{}, fmt.Errorf("failed to create adjustment: %w", err)
	}
	return created, nil
}

// Consume decrements occurrences and balance. Untracked counters stay NULL.
func (r *adjustmentRepository) Consume(ctx context.Context, id string, amount decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `
		UPDATE payroll_adjustments
		SET remaining_occurrences = remaining_occurrences - 1,
			remaining_balance = remaining_balance - $2,
			updated_at = NOW()
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("failed to consume adjustment: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return payroll.ErrAdjustmentNotFound
	}
	return nil
}
