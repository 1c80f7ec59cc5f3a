package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type periodRepository struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) payroll.PeriodRepository {
	return &periodRepository{db: db}
}

const periodColumns = `
	id, name, cutoff_start, cutoff_end, pay_date, pay_frequency, status,
	gross_total, deductions_total, net_total, employee_count,
	closed_at, created_at, updated_at
`

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	err := row.Scan(
		&p.ID, &p.Name, &p.CutoffStart, &p.CutoffEnd, &p.PayDate, &p.PayFrequency, &p.Status,
		&p.GrossTotal, &p.DeductionsTotal, &p.NetTotal, &p.EmployeeCount,
		&p.ClosedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *periodRepository) getOne(ctx context.Context, query string, id string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, err
	}
	return p, nil
}

func (r *periodRepository) Create(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (
			id, name, cutoff_start, cutoff_end, pay_date, pay_frequency, status,
			gross_total, deductions_total, net_total, employee_count, created_at, updated_at
		) VALUES (uuidv7(), $1, $2::date, $3::date, $4::date, $5, $6, 0, 0, 0, 0, NOW(), NOW())
		RETURNING ` + periodColumns

	created, err := scanPeriod(q.QueryRow(ctx, query,
		period.Name, period.CutoffStart, period.CutoffEnd, period.PayDate, period.PayFrequency, period.Status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.Period{}, fmt.Errorf("%w: period %q already exists", payroll.ErrInvalidPeriod, period.Name)
		}
		if isExclusionViolation(err, "no_overlapping_periods") {
			return payroll.Period{}, payroll.ErrOverlappingPeriod
		}
		return payroll.Period{}, fmt.Errorf("failed to create payroll period: %w", err)
	}
	return created, nil
}

func (r *periodRepository) GetByID(ctx context.Context, id string) (payroll.Period, error) {
	p, err := r.getOne(ctx, `SELECT `+periodColumns+` FROM payroll_periods WHERE id = $1`, id)
	if err != nil && !errors.Is(err, payroll.ErrPeriodNotFound) {
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return p, err
}

func (r *periodRepository) List(ctx context.Context) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+periodColumns+` FROM payroll_periods ORDER BY cutoff_start DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *periodRepository) GetForShare(ctx context.Context, id string) (payroll.Period, error) {
	p, err := r.getOne(ctx, `SELECT `+periodColumns+` FROM payroll_periods WHERE id = $1 FOR SHARE`, id)
	if err != nil && !errors.Is(err, payroll.ErrPeriodNotFound) {
		return payroll.Period{}, fmt.Errorf("failed to lock payroll period: %w", err)
	}
	return p, err
}

func (r *periodRepository) GetForClose(ctx context.Context, id string) (payroll.Period, error) {
	p, err := r.getOne(ctx, `SELECT `+periodColumns+` FROM payroll_periods WHERE id = $1 FOR UPDATE NOWAIT`, id)
	if err != nil {
		if isLockNotAvailable(err) {
			return payroll.Period{}, payroll.ErrComputationInFlight
		}
		if errors.Is(err, payroll.ErrPeriodNotFound) {
			return payroll.Period{}, err
		}
		return payroll.Period{}, fmt.Errorf("failed to lock payroll period for close: %w", err)
	}
	return p, nil
}

func (r *periodRepository) UpdateStatus(ctx context.Context, id string, from, to payroll.PeriodStatus) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET status = $3::text,
			closed_at = CASE WHEN $3::text = 'closed' THEN NOW() ELSE NULL END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2::text
		RETURNING ` + periodColumns

	p, err := scanPeriod(q.QueryRow(ctx, query, id, string(from), string(to)))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.Period{}, fmt.Errorf("failed to update payroll period status: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return payroll.Period{}, err
	}
	return payroll.Period{}, fmt.Errorf("%w: period is %s, expected %s", payroll.ErrInvalidPeriodTransition, current.Status, from)
}

// RecomputeTotals sums computed and approved entries in a single statement.
func (r *periodRepository) RecomputeTotals(ctx context.Context, id string) (payroll.PeriodTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods p
		SET gross_total = t.gross,
			deductions_total = t.deductions,
			net_total = t.net,
			employee_count = t.employee_count,
			updated_at = NOW()
		FROM (
			SELECT COALESCE(SUM(gross_pay), 0) AS gross,
				   COALESCE(SUM(total_deductions), 0) AS deductions,
				   COALESCE(SUM(net_pay), 0) AS net,
				   COUNT(*) AS employee_count
			FROM payroll_entries
			WHERE period_id = $1 AND status IN ('computed', 'approved')
		) t
		WHERE p.id = $1
		RETURNING p.gross_total, p.deductions_total, p.net_total, p.employee_count
	`

	var totals payroll.PeriodTotals
	err := q.QueryRow(ctx, query, id).Scan(&totals.Gross, &totals.Deductions, &totals.Net, &totals.EmployeeCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PeriodTotals{}, payroll.ErrPeriodNotFound
		}
		return payroll.PeriodTotals{}, fmt.Errorf("failed to recompute period totals: %w", err)
	}
	return totals, nil
}
