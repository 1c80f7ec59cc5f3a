package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// statutoryTableRepository stores every scheme in one table keyed by scheme and
// pay_period. Brackets live in a JSONB column and are never updated in place.
type statutoryTableRepository struct {
	db *database.DB
}

// activeTable loads the newest active version effective on asOf and decodes its
// brackets into dst.
func (r *statutoryTableRepository) activeTable(ctx context.Context, scheme string, payPeriod *statutory.PayPeriodType, asOf time.Time, dst any) (statutory.TableVersion, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, effective_from, is_active, created_at, brackets
		FROM statutory_tables
		WHERE scheme = $1
		  AND pay_period IS NOT DISTINCT FROM $2
		  AND is_active = TRUE
		  AND effective_from <= $3::date
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1
	`

	var (
		version  statutory.TableVersion
		brackets []byte
	)
	err := q.QueryRow(ctx, query, scheme, payPeriod, asOf).
		Scan(&version.ID, &version.EffectiveFrom, &version.IsActive, &version.CreatedAt, &brackets)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return statutory.TableVersion{}, fmt.Errorf("%s as of %s: %w", scheme, asOf.Format("2006-01-02"), statutory.ErrNoActiveTable)
		}
		return statutory.TableVersion{}, fmt.Errorf("failed to get %s table: %w", scheme, err)
	}
	if err := json.Unmarshal(brackets, dst); err != nil {
		return statutory.TableVersion{}, fmt.Errorf("failed to decode %s brackets: %w", scheme, err)
	}
	return version, nil
}

func (r *statutoryTableRepository) createTable(ctx context.Context, scheme string, payPeriod *statutory.PayPeriodType, version statutory.TableVersion, brackets any) (statutory.TableVersion, error) {
	q := GetQuerier(ctx, r.db)

	data, err := json.Marshal(brackets)
	if err != nil {
		return statutory.TableVersion{}, fmt.Errorf("failed to encode %s brackets: %w", scheme, err)
	}

	query := `
		INSERT INTO statutory_tables (id, scheme, pay_period, effective_from, is_active, brackets, created_at)
		VALUES (uuidv7(), $1, $2, $3::date, $4, $5, NOW())
		RETURNING id, created_at
	`

	err = q.QueryRow(ctx, query, scheme, payPeriod, version.EffectiveFrom, version.IsActive, data).
		Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return statutory.TableVersion{}, fmt.Errorf("failed to create %s table: %w", scheme, err)
	}
	return version, nil
}

// ActiveSSSTable implements statutory.TableReader.
func (r *statutoryTableRepository) ActiveSSSTable(ctx context.Context, asOf time.Time) (statutory.SSSTable, error) {
	var table statutory.SSSTable
	version, err := r.activeTable(ctx, string(statutory.SchemeSSS), nil, asOf, &table.Brackets)
	if err != nil {
		return statutory.SSSTable{}, err
	}
	table.TableVersion = version
	return table, nil
}

// ActivePhilHealthTable implements statutory.TableReader.
func (r *statutoryTableRepository) ActivePhilHealthTable(ctx context.Context, asOf time.Time) (statutory.PhilHealthTable, error) {
	var table statutory.PhilHealthTable
	version, err := r.activeTable(ctx, string(statutory.SchemePhilHealth), nil, asOf, &table.Tiers)
	if err != nil {
		return statutory.PhilHealthTable{}, err
	}
	table.TableVersion = version
	return table, nil
}

// ActivePagIBIGTable implements statutory.TableReader.
func (r *statutoryTableRepository) ActivePagIBIGTable(ctx context.Context, asOf time.Time) (statutory.PagIBIGTable, error) {
	var table statutory.PagIBIGTable
	version, err := r.activeTable(ctx, string(statutory.SchemePagIBIG), nil, asOf, &table.Tiers)
	if err != nil {
		return statutory.PagIBIGTable{}, err
	}
	table.TableVersion = version
	return table, nil
}

// ActiveWithholdingTable implements statutory.TableReader.
func (r *statutoryTableRepository) ActiveWithholdingTable(ctx context.Context, payPeriod statutory.PayPeriodType, asOf time.Time) (statutory.WithholdingTaxTable, error) {
	var table statutory.WithholdingTaxTable
	version, err := r.activeTable(ctx, withholdingScheme, &payPeriod, asOf, &table.Brackets)
	if err != nil {
		return statutory.WithholdingTaxTable{}, err
	}
	table.TableVersion = version
	table.PayPeriod = payPeriod
	return table, nil
}

const withholdingScheme = "withholding_tax"

// CreateSSSTable implements statutory.TableRepository.
func (r *statutoryTableRepository) CreateSSSTable(ctx context.Context, table statutory.SSSTable) (statutory.SSSTable, error) {
	version, err := r.createTable(ctx, string(statutory.SchemeSSS), nil, table.TableVersion, table.Brackets)
	if err != nil {
		return statutory.SSSTable{}, err
	}
	table.TableVersion = version
	return table, nil
}

// CreatePhilHealthTable implements statutory.TableRepository.
func (r *statutoryTableRepository) CreatePhilHealthTable(ctx context.Context, table statutory.PhilHealthTable) (statutory.PhilHealthTable, error) {
	version, err := r.createTable(ctx, string(statutory.SchemePhilHealth), nil, table.TableVersion, table.Tiers)
	if err != nil {
		return statutory.PhilHealthTable{}, err
	}
	table.TableVersion = version
	return table, nil
}

// CreatePagIBIGTable implements statutory.TableRepository.
func (r *statutoryTableRepository) CreatePagIBIGTable(ctx context.Context, table statutory.PagIBIGTable) (statutory.PagIBIGTable, error) {
	version, err := r.createTable(ctx, string(statutory.SchemePagIBIG), nil, table.TableVersion, table.Tiers)
	if err != nil {
		return statutory.PagIBIGTable{}, err
	}
	table.TableVersion = version
	return table, nil
}

// CreateWithholdingTable implements statutory.TableRepository.
func (r *statutoryTableRepository) CreateWithholdingTable(ctx context.Context, table statutory.WithholdingTaxTable) (statutory.WithholdingTaxTable, error) {
	payPeriod := table.PayPeriod
	version, err := r.createTable(ctx, withholdingScheme, &payPeriod, table.TableVersion, table.Brackets)
	if err != nil {
		return statutory.WithholdingTaxTable{}, err
	}
	table.TableVersion = version
	return table, nil
}

func NewStatutoryTableRepository(db *database.DB) statutory.TableRepository {
	return &statutoryTableRepository{db: db}
}
