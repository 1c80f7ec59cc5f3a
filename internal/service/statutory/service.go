package statutory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

type tableServiceImpl struct {
	transactor database.Transactor
	tableRepo  statutory.TableRepository
}

// EnsureSeedTables implements statutory.TableService.
func (s *tableServiceImpl) EnsureSeedTables(ctx context.Context) error {
	asOf := fixtures.SeedEffectiveFrom

	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.tableRepo.ActiveSSSTable(ctx, asOf); errors.Is(err, statutory.ErrNoActiveTable) {
			if err := create(ctx, "sss", fixtures.GetDefaultSSSTable(), s.tableRepo.CreateSSSTable); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if _, err := s.tableRepo.ActivePhilHealthTable(ctx, asOf); errors.Is(err, statutory.ErrNoActiveTable) {
			if err := create(ctx, "philhealth", fixtures.GetDefaultPhilHealthTable(), s.tableRepo.CreatePhilHealthTable); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if _, err := s.tableRepo.ActivePagIBIGTable(ctx, asOf); errors.Is(err, statutory.ErrNoActiveTable) {
			if err := create(ctx, "pagibig", fixtures.GetDefaultPagIBIGTable(), s.tableRepo.CreatePagIBIGTable); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, table := range fixtures.GetDefaultWithholdingTables() {
			_, err := s.tableRepo.ActiveWithholdingTable(ctx, table.PayPeriod, asOf)
			if errors.Is(err, statutory.ErrNoActiveTable) {
				if err := create(ctx, "withholding "+string(table.PayPeriod), table, s.tableRepo.CreateWithholdingTable); err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

type validatable interface {
	Validate() error
}

func create[T validatable](ctx context.Context, name string, table T, insert func(context.Context, T) (T, error)) error {
	if err := table.Validate(); err != nil {
		return fmt.Errorf("seed %s table: %w", name, err)
	}
	if _, err := insert(ctx, table); err != nil {
		return fmt.Errorf("failed to seed %s table: %w", name, err)
	}
	slog.Info("Seeded statutory table", "table", name, "effective_from", fixtures.SeedEffectiveFrom.Format("2006-01-02"))
	return nil
}

func NewTableService(transactor database.Transactor, tableRepo statutory.TableRepository) statutory.TableService {
	return &tableServiceImpl{transactor: transactor, tableRepo: tableRepo}
}
