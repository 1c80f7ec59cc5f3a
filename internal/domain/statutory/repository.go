package statutory

import (
	"context"
	"time"
)

// TableReader returns, per scheme, the active version with the latest
// effective_from <= asOf. It returns ErrNoActiveTable when none exists.
type TableReader interface {
	ActiveSSSTable(ctx context.Context, asOf time.Time) (SSSTable, error)
	ActivePhilHealthTable(ctx context.Context, asOf time.Time) (PhilHealthTable, error)
	ActivePagIBIGTable(ctx context.Context, asOf time.Time) (PagIBIGTable, error)
	ActiveWithholdingTable(ctx context.Context, payPeriod PayPeriodType, asOf time.Time) (WithholdingTaxTable, error)
}

// TableRepository stores append-only table versions.
type TableRepository interface {
	TableReader

	CreateSSSTable(ctx context.Context, table SSSTable) (SSSTable, error)
	CreatePhilHealthTable(ctx context.Context, table PhilHealthTable) (PhilHealthTable, error)
	CreatePagIBIGTable(ctx context.Context, table PagIBIGTable) (PagIBIGTable, error)
	CreateWithholdingTable(ctx context.Context, table WithholdingTaxTable) (WithholdingTaxTable, error)
}
