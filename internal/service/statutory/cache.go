package statutory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
)

type cacheKey struct {
	kind string
	asOf time.Time
}

// runCache memoizes table resolution for one payroll run. Tables do not change
// mid-run, so each (table, as-of date) pair is read at most once.
type runCache struct {
	next statutory.TableReader

	mu      sync.Mutex
	entries map[cacheKey]any
}

// NewRunCache wraps a reader with a per-run cache that is safe for concurrent use.
func NewRunCache(next statutory.TableReader) statutory.TableReader {
	return &runCache{next: next, entries: make(map[cacheKey]any)}
}

func cached[T any](c *runCache, key cacheKey, load func() (T, error)) (T, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v.(T), nil
	}
	c.mu.Unlock()

	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
	return v, nil
}

func dateKey(kind string, asOf time.Time) cacheKey {
	y, m, d := asOf.Date()
	return cacheKey{kind: kind, asOf: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (c *runCache) ActiveSSSTable(ctx context.Context, asOf time.Time) (statutory.SSSTable, error) {
	return cached(c, dateKey(string(statutory.SchemeSSS), asOf), func() (statutory.SSSTable, error) {
		return c.next.ActiveSSSTable(ctx, asOf)
	})
}

func (c *runCache) ActivePhilHealthTable(ctx context.Context, asOf time.Time) (statutory.PhilHealthTable, error) {
	return cached(c, dateKey(string(statutory.SchemePhilHealth), asOf), func() (statutory.PhilHealthTable, error) {
		return c.next.ActivePhilHealthTable(ctx, asOf)
	})
}

func (c *runCache) ActivePagIBIGTable(ctx context.Context, asOf time.Time) (statutory.PagIBIGTable, error) {
	return cached(c, dateKey(string(statutory.SchemePagIBIG), asOf), func() (statutory.PagIBIGTable, error) {
		return c.next.ActivePagIBIGTable(ctx, asOf)
	})
}

func (c *runCache) ActiveWithholdingTable(ctx context.Context, payPeriod statutory.PayPeriodType, asOf time.Time) (statutory.WithholdingTaxTable, error) {
	return cached(c, dateKey("withholding:"+string(payPeriod), asOf), func() (statutory.WithholdingTaxTable, error) {
		return c.next.ActiveWithholdingTable(ctx, payPeriod, asOf)
	})
}
