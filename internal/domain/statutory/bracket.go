package statutory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Range is a half-open interval [Min, Max). A nil Max is the unbounded top bracket.
type Range struct {
	Min decimal.Decimal  `json:"min"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// Contains reports Min <= v < Max (or v >= Min when unbounded).
func (r Range) Contains(v decimal.Decimal) bool {
	if v.LessThan(r.Min) {
		return false
	}
	return r.Max == nil || v.LessThan(*r.Max)
}

// ValidatePartition checks that ranges, once sorted by Min, start at floor, are
// contiguous and end with exactly one unbounded bracket.
func ValidatePartition(ranges []Range, floor decimal.Decimal) error {
	if len(ranges) == 0 {
		return fmt.Errorf("%w: table has no brackets", ErrBracketPartition)
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min.LessThan(sorted[j].Min) })

	if !sorted[0].Min.Equal(floor) {
		return fmt.Errorf("%w: first bracket starts at %s, want %s", ErrBracketPartition, sorted[0].Min, floor)
	}
	for i, r := range sorted {
		last := i == len(sorted)-1
		if r.Max == nil {
			if !last {
				return fmt.Errorf("%w: unbounded bracket at %s is not the top bracket", ErrBracketPartition, r.Min)
			}
			continue
		}
		if !r.Max.GreaterThan(r.Min) {
			return fmt.Errorf("%w: empty bracket [%s, %s)", ErrBracketPartition, r.Min, *r.Max)
		}
		if last {
			return fmt.Errorf("%w: top bracket [%s, %s) is bounded", ErrBracketPartition, r.Min, *r.Max)
		}
		next := sorted[i+1].Min
		switch {
		case next.GreaterThan(*r.Max):
			return fmt.Errorf("%w: gap between %s and %s", ErrBracketPartition, *r.Max, next)
		case next.LessThan(*r.Max):
			return fmt.Errorf("%w: overlap at %s", ErrBracketPartition, next)
		}
	}
	return nil
}

// locate returns the index of the single range containing v, or ErrBracketGap.
func locate(ranges []Range, v decimal.Decimal) (int, error) {
	found := -1
	for i, r := range ranges {
		if r.Contains(v) {
			if found >= 0 {
				return -1, fmt.Errorf("%w: %s matches more than one bracket", ErrBracketPartition, v)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: no bracket contains %s", ErrBracketGap, v)
	}
	return found, nil
}
