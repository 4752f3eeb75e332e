package collection

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggregateKind selects the numeric rollup applied to a group's values.
type AggregateKind int

const (
	// AggregateSum totals the values.
	AggregateSum AggregateKind = iota
	// AggregateMean averages the values.
	AggregateMean
	// AggregateMin takes the smallest value.
	AggregateMin
	// AggregateMax takes the largest value.
	AggregateMax
	// AggregateCount counts the items; Value is not consulted.
	AggregateCount
)

// AggregateSpec names one rollup: extract a numeric value per item, reduce
// with the given kind.
type AggregateSpec[T any] struct {
	Name  string
	Kind  AggregateKind
	Value func(item T) float64
}

// AggregationManager computes named rollups for group headers. The slot
// manager subscribes to it and refreshes header aggregates whenever the spec
// set changes, without an explicit rebuild request.
type AggregationManager[T any] struct {
	specs   []AggregateSpec[T]
	version uint64
	sig     signal
}

// NewAggregationManager creates a manager with the given specs.
func NewAggregationManager[T any](specs ...AggregateSpec[T]) *AggregationManager[T] {
	return &AggregationManager[T]{specs: specs}
}

// Version returns the monotonic change counter.
func (a *AggregationManager[T]) Version() uint64 { return a.version }

// Listen registers a configuration-change callback and returns an unsubscribe
// function.
func (a *AggregationManager[T]) Listen(fn func()) func() { return a.sig.listen(fn) }

// SetSpecs replaces the rollup set and announces the change.
func (a *AggregationManager[T]) SetSpecs(specs ...AggregateSpec[T]) {
	a.specs = append([]AggregateSpec[T](nil), specs...)
	a.version++
	a.sig.fire()
}

// Specs returns a copy of the configured rollups.
func (a *AggregationManager[T]) Specs() []AggregateSpec[T] {
	return append([]AggregateSpec[T](nil), a.specs...)
}

// Compute returns the rollup values for one group's items. Nil when no specs
// are configured; sum/mean of an empty group is 0, min/max are omitted for
// empty groups.
func (a *AggregationManager[T]) Compute(items []T) map[string]float64 {
	if len(a.specs) == 0 {
		return nil
	}
	out := make(map[string]float64, len(a.specs))
	var vals []float64
	for _, spec := range a.specs {
		if spec.Kind == AggregateCount {
			out[spec.Name] = float64(len(items))
			continue
		}
		vals = vals[:0]
		for _, it := range items {
			vals = append(vals, spec.Value(it))
		}
		switch spec.Kind {
		case AggregateSum:
			out[spec.Name] = floats.Sum(vals)
		case AggregateMean:
			if len(vals) == 0 {
				out[spec.Name] = 0
			} else {
				out[spec.Name] = stat.Mean(vals, nil)
			}
		case AggregateMin:
			if len(vals) > 0 {
				out[spec.Name] = floats.Min(vals)
			}
		case AggregateMax:
			if len(vals) > 0 {
				out[spec.Name] = floats.Max(vals)
			}
		}
	}
	return out
}
