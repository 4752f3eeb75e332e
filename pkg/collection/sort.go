package collection

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Direction orders a sort field ascending or descending.
type Direction int

const (
	// Ascending sorts smallest first.
	Ascending Direction = iota
	// Descending sorts largest first.
	Descending
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Comparator is a three-way comparison: negative when a orders before b.
type Comparator[T any] func(a, b T) int

// SortField is one (comparator, direction) pair in the sort chain. Fields are
// consulted in order; the first non-zero comparison wins.
type SortField[T any] struct {
	ID        string
	Compare   Comparator[T]
	Direction Direction
}

// KeyExtractor precomputes a cheap string sort key for an item. ok = false
// means the item has no key for the active field (missing/null value).
type KeyExtractor[T any] func(item T) (key string, ok bool)

// NullKeyPolicy decides the order of items whose precomputed sort keys are
// both absent. The default defers to the full comparator chain, so keyless
// items keep the exact order the plain sort would give them.
type NullKeyPolicy int

const (
	// NullKeysFallback compares keyless items with the full comparator chain.
	NullKeysFallback NullKeyPolicy = iota
	// NullKeysFirst places keyless items before keyed ones.
	NullKeysFirst
	// NullKeysLast places keyless items after keyed ones.
	NullKeysLast
)

// schwartzianThreshold is the list size past which Sort precomputes sort keys
// once per item instead of re-deriving them inside the comparator.
const schwartzianThreshold = 1000

// SortManager orders item lists by a chain of directional fields with a
// stable item-key tiebreak. Large lists go through a decorate-sort-undecorate
// pass when a key extractor is configured.
type SortManager[T any] struct {
	keyOf      tree.KeyFunc[T]
	fields     []SortField[T]
	extractor  KeyExtractor[T]
	nullPolicy NullKeyPolicy
	version    uint64
	sig        signal
}

// NewSortManager creates a SortManager with no fields: Sort then orders by
// item key alone.
func NewSortManager[T any](keyOf tree.KeyFunc[T]) *SortManager[T] {
	return &SortManager[T]{keyOf: keyOf}
}

// Version returns the monotonic change counter.
func (s *SortManager[T]) Version() uint64 { return s.version }

// Listen registers a change callback and returns an unsubscribe function.
func (s *SortManager[T]) Listen(fn func()) func() { return s.sig.listen(fn) }

func (s *SortManager[T]) changed() {
	s.version++
	s.sig.fire()
}

// SetFields replaces the sort chain.
func (s *SortManager[T]) SetFields(fields ...SortField[T]) {
	s.fields = append([]SortField[T](nil), fields...)
	s.changed()
}

// Fields returns a copy of the sort chain.
func (s *SortManager[T]) Fields() []SortField[T] {
	return append([]SortField[T](nil), s.fields...)
}

// FlipDirection reverses the named field's direction. Returns false when the
// field is unknown; no version bump, no notification.
func (s *SortManager[T]) FlipDirection(fieldID string) bool {
	for i := range s.fields {
		if s.fields[i].ID == fieldID {
			s.fields[i].Direction = s.fields[i].Direction.Flip()
			s.changed()
			return true
		}
	}
	return false
}

// SetKeyExtractor configures the precomputed sort key for large lists. A nil
// extractor disables the decorate-sort-undecorate path.
func (s *SortManager[T]) SetKeyExtractor(ex KeyExtractor[T]) {
	s.extractor = ex
	s.changed()
}

// SetNullKeyPolicy picks the ordering of items with absent precomputed keys.
func (s *SortManager[T]) SetNullKeyPolicy(p NullKeyPolicy) {
	s.nullPolicy = p
	s.changed()
}

// compare runs the full comparator chain with the item-key tiebreak.
func (s *SortManager[T]) compare(a, b T) int {
	for _, f := range s.fields {
		c := f.Compare(a, b)
		if f.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return strings.Compare(s.keyOf(a), s.keyOf(b))
}

// Sort orders items in place, stably. Lists at or past the threshold with a
// configured extractor are decorated with precomputed keys first, so the
// extractor runs once per item instead of once per comparison.
func (s *SortManager[T]) Sort(items []T) {
	defer metrics.Timer(metrics.SortItems)()
	if s.extractor != nil && len(items) >= schwartzianThreshold {
		s.sortDecorated(items)
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return s.compare(items[i], items[j]) < 0
	})
}

type decorated[T any] struct {
	item T
	key  string
	ok   bool
}

func (s *SortManager[T]) sortDecorated(items []T) {
	dec := make([]decorated[T], len(items))
	for i, it := range items {
		key, ok := s.extractor(it)
		dec[i] = decorated[T]{item: it, key: key, ok: ok}
	}
	sort.SliceStable(dec, func(i, j int) bool {
		a, b := dec[i], dec[j]
		if a.ok && b.ok {
			if c := strings.Compare(a.key, b.key); c != 0 {
				return c < 0
			}
			return s.compare(a.item, b.item) < 0
		}
		if s.nullPolicy == NullKeysFallback {
			return s.compare(a.item, b.item) < 0
		}
		if a.ok == b.ok {
			return false // both keyless, equal; stability keeps input order
		}
		if s.nullPolicy == NullKeysFirst {
			return !a.ok
		}
		return a.ok // NullKeysLast
	})
	for i := range dec {
		items[i] = dec[i].item
	}
}
