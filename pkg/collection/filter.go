// Package collection holds the collaborators around the tree/slot core:
// filtering, sorting, grouping, selection, aggregation, paged loading, and the
// controller that assembles them into the items → filter → sort → group →
// tree → slots pipeline.
package collection

// FilterManager combines named boolean predicates into one projection filter.
// All registered predicates must match (AND). It satisfies the slot manager's
// filter interface: filtering hides items from the projection and never
// touches the tree.
type FilterManager[T any] struct {
	preds   map[string]func(T) bool
	order   []string
	version uint64
	sig     signal
}

// NewFilterManager creates an empty, inactive filter.
func NewFilterManager[T any]() *FilterManager[T] {
	return &FilterManager[T]{preds: make(map[string]func(T) bool)}
}

// Version returns the monotonic change counter.
func (f *FilterManager[T]) Version() uint64 { return f.version }

// Listen registers a change callback and returns an unsubscribe function.
func (f *FilterManager[T]) Listen(fn func()) func() { return f.sig.listen(fn) }

func (f *FilterManager[T]) changed() {
	f.version++
	f.sig.fire()
}

// Set registers or replaces the predicate under the given name.
func (f *FilterManager[T]) Set(name string, pred func(T) bool) {
	if _, ok := f.preds[name]; !ok {
		f.order = append(f.order, name)
	}
	f.preds[name] = pred
	f.changed()
}

// Remove drops the named predicate. Returns false when the name is unknown;
// no version bump, no notification.
func (f *FilterManager[T]) Remove(name string) bool {
	if _, ok := f.preds[name]; !ok {
		return false
	}
	delete(f.preds, name)
	for i, n := range f.order {
		if n == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	f.changed()
	return true
}

// Clear drops every predicate. No-op when already empty.
func (f *FilterManager[T]) Clear() bool {
	if len(f.preds) == 0 {
		return false
	}
	f.preds = make(map[string]func(T) bool)
	f.order = nil
	f.changed()
	return true
}

// Names returns the registered predicate names in registration order.
func (f *FilterManager[T]) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Active reports whether any predicate is registered.
func (f *FilterManager[T]) Active() bool { return len(f.preds) > 0 }

// Match reports whether every registered predicate accepts the item.
func (f *FilterManager[T]) Match(item T) bool {
	for _, name := range f.order {
		if !f.preds[name](item) {
			return false
		}
	}
	return true
}
