package slots

import (
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Mode selects the projection construction strategy. Both modes return
// identical results for every query; they trade memory for access cost.
type Mode int

const (
	// Prebuilt materializes the whole slot sequence on every rebuild:
	// O(visible) memory, O(1) slot access.
	Prebuilt Mode = iota
	// OnDemand recomputes any requested slot by walking the tree: O(1) extra
	// memory, O(visible) worst-case access.
	OnDemand
)

// Manager maintains a flat, index-addressable projection of one root node's
// currently visible content. It observes the tree but never owns it.
type Manager[T any] struct {
	root   *tree.Node[T]
	mode   Mode
	filter ItemFilter[T]
	agg    Aggregator[T]

	slots   []Slot[T] // prebuilt mode only
	version uint64

	listeners  []func()
	listenIDs  []int
	nextListID int

	cancelAgg func()
}

// ManagerOption configures a Manager.
type ManagerOption[T any] func(*Manager[T])

// WithMode selects prebuilt or on-demand construction.
func WithMode[T any](mode Mode) ManagerOption[T] {
	return func(m *Manager[T]) { m.mode = mode }
}

// WithFilter binds the item filter consulted during projection.
func WithFilter[T any](f ItemFilter[T]) ManagerOption[T] {
	return func(m *Manager[T]) { m.filter = f }
}

// WithAggregator binds the rollup provider. The Manager recomputes header
// aggregates and bumps its version whenever the provider announces a
// configuration change.
func WithAggregator[T any](a Aggregator[T]) ManagerOption[T] {
	return func(m *Manager[T]) { m.agg = a }
}

// NewManager binds a Manager to a root node. The Manager starts synchronized
// with the tree's current state.
func NewManager[T any](root *tree.Node[T], opts ...ManagerOption[T]) *Manager[T] {
	m := &Manager[T]{root: root, mode: Prebuilt}
	for _, opt := range opts {
		opt(m)
	}
	if m.agg != nil {
		m.cancelAgg = m.agg.Listen(func() {
			m.resync()
			m.notify()
		})
	}
	if m.mode == Prebuilt {
		m.slots = m.materialize()
	}
	return m
}

// Close releases the aggregator subscription. The Manager remains usable for
// queries afterwards.
func (m *Manager[T]) Close() {
	if m.cancelAgg != nil {
		m.cancelAgg()
		m.cancelAgg = nil
	}
}

// Root returns the observed root node.
func (m *Manager[T]) Root() *tree.Node[T] { return m.root }

// Version returns the monotonic change counter, bumped by any rebuild or
// visible state change. Consumers memoize rendered output on it.
func (m *Manager[T]) Version() uint64 { return m.version }

// Listen registers a change callback, fired exactly once per public mutating
// call after state is fully updated. Returns an unsubscribe function.
func (m *Manager[T]) Listen(fn func()) func() {
	id := m.nextListID
	m.nextListID++
	m.listeners = append(m.listeners, fn)
	m.listenIDs = append(m.listenIDs, id)
	return func() {
		for i, lid := range m.listenIDs {
			if lid == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				m.listenIDs = append(m.listenIDs[:i], m.listenIDs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager[T]) notify() {
	snapshot := make([]func(), len(m.listeners))
	copy(snapshot, m.listeners)
	for _, fn := range snapshot {
		fn()
	}
}

// resync bumps the version and, in prebuilt mode, rematerializes the slot
// slice. It never notifies; public entry points notify once at the end.
func (m *Manager[T]) resync() {
	if m.mode == Prebuilt {
		m.slots = m.materialize()
	}
	m.version++
}

// SetRoot rebinds the Manager to a different root node and resynchronizes.
// Used by controllers that rebuild the tree wholesale on grouping or sorting
// changes. Always notifies.
func (m *Manager[T]) SetRoot(root *tree.Node[T]) {
	m.root = root
	m.resync()
	m.notify()
}

// Rebuild forces recomputation and always notifies, even when the output is
// unchanged.
func (m *Manager[T]) Rebuild() {
	defer metrics.Timer(metrics.SlotRebuild)()
	m.resync()
	m.notify()
}

// ── Projection walk ──

// passes reports whether an item survives the bound filter.
func (m *Manager[T]) passes(item T) bool {
	return m.filter == nil || !m.filter.Active() || m.filter.Match(item)
}

// visibleItems returns a node's direct items surviving the filter.
func (m *Manager[T]) visibleItems(n *tree.Node[T]) []T {
	items := n.Items()
	if m.filter == nil || !m.filter.Active() {
		return items
	}
	out := items[:0]
	for _, it := range items {
		if m.filter.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// walk emits the visible slot sequence in order until fn returns false.
// Explicit stack: projection depth is unbounded.
func (m *Manager[T]) walk(fn func(Slot[T]) bool) {
	base := m.root.Depth()
	idx := 0
	stack := []*tree.Node[T]{m.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rel := n.Depth() - base
		if n != m.root {
			if !fn(m.headerSlot(n, idx, rel-1)) {
				return
			}
			idx++
		}
		if n.Collapsed() {
			continue // header stays, content pruned
		}
		for _, it := range n.Items() {
			if !m.passes(it) {
				continue
			}
			if !fn(ItemSlot[T]{Index: idx, Depth: rel, Key: n.Key(it), Item: it}) {
				return
			}
			idx++
		}
		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// headerSlot builds the GroupHeaderSlot for a node at the given flat index.
func (m *Manager[T]) headerSlot(n *tree.Node[T], idx, depth int) GroupHeaderSlot[T] {
	visible := m.visibleItems(n)
	s := GroupHeaderSlot[T]{
		Index:      idx,
		Depth:      depth,
		Node:       n,
		Collapsed:  n.Collapsed(),
		ItemCount:  len(visible),
		TotalCount: n.FlattenedLength(),
	}
	if tag, ok := n.Extra().(GroupTag); ok {
		s.GroupOptionID = tag.OptionID
	}
	if m.agg != nil {
		s.Aggregates = m.agg.Compute(visible)
	}
	return s
}

// materialize walks the whole visible tree into a slot slice.
func (m *Manager[T]) materialize() []Slot[T] {
	var out []Slot[T]
	m.walk(func(s Slot[T]) bool {
		out = append(out, s)
		return true
	})
	return out
}

// ── Queries ──

// TotalSlots returns the number of addressable slots.
func (m *Manager[T]) TotalSlots() int {
	if m.mode == Prebuilt {
		return len(m.slots)
	}
	count := 0
	m.walk(func(Slot[T]) bool {
		count++
		return true
	})
	return count
}

// IsEmpty reports whether the projection holds no slots.
func (m *Manager[T]) IsEmpty() bool {
	if m.mode == Prebuilt {
		return len(m.slots) == 0
	}
	empty := true
	m.walk(func(Slot[T]) bool {
		empty = false
		return false
	})
	return empty
}

// IsNotEmpty is the negation of IsEmpty.
func (m *Manager[T]) IsNotEmpty() bool { return !m.IsEmpty() }

// UniqueItemCount returns the number of distinct visible items, headers
// excluded.
func (m *Manager[T]) UniqueItemCount() int {
	seen := map[string]struct{}{}
	m.each(func(s Slot[T]) bool {
		if is, ok := s.(ItemSlot[T]); ok {
			seen[is.Key] = struct{}{}
		}
		return true
	})
	return len(seen)
}

// each iterates the slot sequence from whichever representation is current.
func (m *Manager[T]) each(fn func(Slot[T]) bool) {
	if m.mode == Prebuilt {
		for _, s := range m.slots {
			if !fn(s) {
				return
			}
		}
		return
	}
	m.walk(fn)
}

// GetSlot returns the slot at index i, or nil outside [0, TotalSlots).
// Prebuilt mode answers in O(1); on-demand mode walks the visible sequence
// from the start and stops at i, so access costs O(i) rather than the
// O(depth×fan-out) a per-subtree slot-count cache would allow.
func (m *Manager[T]) GetSlot(i int) Slot[T] {
	if i < 0 {
		return nil
	}
	if m.mode == Prebuilt {
		if i >= len(m.slots) {
			return nil
		}
		return m.slots[i]
	}
	var found Slot[T]
	m.walk(func(s Slot[T]) bool {
		if s.SlotIndex() == i {
			found = s
			return false
		}
		return true
	})
	return found
}

// IsHeader reports whether slot i is a group header; false out of range.
func (m *Manager[T]) IsHeader(i int) bool {
	s := m.GetSlot(i)
	_, ok := s.(GroupHeaderSlot[T])
	return ok
}

// GetItem returns the item at slot i when it is an ItemSlot.
func (m *Manager[T]) GetItem(i int) (T, bool) {
	if is, ok := m.GetSlot(i).(ItemSlot[T]); ok {
		return is.Item, true
	}
	var zero T
	return zero, false
}

// GetSlotRange returns up to count slots starting at start, clamped to the
// valid range. Empty when start is already out of range.
func (m *Manager[T]) GetSlotRange(start, count int) []Slot[T] {
	if start < 0 || count <= 0 {
		return nil
	}
	var out []Slot[T]
	m.each(func(s Slot[T]) bool {
		i := s.SlotIndex()
		if i < start {
			return true
		}
		if i >= start+count {
			return false
		}
		out = append(out, s)
		return true
	})
	return out
}

// IndexOfKey returns the flat index of the visible item with the given key,
// or -1 when the key is absent, hidden by collapse, or filtered out.
func (m *Manager[T]) IndexOfKey(key string) int {
	found := -1
	m.each(func(s Slot[T]) bool {
		if is, ok := s.(ItemSlot[T]); ok && is.Key == key {
			found = is.Index
			return false
		}
		return true
	})
	return found
}

// ── Navigation (skips header slots) ──

// NextItemAfter returns the nearest item slot strictly after index i.
func (m *Manager[T]) NextItemAfter(i int) (ItemSlot[T], bool) {
	var found ItemSlot[T]
	ok := false
	m.each(func(s Slot[T]) bool {
		if s.SlotIndex() <= i {
			return true
		}
		if is, isItem := s.(ItemSlot[T]); isItem {
			found, ok = is, true
			return false
		}
		return true
	})
	return found, ok
}

// PrevItemBefore returns the nearest item slot strictly before index i.
func (m *Manager[T]) PrevItemBefore(i int) (ItemSlot[T], bool) {
	var found ItemSlot[T]
	ok := false
	m.each(func(s Slot[T]) bool {
		if s.SlotIndex() >= i {
			return false
		}
		if is, isItem := s.(ItemSlot[T]); isItem {
			found, ok = is, true
		}
		return true
	})
	return found, ok
}

// AdjacentItem returns the item following the one with the given key, falling
// back to the preceding item when the key is the last item overall. False
// when the key is not visible or no other item exists.
func (m *Manager[T]) AdjacentItem(key string) (T, bool) {
	var zero T
	at := m.IndexOfKey(key)
	if at < 0 {
		return zero, false
	}
	if next, ok := m.NextItemAfter(at); ok {
		return next.Item, true
	}
	if prev, ok := m.PrevItemBefore(at); ok {
		return prev.Item, true
	}
	return zero, false
}

// ── Collapse surface ──
//
// These operate on the whole tree, not just its visible part: an invisible
// descendant of a collapsed ancestor stays independently toggleable so its
// state is already correct once the ancestor re-expands.

// Collapse collapses the node with the given id, located anywhere in the
// tree. No-op (no version bump, no notification) when the id is missing or
// the node is already collapsed.
func (m *Manager[T]) Collapse(id string) bool {
	return m.setCollapsed(id, tree.CollapseOn)
}

// Expand expands the node with the given id. Same no-op rules as Collapse.
func (m *Manager[T]) Expand(id string) bool {
	return m.setCollapsed(id, tree.CollapseOff)
}

// ToggleCollapse flips the node with the given id. No-op when the id is
// missing.
func (m *Manager[T]) ToggleCollapse(id string) bool {
	return m.setCollapsed(id, tree.CollapseToggle)
}

func (m *Manager[T]) setCollapsed(id string, mode tree.CollapseMode) bool {
	n := m.root.FindNode(id)
	if n == nil {
		return false
	}
	if !n.Collapse(mode) {
		return false
	}
	m.resync()
	m.notify()
	return true
}

// CollapseAll collapses every node below the root. The root itself never
// collapses through this surface: collapsing it would prune the entire
// projection, headers included. No-op when nothing changed.
func (m *Manager[T]) CollapseAll() bool {
	changed := false
	for _, c := range m.root.Children() {
		changed = c.CollapseAll() || changed
	}
	if !changed {
		return false
	}
	m.resync()
	m.notify()
	return true
}

// ExpandAll expands every node in the tree. No-op when already uniform.
func (m *Manager[T]) ExpandAll() bool {
	if !m.root.ExpandAll() {
		return false
	}
	m.resync()
	m.notify()
	return true
}

// CollapseToLevel applies the node-level depth cutoff to the whole tree and
// resynchronizes the projection. The level is clamped to 1 so the root itself
// never collapses through this surface.
func (m *Manager[T]) CollapseToLevel(level int) bool {
	if level < 1 {
		level = 1
	}
	if !m.root.CollapseToLevel(level) {
		return false
	}
	m.resync()
	m.notify()
	return true
}

// RestoreCollapseState applies a snapshot to the whole tree. No-op when
// nothing changes.
func (m *Manager[T]) RestoreCollapseState(s *tree.CollapseState) bool {
	if !m.root.RestoreCollapseState(s) {
		return false
	}
	m.resync()
	m.notify()
	return true
}

// CaptureCollapseState snapshots the tree's collapsed ids.
func (m *Manager[T]) CaptureCollapseState() *tree.CollapseState {
	return m.root.CaptureCollapseState()
}

// CollapseWhere collapses every group node whose GroupInfo matches pred,
// regardless of current visibility. Returns the number of nodes that changed
// state; one notification fires when that is non-zero.
func (m *Manager[T]) CollapseWhere(pred func(GroupInfo) bool) int {
	return m.setCollapsedWhere(pred, tree.CollapseOn)
}

// ExpandWhere expands every group node whose GroupInfo matches pred.
func (m *Manager[T]) ExpandWhere(pred func(GroupInfo) bool) int {
	return m.setCollapsedWhere(pred, tree.CollapseOff)
}

func (m *Manager[T]) setCollapsedWhere(pred func(GroupInfo) bool, mode tree.CollapseMode) int {
	changed := 0
	for _, n := range m.root.Descendants(false) {
		if n == m.root {
			continue
		}
		info := GroupInfo{
			GroupID:    n.ID(),
			Label:      groupLabel(n.ID()),
			Depth:      n.Depth() - m.root.Depth() - 1,
			Collapsed:  n.Collapsed(),
			ItemCount:  len(m.visibleItems(n)),
			TotalCount: n.FlattenedLength(),
		}
		if !pred(info) {
			continue
		}
		if n.Collapse(mode) {
			changed++
		}
	}
	if changed > 0 {
		m.resync()
		m.notify()
	}
	return changed
}
