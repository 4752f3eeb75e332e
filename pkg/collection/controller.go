package collection

import (
	"context"
	"fmt"
	"log"

	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/slots"
	"github.com/vanderheijden86/arbor/pkg/tree"
	"github.com/vanderheijden86/arbor/pkg/watcher"
)

// Controller orchestrates the pipeline: items → sort → group → node tree →
// slot projection. It owns the collaborators, rebuilds the tree whenever
// grouping or sorting changes, and re-projects whenever the filter changes.
// Collapse state and the selection anchor survive rebuilds.
//
// The controller is synchronous and single-owner like the core it drives;
// AutoRefresh is the one deliberate exception and documents its own rules.
type Controller[T any] struct {
	keyOf  tree.KeyFunc[T]
	rootID string
	mode   slots.Mode

	items []T

	filter    *FilterManager[T]
	sorter    *SortManager[T]
	grouper   *GroupManager[T]
	selection *SelectionManager
	agg       *AggregationManager[T]
	pager     *PaginationManager[T]

	root  *tree.Node[T]
	slots *slots.Manager[T]

	cancels []func()
}

// ControllerOption configures a Controller.
type ControllerOption[T any] func(*Controller[T])

// WithRootID overrides the id of the synthesized root node (default "root").
func WithRootID[T any](id string) ControllerOption[T] {
	return func(c *Controller[T]) { c.rootID = id }
}

// WithSlotMode selects the projection strategy (default prebuilt).
func WithSlotMode[T any](mode slots.Mode) ControllerOption[T] {
	return func(c *Controller[T]) { c.mode = mode }
}

// WithGroupOptions registers the grouping options.
func WithGroupOptions[T any](options ...GroupOption[T]) ControllerOption[T] {
	return func(c *Controller[T]) { c.grouper = NewGroupManager(options...) }
}

// WithAggregates registers header rollups.
func WithAggregates[T any](specs ...AggregateSpec[T]) ControllerOption[T] {
	return func(c *Controller[T]) { c.agg = NewAggregationManager(specs...) }
}

// WithLoader binds a paged loader for Refresh/LoadMore. pageSize <= 0 uses
// the default.
func WithLoader[T any](loader Loader[T], pageSize int) ControllerOption[T] {
	return func(c *Controller[T]) { c.pager = NewPaginationManager(loader, pageSize) }
}

// NewController assembles the pipeline around an item key function. The
// controller starts with an empty item list and an already-consistent
// projection.
func NewController[T any](keyOf tree.KeyFunc[T], opts ...ControllerOption[T]) *Controller[T] {
	c := &Controller[T]{
		keyOf:     keyOf,
		rootID:    "root",
		filter:    NewFilterManager[T](),
		selection: NewSelectionManager(),
	}
	c.sorter = NewSortManager(keyOf)
	for _, opt := range opts {
		opt(c)
	}
	if c.grouper == nil {
		c.grouper = NewGroupManager[T]()
	}
	if c.agg == nil {
		c.agg = NewAggregationManager[T]()
	}

	c.root = c.grouper.BuildTree(c.rootID, c.keyOf, nil)
	c.slots = slots.NewManager(c.root,
		slots.WithMode[T](c.mode),
		slots.WithFilter[T](c.filter),
		slots.WithAggregator[T](c.agg),
	)

	// Filter changes re-project; sort/group changes rebuild the tree.
	c.cancels = append(c.cancels,
		c.filter.Listen(func() { c.slots.Rebuild() }),
		c.sorter.Listen(func() { c.rebuildTree() }),
		c.grouper.Listen(func() { c.rebuildTree() }),
	)
	return c
}

// Close unsubscribes the controller from its collaborators and releases the
// slot manager's aggregator subscription.
func (c *Controller[T]) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	c.slots.Close()
}

// Filter returns the filter manager.
func (c *Controller[T]) Filter() *FilterManager[T] { return c.filter }

// Sorter returns the sort manager.
func (c *Controller[T]) Sorter() *SortManager[T] { return c.sorter }

// Grouper returns the group manager.
func (c *Controller[T]) Grouper() *GroupManager[T] { return c.grouper }

// Selection returns the selection manager.
func (c *Controller[T]) Selection() *SelectionManager { return c.selection }

// Aggregates returns the aggregation manager.
func (c *Controller[T]) Aggregates() *AggregationManager[T] { return c.agg }

// Slots returns the slot manager projecting the current tree.
func (c *Controller[T]) Slots() *slots.Manager[T] { return c.slots }

// Root returns the current tree root.
func (c *Controller[T]) Root() *tree.Node[T] { return c.root }

// Items returns a copy of the current item list, pre-filter.
func (c *Controller[T]) Items() []T {
	return append([]T(nil), c.items...)
}

// SetItems replaces the item list and rebuilds the tree. Selection entries
// for keys that vanished are pruned.
func (c *Controller[T]) SetItems(items []T) {
	c.items = append([]T(nil), items...)
	keys := make(map[string]struct{}, len(items))
	for _, it := range items {
		keys[c.keyOf(it)] = struct{}{}
	}
	c.selection.Prune(func(key string) bool {
		_, ok := keys[key]
		return ok
	})
	c.rebuildTree()
}

// rebuildTree re-runs sort and group over the current items, carries the old
// tree's collapse state onto the new one and rebinds the projection.
func (c *Controller[T]) rebuildTree() {
	defer metrics.Timer(metrics.TreeBuild)()
	sorted := append([]T(nil), c.items...)
	c.sorter.Sort(sorted)

	next := c.grouper.BuildTree(c.rootID, c.keyOf, sorted)
	if c.root != nil {
		next.RestoreCollapseState(c.root.CaptureCollapseState())
	}
	old := c.root
	c.root = next
	c.slots.SetRoot(next)
	if old != nil {
		old.Dispose()
	}
}

// SearchItems walks every node, collapsed or not, and returns the items the
// predicate accepts in BFS order.
func (c *Controller[T]) SearchItems(match func(T) bool) []T {
	return c.root.FindAllItems(match)
}

// RevealKey expands the node holding the key and every ancestor so the item
// becomes visible, moves the selection anchor to it and returns its flat slot
// index. -1 when the key does not exist anywhere in the tree.
func (c *Controller[T]) RevealKey(key string) int {
	n := c.root.FindNodeByKey(key)
	if n == nil {
		return -1
	}
	expanded := false
	for a := n; a != nil; a = a.Parent() {
		expanded = a.Collapse(tree.CollapseOff) || expanded
	}
	if expanded {
		c.slots.Rebuild()
	}
	c.selection.SetAnchor(key)
	return c.slots.IndexOfKey(key)
}

// AnchorIndex returns the flat slot index of the selection anchor, -1 when
// the anchor is unset or not visible.
func (c *Controller[T]) AnchorIndex() int {
	if c.selection.Anchor() == "" {
		return -1
	}
	return c.slots.IndexOfKey(c.selection.Anchor())
}

// Refresh reloads every page from the bound loader and swaps the item list
// in. ErrNoLoader when no loader is configured.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	if c.pager == nil {
		return ErrNoLoader
	}
	if err := c.pager.LoadAll(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	c.SetItems(c.pager.Items())
	return nil
}

// LoadMore fetches one more page from the bound loader and appends it.
// Returns how many items arrived.
func (c *Controller[T]) LoadMore(ctx context.Context) (int, error) {
	if c.pager == nil {
		return 0, ErrNoLoader
	}
	n, err := c.pager.LoadMore(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.SetItems(c.pager.Items())
	}
	return n, nil
}

// HasMore reports whether the bound loader has pages left.
func (c *Controller[T]) HasMore() bool {
	return c.pager != nil && c.pager.HasMore()
}

// AutoRefresh watches a backing file and re-runs Refresh whenever it changes,
// until ctx is cancelled. The refresh runs on the watcher's goroutine: while
// AutoRefresh is active the caller must not drive the controller from another
// goroutine. Errors are logged as warnings, never fatal.
func (c *Controller[T]) AutoRefresh(ctx context.Context, path string, opts ...watcher.Option) (func(), error) {
	opts = append(opts, watcher.WithOnChange(func() {
		if err := c.Refresh(ctx); err != nil {
			log.Printf("warning: auto-refresh of %s failed: %v", path, err)
		}
	}))
	w, err := watcher.New(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("auto-refresh watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("auto-refresh watcher: %w", err)
	}
	stop := func() { w.Stop() }
	go func() {
		<-ctx.Done()
		stop()
	}()
	return stop, nil
}
