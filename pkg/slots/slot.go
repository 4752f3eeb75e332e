// Package slots flattens a tree of nodes into a stable, randomly addressable
// sequence of rendering units for virtualized list/tree views.
//
// A Slot is either a group header (one per visible non-root node) or an item.
// The sequence is the pre-order traversal of the visible tree: a node's
// content is excluded exactly when the node or one of its strict ancestors is
// collapsed, or when the active filter rejects an item. The Manager keeps the
// projection in sync with the tree and offers two equivalent construction
// strategies: prebuilt (materialized, O(1) access) and on-demand (lazy walk,
// O(1) extra memory).
package slots

import (
	"strings"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Slot is one addressable unit of the flattened sequence. The kind set is
// closed: a Slot is always an ItemSlot or a GroupHeaderSlot.
type Slot[T any] interface {
	// SlotIndex returns the slot's position in the flat sequence; it always
	// equals the index it was fetched at.
	SlotIndex() int
	// SlotDepth returns the indentation depth (root content at 0).
	SlotDepth() int
	isSlot()
}

// ItemSlot carries one visible item.
type ItemSlot[T any] struct {
	Index int
	Depth int
	Key   string
	Item  T
}

func (ItemSlot[T]) isSlot() {}

// SlotIndex implements Slot.
func (s ItemSlot[T]) SlotIndex() int { return s.Index }

// SlotDepth implements Slot.
func (s ItemSlot[T]) SlotDepth() int { return s.Depth }

// GroupHeaderSlot marks a collapsible boundary in the sequence. GroupOptionID
// is non-empty exactly when the node was synthesized by a grouping option;
// an empty GroupOptionID means the header wraps a genuine tree node.
type GroupHeaderSlot[T any] struct {
	Index         int
	Depth         int
	Node          *tree.Node[T]
	Collapsed     bool
	ItemCount     int // direct items surviving the active filter
	TotalCount    int // all items in the subtree, pre-filter
	Aggregates    map[string]float64
	GroupOptionID string
}

func (GroupHeaderSlot[T]) isSlot() {}

// SlotIndex implements Slot.
func (s GroupHeaderSlot[T]) SlotIndex() int { return s.Index }

// SlotDepth implements Slot.
func (s GroupHeaderSlot[T]) SlotDepth() int { return s.Depth }

// IsGroupHeader reports whether the node was synthesized by a grouping
// option.
func (s GroupHeaderSlot[T]) IsGroupHeader() bool { return s.GroupOptionID != "" }

// IsTreeNode reports whether the node is a genuine tree node rather than a
// synthesized group. Mutually exclusive with IsGroupHeader.
func (s GroupHeaderSlot[T]) IsTreeNode() bool { return s.GroupOptionID == "" }

// GroupTag marks a node as synthesized by a grouping option. Grouping code
// stores it in the node's extra attachment; the Manager reads it back when
// emitting header slots.
type GroupTag struct {
	OptionID string
}

// GroupInfo is the read-only view of a group node passed to CollapseWhere and
// ExpandWhere predicates. It describes every group node in the tree, visible
// or not.
type GroupInfo struct {
	GroupID    string
	Label      string // trailing '/'-segment of the id
	Depth      int
	Collapsed  bool
	ItemCount  int
	TotalCount int
}

// groupLabel derives the display label from a hierarchical '/'-joined id.
func groupLabel(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// ItemFilter rejects items from the projection. Filtering never mutates the
// tree, only the flat sequence.
type ItemFilter[T any] interface {
	// Active reports whether the filter should be consulted at all.
	Active() bool
	// Match reports whether the item stays visible.
	Match(item T) bool
}

// Aggregator computes named numeric rollups for a group's items and announces
// configuration changes, which the Manager picks up without an explicit
// rebuild request.
type Aggregator[T any] interface {
	// Compute returns the rollup values for one group's direct items.
	Compute(items []T) map[string]float64
	// Listen registers a configuration-change callback and returns an
	// unsubscribe function.
	Listen(fn func()) func()
}
