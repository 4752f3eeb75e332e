package collection

import (
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/slots"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// GroupOption is one way of grouping items. Keys returns the group-path
// segments for an item: nested segments become nested group nodes, an empty
// slice leaves the item ungrouped at the root.
type GroupOption[T any] struct {
	ID    string
	Label string
	Keys  func(item T) []string
}

// GroupManager holds the available grouping options and builds the node tree
// from a flat item list. Group node ids are the '/'-joined path from the root
// id, so a path segment "open" under group "status" yields id
// "root/open"-style hierarchical ids. Every synthesized node carries a
// GroupTag so header slots can tell synthesized groups from genuine nodes.
type GroupManager[T any] struct {
	options []GroupOption[T]
	active  int // index into options, -1 = ungrouped
	version uint64
	sig     signal
}

// NewGroupManager creates a manager with the given options and no active
// grouping.
func NewGroupManager[T any](options ...GroupOption[T]) *GroupManager[T] {
	return &GroupManager[T]{options: options, active: -1}
}

// Version returns the monotonic change counter.
func (g *GroupManager[T]) Version() uint64 { return g.version }

// Listen registers a change callback and returns an unsubscribe function.
func (g *GroupManager[T]) Listen(fn func()) func() { return g.sig.listen(fn) }

func (g *GroupManager[T]) changed() {
	g.version++
	g.sig.fire()
}

// Options returns a copy of the registered options.
func (g *GroupManager[T]) Options() []GroupOption[T] {
	return append([]GroupOption[T](nil), g.options...)
}

// Active returns the active option, or nil when grouping is off.
func (g *GroupManager[T]) Active() *GroupOption[T] {
	if g.active < 0 {
		return nil
	}
	opt := g.options[g.active]
	return &opt
}

// Select activates the option with the given id; an empty id deactivates
// grouping. Returns false when the id is unknown or already active.
func (g *GroupManager[T]) Select(id string) bool {
	target := -1
	if id != "" {
		target = -2
		for i, opt := range g.options {
			if opt.ID == id {
				target = i
				break
			}
		}
		if target == -2 {
			return false
		}
	}
	if target == g.active {
		return false
	}
	g.active = target
	g.changed()
	return true
}

// Cycle advances to the next option, wrapping through "ungrouped" after the
// last one. No-op when no options are registered.
func (g *GroupManager[T]) Cycle() bool {
	if len(g.options) == 0 {
		return false
	}
	g.active++
	if g.active >= len(g.options) {
		g.active = -1
	}
	g.changed()
	return true
}

// BuildTree assembles a fresh node tree from items under the active grouping.
// Items keep their given order; group nodes appear in first-encounter order.
// The returned root is detached and fully owned by the caller.
func (g *GroupManager[T]) BuildTree(rootID string, keyOf tree.KeyFunc[T], items []T) *tree.Node[T] {
	defer metrics.Timer(metrics.GroupBuild)()
	root := tree.New(rootID, keyOf)
	opt := g.Active()
	if opt == nil {
		root.AddAll(items...)
		return root
	}
	for _, it := range items {
		node := root
		for _, seg := range opt.Keys(it) {
			id := node.ID() + "/" + seg
			child := node.Child(id)
			if child == nil {
				child = tree.New(id, keyOf,
					tree.WithExtra[T](slots.GroupTag{OptionID: opt.ID}))
				node.AddChild(child)
			}
			node = child
		}
		node.Add(it)
	}
	return root
}
