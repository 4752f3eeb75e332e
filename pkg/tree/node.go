// Package tree provides a generic ordered-tree container for hierarchical,
// collapsible collections of keyed items.
//
// A Node owns an ordered, keyed list of items plus an ordered list of child
// nodes, a per-node collapse flag, and a monotonic version counter. Nodes are
// assembled into trees by grouping code and projected into flat rendering
// sequences by the slots package. All operations are synchronous and
// single-owner; there is no internal locking.
package tree

import (
	"errors"
	"fmt"
	"sort"
)

// ErrKeyCollision reports a replacement whose new item carries a key already
// taken by a different item in the node.
var ErrKeyCollision = errors.New("tree: replacement key already taken")

// maxRecursionDepth bounds direct recursion in subtree algorithms. Past this
// many frames a walk switches to an explicit stack or queue so degenerate
// trees (long single-child chains) cannot overflow the call stack.
const maxRecursionDepth = 96

// KeyFunc derives the stable string key of an item. The same function must be
// used consistently across a whole tree.
type KeyFunc[T any] func(T) string

type listenerEntry struct {
	id int
	fn func()
}

// Node is an ordered, keyed, hierarchical collection. Items are keyed by the
// node's KeyFunc and keys are unique per node; children are keyed by id and
// ids are unique among siblings.
type Node[T any] struct {
	id    string
	keyOf KeyFunc[T]

	items    []T
	keyIndex map[string]int

	children []*Node[T]
	childIdx map[string]int

	parent *Node[T] // non-owning back-reference; nil for roots
	depth  int

	collapsed bool
	version   uint64
	extra     any

	listeners  []listenerEntry
	nextListID int

	height   int
	heightOK bool
}

// Option configures a new Node.
type Option[T any] func(*Node[T])

// WithItems seeds the node with items. Duplicate keys are dropped, first
// occurrence wins.
func WithItems[T any](items ...T) Option[T] {
	return func(n *Node[T]) {
		for _, it := range items {
			k := n.keyOf(it)
			if _, ok := n.keyIndex[k]; ok {
				continue
			}
			n.keyIndex[k] = len(n.items)
			n.items = append(n.items, it)
		}
	}
}

// WithChildren seeds the node with child nodes. Children with duplicate ids
// are dropped.
func WithChildren[T any](children ...*Node[T]) Option[T] {
	return func(n *Node[T]) {
		for _, c := range children {
			if c == nil {
				continue
			}
			if _, ok := n.childIdx[c.id]; ok {
				continue
			}
			n.childIdx[c.id] = len(n.children)
			n.children = append(n.children, c)
			c.parent = n
			c.recomputeDepth(n.depth + 1)
		}
	}
}

// WithCollapsed sets the initial collapse state.
func WithCollapsed[T any](collapsed bool) Option[T] {
	return func(n *Node[T]) { n.collapsed = collapsed }
}

// WithExtra attaches an opaque value to the node. The tree never interprets
// it; grouping code uses it to mark synthesized group nodes.
func WithExtra[T any](extra any) Option[T] {
	return func(n *Node[T]) { n.extra = extra }
}

// New creates a detached node with the given id and key function.
func New[T any](id string, keyOf KeyFunc[T], opts ...Option[T]) *Node[T] {
	n := &Node[T]{
		id:       id,
		keyOf:    keyOf,
		keyIndex: make(map[string]int),
		childIdx: make(map[string]int),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ID returns the node id, unique among siblings.
func (n *Node[T]) ID() string { return n.id }

// Key returns the key of an item under this node's key function.
func (n *Node[T]) Key(item T) string { return n.keyOf(item) }

// Depth returns the cached depth (root = 0). Recomputed on re-parenting.
func (n *Node[T]) Depth() int { return n.depth }

// Version returns the monotonic change counter. It is bumped on every
// observable mutation of this node and can be used for cheap dirty-checking.
func (n *Node[T]) Version() uint64 { return n.version }

// Extra returns the opaque attachment, or nil.
func (n *Node[T]) Extra() any { return n.extra }

// SetExtra replaces the opaque attachment.
func (n *Node[T]) SetExtra(extra any) {
	n.extra = extra
	n.bump()
	n.notify()
}

// Listen registers a callback fired after every observable mutation of this
// node. The returned function unsubscribes.
func (n *Node[T]) Listen(fn func()) func() {
	id := n.nextListID
	n.nextListID++
	n.listeners = append(n.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		for i, e := range n.listeners {
			if e.id == id {
				n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// bump advances the version counter without notifying.
func (n *Node[T]) bump() { n.version++ }

// notify fires all listeners. The listener set is snapshotted first so an
// unsubscribe during delivery cannot skip entries.
func (n *Node[T]) notify() {
	if len(n.listeners) == 0 {
		return
	}
	snapshot := make([]listenerEntry, len(n.listeners))
	copy(snapshot, n.listeners)
	for _, e := range snapshot {
		e.fn()
	}
}

// Dispose recursively clears items, children and listeners. The node and its
// former subtree remain valid empty nodes but hold no references.
func (n *Node[T]) Dispose() {
	// Iterative: collect subtree first, then clear each node.
	nodes := n.Descendants(false)
	for _, node := range nodes {
		node.items = nil
		node.keyIndex = make(map[string]int)
		node.children = nil
		node.childIdx = make(map[string]int)
		node.listeners = nil
		node.parent = nil
		node.depth = 0
		node.heightOK = false
	}
}

// ── Item operations ──

// Len returns the number of items directly on this node.
func (n *Node[T]) Len() int { return len(n.items) }

// Items returns a copy of the item slice in order.
func (n *Node[T]) Items() []T {
	out := make([]T, len(n.items))
	copy(out, n.items)
	return out
}

// Keys returns the item keys in order.
func (n *Node[T]) Keys() []string {
	out := make([]string, len(n.items))
	for i, it := range n.items {
		out[i] = n.keyOf(it)
	}
	return out
}

// ContainsKey reports whether an item with the given key exists. O(1).
func (n *Node[T]) ContainsKey(key string) bool {
	_, ok := n.keyIndex[key]
	return ok
}

// IndexOf returns the position of the item with the given key, or -1.
func (n *Node[T]) IndexOf(key string) int {
	if i, ok := n.keyIndex[key]; ok {
		return i
	}
	return -1
}

// At returns the item at position i. Panics if i is out of range; use TryAt
// when absence is an expected outcome.
func (n *Node[T]) At(i int) T {
	if i < 0 || i >= len(n.items) {
		panic(fmt.Sprintf("tree: item index %d out of range [0,%d)", i, len(n.items)))
	}
	return n.items[i]
}

// TryAt returns the item at position i, or the zero value and false when i is
// out of range.
func (n *Node[T]) TryAt(i int) (T, bool) {
	if i < 0 || i >= len(n.items) {
		var zero T
		return zero, false
	}
	return n.items[i], true
}

// Get returns the item with the given key, or the zero value and false.
func (n *Node[T]) Get(key string) (T, bool) {
	if i, ok := n.keyIndex[key]; ok {
		return n.items[i], true
	}
	var zero T
	return zero, false
}

// Next returns the item following the one with the given key, or false at the
// last position or when the key is absent.
func (n *Node[T]) Next(key string) (T, bool) {
	if i, ok := n.keyIndex[key]; ok && i+1 < len(n.items) {
		return n.items[i+1], true
	}
	var zero T
	return zero, false
}

// Prev returns the item preceding the one with the given key, or false at the
// first position or when the key is absent.
func (n *Node[T]) Prev(key string) (T, bool) {
	if i, ok := n.keyIndex[key]; ok && i > 0 {
		return n.items[i-1], true
	}
	var zero T
	return zero, false
}

// Add appends an item. Returns false without any observable change when an
// item with the same key already exists.
func (n *Node[T]) Add(item T) bool {
	k := n.keyOf(item)
	if _, ok := n.keyIndex[k]; ok {
		return false
	}
	n.keyIndex[k] = len(n.items)
	n.items = append(n.items, item)
	n.bump()
	n.notify()
	return true
}

// AddAll appends the items whose keys are not yet present and returns how
// many were added. A single notification fires if anything changed.
func (n *Node[T]) AddAll(items ...T) int {
	added := 0
	for _, it := range items {
		k := n.keyOf(it)
		if _, ok := n.keyIndex[k]; ok {
			continue
		}
		n.keyIndex[k] = len(n.items)
		n.items = append(n.items, it)
		added++
	}
	if added > 0 {
		n.bump()
		n.notify()
	}
	return added
}

// Insert places an item at the given position (clamped to [0, Len]). Returns
// false when the key already exists.
func (n *Node[T]) Insert(index int, item T) bool {
	k := n.keyOf(item)
	if _, ok := n.keyIndex[k]; ok {
		return false
	}
	if index < 0 {
		index = 0
	}
	if index > len(n.items) {
		index = len(n.items)
	}
	n.items = append(n.items, item)
	copy(n.items[index+1:], n.items[index:])
	n.items[index] = item
	n.reindexFrom(index)
	n.bump()
	n.notify()
	return true
}

// Remove removes the item with the same key as the given item.
func (n *Node[T]) Remove(item T) bool {
	return n.RemoveByKey(n.keyOf(item))
}

// RemoveByKey removes the item with the given key. Absence is not an error;
// it returns false with no observable change.
func (n *Node[T]) RemoveByKey(key string) bool {
	i, ok := n.keyIndex[key]
	if !ok {
		return false
	}
	n.items = append(n.items[:i], n.items[i+1:]...)
	delete(n.keyIndex, key)
	n.reindexFrom(i)
	n.bump()
	n.notify()
	return true
}

// RemoveWhere removes every item matching pred and returns the removed count.
// No version bump or notification happens when nothing matched.
func (n *Node[T]) RemoveWhere(pred func(T) bool) int {
	kept := n.items[:0]
	removed := 0
	for _, it := range n.items {
		if pred(it) {
			delete(n.keyIndex, n.keyOf(it))
			removed++
			continue
		}
		kept = append(kept, it)
	}
	if removed == 0 {
		return 0
	}
	n.items = kept
	n.reindexFrom(0)
	n.bump()
	n.notify()
	return removed
}

// Replace stores the item under its key. If the key was absent the item is
// appended and true ("was new") is returned; otherwise the existing item is
// overwritten in place and false is returned.
func (n *Node[T]) Replace(item T) bool {
	k := n.keyOf(item)
	if i, ok := n.keyIndex[k]; ok {
		n.items[i] = item
		n.bump()
		n.notify()
		return false
	}
	n.keyIndex[k] = len(n.items)
	n.items = append(n.items, item)
	n.bump()
	n.notify()
	return true
}

// ReplaceByKey overwrites the item stored under key with a new item, keeping
// its position. The new item may carry a different key; if that key is
// already taken by another item the call is rejected with ErrKeyCollision and
// nothing changes. The bool is "was new": true when key was absent and the
// item was appended instead.
func (n *Node[T]) ReplaceByKey(key string, item T) (bool, error) {
	newKey := n.keyOf(item)
	if i, ok := n.keyIndex[key]; ok {
		if newKey != key {
			if _, taken := n.keyIndex[newKey]; taken {
				return false, ErrKeyCollision
			}
			delete(n.keyIndex, key)
			n.keyIndex[newKey] = i
		}
		n.items[i] = item
		n.bump()
		n.notify()
		return false, nil
	}
	return n.Add(item), nil
}

// Upsert inserts or overwrites the item by key. Returns true when it was
// added rather than updated.
func (n *Node[T]) Upsert(item T) bool {
	return n.Replace(item)
}

// UpsertAll inserts or overwrites each item and returns how many were newly
// added. A single notification fires at the end.
func (n *Node[T]) UpsertAll(items ...T) int {
	added := 0
	for _, it := range items {
		k := n.keyOf(it)
		if i, ok := n.keyIndex[k]; ok {
			n.items[i] = it
			continue
		}
		n.keyIndex[k] = len(n.items)
		n.items = append(n.items, it)
		added++
	}
	if len(items) > 0 {
		n.bump()
		n.notify()
	}
	return added
}

// UpdateAll rewrites every item in place through transform. The transform
// must not change an item's key: key stability under in-place update is an
// invariant of the container, and violating it would corrupt the key index,
// so a changed key panics rather than being absorbed.
func (n *Node[T]) UpdateAll(transform func(T) T) {
	if len(n.items) == 0 {
		return
	}
	for i, it := range n.items {
		oldKey := n.keyOf(it)
		updated := transform(it)
		if newKey := n.keyOf(updated); newKey != oldKey {
			panic(fmt.Sprintf("tree: UpdateAll changed item key %q to %q on node %q", oldKey, newKey, n.id))
		}
		n.items[i] = updated
	}
	n.bump()
	n.notify()
}

// Clear removes all items. No-op when already empty.
func (n *Node[T]) Clear() {
	if len(n.items) == 0 {
		return
	}
	n.items = nil
	n.keyIndex = make(map[string]int)
	n.bump()
	n.notify()
}

// Sort reorders the items with a stable sort under cmp (negative when a
// sorts before b).
func (n *Node[T]) Sort(cmp func(a, b T) int) {
	if len(n.items) <= 1 {
		return
	}
	sort.SliceStable(n.items, func(i, j int) bool {
		return cmp(n.items[i], n.items[j]) < 0
	})
	n.reindexFrom(0)
	n.bump()
	n.notify()
}

// reindexFrom rebuilds key index entries for positions >= start.
func (n *Node[T]) reindexFrom(start int) {
	for i := start; i < len(n.items); i++ {
		n.keyIndex[n.keyOf(n.items[i])] = i
	}
}
