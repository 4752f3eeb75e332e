package tree

// Child operations. A node is owned by at most one parent at a time: adding a
// child that already has a parent detaches it from that parent first, and the
// parent's child list is the only owning reference.

// ChildCount returns the number of direct children.
func (n *Node[T]) ChildCount() int { return len(n.children) }

// Children returns a copy of the child slice in order.
func (n *Node[T]) Children() []*Node[T] {
	out := make([]*Node[T], len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the direct child with the given id, or nil.
func (n *Node[T]) Child(id string) *Node[T] {
	if i, ok := n.childIdx[id]; ok {
		return n.children[i]
	}
	return nil
}

// ChildAt returns the child at position i, or nil when out of range.
func (n *Node[T]) ChildAt(i int) *Node[T] {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ChildIndex returns the position of the child with the given id, or -1.
func (n *Node[T]) ChildIndex(id string) int {
	if i, ok := n.childIdx[id]; ok {
		return i
	}
	return -1
}

// AddChild appends a child node, transferring ownership. It returns false for
// a nil child, a duplicate id among siblings, or a child that is this node or
// one of its ancestors (which would create a cycle).
func (n *Node[T]) AddChild(child *Node[T]) bool {
	if !n.canAdopt(child) {
		return false
	}
	n.adoptAt(child, len(n.children))
	n.bump()
	n.notify()
	return true
}

// AddChildren appends each child in order and returns how many were added.
// A single notification fires if anything changed.
func (n *Node[T]) AddChildren(children ...*Node[T]) int {
	added := 0
	for _, c := range children {
		if !n.canAdopt(c) {
			continue
		}
		n.adoptAt(c, len(n.children))
		added++
	}
	if added > 0 {
		n.bump()
		n.notify()
	}
	return added
}

// InsertChildAt places a child at the given position, clamped to the valid
// range. Same rejection rules as AddChild.
func (n *Node[T]) InsertChildAt(index int, child *Node[T]) bool {
	if !n.canAdopt(child) {
		return false
	}
	if index < 0 {
		index = 0
	}
	if index > len(n.children) {
		index = len(n.children)
	}
	n.adoptAt(child, index)
	n.bump()
	n.notify()
	return true
}

// RemoveChild detaches the given direct child. The child's parent reference
// is cleared and its subtree depths reset relative to depth 0.
func (n *Node[T]) RemoveChild(child *Node[T]) bool {
	if child == nil {
		return false
	}
	return n.RemoveChildByID(child.id)
}

// RemoveChildByID detaches the direct child with the given id. Returns false
// when no such child exists.
func (n *Node[T]) RemoveChildByID(id string) bool {
	i, ok := n.childIdx[id]
	if !ok {
		return false
	}
	child := n.children[i]
	n.releaseAt(i)
	child.parent = nil
	child.recomputeDepth(0)
	n.bump()
	n.notify()
	return true
}

// RemoveChildren detaches each listed child and returns how many were
// removed. A single notification fires if anything changed.
func (n *Node[T]) RemoveChildren(children ...*Node[T]) int {
	removed := 0
	for _, c := range children {
		if c == nil {
			continue
		}
		i, ok := n.childIdx[c.id]
		if !ok || n.children[i] != c {
			continue
		}
		n.releaseAt(i)
		c.parent = nil
		c.recomputeDepth(0)
		removed++
	}
	if removed > 0 {
		n.bump()
		n.notify()
	}
	return removed
}

// ClearChildren detaches all children. No-op when there are none.
func (n *Node[T]) ClearChildren() {
	if len(n.children) == 0 {
		return
	}
	for _, c := range n.children {
		c.parent = nil
		c.recomputeDepth(0)
	}
	n.children = nil
	n.childIdx = make(map[string]int)
	n.invalidateHeight()
	n.bump()
	n.notify()
}

// ReorderChild moves the child at position from to position to. Returns false
// when either index is out of range or from == to.
func (n *Node[T]) ReorderChild(from, to int) bool {
	if from < 0 || from >= len(n.children) || to < 0 || to >= len(n.children) || from == to {
		return false
	}
	child := n.children[from]
	n.children = append(n.children[:from], n.children[from+1:]...)
	rest := append(n.children[:to], append([]*Node[T]{child}, n.children[to:]...)...)
	n.children = rest
	n.reindexChildren()
	n.bump()
	n.notify()
	return true
}

// SwapChildren exchanges the positions of two children by id. Returns false
// when either id is missing or both name the same child.
func (n *Node[T]) SwapChildren(idA, idB string) bool {
	a, okA := n.childIdx[idA]
	b, okB := n.childIdx[idB]
	if !okA || !okB || a == b {
		return false
	}
	n.children[a], n.children[b] = n.children[b], n.children[a]
	n.childIdx[idA], n.childIdx[idB] = b, a
	n.bump()
	n.notify()
	return true
}

// canAdopt checks the AddChild preconditions: non-nil, unique id, no cycle.
func (n *Node[T]) canAdopt(child *Node[T]) bool {
	if child == nil || child == n {
		return false
	}
	if _, dup := n.childIdx[child.id]; dup {
		return false
	}
	// Explicit ancestor walk: adopting an ancestor of n would close a cycle.
	for a := n.parent; a != nil; a = a.parent {
		if a == child {
			return false
		}
	}
	return true
}

// adoptAt wires a child in at position i: detaches it from any previous
// parent, sets the back-reference, and recomputes subtree depths.
func (n *Node[T]) adoptAt(child *Node[T], i int) {
	if child.parent != nil {
		child.parent.detachChild(child)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	n.reindexChildrenFrom(i)
	child.parent = n
	child.recomputeDepth(n.depth + 1)
	n.invalidateHeight()
}

// releaseAt unwires the child at position i without touching its parent or
// depth fields.
func (n *Node[T]) releaseAt(i int) {
	id := n.children[i].id
	n.children = append(n.children[:i], n.children[i+1:]...)
	delete(n.childIdx, id)
	n.reindexChildrenFrom(i)
	n.invalidateHeight()
}

// detachChild removes child from n's child list as part of an ownership
// transfer. The caller is responsible for the child's new parent and depth.
func (n *Node[T]) detachChild(child *Node[T]) {
	if i, ok := n.childIdx[child.id]; ok && n.children[i] == child {
		n.releaseAt(i)
		n.bump()
		n.notify()
	}
}

func (n *Node[T]) reindexChildren() { n.reindexChildrenFrom(0) }

func (n *Node[T]) reindexChildrenFrom(start int) {
	for i := start; i < len(n.children); i++ {
		n.childIdx[n.children[i].id] = i
	}
}

// recomputeDepth sets this node's depth and rewrites the cached depth of the
// whole subtree. Iterative so arbitrarily deep subtrees are safe.
func (n *Node[T]) recomputeDepth(depth int) {
	type frame struct {
		node *Node[T]
		d    int
	}
	stack := []frame{{n, depth}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f.node.depth = f.d
		for _, c := range f.node.children {
			stack = append(stack, frame{c, f.d + 1})
		}
	}
}

// invalidateHeight drops the cached height of this node and every ancestor.
func (n *Node[T]) invalidateHeight() {
	for a := n; a != nil; a = a.parent {
		a.heightOK = false
	}
}
