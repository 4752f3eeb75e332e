package tree

// Cross-tree structural operations. Ownership transfers fully on every move:
// a node is detached from its old parent before it is attached anywhere else,
// and subtree depths are rewritten on both sides.

// Detach removes this node from its parent. No-op (returns false) for a
// root. The old parent is notified; the detached subtree keeps its items,
// children and collapse state with depths reset relative to 0.
func (n *Node[T]) Detach() bool {
	if n.parent == nil {
		return false
	}
	return n.parent.RemoveChild(n)
}

// MoveTo re-parents this node under newParent, appended after its existing
// children. Returns false when newParent is nil, this node itself, or a
// descendant of this node (the ancestor walk that would otherwise close a
// cycle). Both the old and the new parent are notified.
func (n *Node[T]) MoveTo(newParent *Node[T]) bool {
	if newParent == nil || newParent == n {
		return false
	}
	if n.IsAncestorOf(newParent) {
		return false
	}
	if _, dup := newParent.childIdx[n.id]; dup && newParent.Child(n.id) != n {
		return false
	}
	if newParent.Child(n.id) == n {
		return false // already there
	}
	// Detach-before-attach keeps single ownership at every step.
	n.Detach()
	return newParent.AddChild(n)
}

// ReplaceWith swaps this node out of its parent's child list for node,
// keeping the position. Returns false for a root, a nil replacement, or a
// replacement whose id collides with a different sibling. The replaced node
// is left detached.
func (n *Node[T]) ReplaceWith(node *Node[T]) bool {
	if node == nil || node == n || n.parent == nil {
		return false
	}
	parent := n.parent
	pos, ok := parent.childIdx[n.id]
	if !ok {
		return false
	}
	if other := parent.Child(node.id); other != nil && other != n {
		return false
	}
	if parent == node || node.IsAncestorOf(parent) {
		return false
	}
	if node.parent != nil {
		node.parent.detachChild(node)
	}
	delete(parent.childIdx, n.id)
	parent.children[pos] = node
	parent.childIdx[node.id] = pos
	n.parent = nil
	n.recomputeDepth(0)
	node.parent = parent
	node.recomputeDepth(parent.depth + 1)
	parent.invalidateHeight()
	parent.bump()
	parent.notify()
	return true
}

// Clone returns a detached copy of this node. Items are always copied;
// children are copied only when deep is true. Collapse state and extra are
// preserved throughout. newID overrides the copy's id when non-empty (child
// ids are kept as-is). Listeners are never cloned. Deep clones of
// arbitrarily deep trees are handled with an explicit work stack.
func (n *Node[T]) Clone(deep bool, newID string) *Node[T] {
	id := n.id
	if newID != "" {
		id = newID
	}
	root := n.cloneShallow(id)
	if !deep {
		return root
	}
	type frame struct {
		src *Node[T]
		dst *Node[T]
	}
	stack := []frame{{n, root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range f.src.children {
			cc := c.cloneShallow(c.id)
			cc.parent = f.dst
			cc.depth = f.dst.depth + 1
			f.dst.childIdx[cc.id] = len(f.dst.children)
			f.dst.children = append(f.dst.children, cc)
			stack = append(stack, frame{c, cc})
		}
	}
	return root
}

// cloneShallow copies id, items, collapse state and extra into a fresh
// detached node with no children.
func (n *Node[T]) cloneShallow(id string) *Node[T] {
	c := New[T](id, n.keyOf)
	c.items = make([]T, len(n.items))
	copy(c.items, n.items)
	for k, v := range n.keyIndex {
		c.keyIndex[k] = v
	}
	c.collapsed = n.collapsed
	c.extra = n.extra
	return c
}

// CopyWith returns a shallow value copy of this node with the given
// overrides applied. Zero-value arguments keep the original: an empty id
// keeps the id, nil items keep the items, nil children keep the child list
// (shared, not cloned). The copy is detached.
func (n *Node[T]) CopyWith(id string, items []T, children []*Node[T]) *Node[T] {
	c := New[T](n.id, n.keyOf)
	if id != "" {
		c.id = id
	}
	c.collapsed = n.collapsed
	c.extra = n.extra
	if items == nil {
		items = n.items
	}
	for _, it := range items {
		k := c.keyOf(it)
		if _, dup := c.keyIndex[k]; dup {
			continue
		}
		c.keyIndex[k] = len(c.items)
		c.items = append(c.items, it)
	}
	if children == nil {
		children = n.children
	}
	for _, ch := range children {
		if ch == nil {
			continue
		}
		if _, dup := c.childIdx[ch.id]; dup {
			continue
		}
		c.childIdx[ch.id] = len(c.children)
		c.children = append(c.children, ch)
	}
	return c
}

// ShallowEquals compares the items of two nodes by key and order, ignoring
// ids, children and collapse state. Items compare by key only; the container
// does not require T to be comparable.
func (n *Node[T]) ShallowEquals(other *Node[T]) bool {
	if other == nil || len(n.items) != len(other.items) {
		return false
	}
	for i, it := range n.items {
		if n.keyOf(it) != other.keyOf(other.items[i]) {
			return false
		}
	}
	return true
}

// DeepEquals compares id, item keys, collapse state and, recursively, the
// ordered child lists of two subtrees. Implemented with an explicit pair
// stack so depth never matters.
func (n *Node[T]) DeepEquals(other *Node[T]) bool {
	if other == nil {
		return false
	}
	type pair struct {
		a *Node[T]
		b *Node[T]
	}
	stack := []pair{{n, other}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a.id != p.b.id || p.a.collapsed != p.b.collapsed {
			return false
		}
		if !p.a.ShallowEquals(p.b) {
			return false
		}
		if len(p.a.children) != len(p.b.children) {
			return false
		}
		for i := range p.a.children {
			stack = append(stack, pair{p.a.children[i], p.b.children[i]})
		}
	}
	return true
}
