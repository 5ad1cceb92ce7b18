package ineld

// NumberChildren returns the number of children of parent.
func (t *Tree) NumberChildren(parent Handle) int {
	if n := t.node(parent); n != nil {
		return len(n.children)
	}
	return 0
}

// Child returns the child of parent at index, or Invalid when out of range.
func (t *Tree) Child(parent Handle, index int) Handle {
	n := t.node(parent)
	if n == nil || index < 0 || index >= len(n.children) {
		return Invalid
	}
	return n.children[index]
}

// Children returns a copy of the child list of parent.
func (t *Tree) Children(parent Handle) []Handle {
	n := t.node(parent)
	if n == nil {
		return nil
	}
	return append([]Handle(nil), n.children...)
}

// IndexOf returns the position of child under parent, or -1.
func (t *Tree) IndexOf(parent, child Handle) int {
	if t.node(parent) == nil {
		return -1
	}
	return t.indexOf(parent, child)
}

func (t *Tree) indexOf(parent, child Handle) int {
	c := t.node(child)
	if c == nil || c.parent != parent {
		return -1
	}
	for i, h := range t.nodes[parent.index].children {
		if h == child {
			return i
		}
	}
	invariantf("%s names %s as parent but is not among its children", child, parent)
	return -1
}

// InsertChild inserts child at index of a positional parent. A child that
// already has a parent is moved. Leaving another parent is reported as a
// removal from that parent before the insertion; a move within parent is
// reported as the insertion only.
func (t *Tree) InsertChild(parent Handle, index int, child Handle) error {
	t.guard()
	p := t.node(parent)
	if p == nil || t.node(child) == nil {
		return ErrInvalidHandle
	}
	if p.elt.Placement() != PlacementPositional {
		return ErrPlacement
	}
	if index < 0 || index > len(p.children) {
		return ErrOutOfRange
	}
	if t.IsAncestor(child, parent) {
		return ErrCycle
	}
	old := t.nodes[child.index].parent
	if old.Valid() && old != parent {
		t.moveOut(child)
	}
	c := childrenChange(parent, OpChildrenInserted, index, 1)
	t.notify(c, PhaseAboutTo)
	if old == parent {
		if i := t.detach(child); i < index {
			index--
		}
	}
	t.insertAt(parent, index, child)
	t.notify(c, PhaseCompleted)
	return nil
}

// AppendChild inserts child after the last child of parent.
func (t *Tree) AppendChild(parent, child Handle) error {
	return t.InsertChild(parent, t.NumberChildren(parent), child)
}

// RemoveChild detaches the child at index of a positional parent and
// returns it. Cursors inside the removed subtree are repaired first.
// The returned element is still live; Delete frees it.
func (t *Tree) RemoveChild(parent Handle, index int) (Handle, error) {
	t.guard()
	p := t.node(parent)
	if p == nil {
		return Invalid, ErrInvalidHandle
	}
	if index < 0 || index >= len(p.children) {
		return Invalid, ErrOutOfRange
	}
	if g, ok := p.elt.(grouped); ok {
		// grouped parents keep their group bounds in step
		gi := g.groups()
		grp, off := gi.GroupContaining(index)
		return gi.RemoveFromGroup(grp, off)
	}
	c := childrenChange(parent, OpChildrenRemoved, index, 1)
	t.notify(c, PhaseAboutTo)
	h := t.removeAt(parent, index)
	t.notify(c, PhaseCompleted)
	return h, nil
}

// insertAt links a detached child into parent's list. It does not touch
// group bounds; callers owning groups adjust them.
func (t *Tree) insertAt(parent Handle, index int, child Handle) {
	p := t.mustNode(parent)
	c := t.mustNode(child)
	if c.parent.Valid() {
		invariantf("insert of attached element %s", child)
	}
	p.children = append(p.children, Invalid)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = child
	c.parent = parent
}

// removeAt repairs cursors and unlinks the child at index.
func (t *Tree) removeAt(parent Handle, index int) Handle {
	h := t.mustNode(parent).children[index]
	t.aboutToRemove(h)
	return t.unlink(parent, index)
}

// unlink drops the child at index without cursor repair. Used for moves,
// where the element stays in the tree under the same handle.
func (t *Tree) unlink(parent Handle, index int) Handle {
	p := t.mustNode(parent)
	h := p.children[index]
	copy(p.children[index:], p.children[index+1:])
	p.children[len(p.children)-1] = Invalid
	p.children = p.children[:len(p.children)-1]
	t.mustNode(h).parent = Invalid
	return h
}

// detach unlinks an attached element from its current parent as the
// first half of a move, keeping group bounds of a grouped parent intact.
// It returns the index the element occupied.
func (t *Tree) detach(h Handle) int {
	parent := t.mustNode(h).parent
	i := t.indexOf(parent, h)
	if g, ok := t.mustNode(parent).elt.(grouped); ok {
		gi := g.groups()
		grp, _ := gi.GroupContaining(i)
		gi.unlinkFrom(grp, i)
		return i
	}
	t.unlink(parent, i)
	return i
}

// moveOut detaches h from its parent as the first half of a move to a
// different parent and reports it to observers as a removal.
func (t *Tree) moveOut(h Handle) {
	old := t.mustNode(h).parent
	c := childrenChange(old, OpChildrenRemoved, t.indexOf(old, h), 1)
	t.notify(c, PhaseAboutTo)
	t.detach(h)
	t.notify(c, PhaseCompleted)
}
