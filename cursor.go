package ineld

// CursorRepair is told about every subtree that is about to leave the
// tree, while the subtree is still attached. Moves do not count as
// removals: a moved element keeps its handle.
type CursorRepair interface {
	AboutToRemove(t *Tree, root Handle)
}

// CursorRepairFunc adapts a function to CursorRepair.
type CursorRepairFunc func(t *Tree, root Handle)

func (f CursorRepairFunc) AboutToRemove(t *Tree, root Handle) { f(t, root) }

type nopRepair struct{}

func (nopRepair) AboutToRemove(*Tree, Handle) {}

// Cursor is a position inside an element: an offset into a text run or a
// child index of a container.
type Cursor struct {
	element Handle
	offset  int
}

// Element returns the element the cursor points into, or Invalid.
func (c *Cursor) Element() Handle { return c.element }

// Offset returns the offset within the element.
func (c *Cursor) Offset() int { return c.offset }

// Valid reports whether the cursor still points somewhere.
func (c *Cursor) Valid() bool { return c.element.Valid() }

// CursorSet keeps cursors out of vanishing subtrees. A cursor inside a
// removed subtree moves to the start of the subtree's next sibling, else to
// the end of its previous sibling, else to the end of its parent; a cursor
// inside a parentless subtree is invalidated.
type CursorSet struct {
	cursors []*Cursor
}

// NewCursorSet returns an empty set. Install it with Conf.WithCursorRepair.
func NewCursorSet() *CursorSet {
	return &CursorSet{}
}

// NewCursor registers a cursor at offset within h.
func (s *CursorSet) NewCursor(h Handle, offset int) *Cursor {
	c := &Cursor{element: h, offset: offset}
	s.cursors = append(s.cursors, c)
	return c
}

// Remove stops tracking c.
func (s *CursorSet) Remove(c *Cursor) error {
	for i, x := range s.cursors {
		if x == c {
			s.cursors = append(s.cursors[:i], s.cursors[i+1:]...)
			return nil
		}
	}
	return ErrCursorNotFound
}

// Cursors returns the tracked cursors.
func (s *CursorSet) Cursors() []*Cursor {
	return append([]*Cursor(nil), s.cursors...)
}

func (s *CursorSet) AboutToRemove(t *Tree, root Handle) {
	var (
		target Handle
		offset int
	)
	parent := t.Parent(root)
	if parent.Valid() {
		i := t.IndexOf(parent, root)
		switch {
		case t.Child(parent, i+1).Valid():
			target = t.Child(parent, i+1)
		case t.Child(parent, i-1).Valid():
			target = t.Child(parent, i-1)
			offset = t.Extent(target)
		default:
			// root is the only child; the parent is empty once it is gone
			target = parent
		}
	}
	for _, c := range s.cursors {
		if c.element.Valid() && t.IsAncestor(root, c.element) {
			c.element, c.offset = target, offset
		}
	}
}
