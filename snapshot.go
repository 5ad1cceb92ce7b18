package ineld

import "fmt"

// Snapshot is a detached value copy of a subtree. It is what the tree is
// persisted as: tables carry their geometry in cell attributes and never
// their group ids.
type Snapshot struct {
	Tag      Tag             `msgpack:"tag" cbor:"tag"`
	Attr     Attr            `msgpack:"attr" cbor:"attr"`
	Text     string          `msgpack:"text,omitempty" cbor:"text,omitempty"`
	Children []*Snapshot     `msgpack:"children,omitempty" cbor:"children,omitempty"` // positional children
	Groups   []GroupSnapshot `msgpack:"groups,omitempty" cbor:"groups,omitempty"`     // grouped children
	Table    *TableSnapshot  `msgpack:"table,omitempty" cbor:"table,omitempty"`
}

// GroupSnapshot holds the children of one group.
type GroupSnapshot struct {
	Children []*Snapshot `msgpack:"children,omitempty" cbor:"children,omitempty"`
}

// TableSnapshot holds the grid of a table.
type TableSnapshot struct {
	Rows    int            `msgpack:"rows" cbor:"rows"`
	Columns int            `msgpack:"columns" cbor:"columns"`
	Cells   []CellSnapshot `msgpack:"cells" cbor:"cells"`
}

// CellSnapshot is one distinct cell. Attr carries the geometry keys
// (see CellAttr).
type CellSnapshot struct {
	Attr     Attr        `msgpack:"attr" cbor:"attr"`
	Children []*Snapshot `msgpack:"children,omitempty" cbor:"children,omitempty"`
}

// Snapshot copies the subtree at h into a value tree.
func (t *Tree) Snapshot(h Handle) (*Snapshot, error) {
	if t.node(h) == nil {
		return nil, ErrInvalidHandle
	}
	return t.snapshot(h), nil
}

func (t *Tree) snapshot(h Handle) *Snapshot {
	n := t.mustNode(h)
	s := &Snapshot{Tag: n.elt.Tag()}
	switch e := n.elt.(type) {
	case *Text:
		s.Text = e.Text
	case *Paragraph:
		s.Attr = e.Attr.copy()
		s.Children = t.snapshots(n.children)
	case *Frame:
		s.Attr = e.Attr.copy()
		s.Children = t.snapshots(n.children)
	case *Grouped:
		s.Attr = e.Attr.copy()
		s.Groups = make([]GroupSnapshot, e.index.NumberGroups())
		for g := range s.Groups {
			s.Groups[g].Children = t.snapshots(e.index.ChildrenInGroup(GroupID(g)))
		}
	case *Table:
		s.Attr = e.Attr.copy()
		g := e.grid
		ts := &TableSnapshot{Rows: g.rows, Columns: g.columns}
		for _, cell := range g.Describe(true) {
			ts.Cells = append(ts.Cells, CellSnapshot{
				Attr:     CellAttr(cell.CellGeometry),
				Children: t.snapshots(cell.Children),
			})
		}
		s.Table = ts
	default:
		invariantf("snapshot of unknown payload %T", n.elt)
	}
	return s
}

func (t *Tree) snapshots(hs []Handle) []*Snapshot {
	if len(hs) == 0 {
		return nil
	}
	out := make([]*Snapshot, len(hs))
	for i, h := range hs {
		out[i] = t.snapshot(h)
	}
	return out
}

// Restore builds a detached subtree from s. On error nothing is left
// allocated.
func (t *Tree) Restore(s *Snapshot) (Handle, error) {
	t.guard()
	return t.build(s)
}

// restore rebuilds a snapshot taken from this tree.
func (t *Tree) restore(s *Snapshot) Handle {
	h, err := t.build(s)
	if err != nil {
		invariantf("restore of own snapshot: %v", err)
	}
	return h
}

func payload(s *Snapshot) (Element, error) {
	switch s.Tag {
	case TextTag:
		return &Text{Text: s.Text}, nil
	case ParagraphTag:
		return &Paragraph{Attr: s.Attr.copy()}, nil
	case FrameTag:
		return &Frame{Attr: s.Attr.copy()}, nil
	case GroupedTag:
		return &Grouped{Attr: s.Attr.copy()}, nil
	case TableTag:
		return &Table{Attr: s.Attr.copy()}, nil
	}
	return nil, fmt.Errorf("%q: %w", s.Tag, ErrUnknownTag)
}

func (t *Tree) build(s *Snapshot) (Handle, error) {
	if s == nil {
		return Invalid, fmt.Errorf("nil snapshot: %w", ErrInvalidHandle)
	}
	elt, err := payload(s)
	if err != nil {
		return Invalid, err
	}
	switch elt.Placement() {
	case PlacementLeaf:
		if len(s.Children) > 0 || len(s.Groups) > 0 || s.Table != nil {
			return Invalid, fmt.Errorf("%s with children: %w", s.Tag, ErrPlacement)
		}
		return t.alloc(elt), nil

	case PlacementPositional:
		if len(s.Groups) > 0 || s.Table != nil {
			return Invalid, fmt.Errorf("%s with groups: %w", s.Tag, ErrPlacement)
		}
		h := t.alloc(elt)
		for i, cs := range s.Children {
			c, err := t.build(cs)
			if err != nil {
				t.release(h)
				return Invalid, err
			}
			t.insertAt(h, i, c)
		}
		return h, nil

	case PlacementGrouped:
		if len(s.Children) > 0 || s.Table != nil {
			return Invalid, fmt.Errorf("%s with positional children: %w", s.Tag, ErrPlacement)
		}
		h := t.alloc(elt)
		gi := elt.(*Grouped).index
		if len(s.Groups) > 1 {
			gi.addGroups(1, len(s.Groups)-1)
		}
		for g, gs := range s.Groups {
			for i, cs := range gs.Children {
				c, err := t.build(cs)
				if err != nil {
					t.release(h)
					return Invalid, err
				}
				gi.link(GroupID(g), i, c)
			}
		}
		return h, nil
	}

	// PlacementTable
	if len(s.Children) > 0 || len(s.Groups) > 0 {
		return Invalid, fmt.Errorf("%s with untabulated children: %w", s.Tag, ErrPlacement)
	}
	if s.Table == nil {
		return Invalid, fmt.Errorf("%s without grid: %w", s.Tag, ErrGeometry)
	}
	var (
		geoms = make([]CellGeometry, len(s.Table.Cells))
		kids  = make([][]Handle, len(s.Table.Cells))
		fail  = func(err error) (Handle, error) {
			for _, run := range kids {
				for _, c := range run {
					t.release(c)
				}
			}
			return Invalid, err
		}
	)
	for i, cell := range s.Table.Cells {
		if geoms[i], err = ParseCellAttr(cell.Attr); err != nil {
			return fail(err)
		}
		for _, cs := range cell.Children {
			c, err := t.build(cs)
			if err != nil {
				return fail(err)
			}
			kids[i] = append(kids[i], c)
		}
	}
	h, _, err := t.buildTable(elt.(*Table), s.Table.Rows, s.Table.Columns, geoms, kids)
	if err != nil {
		return fail(err)
	}
	return h, nil
}
