// Package ineld implements the structural core of a hierarchical document
// model: an arena of elements whose children are addressed positionally or
// in groups, and tables that overlay a row/column grid with merged cells on
// top of those groups.
package ineld

// Element object tag
type Tag string

func (t Tag) Tag() Tag       { return t }
func (t Tag) String() string { return string(t) }

// Placement tells how an element addresses its children.
type Placement int

const (
	// PlacementLeaf elements have no children.
	PlacementLeaf Placement = iota
	// PlacementPositional children form a plain ordered list.
	PlacementPositional
	// PlacementGrouped children are partitioned into contiguous groups.
	PlacementGrouped
	// PlacementTable children are grouped and the groups are laid out on a grid.
	PlacementTable
)

func (p Placement) String() string {
	switch p {
	case PlacementLeaf:
		return "leaf"
	case PlacementPositional:
		return "positional"
	case PlacementGrouped:
		return "grouped"
	case PlacementTable:
		return "table"
	}
	return "unknown"
}

// Element is the payload stored at a tree node.
type Element interface {
	Tag() Tag
	Placement() Placement
	clone() Element
}

// binder is implemented by payloads that keep per-node state and need to
// know where they live. A payload is bound to one element for life.
type binder interface {
	bind(t *Tree, h Handle)
	bound() bool
}

// grouped is implemented by payloads whose children are tracked by a GroupIndex.
type grouped interface {
	groups() *GroupIndex
}

// A convenience function to check if an element is of a particular type.
//
//	if ineld.Is[ineld.Text](tree.Element(h)) {
//	    ...
func Is[P any](elt Element) bool {
	_, ok := any(elt).(*P)
	return ok
}

// Returns a shallow copy of a payload. Per-node state such as group
// bounds or grid cells is not copied; use Tree.Clone for a deep copy.
// A cloned Grouped or Table has no index or grid until it is passed to
// Tree.New.
func Clone[P Element](elt P) P {
	return elt.clone().(P)
}

// Run of text
type Text struct {
	Text string
}

const TextTag = Tag("Text")

func (*Text) Tag() Tag             { return TextTag }
func (*Text) Placement() Placement { return PlacementLeaf }
func (e *Text) clone() Element {
	c := *e
	return &c
}

// Paragraph (list of elements)
type Paragraph struct {
	Attr
}

const ParagraphTag = Tag("Paragraph")

func (*Paragraph) Tag() Tag             { return ParagraphTag }
func (*Paragraph) Placement() Placement { return PlacementPositional }
func (e *Paragraph) clone() Element {
	c := *e
	c.Attr = e.Attr.copy()
	return &c
}

// Generic positional container, used for document roots
type Frame struct {
	Attr
}

const FrameTag = Tag("Frame")

func (*Frame) Tag() Tag             { return FrameTag }
func (*Frame) Placement() Placement { return PlacementPositional }
func (e *Frame) clone() Element {
	c := *e
	c.Attr = e.Attr.copy()
	return &c
}

// Container whose children are partitioned into groups
type Grouped struct {
	Attr
	index *GroupIndex
}

const GroupedTag = Tag("Grouped")

func (*Grouped) Tag() Tag                { return GroupedTag }
func (*Grouped) Placement() Placement    { return PlacementGrouped }
func (e *Grouped) groups() *GroupIndex   { return e.index }
func (e *Grouped) bind(t *Tree, h Handle) { e.index = newGroupIndex(t, h) }
func (e *Grouped) bound() bool            { return e.index != nil }
func (e *Grouped) clone() Element {
	return &Grouped{Attr: e.Attr.copy()}
}

// Groups returns the group index of the container.
func (e *Grouped) Groups() *GroupIndex { return e.index }

// Table: grouped children laid out on a row/column grid
type Table struct {
	Attr
	grid *Grid
}

const TableTag = Tag("Table")

func (*Table) Tag() Tag             { return TableTag }
func (*Table) Placement() Placement { return PlacementTable }
func (e *Table) groups() *GroupIndex { return e.grid.groups }
func (e *Table) bind(t *Tree, h Handle) {
	e.grid = newGrid(t, h)
}
func (e *Table) bound() bool { return e.grid != nil }
func (e *Table) clone() Element {
	return &Table{Attr: e.Attr.copy()}
}

// Grid returns the grid of the table.
func (e *Table) Grid() *Grid { return e.grid }
