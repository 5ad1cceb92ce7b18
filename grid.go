package ineld

import (
	"fmt"
	"sort"
)

// Grid lays the groups of a table out on rows and columns. Every cell
// holds a group id; a merged span is a rectangle of cells holding the same
// id, and every group is referenced by exactly one such rectangle.
type Grid struct {
	tree    *Tree
	owner   Handle
	groups  *GroupIndex
	rows    int
	columns int
	cells   []GroupID // row-major
}

func newGrid(t *Tree, owner Handle) *Grid {
	gi := newGroupIndex(t, owner)
	gi.gridded = true
	return &Grid{
		tree:    t,
		owner:   owner,
		groups:  gi,
		rows:    1,
		columns: 1,
		cells:   []GroupID{0},
	}
}

// Position addresses a cell.
type Position struct {
	Row, Column int
}

// CellData describes one distinct (possibly merged) cell.
type CellData struct {
	RowSpan    int
	ColumnSpan int
	Group      GroupID
	Children   []Handle // nil unless requested
}

// CellDescription is the geometric, id-free description of a cell used
// to persist and rebuild tables.
type CellDescription struct {
	CellGeometry
	Children []Handle
}

// NewTable creates a detached table of rows x columns singleton cells;
// each cell receives a deep copy of the template elements.
func (t *Tree) NewTable(rows, columns int, template []Handle) (Handle, *Grid, error) {
	t.guard()
	if !sizeOK(rows, columns) {
		return Invalid, nil, ErrOutOfRange
	}
	if err := t.checkTemplate(template); err != nil {
		return Invalid, nil, err
	}
	h := t.alloc(&Table{})
	g := t.mustNode(h).elt.(*Table).grid
	g.rows, g.columns = rows, columns
	g.cells = make([]GroupID, rows*columns)
	for i := range g.cells {
		g.cells[i] = GroupID(i)
	}
	g.groups.addGroups(1, len(g.cells)-1)
	for i := range g.cells {
		g.fill(GroupID(i), template)
	}
	return h, g, nil
}

// NewTableFromCells rebuilds a detached table from its geometry. The cells
// must tile the rows x columns grid exactly. Children listed in a cell are
// moved into it.
func (t *Tree) NewTableFromCells(rows, columns int, cells []CellDescription) (Handle, *Grid, error) {
	t.guard()
	geoms := make([]CellGeometry, len(cells))
	kids := make([][]Handle, len(cells))
	for i := range cells {
		geoms[i] = cells[i].CellGeometry
		kids[i] = cells[i].Children
		for _, c := range cells[i].Children {
			if t.node(c) == nil {
				return Invalid, nil, ErrInvalidHandle
			}
		}
	}
	return t.buildTable(&Table{}, rows, columns, geoms, kids)
}

func (t *Tree) buildTable(elt *Table, rows, columns int, geoms []CellGeometry, kids [][]Handle) (Handle, *Grid, error) {
	order, err := tile(rows, columns, geoms)
	if err != nil {
		return Invalid, nil, err
	}
	h := t.alloc(elt)
	g := elt.grid
	g.rows, g.columns = rows, columns
	g.cells = make([]GroupID, rows*columns)
	g.groups.addGroups(1, len(order)-1)
	for id, i := range order {
		c := geoms[i]
		for r := c.Row; r < c.Row+c.RowSpan; r++ {
			for col := c.Column; col < c.Column+c.ColumnSpan; col++ {
				g.cells[r*columns+col] = GroupID(id)
			}
		}
		for _, child := range kids[i] {
			if t.mustNode(child).parent.Valid() {
				t.moveOut(child)
			}
			g.groups.link(GroupID(id), g.groups.NumberChildrenInGroup(GroupID(id)), child)
		}
	}
	g.renumber()
	return h, g, nil
}

// MaxTableCells bounds rows x columns of a table.
const MaxTableCells = 1 << 24

func sizeOK(rows, columns int) bool {
	return rows >= 1 && columns >= 1 && rows <= MaxTableCells/columns
}

// tile validates that geoms cover the grid exactly once and returns their
// indices ordered by top-left cell, row-major.
func tile(rows, columns int, geoms []CellGeometry) ([]int, error) {
	if !sizeOK(rows, columns) {
		return nil, fmt.Errorf("%dx%d table: %w", rows, columns, ErrGeometry)
	}
	covered := make([]bool, rows*columns)
	for _, c := range geoms {
		// compare by subtraction: spans read from an archive may be huge
		if c.RowSpan < 1 || c.ColumnSpan < 1 || c.Row < 0 || c.Column < 0 ||
			c.Row >= rows || c.Column >= columns ||
			c.RowSpan > rows-c.Row || c.ColumnSpan > columns-c.Column {
			return nil, fmt.Errorf("cell %+v outside %dx%d table: %w", c, rows, columns, ErrGeometry)
		}
		for r := c.Row; r < c.Row+c.RowSpan; r++ {
			for col := c.Column; col < c.Column+c.ColumnSpan; col++ {
				if covered[r*columns+col] {
					return nil, fmt.Errorf("cell (%d,%d) covered twice: %w", r, col, ErrGeometry)
				}
				covered[r*columns+col] = true
			}
		}
	}
	for i, ok := range covered {
		if !ok {
			return nil, fmt.Errorf("cell (%d,%d) not covered: %w", i/columns, i%columns, ErrGeometry)
		}
	}
	order := make([]int, len(geoms))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ga, gb := geoms[order[a]], geoms[order[b]]
		if ga.Row != gb.Row {
			return ga.Row < gb.Row
		}
		return ga.Column < gb.Column
	})
	return order, nil
}

// Owner returns the table element.
func (g *Grid) Owner() Handle { return g.owner }

// Groups returns the group index behind the grid. Its group count follows
// the grid and cannot be changed through it.
func (g *Grid) Groups() *GroupIndex { return g.groups }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Columns returns the number of columns.
func (g *Grid) Columns() int { return g.columns }

func (g *Grid) inside(row, column int) bool {
	return row >= 0 && row < g.rows && column >= 0 && column < g.columns
}

func (g *Grid) at(row, column int) GroupID {
	return g.cells[row*g.columns+column]
}

// GroupAt returns the group occupying a cell, or NoGroup outside the grid.
func (g *Grid) GroupAt(row, column int) GroupID {
	if !g.inside(row, column) {
		return NoGroup
	}
	return g.at(row, column)
}

// TopRow returns the first row of the span containing the cell, -1 outside.
func (g *Grid) TopRow(row, column int) int {
	if !g.inside(row, column) {
		return -1
	}
	id := g.at(row, column)
	for row > 0 && g.at(row-1, column) == id {
		row--
	}
	return row
}

// BottomRow returns the last row of the span containing the cell, -1 outside.
func (g *Grid) BottomRow(row, column int) int {
	if !g.inside(row, column) {
		return -1
	}
	id := g.at(row, column)
	for row+1 < g.rows && g.at(row+1, column) == id {
		row++
	}
	return row
}

// LeftColumn returns the first column of the span containing the cell, -1 outside.
func (g *Grid) LeftColumn(row, column int) int {
	if !g.inside(row, column) {
		return -1
	}
	id := g.at(row, column)
	for column > 0 && g.at(row, column-1) == id {
		column--
	}
	return column
}

// RightColumn returns the last column of the span containing the cell, -1 outside.
func (g *Grid) RightColumn(row, column int) int {
	if !g.inside(row, column) {
		return -1
	}
	id := g.at(row, column)
	for column+1 < g.columns && g.at(row, column+1) == id {
		column++
	}
	return column
}

type span struct {
	top, left, bottom, right int
}

func (s span) cells() int { return (s.bottom - s.top + 1) * (s.right - s.left + 1) }

func (g *Grid) spanAt(row, column int) span {
	return span{
		top:    g.TopRow(row, column),
		left:   g.LeftColumn(row, column),
		bottom: g.BottomRow(row, column),
		right:  g.RightColumn(row, column),
	}
}

// IsMerged reports whether the cell shares its group with a neighbor.
func (g *Grid) IsMerged(row, column int) bool {
	if !g.inside(row, column) {
		return false
	}
	id := g.at(row, column)
	return (row > 0 && g.at(row-1, column) == id) ||
		(row+1 < g.rows && g.at(row+1, column) == id) ||
		(column > 0 && g.at(row, column-1) == id) ||
		(column+1 < g.columns && g.at(row, column+1) == id)
}

// CellChildren returns the children of the cell's group.
func (g *Grid) CellChildren(row, column int) []Handle {
	if !g.inside(row, column) {
		return nil
	}
	return g.groups.ChildrenInGroup(g.at(row, column))
}

// InsertIntoCell inserts child at offset among the children of a cell;
// NoOffset appends.
func (g *Grid) InsertIntoCell(row, column, offset int, child Handle) error {
	if !g.inside(row, column) {
		return ErrOutOfRange
	}
	return g.groups.InsertIntoGroupBefore(g.at(row, column), offset, child)
}

// RemoveFromCell detaches the child at offset of a cell.
func (g *Grid) RemoveFromCell(row, column, offset int) (Handle, error) {
	if !g.inside(row, column) {
		return Invalid, ErrOutOfRange
	}
	return g.groups.RemoveFromGroup(g.at(row, column), offset)
}

// CellDataByPosition returns one entry per distinct cell, keyed by its
// top-left position.
func (g *Grid) CellDataByPosition(includeChildren bool) map[Position]CellData {
	out := make(map[Position]CellData)
	seen := make([]bool, g.groups.NumberGroups())
	for row := 0; row < g.rows; row++ {
		for column := 0; column < g.columns; column++ {
			id := g.at(row, column)
			if seen[id] {
				continue
			}
			seen[id] = true
			s := g.spanAt(row, column)
			d := CellData{
				RowSpan:    s.bottom - s.top + 1,
				ColumnSpan: s.right - s.left + 1,
				Group:      id,
			}
			if includeChildren {
				d.Children = g.groups.ChildrenInGroup(id)
			}
			out[Position{row, column}] = d
		}
	}
	return out
}

// Describe returns the geometry of every distinct cell ordered row-major
// by top-left position.
func (g *Grid) Describe(includeChildren bool) []CellDescription {
	var out []CellDescription
	seen := make([]bool, g.groups.NumberGroups())
	for row := 0; row < g.rows; row++ {
		for column := 0; column < g.columns; column++ {
			id := g.at(row, column)
			if seen[id] {
				continue
			}
			seen[id] = true
			s := g.spanAt(row, column)
			d := CellDescription{CellGeometry: CellGeometry{
				Row:        row,
				Column:     column,
				RowSpan:    s.bottom - s.top + 1,
				ColumnSpan: s.right - s.left + 1,
			}}
			if includeChildren {
				d.Children = g.groups.ChildrenInGroup(id)
			}
			out = append(out, d)
		}
	}
	return out
}

// check verifies grid/group consistency: dense ids, no orphans and every
// group occupying a full rectangle.
func (g *Grid) check() error {
	if err := g.groups.check(); err != nil {
		return err
	}
	if len(g.cells) != g.rows*g.columns {
		return fmt.Errorf("%d cells for %dx%d grid", len(g.cells), g.rows, g.columns)
	}
	n := g.groups.NumberGroups()
	count := make([]int, n)
	for _, id := range g.cells {
		if id < 0 || int(id) >= n {
			return fmt.Errorf("dangling group id %d of %d", id, n)
		}
		count[id]++
	}
	for id, c := range count {
		if c == 0 {
			return fmt.Errorf("orphaned group %d", id)
		}
	}
	for row := 0; row < g.rows; row++ {
		for column := 0; column < g.columns; column++ {
			s := g.spanAt(row, column)
			if s.cells() != count[g.at(row, column)] {
				return fmt.Errorf("group %d at (%d,%d) is not a rectangle", g.at(row, column), row, column)
			}
		}
	}
	return nil
}
