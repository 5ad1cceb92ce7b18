package ineld

import "go.uber.org/zap"

func (t *Tree) checkTemplate(template []Handle) error {
	for _, h := range template {
		if t.node(h) == nil {
			return ErrInvalidHandle
		}
	}
	return nil
}

// fill appends a deep copy of every template element to group id.
func (g *Grid) fill(id GroupID, template []Handle) {
	for _, h := range template {
		c := g.tree.restore(g.tree.snapshot(h))
		g.groups.link(id, g.groups.NumberChildrenInGroup(id), c)
	}
}

// freshGroups appends n empty groups and returns the id of the first.
func (g *Grid) freshGroups(n int) GroupID {
	first := GroupID(g.groups.NumberGroups())
	g.groups.addGroups(first, n)
	return first
}

// InsertRowsBefore inserts n rows in front of row; row == Rows() appends.
// A new cell joins the span around it when the cells directly above and
// below belong to the same group; otherwise it becomes a new group filled
// with copies of template.
func (g *Grid) InsertRowsBefore(row, n int, template []Handle) error {
	t := g.tree
	t.guard()
	if row < 0 || row > g.rows || n < 0 || n > MaxTableCells || !sizeOK(g.rows+n, g.columns) {
		return ErrOutOfRange
	}
	if err := t.checkTemplate(template); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	ch := gridChange(g.owner, OpRowsInserted, row, -1, n)
	t.notify(ch, PhaseAboutTo)

	cells := make([]GroupID, (g.rows+n)*g.columns)
	next := GroupID(g.groups.NumberGroups())
	fresh := 0
	for r := 0; r < g.rows+n; r++ {
		for c := 0; c < g.columns; c++ {
			dst := r*g.columns + c
			switch {
			case r < row:
				cells[dst] = g.at(r, c)
			case r >= row+n:
				cells[dst] = g.at(r-n, c)
			default:
				above, below := g.GroupAt(row-1, c), g.GroupAt(row, c)
				if above != NoGroup && above == below {
					cells[dst] = above
				} else {
					cells[dst] = next + GroupID(fresh)
					fresh++
				}
			}
		}
	}
	g.materialize(fresh, template)
	g.rows += n
	g.cells = cells
	g.renumber()

	t.log.Debug("grid: rows inserted", zap.Stringer("table", g.owner),
		zap.Int("row", row), zap.Int("count", n), zap.Int("newGroups", fresh))
	t.notify(ch, PhaseCompleted)
	return nil
}

// InsertColumnsBefore inserts n columns in front of column; column ==
// Columns() appends. Span inheritance follows InsertRowsBefore with the
// cells left and right of the insertion point.
func (g *Grid) InsertColumnsBefore(column, n int, template []Handle) error {
	t := g.tree
	t.guard()
	if column < 0 || column > g.columns || n < 0 || n > MaxTableCells || !sizeOK(g.rows, g.columns+n) {
		return ErrOutOfRange
	}
	if err := t.checkTemplate(template); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	ch := gridChange(g.owner, OpColumnsInserted, -1, column, n)
	t.notify(ch, PhaseAboutTo)

	columns := g.columns + n
	cells := make([]GroupID, g.rows*columns)
	next := GroupID(g.groups.NumberGroups())
	fresh := 0
	for r := 0; r < g.rows; r++ {
		for c := 0; c < columns; c++ {
			dst := r*columns + c
			switch {
			case c < column:
				cells[dst] = g.at(r, c)
			case c >= column+n:
				cells[dst] = g.at(r, c-n)
			default:
				left, right := g.GroupAt(r, column-1), g.GroupAt(r, column)
				if left != NoGroup && left == right {
					cells[dst] = left
				} else {
					cells[dst] = next + GroupID(fresh)
					fresh++
				}
			}
		}
	}
	g.materialize(fresh, template)
	g.columns = columns
	g.cells = cells
	g.renumber()

	t.log.Debug("grid: columns inserted", zap.Stringer("table", g.owner),
		zap.Int("column", column), zap.Int("count", n), zap.Int("newGroups", fresh))
	t.notify(ch, PhaseCompleted)
	return nil
}

// materialize appends n groups, each holding copies of template.
func (g *Grid) materialize(n int, template []Handle) {
	if n == 0 {
		return
	}
	first := g.freshGroups(n)
	for k := 0; k < n; k++ {
		g.fill(first+GroupID(k), template)
	}
}

// RemoveRow deletes a row. Groups left without any cell are purged, their
// children removed with cursor repair. The only row cannot be removed.
func (g *Grid) RemoveRow(row int) error {
	t := g.tree
	t.guard()
	if row < 0 || row >= g.rows {
		return ErrOutOfRange
	}
	if g.rows == 1 {
		return ErrLastRow
	}
	ch := gridChange(g.owner, OpRowRemoved, row, -1, 1)
	t.notify(ch, PhaseAboutTo)

	cells := make([]GroupID, 0, (g.rows-1)*g.columns)
	cells = append(cells, g.cells[:row*g.columns]...)
	cells = append(cells, g.cells[(row+1)*g.columns:]...)
	g.rows--
	g.cells = cells
	g.renumber()

	t.log.Debug("grid: row removed", zap.Stringer("table", g.owner), zap.Int("row", row))
	t.notify(ch, PhaseCompleted)
	return nil
}

// RemoveColumn deletes a column; see RemoveRow.
func (g *Grid) RemoveColumn(column int) error {
	t := g.tree
	t.guard()
	if column < 0 || column >= g.columns {
		return ErrOutOfRange
	}
	if g.columns == 1 {
		return ErrLastColumn
	}
	ch := gridChange(g.owner, OpColumnRemoved, -1, column, 1)
	t.notify(ch, PhaseAboutTo)

	cells := make([]GroupID, 0, g.rows*(g.columns-1))
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.columns; c++ {
			if c != column {
				cells = append(cells, g.at(r, c))
			}
		}
	}
	g.columns--
	g.cells = cells
	g.renumber()

	t.log.Debug("grid: column removed", zap.Stringer("table", g.owner), zap.Int("column", column))
	t.notify(ch, PhaseCompleted)
	return nil
}

// MergeCells extends the span containing (row, column) by extendRight
// columns and extendDown rows and merges the rectangle into the group of
// (row, column). Spans that straddle the rectangle are swallowed whole, so
// the rectangle may grow to their bounding box. Children of every
// displaced group are appended, in row-major order of the groups, to the
// anchor group. The rectangle must stay inside the grid.
func (g *Grid) MergeCells(row, column, extendRight, extendDown int) error {
	t := g.tree
	t.guard()
	if !g.inside(row, column) || extendRight < 0 || extendDown < 0 {
		return ErrOutOfRange
	}
	s := g.spanAt(row, column)
	s.bottom += extendDown
	s.right += extendRight
	if s.bottom >= g.rows || s.right >= g.columns {
		return ErrMergeBounds
	}
	if extendRight == 0 && extendDown == 0 {
		return nil
	}
	s = g.cover(s)
	anchor := g.at(row, column)
	ch := gridChange(g.owner, OpCellsMerged, row, column, s.cells())
	t.notify(ch, PhaseAboutTo)

	runs := g.runs()
	absorbed := make(map[GroupID]bool)
	for r := s.top; r <= s.bottom; r++ {
		for c := s.left; c <= s.right; c++ {
			id := g.at(r, c)
			if id != anchor && !absorbed[id] {
				absorbed[id] = true
				runs[anchor] = append(runs[anchor], runs[id]...)
				runs[id] = nil
			}
			g.cells[r*g.columns+c] = anchor
		}
	}
	g.groups.relayout(runs)
	g.renumber()

	t.log.Debug("grid: cells merged", zap.Stringer("table", g.owner),
		zap.Int("row", row), zap.Int("column", column),
		zap.Int("rowSpan", s.bottom-s.top+1), zap.Int("columnSpan", s.right-s.left+1))
	t.notify(ch, PhaseCompleted)
	return nil
}

// cover grows s until no span crosses its border.
func (g *Grid) cover(s span) span {
	for {
		grown := s
		for r := s.top; r <= s.bottom; r++ {
			for c := s.left; c <= s.right; c++ {
				o := g.spanAt(r, c)
				grown.top = min(grown.top, o.top)
				grown.left = min(grown.left, o.left)
				grown.bottom = max(grown.bottom, o.bottom)
				grown.right = max(grown.right, o.right)
			}
		}
		if grown == s {
			return s
		}
		s = grown
	}
}

// runs returns the children of every group, indexed by group id.
func (g *Grid) runs() [][]Handle {
	runs := make([][]Handle, g.groups.NumberGroups())
	for id := range runs {
		runs[id] = g.groups.ChildrenInGroup(GroupID(id))
	}
	return runs
}

// UnmergeCells splits the span containing (row, column) back into single
// cells. The top-left cell keeps the group and its children; every other
// cell gets a new group holding copies of template.
func (g *Grid) UnmergeCells(row, column int, template []Handle) error {
	t := g.tree
	t.guard()
	if !g.inside(row, column) {
		return ErrOutOfRange
	}
	if !g.IsMerged(row, column) {
		return ErrNotMerged
	}
	if err := t.checkTemplate(template); err != nil {
		return err
	}
	s := g.spanAt(row, column)
	ch := gridChange(g.owner, OpCellsUnmerged, row, column, s.cells())
	t.notify(ch, PhaseAboutTo)

	first := g.freshGroups(s.cells() - 1)
	next := first
	for r := s.top; r <= s.bottom; r++ {
		for c := s.left; c <= s.right; c++ {
			if r == s.top && c == s.left {
				continue
			}
			g.fill(next, template)
			g.cells[r*g.columns+c] = next
			next++
		}
	}
	g.renumber()

	t.log.Debug("grid: cells unmerged", zap.Stringer("table", g.owner),
		zap.Int("row", s.top), zap.Int("column", s.left), zap.Int("cells", s.cells()))
	t.notify(ch, PhaseCompleted)
	return nil
}
