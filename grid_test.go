package ineld

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layout returns the group id of every cell, row by row.
func layout(g *Grid) [][]GroupID {
	out := make([][]GroupID, g.Rows())
	for r := range out {
		out[r] = make([]GroupID, g.Columns())
		for c := range out[r] {
			out[r][c] = g.GroupAt(r, c)
		}
	}
	return out
}

func TestNewTable(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	tmpl := []Handle{text(tr, "a"), text(tr, "b")}
	h, g, err := tr.NewTable(2, 3, tmpl)
	require.NoError(t, err)
	requireGrid(t, g)

	assert.Equal(t, h, g.Owner())
	assert.Equal(t, 6, g.Groups().NumberGroups())
	assert.Equal(t, 12, tr.NumberChildren(h))
	assert.Equal(t, [][]GroupID{{0, 1, 2}, {3, 4, 5}}, layout(g))
	assert.Equal(t, []string{"a", "b"}, texts(tr, g.CellChildren(1, 2)))
	assert.NotEqual(t, tmpl[0], g.CellChildren(0, 0)[0], "template is copied")
	assert.False(t, tr.Parent(tmpl[0]).Valid())

	_, _, err = tr.NewTable(0, 3, nil)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = tr.NewTable(1, 1, []Handle{Invalid})
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, _, err = tr.NewTable(MaxTableCells, 2, nil)
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.ErrorIs(t, g.InsertRowsBefore(0, MaxTableCells, nil), ErrOutOfRange)
	assert.ErrorIs(t, g.InsertColumnsBefore(0, math.MaxInt, nil), ErrOutOfRange)
	requireGrid(t, g)
	assert.Equal(t, 2, g.Rows())
}

func TestSpanQueries(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(4, 4, nil)
	require.NoError(t, err)
	require.NoError(t, g.MergeCells(1, 1, 1, 2))

	for r := 1; r <= 3; r++ {
		for c := 1; c <= 2; c++ {
			assert.Equal(t, 1, g.TopRow(r, c))
			assert.Equal(t, 3, g.BottomRow(r, c))
			assert.Equal(t, 1, g.LeftColumn(r, c))
			assert.Equal(t, 2, g.RightColumn(r, c))
			assert.True(t, g.IsMerged(r, c))
		}
	}
	assert.Equal(t, 0, g.TopRow(0, 1))
	assert.Equal(t, 0, g.BottomRow(0, 1))
	assert.False(t, g.IsMerged(0, 1))
	assert.Equal(t, -1, g.TopRow(4, 0))
	assert.Equal(t, -1, g.RightColumn(0, -1))
	assert.Equal(t, NoGroup, g.GroupAt(-1, 0))
	assert.False(t, g.IsMerged(9, 9))
	requireGrid(t, g)
}

func TestMergeScenario(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(3, 3, nil)
	require.NoError(t, err)

	require.NoError(t, g.MergeCells(0, 0, 1, 1))
	requireGrid(t, g)

	cells := g.CellDataByPosition(false)
	require.Len(t, cells, 6)
	assert.Equal(t, CellData{RowSpan: 2, ColumnSpan: 2, Group: 0}, cells[Position{0, 0}])
	for _, p := range []Position{{0, 2}, {1, 2}, {2, 0}, {2, 1}, {2, 2}} {
		assert.Equal(t, 1, cells[p].RowSpan, "%v", p)
		assert.Equal(t, 1, cells[p].ColumnSpan, "%v", p)
	}
	assert.Equal(t, [][]GroupID{{0, 0, 1}, {0, 0, 2}, {3, 4, 5}}, layout(g))
}

func TestMergeMovesChildrenToAnchor(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	h, g, err := tr.NewTable(2, 2, nil)
	require.NoError(t, err)
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			require.NoError(t, g.InsertIntoCell(r, c, NoOffset, text(tr, string(rune('a'+r*2+c)))))
		}
	}

	require.NoError(t, g.MergeCells(0, 1, 0, 1))
	requireGrid(t, g)
	assert.Equal(t, []string{"b", "d"}, texts(tr, g.CellChildren(1, 1)))
	assert.Equal(t, []string{"a", "b", "d", "c"}, texts(tr, tr.Children(h)))
	assert.Equal(t, 3, g.Groups().NumberGroups())
}

func TestMergeSwallowsStraddlingSpans(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(3, 3, nil)
	require.NoError(t, err)
	require.NoError(t, g.MergeCells(1, 1, 1, 1))

	require.NoError(t, g.MergeCells(0, 0, 1, 1))
	requireGrid(t, g)
	cells := g.CellDataByPosition(false)
	require.Len(t, cells, 1)
	assert.Equal(t, 3, cells[Position{0, 0}].RowSpan)
	assert.Equal(t, 3, cells[Position{0, 0}].ColumnSpan)
	assert.Equal(t, 1, g.Groups().NumberGroups())
}

func TestMergeBounds(t *testing.T) {
	rec := &recorder{}
	tr := newTestTree(t, DefaultConf.WithNotifier(rec))
	_, g, err := tr.NewTable(3, 3, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, g.MergeCells(2, 2, 1, 0), ErrMergeBounds)
	assert.ErrorIs(t, g.MergeCells(0, 1, 0, 3), ErrMergeBounds)
	assert.ErrorIs(t, g.MergeCells(3, 0, 0, 0), ErrOutOfRange)
	assert.ErrorIs(t, g.MergeCells(0, 0, -1, 0), ErrOutOfRange)
	require.NoError(t, g.MergeCells(1, 1, 0, 0))
	assert.Empty(t, rec.changes)
	assert.Equal(t, 9, g.Groups().NumberGroups())

	// extensions count from the edge of the existing span
	require.NoError(t, g.MergeCells(0, 0, 1, 0))
	require.NoError(t, g.MergeCells(0, 1, 1, 0))
	assert.Equal(t, 3, g.CellDataByPosition(false)[Position{0, 0}].ColumnSpan)
	assert.ErrorIs(t, g.MergeCells(0, 2, 1, 0), ErrMergeBounds)
	requireGrid(t, g)
}

func TestMergeUnmergeInverse(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	tmpl := []Handle{text(tr, "t")}
	h, g, err := tr.NewTable(3, 3, tmpl)
	require.NoError(t, err)

	require.NoError(t, g.MergeCells(0, 0, 1, 1))
	assert.Len(t, g.CellDataByPosition(false), 6)
	assert.Len(t, g.CellChildren(0, 0), 4)

	require.NoError(t, g.UnmergeCells(1, 1, tmpl))
	requireGrid(t, g)
	cells := g.CellDataByPosition(true)
	require.Len(t, cells, 9)
	for p, d := range cells {
		assert.Equal(t, 1, d.RowSpan, "%v", p)
		assert.Equal(t, 1, d.ColumnSpan, "%v", p)
	}
	assert.Equal(t, [][]GroupID{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}, layout(g))

	// The anchor keeps the merged content; split-off cells start from the
	// template, so unmerge restores the shape but not the content.
	assert.Len(t, cells[Position{0, 0}].Children, 4)
	assert.Len(t, cells[Position{1, 1}].Children, 1)
	assert.Equal(t, 12, tr.NumberChildren(h))
}

func TestUnmergeErrors(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(2, 2, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, g.UnmergeCells(0, 0, nil), ErrNotMerged)
	assert.ErrorIs(t, g.UnmergeCells(2, 0, nil), ErrOutOfRange)
	require.NoError(t, g.MergeCells(0, 0, 1, 0))
	assert.ErrorIs(t, g.UnmergeCells(0, 0, []Handle{Invalid}), ErrInvalidHandle)
	assert.Equal(t, 3, g.Groups().NumberGroups())
}

func TestInsertColumnScenario(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(2, 2, nil)
	require.NoError(t, err)

	require.NoError(t, g.InsertColumnsBefore(1, 1, nil))
	requireGrid(t, g)
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 3, g.Columns())
	assert.Equal(t, 6, g.Groups().NumberGroups())
	assert.Equal(t, [][]GroupID{{0, 1, 2}, {3, 4, 5}}, layout(g))
	assert.Equal(t, 0, g.Groups().NumberChildrenInGroup(1))
}

func TestInsertRowsKeepsChildren(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(2, 1, nil)
	require.NoError(t, err)
	require.NoError(t, g.InsertIntoCell(0, 0, NoOffset, text(tr, "top")))
	require.NoError(t, g.InsertIntoCell(1, 0, NoOffset, text(tr, "bottom")))

	require.NoError(t, g.InsertRowsBefore(1, 2, []Handle{text(tr, "new")}))
	requireGrid(t, g)
	assert.Equal(t, 4, g.Rows())
	assert.Equal(t, []string{"top"}, texts(tr, g.CellChildren(0, 0)))
	assert.Equal(t, []string{"new"}, texts(tr, g.CellChildren(1, 0)))
	assert.Equal(t, []string{"new"}, texts(tr, g.CellChildren(2, 0)))
	assert.Equal(t, []string{"bottom"}, texts(tr, g.CellChildren(3, 0)))

	require.NoError(t, g.InsertRowsBefore(4, 1, nil))
	require.NoError(t, g.InsertRowsBefore(0, 1, nil))
	assert.Equal(t, 6, g.Rows())
	assert.Equal(t, []string{"top"}, texts(tr, g.CellChildren(1, 0)))
	assert.ErrorIs(t, g.InsertRowsBefore(7, 1, nil), ErrOutOfRange)
	requireGrid(t, g)
}

// Insertion strictly inside a span widens the span. Insertion on a span
// edge, including the grid edge, creates new cells and leaves the span as
// it was, even though the inserted line touches the span.
func TestInsertInsideSpanJoinsIt(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(1, 3, nil)
	require.NoError(t, err)
	require.NoError(t, g.MergeCells(0, 0, 1, 0))

	require.NoError(t, g.InsertColumnsBefore(1, 1, nil))
	requireGrid(t, g)
	assert.Equal(t, [][]GroupID{{0, 0, 0, 1}}, layout(g))
	assert.Equal(t, 3, g.CellDataByPosition(false)[Position{0, 0}].ColumnSpan)

	_, g, err = tr.NewTable(3, 1, nil)
	require.NoError(t, err)
	require.NoError(t, g.MergeCells(0, 0, 0, 1))
	require.NoError(t, g.InsertRowsBefore(1, 2, nil))
	requireGrid(t, g)
	assert.Equal(t, 4, g.CellDataByPosition(false)[Position{0, 0}].RowSpan)
}

func TestInsertAtSpanEdgeCreatesNewCells(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(1, 3, nil)
	require.NoError(t, err)
	require.NoError(t, g.MergeCells(0, 0, 1, 0))

	require.NoError(t, g.InsertColumnsBefore(2, 1, nil))
	requireGrid(t, g)
	assert.Equal(t, [][]GroupID{{0, 0, 1, 2}}, layout(g))

	require.NoError(t, g.InsertColumnsBefore(0, 1, nil))
	requireGrid(t, g)
	assert.Equal(t, [][]GroupID{{0, 1, 1, 2, 3}}, layout(g))
	assert.Equal(t, 2, g.CellDataByPosition(false)[Position{0, 1}].ColumnSpan)
}

func TestRemoveRowPurgesGroups(t *testing.T) {
	cursors := NewCursorSet()
	tr := newTestTree(t, DefaultConf.WithCursorRepair(cursors))
	tmpl := []Handle{text(tr, "t")}
	h, g, err := tr.NewTable(2, 2, tmpl)
	require.NoError(t, err)
	first := g.CellChildren(0, 0)[0]
	survivor := g.CellChildren(1, 0)[0]
	cur := cursors.NewCursor(first, 1)
	live := tr.Len()

	require.NoError(t, g.RemoveRow(0))
	requireGrid(t, g)
	assert.Equal(t, 1, g.Rows())
	assert.Equal(t, 2, g.Groups().NumberGroups())
	assert.Equal(t, 2, tr.NumberChildren(h))
	assert.Equal(t, live-2, tr.Len())
	assert.False(t, tr.Valid(first))
	assert.Equal(t, survivor, cur.Element())
	assert.Equal(t, 0, cur.Offset())

	assert.ErrorIs(t, g.RemoveRow(0), ErrLastRow)
	assert.ErrorIs(t, g.RemoveRow(1), ErrOutOfRange)
	assert.Equal(t, 1, g.Rows())
}

func TestRemoveThroughSpan(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(3, 3, []Handle{text(tr, "t")})
	require.NoError(t, err)
	require.NoError(t, g.MergeCells(0, 0, 1, 1))

	require.NoError(t, g.RemoveColumn(1))
	requireGrid(t, g)
	assert.Equal(t, [][]GroupID{{0, 1}, {0, 2}, {3, 4}}, layout(g))
	assert.Len(t, g.CellChildren(0, 0), 4, "a span that survives keeps its children")

	require.NoError(t, g.RemoveRow(0))
	require.NoError(t, g.RemoveColumn(0))
	requireGrid(t, g)
	assert.Equal(t, [][]GroupID{{0}, {1}}, layout(g))
	assert.ErrorIs(t, g.RemoveColumn(0), ErrLastColumn)
}

func TestGridNotifications(t *testing.T) {
	rec := &recorder{}
	tr := newTestTree(t, DefaultConf.WithNotifier(rec))
	h, g, err := tr.NewTable(2, 2, []Handle{text(tr, "t")})
	require.NoError(t, err)
	assert.Empty(t, rec.changes, "building a detached table is silent")

	require.NoError(t, g.MergeCells(0, 0, 1, 1))
	require.NoError(t, g.UnmergeCells(0, 0, nil))
	require.NoError(t, g.InsertRowsBefore(1, 1, nil))
	require.NoError(t, g.InsertColumnsBefore(0, 2, nil))
	require.NoError(t, g.RemoveRow(0))
	require.NoError(t, g.RemoveColumn(1))
	assert.Equal(t, []string{
		"AboutToCellsMerged", "CompletedCellsMerged",
		"AboutToCellsUnmerged", "CompletedCellsUnmerged",
		"AboutToRowsInserted", "CompletedRowsInserted",
		"AboutToColumnsInserted", "CompletedColumnsInserted",
		"AboutToRowRemoved", "CompletedRowRemoved",
		"AboutToColumnRemoved", "CompletedColumnRemoved",
	}, rec.ops())

	merged := rec.changes[0]
	assert.Equal(t, Change{Element: h, Op: OpCellsMerged, Phase: PhaseAboutTo, Row: 0, Column: 0, Index: -1, Count: 4}, merged)
	cols := rec.changes[6]
	assert.Equal(t, -1, cols.Row)
	assert.Equal(t, 0, cols.Column)
	assert.Equal(t, 2, cols.Count)
}

func TestCellAccess(t *testing.T) {
	rec := &recorder{}
	tr := newTestTree(t, DefaultConf.WithNotifier(rec))
	_, g, err := tr.NewTable(2, 2, nil)
	require.NoError(t, err)

	require.NoError(t, g.InsertIntoCell(1, 1, NoOffset, text(tr, "b")))
	require.NoError(t, g.InsertIntoCell(1, 1, 0, text(tr, "a")))
	assert.Equal(t, []string{"a", "b"}, texts(tr, g.CellChildren(1, 1)))
	assert.Equal(t, 0, g.Groups().BaseChildIndex(3), "empty groups share the base")

	x, err := g.RemoveFromCell(1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", tr.Element(x).(*Text).Text)
	_, err = g.RemoveFromCell(0, 0, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, g.InsertIntoCell(2, 0, 0, x), ErrOutOfRange)
	assert.Nil(t, g.CellChildren(0, 5))

	assert.Equal(t, []string{
		"AboutToChildrenInserted", "CompletedChildrenInserted",
		"AboutToChildrenInserted", "CompletedChildrenInserted",
		"AboutToChildrenRemoved", "CompletedChildrenRemoved",
	}, rec.ops())
}

func TestReentrantMutationPanics(t *testing.T) {
	var g *Grid
	tr := newTestTree(t, DefaultConf.WithNotifier(NotifierFunc(func(c Change) {
		if c.Op == OpRowsInserted {
			g.RemoveRow(0)
		}
	})))
	_, g, err := tr.NewTable(2, 2, nil)
	require.NoError(t, err)

	assert.PanicsWithValue(t, ErrReentrant, func() {
		g.InsertRowsBefore(0, 1, nil)
	})
	assert.NotPanics(t, func() {
		require.NoError(t, g.MergeCells(0, 0, 1, 0))
	}, "the tree is usable after the panic is recovered")
}

func TestCellDataChildren(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	_, g, err := tr.NewTable(1, 2, []Handle{text(tr, "x")})
	require.NoError(t, err)
	cells := g.CellDataByPosition(true)
	assert.Len(t, cells[Position{0, 1}].Children, 1)
	assert.Nil(t, g.CellDataByPosition(false)[Position{0, 1}].Children)
}
