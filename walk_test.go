package ineld

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(t *testing.T, tr *Tree) Handle {
	root := tr.New(&Frame{})
	p := tr.New(&Paragraph{})
	require.NoError(t, tr.AppendChild(p, text(tr, "Para")))
	require.NoError(t, tr.AppendChild(root, p))
	_, g, err := tr.NewTable(1, 2, nil)
	require.NoError(t, err)
	require.NoError(t, g.InsertIntoCell(0, 0, NoOffset, text(tr, "CellA")))
	require.NoError(t, g.InsertIntoCell(0, 1, NoOffset, text(tr, "CellB")))
	require.NoError(t, tr.AppendChild(root, g.Owner()))
	require.NoError(t, tr.AppendChild(root, text(tr, "Tail")))
	return root
}

func BenchmarkQuery(b *testing.B) {
	b.StopTimer()
	tr := NewTree(DefaultConf)
	root := tr.New(&Frame{})
	for i := 0; i < 100; i++ {
		tr.AppendChild(root, tr.New(&Text{Text: "x"}))
	}
	b.ReportAllocs()
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		Query(tr, root, func(Handle, *Text) WalkResult { return WalkContinue })
	}
}

func TestQueryText(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	root := testDocument(t, tr)

	var items []string
	Query(tr, root, func(_ Handle, e *Text) WalkResult {
		items = append(items, e.Text)
		return WalkContinue
	})
	assert.Equal(t, "Para,CellA,CellB,Tail", strings.Join(items, ","))
}

func TestQuerySkipsRoot(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	root := testDocument(t, tr)
	var frames int
	Query(tr, root, func(Handle, *Frame) WalkResult {
		frames++
		return WalkContinue
	})
	assert.Zero(t, frames)
}

func TestWalkSkipAndStop(t *testing.T) {
	tr := newTestTree(t, DefaultConf)
	root := testDocument(t, tr)

	var visited []Tag
	Walk(tr, root, func(h Handle) WalkResult {
		visited = append(visited, tr.Element(h).Tag())
		if Is[Table](tr.Element(h)) {
			return WalkSkip
		}
		return WalkContinue
	})
	assert.Equal(t, []Tag{FrameTag, ParagraphTag, TextTag, TableTag, TextTag}, visited)

	var count int
	res := Walk(tr, root, func(h Handle) WalkResult {
		count++
		if Is[Table](tr.Element(h)) {
			return WalkStop
		}
		return WalkContinue
	})
	assert.Equal(t, WalkStop, res)
	assert.Equal(t, 4, count)
	assert.Equal(t, WalkContinue, Walk(tr, Invalid, func(Handle) WalkResult { return WalkStop }))
}
