package ineld

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recorder struct {
	changes []Change
}

func (r *recorder) Notify(c Change) { r.changes = append(r.changes, c) }

func (r *recorder) ops() []string {
	var out []string
	for _, c := range r.changes {
		out = append(out, c.Phase.String()+c.Op.String())
	}
	return out
}

func newTestTree(t *testing.T, conf Conf) *Tree {
	t.Helper()
	return NewTree(conf.WithLogger(zaptest.NewLogger(t)))
}

func text(tr *Tree, s string) Handle {
	return tr.New(&Text{Text: s})
}

func texts(tr *Tree, hs []Handle) []string {
	out := []string{}
	for _, h := range hs {
		out = append(out, tr.Element(h).(*Text).Text)
	}
	return out
}

// groupedFixture builds a Grouped container with one group per run; run k holds
// the given number of text children named "k.i".
func groupedFixture(t *testing.T, tr *Tree, sizes ...int) (Handle, *GroupIndex) {
	t.Helper()
	elt := &Grouped{}
	h := tr.New(elt)
	gi := elt.Groups()
	if len(sizes) > 1 {
		require.NoError(t, gi.InsertGroupsAfter(0, len(sizes)-1))
	}
	for g, n := range sizes {
		for i := 0; i < n; i++ {
			require.NoError(t, gi.AppendToGroup(GroupID(g), text(tr, strconv.Itoa(g)+"."+strconv.Itoa(i))))
		}
	}
	return h, gi
}

func requireGrid(t *testing.T, g *Grid) {
	t.Helper()
	require.NoError(t, g.check())
}

// partition verifies that every child belongs to exactly one group.
func requirePartition(t *testing.T, gi *GroupIndex) {
	t.Helper()
	require.NoError(t, gi.check())
	require.Len(t, gi.FirstChildIndices(), gi.NumberGroups())
	total := 0
	for g := 0; g < gi.NumberGroups(); g++ {
		total += gi.NumberChildrenInGroup(GroupID(g))
	}
	require.Equal(t, gi.NumberChildren(), total)
	for i := 0; i < gi.NumberChildren(); i++ {
		g, off := gi.GroupContaining(i)
		require.NotEqual(t, NoGroup, g, "child %d", i)
		require.Equal(t, i, gi.ChildIndexInGroup(g, off), "child %d", i)
	}
	g, off := gi.GroupContaining(gi.NumberChildren())
	require.Equal(t, NoGroup, g)
	require.Equal(t, NoOffset, off)
}
