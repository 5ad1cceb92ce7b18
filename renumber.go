package ineld

import "go.uber.org/zap"

// renumber makes group ids dense again after the cell array changed. One
// row-major pass assigns new ids in order of first appearance; groups no
// cell refers to any more are purged (their children removed with cursor
// repair); the remaining child runs are laid out in new id order and the
// surplus group entries disappear.
func (g *Grid) renumber() {
	gi := g.groups
	n := gi.NumberGroups()
	remap := make([]GroupID, n)
	for i := range remap {
		remap[i] = NoGroup
	}
	order := make([]GroupID, 0, n)
	for i, old := range g.cells {
		if old < 0 || int(old) >= n {
			invariantf("cell %d names group %d of %d", i, old, n)
		}
		if remap[old] == NoGroup {
			remap[old] = GroupID(len(order))
			order = append(order, old)
		}
		g.cells[i] = remap[old]
	}
	for old := GroupID(0); int(old) < n; old++ {
		if remap[old] == NoGroup && gi.NumberChildrenInGroup(old) > 0 {
			g.tree.log.Debug("grid: purging orphaned group", zap.Stringer("table", g.owner),
				zap.Int("group", int(old)), zap.Int("children", gi.NumberChildrenInGroup(old)))
			gi.purge(old)
		}
	}
	runs := make([][]Handle, len(order))
	for k, old := range order {
		runs[k] = gi.ChildrenInGroup(old)
	}
	gi.relayout(runs)
}
