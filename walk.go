package ineld

// WalkResult is the result of a walk operation.
type WalkResult int

// WalkContinue indicates that the walk operation should continue.
const WalkContinue WalkResult = 0

// WalkSkip indicates that the children of the current element should not
// be visited.
const WalkSkip WalkResult = 2

// WalkStop indicates that the walk operation should stop immediately.
const WalkStop WalkResult = 3

// Walk visits h and its descendants depth first, parents before children,
// children in child-list order. The return value of 'fun' controls the
// traversal:
//
//   - WalkStop: Terminates the traversal process immediately.
//   - WalkSkip: Does not descend into the current element.
//   - WalkContinue: Continues with the children of the current element.
//
// Walk returns WalkStop if the traversal was stopped, WalkContinue
// otherwise. 'fun' must not mutate the tree.
func Walk(t *Tree, h Handle, fun func(Handle) WalkResult) WalkResult {
	n := t.node(h)
	if n == nil {
		return WalkContinue
	}
	switch fun(h) {
	case WalkStop:
		return WalkStop
	case WalkSkip:
		return WalkContinue
	}
	for _, c := range n.children {
		if Walk(t, c, fun) == WalkStop {
			return WalkStop
		}
	}
	return WalkContinue
}

// Query applies 'fun' to every descendant of h whose payload is of type
// P. 'fun' is not applied to h itself, even if its payload matches.
// Elements of other types are descended into.
//
// Example:
//
//	var cells int
//	ineld.Query(tree, root, func(h ineld.Handle, tbl *ineld.Table) ineld.WalkResult {
//	    cells += len(tbl.Grid().Describe(false))
//	    return ineld.WalkContinue
//	})
func Query[P Element](t *Tree, h Handle, fun func(Handle, P) WalkResult) {
	Walk(t, h, func(d Handle) WalkResult {
		if d == h {
			return WalkContinue
		}
		if p, ok := t.Element(d).(P); ok {
			return fun(d, p)
		}
		return WalkContinue
	})
}
