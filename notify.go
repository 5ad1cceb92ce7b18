package ineld

// ChangeOp names a structural edit.
type ChangeOp int

const (
	OpChildrenInserted ChangeOp = iota
	OpChildrenRemoved
	OpGroupsInserted
	OpGroupsRemoved
	OpRowsInserted
	OpColumnsInserted
	OpRowRemoved
	OpColumnRemoved
	OpCellsMerged
	OpCellsUnmerged
)

var changeOpNames = [...]string{
	OpChildrenInserted: "ChildrenInserted",
	OpChildrenRemoved:  "ChildrenRemoved",
	OpGroupsInserted:   "GroupsInserted",
	OpGroupsRemoved:    "GroupsRemoved",
	OpRowsInserted:     "RowsInserted",
	OpColumnsInserted:  "ColumnsInserted",
	OpRowRemoved:       "RowRemoved",
	OpColumnRemoved:    "ColumnRemoved",
	OpCellsMerged:      "CellsMerged",
	OpCellsUnmerged:    "CellsUnmerged",
}

func (op ChangeOp) String() string {
	if op < 0 || int(op) >= len(changeOpNames) {
		return "ChangeOp(?)"
	}
	return changeOpNames[op]
}

// Phase distinguishes the announcement of an edit from its completion.
type Phase int

const (
	PhaseAboutTo Phase = iota
	PhaseCompleted
)

func (p Phase) String() string {
	if p == PhaseAboutTo {
		return "AboutTo"
	}
	return "Completed"
}

// Change describes one structural edit. Fields that do not apply to Op
// are -1.
//
//   - children ops: Index is the first child index, Count the number of children
//   - group ops: Index is the first group, Count the number of groups
//   - row/column inserts: Row or Column is the insertion point, Count the number inserted
//   - row/column removals: Row or Column is the removed line
//   - merges: Row and Column name the anchor cell, Count the number of cells in the span
type Change struct {
	Element Handle
	Op      ChangeOp
	Phase   Phase
	Row     int
	Column  int
	Index   int
	Count   int
}

// ChangeNotifier receives structural edits synchronously, always as an
// about-to/completed pair with nothing in between.
type ChangeNotifier interface {
	Notify(Change)
}

// NotifierFunc adapts a function to ChangeNotifier.
type NotifierFunc func(Change)

func (f NotifierFunc) Notify(c Change) { f(c) }

type nopNotifier struct{}

func (nopNotifier) Notify(Change) {}

func childrenChange(parent Handle, op ChangeOp, index, count int) Change {
	return Change{Element: parent, Op: op, Row: -1, Column: -1, Index: index, Count: count}
}

func groupsChange(owner Handle, op ChangeOp, index, count int) Change {
	return Change{Element: owner, Op: op, Row: -1, Column: -1, Index: index, Count: count}
}

func gridChange(owner Handle, op ChangeOp, row, column, count int) Change {
	return Change{Element: owner, Op: op, Row: row, Column: column, Index: -1, Count: count}
}
