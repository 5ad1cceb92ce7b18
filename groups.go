package ineld

import (
	"fmt"
	"sort"
)

// GroupID identifies a group within one container. Ids are dense:
// 0 through NumberGroups()-1.
type GroupID int

// NoGroup is returned where no group applies. It never collides with a
// legal id.
const NoGroup GroupID = -1

// NoOffset passed as an offset to the insert operations means "at the end
// of the group". It is also returned for offsets that do not exist.
const NoOffset = -1

// GroupIndex partitions the child list of one element into an ordered
// sequence of contiguous groups. first[g] is the index of the first child
// of group g; group g runs to first[g+1], the last group to the end of the
// child list. An empty group shares its base index with its successor.
//
// There is always at least one group.
type GroupIndex struct {
	tree  *Tree
	owner Handle
	first []int
	// gridded indices belong to a table; their group count is driven by
	// the grid and cannot be changed directly.
	gridded bool
}

func newGroupIndex(t *Tree, owner Handle) *GroupIndex {
	return &GroupIndex{tree: t, owner: owner, first: []int{0}}
}

// Owner returns the element whose children are grouped.
func (gi *GroupIndex) Owner() Handle { return gi.owner }

// NumberGroups returns the number of groups, at least 1.
func (gi *GroupIndex) NumberGroups() int { return len(gi.first) }

// NumberChildren returns the total number of children over all groups.
func (gi *GroupIndex) NumberChildren() int {
	return len(gi.tree.mustNode(gi.owner).children)
}

func (gi *GroupIndex) validGroup(g GroupID) bool {
	return g >= 0 && int(g) < len(gi.first)
}

// BaseChildIndex returns the index of the first child of group g. For g
// past the last group it returns the number of children, the exclusive
// end of the last group.
func (gi *GroupIndex) BaseChildIndex(g GroupID) int {
	if gi.validGroup(g) {
		return gi.first[g]
	}
	return gi.NumberChildren()
}

// NumberChildrenInGroup returns the size of group g, 0 for invalid groups.
func (gi *GroupIndex) NumberChildrenInGroup(g GroupID) int {
	if !gi.validGroup(g) {
		return 0
	}
	return gi.BaseChildIndex(g+1) - gi.first[g]
}

// GroupContaining returns the group owning the child at childIndex and
// the child's offset within it, or (NoGroup, NoOffset) when childIndex is
// not a child index.
func (gi *GroupIndex) GroupContaining(childIndex int) (GroupID, int) {
	if childIndex < 0 || childIndex >= gi.NumberChildren() {
		return NoGroup, NoOffset
	}
	g := GroupID(sort.Search(len(gi.first), func(k int) bool {
		return gi.first[k] > childIndex
	}) - 1)
	// Empty groups collapse onto their successor's base; step past them
	// to the group that actually holds the child.
	for int(g)+1 < len(gi.first) && gi.first[g+1] <= childIndex {
		g++
	}
	if g < 0 {
		invariantf("child %d precedes group 0 base %d", childIndex, gi.first[0])
	}
	return g, childIndex - gi.first[g]
}

// ChildIndexInGroup converts a group-relative offset to a child index,
// returning NoOffset when the offset does not exist.
func (gi *GroupIndex) ChildIndexInGroup(g GroupID, offset int) int {
	if !gi.validGroup(g) || offset < 0 || offset >= gi.NumberChildrenInGroup(g) {
		return NoOffset
	}
	return gi.first[g] + offset
}

// ChildInGroup returns the child at offset in group g, or Invalid.
func (gi *GroupIndex) ChildInGroup(g GroupID, offset int) Handle {
	i := gi.ChildIndexInGroup(g, offset)
	if i == NoOffset {
		return Invalid
	}
	return gi.tree.Child(gi.owner, i)
}

// ChildrenInGroup returns a copy of the children of group g.
func (gi *GroupIndex) ChildrenInGroup(g GroupID) []Handle {
	if !gi.validGroup(g) {
		return nil
	}
	all := gi.tree.mustNode(gi.owner).children
	return append([]Handle(nil), all[gi.first[g]:gi.BaseChildIndex(g+1)]...)
}

// FirstChildIndices returns a copy of the per-group base indices.
func (gi *GroupIndex) FirstChildIndices() []int {
	return append([]int(nil), gi.first...)
}

// resolve maps an invalid or out of range group to the last group.
func (gi *GroupIndex) resolve(g GroupID) GroupID {
	if gi.validGroup(g) {
		return g
	}
	return GroupID(len(gi.first) - 1)
}

// InsertIntoGroupBefore inserts child so that it ends up at offset within
// group g; NoOffset appends. An invalid g selects the last group. A child
// that already has a parent is moved. When it moves within this container,
// offsets count the group as it is once the child has left its place.
func (gi *GroupIndex) InsertIntoGroupBefore(g GroupID, offset int, child Handle) error {
	return gi.insert(g, offset, false, child)
}

// InsertIntoGroupAfter inserts child right after the child at offset in
// group g; NoOffset, or an empty group, appends. Offsets of a move within
// this container are measured as in InsertIntoGroupBefore: a child that is
// last in g cannot be inserted after its own offset.
func (gi *GroupIndex) InsertIntoGroupAfter(g GroupID, offset int, child Handle) error {
	return gi.insert(g, offset, true, child)
}

// AppendToGroup inserts child at the end of group g.
func (gi *GroupIndex) AppendToGroup(g GroupID, child Handle) error {
	return gi.insert(g, NoOffset, false, child)
}

func (gi *GroupIndex) insert(g GroupID, offset int, after bool, child Handle) error {
	t := gi.tree
	t.guard()
	c := t.node(child)
	if c == nil {
		return ErrInvalidHandle
	}
	if t.IsAncestor(child, gi.owner) {
		return ErrCycle
	}
	g = gi.resolve(g)
	size := gi.NumberChildrenInGroup(g)
	base := gi.first[g]
	if c.parent == gi.owner {
		// moving within this container: measure the group as it will be
		// once the child has left its current place
		cg, _ := gi.GroupContaining(t.indexOf(gi.owner, child))
		switch {
		case cg == g:
			size--
		case cg < g:
			base--
		}
	}
	pos, ok := insertionOffset(offset, size, after)
	if !ok {
		return ErrOutOfRange
	}
	if c.parent.Valid() && c.parent != gi.owner {
		t.moveOut(child)
	}
	ch := childrenChange(gi.owner, OpChildrenInserted, base+pos, 1)
	t.notify(ch, PhaseAboutTo)
	if c.parent == gi.owner {
		t.detach(child)
	}
	gi.link(g, pos, child)
	t.notify(ch, PhaseCompleted)
	return nil
}

func insertionOffset(offset, size int, after bool) (int, bool) {
	if offset == NoOffset {
		return size, true
	}
	if after {
		if size == 0 && offset == 0 {
			return 0, true
		}
		if offset < 0 || offset >= size {
			return 0, false
		}
		return offset + 1, true
	}
	if offset < 0 || offset > size {
		return 0, false
	}
	return offset, true
}

// link inserts a detached child at offset pos of group g and shifts the
// bases of every later group.
func (gi *GroupIndex) link(g GroupID, pos int, child Handle) {
	gi.tree.insertAt(gi.owner, gi.first[g]+pos, child)
	for k := int(g) + 1; k < len(gi.first); k++ {
		gi.first[k]++
	}
}

// unlinkFrom drops child index i, known to be in group g, without cursor
// repair and shifts later bases down.
func (gi *GroupIndex) unlinkFrom(g GroupID, i int) Handle {
	h := gi.tree.unlink(gi.owner, i)
	gi.shiftDown(g)
	return h
}

func (gi *GroupIndex) shiftDown(g GroupID) {
	for k := int(g) + 1; k < len(gi.first); k++ {
		if gi.first[k] == 0 {
			invariantf("group %d base underflow", k)
		}
		gi.first[k]--
	}
}

// RemoveFromGroup detaches the child at offset of group g and returns it.
// Cursors inside the child are repaired first.
func (gi *GroupIndex) RemoveFromGroup(g GroupID, offset int) (Handle, error) {
	t := gi.tree
	t.guard()
	i := gi.ChildIndexInGroup(g, offset)
	if i == NoOffset {
		return Invalid, ErrOutOfRange
	}
	ch := childrenChange(gi.owner, OpChildrenRemoved, i, 1)
	t.notify(ch, PhaseAboutTo)
	h := gi.removeAt(g, i)
	t.notify(ch, PhaseCompleted)
	return h, nil
}

func (gi *GroupIndex) removeAt(g GroupID, i int) Handle {
	h := gi.tree.removeAt(gi.owner, i)
	gi.shiftDown(g)
	return h
}

// RemoveAllFromGroup detaches every child of group g and returns them in
// order. The group itself remains, empty.
func (gi *GroupIndex) RemoveAllFromGroup(g GroupID) ([]Handle, error) {
	t := gi.tree
	t.guard()
	if !gi.validGroup(g) {
		return nil, ErrOutOfRange
	}
	n := gi.NumberChildrenInGroup(g)
	if n == 0 {
		return nil, nil
	}
	ch := childrenChange(gi.owner, OpChildrenRemoved, gi.first[g], n)
	t.notify(ch, PhaseAboutTo)
	removed := gi.removeAll(g)
	t.notify(ch, PhaseCompleted)
	return removed, nil
}

// removeAll always takes the group's current base: each removal only
// moves indices after it, so the base never drifts.
func (gi *GroupIndex) removeAll(g GroupID) []Handle {
	var removed []Handle
	for gi.NumberChildrenInGroup(g) > 0 {
		removed = append(removed, gi.removeAt(g, gi.first[g]))
	}
	return removed
}

// purge removes and frees every child of group g.
func (gi *GroupIndex) purge(g GroupID) {
	for _, h := range gi.removeAll(g) {
		gi.tree.release(h)
	}
}

// InsertGroupsBefore inserts n empty groups in front of group g, or at
// the end when g is not a valid group.
func (gi *GroupIndex) InsertGroupsBefore(g GroupID, n int) error {
	if !gi.validGroup(g) {
		return gi.insertGroups(GroupID(len(gi.first)), n)
	}
	return gi.insertGroups(g, n)
}

// InsertGroupsAfter inserts n empty groups behind group g, or at the end
// when g is not a valid group.
func (gi *GroupIndex) InsertGroupsAfter(g GroupID, n int) error {
	if !gi.validGroup(g) {
		return gi.insertGroups(GroupID(len(gi.first)), n)
	}
	return gi.insertGroups(g+1, n)
}

func (gi *GroupIndex) insertGroups(at GroupID, n int) error {
	t := gi.tree
	t.guard()
	if gi.gridded {
		return ErrPlacement
	}
	if n < 0 {
		return ErrOutOfRange
	}
	if n == 0 {
		return nil
	}
	ch := groupsChange(gi.owner, OpGroupsInserted, int(at), n)
	t.notify(ch, PhaseAboutTo)
	gi.addGroups(at, n)
	t.notify(ch, PhaseCompleted)
	return nil
}

// addGroups inserts n empty groups so that the first new one gets id at.
func (gi *GroupIndex) addGroups(at GroupID, n int) {
	base := gi.BaseChildIndex(at)
	grown := make([]int, len(gi.first)+n)
	copy(grown, gi.first[:at])
	for k := 0; k < n; k++ {
		grown[int(at)+k] = base
	}
	copy(grown[int(at)+n:], gi.first[at:])
	gi.first = grown
}

// RemoveGroups frees the children of groups start through start+n-1 and
// deletes the groups. At least one group must remain.
func (gi *GroupIndex) RemoveGroups(start GroupID, n int) error {
	t := gi.tree
	t.guard()
	if gi.gridded {
		return ErrPlacement
	}
	if n < 0 || !gi.validGroup(start) || int(start)+n > len(gi.first) {
		return ErrOutOfRange
	}
	if n == len(gi.first) {
		return ErrLastGroup
	}
	if n == 0 {
		return nil
	}
	ch := groupsChange(gi.owner, OpGroupsRemoved, int(start), n)
	t.notify(ch, PhaseAboutTo)
	gi.dropGroups(start, n)
	t.notify(ch, PhaseCompleted)
	return nil
}

func (gi *GroupIndex) dropGroups(start GroupID, n int) {
	for k := 0; k < n; k++ {
		gi.purge(start + GroupID(k))
	}
	gi.first = append(gi.first[:start], gi.first[int(start)+n:]...)
}

// relayout replaces the whole partition in one pass: groups[k] becomes the
// child run of group k. Every handle must already be a child of the owner
// and every child must appear exactly once.
func (gi *GroupIndex) relayout(groups [][]Handle) {
	own := gi.tree.mustNode(gi.owner)
	children := make([]Handle, 0, len(own.children))
	first := make([]int, len(groups))
	for k, run := range groups {
		first[k] = len(children)
		children = append(children, run...)
	}
	if len(children) != len(own.children) {
		invariantf("relayout of %d children into %d", len(own.children), len(children))
	}
	for _, h := range children {
		if gi.tree.mustNode(h).parent != gi.owner {
			invariantf("relayout of foreign element %s", h)
		}
	}
	if len(first) == 0 {
		first = []int{0}
	}
	own.children = children
	gi.first = first
}

// check verifies the partition invariant.
func (gi *GroupIndex) check() error {
	if len(gi.first) == 0 {
		return fmt.Errorf("groupless container")
	}
	if gi.first[0] != 0 {
		return fmt.Errorf("group 0 starts at %d", gi.first[0])
	}
	n := gi.NumberChildren()
	for k := 1; k < len(gi.first); k++ {
		if gi.first[k] < gi.first[k-1] {
			return fmt.Errorf("group %d base %d below group %d base %d", k, gi.first[k], k-1, gi.first[k-1])
		}
	}
	if last := gi.first[len(gi.first)-1]; last > n {
		return fmt.Errorf("last group base %d past %d children", last, n)
	}
	return nil
}
