package ineld

import (
	"fmt"

	"go.uber.org/zap"
)

// Handle addresses an element in a Tree. A handle stays valid until the
// element is deleted; a stale handle never aliases a newer element
// because every slot carries a generation. The zero Handle is invalid.
type Handle struct {
	index uint32
	gen   uint32
}

// Invalid is the zero handle.
var Invalid Handle

// Valid reports whether h was ever issued. It does not check liveness;
// use Tree.Valid for that.
func (h Handle) Valid() bool { return h.gen != 0 }

func (h Handle) String() string {
	if !h.Valid() {
		return "#invalid"
	}
	return fmt.Sprintf("#%d.%d", h.index, h.gen)
}

type node struct {
	gen      uint32
	live     bool
	parent   Handle
	elt      Element
	children []Handle
}

// Tree is an arena of elements. Every element has at most one parent;
// the parent owns its children through an ordered child list.
//
// A Tree is not safe for concurrent use. Callbacks installed through Conf
// run synchronously and must not mutate the tree that calls them.
type Tree struct {
	conf        Conf
	log         *zap.Logger
	nodes       []node
	free        []uint32
	dispatching bool
}

// NewTree returns an empty tree using the collaborators in conf.
func NewTree(conf Conf) *Tree {
	conf = conf.normalized()
	return &Tree{
		conf:  conf,
		log:   conf.Logger,
		nodes: make([]node, 1), // slot 0 is never issued
	}
}

// Conf returns the collaborators of the tree.
func (t *Tree) Conf() Conf { return t.conf }

// New allocates a detached element holding elt. A Grouped or Table
// payload already held by an element cannot be reused; New panics with an
// error wrapping ErrPlacement.
func (t *Tree) New(elt Element) Handle {
	if elt == nil {
		invariantf("nil element payload")
	}
	if b, ok := elt.(binder); ok && b.bound() {
		panic(fmt.Errorf("%s payload already held by an element: %w", elt.Tag(), ErrPlacement))
	}
	t.guard()
	return t.alloc(elt)
}

func (t *Tree) alloc(elt Element) Handle {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.nodes))
		t.nodes = append(t.nodes, node{})
	}
	n := &t.nodes[idx]
	n.gen++
	if n.gen == 0 {
		n.gen = 1
	}
	n.live = true
	n.parent = Invalid
	n.elt = elt
	n.children = nil
	h := Handle{index: idx, gen: n.gen}
	if b, ok := elt.(binder); ok {
		b.bind(t, h)
	}
	return h
}

// Valid reports whether h refers to a live element of t.
func (t *Tree) Valid(h Handle) bool {
	return t.node(h) != nil
}

func (t *Tree) node(h Handle) *node {
	if !h.Valid() || int(h.index) >= len(t.nodes) {
		return nil
	}
	n := &t.nodes[h.index]
	if !n.live || n.gen != h.gen {
		return nil
	}
	return n
}

func (t *Tree) mustNode(h Handle) *node {
	n := t.node(h)
	if n == nil {
		invariantf("dangling handle %s", h)
	}
	return n
}

// Element returns the payload of h, or nil for a dead handle.
func (t *Tree) Element(h Handle) Element {
	if n := t.node(h); n != nil {
		return n.elt
	}
	return nil
}

// Parent returns the parent of h, or Invalid for roots and detached elements.
func (t *Tree) Parent(h Handle) Handle {
	if n := t.node(h); n != nil {
		return n.parent
	}
	return Invalid
}

// IsAncestor reports whether a is h or one of its ancestors.
func (t *Tree) IsAncestor(a, h Handle) bool {
	for n := t.node(h); n != nil; n = t.node(h) {
		if h == a {
			return true
		}
		h = n.parent
	}
	return false
}

// Extent returns the length of an element's content: runes for Text,
// children for containers. Cursors use it as the "end" offset.
func (t *Tree) Extent(h Handle) int {
	n := t.node(h)
	if n == nil {
		return 0
	}
	if txt, ok := n.elt.(*Text); ok {
		return len([]rune(txt.Text))
	}
	return len(n.children)
}

// Len returns the number of live elements.
func (t *Tree) Len() int {
	return len(t.nodes) - 1 - len(t.free)
}

// Delete removes h from its parent (repairing cursors) and frees the
// whole subtree. Handles into the subtree become invalid.
func (t *Tree) Delete(h Handle) error {
	t.guard()
	n := t.node(h)
	if n == nil {
		return ErrInvalidHandle
	}
	if n.parent.Valid() {
		p := n.parent
		i := t.indexOf(p, h)
		if _, err := t.RemoveChild(p, i); err != nil {
			return err
		}
	} else {
		t.aboutToRemove(h)
	}
	t.release(h)
	return nil
}

// release frees a detached subtree.
func (t *Tree) release(h Handle) {
	var all []Handle
	Walk(t, h, func(d Handle) WalkResult {
		all = append(all, d)
		return WalkContinue
	})
	for _, d := range all {
		n := &t.nodes[d.index]
		n.live = false
		n.elt = nil
		n.children = nil
		n.parent = Invalid
		t.free = append(t.free, d.index)
	}
}

// Clone deep copies the subtree at h. The copy is detached.
func (t *Tree) Clone(h Handle) (Handle, error) {
	t.guard()
	if t.node(h) == nil {
		return Invalid, ErrInvalidHandle
	}
	return t.restore(t.snapshot(h)), nil
}

func (t *Tree) guard() {
	if t.dispatching {
		panic(ErrReentrant)
	}
}

func (t *Tree) notify(c Change, p Phase) {
	c.Phase = p
	t.dispatching = true
	defer func() { t.dispatching = false }()
	t.conf.Notifier.Notify(c)
}

func (t *Tree) aboutToRemove(root Handle) {
	t.dispatching = true
	defer func() { t.dispatching = false }()
	t.conf.Repair.AboutToRemove(t, root)
}
