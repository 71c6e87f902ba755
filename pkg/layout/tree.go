package layout

import (
	"reflow/pkg/geom"
	"reflow/pkg/scroll"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// NodeIdx indexes into the arena that backs a Tree. Indices are stable for
// the lifetime of one tree generation; reconciliation builds a fresh tree
// and carries results across by DOM node identity, never by index.
type NodeIdx int32

const NilIdx NodeIdx = -1

// AnonKind marks boxes the tree inserts that have no DOM counterpart.
type AnonKind uint8

const (
	AnonNone AnonKind = iota
	AnonBlock
	AnonTable
	AnonTableRow
	AnonTableCell
	AnonInline
)

// DirtyFlags record what reconciliation decided must be redone for a node.
type DirtyFlags uint8

const (
	DirtyIntrinsic DirtyFlags = 1 << iota // cached min/max/preferred sizes stale
	DirtyLayout                           // node is a re-layout root
	DirtyPosition                         // paint-only change, geometry reusable
)

type measureKey struct {
	w, h float64
}

// IntrinsicSizes caches the content-driven sizes of a box. BlockSize is the
// content block-axis size under max-content inline constraints.
type IntrinsicSizes struct {
	MinContent float64
	MaxContent float64
	Preferred  float64
	BlockSize  float64
	Valid      bool
}

// BoxOffsets holds the resolved (pixel) edge widths of one box.
type BoxOffsets struct {
	Margin  geom.Edges
	Border  geom.Edges
	Padding geom.Edges
}

// PaddingAndBorder sums the non-margin edges on both sides of each axis.
func (b BoxOffsets) PaddingAndBorder() (inline, block float64) {
	return b.Padding.Horizontal() + b.Border.Horizontal(),
		b.Padding.Vertical() + b.Border.Vertical()
}

// LayoutNode is one box in the arena. Pos is the border-box origin in canvas
// coordinates; Content is the content-box size. Anonymous boxes carry a nil
// Data and DomNode == styled.NilNode.
type LayoutNode struct {
	DomNode styled.NodeID
	Anon    AnonKind
	Data    *styled.NodeData
	Style   *styled.ComputedStyle

	// Content hashes carried over from the styled DOM for reconciliation.
	Hash       uint64
	LayoutHash uint64

	Box       BoxOffsets
	Intrinsic IntrinsicSizes
	Content   geom.Size
	Pos       geom.Point
	RelOffset geom.Point

	Dirty     DirtyFlags
	PageIndex int
	ScrollID  scroll.ID

	Shaped     *text.ShapedRun
	Words      *text.Words
	Lines      []LineBox
	ListMarker string
	Baseline   float64 // distance from border-box top to first baseline; 0 if none

	Parent      NodeIdx
	FirstChild  NodeIdx
	LastChild   NodeIdx
	NextSibling NodeIdx
	PrevSibling NodeIdx

	lastAvail geom.Size
	measure   map[measureKey]geom.Size
}

// BorderSize returns the border-box size.
func (n *LayoutNode) BorderSize() geom.Size {
	pi, pb := n.Box.PaddingAndBorder()
	return geom.Size{Width: n.Content.Width + pi, Height: n.Content.Height + pb}
}

// BorderBox returns the border-box rectangle in canvas coordinates.
func (n *LayoutNode) BorderBox() geom.Rect {
	return geom.RectFrom(n.Pos, n.BorderSize())
}

// PaddingBox returns the padding-box rectangle in canvas coordinates.
func (n *LayoutNode) PaddingBox() geom.Rect {
	r := n.BorderBox()
	return r.Inset(n.Box.Border)
}

// ContentOrigin is where child layout begins.
func (n *LayoutNode) ContentOrigin() geom.Point {
	return geom.Point{
		X: n.Pos.X + n.Box.Border.Left + n.Box.Padding.Left,
		Y: n.Pos.Y + n.Box.Border.Top + n.Box.Padding.Top,
	}
}

// MarginBox returns the border box expanded by the used margins.
func (n *LayoutNode) MarginBox() geom.Rect {
	return n.BorderBox().Outset(n.Box.Margin)
}

// IsAnonymous reports whether the box was synthesized during tree building.
func (n *LayoutNode) IsAnonymous() bool { return n.Anon != AnonNone }

// Tree is the flat arena of layout nodes for one DOM.
type Tree struct {
	DomID styled.DomID
	Nodes []LayoutNode
	Root  NodeIdx

	// byDom maps DOM node ids to their principal box for reconciliation.
	byDom map[styled.NodeID]NodeIdx
}

func NewTree(domID styled.DomID) *Tree {
	return &Tree{
		DomID: domID,
		Root:  NilIdx,
		byDom: make(map[styled.NodeID]NodeIdx),
	}
}

func (t *Tree) Node(i NodeIdx) *LayoutNode { return &t.Nodes[i] }

func (t *Tree) Len() int { return len(t.Nodes) }

// ByDom returns the principal box for a DOM node, or NilIdx.
func (t *Tree) ByDom(id styled.NodeID) NodeIdx {
	if i, ok := t.byDom[id]; ok {
		return i
	}
	return NilIdx
}

// NewNode appends a fresh detached node and returns its index.
func (t *Tree) NewNode() NodeIdx {
	t.Nodes = append(t.Nodes, LayoutNode{
		DomNode:     styled.NilNode,
		Parent:      NilIdx,
		FirstChild:  NilIdx,
		LastChild:   NilIdx,
		NextSibling: NilIdx,
		PrevSibling: NilIdx,
	})
	return NodeIdx(len(t.Nodes) - 1)
}

// AppendChild links child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeIdx) {
	c := t.Node(child)
	c.Parent = parent
	p := t.Node(parent)
	if p.LastChild == NilIdx {
		p.FirstChild = child
		p.LastChild = child
		return
	}
	last := p.LastChild
	t.Node(last).NextSibling = child
	c.PrevSibling = last
	p.LastChild = child
}

// Children collects the child indices of a node.
func (t *Tree) Children(i NodeIdx) []NodeIdx {
	var out []NodeIdx
	for c := t.Node(i).FirstChild; c != NilIdx; c = t.Node(c).NextSibling {
		out = append(out, c)
	}
	return out
}

// WalkPre visits i and its descendants in document order. Returning false
// from fn skips the node's subtree.
func (t *Tree) WalkPre(i NodeIdx, fn func(NodeIdx) bool) {
	if i == NilIdx {
		return
	}
	if !fn(i) {
		return
	}
	for c := t.Node(i).FirstChild; c != NilIdx; c = t.Node(c).NextSibling {
		t.WalkPre(c, fn)
	}
}

// WalkPost visits the subtree of i children-first.
func (t *Tree) WalkPost(i NodeIdx, fn func(NodeIdx)) {
	if i == NilIdx {
		return
	}
	for c := t.Node(i).FirstChild; c != NilIdx; c = t.Node(c).NextSibling {
		t.WalkPost(c, fn)
	}
	fn(i)
}

// TranslateSubtree shifts the resolved positions of i and every descendant.
func (t *Tree) TranslateSubtree(i NodeIdx, dx, dy float64) {
	t.WalkPre(i, func(n NodeIdx) bool {
		node := t.Node(n)
		node.Pos.X += dx
		node.Pos.Y += dy
		return true
	})
}

// SubtreeMarginHeight returns the margin-box height of a node as placed.
func (t *Tree) SubtreeMarginHeight(i NodeIdx) float64 {
	n := t.Node(i)
	return n.BorderSize().Height + n.Box.Margin.Vertical()
}
