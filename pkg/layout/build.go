package layout

import (
	"reflow/pkg/geom"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// RunningBox is a position:running() subtree lifted out of normal flow,
// waiting to be placed into page margin areas during pagination.
type RunningBox struct {
	Name string
	Idx  NodeIdx
}

// builder turns a styled DOM into a layout tree, inserting the anonymous
// boxes CSS requires so that every container ends up with either all
// block-level or all inline-level children, and every table grid is
// complete (CSS 2.2 §17.2.1).
type builder struct {
	dom      *styled.Dom
	tree     *Tree
	states   map[styled.NodeID]styled.State
	text     *text.Manager
	counters *counterSet
	running  []RunningBox
}

func buildTree(dom *styled.Dom, states map[styled.NodeID]styled.State, tm *text.Manager) (*Tree, []RunningBox) {
	b := &builder{
		dom:      dom,
		tree:     NewTree(dom.ID()),
		states:   states,
		text:     tm,
		counters: newCounterSet(),
	}
	root := b.buildNode(dom.Root(), nil)
	if root != NilIdx {
		b.tree.Root = root
	}
	return b.tree, b.running
}

func (b *builder) stateFor(n styled.NodeID) styled.State {
	if b.states == nil {
		return styled.StateNormal
	}
	return b.states[n]
}

// buildNode creates the principal box for a DOM node and recurses into its
// children, returning NilIdx for display:none subtrees.
func (b *builder) buildNode(n styled.NodeID, parentStyle *styled.ComputedStyle) NodeIdx {
	data := b.dom.Data(n)
	st := b.dom.Style(n, b.stateFor(n))
	if st == nil {
		// Undeclared text inherits typography from its parent and is
		// always inline-level.
		st = styled.Inherit(parentStyle)
	}
	if st.Display == styled.DisplayNone {
		return NilIdx
	}

	b.counters.apply(st)

	idx := b.tree.NewNode()
	node := b.tree.Node(idx)
	node.DomNode = n
	node.Data = data
	node.Style = st
	node.Hash = b.dom.Hash(n)
	node.LayoutHash = data.Hash()*31 ^ st.LayoutHash()
	b.tree.byDom[n] = idx

	if data.Type == styled.TextNode {
		node.Words = text.NewWords(data.Text)
		return idx
	}
	if st.Display == styled.DisplayListItem {
		node.ListMarker = b.counters.marker(st)
	}

	if st.Position == styled.PositionRunning {
		// Lifted out of flow; pagination re-inserts it per page.
		b.buildChildren(idx, st)
		b.fixupChildren(idx)
		b.running = append(b.running, RunningBox{Name: st.RunningName, Idx: idx})
		return NilIdx
	}

	b.counters.push()
	b.buildChildren(idx, st)
	b.counters.pop()
	b.fixupChildren(idx)
	return idx
}

func (b *builder) buildChildren(parent NodeIdx, parentStyle *styled.ComputedStyle) {
	for _, c := range b.dom.Children(b.tree.Node(parent).DomNode) {
		ci := b.buildNode(c, parentStyle)
		if ci != NilIdx {
			b.tree.AppendChild(parent, ci)
		}
	}
}

// fixupChildren runs the anonymous-box passes over a freshly built child
// list. Order matters: table structure first, then block wrapping, so the
// block pass sees the anonymous tables as block-level children.
func (b *builder) fixupChildren(parent NodeIdx) {
	b.fixupTable(parent)
	b.wrapInlineRuns(parent)
	b.dropSeparatorWhitespace(parent)
}

func (b *builder) isInlineLevel(i NodeIdx) bool {
	n := b.tree.Node(i)
	if n.Data != nil && n.Data.Type == styled.TextNode {
		return true
	}
	if n.Style.Position.IsOutOfFlow() || n.Style.Float != styled.FloatNone {
		// Out-of-flow boxes never force a block formatting context on
		// their siblings; treat them as transparent for wrapping.
		return true
	}
	return n.Style.Display.IsInlineLevel()
}

func (b *builder) isWhitespaceText(i NodeIdx) bool {
	n := b.tree.Node(i)
	return n.Words != nil && n.Words.IsWhitespaceOnly()
}

// wrapInlineRuns enforces CSS 2.2 §9.2.1.1: when a block container has both
// block-level and inline-level children, each run of inline-level children
// is wrapped in an anonymous block box.
func (b *builder) wrapInlineRuns(parent NodeIdx) {
	p := b.tree.Node(parent)
	switch p.Style.Display {
	case styled.DisplayFlex, styled.DisplayGrid, styled.DisplayTable,
		styled.DisplayTableRow, styled.DisplayTableRowGroup,
		styled.DisplayTableHeaderGroup, styled.DisplayTableFooterGroup:
		return
	}

	hasBlock, hasInline := false, false
	for c := p.FirstChild; c != NilIdx; c = b.tree.Node(c).NextSibling {
		if b.isInlineLevel(c) {
			if !b.isWhitespaceText(c) {
				hasInline = true
			}
		} else {
			hasBlock = true
		}
	}
	if !hasBlock || !hasInline {
		return
	}

	children := b.tree.Children(parent)
	b.resetChildren(parent)
	var run []NodeIdx
	flush := func() {
		if len(run) == 0 {
			return
		}
		meaningful := false
		for _, c := range run {
			if !b.isWhitespaceText(c) {
				meaningful = true
			}
		}
		if !meaningful {
			run = run[:0]
			return
		}
		wrap := b.newAnon(AnonBlock, p.Style)
		b.tree.AppendChild(parent, wrap)
		for _, c := range run {
			b.relink(wrap, c)
		}
		run = run[:0]
	}
	for _, c := range children {
		if b.isInlineLevel(c) {
			run = append(run, c)
			continue
		}
		flush()
		b.relink(parent, c)
	}
	flush()
}

// fixupTable completes table structure: loose cells get an anonymous row,
// loose rows outside a table get an anonymous table, and non-table content
// directly inside tables or rows gets wrapped down to cell level.
func (b *builder) fixupTable(parent NodeIdx) {
	p := b.tree.Node(parent)
	switch p.Style.Display {
	case styled.DisplayTable:
		b.wrapRuns(parent, func(i NodeIdx) bool {
			d := b.tree.Node(i).Style.Display
			return d != styled.DisplayTableRow && !d.IsRowGroup() &&
				d != styled.DisplayTableCaption && d != styled.DisplayTableColumn &&
				d != styled.DisplayTableColumnGroup
		}, AnonTableRow)
	case styled.DisplayTableRow, styled.DisplayTableRowGroup,
		styled.DisplayTableHeaderGroup, styled.DisplayTableFooterGroup:
		if p.Style.Display != styled.DisplayTableRow {
			b.wrapRuns(parent, func(i NodeIdx) bool {
				return b.tree.Node(i).Style.Display != styled.DisplayTableRow
			}, AnonTableRow)
		}
		for c := p.FirstChild; c != NilIdx; c = b.tree.Node(c).NextSibling {
			if b.tree.Node(c).Style.Display == styled.DisplayTableRow {
				b.wrapRuns(c, func(i NodeIdx) bool {
					return b.tree.Node(i).Style.Display != styled.DisplayTableCell
				}, AnonTableCell)
			}
		}
		if p.Style.Display == styled.DisplayTableRow {
			b.wrapRuns(parent, func(i NodeIdx) bool {
				return b.tree.Node(i).Style.Display != styled.DisplayTableCell
			}, AnonTableCell)
		}
	default:
		// Rows or cells without a table ancestor get an anonymous table.
		b.wrapRuns(parent, func(i NodeIdx) bool {
			d := b.tree.Node(i).Style.Display
			return d.IsTableInternal()
		}, AnonTable)
	}
}

// wrapRuns wraps each maximal run of children matching pred in a fresh
// anonymous box of the given kind. Whitespace-only text between runs is
// left alone.
func (b *builder) wrapRuns(parent NodeIdx, pred func(NodeIdx) bool, kind AnonKind) {
	needs := false
	for c := b.tree.Node(parent).FirstChild; c != NilIdx; c = b.tree.Node(c).NextSibling {
		if pred(c) && !b.isWhitespaceText(c) {
			needs = true
		}
	}
	if !needs {
		return
	}
	children := b.tree.Children(parent)
	b.resetChildren(parent)
	var run []NodeIdx
	pStyle := b.tree.Node(parent).Style
	flush := func() {
		if len(run) == 0 {
			return
		}
		wrap := b.newAnon(kind, pStyle)
		b.tree.AppendChild(parent, wrap)
		for _, c := range run {
			b.relink(wrap, c)
		}
		run = run[:0]
	}
	for _, c := range children {
		if pred(c) && !b.isWhitespaceText(c) {
			run = append(run, c)
			continue
		}
		flush()
		b.relink(parent, c)
	}
	flush()
}

// dropSeparatorWhitespace removes whitespace-only text children of
// containers whose in-flow children are all block-level. Such text would
// otherwise generate empty line boxes between the blocks.
func (b *builder) dropSeparatorWhitespace(parent NodeIdx) {
	p := b.tree.Node(parent)
	for c := p.FirstChild; c != NilIdx; c = b.tree.Node(c).NextSibling {
		if b.isInlineLevel(c) && !b.isWhitespaceText(c) {
			return
		}
	}
	children := b.tree.Children(parent)
	b.resetChildren(parent)
	for _, c := range children {
		if b.isWhitespaceText(c) {
			b.tree.Node(c).Parent = NilIdx
			continue
		}
		b.relink(parent, c)
	}
}

func (b *builder) newAnon(kind AnonKind, inheritFrom *styled.ComputedStyle) NodeIdx {
	idx := b.tree.NewNode()
	n := b.tree.Node(idx)
	n.Anon = kind
	st := styled.Inherit(inheritFrom)
	switch kind {
	case AnonBlock:
		st.Display = styled.DisplayBlock
	case AnonTable:
		st.Display = styled.DisplayTable
	case AnonTableRow:
		st.Display = styled.DisplayTableRow
	case AnonTableCell:
		st.Display = styled.DisplayTableCell
	case AnonInline:
		st.Display = styled.DisplayInline
	}
	n.Style = st
	return idx
}

// relink detaches a node from any previous parent links and appends it.
func (b *builder) relink(parent, child NodeIdx) {
	c := b.tree.Node(child)
	c.Parent = NilIdx
	c.NextSibling = NilIdx
	c.PrevSibling = NilIdx
	b.tree.AppendChild(parent, child)
}

// resetChildren clears a node's child links so they can be re-appended.
func (b *builder) resetChildren(parent NodeIdx) {
	p := b.tree.Node(parent)
	p.FirstChild = NilIdx
	p.LastChild = NilIdx
}

// resolveBox fills in the pixel edge widths of a node against its
// containing block inline size. Percentages on every margin and padding
// edge resolve against the inline size (CSS 2.2 §8.3, §8.4).
func resolveBox(st *styled.ComputedStyle, cbWidth float64) BoxOffsets {
	em := st.FontSize
	res := func(ev geom.EdgeValues) geom.Edges {
		return geom.Edges{
			Top:    ev.Top.Resolve(cbWidth, em),
			Right:  ev.Right.Resolve(cbWidth, em),
			Bottom: ev.Bottom.Resolve(cbWidth, em),
			Left:   ev.Left.Resolve(cbWidth, em),
		}
	}
	border := res(st.BorderWidth)
	for side := 0; side < 4; side++ {
		if st.BorderStyle[side] == styled.BorderStyleNone {
			switch side {
			case 0:
				border.Top = 0
			case 1:
				border.Right = 0
			case 2:
				border.Bottom = 0
			case 3:
				border.Left = 0
			}
		}
	}
	return BoxOffsets{
		Margin:  res(st.Margin),
		Border:  border,
		Padding: res(st.Padding),
	}
}
