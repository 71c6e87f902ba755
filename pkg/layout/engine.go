package layout

import (
	"time"

	"reflow/pkg/geom"
	"reflow/pkg/images"
	"reflow/pkg/report"
	"reflow/pkg/scroll"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// DefaultBudget bounds one layout pass. When exceeded the engine finishes
// the box it is on, reports LayoutBudgetExceeded and returns the partial
// result with Truncated set.
const DefaultBudget = 250 * time.Millisecond

// Options configure one layout pass.
type Options struct {
	Viewport geom.Size

	// PageSize enables paged layout when non-zero. Content flows on an
	// infinite canvas; page indices are assigned afterwards.
	PageSize   geom.Size
	PageMargin geom.Edges

	// PageHeader and PageFooter reserve running-element bands inside the
	// page box, shrinking the per-page content height.
	PageHeader float64
	PageFooter float64

	// States supplies the active pseudo-state per DOM node (hover etc.).
	States map[styled.NodeID]styled.State

	// Scroll supplies current scroll offsets so they survive relayout.
	Scroll *scroll.State

	Budget time.Duration
}

func (o Options) budget() time.Duration {
	if o.Budget <= 0 {
		return DefaultBudget
	}
	return o.Budget
}

// Paged reports whether fragmentation is on.
func (o Options) Paged() bool {
	return o.PageSize.Width > 0 && o.PageSize.Height > 0
}

// ContentSize is the flow width/height available to the root: the viewport,
// or the page box minus margins when paged.
func (o Options) ContentSize() geom.Size {
	if o.Paged() {
		return geom.Size{
			Width:  o.PageSize.Width - o.PageMargin.Horizontal(),
			Height: o.PageSize.Height - o.PageMargin.Vertical() - o.PageHeader - o.PageFooter,
		}
	}
	return o.Viewport
}

// Result is the outcome of one layout pass.
type Result struct {
	Tree             *Tree
	Dirty            DirtySets
	ScrollContainers []scroll.Container
	Running          []RunningBox
	PageCount        int
	Reused           bool // previous geometry reused wholesale
	Truncated        bool // budget ran out
}

// Engine runs layout passes. It is stateless between passes except for the
// shared font and image caches; per-DOM state lives in a Cache.
type Engine struct {
	Text    *text.Manager
	Images  *images.Cache
	Reports *report.Channel
}

func NewEngine(tm *text.Manager, img *images.Cache, reports *report.Channel) *Engine {
	return &Engine{Text: tm, Images: img, Reports: reports}
}

// pass carries the mutable state of one layout pass.
type pass struct {
	eng      *Engine
	tree     *Tree
	opts     Options
	frag     *FragmentationContext
	bfc      *bfcState
	deadline time.Time
	overrun  bool

	// forcedWidth pins the content width of boxes whose size is decided
	// outside normal width resolution (inset-stretched abspos, flex and
	// grid items, table cells).
	forcedWidth map[NodeIdx]float64

	// Out-of-flow boxes deferred until normal flow finishes. cb is the
	// containing-block node (NilIdx means the initial containing block).
	pendingOOF []pendingAbs
}

type pendingAbs struct {
	idx    NodeIdx
	cb     NodeIdx
	static geom.Point // hypothetical static position, canvas coords
}

// budgetExceeded latches once the pass deadline has gone by.
func (p *pass) budgetExceeded() bool {
	if !p.overrun && time.Now().After(p.deadline) {
		p.overrun = true
	}
	return p.overrun
}

// Layout runs one incremental pass over the DOM. The cache carries results
// between passes; pass a fresh cache for a first layout.
func (e *Engine) Layout(dom *styled.Dom, cache *Cache, opts Options) (*Result, error) {
	if err := dom.Validate(); err != nil {
		if e.Reports != nil {
			if re, ok := err.(*report.Error); ok {
				e.Reports.Report(report.TopicLayout, re)
			}
		}
		return nil, err
	}

	tree, running := buildTree(dom, opts.States, e.Text)
	if tree.Root == NilIdx {
		return nil, report.Errorf(report.InvalidStyledDom, "styled dom %d has no root box", dom.ID())
	}

	dirty := cache.reconcile(tree, opts)
	res := &Result{Tree: tree, Dirty: dirty, Running: running}

	if dirty.Clean() && cache.tree != nil {
		// Nothing moved and nothing repainted differently: reuse the
		// previous tree wholesale.
		res.Tree = cache.tree
		res.Running = cache.running
		res.ScrollContainers = cache.scrollContainers
		res.PageCount = cache.pageCount
		res.Reused = true
		return res, nil
	}

	if dirty.PositionOnlyPass() && cache.tree != nil {
		// Paint-only dirt: keep all geometry, swap in the new styles so
		// display building sees fresh colors and transforms.
		cache.adoptStyles(tree)
		res.Tree = cache.tree
		res.Running = cache.running
		res.ScrollContainers = cache.scrollContainers
		res.PageCount = cache.pageCount
		return res, nil
	}

	p := &pass{
		eng:      e,
		tree:     tree,
		opts:     opts,
		deadline: time.Now().Add(opts.budget()),
	}
	if opts.Paged() {
		p.frag = NewFragmentationContext(opts.PageSize, opts.PageMargin).
			WithHeaderFooter(opts.PageHeader, opts.PageFooter)
	}

	p.solveRoot()
	p.solveOutOfFlow()
	p.applyRelativeOffsets()

	if p.frag != nil {
		res.PageCount = p.frag.AssignPages(tree)
		p.frag.PlaceRunning(tree, running, p)
	} else {
		res.PageCount = 1
	}

	res.ScrollContainers = discoverScrollContainers(tree)
	if opts.Scroll != nil {
		live := make(map[scroll.ID]bool, len(res.ScrollContainers))
		for _, c := range res.ScrollContainers {
			live[c.ID] = true
		}
		opts.Scroll.Retain(live)
	}

	if p.overrun {
		res.Truncated = true
		if e.Reports != nil {
			e.Reports.Report(report.TopicLayout,
				report.Errorf(report.LayoutBudgetExceeded, "layout pass exceeded %v", opts.budget()))
		}
	}

	cache.store(tree, running, res.ScrollContainers, res.PageCount, opts)
	return res, nil
}

// solveRoot lays out the root box into the viewport or page content box.
func (p *pass) solveRoot() {
	avail := p.opts.ContentSize()
	root := p.tree.Node(p.tree.Root)
	cs := NewConstraintSpace(avail)

	root.Box = resolveBox(root.Style, avail.Width)
	origin := geom.Point{}
	if p.frag != nil {
		origin = geom.Point{X: p.opts.PageMargin.Left, Y: p.opts.PageMargin.Top}
	}
	root.Pos = geom.Point{
		X: origin.X + root.Box.Margin.Left,
		Y: origin.Y + root.Box.Margin.Top,
	}
	p.layoutBox(p.tree.Root, cs, true)
}

// solveOutOfFlow resolves absolutely and fixed positioned boxes after the
// flow they escape from has settled.
func (p *pass) solveOutOfFlow() {
	// Containing blocks may themselves contain OOF descendants appended
	// while solving earlier entries, so iterate by index.
	for i := 0; i < len(p.pendingOOF); i++ {
		p.layoutAbsolute(p.pendingOOF[i])
	}
}

// applyRelativeOffsets shifts relatively positioned subtrees after the
// normal flow is final, leaving sibling geometry untouched.
func (p *pass) applyRelativeOffsets() {
	for i := range p.tree.Nodes {
		n := &p.tree.Nodes[i]
		if n.Style == nil || n.Style.Position != styled.PositionRelative {
			continue
		}
		cbWidth := p.containingWidth(NodeIdx(i))
		em := n.Style.FontSize
		dx, dy := 0.0, 0.0
		if !n.Style.Insets.Left.IsAuto() {
			dx = n.Style.Insets.Left.Resolve(cbWidth, em)
		} else if !n.Style.Insets.Right.IsAuto() {
			dx = -n.Style.Insets.Right.Resolve(cbWidth, em)
		}
		if !n.Style.Insets.Top.IsAuto() {
			dy = n.Style.Insets.Top.Resolve(cbWidth, em)
		} else if !n.Style.Insets.Bottom.IsAuto() {
			dy = -n.Style.Insets.Bottom.Resolve(cbWidth, em)
		}
		if dx != 0 || dy != 0 {
			n.RelOffset = geom.Point{X: dx, Y: dy}
			p.tree.TranslateSubtree(NodeIdx(i), dx, dy)
		}
	}
}

func (p *pass) containingWidth(i NodeIdx) float64 {
	parent := p.tree.Node(i).Parent
	if parent == NilIdx {
		return p.opts.ContentSize().Width
	}
	return p.tree.Node(parent).Content.Width
}

// layoutBox dispatches on the node's inner display type. The caller has
// already set n.Pos and n.Box; layoutBox fills n.Content and lays out the
// subtree. isBFCRoot forces a fresh exclusion space.
func (p *pass) layoutBox(i NodeIdx, cs ConstraintSpace, isBFCRoot bool) {
	n := p.tree.Node(i)
	n.lastAvail = cs.Available

	switch {
	case n.Data != nil && n.Data.Type == styled.TextNode:
		p.layoutText(i, cs)
	case n.Data != nil && n.Data.Type == styled.ImageNode:
		p.layoutReplaced(i, cs)
	case n.Data != nil && (n.Data.Type == styled.IFrameNode || n.Data.Type == styled.GLNode):
		p.layoutEmbedded(i, cs)
	default:
		switch n.Style.Display {
		case styled.DisplayFlex:
			p.layoutFlex(i, cs)
		case styled.DisplayGrid:
			p.layoutGrid(i, cs)
		case styled.DisplayTable:
			p.layoutTable(i, cs)
		default:
			p.layoutBlockContainer(i, cs, isBFCRoot)
		}
	}
}

// establishesBFC reports whether a box starts a new block formatting
// context (CSS 2.2 §9.4.1).
func establishesBFC(st *styled.ComputedStyle) bool {
	if st.Float != styled.FloatNone || st.Position.IsOutOfFlow() {
		return true
	}
	if st.OverflowX != styled.OverflowVisible || st.OverflowY != styled.OverflowVisible {
		return true
	}
	switch st.Display {
	case styled.DisplayInlineBlock, styled.DisplayFlex, styled.DisplayGrid,
		styled.DisplayTable, styled.DisplayTableCell, styled.DisplayTableCaption:
		return true
	}
	return false
}

// discoverScrollContainers finds every box whose overflow computed to
// scroll or auto and whose content union exceeds its padding box. The
// union spans children margin boxes so negative-margin content still
// scrolls into view.
func discoverScrollContainers(t *Tree) []scroll.Container {
	var out []scroll.Container
	seen := make(map[scroll.ID]bool)
	t.WalkPre(t.Root, func(i NodeIdx) bool {
		n := t.Node(i)
		if n.Style == nil || n.Data == nil {
			return true
		}
		sx := n.Style.OverflowX.ScrollCandidate()
		sy := n.Style.OverflowY.ScrollCandidate()
		if !sx && !sy {
			return true
		}
		union := geom.Rect{}
		first := true
		for c := n.FirstChild; c != NilIdx; c = t.Node(c).NextSibling {
			mb := t.Node(c).MarginBox()
			if first {
				union = mb
				first = false
			} else {
				union = union.Union(mb)
			}
		}
		if first {
			return true
		}
		pad := n.PaddingBox()
		// overflow:scroll always scrolls; auto only when content spills.
		needX := sx && (n.Style.OverflowX == styled.OverflowScroll ||
			union.Width > pad.Width || union.X < pad.X)
		needY := sy && (n.Style.OverflowY == styled.OverflowScroll ||
			union.Height > pad.Height || union.Y < pad.Y)
		if !needX && !needY {
			return true
		}

		id := scroll.DeriveID(t.DomID, n.Data)
		if seen[id] {
			id = scroll.DeriveIDDisambiguated(t.DomID, n.Data, n.DomNode)
		}
		seen[id] = true
		n.ScrollID = id
		out = append(out, scroll.Container{
			ID:         id,
			ParentRect: pad,
			ChildRect:  union,
			OverflowX:  needX,
			OverflowY:  needY,
		})
		return true
	})
	return out
}
