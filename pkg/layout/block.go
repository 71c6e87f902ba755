package layout

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// marginAccum collapses a set of adjoining vertical margins: the result is
// the largest positive plus the most negative member (CSS 2.2 §8.3.1).
type marginAccum struct {
	pos float64
	neg float64
	any bool
}

func (m *marginAccum) Add(v float64) {
	m.any = true
	if v >= 0 {
		m.pos = math.Max(m.pos, v)
	} else {
		m.neg = math.Min(m.neg, v)
	}
}

func (m *marginAccum) Merge(o marginAccum) {
	if !o.any {
		return
	}
	m.any = true
	m.pos = math.Max(m.pos, o.pos)
	m.neg = math.Min(m.neg, o.neg)
}

func (m marginAccum) Value() float64 { return m.pos + m.neg }

// blockResult reports how a block's margins interact with its parent.
type blockResult struct {
	escTop          marginAccum // child margins escaping through the top edge
	escBottom       marginAccum // and through the bottom edge
	collapseThrough bool        // box is empty, top and bottom adjoin
}

// bfcState is the mutable float bookkeeping of one block formatting
// context. Exclusion rects are kept in the root's content-box coordinates;
// origin converts to canvas space.
type bfcState struct {
	es     *ExclusionSpace
	width  float64
	origin geom.Point
}

// layoutBlockContainer lays out a block-level box and its children. The
// caller has set n.Pos and n.Box; width and height resolution, child
// placement and margin collapsing happen here.
func (p *pass) layoutBlockContainer(i NodeIdx, cs ConstraintSpace, forceBFC bool) blockResult {
	n := p.tree.Node(i)
	st := n.Style

	n.Content.Width = p.resolveBlockWidth(i, cs)
	n.Lines = nil
	n.Shaped = nil

	newBFC := forceBFC || establishesBFC(st)
	prevBFC := p.bfc
	if newBFC {
		p.bfc = &bfcState{
			es:     NewExclusionSpace(),
			width:  n.Content.Width,
			origin: n.ContentOrigin(),
		}
	}

	var res blockResult
	var contentHeight float64
	switch {
	case n.FirstChild == NilIdx:
		contentHeight = 0
		// No content: top and bottom margins adjoin unless the
		// height/padding check below says otherwise.
		res.collapseThrough = true
	case p.hasInlineContent(i):
		contentHeight = p.layoutInlineContent(i, cs)
	default:
		contentHeight, res = p.layoutBlockChildren(i, cs)
	}

	if newBFC {
		// A BFC root grows to contain its floats (CSS 2.2 §10.6.7).
		contentHeight = math.Max(contentHeight, p.bfc.es.Bottom())
		p.bfc = prevBFC
		res.escTop = marginAccum{}
		res.escBottom = marginAccum{}
		res.collapseThrough = false
	}

	n = p.tree.Node(i)
	n.Content.Height = p.resolveBlockHeight(i, cs, contentHeight)

	if n.Content.Height != 0 || n.Box.Padding.Vertical() != 0 || n.Box.Border.Vertical() != 0 ||
		len(n.Lines) > 0 {
		res.collapseThrough = false
	}
	return res
}

// resolveBlockWidth computes the used content width (CSS 2.2 §10.3.3).
func (p *pass) resolveBlockWidth(i NodeIdx, cs ConstraintSpace) float64 {
	n := p.tree.Node(i)
	st := n.Style
	em := st.FontSize
	avail := cs.Available.Width
	pi, _ := n.Box.PaddingAndBorder()

	if w, ok := p.forcedWidth[i]; ok {
		return math.Max(0, w)
	}

	var w float64
	shrink := st.Float != styled.FloatNone || st.Display == styled.DisplayInlineBlock ||
		st.Display == styled.DisplayTableCell || st.Display == styled.DisplayTable ||
		st.Position.IsOutOfFlow()
	if st.Width.IsAuto() {
		if shrink {
			w = p.shrinkToFit(i, avail-n.Box.Margin.Horizontal()) - pi
		} else {
			w = avail - n.Box.Margin.Horizontal() - pi
		}
	} else {
		w = st.Width.Resolve(avail, em)
	}
	if !st.MaxWidth.IsAuto() {
		w = math.Min(w, st.MaxWidth.Resolve(avail, em))
	}
	if !st.MinWidth.IsAuto() {
		w = math.Max(w, st.MinWidth.Resolve(avail, em))
	}
	return math.Max(0, w)
}

// resolveBlockHeight computes the used content height (CSS 2.2 §10.6.3).
func (p *pass) resolveBlockHeight(i NodeIdx, cs ConstraintSpace, contentHeight float64) float64 {
	n := p.tree.Node(i)
	st := n.Style
	em := st.FontSize
	availH := cs.Available.Height

	h := contentHeight
	if !st.Height.IsAuto() {
		if st.Height.Unit == geom.UnitPercent {
			if availH > 0 {
				h = st.Height.Resolve(availH, em)
			}
		} else {
			h = st.Height.Resolve(availH, em)
		}
	}
	if !st.MaxHeight.IsAuto() && !(st.MaxHeight.Unit == geom.UnitPercent && availH <= 0) {
		h = math.Min(h, st.MaxHeight.Resolve(availH, em))
	}
	if !st.MinHeight.IsAuto() && !(st.MinHeight.Unit == geom.UnitPercent && availH <= 0) {
		h = math.Max(h, st.MinHeight.Resolve(availH, em))
	}
	return math.Max(0, h)
}

// layoutBlockChildren runs the block flow: sibling margin collapsing,
// float placement, clearance, and page break handling.
func (p *pass) layoutBlockChildren(parent NodeIdx, cs ConstraintSpace) (float64, blockResult) {
	pn := p.tree.Node(parent)
	origin := pn.ContentOrigin()
	contentWidth := pn.Content.Width

	// Can the first/last child margin collapse through our edges?
	containTop := pn.Box.Border.Top > 0 || pn.Box.Padding.Top > 0
	containBottom := pn.Box.Border.Bottom > 0 || pn.Box.Padding.Bottom > 0 ||
		!pn.Style.Height.IsAuto()

	childCS := ConstraintSpace{
		Available:  geom.Size{Width: contentWidth, Height: cs.Available.Height},
		Exclusions: p.bfc.es,
		TextAlign:  pn.Style.TextAlign,
		BFCOffset:  origin.Sub(p.bfc.origin),
		BFCWidth:   p.bfc.width,
	}

	var res blockResult
	pen := 0.0
	var acc marginAccum
	placedAny := false

	for c := pn.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		if p.budgetExceeded() {
			break
		}
		cn := p.tree.Node(c)
		cst := cn.Style

		if cst.Position.IsOutOfFlow() {
			p.pendingOOF = append(p.pendingOOF, pendingAbs{
				idx: c,
				static: geom.Point{
					X: origin.X,
					Y: origin.Y + pen + acc.Value(),
				},
			})
			continue
		}
		if cst.Float != styled.FloatNone {
			p.placeFloat(c, origin, pen+acc.Value(), childCS)
			childCS.Exclusions = p.bfc.es
			continue
		}

		cn.Box = resolveBox(cst, contentWidth)
		acc.Add(cn.Box.Margin.Top)

		// Provisional placement; the collapsed margin and any clearance
		// or page break shift the subtree afterwards.
		x := origin.X + cn.Box.Margin.Left
		if !cst.Width.IsAuto() && cst.Margin.Left.IsAuto() && cst.Margin.Right.IsAuto() {
			// auto horizontal margins center a fixed-width block
			w := cst.Width.Resolve(contentWidth, cst.FontSize)
			pb := cn.Box.Padding.Horizontal() + cn.Box.Border.Horizontal()
			x = origin.X + math.Max(0, (contentWidth-w-pb)/2)
		}
		provisionalY := origin.Y + pen
		cn.Pos = geom.Point{X: x, Y: provisionalY}

		sub := p.layoutBox2(c, childCS)

		// Merge margins escaping from the child's own top edge.
		acc.Merge(sub.escTop)

		finalLocalY := pen + acc.Value()
		if !placedAny && !containTop {
			// The collapsed set escapes through our top edge; children
			// start at the content origin and the parent's parent adds
			// the margin (CSS 2.2 §8.3.1).
			res.escTop = acc
			finalLocalY = pen
		}

		// Clearance moves the box below floats and cancels collapsing.
		if cst.Clear != styled.ClearNone {
			bfcY := origin.Y + finalLocalY - p.bfc.origin.Y
			clearY := p.bfc.es.ClearanceY(cst.Clear, bfcY)
			if clearY > bfcY {
				finalLocalY += clearY - bfcY
				if !placedAny && !containTop {
					res.escTop = marginAccum{}
				}
			}
		}

		cn = p.tree.Node(c)
		if dy := (origin.Y + finalLocalY) - cn.Pos.Y; dy != 0 {
			p.tree.TranslateSubtree(c, 0, dy)
		}
		if p.frag != nil {
			p.frag.ApplyBreakRules(p.tree, c)
		}

		cn = p.tree.Node(c)
		if sub.collapseThrough {
			// Empty block: its top and bottom margins join one set and
			// the pen does not advance.
			acc.Add(cn.Box.Margin.Bottom)
			acc.Merge(sub.escBottom)
			continue
		}

		placedAny = true
		pen = cn.Pos.Y + cn.BorderSize().Height - origin.Y
		acc = marginAccum{}
		acc.Add(cn.Box.Margin.Bottom)
		acc.Merge(sub.escBottom)
	}

	if !placedAny && !containTop && !containBottom {
		// Nothing established content: the whole margin set collapses
		// through this box.
		res.escTop = acc
		res.escBottom = acc
		res.collapseThrough = true
		return 0, res
	}

	if containBottom {
		return pen + math.Max(0, acc.Value()), res
	}
	res.escBottom = acc
	return pen, res
}

// layoutBox2 dispatches like layoutBox but surfaces the margin escapes of
// block containers to the caller's collapsing loop.
func (p *pass) layoutBox2(i NodeIdx, cs ConstraintSpace) blockResult {
	n := p.tree.Node(i)
	n.lastAvail = cs.Available
	if n.Data != nil {
		switch n.Data.Type {
		case styled.TextNode:
			p.layoutText(i, cs)
			return blockResult{}
		case styled.ImageNode:
			p.layoutReplaced(i, cs)
			return blockResult{}
		case styled.IFrameNode, styled.GLNode:
			p.layoutEmbedded(i, cs)
			return blockResult{}
		}
	}
	switch n.Style.Display {
	case styled.DisplayFlex:
		p.layoutFlex(i, cs)
	case styled.DisplayGrid:
		p.layoutGrid(i, cs)
	case styled.DisplayTable:
		p.layoutTable(i, cs)
	default:
		return p.layoutBlockContainer(i, cs, false)
	}
	return blockResult{}
}

// placeFloat sizes a float, finds the first band it fits in and records the
// exclusion (CSS 2.2 §9.5.1).
func (p *pass) placeFloat(c NodeIdx, origin geom.Point, localY float64, cs ConstraintSpace) {
	cn := p.tree.Node(c)
	st := cn.Style
	cn.Box = resolveBox(st, cs.Available.Width)

	// Size the float first: shrink-to-fit width, content height.
	cn.Pos = geom.Point{X: origin.X, Y: origin.Y + localY}
	p.layoutBox(c, cs.WithAvailable(geom.Size{
		Width:  cs.Available.Width - cn.Box.Margin.Horizontal(),
		Height: cs.Available.Height,
	}), true)
	cn = p.tree.Node(c)
	bs := cn.BorderSize()
	mw := bs.Width + cn.Box.Margin.Horizontal()
	mh := bs.Height + cn.Box.Margin.Vertical()

	startY := origin.Y + localY - p.bfc.origin.Y
	if st.Clear != styled.ClearNone {
		startY = p.bfc.es.ClearanceY(st.Clear, startY)
	}
	y, left := p.bfc.es.FitBand(startY, mw, mh, p.bfc.width)

	var xBFC float64
	if st.Float == styled.FloatLeft {
		xBFC = left
	} else {
		_, right := p.bfc.es.Offsets(y, mh, p.bfc.width)
		xBFC = p.bfc.width - right - mw
	}

	final := geom.Point{
		X: p.bfc.origin.X + xBFC + cn.Box.Margin.Left,
		Y: p.bfc.origin.Y + y + cn.Box.Margin.Top,
	}
	p.tree.TranslateSubtree(c, final.X-cn.Pos.X, final.Y-cn.Pos.Y)

	p.bfc.es = p.bfc.es.Add(Exclusion{
		Rect: geom.Rect{X: xBFC, Y: y, Width: mw, Height: mh},
		Side: st.Float,
	})
}
