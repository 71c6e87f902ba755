package layout

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// InlineFragment is one placed piece of a line box: a text run, a list
// marker, or an atomic inline-level box. Rect is in canvas coordinates.
type InlineFragment struct {
	Node   NodeIdx
	Text   string
	Rect   geom.Rect
	Ascent float64

	// Cluster range of a text fragment within its node's Words, for
	// caret and selection mapping.
	ClusterStart int
	ClusterEnd   int

	Atomic bool
	Marker bool
}

// LineBox is one finished line of inline content.
type LineBox struct {
	Rect      geom.Rect
	Baseline  float64 // ascent: offset from line top to the baseline
	Fragments []InlineFragment
}

// layoutText lays a lone text box against the available inline size. In
// normal flow text always sits inside an inline formatting context; this
// path serves measurement of bare text subtrees.
func (p *pass) layoutText(i NodeIdx, cs ConstraintSpace) {
	n := p.tree.Node(i)
	run := p.eng.Text.Shape(n.Words, faceRequest(n.Style), cs.Available.Width, n.Style.ResolvedLineHeight())
	n.Shaped = run
	n.Content = run.Size
	n.Box = BoxOffsets{}
}

// layoutInlineContent lays out the inline formatting context of a block
// container and returns the content height. Line boxes are stored on the
// container for the display and hit-test stages.
func (p *pass) layoutInlineContent(container NodeIdx, cs ConstraintSpace) float64 {
	n := p.tree.Node(container)
	origin := n.ContentOrigin()

	ccs := cs
	ccs.Available = geom.Size{Width: n.Content.Width, Height: cs.Available.Height}
	ccs.Exclusions = p.bfc.es
	ccs.BFCOffset = origin.Sub(p.bfc.origin)
	ccs.BFCWidth = p.bfc.width

	if p.simpleTextChild(container) != NilIdx && p.bfc.es.IsEmpty() &&
		n.Style.TextAlign == styled.TextAlignLeft && n.ListMarker == "" {
		return p.layoutSimpleText(container, origin)
	}

	lb := &lineBuilder{
		p:         p,
		tree:      p.tree,
		container: container,
		origin:    origin,
		cs:        ccs,
		style:     n.Style,
		noWrap:    n.Style.WhiteSpace == styled.WhiteSpaceNowrap,
	}
	lb.startLine()

	if n.ListMarker != "" {
		req := faceRequest(n.Style)
		m := p.eng.Text.Metrics(req)
		w := p.eng.Text.MeasureString(n.ListMarker, req)
		lb.add(InlineFragment{
			Node:   container,
			Text:   n.ListMarker,
			Rect:   geom.Rect{Width: w, Height: m.Ascent + m.Descent},
			Ascent: m.Ascent,
			Marker: true,
		}, w)
	}

	for c := n.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		lb.collect(c)
	}
	lb.flushLine()

	n = p.tree.Node(container)
	n.Lines = lb.lines
	if len(lb.lines) > 0 {
		n.Baseline = (lb.lines[0].Rect.Y - n.Pos.Y) + lb.lines[0].Baseline
	}
	return lb.penY
}

// simpleTextChild returns the sole in-flow text child, or NilIdx when the
// content is richer than that.
func (p *pass) simpleTextChild(container NodeIdx) NodeIdx {
	found := NilIdx
	for c := p.tree.Node(container).FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		if cn.Style.Position.IsOutOfFlow() {
			continue
		}
		if cn.Words == nil || found != NilIdx {
			return NilIdx
		}
		found = c
	}
	return found
}

// layoutSimpleText shapes the single text child in one call, keeping the
// ShapedRun for caret and selection mapping.
func (p *pass) layoutSimpleText(container NodeIdx, origin geom.Point) float64 {
	n := p.tree.Node(container)
	c := p.simpleTextChild(container)
	cn := p.tree.Node(c)

	lh := cn.Style.ResolvedLineHeight()
	run := p.eng.Text.Shape(cn.Words, faceRequest(cn.Style), n.Content.Width, lh)
	cn.Shaped = run
	cn.Pos = origin
	cn.Content = run.Size
	cn.Box = BoxOffsets{}

	lines := make([]LineBox, 0, len(run.Lines))
	for li, line := range run.Lines {
		frag := InlineFragment{
			Node:         c,
			Text:         lineText(run, li),
			Rect:         geom.Rect{X: origin.X, Y: origin.Y + line.Y, Width: line.Width, Height: lineHeightOf(line, lh)},
			Ascent:       line.Ascent,
			ClusterStart: -1,
			ClusterEnd:   -1,
		}
		lines = append(lines, LineBox{
			Rect:      frag.Rect,
			Baseline:  line.Ascent,
			Fragments: []InlineFragment{frag},
		})
	}
	n.Lines = lines
	if len(run.Lines) > 0 {
		n.Baseline = (origin.Y + run.Lines[0].Y + run.Lines[0].Ascent) - n.Pos.Y
	}
	return run.Size.Height
}

func lineHeightOf(l text.Line, lh float64) float64 {
	return math.Max(lh, l.Ascent+l.Descent)
}

// lineText reassembles the visible text of one shaped line.
func lineText(run *text.ShapedRun, line int) string {
	var out []byte
	for _, pt := range run.Placed {
		if pt.Line != line || pt.Width == 0 {
			continue
		}
		tok := run.Words.Tokens[pt.Token]
		switch tok.Kind {
		case text.TokenWord:
			out = append(out, run.Words.TokenString(tok)...)
		case text.TokenSpace:
			out = append(out, ' ')
		case text.TokenTab:
			out = append(out, ' ')
		}
	}
	return string(out)
}

// lineBuilder assembles line boxes from mixed inline content: several text
// nodes, nested inline elements, atomic inline boxes and floats.
type lineBuilder struct {
	p         *pass
	tree      *Tree
	container NodeIdx
	origin    geom.Point
	cs        ConstraintSpace
	style     *styled.ComputedStyle
	noWrap    bool

	lines []LineBox

	cur       []InlineFragment // rects x-relative to the line's left edge
	x         float64
	ascent    float64
	descent   float64
	penY      float64
	lineLeft  float64
	lineAvail float64
}

func (lb *lineBuilder) startLine() {
	probe := lb.style.ResolvedLineHeight()
	bfcY := lb.origin.Y + lb.penY - lb.p.bfc.origin.Y
	l, r := lb.cs.IntrusionsAt(bfcY, probe)
	lb.lineLeft = l
	lb.lineAvail = lb.tree.Node(lb.container).Content.Width - l - r
	lb.x = 0
	lb.ascent = 0
	lb.descent = 0
	lb.cur = lb.cur[:0]
}

func (lb *lineBuilder) add(f InlineFragment, w float64) {
	f.Rect.X = lb.x
	lb.cur = append(lb.cur, f)
	lb.x += w
	if f.Ascent > lb.ascent {
		lb.ascent = f.Ascent
	}
	if d := f.Rect.Height - f.Ascent; d > lb.descent {
		lb.descent = d
	}
}

// flushLine aligns and positions the fragments collected so far, then
// opens a fresh line.
func (lb *lineBuilder) flushLine() {
	if len(lb.cur) == 0 {
		return
	}
	// Trailing collapsible space does not take part in alignment
	// (CSS 2.1 §16.6.1).
	used := lb.x
	for i := len(lb.cur) - 1; i >= 0; i-- {
		if lb.cur[i].Text == " " && !lb.cur[i].Atomic {
			used = lb.cur[i].Rect.X
			lb.cur = lb.cur[:i]
			continue
		}
		break
	}

	lh := math.Max(lb.style.ResolvedLineHeight(), lb.ascent+lb.descent)
	var dx float64
	switch lb.style.TextAlign {
	case styled.TextAlignRight:
		dx = math.Max(0, lb.lineAvail-used)
	case styled.TextAlignCenter:
		dx = math.Max(0, (lb.lineAvail-used)/2)
	}

	lineX := lb.origin.X + lb.lineLeft + dx
	lineY := lb.origin.Y + lb.penY
	baseline := lineY + lb.ascent

	frags := make([]InlineFragment, len(lb.cur))
	copy(frags, lb.cur)
	for i := range frags {
		f := &frags[i]
		f.Rect.X += lineX
		if f.Atomic {
			n := lb.tree.Node(f.Node)
			f.Rect.Y = lb.alignAtomicTop(n, lineY, baseline, lh, f.Rect.Height)
			target := geom.Point{
				X: f.Rect.X + n.Box.Margin.Left,
				Y: f.Rect.Y + n.Box.Margin.Top,
			}
			lb.tree.TranslateSubtree(f.Node, target.X-n.Pos.X, target.Y-n.Pos.Y)
		} else {
			f.Rect.Y = baseline - f.Ascent
		}
	}

	lb.lines = append(lb.lines, LineBox{
		Rect:      geom.Rect{X: lineX, Y: lineY, Width: used, Height: lh},
		Baseline:  lb.ascent,
		Fragments: frags,
	})
	lb.penY += lh
	lb.startLine()
}

// alignAtomicTop resolves vertical-align for an atomic inline box and
// returns its margin-box top.
func (lb *lineBuilder) alignAtomicTop(n *LayoutNode, lineY, baseline, lh, mh float64) float64 {
	switch n.Style.VertAlign {
	case styled.VerticalAlignTop:
		return lineY
	case styled.VerticalAlignMiddle:
		return lineY + (lh-mh)/2
	case styled.VerticalAlignBottom:
		return lineY + lh - mh
	default:
		// Baseline: the margin-box bottom sits on the baseline.
		return baseline - mh
	}
}

// collect walks one inline-level child into the line builder.
func (lb *lineBuilder) collect(i NodeIdx) {
	n := lb.tree.Node(i)
	st := n.Style

	if st.Position.IsOutOfFlow() {
		lb.p.pendingOOF = append(lb.p.pendingOOF, pendingAbs{
			idx:    i,
			static: geom.Point{X: lb.origin.X + lb.x, Y: lb.origin.Y + lb.penY},
		})
		return
	}
	if st.Float != styled.FloatNone {
		lb.p.placeFloat(i, lb.origin, lb.penY, lb.cs)
		lb.cs.Exclusions = lb.p.bfc.es
		return
	}

	switch {
	case n.Words != nil:
		lb.collectText(i)
	case st.Display == styled.DisplayInline:
		for c := n.FirstChild; c != NilIdx; c = lb.tree.Node(c).NextSibling {
			lb.collect(c)
		}
		lb.wrapInlineBox(i)
	default:
		lb.collectAtomic(i)
	}
}

// wrapInlineBox gives a non-atomic inline element the union geometry of
// its fragments so hit testing and backgrounds have a box to work with.
func (lb *lineBuilder) wrapInlineBox(i NodeIdx) {
	n := lb.tree.Node(i)
	var union geom.Rect
	found := false
	mark := func(frags []InlineFragment) {
		for _, f := range frags {
			if lb.fragBelongs(f.Node, i) {
				r := f.Rect
				r.X += lb.origin.X + lb.lineLeft // current line fragments are line-relative
				r.Y = lb.origin.Y + lb.penY
				if !found {
					union = r
					found = true
				} else {
					union = union.Union(r)
				}
			}
		}
	}
	mark(lb.cur)
	for _, line := range lb.lines {
		for _, f := range line.Fragments {
			if lb.fragBelongs(f.Node, i) {
				if !found {
					union = f.Rect
					found = true
				} else {
					union = union.Union(f.Rect)
				}
			}
		}
	}
	if found {
		n.Pos = geom.Point{X: union.X, Y: union.Y}
		n.Content = geom.Size{Width: union.Width, Height: union.Height}
		n.Box = BoxOffsets{}
	}
}

func (lb *lineBuilder) fragBelongs(node NodeIdx, ancestor NodeIdx) bool {
	for node != NilIdx {
		if node == ancestor {
			return true
		}
		node = lb.tree.Node(node).Parent
	}
	return false
}

func (lb *lineBuilder) collectText(i NodeIdx) {
	n := lb.tree.Node(i)
	st := n.Style
	req := faceRequest(st)
	m := lb.p.eng.Text.Metrics(req)
	words := n.Words
	pre := st.WhiteSpace == styled.WhiteSpacePre

	for _, tok := range words.Tokens {
		switch tok.Kind {
		case text.TokenReturn:
			if pre {
				lb.flushLine()
			} else if lb.x > 0 {
				lb.addSpace(i, m, req)
			}
		case text.TokenSpace, text.TokenTab:
			if lb.x == 0 && !pre {
				continue // collapse leading space
			}
			lb.addSpace(i, m, req)
		case text.TokenWord:
			s := words.TokenString(tok)
			w := lb.p.eng.Text.MeasureString(s, req)
			if !lb.noWrap && !pre && lb.x > 0 && lb.x+w > lb.lineAvail {
				lb.flushLine()
			}
			lb.add(InlineFragment{
				Node:         i,
				Text:         s,
				Rect:         geom.Rect{Width: w, Height: m.Ascent + m.Descent},
				Ascent:       m.Ascent,
				ClusterStart: tok.StartCluster,
				ClusterEnd:   tok.EndCluster,
			}, w)
		}
	}
	// Give the text node itself a usable box.
	n.Pos = geom.Point{X: lb.origin.X, Y: lb.origin.Y}
	n.Box = BoxOffsets{}
}

func (lb *lineBuilder) addSpace(i NodeIdx, m text.Metrics, req text.FaceRequest) {
	w := lb.p.eng.Text.MeasureString(" ", req)
	lb.add(InlineFragment{
		Node:   i,
		Text:   " ",
		Rect:   geom.Rect{Width: w, Height: m.Ascent + m.Descent},
		Ascent: m.Ascent,
	}, w)
}

// collectAtomic measures and places an inline-block, image or embedded box
// on the line.
func (lb *lineBuilder) collectAtomic(i NodeIdx) {
	n := lb.tree.Node(i)
	n.Box = resolveBox(n.Style, lb.cs.Available.Width)
	w, h := lb.p.measureContent(i, lb.lineAvail-n.Box.Margin.Horizontal(), lb.cs.Available.Height)
	mw := w + lb.tree.Node(i).Box.Margin.Horizontal()
	mh := h + lb.tree.Node(i).Box.Margin.Vertical()

	if !lb.noWrap && lb.x > 0 && lb.x+mw > lb.lineAvail {
		lb.flushLine()
	}
	lb.add(InlineFragment{
		Node:   i,
		Rect:   geom.Rect{Width: mw, Height: mh},
		Ascent: mh, // baseline at the bottom margin edge
		Atomic: true,
	}, mw)
}
