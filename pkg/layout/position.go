package layout

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// absContainingBlock finds the rectangle an out-of-flow box resolves its
// insets against: the padding box of the nearest positioned ancestor for
// absolute, the initial containing block for fixed or when none exists.
func (p *pass) absContainingBlock(i NodeIdx) geom.Rect {
	n := p.tree.Node(i)
	if n.Style.Position != styled.PositionFixed {
		for a := n.Parent; a != NilIdx; a = p.tree.Node(a).Parent {
			an := p.tree.Node(a)
			if an.Style != nil && an.Style.Position.IsPositioned() {
				return an.PaddingBox()
			}
		}
	}
	return geom.RectFrom(geom.Point{}, p.opts.ContentSize())
}

// layoutAbsolute resolves one absolutely or fixed positioned box using the
// inset equations of CSS 2.2 §10.3.7 and §10.6.4. Over-constrained boxes
// honor top/left and ignore bottom/right.
func (p *pass) layoutAbsolute(pa pendingAbs) {
	n := p.tree.Node(pa.idx)
	st := n.Style
	cb := p.absContainingBlock(pa.idx)
	em := st.FontSize

	n.Box = resolveBox(st, cb.Width)
	pi, _ := n.Box.PaddingAndBorder()

	left, hasLeft := resolveInset(st.Insets.Left, cb.Width, em)
	right, hasRight := resolveInset(st.Insets.Right, cb.Width, em)
	top, hasTop := resolveInset(st.Insets.Top, cb.Height, em)
	bottom, hasBottom := resolveInset(st.Insets.Bottom, cb.Height, em)

	availW := cb.Width
	if hasLeft && hasRight && st.Width.IsAuto() {
		availW = math.Max(0, cb.Width-left-right)
	}

	n.Pos = pa.static
	if hasLeft && hasRight && st.Width.IsAuto() {
		if p.forcedWidth == nil {
			p.forcedWidth = make(map[NodeIdx]float64)
		}
		p.forcedWidth[pa.idx] = availW - n.Box.Margin.Horizontal() - pi
		defer delete(p.forcedWidth, pa.idx)
	}
	cs := NewConstraintSpace(geom.Size{Width: availW, Height: cb.Height})
	p.layoutBox(pa.idx, cs, true)

	n = p.tree.Node(pa.idx)
	size := n.BorderSize()

	var x float64
	switch {
	case hasLeft && hasRight:
		// Both insets set: leftover space goes into auto margins, split
		// evenly when both are auto (CSS 2.2 §10.3.7 rule 6).
		x = cb.X + left + n.Box.Margin.Left
		if leftover := cb.Width - left - right - size.Width - n.Box.Margin.Horizontal(); leftover > 0 {
			switch {
			case st.Margin.Left.IsAuto() && st.Margin.Right.IsAuto():
				x += leftover / 2
			case st.Margin.Left.IsAuto():
				x += leftover
			}
		}
	case hasLeft:
		x = cb.X + left + n.Box.Margin.Left
	case hasRight:
		x = cb.Right() - right - size.Width - n.Box.Margin.Right
	default:
		x = pa.static.X + n.Box.Margin.Left
	}

	var y float64
	switch {
	case hasTop && hasBottom:
		// Auto height absorbs the leftover instead (stretch below).
		y = cb.Y + top + n.Box.Margin.Top
		if leftover := cb.Height - top - bottom - size.Height - n.Box.Margin.Vertical(); leftover > 0 && !st.Height.IsAuto() {
			switch {
			case st.Margin.Top.IsAuto() && st.Margin.Bottom.IsAuto():
				y += leftover / 2
			case st.Margin.Top.IsAuto():
				y += leftover
			}
		}
	case hasTop:
		y = cb.Y + top + n.Box.Margin.Top
	case hasBottom:
		y = cb.Bottom() - bottom - size.Height - n.Box.Margin.Bottom
	default:
		y = pa.static.Y + n.Box.Margin.Top
	}

	// Both vertical insets with auto height stretch the box.
	if hasTop && hasBottom && st.Height.IsAuto() {
		stretched := math.Max(0, cb.Height-top-bottom-n.Box.Margin.Vertical())
		_, pb := n.Box.PaddingAndBorder()
		n.Content.Height = math.Max(n.Content.Height, stretched-pb)
	}
	p.tree.TranslateSubtree(pa.idx, x-n.Pos.X, y-n.Pos.Y)
}

func resolveInset(v geom.Value, basis, em float64) (float64, bool) {
	if v.IsAuto() {
		return 0, false
	}
	return v.Resolve(basis, em), true
}
