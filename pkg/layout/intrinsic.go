package layout

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

func faceRequest(st *styled.ComputedStyle) text.FaceRequest {
	return text.FaceRequest{
		Families: st.FontFamilies,
		Size:     st.FontSize,
		Bold:     st.FontWeight.IsBold(),
		Italic:   st.FontStyle == styled.FontStyleItalic,
		Mono:     st.Monospace,
	}
}

// definiteWidth resolves a non-percentage, non-auto width to pixels.
// Percentages are content-relative at intrinsic time and count as
// indefinite (CSS Sizing 3 §5.2).
func definiteWidth(st *styled.ComputedStyle) (float64, bool) {
	v := st.Width
	if v.IsAuto() || v.Unit == geom.UnitPercent {
		return 0, false
	}
	return v.Resolve(0, st.FontSize), true
}

// intrinsic returns the cached content-driven sizes of a box, computing
// them bottom-up on a miss. Sizes are border-box.
func (p *pass) intrinsic(i NodeIdx) IntrinsicSizes {
	n := p.tree.Node(i)
	if n.Intrinsic.Valid {
		return n.Intrinsic
	}
	s := p.computeIntrinsic(i)
	s.Valid = true
	n.Intrinsic = s
	return s
}

func (p *pass) computeIntrinsic(i NodeIdx) IntrinsicSizes {
	n := p.tree.Node(i)
	st := n.Style

	if n.Words != nil {
		min, max := p.eng.Text.IntrinsicSizes(n.Words, faceRequest(st))
		return IntrinsicSizes{MinContent: min, MaxContent: max, Preferred: max}
	}
	if n.Data != nil && n.Data.Type == styled.ImageNode {
		w, h := p.imageSize(n)
		s := p.replacedSize(st, w, h)
		return IntrinsicSizes{MinContent: s.Width, MaxContent: s.Width, Preferred: s.Width, BlockSize: s.Height}
	}

	pi, _ := n.Box.PaddingAndBorder()
	if pi == 0 {
		// Box offsets may not be resolved yet during a pre-layout
		// intrinsic query; resolve against a zero basis (px/em only).
		box := resolveBox(st, 0)
		pi = box.Padding.Horizontal() + box.Border.Horizontal()
	}

	var s IntrinsicSizes
	switch st.Display {
	case styled.DisplayFlex:
		s = p.flexIntrinsic(i)
	case styled.DisplayGrid:
		s = p.gridIntrinsic(i)
	case styled.DisplayTable:
		s = p.tableIntrinsic(i)
	default:
		s = p.blockIntrinsic(i)
	}

	if w, ok := definiteWidth(st); ok {
		s.MinContent = w
		s.MaxContent = w
	}
	applyMinMaxWidth(st, &s)
	s.MinContent += pi
	s.MaxContent += pi
	s.Preferred = s.MaxContent
	if n.ListMarker != "" {
		mw := p.eng.Text.MeasureString(n.ListMarker, faceRequest(st))
		s.MinContent += mw
		s.MaxContent += mw
		s.Preferred = s.MaxContent
	}
	return s
}

func applyMinMaxWidth(st *styled.ComputedStyle, s *IntrinsicSizes) {
	em := st.FontSize
	if !st.MaxWidth.IsAuto() && st.MaxWidth.Unit != geom.UnitPercent {
		max := st.MaxWidth.Resolve(0, em)
		s.MinContent = math.Min(s.MinContent, max)
		s.MaxContent = math.Min(s.MaxContent, max)
	}
	if !st.MinWidth.IsAuto() && st.MinWidth.Unit != geom.UnitPercent {
		min := st.MinWidth.Resolve(0, em)
		s.MinContent = math.Max(s.MinContent, min)
		s.MaxContent = math.Max(s.MaxContent, min)
	}
}

// blockIntrinsic handles block containers: with block-level children the
// bounds are the children's maxima; with inline content, runs accumulate.
func (p *pass) blockIntrinsic(i NodeIdx) IntrinsicSizes {
	n := p.tree.Node(i)
	if p.hasInlineContent(i) {
		return p.inlineIntrinsic(i)
	}
	var s IntrinsicSizes
	for c := n.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		if cn.Style.Position.IsOutOfFlow() {
			continue
		}
		cb := resolveBox(cn.Style, 0)
		extra := cb.Margin.Horizontal()
		ci := p.intrinsic(c)
		s.MinContent = math.Max(s.MinContent, ci.MinContent+extra)
		s.MaxContent = math.Max(s.MaxContent, ci.MaxContent+extra)
	}
	return s
}

// inlineIntrinsic: min-content is the widest unbreakable chunk, max-content
// the width with no line breaks at all.
func (p *pass) inlineIntrinsic(i NodeIdx) IntrinsicSizes {
	n := p.tree.Node(i)
	var s IntrinsicSizes
	for c := n.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		if cn.Style.Position.IsOutOfFlow() || cn.Style.Float != styled.FloatNone {
			ci := p.intrinsic(c)
			s.MinContent = math.Max(s.MinContent, ci.MinContent)
			continue
		}
		ci := p.intrinsic(c)
		s.MinContent = math.Max(s.MinContent, ci.MinContent)
		s.MaxContent += ci.MaxContent
	}
	return s
}

// hasInlineContent reports whether a block container holds inline-level
// children. After anonymous box generation the child list is homogeneous,
// so the first in-flow child decides.
func (p *pass) hasInlineContent(i NodeIdx) bool {
	for c := p.tree.Node(i).FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		if cn.Style.Position.IsOutOfFlow() || cn.Style.Float != styled.FloatNone {
			continue
		}
		if cn.Words != nil {
			return true
		}
		return cn.Style.Display.IsInlineLevel()
	}
	return false
}

func (p *pass) flexIntrinsic(i NodeIdx) IntrinsicSizes {
	n := p.tree.Node(i)
	st := n.Style
	row := st.FlexDirection.IsRow()
	gap := st.ColumnGap.Resolve(0, st.FontSize)
	var s IntrinsicSizes
	count := 0
	for c := n.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		if cn.Style.Position.IsOutOfFlow() {
			continue
		}
		ci := p.intrinsic(c)
		if row {
			s.MaxContent += ci.MaxContent
			if st.FlexWrap == styled.FlexNoWrap {
				s.MinContent += ci.MinContent
			} else {
				s.MinContent = math.Max(s.MinContent, ci.MinContent)
			}
		} else {
			s.MinContent = math.Max(s.MinContent, ci.MinContent)
			s.MaxContent = math.Max(s.MaxContent, ci.MaxContent)
		}
		count++
	}
	if row && count > 1 {
		s.MaxContent += gap * float64(count-1)
		if st.FlexWrap == styled.FlexNoWrap {
			s.MinContent += gap * float64(count-1)
		}
	}
	return s
}

func (p *pass) gridIntrinsic(i NodeIdx) IntrinsicSizes {
	n := p.tree.Node(i)
	st := n.Style
	var s IntrinsicSizes
	var fixed float64
	for _, tr := range st.GridTemplateColumns {
		if tr.Kind == styled.TrackFixed {
			fixed += tr.Size.Resolve(0, st.FontSize)
		}
	}
	for c := n.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		if cn.Style.Position.IsOutOfFlow() {
			continue
		}
		ci := p.intrinsic(c)
		s.MinContent = math.Max(s.MinContent, ci.MinContent)
		s.MaxContent = math.Max(s.MaxContent, ci.MaxContent)
	}
	s.MinContent = math.Max(s.MinContent, fixed)
	s.MaxContent = math.Max(s.MaxContent, fixed)
	return s
}

// measureContent lays a subtree out against a hypothetical available size
// and returns the resulting border-box size, memoized per constraint. Used
// for shrink-to-fit boxes (floats, inline-blocks, abspos) and flex basis
// resolution.
func (p *pass) measureContent(i NodeIdx, availW, availH float64) (w, h float64) {
	n := p.tree.Node(i)
	key := measureKey{w: availW, h: availH}
	if n.measure != nil {
		if s, ok := n.measure[key]; ok {
			return s.Width, s.Height
		}
	}

	savedPos := n.Pos
	cs := NewConstraintSpace(geom.Size{Width: availW, Height: availH})
	n.Box = resolveBox(n.Style, availW)
	n.Pos = savedPos
	p.layoutBox(i, cs, true)
	bs := p.tree.Node(i).BorderSize()

	n = p.tree.Node(i)
	if n.measure == nil {
		n.measure = make(map[measureKey]geom.Size)
	}
	n.measure[key] = geom.Size{Width: bs.Width, Height: bs.Height}
	return bs.Width, bs.Height
}

// shrinkToFit implements CSS 2.2 §10.3.5.
func (p *pass) shrinkToFit(i NodeIdx, avail float64) float64 {
	s := p.intrinsic(i)
	return math.Max(math.Min(s.MaxContent, avail), math.Min(s.MinContent, avail))
}
