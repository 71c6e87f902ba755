package layout

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

const (
	fallbackImageW = 150
	fallbackImageH = 150
)

// imageSize returns the natural pixel size of an image box, falling back
// to the CSS replaced-element default when the image cannot be decoded.
func (p *pass) imageSize(n *LayoutNode) (float64, float64) {
	if p.eng.Images != nil && n.Data != nil {
		if w, h, ok := p.eng.Images.Dimensions(n.Data.ImageSource); ok {
			return float64(w), float64(h)
		}
	}
	return fallbackImageW, fallbackImageH
}

// replacedSize resolves the used size of a replaced element from its style
// and natural size, preserving the aspect ratio when one axis is auto
// (CSS 2.2 §10.3.2).
func (p *pass) replacedSize(st *styled.ComputedStyle, naturalW, naturalH float64) geom.Size {
	em := st.FontSize
	wAuto := st.Width.IsAuto() || st.Width.Unit == geom.UnitPercent
	hAuto := st.Height.IsAuto() || st.Height.Unit == geom.UnitPercent
	ratio := 1.0
	if naturalH > 0 {
		ratio = naturalW / naturalH
	}

	var w, h float64
	switch {
	case wAuto && hAuto:
		w, h = naturalW, naturalH
	case wAuto:
		h = st.Height.Resolve(0, em)
		w = h * ratio
	case hAuto:
		w = st.Width.Resolve(0, em)
		if ratio > 0 {
			h = w / ratio
		}
	default:
		w = st.Width.Resolve(0, em)
		h = st.Height.Resolve(0, em)
	}
	if !st.MaxWidth.IsAuto() && st.MaxWidth.Unit != geom.UnitPercent {
		w = math.Min(w, st.MaxWidth.Resolve(0, em))
	}
	if !st.MinWidth.IsAuto() && st.MinWidth.Unit != geom.UnitPercent {
		w = math.Max(w, st.MinWidth.Resolve(0, em))
	}
	return geom.Size{Width: math.Max(0, w), Height: math.Max(0, h)}
}

func (p *pass) layoutReplaced(i NodeIdx, cs ConstraintSpace) {
	n := p.tree.Node(i)
	w, h := p.imageSize(n)
	n.Content = p.replacedSize(n.Style, w, h)
}

// layoutEmbedded sizes an iframe or GL texture box. Both default to the
// available size when auto; the callback contract hands them their final
// bounds after layout.
func (p *pass) layoutEmbedded(i NodeIdx, cs ConstraintSpace) {
	n := p.tree.Node(i)
	st := n.Style
	em := st.FontSize
	w := cs.Available.Width - n.Box.Margin.Horizontal()
	h := 150.0
	if !st.Width.IsAuto() {
		w = st.Width.Resolve(cs.Available.Width, em)
	}
	if !st.Height.IsAuto() {
		h = st.Height.Resolve(math.Max(0, cs.Available.Height), em)
	}
	n.Content = geom.Size{Width: math.Max(0, w), Height: math.Max(0, h)}
}

// FitObject computes the content rectangle of a replaced element under
// object-fit, relative to the element's content box.
func FitObject(fit styled.ObjectFit, box, natural geom.Size) geom.Rect {
	if natural.Width <= 0 || natural.Height <= 0 {
		return geom.RectFrom(geom.Point{}, box)
	}
	scaleTo := func(s float64) geom.Rect {
		w := natural.Width * s
		h := natural.Height * s
		return geom.Rect{
			X:      (box.Width - w) / 2,
			Y:      (box.Height - h) / 2,
			Width:  w,
			Height: h,
		}
	}
	sx := box.Width / natural.Width
	sy := box.Height / natural.Height
	switch fit {
	case styled.ObjectFitContain:
		return scaleTo(math.Min(sx, sy))
	case styled.ObjectFitCover:
		return scaleTo(math.Max(sx, sy))
	case styled.ObjectFitNone:
		return scaleTo(1)
	case styled.ObjectFitScaleDown:
		return scaleTo(math.Min(1, math.Min(sx, sy)))
	default: // fill
		return geom.RectFrom(geom.Point{}, box)
	}
}
