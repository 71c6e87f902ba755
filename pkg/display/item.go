// Package display converts a positioned layout tree into a linear, clipped,
// layered list of draw items, and answers the geometric queries that hang
// off that list: per-page filtering, hit testing, selection and caret
// rectangles.
//
// Item bounds are canvas coordinates with scroll offsets NOT applied; a
// scroll-frame push carries the live offset and the consumer translates the
// frame's children by it. The binary wire format (wire.go) is where logical
// pixels become device pixels.
package display

import (
	"reflow/pkg/geom"
	"reflow/pkg/scroll"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// Tag ties a paint item back to the DOM node it came from, for hit testing
// and callback dispatch. Anonymous boxes carry the zero tag.
type Tag struct {
	Dom  styled.DomID
	Node styled.NodeID
}

// NilTag is the tag of anonymous boxes.
var NilTag = Tag{Node: styled.NilNode}

// Item is one entry of a display list. Concrete types split into paint
// items (Rect, Border, Text, Image, Gradient, Shadow) and structural
// push/pop pairs (Clip, Transform, Effect, ScrollFrame). List order is
// z-order; structural items scope their effect over everything up to the
// matching pop.
type Item interface {
	item()
}

// Rect is a solid-color filled rectangle (background color, selection
// highlight, caret).
type Rect struct {
	Tag    Tag
	Bounds geom.Rect
	Color  geom.Color
	// Corner radii in order top-left, top-right, bottom-right, bottom-left.
	Radii [4]float64
}

// Border draws the four border sides of a box with per-side width, style
// and color, joining corners per the radii.
type Border struct {
	Tag    Tag
	Bounds geom.Rect // border box
	Widths geom.Edges
	Colors [4]geom.Color             // top, right, bottom, left
	Styles [4]styled.BorderLineStyle // top, right, bottom, left
	Radii  [4]float64
}

// Glyph is one placed token of a text run: the cluster string and its
// baseline origin in canvas coordinates.
type Glyph struct {
	Text string
	X    float64
	Y    float64 // baseline
}

// Text is one shaped run, one item per line fragment.
type Text struct {
	Tag    Tag
	Bounds geom.Rect
	Color  geom.Color
	Face   text.FaceRequest
	Glyphs []Glyph
}

// Image draws a decoded image into Dest, which object-fit may have made
// smaller or larger than Bounds; Bounds clips. A zero Source with a nonzero
// Texture is a GL-callback texture handle instead.
type Image struct {
	Tag     Tag
	Bounds  geom.Rect // content box
	Dest    geom.Rect
	Source  string
	Repeat  styled.BackgroundRepeat // tiling for background layers
	Texture uint64
}

// Gradient fills Bounds with a linear, radial or conic gradient.
type Gradient struct {
	Tag      Tag
	Bounds   geom.Rect
	Gradient styled.Gradient
	Radii    [4]float64
}

// Shadow is one box-shadow entry, already offset and spread into Bounds.
type Shadow struct {
	Tag    Tag
	Bounds geom.Rect
	Color  geom.Color
	Blur   float64
	Radii  [4]float64
	Inset  bool
}

// PushClip restricts subsequent items to Bounds, optionally rounded or
// further restricted to a basic shape (clip-path).
type PushClip struct {
	Bounds geom.Rect
	Radii  [4]float64
	Shape  *geom.ResolvedShape
}

type PopClip struct{}

// PushTransform applies a 4x4 column-major matrix about the canvas origin
// (the builder has already folded transform-origin into it).
type PushTransform struct {
	Matrix Matrix
}

type PopTransform struct{}

// PushEffect opens an off-screen compositing group: opacity, blend mode and
// filters apply to the group as a whole, backdrop filters to what lies
// beneath it.
type PushEffect struct {
	Opacity  float64
	Blend    styled.BlendMode
	Filters  []styled.Filter
	Backdrop []styled.Filter
}

type PopEffect struct{}

// PushScrollFrame opens a scroll frame: Clip is the container's padding
// box, Content the scrollable extent, Offset the live scroll position. The
// consumer translates children by -Offset and clips to Clip.
type PushScrollFrame struct {
	ID      scroll.ID
	Clip    geom.Rect
	Content geom.Rect
	Offset  scroll.Offset
}

type PopScrollFrame struct{}

func (Rect) item()            {}
func (Border) item()          {}
func (Text) item()            {}
func (Image) item()           {}
func (Gradient) item()        {}
func (Shadow) item()          {}
func (PushClip) item()        {}
func (PopClip) item()         {}
func (PushTransform) item()   {}
func (PopTransform) item()    {}
func (PushEffect) item()      {}
func (PopEffect) item()       {}
func (PushScrollFrame) item() {}
func (PopScrollFrame) item()  {}

// RepeatGroup is a run of items re-emitted at the top of each later page a
// table spans: a registered repeating table header.
type RepeatGroup struct {
	Items []Item
	// HeaderY is the header's canvas top on its first page; TableBottom is
	// the canvas bottom of the owning table.
	HeaderY     float64
	TableBottom float64
}

// RunningGroup holds the items of one running element, laid out in
// page-local coordinates and replayed on every page.
type RunningGroup struct {
	Name  string
	Items []Item
}

// List is a finished display list plus the side tables paged output needs.
type List struct {
	Items   []Item
	Repeats []RepeatGroup
	Running []RunningGroup
}

// leafBounds returns the bounds of a paint item, ok=false for structural
// items.
func leafBounds(it Item) (geom.Rect, bool) {
	switch v := it.(type) {
	case Rect:
		return v.Bounds, true
	case Border:
		return v.Bounds, true
	case Text:
		return v.Bounds, true
	case Image:
		return v.Bounds, true
	case Gradient:
		return v.Bounds, true
	case Shadow:
		return v.Bounds, true
	}
	return geom.Rect{}, false
}

// leafTag returns the DOM tag of a paint item, ok=false for structural
// items.
func leafTag(it Item) (Tag, bool) {
	switch v := it.(type) {
	case Rect:
		return v.Tag, true
	case Border:
		return v.Tag, true
	case Text:
		return v.Tag, true
	case Image:
		return v.Tag, true
	case Gradient:
		return v.Tag, true
	case Shadow:
		return v.Tag, true
	}
	return Tag{}, false
}

// translateItem shifts a paint item's geometry; structural items move their
// scoping rects the same way.
func translateItem(it Item, dx, dy float64) Item {
	switch v := it.(type) {
	case Rect:
		v.Bounds = v.Bounds.Translate(dx, dy)
		return v
	case Border:
		v.Bounds = v.Bounds.Translate(dx, dy)
		return v
	case Text:
		v.Bounds = v.Bounds.Translate(dx, dy)
		gs := make([]Glyph, len(v.Glyphs))
		for i, g := range v.Glyphs {
			g.X += dx
			g.Y += dy
			gs[i] = g
		}
		v.Glyphs = gs
		return v
	case Image:
		v.Bounds = v.Bounds.Translate(dx, dy)
		v.Dest = v.Dest.Translate(dx, dy)
		return v
	case Gradient:
		v.Bounds = v.Bounds.Translate(dx, dy)
		return v
	case Shadow:
		v.Bounds = v.Bounds.Translate(dx, dy)
		return v
	case PushClip:
		v.Bounds = v.Bounds.Translate(dx, dy)
		if v.Shape != nil {
			s := *v.Shape
			s.Center.X += dx
			s.Center.Y += dy
			s.Rect = s.Rect.Translate(dx, dy)
			if len(s.Points) > 0 {
				pts := make([]geom.Point, len(s.Points))
				for i, p := range s.Points {
					pts[i] = geom.Point{X: p.X + dx, Y: p.Y + dy}
				}
				s.Points = pts
			}
			v.Shape = &s
		}
		return v
	case PushScrollFrame:
		v.Clip = v.Clip.Translate(dx, dy)
		v.Content = v.Content.Translate(dx, dy)
		return v
	}
	return it
}
