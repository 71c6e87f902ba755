package geom

import "math"

// ShapeKind discriminates the basic-shape union used by clip-path and
// shape-outside.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeEllipse
	ShapePolygon
	ShapeInset
	ShapePath
)

// Shape is a CSS basic shape with unresolved lengths. Percentages resolve
// against the reference box handed to Resolve.
type Shape struct {
	Kind ShapeKind

	// Circle/ellipse: center plus radii. For a circle only RadiusX is used.
	CenterX Value
	CenterY Value
	RadiusX Value
	RadiusY Value

	// Polygon: alternating x/y pairs.
	Points []Value

	// Inset: offsets from each side of the reference box, plus an optional
	// corner radius shared by all four corners.
	Insets EdgeValues
	Round  Value

	// Path: an SVG path string. Hit testing falls back to the path's
	// bounding box; exact path containment is the rasterizer's concern.
	Path string
}

// ResolvedShape is a shape with all lengths resolved to logical pixels
// relative to a reference box, ready for containment tests.
type ResolvedShape struct {
	Kind    ShapeKind
	Center  Point
	RadiusX float64
	RadiusY float64
	Points  []Point
	Rect    Rect // inset rect, or path bounding box
	Round   float64
}

// Resolve resolves the shape against the given reference box. Percentages
// of x-like lengths use the box width, y-like lengths the box height, and
// circle radii the diagonal measure per css-shapes-1.
func (s *Shape) Resolve(ref Rect, em float64) ResolvedShape {
	out := ResolvedShape{Kind: s.Kind}
	switch s.Kind {
	case ShapeCircle:
		out.Center = Point{
			X: ref.X + s.CenterX.Resolve(ref.Width, em),
			Y: ref.Y + s.CenterY.Resolve(ref.Height, em),
		}
		diag := math.Sqrt(ref.Width*ref.Width+ref.Height*ref.Height) / math.Sqrt2
		out.RadiusX = s.RadiusX.Resolve(diag, em)
		out.RadiusY = out.RadiusX
	case ShapeEllipse:
		out.Center = Point{
			X: ref.X + s.CenterX.Resolve(ref.Width, em),
			Y: ref.Y + s.CenterY.Resolve(ref.Height, em),
		}
		out.RadiusX = s.RadiusX.Resolve(ref.Width, em)
		out.RadiusY = s.RadiusY.Resolve(ref.Height, em)
	case ShapePolygon:
		out.Points = make([]Point, 0, len(s.Points)/2)
		for i := 0; i+1 < len(s.Points); i += 2 {
			out.Points = append(out.Points, Point{
				X: ref.X + s.Points[i].Resolve(ref.Width, em),
				Y: ref.Y + s.Points[i+1].Resolve(ref.Height, em),
			})
		}
	case ShapeInset:
		out.Rect = ref.Inset(Edges{
			Top:    s.Insets.Top.Resolve(ref.Height, em),
			Right:  s.Insets.Right.Resolve(ref.Width, em),
			Bottom: s.Insets.Bottom.Resolve(ref.Height, em),
			Left:   s.Insets.Left.Resolve(ref.Width, em),
		})
		out.Round = s.Round.Resolve(ref.Width, em)
	case ShapePath:
		out.Rect = ref
	}
	return out
}

// Contains reports whether the point lies inside the resolved shape.
func (r ResolvedShape) Contains(p Point) bool {
	switch r.Kind {
	case ShapeCircle, ShapeEllipse:
		if r.RadiusX <= 0 || r.RadiusY <= 0 {
			return false
		}
		dx := (p.X - r.Center.X) / r.RadiusX
		dy := (p.Y - r.Center.Y) / r.RadiusY
		return dx*dx+dy*dy <= 1
	case ShapePolygon:
		return polygonContains(r.Points, p)
	case ShapeInset:
		if !r.Rect.Contains(p) {
			return false
		}
		return roundedRectContains(r.Rect, UniformEdges(r.Round), p)
	case ShapePath:
		return r.Rect.Contains(p)
	}
	return false
}

// polygonContains uses the even-odd ray crossing rule.
func polygonContains(pts []Point, p Point) bool {
	inside := false
	n := len(pts)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := pts[i], pts[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// roundedRectContains tests a rect whose corner radii are given per corner
// (top, right, bottom, left map to top-left, top-right, bottom-right,
// bottom-left here).
func roundedRectContains(rect Rect, radii Edges, p Point) bool {
	if !rect.Contains(p) {
		return false
	}
	corner := func(cx, cy, r float64) bool {
		if r <= 0 {
			return true
		}
		dx, dy := p.X-cx, p.Y-cy
		return dx*dx+dy*dy <= r*r
	}
	if r := radii.Top; p.X < rect.X+r && p.Y < rect.Y+r {
		return corner(rect.X+r, rect.Y+r, r)
	}
	if r := radii.Right; p.X > rect.Right()-r && p.Y < rect.Y+r {
		return corner(rect.Right()-r, rect.Y+r, r)
	}
	if r := radii.Bottom; p.X > rect.Right()-r && p.Y > rect.Bottom()-r {
		return corner(rect.Right()-r, rect.Bottom()-r, r)
	}
	if r := radii.Left; p.X < rect.X+r && p.Y > rect.Bottom()-r {
		return corner(rect.X+r, rect.Bottom()-r, r)
	}
	return true
}

// RoundedRectContains is the border-radius containment test used by the
// display-list hit tester.
func RoundedRectContains(rect Rect, radii Edges, p Point) bool {
	return roundedRectContains(rect, radii, p)
}
