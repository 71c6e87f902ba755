package text

import "reflow/pkg/geom"

// Affinity disambiguates a caret at a cluster boundary: leading places it
// at the start of the cluster, trailing at the end.
type Affinity uint8

const (
	AffinityLeading Affinity = iota
	AffinityTrailing
)

// Cursor is a logical caret location: a grapheme-cluster id plus affinity.
type Cursor struct {
	Cluster  int
	Affinity Affinity
}

// SelectionRange is a half-open logical selection [Start, End).
type SelectionRange struct {
	Start Cursor
	End   Cursor
}

// IsEmpty reports a collapsed selection.
func (s SelectionRange) IsEmpty() bool {
	return s.Start.Cluster == s.End.Cluster && s.Start.Affinity == s.End.Affinity
}

// Normalized returns the range with Start before End.
func (s SelectionRange) Normalized() SelectionRange {
	if s.End.Cluster < s.Start.Cluster {
		return SelectionRange{Start: s.End, End: s.Start}
	}
	return s
}

// CursorPosition is the physical caret geometry used for painting.
type CursorPosition struct {
	Point  geom.Point
	Height float64
}

const caretWidth = 1.0

// CaretRect returns the one-pixel-wide caret rect for a cursor, in
// run-local coordinates. A cursor past the last cluster sits at the end
// of the final line.
func (r *ShapedRun) CaretRect(c Cursor) geom.Rect {
	n := r.Words.ClusterCount()
	if n == 0 {
		return geom.Rect{Width: caretWidth, Height: r.LineHeight}
	}
	cluster := c.Cluster
	trailing := c.Affinity == AffinityTrailing
	if cluster >= n {
		cluster = n - 1
		trailing = true
	}
	cr := r.ClusterRect(cluster)
	x := cr.X
	if trailing {
		x = cr.X + cr.Width
	}
	return geom.Rect{X: x, Y: cr.Y, Width: caretWidth, Height: r.LineHeight}
}

// CursorPositionFor converts a cursor to physical caret geometry given the
// run's origin on the canvas.
func (r *ShapedRun) CursorPositionFor(c Cursor, origin geom.Point) CursorPosition {
	rect := r.CaretRect(c)
	return CursorPosition{
		Point:  geom.Point{X: origin.X + rect.X, Y: origin.Y + rect.Y},
		Height: rect.Height,
	}
}

// SelectionRects returns the union of per-line rects covering the
// selected clusters [Start, End), run-local. Rects on one line are merged
// so the cover is gapless within a line.
func (r *ShapedRun) SelectionRects(sel SelectionRange) []geom.Rect {
	sel = sel.Normalized()
	start, end := sel.Start.Cluster, sel.End.Cluster
	n := r.Words.ClusterCount()
	if start >= end || start >= n {
		return nil
	}
	if end > n {
		end = n
	}

	var out []geom.Rect
	cur := geom.Rect{}
	curLine := -1
	for c := start; c < end; c++ {
		cr := r.ClusterRect(c)
		line := r.clusterLine[c]
		if line != curLine {
			if curLine >= 0 && cur.Width > 0 {
				out = append(out, cur)
			}
			cur = cr
			curLine = line
			continue
		}
		// extend to cover the cluster, including any pen gap between them
		right := cr.X + cr.Width
		if right > cur.X+cur.Width {
			cur.Width = right - cur.X
		}
	}
	if curLine >= 0 && cur.Width > 0 {
		out = append(out, cur)
	}
	return out
}
