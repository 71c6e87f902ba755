package display

import (
	"reflow/pkg/geom"
	"reflow/pkg/layout"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// SelectionGeometry answers caret and selection-rectangle queries against
// a laid-out tree. The font manager re-measures cluster prefixes for
// fragments that did not keep a full shaped run.
type SelectionGeometry struct {
	Text *text.Manager
}

// SelectionRects returns canvas-coordinate rectangles covering the
// selected grapheme clusters of one text node: per line, gapless within a
// line.
func (g *SelectionGeometry) SelectionRects(tree *layout.Tree, node styled.NodeID, sel text.SelectionRange) []geom.Rect {
	idx := tree.ByDom(node)
	if idx == layout.NilIdx {
		return nil
	}
	n := tree.Node(idx)
	if n.Shaped != nil {
		rects := n.Shaped.SelectionRects(sel)
		out := make([]geom.Rect, len(rects))
		for i, r := range rects {
			out[i] = r.Translate(n.Pos.X, n.Pos.Y)
		}
		return out
	}
	return g.fragmentRects(tree, idx, sel)
}

// fragmentRects covers a selection through the line fragments of the
// node's inline container, re-measuring cluster prefixes.
func (g *SelectionGeometry) fragmentRects(tree *layout.Tree, idx layout.NodeIdx, sel text.SelectionRange) []geom.Rect {
	n := tree.Node(idx)
	if n.Words == nil {
		return nil
	}
	sel = sel.Normalized()
	start, end := sel.Start.Cluster, sel.End.Cluster
	if cc := n.Words.ClusterCount(); end > cc {
		end = cc
	}
	if start >= end {
		return nil
	}
	container := containerOf(tree, idx)
	if container == layout.NilIdx {
		return nil
	}
	req := faceOf(n.Style)

	var out []geom.Rect
	for _, line := range tree.Node(container).Lines {
		for _, frag := range line.Fragments {
			if frag.Node != idx || frag.ClusterStart < 0 {
				continue
			}
			cs := max(start, frag.ClusterStart)
			ce := min(end, frag.ClusterEnd)
			if cs >= ce {
				continue
			}
			x := frag.Rect.X + g.clusterSpan(n.Words, req, frag.ClusterStart, cs)
			w := g.clusterSpan(n.Words, req, cs, ce)
			if w <= 0 {
				continue
			}
			out = append(out, geom.Rect{X: x, Y: frag.Rect.Y, Width: w, Height: frag.Rect.Height})
		}
	}
	return out
}

// clusterSpan sums the measured widths of clusters [from, to).
func (g *SelectionGeometry) clusterSpan(w *text.Words, req text.FaceRequest, from, to int) float64 {
	var sum float64
	for c := from; c < to; c++ {
		sum += g.Text.MeasureString(w.ClusterString(c), req)
	}
	return sum
}

// CaretRect returns the one-pixel-wide caret rectangle for a cursor on a
// text node, in canvas coordinates. Leading affinity sits at the cluster's
// start edge, trailing at its end.
func (g *SelectionGeometry) CaretRect(tree *layout.Tree, node styled.NodeID, c text.Cursor) (geom.Rect, bool) {
	idx := tree.ByDom(node)
	if idx == layout.NilIdx {
		return geom.Rect{}, false
	}
	n := tree.Node(idx)
	if n.Shaped != nil {
		r := n.Shaped.CaretRect(c)
		return r.Translate(n.Pos.X, n.Pos.Y), true
	}
	if n.Words == nil {
		return geom.Rect{}, false
	}
	container := containerOf(tree, idx)
	if container == layout.NilIdx {
		return geom.Rect{}, false
	}

	cluster := c.Cluster
	trailing := c.Affinity == text.AffinityTrailing
	if cc := n.Words.ClusterCount(); cluster >= cc {
		cluster = cc - 1
		trailing = true
	}
	if cluster < 0 {
		return geom.Rect{}, false
	}
	req := faceOf(n.Style)
	for _, line := range tree.Node(container).Lines {
		for _, frag := range line.Fragments {
			if frag.Node != idx || frag.ClusterStart < 0 {
				continue
			}
			if cluster < frag.ClusterStart || cluster >= frag.ClusterEnd {
				continue
			}
			to := cluster
			if trailing {
				to++
			}
			x := frag.Rect.X + g.clusterSpan(n.Words, req, frag.ClusterStart, to)
			return geom.Rect{X: x, Y: frag.Rect.Y, Width: 1, Height: frag.Rect.Height}, true
		}
	}
	return geom.Rect{}, false
}

// containerOf finds the nearest ancestor holding line boxes.
func containerOf(tree *layout.Tree, idx layout.NodeIdx) layout.NodeIdx {
	for a := tree.Node(idx).Parent; a != layout.NilIdx; a = tree.Node(a).Parent {
		if len(tree.Node(a).Lines) > 0 {
			return a
		}
	}
	return layout.NilIdx
}
