package display

import (
	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// Hit is one display item under a point, topmost first in the result.
type Hit struct {
	Tag Tag
	// Local is the point in the item's own space, relative to the item's
	// bounds origin: scroll offsets and inverse transforms applied.
	Local geom.Point
	// Index is the item's position in the list; later items are higher z.
	Index int
}

// frame is one structural scope on the stack at some list position.
// Frames form a persistent parent-linked stack so every leaf can share its
// prefix.
type frame struct {
	parent *frame
	item   Item
	inv    Matrix // inverse transform for PushTransform frames
	invOK  bool
}

// HitTest walks the display list in reverse z-order and returns every
// tagged paint item containing the point. Clip stacks, basic clip shapes,
// scroll offsets and transforms are honoured; shadows never hit.
func HitTest(l *List, pt geom.Point) []Hit {
	type leaf struct {
		index int
		it    Item
		fr    *frame
	}
	var leaves []leaf
	var cur *frame
	for idx, it := range l.Items {
		switch v := it.(type) {
		case PushClip:
			cur = &frame{parent: cur, item: v}
		case PushTransform:
			inv, ok := v.Matrix.Invert2D()
			cur = &frame{parent: cur, item: v, inv: inv, invOK: ok}
		case PushEffect:
			cur = &frame{parent: cur, item: v}
		case PushScrollFrame:
			cur = &frame{parent: cur, item: v}
		case PopClip, PopTransform, PopEffect, PopScrollFrame:
			if cur != nil {
				cur = cur.parent
			}
		case Shadow:
			// decoration outside the box, not hit-testable
		default:
			leaves = append(leaves, leaf{index: idx, it: it, fr: cur})
		}
	}

	var out []Hit
	for k := len(leaves) - 1; k >= 0; k-- {
		lf := leaves[k]
		tag, ok := leafTag(lf.it)
		if !ok || tag.Node == styled.NilNode {
			continue
		}
		p, inside := mapThrough(lf.fr, pt)
		if !inside {
			continue
		}
		bounds, _ := leafBounds(lf.it)
		if !bounds.Contains(p) {
			continue
		}
		out = append(out, Hit{
			Tag:   tag,
			Local: geom.Point{X: p.X - bounds.X, Y: p.Y - bounds.Y},
			Index: lf.index,
		})
	}
	return out
}

// mapThrough maps the window point into the leaf's coordinate space,
// outermost frame first, rejecting it at the first clip it falls outside.
func mapThrough(fr *frame, pt geom.Point) (geom.Point, bool) {
	// Rebuild outermost-first order.
	var chain []*frame
	for f := fr; f != nil; f = f.parent {
		chain = append(chain, f)
	}
	p := pt
	for i := len(chain) - 1; i >= 0; i-- {
		switch v := chain[i].item.(type) {
		case PushClip:
			if !clipContains(v, p) {
				return p, false
			}
		case PushTransform:
			if !chain[i].invOK {
				return p, false
			}
			p = chain[i].inv.Apply(p)
		case PushScrollFrame:
			if !v.Clip.Contains(p) {
				return p, false
			}
			p.X += v.Offset.X
			p.Y += v.Offset.Y
		}
	}
	return p, true
}

func clipContains(c PushClip, p geom.Point) bool {
	if !c.Bounds.Contains(p) {
		return false
	}
	if hasRadii(c.Radii) {
		radii := geom.Edges{Top: c.Radii[0], Right: c.Radii[1], Bottom: c.Radii[2], Left: c.Radii[3]}
		if !geom.RoundedRectContains(c.Bounds, radii, p) {
			return false
		}
	}
	if c.Shape != nil {
		return c.Shape.Contains(p)
	}
	return true
}

// HitNodes reduces HitTest output to unique DOM nodes, topmost first.
func HitNodes(l *List, pt geom.Point) []Hit {
	hits := HitTest(l, pt)
	seen := make(map[Tag]bool, len(hits))
	out := hits[:0]
	for _, h := range hits {
		if seen[h.Tag] {
			continue
		}
		seen[h.Tag] = true
		out = append(out, h)
	}
	return out
}
