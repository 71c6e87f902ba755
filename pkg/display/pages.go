package display

import (
	"reflow/pkg/geom"
	"reflow/pkg/layout"
)

// Page is the display list of one physical page, in page-local coordinates
// with the origin at the page's top-left corner.
type Page struct {
	Index int
	Items []Item
}

// Paginate splits a continuous display list into per-page lists. Paint
// items are kept when their bounds intersect the page's content band and
// translated into page-local coordinates; structural push/pop items are
// always kept so nesting stays balanced. Repeating table headers are
// replayed at the top of every later page their table spans, and running
// elements are stamped onto every page.
func Paginate(l *List, frag *layout.FragmentationContext, pageCount int) []Page {
	out := make([]Page, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		out = append(out, paginateOne(l, frag, i))
	}
	return out
}

func paginateOne(l *List, frag *layout.FragmentationContext, page int) Page {
	band := geom.Rect{
		X:      0,
		Y:      frag.PageStartY(page),
		Width:  frag.PageSize().Width,
		Height: frag.ContentHeight(),
	}
	// Canvas y PageStartY(page) lands at the content top (margin plus
	// header band) on the physical page.
	dy := frag.ContentTop() - frag.PageStartY(page)

	p := Page{Index: page}
	for _, it := range l.Items {
		if r, leaf := leafBounds(it); leaf {
			if !r.Intersects(band) {
				continue
			}
		}
		p.Items = append(p.Items, translateItem(it, 0, dy))
	}

	for _, rep := range l.Repeats {
		first := frag.PageForY(rep.HeaderY)
		last := frag.PageForY(rep.TableBottom - 0.01)
		if page <= first || page > last {
			continue
		}
		// Replay the header at the page's content top.
		hdy := frag.PageStartY(page) - rep.HeaderY + dy
		for _, it := range rep.Items {
			p.Items = append(p.Items, translateItem(it, 0, hdy))
		}
	}

	// Running elements were laid out in page-local coordinates already.
	for _, run := range l.Running {
		p.Items = append(p.Items, run.Items...)
	}
	return p
}
