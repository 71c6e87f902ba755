package layout

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// FragmentationContext maps the vertically unbounded canvas onto pages.
// Page i's content occupies [PageStartY(i), PageEndY(i)); between pages
// sits a dead zone the height of the bottom plus top page margins, so the
// page stride on the canvas equals the physical page height.
type FragmentationContext struct {
	pageSize geom.Size
	margin   geom.Edges
	header   float64 // reserved band below the top margin
	footer   float64 // reserved band above the bottom margin
	contentH float64
	stride   float64
	top      float64 // canvas y where page 0 content starts
}

func NewFragmentationContext(pageSize geom.Size, margin geom.Edges) *FragmentationContext {
	f := &FragmentationContext{
		pageSize: pageSize,
		margin:   margin,
		stride:   pageSize.Height,
	}
	f.recompute()
	return f
}

// WithHeaderFooter reserves per-page bands for running headers and
// footers, shrinking the content band. The bands sit inside the page box,
// between the margins and the content.
func (f *FragmentationContext) WithHeaderFooter(header, footer float64) *FragmentationContext {
	f.header = math.Max(0, header)
	f.footer = math.Max(0, footer)
	f.recompute()
	return f
}

func (f *FragmentationContext) recompute() {
	f.contentH = f.pageSize.Height - f.margin.Vertical() - f.header - f.footer
	f.top = f.margin.Top + f.header
}

// PageSize returns the physical page size.
func (f *FragmentationContext) PageSize() geom.Size { return f.pageSize }

// Margin returns the page margins.
func (f *FragmentationContext) Margin() geom.Edges { return f.margin }

// ContentHeight is the flow height available per page.
func (f *FragmentationContext) ContentHeight() float64 { return f.contentH }

// ContentTop is the page-local y where the content band starts: the top
// margin plus any header band.
func (f *FragmentationContext) ContentTop() float64 { return f.margin.Top + f.header }

// PageForY returns the page index owning canvas coordinate y.
func (f *FragmentationContext) PageForY(y float64) int {
	p := int(math.Floor((y - f.top) / f.stride))
	if p < 0 {
		p = 0
	}
	return p
}

// PageStartY returns the canvas y of page i's first content line.
func (f *FragmentationContext) PageStartY(i int) float64 { return f.top + float64(i)*f.stride }

// PageEndY returns the canvas y just past page i's content.
func (f *FragmentationContext) PageEndY(i int) float64 { return f.PageStartY(i) + f.contentH }

func (f *FragmentationContext) remainingOnPage(y float64) float64 {
	return f.PageEndY(f.PageForY(y)) - y
}

func (f *FragmentationContext) nextPageStart(y float64) float64 {
	return f.PageStartY(f.PageForY(y) + 1)
}

// atPageStart tolerates float drift from margin arithmetic.
func (f *FragmentationContext) atPageStart(y float64) bool {
	return math.Abs(y-f.PageStartY(f.PageForY(y))) < 0.01
}

// ApplyBreakRules inspects a just-placed block-level box and shifts it
// down the canvas when a break rule forbids its current position. The
// caller reads the final position back after the call, so later siblings
// flow from the shifted spot.
func (f *FragmentationContext) ApplyBreakRules(tree *Tree, i NodeIdx) {
	n := tree.Node(i)
	topY := n.Pos.Y
	h := n.BorderSize().Height

	if f.forcedBefore(tree, i) && !f.atPageStart(topY) {
		dy := f.nextPageStart(topY) - topY
		tree.TranslateSubtree(i, 0, dy)
		topY += dy
	}

	if h <= 0 || !f.crossesBoundary(topY, h) || h > f.contentH {
		// Taller than a page: nothing can save it, let it overflow.
		return
	}

	switch {
	case f.monolithic(n) || f.avoidsInside(tree, i):
		tree.TranslateSubtree(i, 0, f.nextPageStart(topY)-topY)
	case len(n.Lines) > 0:
		f.applyOrphansWidows(tree, i)
	}
}

func (f *FragmentationContext) crossesBoundary(y, h float64) bool {
	return f.PageForY(y) != f.PageForY(y+h-0.01) || h > f.remainingOnPage(y)
}

// forcedBefore honors the box's own break-before and the previous in-flow
// sibling's break-after.
func (f *FragmentationContext) forcedBefore(tree *Tree, i NodeIdx) bool {
	n := tree.Node(i)
	if n.Style.BreakBefore == styled.BreakPage {
		return true
	}
	for s := n.PrevSibling; s != NilIdx; s = tree.Node(s).PrevSibling {
		sn := tree.Node(s)
		if sn.Style.Position.IsOutOfFlow() || sn.Style.Float != styled.FloatNone {
			continue
		}
		return sn.Style.BreakAfter == styled.BreakPage
	}
	return false
}

// Replaced content never splits across pages.
func (f *FragmentationContext) monolithic(n *LayoutNode) bool {
	if n.Data == nil {
		return false
	}
	switch n.Data.Type {
	case styled.ImageNode, styled.IFrameNode, styled.GLNode:
		return true
	}
	return false
}

func (f *FragmentationContext) avoidsInside(tree *Tree, i NodeIdx) bool {
	for ; i != NilIdx; i = tree.Node(i).Parent {
		if tree.Node(i).Style.BreakInside == styled.BreakInsideAvoid {
			return true
		}
	}
	return false
}

// applyOrphansWidows pushes a line container to the next page when the
// split would leave too few lines on either side. A finer engine would
// move individual lines; pushing the whole box keeps every line interior
// to a page, which satisfies both minimums.
func (f *FragmentationContext) applyOrphansWidows(tree *Tree, i NodeIdx) {
	n := tree.Node(i)
	boundary := f.PageEndY(f.PageForY(n.Pos.Y))
	before, after := 0, 0
	for _, line := range n.Lines {
		if line.Rect.Bottom() <= boundary {
			before++
		} else {
			after++
		}
	}
	orphans := max(1, n.Style.Orphans)
	widows := max(1, n.Style.Widows)
	if before < orphans || after < widows {
		tree.TranslateSubtree(i, 0, f.nextPageStart(n.Pos.Y)-n.Pos.Y)
	}
}

// AssignPages stamps every in-flow node with the page owning its border-box
// top and returns the page count.
func (f *FragmentationContext) AssignPages(tree *Tree) int {
	last := 0
	tree.WalkPre(tree.Root, func(i NodeIdx) bool {
		n := tree.Node(i)
		n.PageIndex = f.PageForY(n.Pos.Y)
		if end := f.pageForBottom(n.Pos.Y + n.BorderSize().Height); end > last {
			last = end
		} else if n.PageIndex > last {
			last = n.PageIndex
		}
		return true
	})
	return last + 1
}

// pageForBottom is PageForY rounding dead-zone coordinates up: a box whose
// end reaches past a page's content still continues onto the next page.
func (f *FragmentationContext) pageForBottom(y float64) int {
	p := f.PageForY(math.Max(0, y-0.01))
	if y-0.01 > f.PageEndY(p) {
		p++
	}
	return p
}

// PlaceRunning lays out position:running() subtrees in page-margin
// coordinates. The boxes carry PageIndex -1, meaning the display stage
// repeats them on every page: a box with a bottom inset goes in the
// bottom margin area, everything else in the top.
func (f *FragmentationContext) PlaceRunning(tree *Tree, running []RunningBox, p *pass) {
	contentW := f.pageSize.Width - f.margin.Horizontal()
	for _, rb := range running {
		n := tree.Node(rb.Idx)
		n.Box = resolveBox(n.Style, contentW)

		// A reserved header/footer band hosts the box; without one it
		// goes into the page margin itself.
		bandTop, bandH := 0.0, f.margin.Top
		if f.header > 0 {
			bandTop, bandH = f.margin.Top, f.header
		}
		if !n.Style.Insets.Bottom.IsAuto() {
			bandTop, bandH = f.pageSize.Height-f.margin.Bottom, f.margin.Bottom
			if f.footer > 0 {
				bandTop, bandH = f.pageSize.Height-f.margin.Bottom-f.footer, f.footer
			}
		}
		n.Pos = geom.Point{
			X: f.margin.Left + n.Box.Margin.Left,
			Y: bandTop + n.Box.Margin.Top,
		}
		p.layoutBox(rb.Idx, NewConstraintSpace(geom.Size{Width: contentW, Height: bandH}), true)

		tree.WalkPre(rb.Idx, func(c NodeIdx) bool {
			tree.Node(c).PageIndex = -1
			return true
		})
	}
}
