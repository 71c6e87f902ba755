package display

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/pkg/geom"
	"reflow/pkg/images"
	"reflow/pkg/layout"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

var pageOpts = layout.Options{
	PageSize:   geom.Size{Width: 600, Height: 1100},
	PageMargin: geom.UniformEdges(50),
}

func layoutPaged(t *testing.T, dom *styled.Dom) *layout.Result {
	t.Helper()
	eng := layout.NewEngine(text.NewPlaceholderManager(), images.NewCache(nil), nil)
	res, err := eng.Layout(dom, layout.NewCache(), pageOpts)
	require.NoError(t, err)
	return res
}

func rectYs(items []Item) []float64 {
	var ys []float64
	for _, it := range items {
		if r, ok := it.(Rect); ok {
			ys = append(ys, r.Bounds.Y)
		}
	}
	return ys
}

func TestPaginateSplitsBlocksAcrossPages(t *testing.T) {
	dom := styled.NewBody(1)
	for i := 0; i < 5; i++ {
		dom.AddElement(dom.Root(), "div", sized(500, 400, func(s *styled.ComputedStyle) {
			s.BreakInside = styled.BreakInsideAvoid
			s.Background.Color = geom.RGB(10, 10, 10)
		}))
	}

	res := layoutPaged(t, dom)
	require.Equal(t, 3, res.PageCount)

	list := Build(res, Options{})
	frag := layout.NewFragmentationContext(pageOpts.PageSize, pageOpts.PageMargin)
	pages := Paginate(list, frag, res.PageCount)
	require.Len(t, pages, 3)

	// Page content area is 1000 tall; 400-tall unbreakable blocks pack
	// two per page with the fifth spilling onto a third.
	if diff := cmp.Diff([]float64{50, 450}, rectYs(pages[0].Items)); diff != "" {
		t.Errorf("page 0 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{50, 450}, rectYs(pages[1].Items)); diff != "" {
		t.Errorf("page 1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{50}, rectYs(pages[2].Items)); diff != "" {
		t.Errorf("page 2 mismatch (-want +got):\n%s", diff)
	}

	// Everything lands inside the physical page's content box.
	for _, pg := range pages {
		for _, it := range pg.Items {
			r, leaf := leafBounds(it)
			if !leaf {
				continue
			}
			assert.GreaterOrEqual(t, r.Y, 50.0, "page %d", pg.Index)
			assert.LessOrEqual(t, r.Y+r.Height, 1050.0, "page %d", pg.Index)
		}
	}
}

func TestPaginateKeepsStructuralItemsBalanced(t *testing.T) {
	dom := styled.NewBody(1)
	clip := dom.AddElement(dom.Root(), "div", sized(500, 1800, func(s *styled.ComputedStyle) {
		s.OverflowY = styled.OverflowHidden
	}))
	dom.AddElement(clip, "div", sized(500, 1800, func(s *styled.ComputedStyle) {
		s.Background.Color = geom.RGB(11, 11, 11)
	}))

	res := layoutPaged(t, dom)
	require.Equal(t, 2, res.PageCount)

	frag := layout.NewFragmentationContext(pageOpts.PageSize, pageOpts.PageMargin)
	for _, pg := range Paginate(Build(res, Options{}), frag, res.PageCount) {
		depth := 0
		for _, it := range pg.Items {
			switch it.(type) {
			case PushClip, PushTransform, PushEffect, PushScrollFrame:
				depth++
			case PopClip, PopTransform, PopEffect, PopScrollFrame:
				depth--
				require.GreaterOrEqual(t, depth, 0, "page %d: pop without push", pg.Index)
			}
		}
		assert.Zero(t, depth, "page %d: unbalanced structure", pg.Index)
	}
}

func TestPaginateReplaysRepeatHeaders(t *testing.T) {
	frag := layout.NewFragmentationContext(pageOpts.PageSize, pageOpts.PageMargin)
	header := Rect{Bounds: geom.Rect{X: 50, Y: 50, Width: 500, Height: 30}, Color: geom.RGB(1, 1, 1)}
	// A table spanning canvas y 50..1850: pages 0 and 1.
	body := Rect{Bounds: geom.Rect{X: 50, Y: 1150, Width: 500, Height: 700}, Color: geom.RGB(2, 2, 2)}
	l := &List{
		Items: []Item{header, body},
		Repeats: []RepeatGroup{{
			Items:       []Item{header},
			HeaderY:     50,
			TableBottom: 1850,
		}},
	}

	pages := Paginate(l, frag, 2)

	// Page 0 carries the original header, no replay.
	if diff := cmp.Diff([]float64{50}, rectYs(pages[0].Items)); diff != "" {
		t.Errorf("page 0 mismatch (-want +got):\n%s", diff)
	}
	// Page 1 carries the body plus a header replayed at the content top.
	if diff := cmp.Diff([]float64{50, 50}, rectYs(pages[1].Items)); diff != "" {
		t.Errorf("page 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginateStampsRunningOnEveryPage(t *testing.T) {
	frag := layout.NewFragmentationContext(pageOpts.PageSize, pageOpts.PageMargin)
	folio := Rect{Bounds: geom.Rect{X: 50, Y: 1060, Width: 500, Height: 20}, Color: geom.RGB(3, 3, 3)}
	l := &List{
		Items:   []Item{Rect{Bounds: geom.Rect{X: 50, Y: 50, Width: 500, Height: 3000}, Color: geom.RGB(4, 4, 4)}},
		Running: []RunningGroup{{Name: "footer", Items: []Item{folio}}},
	}

	pages := Paginate(l, frag, 3)
	for _, pg := range pages {
		found := false
		for _, it := range pg.Items {
			if r, ok := it.(Rect); ok && r.Bounds == folio.Bounds {
				found = true
			}
		}
		assert.True(t, found, "page %d missing running footer", pg.Index)
	}
}
