package layout

import (
	"testing"

	"reflow/pkg/styled"
)

func scrollStyle(ov styled.Overflow, h float64) *styled.ComputedStyle {
	return block(withHeight(h), func(s *styled.ComputedStyle) {
		s.OverflowY = ov
	})
}

func TestOverflowAutoDiscoveredWhenContentSpills(t *testing.T) {
	dom := styled.NewBody(3)
	sc := dom.AddElement(dom.Root(), "div", scrollStyle(styled.OverflowAuto, 100))
	dom.AddElement(sc, "div", block(withHeight(300)))

	res := layoutOnce(t, dom, 800, 600)
	if len(res.ScrollContainers) != 1 {
		t.Fatalf("ScrollContainers = %d, want 1", len(res.ScrollContainers))
	}
	c := res.ScrollContainers[0]
	if !c.OverflowY || c.OverflowX {
		t.Errorf("overflow axes = (%v, %v), want (false, true)", c.OverflowX, c.OverflowY)
	}
	if !near(c.ParentRect.Height, 100) {
		t.Errorf("ParentRect.Height = %.1f, want 100", c.ParentRect.Height)
	}
	if !near(c.ChildRect.Height, 300) {
		t.Errorf("ChildRect.Height = %.1f, want 300", c.ChildRect.Height)
	}
	// The container node itself must carry the derived ID.
	n := res.Tree.Node(res.Tree.ByDom(sc))
	if n.ScrollID != c.ID {
		t.Error("container node not tagged with its scroll ID")
	}
}

func TestOverflowAutoIgnoredWhenContentFits(t *testing.T) {
	dom := styled.NewBody(3)
	sc := dom.AddElement(dom.Root(), "div", scrollStyle(styled.OverflowAuto, 100))
	dom.AddElement(sc, "div", block(withHeight(40)))

	res := layoutOnce(t, dom, 800, 600)
	if len(res.ScrollContainers) != 0 {
		t.Errorf("ScrollContainers = %d, want 0 when content fits", len(res.ScrollContainers))
	}
}

func TestOverflowScrollAlwaysListed(t *testing.T) {
	dom := styled.NewBody(3)
	sc := dom.AddElement(dom.Root(), "div", scrollStyle(styled.OverflowScroll, 100))
	dom.AddElement(sc, "div", block(withHeight(40)))

	res := layoutOnce(t, dom, 800, 600)
	if len(res.ScrollContainers) != 1 {
		t.Fatalf("ScrollContainers = %d, want 1 for overflow:scroll", len(res.ScrollContainers))
	}
	if !res.ScrollContainers[0].OverflowY {
		t.Error("overflow:scroll container not scrollable on y")
	}
}

func TestScrollIDStableAcrossPasses(t *testing.T) {
	build := func() *styled.Dom {
		dom := styled.NewBody(3)
		sc := dom.AddElement(dom.Root(), "div", scrollStyle(styled.OverflowAuto, 40))
		dom.AddText(sc, "a long run of text that spills well past the container edge and keeps going")
		return dom
	}
	a := layoutOnce(t, build(), 200, 600)
	b := layoutOnce(t, build(), 200, 600)
	if len(a.ScrollContainers) != 1 || len(b.ScrollContainers) != 1 {
		t.Fatalf("containers = %d/%d, want 1/1", len(a.ScrollContainers), len(b.ScrollContainers))
	}
	if a.ScrollContainers[0].ID != b.ScrollContainers[0].ID {
		t.Error("scroll ID changed between identical passes")
	}
}
