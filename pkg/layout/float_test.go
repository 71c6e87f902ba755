package layout

import (
	"testing"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

func floatStyle(side styled.Float, w, h float64) *styled.ComputedStyle {
	return block(withSize(geom.Px(w), geom.Px(h)), func(s *styled.ComputedStyle) {
		s.Float = side
	})
}

func TestFloatLeftSitsAtContentEdge(t *testing.T) {
	dom := styled.NewBody(1)
	f := dom.AddElement(dom.Root(), "div", floatStyle(styled.FloatLeft, 100, 50))
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	checkRect(t, "float", boxOf(t, res, f), 0, 0, 100, 50)
	// Block siblings flow under the float; only their inline content avoids it.
	if got := boxOf(t, res, b).Y; !near(got, 0) {
		t.Errorf("sibling.Y = %.1f, want 0", got)
	}
}

func TestFloatRightSitsAtFarEdge(t *testing.T) {
	dom := styled.NewBody(1)
	f := dom.AddElement(dom.Root(), "div", floatStyle(styled.FloatRight, 100, 50))
	dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, f).X; !near(got, 700) {
		t.Errorf("float.X = %.1f, want 700", got)
	}
}

func TestSecondFloatStacksBeside(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", floatStyle(styled.FloatLeft, 100, 50))
	f2 := dom.AddElement(dom.Root(), "div", floatStyle(styled.FloatLeft, 100, 50))
	dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	checkRect(t, "second float", boxOf(t, res, f2), 100, 0, 100, 50)
}

func TestFloatDropsWhenBandFull(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", floatStyle(styled.FloatLeft, 500, 50))
	f2 := dom.AddElement(dom.Root(), "div", floatStyle(styled.FloatLeft, 400, 40))
	dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	// 500 + 400 exceeds the 800px band, so the second float starts below
	// the first (CSS 2.2 §9.5.1 rule 4).
	checkRect(t, "dropped float", boxOf(t, res, f2), 0, 50, 400, 40)
}

func TestClearMovesBelowFloat(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", floatStyle(styled.FloatLeft, 100, 50))
	c := dom.AddElement(dom.Root(), "div", block(withHeight(30), func(s *styled.ComputedStyle) {
		s.Clear = styled.ClearLeft
	}))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, c).Y; !near(got, 50) {
		t.Errorf("cleared.Y = %.1f, want 50", got)
	}
}

func TestBFCRootGrowsToContainFloats(t *testing.T) {
	dom := styled.NewBody(1)
	p := dom.AddElement(dom.Root(), "div", block(func(s *styled.ComputedStyle) {
		s.OverflowY = styled.OverflowHidden
	}))
	dom.AddElement(p, "div", floatStyle(styled.FloatLeft, 100, 50))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, p).Height; !near(got, 50) {
		t.Errorf("bfc root height = %.1f, want 50 (contains its float)", got)
	}
}

func TestTextFlowsBesideFloat(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", floatStyle(styled.FloatLeft, 100, 50))
	tdiv := dom.AddElement(dom.Root(), "div", block())
	dom.AddText(tdiv, "hi")

	res := layoutOnce(t, dom, 800, 600)
	idx := res.Tree.ByDom(tdiv)
	n := res.Tree.Node(idx)
	if len(n.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(n.Lines))
	}
	if got := n.Lines[0].Rect.X; !near(got, 100) {
		t.Errorf("line.X = %.1f, want 100 (pushed right of the float)", got)
	}
}

func TestFloatShrinksToFitContent(t *testing.T) {
	dom := styled.NewBody(1)
	f := dom.AddElement(dom.Root(), "div", block(func(s *styled.ComputedStyle) {
		s.Float = styled.FloatLeft
	}))
	dom.AddText(f, "hello")
	dom.AddElement(dom.Root(), "div", block(withHeight(10)))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, f).Width; !near(got, 5*charW) {
		t.Errorf("float width = %.1f, want %.1f (shrink-to-fit)", got, 5*charW)
	}
}
