package layout

import (
	"math"
	"testing"

	"reflow/pkg/geom"
	"reflow/pkg/images"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// The placeholder text manager gives every grapheme a 0.5em advance, so at
// the default 16px font a character is 8px wide and a line 19.2px tall.
const (
	charW = 8.0
	lineH = 19.2
)

func testEngine() *Engine {
	return NewEngine(text.NewPlaceholderManager(), images.NewCache(nil), nil)
}

func layoutOnce(t *testing.T, dom *styled.Dom, w, h float64) *Result {
	t.Helper()
	res, err := testEngine().Layout(dom, NewCache(), Options{Viewport: geom.Size{Width: w, Height: h}})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return res
}

func boxOf(t *testing.T, res *Result, id styled.NodeID) geom.Rect {
	t.Helper()
	idx := res.Tree.ByDom(id)
	if idx == NilIdx {
		t.Fatalf("no layout box for dom node %d", id)
	}
	return res.Tree.Node(idx).BorderBox()
}

func near(a, b float64) bool { return math.Abs(a-b) < 0.1 }

func checkRect(t *testing.T, name string, got geom.Rect, x, y, w, h float64) {
	t.Helper()
	if !near(got.X, x) || !near(got.Y, y) || !near(got.Width, w) || !near(got.Height, h) {
		t.Errorf("%s = (%.1f,%.1f %.1fx%.1f), want (%.1f,%.1f %.1fx%.1f)",
			name, got.X, got.Y, got.Width, got.Height, x, y, w, h)
	}
}

func block(mods ...func(*styled.ComputedStyle)) *styled.ComputedStyle {
	s := styled.DefaultBlock()
	for _, m := range mods {
		m(s)
	}
	return s
}

func withSize(w, h geom.Value) func(*styled.ComputedStyle) {
	return func(s *styled.ComputedStyle) {
		s.Width = w
		s.Height = h
	}
}

func withHeight(px float64) func(*styled.ComputedStyle) {
	return func(s *styled.ComputedStyle) { s.Height = geom.Px(px) }
}

func TestBlockStacking(t *testing.T) {
	dom := styled.NewBody(1)
	a := dom.AddElement(dom.Root(), "div", block(withHeight(50)))
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	checkRect(t, "a", boxOf(t, res, a), 0, 0, 800, 50)
	checkRect(t, "b", boxOf(t, res, b), 0, 50, 800, 30)
}

func TestSiblingMarginsCollapse(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", block(withHeight(50), func(s *styled.ComputedStyle) {
		s.Margin.Bottom = geom.Px(20)
	}))
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30), func(s *styled.ComputedStyle) {
		s.Margin.Top = geom.Px(10)
	}))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, b).Y; !near(got, 70) {
		t.Errorf("b.Y = %.1f, want 70 (collapsed margin is max(20,10))", got)
	}
}

func TestNegativeMarginJoinsCollapse(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", block(withHeight(50), func(s *styled.ComputedStyle) {
		s.Margin.Bottom = geom.Px(-10)
	}))
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30), func(s *styled.ComputedStyle) {
		s.Margin.Top = geom.Px(30)
	}))

	res := layoutOnce(t, dom, 800, 600)
	// max positive (30) plus most negative (-10)
	if got := boxOf(t, res, b).Y; !near(got, 70) {
		t.Errorf("b.Y = %.1f, want 70", got)
	}
}

func TestChildMarginEscapesThroughParent(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", block(withHeight(40)))
	p := dom.AddElement(dom.Root(), "div", block(func(s *styled.ComputedStyle) {
		s.Margin.Top = geom.Px(10)
	}))
	c := dom.AddElement(p, "div", block(withHeight(20), func(s *styled.ComputedStyle) {
		s.Margin.Top = geom.Px(30)
	}))

	res := layoutOnce(t, dom, 800, 600)
	pb := boxOf(t, res, p)
	cb := boxOf(t, res, c)
	if !near(pb.Y, 70) {
		t.Errorf("parent.Y = %.1f, want 70 (margins 10 and 30 collapse)", pb.Y)
	}
	if !near(cb.Y, pb.Y) {
		t.Errorf("child.Y = %.1f, want flush with parent at %.1f", cb.Y, pb.Y)
	}
	if !near(pb.Height, 20) {
		t.Errorf("parent.Height = %.1f, want 20", pb.Height)
	}
}

func TestPaddingContainsChildMargin(t *testing.T) {
	dom := styled.NewBody(1)
	p := dom.AddElement(dom.Root(), "div", block(func(s *styled.ComputedStyle) {
		s.Padding.Top = geom.Px(5)
	}))
	c := dom.AddElement(p, "div", block(withHeight(20), func(s *styled.ComputedStyle) {
		s.Margin.Top = geom.Px(30)
	}))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, c).Y; !near(got, 35) {
		t.Errorf("child.Y = %.1f, want 35 (padding blocks the margin escape)", got)
	}
	if got := boxOf(t, res, p).Y; !near(got, 0) {
		t.Errorf("parent.Y = %.1f, want 0", got)
	}
}

func TestEmptyBlockCollapsesThrough(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", block(withHeight(50), func(s *styled.ComputedStyle) {
		s.Margin.Bottom = geom.Px(20)
	}))
	e := dom.AddElement(dom.Root(), "div", block(func(s *styled.ComputedStyle) {
		s.Margin.Bottom = geom.Px(30)
	}))
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, b).Y; !near(got, 80) {
		t.Errorf("b.Y = %.1f, want 80 (20 and 30 join one collapsed set)", got)
	}
	if got := boxOf(t, res, e).Height; !near(got, 0) {
		t.Errorf("empty.Height = %.1f, want 0", got)
	}
}

func TestPercentWidth(t *testing.T) {
	dom := styled.NewBody(1)
	c := dom.AddElement(dom.Root(), "div", block(withSize(geom.Percent(50), geom.Px(10))))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, c).Width; !near(got, 400) {
		t.Errorf("width = %.1f, want 400", got)
	}
}

func TestAutoMarginsCenterFixedWidth(t *testing.T) {
	dom := styled.NewBody(1)
	c := dom.AddElement(dom.Root(), "div", block(withSize(geom.Px(200), geom.Px(10)), func(s *styled.ComputedStyle) {
		s.Margin.Left = geom.Auto()
		s.Margin.Right = geom.Auto()
	}))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, c).X; !near(got, 300) {
		t.Errorf("x = %.1f, want 300", got)
	}
}

func TestExplicitHeightWins(t *testing.T) {
	dom := styled.NewBody(1)
	p := dom.AddElement(dom.Root(), "div", block(withHeight(120)))
	dom.AddElement(p, "div", block(withHeight(10)))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, p).Height; !near(got, 120) {
		t.Errorf("height = %.1f, want 120", got)
	}
}

func TestMaxWidthClampsAutoWidth(t *testing.T) {
	dom := styled.NewBody(1)
	c := dom.AddElement(dom.Root(), "div", block(withHeight(10), func(s *styled.ComputedStyle) {
		s.MaxWidth = geom.Px(300)
	}))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, c).Width; !near(got, 300) {
		t.Errorf("width = %.1f, want 300", got)
	}
}

func TestDisplayNoneProducesNoBox(t *testing.T) {
	dom := styled.NewBody(1)
	gone := dom.AddElement(dom.Root(), "div", block(func(s *styled.ComputedStyle) {
		s.Display = styled.DisplayNone
	}))
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	if res.Tree.ByDom(gone) != NilIdx {
		t.Error("display:none node got a layout box")
	}
	if got := boxOf(t, res, b).Y; !near(got, 0) {
		t.Errorf("b.Y = %.1f, want 0", got)
	}
}

func TestAnonymousBlockWrapsInlineRun(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddText(dom.Root(), "hello")
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	// The text run is wrapped in an anonymous block that stacks above b.
	if got := boxOf(t, res, b).Y; !near(got, lineH) {
		t.Errorf("b.Y = %.1f, want %.1f (one line of wrapped text above)", got, lineH)
	}
	root := res.Tree.Node(res.Tree.Root)
	first := res.Tree.Node(root.FirstChild)
	if first.Anon != AnonBlock {
		t.Errorf("first child Anon = %v, want AnonBlock", first.Anon)
	}
}
