package layout

import (
	"testing"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

func absStyle(mods ...func(*styled.ComputedStyle)) *styled.ComputedStyle {
	return block(append([]func(*styled.ComputedStyle){func(s *styled.ComputedStyle) {
		s.Position = styled.PositionAbsolute
	}}, mods...)...)
}

func TestAbsoluteTopLeftInsets(t *testing.T) {
	dom := styled.NewBody(1)
	r := dom.AddElement(dom.Root(), "div", block(withHeight(200), func(s *styled.ComputedStyle) {
		s.Position = styled.PositionRelative
	}))
	a := dom.AddElement(r, "div", absStyle(withSize(geom.Px(50), geom.Px(40)), func(s *styled.ComputedStyle) {
		s.Insets.Top = geom.Px(10)
		s.Insets.Left = geom.Px(20)
	}))

	res := layoutOnce(t, dom, 800, 600)
	checkRect(t, "abs", boxOf(t, res, a), 20, 10, 50, 40)
}

func TestAbsoluteBottomRightInsets(t *testing.T) {
	dom := styled.NewBody(1)
	r := dom.AddElement(dom.Root(), "div", block(withHeight(200), func(s *styled.ComputedStyle) {
		s.Position = styled.PositionRelative
	}))
	a := dom.AddElement(r, "div", absStyle(withSize(geom.Px(50), geom.Px(40)), func(s *styled.ComputedStyle) {
		s.Insets.Right = geom.Px(10)
		s.Insets.Bottom = geom.Px(10)
	}))

	res := layoutOnce(t, dom, 800, 600)
	checkRect(t, "abs", boxOf(t, res, a), 740, 150, 50, 40)
}

func TestAbsoluteInsetStretch(t *testing.T) {
	dom := styled.NewBody(1)
	r := dom.AddElement(dom.Root(), "div", block(withHeight(200), func(s *styled.ComputedStyle) {
		s.Position = styled.PositionRelative
	}))
	a := dom.AddElement(r, "div", absStyle(func(s *styled.ComputedStyle) {
		s.Insets = geom.UniformEdgeValues(geom.Px(10))
	}))

	res := layoutOnce(t, dom, 800, 600)
	checkRect(t, "abs", boxOf(t, res, a), 10, 10, 780, 180)
}

func TestAbsoluteAutoMarginsCenter(t *testing.T) {
	dom := styled.NewBody(1)
	a := dom.AddElement(dom.Root(), "div", absStyle(withSize(geom.Px(200), geom.Px(40)), func(s *styled.ComputedStyle) {
		s.Insets.Left = geom.Px(0)
		s.Insets.Right = geom.Px(0)
		s.Margin.Left = geom.Auto()
		s.Margin.Right = geom.Auto()
	}))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, a).X; !near(got, 300) {
		t.Errorf("abs X = %.1f, want 300 (auto margins split the leftover)", got)
	}
}

func TestAbsoluteSingleAutoMarginAbsorbs(t *testing.T) {
	dom := styled.NewBody(1)
	a := dom.AddElement(dom.Root(), "div", absStyle(withSize(geom.Px(200), geom.Px(40)), func(s *styled.ComputedStyle) {
		s.Insets.Left = geom.Px(0)
		s.Insets.Right = geom.Px(0)
		s.Margin.Left = geom.Auto()
	}))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, a).X; !near(got, 600) {
		t.Errorf("abs X = %.1f, want 600 (auto margin-left takes all leftover)", got)
	}
}

func TestAbsoluteAutoMarginsCenterVertically(t *testing.T) {
	dom := styled.NewBody(1)
	r := dom.AddElement(dom.Root(), "div", block(withHeight(200), func(s *styled.ComputedStyle) {
		s.Position = styled.PositionRelative
	}))
	a := dom.AddElement(r, "div", absStyle(withSize(geom.Px(50), geom.Px(40)), func(s *styled.ComputedStyle) {
		s.Insets.Top = geom.Px(0)
		s.Insets.Bottom = geom.Px(0)
		s.Margin.Top = geom.Auto()
		s.Margin.Bottom = geom.Auto()
	}))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, a).Y; !near(got, 80) {
		t.Errorf("abs Y = %.1f, want 80 (centered in the 200px containing block)", got)
	}
}

func TestAbsoluteStaticPosition(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", block(withHeight(50)))
	a := dom.AddElement(dom.Root(), "div", absStyle(withSize(geom.Px(50), geom.Px(40))))

	res := layoutOnce(t, dom, 800, 600)
	// No insets: the box stays at its hypothetical static position.
	if got := boxOf(t, res, a).Y; !near(got, 50) {
		t.Errorf("abs.Y = %.1f, want 50", got)
	}
}

func TestAbsoluteDoesNotDisturbFlow(t *testing.T) {
	dom := styled.NewBody(1)
	dom.AddElement(dom.Root(), "div", block(withHeight(50)))
	dom.AddElement(dom.Root(), "div", absStyle(withSize(geom.Px(50), geom.Px(400))))
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	if got := boxOf(t, res, b).Y; !near(got, 50) {
		t.Errorf("sibling.Y = %.1f, want 50 (abs box out of flow)", got)
	}
}

func TestFixedResolvesAgainstViewport(t *testing.T) {
	dom := styled.NewBody(1)
	r := dom.AddElement(dom.Root(), "div", block(withHeight(200), func(s *styled.ComputedStyle) {
		s.Position = styled.PositionRelative
	}))
	a := dom.AddElement(r, "div", block(withSize(geom.Px(50), geom.Px(40)), func(s *styled.ComputedStyle) {
		s.Position = styled.PositionFixed
		s.Insets.Right = geom.Px(0)
		s.Insets.Bottom = geom.Px(0)
	}))

	res := layoutOnce(t, dom, 800, 600)
	// Fixed skips the positioned ancestor and uses the viewport.
	checkRect(t, "fixed", boxOf(t, res, a), 750, 560, 50, 40)
}

func TestRelativeOffsetLeavesSiblings(t *testing.T) {
	dom := styled.NewBody(1)
	a := dom.AddElement(dom.Root(), "div", block(withHeight(50), func(s *styled.ComputedStyle) {
		s.Position = styled.PositionRelative
		s.Insets.Top = geom.Px(5)
		s.Insets.Left = geom.Px(10)
	}))
	b := dom.AddElement(dom.Root(), "div", block(withHeight(30)))

	res := layoutOnce(t, dom, 800, 600)
	ab := boxOf(t, res, a)
	if !near(ab.X, 10) || !near(ab.Y, 5) {
		t.Errorf("rel at (%.1f,%.1f), want (10,5)", ab.X, ab.Y)
	}
	if got := boxOf(t, res, b).Y; !near(got, 50) {
		t.Errorf("sibling.Y = %.1f, want 50 (relative offset does not move flow)", got)
	}
}

func TestRelativeRightBottomNegativeOffsets(t *testing.T) {
	dom := styled.NewBody(1)
	a := dom.AddElement(dom.Root(), "div", block(withHeight(50), func(s *styled.ComputedStyle) {
		s.Position = styled.PositionRelative
		s.Insets.Right = geom.Px(10)
		s.Insets.Bottom = geom.Px(5)
	}))

	res := layoutOnce(t, dom, 800, 600)
	ab := boxOf(t, res, a)
	if !near(ab.X, -10) || !near(ab.Y, -5) {
		t.Errorf("rel at (%.1f,%.1f), want (-10,-5)", ab.X, ab.Y)
	}
}
