package layout

import (
	"testing"
	"time"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// twoDivDom builds body > div + div with the given styles. Node IDs are
// assigned in insertion order, so rebuilding with modified styles keeps
// the same DOM identities for reconciliation.
func twoDivDom(a, b *styled.ComputedStyle) (*styled.Dom, styled.NodeID, styled.NodeID) {
	dom := styled.NewBody(7)
	na := dom.AddElement(dom.Root(), "div", a)
	nb := dom.AddElement(dom.Root(), "div", b)
	return dom, na, nb
}

func TestFirstPassIsFullyDirty(t *testing.T) {
	dom, _, _ := twoDivDom(block(withHeight(50)), block(withHeight(30)))
	res := layoutOnce(t, dom, 800, 600)
	if !res.Dirty.First {
		t.Error("first pass not marked First")
	}
	if res.Reused {
		t.Error("first pass cannot reuse")
	}
}

func TestCleanPassReusesWholesale(t *testing.T) {
	dom, _, _ := twoDivDom(block(withHeight(50)), block(withHeight(30)))
	eng := testEngine()
	cache := NewCache()
	opts := Options{Viewport: geom.Size{Width: 800, Height: 600}}

	first, err := eng.Layout(dom, cache, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Layout(dom, cache, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Reused {
		t.Error("identical pass did not reuse the cached tree")
	}
	if second.Tree != first.Tree {
		t.Error("reused pass returned a different tree")
	}
	if !second.Dirty.Clean() {
		t.Errorf("dirty sets not clean: %+v", second.Dirty)
	}
}

func TestPaintOnlyChangeKeepsGeometry(t *testing.T) {
	eng := testEngine()
	cache := NewCache()
	opts := Options{Viewport: geom.Size{Width: 800, Height: 600}}

	dom1, _, nb := twoDivDom(block(withHeight(50)), block(withHeight(30)))
	first, err := eng.Layout(dom1, cache, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := boxOf(t, first, nb)

	red := block(withHeight(30), func(s *styled.ComputedStyle) {
		s.Background.Color = geom.RGB(255, 0, 0)
	})
	dom2, _, nb2 := twoDivDom(block(withHeight(50)), red)
	second, err := eng.Layout(dom2, cache, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Dirty.PositionOnlyPass() {
		t.Fatalf("background change classified as %+v, want position-only", second.Dirty)
	}
	if second.Tree != first.Tree {
		t.Error("paint-only pass rebuilt the tree")
	}
	got := boxOf(t, second, nb2)
	if got != want {
		t.Errorf("geometry moved: %+v -> %+v", want, got)
	}
	// The cached tree must see the fresh style.
	n := second.Tree.Node(second.Tree.ByDom(nb2))
	if n.Style.Background.Color != geom.RGB(255, 0, 0) {
		t.Error("cached tree kept the stale style")
	}
}

func TestGeometryChangeRelayouts(t *testing.T) {
	eng := testEngine()
	cache := NewCache()
	opts := Options{Viewport: geom.Size{Width: 800, Height: 600}}

	dom1, _, _ := twoDivDom(block(withHeight(50)), block(withHeight(30)))
	if _, err := eng.Layout(dom1, cache, opts); err != nil {
		t.Fatal(err)
	}

	dom2, _, nb := twoDivDom(block(withHeight(80)), block(withHeight(30)))
	second, err := eng.Layout(dom2, cache, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Dirty.LayoutRoots) == 0 {
		t.Fatal("height change produced no layout roots")
	}
	if got := boxOf(t, second, nb).Y; !near(got, 80) {
		t.Errorf("b.Y = %.1f, want 80 after sibling grew", got)
	}
}

func TestRemovedNodeDetected(t *testing.T) {
	eng := testEngine()
	cache := NewCache()
	opts := Options{Viewport: geom.Size{Width: 800, Height: 600}}

	dom1, _, _ := twoDivDom(block(withHeight(50)), block(withHeight(30)))
	if _, err := eng.Layout(dom1, cache, opts); err != nil {
		t.Fatal(err)
	}

	dom2 := styled.NewBody(7)
	dom2.AddElement(dom2.Root(), "div", block(withHeight(50)))
	second, err := eng.Layout(dom2, cache, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Dirty.Removed) != 1 {
		t.Errorf("Removed = %v, want one entry", second.Dirty.Removed)
	}
	if second.Reused {
		t.Error("pass with a removed node reused stale tree")
	}
}

func TestViewportChangeRelayouts(t *testing.T) {
	eng := testEngine()
	cache := NewCache()

	dom, na, _ := twoDivDom(block(withHeight(50)), block(withHeight(30)))
	if _, err := eng.Layout(dom, cache, Options{Viewport: geom.Size{Width: 800, Height: 600}}); err != nil {
		t.Fatal(err)
	}
	second, err := eng.Layout(dom, cache, Options{Viewport: geom.Size{Width: 400, Height: 600}})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Dirty.ViewportChanged {
		t.Error("viewport change not flagged")
	}
	if got := boxOf(t, second, na).Width; !near(got, 400) {
		t.Errorf("width = %.1f, want 400", got)
	}
}

func TestBudgetExceededTruncates(t *testing.T) {
	dom := styled.NewBody(7)
	for i := 0; i < 32; i++ {
		dom.AddElement(dom.Root(), "div", block(withHeight(10)))
	}
	res, err := testEngine().Layout(dom, NewCache(), Options{
		Viewport: geom.Size{Width: 800, Height: 600},
		Budget:   time.Nanosecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Truncated {
		t.Error("nanosecond budget did not truncate the pass")
	}
}
