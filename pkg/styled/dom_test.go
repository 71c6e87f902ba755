package styled

import (
	"errors"
	"testing"

	"reflow/pkg/geom"
	"reflow/pkg/report"
)

func TestDomBuilderLinks(t *testing.T) {
	d := NewBody(1)
	a := d.AddElement(d.Root(), "div", DefaultBlock())
	b := d.AddElement(d.Root(), "div", DefaultBlock())
	c := d.AddText(a, "hello")

	if got := d.Children(d.Root()); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("root children = %v", got)
	}
	if d.Parent(c) != a {
		t.Errorf("parent of text = %d, want %d", d.Parent(c), a)
	}
	if d.NextSibling(a) != b || d.PrevSibling(b) != a {
		t.Error("sibling links broken")
	}
	if d.FirstChild(b) != NilNode {
		t.Error("leaf should have no children")
	}
	if err := d.Validate(); err != nil {
		t.Errorf("valid dom rejected: %v", err)
	}
}

func TestDomValidateDetectsDoubleParent(t *testing.T) {
	d := NewBody(1)
	a := d.AddElement(d.Root(), "div", DefaultBlock())
	b := d.AddElement(a, "span", Default())

	// Corrupt: link b under the root as well.
	d.hier[d.Root()].LastChild = b
	d.hier[a].NextSibling = b

	err := d.Validate()
	if err == nil {
		t.Fatal("corrupted dom passed validation")
	}
	if !errors.Is(err, report.ErrInvalidStyledDom) {
		t.Errorf("error kind = %v, want InvalidStyledDom", err)
	}
}

func TestNodeHashStability(t *testing.T) {
	mk := func() *Dom {
		d := NewBody(7)
		s := DefaultBlock()
		s.Width = geom.Px(100)
		d.AddElement(d.Root(), "div", s)
		return d
	}
	a, b := mk(), mk()
	if a.Hash(1) != b.Hash(1) {
		t.Error("identical nodes should hash equal")
	}

	c := NewBody(7)
	s := DefaultBlock()
	s.Width = geom.Px(200)
	c.AddElement(c.Root(), "div", s)
	if a.Hash(1) == c.Hash(1) {
		t.Error("width change should change the node hash")
	}
}

func TestLayoutHashIgnoresPaintOnlyChanges(t *testing.T) {
	a := DefaultBlock()
	b := a.Clone()
	b.Opacity = 0.5
	b.Background.Color = geom.RGB(255, 0, 0)
	b.Transform = []TransformOp{{Kind: TransformRotate, FloatA: 45}}

	if a.Hash() == b.Hash() {
		t.Error("paint changes must change the full hash")
	}
	if a.LayoutHash() != b.LayoutHash() {
		t.Error("paint-only changes must not change the layout hash")
	}

	c := a.Clone()
	c.Width = geom.Px(10)
	if a.LayoutHash() == c.LayoutHash() {
		t.Error("width change must change the layout hash")
	}
}

func TestStyleSetFallback(t *testing.T) {
	normal := DefaultBlock()
	hover := DefaultBlock()
	hover.Background.Color = geom.RGB(0, 0, 255)
	set := StyleSet{Normal: normal, Hover: hover}

	if set.For(StateHover) != hover {
		t.Error("hover state should use hover set")
	}
	if set.For(StateFocus) != normal {
		t.Error("missing focus set should fall back to normal")
	}
}

func TestInheritCopiesTypography(t *testing.T) {
	p := DefaultBlock()
	p.FontSize = 24
	p.Color = geom.RGB(10, 20, 30)
	p.TextAlign = TextAlignCenter
	p.Width = geom.Px(500)

	c := Inherit(p)
	if c.FontSize != 24 || c.Color != p.Color || c.TextAlign != TextAlignCenter {
		t.Error("inheritable properties not copied")
	}
	if !c.Width.IsAuto() {
		t.Error("width is not inherited")
	}
}
