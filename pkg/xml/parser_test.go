package xml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

func mustParse(t *testing.T, input string) *styled.Dom {
	t.Helper()
	dom, err := Parse(input, 1)
	require.NoError(t, err)
	require.NoError(t, dom.Validate())
	return dom
}

func childTags(dom *styled.Dom, n styled.NodeID) []string {
	var out []string
	for _, c := range dom.Children(n) {
		out = append(out, dom.Data(c).Tag)
	}
	return out
}

func TestSelfClosingTags(t *testing.T) {
	dom := mustParse(t, "<html><body><header/><div>x</div><footer/></body></html>")

	assert.Equal(t, "body", dom.Data(dom.Root()).Tag)
	assert.Equal(t, []string{"header", "div", "footer"}, childTags(dom, dom.Root()))

	div := dom.Children(dom.Root())[1]
	kids := dom.Children(div)
	require.Len(t, kids, 1)
	assert.Equal(t, styled.TextNode, dom.Data(kids[0]).Type)
	assert.Equal(t, "x", dom.Data(kids[0]).Text)
}

func TestSyntheticBodyRoot(t *testing.T) {
	dom := mustParse(t, `<div id="a"/><div id="b"/>`)

	assert.Equal(t, "body", dom.Data(dom.Root()).Tag)
	kids := dom.Children(dom.Root())
	require.Len(t, kids, 2)
	assert.Equal(t, "a", dom.Data(kids[0]).ID)
	assert.Equal(t, "b", dom.Data(kids[1]).ID)
}

func TestTextAroundInlineElementIsPreserved(t *testing.T) {
	dom := mustParse(t, "<div>A <span>B</span> C</div>")

	div := dom.Children(dom.Root())[0]
	kids := dom.Children(div)
	require.Len(t, kids, 3)
	assert.Equal(t, "A ", dom.Data(kids[0]).Text)
	assert.Equal(t, "span", dom.Data(kids[1]).Tag)
	assert.Equal(t, " C", dom.Data(kids[2]).Text)
}

func TestInlineStyleAttribute(t *testing.T) {
	dom := mustParse(t,
		`<div style="width: 200px; height: 50%; background: #ff0000; margin: 10px 20px"/>`)

	div := dom.Children(dom.Root())[0]
	s := dom.Style(div, styled.StateNormal)
	assert.Equal(t, geom.Px(200), s.Width)
	assert.Equal(t, geom.Percent(50), s.Height)
	assert.Equal(t, geom.RGB(255, 0, 0), s.Background.Color)
	assert.Equal(t, geom.Px(10), s.Margin.Top)
	assert.Equal(t, geom.Px(20), s.Margin.Left)
}

func TestInlineStyleIgnoresUnknownProperties(t *testing.T) {
	dom := mustParse(t, `<div style="frobnicate: yes; width: 10px; color"/>`)

	div := dom.Children(dom.Root())[0]
	assert.Equal(t, geom.Px(10), dom.Style(div, styled.StateNormal).Width)
}

func TestTypographyInheritsThroughElements(t *testing.T) {
	dom := mustParse(t,
		`<div style="color: blue; font-size: 20px"><span>hi</span></div>`)

	div := dom.Children(dom.Root())[0]
	span := dom.Children(div)[0]
	s := dom.Style(span, styled.StateNormal)
	assert.Equal(t, geom.RGB(0, 0, 255), s.Color)
	assert.Equal(t, 20.0, s.FontSize)
	assert.Equal(t, styled.DisplayInline, s.Display)
}

func TestTableTagsAndCellSpans(t *testing.T) {
	dom := mustParse(t, `
		<table>
			<thead><tr><th colspan="2">head</th></tr></thead>
			<tbody><tr><td rowspan="3">cell</td><td>x</td></tr></tbody>
		</table>`)

	table := dom.Children(dom.Root())[0]
	s := dom.Style(table, styled.StateNormal)
	assert.Equal(t, styled.DisplayTable, s.Display)

	thead := dom.Children(table)[0]
	hs := dom.Style(thead, styled.StateNormal)
	assert.Equal(t, styled.DisplayTableHeaderGroup, hs.Display)
	assert.True(t, hs.RepeatTableHeader)

	th := dom.Children(dom.Children(thead)[0])[0]
	ths := dom.Style(th, styled.StateNormal)
	assert.Equal(t, styled.DisplayTableCell, ths.Display)
	assert.Equal(t, 2, ths.GridColumn.Span)
	assert.True(t, ths.FontWeight.IsBold())

	tbody := dom.Children(table)[1]
	td := dom.Children(dom.Children(tbody)[0])[0]
	assert.Equal(t, 3, dom.Style(td, styled.StateNormal).GridRow.Span)
}

func TestImageElement(t *testing.T) {
	dom := mustParse(t, `<img src="logo.png" style="width: 64px"/>`)

	img := dom.Children(dom.Root())[0]
	data := dom.Data(img)
	assert.Equal(t, styled.ImageNode, data.Type)
	assert.Equal(t, "logo.png", data.ImageSource)
	assert.Equal(t, geom.Px(64), dom.Style(img, styled.StateNormal).Width)
}

func TestCommentsAndPrologAreSkipped(t *testing.T) {
	dom := mustParse(t, `<?xml version="1.0"?><!-- greeting --><div>hi</div>`)
	assert.Equal(t, []string{"div"}, childTags(dom, dom.Root()))
}

func TestEntitiesAreDecoded(t *testing.T) {
	dom := mustParse(t, `<div title="a &amp; b">2 &lt; 3</div>`)
	div := dom.Children(dom.Root())[0]
	assert.Equal(t, "2 < 3", dom.Data(dom.Children(div)[0]).Text)
}

func TestMismatchedEndTagFails(t *testing.T) {
	_, err := Parse("<div><span></div></span>", 1)
	assert.Error(t, err)
}

func TestUnclosedTagFails(t *testing.T) {
	_, err := Parse("<div><p>text", 1)
	assert.Error(t, err)
}

func TestClassListSplits(t *testing.T) {
	dom := mustParse(t, `<div class="note  wide primary"/>`)
	div := dom.Children(dom.Root())[0]
	assert.Equal(t, []string{"note", "wide", "primary"}, dom.Data(div).Classes)
}
