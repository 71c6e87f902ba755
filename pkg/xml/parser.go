package xml

import (
	"strconv"

	"reflow/pkg/report"
	"reflow/pkg/styled"
)

// Parse builds a pre-cascaded styled DOM from an XML document. The
// <html> wrapper is transparent and <body> becomes the root node; a
// document without the wrapper gets a synthetic body root. End tags must
// match their open tag and every element must be closed, either by an
// end tag or the self-closing form.
func Parse(input string, id styled.DomID) (*styled.Dom, error) {
	p := &parser{tok: NewTokenizer(input), id: id}
	return p.run()
}

type frame struct {
	name  string
	node  styled.NodeID
	style *styled.ComputedStyle
}

type parser struct {
	tok   *Tokenizer
	id    styled.DomID
	dom   *styled.Dom
	stack []frame
}

func (p *parser) run() (*styled.Dom, error) {
	for {
		tok, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokenEOF:
			return p.finish()
		case TokenStartTag:
			if err := p.startTag(tok); err != nil {
				return nil, err
			}
		case TokenText:
			p.ensureRoot()
			p.dom.AddText(p.parent(), tok.Text)
		case TokenEndTag:
			if err := p.endTag(tok.Name); err != nil {
				return nil, err
			}
		}
	}
}

func (p *parser) startTag(tok Token) error {
	switch tok.Name {
	case "html":
		if p.dom == nil && len(p.stack) == 0 && !tok.SelfClosing {
			p.stack = append(p.stack, frame{name: "html", node: styled.NilNode})
			return nil
		}
	case "body":
		if p.dom == nil {
			style := styled.DefaultBlock()
			ApplyInlineStyle(tok.Attributes["style"], style)
			p.dom = styled.NewDom(p.id, nodeData(tok), style)
			if !tok.SelfClosing {
				p.stack = append(p.stack, frame{name: "body", node: p.dom.Root(), style: style})
			}
			return nil
		}
	}

	p.ensureRoot()
	style := p.styleFor(tok)
	node := p.dom.AddNode(p.parent(), nodeData(tok), styled.StyleSet{Normal: style})
	if !tok.SelfClosing {
		p.stack = append(p.stack, frame{name: tok.Name, node: node, style: style})
	}
	return nil
}

func (p *parser) endTag(name string) error {
	if len(p.stack) == 0 || p.stack[len(p.stack)-1].name == "" {
		return report.Errorf(report.InvalidStyledDom, "xml: unexpected </%s>", name)
	}
	top := p.stack[len(p.stack)-1]
	if top.name != name {
		return report.Errorf(report.InvalidStyledDom,
			"xml: </%s> closes <%s>", name, top.name)
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

func (p *parser) finish() (*styled.Dom, error) {
	for _, f := range p.stack {
		if f.name != "" {
			return nil, report.Errorf(report.InvalidStyledDom,
				"xml: unclosed <%s>", f.name)
		}
	}
	p.ensureRoot()
	return p.dom, nil
}

// ensureRoot creates the synthetic body root for documents that start
// with content instead of an <html>/<body> wrapper.
func (p *parser) ensureRoot() {
	if p.dom != nil {
		return
	}
	p.dom = styled.NewBody(p.id)
	p.stack = append([]frame{{node: p.dom.Root()}}, p.stack...)
}

func (p *parser) parent() styled.NodeID {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].node != styled.NilNode {
			return p.stack[i].node
		}
	}
	return p.dom.Root()
}

func (p *parser) parentStyle() *styled.ComputedStyle {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].style != nil {
			return p.stack[i].style
		}
	}
	return nil
}

func nodeData(tok Token) styled.NodeData {
	data := styled.NodeData{Type: styled.ElementNode, Tag: tok.Name}
	data.ID = tok.Attributes["id"]
	if cls := tok.Attributes["class"]; cls != "" {
		data.Classes = splitClasses(cls)
	}
	if tok.Name == "img" {
		data.Type = styled.ImageNode
		data.ImageSource = tok.Attributes["src"]
	}
	return data
}

func splitClasses(s string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '\n' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	return out
}

// styleFor computes the pre-cascaded style: inherited typography, then
// per-tag defaults, then table-cell span attributes, then the inline
// style declaration.
func (p *parser) styleFor(tok Token) *styled.ComputedStyle {
	s := styled.Inherit(p.parentStyle())
	applyTagDefaults(tok.Name, s)

	if n, err := strconv.Atoi(tok.Attributes["colspan"]); err == nil && n > 1 {
		s.GridColumn.Span = n
	}
	if n, err := strconv.Atoi(tok.Attributes["rowspan"]); err == nil && n > 1 {
		s.GridRow.Span = n
	}

	ApplyInlineStyle(tok.Attributes["style"], s)
	return s
}

func applyTagDefaults(tag string, s *styled.ComputedStyle) {
	switch tag {
	case "span", "a", "em", "i", "strong", "b", "u", "small", "label", "code", "sub", "sup":
	// inline, the Inherit default
	case "img":
		s.Display = styled.DisplayInlineBlock
	case "li":
		s.Display = styled.DisplayListItem
	case "table":
		s.Display = styled.DisplayTable
	case "tr":
		s.Display = styled.DisplayTableRow
	case "td", "th":
		s.Display = styled.DisplayTableCell
	case "thead":
		s.Display = styled.DisplayTableHeaderGroup
		s.RepeatTableHeader = true
	case "tbody":
		s.Display = styled.DisplayTableRowGroup
	case "tfoot":
		s.Display = styled.DisplayTableFooterGroup
	case "caption":
		s.Display = styled.DisplayTableCaption
	case "col":
		s.Display = styled.DisplayTableColumn
	case "colgroup":
		s.Display = styled.DisplayTableColumnGroup
	default:
		// Unknown tags are block-level containers.
		s.Display = styled.DisplayBlock
	}

	switch tag {
	case "h1":
		s.FontSize = 32
	case "h2":
		s.FontSize = 24
	case "h3":
		s.FontSize = 18.72
	case "h5":
		s.FontSize = 13.28
	case "h6":
		s.FontSize = 10.72
	}

	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6", "th", "b", "strong":
		s.FontWeight = styled.FontWeightBold
	case "em", "i":
		s.FontStyle = styled.FontStyleItalic
	case "code":
		s.Monospace = true
	case "pre":
		s.Monospace = true
		s.WhiteSpace = styled.WhiteSpacePre
	}
}
