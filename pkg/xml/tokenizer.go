// Package xml is the markup front-end: a minimal XML tokenizer and a
// parser that builds a pre-cascaded styled DOM from a document with
// inline style attributes. Tag and attribute names are case-sensitive,
// self-closing tags are honoured, and text content is preserved as
// written (whitespace collapsing belongs to layout).
package xml

import (
	gohtml "html"
	"strings"
	"unicode"

	"reflow/pkg/report"
)

type TokenKind int

const (
	TokenStartTag TokenKind = iota
	TokenEndTag
	TokenText
	TokenEOF
)

type Token struct {
	Kind        TokenKind
	Name        string
	Attributes  map[string]string
	Text        string
	SelfClosing bool
}

type Tokenizer struct {
	input string
	pos   int
}

func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

func (t *Tokenizer) Next() (Token, error) {
	if t.pos >= len(t.input) {
		return Token{Kind: TokenEOF}, nil
	}
	if t.input[t.pos] == '<' {
		return t.readTag()
	}
	return t.readText()
}

func (t *Tokenizer) readTag() (Token, error) {
	t.pos++

	// <!-- comments -->
	if strings.HasPrefix(t.input[t.pos:], "!--") {
		end := strings.Index(t.input[t.pos+3:], "-->")
		if end < 0 {
			t.pos = len(t.input)
			return t.Next()
		}
		t.pos += 3 + end + 3
		return t.Next()
	}

	// <?xml ...?> processing instructions
	if t.pos < len(t.input) && t.input[t.pos] == '?' {
		end := strings.Index(t.input[t.pos:], "?>")
		if end < 0 {
			t.pos = len(t.input)
			return t.Next()
		}
		t.pos += end + 2
		return t.Next()
	}

	// <!DOCTYPE ...>
	if t.pos < len(t.input) && t.input[t.pos] == '!' {
		if err := t.skipTo('>'); err != nil {
			return Token{}, err
		}
		t.pos++
		return t.Next()
	}

	end := false
	if t.pos < len(t.input) && t.input[t.pos] == '/' {
		end = true
		t.pos++
	}
	name := t.readName()
	if name == "" {
		return Token{}, report.Errorf(report.InvalidStyledDom,
			"xml: expected tag name at offset %d", t.pos)
	}
	if end {
		if err := t.skipTo('>'); err != nil {
			return Token{}, err
		}
		t.pos++
		return Token{Kind: TokenEndTag, Name: name}, nil
	}

	attrs := make(map[string]string)
	for {
		t.skipSpace()
		if t.pos >= len(t.input) {
			return Token{}, report.Errorf(report.InvalidStyledDom,
				"xml: unterminated tag <%s>", name)
		}
		if t.input[t.pos] == '>' {
			t.pos++
			return Token{Kind: TokenStartTag, Name: name, Attributes: attrs}, nil
		}
		if t.input[t.pos] == '/' {
			t.pos++
			t.skipSpace()
			if t.pos >= len(t.input) || t.input[t.pos] != '>' {
				return Token{}, report.Errorf(report.InvalidStyledDom,
					"xml: malformed self-closing tag <%s>", name)
			}
			t.pos++
			return Token{Kind: TokenStartTag, Name: name, Attributes: attrs, SelfClosing: true}, nil
		}
		key, value, err := t.readAttribute()
		if err != nil {
			return Token{}, err
		}
		attrs[key] = value
	}
}

func (t *Tokenizer) readName() string {
	start := t.pos
	for t.pos < len(t.input) && isNameChar(t.input[t.pos]) {
		t.pos++
	}
	return t.input[start:t.pos]
}

func (t *Tokenizer) readAttribute() (string, string, error) {
	name := t.readName()
	if name == "" {
		return "", "", report.Errorf(report.InvalidStyledDom,
			"xml: expected attribute name at offset %d", t.pos)
	}
	t.skipSpace()
	if t.pos >= len(t.input) || t.input[t.pos] != '=' {
		return name, "", nil
	}
	t.pos++
	t.skipSpace()
	if t.pos >= len(t.input) {
		return "", "", report.Errorf(report.InvalidStyledDom,
			"xml: expected value for attribute %q", name)
	}
	quote := t.input[t.pos]
	if quote != '"' && quote != '\'' {
		start := t.pos
		for t.pos < len(t.input) && !unicode.IsSpace(rune(t.input[t.pos])) && t.input[t.pos] != '>' {
			t.pos++
		}
		return name, t.input[start:t.pos], nil
	}
	t.pos++
	start := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != quote {
		t.pos++
	}
	if t.pos >= len(t.input) {
		return "", "", report.Errorf(report.InvalidStyledDom,
			"xml: unterminated value for attribute %q", name)
	}
	value := gohtml.UnescapeString(t.input[start:t.pos])
	t.pos++
	return name, value, nil
}

// readText reads up to the next tag. Whitespace-only runs between tags
// are skipped; anything else is preserved as written.
func (t *Tokenizer) readText() (Token, error) {
	start := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != '<' {
		t.pos++
	}
	raw := t.input[start:t.pos]
	if strings.TrimSpace(raw) == "" {
		if t.pos < len(t.input) {
			return t.Next()
		}
		return Token{Kind: TokenEOF}, nil
	}
	return Token{Kind: TokenText, Text: gohtml.UnescapeString(raw)}, nil
}

func (t *Tokenizer) skipSpace() {
	for t.pos < len(t.input) && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

func (t *Tokenizer) skipTo(target byte) error {
	for t.pos < len(t.input) && t.input[t.pos] != target {
		t.pos++
	}
	if t.pos >= len(t.input) {
		return report.Errorf(report.InvalidStyledDom,
			"xml: expected %q before end of input", string(target))
	}
	return nil
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-' || c == '_' || c == ':' || c == '.'
}
