package text

import "github.com/rivo/uniseg"

// TokenKind classifies one segment of a text node.
type TokenKind uint8

const (
	TokenWord TokenKind = iota
	TokenSpace
	TokenTab
	TokenReturn
)

// Token is one word/space/tab/return segment, as byte offsets into the
// source string plus grapheme-cluster bounds for caret mapping.
type Token struct {
	Kind         TokenKind
	Start        int // byte offset
	End          int
	StartCluster int // index into Words.Clusters
	EndCluster   int // exclusive
}

// Cluster is one grapheme cluster, the smallest caret-addressable unit.
type Cluster struct {
	Start int // byte offset
	End   int
}

// Words is the segmented form of a text node: token positions inside the
// string plus the parallel grapheme-cluster vector. Substring extraction
// through clusters is always grapheme-correct.
type Words struct {
	Text     string
	Tokens   []Token
	Clusters []Cluster
}

// NewWords segments a string. Runs of spaces collapse per white-space
// handling later; segmentation itself preserves every character.
func NewWords(s string) *Words {
	w := &Words{Text: s}

	// Grapheme clusters first; tokens reference cluster ranges.
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		start, end := g.Positions()
		w.Clusters = append(w.Clusters, Cluster{Start: start, End: end})
	}

	clusterAt := func(byteOff int) int {
		for i, c := range w.Clusters {
			if byteOff < c.End {
				return i
			}
		}
		return len(w.Clusters)
	}

	flush := func(kind TokenKind, start, end int) {
		if end <= start {
			return
		}
		w.Tokens = append(w.Tokens, Token{
			Kind:         kind,
			Start:        start,
			End:          end,
			StartCluster: clusterAt(start),
			EndCluster:   clusterAt(end - 1) + 1,
		})
	}

	wordStart := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			if wordStart >= 0 {
				flush(TokenWord, wordStart, i)
				wordStart = -1
			}
			flush(TokenSpace, i, i+1)
		case '\t':
			if wordStart >= 0 {
				flush(TokenWord, wordStart, i)
				wordStart = -1
			}
			flush(TokenTab, i, i+1)
		case '\n':
			if wordStart >= 0 {
				flush(TokenWord, wordStart, i)
				wordStart = -1
			}
			flush(TokenReturn, i, i+1)
		case '\r':
			if wordStart >= 0 {
				flush(TokenWord, wordStart, i)
				wordStart = -1
			}
			// swallow; a following \n produces the return token
			if i+1 >= len(s) || s[i+1] != '\n' {
				flush(TokenReturn, i, i+1)
			}
		default:
			if wordStart < 0 {
				wordStart = i
			}
		}
	}
	if wordStart >= 0 {
		flush(TokenWord, wordStart, len(s))
	}
	return w
}

// ClusterCount returns the number of grapheme clusters.
func (w *Words) ClusterCount() int { return len(w.Clusters) }

// ClusterString returns the text of one cluster.
func (w *Words) ClusterString(i int) string {
	c := w.Clusters[i]
	return w.Text[c.Start:c.End]
}

// Substring extracts the text covered by [startCluster, endCluster).
func (w *Words) Substring(startCluster, endCluster int) string {
	if startCluster >= endCluster || startCluster >= len(w.Clusters) {
		return ""
	}
	if endCluster > len(w.Clusters) {
		endCluster = len(w.Clusters)
	}
	return w.Text[w.Clusters[startCluster].Start:w.Clusters[endCluster-1].End]
}

// TokenString returns the source text of one token.
func (w *Words) TokenString(t Token) string {
	return w.Text[t.Start:t.End]
}

// IsWhitespaceOnly reports whether the string holds no word tokens.
func (w *Words) IsWhitespaceOnly() bool {
	for _, t := range w.Tokens {
		if t.Kind == TokenWord {
			return false
		}
	}
	return true
}

func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
