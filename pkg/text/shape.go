package text

import (
	"math"

	"reflow/pkg/geom"
)

// PlacedToken is one token placed on a line, in run-local coordinates.
type PlacedToken struct {
	Token int // index into Words.Tokens
	Line  int
	X     float64
	Width float64
}

// Line is one line box of a shaped run.
type Line struct {
	Y       float64 // top of the line, run-local
	Width   float64
	Ascent  float64
	Descent float64
}

// ShapedRun is the text-layout artefact the layout and display stages
// consume: token placements, line boxes, and per-cluster advances for
// caret and selection mapping.
type ShapedRun struct {
	Words *Words
	Req   FaceRequest

	Placed []PlacedToken
	Lines  []Line

	// Per-cluster geometry, parallel to Words.Clusters.
	clusterX    []float64
	clusterW    []float64
	clusterLine []int

	MinContent float64
	MaxContent float64
	LineHeight float64
	Size       geom.Size
}

const tabSpaces = 4

// Shape lays the words out into lines no wider than maxInline (<= 0 means
// unconstrained). lineHeight <= 0 uses the face's natural line height.
// Breaking is greedy at word boundaries; a word wider than the line is
// placed anyway and overflows (CSS overflow-wrap: normal).
func (m *Manager) Shape(words *Words, req FaceRequest, maxInline, lineHeight float64) *ShapedRun {
	metrics := m.Metrics(req)
	if lineHeight <= 0 {
		lineHeight = metrics.LineHeight
	}
	run := &ShapedRun{
		Words:       words,
		Req:         req,
		LineHeight:  lineHeight,
		clusterX:    make([]float64, len(words.Clusters)),
		clusterW:    make([]float64, len(words.Clusters)),
		clusterLine: make([]int, len(words.Clusters)),
	}
	if maxInline <= 0 {
		maxInline = math.Inf(1)
	}

	spaceW := m.MeasureString(" ", req)

	penX := 0.0
	line := 0
	lineStart := true
	newLine := func() {
		// CSS 2.1 §16.6.1: spaces at the end of a line do not take space.
		for i := len(run.Placed) - 1; i >= 0; i-- {
			p := &run.Placed[i]
			if p.Line != line || words.Tokens[p.Token].Kind != TokenSpace || p.Width == 0 {
				break
			}
			penX -= p.Width
			p.Width = 0
			t := words.Tokens[p.Token]
			for c := t.StartCluster; c < t.EndCluster; c++ {
				run.clusterX[c] = penX
				run.clusterW[c] = 0
			}
		}
		run.Lines = append(run.Lines, Line{
			Y:       float64(line) * lineHeight,
			Width:   penX,
			Ascent:  metrics.Ascent,
			Descent: metrics.Descent,
		})
		line++
		penX = 0
		lineStart = true
	}

	place := func(tok int, width float64) {
		t := words.Tokens[tok]
		run.Placed = append(run.Placed, PlacedToken{Token: tok, Line: line, X: penX, Width: width})
		// distribute cluster advances inside the token
		x := penX
		for c := t.StartCluster; c < t.EndCluster; c++ {
			cw := m.MeasureString(words.ClusterString(c), req)
			run.clusterX[c] = x
			run.clusterW[c] = cw
			run.clusterLine[c] = line
			x += cw
		}
		penX += width
		lineStart = false
	}

	for i, t := range words.Tokens {
		switch t.Kind {
		case TokenReturn:
			// the return cluster sits at the line end with zero width
			for c := t.StartCluster; c < t.EndCluster; c++ {
				run.clusterX[c] = penX
				run.clusterW[c] = 0
				run.clusterLine[c] = line
			}
			newLine()
		case TokenSpace:
			if lineStart {
				// collapsed leading space
				for c := t.StartCluster; c < t.EndCluster; c++ {
					run.clusterX[c] = penX
					run.clusterW[c] = 0
					run.clusterLine[c] = line
				}
				continue
			}
			place(i, spaceW)
		case TokenTab:
			place(i, spaceW*tabSpaces)
		case TokenWord:
			w := m.MeasureString(words.TokenString(t), req)
			if w > run.MinContent {
				run.MinContent = w
			}
			if penX > 0 && penX+w > maxInline {
				newLine()
			}
			place(i, w)
		}
	}
	newLine()

	for _, l := range run.Lines {
		if l.Width > run.MaxContent {
			run.MaxContent = l.Width
		}
	}
	run.Size = geom.Size{
		Width:  run.MaxContent,
		Height: float64(len(run.Lines)) * lineHeight,
	}
	return run
}

// IntrinsicSizes computes (min-content, max-content) for a string without
// retaining a shaped run: min is the widest unbreakable word, max the full
// one-line width.
func (m *Manager) IntrinsicSizes(words *Words, req FaceRequest) (minContent, maxContent float64) {
	run := m.Shape(words, req, 0, 0)
	return run.MinContent, run.MaxContent
}

// LineCount returns the number of line boxes.
func (r *ShapedRun) LineCount() int { return len(r.Lines) }

// ClusterRect returns the run-local rect covering one grapheme cluster,
// spanning the full line height.
func (r *ShapedRun) ClusterRect(cluster int) geom.Rect {
	line := r.clusterLine[cluster]
	return geom.Rect{
		X:      r.clusterX[cluster],
		Y:      float64(line) * r.LineHeight,
		Width:  r.clusterW[cluster],
		Height: r.LineHeight,
	}
}
