package layout

import (
	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// Exclusion is one float carved out of the inline space of a block
// formatting context. Coordinates are in the BFC's content-box space.
type Exclusion struct {
	Rect geom.Rect
	Side styled.Float
}

// ExclusionSpace tracks the floats of one block formatting context.
// Immutable: Add returns a new space, so retry passes during line breaking
// never see floats accumulated by an abandoned attempt.
type ExclusionSpace struct {
	exclusions []Exclusion
}

func NewExclusionSpace() *ExclusionSpace {
	return &ExclusionSpace{}
}

func (es *ExclusionSpace) IsEmpty() bool {
	return es == nil || len(es.exclusions) == 0
}

// Add returns a new ExclusionSpace holding the existing exclusions plus one.
func (es *ExclusionSpace) Add(e Exclusion) *ExclusionSpace {
	out := make([]Exclusion, len(es.exclusions)+1)
	copy(out, es.exclusions)
	out[len(es.exclusions)] = e
	return &ExclusionSpace{exclusions: out}
}

// Offsets returns how far floats intrude from the left and right content
// edges of a BFC root of the given width, over the band [y, y+height).
// Exclusion rects are stored in BFC content coordinates.
func (es *ExclusionSpace) Offsets(y, height, bfcWidth float64) (left, right float64) {
	if es == nil {
		return 0, 0
	}
	for _, ex := range es.exclusions {
		if ex.Rect.Bottom() <= y || ex.Rect.Y >= y+height {
			continue
		}
		switch ex.Side {
		case styled.FloatLeft:
			if r := ex.Rect.Right(); r > left {
				left = r
			}
		case styled.FloatRight:
			if w := bfcWidth - ex.Rect.X; w > right {
				right = w
			}
		}
	}
	return left, right
}

// ClearanceY returns the lowest bottom edge among floats on the given
// side(s) at or below y, used to resolve the clear property.
func (es *ExclusionSpace) ClearanceY(clear styled.Clear, y float64) float64 {
	if es == nil {
		return y
	}
	out := y
	for _, ex := range es.exclusions {
		match := clear == styled.ClearBoth ||
			(clear == styled.ClearLeft && ex.Side == styled.FloatLeft) ||
			(clear == styled.ClearRight && ex.Side == styled.FloatRight)
		if match && ex.Rect.Bottom() > out {
			out = ex.Rect.Bottom()
		}
	}
	return out
}

// Bottom returns the lowest float bottom, or 0 when empty. Block
// formatting context roots grow to contain their floats.
func (es *ExclusionSpace) Bottom() float64 {
	if es == nil {
		return 0
	}
	var out float64
	for _, ex := range es.exclusions {
		if ex.Rect.Bottom() > out {
			out = ex.Rect.Bottom()
		}
	}
	return out
}

// FitBand finds the first y at or below startY where a box of the given
// inline size fits between the float intrusions, stepping past float
// bottoms until it does (CSS 2.2 §9.5.1 rule 4).
func (es *ExclusionSpace) FitBand(startY, width, height, containerWidth float64) (y, left float64) {
	y = startY
	for i := 0; i < len(es.exclusions)+1; i++ {
		l, r := es.Offsets(y, height, containerWidth)
		if containerWidth-l-r >= width || (l == 0 && r == 0) {
			return y, l
		}
		next := y
		for _, ex := range es.exclusions {
			b := ex.Rect.Bottom()
			if b > y && (next == y || b < next) {
				next = b
			}
		}
		if next == y {
			return y, l
		}
		y = next
	}
	l, _ := es.Offsets(y, height, containerWidth)
	return y, l
}

// ConstraintSpace packages the inputs to laying out one subtree. Immutable:
// derive modified copies with the With helpers rather than mutating, so a
// retried layout pass starts from the same constraints as the first.
type ConstraintSpace struct {
	Available  geom.Size
	Exclusions *ExclusionSpace
	TextAlign  styled.TextAlign
	NoWrap     bool

	// BFCOffset is the position of the current content origin within the
	// nearest block formatting context root, used to translate float
	// coordinates between the two spaces. BFCWidth is the content width
	// of that root.
	BFCOffset geom.Point
	BFCWidth  float64
}

func NewConstraintSpace(avail geom.Size) ConstraintSpace {
	return ConstraintSpace{
		Available:  avail,
		Exclusions: NewExclusionSpace(),
		BFCWidth:   avail.Width,
	}
}

func (cs ConstraintSpace) WithAvailable(avail geom.Size) ConstraintSpace {
	cs.Available = avail
	return cs
}

func (cs ConstraintSpace) WithExclusions(es *ExclusionSpace) ConstraintSpace {
	cs.Exclusions = es
	return cs
}

func (cs ConstraintSpace) WithBFCOffset(p geom.Point) ConstraintSpace {
	cs.BFCOffset = p
	return cs
}

// IntrusionsAt converts the BFC-space float intrusions over the band
// [y, y+height) into left/right intrusions local to the current content
// box. y is in BFC space.
func (cs ConstraintSpace) IntrusionsAt(y, height float64) (left, right float64) {
	l, r := cs.Exclusions.Offsets(y, height, cs.BFCWidth)
	left = l - cs.BFCOffset.X
	if left < 0 {
		left = 0
	}
	rightEdge := cs.BFCWidth - r
	right = cs.BFCOffset.X + cs.Available.Width - rightEdge
	if right < 0 {
		right = 0
	}
	return left, right
}

// AvailableInline returns the local inline size left between float
// intrusions over the band starting at y (BFC space).
func (cs ConstraintSpace) AvailableInline(y, height float64) float64 {
	l, r := cs.IntrusionsAt(y, height)
	return cs.Available.Width - l - r
}
