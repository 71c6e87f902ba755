package styled

import "reflow/pkg/geom"

// GradientKind discriminates gradient types.
type GradientKind uint8

const (
	GradientLinear GradientKind = iota
	GradientRadial
	GradientConic
)

// ColorStop is a color and its offset along the gradient axis (0..1).
type ColorStop struct {
	Color  geom.Color
	Offset float64
}

// Gradient is a resolved CSS gradient.
type Gradient struct {
	Kind GradientKind
	// AngleDeg is the linear-gradient axis (0 = to top, 90 = to right) or
	// the conic start angle.
	AngleDeg float64
	// Center of radial/conic gradients, as fractions of the painted area.
	CenterX float64
	CenterY float64
	Stops   []ColorStop
}

// BackgroundRepeat controls image tiling per axis.
type BackgroundRepeat uint8

const (
	RepeatBoth BackgroundRepeat = iota
	RepeatX
	RepeatY
	RepeatNone
)

// BackgroundSizeKind distinguishes auto/cover/contain/explicit sizing.
type BackgroundSizeKind uint8

const (
	BackgroundSizeAuto BackgroundSizeKind = iota
	BackgroundSizeCover
	BackgroundSizeContain
	BackgroundSizeExplicit
)

// BackgroundLayer is one paint layer: an image or a gradient with its
// size/repeat/position. Layers paint bottom-up in declaration order.
type BackgroundLayer struct {
	ImageSource string
	Gradient    *Gradient
	SizeKind    BackgroundSizeKind
	Size        geom.Size // when SizeKind is explicit
	Repeat      BackgroundRepeat
	// Position offsets, as fractions of the leftover space (CSS keyword
	// semantics: 0 = left/top, 0.5 = center, 1 = right/bottom).
	PositionX float64
	PositionY float64
}

// Background is the full background of one element.
type Background struct {
	Color  geom.Color
	Layers []BackgroundLayer
}

// Shadow is one box-shadow entry.
type Shadow struct {
	OffsetX float64
	OffsetY float64
	Blur    float64
	Spread  float64
	Color   geom.Color
	Inset   bool
}
