package styled

import "reflow/pkg/geom"

// TransformKind discriminates transform functions. Kept as a tagged union
// rather than an interface so property sets stay comparable and hashable.
type TransformKind uint8

const (
	TransformTranslate TransformKind = iota
	TransformScale
	TransformRotate
	TransformSkew
	TransformMatrix3D
	TransformPerspective
)

// TransformOp is one entry of a transform list.
type TransformOp struct {
	Kind TransformKind
	// Translate: X/Y lengths. Scale: X/Y factors in FloatA/FloatB.
	// Rotate: angle in degrees in FloatA. Skew: X/Y degrees.
	// Perspective: distance in FloatA.
	X      geom.Value
	Y      geom.Value
	FloatA float64
	FloatB float64
	// Matrix3D: column-major 4x4.
	Matrix [16]float64
}

// FilterKind discriminates filter functions.
type FilterKind uint8

const (
	FilterBlur FilterKind = iota
	FilterBrightness
	FilterContrast
	FilterGrayscale
	FilterSaturate
	FilterOpacity
	FilterInvert
)

// Filter is one entry of a filter or backdrop-filter list.
type Filter struct {
	Kind   FilterKind
	Amount float64 // radius in px for blur, factor otherwise
}
