package geom

// Unit is the unit of a CSS length value.
type Unit uint8

const (
	UnitPx Unit = iota
	UnitEm
	UnitPt
	UnitPercent
	UnitAuto
)

// Value is a CSS length: a number plus a unit. Percentages resolve against
// a caller-supplied basis, em against the current font size. The zero value
// is 0px.
type Value struct {
	Number float64
	Unit   Unit
}

func Px(n float64) Value      { return Value{Number: n, Unit: UnitPx} }
func Em(n float64) Value      { return Value{Number: n, Unit: UnitEm} }
func Pt(n float64) Value      { return Value{Number: n, Unit: UnitPt} }
func Percent(n float64) Value { return Value{Number: n, Unit: UnitPercent} }
func Auto() Value             { return Value{Unit: UnitAuto} }

func (v Value) IsAuto() bool { return v.Unit == UnitAuto }

func (v Value) IsZero() bool {
	return v.Unit != UnitAuto && v.Number == 0
}

// Resolve converts the value to logical pixels. basis is the containing
// dimension used for percentages; em is the current font size. Auto
// resolves to 0 (callers that distinguish auto must test IsAuto first).
func (v Value) Resolve(basis, em float64) float64 {
	switch v.Unit {
	case UnitPx:
		return v.Number
	case UnitEm:
		return v.Number * em
	case UnitPt:
		// CSS reference pixel: 1pt = 96/72 px
		return v.Number * 96.0 / 72.0
	case UnitPercent:
		return v.Number / 100.0 * basis
	default:
		return 0
	}
}

// EdgeValues holds unresolved per-side values.
type EdgeValues struct {
	Top    Value
	Right  Value
	Bottom Value
	Left   Value
}

func UniformEdgeValues(v Value) EdgeValues {
	return EdgeValues{Top: v, Right: v, Bottom: v, Left: v}
}

// Resolve resolves all four sides. Percentages of margin and padding
// resolve against the containing block's inline size on every side, per
// CSS 2.1 §8.3/§8.4.
func (e EdgeValues) Resolve(basis, em float64) Edges {
	return Edges{
		Top:    e.Top.Resolve(basis, em),
		Right:  e.Right.Resolve(basis, em),
		Bottom: e.Bottom.Resolve(basis, em),
		Left:   e.Left.Resolve(basis, em),
	}
}
