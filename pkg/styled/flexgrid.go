package styled

import "reflow/pkg/geom"

// FlexDirection is the flex main axis.
type FlexDirection uint8

const (
	FlexRow FlexDirection = iota
	FlexRowReverse
	FlexColumn
	FlexColumnReverse
)

func (d FlexDirection) IsRow() bool {
	return d == FlexRow || d == FlexRowReverse
}

func (d FlexDirection) IsReverse() bool {
	return d == FlexRowReverse || d == FlexColumnReverse
}

// FlexWrap controls flex line wrapping.
type FlexWrap uint8

const (
	FlexNoWrap FlexWrap = iota
	FlexWrapWrap
	FlexWrapReverse
)

// JustifyContent distributes free space on the main axis.
type JustifyContent uint8

const (
	JustifyStart JustifyContent = iota
	JustifyEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// AlignItems aligns on the cross axis. Also used for align-content,
// align-self (with AlignAuto) and justify-items in grid.
type AlignItems uint8

const (
	AlignAuto AlignItems = iota
	AlignStretch
	AlignStart
	AlignEnd
	AlignCenter
)

// TrackSizeKind discriminates grid track sizing functions.
type TrackSizeKind uint8

const (
	TrackFixed TrackSizeKind = iota
	TrackFr
	TrackMinContent
	TrackMaxContent
	TrackMinMax
	TrackFitContent
	TrackAuto
)

// TrackSize is one grid track sizing function.
type TrackSize struct {
	Kind TrackSizeKind
	// Fixed / fit-content limit.
	Size geom.Value
	// Fr flex factor.
	Fr float64
	// MinMax bounds.
	Min *TrackSize
	Max *TrackSize
	// Optional line name preceding this track ("[name]" syntax).
	LineName string
}

// GridPlacement is a grid-row or grid-column placement.
type GridPlacement struct {
	// Auto placement when both are zero.
	Start int // 1-based line number; 0 = auto
	End   int // 0 = auto
	Span  int // "span N"; 0 when absent
	// Named start line; resolved against template line names.
	StartName string
}

// IsAuto reports a fully automatic placement.
func (p GridPlacement) IsAuto() bool {
	return p.Start == 0 && p.End == 0 && p.Span == 0 && p.StartName == ""
}
