package styled

// Display is the computed display type.
type Display uint8

const (
	DisplayBlock Display = iota
	DisplayInline
	DisplayInlineBlock
	DisplayFlex
	DisplayGrid
	DisplayListItem
	DisplayTable
	DisplayTableRow
	DisplayTableCell
	DisplayTableRowGroup
	DisplayTableHeaderGroup
	DisplayTableFooterGroup
	DisplayTableCaption
	DisplayTableColumn
	DisplayTableColumnGroup
	DisplayNone
)

// IsTableInternal reports whether the display type only makes sense inside
// a table; these drive CSS 2.2 §17.2.1 anonymous box generation.
func (d Display) IsTableInternal() bool {
	switch d {
	case DisplayTableRow, DisplayTableCell, DisplayTableRowGroup,
		DisplayTableHeaderGroup, DisplayTableFooterGroup,
		DisplayTableCaption, DisplayTableColumn, DisplayTableColumnGroup:
		return true
	}
	return false
}

// IsRowGroup reports table-row-group, table-header-group or
// table-footer-group.
func (d Display) IsRowGroup() bool {
	return d == DisplayTableRowGroup || d == DisplayTableHeaderGroup ||
		d == DisplayTableFooterGroup
}

// IsInlineLevel reports whether boxes of this display participate in an
// inline formatting context.
func (d Display) IsInlineLevel() bool {
	return d == DisplayInline || d == DisplayInlineBlock
}

// Position is the computed position type.
type Position uint8

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
	// PositionRunning marks position: running(name); the element is
	// removed from flow and stored in the running-element side table.
	PositionRunning
)

func (p Position) IsOutOfFlow() bool {
	return p == PositionAbsolute || p == PositionFixed || p == PositionRunning
}

func (p Position) IsPositioned() bool { return p != PositionStatic }

// Float is the computed float type.
type Float uint8

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

// Clear is the computed clear type.
type Clear uint8

const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearBoth
)

// Overflow is the computed overflow on one axis.
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

// ScrollCandidate reports whether this overflow value can create a scroll
// container (the container still needs actual overflowing content).
func (o Overflow) ScrollCandidate() bool {
	return o == OverflowScroll || o == OverflowAuto
}

// TextAlign is the computed text-align.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

// VerticalAlign covers the subset of vertical-align the inline solver
// implements.
type VerticalAlign uint8

const (
	VerticalAlignBaseline VerticalAlign = iota
	VerticalAlignTop
	VerticalAlignMiddle
	VerticalAlignBottom
)

// FontWeight is a simplified weight scale.
type FontWeight uint16

const (
	FontWeightNormal FontWeight = 400
	FontWeightBold   FontWeight = 700
)

func (w FontWeight) IsBold() bool { return w >= 600 }

// FontStyle is normal or italic.
type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
)

// WhiteSpace covers the white-space values the inline solver distinguishes.
type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpaceNowrap
	WhiteSpacePre
)

// BorderLineStyle is the per-side border line style.
type BorderLineStyle uint8

const (
	BorderStyleNone BorderLineStyle = iota
	BorderStyleSolid
	BorderStyleDashed
	BorderStyleDotted
	BorderStyleDouble
)

// BlendMode is the mix-blend-mode subset carried through the display list.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
)

// ObjectFit controls replaced-element content fitting.
type ObjectFit uint8

const (
	ObjectFitFill ObjectFit = iota
	ObjectFitContain
	ObjectFitCover
	ObjectFitNone
	ObjectFitScaleDown
)

// BreakRule is the computed break-before/break-after.
type BreakRule uint8

const (
	BreakAuto BreakRule = iota
	BreakAvoid
	BreakPage // force a page break
)

// BreakInside is the computed break-inside.
type BreakInside uint8

const (
	BreakInsideAuto BreakInside = iota
	BreakInsideAvoid
)

// BoxDecorationBreak controls background slicing across fragments.
type BoxDecorationBreak uint8

const (
	DecorationSlice BoxDecorationBreak = iota
	DecorationClone
)

// State selects one of the pre-resolved pseudo-state property sets.
type State uint8

const (
	StateNormal State = iota
	StateHover
	StateActive
	StateFocus
)
