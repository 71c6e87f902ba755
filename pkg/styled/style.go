package styled

import (
	"fmt"
	"hash/fnv"
	"io"

	"reflow/pkg/geom"
)

// ComputedStyle is the cascade-resolved property set of one node for one
// pseudo-state. The layout pipeline never re-runs the cascade; it only
// reads these values. The property space is flattened into typed fields
// (tagged unions for shapes/transforms) rather than per-property boxed
// values.
type ComputedStyle struct {
	Display     Display
	Position    Position
	RunningName string // for position: running(name)
	Float       Float
	Clear       Clear
	WritingMode geom.WritingMode
	Direction   geom.Direction

	// Box metrics. Width/Height and the min/max bounds may be auto.
	Width     geom.Value
	Height    geom.Value
	MinWidth  geom.Value
	MaxWidth  geom.Value
	MinHeight geom.Value
	MaxHeight geom.Value
	Margin    geom.EdgeValues
	Padding   geom.EdgeValues
	Insets    geom.EdgeValues // top/right/bottom/left for positioned boxes

	BorderWidth geom.EdgeValues
	BorderStyle [4]BorderLineStyle // top, right, bottom, left
	BorderColor [4]geom.Color
	// Corner radii: top-left, top-right, bottom-right, bottom-left.
	BorderRadius [4]geom.Value

	// Typography.
	FontFamilies []string
	FontSize     float64
	FontWeight   FontWeight
	FontStyle    FontStyle
	Monospace    bool
	LineHeight   geom.Value // auto = normal (1.2)
	TextAlign    TextAlign
	VertAlign    VerticalAlign
	WhiteSpace   WhiteSpace
	Color        geom.Color

	Background Background
	Shadows    []Shadow

	// Compositing and effects.
	Transform       []TransformOp
	TransformOriginX geom.Value
	TransformOriginY geom.Value
	Opacity         float64
	MixBlendMode    BlendMode
	Filters         []Filter
	BackdropFilters []Filter
	ClipPath        *geom.Shape
	ShapeOutside    *geom.Shape

	OverflowX Overflow
	OverflowY Overflow
	ZIndex    int
	ZIndexSet bool // false = auto

	// Fragmentation.
	BreakBefore        BreakRule
	BreakAfter         BreakRule
	BreakInside        BreakInside
	Orphans            int
	Widows             int
	BoxDecoration      BoxDecorationBreak
	RepeatTableHeader  bool // re-emit a table-header-group on every page

	// Flex container and item properties.
	FlexDirection  FlexDirection
	FlexWrap       FlexWrap
	JustifyContent JustifyContent
	AlignItems     AlignItems
	AlignContent   AlignItems
	AlignSelf      AlignItems
	Order          int
	FlexGrow       float64
	FlexShrink     float64
	FlexBasis      geom.Value
	RowGap         geom.Value
	ColumnGap      geom.Value

	// Grid container and item properties.
	GridTemplateColumns []TrackSize
	GridTemplateRows    []TrackSize
	GridAutoRows        TrackSize
	GridRow             GridPlacement
	GridColumn          GridPlacement
	JustifyItems        AlignItems

	// Tables.
	BorderSpacing  float64
	BorderCollapse bool

	// Replaced elements.
	ObjectFit ObjectFit

	// Counters: name/value pairs applied in order.
	CounterResets     []CounterOp
	CounterIncrements []CounterOp
}

// CounterOp is one counter-reset or counter-increment entry.
type CounterOp struct {
	Name  string
	Value int
}

// Default returns the initial style: inline display, static position,
// 16px black text, auto sizing, opacity 1. Matches CSS initial values for
// the supported property set.
func Default() *ComputedStyle {
	return &ComputedStyle{
		Display:    DisplayInline,
		Width:      geom.Auto(),
		Height:     geom.Auto(),
		MinWidth:   geom.Auto(),
		MaxWidth:   geom.Auto(),
		MinHeight:  geom.Auto(),
		MaxHeight:  geom.Auto(),
		Insets:     geom.UniformEdgeValues(geom.Auto()),
		FontSize:   16,
		FontWeight: FontWeightNormal,
		LineHeight: geom.Auto(),
		Color:      geom.Black,
		Opacity:    1,
		FlexShrink: 1,
		FlexBasis:  geom.Auto(),
		Orphans:    2,
		Widows:     2,
		TransformOriginX: geom.Percent(50),
		TransformOriginY: geom.Percent(50),
	}
}

// DefaultBlock is Default with block display, the common case for
// programmatically built DOMs.
func DefaultBlock() *ComputedStyle {
	s := Default()
	s.Display = DisplayBlock
	return s
}

// Clone returns a deep copy.
func (s *ComputedStyle) Clone() *ComputedStyle {
	out := *s
	out.Shadows = append([]Shadow(nil), s.Shadows...)
	out.Transform = append([]TransformOp(nil), s.Transform...)
	out.Filters = append([]Filter(nil), s.Filters...)
	out.BackdropFilters = append([]Filter(nil), s.BackdropFilters...)
	out.FontFamilies = append([]string(nil), s.FontFamilies...)
	out.Background.Layers = append([]BackgroundLayer(nil), s.Background.Layers...)
	out.GridTemplateColumns = append([]TrackSize(nil), s.GridTemplateColumns...)
	out.GridTemplateRows = append([]TrackSize(nil), s.GridTemplateRows...)
	out.CounterResets = append([]CounterOp(nil), s.CounterResets...)
	out.CounterIncrements = append([]CounterOp(nil), s.CounterIncrements...)
	if s.ClipPath != nil {
		cp := *s.ClipPath
		out.ClipPath = &cp
	}
	if s.ShapeOutside != nil {
		so := *s.ShapeOutside
		out.ShapeOutside = &so
	}
	return &out
}

// Inherit returns a fresh style whose inheritable properties come from the
// parent. Used for text nodes and anonymous boxes, which carry no declared
// style of their own.
func Inherit(parent *ComputedStyle) *ComputedStyle {
	s := Default()
	if parent == nil {
		return s
	}
	s.Color = parent.Color
	s.FontFamilies = append([]string(nil), parent.FontFamilies...)
	s.FontSize = parent.FontSize
	s.FontWeight = parent.FontWeight
	s.FontStyle = parent.FontStyle
	s.Monospace = parent.Monospace
	s.LineHeight = parent.LineHeight
	s.TextAlign = parent.TextAlign
	s.WhiteSpace = parent.WhiteSpace
	s.WritingMode = parent.WritingMode
	s.Direction = parent.Direction
	s.Orphans = parent.Orphans
	s.Widows = parent.Widows
	return s
}

// ResolvedLineHeight returns the used line height for the style's font
// size. Auto means the normal factor 1.2.
func (s *ComputedStyle) ResolvedLineHeight() float64 {
	if s.LineHeight.IsAuto() {
		return s.FontSize * 1.2
	}
	return s.LineHeight.Resolve(s.FontSize, s.FontSize)
}

// Hash is a content hash of the whole property set, used by
// reconciliation to detect any styling change.
func (s *ComputedStyle) Hash() uint64 {
	h := fnv.New64a()
	hashStyle(h, *s)
	return h.Sum64()
}

// hashStyle writes a deterministic representation of the style. Pointer
// fields are detached and written by value so the hash depends on content,
// never on addresses.
func hashStyle(h io.Writer, v ComputedStyle) {
	clip := v.ClipPath
	shape := v.ShapeOutside
	layers := v.Background.Layers
	cols := v.GridTemplateColumns
	rows := v.GridTemplateRows
	auto := v.GridAutoRows
	v.ClipPath = nil
	v.ShapeOutside = nil
	v.Background.Layers = nil
	v.GridTemplateColumns = nil
	v.GridTemplateRows = nil
	v.GridAutoRows = TrackSize{}
	fmt.Fprintf(h, "%v", v)
	if clip != nil {
		fmt.Fprintf(h, "c%v", *clip)
	}
	if shape != nil {
		fmt.Fprintf(h, "s%v", *shape)
	}
	for _, l := range layers {
		g := l.Gradient
		l.Gradient = nil
		fmt.Fprintf(h, "l%v", l)
		if g != nil {
			fmt.Fprintf(h, "g%v", *g)
		}
	}
	for _, t := range cols {
		hashTrack(h, t)
	}
	fmt.Fprint(h, "|")
	for _, t := range rows {
		hashTrack(h, t)
	}
	hashTrack(h, auto)
}

func hashTrack(h io.Writer, t TrackSize) {
	fmt.Fprintf(h, "t%d%v%v%s", t.Kind, t.Size, t.Fr, t.LineName)
	if t.Min != nil {
		hashTrack(h, *t.Min)
	}
	if t.Max != nil {
		hashTrack(h, *t.Max)
	}
}

// LayoutHash hashes only the properties that can affect geometry. A node
// whose Hash changed but whose LayoutHash did not needs display-list
// re-emission only (POSITION dirty), not re-layout: transform, opacity,
// colors, backgrounds, shadows and filters are paint-only.
func (s *ComputedStyle) LayoutHash() uint64 {
	v := *s
	v.Color = geom.Color{}
	v.Background = Background{}
	v.Shadows = nil
	v.BorderColor = [4]geom.Color{}
	v.BorderRadius = [4]geom.Value{}
	v.Transform = nil
	v.TransformOriginX = geom.Value{}
	v.TransformOriginY = geom.Value{}
	v.Opacity = 0
	v.MixBlendMode = 0
	v.Filters = nil
	v.BackdropFilters = nil
	v.ClipPath = nil
	v.ZIndex = 0
	v.ZIndexSet = false
	h := fnv.New64a()
	hashStyle(h, v)
	return h.Sum64()
}
