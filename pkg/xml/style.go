package xml

import (
	"strconv"
	"strings"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// ApplyInlineStyle parses a style="" attribute into an existing computed
// style. Unknown properties and unparseable values are ignored; inline
// styles are best-effort by nature.
func ApplyInlineStyle(src string, dst *styled.ComputedStyle) {
	for _, decl := range strings.Split(src, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		applyDeclaration(strings.ToLower(strings.TrimSpace(name)),
			strings.TrimSpace(value), dst)
	}
}

func applyDeclaration(name, value string, s *styled.ComputedStyle) {
	switch name {
	case "display":
		if d, ok := parseDisplay(value); ok {
			s.Display = d
		}
	case "position":
		switch value {
		case "static":
			s.Position = styled.PositionStatic
		case "relative":
			s.Position = styled.PositionRelative
		case "absolute":
			s.Position = styled.PositionAbsolute
		case "fixed":
			s.Position = styled.PositionFixed
		default:
			if name, ok := parseRunning(value); ok {
				s.Position = styled.PositionRunning
				s.RunningName = name
			}
		}
	case "float":
		switch value {
		case "left":
			s.Float = styled.FloatLeft
		case "right":
			s.Float = styled.FloatRight
		case "none":
			s.Float = styled.FloatNone
		}
	case "clear":
		switch value {
		case "left":
			s.Clear = styled.ClearLeft
		case "right":
			s.Clear = styled.ClearRight
		case "both":
			s.Clear = styled.ClearBoth
		}

	case "width":
		setValue(&s.Width, value)
	case "height":
		setValue(&s.Height, value)
	case "min-width":
		setValue(&s.MinWidth, value)
	case "max-width":
		setValue(&s.MaxWidth, value)
	case "min-height":
		setValue(&s.MinHeight, value)
	case "max-height":
		setValue(&s.MaxHeight, value)

	case "margin":
		if e, ok := parseEdgeShorthand(value); ok {
			s.Margin = e
		}
	case "margin-top":
		setValue(&s.Margin.Top, value)
	case "margin-right":
		setValue(&s.Margin.Right, value)
	case "margin-bottom":
		setValue(&s.Margin.Bottom, value)
	case "margin-left":
		setValue(&s.Margin.Left, value)
	case "padding":
		if e, ok := parseEdgeShorthand(value); ok {
			s.Padding = e
		}
	case "padding-top":
		setValue(&s.Padding.Top, value)
	case "padding-right":
		setValue(&s.Padding.Right, value)
	case "padding-bottom":
		setValue(&s.Padding.Bottom, value)
	case "padding-left":
		setValue(&s.Padding.Left, value)

	case "top":
		setValue(&s.Insets.Top, value)
	case "right":
		setValue(&s.Insets.Right, value)
	case "bottom":
		setValue(&s.Insets.Bottom, value)
	case "left":
		setValue(&s.Insets.Left, value)

	case "background", "background-color":
		if c, ok := ParseColor(value); ok {
			s.Background.Color = c
		}
	case "color":
		if c, ok := ParseColor(value); ok {
			s.Color = c
		}

	case "font-size":
		if v, ok := parseValue(value); ok {
			s.FontSize = v.Resolve(16, 16)
		}
	case "font-family":
		s.FontFamilies = s.FontFamilies[:0]
		for _, fam := range strings.Split(value, ",") {
			fam = strings.Trim(strings.TrimSpace(fam), `"'`)
			if fam != "" {
				s.FontFamilies = append(s.FontFamilies, fam)
			}
			if fam == "monospace" {
				s.Monospace = true
			}
		}
	case "font-weight":
		switch value {
		case "bold":
			s.FontWeight = styled.FontWeightBold
		case "normal":
			s.FontWeight = styled.FontWeightNormal
		default:
			if n, err := strconv.Atoi(value); err == nil && n >= 100 && n <= 900 {
				s.FontWeight = styled.FontWeight(n)
			}
		}
	case "font-style":
		switch value {
		case "italic":
			s.FontStyle = styled.FontStyleItalic
		case "normal":
			s.FontStyle = styled.FontStyleNormal
		}
	case "line-height":
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			// Unitless multiplies the font size.
			s.LineHeight = geom.Em(n)
		} else {
			setValue(&s.LineHeight, value)
		}
	case "text-align":
		switch value {
		case "left":
			s.TextAlign = styled.TextAlignLeft
		case "right":
			s.TextAlign = styled.TextAlignRight
		case "center":
			s.TextAlign = styled.TextAlignCenter
		case "justify":
			s.TextAlign = styled.TextAlignJustify
		}
	case "white-space":
		switch value {
		case "normal":
			s.WhiteSpace = styled.WhiteSpaceNormal
		case "nowrap":
			s.WhiteSpace = styled.WhiteSpaceNowrap
		case "pre":
			s.WhiteSpace = styled.WhiteSpacePre
		}

	case "border":
		applyBorderShorthand(value, s)
	case "border-width":
		if v, ok := parseValue(value); ok {
			s.BorderWidth = geom.UniformEdgeValues(v)
		}
	case "border-style":
		if st, ok := parseBorderStyle(value); ok {
			for i := range s.BorderStyle {
				s.BorderStyle[i] = st
			}
		}
	case "border-color":
		if c, ok := ParseColor(value); ok {
			for i := range s.BorderColor {
				s.BorderColor[i] = c
			}
		}
	case "border-radius":
		if v, ok := parseValue(value); ok {
			for i := range s.BorderRadius {
				s.BorderRadius[i] = v
			}
		}

	case "overflow":
		if o, ok := parseOverflow(value); ok {
			s.OverflowX, s.OverflowY = o, o
		}
	case "overflow-x":
		if o, ok := parseOverflow(value); ok {
			s.OverflowX = o
		}
	case "overflow-y":
		if o, ok := parseOverflow(value); ok {
			s.OverflowY = o
		}

	case "opacity":
		if n, err := strconv.ParseFloat(value, 64); err == nil && n >= 0 && n <= 1 {
			s.Opacity = n
		}
	case "z-index":
		if value == "auto" {
			s.ZIndexSet = false
		} else if n, err := strconv.Atoi(value); err == nil {
			s.ZIndex = n
			s.ZIndexSet = true
		}

	case "flex-direction":
		switch value {
		case "row":
			s.FlexDirection = styled.FlexRow
		case "row-reverse":
			s.FlexDirection = styled.FlexRowReverse
		case "column":
			s.FlexDirection = styled.FlexColumn
		case "column-reverse":
			s.FlexDirection = styled.FlexColumnReverse
		}
	case "flex-wrap":
		switch value {
		case "nowrap":
			s.FlexWrap = styled.FlexNoWrap
		case "wrap":
			s.FlexWrap = styled.FlexWrapWrap
		case "wrap-reverse":
			s.FlexWrap = styled.FlexWrapReverse
		}
	case "justify-content":
		switch value {
		case "flex-start", "start":
			s.JustifyContent = styled.JustifyStart
		case "flex-end", "end":
			s.JustifyContent = styled.JustifyEnd
		case "center":
			s.JustifyContent = styled.JustifyCenter
		case "space-between":
			s.JustifyContent = styled.JustifySpaceBetween
		case "space-around":
			s.JustifyContent = styled.JustifySpaceAround
		case "space-evenly":
			s.JustifyContent = styled.JustifySpaceEvenly
		}
	case "align-items":
		if a, ok := parseAlign(value); ok {
			s.AlignItems = a
		}
	case "align-self":
		if a, ok := parseAlign(value); ok {
			s.AlignSelf = a
		}
	case "flex-grow":
		if n, err := strconv.ParseFloat(value, 64); err == nil && n >= 0 {
			s.FlexGrow = n
		}
	case "flex-shrink":
		if n, err := strconv.ParseFloat(value, 64); err == nil && n >= 0 {
			s.FlexShrink = n
		}
	case "flex-basis":
		setValue(&s.FlexBasis, value)
	case "gap":
		if v, ok := parseValue(value); ok {
			s.RowGap, s.ColumnGap = v, v
		}
	case "row-gap":
		setValue(&s.RowGap, value)
	case "column-gap":
		setValue(&s.ColumnGap, value)

	case "grid-template-columns":
		if tracks, ok := parseTracks(value); ok {
			s.GridTemplateColumns = tracks
		}
	case "grid-template-rows":
		if tracks, ok := parseTracks(value); ok {
			s.GridTemplateRows = tracks
		}
	case "grid-column":
		if p, ok := parsePlacement(value); ok {
			s.GridColumn = p
		}
	case "grid-row":
		if p, ok := parsePlacement(value); ok {
			s.GridRow = p
		}

	case "break-before":
		if b, ok := parseBreak(value); ok {
			s.BreakBefore = b
		}
	case "break-after":
		if b, ok := parseBreak(value); ok {
			s.BreakAfter = b
		}
	case "break-inside":
		switch value {
		case "avoid":
			s.BreakInside = styled.BreakInsideAvoid
		case "auto":
			s.BreakInside = styled.BreakInsideAuto
		}
	}
}

func parseDisplay(value string) (styled.Display, bool) {
	switch value {
	case "block":
		return styled.DisplayBlock, true
	case "inline":
		return styled.DisplayInline, true
	case "inline-block":
		return styled.DisplayInlineBlock, true
	case "flex":
		return styled.DisplayFlex, true
	case "grid":
		return styled.DisplayGrid, true
	case "list-item":
		return styled.DisplayListItem, true
	case "table":
		return styled.DisplayTable, true
	case "table-row":
		return styled.DisplayTableRow, true
	case "table-cell":
		return styled.DisplayTableCell, true
	case "table-row-group":
		return styled.DisplayTableRowGroup, true
	case "table-header-group":
		return styled.DisplayTableHeaderGroup, true
	case "table-footer-group":
		return styled.DisplayTableFooterGroup, true
	case "none":
		return styled.DisplayNone, true
	}
	return 0, false
}

func parseRunning(value string) (string, bool) {
	if !strings.HasPrefix(value, "running(") || !strings.HasSuffix(value, ")") {
		return "", false
	}
	return strings.TrimSpace(value[len("running(") : len(value)-1]), true
}

func parseOverflow(value string) (styled.Overflow, bool) {
	switch value {
	case "visible":
		return styled.OverflowVisible, true
	case "hidden":
		return styled.OverflowHidden, true
	case "scroll":
		return styled.OverflowScroll, true
	case "auto":
		return styled.OverflowAuto, true
	}
	return 0, false
}

func parseAlign(value string) (styled.AlignItems, bool) {
	switch value {
	case "auto":
		return styled.AlignAuto, true
	case "stretch":
		return styled.AlignStretch, true
	case "flex-start", "start":
		return styled.AlignStart, true
	case "flex-end", "end":
		return styled.AlignEnd, true
	case "center":
		return styled.AlignCenter, true
	}
	return 0, false
}

func parseBreak(value string) (styled.BreakRule, bool) {
	switch value {
	case "auto":
		return styled.BreakAuto, true
	case "avoid":
		return styled.BreakAvoid, true
	case "page", "always":
		return styled.BreakPage, true
	}
	return 0, false
}

func parseBorderStyle(value string) (styled.BorderLineStyle, bool) {
	switch value {
	case "none":
		return styled.BorderStyleNone, true
	case "solid":
		return styled.BorderStyleSolid, true
	case "dashed":
		return styled.BorderStyleDashed, true
	case "dotted":
		return styled.BorderStyleDotted, true
	case "double":
		return styled.BorderStyleDouble, true
	}
	return 0, false
}

// applyBorderShorthand handles "border: <width> <style> <color>" in any
// order.
func applyBorderShorthand(value string, s *styled.ComputedStyle) {
	for _, part := range strings.Fields(value) {
		if st, ok := parseBorderStyle(part); ok {
			for i := range s.BorderStyle {
				s.BorderStyle[i] = st
			}
			continue
		}
		if c, ok := ParseColor(part); ok {
			for i := range s.BorderColor {
				s.BorderColor[i] = c
			}
			continue
		}
		if v, ok := parseValue(part); ok {
			s.BorderWidth = geom.UniformEdgeValues(v)
		}
	}
}

func setValue(dst *geom.Value, src string) {
	if v, ok := parseValue(src); ok {
		*dst = v
	}
}

func parseValue(s string) (geom.Value, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "auto":
		return geom.Auto(), true
	case strings.HasSuffix(s, "%"):
		if n, err := strconv.ParseFloat(s[:len(s)-1], 64); err == nil {
			return geom.Percent(n), true
		}
	case strings.HasSuffix(s, "px"):
		if n, err := strconv.ParseFloat(s[:len(s)-2], 64); err == nil {
			return geom.Px(n), true
		}
	case strings.HasSuffix(s, "em"):
		if n, err := strconv.ParseFloat(s[:len(s)-2], 64); err == nil {
			return geom.Em(n), true
		}
	case strings.HasSuffix(s, "pt"):
		if n, err := strconv.ParseFloat(s[:len(s)-2], 64); err == nil {
			return geom.Pt(n), true
		}
	default:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return geom.Px(n), true
		}
	}
	return geom.Value{}, false
}

// parseEdgeShorthand expands 1-4 values CSS 2.2 style.
func parseEdgeShorthand(value string) (geom.EdgeValues, bool) {
	fields := strings.Fields(value)
	vals := make([]geom.Value, 0, 4)
	for _, f := range fields {
		v, ok := parseValue(f)
		if !ok {
			return geom.EdgeValues{}, false
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 1:
		return geom.EdgeValues{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}, true
	case 2:
		return geom.EdgeValues{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, true
	case 3:
		return geom.EdgeValues{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, true
	case 4:
		return geom.EdgeValues{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, true
	}
	return geom.EdgeValues{}, false
}

// parseTracks handles fixed lengths, fr units and auto.
func parseTracks(value string) ([]styled.TrackSize, bool) {
	var out []styled.TrackSize
	for _, f := range strings.Fields(value) {
		switch {
		case f == "auto":
			out = append(out, styled.TrackSize{Kind: styled.TrackAuto})
		case f == "min-content":
			out = append(out, styled.TrackSize{Kind: styled.TrackMinContent})
		case f == "max-content":
			out = append(out, styled.TrackSize{Kind: styled.TrackMaxContent})
		case strings.HasSuffix(f, "fr"):
			n, err := strconv.ParseFloat(f[:len(f)-2], 64)
			if err != nil {
				return nil, false
			}
			out = append(out, styled.TrackSize{Kind: styled.TrackFr, Fr: n})
		default:
			v, ok := parseValue(f)
			if !ok {
				return nil, false
			}
			out = append(out, styled.TrackSize{Kind: styled.TrackFixed, Size: v})
		}
	}
	return out, len(out) > 0
}

// parsePlacement handles "N", "N / M" and "span N".
func parsePlacement(value string) (styled.GridPlacement, bool) {
	value = strings.TrimSpace(value)
	if rest, ok := strings.CutPrefix(value, "span "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || n < 1 {
			return styled.GridPlacement{}, false
		}
		return styled.GridPlacement{Span: n}, true
	}
	if start, end, ok := strings.Cut(value, "/"); ok {
		a, err1 := strconv.Atoi(strings.TrimSpace(start))
		b, err2 := strconv.Atoi(strings.TrimSpace(end))
		if err1 != nil || err2 != nil {
			return styled.GridPlacement{}, false
		}
		return styled.GridPlacement{Start: a, End: b}, true
	}
	if n, err := strconv.Atoi(value); err == nil {
		return styled.GridPlacement{Start: n}, true
	}
	return styled.GridPlacement{}, false
}

// ParseColor understands #rgb, #rrggbb, #rrggbbaa, rgb()/rgba() and a
// small named set.
func ParseColor(s string) (geom.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		return parseRGBFunc(s)
	}
	c, ok := namedColors[s]
	return c, ok
}

var namedColors = map[string]geom.Color{
	"transparent": geom.RGBA(0, 0, 0, 0),
	"black":       geom.RGB(0, 0, 0),
	"white":       geom.RGB(255, 255, 255),
	"red":         geom.RGB(255, 0, 0),
	"green":       geom.RGB(0, 128, 0),
	"blue":        geom.RGB(0, 0, 255),
	"yellow":      geom.RGB(255, 255, 0),
	"cyan":        geom.RGB(0, 255, 255),
	"magenta":     geom.RGB(255, 0, 255),
	"gray":        geom.RGB(128, 128, 128),
	"grey":        geom.RGB(128, 128, 128),
	"silver":      geom.RGB(192, 192, 192),
	"orange":      geom.RGB(255, 165, 0),
	"purple":      geom.RGB(128, 0, 128),
	"pink":        geom.RGB(255, 192, 203),
	"brown":       geom.RGB(165, 42, 42),
	"lime":        geom.RGB(0, 255, 0),
	"navy":        geom.RGB(0, 0, 128),
	"teal":        geom.RGB(0, 128, 128),
}

func parseHexColor(hex string) (geom.Color, bool) {
	nibble := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		}
		return 0, false
	}
	byteAt := func(i int) (uint8, bool) {
		hi, ok1 := nibble(hex[i])
		lo, ok2 := nibble(hex[i+1])
		return hi<<4 | lo, ok1 && ok2
	}
	switch len(hex) {
	case 3:
		r, ok1 := nibble(hex[0])
		g, ok2 := nibble(hex[1])
		b, ok3 := nibble(hex[2])
		if !ok1 || !ok2 || !ok3 {
			return geom.Color{}, false
		}
		return geom.RGB(r*17, g*17, b*17), true
	case 6:
		r, ok1 := byteAt(0)
		g, ok2 := byteAt(2)
		b, ok3 := byteAt(4)
		if !ok1 || !ok2 || !ok3 {
			return geom.Color{}, false
		}
		return geom.RGB(r, g, b), true
	case 8:
		r, ok1 := byteAt(0)
		g, ok2 := byteAt(2)
		b, ok3 := byteAt(4)
		a, ok4 := byteAt(6)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return geom.Color{}, false
		}
		return geom.RGBA(r, g, b, a), true
	}
	return geom.Color{}, false
}

func parseRGBFunc(s string) (geom.Color, bool) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return geom.Color{}, false
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return geom.Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return geom.Color{}, false
		}
		ch[i] = uint8(n)
	}
	a := uint8(255)
	if len(parts) == 4 {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return geom.Color{}, false
		}
		a = uint8(f*255 + 0.5)
	}
	return geom.RGBA(ch[0], ch[1], ch[2], a), true
}
