package layout

import (
	"math"
	"sort"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

type flexItem struct {
	idx    NodeIdx
	base   float64 // hypothetical main size, margin box
	main   float64 // resolved main size, margin box
	cross  float64 // margin-box cross size after layout
	grow   float64
	shrink float64
	order  int
}

// layoutFlex implements a single-pass flexible box solve: line collection,
// free-space distribution by grow/shrink factors, then main- and
// cross-axis alignment.
func (p *pass) layoutFlex(i NodeIdx, cs ConstraintSpace) {
	n := p.tree.Node(i)
	st := n.Style
	n.Content.Width = p.resolveBlockWidth(i, cs)
	n.Lines = nil

	row := st.FlexDirection.IsRow()
	em := st.FontSize
	mainAvail := n.Content.Width
	crossAvail := math.Max(0, cs.Available.Height)
	mainGap := st.ColumnGap.Resolve(n.Content.Width, em)
	crossGap := st.RowGap.Resolve(n.Content.Width, em)
	if !row {
		mainAvail = 0 // definite only when the height is
		if !st.Height.IsAuto() {
			mainAvail = st.Height.Resolve(crossAvail, em)
		}
		crossAvail = n.Content.Width
		mainGap, crossGap = crossGap, mainGap
	}

	items := p.collectFlexItems(i, row, n.Content.Width)
	if len(items) == 0 {
		n.Content.Height = p.resolveBlockHeight(i, cs, 0)
		return
	}

	// Partition into flex lines.
	var lines [][]flexItem
	if st.FlexWrap == styled.FlexNoWrap || mainAvail <= 0 {
		lines = [][]flexItem{items}
	} else {
		var cur []flexItem
		used := 0.0
		for _, it := range items {
			if len(cur) > 0 && used+mainGap+it.base > mainAvail {
				lines = append(lines, cur)
				cur = nil
				used = 0
			}
			if len(cur) > 0 {
				used += mainGap
			}
			cur = append(cur, it)
			used += it.base
		}
		lines = append(lines, cur)
	}

	origin := n.ContentOrigin()
	crossPen := 0.0
	for li := range lines {
		line := lines[li]
		gaps := mainGap * float64(len(line)-1)

		if mainAvail > 0 {
			resolveFlexibleLengths(line, mainAvail-gaps)
		} else {
			for k := range line {
				line[k].main = line[k].base
			}
		}

		// Layout each item at its resolved main size to learn its cross
		// size.
		lineCross := 0.0
		for k := range line {
			c := p.layoutFlexItem(line[k].idx, row, line[k].main, crossAvail, cs)
			line[k].cross = c
			lineCross = math.Max(lineCross, c)
		}

		// Main-axis alignment.
		free := 0.0
		if mainAvail > 0 {
			used := gaps
			for _, it := range line {
				used += it.main
			}
			free = math.Max(0, mainAvail-used)
		}
		lead, between := justifyOffsets(st.JustifyContent, free, len(line))

		pen := lead
		for k := range line {
			it := line[k]
			cn := p.tree.Node(it.idx)
			align := itemAlign(st, cn.Style)
			crossOff := alignOffset(align, lineCross, it.cross)
			if align == styled.AlignStretch && row && cn.Style.Height.IsAuto() {
				_, pb := cn.Box.PaddingAndBorder()
				cn.Content.Height = math.Max(cn.Content.Height,
					lineCross-cn.Box.Margin.Vertical()-pb)
			}

			var target geom.Point
			if row {
				target = geom.Point{
					X: origin.X + pen + cn.Box.Margin.Left,
					Y: origin.Y + crossPen + crossOff + cn.Box.Margin.Top,
				}
			} else {
				target = geom.Point{
					X: origin.X + crossPen + crossOff + cn.Box.Margin.Left,
					Y: origin.Y + pen + cn.Box.Margin.Top,
				}
			}
			p.tree.TranslateSubtree(it.idx, target.X-cn.Pos.X, target.Y-cn.Pos.Y)
			pen += it.main + mainGap
			if k == len(line)-1 {
				pen -= mainGap
			}
			pen += between
		}
		crossPen += lineCross
		if li != len(lines)-1 {
			crossPen += crossGap
		}
	}

	var contentMain float64
	if row {
		n.Content.Height = p.resolveBlockHeight(i, cs, crossPen)
	} else {
		contentMain = 0
		for li := range lines {
			for _, it := range lines[li] {
				contentMain = math.Max(contentMain, mainExtent(p.tree, it.idx, row, origin))
			}
		}
		n.Content.Height = p.resolveBlockHeight(i, cs, contentMain)
		if crossPen > n.Content.Width && st.Width.IsAuto() {
			n.Content.Width = crossPen
		}
	}
}

func mainExtent(t *Tree, i NodeIdx, row bool, origin geom.Point) float64 {
	node := t.Node(i)
	mb := node.MarginBox()
	if row {
		return mb.Right() - origin.X
	}
	return mb.Bottom() - origin.Y
}

// collectFlexItems gathers in-flow children in order-modified document
// order with their hypothetical main sizes.
func (p *pass) collectFlexItems(i NodeIdx, row bool, cw float64) []flexItem {
	n := p.tree.Node(i)
	var items []flexItem
	for c := n.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		st := cn.Style
		if st.Position.IsOutOfFlow() {
			p.pendingOOF = append(p.pendingOOF, pendingAbs{idx: c, static: n.ContentOrigin()})
			continue
		}
		cn.Box = resolveBox(st, cw)
		base := p.flexBaseSize(c, row, cw)
		items = append(items, flexItem{
			idx:    c,
			base:   base + flexMarginMain(cn.Box, row),
			grow:   st.FlexGrow,
			shrink: st.FlexShrink,
			order:  st.Order,
		})
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].order < items[b].order })
	return items
}

func flexMarginMain(b BoxOffsets, row bool) float64 {
	if row {
		return b.Margin.Horizontal()
	}
	return b.Margin.Vertical()
}

// flexBaseSize resolves flex-basis to a border-box main size
// (CSS Flexbox §9.2.3).
func (p *pass) flexBaseSize(c NodeIdx, row bool, cw float64) float64 {
	cn := p.tree.Node(c)
	st := cn.Style
	em := st.FontSize

	basis := st.FlexBasis
	if basis.IsAuto() {
		if row && !st.Width.IsAuto() {
			basis = st.Width
		} else if !row && !st.Height.IsAuto() {
			basis = st.Height
		}
	}
	if !basis.IsAuto() {
		b := basis.Resolve(cw, em)
		if row {
			pi, _ := cn.Box.PaddingAndBorder()
			return b + pi
		}
		_, pb := cn.Box.PaddingAndBorder()
		return b + pb
	}

	// Content-based basis.
	if row {
		return p.intrinsic(c).MaxContent
	}
	_, h := p.measureContent(c, cw-cn.Box.Margin.Horizontal(), 0)
	return h
}

// resolveFlexibleLengths distributes free space by grow factors or deficit
// by scaled shrink factors (CSS Flexbox §9.7, without min-clamp loops).
func resolveFlexibleLengths(line []flexItem, avail float64) {
	sum := 0.0
	for _, it := range line {
		sum += it.base
	}
	free := avail - sum
	switch {
	case free > 0:
		total := 0.0
		for _, it := range line {
			total += it.grow
		}
		for k := range line {
			line[k].main = line[k].base
			if total > 0 {
				line[k].main += free * line[k].grow / total
			}
		}
	case free < 0:
		total := 0.0
		for _, it := range line {
			total += it.shrink * it.base
		}
		for k := range line {
			line[k].main = line[k].base
			if total > 0 {
				line[k].main += free * (line[k].shrink * line[k].base) / total
			}
			line[k].main = math.Max(0, line[k].main)
		}
	default:
		for k := range line {
			line[k].main = line[k].base
		}
	}
}

// layoutFlexItem lays an item out at its resolved main size and returns
// its margin-box cross size.
func (p *pass) layoutFlexItem(c NodeIdx, row bool, main, crossAvail float64, cs ConstraintSpace) float64 {
	cn := p.tree.Node(c)
	if p.forcedWidth == nil {
		p.forcedWidth = make(map[NodeIdx]float64)
	}
	pi, pb := cn.Box.PaddingAndBorder()
	if row {
		content := math.Max(0, main-cn.Box.Margin.Horizontal()-pi)
		p.forcedWidth[c] = content
		p.layoutBox(c, NewConstraintSpace(geom.Size{Width: content + pi, Height: crossAvail}), true)
		delete(p.forcedWidth, c)
		return p.tree.Node(c).BorderSize().Height + cn.Box.Margin.Vertical()
	}
	avail := math.Max(0, crossAvail-cn.Box.Margin.Horizontal())
	p.layoutBox(c, NewConstraintSpace(geom.Size{Width: avail, Height: main}), true)
	cn = p.tree.Node(c)
	content := math.Max(0, main-cn.Box.Margin.Vertical()-pb)
	if cn.Style.Height.IsAuto() {
		cn.Content.Height = content
	}
	return cn.BorderSize().Width + cn.Box.Margin.Horizontal()
}

func justifyOffsets(j styled.JustifyContent, free float64, count int) (lead, between float64) {
	if free <= 0 || count == 0 {
		return 0, 0
	}
	switch j {
	case styled.JustifyEnd:
		return free, 0
	case styled.JustifyCenter:
		return free / 2, 0
	case styled.JustifySpaceBetween:
		if count > 1 {
			return 0, free / float64(count-1)
		}
		return 0, 0
	case styled.JustifySpaceAround:
		g := free / float64(count)
		return g / 2, g
	case styled.JustifySpaceEvenly:
		g := free / float64(count+1)
		return g, g
	default:
		return 0, 0
	}
}

func itemAlign(container, item *styled.ComputedStyle) styled.AlignItems {
	if item.AlignSelf != styled.AlignAuto {
		return item.AlignSelf
	}
	if container.AlignItems == styled.AlignAuto {
		return styled.AlignStretch
	}
	return container.AlignItems
}

func alignOffset(a styled.AlignItems, lineCross, itemCross float64) float64 {
	switch a {
	case styled.AlignEnd:
		return lineCross - itemCross
	case styled.AlignCenter:
		return (lineCross - itemCross) / 2
	default:
		return 0
	}
}
