package layout

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

type gridItem struct {
	idx                NodeIdx
	colStart, colSpan  int // zero-based start
	rowStart, rowSpan  int
	autoCol            bool
	autoRow            bool
}

// layoutGrid implements grid layout: track sizing from the templates and
// item intrinsics, row-major auto-placement, fr distribution over the free
// space, then per-cell item layout.
func (p *pass) layoutGrid(i NodeIdx, cs ConstraintSpace) {
	n := p.tree.Node(i)
	st := n.Style
	n.Content.Width = p.resolveBlockWidth(i, cs)
	n.Lines = nil
	em := st.FontSize

	colGap := st.ColumnGap.Resolve(n.Content.Width, em)
	rowGap := st.RowGap.Resolve(n.Content.Width, em)

	items := p.collectGridItems(i)
	cols := len(st.GridTemplateColumns)
	if cols == 0 {
		cols = 1
	}

	p.placeGridItems(items, st, cols)

	rows := 0
	for _, it := range items {
		if end := it.rowStart + it.rowSpan; end > rows {
			rows = end
		}
	}
	if rows < len(st.GridTemplateRows) {
		rows = len(st.GridTemplateRows)
	}
	if rows == 0 {
		n.Content.Height = p.resolveBlockHeight(i, cs, 0)
		return
	}

	colSizes := p.sizeGridColumns(st, items, cols, n.Content.Width, colGap)
	origin := n.ContentOrigin()

	colPos := make([]float64, cols+1)
	for c := 0; c < cols; c++ {
		colPos[c+1] = colPos[c] + colSizes[c]
		if c < cols-1 {
			colPos[c+1] += colGap
		}
	}

	// Lay items out at their column widths to learn their heights, then
	// size rows from the tallest single-row item.
	rowSizes := make([]float64, rows)
	for r := 0; r < rows && r < len(st.GridTemplateRows); r++ {
		tr := st.GridTemplateRows[r]
		if tr.Kind == styled.TrackFixed {
			rowSizes[r] = tr.Size.Resolve(0, em)
		}
	}
	// The zero value of grid-auto-rows means auto sizing, not 0px.
	autoRow := st.GridAutoRows
	autoRowFixed := autoRow.Kind == styled.TrackFixed && !autoRow.Size.IsZero()
	for _, it := range items {
		cw := spanWidth(colPos, colSizes, it.colStart, it.colSpan, colGap)
		h := p.layoutGridItem(it.idx, cw, cs)
		if it.rowSpan != 1 {
			continue
		}
		r := it.rowStart
		explicit := r < len(st.GridTemplateRows)
		switch {
		case explicit && st.GridTemplateRows[r].Kind == styled.TrackFixed:
			// sized from the template above
		case !explicit && autoRowFixed:
			rowSizes[r] = autoRow.Size.Resolve(0, em)
		default:
			rowSizes[r] = math.Max(rowSizes[r], h)
		}
	}

	rowPos := make([]float64, rows+1)
	for r := 0; r < rows; r++ {
		rowPos[r+1] = rowPos[r] + rowSizes[r]
		if r < rows-1 {
			rowPos[r+1] += rowGap
		}
	}

	for _, it := range items {
		cn := p.tree.Node(it.idx)
		cellW := spanWidth(colPos, colSizes, it.colStart, it.colSpan, colGap)
		cellH := rowPos[min(it.rowStart+it.rowSpan, rows)] - rowPos[it.rowStart]
		if it.rowStart+it.rowSpan < rows {
			cellH -= rowGap
		}

		target := geom.Point{
			X: origin.X + colPos[it.colStart] + cn.Box.Margin.Left,
			Y: origin.Y + rowPos[it.rowStart] + cn.Box.Margin.Top,
		}

		// justify-items / align stretch within the cell.
		bs := cn.BorderSize()
		switch justifyAlign(st.JustifyItems) {
		case styled.AlignEnd:
			target.X += math.Max(0, cellW-bs.Width-cn.Box.Margin.Horizontal())
		case styled.AlignCenter:
			target.X += math.Max(0, (cellW-bs.Width-cn.Box.Margin.Horizontal())/2)
		}
		if itemAlign(st, cn.Style) == styled.AlignStretch && cn.Style.Height.IsAuto() && cellH > 0 {
			_, pb := cn.Box.PaddingAndBorder()
			cn.Content.Height = math.Max(cn.Content.Height,
				cellH-cn.Box.Margin.Vertical()-pb)
		}

		p.tree.TranslateSubtree(it.idx, target.X-cn.Pos.X, target.Y-cn.Pos.Y)
	}

	n = p.tree.Node(i)
	n.Content.Height = p.resolveBlockHeight(i, cs, rowPos[rows])
}

func justifyAlign(a styled.AlignItems) styled.AlignItems {
	if a == styled.AlignAuto {
		return styled.AlignStretch
	}
	return a
}

func spanWidth(colPos, colSizes []float64, start, span int, gap float64) float64 {
	w := 0.0
	for c := start; c < start+span && c < len(colSizes); c++ {
		w += colSizes[c]
		if c > start {
			w += gap
		}
	}
	return w
}

func (p *pass) collectGridItems(i NodeIdx) []gridItem {
	n := p.tree.Node(i)
	var items []gridItem
	for c := n.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		if cn.Style.Position.IsOutOfFlow() {
			p.pendingOOF = append(p.pendingOOF, pendingAbs{idx: c, static: n.ContentOrigin()})
			continue
		}
		cn.Box = resolveBox(cn.Style, n.Content.Width)
		items = append(items, gridItem{idx: c})
	}
	return items
}

// placeGridItems resolves explicit placements then auto-places the rest
// row-major with a moving cursor (CSS Grid §8.5, "sparse" packing).
func (p *pass) placeGridItems(items []gridItem, st *styled.ComputedStyle, cols int) {
	occupied := make(map[[2]int]bool)
	mark := func(it *gridItem) {
		for r := it.rowStart; r < it.rowStart+it.rowSpan; r++ {
			for c := it.colStart; c < it.colStart+it.colSpan; c++ {
				occupied[[2]int{r, c}] = true
			}
		}
	}
	fits := func(r, c, rs, cspan int) bool {
		if c+cspan > cols {
			return false
		}
		for rr := r; rr < r+rs; rr++ {
			for cc := c; cc < c+cspan; cc++ {
				if occupied[[2]int{rr, cc}] {
					return false
				}
			}
		}
		return true
	}

	for k := range items {
		it := &items[k]
		cn := p.tree.Node(it.idx)
		it.colStart, it.colSpan, it.autoCol = resolvePlacement(
			cn.Style.GridColumn, st.GridTemplateColumns, cols)
		it.rowStart, it.rowSpan, it.autoRow = resolvePlacement(
			cn.Style.GridRow, st.GridTemplateRows, 1<<20)
		if !it.autoCol && !it.autoRow {
			mark(it)
		}
	}

	curR, curC := 0, 0
	for k := range items {
		it := &items[k]
		if !it.autoCol && !it.autoRow {
			continue
		}
		if !it.autoRow && it.autoCol {
			// Fixed row: scan that row for a free column.
			for c := 0; ; c++ {
				if c+it.colSpan > cols {
					c = 0
					it.rowSpan = max(1, it.rowSpan)
					break
				}
				if fits(it.rowStart, c, it.rowSpan, it.colSpan) {
					it.colStart = c
					break
				}
			}
			mark(it)
			continue
		}
		if !it.autoCol && it.autoRow {
			// Fixed column: scan rows at that column for free cells.
			for r := 0; ; r++ {
				if fits(r, it.colStart, it.rowSpan, it.colSpan) {
					it.rowStart = r
					break
				}
			}
			mark(it)
			continue
		}
		for {
			if fits(curR, curC, it.rowSpan, it.colSpan) {
				it.rowStart, it.colStart = curR, curC
				mark(it)
				curC += it.colSpan
				if curC >= cols {
					curC = 0
					curR++
				}
				break
			}
			curC++
			if curC+it.colSpan > cols {
				curC = 0
				curR++
			}
		}
	}
}

// resolvePlacement turns a grid-row/grid-column value into a zero-based
// start and span.
func resolvePlacement(gp styled.GridPlacement, tracks []styled.TrackSize, max int) (start, span int, auto bool) {
	span = 1
	if gp.Span > 0 {
		span = gp.Span
	}
	if gp.StartName != "" {
		for ti, tr := range tracks {
			if tr.LineName == gp.StartName {
				return ti, span, false
			}
		}
	}
	if gp.Start > 0 {
		start = gp.Start - 1
		if gp.End > gp.Start {
			span = gp.End - gp.Start
		}
		return start, span, false
	}
	if gp.End > 0 && gp.Span > 0 {
		start = gp.End - 1 - gp.Span
		if start < 0 {
			start = 0
		}
		return start, gp.Span, false
	}
	return 0, span, true
}

// sizeGridColumns resolves the column track sizes against the content
// width: fixed and percentage first, content-based from item intrinsics,
// then fr shares of the remainder.
func (p *pass) sizeGridColumns(st *styled.ComputedStyle, items []gridItem, cols int, cw, gap float64) []float64 {
	em := st.FontSize
	sizes := make([]float64, cols)
	frs := make([]float64, cols)

	track := func(c int) styled.TrackSize {
		if c < len(st.GridTemplateColumns) {
			return st.GridTemplateColumns[c]
		}
		return styled.TrackSize{Kind: styled.TrackAuto}
	}

	// Content contributions per column from single-span items.
	minC := make([]float64, cols)
	maxC := make([]float64, cols)
	for _, it := range items {
		if it.colSpan != 1 || it.colStart >= cols {
			continue
		}
		s := p.intrinsic(it.idx)
		m := p.tree.Node(it.idx).Box.Margin.Horizontal()
		minC[it.colStart] = math.Max(minC[it.colStart], s.MinContent+m)
		maxC[it.colStart] = math.Max(maxC[it.colStart], s.MaxContent+m)
	}

	for c := 0; c < cols; c++ {
		tr := track(c)
		sizes[c], frs[c] = resolveTrack(tr, minC[c], maxC[c], cw, em)
	}

	// Distribute the remaining space over fr tracks.
	used := gap * float64(cols-1)
	totalFr := 0.0
	for c := 0; c < cols; c++ {
		used += sizes[c]
		totalFr += frs[c]
	}
	if totalFr > 0 {
		free := math.Max(0, cw-used)
		per := free / totalFr
		for c := 0; c < cols; c++ {
			if frs[c] > 0 {
				sizes[c] += frs[c] * per
			}
		}
	}
	return sizes
}

func resolveTrack(tr styled.TrackSize, minC, maxC, cw, em float64) (size, fr float64) {
	switch tr.Kind {
	case styled.TrackFixed:
		return tr.Size.Resolve(cw, em), 0
	case styled.TrackFr:
		return 0, tr.Fr
	case styled.TrackMinContent:
		return minC, 0
	case styled.TrackMaxContent:
		return maxC, 0
	case styled.TrackFitContent:
		limit := tr.Size.Resolve(cw, em)
		return math.Min(maxC, limit), 0
	case styled.TrackMinMax:
		minSize, minFr := 0.0, 0.0
		if tr.Min != nil {
			minSize, minFr = resolveTrack(*tr.Min, minC, maxC, cw, em)
		}
		if tr.Max != nil {
			maxSize, maxFr := resolveTrack(*tr.Max, minC, maxC, cw, em)
			if maxFr > 0 {
				return minSize, maxFr
			}
			_ = minFr
			return math.Max(minSize, math.Min(maxSize, maxC)), 0
		}
		return minSize, 0
	default: // auto
		return maxC, 0
	}
}

// layoutGridItem lays an item at its cell width and returns the margin-box
// height.
func (p *pass) layoutGridItem(c NodeIdx, cellW float64, cs ConstraintSpace) float64 {
	cn := p.tree.Node(c)
	if p.forcedWidth == nil {
		p.forcedWidth = make(map[NodeIdx]float64)
	}
	pi, _ := cn.Box.PaddingAndBorder()
	content := math.Max(0, cellW-cn.Box.Margin.Horizontal()-pi)
	p.forcedWidth[c] = content
	p.layoutBox(c, NewConstraintSpace(geom.Size{Width: content + pi, Height: cs.Available.Height}), true)
	delete(p.forcedWidth, c)
	cn = p.tree.Node(c)
	return cn.BorderSize().Height + cn.Box.Margin.Vertical()
}
