package layout

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// Cell spans ride on the grid placement fields: the markup front end maps
// colspan/rowspan attributes onto style.GridColumn.Span / GridRow.Span.
type tableCell struct {
	idx     NodeIdx
	col     int
	colSpan int
	rowSpan int
}

type tableRow struct {
	idx    NodeIdx // NilIdx for rows synthesized from loose cells
	cells  []tableCell
	header bool
	footer bool
}

type tableStructure struct {
	rows     []tableRow
	cols     int
	captions []NodeIdx
}

// tableStructureOf flattens the table subtree into a row/cell grid. Rows
// render in header, body, footer order regardless of document order
// (CSS 2.2 §17.2).
func (p *pass) tableStructureOf(i NodeIdx) tableStructure {
	var s tableStructure
	var header, body, footer []tableRow

	addRow := func(rowIdx NodeIdx, head, foot bool) {
		row := tableRow{idx: rowIdx, header: head, footer: foot}
		for c := p.tree.Node(rowIdx).FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
			cn := p.tree.Node(c)
			if cn.Style.Display != styled.DisplayTableCell {
				continue
			}
			row.cells = append(row.cells, tableCell{
				idx:     c,
				colSpan: max(1, cn.Style.GridColumn.Span),
				rowSpan: max(1, cn.Style.GridRow.Span),
			})
		}
		switch {
		case head:
			header = append(header, row)
		case foot:
			footer = append(footer, row)
		default:
			body = append(body, row)
		}
	}

	for c := p.tree.Node(i).FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		switch cn.Style.Display {
		case styled.DisplayTableCaption:
			s.captions = append(s.captions, c)
		case styled.DisplayTableRow:
			addRow(c, false, false)
		case styled.DisplayTableRowGroup, styled.DisplayTableHeaderGroup, styled.DisplayTableFooterGroup:
			head := cn.Style.Display == styled.DisplayTableHeaderGroup
			foot := cn.Style.Display == styled.DisplayTableFooterGroup
			for r := cn.FirstChild; r != NilIdx; r = p.tree.Node(r).NextSibling {
				if p.tree.Node(r).Style.Display == styled.DisplayTableRow {
					addRow(r, head, foot)
				}
			}
		}
	}
	s.rows = append(append(header, body...), footer...)

	// Assign column indices, skipping slots held by earlier rowspans.
	pending := map[int]int{} // col -> rows remaining
	for ri := range s.rows {
		col := 0
		for ci := range s.rows[ri].cells {
			for pending[col] > 0 {
				col++
			}
			cell := &s.rows[ri].cells[ci]
			cell.col = col
			if cell.rowSpan > 1 {
				for cc := col; cc < col+cell.colSpan; cc++ {
					pending[cc] = cell.rowSpan - 1
				}
			}
			col += cell.colSpan
		}
		if col > s.cols {
			s.cols = col
		}
		for cc := range pending {
			if s.rows[ri].cellAt(cc) == nil && pending[cc] > 0 {
				pending[cc]--
			}
		}
	}
	return s
}

func (r *tableRow) cellAt(col int) *tableCell {
	for i := range r.cells {
		c := &r.cells[i]
		if col >= c.col && col < c.col+c.colSpan {
			return c
		}
	}
	return nil
}

// tableColumnBounds computes per-column min/max content widths from the
// cells, dividing spanning cells evenly (CSS 2.2 §17.5.2).
func (p *pass) tableColumnBounds(s tableStructure) (minW, maxW []float64) {
	minW = make([]float64, s.cols)
	maxW = make([]float64, s.cols)
	for _, row := range s.rows {
		for _, cell := range row.cells {
			in := p.intrinsic(cell.idx)
			perMin := in.MinContent / float64(cell.colSpan)
			perMax := in.MaxContent / float64(cell.colSpan)
			for c := cell.col; c < cell.col+cell.colSpan && c < s.cols; c++ {
				minW[c] = math.Max(minW[c], perMin)
				maxW[c] = math.Max(maxW[c], perMax)
			}
		}
	}
	return minW, maxW
}

func (p *pass) tableIntrinsic(i NodeIdx) IntrinsicSizes {
	s := p.tableStructureOf(i)
	if s.cols == 0 {
		return IntrinsicSizes{}
	}
	minW, maxW := p.tableColumnBounds(s)
	spacing := p.tree.Node(i).Style.BorderSpacing
	extra := spacing * float64(s.cols+1)
	var out IntrinsicSizes
	for c := 0; c < s.cols; c++ {
		out.MinContent += minW[c]
		out.MaxContent += maxW[c]
	}
	out.MinContent += extra
	out.MaxContent += extra
	return out
}

// layoutTable sizes the columns, lays each cell at its column width and
// stacks the rows, with captions above the grid.
func (p *pass) layoutTable(i NodeIdx, cs ConstraintSpace) {
	n := p.tree.Node(i)
	st := n.Style
	n.Content.Width = p.resolveBlockWidth(i, cs)
	n.Lines = nil

	s := p.tableStructureOf(i)
	origin := n.ContentOrigin()
	spacing := st.BorderSpacing
	if st.BorderCollapse {
		spacing = 0
	}

	y := 0.0
	for _, cap := range s.captions {
		cn := p.tree.Node(cap)
		cn.Box = resolveBox(cn.Style, n.Content.Width)
		cn.Pos = geom.Point{X: origin.X + cn.Box.Margin.Left, Y: origin.Y + y + cn.Box.Margin.Top}
		p.layoutBox(cap, cs.WithAvailable(geom.Size{Width: n.Content.Width, Height: cs.Available.Height}), true)
		cn = p.tree.Node(cap)
		y += cn.BorderSize().Height + cn.Box.Margin.Vertical()
	}

	if s.cols == 0 {
		n.Content.Height = p.resolveBlockHeight(i, cs, y)
		return
	}

	colW := p.tableColumnWidths(i, s, n.Content.Width, spacing)
	colX := make([]float64, s.cols+1)
	colX[0] = spacing
	for c := 0; c < s.cols; c++ {
		colX[c+1] = colX[c] + colW[c] + spacing
	}

	y += spacing
	rowY := make([]float64, len(s.rows)+1)
	rowH := make([]float64, len(s.rows))

	// First pass: lay cells out at their column widths.
	for ri, row := range s.rows {
		for _, cell := range row.cells {
			w := colW[cell.col]
			for c := cell.col + 1; c < cell.col+cell.colSpan && c < s.cols; c++ {
				w += spacing + colW[c]
			}
			h := p.layoutTableCell(cell.idx, w, cs)
			if cell.rowSpan == 1 {
				rowH[ri] = math.Max(rowH[ri], h)
			}
		}
	}
	// Grow rows under spanning cells that still don't fit.
	for ri, row := range s.rows {
		for _, cell := range row.cells {
			if cell.rowSpan <= 1 {
				continue
			}
			have := 0.0
			last := min(ri+cell.rowSpan, len(s.rows)) - 1
			for r := ri; r <= last; r++ {
				have += rowH[r]
				if r > ri {
					have += spacing
				}
			}
			need := p.tree.Node(cell.idx).BorderSize().Height
			if need > have {
				rowH[last] += need - have
			}
		}
	}

	for ri := range s.rows {
		rowY[ri] = y
		y += rowH[ri] + spacing
	}
	rowY[len(s.rows)] = y

	// Second pass: position cells and give rows their geometry.
	for ri, row := range s.rows {
		for _, cell := range row.cells {
			cn := p.tree.Node(cell.idx)
			target := geom.Point{
				X: origin.X + colX[cell.col],
				Y: origin.Y + rowY[ri],
			}
			p.tree.TranslateSubtree(cell.idx, target.X-cn.Pos.X, target.Y-cn.Pos.Y)
			// Cells stretch to the full row height.
			span := min(ri+cell.rowSpan, len(s.rows)) - 1
			h := rowY[span] + rowH[span] - rowY[ri]
			_, pb := cn.Box.PaddingAndBorder()
			if hh := h - pb; hh > cn.Content.Height {
				cn.Content.Height = hh
			}
		}
		if row.idx != NilIdx {
			rn := p.tree.Node(row.idx)
			rn.Pos = geom.Point{X: origin.X, Y: origin.Y + rowY[ri]}
			rn.Content = geom.Size{Width: n.Content.Width, Height: rowH[ri]}
			rn.Box = BoxOffsets{}
		}
	}

	// Row groups cover their rows.
	for c := n.FirstChild; c != NilIdx; c = p.tree.Node(c).NextSibling {
		cn := p.tree.Node(c)
		if !cn.Style.Display.IsRowGroup() {
			continue
		}
		var union geom.Rect
		found := false
		for r := cn.FirstChild; r != NilIdx; r = p.tree.Node(r).NextSibling {
			rb := p.tree.Node(r).BorderBox()
			if !found {
				union = rb
				found = true
			} else {
				union = union.Union(rb)
			}
		}
		if found {
			cn.Pos = geom.Point{X: union.X, Y: union.Y}
			cn.Content = geom.Size{Width: union.Width, Height: union.Height}
			cn.Box = BoxOffsets{}
		}
	}

	n = p.tree.Node(i)
	n.Content.Height = p.resolveBlockHeight(i, cs, y)
}

// tableColumnWidths runs the automatic table layout algorithm: columns get
// their max-content widths when the table fits, otherwise they shrink
// proportionally between min and max.
func (p *pass) tableColumnWidths(i NodeIdx, s tableStructure, cw float64, spacing float64) []float64 {
	minW, maxW := p.tableColumnBounds(s)
	avail := cw - spacing*float64(s.cols+1)

	sumMin, sumMax := 0.0, 0.0
	for c := 0; c < s.cols; c++ {
		sumMin += minW[c]
		sumMax += maxW[c]
	}
	out := make([]float64, s.cols)
	switch {
	case sumMax <= avail:
		// Extra space distributes in proportion to max widths.
		extra := avail - sumMax
		for c := 0; c < s.cols; c++ {
			out[c] = maxW[c]
			if sumMax > 0 {
				out[c] += extra * maxW[c] / sumMax
			}
		}
	case sumMin >= avail:
		copy(out, minW)
	default:
		// Interpolate between min and max.
		ratio := (avail - sumMin) / (sumMax - sumMin)
		for c := 0; c < s.cols; c++ {
			out[c] = minW[c] + (maxW[c]-minW[c])*ratio
		}
	}
	return out
}

func (p *pass) layoutTableCell(c NodeIdx, w float64, cs ConstraintSpace) float64 {
	cn := p.tree.Node(c)
	cn.Box = resolveBox(cn.Style, w)
	if p.forcedWidth == nil {
		p.forcedWidth = make(map[NodeIdx]float64)
	}
	pi, _ := cn.Box.PaddingAndBorder()
	content := math.Max(0, w-pi)
	p.forcedWidth[c] = content
	p.layoutBox(c, NewConstraintSpace(geom.Size{Width: w, Height: cs.Available.Height}), true)
	delete(p.forcedWidth, c)
	return p.tree.Node(c).BorderSize().Height
}
