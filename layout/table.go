package layout

import "math"

// Cell is one table cell. Span > 1 merges adjacent columns.
type Cell struct {
	Block *TextBlock
	Span  int
	Fill  *Color
}

// Row is a table row. Height is a minimum; rows grow to fit their content.
type Row struct {
	Cells  []Cell
	Height float64
	Header bool
}

// TableBlock 是按行可拆分的表格块，前 HeaderRows 行在每个拆分片段的顶部重复。
type TableBlock struct {
	Columns    ColumnPlan
	Rows       []Row
	HeaderRows int
	Grid       Border
}

var (
	_ Block    = (*TableBlock)(nil)
	_ Splitter = (*TableBlock)(nil)
)

// RowHeight returns the rendered height of row i.
func (t *TableBlock) RowHeight(i int) float64 {
	row := t.Rows[i]
	h := row.Height
	for _, c := range row.Cells {
		if c.Block != nil {
			h = math.Max(h, c.Block.Height())
		}
	}
	return h
}

// BodyRows returns the number of non-header rows.
func (t *TableBlock) BodyRows() int {
	return max(len(t.Rows)-t.headerCount(), 0)
}

func (t *TableBlock) headerCount() int {
	return min(max(t.HeaderRows, 0), len(t.Rows))
}

func (t *TableBlock) Measure(_, _ float64) (float64, float64) {
	h := 0.0
	for i := range t.Rows {
		h += t.RowHeight(i)
	}
	return float64(t.Columns.Total()), h
}

func (t *TableBlock) Render(s Surface, x, y float64) {
	offsets := t.Columns.Offsets()
	cursor := y
	for i, row := range t.Rows {
		rh := t.RowHeight(i)
		col := 0
		for _, cell := range row.Cells {
			if col >= len(offsets) {
				break
			}
			span := max(cell.Span, 1)
			cx := x + offsets[col]
			cw := t.Columns.Span(col, span)
			rc := Rect{X: cx, Y: cursor, Width: cw, Height: rh, FillColor: cell.Fill}
			if t.Grid.Width > 0 {
				rc.StrokeColor = t.Grid.Color.Ptr()
				rc.StrokeWidth = t.Grid.Width
			}
			s.Rect(rc)
			if cell.Block != nil {
				// 单元格内容垂直居中
				cell.Block.renderText(s, cx, cursor+(rh-cell.Block.Height())/2+cell.Block.Padding.Top)
			}
			col += span
		}
		cursor += rh
	}
}

// Split 返回能放进 avail 高度的前半部分（含表头）与剩余部分（重复表头）。
// 一行正文都放不下时 ok 为 false。
func (t *TableBlock) Split(avail float64) (Block, Block, bool) {
	hc := t.headerCount()
	used := 0.0
	for i := 0; i < hc; i++ {
		used += t.RowHeight(i)
	}
	n := 0
	for i := hc; i < len(t.Rows); i++ {
		rh := t.RowHeight(i)
		if used+rh > avail+sizeEpsilon {
			break
		}
		used += rh
		n++
	}
	if n == 0 {
		return nil, nil, false
	}
	head, tail := t.splitAt(n)
	if tail == nil {
		return head, nil, true
	}
	return head, tail, true
}

// SplitMin splits after the first body row regardless of the available height.
func (t *TableBlock) SplitMin() (Block, Block, bool) {
	if t.BodyRows() == 0 {
		return nil, nil, false
	}
	head, tail := t.splitAt(1)
	if tail == nil {
		return head, nil, true
	}
	return head, tail, true
}

func (t *TableBlock) splitAt(n int) (*TableBlock, *TableBlock) {
	hc := t.headerCount()
	cut := hc + n
	head := &TableBlock{Columns: t.Columns, HeaderRows: t.HeaderRows, Grid: t.Grid}
	head.Rows = append(head.Rows, t.Rows[:cut]...)
	if cut >= len(t.Rows) {
		return head, nil
	}
	tail := &TableBlock{Columns: t.Columns, HeaderRows: t.HeaderRows, Grid: t.Grid}
	tail.Rows = append(tail.Rows, t.Rows[:hc]...)
	tail.Rows = append(tail.Rows, t.Rows[cut:]...)
	return head, tail
}
