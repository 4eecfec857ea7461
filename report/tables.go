package report

import (
	"fmt"
	"strings"

	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/style"
)

// Activity table columns.
const (
	colDate = iota
	colTime
	colType
	colDescription
	colKM
	colTech1
	colTech2
)

// ActivityProportions are the base column proportions of the activities table.
var ActivityProportions = []float64{0.09, 0.12, 0.24, 0.43, 0.03, 0.065, 0.065}

// TechnicalLabour is the activity type whose description and distance are fixed.
const TechnicalLabour = "Mão-de-Obra-Técnica"

func (g *Generator) border() *layout.Border {
	return &layout.Border{Color: g.opts.Dims.LineColor, Width: g.opts.Dims.LineWidth}
}

func (g *Generator) grid() layout.Border {
	return layout.Border{Color: g.opts.Dims.LineColor, Width: g.opts.Dims.LineWidth}
}

// headerRow builds a shaded header row. spans may be nil.
func (g *Generator) headerRow(labels []string, spans []int, plan layout.ColumnPlan, height float64) (layout.Row, error) {
	st := style.Resolve(style.RoleHeading, "", g.opts.Style)
	fill := g.opts.Dims.Fill.Ptr()
	row := layout.Row{Height: height, Header: true}
	col := 0
	for i, label := range labels {
		span := 1
		if i < len(spans) {
			span = max(spans[i], 1)
		}
		b, err := layout.ShrinkToFit(g.ts, label, st, plan.Span(col, span), max(height, st.Leading+2), layout.FitOptions{
			MinSize: g.opts.Style.CellMinFontSize,
			Padding: layout.Uniform(1),
			Log:     g.log,
		})
		if err != nil {
			return layout.Row{}, fmt.Errorf("表头 %q: %w", label, err)
		}
		row.Cells = append(row.Cells, layout.Cell{Block: b, Span: span, Fill: fill})
		col += span
	}
	return row, nil
}

// equipmentTable 构建设备表：四列等宽，单元格在固定行高内缩小字号；
// 没有设备时输出一行空白。
func (g *Generator) equipmentTable(r *Report, width int) (*layout.TableBlock, error) {
	t := g.opts.Tuning
	plan, err := layout.Allocate(layout.EqualProportions(4), width, nil, t.MinColumnWidth)
	if err != nil {
		return nil, fmt.Errorf("设备表列宽: %w", err)
	}
	header, err := g.headerRow([]string{"EQUIPAMENTO", "FABRICANTE", "MODELO", "Nº DE SÉRIE"}, nil, plan, t.EquipmentHeader)
	if err != nil {
		return nil, err
	}
	table := &layout.TableBlock{Columns: plan, Rows: []layout.Row{header}, HeaderRows: 1, Grid: g.grid()}

	items := r.Equipment
	if len(items) == 0 {
		items = []Equipment{{}}
	}
	up := newUpper()
	st := style.Resolve(style.RoleCell, "equipment", g.opts.Style)
	pad := max(1, t.CellPadding)
	for _, e := range items {
		row := layout.Row{Height: t.EquipmentRow}
		for i, v := range []string{e.Name, e.Manufacturer, e.Model, e.Serial} {
			b, err := layout.ShrinkToFit(g.ts, up(v), st, float64(plan.Widths[i]), t.EquipmentRow-1, layout.FitOptions{
				MinSize: g.opts.Style.CellMinFontSize,
				Padding: layout.Insets{Left: pad, Right: pad},
				Log:     g.log,
			})
			if err != nil {
				return nil, fmt.Errorf("设备表单元格: %w", err)
			}
			row.Cells = append(row.Cells, layout.Cell{Block: b})
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// isPlaceholder reports whether a description is a filler value.
func isPlaceholder(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "X", "-", "—":
		return true
	}
	return false
}

// describe 返回描述列与公里数列的显示内容。
func describe(a Activity) (desc, km string) {
	desc = strings.TrimSpace(a.Description)
	if isPlaceholder(desc) {
		desc = ""
	}
	km = a.KM
	origin, dest := strings.TrimSpace(a.Origin), strings.TrimSpace(a.Destination)
	if origin != "" && dest != "" {
		route := origin + " x " + dest
		if desc == "" {
			desc = route
		} else {
			desc += " — " + route
		}
	}
	if strings.EqualFold(strings.TrimSpace(a.Type), TechnicalLabour) {
		desc, km = TechnicalLabour, ""
	}
	return desc, km
}

// timeCell prefers the explicit time, otherwise joins start and end.
func timeCell(a Activity) string {
	if t := strings.TrimSpace(a.Time); t != "" {
		return t
	}
	start, end := strings.TrimSpace(a.Start), strings.TrimSpace(a.End)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

// technicianName binds the surname to the previous word with a no-break
// space so the name never wraps before it.
func technicianName(raw string) string {
	parts := strings.Fields(raw)
	if len(parts) < 2 {
		return strings.Join(parts, "")
	}
	last := len(parts) - 1
	return strings.Join(parts[:last], " ") + "\u00a0" + parts[last]
}

// activityCells returns the seven cell texts of an activity row.
func activityCells(a Activity) [7]string {
	desc, km := describe(a)
	return [7]string{
		colDate:        strings.TrimSpace(a.Date),
		colTime:        timeCell(a),
		colType:        strings.TrimSpace(a.Type),
		colDescription: desc,
		colKM:          strings.TrimSpace(km),
		colTech1:       technicianName(a.Technician1),
		colTech2:       technicianName(a.Technician2),
	}
}

// activityColumns 计算活动表列宽：描述列让出 min(delta, 方框边长/可用宽度)，
// 平均分给两个技术员列。
func (g *Generator) activityColumns(width int) (layout.ColumnPlan, error) {
	t := g.opts.Tuning
	delta := t.DescriptionDelta
	if usable := g.opts.Page.UsableWidth(); usable > 0 && g.opts.Dims.SquareSide > 0 {
		delta = min(delta, g.opts.Dims.SquareSide/usable)
	}
	return layout.Allocate(ActivityProportions, width, &layout.Perturbation{
		Delta:       delta,
		Shrink:      colDescription,
		ShrinkFloor: t.DescriptionFloor,
		Grow:        []int{colTech1, colTech2},
	}, t.MinColumnWidth)
}

// activitiesTable 构建活动表；表头在每个拆分片段重复，行按内容自动增高。
func (g *Generator) activitiesTable(items []Activity, width int) (*layout.TableBlock, error) {
	t := g.opts.Tuning
	plan, err := g.activityColumns(width)
	if err != nil {
		return nil, fmt.Errorf("活动表列宽: %w", err)
	}
	header, err := g.headerRow(
		[]string{"DATA", "HORA", "TIPO", "DESCRIÇÃO", "KM", "TÉCNICOS"},
		[]int{1, 1, 1, 1, 1, 2},
		plan, 0)
	if err != nil {
		return nil, err
	}
	table := &layout.TableBlock{Columns: plan, Rows: []layout.Row{header}, HeaderRows: 1, Grid: g.grid()}

	st := style.Resolve(style.RoleCell, "activities", g.opts.Style)
	pad := layout.Insets{Top: 2, Bottom: 2, Left: t.CellPadding, Right: t.CellPadding}
	for _, a := range items {
		var row layout.Row
		for i, text := range activityCells(a) {
			b, err := layout.ShrinkToFit(g.ts, text, st, float64(plan.Widths[i]), t.CellMaxHeight, layout.FitOptions{
				MinSize: g.opts.Style.CellMinFontSize,
				Padding: pad,
				Log:     g.log,
			})
			if err != nil {
				return nil, fmt.Errorf("活动表单元格: %w", err)
			}
			row.Cells = append(row.Cells, layout.Cell{Block: b})
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
