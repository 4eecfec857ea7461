package layout

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Perturbation moves Delta of the total width from one column to others before
// widths are computed, making room for content anchored beside the table.
type Perturbation struct {
	Delta float64
	// Shrink is the column that gives up space.
	Shrink int
	// ShrinkFloor bounds the shrink column's proportion from below.
	ShrinkFloor float64
	// Grow receives the removed amount, evenly unless GrowWeights is set.
	Grow        []int
	GrowWeights []float64
}

// ColumnPlan holds integer column widths that add up to the table width.
type ColumnPlan struct {
	Widths      []int     `json:"widths"`
	Proportions []float64 `json:"proportions"`
}

// Total returns the sum of the widths.
func (p ColumnPlan) Total() int {
	total := 0
	for _, w := range p.Widths {
		total += w
	}
	return total
}

// Offsets returns the x offset of every column relative to the table origin.
func (p ColumnPlan) Offsets() []float64 {
	out := make([]float64, len(p.Widths))
	x := 0
	for i, w := range p.Widths {
		out[i] = float64(x)
		x += w
	}
	return out
}

// Span returns the width covered by n columns starting at col.
func (p ColumnPlan) Span(col, n int) float64 {
	w := 0
	for i := col; i < col+n && i < len(p.Widths); i++ {
		w += p.Widths[i]
	}
	return float64(w)
}

// EqualProportions returns n equal proportions.
func EqualProportions(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}

// Adjust applies the perturbation and returns the proportions before
// renormalization.
func Adjust(proportions []float64, p Perturbation) ([]float64, error) {
	adj, err := adjust(proportions, &p)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(adj))
	for i, d := range adj {
		out[i] = d.InexactFloat64()
	}
	return out, nil
}

// Allocate 将比例换算为整数列宽：可选扰动 → 归一化 → 逐列向下取整 → 余数归最后一列
// → 不足 minWidth 的列从最宽的列借宽。所有比例运算使用十进制精确计算。
func Allocate(proportions []float64, width int, p *Perturbation, minWidth int) (ColumnPlan, error) {
	if width <= 0 {
		return ColumnPlan{}, fmt.Errorf("表格宽度必须为正数: %d", width)
	}
	adj, err := adjust(proportions, p)
	if err != nil {
		return ColumnPlan{}, err
	}
	n := len(adj)
	if minWidth*n > width {
		return ColumnPlan{}, fmt.Errorf("最小列宽 %d × %d 列超过表格宽度 %d", minWidth, n, width)
	}

	total := decimal.Sum(adj[0], adj[1:]...)
	if !total.IsPositive() {
		return ColumnPlan{}, fmt.Errorf("列比例之和必须为正数")
	}
	norm := make([]decimal.Decimal, n)
	acc := decimal.Zero
	for i := 0; i < n-1; i++ {
		norm[i] = adj[i].DivRound(total, 16)
		acc = acc.Add(norm[i])
	}
	norm[n-1] = decimal.NewFromInt(1).Sub(acc)

	W := decimal.NewFromInt(int64(width))
	widths := make([]int, n)
	used := 0
	for i, q := range norm {
		widths[i] = int(q.Mul(W).Floor().IntPart())
		used += widths[i]
	}
	widths[n-1] += width - used

	if err := enforceMinimum(widths, minWidth); err != nil {
		return ColumnPlan{}, err
	}

	plan := ColumnPlan{Widths: widths, Proportions: make([]float64, n)}
	for i, q := range norm {
		plan.Proportions[i] = q.InexactFloat64()
	}
	return plan, nil
}

func adjust(proportions []float64, p *Perturbation) ([]decimal.Decimal, error) {
	n := len(proportions)
	if n == 0 {
		return nil, fmt.Errorf("至少需要一列")
	}
	adj := make([]decimal.Decimal, n)
	for i, v := range proportions {
		if v < 0 {
			return nil, fmt.Errorf("第 %d 列比例为负数: %g", i, v)
		}
		adj[i] = decimal.NewFromFloat(v)
	}
	if p == nil || p.Delta == 0 {
		return adj, nil
	}
	if p.Delta < 0 {
		return nil, fmt.Errorf("扰动量不能为负数: %g", p.Delta)
	}
	if p.Shrink < 0 || p.Shrink >= n {
		return nil, fmt.Errorf("收缩列下标越界: %d", p.Shrink)
	}
	if len(p.Grow) == 0 {
		return nil, fmt.Errorf("扰动缺少接收列")
	}
	if len(p.GrowWeights) > 0 && len(p.GrowWeights) != len(p.Grow) {
		return nil, fmt.Errorf("接收列权重数量 %d 与接收列数量 %d 不一致", len(p.GrowWeights), len(p.Grow))
	}
	for _, g := range p.Grow {
		if g < 0 || g >= n || g == p.Shrink {
			return nil, fmt.Errorf("接收列下标无效: %d", g)
		}
	}

	delta := decimal.NewFromFloat(p.Delta)
	reduced := adj[p.Shrink].Sub(delta)
	if floor := decimal.NewFromFloat(p.ShrinkFloor); reduced.LessThan(floor) {
		reduced = decimal.Min(floor, adj[p.Shrink])
	}
	removed := adj[p.Shrink].Sub(reduced)
	adj[p.Shrink] = reduced

	weights := make([]decimal.Decimal, len(p.Grow))
	for i := range p.Grow {
		weights[i] = decimal.NewFromInt(1)
		if len(p.GrowWeights) > 0 {
			if p.GrowWeights[i] < 0 {
				return nil, fmt.Errorf("接收列权重为负数: %g", p.GrowWeights[i])
			}
			weights[i] = decimal.NewFromFloat(p.GrowWeights[i])
		}
	}
	wsum := decimal.Sum(weights[0], weights[1:]...)
	if !wsum.IsPositive() {
		return nil, fmt.Errorf("接收列权重之和必须为正数")
	}
	for i, g := range p.Grow {
		adj[g] = adj[g].Add(removed.Mul(weights[i]).Div(wsum))
	}
	return adj, nil
}

func enforceMinimum(widths []int, minWidth int) error {
	if minWidth <= 0 {
		return nil
	}
	for i := range widths {
		need := minWidth - widths[i]
		if need <= 0 {
			continue
		}
		donors := make([]int, 0, len(widths))
		for j := range widths {
			if j != i && widths[j] > minWidth {
				donors = append(donors, j)
			}
		}
		sort.SliceStable(donors, func(a, b int) bool { return widths[donors[a]] > widths[donors[b]] })
		for _, j := range donors {
			take := min(need, widths[j]-minWidth)
			widths[j] -= take
			widths[i] += take
			need -= take
			if need == 0 {
				break
			}
		}
		if need > 0 {
			return fmt.Errorf("无法满足最小列宽 %d", minWidth)
		}
	}
	return nil
}
