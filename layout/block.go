package layout

import (
	"fmt"
	"math"
)

// Block is a measurable, renderable unit of the body flow. Measure must be
// pure: the same inputs always yield the same size.
type Block interface {
	Measure(maxWidth, maxHeight float64) (w, h float64)
	Render(s Surface, x, y float64)
}

// Border describes a rectangle outline.
type Border struct {
	Color Color
	Width float64
}

// TextBlock is a paragraph laid out for a fixed width. Lines are computed once
// when the block is created.
type TextBlock struct {
	Content  string
	Style    TextStyle
	Padding  Insets
	Fill     *Color
	Border   *Border
	Overflow bool

	width float64
	lines []TextLine
}

var _ Block = (*TextBlock)(nil)

// NewTextBlock 以给定宽度（含内边距）排版文本。
func NewTextBlock(ts Typesetter, content string, style TextStyle, width float64, padding Insets) (*TextBlock, error) {
	if ts == nil {
		return nil, fmt.Errorf("排版器不能为空")
	}
	inner := math.Max(width-padding.Horizontal(), 1)
	lines, err := ts.LayoutLines(content, inner, style.Font, style.Size)
	if err != nil {
		return nil, fmt.Errorf("排版文本失败: %w", err)
	}
	if len(lines) == 0 {
		lines = []TextLine{{}}
	}
	return &TextBlock{
		Content: content,
		Style:   style,
		Padding: padding,
		width:   width,
		lines:   lines,
	}, nil
}

// Lines returns the wrapped lines.
func (b *TextBlock) Lines() []TextLine { return b.lines }

// Width returns the outer width the block was laid out for.
func (b *TextBlock) Width() float64 { return b.width }

// TextHeight returns the height of the wrapped lines without padding.
func (b *TextBlock) TextHeight() float64 {
	return float64(len(b.lines)) * b.Style.Leading
}

// Height returns the outer height including padding.
func (b *TextBlock) Height() float64 {
	return b.TextHeight() + b.Padding.Vertical()
}

func (b *TextBlock) Measure(_, _ float64) (float64, float64) {
	return b.width, b.Height()
}

func (b *TextBlock) Render(s Surface, x, y float64) {
	b.renderBox(s, x, y, b.Height())
	b.renderText(s, x, y+b.Padding.Top)
}

func (b *TextBlock) renderBox(s Surface, x, y, h float64) {
	if b.Fill == nil && b.Border == nil {
		return
	}
	rc := Rect{X: x, Y: y, Width: b.width, Height: h, FillColor: b.Fill}
	if b.Border != nil {
		rc.StrokeColor = b.Border.Color.Ptr()
		rc.StrokeWidth = b.Border.Width
	}
	s.Rect(rc)
}

func (b *TextBlock) renderText(s Surface, x, top float64) {
	s.Text(TextBox{
		Content:  b.Content,
		X:        x + b.Padding.Left,
		Y:        top,
		Width:    b.width - b.Padding.Horizontal(),
		Font:     b.Style.Font,
		FontSize: b.Style.Size,
		Leading:  b.Style.Leading,
		Color:    b.Style.Color,
		Lines:    b.lines,
		Height:   b.TextHeight(),
		Align:    b.Style.Align,
	})
}

// Spacer is vertical whitespace. A spacer that does not fit at the end of a
// page is dropped instead of being carried over.
type Spacer struct {
	Height float64
}

var _ Block = Spacer{}

func (s Spacer) Measure(maxWidth, _ float64) (float64, float64) { return 0, s.Height }
func (s Spacer) Render(Surface, float64, float64) {}
