package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"go.uber.org/zap"

	"github.com/ByLCY/reportpress/fonts"
	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/renderer"
)

// defaultStrokeWidth 为未指定线宽时的描边宽度（pt）。
const defaultStrokeWidth = 0.6

// Renderer draws layout results via github.com/tdewolff/canvas. It also acts
// as the layout typesetter so that wrapping and drawing share font metrics.
type Renderer struct {
	fonts *fonts.Registry
	log   *zap.Logger
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// NewRenderer creates a renderer backed by the given font registry; a nil
// registry means fonts.Default().
func NewRenderer(reg *fonts.Registry, log *zap.Logger) *Renderer {
	if reg == nil {
		reg = fonts.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{fonts: reg, log: log}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, layout.ErrNoPages
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.log.Debug("PDF rendered", zap.Int("pages", len(result.Pages)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// LayoutLines 实现 layout.Typesetter：width 与 size 为 pt，
// 宽度由注册表中的字体度量给出。
func (r *Renderer) LayoutLines(content string, width float64, font string, size float64) ([]layout.TextLine, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %g", size)
	}
	face := r.fonts.Metrics(font).Face(size, nil)
	measure := func(s string) float64 {
		return face.TextWidth(s) * layout.MmToPt
	}
	lines := greedyWrapTokens(content, width, measure)
	if len(lines) == 0 {
		lines = []layout.TextLine{{}}
	}
	return lines, nil
}

// drawPage 先绘制正文层，再绘制页眉页脚层；每层内先形状后文本与图片。
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	for _, l := range []*layout.Layer{&page.Body, &page.Chrome} {
		if err := r.drawLayer(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawLayer(ctx *canvas.Context, l *layout.Layer) error {
	drawRects(ctx, l.Rects)
	drawLines(ctx, l.Lines)
	for _, tb := range l.Texts {
		r.drawTextBox(ctx, tb)
	}
	return drawImages(ctx, l.Images)
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) {
	if tb.FontSize <= 0 {
		return
	}
	face := r.fonts.Metrics(tb.Font).Face(tb.FontSize, colorFromLayout(tb.Color))

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: tb.Width}}
	}
	leading := tb.Leading
	if leading <= 0 {
		leading = tb.FontSize * layout.DefaultLeadingRatio
	}

	// 处理水平对齐：left（默认）/center/right。
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	// 行框高度为 leading，基线位于行顶部向下 (leading - 字高)/2 + ascent
	metrics := face.Metrics()
	ascent := metrics.Ascent * layout.MmToPt
	textHeight := (metrics.Ascent + metrics.Descent) * layout.MmToPt
	offset := ascent + max((leading-textHeight)/2, 0)

	cursorY := tb.Y
	for _, line := range lines {
		if line.Content != "" {
			textLine := canvas.NewTextLine(face, line.Content, textAlign)
			ctx.DrawText(toMm(anchorX), toMm(cursorY+offset), textLine)
		}
		cursorY += leading
	}
}

func drawImages(ctx *canvas.Context, images []layout.ImageBox) error {
	for _, img := range images {
		if len(img.Data) == 0 || img.Width <= 0 {
			continue
		}
		decoded, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
		if err != nil {
			return fmt.Errorf("解码图片 %s 失败: %w", img.Name, err)
		}
		px := decoded.Bounds().Dx()
		if px <= 0 {
			continue
		}
		dpmm := float64(px) / toMm(img.Width)
		ctx.DrawImage(toMm(img.X), toMm(img.Y), decoded, canvas.DPMM(dpmm))
	}
	return nil
}

// drawLines 绘制直线列表
func drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetFillColor(color.RGBA{})
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(toMm(w))
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(toMm(ln.X2-ln.X1), toMm(ln.Y2-ln.Y1))
		ctx.DrawPath(toMm(ln.X1), toMm(ln.Y1), p)
	}
}

// drawRects 绘制矩形；未设置描边或填充的部分保持透明
func drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		if rc.FillColor == nil && rc.StrokeColor == nil {
			continue
		}
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{})
		}
		if rc.StrokeColor != nil {
			w := rc.StrokeWidth
			if w <= 0 {
				w = defaultStrokeWidth
			}
			ctx.SetStrokeColor(colorFromLayout(*rc.StrokeColor))
			ctx.SetStrokeWidth(toMm(w))
		} else {
			ctx.SetStrokeColor(color.RGBA{})
			ctx.SetStrokeWidth(0)
		}
		ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
	}
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
