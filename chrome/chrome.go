// Package chrome draws the service report header and footer on every page:
// logo square, title bar and information grid at the top, signature boxes,
// confirmation bar and page label at the bottom.
package chrome

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ByLCY/reportpress/binding"
	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/style"
)

// Dimensions holds header and footer sizes in points.
type Dimensions struct {
	SquareSide    float64
	TitleRow      float64
	InfoRow       float64
	SignatureHead float64
	SignatureArea float64
	FooterBar     float64
	PreserveTop   float64
	PreserveBelow float64
	LineWidth     float64
	LineColor     layout.Color
	Fill          layout.Color
}

// HeaderHeight is the title row plus three information rows.
func (d Dimensions) HeaderHeight() float64 { return d.TitleRow + 3*d.InfoRow }

// FooterHeight covers the signature boxes and the confirmation bar.
func (d Dimensions) FooterHeight() float64 {
	return d.SignatureHead + d.SignatureArea + d.FooterBar
}

// Fields are the header values, already formatted for display.
type Fields struct {
	Vessel    string
	Contact   string
	Location  string
	Client    string
	Job       string
	WorkOrder string
}

// Texts are the fixed captions of the chrome.
type Texts struct {
	Title        string
	Contact      string
	Confirmation string
	// PageLabel may reference ${page}.
	PageLabel string
	LogoText  string
	SignLeft  string
	SignRight string
}

// DefaultTexts returns the captions used when the configuration leaves them
// empty.
func DefaultTexts() Texts {
	return Texts{
		Title:        "RELATÓRIO DE SERVIÇO",
		Confirmation: "O SERVIÇO ACIMA FOI EXECUTADO SATISFATORIAMENTE",
		PageLabel:    "Página ${page}",
		SignLeft:     "ASSINATURA DO COMANDANTE",
		SignRight:    "ASSINATURA DO TÉCNICO",
	}
}

// Styles are the resolved text styles of the chrome.
type Styles struct {
	Title   style.Spec
	Label   style.Spec
	Value   style.Spec
	Contact style.Spec
	Bar     style.Spec
	Sign    style.Spec
	Page    style.Spec
	MinSize float64
}

// StylesFrom resolves the chrome styles from a style configuration.
func StylesFrom(cfg style.Config) Styles {
	return Styles{
		Title:   style.Resolve(style.RoleTitle, "header.title", cfg),
		Label:   style.Resolve(style.RoleLabel, "header.label", cfg),
		Value:   style.Resolve(style.RoleValue, "header.value", cfg),
		Contact: style.Resolve(style.RoleMuted, "header.contact", cfg),
		Bar:     style.Resolve(style.RoleLabel, "footer.bar", cfg),
		Sign:    style.Resolve(style.RoleLabel, "footer.sign", cfg),
		Page:    style.Resolve(style.RoleMuted, "footer.page", cfg),
		MinSize: cfg.MinFontSize,
	}
}

// Chrome implements layout.Decorator. It draws the same geometry on every
// page; only the page label changes.
type Chrome struct {
	Dims       Dimensions
	Texts      Texts
	Styles     Styles
	Fields     Fields
	Logo       *Logo
	Typesetter layout.Typesetter
	Log        *zap.Logger
}

var _ layout.Decorator = (*Chrome)(nil)

const (
	cellPad = 2.0
	logoPad = 6.0
)

func (c *Chrome) log() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// Decorate draws header and footer for one page.
func (c *Chrome) Decorate(s layout.Surface, page int, g layout.Geometry) error {
	if c.Typesetter == nil {
		return fmt.Errorf("页眉页脚缺少排版器")
	}
	if err := c.header(s, g); err != nil {
		return fmt.Errorf("绘制页眉失败: %w", err)
	}
	if err := c.footer(s, page, g); err != nil {
		return fmt.Errorf("绘制页脚失败: %w", err)
	}
	return nil
}

func (c *Chrome) stroke() (*layout.Color, float64) {
	return c.Dims.LineColor.Ptr(), c.Dims.LineWidth
}

func (c *Chrome) box(s layout.Surface, x, y, w, h float64, fill *layout.Color) {
	col, width := c.stroke()
	s.Rect(layout.Rect{X: x, Y: y, Width: w, Height: h, StrokeColor: col, StrokeWidth: width, FillColor: fill})
}

func (c *Chrome) hline(s layout.Surface, x1, x2, y float64) {
	s.Line(layout.Line{X1: x1, Y1: y, X2: x2, Y2: y, Color: c.Dims.LineColor, Width: c.Dims.LineWidth})
}

func (c *Chrome) vline(s layout.Surface, x, y1, y2 float64) {
	s.Line(layout.Line{X1: x, Y1: y1, X2: x, Y2: y2, Color: c.Dims.LineColor, Width: c.Dims.LineWidth})
}

// text 在给定单元格内放置文本：必要时缩小字号，垂直居中。
func (c *Chrome) text(s layout.Surface, content string, spec style.Spec, x, y, w, h float64, align string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	spec.Align = align
	b, err := layout.ShrinkToFit(c.Typesetter, content, spec, w, h, layout.FitOptions{
		MinSize: c.Styles.MinSize,
		Padding: layout.Insets{Left: cellPad, Right: cellPad},
		Log:     c.log(),
	})
	if err != nil {
		return err
	}
	b.Render(s, x, y+max((h-b.Height())/2, 0))
	return nil
}

// infoColumns splits the area right of the logo into label, value, label and
// value columns.
func infoColumns(total float64) [4]float64 {
	const in = layout.PtPerIn
	label, value, label2 := 1.04*in, 2.86*in, 0.5*in
	right := total - label - value - label2
	if minRight := 0.75 * in; right < minRight {
		deficit := minRight - right
		value = max(0.5*in, value-deficit/2)
		label = max(0.4*in, label-deficit/2)
		right = total - label - value - label2
	}
	return [4]float64{label, value, label2, max(right, 0)}
}

func (c *Chrome) header(s layout.Surface, g layout.Geometry) error {
	d := c.Dims
	left := g.Margin.Left
	right := left + g.UsableWidth
	top := g.Margin.Top - d.HeaderHeight()
	height := d.HeaderHeight()
	inner := left + d.SquareSide

	if err := c.text(s, c.Texts.Contact, c.Styles.Contact, left, max(top-12, 0), g.UsableWidth, min(top, 11), "center"); err != nil {
		return err
	}

	c.box(s, left, top, g.UsableWidth, height, nil)
	c.box(s, left, top, d.SquareSide, height, nil)
	c.box(s, inner, top, right-inner, d.TitleRow, c.Dims.Fill.Ptr())
	if err := c.text(s, c.Texts.Title, c.Styles.Title, inner, top, right-inner, d.TitleRow, "center"); err != nil {
		return err
	}

	c.drawLogo(s, left, top, d.SquareSide, height)

	cols := infoColumns(right - inner)
	xs := [5]float64{inner}
	for i, w := range cols {
		xs[i+1] = xs[i] + w
	}
	rowsTop := top + d.TitleRow
	for i := 1; i <= 3; i++ {
		c.hline(s, inner, right, rowsTop+float64(i)*d.InfoRow)
	}
	for _, x := range xs[1:4] {
		c.vline(s, x, rowsTop, top+height)
	}

	f := c.Fields
	rows := [3][4]string{
		{"NAVIO:", f.Vessel, "CLIENTE:", f.Client},
		{"CONTATO:", f.Contact, "OBRA:", f.Job},
		{"LOCAL:", f.Location, "OS:", f.WorkOrder},
	}
	for i, row := range rows {
		y := rowsTop + float64(i)*d.InfoRow
		for j, content := range row {
			spec := c.Styles.Value
			if j%2 == 0 {
				spec = c.Styles.Label
			}
			if err := c.text(s, content, spec, xs[j], y, cols[j], d.InfoRow, "left"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Chrome) drawLogo(s layout.Surface, x, y, w, h float64) {
	if c.Logo == nil || c.Logo.Width <= 0 || c.Logo.Height <= 0 {
		if err := c.text(s, c.Texts.LogoText, c.Styles.Title, x, y, w, h, "center"); err != nil {
			c.log().Debug("Logo text not drawn", zap.Error(err))
		}
		return
	}
	maxW, maxH := max(w-2*logoPad, 1), max(h-2*logoPad, 1)
	ratio := min(maxW/float64(c.Logo.Width), maxH/float64(c.Logo.Height))
	lw, lh := float64(c.Logo.Width)*ratio, float64(c.Logo.Height)*ratio
	s.Image(layout.ImageBox{
		Name:   c.Logo.Name,
		Data:   c.Logo.Data,
		X:      x + (w-lw)/2,
		Y:      y + (h-lh)/2,
		Width:  lw,
		Height: lh,
	})
}

func (c *Chrome) footer(s layout.Surface, page int, g layout.Geometry) error {
	d := c.Dims
	left := g.Margin.Left
	half := g.UsableWidth / 2
	mid := left + half
	top := g.PageHeight - g.Margin.Bottom

	fill := d.Fill.Ptr()
	for _, x := range []float64{left, mid} {
		s.Rect(layout.Rect{X: x, Y: top, Width: half, Height: d.SignatureHead, FillColor: fill})
		c.box(s, x, top, half, d.SignatureHead+d.SignatureArea, nil)
	}
	if err := c.text(s, c.Texts.SignLeft, c.Styles.Sign, left, top, half, d.SignatureHead, "center"); err != nil {
		return err
	}
	if err := c.text(s, c.Texts.SignRight, c.Styles.Sign, mid, top, half, d.SignatureHead, "center"); err != nil {
		return err
	}

	barTop := top + d.SignatureHead + d.SignatureArea
	s.Rect(layout.Rect{X: left, Y: barTop, Width: g.UsableWidth, Height: d.FooterBar, FillColor: fill})
	if err := c.text(s, c.Texts.Confirmation, c.Styles.Bar, left, barTop, g.UsableWidth, d.FooterBar, "center"); err != nil {
		return err
	}

	label := binding.Interpolate(c.Texts.PageLabel, map[string]any{"page": page})
	below := barTop + d.FooterBar
	return c.text(s, label, c.Styles.Page, left, below, g.UsableWidth, max(g.PageHeight-below, c.Styles.Page.Leading), "center")
}
