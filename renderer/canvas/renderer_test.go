package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/reportpress/fonts"
	"github.com/ByLCY/reportpress/layout"
)

func newTestRenderer() *Renderer {
	reg := fonts.NewRegistry("", nil)
	reg.Register(fonts.Asset{Name: "Body", Builtin: fonts.BuiltinRegular})
	return NewRenderer(reg, nil)
}

func TestLayoutLinesWrapsWithFontMetrics(t *testing.T) {
	r := newTestRenderer()

	lines, err := r.LayoutLines("hello world again", 40, "Body", 12)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(lines), 2)
	for _, ln := range lines {
		assert.LessOrEqual(t, ln.Width, 40.0+1e-9)
	}

	single, err := r.LayoutLines("hello", 1e6, "Body", 12)
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Greater(t, single[0].Width, 0.0)

	// 字号翻倍，宽度翻倍
	double, err := r.LayoutLines("hello", 1e6, "Body", 24)
	require.NoError(t, err)
	assert.InDelta(t, single[0].Width*2, double[0].Width, 1e-6)
}

func TestLayoutLinesRejectsInvalidSize(t *testing.T) {
	_, err := newTestRenderer().LayoutLines("x", 10, "Body", 0)
	assert.Error(t, err)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRenderProducesPDF(t *testing.T) {
	r := newTestRenderer()
	lines, err := r.LayoutLines("Relatório de serviço", 200, "Body", 10)
	require.NoError(t, err)

	page := layout.Page{Number: 1, Width: 612, Height: 792}
	page.Body.Text(layout.TextBox{X: 20, Y: 20, Width: 200, Font: "Body", FontSize: 10, Leading: 10.6, Lines: lines, Align: "center"})
	page.Body.Rect(layout.Rect{X: 20, Y: 20, Width: 200, Height: 12, StrokeColor: layout.Black.Ptr(), FillColor: layout.LineGray.Ptr()})
	page.Chrome.Line(layout.Line{X1: 20, Y1: 700, X2: 500, Y2: 700})
	page.Chrome.Image(layout.ImageBox{Name: "logo", Data: pngBytes(t), X: 20, Y: 720, Width: 40, Height: 20})
	second := layout.Page{Number: 2, Width: 612, Height: 792}

	data, err := r.Render(&layout.Result{
		Pages: []layout.Page{page, second},
		Meta:  layout.DocumentMeta{Title: "RS", Keywords: []string{"record:42"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderErrors(t *testing.T) {
	r := newTestRenderer()

	_, err := r.Render(nil)
	assert.Error(t, err)

	_, err = r.Render(&layout.Result{})
	assert.ErrorIs(t, err, layout.ErrNoPages)

	page := layout.Page{Number: 1, Width: 612, Height: 792}
	page.Chrome.Image(layout.ImageBox{Name: "broken", Data: []byte("not an image"), Width: 10, Height: 10})
	_, err = r.Render(&layout.Result{Pages: []layout.Page{page}})
	assert.Error(t, err)
}
