package layout_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/reportpress/layout"
)

// 页面内容区：y 从 20 到 280，高 260。
var smallPage = layout.PageContext{
	PageWidth:  200,
	PageHeight: 300,
	Margin:     layout.Margin{Top: 20, Bottom: 20, Left: 10, Right: 10},
}

type recordingDecorator struct {
	pages      []int
	geometries []layout.Geometry
}

func (d *recordingDecorator) Decorate(s layout.Surface, page int, g layout.Geometry) error {
	d.pages = append(d.pages, page)
	d.geometries = append(d.geometries, g)
	s.Rect(layout.Rect{X: 0, Y: 0, Width: g.PageWidth, Height: 10})
	return nil
}

func chunk(title, body float64) *layout.Chunk {
	return &layout.Chunk{
		Title:      layout.Spacer{Height: title},
		Paragraphs: []layout.Block{layout.Spacer{Height: body}},
		Box:        &layout.Border{Color: layout.LineGray, Width: 0.6},
	}
}

func gridTable(header float64, rows int, rowHeight float64) *layout.TableBlock {
	t := &layout.TableBlock{
		Columns:    layout.ColumnPlan{Widths: []int{90, 90}},
		HeaderRows: 1,
		Grid:       layout.Border{Color: layout.LineGray, Width: 0.6},
	}
	t.Rows = append(t.Rows, layout.Row{Height: header, Header: true, Cells: []layout.Cell{{Span: 2}}})
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, layout.Row{Height: rowHeight, Cells: []layout.Cell{{}, {}}})
	}
	return t
}

func TestComposeMovesAtomicChunkToNextPage(t *testing.T) {
	deco := &recordingDecorator{}
	c := &layout.Composer{Page: smallPage, Decorator: deco}

	pages, err := c.Compose([]layout.Block{chunk(20, 150), chunk(20, 150)})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, []int{1, 2}, deco.pages)
	assert.Equal(t, deco.geometries[0], deco.geometries[1])
	assert.Equal(t, 260.0, deco.geometries[0].FrameBottom-deco.geometries[0].FrameTop)

	// 每页：段落外框一个，页眉装饰一个
	for _, p := range pages {
		require.Len(t, p.Body.Rects, 1)
		assert.Equal(t, 40.0, p.Body.Rects[0].Y)
		assert.Len(t, p.Chrome.Rects, 1)
	}
}

func TestComposeDeferredChunkStartsNewPage(t *testing.T) {
	c := &layout.Composer{Page: smallPage}
	deferred := chunk(20, 20)
	deferred.Deferred = true

	pages, err := c.Compose([]layout.Block{chunk(20, 20), deferred})
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestComposeForcedChunkStaysOnFirstPage(t *testing.T) {
	c := &layout.Composer{Page: smallPage}
	forced := chunk(20, 1000)
	forced.Forced = true

	pages, err := c.Compose([]layout.Block{forced})
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
}

func TestComposeForcedChunkMovesWhenFreshPageFits(t *testing.T) {
	c := &layout.Composer{Page: smallPage}
	forced := chunk(20, 200)
	forced.Forced = true

	pages, err := c.Compose([]layout.Block{chunk(20, 60), forced})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Len(t, pages[1].Body.Rects, 1)
	r := pages[1].Body.Rects[0]
	assert.Equal(t, 40.0, r.Y)
	assert.LessOrEqual(t, r.Y+r.Height, 280.0)
}

func TestComposeForcedChunkTallerThanFrameStays(t *testing.T) {
	c := &layout.Composer{Page: smallPage}
	forced := chunk(20, 1000)
	forced.Forced = true

	pages, err := c.Compose([]layout.Block{chunk(20, 20), forced})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Len(t, pages[0].Body.Rects, 2)
}

func TestComposeOversizedBlockOnEmptyPage(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := &layout.Composer{Page: smallPage, Log: zap.New(core)}

	pages, err := c.Compose([]layout.Block{chunk(20, 20), chunk(20, 500)})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Len(t, pages[1].Body.Rects, 1)
	assert.Equal(t, 1, logs.FilterField(zap.String("event", layout.EventOverflow)).Len())
}

func TestComposeSplitsTableRepeatingHeader(t *testing.T) {
	c := &layout.Composer{Page: smallPage}

	pages, err := c.Compose([]layout.Block{gridTable(20, 10, 30)})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	// 第一页：表头 + 8 行；第二页：表头 + 2 行（表头为合并单元格，1 个矩形）
	assert.Len(t, pages[0].Body.Rects, 1+8*2)
	assert.Len(t, pages[1].Body.Rects, 1+2*2)
	assert.Equal(t, 20.0, pages[1].Body.Rects[0].Y)
	assert.Equal(t, 180.0, pages[1].Body.Rects[0].Width)
}

func TestComposeTableAfterContentBreaksWhenNoRowFits(t *testing.T) {
	c := &layout.Composer{Page: smallPage}

	pages, err := c.Compose([]layout.Block{chunk(20, 200), gridTable(20, 2, 30)})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Len(t, pages[1].Body.Rects, 1+2*2)
}

func TestComposeDropsSpacerAtPageEnd(t *testing.T) {
	c := &layout.Composer{Page: smallPage}

	pages, err := c.Compose([]layout.Block{chunk(20, 230), layout.Spacer{Height: 50}, chunk(10, 10)})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 20.0, pages[1].Body.Rects[0].Y-10)
}

func TestComposeDecoratorErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	c := &layout.Composer{
		Page: smallPage,
		Decorator: layout.DecoratorFunc(func(layout.Surface, int, layout.Geometry) error {
			return boom
		}),
	}

	_, err := c.Compose([]layout.Block{chunk(10, 10)})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestComposeEmptyInputStillEmitsPage(t *testing.T) {
	deco := &recordingDecorator{}
	c := &layout.Composer{Page: smallPage, Decorator: deco}

	pages, err := c.Compose(nil)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, []int{1}, deco.pages)
}
