package report

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ByLCY/reportpress/chrome"
	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/renderer"
)

// DecoratorFactory creates the header/footer decorator for one report.
type DecoratorFactory func(r *Report) layout.Decorator

// Document is the output of a successful generation.
type Document struct {
	Bytes    []byte
	Filename string
	RecordID string
	Pages    int
}

// Generator composes reports into documents. It keeps no state between calls;
// concurrent calls are safe when the typesetter and renderer are.
type Generator struct {
	opts     Options
	ts       layout.Typesetter
	renderer renderer.Renderer
	chrome   DecoratorFactory
	log      *zap.Logger
}

// NewGenerator creates a generator. decorate may be nil, pages then carry no
// header or footer.
func NewGenerator(opts Options, ts layout.Typesetter, r renderer.Renderer, decorate DecoratorFactory) (*Generator, error) {
	if ts == nil {
		return nil, errors.New("排版器不能为空")
	}
	if err := CheckFilenameTemplate(opts.FilenameTemplate); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{opts: opts, ts: ts, renderer: r, chrome: decorate, log: log}, nil
}

// Layout 完成排版但不渲染：设备表与其前后间距先行测量，得到首页已占用高度，
// 再据此规划各叙述节并与活动表一起排入页面。相同输入总是得到相同结果。
func (g *Generator) Layout(r *Report) (*layout.Result, error) {
	if r == nil {
		return nil, layout.Fail(layout.StageSetup, errors.New("报告数据为空"))
	}
	pc := g.opts.Page
	if pc.PageWidth <= 0 || pc.PageHeight <= 0 {
		return nil, layout.Fail(layout.StageSetup, fmt.Errorf("页面尺寸无效: %gx%g", pc.PageWidth, pc.PageHeight))
	}
	width := pc.TableWidth()
	if width <= 0 {
		return nil, layout.Fail(layout.StageSetup, fmt.Errorf("可用宽度无效: %d", width))
	}

	equipment, err := g.equipmentTable(r, width)
	if err != nil {
		return nil, layout.Fail(layout.StageTables, err)
	}
	blocks := []layout.Block{layout.Spacer{Height: 1}, equipment, layout.Spacer{Height: 2}}
	consumed := 0.0
	for _, b := range blocks {
		_, h := b.Measure(float64(width), pc.FrameHeight())
		consumed += h
	}
	pc.ConsumedTopOffset = math.Ceil(consumed)

	sections, err := g.buildSections(r, float64(width))
	if err != nil {
		return nil, layout.Fail(layout.StageSections, err)
	}
	planner := layout.Planner{
		FrameHeight:        pc.FrameHeight(),
		Width:              float64(width),
		ConsumedTopOffset:  pc.ConsumedTopOffset,
		SafetyMargin:       g.opts.Tuning.SafetyMargin,
		ContinuationMargin: g.opts.Tuning.ContinuationMargin,
		Box:                g.border(),
		Log:                g.log,
	}
	for _, c := range planner.Plan(sections) {
		blocks = append(blocks, c)
	}

	if len(r.Activities) > 0 {
		activities, err := g.activitiesTable(r.Activities, width)
		if err != nil {
			return nil, layout.Fail(layout.StageTables, err)
		}
		blocks = append(blocks, layout.Spacer{Height: g.opts.Tuning.SectionGap}, activities)
	}

	composer := layout.Composer{Page: pc, Log: g.log}
	if g.chrome != nil {
		composer.Decorator = g.chrome(r)
	}
	pages, err := composer.Compose(blocks)
	if err != nil {
		return nil, layout.Fail(layout.StageCompose, err)
	}
	if len(pages) == 0 {
		return nil, layout.Fail(layout.StageCompose, layout.ErrNoPages)
	}

	g.log.Debug("Report laid out",
		zap.Int("pages", len(pages)),
		zap.Float64("consumed_top", pc.ConsumedTopOffset),
		zap.Int("table_width", width))
	return &layout.Result{Pages: pages, Meta: g.meta(r)}, nil
}

func (g *Generator) meta(r *Report) layout.DocumentMeta {
	m := g.opts.Meta
	m.Keywords = append([]string(nil), m.Keywords...)
	for _, k := range []string{r.WorkOrder, r.Vessel, r.Client, r.RecordID} {
		if k != "" {
			m.Keywords = append(m.Keywords, k)
		}
	}
	if r.RecordID != "" {
		m.Subject = r.RecordID
	}
	return m
}

// Generate lays the report out and renders it. On failure no bytes are
// returned and the error is a *layout.GenerationError.
func (g *Generator) Generate(r *Report) (*Document, error) {
	res, err := g.Layout(r)
	if err != nil {
		return nil, err
	}
	if g.renderer == nil {
		return nil, layout.Fail(layout.StageRender, errors.New("未配置渲染器"))
	}
	data, err := g.renderer.Render(res)
	if err != nil {
		return nil, layout.Fail(layout.StageRender, err)
	}
	doc := &Document{
		Bytes:    data,
		Filename: Filename(g.opts.FilenameTemplate, r, g.opts.Now()),
		RecordID: r.RecordID,
		Pages:    len(res.Pages),
	}
	g.log.Info("Report generated",
		zap.String("file", doc.Filename),
		zap.Int("pages", doc.Pages),
		zap.Int("bytes", len(data)))
	return doc, nil
}

// WithChrome returns a factory drawing base with the report's header values.
func WithChrome(base chrome.Chrome) DecoratorFactory {
	return func(r *Report) layout.Decorator {
		c := base
		c.Fields = r.HeaderFields()
		return &c
	}
}
