package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/reportpress/chrome"
	"github.com/ByLCY/reportpress/fonts"
	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/layout/layouttest"
	canvasrenderer "github.com/ByLCY/reportpress/renderer/canvas"
	"github.com/ByLCY/reportpress/style"
)

var fixedNow = time.Date(2025, 1, 2, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600))

func testOptions() Options {
	return Options{
		Page: layout.PageContext{
			PageWidth:  612,
			PageHeight: 792,
			Margin:     layout.Margin{Top: 90, Right: 25.2, Bottom: 86.4, Left: 25.2},
			TopPadding: 4,
		},
		Tuning: DefaultTuning(),
		Style:  style.Defaults(),
		Dims: chrome.Dimensions{
			SquareSide: 1.18 * layout.PtPerIn,
			LineWidth:  0.6,
			Fill:       layout.Color{R: 0xD9, G: 0xD9, B: 0xD9},
		},
		Meta: layout.DocumentMeta{Title: "Relatório de Serviço", Creator: "reportpress"},
		Now:  func() time.Time { return fixedNow },
	}
}

type stubRenderer struct {
	calls int
	err   error
}

func (s *stubRenderer) Render(res *layout.Result) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(fmt.Sprintf("%%PDF pages=%d", len(res.Pages))), nil
}

func newTestGenerator(t *testing.T, decorate DecoratorFactory) *Generator {
	t.Helper()
	g, err := NewGenerator(testOptions(), layouttest.New(), &stubRenderer{}, decorate)
	require.NoError(t, err)
	return g
}

func sampleReport() *Report {
	return &Report{
		RecordID:  "42",
		Client:    "Acme Navegação",
		Vessel:    "Atlântico Sul",
		Contact:   "João",
		Job:       "Docagem",
		Location:  "Cais 3",
		City:      "Niterói",
		State:     "RJ",
		WorkOrder: "OS-17",
		Equipment: []Equipment{{Name: "Radar Furuno", Manufacturer: "Furuno", Model: "FR-8", Serial: "123"}},
		Activities: []Activity{
			{Date: "02/01/2025", Time: "08:00", Type: "Reparo", Description: "Troca de magnetron", Technician1: "Ana Maria Silva"},
			{Date: "02/01/2025", Start: "13:00", End: "15:00", Type: TechnicalLabour, Technician1: "Pedro Souza"},
		},
		Problem: "Radar sem imagem.",
		Service: "Substituição do magnetron.\n\nTestes de varredura realizados.",
		Result:  "Equipamento operacional.",
	}
}

// longReport returns a report whose service section spans several pages.
func longReport() *Report {
	r := sampleReport()
	var paras []string
	for i := range 60 {
		paras = append(paras, fmt.Sprintf("%02d %s", i, strings.Repeat("texto de serviço ", 18)))
	}
	r.Service = strings.Join(paras, "\n\n")
	return r
}

func bodyTexts(p layout.Page) []string {
	var out []string
	for _, tb := range p.Body.Texts {
		out = append(out, tb.Content)
	}
	return out
}

func TestHeaderFields(t *testing.T) {
	f := sampleReport().HeaderFields()
	assert.Equal(t, "ATLÂNTICO SUL", f.Vessel)
	assert.Equal(t, "CAIS 3 - NITERÓI - RJ", f.Location)
	assert.Equal(t, "ACME NAVEGAÇÃO", f.Client)
	assert.Equal(t, "OS-17", f.WorkOrder)

	assert.Equal(t, "CAIS", (&Report{Location: " cais ", State: " "}).HeaderFields().Location)
}

func TestDecode(t *testing.T) {
	r, err := Decode(strings.NewReader(`{"vessel":"Atlântico","equipment":[{"name":"Radar"}],"activities":[{"date":"02/01/2025","type":"Reparo","technician1":"Ana"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Atlântico", r.Vessel)
	require.Len(t, r.Equipment, 1)
	require.Len(t, r.Activities, 1)

	_, err = Decode(strings.NewReader(`{"ship":"x"}`))
	assert.Error(t, err)
	_, err = Decode(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "RS_20250103_atlantico_sul_radar_furuno.pdf", Filename("", sampleReport(), fixedNow))
	assert.Equal(t, "RS_20250103_geral.pdf", Filename(DefaultFilenameTemplate, &Report{}, fixedNow))
	assert.Equal(t, "OS_os_17.pdf", Filename("OS_${work_order}", sampleReport(), fixedNow))

	assert.NoError(t, CheckFilenameTemplate(DefaultFilenameTemplate))
	assert.Error(t, CheckFilenameTemplate("RS_${navio}"))

	_, err := NewGenerator(Options{FilenameTemplate: "${nope}"}, layouttest.New(), nil, nil)
	assert.Error(t, err)
}

func TestLayoutIsDeterministic(t *testing.T) {
	g := newTestGenerator(t, nil)

	first, err := g.Layout(longReport())
	require.NoError(t, err)
	second, err := g.Layout(longReport())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func isSectionTitle(s string) bool {
	return len(s) > 3 && s[0] >= '1' && s[0] <= '9' && s[1:3] == ". "
}

func TestLayoutSectionsAndContinuations(t *testing.T) {
	g := newTestGenerator(t, nil)

	res, err := g.Layout(longReport())
	require.NoError(t, err)
	require.Greater(t, len(res.Pages), 2)

	first := bodyTexts(res.Pages[0])
	assert.Contains(t, first, "1. PROBLEMA RELATADO/ENCONTRADO")
	assert.Contains(t, first, "RADAR FURUNO")

	cont := "2. SERVIÇO REALIZADO" + layout.ContinuationSuffix
	pageOf := map[string]int{}
	continued := 0
	for _, p := range res.Pages {
		texts := bodyTexts(p)
		require.NotEmpty(t, texts)
		if texts[0] == cont {
			continued++
		}
		// 标题不会孤立在页底
		assert.False(t, isSectionTitle(texts[len(texts)-1]), "page %d ends with %q", p.Number, texts[len(texts)-1])
		for _, s := range texts {
			if _, ok := pageOf[s]; !ok {
				pageOf[s] = p.Number
			}
		}
		// 正文不越过页脚
		for _, tb := range p.Body.Texts {
			assert.LessOrEqual(t, tb.Y+tb.Height, p.Height-p.Margin.Bottom+1e-6)
		}
	}
	assert.Positive(t, continued)
	for i, title := range []string{
		"2. SERVIÇO REALIZADO",
		"3. RESULTADO",
		"6. MATERIAL FORNECIDO PELA PRONAV",
		"DESCRIÇÃO",
	} {
		require.Contains(t, pageOf, title)
		if i > 0 {
			assert.LessOrEqual(t, pageOf[cont], pageOf[title])
		}
	}
	assert.Equal(t, []string{"OS-17", "Atlântico Sul", "Acme Navegação", "42"}, res.Meta.Keywords)
	assert.Equal(t, "42", res.Meta.Subject)
}

func TestLayoutWithoutActivities(t *testing.T) {
	g := newTestGenerator(t, nil)
	r := sampleReport()
	r.Activities = nil

	res, err := g.Layout(r)
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	assert.NotContains(t, bodyTexts(res.Pages[0]), "DESCRIÇÃO")
	// 空节仍然输出标题
	assert.Contains(t, bodyTexts(res.Pages[0]), "4. PENDÊNCIAS")
}

func TestDecoratorCalledOncePerPage(t *testing.T) {
	var pages []int
	var geoms []layout.Geometry
	g := newTestGenerator(t, func(*Report) layout.Decorator {
		return layout.DecoratorFunc(func(s layout.Surface, n int, geom layout.Geometry) error {
			pages = append(pages, n)
			geoms = append(geoms, geom)
			s.Line(layout.Line{X1: 0, Y1: 10, X2: 10, Y2: 10})
			return nil
		})
	})

	res, err := g.Layout(longReport())
	require.NoError(t, err)
	require.Len(t, pages, len(res.Pages))
	for i, n := range pages {
		assert.Equal(t, i+1, n)
		assert.Equal(t, geoms[0], geoms[i])
		assert.Len(t, res.Pages[i].Chrome.Lines, 1)
	}
}

func TestLayoutWithChrome(t *testing.T) {
	opts := testOptions()
	opts.Dims = chrome.Dimensions{
		SquareSide:    1.18 * layout.PtPerIn,
		TitleRow:      0.22 * layout.PtPerIn,
		InfoRow:       0.26 * layout.PtPerIn,
		SignatureHead: 0.24 * layout.PtPerIn,
		SignatureArea: 0.6 * layout.PtPerIn,
		FooterBar:     0.24 * layout.PtPerIn,
		LineWidth:     0.6,
	}
	ts := layouttest.New()
	base := chrome.Chrome{
		Dims:       opts.Dims,
		Texts:      chrome.DefaultTexts(),
		Styles:     chrome.StylesFrom(opts.Style),
		Typesetter: ts,
	}
	g, err := NewGenerator(opts, ts, &stubRenderer{}, WithChrome(base))
	require.NoError(t, err)

	res, err := g.Layout(sampleReport())
	require.NoError(t, err)
	var chromeTexts []string
	for _, tb := range res.Pages[0].Chrome.Texts {
		chromeTexts = append(chromeTexts, tb.Content)
	}
	assert.Contains(t, chromeTexts, "ATLÂNTICO SUL")
	assert.Contains(t, chromeTexts, "Página 1")
}

func TestGenerate(t *testing.T) {
	rnd := &stubRenderer{}
	g, err := NewGenerator(testOptions(), layouttest.New(), rnd, nil)
	require.NoError(t, err)

	doc, err := g.Generate(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "RS_20250103_atlantico_sul_radar_furuno.pdf", doc.Filename)
	assert.Equal(t, "42", doc.RecordID)
	assert.Equal(t, 1, doc.Pages)
	assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF")))
	assert.Equal(t, 1, rnd.calls)
}

func TestGenerateErrors(t *testing.T) {
	boom := errors.New("boom")
	g, err := NewGenerator(testOptions(), layouttest.New(), &stubRenderer{err: boom}, nil)
	require.NoError(t, err)

	doc, err := g.Generate(sampleReport())
	assert.Nil(t, doc)
	var ge *layout.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, layout.StageRender, ge.Stage)
	assert.ErrorIs(t, err, boom)

	doc, err = g.Generate(nil)
	assert.Nil(t, doc)
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, layout.StageSetup, ge.Stage)

	opts := testOptions()
	opts.Tuning.MinColumnWidth = 200
	g, err = NewGenerator(opts, layouttest.New(), &stubRenderer{}, nil)
	require.NoError(t, err)
	_, err = g.Generate(sampleReport())
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, layout.StageTables, ge.Stage)

	failing := func(*Report) layout.Decorator {
		return layout.DecoratorFunc(func(layout.Surface, int, layout.Geometry) error { return boom })
	}
	g, err = NewGenerator(testOptions(), layouttest.New(), &stubRenderer{}, failing)
	require.NoError(t, err)
	_, err = g.Generate(sampleReport())
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, layout.StageCompose, ge.Stage)
}

func TestOverflowIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	opts := testOptions()
	opts.Log = zap.New(core)
	g, err := NewGenerator(opts, layouttest.New(), &stubRenderer{}, nil)
	require.NoError(t, err)

	r := sampleReport()
	r.Equipment[0].Name = strings.Repeat("equipamento ", 20)
	_, err = g.Layout(r)
	require.NoError(t, err)
	assert.NotZero(t, logs.FilterField(zap.String("event", layout.EventOverflow)).Len())
}

func TestLongFirstSectionMovesInsteadOfCrossingFooter(t *testing.T) {
	g := newTestGenerator(t, nil)

	r := sampleReport()
	r.Problem = strings.Repeat("texto de problema ", 500)
	res, err := g.Layout(r)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(res.Pages), 2)

	assert.NotContains(t, bodyTexts(res.Pages[0]), "1. PROBLEMA RELATADO/ENCONTRADO")
	assert.Contains(t, bodyTexts(res.Pages[1]), "1. PROBLEMA RELATADO/ENCONTRADO")
	for _, p := range res.Pages {
		bottom := p.Height - p.Margin.Bottom + 1e-6
		for _, tb := range p.Body.Texts {
			assert.LessOrEqual(t, tb.Y+tb.Height, bottom, "page %d text %q", p.Number, tb.Content)
		}
		for _, rc := range p.Body.Rects {
			assert.LessOrEqual(t, rc.Y+rc.Height, bottom, "page %d rect at %.1f", p.Number, rc.Y)
		}
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	reg := fonts.NewRegistry("", nil)
	reg.RegisterAll([]fonts.Asset{
		{Name: "Regular", Builtin: fonts.BuiltinRegular},
		{Name: "Bold", Builtin: fonts.BuiltinBold},
	})
	rnd := canvasrenderer.NewRenderer(reg, nil)
	opts := testOptions()
	base := chrome.Chrome{
		Dims:       opts.Dims,
		Texts:      chrome.DefaultTexts(),
		Styles:     chrome.StylesFrom(opts.Style),
		Typesetter: rnd,
	}
	g, err := NewGenerator(opts, rnd, rnd, WithChrome(base))
	require.NoError(t, err)

	doc, err := g.Generate(longReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF")))
	assert.Greater(t, doc.Pages, 1)
}
