package dsl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/reportpress/dsl"
	"github.com/ByLCY/reportpress/fonts"
)

const sampleStylesheet = `
stylesheet Report v1 {
  // 基准字号
  value_font_size: 8.2pt
  title_font_size: 7
  muted_color: #666666
  value_leading: 1.06x

  sections {
    multiplier: 1.0
    min: 8.2
  }

  section service {
    multiplier: 1.1
    font: "Arial"
  }

  section header.title { override: -1; min: 9 }

  font Arial {
    path: "static/fonts/arial.ttf"
    fallback: "/usr/share/fonts/arial.ttf"
    builtin: "Go-Regular"
  }

  font Arial-Bold { builtin: Go-Bold }
}
`

func TestParseStylesheet(t *testing.T) {
	doc, err := dsl.ParseString(sampleStylesheet)
	require.NoError(t, err)
	assert.Equal(t, "Report", doc.Name)
	assert.Equal(t, "v1", doc.Version)
	require.Len(t, doc.Body.Statements, 9)

	first := doc.Body.Statements[0].Property
	require.NotNil(t, first)
	assert.Equal(t, "value_font_size", first.Key)
	require.NotNil(t, first.Value.Number)
	assert.Equal(t, "8.2pt", *first.Value.Number)

	color := doc.Body.Statements[2].Property
	require.NotNil(t, color)
	require.NotNil(t, color.Value.Color)
	assert.Equal(t, "#666666", *color.Value.Color)

	sections := doc.Body.Statements[4].Scope
	require.NotNil(t, sections)
	assert.Equal(t, "sections", sections.Kind)
	assert.Empty(t, sections.Path)

	header := doc.Body.Statements[6].Scope
	require.NotNil(t, header)
	assert.Equal(t, "section", header.Kind)
	assert.Equal(t, []string{"header", "title"}, header.Path)
	assert.Len(t, header.Block.Statements, 2)

	bold := doc.Body.Statements[8].Scope
	require.NotNil(t, bold)
	assert.Equal(t, []string{"Arial-Bold"}, bold.Path)
}

func TestLoadStylesheet(t *testing.T) {
	ss, err := dsl.Load(strings.NewReader(sampleStylesheet))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"value_font_size":               "8.2pt",
		"title_font_size":               "7",
		"muted_color":                   "#666666",
		"value_leading":                 "1.06x",
		"sections.multiplier":           "1.0",
		"sections.min":                  "8.2",
		"section.service.multiplier":    "1.1",
		"section.service.font":          "Arial",
		"section.header.title.override": "-1",
		"section.header.title.min":      "9",
	}, ss.Style)

	assert.Equal(t, []fonts.Asset{
		{Name: "Arial", Primary: "static/fonts/arial.ttf", Fallback: "/usr/share/fonts/arial.ttf", Builtin: "Go-Regular"},
		{Name: "Arial-Bold", Builtin: "Go-Bold"},
	}, ss.Fonts)
}

func TestFlattenInlineObjectAndList(t *testing.T) {
	doc, err := dsl.ParseString(`stylesheet S v1 {
  page: { margin: 0.35in; size: letter }
  order: [ "a", "b" ]
  align: center
}`)
	require.NoError(t, err)

	flat, order, err := dsl.Flatten(doc.Body)
	require.NoError(t, err)
	assert.Equal(t, "0.35in", flat["page.margin"])
	assert.Equal(t, "letter", flat["page.size"])
	assert.Equal(t, "a,b", flat["order"])
	assert.Equal(t, "center", flat["align"])
	assert.Equal(t, []string{"page.margin", "page.size", "order", "align"}, order)
}

func TestFlattenLastValueWins(t *testing.T) {
	doc, err := dsl.ParseString("stylesheet S v1 {\n  min_font_size: 6\n  min_font_size: 7\n}")
	require.NoError(t, err)

	flat, order, err := dsl.Flatten(doc.Body)
	require.NoError(t, err)
	assert.Equal(t, "7", flat["min_font_size"])
	assert.Equal(t, []string{"min_font_size"}, order)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"version":   "stylesheet S v2 { a: 1 }",
		"bare text": "stylesheet S v1 { \"hello\" }",
		"no block":  "stylesheet S v1 { section service\n}",
		"font attr": "stylesheet S v1 { font A { color: #fff } }",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := dsl.Load(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}
