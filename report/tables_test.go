package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/reportpress/layout"
)

func TestSplitParagraphs(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []string
	}{
		"blank lines":  {"first\nstill first\n\nsecond\r\n\r\nthird", []string{"first\nstill first", "second", "third"}},
		"single lines": {"a\nb\r\nc", []string{"a", "b", "c"}},
		"blank wins":   {"a\nb\r\n\nc", []string{"a\nb", "c"}},
		"only lines":   {" a \n\n", []string{"a"}},
		"empty":        {"  \n ", nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitParagraphs(tt.in))
		})
	}
}

func TestActivityCells(t *testing.T) {
	tests := map[string]struct {
		in   Activity
		want [7]string
	}{
		"placeholder description": {
			Activity{Date: "02/01/2025", Time: "08:00", Type: "Reparo", Description: " x ", KM: "12", Technician1: "Ana Maria Silva"},
			[7]string{"02/01/2025", "08:00", "Reparo", "", "12", "Ana Maria\u00a0Silva", ""},
		},
		"route appended": {
			Activity{Type: "Deslocamento", Description: "Viagem", Origin: "Rio", Destination: "Santos", Start: "08:00", End: "12:00", Technician1: "João"},
			[7]string{"", "08:00 - 12:00", "Deslocamento", "Viagem — Rio x Santos", "", "João", ""},
		},
		"route only": {
			Activity{Type: "Deslocamento", Description: "—", Origin: "Rio", Destination: "Santos", End: "12:00"},
			[7]string{"", "12:00", "Deslocamento", "Rio x Santos", "", "", ""},
		},
		"technical labour": {
			Activity{Type: "mão-de-obra-técnica", Description: "ignored", KM: "40", Technician2: "  Pedro   Souza "},
			[7]string{"", "", "mão-de-obra-técnica", TechnicalLabour, "", "", "Pedro\u00a0Souza"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, activityCells(tt.in))
		})
	}
}

func TestActivityColumns(t *testing.T) {
	g := newTestGenerator(t, nil)

	plan, err := g.activityColumns(561)
	require.NoError(t, err)
	assert.Equal(t, 561, plan.Total())

	base, err := layout.Allocate(ActivityProportions, 561, nil, 12)
	require.NoError(t, err)
	assert.Less(t, plan.Widths[colDescription], base.Widths[colDescription])
	assert.Greater(t, plan.Widths[colTech1], base.Widths[colTech1])
	assert.Greater(t, plan.Widths[colTech2], base.Widths[colTech2])
	for _, w := range plan.Widths {
		assert.GreaterOrEqual(t, w, 12)
	}
}

func TestEquipmentTableBlankRow(t *testing.T) {
	g := newTestGenerator(t, nil)

	table, err := g.equipmentTable(&Report{}, 561)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.True(t, table.Rows[0].Header)
	assert.Equal(t, 561, table.Columns.Total())
	for _, c := range table.Rows[1].Cells {
		assert.Empty(t, c.Block.Content)
	}
}

func TestEquipmentTableUpperCasesAndFitsRows(t *testing.T) {
	g := newTestGenerator(t, nil)
	r := &Report{Equipment: []Equipment{
		{Name: "radar de navegação", Manufacturer: "furuno", Model: "fr-8", Serial: "abc123"},
		{Name: strings.Repeat("giroscópio ", 12)},
	}}

	table, err := g.equipmentTable(r, 561)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "RADAR DE NAVEGAÇÃO", table.Rows[1].Cells[0].Block.Content)
	assert.Equal(t, "FURUNO", table.Rows[1].Cells[1].Block.Content)

	long := table.Rows[2].Cells[0].Block
	assert.Less(t, long.Style.Size, 8.2)
	assert.GreaterOrEqual(t, long.Style.Size, g.opts.Style.CellMinFontSize)
}

func TestActivitiesTableHeaderSpan(t *testing.T) {
	g := newTestGenerator(t, nil)

	table, err := g.activitiesTable([]Activity{{Type: "Reparo", Technician1: "Ana Silva"}}, 561)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	header := table.Rows[0]
	require.Len(t, header.Cells, 6)
	assert.Equal(t, "TÉCNICOS", header.Cells[5].Block.Content)
	assert.Equal(t, 2, header.Cells[5].Span)
	assert.Len(t, table.Rows[1].Cells, 7)
}
