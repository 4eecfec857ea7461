package report

import (
	"fmt"
	"strings"

	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/style"
)

// splitParagraphs 将正文拆成段落：包含空行时按空行拆分，否则按行拆分。
// 段落内容保持原样，仅去除首尾空白并丢弃空段落。
func splitParagraphs(body string) []string {
	body = strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))
	sep := "\n"
	if strings.Contains(body, "\n\n") {
		sep = "\n\n"
	}
	var out []string
	for _, p := range strings.Split(body, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// sectionTitle numbers a section title, starting at 1.
func sectionTitle(n int, title string) string {
	return fmt.Sprintf("%d. %s", n, title)
}

func (g *Generator) titleBlock(text string, continuation bool, width float64) (*layout.TextBlock, error) {
	st := style.Resolve(style.RoleLabel, "", g.opts.Style)
	pad := layout.Insets{Top: 1, Bottom: 1, Left: max(1, g.opts.Tuning.CellPadding-1)}
	if continuation {
		pad = layout.Insets{Top: 2, Bottom: 2, Left: g.opts.Tuning.SectionPadding}
	}
	pad.Right = pad.Left
	b, err := layout.NewTextBlock(g.ts, text, st, width, pad)
	if err != nil {
		return nil, err
	}
	b.Fill = g.opts.Dims.Fill.Ptr()
	b.Border = g.border()
	return b, nil
}

// buildSections builds the measurable blocks of every narrative section.
// An empty body yields one empty paragraph so the title never stands alone.
func (g *Generator) buildSections(r *Report, width float64) ([]layout.PlannedSection, error) {
	var out []layout.PlannedSection
	for i, sec := range r.Sections() {
		spec := layout.SectionSpec{
			Title:    sectionTitle(i+1, sec.Title),
			Body:     sec.Body,
			StyleKey: sec.Key,
		}
		title, err := g.titleBlock(spec.Title, false, width)
		if err != nil {
			return nil, fmt.Errorf("节 %s 标题: %w", sec.Key, err)
		}
		cont, err := g.titleBlock(spec.Continuation().Title, true, width)
		if err != nil {
			return nil, fmt.Errorf("节 %s 续标题: %w", sec.Key, err)
		}

		texts := splitParagraphs(sec.Body)
		if len(texts) == 0 {
			texts = []string{""}
		}
		st := style.Resolve(style.RoleValue, sec.Key, g.opts.Style)
		pad := layout.Insets{Top: 1, Bottom: 1, Left: g.opts.Tuning.CellPadding, Right: g.opts.Tuning.CellPadding}
		paragraphs := make([]layout.Block, 0, len(texts))
		for _, t := range texts {
			b, err := layout.NewTextBlock(g.ts, t, st, width, pad)
			if err != nil {
				return nil, fmt.Errorf("节 %s 段落: %w", sec.Key, err)
			}
			paragraphs = append(paragraphs, b)
		}

		out = append(out, layout.PlannedSection{
			Spec:              spec,
			Title:             title,
			ContinuationTitle: cont,
			Paragraphs:        paragraphs,
		})
	}
	return out, nil
}
