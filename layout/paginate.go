package layout

import (
	"go.uber.org/zap"
)

// ContinuationSuffix is appended to the title of a section resumed on a later page.
const ContinuationSuffix = " — CONTINUATION"

// Default planner margins. Zero margins are honored as given.
const (
	DefaultSafetyMargin       = 1.0
	DefaultContinuationMargin = 2.0
)

// SectionSpec identifies a narrative section.
type SectionSpec struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	StyleKey       string `json:"styleKey"`
	IsContinuation bool   `json:"isContinuation"`
}

// Continuation returns the spec relabeled for a continuation chunk.
func (s SectionSpec) Continuation() SectionSpec {
	s.Title += ContinuationSuffix
	s.IsContinuation = true
	return s
}

// PlannedSection is a section whose blocks are already built and measurable.
type PlannedSection struct {
	Spec              SectionSpec
	Title             Block
	ContinuationTitle Block
	Paragraphs        []Block
}

// Chunk 是一个标题加若干完整段落的组合，在页面流中不可拆分。
type Chunk struct {
	Section    SectionSpec
	Title      Block
	Paragraphs []Block
	// Deferred 表示该块必须从新页面开始，避免标题孤立在页底。
	Deferred bool
	// Forced 表示该块即使超出页面也放在当前页。
	Forced bool
	Box    *Border
}

var _ Block = (*Chunk)(nil)

func (c *Chunk) titleHeight(maxW float64) float64 {
	if c.Title == nil {
		return 0
	}
	_, h := c.Title.Measure(maxW, 0)
	return h
}

func (c *Chunk) bodyHeight(maxW float64) float64 {
	h := 0.0
	for _, p := range c.Paragraphs {
		_, ph := p.Measure(maxW, 0)
		h += ph
	}
	return h
}

func (c *Chunk) Measure(maxWidth, _ float64) (float64, float64) {
	return maxWidth, c.titleHeight(maxWidth) + c.bodyHeight(maxWidth)
}

func (c *Chunk) Render(s Surface, x, y float64) {
	w := 0.0
	if c.Title != nil {
		tw, th := c.Title.Measure(0, 0)
		c.Title.Render(s, x, y)
		y += th
		w = tw
	}
	top := y
	for _, p := range c.Paragraphs {
		pw, ph := p.Measure(w, 0)
		p.Render(s, x, y)
		y += ph
		w = max(w, pw)
	}
	if c.Box != nil && y > top {
		s.Rect(Rect{X: x, Y: top, Width: w, Height: y - top, StrokeColor: c.Box.Color.Ptr(), StrokeWidth: c.Box.Width})
	}
}

// Planner splits narrative sections into chunks that fit the frame.
type Planner struct {
	FrameHeight        float64
	Width              float64
	ConsumedTopOffset  float64
	SafetyMargin       float64
	ContinuationMargin float64
	// HasPriorContent marks that body content precedes the first section, so
	// forced placement never applies.
	HasPriorContent bool
	Box             *Border
	Log             *zap.Logger
}

// Plan 依次处理各节，每节状态为：首块累积 → 续块累积* → 完成。
func (p *Planner) Plan(sections []PlannedSection) []*Chunk {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	safety := p.SafetyMargin
	contMargin := p.ContinuationMargin

	var out []*Chunk
	emitted := p.HasPriorContent
	for _, sec := range sections {
		paragraphs := sec.Paragraphs
		if len(paragraphs) == 0 {
			paragraphs = []Block{Spacer{}}
		}
		heights := make([]float64, len(paragraphs))
		for i, b := range paragraphs {
			_, heights[i] = b.Measure(p.Width, 0)
		}

		first := &Chunk{Section: sec.Spec, Title: sec.Title, Box: p.Box}
		avail := p.FrameHeight - first.titleHeight(p.Width) - p.ConsumedTopOffset - safety
		if heights[0] > avail {
			if emitted {
				// 首段放不下：标题与首段整体移到新页，按整页重新累积。
				first.Deferred = true
				avail = p.FrameHeight - first.titleHeight(p.Width) - safety
				log.Debug("Section deferred to next page", zap.String("section", sec.Spec.Title))
			} else {
				first.Forced = true
				log.Info("First body content placed despite overflow",
					zap.String("event", EventForcedPlacement), zap.String("section", sec.Spec.Title))
			}
		}
		n := p.accumulate(log, first, paragraphs, heights, avail)
		out = append(out, first)
		emitted = true

		title := sec.ContinuationTitle
		if title == nil {
			title = sec.Title
		}
		for n < len(paragraphs) {
			cont := &Chunk{Section: sec.Spec.Continuation(), Title: title, Box: p.Box}
			avail := p.FrameHeight - cont.titleHeight(p.Width) - p.ConsumedTopOffset - safety - contMargin
			n += p.accumulate(log, cont, paragraphs[n:], heights[n:], avail)
			out = append(out, cont)
		}
	}
	return out
}

// accumulate 贪心地向块中加入段落，至少加入一段，返回加入的段落数。
func (p *Planner) accumulate(log *zap.Logger, c *Chunk, paragraphs []Block, heights []float64, avail float64) int {
	used := 0.0
	n := 0
	for i, b := range paragraphs {
		if n > 0 && used+heights[i] > avail {
			break
		}
		c.Paragraphs = append(c.Paragraphs, b)
		used += heights[i]
		n++
	}
	if used > avail {
		log.Warn("Paragraph taller than available frame",
			zap.String("event", EventOverflow),
			zap.String("section", c.Section.Title),
			zap.Float64("height", used),
			zap.Float64("available", avail))
	}
	return n
}
