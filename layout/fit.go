package layout

import (
	"go.uber.org/zap"
)

const (
	// ShrinkStep is the font size decrement used while fitting text.
	ShrinkStep = 0.5
	// DefaultLeadingRatio applies when a style carries no leading.
	DefaultLeadingRatio = 1.06

	sizeEpsilon = 1e-9
)

// Event names used in structured logs.
const (
	EventOverflow        = "layout_overflow"
	EventForcedPlacement = "pagination_forced_placement"
)

// FitOptions controls ShrinkToFit.
type FitOptions struct {
	// MinSize is the legibility floor. It never raises the style size.
	MinSize float64
	// LeadingRatio overrides leading/size; zero keeps the style ratio.
	LeadingRatio float64
	Padding      Insets
	Log          *zap.Logger
}

// ShrinkToFit 在 maxWidth×maxHeight 内排版文本：从样式字号开始，每次减小 0.5pt，
// 行距按比例同步缩小，直到高度不超过 maxHeight 或到达最小字号。
// 到达最小字号仍放不下时返回最小字号的结果并标记 Overflow，文本永远不被截断。
func ShrinkToFit(ts Typesetter, text string, style TextStyle, maxWidth, maxHeight float64, opts FitOptions) (*TextBlock, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	ratio := opts.LeadingRatio
	if ratio <= 0 {
		ratio = style.LeadingRatio()
	}
	base := style.Size
	floor := opts.MinSize
	if floor <= 0 || floor > base {
		floor = base
	}

	var block *TextBlock
	for k := 0; ; k++ {
		size := base - float64(k)*ShrinkStep
		last := false
		if size <= floor+sizeEpsilon {
			size, last = floor, true
		}
		st := style
		st.Size = size
		st.Leading = size * ratio

		var err error
		if block, err = NewTextBlock(ts, text, st, maxWidth, opts.Padding); err != nil {
			return nil, err
		}
		if block.Height() <= maxHeight+sizeEpsilon {
			return block, nil
		}
		if last {
			break
		}
	}

	block.Overflow = true
	log.Warn("Text does not fit at minimum size",
		zap.String("event", EventOverflow),
		zap.Float64("size", block.Style.Size),
		zap.Float64("height", block.Height()),
		zap.Float64("max_height", maxHeight),
		zap.String("text", abbreviate(text, 40)))
	return block, nil
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
