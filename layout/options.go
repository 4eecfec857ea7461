package layout

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// width 与 size 均为 pt；显式换行必须保留，超宽的单词允许在词内断开。
type Typesetter interface {
	LayoutLines(content string, width float64, font string, size float64) ([]TextLine, error)
}

// TextStyle is the resolved, immutable style of a piece of text.
type TextStyle struct {
	Font    string  `json:"font"`
	Size    float64 `json:"size"`
	Leading float64 `json:"leading"`
	Align   string  `json:"align,omitempty"`
	Color   Color   `json:"color"`
}

// LeadingRatio returns leading/size, or the default ratio when either is unset.
func (s TextStyle) LeadingRatio() float64 {
	if s.Size <= 0 || s.Leading <= 0 {
		return DefaultLeadingRatio
	}
	return s.Leading / s.Size
}

// Insets 表示内边距（pt）。
type Insets struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform returns insets with the same value on every side.
func Uniform(v float64) Insets { return Insets{Top: v, Right: v, Bottom: v, Left: v} }

// Horizontal returns left+right.
func (i Insets) Horizontal() float64 { return i.Left + i.Right }

// Vertical returns top+bottom.
func (i Insets) Vertical() float64 { return i.Top + i.Bottom }
