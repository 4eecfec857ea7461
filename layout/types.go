package layout

// 该文件定义布局结果（按页的显示列表），供布局计算、渲染与调试 JSON 共用。
// 布局阶段所有坐标与尺寸均以点（pt）为单位，原点在页面左上角。

// Result 保存布局后的页面与文档元信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素。
// Body 为正文流内容，Chrome 为页眉/页脚装饰，二者坐标均为页面坐标。
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
	Body   Layer   `json:"body"`
	Chrome Layer   `json:"chrome"`
}

// Layer is an ordered display list. Shapes are drawn before texts and images.
type Layer struct {
	Texts  []TextBox  `json:"texts,omitempty"`
	Images []ImageBox `json:"images,omitempty"`
	Lines  []Line     `json:"lines,omitempty"`
	Rects  []Rect     `json:"rects,omitempty"`
}

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// TextBox 表示一个已经排好坐标的文本块。Y 为首行顶部。
type TextBox struct {
	Content  string     `json:"content"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Font     string     `json:"font"`
	FontSize float64    `json:"fontSize"`
	Leading  float64    `json:"leading"`
	Color    Color      `json:"color"`
	Lines    []TextLine `json:"lines"`
	Height   float64    `json:"height"`
	Align    string     `json:"align,omitempty"` // left（默认）/center/right
}

// TextLine 表示排版后的一行文本内容及其宽度。
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// ImageBox 用于描述图片位置与尺寸。Data 不参与调试 JSON 输出。
type ImageBox struct {
	Name   string  `json:"name"`
	Data   []byte  `json:"-"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // <=0 时由渲染器给默认值
}

// Rect 表示一个矩形（不包含圆角）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor *Color  `json:"strokeColor,omitempty"` // 为空表示不描边
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Surface receives drawing primitives. *Layer implements it by recording
// them into a display list.
type Surface interface {
	Text(tb TextBox)
	Image(img ImageBox)
	Line(ln Line)
	Rect(rc Rect)
}

var _ Surface = (*Layer)(nil)

func (l *Layer) Text(tb TextBox) { l.Texts = append(l.Texts, tb) }
func (l *Layer) Image(img ImageBox) { l.Images = append(l.Images, img) }
func (l *Layer) Line(ln Line) { l.Lines = append(l.Lines, ln) }
func (l *Layer) Rect(rc Rect) { l.Rects = append(l.Rects, rc) }

// Empty reports whether nothing has been drawn on the layer.
func (l *Layer) Empty() bool {
	return len(l.Texts) == 0 && len(l.Images) == 0 && len(l.Lines) == 0 && len(l.Rects) == 0
}
