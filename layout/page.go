package layout

import "math"

// Common page sizes in points (portrait).
var PageSizes = map[string][2]float64{
	"letter": {612, 792},
	"legal":  {612, 1008},
	"a4":     {595.28, 841.89},
	"a5":     {419.53, 595.28},
}

// MinFrameHeight keeps the body frame usable on pathological configurations.
const MinFrameHeight = 72.0

// PageContext 描述一次生成调用中的页面几何。Margin.Top/Bottom 已包含页眉页脚的保留高度。
type PageContext struct {
	PageWidth         float64 `json:"pageWidth"`
	PageHeight        float64 `json:"pageHeight"`
	Margin            Margin  `json:"margin"`
	TopPadding        float64 `json:"topPadding"`
	ConsumedTopOffset float64 `json:"consumedTopOffset"`
}

// UsableWidth is the page width between the side margins.
func (pc PageContext) UsableWidth() float64 {
	return pc.PageWidth - pc.Margin.Left - pc.Margin.Right
}

// TableWidth is the usable width rounded down to whole points.
func (pc PageContext) TableWidth() int {
	return int(math.Floor(pc.UsableWidth() + sizeEpsilon))
}

// FrameTop is the y coordinate where body content starts.
func (pc PageContext) FrameTop() float64 {
	return pc.Margin.Top + pc.TopPadding
}

// FrameBottom is the y coordinate body content must not cross.
func (pc PageContext) FrameBottom() float64 {
	return math.Max(pc.PageHeight-pc.Margin.Bottom, pc.FrameTop()+MinFrameHeight)
}

// FrameHeight returns the body frame height, never below MinFrameHeight.
func (pc PageContext) FrameHeight() float64 {
	return pc.FrameBottom() - pc.FrameTop()
}

// Geometry returns the page geometry handed to decorators.
func (pc PageContext) Geometry() Geometry {
	return Geometry{
		PageWidth:   pc.PageWidth,
		PageHeight:  pc.PageHeight,
		Margin:      pc.Margin,
		UsableWidth: pc.UsableWidth(),
		FrameTop:    pc.FrameTop(),
		FrameBottom: pc.FrameBottom(),
	}
}

// Geometry is the read-only page layout passed to header/footer decorators.
type Geometry struct {
	PageWidth   float64 `json:"pageWidth"`
	PageHeight  float64 `json:"pageHeight"`
	Margin      Margin  `json:"margin"`
	UsableWidth float64 `json:"usableWidth"`
	FrameTop    float64 `json:"frameTop"`
	FrameBottom float64 `json:"frameBottom"`
}

// Decorator draws page chrome. It is called once per page after the page's
// body is final.
type Decorator interface {
	Decorate(s Surface, pageNumber int, g Geometry) error
}

// DecoratorFunc adapts a function to Decorator.
type DecoratorFunc func(s Surface, pageNumber int, g Geometry) error

func (f DecoratorFunc) Decorate(s Surface, pageNumber int, g Geometry) error {
	return f(s, pageNumber, g)
}
