package report

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/reportpress/chrome"
	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/style"
)

// Tuning holds layout constants in points.
type Tuning struct {
	SafetyMargin       float64
	ContinuationMargin float64
	MinColumnWidth     int
	CellPadding        float64
	SectionPadding     float64
	SectionGap         float64
	CellMaxHeight      float64
	EquipmentHeader    float64
	EquipmentRow       float64
	DescriptionDelta   float64
	DescriptionFloor   float64
}

// DefaultTuning returns the built-in layout constants.
func DefaultTuning() Tuning {
	return Tuning{
		SafetyMargin:       layout.DefaultSafetyMargin,
		ContinuationMargin: layout.DefaultContinuationMargin,
		MinColumnWidth:     12,
		CellPadding:        2,
		SectionPadding:     3,
		SectionGap:         0.12 * layout.PtPerIn,
		CellMaxHeight:      0.7 * layout.PtPerIn,
		EquipmentHeader:    0.16 * layout.PtPerIn,
		EquipmentRow:       0.14 * layout.PtPerIn,
		DescriptionDelta:   0.12,
		DescriptionFloor:   0.08,
	}
}

// Options configures a Generator. Page must already include the header and
// footer reservations in its margins.
type Options struct {
	Page   layout.PageContext
	Tuning Tuning
	Style  style.Config
	// Dims supplies the logo square side, line and fill settings.
	Dims             chrome.Dimensions
	Meta             layout.DocumentMeta
	FilenameTemplate string
	// Now defaults to time.Now; only its UTC date is used.
	Now func() time.Time
	Log *zap.Logger
}

// DefaultFilenameTemplate is used when Options.FilenameTemplate is empty.
const DefaultFilenameTemplate = "RS_${date}_${vessel}_${equipment}"

func newUpper() func(string) string {
	c := cases.Upper(language.BrazilianPortuguese)
	return func(s string) string { return c.String(strings.TrimSpace(s)) }
}
