// Package config loads the application configuration: page geometry, layout
// tuning, chrome dimensions, font assets, style overrides and logging.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"github.com/ByLCY/reportpress/chrome"
	"github.com/ByLCY/reportpress/fonts"
	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/report"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	PageConfig struct {
		Size string `yaml:"size" validate:"required,oneof=letter legal a4 a5"`
		// Margin 为左右边距；上下边距由页眉页脚高度决定。
		Margin        string `yaml:"margin" validate:"required"`
		PreserveTop   string `yaml:"preserve_top"`
		PreserveBelow string `yaml:"preserve_bottom"`
		TopPadding    string `yaml:"top_padding"`
	}

	LayoutConfig struct {
		SafetyMargin       float64 `yaml:"safety_margin" validate:"gte=0"`
		ContinuationMargin float64 `yaml:"continuation_margin" validate:"gte=0"`
		MinColumnWidth     int     `yaml:"min_column_width" validate:"gte=0"`
		CellPadding        string  `yaml:"cell_padding"`
		SectionPadding     string  `yaml:"section_padding"`
		SectionGap         string  `yaml:"section_gap"`
		CellMaxHeight      string  `yaml:"cell_max_height"`
		EquipmentHeader    string  `yaml:"equipment_header_height"`
		EquipmentRow       string  `yaml:"equipment_row_height"`
		DescriptionDelta   float64 `yaml:"description_delta" validate:"gte=0,lte=1"`
		DescriptionFloor   float64 `yaml:"description_floor" validate:"gte=0,lte=1"`
		LineWidth          float64 `yaml:"line_width" validate:"gt=0"`
		LineColor          string  `yaml:"line_color" validate:"required"`
	}

	ChromeConfig struct {
		Title         string   `yaml:"title"`
		Contact       string   `yaml:"contact"`
		Confirmation  string   `yaml:"confirmation"`
		PageLabel     string   `yaml:"page_label"`
		LogoPaths     []string `yaml:"logo_paths"`
		LogoText      string   `yaml:"logo_text"`
		SquareSide    string   `yaml:"square_side"`
		TitleRow      string   `yaml:"title_row_height"`
		InfoRow       string   `yaml:"info_row_height"`
		SignatureHead string   `yaml:"signature_header_height"`
		SignatureArea string   `yaml:"signature_area_height"`
		FooterBar     string   `yaml:"footer_bar_height"`
		Fill          string   `yaml:"fill" validate:"required"`
	}

	DocumentConfig struct {
		FilenameTemplate string `yaml:"filename_template" validate:"required"`
		StylesheetPath   string `yaml:"stylesheet_path"`
		Title            string `yaml:"title"`
		Author           string `yaml:"author"`
		Creator          string `yaml:"creator"`
		FontDir          string `yaml:"font_dir"`
		AssetDir         string `yaml:"asset_dir"`
	}

	Config struct {
		Version  int               `yaml:"version" validate:"eq=1"`
		Document DocumentConfig    `yaml:"document"`
		Page     PageConfig        `yaml:"page"`
		Layout   LayoutConfig      `yaml:"layout"`
		Chrome   ChromeConfig      `yaml:"chrome"`
		Fonts    []fonts.Asset     `yaml:"fonts" validate:"dive"`
		Style    map[string]string `yaml:"style"`
		Logging  LoggingConfig     `yaml:"logging"`
	}
)

const (
	// NOTE: must match yaml field names above
	FilenameTemplateFieldName TemplateFieldName = "filename_template"
	PageLabelFieldName        TemplateFieldName = "page_label"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(FilenameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(PageLabelFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
		if _, err := cfg.PageContext(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the expanded configuration template and
// performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

// lengths collects parse errors so a single call reports every bad value.
type lengths struct {
	errs error
}

func (l *lengths) pt(name, value string, def float64) float64 {
	if value == "" {
		return def
	}
	v, err := layout.ParseLength(value)
	if err != nil {
		l.errs = multierr.Append(l.errs, fmt.Errorf("%s: %w", name, err))
		return def
	}
	return v.ToPT()
}

// ChromeGeometry 返回页眉页脚的几何尺寸（pt）。
func (c *Config) ChromeGeometry() (chrome.Dimensions, error) {
	var l lengths
	g := chrome.Dimensions{
		SquareSide:    l.pt("chrome.square_side", c.Chrome.SquareSide, 1.18*layout.PtPerIn),
		TitleRow:      l.pt("chrome.title_row_height", c.Chrome.TitleRow, 0.22*layout.PtPerIn),
		InfoRow:       l.pt("chrome.info_row_height", c.Chrome.InfoRow, 0.26*layout.PtPerIn),
		SignatureHead: l.pt("chrome.signature_header_height", c.Chrome.SignatureHead, 0.24*layout.PtPerIn),
		SignatureArea: l.pt("chrome.signature_area_height", c.Chrome.SignatureArea, 0.6*layout.PtPerIn),
		FooterBar:     l.pt("chrome.footer_bar_height", c.Chrome.FooterBar, 0.24*layout.PtPerIn),
		PreserveTop:   l.pt("page.preserve_top", c.Page.PreserveTop, 0.25*layout.PtPerIn),
		PreserveBelow: l.pt("page.preserve_bottom", c.Page.PreserveBelow, 0.12*layout.PtPerIn),
		LineWidth:     c.Layout.LineWidth,
	}
	var err error
	if g.LineColor, err = layout.ParseColor(c.Layout.LineColor); err != nil {
		l.errs = multierr.Append(l.errs, fmt.Errorf("layout.line_color: %w", err))
	}
	if g.Fill, err = layout.ParseColor(c.Chrome.Fill); err != nil {
		l.errs = multierr.Append(l.errs, fmt.Errorf("chrome.fill: %w", err))
	}
	if l.errs != nil {
		return chrome.Dimensions{}, l.errs
	}
	return g, nil
}

// PageContext 根据页面与页眉页脚配置计算本次生成的页面几何。
// 上下边距包含页眉页脚占用的高度，ConsumedTopOffset 由调用方填写。
func (c *Config) PageContext() (layout.PageContext, error) {
	size, ok := layout.PageSizes[c.Page.Size]
	if !ok {
		return layout.PageContext{}, fmt.Errorf("未知纸张尺寸 %q", c.Page.Size)
	}
	g, err := c.ChromeGeometry()
	if err != nil {
		return layout.PageContext{}, err
	}
	var l lengths
	side := l.pt("page.margin", c.Page.Margin, 0.35*layout.PtPerIn)
	pad := l.pt("page.top_padding", c.Page.TopPadding, 4)
	if l.errs != nil {
		return layout.PageContext{}, l.errs
	}
	if 2*side >= size[0] {
		return layout.PageContext{}, fmt.Errorf("边距 %.2fpt 超出页面宽度", side)
	}
	return layout.PageContext{
		PageWidth:  size[0],
		PageHeight: size[1],
		Margin: layout.Margin{
			Top:    g.PreserveTop + g.HeaderHeight(),
			Right:  side,
			Bottom: g.PreserveBelow + g.FooterHeight(),
			Left:   side,
		},
		TopPadding: pad,
	}, nil
}

// Tuning converts the layout section to points.
func (c *Config) Tuning() (report.Tuning, error) {
	var l lengths
	t := report.Tuning{
		SafetyMargin:       c.Layout.SafetyMargin,
		ContinuationMargin: c.Layout.ContinuationMargin,
		MinColumnWidth:     c.Layout.MinColumnWidth,
		CellPadding:        l.pt("layout.cell_padding", c.Layout.CellPadding, 2),
		SectionPadding:     l.pt("layout.section_padding", c.Layout.SectionPadding, 3),
		SectionGap:         l.pt("layout.section_gap", c.Layout.SectionGap, 0.12*layout.PtPerIn),
		CellMaxHeight:      l.pt("layout.cell_max_height", c.Layout.CellMaxHeight, 0.7*layout.PtPerIn),
		EquipmentHeader:    l.pt("layout.equipment_header_height", c.Layout.EquipmentHeader, 0.16*layout.PtPerIn),
		EquipmentRow:       l.pt("layout.equipment_row_height", c.Layout.EquipmentRow, 0.14*layout.PtPerIn),
		DescriptionDelta:   c.Layout.DescriptionDelta,
		DescriptionFloor:   c.Layout.DescriptionFloor,
	}
	if l.errs != nil {
		return report.Tuning{}, l.errs
	}
	return t, nil
}
