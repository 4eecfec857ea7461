// Package style resolves font sizes and text styles from an immutable
// configuration built out of flat key/value overrides.
package style

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/ByLCY/reportpress/layout"
)

// Spec is a resolved text style.
type Spec = layout.TextStyle

// Role is the typographic role of a piece of text.
type Role int

const (
	RoleTitle Role = iota
	RoleLabel
	RoleHeading
	RoleValue
	RoleCell
	RoleMuted
)

var roleNames = map[Role]string{
	RoleTitle:   "title",
	RoleLabel:   "label",
	RoleHeading: "heading",
	RoleValue:   "value",
	RoleCell:    "cell",
	RoleMuted:   "muted",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

// Bold reports whether the role is drawn with the bold face.
func (r Role) Bold() bool {
	return r == RoleTitle || r == RoleLabel || r == RoleHeading
}

// SectionPolicy adjusts sizes for one section (or for all sections).
type SectionPolicy struct {
	// Override is an absolute size; ignored when <= 0.
	Override float64
	// Multiplier scales the role base size; 0 means 1.
	Multiplier float64
	// Min floors the multiplied size.
	Min  float64
	Font string
}

func (p SectionPolicy) sized() bool {
	return p.Override > 0 || p.Multiplier > 0 || p.Min > 0
}

func (p SectionPolicy) size(base float64) float64 {
	if p.Override > 0 {
		return p.Override
	}
	m := p.Multiplier
	if m <= 0 {
		m = 1
	}
	return max(base*m, p.Min)
}

type leadingRule struct {
	spec layout.LeadingSpec
	min  float64
}

// Config is an immutable style configuration. Build it with FromOverrides or
// Defaults; the zero value is not usable.
type Config struct {
	MinFontSize     float64
	MaxFontSize     float64
	CellMinFontSize float64
	TitleSize       float64
	LabelSize       float64
	ValueSize       float64
	LabelMultiplier float64
	ValueMultiplier float64
	RegularFont     string
	BoldFont        string
	TextColor       layout.Color
	MutedColor      layout.Color
	Sections        SectionPolicy

	perSection map[string]SectionPolicy
	leading    map[Role]leadingRule
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		MinFontSize:     6,
		MaxFontSize:     72,
		CellMinFontSize: 6,
		TitleSize:       7,
		LabelSize:       8.2,
		ValueSize:       8.2,
		LabelMultiplier: 1,
		ValueMultiplier: 1,
		RegularFont:     "Regular",
		BoldFont:        "Bold",
		TextColor:       layout.TextColor,
		MutedColor:      layout.Color{R: 100, G: 100, B: 100},
		Sections:        SectionPolicy{Multiplier: 1, Min: 8.2},
		perSection: map[string]SectionPolicy{
			"header.title":   {Min: 9},
			"header.contact": {Min: 7},
			"header.label":   {Min: 8},
			"header.value":   {Min: 8},
			"footer.bar":     {Min: 7},
			"footer.sign":    {Min: 7},
			"footer.page":    {Min: 6},
		},
		leading: map[Role]leadingRule{
			RoleTitle:   {layout.LeadingSpec{Factor: 1.15}, 8},
			RoleLabel:   {layout.LeadingSpec{Factor: 1.05}, 7},
			RoleHeading: {layout.LeadingSpec{Factor: 1.05}, 7},
			RoleValue:   {layout.LeadingSpec{Factor: 1.06}, 7},
			RoleCell:    {layout.LeadingSpec{Factor: 1.06}, 7},
			RoleMuted:   {layout.LeadingSpec{Factor: 1.06}, 6},
		},
	}
}

// Section returns the policy configured for a section key.
func (c Config) Section(key string) (SectionPolicy, bool) {
	p, ok := c.perSection[key]
	return p, ok
}

// SectionKeys lists section keys with a dedicated policy, sorted.
func (c Config) SectionKeys() []string {
	return slices.Sorted(maps.Keys(c.perSection))
}

// FromOverrides 以默认配置为基础应用扁平键值覆盖。
//
// 支持的键：min_font_size, max_font_size, cell_min_font_size,
// {title,label,value}_font_size, {label,value}_multiplier, font_regular,
// font_bold, text_color, muted_color, <role>_leading,
// sections.{override,multiplier,min,font},
// section.<key>.{override,multiplier,min,font}.
// 未知键与非法值合并为一个错误返回。
func FromOverrides(overrides map[string]string) (Config, error) {
	cfg := Defaults()
	cfg.perSection = maps.Clone(cfg.perSection)
	cfg.leading = maps.Clone(cfg.leading)

	var errs error
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		if err := cfg.apply(key, strings.TrimSpace(overrides[key])); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("样式配置 %s: %w", key, err))
		}
	}
	if cfg.MinFontSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("min_font_size 必须为正数"))
	}
	if cfg.MaxFontSize < cfg.MinFontSize {
		errs = multierr.Append(errs, fmt.Errorf("max_font_size (%g) 小于 min_font_size (%g)", cfg.MaxFontSize, cfg.MinFontSize))
	}
	if errs != nil {
		return Config{}, errs
	}
	return cfg, nil
}

func (c *Config) apply(key, value string) error {
	if rest, ok := strings.CutPrefix(key, "section."); ok {
		i := strings.LastIndexByte(rest, '.')
		if i <= 0 {
			return fmt.Errorf("缺少节属性")
		}
		p := c.perSection[rest[:i]]
		if err := p.set(rest[i+1:], value); err != nil {
			return err
		}
		c.perSection[rest[:i]] = p
		return nil
	}
	if attr, ok := strings.CutPrefix(key, "sections."); ok {
		return c.Sections.set(attr, value)
	}
	if name, ok := strings.CutSuffix(key, "_leading"); ok {
		for role, rn := range roleNames {
			if rn == name {
				spec, err := layout.ParseLeading(value)
				if err != nil {
					return err
				}
				rule := c.leading[role]
				rule.spec = spec
				c.leading[role] = rule
				return nil
			}
		}
		return fmt.Errorf("未知角色 %s", name)
	}

	var target *float64
	switch key {
	case "min_font_size":
		target = &c.MinFontSize
	case "max_font_size":
		target = &c.MaxFontSize
	case "cell_min_font_size":
		target = &c.CellMinFontSize
	case "title_font_size":
		target = &c.TitleSize
	case "label_font_size":
		target = &c.LabelSize
	case "value_font_size":
		target = &c.ValueSize
	case "label_multiplier":
		target = &c.LabelMultiplier
	case "value_multiplier":
		target = &c.ValueMultiplier
	case "font_regular":
		c.RegularFont = value
		return nil
	case "font_bold":
		c.BoldFont = value
		return nil
	case "text_color", "muted_color":
		col, err := layout.ParseColor(value)
		if err != nil {
			return err
		}
		if key == "text_color" {
			c.TextColor = col
		} else {
			c.MutedColor = col
		}
		return nil
	default:
		return fmt.Errorf("未知配置项")
	}
	v, err := parseSize(value)
	if err != nil {
		return err
	}
	*target = v
	return nil
}

func (p *SectionPolicy) set(attr, value string) error {
	if attr == "font" {
		p.Font = value
		return nil
	}
	v, err := parseSize(value)
	if err != nil {
		return err
	}
	switch attr {
	case "override":
		p.Override = v
	case "multiplier":
		p.Multiplier = v
	case "min":
		p.Min = v
	default:
		return fmt.Errorf("未知节属性 %s", attr)
	}
	return nil
}

// parseSize accepts plain numbers or lengths such as "8.2pt"; negative values
// mean "disabled" and are stored as-is.
func parseSize(value string) (float64, error) {
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v, nil
	}
	l, err := layout.ParseLength(value)
	if err != nil {
		return 0, err
	}
	return l.ToPT(), nil
}
