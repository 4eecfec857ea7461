package style

import "math"

// baseSize returns the role size before section policies apply.
func (c Config) baseSize(role Role) float64 {
	switch role {
	case RoleTitle:
		return c.TitleSize
	case RoleLabel, RoleHeading:
		return c.LabelSize * positive(c.LabelMultiplier)
	case RoleMuted:
		return c.ValueSize * positive(c.ValueMultiplier) * 0.9
	default:
		return c.ValueSize * positive(c.ValueMultiplier)
	}
}

// ResolveSize 按优先级确定字号：
//  1. 节的绝对覆盖值（>0）；
//  2. 节的相对字号 = 角色基准 × 倍数，不低于节的最小值；
//  3. 全局节策略（仅当 sectionKey 非空）；
//  4. 角色基准字号。
//
// 结果限制在 [MinFontSize, MaxFontSize] 内。纯函数，无副作用。
func ResolveSize(role Role, sectionKey string, cfg Config) float64 {
	base := cfg.baseSize(role)
	size := base
	if p, ok := cfg.perSection[sectionKey]; ok && p.sized() {
		size = p.size(base)
	} else if sectionKey != "" && cfg.Sections.sized() {
		size = cfg.Sections.size(base)
	}
	return clamp(size, cfg.MinFontSize, cfg.MaxFontSize)
}

// Resolve returns the full style for a role within a section.
func Resolve(role Role, sectionKey string, cfg Config) Spec {
	size := ResolveSize(role, sectionKey, cfg)

	font := cfg.RegularFont
	if role.Bold() {
		font = cfg.BoldFont
	}
	if p, ok := cfg.perSection[sectionKey]; ok && p.Font != "" {
		font = p.Font
	} else if sectionKey != "" && cfg.Sections.Font != "" && !role.Bold() {
		font = cfg.Sections.Font
	}

	align := "left"
	if role == RoleTitle || role == RoleHeading {
		align = "center"
	}
	color := cfg.TextColor
	if role == RoleMuted {
		color = cfg.MutedColor
	}

	rule := cfg.leading[role]
	return Spec{
		Font:    font,
		Size:    size,
		Leading: math.Max(rule.min, rule.spec.Resolve(size)),
		Align:   align,
		Color:   color,
	}
}

func positive(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
