package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Frequently used colors.
var (
	Black     = Color{}
	White     = Color{R: 255, G: 255, B: 255}
	TextColor = Color{R: 30, G: 30, B: 30}
	LineGray  = Color{R: 0xD9, G: 0xD9, B: 0xD9}
)

// ParseColor 解析 #RGB / #RRGGBB / #RRGGBBAA（忽略透明度）。
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	case 6, 8:
		v = v[:6]
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// Ptr returns a pointer to a copy of c, handy for optional fill/stroke fields.
func (c Color) Ptr() *Color { return &c }
