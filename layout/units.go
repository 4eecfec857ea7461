package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths and leading.
// Layout works in points; renderers convert at their boundary.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm  = 0.352777
	MmToPt  = 1.0 / PtToMm
	PtPerIn = 72.0
)

// String returns a short suffix for a Unit value.
func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToPT converts the length to points. Unit-less values are taken as points.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * PtPerIn
	default:
		return l.Value
	}
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// ParseLength parses strings like "0.35in", "4pt", "3mm" or "12".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度值为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("长度值 %q 无法解析: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// LeadingKind distinguishes factor-based vs absolute leading.
type LeadingKind int

const (
	LeadingFactor LeadingKind = iota
	LeadingAbsolute
)

// LeadingSpec keeps author intent: a factor of the font size (1.2x) or an
// absolute length (10pt).
type LeadingSpec struct {
	Kind   LeadingKind `json:"kind"`
	Factor float64     `json:"factor,omitempty"`
	Len    Length      `json:"len,omitempty"`
}

// ParseLeading accepts "1.2x", "1.2" (factor) or a length with a unit.
func ParseLeading(value string) (LeadingSpec, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if f, ok := strings.CutSuffix(v, "x"); ok {
		factor, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return LeadingSpec{}, fmt.Errorf("行距 %q 无法解析: %w", value, err)
		}
		return LeadingSpec{Kind: LeadingFactor, Factor: factor}, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return LeadingSpec{}, err
	}
	if l.Unit == UnitNone {
		return LeadingSpec{Kind: LeadingFactor, Factor: l.Value}, nil
	}
	return LeadingSpec{Kind: LeadingAbsolute, Len: l}, nil
}

// Resolve computes the leading in points for a font size in points.
func (s LeadingSpec) Resolve(size float64) float64 {
	switch s.Kind {
	case LeadingAbsolute:
		return s.Len.ToPT()
	default:
		if s.Factor <= 0 {
			return size * DefaultLeadingRatio
		}
		return size * s.Factor
	}
}
