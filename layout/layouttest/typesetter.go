// Package layouttest provides a deterministic monospace typesetter for tests.
package layouttest

import (
	"strings"
	"sync"

	"github.com/ByLCY/reportpress/layout"
)

// Call records one LayoutLines invocation.
type Call struct {
	Content string
	Width   float64
	Size    float64
}

// Typesetter treats every rune as CharWidth*size points wide and wraps on
// spaces, breaking words longer than a line.
type Typesetter struct {
	CharWidth float64

	mu    sync.Mutex
	calls []Call
}

var _ layout.Typesetter = (*Typesetter)(nil)

// New returns a typesetter with half-em characters.
func New() *Typesetter { return &Typesetter{CharWidth: 0.5} }

// Calls returns a copy of the recorded calls.
func (t *Typesetter) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// Sizes returns the font sizes of the recorded calls in order.
func (t *Typesetter) Sizes() []float64 {
	var out []float64
	for _, c := range t.Calls() {
		out = append(out, c.Size)
	}
	return out
}

// Reset forgets recorded calls.
func (t *Typesetter) Reset() {
	t.mu.Lock()
	t.calls = nil
	t.mu.Unlock()
}

func (t *Typesetter) LayoutLines(content string, width float64, font string, size float64) ([]layout.TextLine, error) {
	t.mu.Lock()
	t.calls = append(t.calls, Call{Content: content, Width: width, Size: size})
	t.mu.Unlock()

	cw := t.CharWidth
	if cw <= 0 {
		cw = 0.5
	}
	per := cw * size
	maxRunes := int(width / per)
	if maxRunes < 1 {
		maxRunes = 1
	}

	var lines []layout.TextLine
	emit := func(s string) {
		lines = append(lines, layout.TextLine{Content: s, Width: float64(len([]rune(s))) * per})
	}
	for _, para := range strings.Split(content, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			emit("")
			continue
		}
		current := ""
		for _, w := range words {
			for len([]rune(w)) > maxRunes {
				if current != "" {
					emit(current)
					current = ""
				}
				r := []rune(w)
				emit(string(r[:maxRunes]))
				w = string(r[maxRunes:])
			}
			switch {
			case current == "":
				current = w
			case len([]rune(current))+1+len([]rune(w)) <= maxRunes:
				current += " " + w
			default:
				emit(current)
				current = w
			}
		}
		if current != "" {
			emit(current)
		}
	}
	return lines, nil
}

// Lines returns how many lines the typesetter would produce.
func (t *Typesetter) Lines(content string, width, size float64) int {
	lines, _ := (&Typesetter{CharWidth: t.CharWidth}).LayoutLines(content, width, "", size)
	return len(lines)
}
