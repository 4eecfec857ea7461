package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/ByLCY/reportpress/layout"
)

// measureFunc returns the advance width of s in points.
type measureFunc func(s string) float64

// greedyWrapTokens 贪心换行：优先在空白处断行，单词超过行宽时在词内拆分。
// 显式换行总是保留；不间断空格（U+00A0、U+202F）不作为断行点。
func greedyWrapTokens(content string, width float64, measure measureFunc) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var lines []layout.TextLine
	var builder strings.Builder
	currentWidth := 0.0
	// wrapped 为 true 表示当前行由自动折行产生，行首空白应丢弃
	wrapped := false

	emit := func(force, soft bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, layout.TextLine{})
			}
			wrapped = soft
			return
		}
		lineStr := builder.String()
		if trimmed := strings.TrimRightFunc(lineStr, isBreakSpace); trimmed != lineStr {
			lineStr = trimmed
			currentWidth = measure(lineStr)
		}
		lines = append(lines, layout.TextLine{Content: lineStr, Width: currentWidth})
		builder.Reset()
		currentWidth = 0
		wrapped = soft
	}

	appendToken := func(token string) {
		if builder.Len() == 0 && wrapped && isSpaceToken(token) {
			return
		}
		builder.WriteString(token)
		currentWidth += measure(token)
	}

	for _, token := range tokenizeContent(content) {
		if token == "\n" {
			emit(true, false)
			continue
		}

		tokenWidth := measure(token)
		if currentWidth > 0 && currentWidth+tokenWidth > limit {
			if isSpaceToken(token) {
				// 行尾空白直接吞掉
				emit(false, true)
				continue
			}
			emit(false, true)
		}
		if tokenWidth <= limit {
			appendToken(token)
			if currentWidth > limit {
				emit(false, true)
			}
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, measure) {
			chunkWidth := measure(chunk)
			if currentWidth > 0 && currentWidth+chunkWidth > limit {
				emit(false, true)
			}
			appendToken(chunk)
			if currentWidth > limit {
				emit(false, true)
			}
		}
	}

	emit(true, false)
	return lines
}

func isBreakSpace(r rune) bool {
	return unicode.IsSpace(r) && r != '\u00a0' && r != '\u202f'
}

func isSpaceToken(token string) bool {
	for _, r := range token {
		if !isBreakSpace(r) {
			return false
		}
	}
	return token != ""
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := isBreakSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, measure measureFunc) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && measure(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = append(current[:0], r)
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
