// Package binding fills ${path} placeholders in short templates such as the
// output file name or the page label.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	return InterpolateFunc(text, data, nil)
}

// InterpolateFunc is Interpolate with a transform applied to every resolved
// value (for example to sanitize file name components). Literal text outside
// placeholders is left untouched.
func InterpolateFunc(text string, data any, transform func(path, value string) string) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := resolvePath(data, path)
		if !ok {
			return match
		}
		s := fmt.Sprint(val)
		if transform != nil {
			s = transform(path, s)
		}
		return s
	})
}

// Placeholders lists the placeholder paths of a template in order of
// appearance.
func Placeholders(text string) []string {
	var out []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		if path := strings.TrimSpace(groups[1]); path != "" {
			out = append(out, path)
		}
	}
	return out
}

// pathSteps turns "equipment[0].name" into ["equipment", "0", "name"].
var pathSteps = strings.NewReplacer("[", ".", "]", "")

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, step := range strings.Split(pathSteps.Replace(path), ".") {
		if step == "" {
			continue
		}
		next, ok := lookup(current, step)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// lookup 按键取 map 值，或按数字下标取切片元素。
func lookup(current any, step string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		v, ok := c[step]
		return v, ok
	case map[string]string:
		v, ok := c[step]
		return v, ok
	case []any:
		return at(c, step)
	case []string:
		return at(c, step)
	}
	return nil, false
}

func at[T any](items []T, step string) (any, bool) {
	i, err := strconv.Atoi(step)
	if err != nil || i < 0 || i >= len(items) {
		return nil, false
	}
	return items[i], true
}
