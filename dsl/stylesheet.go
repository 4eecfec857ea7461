package dsl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/ByLCY/reportpress/fonts"
)

// Stylesheet is a parsed stylesheet split into flat style overrides and font
// declarations.
type Stylesheet struct {
	Name    string
	Version string
	Style   map[string]string
	Fonts   []fonts.Asset
}

// Load parses and flattens a stylesheet.
func Load(r io.Reader) (*Stylesheet, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析样式表失败: %w", err)
	}
	return FromDocument(doc)
}

// LoadFile reads a stylesheet from disk.
func LoadFile(path string) (*Stylesheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开样式表 %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// FromDocument converts a parsed document. Keys under "font.<name>." become
// font assets; everything else is returned as style overrides.
func FromDocument(doc *Document) (*Stylesheet, error) {
	if doc.Version != "v1" {
		return nil, fmt.Errorf("不支持的样式表版本 %s", doc.Version)
	}
	flat, order, err := Flatten(doc.Body)
	if err != nil {
		return nil, err
	}
	ss := &Stylesheet{Name: doc.Name, Version: doc.Version, Style: map[string]string{}}
	index := map[string]int{}
	var errs error
	for _, key := range order {
		rest, ok := strings.CutPrefix(key, "font.")
		if !ok {
			ss.Style[key] = flat[key]
			continue
		}
		i := strings.LastIndexByte(rest, '.')
		if i <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("字体声明 %s 缺少属性", key))
			continue
		}
		name, attr := rest[:i], rest[i+1:]
		pos, seen := index[name]
		if !seen {
			pos = len(ss.Fonts)
			index[name] = pos
			ss.Fonts = append(ss.Fonts, fonts.Asset{Name: name})
		}
		switch attr {
		case "path":
			ss.Fonts[pos].Primary = flat[key]
		case "fallback":
			ss.Fonts[pos].Fallback = flat[key]
		case "builtin":
			ss.Fonts[pos].Builtin = flat[key]
		default:
			errs = multierr.Append(errs, fmt.Errorf("字体 %s 的属性 %s 无法识别", name, attr))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return ss, nil
}

// Flatten 将嵌套块展开为点分隔的键：作用域名与路径组成前缀，属性为叶子。
// 返回的 order 保留键首次出现的顺序；重复键以最后一次为准。
func Flatten(block *Block) (map[string]string, []string, error) {
	out := map[string]string{}
	var order []string
	set := func(key, value string) {
		if _, ok := out[key]; !ok {
			order = append(order, key)
		}
		out[key] = value
	}
	if err := flattenBlock(block, "", set); err != nil {
		return nil, nil, err
	}
	return out, order, nil
}

func flattenBlock(block *Block, prefix string, set func(key, value string)) error {
	if block == nil {
		return nil
	}
	var errs error
	for _, st := range block.Statements {
		switch {
		case st.Property != nil:
			errs = multierr.Append(errs, flattenValue(prefix+st.Property.Key, st.Property.Value, set))
		case st.Scope != nil:
			scope := prefix + st.Scope.Kind
			if len(st.Scope.Path) > 0 {
				scope += "." + strings.Join(st.Scope.Path, ".")
			}
			errs = multierr.Append(errs, flattenBlock(st.Scope.Block, scope+".", set))
		case st.Text != nil:
			errs = multierr.Append(errs, fmt.Errorf("%s: 样式表中不允许裸字符串 %q", st.Pos, string(*st.Text)))
		}
	}
	return errs
}

func flattenValue(key string, v *Value, set func(key, value string)) error {
	if v == nil {
		return fmt.Errorf("%s 缺少值", key)
	}
	if v.Object != nil {
		var errs error
		for _, entry := range v.Object.Entries {
			errs = multierr.Append(errs, flattenValue(key+"."+entry.Key, entry.Value, set))
		}
		return errs
	}
	s, err := valueString(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	set(key, s)
	return nil
}

// valueString 返回叶子值的文本；列表以逗号连接，不允许嵌套对象。
func valueString(v *Value) (string, error) {
	switch {
	case v.String != nil:
		return string(*v.String), nil
	case v.Number != nil:
		return *v.Number, nil
	case v.Color != nil:
		return *v.Color, nil
	case v.Word != nil:
		return *v.Word, nil
	case v.List != nil:
		parts := make([]string, 0, len(v.List.Items))
		for _, item := range v.List.Items {
			s, err := valueString(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("不支持的值")
	}
}
