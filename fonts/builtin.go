package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称，作为候选链的最后一级，始终可用。
const (
	BuiltinRegular = "Go-Regular"
	BuiltinBold    = "Go-Bold"
	BuiltinItalic  = "Go-Italic"
	BuiltinMono    = "Go-Mono"
)

var builtinFaces = map[string][]byte{
	BuiltinRegular: goregular.TTF,
	BuiltinBold:    gobold.TTF,
	BuiltinItalic:  goitalic.TTF,
	BuiltinMono:    gomono.TTF,
}

// Builtin 返回内置字体的字节数据，名称不区分大小写，可带 "builtin:" 前缀。
func Builtin(name string) ([]byte, error) {
	name = strings.TrimPrefix(strings.TrimPrefix(name, "built-in:"), "builtin:")
	for key, data := range builtinFaces {
		if strings.EqualFold(key, name) {
			return data, nil
		}
	}
	return nil, fmt.Errorf("找不到内置字体 %s", name)
}

// BuiltinNames lists the available builtin faces.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinFaces))
	for key := range builtinFaces {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// builtinFor 选择内置兜底字体：未指定或未知时使用常规体。
func builtinFor(name string) (string, []byte) {
	if name != "" {
		if data, err := Builtin(name); err == nil {
			return name, data
		}
	}
	return BuiltinRegular, goregular.TTF
}
