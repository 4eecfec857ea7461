// Package dsl parses report stylesheets:
//
//	stylesheet Report v1 {
//	  value_font_size: 8.2pt
//	  section service { multiplier: 1.1 }
//	  font Arial { path: "fonts/arial.ttf" builtin: Go-Regular }
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	sheetLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		// 颜色必须先于 # 注释匹配
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[][{}.,:;]`},
	})

	sheetParser = participle.MustBuild[Document](
		participle.Lexer(sheetLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Document is the root of a stylesheet file.
type Document struct {
	Name    string `parser:"Newline* 'stylesheet' @Ident"`
	Version string `parser:"@Ident"`
	Body    *Block `parser:"@@ Newline*"`
}

// Block is a braced list of statements separated by newlines or semicolons.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is a property, a nested scope or a stray string. Stray strings
// parse so that Flatten can report them with a readable message.
type Statement struct {
	Pos      lexer.Position `parser:""`
	Property *Property      `parser:"  @@"`
	Scope    *Scope         `parser:"| @@"`
	Text     *StringLiteral `parser:"| @String"`
}

// Property is a "key: value" pair.
type Property struct {
	Key   string `parser:"@Ident ':' Newline*"`
	Value *Value `parser:"@@"`
}

// Scope prefixes the keys of its block, eg: section header.title { min: 9 }.
type Scope struct {
	Pos   lexer.Position `parser:""`
	Kind  string         `parser:"@Ident"`
	Path  []string       `parser:"( @Ident ( '.' @Ident )* )?"`
	Block *Block         `parser:"@@"`
}

// Value is a property value. Words are bare identifiers such as center or
// Go-Regular.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Word   *string        `parser:"| @Ident"`
	List   *List          `parser:"| @@"`
	Object *Object        `parser:"| @@"`
}

// List is "[ a, b ]"; items may also be separated by newlines.
type List struct {
	Items []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline) Newline* @@ )* )? Newline* ']'"`
}

// Object is an inline map, "{ margin: 0.35in; size: letter }".
type Object struct {
	Entries []*Property `parser:"'{' Newline* ( @@ ( (';' | Newline) Newline* @@ )* )? ( ';' | Newline )* '}'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串缺少内容")
	}
	v, err := strconv.Unquote(values[0])
	if err != nil {
		return fmt.Errorf("无效字符串 %s: %w", values[0], err)
	}
	*s = StringLiteral(v)
	return nil
}

// Parse parses a stylesheet from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return sheetParser.Parse("", r)
}

// ParseString parses a stylesheet from a string.
func ParseString(input string) (*Document, error) {
	return sheetParser.ParseString("", input)
}
