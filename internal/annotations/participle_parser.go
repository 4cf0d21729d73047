package annotations

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParticipleParser parses doctrine-style annotation text using alecthomas/participle
type ParticipleParser struct {
	parser    *participle.Parser[annotationNode]
	silentKey string
}

// annotationNode represents the root of a single annotation: @Name(items...)
type annotationNode struct {
	Pos   lexer.Position
	Name  string      `parser:"'@' @Ident"`
	Items []*itemNode `parser:"( '(' ( @@ ( ',' @@? )* )? ')' )?"`
}

// itemNode is one argument or one collection element, optionally keyed
type itemNode struct {
	Key   *keyNode   `parser:"( @@ ( '=' | ':' ) )?"`
	Value *valueNode `parser:"@@"`
}

type keyNode struct {
	Ident  *string `parser:"  @Ident"`
	String *string `parser:"| @String"`
	Number *string `parser:"| @Number"`
}

type valueNode struct {
	Annotation *annotationNode `parser:"  @@"`
	List       *listNode       `parser:"| @@"`
	String     *string         `parser:"| @String"`
	Number     *string         `parser:"| @Number"`
	Constant   *constantNode   `parser:"| @@"`
}

type listNode struct {
	Items []*itemNode `parser:"  '{' ( @@ ( ',' @@? )* )? '}'"`
	Array []*itemNode `parser:"| '[' ( @@ ( ',' @@? )* )? ']'"`
}

type constantNode struct {
	Class  string  `parser:"@Ident"`
	Member *string `parser:"( '::' @Ident )?"`
}

// NewParticipleParser creates a new parser. When silentKey is not empty the
// first unlabeled argument of every annotation is stored under that key.
func NewParticipleParser(silentKey string) *ParticipleParser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(\\.|""|[^"\\])*"|'(\\.|[^'\\])*'`},
		{Name: "Number", Pattern: `[-+]?(\d+\.\d*|\.\d+|\d+)([eE][-+]?\d+)?`},
		{Name: "Ident", Pattern: `\\?[a-zA-Z_]\w*([\\.][a-zA-Z_]\w*)*`},
		{Name: "DoubleColon", Pattern: `::`},
		{Name: "Punct", Pattern: `[@(){}\[\]=:,]`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Other", Pattern: `.`},
	})

	parser := participle.MustBuild[annotationNode](
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
		participle.UseLookahead(3),
	)

	return &ParticipleParser{
		parser:    parser,
		silentKey: silentKey,
	}
}

// SilentKey returns the label used for unlabeled leading values
func (p *ParticipleParser) SilentKey() string {
	return p.silentKey
}

// ParseAnnotation parses a single annotation such as `@Route("/users", name="list")`.
// Text following the tag name or the closing parenthesis is ignored.
func (p *ParticipleParser) ParseAnnotation(text string, location SourceLocation) (*ParsedAnnotation, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, TagMarker) {
		return nil, &SyntaxError{
			Msg:  "annotation must start with '@'",
			Loc:  location,
			Hint: "Use format: @Name(arguments)",
		}
	}

	text = annotationExtent(text)
	node, err := p.parser.ParseString(location.File, text)
	if err != nil {
		return nil, p.syntaxError(err, location)
	}

	parsed, err := p.convertAnnotation(node, location)
	if err != nil {
		return nil, err
	}
	parsed.Raw = text
	return parsed, nil
}

// annotationExtent cuts text after the tag name or, when an argument list
// follows, after its balanced closing parenthesis. Unbalanced text is
// returned whole so the parser reports it.
func annotationExtent(text string) string {
	i := 1
	for i < len(text) && isNameByte(text[i]) {
		i++
	}

	j := i
	for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
		j++
	}
	if j >= len(text) || text[j] != '(' {
		return text[:i]
	}

	depth := 0
	var quote byte
	for k := j; k < len(text); k++ {
		c := text[k]
		switch {
		case quote != 0:
			if c == '\\' {
				k++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return text[:k+1]
			}
		}
	}
	return text
}

func isNameByte(c byte) bool {
	return c == '_' || c == '\\' || c == '.' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func (p *ParticipleParser) syntaxError(err error, location SourceLocation) error {
	loc := location
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		if pos.Line > 1 {
			loc.Line += pos.Line - 1
			loc.Column = pos.Column
		} else if pos.Column > 0 {
			loc.Column += pos.Column - 1
		}
		return &SyntaxError{
			Msg:  perr.Message(),
			Loc:  loc,
			Hint: "Check parentheses, quotes and separators",
			Err:  err,
		}
	}
	return &SyntaxError{Msg: err.Error(), Loc: loc, Err: err}
}

func (p *ParticipleParser) convertAnnotation(node *annotationNode, location SourceLocation) (*ParsedAnnotation, error) {
	values, err := p.convertItems(node.Items, p.silentKey, location)
	if err != nil {
		return nil, err
	}

	return &ParsedAnnotation{
		Tag:        TrimTag(strings.TrimPrefix(node.Name, `\`)),
		Identifier: TagMarker + node.Name,
		Values:     values,
		SilentKey:  p.silentKey,
		Location:   location,
	}, nil
}

// convertItems assigns keys the way the annotation syntax does: labeled
// items keep their label, unlabeled items take the next free integer index.
func (p *ParticipleParser) convertItems(items []*itemNode, silentKey string, location SourceLocation) (Bag, error) {
	bag := make(Bag, 0, len(items))
	seen := make(map[string]bool, len(items))
	next := 0

	for i, item := range items {
		value, err := p.convertValue(item.Value, location)
		if err != nil {
			return nil, err
		}

		var key Key
		switch {
		case item.Key != nil:
			key, err = convertKey(item.Key)
			if err != nil {
				return nil, &SyntaxError{Msg: err.Error(), Loc: location}
			}
		case i == 0 && silentKey != "":
			key = NameKey(silentKey)
		default:
			key = IndexKey(next)
		}

		if key.IsString() {
			if seen[key.Name] {
				return nil, duplicateKeyError(key.Name, silentKey, location)
			}
			seen[key.Name] = true
		}
		if key.IsIndex && key.Index >= next {
			next = key.Index + 1
		}
		bag = append(bag, Entry{Key: key, Value: value})
	}

	return bag, nil
}

func (p *ParticipleParser) convertValue(node *valueNode, location SourceLocation) (Value, error) {
	switch {
	case node == nil:
		return nil, &SyntaxError{Msg: "missing value", Loc: location}
	case node.Annotation != nil:
		nested, err := p.convertAnnotation(node.Annotation, location)
		if err != nil {
			return nil, err
		}
		return Reference{Kind: NestedAnnotationReference, Class: nested.Tag, Annotation: nested}, nil
	case node.List != nil:
		return p.convertList(node.List, location)
	case node.String != nil:
		return String(unquote(*node.String)), nil
	case node.Number != nil:
		return convertNumber(*node.Number)
	case node.Constant != nil:
		return convertConstant(node.Constant), nil
	default:
		return nil, &SyntaxError{Msg: "unsupported value", Loc: location}
	}
}

func (p *ParticipleParser) convertList(node *listNode, location SourceLocation) (Value, error) {
	items := node.Items
	if node.Array != nil {
		items = node.Array
	}

	keyed := false
	for _, item := range items {
		if item.Key != nil {
			keyed = true
			break
		}
	}

	bag, err := p.convertItems(items, "", location)
	if err != nil {
		return nil, err
	}

	if !keyed {
		list := List{Items: make([]Value, len(bag))}
		for i, entry := range bag {
			list.Items[i] = entry.Value
		}
		return list, nil
	}
	return Map{Entries: bag}, nil
}

func duplicateKeyError(name, silentKey string, location SourceLocation) error {
	hint := "Remove one of the values"
	if name == silentKey {
		hint = fmt.Sprintf("The first unlabeled value is already stored as %q", silentKey)
	}
	return &SyntaxError{Msg: fmt.Sprintf("duplicate argument %q", name), Loc: location, Hint: hint}
}

func convertKey(node *keyNode) (Key, error) {
	switch {
	case node.Ident != nil:
		return NameKey(*node.Ident), nil
	case node.String != nil:
		return NameKey(unquote(*node.String)), nil
	case node.Number != nil:
		index, err := strconv.Atoi(*node.Number)
		if err != nil {
			return Key{}, fmt.Errorf("invalid integer key %s", *node.Number)
		}
		return IndexKey(index), nil
	default:
		return Key{}, fmt.Errorf("empty key")
	}
}

func convertNumber(raw string) (Value, error) {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &SyntaxError{Msg: fmt.Sprintf("invalid number %s", raw)}
	}
	return Float(f), nil
}

func convertConstant(node *constantNode) Value {
	if node.Member == nil {
		switch strings.ToLower(node.Class) {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		case "null":
			return Null()
		}
		return Reference{Kind: ConstantReference, Name: node.Class}
	}

	if strings.EqualFold(*node.Member, "class") {
		return Reference{Kind: ClassNameReference, Class: node.Class}
	}
	return Reference{Kind: ClassConstantReference, Class: node.Class, Name: *node.Member}
}

// unquote removes the surrounding quotes. Doubled or backslash-escaped
// quote characters collapse to a single quote; other backslashes are kept.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	quote := s[0]
	body := s[1 : len(s)-1]

	if quote == '"' {
		body = strings.ReplaceAll(body, `""`, `"`)
		return strings.ReplaceAll(body, `\"`, `"`)
	}
	return strings.ReplaceAll(body, `\'`, `'`)
}
