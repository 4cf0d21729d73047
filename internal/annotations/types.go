package annotations

import (
	"fmt"
	"strings"
)

// DefaultSilentKey is the label the parser gives an unlabeled leading value
// when silent-key labeling is enabled
const DefaultSilentKey = "value"

// TagMarker prefixes every annotation tag in a doc comment
const TagMarker = "@"

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// ParsedAnnotation is one annotation occurrence as handed over by the parser
type ParsedAnnotation struct {
	Tag        string         // Tag name without the marker, e.g. "ORM\Column"
	Identifier string         // Identifier exactly as written, e.g. "@Column"
	Values     Bag            // Argument values in encounter order
	SilentKey  string         // Reserved label for the unlabeled leading value, empty if unused
	Location   SourceLocation // Source location
	Raw        string         // Original annotation text
}

// ShortName returns the written identifier with the tag marker removed
func (p *ParsedAnnotation) ShortName() string {
	name := p.Identifier
	if name == "" {
		name = p.Tag
	}
	return strings.TrimPrefix(name, TagMarker)
}

// HasValues reports whether the annotation carries any argument
func (p *ParsedAnnotation) HasValues() bool {
	return len(p.Values) > 0
}

// SilentValue returns the value stored under the silent key, if any
func (p *ParsedAnnotation) SilentValue() (Value, bool) {
	if p.SilentKey == "" {
		return nil, false
	}
	return p.Values.Get(p.SilentKey)
}

// TrimTag strips the tag marker from a tag name
func TrimTag(tag string) string {
	return strings.TrimPrefix(tag, TagMarker)
}
