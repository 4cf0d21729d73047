package annotations

import (
	"strings"
	"unicode"
)

// DocBlockTag is the raw text of one tag inside a doc block together with
// the position of its marker
type DocBlockTag struct {
	Text     string
	Location SourceLocation
}

// SplitDocBlock strips comment delimiters from a `/** ... */` block and
// returns the text of every tag. A tag starts at a line whose first
// non-decoration character is the tag marker and runs until the next tag or
// the end of the block.
func SplitDocBlock(comment string, location SourceLocation) []DocBlockTag {
	lines := strings.Split(comment, "\n")

	var tags []DocBlockTag
	var current *DocBlockTag
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(body.String())
		tags = append(tags, *current)
		current = nil
		body.Reset()
	}

	for i, line := range lines {
		content, offset := stripDecoration(line, i == 0, i == len(lines)-1)

		if isTagStart(content) {
			flush()
			loc := location
			loc.Line = location.Line + i
			if i == 0 {
				loc.Column = location.Column + offset
			} else {
				loc.Column = offset + 1
			}
			current = &DocBlockTag{Location: loc}
		}

		if current != nil {
			if body.Len() > 0 {
				body.WriteString("\n")
			}
			body.WriteString(content)
		}
	}
	flush()

	return tags
}

// ParseDocBlock parses every annotation found in a doc block. Tags that fail
// to parse are collected into a MultipleAnnotationErrors and the rest are
// still returned.
func (p *ParticipleParser) ParseDocBlock(comment string, location SourceLocation) ([]*ParsedAnnotation, error) {
	var parsed []*ParsedAnnotation
	var errs []AnnotationError

	for _, tag := range SplitDocBlock(comment, location) {
		annotation, err := p.ParseAnnotation(tag.Text, tag.Location)
		if err != nil {
			if annErr, ok := err.(AnnotationError); ok {
				errs = append(errs, annErr)
			} else {
				errs = append(errs, &SyntaxError{Msg: err.Error(), Loc: tag.Location, Err: err})
			}
			continue
		}
		parsed = append(parsed, annotation)
	}

	if len(errs) > 0 {
		return parsed, &MultipleAnnotationErrors{Errors: errs}
	}
	return parsed, nil
}

// stripDecoration removes `/**`, `*/` and the leading `*` of a doc block
// line. The returned offset is the byte index of the remaining content.
func stripDecoration(line string, first, last bool) (string, int) {
	offset := 0
	if last {
		line = strings.TrimSuffix(strings.TrimRightFunc(line, unicode.IsSpace), "*/")
	}

	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	offset += len(line) - len(trimmed)
	line = trimmed

	if first && strings.HasPrefix(line, "/**") {
		line = line[3:]
		offset += 3
	} else if strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "*/") {
		line = line[1:]
		offset++
	}

	trimmed = strings.TrimLeftFunc(line, unicode.IsSpace)
	offset += len(line) - len(trimmed)

	return strings.TrimRightFunc(trimmed, unicode.IsSpace), offset
}

func isTagStart(content string) bool {
	if len(content) < 2 || !strings.HasPrefix(content, TagMarker) {
		return false
	}
	r := rune(content[1])
	return r == '\\' || r == '_' || unicode.IsLetter(r)
}
