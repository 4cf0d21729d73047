// Package mapping holds the immutable tag to attribute class table.
package mapping

import (
	"fmt"
	"sort"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/utils"
)

var (
	validateTag   = utils.ValidateTagName("tag")
	validateClass = utils.ValidateClassName("class")
)

// AttributeMapping maps an annotation tag to the attribute class replacing it
type AttributeMapping struct {
	SourceTag   string
	TargetClass string
}

// New creates a mapping, rejecting empty or malformed tags and classes
func New(sourceTag, targetClass string) (AttributeMapping, error) {
	if err := validateTag(sourceTag); err != nil {
		return AttributeMapping{}, fmt.Errorf("mapping for class %q: %w", targetClass, err)
	}
	if err := validateClass(targetClass); err != nil {
		return AttributeMapping{}, fmt.Errorf("mapping for tag %q: %w", sourceTag, err)
	}
	return AttributeMapping{SourceTag: sourceTag, TargetClass: targetClass}, nil
}

// Tag returns the source tag without its marker
func (m AttributeMapping) Tag() string {
	return annotations.TrimTag(m.SourceTag)
}

// ReusesShortName reports whether the tag and the class are the same name,
// in which case the identifier written in the source is kept.
func (m AttributeMapping) ReusesShortName() bool {
	return m.Tag() == m.TargetClass
}

func (m AttributeMapping) String() string {
	return fmt.Sprintf("@%s -> %s", m.Tag(), m.TargetClass)
}

// Table is a read-only set of mappings keyed by tag. It is safe for
// concurrent use once built.
type Table struct {
	mappings *utils.Registry[string, AttributeMapping]
}

var noDuplicateTags = utils.NoDuplicates(func(tag string, existing, m AttributeMapping) string {
	return fmt.Sprintf("mapping for tag %q: %s and %s", tag, existing.TargetClass, m.TargetClass)
})

// NewTable builds a table, rejecting duplicate tags
func NewTable(mappings ...AttributeMapping) (*Table, error) {
	t := &Table{mappings: utils.NewRegistry[string, AttributeMapping]()}

	for _, m := range mappings {
		checked, err := New(m.SourceTag, m.TargetClass)
		if err != nil {
			return nil, err
		}
		if err := t.mappings.RegisterWithValidator(checked.Tag(), checked, noDuplicateTags); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Lookup finds the mapping for a tag, with or without its marker
func (t *Table) Lookup(tag string) (AttributeMapping, bool) {
	if t == nil {
		return AttributeMapping{}, false
	}
	return t.mappings.Get(annotations.TrimTag(tag))
}

// Len returns the number of mappings
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.mappings.Size()
}

// Mappings returns a copy of the mappings in load order
func (t *Table) Mappings() []AttributeMapping {
	if t == nil {
		return nil
	}
	return t.mappings.Values()
}

// Tags returns all tags sorted alphabetically
func (t *Table) Tags() []string {
	if t == nil {
		return []string{}
	}
	tags := t.mappings.List()
	sort.Strings(tags)
	return tags
}
