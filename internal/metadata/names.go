// Package metadata resolves the ordered constructor parameter names of
// attribute classes.
//
// Resolution never fails: a class whose metadata cannot be obtained yields
// Unavailable, and callers fall back to positional arguments.
package metadata

import (
	"fmt"
	"strings"

	"github.com/toyz/attrconv/internal/utils"
)

// Names is an ordered list of parameter names, or the Unavailable marker
type Names struct {
	names     []string
	available bool
}

// Unavailable means no parameter names are known for the class
var Unavailable = Names{}

// Available wraps a known parameter list. An empty list is still available:
// the class is known to take no parameters.
func Available(names ...string) Names {
	return Names{names: append([]string(nil), names...), available: true}
}

// IsAvailable reports whether the names are known
func (n Names) IsAvailable() bool {
	return n.available
}

// Len returns the number of known names
func (n Names) Len() int {
	return len(n.names)
}

// At returns the name at position i
func (n Names) At(i int) (string, bool) {
	if !n.available || i < 0 || i >= len(n.names) {
		return "", false
	}
	return n.names[i], true
}

// Slice returns a copy of the names, nil when unavailable
func (n Names) Slice() []string {
	if !n.available {
		return nil
	}
	return append([]string(nil), n.names...)
}

func (n Names) String() string {
	if !n.available {
		return "<unavailable>"
	}
	return "[" + strings.Join(n.names, ", ") + "]"
}

// Source looks up parameter names. A source returns Unavailable for classes
// it does not know and an error only when the lookup itself broke.
type Source interface {
	ParameterNames(classID string) (Names, error)
}

// Resolver is the capability the attribute factory depends on
type Resolver interface {
	ResolveFromClass(classID string) Names
}

// NormalizeClassID removes a leading namespace separator so `\Foo\Bar` and
// `Foo\Bar` resolve alike
func NormalizeClassID(classID string) string {
	return strings.TrimLeft(strings.TrimSpace(classID), `\`)
}

// ChainSource asks each source in turn; the first that knows the class wins
type ChainSource []Source

// ParameterNames implements Source
func (c ChainSource) ParameterNames(classID string) (Names, error) {
	var firstErr error
	for _, source := range c {
		if source == nil {
			continue
		}
		names, err := source.ParameterNames(classID)
		if err != nil {
			if firstErr == nil {
				firstErr = utils.WrapResolveError(fmt.Sprintf("parameter names of %s", classID), err)
			}
			continue
		}
		if names.IsAvailable() {
			return names, nil
		}
	}
	return Unavailable, firstErr
}

// StaticSource serves names from a fixed table, typically loaded from the
// mapping file
type StaticSource struct {
	classes map[string]Names
}

// NewStaticSource copies the table so later changes to it have no effect
func NewStaticSource(table map[string][]string) *StaticSource {
	classes := make(map[string]Names, len(table))
	for class, names := range table {
		classes[NormalizeClassID(class)] = Available(names...)
	}
	return &StaticSource{classes: classes}
}

// ParameterNames implements Source
func (s *StaticSource) ParameterNames(classID string) (Names, error) {
	if names, ok := s.classes[NormalizeClassID(classID)]; ok {
		return names, nil
	}
	return Unavailable, nil
}

// Len returns the number of known classes
func (s *StaticSource) Len() int {
	return len(s.classes)
}
