package attribute

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/expr"
	"github.com/toyz/attrconv/internal/logging"
	"github.com/toyz/attrconv/internal/mapping"
	"github.com/toyz/attrconv/internal/metadata"
	"github.com/toyz/attrconv/internal/normalizer"
)

// MappingLookup finds the mapping for a tag
type MappingLookup interface {
	Lookup(tag string) (mapping.AttributeMapping, bool)
}

// Factory creates attribute nodes. It keeps no per-conversion state and can
// be shared by concurrent conversions.
type Factory struct {
	resolver   metadata.Resolver
	normalizer *normalizer.Normalizer
	nested     MappingLookup
	logger     *zap.Logger
}

// Option configures a Factory
type Option func(*Factory)

// WithNestedMappings maps annotations nested inside values to their target
// classes. Without it nested annotations keep the name written in the source.
func WithNestedMappings(lookup MappingLookup) Option {
	return func(f *Factory) {
		f.nested = lookup
	}
}

// WithLogger sets the logger, replacing the shared one
func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a factory. A nil resolver treats every class as having
// no known parameter names.
func NewFactory(resolver metadata.Resolver, opts ...Option) *Factory {
	f := &Factory{
		resolver: resolver,
		logger:   logging.Named("attribute"),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.normalizer = normalizer.New(f)
	return f
}

// CreateFromSimpleTag creates the attribute for a tag written without values
func (f *Factory) CreateFromSimpleTag(m mapping.AttributeMapping) *Node {
	return f.CreateFromClass(m.TargetClass)
}

// CreateFromClass creates a marker attribute without arguments
func (f *Factory) CreateFromClass(targetClass string) *Node {
	return &Node{Name: expr.FullyQualifiedName(targetClass)}
}

// CreateFromClassWithItems creates an attribute whose arguments come straight
// from items, without parameter name resolution
func (f *Factory) CreateFromClassWithItems(targetClass string, items annotations.Bag) (*Node, error) {
	args, err := f.CreateArgsFromItems(items, "")
	if err != nil {
		return nil, err
	}
	return &Node{Name: expr.FullyQualifiedName(targetClass), Args: args}, nil
}

// CreateFromAnnotation converts one annotation occurrence into the attribute
// described by m
func (f *Factory) CreateFromAnnotation(annotation *annotations.ParsedAnnotation, m mapping.AttributeMapping) (*Node, error) {
	if annotation == nil {
		return nil, &InvariantViolation{Index: -1, Reason: "nil annotation"}
	}

	args, err := f.CreateArgsFromItems(annotation.Values, annotation.SilentKey)
	if err != nil {
		return nil, err
	}

	names := f.resolve(m.TargetClass)
	if err := CompleteNamedArguments(args, names); err != nil {
		return nil, err
	}

	node := &Node{Name: attributeName(annotation, m), Args: args}

	f.logger.Debug("created attribute",
		zap.String("tag", annotation.Tag),
		zap.String("attribute", node.Identifier()),
		zap.Int("args", len(args)),
		zap.Int("named", node.NamedArgs()),
		zap.Stringer("parameters", names))

	return node, nil
}

// CreateArgsFromItems builds arguments from a value bag. When silentKey is
// present its value becomes the first, unnamed argument. The remaining
// entries keep their encounter order; string keys become argument names only
// when at least one remaining key is a string, integer keys never do.
func (f *Factory) CreateArgsFromItems(items annotations.Bag, silentKey string) ([]*Argument, error) {
	args := make([]*Argument, 0, len(items))

	remaining := items
	if silentKey != "" {
		if value, ok := items.Get(silentKey); ok {
			silent, err := f.normalizer.Normalize(value)
			if err != nil {
				return nil, fmt.Errorf("silent value %q: %w", silentKey, err)
			}
			args = append(args, &Argument{Value: silent})
			remaining = items.Without(silentKey)
		}
	}

	keyed := remaining.HasStringKey()
	for _, entry := range remaining {
		value, err := f.normalizer.Normalize(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", entry.Key, err)
		}

		arg := &Argument{Value: value}
		if keyed && entry.Key.IsString() {
			arg.Name = entry.Key.Name
		}
		args = append(args, arg)
	}

	return args, nil
}

// CompleteNamedArguments gives every unnamed argument the parameter name at
// its position. Explicit names are never replaced, and nothing changes when
// the names are unavailable.
func CompleteNamedArguments(args []*Argument, names metadata.Names) error {
	if err := checkArguments(args); err != nil {
		return err
	}

	if !names.IsAvailable() {
		return nil
	}

	for i, arg := range args {
		name, ok := names.At(i)
		if !ok {
			break
		}
		if arg.Named() {
			continue
		}
		arg.Name = name
	}

	return nil
}

// BuildNested turns an annotation used as a value into a constructor call
func (f *Factory) BuildNested(annotation *annotations.ParsedAnnotation) (expr.Expr, error) {
	args, err := f.CreateArgsFromItems(annotation.Values, annotation.SilentKey)
	if err != nil {
		return nil, fmt.Errorf("nested @%s: %w", annotation.Tag, err)
	}

	class := expr.ShortName(annotation.ShortName())
	if f.nested != nil {
		if m, ok := f.nested.Lookup(annotation.Tag); ok {
			if err := CompleteNamedArguments(args, f.resolve(m.TargetClass)); err != nil {
				return nil, err
			}
			class = attributeName(annotation, m)
		}
	}

	return expr.New{Class: class, Args: args}, nil
}

func (f *Factory) resolve(targetClass string) metadata.Names {
	if f.resolver == nil {
		return metadata.Unavailable
	}
	return f.resolver.ResolveFromClass(targetClass)
}

// attributeName reuses the identifier written in the source when the tag and
// the class are the same name, keeping existing imports valid
func attributeName(annotation *annotations.ParsedAnnotation, m mapping.AttributeMapping) expr.Name {
	if m.ReusesShortName() {
		return expr.ShortName(annotation.ShortName())
	}
	return expr.FullyQualifiedName(m.TargetClass)
}
