// Package normalizer converts parsed annotation values into attribute
// argument expressions.
package normalizer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/expr"
)

// ErrNormalization is matched by every NormalizationError via errors.Is
var ErrNormalization = errors.New("normalization failed")

// NormalizationError reports a value that has no expression form
type NormalizationError struct {
	Value  annotations.Value
	Reason string
}

func (e *NormalizationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("cannot normalize value: %s", e.Reason)
	}
	return fmt.Sprintf("cannot normalize value %s: %s", e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrNormalization) true
func (e *NormalizationError) Is(target error) bool { return target == ErrNormalization }

// Code returns the annotation error code
func (e *NormalizationError) Code() annotations.ErrorCode { return annotations.NormalizationErrorCode }

// NestedBuilder turns an annotation used as a value into an expression
type NestedBuilder interface {
	BuildNested(annotation *annotations.ParsedAnnotation) (expr.Expr, error)
}

// Normalizer maps annotation values to expressions. It holds no mutable
// state and is safe for concurrent use.
type Normalizer struct {
	nested NestedBuilder
}

// New creates a normalizer. nested may be nil, in which case nested
// annotations fail to normalize.
func New(nested NestedBuilder) *Normalizer {
	return &Normalizer{nested: nested}
}

// Normalize converts a raw annotation value into an expression
func (n *Normalizer) Normalize(raw annotations.Value) (expr.Expr, error) {
	switch v := raw.(type) {
	case annotations.Scalar:
		return normalizeScalar(v)
	case annotations.List:
		return n.normalizeList(v)
	case annotations.Map:
		return n.normalizeMap(v)
	case annotations.Reference:
		return n.normalizeReference(v)
	case nil:
		return nil, &NormalizationError{Reason: "missing value"}
	default:
		return nil, &NormalizationError{Value: raw, Reason: fmt.Sprintf("unsupported value type %T", raw)}
	}
}

func normalizeScalar(s annotations.Scalar) (expr.Expr, error) {
	switch s.Kind {
	case annotations.StringScalar:
		return StringLiteral(s.Str), nil
	case annotations.IntScalar:
		return expr.Int{Value: s.Int}, nil
	case annotations.FloatScalar:
		if math.IsNaN(s.Float) || math.IsInf(s.Float, 0) {
			return nil, &NormalizationError{Value: s, Reason: "float has no literal form"}
		}
		return expr.Float{Value: s.Float}, nil
	case annotations.BoolScalar:
		return expr.Bool{Value: s.Bool}, nil
	case annotations.NullScalar:
		return expr.Null{}, nil
	default:
		return nil, &NormalizationError{Value: s, Reason: fmt.Sprintf("unknown scalar kind %d", int(s.Kind))}
	}
}

// StringLiteral renders a string with the quote style that avoids escape
// noise: a quote character switches to double quotes unless the string also
// spans several lines.
func StringLiteral(s string) expr.String {
	return expr.String{Value: s, Quote: QuoteStyleFor(s)}
}

// QuoteStyleFor picks the quote style for a string value
func QuoteStyleFor(s string) expr.QuoteStyle {
	if !strings.Contains(s, "'") {
		return expr.SingleQuoted
	}
	if strings.Contains(s, "\n") {
		return expr.SingleQuoted
	}
	return expr.DoubleQuoted
}

func (n *Normalizer) normalizeList(l annotations.List) (expr.Expr, error) {
	items := make([]expr.ArrayItem, 0, len(l.Items))
	for i, item := range l.Items {
		value, err := n.Normalize(item)
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", i, err)
		}
		items = append(items, expr.ArrayItem{Value: value})
	}
	return expr.Array{Items: items}, nil
}

// normalizeMap keeps entry order. Integer keys continuing the implicit
// 0, 1, 2... sequence are left implicit; once the sequence breaks every key
// is written out.
func (n *Normalizer) normalizeMap(m annotations.Map) (expr.Expr, error) {
	items := make([]expr.ArrayItem, 0, len(m.Entries))
	last := -1
	sequential := true

	for _, entry := range m.Entries {
		value, err := n.Normalize(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("map key %s: %w", entry.Key, err)
		}

		if sequential && entry.Key.IsIndex && entry.Key.Index == last+1 {
			last++
			items = append(items, expr.ArrayItem{Value: value})
			continue
		}
		sequential = false

		var key expr.Expr
		if entry.Key.IsIndex {
			key = expr.Int{Value: int64(entry.Key.Index)}
		} else {
			key = StringLiteral(entry.Key.Name)
		}
		items = append(items, expr.ArrayItem{Key: key, Value: value})
	}

	return expr.Array{Items: items}, nil
}

func (n *Normalizer) normalizeReference(r annotations.Reference) (expr.Expr, error) {
	switch r.Kind {
	case annotations.ConstantReference:
		if r.Name == "" {
			return nil, &NormalizationError{Value: r, Reason: "constant without name"}
		}
		return expr.ConstFetch{Name: r.Name}, nil
	case annotations.ClassConstantReference:
		if r.Class == "" || r.Name == "" {
			return nil, &NormalizationError{Value: r, Reason: "class constant needs class and name"}
		}
		return expr.ClassConstFetch{Class: className(r.Class), Const: r.Name}, nil
	case annotations.ClassNameReference:
		if r.Class == "" {
			return nil, &NormalizationError{Value: r, Reason: "class reference without class"}
		}
		return expr.ClassConstFetch{Class: className(r.Class), Const: "class"}, nil
	case annotations.NestedAnnotationReference:
		if r.Annotation == nil {
			return nil, &NormalizationError{Value: r, Reason: "nested annotation is empty"}
		}
		if n.nested == nil {
			return nil, &NormalizationError{Value: r, Reason: "nested annotations are not supported here"}
		}
		return n.nested.BuildNested(r.Annotation)
	default:
		return nil, &NormalizationError{Value: r, Reason: fmt.Sprintf("unknown reference kind %s", r.Kind)}
	}
}

// className keeps names as written unless they are already fully qualified
func className(class string) expr.Name {
	if strings.HasPrefix(class, `\`) {
		return expr.FullyQualifiedName(class)
	}
	return expr.ShortName(class)
}
