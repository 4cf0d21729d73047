package annotations

import (
	"fmt"
	"strconv"
)

// Value is the parsed payload of an annotation argument. The concrete type is
// always one of Scalar, List, Map or Reference.
type Value interface {
	isValue()
	String() string
}

// ScalarKind identifies the literal type held by a Scalar
type ScalarKind int

const (
	NullScalar ScalarKind = iota
	StringScalar
	IntScalar
	FloatScalar
	BoolScalar
)

// String returns the string representation of the scalar kind
func (k ScalarKind) String() string {
	switch k {
	case NullScalar:
		return "null"
	case StringScalar:
		return "string"
	case IntScalar:
		return "int"
	case FloatScalar:
		return "float"
	case BoolScalar:
		return "bool"
	default:
		return "unknown"
	}
}

// Scalar is a string, number, bool or null literal
type Scalar struct {
	Kind  ScalarKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// String creates a string scalar
func String(s string) Scalar { return Scalar{Kind: StringScalar, Str: s} }

// Int creates an integer scalar
func Int(i int64) Scalar { return Scalar{Kind: IntScalar, Int: i} }

// Float creates a float scalar
func Float(f float64) Scalar { return Scalar{Kind: FloatScalar, Float: f} }

// Bool creates a boolean scalar
func Bool(b bool) Scalar { return Scalar{Kind: BoolScalar, Bool: b} }

// Null creates a null scalar
func Null() Scalar { return Scalar{Kind: NullScalar} }

func (Scalar) isValue() {}

func (s Scalar) String() string {
	switch s.Kind {
	case StringScalar:
		return strconv.Quote(s.Str)
	case IntScalar:
		return strconv.FormatInt(s.Int, 10)
	case FloatScalar:
		return strconv.FormatFloat(s.Float, 'g', -1, 64)
	case BoolScalar:
		return strconv.FormatBool(s.Bool)
	default:
		return "null"
	}
}

// List is an ordered sequence of values written without keys
type List struct {
	Items []Value
}

func (List) isValue() {}

func (l List) String() string {
	return fmt.Sprintf("list%v", l.Items)
}

// Map is an ordered sequence of key/value pairs
type Map struct {
	Entries Bag
}

func (Map) isValue() {}

func (m Map) String() string {
	return fmt.Sprintf("map%v", []Entry(m.Entries))
}

// ReferenceKind identifies what a Reference points at
type ReferenceKind int

const (
	// ConstantReference is a bare constant such as PHP_EOL
	ConstantReference ReferenceKind = iota
	// ClassConstantReference is Class::NAME
	ClassConstantReference
	// ClassNameReference is Class::class
	ClassNameReference
	// NestedAnnotationReference is an annotation used as a value
	NestedAnnotationReference
)

// String returns the string representation of the reference kind
func (k ReferenceKind) String() string {
	switch k {
	case ConstantReference:
		return "constant"
	case ClassConstantReference:
		return "class_constant"
	case ClassNameReference:
		return "class_name"
	case NestedAnnotationReference:
		return "nested_annotation"
	default:
		return "unknown"
	}
}

// Reference is a symbolic constant or a nested annotation
type Reference struct {
	Kind       ReferenceKind
	Class      string            // Class part, empty for bare constants
	Name       string            // Constant name
	Annotation *ParsedAnnotation // Set for NestedAnnotationReference
}

func (Reference) isValue() {}

func (r Reference) String() string {
	switch r.Kind {
	case ConstantReference:
		return r.Name
	case ClassConstantReference:
		return r.Class + "::" + r.Name
	case ClassNameReference:
		return r.Class + "::class"
	case NestedAnnotationReference:
		if r.Annotation == nil {
			return "@<nil>"
		}
		return "@" + r.Annotation.Tag + fmt.Sprintf("%v", []Entry(r.Annotation.Values))
	default:
		return fmt.Sprintf("<reference %d>", int(r.Kind))
	}
}

// Key labels a bag entry with either an integer index or a string name
type Key struct {
	Name    string
	Index   int
	IsIndex bool
}

// IndexKey creates an integer key
func IndexKey(i int) Key { return Key{Index: i, IsIndex: true} }

// NameKey creates a string key
func NameKey(name string) Key { return Key{Name: name} }

// IsString reports whether the key is a string label
func (k Key) IsString() bool { return !k.IsIndex }

func (k Key) String() string {
	if k.IsIndex {
		return strconv.Itoa(k.Index)
	}
	return k.Name
}

// Entry is a single keyed value
type Entry struct {
	Key   Key
	Value Value
}

func (e Entry) String() string {
	return fmt.Sprintf("%s:%v", e.Key, e.Value)
}

// Bag holds annotation values in encounter order
type Bag []Entry

// Get returns the value stored under a string key
func (b Bag) Get(name string) (Value, bool) {
	for _, e := range b {
		if e.Key.IsString() && e.Key.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Without returns a copy of the bag with the first entry for the string key
// removed. Later entries under the same key are kept.
func (b Bag) Without(name string) Bag {
	out := make(Bag, 0, len(b))
	removed := false
	for _, e := range b {
		if !removed && e.Key.IsString() && e.Key.Name == name {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return out
}

// HasStringKey reports whether any entry carries a string label
func (b Bag) HasStringKey() bool {
	for _, e := range b {
		if e.Key.IsString() {
			return true
		}
	}
	return false
}

// Positional builds a bag with integer keys 0..n-1
func Positional(values ...Value) Bag {
	b := make(Bag, len(values))
	for i, v := range values {
		b[i] = Entry{Key: IndexKey(i), Value: v}
	}
	return b
}
