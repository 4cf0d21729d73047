// Package expr defines the expression tree produced for attribute arguments.
//
// The tree is deliberately small: literals, array literals, constant fetches
// and object construction are all an attribute argument can hold.
package expr

// Expr is an attribute argument expression
type Expr interface {
	exprNode()
}

// QuoteStyle selects how a string literal is rendered
type QuoteStyle int

const (
	// SingleQuoted is the default, non-interpolating style
	SingleQuoted QuoteStyle = iota
	// DoubleQuoted is the interpolating style
	DoubleQuoted
)

// String returns the string representation of the quote style
func (q QuoteStyle) String() string {
	if q == DoubleQuoted {
		return "double"
	}
	return "single"
}

// String is a string literal
type String struct {
	Value string
	Quote QuoteStyle
}

// Int is an integer literal
type Int struct {
	Value int64
}

// Float is a floating point literal
type Float struct {
	Value float64
}

// Bool is a boolean literal
type Bool struct {
	Value bool
}

// Null is the null literal
type Null struct{}

// ArrayItem is one element of an array literal. Key is nil for positional items.
type ArrayItem struct {
	Key   Expr
	Value Expr
}

// Array is an array literal
type Array struct {
	Items []ArrayItem
}

// Name is a class name, either as written or fully qualified
type Name struct {
	Text           string
	FullyQualified bool
}

// FullyQualifiedName creates a fully qualified name, stripping a leading separator
func FullyQualifiedName(class string) Name {
	for len(class) > 0 && class[0] == '\\' {
		class = class[1:]
	}
	return Name{Text: class, FullyQualified: true}
}

// ShortName creates a name that is rendered exactly as written
func ShortName(text string) Name {
	return Name{Text: text}
}

// ConstFetch reads a global constant
type ConstFetch struct {
	Name string
}

// ClassConstFetch reads a class constant. Const "class" yields the class name.
type ClassConstFetch struct {
	Class Name
	Const string
}

// Arg is a call argument, optionally named
type Arg struct {
	Value Expr
	Name  string
}

// Named reports whether the argument carries an explicit parameter name
func (a *Arg) Named() bool {
	return a.Name != ""
}

// New constructs an object, used for annotations nested inside values
type New struct {
	Class Name
	Args  []*Arg
}

func (String) exprNode()          {}
func (Int) exprNode()             {}
func (Float) exprNode()           {}
func (Bool) exprNode()            {}
func (Null) exprNode()            {}
func (Array) exprNode()           {}
func (ConstFetch) exprNode()      {}
func (ClassConstFetch) exprNode() {}
func (New) exprNode()             {}
