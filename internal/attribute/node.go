// Package attribute builds attribute nodes from parsed annotations.
package attribute

import (
	"errors"
	"fmt"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/expr"
)

// Argument is one attribute argument. Name is empty for positional arguments.
type Argument = expr.Arg

// Node is a single attribute: an identifier and its arguments
type Node struct {
	Name expr.Name
	Args []*Argument
}

// Identifier returns the identifier text, short or fully qualified
func (n *Node) Identifier() string {
	return n.Name.Text
}

// NamedArgs returns the number of arguments carrying a name
func (n *Node) NamedArgs() int {
	count := 0
	for _, arg := range n.Args {
		if arg != nil && arg.Named() {
			count++
		}
	}
	return count
}

// ErrInvariantViolation is matched by every InvariantViolation via errors.Is
var ErrInvariantViolation = errors.New("invariant violation")

// InvariantViolation reports a malformed argument list. It indicates misuse
// by the caller and only aborts the conversion it happened in.
type InvariantViolation struct {
	Index  int
	Reason string
}

func (e *InvariantViolation) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invariant violation: %s", e.Reason)
	}
	return fmt.Sprintf("invariant violation: argument %d: %s", e.Index, e.Reason)
}

// Is makes errors.Is(err, ErrInvariantViolation) true
func (e *InvariantViolation) Is(target error) bool { return target == ErrInvariantViolation }

// Code returns the annotation error code
func (e *InvariantViolation) Code() annotations.ErrorCode { return annotations.InvariantErrorCode }

// checkArguments asserts every element is a well-formed argument
func checkArguments(args []*Argument) error {
	for i, arg := range args {
		if arg == nil {
			return &InvariantViolation{Index: i, Reason: "nil argument"}
		}
		if arg.Value == nil {
			return &InvariantViolation{Index: i, Reason: "argument without value"}
		}
	}
	return nil
}
