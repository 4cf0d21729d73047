// Package printer renders attribute nodes as source text.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/attrconv/internal/attribute"
	"github.com/toyz/attrconv/internal/expr"
)

// Print renders a node as a single attribute group, e.g. #[Route('/users', name: 'list')]
func Print(node *attribute.Node) string {
	var b strings.Builder
	b.WriteString("#[")
	writeNode(&b, node)
	b.WriteString("]")
	return b.String()
}

// PrintGroup renders several attributes in one group
func PrintGroup(nodes ...*attribute.Node) string {
	var b strings.Builder
	b.WriteString("#[")
	for i, node := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		writeNode(&b, node)
	}
	b.WriteString("]")
	return b.String()
}

// PrintExpr renders a single expression
func PrintExpr(e expr.Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

// Name renders a class name
func Name(n expr.Name) string {
	if n.FullyQualified {
		return `\` + n.Text
	}
	return n.Text
}

func writeNode(b *strings.Builder, node *attribute.Node) {
	b.WriteString(Name(node.Name))
	if len(node.Args) == 0 {
		return
	}
	writeArgs(b, node.Args)
}

func writeArgs(b *strings.Builder, args []*expr.Arg) {
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if arg.Named() {
			b.WriteString(arg.Name)
			b.WriteString(": ")
		}
		writeExpr(b, arg.Value)
	}
	b.WriteString(")")
}

func writeExpr(b *strings.Builder, e expr.Expr) {
	switch v := e.(type) {
	case expr.String:
		b.WriteString(quote(v))
	case expr.Int:
		b.WriteString(strconv.FormatInt(v.Value, 10))
	case expr.Float:
		b.WriteString(formatFloat(v.Value))
	case expr.Bool:
		b.WriteString(strconv.FormatBool(v.Value))
	case expr.Null:
		b.WriteString("null")
	case expr.Array:
		b.WriteString("[")
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			if item.Key != nil {
				writeExpr(b, item.Key)
				b.WriteString(" => ")
			}
			writeExpr(b, item.Value)
		}
		b.WriteString("]")
	case expr.ConstFetch:
		b.WriteString(v.Name)
	case expr.ClassConstFetch:
		b.WriteString(Name(v.Class))
		b.WriteString("::")
		b.WriteString(v.Const)
	case expr.New:
		b.WriteString("new ")
		b.WriteString(Name(v.Class))
		if len(v.Args) == 0 {
			b.WriteString("()")
			return
		}
		writeArgs(b, v.Args)
	default:
		fmt.Fprintf(b, "/* unsupported %T */", e)
	}
}

var (
	singleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	doubleQuoteEscaper = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`$`, `\$`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
		"\v", `\v`,
		"\f", `\f`,
	)
)

func quote(s expr.String) string {
	if s.Quote == expr.DoubleQuoted {
		return `"` + doubleQuoteEscaper.Replace(s.Value) + `"`
	}
	return `'` + singleQuoteEscaper.Replace(s.Value) + `'`
}

// formatFloat always keeps a decimal point or exponent so the literal stays a float
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
