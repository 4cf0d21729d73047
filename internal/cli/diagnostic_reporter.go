package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/attrconv/internal/annotations"
)

// codedError is implemented by every error the conversion pipeline reports
type codedError interface {
	error
	Code() annotations.ErrorCode
}

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewDiagnosticReporterWithWriter(verbose, os.Stderr)
}

// NewDiagnosticReporterWithWriter creates a reporter writing to out
func NewDiagnosticReporterWithWriter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out}
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints an error with its location, hint and type specific help
func (r *DiagnosticReporter) ReportError(err error) {
	var coded codedError
	if !errors.As(err, &coded) {
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
		return
	}

	title := errorTitle(coded.Code())
	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(title)+6))
	fmt.Fprintf(r.out, "Message: %s\n", err.Error())

	var annErr annotations.AnnotationError
	if errors.As(err, &annErr) {
		if loc := annErr.Location(); loc.File != "" {
			fmt.Fprintf(r.out, "Location: %s\n", loc)
		}
		if hint := annErr.Suggestion(); hint != "" {
			fmt.Fprintf(r.out, "Suggestion: %s\n", hint)
		}
	}
	fmt.Fprintln(r.out)

	r.printAdditionalHelp(coded.Code())

	if r.verbose {
		r.printErrorChain(err)
	}
}

// ReportErrors prints every error of a MultipleAnnotationErrors, or err itself
func (r *DiagnosticReporter) ReportErrors(err error) {
	var multi *annotations.MultipleAnnotationErrors
	if errors.As(err, &multi) {
		for _, e := range multi.Errors {
			r.ReportError(e)
		}
		return
	}
	r.ReportError(err)
}

func errorTitle(code annotations.ErrorCode) string {
	switch code {
	case annotations.SyntaxErrorCode:
		return "Annotation Syntax Error"
	case annotations.NormalizationErrorCode:
		return "Value Normalization Error"
	case annotations.InvariantErrorCode:
		return "Invariant Violation"
	case annotations.MappingErrorCode:
		return "Mapping Error"
	default:
		return "Unknown Error"
	}
}

// printAdditionalHelp prints additional help based on error type
func (r *DiagnosticReporter) printAdditionalHelp(code annotations.ErrorCode) {
	switch code {
	case annotations.SyntaxErrorCode:
		fmt.Fprintf(r.out, "Annotation Syntax Help:\n")
		fmt.Fprintf(r.out, "  - Annotations look like @Name or @Name(value, key=value)\n")
		fmt.Fprintf(r.out, "  - Lists use {a, b}, maps use {\"key\"=value}\n")
		fmt.Fprintf(r.out, "  - The annotation is left unchanged in the source\n\n")

	case annotations.NormalizationErrorCode:
		fmt.Fprintf(r.out, "The value has no attribute argument form; the annotation is left unchanged.\n\n")

	case annotations.InvariantErrorCode:
		fmt.Fprintf(r.out, "This is an internal error; only this occurrence was skipped.\n\n")
	}
}

// printErrorChain prints every wrapped error in verbose mode
func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "  %d. %s\n", level, err.Error())
		err = errors.Unwrap(err)
		level++
	}
	fmt.Fprintln(r.out)
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(r.out, "[DEBUG] "+format+"\n", args...)
	}
}

// ConversionSummary contains information about a conversion run
type ConversionSummary struct {
	BatchID         string
	FilesScanned    int
	DocComments     int
	Annotations     int
	Converted       int
	Skipped         int
	Failed          int
	ParseErrors     int
	ClassesResolved int
}

// Stats returns the summary as labelled values for display
func (s ConversionSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Files scanned":       s.FilesScanned,
		"Doc comments":        s.DocComments,
		"Annotations found":   s.Annotations,
		"Converted":           s.Converted,
		"Skipped (unmapped)":  s.Skipped,
		"Failed":              s.Failed,
		"Parse errors":        s.ParseErrors,
		"Classes with params": s.ClassesResolved,
	}
}
