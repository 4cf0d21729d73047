package cli

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/toyz/attrconv/internal/rewrite"
	"github.com/toyz/attrconv/internal/utils"
)

// jsonReport is the machine readable form of a run
type jsonReport struct {
	ID          string           `json:"id"`
	DurationMS  int64            `json:"duration_ms"`
	Summary     jsonSummary      `json:"summary"`
	Occurrences []jsonOccurrence `json:"occurrences"`
	Groups      []jsonGroup      `json:"groups"`
}

type jsonGroup struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Attribute string `json:"attribute"`
}

type jsonSummary struct {
	Files       int `json:"files"`
	Annotations int `json:"annotations"`
	Converted   int `json:"converted"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	ParseErrors int `json:"parse_errors"`
}

type jsonOccurrence struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Tag       string `json:"tag"`
	Original  string `json:"original,omitempty"`
	Status    string `json:"status"`
	Class     string `json:"class,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WriteJSON writes the report and summary as indented JSON
func WriteJSON(w io.Writer, report *rewrite.Report, summary ConversionSummary) error {
	out := jsonReport{
		ID:         report.ID.String(),
		DurationMS: report.Duration().Milliseconds(),
		Summary: jsonSummary{
			Files:       summary.FilesScanned,
			Annotations: summary.Annotations,
			Converted:   report.Count(rewrite.Converted),
			Skipped:     report.Count(rewrite.Skipped),
			Failed:      report.Count(rewrite.Failed),
			ParseErrors: summary.ParseErrors,
		},
		Occurrences: make([]jsonOccurrence, 0, len(report.Results)),
	}

	for _, result := range report.Results {
		occ := jsonOccurrence{
			File:      result.Occurrence.File,
			Status:    result.Status.String(),
			Class:     result.Mapping.TargetClass,
			Attribute: result.Rendered,
		}
		if ann := result.Occurrence.Annotation; ann != nil {
			occ.Line = ann.Location.Line
			occ.Column = ann.Location.Column
			occ.Tag = ann.Tag
			occ.Original = ann.Raw
		}
		if result.Err != nil {
			occ.Error = result.Err.Error()
		}
		out.Occurrences = append(out.Occurrences, occ)
	}

	groups := report.Groups()
	out.Groups = make([]jsonGroup, 0, len(groups))
	for _, g := range groups {
		out.Groups = append(out.Groups, jsonGroup{
			File:      g.File,
			Line:      g.Block.Line,
			Column:    g.Block.Column,
			Attribute: g.Rendered,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// PrintReport writes the converted and failed occurrences through the
// diagnostic system, then the combined attribute of every doc comment that
// produced more than one. Skipped occurrences are only listed in verbose mode.
func PrintReport(d *utils.DiagnosticSystem, report *rewrite.Report) {
	d.Subsection("Conversions")
	for _, result := range report.Results {
		ann := result.Occurrence.Annotation
		switch result.Status {
		case rewrite.Converted:
			d.Item("%s  %s", ann.Location, ann.Raw)
			d.Indent()
			d.List("%s", result.Rendered)
			d.Unindent()
		case rewrite.Skipped:
			d.Verbose("%s  @%s has no mapping", ann.Location, ann.Tag)
		case rewrite.Failed:
			d.Error("%v", result.Err)
		}
	}

	var grouped []rewrite.Group
	for _, g := range report.Groups() {
		if len(g.Nodes) > 1 {
			grouped = append(grouped, g)
		}
	}
	if len(grouped) == 0 {
		return
	}

	d.Subsection("Grouped by doc comment")
	for _, g := range grouped {
		d.Item("%s", g.Block)
		d.Indent()
		d.List("%s", g.Rendered)
		d.Unindent()
	}
}
