// Package rewrite converts batches of annotation occurrences into attributes.
//
// Every occurrence is converted independently: a failure is recorded on its
// own result and leaves the original annotation untouched, while the rest of
// the batch carries on.
package rewrite

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/attribute"
	"github.com/toyz/attrconv/internal/logging"
	"github.com/toyz/attrconv/internal/mapping"
	"github.com/toyz/attrconv/internal/printer"
	"github.com/toyz/attrconv/internal/utils"
)

// Status is the outcome of one occurrence
type Status int

const (
	Pending Status = iota
	Converted
	Skipped
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Converted:
		return "converted"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Occurrence is one annotation found in the source
type Occurrence struct {
	File       string
	Annotation *annotations.ParsedAnnotation
	Block      annotations.SourceLocation // Doc comment holding the annotation, zero if unknown
}

// Result is the outcome of converting one occurrence
type Result struct {
	Occurrence Occurrence
	Mapping    mapping.AttributeMapping
	Node       *attribute.Node
	Rendered   string
	Status     Status
	Err        error
}

// Report collects the results of one batch in input order
type Report struct {
	ID       uuid.UUID
	Results  []Result
	Started  time.Time
	Finished time.Time
}

// Count returns the number of results with the given status
func (r *Report) Count(status Status) int {
	count := 0
	for _, result := range r.Results {
		if result.Status == status {
			count++
		}
	}
	return count
}

// Failures returns the failed results
func (r *Report) Failures() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.Status == Failed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Group is the converted attributes of one doc comment, rendered together
type Group struct {
	File     string
	Block    annotations.SourceLocation
	Nodes    []*attribute.Node
	Rendered string
}

// Groups collects converted results by doc comment, in input order. An
// occurrence without a block forms a group of its own.
func (r *Report) Groups() []Group {
	var groups []Group
	index := make(map[annotations.SourceLocation]int)

	for _, result := range r.Results {
		if result.Status != Converted || result.Node == nil {
			continue
		}

		occ := result.Occurrence
		if occ.Block != (annotations.SourceLocation{}) {
			if i, ok := index[occ.Block]; ok {
				groups[i].Nodes = append(groups[i].Nodes, result.Node)
				continue
			}
			index[occ.Block] = len(groups)
		}

		block := occ.Block
		if block == (annotations.SourceLocation{}) && occ.Annotation != nil {
			block = occ.Annotation.Location
		}
		groups = append(groups, Group{File: occ.File, Block: block, Nodes: []*attribute.Node{result.Node}})
	}

	for i := range groups {
		groups[i].Rendered = printer.PrintGroup(groups[i].Nodes...)
	}
	return groups
}

// Duration returns how long the batch took
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Engine runs conversions for a mapping table
type Engine struct {
	factory *attribute.Factory
	table   *mapping.Table
	workers int
	logger  *zap.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithWorkers bounds the number of concurrent conversions
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithEngineLogger sets the logger, replacing the shared one
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine
func NewEngine(factory *attribute.Factory, table *mapping.Table, opts ...EngineOption) *Engine {
	e := &Engine{
		factory: factory,
		table:   table,
		workers: runtime.GOMAXPROCS(0),
		logger:  logging.Named("rewrite"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convert converts every occurrence. The returned error is only set when ctx
// is cancelled; per-occurrence failures are reported on the results.
func (e *Engine) Convert(ctx context.Context, occurrences []Occurrence) (*Report, error) {
	report := &Report{
		ID:      uuid.New(),
		Results: make([]Result, len(occurrences)),
		Started: time.Now(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, occ := range occurrences {
		report.Results[i] = Result{Occurrence: occ}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report.Results[i] = e.ConvertOne(occ)
			return nil
		})
	}

	err := g.Wait()
	report.Finished = time.Now()

	e.logger.Info("batch converted",
		zap.String("batch", report.ID.String()),
		zap.Int("occurrences", len(occurrences)),
		zap.Int("converted", report.Count(Converted)),
		zap.Int("skipped", report.Count(Skipped)),
		zap.Int("failed", report.Count(Failed)),
		zap.Duration("duration", report.Duration()))

	return report, err
}

// ConvertOne converts a single occurrence. Panics inside the conversion are
// turned into a failed result.
func (e *Engine) ConvertOne(occ Occurrence) (result Result) {
	result = Result{Occurrence: occ}

	defer func() {
		if r := recover(); r != nil {
			result.Node = nil
			result.Rendered = ""
			result.Status = Failed
			result.Err = fmt.Errorf("%w: conversion panicked: %v", attribute.ErrInvariantViolation, r)
			e.logger.Error("conversion panicked", zap.String("file", occ.File), zap.Any("panic", r))
		}
	}()

	if occ.Annotation == nil {
		result.Status = Failed
		result.Err = &attribute.InvariantViolation{Index: -1, Reason: "occurrence without annotation"}
		return result
	}

	m, ok := e.table.Lookup(occ.Annotation.Tag)
	if !ok {
		result.Status = Skipped
		return result
	}
	result.Mapping = m

	node, err := e.factory.CreateFromAnnotation(occ.Annotation, m)
	if err != nil {
		result.Status = Failed
		result.Err = utils.WrapConvertError(fmt.Sprintf("@%s at %s", occ.Annotation.Tag, occ.Annotation.Location), err)
		e.logger.Warn("occurrence left unchanged",
			zap.String("location", occ.Annotation.Location.String()),
			zap.String("tag", occ.Annotation.Tag),
			zap.Error(err))
		return result
	}

	result.Node = node
	result.Rendered = printer.Print(node)
	result.Status = Converted
	return result
}
