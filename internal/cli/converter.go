package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/attribute"
	"github.com/toyz/attrconv/internal/logging"
	"github.com/toyz/attrconv/internal/mapping"
	"github.com/toyz/attrconv/internal/metadata"
	"github.com/toyz/attrconv/internal/rewrite"
	"github.com/toyz/attrconv/internal/utils"
)

// Converter coordinates a conversion run: load the mapping, scan the
// sources, parse their doc comments and convert every annotation
type Converter struct {
	config      Config
	scanner     *SourceScanner
	fileReader  *utils.FileReader
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	logger      *zap.Logger
	summary     ConversionSummary
}

// NewConverter creates a converter for config
func NewConverter(config Config, diagnostics *utils.DiagnosticSystem) *Converter {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	fileReader := utils.NewFileReader()
	return &Converter{
		config:      config,
		scanner:     NewSourceScannerWithReader(fileReader, config.Extensions...),
		fileReader:  fileReader,
		reporter:    NewDiagnosticReporter(config.Verbose),
		diagnostics: diagnostics,
		logger:      logging.Named("cli"),
	}
}

// SetReporter replaces the error reporter
func (c *Converter) SetReporter(reporter *DiagnosticReporter) {
	c.reporter = reporter
}

// GetSummary returns the summary of the last run
func (c *Converter) GetSummary() ConversionSummary {
	return c.summary
}

// Run executes the complete conversion. Occurrences that fail to parse or
// convert are reported and skipped; the returned error is only set when the
// run as a whole cannot proceed.
func (c *Converter) Run(ctx context.Context) (*rewrite.Report, error) {
	startTime := time.Now()
	c.summary = ConversionSummary{}

	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c.diagnostics.Verbose("Starting conversion at %s", startTime.Format("15:04:05"))
	c.diagnostics.Debug("Scanning paths: %v", c.config.Paths)

	cfg, err := mapping.NewLoader(c.fileReader, c.config.Module).LoadFile(c.config.MappingFile)
	if err != nil {
		return nil, err
	}
	c.diagnostics.Verbose("Loaded %d mappings from %s", cfg.Table.Len(), c.config.MappingFile)
	if cfg.Module != "" {
		c.diagnostics.Debug("Module-relative classes use %s", cfg.Module)
	}

	resolver, err := c.buildResolver(ctx, cfg)
	if err != nil {
		return nil, err
	}

	factory := attribute.NewFactory(resolver, attribute.WithNestedMappings(cfg.Table))
	engine := rewrite.NewEngine(factory, cfg.Table, rewrite.WithWorkers(c.config.Workers))
	parser := annotations.NewParticipleParser(cfg.SilentKey)

	occurrences, err := c.collect(parser)
	if err != nil {
		return nil, err
	}

	report, err := engine.Convert(ctx, occurrences)
	if report != nil {
		c.summary.BatchID = report.ID.String()
		c.summary.Converted = report.Count(rewrite.Converted)
		c.summary.Skipped = report.Count(rewrite.Skipped)
		c.summary.Failed = report.Count(rewrite.Failed)
	}
	if err != nil {
		return report, utils.WrapProcessError("annotations", err)
	}

	c.logger.Info("conversion finished",
		zap.String("batch", c.summary.BatchID),
		zap.Int("files", c.summary.FilesScanned),
		zap.Duration("elapsed", time.Since(startTime)))

	return report, nil
}

// buildResolver chains the parameter table of the mapping file with the
// configured Go packages and resolves every mapped class up front, so
// conversions only read the cache
func (c *Converter) buildResolver(ctx context.Context, cfg *mapping.Config) (*metadata.CachingResolver, error) {
	sources := metadata.ChainSource{metadata.NewStaticSource(cfg.Parameters)}

	if len(c.config.Packages) > 0 {
		c.diagnostics.Verbose("Loading parameter names from %v", c.config.Packages)
		pkgSource, err := metadata.LoadPackages(ctx, c.config.PackageDir, c.config.Packages...)
		if err != nil {
			return nil, utils.WrapLoadError("parameter packages", err)
		}
		c.diagnostics.Debug("Indexed %d types", pkgSource.Classes())
		sources = append(sources, pkgSource)
	}

	resolver := metadata.NewCachingResolver(sources)
	mappings := cfg.Table.Mappings()
	classes := make([]string, 0, len(mappings))
	for _, m := range mappings {
		classes = append(classes, m.TargetClass)
	}
	resolver.Warm(classes...)

	for _, m := range mappings {
		if names := resolver.ResolveFromClass(m.TargetClass); names.IsAvailable() {
			c.summary.ClassesResolved++
			c.diagnostics.Debug("%s parameters %s", m.TargetClass, names)
		} else {
			c.diagnostics.Debug("%s has no known parameters, arguments stay positional", m.TargetClass)
		}
	}

	return resolver, nil
}

// collect parses the doc comments of every scanned file into occurrences
func (c *Converter) collect(parser *annotations.ParticipleParser) ([]rewrite.Occurrence, error) {
	files, err := c.scanner.FindFiles(c.config.Paths)
	if err != nil {
		return nil, utils.WrapProcessError("paths", err)
	}
	c.summary.FilesScanned = len(files)
	c.diagnostics.Verbose("Found %d source files", len(files))

	var occurrences []rewrite.Occurrence
	for _, file := range files {
		comments, err := c.scanner.ScanFile(file)
		if err != nil {
			return nil, err
		}
		c.summary.DocComments += len(comments)

		for _, comment := range comments {
			parsed, err := parser.ParseDocBlock(comment.Text, comment.Location)
			if err != nil {
				c.summary.ParseErrors += countErrors(err)
				c.diagnostics.Warn("%v", err)
				if c.config.Verbose {
					c.reporter.ReportErrors(err)
				}
			}
			for _, annotation := range parsed {
				occurrences = append(occurrences, rewrite.Occurrence{File: file, Annotation: annotation, Block: comment.Location})
			}
		}
	}

	c.summary.Annotations = len(occurrences)
	return occurrences, nil
}

func countErrors(err error) int {
	if multi, ok := err.(*annotations.MultipleAnnotationErrors); ok {
		return len(multi.Errors)
	}
	return 1
}
