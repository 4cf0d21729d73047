package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/toyz/attrconv/internal/cli"
	"github.com/toyz/attrconv/internal/logging"
	"github.com/toyz/attrconv/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, performs the conversion and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defaults := cli.DefaultConfig()
	flags := flag.NewFlagSet("attrconv", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		mappingFlag    = flags.String("mapping", "", "Tag to attribute class mapping file (YAML or JSON)")
		packagesFlag   = flags.String("packages", "", "Comma separated Go package patterns providing parameter names")
		packageDirFlag = flags.String("package-dir", defaults.PackageDir, "Directory the Go packages are loaded from")
		extFlag        = flags.String("ext", strings.Join(defaults.Extensions, ","), "Comma separated source file extensions")
		moduleFlag     = flags.String("module", "", "Module path for ./ relative classes (defaults to go.mod module)")
		workersFlag    = flags.Int("workers", defaults.Workers, "Maximum concurrent conversions")
		jsonFlag       = flags.Bool("json", false, "Print the report as JSON")
		verboseFlag    = flags.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag      = flags.Bool("quiet", false, "Only show errors and final results")
		debugFlag      = flags.Bool("debug", false, "Enable debug output and structured logs")
		helpFlag       = flags.Bool("help", false, "Show help information")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: attrconv [options] -mapping <file> <paths...>\n\n")
		fmt.Fprintf(stderr, "Annotation to Attribute Converter\n")
		fmt.Fprintf(stderr, "Scans doc comments for annotations and prints the equivalent attributes.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nArguments:\n")
		fmt.Fprintf(stderr, "  paths              Files or directories to scan\n")
		fmt.Fprintf(stderr, "                     Supports Go-style patterns like './...' for recursive scanning\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  attrconv -mapping mappings.yaml ./src/...\n")
		fmt.Fprintf(stderr, "  attrconv -mapping mappings.yaml -packages ./attrs ./src/Controller\n")
		fmt.Fprintf(stderr, "  attrconv -mapping mappings.json -json ./src/... > report.json\n")
	}

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *helpFlag {
		flags.Usage()
		return 0
	}

	paths := flags.Args()
	if len(paths) == 0 {
		fmt.Fprintf(stderr, "Error: At least one path is required\n\n")
		flags.Usage()
		return 1
	}
	if *mappingFlag == "" {
		fmt.Fprintf(stderr, "Error: -mapping is required\n\n")
		flags.Usage()
		return 1
	}

	config := cli.Config{
		Paths:       paths,
		MappingFile: *mappingFlag,
		Packages:    cli.ParseList(*packagesFlag),
		PackageDir:  *packageDirFlag,
		Extensions:  cli.ParseList(*extFlag),
		Module:      *moduleFlag,
		Workers:     *workersFlag,
		JSON:        *jsonFlag,
		Verbose:     *verboseFlag,
		Quiet:       *quietFlag,
		Debug:       *debugFlag,
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := logging.NewCLILogger(config.Debug)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logging.SetLogger(logger)
	defer func() { _ = logger.Sync() }()

	// Create diagnostic system based on flags. JSON output keeps stdout for the report.
	level := utils.DiagnosticInfo
	switch {
	case config.Quiet || config.JSON:
		level = utils.DiagnosticError
	case config.Debug:
		level = utils.DiagnosticDebug
	case config.Verbose:
		level = utils.DiagnosticVerbose
	}
	diagnostics := utils.NewDiagnosticSystemWithWriters(level, stdout, stderr)

	diagnostics.Section("Annotation to Attribute Converter")
	if config.Verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Paths: %s", strings.Join(config.Paths, ", "))
		diagnostics.List("Mapping file: %s", config.MappingFile)
		if len(config.Packages) > 0 {
			diagnostics.List("Parameter packages: %s", strings.Join(config.Packages, ", "))
		}
		if config.Module != "" {
			diagnostics.List("Custom module: %s", config.Module)
		}
		diagnostics.List("Workers: %d", config.Workers)
	}

	converter := cli.NewConverter(config, diagnostics)
	report, err := converter.Run(ctx)
	if err != nil {
		diagnostics.Error("Conversion failed: %v", err)
		return 1
	}

	if config.JSON {
		if err := cli.WriteJSON(stdout, report, converter.GetSummary()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		cli.PrintReport(diagnostics, report)
		diagnostics.Summary("Conversion Complete!", converter.GetSummary().Stats())
	}

	// Failed occurrences are left unchanged but still make the run unsuccessful
	if converter.GetSummary().Failed > 0 {
		return 3
	}
	return 0
}
