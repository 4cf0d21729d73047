package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/toyz/attrconv/internal/utils"
)

// DefaultExtensions are the source file extensions scanned when none are given
var DefaultExtensions = []string{".php"}

// Config holds the configuration for a conversion run
type Config struct {
	// Paths are files or directories to scan. A "/..." suffix scans recursively.
	Paths []string

	// MappingFile is the YAML or JSON tag to class mapping
	MappingFile string

	// Packages are Go package patterns whose types provide parameter names
	Packages []string

	// PackageDir is the directory packages are loaded from
	PackageDir string

	// Extensions restricts the scanned files
	Extensions []string

	// Module qualifies module-relative classes in the mapping file.
	// If empty, it is read from the go.mod next to the mapping file.
	Module string

	// Workers bounds the number of concurrent conversions
	Workers int

	// JSON prints the report as JSON instead of text
	JSON bool

	Verbose bool
	Quiet   bool
	Debug   bool
}

// DefaultConfig returns a configuration with defaults applied
func DefaultConfig() Config {
	return Config{
		PackageDir: ".",
		Extensions: append([]string(nil), DefaultExtensions...),
		Workers:    runtime.GOMAXPROCS(0),
	}
}

// Validate checks the configuration before a run
func (c Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("at least one path is required")
	}
	if strings.TrimSpace(c.MappingFile) == "" {
		return fmt.Errorf("a mapping file is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Quiet && (c.Verbose || c.Debug) {
		return fmt.Errorf("quiet cannot be combined with verbose or debug")
	}
	return utils.ValidateEach("extensions", utils.ValidateExtension("extension"))(c.Extensions)
}

// ParseList splits a comma separated flag value, dropping empty items
func ParseList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
