package mapping

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/utils"
)

// ModuleRelativePrefix marks a class written relative to the current Go module
const ModuleRelativePrefix = "./"

// Format is the encoding of a mapping file
type Format int

const (
	YAMLFormat Format = iota
	JSONFormat
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONFormat
	}
	return YAMLFormat
}

// File is the on-disk layout of a mapping file
type File struct {
	SilentKey  *string             `yaml:"silent_key" json:"silent_key"`
	Mappings   []Entry             `yaml:"mappings" json:"mappings"`
	Parameters map[string][]string `yaml:"parameters" json:"parameters"`
}

// Entry is one tag to class line of a mapping file
type Entry struct {
	Tag   string `yaml:"tag" json:"tag"`
	Class string `yaml:"class" json:"class"`
}

// Config is the loaded, validated content of a mapping file
type Config struct {
	Table      *Table
	SilentKey  string
	Parameters map[string][]string
	Module     string // Module path used to qualify module-relative classes
}

// Loader reads mapping files
type Loader struct {
	fileReader  *utils.FileReader
	goModParser *utils.GoModParser
	module      string
}

// NewLoader creates a loader. module overrides the go.mod lookup for
// module-relative classes when not empty.
func NewLoader(fileReader *utils.FileReader, module string) *Loader {
	return &Loader{
		fileReader:  fileReader,
		goModParser: utils.NewGoModParser(fileReader),
		module:      module,
	}
}

// LoadFile reads, decodes and validates a mapping file
func (l *Loader) LoadFile(path string) (*Config, error) {
	content, err := l.fileReader.ReadFile(path)
	if err != nil {
		return nil, utils.WrapLoadError("mapping file", err)
	}

	file, err := Decode([]byte(content), FormatFromPath(path))
	if err != nil {
		return nil, utils.WrapParseError(path, err)
	}

	module := l.module
	if module == "" && file.needsModule() {
		module, err = l.moduleFor(filepath.Dir(path))
		if err != nil {
			return nil, utils.WrapLoadError("module path for relative classes", err)
		}
	}

	return file.Build(module)
}

func (l *Loader) moduleFor(dir string) (string, error) {
	goModPath, err := l.goModParser.FindGoModFile(dir)
	if err != nil {
		return "", err
	}
	return l.goModParser.ParseModuleName(goModPath)
}

// Decode parses mapping file content
func Decode(data []byte, format Format) (*File, error) {
	var file File
	switch format {
	case JSONFormat:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("invalid JSON mapping: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("invalid YAML mapping: %w", err)
		}
	}
	return &file, nil
}

// Build validates the file and produces the immutable configuration
func (f *File) Build(module string) (*Config, error) {
	mappings := make([]AttributeMapping, 0, len(f.Mappings))
	for i, entry := range f.Mappings {
		class, err := qualify(entry.Class, module)
		if err != nil {
			return nil, fmt.Errorf("mapping %d: %w", i, err)
		}
		m, err := New(entry.Tag, class)
		if err != nil {
			return nil, fmt.Errorf("mapping %d: %w", i, err)
		}
		mappings = append(mappings, m)
	}

	table, err := NewTable(mappings...)
	if err != nil {
		return nil, err
	}

	params := make(map[string][]string, len(f.Parameters))
	validateNames := utils.ValidateParameterNames("parameters")
	for class, names := range f.Parameters {
		qualified, err := qualify(class, module)
		if err != nil {
			return nil, fmt.Errorf("parameters for %s: %w", class, err)
		}
		if err := validateNames(names); err != nil {
			return nil, fmt.Errorf("parameters for %s: %w", class, err)
		}
		params[qualified] = append([]string(nil), names...)
	}

	silentKey := annotations.DefaultSilentKey
	if f.SilentKey != nil {
		silentKey = *f.SilentKey
	}

	return &Config{
		Table:      table,
		SilentKey:  silentKey,
		Parameters: params,
		Module:     module,
	}, nil
}

func (f *File) needsModule() bool {
	for _, entry := range f.Mappings {
		if strings.HasPrefix(entry.Class, ModuleRelativePrefix) {
			return true
		}
	}
	for class := range f.Parameters {
		if strings.HasPrefix(class, ModuleRelativePrefix) {
			return true
		}
	}
	return false
}

// qualify expands "./pkg.Type" to "<module>/pkg.Type" and "./.Type" style
// root references to "<module>.Type"
func qualify(class, module string) (string, error) {
	if !strings.HasPrefix(class, ModuleRelativePrefix) {
		return class, nil
	}
	if module == "" {
		return "", fmt.Errorf("class %q is module-relative but no module path is known", class)
	}
	rest := strings.TrimPrefix(class, ModuleRelativePrefix)
	if strings.HasPrefix(rest, ".") {
		return module + rest, nil
	}
	return module + "/" + rest, nil
}
