package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// ExtensionFileFilter accepts files whose extension is in exts (case-insensitive)
func ExtensionFileFilter(exts ...string) FileFilter {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		return allowed[strings.ToLower(filepath.Ext(info.Name()))]
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		".git":         true,
		".svn":         true,
		".hg":          true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
		"var":          true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// WalkFiles walks through files in a directory tree with filtering
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			// The root itself is always walked
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}

		return nil
	})

	return matchedFiles, err
}

// FindFiles resolves path arguments into a sorted, de-duplicated file list.
// A path ending in "/..." is walked recursively, a directory is scanned
// without recursion and a file is taken as is.
func (fp *FileProcessor) FindFiles(paths []string, filter FileFilter) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(list ...string) {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	for _, p := range paths {
		recursive := strings.HasSuffix(p, "/...")
		if recursive {
			p = strings.TrimSuffix(p, "/...")
			if p == "" {
				p = "."
			}
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, WrapProcessError(fmt.Sprintf("path %s", p), err)
		}

		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}

		options := FileWalkOptions{FileFilter: filter, DirectoryFilter: DefaultDirectoryFilter()}
		if !recursive {
			root := filepath.Clean(p)
			options.DirectoryFilter = func(path string, _ os.DirEntry) bool { return path == root }
			p = root
		}

		matched, err := fp.WalkFiles(p, options)
		if err != nil {
			return nil, WrapProcessError(fmt.Sprintf("directory %s", p), err)
		}
		add(matched...)
	}

	sort.Strings(files)
	return files, nil
}

// GetFileReader returns the underlying FileReader for advanced operations
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
