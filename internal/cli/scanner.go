package cli

import (
	"strings"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/utils"
)

const (
	docCommentOpen  = "/**"
	docCommentClose = "*/"
)

// DocComment is one `/** ... */` block found in a source file
type DocComment struct {
	Text     string
	Location annotations.SourceLocation
}

// SourceScanner finds source files and the doc comments inside them
type SourceScanner struct {
	fileProcessor *utils.FileProcessor
	filter        utils.FileFilter
	comments      *utils.Cache[string, []DocComment]
}

// NewSourceScanner creates a scanner for files with the given extensions
func NewSourceScanner(extensions ...string) *SourceScanner {
	return NewSourceScannerWithReader(utils.NewFileReader(), extensions...)
}

// NewSourceScannerWithReader creates a scanner sharing an existing FileReader
func NewSourceScannerWithReader(reader *utils.FileReader, extensions ...string) *SourceScanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &SourceScanner{
		fileProcessor: utils.NewFileProcessorWithReader(reader),
		filter:        utils.ExtensionFileFilter(extensions...),
		comments:      utils.NewCache[string, []DocComment](),
	}
}

// FindFiles expands paths into the sorted list of matching source files.
// Supports Go-style patterns like "./..." for recursive scanning.
func (s *SourceScanner) FindFiles(paths []string) ([]string, error) {
	return s.fileProcessor.FindFiles(paths, s.filter)
}

// ScanFile returns the doc comments of a file. Results are cached until the
// file changes on disk.
func (s *SourceScanner) ScanFile(path string) ([]DocComment, error) {
	if comments, ok := s.comments.GetWithFileValidation(path, path); ok {
		return comments, nil
	}

	content, err := s.fileProcessor.GetFileReader().ReadFile(path)
	if err != nil {
		return nil, utils.WrapProcessError(path, err)
	}

	comments := ExtractDocComments(content, path)
	if err := s.comments.SetWithFileInfo(path, comments, path); err != nil {
		return nil, utils.WrapProcessError(path, err)
	}
	return comments, nil
}

// ExtractDocComments returns every doc comment in content with the 1-based
// line and column of its opening delimiter. An unterminated comment runs to
// the end of the content.
func ExtractDocComments(content, file string) []DocComment {
	var comments []DocComment

	offset := 0
	for {
		start := strings.Index(content[offset:], docCommentOpen)
		if start < 0 {
			break
		}
		start += offset

		// "/**/" is an empty regular comment
		if strings.HasPrefix(content[start:], "/**/") {
			offset = start + 4
			continue
		}

		end := strings.Index(content[start+len(docCommentOpen):], docCommentClose)
		if end < 0 {
			end = len(content)
		} else {
			end += start + len(docCommentOpen) + len(docCommentClose)
		}

		line := strings.Count(content[:start], "\n") + 1
		column := start - strings.LastIndex(content[:start], "\n")

		comments = append(comments, DocComment{
			Text: content[start:end],
			Location: annotations.SourceLocation{
				File:   file,
				Line:   line,
				Column: column,
			},
		})
		offset = end
	}

	return comments
}
