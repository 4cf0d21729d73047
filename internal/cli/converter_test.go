package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/attrconv/internal/rewrite"
	"github.com/toyz/attrconv/internal/utils"
)

const testMappings = `silent_key: value
mappings:
  - tag: Route
    class: Route
  - tag: Deprecated
    class: App\Attribute\Deprecated
  - tag: Cache
    class: App\Attribute\Cache
parameters:
  Route: [path, name, methods]
`

const testController = `<?php

class UserController
{
    /**
     * Lists users.
     *
     * @Route("/users", name="user_list", methods={"GET"})
     * @Cache(maxage=3600, public=true)
     * @param int $page
     */
    public function list($page) {}

    /**
     * @Deprecated
     * @Route("/broken"
     */
    public function old() {}
}
`

func writeProject(t *testing.T) (dir string, mappingFile string) {
	t.Helper()
	dir = t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "UserController.php"), []byte(testController), 0644))

	mappingFile = filepath.Join(dir, "mappings.yaml")
	require.NoError(t, os.WriteFile(mappingFile, []byte(testMappings), 0644))
	return dir, mappingFile
}

func newTestConverter(t *testing.T) (*Converter, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dir, mappingFile := writeProject(t)

	cfg := DefaultConfig()
	cfg.Paths = []string{filepath.Join(dir, "src") + "/..."}
	cfg.MappingFile = mappingFile
	cfg.Workers = 2

	var out, errOut bytes.Buffer
	diagnostics := utils.NewDiagnosticSystemWithWriters(utils.DiagnosticVerbose, &out, &errOut)
	converter := NewConverter(cfg, diagnostics)
	converter.SetReporter(NewDiagnosticReporterWithWriter(false, &errOut))
	return converter, &out, &errOut
}

func TestConverter_Run(t *testing.T) {
	converter, _, errOut := newTestConverter(t)

	report, err := converter.Run(context.Background())
	require.NoError(t, err)

	rendered := map[string]string{}
	for _, result := range report.Results {
		if result.Status == rewrite.Converted {
			rendered[result.Occurrence.Annotation.Tag] = result.Rendered
		}
	}

	assert.Equal(t, `#[Route(path: '/users', name: 'user_list', methods: ['GET'])]`, rendered["Route"])
	assert.Equal(t, `#[\App\Attribute\Cache(maxage: 3600, public: true)]`, rendered["Cache"])
	assert.Equal(t, `#[\App\Attribute\Deprecated]`, rendered["Deprecated"])

	summary := converter.GetSummary()
	assert.Equal(t, 1, summary.FilesScanned)
	assert.Equal(t, 2, summary.DocComments)
	assert.Equal(t, 4, summary.Annotations)
	assert.Equal(t, 3, summary.Converted)
	assert.Equal(t, 1, summary.Skipped, "@param has no mapping")
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, summary.ParseErrors, "the unterminated @Route")
	assert.Equal(t, 1, summary.ClassesResolved)
	assert.Equal(t, report.ID.String(), summary.BatchID)

	assert.Contains(t, errOut.String(), "[WARN]")
}

func TestConverter_RunInvalidConfig(t *testing.T) {
	converter := NewConverter(Config{}, utils.NewDiagnosticSystemWithWriters(utils.DiagnosticSilent, &bytes.Buffer{}, &bytes.Buffer{}))
	_, err := converter.Run(context.Background())
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestConverter_RunMissingMapping(t *testing.T) {
	dir, _ := writeProject(t)
	cfg := DefaultConfig()
	cfg.Paths = []string{dir}
	cfg.MappingFile = filepath.Join(dir, "nope.yaml")

	converter := NewConverter(cfg, utils.NewDiagnosticSystemWithWriters(utils.DiagnosticSilent, &bytes.Buffer{}, &bytes.Buffer{}))
	_, err := converter.Run(context.Background())
	assert.ErrorContains(t, err, "mapping file")
}

func TestWriteJSON(t *testing.T) {
	converter, _, _ := newTestConverter(t)
	report, err := converter.Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report, converter.GetSummary()))

	var decoded jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, report.ID.String(), decoded.ID)
	assert.Equal(t, 3, decoded.Summary.Converted)
	assert.Equal(t, 1, decoded.Summary.ParseErrors)
	require.Len(t, decoded.Occurrences, 4)

	first := decoded.Occurrences[0]
	assert.Equal(t, "Route", first.Tag)
	assert.Equal(t, "converted", first.Status)
	assert.Equal(t, 8, first.Line)
	assert.True(t, strings.HasSuffix(first.File, "UserController.php"))

	require.Len(t, decoded.Groups, 2)
	assert.Equal(t, 5, decoded.Groups[0].Line)
	assert.Equal(t, `#[Route(path: '/users', name: 'user_list', methods: ['GET']), \App\Attribute\Cache(maxage: 3600, public: true)]`, decoded.Groups[0].Attribute)
	assert.Equal(t, 14, decoded.Groups[1].Line)
	assert.Equal(t, `#[\App\Attribute\Deprecated]`, decoded.Groups[1].Attribute)
}

func TestPrintReport(t *testing.T) {
	converter, out, _ := newTestConverter(t)
	report, err := converter.Run(context.Background())
	require.NoError(t, err)

	out.Reset()
	PrintReport(converter.diagnostics, report)

	text := out.String()
	assert.Contains(t, text, `#[Route(path: '/users', name: 'user_list', methods: ['GET'])]`)
	assert.Contains(t, text, "@param has no mapping")
	assert.Contains(t, text, "Grouped by doc comment")
	assert.Contains(t, text, `#[Route(path: '/users', name: 'user_list', methods: ['GET']), \App\Attribute\Cache(maxage: 3600, public: true)]`)
	assert.NotContains(t, text, `#[\App\Attribute\Deprecated, `)
}
