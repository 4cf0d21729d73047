package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) (srcDir, mappingFile string) {
	t.Helper()
	dir := t.TempDir()
	srcDir = filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(srcDir, 0755))

	controller := "<?php\nclass A {\n    /** @Route(\"/a\", name=\"a\") */\n    function a() {}\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "A.php"), []byte(controller), 0644))

	mappingFile = filepath.Join(dir, "mappings.json")
	mapping := `{"mappings": [{"tag": "Route", "class": "App\\Routing\\Route"}], "parameters": {"App\\Routing\\Route": ["path", "name"]}}`
	require.NoError(t, os.WriteFile(mappingFile, []byte(mapping), 0644))
	return srcDir, mappingFile
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-help"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "Usage:")
	assert.Contains(t, stderr.String(), "-mapping")
	assert.Contains(t, stderr.String(), "paths")
}

func TestRun_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no paths", []string{"-mapping", "m.yaml"}, "At least one path is required"},
		{"no mapping", []string{"./src"}, "-mapping is required"},
		{"bad workers", []string{"-mapping", "m.yaml", "-workers", "0", "./src"}, "workers must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), tt.want)
		})
	}

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"-no-such-flag"}, &stdout, &stderr))
}

func TestRun_Text(t *testing.T) {
	srcDir, mappingFile := writeFixture(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-mapping", mappingFile, srcDir}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), `#[\App\Routing\Route(path: '/a', name: 'a')]`)
	assert.Contains(t, stdout.String(), "Conversion Complete!")
}

func TestRun_JSON(t *testing.T) {
	srcDir, mappingFile := writeFixture(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-json", "-mapping", mappingFile, srcDir + "/..."}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var report struct {
		Summary struct {
			Converted int `json:"converted"`
		} `json:"summary"`
		Occurrences []struct {
			Attribute string `json:"attribute"`
			Line      int    `json:"line"`
		} `json:"occurrences"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))

	assert.Equal(t, 1, report.Summary.Converted)
	require.Len(t, report.Occurrences, 1)
	assert.Equal(t, `#[\App\Routing\Route(path: '/a', name: 'a')]`, report.Occurrences[0].Attribute)
	assert.Equal(t, 3, report.Occurrences[0].Line)
}

func TestRun_MissingMapping(t *testing.T) {
	srcDir, _ := writeFixture(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-mapping", filepath.Join(srcDir, "none.yaml"), srcDir}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Conversion failed")
}
