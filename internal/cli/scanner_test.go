package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/attrconv/internal/annotations"
)

const controllerSource = `<?php

class UserController
{
    /**
     * @Route("/users", name="user_list")
     */
    public function list() {}

    /**/
    /** @Deprecated */
    public function old() {}
}
`

func TestExtractDocComments(t *testing.T) {
	comments := ExtractDocComments(controllerSource, "UserController.php")
	require.Len(t, comments, 2)

	assert.Equal(t, annotations.SourceLocation{File: "UserController.php", Line: 5, Column: 5}, comments[0].Location)
	assert.Contains(t, comments[0].Text, `@Route("/users", name="user_list")`)
	assert.True(t, len(comments[0].Text) > 0 && comments[0].Text[len(comments[0].Text)-2:] == "*/")

	assert.Equal(t, "/** @Deprecated */", comments[1].Text)
	assert.Equal(t, 11, comments[1].Location.Line)
}

func TestExtractDocComments_Unterminated(t *testing.T) {
	comments := ExtractDocComments("x\n/** @Foo", "a.php")
	require.Len(t, comments, 1)
	assert.Equal(t, "/** @Foo", comments[0].Text)
	assert.Equal(t, annotations.SourceLocation{File: "a.php", Line: 2, Column: 1}, comments[0].Location)
}

func TestExtractDocComments_None(t *testing.T) {
	assert.Empty(t, ExtractDocComments("<?php // @Route\n/* @Route */", "a.php"))
}

func TestSourceScanner(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "Controller")
	require.NoError(t, os.MkdirAll(sub, 0755))

	controller := filepath.Join(sub, "UserController.php")
	require.NoError(t, os.WriteFile(controller, []byte(controllerSource), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("/** @Route */"), 0644))

	scanner := NewSourceScanner()

	files, err := scanner.FindFiles([]string{dir + "/..."})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "UserController.php", filepath.Base(files[0]))

	comments, err := scanner.ScanFile(files[0])
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	again, err := scanner.ScanFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, comments, again)
	assert.Equal(t, int64(1), scanner.comments.GetStats().Hits)

	_, err = scanner.ScanFile(filepath.Join(dir, "missing.php"))
	assert.Error(t, err)
}
