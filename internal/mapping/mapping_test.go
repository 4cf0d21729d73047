package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/attrconv/internal/annotations"
	"github.com/toyz/attrconv/internal/utils"
)

func TestNew(t *testing.T) {
	m, err := New("@Route", `App\Route`)
	require.NoError(t, err)
	assert.Equal(t, "Route", m.Tag())
	assert.False(t, m.ReusesShortName())
	assert.Equal(t, `@Route -> App\Route`, m.String())

	_, err = New("", "X")
	assert.Error(t, err)
	_, err = New("@", "X")
	assert.Error(t, err)
	_, err = New("X", "")
	assert.Error(t, err)
}

func TestReusesShortName(t *testing.T) {
	tests := []struct {
		tag, class string
		want       bool
	}{
		{"@Route", "Route", true},
		{"Route", "Route", true},
		{`ORM\Column`, `ORM\Column`, true},
		{"Route", `App\Route`, false},
		{"route", "Route", false},
	}
	for _, tt := range tests {
		m, err := New(tt.tag, tt.class)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.ReusesShortName(), "%s -> %s", tt.tag, tt.class)
	}
}

func TestTable(t *testing.T) {
	table, err := NewTable(
		AttributeMapping{SourceTag: "@Route", TargetClass: `App\Route`},
		AttributeMapping{SourceTag: "Column", TargetClass: `App\Column`},
	)
	require.NoError(t, err)

	m, ok := table.Lookup("Route")
	assert.True(t, ok)
	assert.Equal(t, `App\Route`, m.TargetClass)

	_, ok = table.Lookup("@Column")
	assert.True(t, ok)

	_, ok = table.Lookup("Missing")
	assert.False(t, ok)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"Column", "Route"}, table.Tags())

	mappings := table.Mappings()
	mappings[0].TargetClass = "changed"
	m, _ = table.Lookup("Route")
	assert.Equal(t, `App\Route`, m.TargetClass)
}

func TestTable_Duplicates(t *testing.T) {
	_, err := NewTable(
		AttributeMapping{SourceTag: "@Route", TargetClass: "A"},
		AttributeMapping{SourceTag: "Route", TargetClass: "B"},
	)
	assert.ErrorContains(t, err, `duplicate mapping for tag "Route"`)

	_, err = NewTable(AttributeMapping{SourceTag: "A"})
	assert.Error(t, err)
}

func TestTable_Nil(t *testing.T) {
	var table *Table
	_, ok := table.Lookup("A")
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Mappings())
	assert.Empty(t, table.Tags())
}

func TestDecode(t *testing.T) {
	yamlData := `
silent_key: value
mappings:
  - tag: "@Route"
    class: App\Route
  - tag: Column
    class: App\Column
parameters:
  App\Route: [path, name]
`
	jsonData := `{
  "silent_key": "value",
  "mappings": [
    {"tag": "@Route", "class": "App\\Route"},
    {"tag": "Column", "class": "App\\Column"}
  ],
  "parameters": {"App\\Route": ["path", "name"]}
}`

	for name, tc := range map[string]struct {
		data   string
		format Format
	}{
		"yaml": {yamlData, YAMLFormat},
		"json": {jsonData, JSONFormat},
	} {
		t.Run(name, func(t *testing.T) {
			file, err := Decode([]byte(tc.data), tc.format)
			require.NoError(t, err)

			require.NotNil(t, file.SilentKey)
			assert.Equal(t, "value", *file.SilentKey)
			assert.Equal(t, []Entry{{Tag: "@Route", Class: `App\Route`}, {Tag: "Column", Class: `App\Column`}}, file.Mappings)
			assert.Equal(t, map[string][]string{`App\Route`: {"path", "name"}}, file.Parameters)
		})
	}
}

func TestDecode_UnknownFields(t *testing.T) {
	_, err := Decode([]byte("mapping:\n  - tag: A\n"), YAMLFormat)
	assert.Error(t, err)

	_, err = Decode([]byte(`{"mapping": []}`), JSONFormat)
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, JSONFormat, FormatFromPath("mappings.JSON"))
	assert.Equal(t, YAMLFormat, FormatFromPath("mappings.yaml"))
	assert.Equal(t, YAMLFormat, FormatFromPath("mappings.yml"))
}

func TestFile_Build(t *testing.T) {
	t.Run("default silent key", func(t *testing.T) {
		file := &File{Mappings: []Entry{{Tag: "A", Class: "A"}}}
		cfg, err := file.Build("")
		require.NoError(t, err)
		assert.Equal(t, annotations.DefaultSilentKey, cfg.SilentKey)
		assert.Equal(t, 1, cfg.Table.Len())
	})

	t.Run("explicit empty silent key disables promotion", func(t *testing.T) {
		empty := ""
		cfg, err := (&File{SilentKey: &empty}).Build("")
		require.NoError(t, err)
		assert.Equal(t, "", cfg.SilentKey)
	})

	t.Run("module relative classes", func(t *testing.T) {
		file := &File{
			Mappings: []Entry{
				{Tag: "Route", Class: "./attrs.Route"},
				{Tag: "Root", Class: "./.Root"},
				{Tag: "Ext", Class: "other.com/x.Ext"},
			},
			Parameters: map[string][]string{"./attrs.Route": {"path"}},
		}
		cfg, err := file.Build("example.com/app")
		require.NoError(t, err)

		m, _ := cfg.Table.Lookup("Route")
		assert.Equal(t, "example.com/app/attrs.Route", m.TargetClass)
		m, _ = cfg.Table.Lookup("Root")
		assert.Equal(t, "example.com/app.Root", m.TargetClass)
		m, _ = cfg.Table.Lookup("Ext")
		assert.Equal(t, "other.com/x.Ext", m.TargetClass)
		assert.Equal(t, []string{"path"}, cfg.Parameters["example.com/app/attrs.Route"])
	})

	t.Run("module relative without module", func(t *testing.T) {
		_, err := (&File{Mappings: []Entry{{Tag: "A", Class: "./x.A"}}}).Build("")
		assert.ErrorContains(t, err, "module-relative")
	})

	t.Run("empty entry", func(t *testing.T) {
		_, err := (&File{Mappings: []Entry{{Tag: "A"}}}).Build("")
		assert.ErrorContains(t, err, "mapping 0")
	})
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n\ngo 1.25\n"), 0644))
	sub := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(sub, 0755))

	path := filepath.Join(sub, "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mappings:\n  - tag: Route\n    class: ./attrs.Route\n"), 0644))

	t.Run("module from go.mod", func(t *testing.T) {
		cfg, err := NewLoader(utils.NewFileReader(), "").LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "example.com/app", cfg.Module)
		m, ok := cfg.Table.Lookup("Route")
		require.True(t, ok)
		assert.Equal(t, "example.com/app/attrs.Route", m.TargetClass)
	})

	t.Run("module override", func(t *testing.T) {
		cfg, err := NewLoader(utils.NewFileReader(), "override.dev/m").LoadFile(path)
		require.NoError(t, err)
		m, _ := cfg.Table.Lookup("Route")
		assert.Equal(t, "override.dev/m/attrs.Route", m.TargetClass)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(utils.NewFileReader(), "").LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid content", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
		_, err := NewLoader(utils.NewFileReader(), "").LoadFile(bad)
		assert.Error(t, err)
	})
}
