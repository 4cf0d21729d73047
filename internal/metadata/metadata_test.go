package metadata

import (
	"errors"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

type countingSource struct {
	mu    sync.Mutex
	calls map[string]int
	names map[string]Names
	err   error
}

func (s *countingSource) ParameterNames(classID string) (Names, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[classID]++
	if s.err != nil {
		return Unavailable, s.err
	}
	if names, ok := s.names[classID]; ok {
		return names, nil
	}
	return Unavailable, nil
}

func TestNames(t *testing.T) {
	names := Available("a", "b")
	assert.True(t, names.IsAvailable())
	assert.Equal(t, 2, names.Len())

	name, ok := names.At(1)
	assert.True(t, ok)
	assert.Equal(t, "b", name)

	_, ok = names.At(2)
	assert.False(t, ok)
	assert.Equal(t, "[a, b]", names.String())

	assert.False(t, Unavailable.IsAvailable())
	assert.Nil(t, Unavailable.Slice())
	assert.Equal(t, "<unavailable>", Unavailable.String())

	empty := Available()
	assert.True(t, empty.IsAvailable(), "a class without parameters is still known")
	assert.Equal(t, 0, empty.Len())
}

func TestNames_SliceIsCopy(t *testing.T) {
	names := Available("a")
	slice := names.Slice()
	slice[0] = "changed"

	name, _ := names.At(0)
	assert.Equal(t, "a", name)
}

func TestStaticSource(t *testing.T) {
	table := map[string][]string{`\App\Route`: {"path", "name"}}
	source := NewStaticSource(table)
	table[`\App\Route`][0] = "mutated"

	names, err := source.ParameterNames(`App\Route`)
	require.NoError(t, err)
	assert.Equal(t, []string{"path", "name"}, names.Slice())

	names, err = source.ParameterNames("Unknown")
	require.NoError(t, err)
	assert.False(t, names.IsAvailable())
	assert.Equal(t, 1, source.Len())
}

func TestChainSource(t *testing.T) {
	broken := &countingSource{err: errors.New("boom")}
	first := &countingSource{names: map[string]Names{"A": Available("x")}}
	second := &countingSource{names: map[string]Names{"A": Available("y"), "B": Available("z")}}

	chain := ChainSource{broken, nil, first, second}

	names, err := chain.ParameterNames("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, names.Slice())

	names, err = chain.ParameterNames("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, names.Slice())

	names, err = chain.ParameterNames("C")
	assert.EqualError(t, err, "failed to resolve parameter names of C: boom")
	assert.ErrorIs(t, err, broken.err)
	assert.False(t, names.IsAvailable())
}

func TestCachingResolver(t *testing.T) {
	source := &countingSource{names: map[string]Names{`App\Route`: Available("path")}}
	resolver := NewCachingResolver(source)

	for i := 0; i < 3; i++ {
		names := resolver.ResolveFromClass(`\App\Route`)
		assert.Equal(t, []string{"path"}, names.Slice())
	}
	assert.Equal(t, 1, source.calls[`App\Route`])

	assert.False(t, resolver.ResolveFromClass("Missing").IsAvailable())
	assert.False(t, resolver.ResolveFromClass("Missing").IsAvailable())
	assert.Equal(t, 1, source.calls["Missing"], "unknown classes are cached too")

	stats := resolver.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(3), stats.Hits)
}

func TestCachingResolver_SourceErrorIsUnavailable(t *testing.T) {
	resolver := NewCachingResolver(&countingSource{err: errors.New("inspection failed")})
	assert.False(t, resolver.ResolveFromClass("A").IsAvailable())
}

func TestCachingResolver_NilSource(t *testing.T) {
	resolver := NewCachingResolver(nil)
	assert.False(t, resolver.ResolveFromClass("A").IsAvailable())
}

func TestCachingResolver_ConcurrentReadsAfterWarm(t *testing.T) {
	source := &countingSource{names: map[string]Names{"A": Available("a"), "B": Available("b")}}
	resolver := NewCachingResolver(source)
	resolver.Warm("A", "B")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, resolver.ResolveFromClass("A").IsAvailable())
			assert.True(t, resolver.ResolveFromClass("B").IsAvailable())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, source.calls["A"])
	assert.Equal(t, 1, source.calls["B"])
}

const attributesSource = `package attrs

type Route struct {
	Path    string
	Name    string ` + "`attr:\"routeName\"`" + `
	Methods []string
	Hidden  bool ` + "`attr:\"-\"`" + `
	internal int
}

type Column struct {
	Type string
}

func NewColumn(name string, nullable bool, _ int) *Column {
	return &Column{}
}

type Marker struct{}

type Limit int

func NewLimit(max int) Limit {
	return Limit(max)
}
`

func checkPackage(t *testing.T, path, src string) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "attrs.go", src, parser.ParseComments)
	require.NoError(t, err)

	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check(path, fset, []*ast.File{file}, nil)
	require.NoError(t, err)
	return pkg
}

func TestPackageSource(t *testing.T) {
	pkg := checkPackage(t, "example.com/app/attrs", attributesSource)
	source := NewPackageSource(pkg)

	tests := []struct {
		class string
		want  []string
	}{
		{"example.com/app/attrs.Route", []string{"path", "routeName", "methods"}},
		{"example.com/app/attrs.Column", []string{"name", "nullable"}},
		{"example.com/app/attrs.Marker", nil},
		{"example.com/app/attrs.Limit", []string{"max"}},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			names, err := source.ParameterNames(tt.class)
			require.NoError(t, err)
			require.True(t, names.IsAvailable())
			assert.Equal(t, tt.want, names.Slice())
		})
	}

	names, err := source.ParameterNames("example.com/app/attrs.Unknown")
	require.NoError(t, err)
	assert.False(t, names.IsAvailable())
	assert.Equal(t, 4, source.Classes())
}

func TestPackageErrors(t *testing.T) {
	assert.NoError(t, packageErrors([]*packages.Package{{PkgPath: "example.com/app/attrs"}}))

	dep := &packages.Package{
		PkgPath: "example.com/app/internal",
		Errors:  []packages.Error{{Pos: "internal.go:3:1", Msg: "undefined: Foo", Kind: packages.TypeError}},
	}
	root := &packages.Package{
		PkgPath: "example.com/app/attrs",
		Errors:  []packages.Error{{Msg: "no Go files", Kind: packages.ListError}},
		Imports: map[string]*packages.Package{dep.PkgPath: dep},
	}

	err := packageErrors([]*packages.Package{root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined: Foo")
	assert.Contains(t, err.Error(), "no Go files")

	var pkgErr packages.Error
	require.True(t, errors.As(err, &pkgErr), "individual errors stay reachable")
	assert.Equal(t, packages.TypeError, pkgErr.Kind, "imports are visited before the package itself")
}

func TestLowerFirst(t *testing.T) {
	tests := map[string]string{
		"Path":    "path",
		"URLPath": "urlPath",
		"ID":      "id",
		"path":    "path",
		"X":       "x",
		"":        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, lowerFirst(in), in)
	}
}
