package metadata

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"strings"
	"unicode"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages
const LoadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedImports

// ParamTag is the struct tag that renames or hides a field parameter
const ParamTag = "attr"

// PackageSource serves parameter names of Go types. A class identifier is
// "import/path.TypeName". The parameters are those of a package-level
// NewTypeName constructor when one exists, otherwise the exported fields of
// the struct in declaration order.
type PackageSource struct {
	classes map[string]Names
}

// LoadPackages type-checks the packages matching patterns under dir and
// indexes every exported named type. All loading happens here; lookups are
// served from memory.
func LoadPackages(ctx context.Context, dir string, patterns ...string) (*PackageSource, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	if err := packageErrors(pkgs); err != nil {
		return nil, err
	}

	source := &PackageSource{classes: make(map[string]Names)}
	for _, pkg := range pkgs {
		if pkg.Types != nil {
			source.AddPackage(pkg.Types)
		}
	}
	return source, nil
}

// packageErrors joins the load and type errors of pkgs and their imports
func packageErrors(pkgs []*packages.Package) error {
	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("package errors: %w", errors.Join(errs...))
}

// NewPackageSource indexes already type-checked packages
func NewPackageSource(pkgs ...*types.Package) *PackageSource {
	source := &PackageSource{classes: make(map[string]Names)}
	for _, pkg := range pkgs {
		source.AddPackage(pkg)
	}
	return source
}

// AddPackage indexes the exported named types of pkg
func (s *PackageSource) AddPackage(pkg *types.Package) {
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		classID := pkg.Path() + "." + name
		if ctor, ok := constructorFor(scope, typeName); ok {
			s.classes[classID] = Available(signatureParams(ctor)...)
			continue
		}
		if st, ok := typeName.Type().Underlying().(*types.Struct); ok {
			s.classes[classID] = Available(structParams(st)...)
		}
	}
}

// ParameterNames implements Source
func (s *PackageSource) ParameterNames(classID string) (Names, error) {
	if names, ok := s.classes[NormalizeClassID(classID)]; ok {
		return names, nil
	}
	return Unavailable, nil
}

// Classes returns the number of indexed types
func (s *PackageSource) Classes() int {
	return len(s.classes)
}

// constructorFor finds NewT returning T or *T as its first result
func constructorFor(scope *types.Scope, typeName *types.TypeName) (*types.Signature, bool) {
	fn, ok := scope.Lookup("New" + typeName.Name()).(*types.Func)
	if !ok {
		return nil, false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Results().Len() == 0 {
		return nil, false
	}

	result := sig.Results().At(0).Type()
	if ptr, ok := result.(*types.Pointer); ok {
		result = ptr.Elem()
	}
	named, ok := result.(*types.Named)
	if !ok || named.Obj() != typeName {
		return nil, false
	}
	return sig, true
}

// signatureParams returns parameter names up to the first unnamed one
func signatureParams(sig *types.Signature) []string {
	params := sig.Params()
	names := make([]string, 0, params.Len())
	for i := 0; i < params.Len(); i++ {
		name := params.At(i).Name()
		if name == "" || name == "_" {
			break
		}
		names = append(names, name)
	}
	return names
}

// structParams returns exported field names in declaration order. The attr
// tag overrides the name; attr:"-" skips the field.
func structParams(st *types.Struct) []string {
	names := make([]string, 0, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() || field.Embedded() {
			continue
		}

		tag := reflect.StructTag(st.Tag(i)).Get(ParamTag)
		if tag == "-" {
			continue
		}
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			names = append(names, name)
			continue
		}
		names = append(names, lowerFirst(field.Name()))
	}
	return names
}

// lowerFirst lowercases a leading run of capitals: Path -> path,
// URLPath -> urlPath, ID -> id
func lowerFirst(name string) string {
	runes := []rune(name)
	for i := 0; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
