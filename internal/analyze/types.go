package analyze

import (
	"fmt"
	"go/types"
	"slices"

	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/match"
	"funcmap-generator/internal/typedef"
)

// Program holds the packages loaded by a Loader.
type Program struct {
	// Packages are the packages matched by the load patterns.
	Packages []*Package
	// Registry holds the mapping functions discovered in the loaded packages
	// and their direct imports.
	Registry *containers.Registry
	// PackageNames maps import paths to declared package names.
	PackageNames map[string]string
	// Excluded lists the generated files that no longer compiled and were
	// left out of the load.
	Excluded []string
}

// Package returns the loaded package with the given import path.
func (p *Program) Package(path string) (*Package, bool) {
	for _, pkg := range p.Packages {
		if pkg.Path == path {
			return pkg, true
		}
	}

	return nil, false
}

// Package is one loaded package.
type Package struct {
	Path string // Import path
	Name string // Package name
	Dir  string // Directory of the package sources

	types  *types.Package
	loader *Loader
	defs   map[string]defResult
}

type defResult struct {
	def *typedef.Definition
	err error
}

// TypeNames returns the generic struct and sealed interface types of the
// package in source order.
func (p *Package) TypeNames() []string {
	var objs []*types.TypeName

	scope := p.types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}

		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() == 0 {
			continue
		}

		switch u := named.Underlying().(type) {
		case *types.Struct:
			objs = append(objs, tn)
		case *types.Interface:
			if _, err := sealedMarker(name, u); err == nil {
				objs = append(objs, tn)
			}
		}
	}

	slices.SortFunc(objs, func(a, b *types.TypeName) int {
		return int(a.Pos() - b.Pos())
	})

	names := make([]string, len(objs))
	for i, tn := range objs {
		names[i] = tn.Name()
	}

	return names
}

// Definition returns the definition of the named type. Results are memoized,
// so repeated calls return the same definition and slots.
func (p *Package) Definition(name string) (*typedef.Definition, error) {
	if r, ok := p.defs[name]; ok {
		return r.def, r.err
	}

	var r defResult

	tn, ok := p.types.Scope().Lookup(name).(*types.TypeName)
	if !ok {
		r.err = fmt.Errorf("type %s not found in %s%s", name, p.Path, match.DidYouMean(name, p.TypeNames()))
	} else {
		r.def, r.err = p.loader.define(p.types, tn)
	}

	p.defs[name] = r

	return r.def, r.err
}

func structural(typ, fieldPath, format string, args ...any) error {
	return diagnostic.New(diagnostic.CodeStructuralRejection, fmt.Sprintf(format, args...), typ, fieldPath, "")
}
