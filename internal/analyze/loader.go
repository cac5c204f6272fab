package analyze

import (
	"bytes"
	"fmt"
	"go/types"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"

	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/gen"
	"funcmap-generator/internal/typedef"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// teardownMethod is the method whose presence makes dismantling a value
// observable.
const teardownMethod = "Close"

// Loader loads Go packages and extracts definitions from them.
type Loader struct {
	// Dir is the directory the load patterns are resolved in. Empty means the
	// current directory.
	Dir string
	// Runtime is the import path of the runtime package providing Option and
	// Result. Empty selects containers.RuntimePkgPath.
	Runtime string

	msets typeutil.MethodSetCache
	locks *typeutil.Map // types.Type -> string, lock type held by value
}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	locks := new(typeutil.Map)
	locks.SetHasher(typeutil.MakeHasher())

	return &Loader{locks: locks}
}

// Load loads the packages matching patterns, e.g. "./examples/shapes" or
// "funcmap-generator/examples/shapes".
//
// A package whose previously generated file no longer type-checks, because
// a type changed since the last run, is loaded again without that file.
func (l *Loader) Load(patterns ...string) (*Program, error) {
	pkgs, err := l.load(nil, patterns)
	if err != nil {
		return nil, err
	}

	var excluded []string

	if packageErrors(pkgs) != nil {
		overlay := generatedOverlay(pkgs)
		if len(overlay) > 0 {
			for file := range overlay {
				excluded = append(excluded, file)
			}

			slices.Sort(excluded)

			if pkgs, err = l.load(overlay, patterns); err != nil {
				return nil, err
			}
		}
	}

	if err := packageErrors(pkgs); err != nil {
		return nil, err
	}

	prog := &Program{
		Registry:     containers.NewRegistry(),
		PackageNames: make(map[string]string),
		Excluded:     excluded,
	}

	found := newDiscovery(l.runtime())

	for _, pkg := range pkgs {
		p := &Package{
			Path:   pkg.PkgPath,
			Name:   pkg.Name,
			types:  pkg.Types,
			loader: l,
			defs:   make(map[string]defResult),
		}

		if len(pkg.GoFiles) > 0 {
			p.Dir = filepath.Dir(pkg.GoFiles[0])
		}

		prog.Packages = append(prog.Packages, p)
		prog.PackageNames[pkg.PkgPath] = pkg.Name
		found.scan(pkg.Types)

		for _, imp := range pkg.Types.Imports() {
			prog.PackageNames[imp.Path()] = imp.Name()
			found.scan(imp)
		}
	}

	for _, e := range found.entries() {
		if err := prog.Registry.Register(e); err != nil {
			return nil, fmt.Errorf("registering %s: %w", e.ID, err)
		}
	}

	return prog, nil
}

func (l *Loader) runtime() string {
	if l.Runtime != "" {
		return l.Runtime
	}

	return containers.RuntimePkgPath
}

func (l *Loader) load(overlay map[string][]byte, patterns []string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode:    LoadMode,
		Dir:     l.Dir,
		Overlay: overlay,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	return pkgs, nil
}

func packageErrors(pkgs []*packages.Package) error {
	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("package errors: %v", errs)
	}

	return nil
}

// generatedOverlay replaces every file of pkgs written by the generator with
// a bare package clause.
func generatedOverlay(pkgs []*packages.Package) map[string][]byte {
	overlay := make(map[string][]byte)

	for _, pkg := range pkgs {
		for _, file := range pkg.GoFiles {
			src, err := os.ReadFile(file)
			if err != nil || !bytes.HasPrefix(src, []byte(gen.Header+"\n")) {
				continue
			}

			overlay[file] = []byte("package " + pkg.Name + "\n")
		}
	}

	return overlay
}

// define builds the definition of a declared type.
func (l *Loader) define(pkg *types.Package, tn *types.TypeName) (*typedef.Definition, error) {
	name := tn.Name()

	if tn.IsAlias() {
		return nil, structural(name, "", "%s is an alias; declare the mapping on the aliased type", name)
	}

	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, structural(name, "", "%s is not a named type", name)
	}

	if named.TypeParams().Len() == 0 {
		return nil, diagnostic.New(diagnostic.CodeDisallowedParameter,
			"expected at least one type parameter, found none", name, "", "")
	}

	c := newConverter(pkg, l.runtime())

	switch u := named.Underlying().(type) {
	case *types.Struct:
		def := typedef.NewStruct(pkg.Path(), name)
		c.declare(def, named.TypeParams())
		def.Fields = l.fields(c, u)
		def.Teardown = l.teardown(named)

		return def, nil
	case *types.Interface:
		marker, err := sealedMarker(name, u)
		if err != nil {
			return nil, err
		}

		def := typedef.NewEnum(pkg.Path(), name)
		c.declare(def, named.TypeParams())

		if err := l.addVariants(c, def, pkg, named, marker); err != nil {
			return nil, err
		}

		return def, nil
	default:
		return nil, structural(name, "", "%s is neither a struct nor a sealed interface", name)
	}
}

func (l *Loader) fields(c *converter, st *types.Struct) []typedef.Field {
	fields := make([]typedef.Field, 0, st.NumFields())

	for i := range st.NumFields() {
		v := st.Field(i)

		fields = append(fields, typedef.Field{
			Name:     v.Name(),
			Type:     c.convert(v.Type()),
			Embedded: v.Embedded(),
			NoCopy:   l.lockPath(v.Type()),
		})
	}

	return fields
}

// sealedMarker returns the marker method of a sealed interface: its only
// method, unexported, without parameters or results.
func sealedMarker(name string, iface *types.Interface) (*types.Func, error) {
	if !iface.IsMethodSet() || iface.NumEmbeddeds() != 0 || iface.NumExplicitMethods() != 1 {
		return nil, structural(name, "", "interface %s is not sealed: expected exactly one unexported marker method", name)
	}

	m := iface.ExplicitMethod(0)

	sig, ok := m.Type().(*types.Signature)
	if !ok || m.Exported() || sig.Params().Len() != 0 || sig.Results().Len() != 0 {
		return nil, structural(name, "", "interface %s is not sealed: %s is not an unexported marker method", name, m.Name())
	}

	return m, nil
}

type variantType struct {
	named   *types.Named
	pointer bool
}

// addVariants appends the types of pkg that declare the marker method, in
// source order.
func (l *Loader) addVariants(c *converter, def *typedef.Definition, pkg *types.Package, enum *types.Named, marker *types.Func) error {
	var found []variantType

	scope := pkg.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() || tn == enum.Obj() {
			continue
		}

		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}

		if _, ok := named.Underlying().(*types.Interface); ok {
			continue
		}

		for i := range named.NumMethods() {
			m := named.Method(i)
			if m.Name() != marker.Name() {
				continue
			}

			_, ptr := m.Type().(*types.Signature).Recv().Type().(*types.Pointer)
			found = append(found, variantType{named: named, pointer: ptr})

			break
		}
	}

	slices.SortFunc(found, func(a, b variantType) int {
		return int(a.named.Obj().Pos() - b.named.Obj().Pos())
	})

	for _, vt := range found {
		v, err := l.variant(c, def, vt)
		if err != nil {
			return err
		}

		def.AddVariant(v)
	}

	return nil
}

func (l *Loader) variant(c *converter, def *typedef.Definition, vt variantType) (typedef.Variant, error) {
	name := vt.named.Obj().Name()
	tparams := vt.named.TypeParams()

	v := typedef.Variant{
		Name:     name,
		Pointer:  vt.pointer,
		Generic:  tparams.Len() > 0,
		Teardown: l.teardown(vt.named),
	}

	st, isStruct := vt.named.Underlying().(*types.Struct)

	if !v.Generic {
		if isStruct {
			v.Fields = l.fields(c, st)
		}

		return v, nil
	}

	if tparams.Len() != def.NumParams() {
		return v, structural(def.Name, name, "variant %s has %d type parameters, %s has %d",
			name, tparams.Len(), def.Name, def.NumParams())
	}

	for i, slot := range def.Slots() {
		if got := tparams.At(i).Obj().Name(); got != slot.Name() {
			return v, structural(def.Name, name, "variant %s names type parameter %d %q, %s names it %q",
				name, i, got, def.Name, slot.Name())
		}
	}

	if !isStruct {
		return v, structural(def.Name, name, "variant %s is not a struct", name)
	}

	c.bind(tparams, def.Slots())
	v.Fields = l.fields(c, st)

	return v, nil
}

// teardown returns the teardown method declared on T or *T, if any.
func (l *Loader) teardown(named *types.Named) string {
	for _, sel := range typeutil.IntuitiveMethodSet(named, &l.msets) {
		if sel.Obj().Name() == teardownMethod {
			return teardownMethod
		}
	}

	return ""
}

// lockPath returns the lock type a value of t holds by value, following the
// rule of go vet's copylocks check, or "" when t holds none.
func (l *Loader) lockPath(t types.Type) string {
	if v, ok := l.locks.At(t).(string); ok {
		return v
	}

	// Recursive types hold no lock through the cycle.
	l.locks.Set(t, "")

	p := l.findLock(t)
	l.locks.Set(t, p)

	return p
}

func (l *Loader) findLock(t types.Type) string {
	t = types.Unalias(t)

	switch t.Underlying().(type) {
	case *types.Interface, *types.Pointer:
		return ""
	}

	if l.hasLock(types.NewPointer(t)) && !l.hasLock(t) {
		return types.TypeString(t, func(p *types.Package) string { return p.Name() })
	}

	switch u := t.Underlying().(type) {
	case *types.Struct:
		for i := range u.NumFields() {
			if p := l.lockPath(u.Field(i).Type()); p != "" {
				return p
			}
		}
	case *types.Array:
		return l.lockPath(u.Elem())
	}

	return ""
}

func (l *Loader) hasLock(t types.Type) bool {
	ms := l.msets.MethodSet(t)
	return ms.Lookup(nil, "Lock") != nil && ms.Lookup(nil, "Unlock") != nil
}
