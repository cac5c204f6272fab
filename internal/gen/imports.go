package gen

import (
	"go/ast"
	"go/token"
	"path"
	"sort"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"funcmap-generator/internal/common"
)

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// importSet collects the imports of one generated file.
type importSet struct {
	self   string            // package being generated into
	names  map[string]string // known package names by path
	byPath map[string]importSpec
	used   map[string]string // alias -> path
}

func newImportSet(self string, names map[string]string) *importSet {
	return &importSet{
		self:   self,
		names:  names,
		byPath: make(map[string]importSpec),
		used:   make(map[string]string),
	}
}

// add records pkgPath and returns the alias to qualify it with. name is the
// declared package name, if known. It returns "" for the current package.
func (s *importSet) add(pkgPath, name string) string {
	if pkgPath == "" || pkgPath == s.self {
		return ""
	}

	if spec, ok := s.byPath[pkgPath]; ok {
		return spec.Alias
	}

	if name == "" {
		name = s.names[pkgPath]
	}

	if name == "" {
		name = common.PkgAlias(pkgPath)
	}

	alias := name
	for i := 1; ; i++ {
		if _, taken := s.used[alias]; !taken {
			break
		}

		alias = name + strconv.Itoa(i)
	}

	s.used[alias] = pkgPath
	s.byPath[pkgPath] = importSpec{Alias: alias, Path: pkgPath}

	return alias
}

// addAll records imports referenced by literal type text.
func (s *importSet) addAll(imports map[string]string) {
	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	for _, p := range paths {
		s.add(p, imports[p])
	}
}

// specs returns the imports sorted by path.
func (s *importSet) specs() []importSpec {
	out := make([]importSpec, 0, len(s.byPath))
	for _, spec := range s.byPath {
		out = append(out, spec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}

// apply inserts the imports into a parsed file. An alias is written only
// when it differs from the last element of the import path.
func (s *importSet) apply(fset *token.FileSet, f *ast.File) {
	for _, spec := range s.specs() {
		if spec.Alias == path.Base(spec.Path) {
			astutil.AddImport(fset, f, spec.Path)
		} else {
			astutil.AddNamedImport(fset, f, spec.Alias, spec.Path)
		}
	}
}
