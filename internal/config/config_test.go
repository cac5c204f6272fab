package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/plan"
	"funcmap-generator/internal/typedef"
)

func TestParse(t *testing.T) {
	yaml := `
version: "1"
package: ./examples/shapes
output: shapes_funcmap.go
runtime: example.com/rt
naming:
  map: "Fmap{{.Type}}{{.Suffix}}"
types:
  - name: Tree
  - name: Pair
    params: V
    modes: [map]
  - name: Handle
    params: [T]
    allow_teardown: true
externs:
  - type: example.com/lib.Stack
    arity: 1
    positions:
      - {index: 0, map: MapStack, try_map: TryMapStack}
`

	f, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	assert.Equal(t, "./examples/shapes", f.Package)
	assert.Equal(t, "shapes_funcmap.go", f.Output)
	assert.Equal(t, "example.com/rt", f.RuntimePath())
	assert.Equal(t, "Fmap{{.Type}}{{.Suffix}}", f.Naming.Map)
	assert.Empty(t, f.Naming.TryMap)

	require.Len(t, f.Types, 3)
	assert.Equal(t, StringOrArray{"map", "try_map"}, f.Types[0].Modes)
	assert.True(t, f.Types[0].Params.IsEmpty())
	assert.Equal(t, StringOrArray{"V"}, f.Types[1].Params)
	assert.Equal(t, StringOrArray{"map"}, f.Types[1].Modes)
	assert.Equal(t, StringOrArray{"T"}, f.Types[2].Params)
	assert.True(t, f.Types[2].AllowTeardown)

	require.Len(t, f.Externs, 1)
	assert.Equal(t, ExternPosition{Index: 0, Map: "MapStack", TryMap: "TryMapStack"}, f.Externs[0].Positions[0])

	assert.False(t, Validate(f).HasErrors())
}

func TestParse_Defaults(t *testing.T) {
	f, err := Parse([]byte("package: ./x\n"))
	require.NoError(t, err)
	assert.Equal(t, SupportedVersion, f.Version)
	assert.Empty(t, f.Types)
	assert.Equal(t, containers.RuntimePkgPath, f.RuntimePath())

	f, err = Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, SupportedVersion, f.Version)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("package: ./x\npackages: [./y]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")

	_, err = Parse([]byte("types:\n  - name: Tree\n    params: {T: 1}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected string or array")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		code string
	}{
		{"version", "version: \"2\"\npackage: ./x\n", CodeUnsupportedVersion},
		{"package", "types: [{name: Tree}]\n", CodeMissingPackage},
		{"naming", "package: ./x\nnaming: {map: \"{{.Type\"}\n", CodeInvalidNaming},
		{"type name", "package: ./x\ntypes: [{params: T}]\n", CodeMissingTypeName},
		{"duplicate", "package: ./x\ntypes: [{name: Tree}, {name: Tree}]\n", CodeDuplicateType},
		{"mode", "package: ./x\ntypes: [{name: Tree, modes: [fmap]}]\n", CodeInvalidMode},
		{"extern type", "package: ./x\nexterns: [{type: Stack, arity: 1, positions: [{index: 0, map: M}]}]\n", CodeInvalidExtern},
		{"extern arity", "package: ./x\nexterns: [{type: a/b.Stack, positions: [{index: 0, map: M}]}]\n", CodeInvalidExtern},
		{"extern index", "package: ./x\nexterns: [{type: a/b.Stack, arity: 1, positions: [{index: 1, map: M}]}]\n", CodeInvalidExtern},
		{"runtime", "package: ./x\nruntime: \"bad path/\"\n", CodeInvalidRuntime},
		{"extern funcs", "package: ./x\nexterns: [{type: a/b.Stack, arity: 1, positions: [{index: 0}]}]\n", CodeInvalidExtern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			diags := Validate(f)
			require.True(t, diags.HasErrors())
			assert.Contains(t, diags.Err().(*diagnostic.Error).Codes(), tt.code)
		})
	}

	assert.True(t, Validate(nil).HasErrors())
}

func TestParseTypeID(t *testing.T) {
	id, err := ParseTypeID("example.com/lib.Stack")
	require.NoError(t, err)
	assert.Equal(t, typedef.TypeID{PkgPath: "example.com/lib", Name: "Stack"}, id)

	id, err = ParseTypeID("gopkg.in/yaml.v3.Node")
	require.NoError(t, err)
	assert.Equal(t, typedef.TypeID{PkgPath: "gopkg.in/yaml.v3", Name: "Node"}, id)

	for _, s := range []string{"Stack", "example.com/lib", ".Stack", "a/b."} {
		_, err := ParseTypeID(s)
		assert.Error(t, err, s)
	}
}

type fakeSource map[string]*typedef.Definition

func (s fakeSource) Definition(name string) (*typedef.Definition, error) {
	if def, ok := s[name]; ok {
		return def, nil
	}

	return nil, errors.New("type " + name + " not found")
}

func TestFile_Requests(t *testing.T) {
	tree := typedef.NewStruct("example/shapes", "Tree")
	tree.AddParam("T", nil)

	handle := typedef.NewStruct("example/shapes", "Handle")
	handle.AddParam("T", nil)

	f, err := Parse([]byte(`
package: ./examples/shapes
types:
  - name: Tree
    modes: try_map
  - name: Handle
    params: T
    allow_teardown: true
`))
	require.NoError(t, err)

	reqs, err := f.Requests(fakeSource{"Tree": tree, "Handle": handle})
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Same(t, tree, reqs[0].Def)
	assert.Equal(t, []plan.Mode{plan.ModeTryMap}, reqs[0].Modes)
	assert.Empty(t, reqs[0].Params)

	assert.Same(t, handle, reqs[1].Def)
	assert.Equal(t, []string{"T"}, reqs[1].Params)
	assert.Equal(t, plan.Modes, reqs[1].Modes)
	assert.True(t, handle.AllowTeardown)
}

func TestFile_RequestsReportsMissingTypes(t *testing.T) {
	f := &File{Package: "./x", Types: []TypeConfig{{Name: "Tree"}, {Name: "Gone"}}}
	applyDefaults(f)

	_, err := f.Requests(fakeSource{})
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, CodeTypeNotFound))
	assert.Contains(t, err.Error(), "type Gone not found")
	assert.Contains(t, err.Error(), "type Tree not found")
}

func TestFile_RegisterExterns(t *testing.T) {
	f := &File{Externs: []Extern{{
		Type:      "example.com/lib.Stack",
		Arity:     2,
		Positions: []ExternPosition{{Index: 1, Map: "MapStackV"}},
	}}}

	reg := containers.NewRegistry()
	require.NoError(t, f.RegisterExterns(reg))

	e, ok := reg.Lookup(typedef.TypeID{PkgPath: "example.com/lib", Name: "Stack"})
	require.True(t, ok)
	assert.Equal(t, containers.OriginExtern, e.Origin)
	assert.Equal(t, 2, e.Arity)
	assert.Equal(t, []int{1}, e.MappablePositions())

	f.Externs[0].Arity = 3
	err := f.RegisterExterns(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registering extern example.com/lib.Stack")
}

func TestFile_NamingTemplates(t *testing.T) {
	f := &File{Naming: Naming{Map: "Fmap{{.Type}}{{.Suffix}}"}}

	naming, err := f.NamingTemplates()
	require.NoError(t, err)

	def := typedef.NewStruct("example/shapes", "Pair")
	def.AddParam("K", nil)
	v := def.AddParam("V", nil)

	name, err := naming.FuncName(def, v, plan.ModeMap)
	require.NoError(t, err)
	assert.Equal(t, "FmapPairV", name)

	name, err = naming.FuncName(def, v, plan.ModeTryMap)
	require.NoError(t, err)
	assert.Equal(t, "TryMapPairV", name)
}

func TestWriteFileLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	f := &File{
		Version: SupportedVersion,
		Package: "./examples/shapes",
		Types: []TypeConfig{
			{Name: "Tree", Modes: StringOrArray{"map", "try_map"}},
			{Name: "Pair", Params: StringOrArray{"V"}, Modes: StringOrArray{"map"}},
		},
	}

	require.NoError(t, WriteFile(f, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
