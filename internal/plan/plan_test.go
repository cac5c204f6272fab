package plan

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcmap-generator/internal/classify"
	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/typedef"
)

const pkg = "example/shapes"

func TestCompose(t *testing.T) {
	def := typedef.NewStruct(pkg, "Box")
	T := def.AddParam("T", nil)

	reg := containers.NewRegistry()
	require.NoError(t, reg.Register(&containers.Entry{
		ID:        typedef.TypeID{PkgPath: pkg, Name: "Tree"},
		Arity:     1,
		Positions: map[int]containers.Funcs{0: {Map: "MapTree"}},
	}))

	tests := []struct {
		name string
		expr *typedef.TypeExpr
		mode Mode
		want string
	}{
		{"identity", typedef.Basic("int"), ModeMap, "identity"},
		{"apply", typedef.Param(T), ModeMap, "apply"},
		{"lift", typedef.Slice(typedef.Param(T)), ModeMap, "lift(slice, elem: apply)"},
		{
			"tuple",
			typedef.Tuple(
				typedef.TupleField{Name: "X", Type: typedef.Param(T)},
				typedef.TupleField{Name: "Y", Type: typedef.Option(typedef.Param(T))},
			),
			ModeTryMap,
			"lift(tuple, X: apply, Y: lift(option, elem: apply))",
		},
		{"call", typedef.Named(pkg, "Tree", typedef.Param(T)), ModeMap, "call(example/shapes.Tree, arg0: apply)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compose(classify.Classify(tt.expr, T, reg), tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String(), spew.Sdump(p))
		})
	}
}

func TestCompose_Errors(t *testing.T) {
	def := typedef.NewStruct(pkg, "Box")
	T := def.AddParam("T", nil)

	reg := containers.NewRegistry()
	require.NoError(t, reg.Register(&containers.Entry{
		ID:        typedef.TypeID{PkgPath: pkg, Name: "Tree"},
		Arity:     1,
		Positions: map[int]containers.Funcs{0: {Map: "MapTree"}},
	}))

	_, err := Compose(classify.Classify(typedef.Untraversable("chan T", typedef.Param(T)), T, reg), ModeMap)
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeUnsupportedOccurrence))
	assert.Contains(t, err.Error(), "(chan T)")

	_, err = Compose(classify.Classify(typedef.Named(pkg, "Tree", typedef.Param(T)), T, reg), ModeTryMap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no try_map function")
}

func TestPlan_Step(t *testing.T) {
	def := typedef.NewStruct(pkg, "Box")
	T := def.AddParam("T", nil)

	p, err := Compose(classify.Classify(typedef.Map(typedef.Basic("string"), typedef.Param(T)), T, nil), ModeMap)
	require.NoError(t, err)

	_, ok := p.Step(0)
	assert.False(t, ok)

	s, ok := p.Step(1)
	require.True(t, ok)
	assert.Equal(t, "value", s.Name)
	assert.Equal(t, PlanApply, s.Plan.Kind)
}

func newPair() *typedef.Definition {
	def := typedef.NewStruct(pkg, "Pair")
	T := def.AddParam("T", nil)
	U := def.AddParam("U", nil)
	def.AddField(typedef.Field{Name: "Left", Type: typedef.Param(T)})
	def.AddField(typedef.Field{Name: "Right", Type: typedef.Param(U)})
	def.AddField(typedef.Field{Name: "Both", Type: typedef.Slice(typedef.Tuple(
		typedef.TupleField{Name: "L", Type: typedef.Param(T)},
		typedef.TupleField{Name: "R", Type: typedef.Param(U)},
	))})
	def.AddField(typedef.Field{Name: "Count", Type: typedef.Basic("int")})

	return def
}

func TestDerive_Struct(t *testing.T) {
	def := newPair()
	U, _ := def.Slot("U")

	m, err := NewDeriver(nil, nil).Derive(def, U, ModeMap)
	require.NoError(t, err)

	assert.Equal(t, "MapPairU", m.FuncName)
	assert.False(t, m.Fallible())
	require.Len(t, m.Arms, 1)
	assert.Nil(t, m.Arms[0].Variant)

	got := make([]string, 0, len(m.Arms[0].Fields))
	for _, f := range m.Arms[0].Fields {
		got = append(got, f.Field.Name+"="+f.Plan.String())
	}

	assert.Equal(t, []string{
		"Left=identity",
		"Right=apply",
		"Both=lift(slice, elem: lift(tuple, R: apply))",
		"Count=identity",
	}, got)
}

func TestDerive_Enum(t *testing.T) {
	def := typedef.NewEnum(pkg, "Shape")
	T := def.AddParam("T", nil)
	def.AddVariant(typedef.Variant{Name: "Circle", Generic: true, Fields: []typedef.Field{
		{Name: "Center", Type: typedef.Param(T)},
		{Name: "Radius", Type: typedef.Basic("float64")},
	}})
	def.AddVariant(typedef.Variant{Name: "Empty"})
	def.AddVariant(typedef.Variant{Name: "Poly", Generic: true, Pointer: true, Fields: []typedef.Field{
		{Name: "Points", Type: typedef.Slice(typedef.Param(T))},
	}})

	m, err := NewDeriver(nil, nil).Derive(def, T, ModeTryMap)
	require.NoError(t, err)

	assert.Equal(t, "TryMapShape", m.FuncName)
	require.Len(t, m.Arms, 3)
	assert.Equal(t, "Circle", m.Arms[0].Variant.Name)
	assert.Len(t, m.Arms[0].Fields, 2)
	assert.Empty(t, m.Arms[1].Fields)
	assert.True(t, m.Arms[2].Variant.Pointer)
}

func TestDerive_CollectsAllFieldErrors(t *testing.T) {
	def := typedef.NewStruct(pkg, "Wire")
	T := def.AddParam("T", nil)
	def.AddField(typedef.Field{Name: "Ch", Type: typedef.Untraversable("chan T", typedef.Param(T))})
	def.AddField(typedef.Field{Name: "Idx", Type: typedef.Map(typedef.Param(T), typedef.Basic("int"))})
	def.AddField(typedef.Field{Name: "OK", Type: typedef.Param(T)})
	def.AddField(typedef.Field{Name: "_", Type: typedef.Param(T)})

	_, err := NewDeriver(nil, nil).Derive(def, T, ModeMap)
	require.Error(t, err)

	var de *diagnostic.Error
	require.ErrorAs(t, err, &de)
	require.Len(t, de.Diagnostics, 3)
	assert.Equal(t, "Ch", de.Diagnostics[0].FieldPath)
	assert.Equal(t, "Idx", de.Diagnostics[1].FieldPath)
	assert.Equal(t, "_", de.Diagnostics[2].FieldPath)

	for _, d := range de.Diagnostics {
		assert.Equal(t, diagnostic.CodeUnsupportedOccurrence, d.Code)
		assert.Equal(t, "Wire[T any]", d.Type)
	}
}

func TestDerive_BlankAbsentFieldSkipped(t *testing.T) {
	def := typedef.NewStruct(pkg, "Padded")
	T := def.AddParam("T", nil)
	def.AddField(typedef.Field{Name: "_", Type: typedef.Array(8, typedef.Basic("byte"))})
	def.AddField(typedef.Field{Name: "V", Type: typedef.Param(T)})

	m, err := NewDeriver(nil, nil).Derive(def, T, ModeMap)
	require.NoError(t, err)
	require.Len(t, m.Arms[0].Fields, 1)
	assert.Equal(t, "V", m.Arms[0].Fields[0].Field.Name)
}

func TestDerive_ConstraintMentionsSlot(t *testing.T) {
	def := typedef.NewStruct(pkg, "Ordered")
	T := def.AddParam("T", nil)
	def.AddParam("S", typedef.Untraversable("~[]T", typedef.Param(T)))

	_, err := NewDeriver(nil, nil).Derive(def, T, ModeMap)
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeUnsupportedOccurrence))
	assert.Contains(t, err.Error(), "constraint of S mentions T")
}

func TestDerive_GuardRunsFirst(t *testing.T) {
	def := typedef.NewStruct(pkg, "Conn")
	T := def.AddParam("T", nil)
	def.Teardown = "Close"
	def.AddField(typedef.Field{Name: "Ch", Type: typedef.Untraversable("chan T", typedef.Param(T))})

	_, err := NewDeriver(nil, nil).Derive(def, T, ModeMap)
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeStructuralRejection))
	assert.False(t, diagnostic.IsCode(err, diagnostic.CodeUnsupportedOccurrence))
}

func TestDerive_ForeignSlot(t *testing.T) {
	def := newPair()
	other := typedef.NewStruct(pkg, "Other")
	foreign := other.AddParam("T", nil)

	_, err := NewDeriver(nil, nil).Derive(def, foreign, ModeMap)
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeDisallowedParameter))
}

func newTree() *typedef.Definition {
	def := typedef.NewStruct(pkg, "Tree")
	T := def.AddParam("T", nil)
	self := typedef.Named(pkg, "Tree", typedef.Param(T))
	def.AddField(typedef.Field{Name: "Value", Type: typedef.Param(T)})
	def.AddField(typedef.Field{Name: "Children", Type: typedef.Slice(typedef.Pointer(self))})

	return def
}

func TestDeriveAll_Recursive(t *testing.T) {
	tree := newTree()

	d := NewDeriver(nil, nil)
	res := d.DeriveAll([]Request{{Def: tree}})
	require.NoError(t, res.Err())
	require.Len(t, res.Mappings, 2)

	assert.Equal(t, "MapTree", res.Mappings[0].FuncName)
	assert.Equal(t, "TryMapTree", res.Mappings[1].FuncName)

	children := res.Mappings[1].Arms[0].Fields[1].Plan
	assert.Equal(t, "lift(slice, elem: lift(pointer, elem: call(example/shapes.Tree, arg0: apply)))", children.String())

	step, ok := children.Steps[0].Plan.Steps[0].Plan.Step(0)
	require.True(t, ok)
	assert.Equal(t, "TryMapTree", step.Func)
	assert.Equal(t, []typedef.TypeID{tree.ID()}, res.Mappings[1].Callees())

	e, ok := d.Registry().Lookup(tree.ID())
	require.True(t, ok)
	assert.Equal(t, containers.OriginDerived, e.Origin)
}

func TestDeriveAll_SelectsParamsAndModes(t *testing.T) {
	pair := newPair()

	res := NewDeriver(nil, nil).DeriveAll([]Request{{Def: pair, Params: []string{"T", "T"}, Modes: []Mode{ModeMap}}})
	require.NoError(t, res.Err())
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, "MapPairT", res.Mappings[0].FuncName)
}

func TestDeriveAll_UnknownParam(t *testing.T) {
	res := NewDeriver(nil, nil).DeriveAll([]Request{{Def: newPair(), Params: []string{"X"}}, {Def: newTree()}})

	err := res.Err()
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeDisallowedParameter))
	assert.Contains(t, err.Error(), `no type parameter "X"`)
	assert.Len(t, res.Mappings, 2)
}

func TestDeriveAll_UnknownParamSuggestsCase(t *testing.T) {
	res := NewDeriver(nil, nil).DeriveAll([]Request{{Def: newPair(), Params: []string{"t"}}})

	require.Error(t, res.Err())
	assert.Contains(t, res.Err().Error(), `no type parameter "t" (did you mean T?)`)
}

func TestDeriveAll_ReportsOncePerOccurrence(t *testing.T) {
	def := typedef.NewStruct(pkg, "Keyed")
	T := def.AddParam("T", nil)
	def.AddField(typedef.Field{Name: "ByKey", Type: typedef.Map(typedef.Param(T), typedef.Basic("string"))})

	res := NewDeriver(nil, nil).DeriveAll([]Request{{Def: def}})

	var de *diagnostic.Error
	require.ErrorAs(t, res.Err(), &de)
	require.Len(t, de.Diagnostics, 1, spew.Sdump(de.Diagnostics))
	assert.Equal(t, diagnostic.CodeUnsupportedOccurrence, de.Diagnostics[0].Code)
	assert.Equal(t, "ByKey", de.Diagnostics[0].FieldPath)
	assert.Empty(t, res.Mappings)
}

func TestDeriveAll_MissingModeForCallee(t *testing.T) {
	tree := newTree()

	holder := typedef.NewStruct(pkg, "Holder")
	T := holder.AddParam("T", nil)
	holder.AddField(typedef.Field{Name: "Tree", Type: typedef.Named(pkg, "Tree", typedef.Param(T))})

	res := NewDeriver(nil, nil).DeriveAll([]Request{
		{Def: tree, Modes: []Mode{ModeMap}},
		{Def: holder},
	})

	err := res.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Holder[T any].Tree")
	assert.Contains(t, err.Error(), "no try_map function")
	assert.Len(t, res.Mappings, 2)
}

func TestNaming(t *testing.T) {
	pair := newPair()
	tree := newTree()
	T, _ := tree.Slot("T")
	U, _ := pair.Slot("U")

	n := DefaultNaming()

	name, err := n.FuncName(tree, T, ModeMap)
	require.NoError(t, err)
	assert.Equal(t, "MapTree", name)

	name, err = n.FuncName(pair, U, ModeTryMap)
	require.NoError(t, err)
	assert.Equal(t, "TryMapPairU", name)

	custom, err := NewNaming("Fmap{{.Type}}By{{.Param}}", "")
	require.NoError(t, err)

	name, err = custom.FuncName(tree, T, ModeMap)
	require.NoError(t, err)
	assert.Equal(t, "FmapTreeByT", name)

	bad, err := NewNaming("map-{{.Type}}", "")
	require.NoError(t, err)

	_, err = bad.FuncName(tree, T, ModeMap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid identifier")

	_, err = NewNaming("{{", "")
	require.Error(t, err)
}

func TestMode(t *testing.T) {
	m, err := ParseMode("try_map")
	require.NoError(t, err)
	assert.Equal(t, ModeTryMap, m)
	assert.True(t, m.Fallible())
	assert.Equal(t, "map", ModeMap.String())

	_, err = ParseMode("fold")
	require.Error(t, err)
}
