package typedef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition_Slots(t *testing.T) {
	def := NewStruct("example/shapes", "Pair")
	k := def.AddParam("K", Basic("comparable"))
	v := def.AddParam("V", nil)

	assert.Equal(t, 2, def.NumParams())
	assert.Equal(t, 0, k.Index())
	assert.Equal(t, 1, v.Index())
	assert.Equal(t, "K", k.Name())
	assert.Equal(t, "any", v.Constraint().String())
	assert.True(t, k.BelongsTo(def))

	got, ok := def.Slot("V")
	require.True(t, ok)
	assert.Equal(t, v, got)

	at, ok := def.SlotAt(0)
	require.True(t, ok)
	assert.Equal(t, k, at)

	_, ok = def.SlotAt(2)
	assert.False(t, ok)

	assert.Equal(t, []Slot{k, v}, def.Slots())
	assert.Equal(t, "Pair[K comparable, V any]", def.String())
}

func TestDefinition_DuplicateParamPanics(t *testing.T) {
	def := NewStruct("example/shapes", "Pair")
	def.AddParam("T", nil)

	assert.Panics(t, func() { def.AddParam("T", nil) })
}

func TestSlot_SealedAcrossDefinitions(t *testing.T) {
	a := NewStruct("example/shapes", "A")
	b := NewStruct("example/shapes", "B")

	ta := a.AddParam("T", nil)
	tb := b.AddParam("T", nil)

	// Same name and index, different owners.
	assert.NotEqual(t, ta, tb)
	assert.False(t, tb.BelongsTo(a))

	var zero Slot
	assert.False(t, zero.IsValid())
	assert.Equal(t, "<invalid>", zero.Name())
}

func TestTypeID_String(t *testing.T) {
	assert.Equal(t, "example/shapes.Tree", TypeID{PkgPath: "example/shapes", Name: "Tree"}.String())
	assert.Equal(t, "int", TypeID{Name: "int"}.String())
}

func TestDefKind_String(t *testing.T) {
	assert.Equal(t, "struct", DefStruct.String())
	assert.Equal(t, "enum", DefEnum.String())
	assert.Equal(t, "unknown", DefKind(42).String())
}
