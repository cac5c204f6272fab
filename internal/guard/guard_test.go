package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/typedef"
)

func TestCheck_Accepts(t *testing.T) {
	def := typedef.NewStruct("example/shapes", "Box")
	T := def.AddParam("T", nil)
	def.AddField(typedef.Field{Name: "V", Type: typedef.Param(T)})

	require.NoError(t, Check(def))
	require.NoError(t, CheckSlot(def, T))
}

func TestCheck_NoParams(t *testing.T) {
	def := typedef.NewStruct("example/shapes", "Plain")

	err := Check(def)
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeDisallowedParameter))
	assert.Contains(t, err.Error(), "expected at least one type parameter, found none")
}

func TestCheck_Teardown(t *testing.T) {
	def := typedef.NewStruct("example/shapes", "Conn")
	def.AddParam("T", nil)
	def.Teardown = "Close"

	err := Check(def)
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeStructuralRejection))
	assert.Contains(t, err.Error(), "Close")

	def.AllowTeardown = true
	require.NoError(t, Check(def))
}

func TestCheck_VariantTeardown(t *testing.T) {
	def := typedef.NewEnum("example/shapes", "Handle")
	def.AddParam("T", nil)
	def.AddVariant(typedef.Variant{Name: "File", Generic: true, Teardown: "Close"})

	err := Check(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Handle[T any].File")
}

func TestCheck_LockByValue(t *testing.T) {
	def := typedef.NewStruct("example/shapes", "Guarded")
	T := def.AddParam("T", nil)
	def.AddField(typedef.Field{Name: "mu", Type: typedef.Opaque("sync", "Mutex"), NoCopy: "sync.Mutex"})
	def.AddField(typedef.Field{Name: "V", Type: typedef.Param(T)})

	def.AllowTeardown = true

	err := Check(def)
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeStructuralRejection))
	assert.Contains(t, err.Error(), "Guarded[T any].mu")
}

func TestCheck_CollectsAll(t *testing.T) {
	def := typedef.NewStruct("example/shapes", "Bad")
	def.Teardown = "Close"
	def.AddField(typedef.Field{Name: "mu", Type: typedef.Opaque("sync", "Mutex"), NoCopy: "sync.Mutex"})

	var de *diagnostic.Error
	require.ErrorAs(t, Check(def), &de)
	assert.Len(t, de.Diagnostics, 3)
}

func TestCheckSlot_Foreign(t *testing.T) {
	a := typedef.NewStruct("example/shapes", "A")
	a.AddParam("T", nil)

	b := typedef.NewStruct("example/shapes", "B")
	bt := b.AddParam("T", nil)

	err := CheckSlot(a, bt)
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeDisallowedParameter))
	assert.Contains(t, err.Error(), "belongs to B")

	err = CheckSlot(a, typedef.Slot{})
	require.Error(t, err)
	assert.True(t, diagnostic.IsCode(err, diagnostic.CodeDisallowedParameter))
}
