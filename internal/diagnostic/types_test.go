package diagnostic

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Code:      CodeUnsupportedOccurrence,
		Message:   "T occurs in a map key",
		Type:      "Index[T]",
		FieldPath: "ByKey",
		Expr:      "map[T]int",
	}
	assert.Equal(t, "[unsupported_occurrence] Index[T].ByKey: T occurs in a map key (map[T]int)", d.String())

	assert.Equal(t, "plain", Diagnostic{Message: "plain"}.String())
	assert.Equal(t, "Box: msg", Diagnostic{Type: "Box", Message: "msg"}.String())
}

func TestDiagnostics_Err(t *testing.T) {
	var d Diagnostics
	require.NoError(t, d.Err())
	assert.True(t, d.IsValid())

	d.AddWarning("w", "warn", "Box", "")
	require.NoError(t, d.Err())

	d.AddError(CodeStructuralRejection, "has Close", "Conn", "", "")
	d.AddError(CodeUnsupportedOccurrence, "chan", "Conn", "Ch", "chan T")
	d.AddError(CodeUnsupportedOccurrence, "func", "Conn", "Fn", "func(T)")

	err := d.Err()
	require.Error(t, err)
	assert.True(t, d.HasErrors())
	assert.True(t, IsCode(err, CodeStructuralRejection))
	assert.True(t, IsCode(err, CodeUnsupportedOccurrence))
	assert.False(t, IsCode(err, CodeDisallowedParameter))

	var de *Error
	require.ErrorAs(t, fmt.Errorf("derive: %w", err), &de)
	assert.Len(t, de.Diagnostics, 3)
	assert.Equal(t, []string{CodeStructuralRejection, CodeUnsupportedOccurrence}, de.Codes())
	assert.Contains(t, err.Error(), "; ")
}

func TestIsCode_PlainError(t *testing.T) {
	assert.False(t, IsCode(errors.New("boom"), CodeDisallowedParameter))
	assert.False(t, IsCode(nil, CodeDisallowedParameter))
}

func TestDiagnostics_Collect(t *testing.T) {
	var d Diagnostics

	d.Collect(nil, CodeUnsupportedOccurrence, "Box", "V")
	assert.True(t, d.IsValid())

	d.Collect(New(CodeUnsupportedOccurrence, "bad", "", "", "chan T"), CodeDisallowedParameter, "Box", "V")
	d.Collect(errors.New("plain"), CodeDisallowedParameter, "Box", "W")

	require.Len(t, d.Errors, 2)
	assert.Equal(t, "Box", d.Errors[0].Type)
	assert.Equal(t, "V", d.Errors[0].FieldPath)
	assert.Equal(t, CodeUnsupportedOccurrence, d.Errors[0].Code)
	assert.Equal(t, CodeDisallowedParameter, d.Errors[1].Code)
	assert.Equal(t, "W", d.Errors[1].FieldPath)
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics
	a.AddInfo("i", "info", "", "")
	b.AddError(CodeDisallowedParameter, "x", "", "", "")
	b.AddWarning("w", "warn", "", "")

	a.Merge(b)
	assert.Len(t, a.Errors, 1)
	assert.Len(t, a.Warnings, 1)
	assert.Len(t, a.Infos, 1)
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(7).String())
}

func TestDiagnostics_Deduplicates(t *testing.T) {
	var d Diagnostics

	d.AddError(CodeUnsupportedOccurrence, "ambiguous", "Keyed[T]", "ByKey", "map[T]string")
	d.AddError(CodeUnsupportedOccurrence, "ambiguous", "Keyed[T]", "ByKey", "map[T]string")
	d.AddError(CodeUnsupportedOccurrence, "ambiguous", "Keyed[T]", "Other", "map[T]string")
	d.AddWarning("w", "warn", "Box", "")
	d.AddWarning("w", "warn", "Box", "")

	require.Len(t, d.Errors, 2)
	assert.Equal(t, "Other", d.Errors[1].FieldPath)
	assert.Len(t, d.Warnings, 1)

	var other Diagnostics
	other.AddError(CodeUnsupportedOccurrence, "ambiguous", "Keyed[T]", "ByKey", "map[T]string")
	other.AddError(CodeDisallowedParameter, "no such parameter", "Keyed[T]", "", "")

	d.Merge(other)
	require.Len(t, d.Errors, 3)
	assert.Equal(t, CodeDisallowedParameter, d.Errors[2].Code)

	d.Collect(New(CodeUnsupportedOccurrence, "ambiguous", "", "", "map[T]string"), CodeDisallowedParameter, "Keyed[T]", "ByKey")
	assert.Len(t, d.Errors, 3)
}
