// Package guard rejects definitions whose values must not be taken apart and
// rebuilt, and parameter requests that do not name a parameter of the type.
package guard

import (
	"fmt"

	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/typedef"
)

// Check reports every structural reason def cannot be derived. It runs before
// any field is classified.
func Check(def *typedef.Definition) error {
	var diags diagnostic.Diagnostics

	typ := def.String()

	if def.NumParams() == 0 {
		diags.AddError(diagnostic.CodeDisallowedParameter,
			"expected at least one type parameter, found none", typ, "", "")
	}

	if def.Teardown != "" && !def.AllowTeardown {
		diags.AddError(diagnostic.CodeStructuralRejection,
			teardownMessage(def.Name, def.Teardown), typ, "", "")
	}

	checkFields(&diags, typ, "", def.Fields)

	for _, v := range def.Variants {
		if v.Teardown != "" && !def.AllowTeardown {
			diags.AddError(diagnostic.CodeStructuralRejection,
				teardownMessage(v.Name, v.Teardown), typ, v.Name, "")
		}

		checkFields(&diags, typ, v.Name+".", v.Fields)
	}

	return diags.Err()
}

// CheckSlot verifies that slot is a parameter declared by def.
func CheckSlot(def *typedef.Definition, slot typedef.Slot) error {
	if slot.BelongsTo(def) {
		return nil
	}

	msg := "the mapped parameter must be a type parameter of " + def.Name
	if slot.IsValid() {
		msg = fmt.Sprintf("type parameter %s belongs to %s, not %s", slot.Name(), slot.Owner().Name, def.Name)
	}

	return diagnostic.New(diagnostic.CodeDisallowedParameter, msg, def.String(), "", "")
}

func checkFields(diags *diagnostic.Diagnostics, typ, prefix string, fields []typedef.Field) {
	for _, f := range fields {
		if f.NoCopy == "" {
			continue
		}

		diags.AddError(diagnostic.CodeStructuralRejection,
			fmt.Sprintf("field holds a %s by value; copying it while rebuilding the value is unsound", f.NoCopy),
			typ, prefix+f.Name, f.Type.String())
	}
}

func teardownMessage(name, method string) string {
	return fmt.Sprintf("%s has a %s method; taking it apart would skip its teardown (set allow_teardown to override)",
		name, method)
}
