package typedef

import (
	"fmt"
	"strings"
)

// TypeID uniquely identifies a named type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "funcmap-generator/examples/shapes"
	Name    string // e.g., "Tree"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// DefKind tells whether a definition is a struct or a sealed interface.
type DefKind int

const (
	DefStruct DefKind = iota // generic struct type
	DefEnum                  // sealed generic interface with variant types
)

// String returns a human-readable representation of the DefKind.
func (k DefKind) String() string {
	switch k {
	case DefStruct:
		return "struct"
	case DefEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Definition is a named generic struct or enumeration.
type Definition struct {
	// Name is the declared type name.
	Name string
	// PkgPath is the import path of the declaring package.
	PkgPath string
	// Kind selects between Fields and Variants.
	Kind DefKind
	// Fields of a struct, in declaration order.
	Fields []Field
	// Variants of an enum, in declaration order.
	Variants []Variant
	// Teardown names the method that makes tearing the value apart observable
	// (e.g., "Close"). Empty when the type has none.
	Teardown string
	// AllowTeardown explicitly opts the type out of the teardown rejection.
	AllowTeardown bool

	params []param
}

type param struct {
	name       string
	constraint *TypeExpr
}

// NewStruct creates an empty struct definition.
func NewStruct(pkgPath, name string) *Definition {
	return &Definition{Name: name, PkgPath: pkgPath, Kind: DefStruct}
}

// NewEnum creates an empty enum definition.
func NewEnum(pkgPath, name string) *Definition {
	return &Definition{Name: name, PkgPath: pkgPath, Kind: DefEnum}
}

// ID returns the TypeID of the definition.
func (d *Definition) ID() TypeID {
	return TypeID{PkgPath: d.PkgPath, Name: d.Name}
}

// AddParam declares the next type parameter and returns its slot.
// A nil constraint means "any". It panics on a duplicate name.
func (d *Definition) AddParam(name string, constraint *TypeExpr) Slot {
	for _, p := range d.params {
		if p.name == name {
			panic(fmt.Sprintf("typedef: duplicate type parameter %q in %s", name, d.Name))
		}
	}

	if constraint == nil {
		constraint = Basic("any")
	}

	d.params = append(d.params, param{name: name, constraint: constraint})

	return Slot{owner: d, index: len(d.params) - 1}
}

// NumParams returns the number of type parameters.
func (d *Definition) NumParams() int {
	return len(d.params)
}

// Slots returns all parameter slots in declaration order.
func (d *Definition) Slots() []Slot {
	slots := make([]Slot, len(d.params))
	for i := range d.params {
		slots[i] = Slot{owner: d, index: i}
	}

	return slots
}

// SlotAt returns the slot with the given index.
func (d *Definition) SlotAt(index int) (Slot, bool) {
	if index < 0 || index >= len(d.params) {
		return Slot{}, false
	}

	return Slot{owner: d, index: index}, true
}

// Slot returns the slot with the given parameter name.
func (d *Definition) Slot(name string) (Slot, bool) {
	for i, p := range d.params {
		if p.name == name {
			return Slot{owner: d, index: i}, true
		}
	}

	return Slot{}, false
}

// AddField appends a struct field.
func (d *Definition) AddField(f Field) *Definition {
	d.Fields = append(d.Fields, f)
	return d
}

// AddVariant appends an enum variant.
func (d *Definition) AddVariant(v Variant) *Definition {
	d.Variants = append(d.Variants, v)
	return d
}

// String renders the definition head, e.g. "Pair[T any, U comparable]".
func (d *Definition) String() string {
	if len(d.params) == 0 {
		return d.Name
	}

	parts := make([]string, len(d.params))
	for i, p := range d.params {
		parts[i] = p.name + " " + p.constraint.String()
	}

	return d.Name + "[" + strings.Join(parts, ", ") + "]"
}

// Slot is one generic parameter of a Definition. The zero Slot is invalid.
//
// Slots are comparable; two slots are equal only when they belong to the same
// definition and have the same index.
type Slot struct {
	owner *Definition
	index int
}

// IsValid reports whether the slot was minted by a definition.
func (s Slot) IsValid() bool {
	return s.owner != nil
}

// Index returns the position of the parameter in the definition.
func (s Slot) Index() int {
	return s.index
}

// Name returns the declared parameter name.
func (s Slot) Name() string {
	if s.owner == nil {
		return "<invalid>"
	}

	return s.owner.params[s.index].name
}

// Constraint returns the declared constraint of the parameter.
func (s Slot) Constraint() *TypeExpr {
	if s.owner == nil {
		return Basic("any")
	}

	return s.owner.params[s.index].constraint
}

// BelongsTo reports whether the slot was minted by def.
func (s Slot) BelongsTo(def *Definition) bool {
	return s.owner != nil && s.owner == def
}

// Owner returns the definition that minted the slot.
func (s Slot) Owner() *Definition {
	return s.owner
}

// String returns the parameter name.
func (s Slot) String() string {
	return s.Name()
}

// Field is one field of a struct or variant.
type Field struct {
	Name     string    // Go field name; for embedded fields the type name
	Type     *TypeExpr // declared type
	Embedded bool      // anonymous field
	// NoCopy names the lock type when the field holds one by value.
	NoCopy string
}

// Variant is one variant type of an enum.
type Variant struct {
	// Name is the variant type name.
	Name string
	// Pointer is true when the marker method is declared on the pointer receiver.
	Pointer bool
	// Generic is false for payload variants that take no type parameters;
	// those are passed through unchanged.
	Generic bool
	// Fields of the variant struct, in declaration order.
	Fields []Field
	// Teardown names the observable teardown method of the variant, if any.
	Teardown string
}
