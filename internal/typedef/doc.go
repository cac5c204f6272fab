// Package typedef describes the declared shape of a generic Go type.
//
// A Definition is the structural input of a derivation: its type parameters
// (slots), and either the fields of a struct or the variants of a sealed
// interface. Field types are TypeExpr trees.
//
// Slots are sealed: they can only be created by the Definition that owns them,
// so a Param expression always names a parameter of a real definition and two
// slots of different definitions never compare equal.
package typedef
