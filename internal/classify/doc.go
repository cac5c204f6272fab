// Package classify decides, for one field type and one active type
// parameter, where the parameter occurs.
//
// The result is an Occurrence tree: Absent when the parameter does not occur,
// Direct when the type is the parameter itself, Nested when it occurs inside
// a traversable shape or a registered generic type, and Ambiguous when it
// occurs somewhere no mapping can reach. Classification is a pure function of
// the expression, the slot and the registry.
package classify
