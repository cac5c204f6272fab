// Package containers is the knowledge base of traversable shapes.
//
// Built-in shapes (pointer, array, tuple, slice, map, set, Option, Result)
// have a fixed Strategy describing how a mapping is lifted over them: which
// runtime helper performs the lift, which positions may be lifted, and what
// ordering the reconstruction guarantees.
//
// Generic named types are resolved through a Registry of entries that name
// the mapping function for each mappable type argument position. Entries come
// from definitions derived in the same run, from functions discovered in
// loaded packages, and from configured externs.
package containers
