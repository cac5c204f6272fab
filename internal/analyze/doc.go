// Package analyze provides package loading and definition extraction.
//
// It uses golang.org/x/tools/go/packages with go/types to turn generic Go
// declarations into typedef definitions:
//   - generic struct types become struct definitions
//   - sealed generic interfaces (exactly one unexported marker method) become
//     enum definitions whose variants are the types of the same package
//     declaring that marker
//
// The loader also records observable teardown (a Close method) and by-value
// lock fields, and discovers existing mapping functions so that types of
// other packages can be mapped through them.
package analyze
