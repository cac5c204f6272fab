// Package gen provides deterministic Go code generation for derived
// mappings.
//
// Generation approach uses text/template + go/format, with imports inserted
// through astutil, for readable and gofmt-clean output.
//
// Codegen patterns:
//   - Field moved unchanged
//   - Direct application of f
//   - Slice, map value, set, pointer, Option and Result lifts through the
//     funcmap runtime helpers
//   - Inline rebuilding of arrays and anonymous structs
//   - Calls into the mapping functions of other generic types
//   - Type switch over the variants of a sealed interface
package gen
