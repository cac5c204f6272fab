// Package plan turns classified field types into mapping plans and derives
// the complete mapping of a type.
//
// Derivation pipeline:
//  1. Guard the definition (teardown, locks held by value, parameters)
//  2. For every arm (the struct, or each enum variant) and every field:
//     - Classify the field type against the active parameter
//     - Compose the occurrence into a Plan
//  3. Collect every field error into one diagnostic error
package plan
