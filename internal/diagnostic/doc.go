// Package diagnostic provides categorized errors and warnings for the
// funcmap generator.
//
// Every rejection carries one of three codes:
//   - structural_rejection: the type must not be decomposed at all
//   - unsupported_occurrence: a field holds the mapped parameter where no
//     mapping can reach it
//   - disallowed_parameter: the requested parameter is not a parameter of
//     the type
package diagnostic
