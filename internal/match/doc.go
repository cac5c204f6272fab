// Package match suggests known names for misspelled ones.
//
// Identifiers are compared after normalization (case folding, separator
// stripping) by normalized Levenshtein similarity:
//   - NormalizeIdent: folds an identifier for comparison
//   - Levenshtein: computes edit distance between strings
//   - Rank: scores every known name against a misspelled one
//   - DidYouMean: formats the best candidates as a message suffix
package match
