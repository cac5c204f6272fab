// Package stale holds a type edited after its mappings were generated.
package stale

// Point had fields X and Y when stale_funcmap.go was generated.
type Point[T any] struct {
	X, Z T
}
