// Package broken does not compile and has no generated file to blame.
package broken

type Point[T any] struct {
	X T
}

var origin = Point[int]{Y: 1}
