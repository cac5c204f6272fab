package containers

import (
	"slices"
	"sort"

	"funcmap-generator/internal/typedef"
)

// RuntimePkgPath is the import path of the runtime package that generated
// code calls into.
const RuntimePkgPath = "funcmap-generator/pkg/funcmap"

// RuntimePkgName is the package name of RuntimePkgPath.
const RuntimePkgName = "funcmap"

// Order describes the iteration order a lift guarantees.
type Order int

const (
	// OrderPreserved - elements are visited and rebuilt in their original order.
	OrderPreserved Order = iota
	// OrderUnspecified - the container defines no order (Go maps).
	OrderUnspecified
)

// String returns a human-readable order name.
func (o Order) String() string {
	switch o {
	case OrderPreserved:
		return "preserved"
	case OrderUnspecified:
		return "unspecified"
	default:
		return "unknown"
	}
}

// Strategy describes how a mapping is lifted over one shape.
type Strategy struct {
	// Shape is the shape the strategy applies to.
	Shape typedef.Shape
	// Map is the runtime helper lifting an infallible mapping. Empty when the
	// shape is rebuilt inline by the generated code (arrays, tuples).
	Map string
	// TryMap is the runtime helper lifting a fallible mapping.
	TryMap string
	// Order is the order in which elements are visited and rebuilt.
	Order Order
	// Fixed lists positions that are never mapped. A mapped parameter found
	// there makes the field unsupported.
	Fixed []int
	// NilPreserving is true when a nil input yields a nil output.
	NilPreserving bool
}

// Inline reports whether the generated code rebuilds the shape itself.
func (s Strategy) Inline() bool {
	return s.Map == ""
}

// Lifts reports whether position pos may carry the mapped parameter.
func (s Strategy) Lifts(pos int) bool {
	return !slices.Contains(s.Fixed, pos)
}

// Helper returns the runtime helper for the given mode.
func (s Strategy) Helper(fallible bool) string {
	if fallible {
		return s.TryMap
	}

	return s.Map
}

// Every runtime helper discards what it already produced when a fallible
// mapping fails, so no partial container is ever observable.
var builtin = map[typedef.Shape]Strategy{
	typedef.ShapePointer: {
		Shape:         typedef.ShapePointer,
		Map:           "MapPointer",
		TryMap:        "TryMapPointer",
		Order:         OrderPreserved,
		NilPreserving: true,
	},
	typedef.ShapeArray: {
		Shape: typedef.ShapeArray,
		Order: OrderPreserved,
	},
	typedef.ShapeTuple: {
		Shape: typedef.ShapeTuple,
		Order: OrderPreserved,
	},
	typedef.ShapeSlice: {
		Shape:         typedef.ShapeSlice,
		Map:           "MapSlice",
		TryMap:        "TryMapSlice",
		Order:         OrderPreserved,
		NilPreserving: true,
	},
	typedef.ShapeMap: {
		Shape:         typedef.ShapeMap,
		Map:           "MapValues",
		TryMap:        "TryMapValues",
		Order:         OrderUnspecified,
		Fixed:         []int{0}, // keys
		NilPreserving: true,
	},
	typedef.ShapeSet: {
		Shape:         typedef.ShapeSet,
		Map:           "MapSet",
		TryMap:        "TryMapSet",
		Order:         OrderUnspecified,
		NilPreserving: true,
	},
	typedef.ShapeOption: {
		Shape:  typedef.ShapeOption,
		Map:    "MapOption",
		TryMap: "TryMapOption",
		Order:  OrderPreserved,
	},
	typedef.ShapeResult: {
		Shape:  typedef.ShapeResult,
		Map:    "MapResult",
		TryMap: "TryMapResult",
		Order:  OrderPreserved,
	},
}

// Lookup returns the strategy for a built-in shape.
func Lookup(shape typedef.Shape) (Strategy, bool) {
	s, ok := builtin[shape]
	return s, ok
}

// Shapes returns every built-in shape in a stable order.
func Shapes() []typedef.Shape {
	out := make([]typedef.Shape, 0, len(builtin))
	for s := range builtin {
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
