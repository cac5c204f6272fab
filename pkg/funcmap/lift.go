package funcmap

import "fmt"

// MapSlice maps every element of s in order. A nil slice stays nil.
func MapSlice[A, B any](s []A, f func(A) B) []B {
	if s == nil {
		return nil
	}

	out := make([]B, len(s))
	for i, v := range s {
		out[i] = f(v)
	}

	return out
}

// TryMapSlice maps every element of s in order and stops at the first error.
func TryMapSlice[A, B any](s []A, f func(A) (B, error)) ([]B, error) {
	if s == nil {
		return nil, nil
	}

	out := make([]B, len(s))

	for i, v := range s {
		b, err := f(v)
		if err != nil {
			return nil, err
		}

		out[i] = b
	}

	return out, nil
}

// MapValues maps every value of m and keeps its key. Keys are never mapped.
// A nil map stays nil. Values are visited in unspecified order.
func MapValues[K comparable, A, B any](m map[K]A, f func(A) B) map[K]B {
	if m == nil {
		return nil
	}

	out := make(map[K]B, len(m))
	for k, v := range m {
		out[k] = f(v)
	}

	return out
}

// TryMapValues is MapValues for a fallible mapping. Which failing value is
// reported first is unspecified.
func TryMapValues[K comparable, A, B any](m map[K]A, f func(A) (B, error)) (map[K]B, error) {
	if m == nil {
		return nil, nil
	}

	out := make(map[K]B, len(m))

	for k, v := range m {
		b, err := f(v)
		if err != nil {
			return nil, err
		}

		out[k] = b
	}

	return out, nil
}

// MapSet maps every member of s. Members that map to the same value
// collapse into one. A nil set stays nil.
func MapSet[A, B comparable](s map[A]struct{}, f func(A) B) map[B]struct{} {
	if s == nil {
		return nil
	}

	out := make(map[B]struct{}, len(s))
	for v := range s {
		out[f(v)] = struct{}{}
	}

	return out
}

// TryMapSet is MapSet for a fallible mapping.
func TryMapSet[A, B comparable](s map[A]struct{}, f func(A) (B, error)) (map[B]struct{}, error) {
	if s == nil {
		return nil, nil
	}

	out := make(map[B]struct{}, len(s))

	for v := range s {
		b, err := f(v)
		if err != nil {
			return nil, err
		}

		out[b] = struct{}{}
	}

	return out, nil
}

// MapPointer maps the value p points to into a freshly allocated value. The
// input is never written through. A nil pointer stays nil. Every call
// allocates, so two pointers to one value map to two values.
func MapPointer[A, B any](p *A, f func(A) B) *B {
	if p == nil {
		return nil
	}

	b := f(*p)

	return &b
}

// TryMapPointer is MapPointer for a fallible mapping.
func TryMapPointer[A, B any](p *A, f func(A) (B, error)) (*B, error) {
	if p == nil {
		return nil, nil
	}

	b, err := f(*p)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// Identity returns v.
func Identity[T any](v T) T {
	return v
}

// Compose returns the function applying f and then g.
func Compose[A, B, C any](f func(A) B, g func(B) C) func(A) C {
	return func(a A) C {
		return g(f(a))
	}
}

// TryCompose returns the fallible function applying f and then g.
func TryCompose[A, B, C any](f func(A) (B, error), g func(B) (C, error)) func(A) (C, error) {
	return func(a A) (C, error) {
		b, err := f(a)
		if err != nil {
			return *new(C), err
		}

		return g(b)
	}
}

// UnknownVariantError reports a value of a variant type that did not exist
// when the mapping was generated.
type UnknownVariantError struct {
	Type  string
	Value any
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("funcmap: %T is not a known variant of %s; regenerate the mapping", e.Value, e.Type)
}

// UnknownVariant returns the error generated code panics with when an enum
// value matches no variant.
func UnknownVariant(typ string, v any) error {
	return &UnknownVariantError{Type: typ, Value: v}
}
