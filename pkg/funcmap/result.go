package funcmap

// Result holds a value or an error. Mappings only touch the value; an error
// is carried over unchanged.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err returns a failed Result.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Get returns the value and the error.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// IsOk reports whether the Result holds a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Err returns the held error, or nil.
func (r Result[T]) Err() error {
	return r.err
}

// MapResult maps the value of a successful Result.
func MapResult[A, B any](r Result[A], f func(A) B) Result[B] {
	if r.err != nil {
		return Err[B](r.err)
	}

	return Ok(f(r.value))
}

// TryMapResult maps the value of a successful Result with a fallible
// mapping. A mapping failure is returned as the second result, not stored in
// the Result.
func TryMapResult[A, B any](r Result[A], f func(A) (B, error)) (Result[B], error) {
	if r.err != nil {
		return Err[B](r.err), nil
	}

	b, err := f(r.value)
	if err != nil {
		return Result[B]{}, err
	}

	return Ok(b), nil
}
