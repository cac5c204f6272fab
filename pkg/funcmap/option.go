package funcmap

// Option holds a value or nothing. The zero Option is None.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// IsNone reports whether the Option is empty.
func (o Option[T]) IsNone() bool {
	return !o.ok
}

// OrElse returns the value, or def when empty.
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}

	return def
}

// MapOption maps the held value. None stays None.
func MapOption[A, B any](o Option[A], f func(A) B) Option[B] {
	if !o.ok {
		return None[B]()
	}

	return Some(f(o.value))
}

// TryMapOption maps the held value with a fallible mapping.
func TryMapOption[A, B any](o Option[A], f func(A) (B, error)) (Option[B], error) {
	if !o.ok {
		return None[B](), nil
	}

	b, err := f(o.value)
	if err != nil {
		return None[B](), err
	}

	return Some(b), nil
}
