package toolpath

// Optional holds a value that may be absent.
type Optional[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{v: v, ok: true} }
func None[T any]() Optional[T]     { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.v, o.ok }

func (o Optional[T]) Valid() bool { return o.ok }

// Or returns the value, or def when absent.
func (o Optional[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}
