package fn

import "fmt"

// Result is the value a Stage hands to the next one: a T, or the error that
// stopped the pipeline.
type Result[T any] struct {
	val T
	err error
	ok  bool
}

// Ok wraps v.
func Ok[T any](v T) Result[T] { return Result[T]{val: v, ok: true} }

// Err wraps a failure. The zero T is carried along.
func Err[T any](err error) Result[T] { return Result[T]{err: err} }

// Errf is Err with a fmt.Errorf message.
func Errf[T any](format string, args ...any) Result[T] {
	return Err[T](fmt.Errorf(format, args...))
}

// FromPair adapts the usual (v, err) return.
func FromPair[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

func (r Result[T]) IsOk() bool  { return r.ok }
func (r Result[T]) IsErr() bool { return !r.ok }

// Unwrap converts back to (v, err).
func (r Result[T]) Unwrap() (T, error) { return r.val, r.err }

// UnwrapOr discards the error in favour of fallback.
func (r Result[T]) UnwrapOr(fallback T) T {
	if r.ok {
		return r.val
	}
	return fallback
}
