package fn

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Stage is a function that transforms In to Out within a context.
type Stage[In, Out any] func(context.Context, In) Result[Out]

// Pipeline composes multiple same-typed stages, short-circuiting on error.
func Pipeline[T any](stages ...Stage[T, T]) Stage[T, T] {
	return func(ctx context.Context, t T) Result[T] {
		r := Ok(t)
		for _, s := range stages {
			if r.IsErr() {
				return r
			}
			if err := ctx.Err(); err != nil {
				return Err[T](err)
			}
			v, _ := r.Unwrap()
			r = s(ctx, v)
		}
		return r
	}
}

// MapStage wraps a pure function as a Stage.
func MapStage[In, Out any](f func(In) Out) Stage[In, Out] {
	return func(_ context.Context, in In) Result[Out] {
		return Ok(f(in))
	}
}

// FilterStage keeps the elements matching pred. A nil pred passes the slice through untouched.
func FilterStage[T any](pred func(T) bool) Stage[[]T, []T] {
	return func(_ context.Context, items []T) Result[[]T] {
		if pred == nil {
			return Ok(items)
		}
		return Ok(Filter(items, pred))
	}
}

// TracedStage wraps a slice stage with an OTel span recording input and output sizes.
func TracedStage[T any](name string, stage Stage[[]T, []T]) Stage[[]T, []T] {
	return func(ctx context.Context, in []T) Result[[]T] {
		ctx, span := otel.Tracer("pkg/fn").Start(ctx, name)
		defer span.End()
		span.SetAttributes(attribute.Int("items.in", len(in)))
		result := stage(ctx, in)
		if result.IsErr() {
			_, err := result.Unwrap()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result
		}
		out, _ := result.Unwrap()
		span.SetAttributes(attribute.Int("items.out", len(out)))
		return result
	}
}
