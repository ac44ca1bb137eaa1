package weather

import (
	"context"
	"errors"

	"github.com/lolweather/lolweather/internal/owm"
)

// Result carries either a value or the error that prevented it.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool { return r.Err == nil }

func ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func fail[T any](err error) Result[T] { return Result[T]{Err: err} }

// Kind names the failure category of err for logs, metrics and HTTP mapping.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, owm.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, owm.ErrNotFound):
		return "not_found"
	case errors.Is(err, owm.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, owm.ErrMalformed):
		return "malformed"
	case errors.Is(err, owm.ErrNetwork):
		return "network"
	default:
		return "error"
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request id that is recorded with fetch audits.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
