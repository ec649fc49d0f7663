package mirror

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// Option configures the save pipeline of a Monitor.
// Pipeline options wrap encoding and writing with middleware for retry,
// timeout, circuit breaking, and other reliability patterns.
//
// Instance configuration (interval, codec, clock, hooks) is handled via
// chainable methods on the Monitor before calling Start().
type Option[T any] func(pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]]

// Connector identities for the pipeline options.
var (
	retryID          = pipz.NewIdentity("retry", "Retries a failed save")
	backoffID        = pipz.NewIdentity("backoff", "Retries a failed save with exponential backoff")
	timeoutID        = pipz.NewIdentity("timeout", "Bounds the duration of a save")
	circuitBreakerID = pipz.NewIdentity("circuit-breaker", "Stops saving after repeated failures")
	errorHandlerID   = pipz.NewIdentity("error-handler", "Passes save errors to a handler")
	middlewareID     = pipz.NewIdentity("middleware", "Runs middleware before the save")
)

// buildPipeline wraps a terminal with pipeline options.
func buildPipeline[T any](terminal pipz.Chainable[*Request[T]], opts []Option[T]) pipz.Chainable[*Request[T]] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// WithRetry retries a failed save immediately, up to maxAttempts times.
// Each attempt re-encodes and rewrites the whole value.
func WithRetry[T any](maxAttempts int) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewRetry(retryID, p, maxAttempts)
	}
}

// WithBackoff retries a failed save with exponentially increasing delays:
// baseDelay, 2*baseDelay, 4*baseDelay, etc.
func WithBackoff[T any](maxAttempts int, baseDelay time.Duration) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewBackoff(backoffID, p, maxAttempts, baseDelay)
	}
}

// WithTimeout bounds each save. A save that has not finished within d
// fails with a timeout error, and a write still in progress backs out
// before replacing the file. The save returns only once that write has
// stopped, so a later save is never overwritten by a late one.
func WithTimeout[T any](d time.Duration) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewTimeout(timeoutID, p, d)
	}
}

// WithCircuitBreaker stops attempting saves after 'failures' consecutive
// failures until 'recovery' has passed. Rejected saves are reported like
// any other save failure.
func WithCircuitBreaker[T any](failures int, recovery time.Duration) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewCircuitBreaker(circuitBreakerID, p, failures, recovery)
	}
}

// WithErrorHandler passes save errors to handler for logging or alerting.
// The error still propagates to the Monitor.
func WithErrorHandler[T any](handler pipz.Chainable[*pipz.Error[*Request[T]]]) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewHandle(errorHandlerID, p, handler)
	}
}

// WithMiddleware runs processors, in order, before the value is encoded.
//
// Example:
//
//	mirror.New[Settings](path, defaults,
//	    mirror.WithMiddleware(
//	        mirror.UseTransform[Settings]("stamp", func(_ context.Context, r *mirror.Request[Settings]) *mirror.Request[Settings] {
//	            r.Value.SavedBy = hostname
//	            return r
//	        }),
//	    ),
//	    mirror.WithRetry[Settings](3),
//	)
func WithMiddleware[T any](processors ...pipz.Chainable[*Request[T]]) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		all := make([]pipz.Chainable[*Request[T]], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence(middlewareID, all...)
	}
}

// UseTransform creates a processor that transforms the request.
// Cannot fail.
func UseTransform[T any](name string, fn func(context.Context, *Request[T]) *Request[T]) pipz.Chainable[*Request[T]] {
	return pipz.Transform(pipz.NewIdentity(name, "Transforms the save request"), fn)
}

// UseApply creates a processor that can transform the request and fail.
// A failure aborts the save before anything is written.
func UseApply[T any](name string, fn func(context.Context, *Request[T]) (*Request[T], error)) pipz.Chainable[*Request[T]] {
	return pipz.Apply(pipz.NewIdentity(name, "Transforms the save request and may fail"), fn)
}

// UseEffect creates a processor that performs a side effect.
// The request passes through unchanged.
func UseEffect[T any](name string, fn func(context.Context, *Request[T]) error) pipz.Chainable[*Request[T]] {
	return pipz.Effect(pipz.NewIdentity(name, "Observes the save request"), fn)
}
