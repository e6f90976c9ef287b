package services

import (
	"context"
	"time"
)

// withFallback runs call under its own timeout and converts any error
// into the fallback value. External providers degrade; they never fail
// the pipeline. The fallback receives the error so callers can log it.
func withFallback[T any](
	ctx context.Context,
	timeout time.Duration,
	call func(context.Context) (T, error),
	fallback func(error) T,
) T {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := call(cctx)
	if err != nil {
		return fallback(err)
	}
	return v
}
