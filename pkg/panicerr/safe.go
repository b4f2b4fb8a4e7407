package panicerr

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
)

// Safe wraps a function that returns an error, catching any panics and returning them as an error.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// SafeContext wraps a function that takes a context and returns an error.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn(ctx)
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// Go runs fn on a new goroutine with panic recovery. The returned error, if
// any, is logged with msg rather than propagated; use this for fire-and-forget
// background work whose outcome is reported out of band.
func Go(ctx context.Context, msg string, fn func(context.Context) error) {
	safe := SafeContext(fn)
	go func() {
		if err := safe(ctx); err != nil {
			slog.ErrorContext(ctx, msg, "error", err)
		}
	}()
}
