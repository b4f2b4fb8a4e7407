// Package llm abstracts the text-completion providers used for site
// generation. A provider is a single-turn call: one prompt in, free-form text
// out. There is no streaming and no tool contract — structured output is
// requested in the prompt and parsed best-effort downstream.
package llm

import (
	"context"
)

type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to a Provider. Used by tests.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Name() string { return "func" }

func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
