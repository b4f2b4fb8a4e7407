package generate

import (
	"context"
	"log/slog"
	"sort"

	"sitewright/internal/llm"
)

// Orchestrator decides, per round, whether to synthesize a whole project or to
// filter-then-modify an existing one, and runs the prompt/extract cycle.
type Orchestrator struct {
	provider llm.Provider
}

func NewOrchestrator(provider llm.Provider) *Orchestrator {
	return &Orchestrator{provider: provider}
}

// Request carries the task fields the generation step needs. ExistingFiles is
// nil on creation rounds and holds the remote snapshot on modification rounds.
type Request struct {
	Name            string
	Brief           string
	Checks          []string
	AttachmentNames []string
	ExistingFiles   map[string]string
}

// Generate produces the round's file set. Model-facing failures never surface
// as errors — they degrade to error artifacts inside the returned outcome.
func (o *Orchestrator) Generate(ctx context.Context, req Request) Outcome {
	if len(req.ExistingFiles) == 0 {
		slog.InfoContext(ctx, "generating new app", "task", req.Name)
		return o.complete(ctx, SynthesisPrompt(req.Name, req.Brief, req.Checks, req.AttachmentNames))
	}

	paths := make([]string, 0, len(req.ExistingFiles))
	for p := range req.ExistingFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	relevant := o.FilterRelevant(ctx, req.Brief, paths)
	slog.InfoContext(ctx, "identified relevant files", "task", req.Name, "relevant", len(relevant), "total", len(paths))

	// The filter's output is advisory; paths it invents are dropped rather
	// than trusted.
	contextFiles := make(map[string]string, len(relevant))
	for _, p := range relevant {
		if content, ok := req.ExistingFiles[p]; ok {
			contextFiles[p] = content
		}
	}

	return o.complete(ctx, ModificationPrompt(req.Name, req.Brief, req.Checks, req.AttachmentNames, contextFiles))
}

// complete runs one provider call and extracts the response. A failed call
// degrades to an error artifact; no retry is attempted.
func (o *Orchestrator) complete(ctx context.Context, prompt string) Outcome {
	raw, err := o.provider.Complete(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "provider call failed", "provider", o.provider.Name(), "error", err)
		return ProviderErrorOutcome(err)
	}
	slog.DebugContext(ctx, "model response", "provider", o.provider.Name(), "response", raw)
	return Extract(raw)
}
