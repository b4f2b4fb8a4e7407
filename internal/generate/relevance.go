package generate

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// FilterRelevant reduces the full path list to the subset worth showing the
// model for this change. It is an optimization only: when no value in the
// model's reply parses as a list of paths, the full list is returned so the
// modification prompt never loses context.
func (o *Orchestrator) FilterRelevant(ctx context.Context, brief string, paths []string) []string {
	outcome := o.complete(ctx, RelevancePrompt(brief, paths))

	keys := make([]string, 0, len(outcome.Files))
	for k := range outcome.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if relevant, ok := scanForList(string(outcome.Files[k])); ok {
			return relevant
		}
	}
	slog.WarnContext(ctx, "could not parse relevant files list, falling back to all files", "paths", len(paths))
	return paths
}

// scanForList finds the outermost bracket span in s and parses it as a string
// list. The span search mirrors the brace-span extraction: first '[' to last
// ']', greedy.
func scanForList(s string) ([]string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}
	list, err := ParseStringList(s[start : end+1])
	if err != nil {
		return nil, false
	}
	return list, true
}
