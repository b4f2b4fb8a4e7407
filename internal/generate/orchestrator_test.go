package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewright/internal/llm"
)

func TestOrchestrator_GenerateNewApp(t *testing.T) {
	var prompts []string
	provider := llm.Func(func(_ context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return `{"index.html": "<html></html>", "README.md": "# demo-app"}`, nil
	})
	o := NewOrchestrator(provider)

	outcome := o.Generate(context.Background(), Request{
		Name:   "demo-app",
		Brief:  "a landing page",
		Checks: []string{"has a title"},
	})

	require.Equal(t, OutcomeParsed, outcome.Kind)
	assert.Len(t, outcome.Files, 2)
	// A creation round makes exactly one model call.
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "demo-app")
	assert.Contains(t, prompts[0], "a landing page")
	assert.Contains(t, prompts[0], "has a title")
	assert.Contains(t, prompts[0], "README.md")
}

func TestOrchestrator_GenerateModification(t *testing.T) {
	existing := map[string]string{
		"index.html": "<html><link rel=stylesheet href=style.css></html>",
		"style.css":  "body { color: black; }",
		"src/app.js": "console.log('hi')",
	}

	var prompts []string
	provider := llm.Func(func(_ context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if len(prompts) == 1 {
			// Relevance call: point at the stylesheet only.
			return `["style.css"]`, nil
		}
		return `{"style.css": "body { color: red; }"}`, nil
	})
	o := NewOrchestrator(provider)

	outcome := o.Generate(context.Background(), Request{
		Name:          "demo-app",
		Brief:         "make the text red",
		ExistingFiles: existing,
	})

	require.Equal(t, OutcomeParsed, outcome.Kind)
	assert.Equal(t, FileSet{"style.css": []byte("body { color: red; }")}, outcome.Files)

	require.Len(t, prompts, 2)
	// The modification prompt carries only the relevant file's content.
	assert.Contains(t, prompts[1], "body { color: black; }")
	assert.NotContains(t, prompts[1], "console.log('hi')")
}

func TestOrchestrator_ProviderErrorDegrades(t *testing.T) {
	provider := llm.Func(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("connection reset")
	})
	o := NewOrchestrator(provider)

	outcome := o.Generate(context.Background(), Request{Name: "demo-app", Brief: "anything"})

	require.Equal(t, OutcomeProviderError, outcome.Kind)
	assert.Contains(t, string(outcome.Files["error.html"]), "connection reset")
}

func TestFilterRelevant(t *testing.T) {
	paths := []string{"index.html", "src/app.js", "style.css"}

	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{
			name:     "clean list",
			response: `["style.css", "index.html"]`,
			want:     []string{"style.css", "index.html"},
		},
		{
			name:     "list buried in prose",
			response: "The files to edit are: ['style.css'], good luck!",
			want:     []string{"style.css"},
		},
		{
			name:     "no list falls back to all paths",
			response: "I think you should edit the stylesheet.",
			want:     paths,
		},
		{
			name:     "malformed list falls back to all paths",
			response: "[style.css, index.html]",
			want:     paths,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrchestrator(llm.Func(func(_ context.Context, prompt string) (string, error) {
				assert.True(t, strings.Contains(prompt, "index.html"))
				return tt.response, nil
			}))
			got := o.FilterRelevant(context.Background(), "change the colors", paths)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterRelevant_ProviderErrorFallsBack(t *testing.T) {
	paths := []string{"a.txt", "b.txt"}
	o := NewOrchestrator(llm.Func(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("boom")
	}))
	got := o.FilterRelevant(context.Background(), "brief", paths)
	assert.Equal(t, paths, got)
}

func TestGenerate_DropsInventedRelevantPaths(t *testing.T) {
	existing := map[string]string{"index.html": "<html></html>"}

	var prompts []string
	o := NewOrchestrator(llm.Func(func(_ context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if len(prompts) == 1 {
			return `["index.html", "does/not/exist.js"]`, nil
		}
		return `{"index.html": "<html>v2</html>"}`, nil
	}))

	outcome := o.Generate(context.Background(), Request{
		Name:          "demo-app",
		Brief:         "tweak",
		ExistingFiles: existing,
	})

	require.Equal(t, OutcomeParsed, outcome.Kind)
	require.Len(t, prompts, 2)
	assert.NotContains(t, prompts[1], "does/not/exist.js")
}
