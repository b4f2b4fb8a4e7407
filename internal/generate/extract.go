package generate

import (
	"fmt"
	"strings"
)

// FileSet maps relative, forward-slash separated file paths to content. On
// modification rounds it holds only the files that change.
type FileSet map[string][]byte

// OutcomeKind classifies how a model response was turned into a FileSet.
type OutcomeKind int

const (
	// OutcomeParsed means the response contained a well-formed mapping.
	OutcomeParsed OutcomeKind = iota
	// OutcomeFallbackRaw means no brace span was found; the raw text became
	// the single fallback file.
	OutcomeFallbackRaw
	// OutcomeParseError means a brace span was found but did not parse; the
	// failure is published as an error artifact.
	OutcomeParseError
	// OutcomeProviderError means the provider call itself failed.
	OutcomeProviderError
)

// Outcome is the typed result of response extraction. Files is never empty —
// every failure mode degrades to a visible artifact rather than an error, so
// downstream publishing has something to write in all cases.
type Outcome struct {
	Kind  OutcomeKind
	Files FileSet
}

const (
	fallbackPath      = "index.html"
	parseErrorPath    = "error.txt"
	providerErrorPath = "error.html"
)

// Extract locates the outermost brace-delimited span of raw (first '{' to last
// '}', greedy, not nested-aware) and parses it as a string-to-string mapping.
func Extract(raw string) Outcome {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return Outcome{
			Kind:  OutcomeFallbackRaw,
			Files: FileSet{fallbackPath: []byte(raw)},
		}
	}
	parsed, err := ParseStringDict(raw[start : end+1])
	if err != nil {
		msg := fmt.Sprintf("Failed to parse model response: %v\n\nRaw content:\n%s", err, raw)
		return Outcome{
			Kind:  OutcomeParseError,
			Files: FileSet{parseErrorPath: []byte(msg)},
		}
	}
	files := make(FileSet, len(parsed))
	for path, content := range parsed {
		files[path] = []byte(content)
	}
	return Outcome{Kind: OutcomeParsed, Files: files}
}

// ProviderErrorOutcome wraps a provider call failure as a minimal viewable
// document, keeping the failure visible in the published artifact.
func ProviderErrorOutcome(err error) Outcome {
	doc := fmt.Sprintf("<html><body><h1>Failed to generate app</h1><pre>%v</pre></body></html>", err)
	return Outcome{
		Kind:  OutcomeProviderError,
		Files: FileSet{providerErrorPath: []byte(doc)},
	}
}
