package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Prompt builders are pure functions from task fields to an instruction. All
// three constrain the model to full-content replacements — no prompt may ask
// for diff-style edits, since every returned value overwrites its path whole.

// RelevancePrompt asks which of the known paths need editing for a change
// request. The model is constrained to reply with only a list literal.
func RelevancePrompt(brief string, paths []string) string {
	var b strings.Builder
	b.WriteString("As a senior software architect, your task is to identify which files need to be edited to fulfill a user's request.\n")
	fmt.Fprintf(&b, "User's Request: %q\n", brief)
	fmt.Fprintf(&b, "Available Files: %s\n\n", jsonBlock(paths))
	b.WriteString("Respond ONLY with a JSON array of the full file paths that need to be modified.\n")
	b.WriteString(`Example response: ["src/components/header.js", "src/assets/style.css"]` + "\n")
	return b.String()
}

// SynthesisPrompt asks for a complete static-site application satisfying the
// brief and every check. A README is mandatory and a LICENSE is forbidden.
func SynthesisPrompt(name, brief string, checks, attachmentNames []string) string {
	var b strings.Builder
	b.WriteString("As an expert software developer, create a complete, production-ready application.\n")
	b.WriteString("This application must work entirely as a static website.\n")
	fmt.Fprintf(&b, "The official name for this task is '%s'. Use this for titles or project names.\n", name)
	b.WriteString("Your response must include a professional README.md for the project.\n")
	b.WriteString("Do NOT include any LICENSE file or licensing text in this output.\n\n")
	fmt.Fprintf(&b, "User Brief: %q\n\n", brief)
	if len(attachmentNames) > 0 {
		b.WriteString("The following files are provided as attachments and will be present in the repository. Reference them as available assets; do not regenerate them:\n")
		writeBullets(&b, attachmentNames)
		b.WriteString("\n")
	}
	if len(checks) > 0 {
		b.WriteString("Crucially, the code you generate must satisfy all of the following evaluation checks:\n")
		writeBullets(&b, checks)
		b.WriteString("\n")
	}
	b.WriteString("Based on all the information, determine the required files (e.g., index.html, style.css, src/app.js, etc.).\n")
	b.WriteString("Respond ONLY with a single JSON object that maps full file paths to their complete string content.\n")
	b.WriteString("Ensure all code is complete and does not contain placeholders.\n")
	return b.String()
}

// ModificationPrompt asks for updated content for only the files that change,
// given the current content of the relevant files.
func ModificationPrompt(name, brief string, checks, attachmentNames []string, contextFiles map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As an expert software developer, your task is to modify an existing project named '%s'.\n", name)
	b.WriteString("Apply the following change based on the user's request.\n\n")
	fmt.Fprintf(&b, "User Request: %q\n\n", brief)
	if len(attachmentNames) > 0 {
		b.WriteString("The following files are provided as attachments and will be present in the repository. Reference them as available assets; do not regenerate them:\n")
		writeBullets(&b, attachmentNames)
		b.WriteString("\n")
	}
	if len(checks) > 0 {
		b.WriteString("The final code must satisfy all of the following evaluation checks:\n")
		writeBullets(&b, checks)
		b.WriteString("\n")
	}
	b.WriteString("Here is the current content of the relevant files:\n")
	paths := make([]string, 0, len(contextFiles))
	for p := range contextFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", p, contextFiles[p])
	}
	b.WriteString("\n")
	b.WriteString("Respond ONLY with a single JSON object containing the complete, updated content for ONLY the files that need to change.\n")
	b.WriteString("Every value must be the full replacement content for its path, never a partial edit or diff.\n")
	b.WriteString("Do not include files that were not modified.\n")
	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func jsonBlock(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return strings.TrimSuffix(buf.String(), "\n")
}
