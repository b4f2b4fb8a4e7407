package llm

import (
	"context"
	"fmt"

	claudeagent "github.com/kazz187/claude-agent-sdk-go"
)

// ClaudeProvider runs prompts through the Claude agent SDK as single-turn
// queries. No tools are granted; the agent is used purely as a completion
// endpoint.
type ClaudeProvider struct{}

func NewClaudeProvider() *ClaudeProvider {
	return &ClaudeProvider{}
}

func (p *ClaudeProvider) Name() string { return "claude" }

func (p *ClaudeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	maxTurns := 1
	opts := &claudeagent.ClaudeAgentOptions{
		SystemPrompt: "You are a code generation engine. Respond with text only.",
		MaxTurns:     &maxTurns,
	}
	result, err := claudeagent.RunQuerySync(ctx, prompt, opts)
	if err != nil {
		return "", fmt.Errorf("claude query failed: %w", err)
	}
	if result.Result == nil {
		return "", fmt.Errorf("claude query returned no result")
	}
	if result.Result.IsError {
		return "", fmt.Errorf("claude query errored: %s", result.Result.Result)
	}
	return result.Result.Result, nil
}
