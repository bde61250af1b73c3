// README: Reasoning-engine contract; swap Gemini, OpenAI or a test stub behind it.
package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrUnreachable marks a transport-level failure: the engine could not be reached
// or refused service. Callers retry it; any other error means the engine answered
// but the answer is unusable.
var ErrUnreachable = errors.New("ai: engine unreachable")

// Engine produces a text completion for a prompt. JSON output is requested but
// not guaranteed; callers validate it.
type Engine interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CleanJSON removes markdown code fences if present (e.g. ```json ... ```).
func CleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
