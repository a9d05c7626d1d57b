package extract

import "context"

// Completer sends a system and user message to an LLM and returns its reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}
