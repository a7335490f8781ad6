package llm

import (
	"context"
	"fmt"

	contractx "github.com/electromart/agenthub/agent/contract"
)

// Disabled is the completer used when no model is configured. Every call
// fails with ErrCapabilityUnavailable so callers fall back to their
// deterministic paths.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, []contractx.Turn, string) (string, error) {
	return "", fmt.Errorf("%w: no chat model configured", contractx.ErrCapabilityUnavailable)
}
