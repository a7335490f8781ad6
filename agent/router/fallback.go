package router

import (
	"context"
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
)

// FallbackRoute asks the model to pick a label when no rule fires. Any
// failure, including the capability being absent, degrades to sales; routing
// never surfaces an error to the caller.
func FallbackRoute(
	ctx context.Context,
	completer contractx.Completer,
	systemPrompt string,
	history []contractx.Turn,
	message string,
) contractx.Route {
	if completer == nil {
		return contractx.RouteSales
	}

	out, err := completer.Complete(ctx, systemPrompt, history, message)
	if err != nil {
		return contractx.RouteSales
	}

	label := strings.ToLower(strings.TrimSpace(out))
	if route, ok := contractx.ValidRoute(label); ok {
		return route
	}
	return contractx.RouteSales
}
