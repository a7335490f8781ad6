// Package router selects the agent for each inbound message. Three stages
// run in order: the flow guard for gated flows, the keyword cascade, and the
// model fallback. The first two are deterministic and cover the common case;
// the fallback only sees messages nothing else claimed.
package router

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
)

type Router struct {
	completer    contractx.Completer
	systemPrompt string
}

func New(completer contractx.Completer, systemPrompt string) *Router {
	return &Router{completer: completer, systemPrompt: systemPrompt}
}

// Route classifies one message. It reads memory but never mutates it; the
// orchestrator records the chosen route after the agent responds.
func (r *Router) Route(
	ctx context.Context,
	message string,
	history []contractx.Turn,
	mem *statex.Memory,
) contractx.Route {
	// Explicit checkout phrases outrank every flow, including an active
	// return or ticket offer.
	if IsPurchasePhrase(message) {
		return contractx.RoutePurchase
	}

	if route, ok := GuardRoute(message, mem); ok {
		return route
	}

	if route, ok := RuleRoute(message, mem); ok {
		return route
	}

	route := FallbackRoute(ctx, r.completer, r.systemPrompt, history, message)
	log.Debug().Str("route", string(route)).Msg("router: fallback classification")
	return route
}
