package router

import (
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
	toolx "github.com/electromart/agenthub/agent/tool"
)

// GuardRoute resolves routing for messages that arrive mid-flow, before any
// keyword matching runs. Flow priority is total: purchase beats return beats
// ticket. It returns false when no gated flow claims the message.
func GuardRoute(message string, mem *statex.Memory) (contractx.Route, bool) {
	if mem == nil {
		return "", false
	}
	lower := strings.ToLower(message)

	// An in-progress purchase owns every message until the flow completes
	// or the user cancels inside it. The explicit checkout phrases are
	// checked by the caller first so they can restart routing cleanly.
	if mem.BuyFlowActive() {
		return contractx.RoutePurchase, true
	}

	// A half-collected return keeps the user in orders, with narrow
	// escapes for clearly off-flow messages.
	if mem.ReturnPending {
		if toolx.HasBareID(message) {
			return contractx.RouteOrders, true
		}
		if containsAny(lower, supportKeywords) {
			return contractx.RouteSupport, true
		}
		if containsAny(lower, marketingKeywords) {
			return contractx.RouteMarketing, true
		}
		if containsAny(lower, salesKeywords) &&
			!containsAny(lower, ordersKeywords) &&
			toolx.ExtractOrderID(message) == 0 {
			return contractx.RouteSales, true
		}
		return contractx.RouteOrders, true
	}

	// A pending ticket offer pins the conversation to support so the
	// yes/no answer lands with the agent that asked the question.
	if mem.TicketPending {
		return contractx.RouteSupport, true
	}

	return "", false
}
