package router

import (
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
	toolx "github.com/electromart/agenthub/agent/tool"
)

// RuleRoute runs the deterministic keyword cascade. It reads memory but never
// mutates it. The second return value is false only when no rule fires and
// the decision should fall through to the model-backed classifier.
func RuleRoute(message string, mem *statex.Memory) (contractx.Route, bool) {
	if mem == nil {
		mem = &statex.Memory{}
	}
	lower := strings.ToLower(message)
	hasOrderID := toolx.ExtractOrderID(message) != 0

	// Soft stickiness: the previous route biases borderline messages, with
	// explicit switches always honored.
	switch contractx.Route(mem.LastRoute) {
	case contractx.RoutePurchase:
		if containsAny(lower, supportKeywords) {
			return contractx.RouteSupport, true
		}
		if hasOrderID || containsAny(lower, ordersKeywords) {
			return contractx.RouteOrders, true
		}
		if containsAny(lower, marketingKeywords) {
			return contractx.RouteMarketing, true
		}
		return contractx.RoutePurchase, true

	case contractx.RouteSupport:
		if containsAny(lower, salesKeywords) {
			return contractx.RouteSales, true
		}
		if hasOrderID || containsAny(lower, ordersKeywords) {
			return contractx.RouteOrders, true
		}
		if containsAny(lower, marketingKeywords) {
			return contractx.RouteMarketing, true
		}
		if containsAny(lower, supportKeywords) {
			return contractx.RouteSupport, true
		}
		// A bare "yes"/"ok" with nothing pending should not trap the
		// user in support; fall through to the general rules.

	case contractx.RouteOrders:
		if containsAny(lower, policyKeywords) && !hasOrderID {
			return contractx.RouteOrders, true
		}
		if toolx.HasBareID(message) {
			return contractx.RouteOrders, true
		}
		if containsAny(lower, supportKeywords) {
			return contractx.RouteSupport, true
		}
		if containsAny(lower, marketingKeywords) {
			return contractx.RouteMarketing, true
		}
		if containsAny(lower, salesKeywords) && !containsAny(lower, ordersKeywords) && !hasOrderID {
			return contractx.RouteSales, true
		}
		return contractx.RouteOrders, true
	}

	if isGreeting(message) {
		return contractx.RouteSales, true
	}

	if contractx.Route(mem.LastRoute) == contractx.RouteSales {
		if containsAny(lower, supportKeywords) {
			return contractx.RouteSupport, true
		}
		if hasOrderID || containsAny(lower, ordersKeywords) {
			return contractx.RouteOrders, true
		}
		if containsAny(lower, marketingKeywords) {
			return contractx.RouteMarketing, true
		}
		return contractx.RouteSales, true
	}

	isSales := containsAny(lower, salesKeywords)
	isOrders := containsAny(lower, ordersKeywords)
	isSupport := containsAny(lower, supportKeywords)
	isMarketing := containsAny(lower, marketingKeywords)

	// An explicit order id means existing-order context.
	if hasOrderID && (isOrders || strings.Contains(lower, "order") || strings.Contains(lower, "status") || strings.Contains(lower, "track")) {
		return contractx.RouteOrders, true
	}

	// Delivery talk plus return talk: return-ish words win.
	if isSales && isOrders {
		if containsAny(lower, returnishKeywords) {
			return contractx.RouteOrders, true
		}
		return contractx.RouteSales, true
	}

	if isOrders {
		return contractx.RouteOrders, true
	}
	if isSupport {
		return contractx.RouteSupport, true
	}
	if isMarketing {
		return contractx.RouteMarketing, true
	}
	if isSales {
		return contractx.RouteSales, true
	}

	return "", false
}
