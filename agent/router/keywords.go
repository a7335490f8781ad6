package router

import "strings"

// Keyword sets for the deterministic classifier. Matching is plain substring
// search over the lowercased message, so multi-word entries match phrases.
var (
	salesKeywords = []string{
		"buy", "purchase", "price", "cost", "available", "availability", "in stock", "stock",
		"recommend", "suggest", "compare", "spec", "specs", "features",
		"payment", "pay", "credit", "debit", "card", "bank transfer", "cash on delivery", "cod",
		"delivery to", "deliver to", "deliver", "delivery", "location", "area",
	}

	ordersKeywords = []string{
		"track", "tracking", "where is my order", "order status", "shipped", "delivered",
		"return", "refund", "cancel", "exchange",
	}

	supportKeywords = []string{
		"not working", "won't", "doesn't", "broken", "issue", "problem", "error",
		"warranty", "repair", "setup", "install", "troubleshoot",
		"support ticket", "open ticket", "create ticket",
	}

	marketingKeywords = []string{"discount", "promo", "deal", "offer", "coupon", "loyalty", "campaign"}

	policyKeywords = []string{
		"policy", "return policy", "refund policy", "exchange policy",
		"cancellation policy", "terms", "conditions",
	}

	returnishKeywords = []string{
		"return", "refund", "cancel", "exchange", "track", "tracking", "order status",
	}
)

// purchasePhrases is the closed set of exact (whitespace-normalized,
// lowercased) messages that force the purchase route.
var purchasePhrases = map[string]struct{}{
	"buy now":                 {},
	"purchase now":            {},
	"checkout":                {},
	"place order":             {},
	"order now":               {},
	"proceed to buy":          {},
	"proceed to purchase":     {},
	"how to buy":              {},
	"how can i buy":           {},
	"i want to buy now":       {},
	"want to buy now":         {},
	"i need to buy now":       {},
	"need to buy now":         {},
	"i want to purchase now":  {},
	"want to purchase now":    {},
	"i need to purchase now":  {},
	"need to purchase now":    {},
}

var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"gm": {}, "ga": {}, "ge": {},
}

func normalize(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}

// IsPurchasePhrase reports whether the whole message is an explicit checkout
// trigger. Substring hits do not count; "how to buy a tv" is sales.
func IsPurchasePhrase(message string) bool {
	_, ok := purchasePhrases[normalize(message)]
	return ok
}

func isGreeting(message string) bool {
	clean := normalize(message)
	if _, ok := greetings[clean]; ok {
		return true
	}
	_, ok := greetings[strings.TrimRight(clean, "!")]
	return ok
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
