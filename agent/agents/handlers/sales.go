package handlers

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
)

// Sales handles product discovery: specs, pricing, stock checks, and
// recommendations. Checkout itself is the purchase agent's job; sales only
// points the user at the "buy now" trigger.
type Sales struct {
	tools     contractx.Tools
	completer contractx.Completer
	prompt    string
}

func NewSales(tools contractx.Tools, completer contractx.Completer, prompt string) *Sales {
	return &Sales{tools: tools, completer: completer, prompt: prompt}
}

var followupPhrases = []string{
	"compare", "which one", "which", "that one", "this one", "the first", "the second",
	"price", "spec", "specs", "details", "more details", "what about", "tell me more",
}

var stockWords = []string{"stock", "available", "availability", "in stock", "out of stock"}

var recommendWords = []string{
	"recommend", "suggest", "best", "which phone", "which tv", "which fridge", "what should i buy",
}

func isFollowup(lower string) bool {
	for _, p := range followupPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return len(strings.Fields(lower)) <= 3
}

func isStockQuestion(lower string) bool {
	for _, w := range stockWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func needsRecommendations(lower string) bool {
	for _, w := range recommendWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func (a *Sales) Handle(ctx context.Context, req contractx.AgentRequest) (contractx.AgentResponse, error) {
	mem := req.Memory
	msg := strings.TrimSpace(req.Text)
	if msg == "" {
		return contractx.AgentResponse{
			Text:   "Hi! Tell me what you're looking for (e.g., iPhone 15 Pro price, best TV under 300k, fridge for a small family).",
			Memory: mem,
		}, nil
	}
	lower := strings.ToLower(msg)

	// Vague follow-ups reuse the last shown items instead of re-searching.
	var products []contractx.Product
	if isFollowup(lower) && len(mem.LastProducts) > 0 {
		products = fromProductRefs(mem.LastProducts)
	} else {
		// Stock questions get out-of-stock results too, so we can say a
		// thing is out of stock. Everything else is in-stock only.
		wantsStockCheck := isStockQuestion(lower)
		found, err := a.tools.SearchProducts(ctx, msg, !wantsStockCheck)
		if err != nil {
			return contractx.AgentResponse{
				Text:   "I couldn't look up products right now. Please try again in a moment.",
				Memory: mem,
			}, nil
		}
		products = found
		if len(products) > 0 {
			mem.LastProducts = toProductRefs(products)
		}
	}

	// Recommendation safety rule: never recommend out-of-stock items.
	if !isStockQuestion(lower) {
		inStock := products[:0:0]
		for _, p := range products {
			if p.InStock {
				inStock = append(inStock, p)
			}
		}
		products = inStock
	}
	if needsRecommendations(lower) && len(products) > 3 {
		products = products[:3]
	}

	if text, ok := a.completeWithContext(ctx, req, products); ok {
		return contractx.AgentResponse{Text: text, Memory: mem}, nil
	}

	if len(products) == 0 {
		return contractx.AgentResponse{
			Text:   `I couldn't find a matching product in stock. Try a brand/model (e.g., "iPhone 15", "Samsung 55 QLED", "LG 260L fridge").`,
			Memory: mem,
		}, nil
	}
	return contractx.AgentResponse{Text: formatProducts(products, 10), Memory: mem}, nil
}

func (a *Sales) completeWithContext(ctx context.Context, req contractx.AgentRequest, products []contractx.Product) (string, bool) {
	if a.completer == nil {
		return "", false
	}

	productContext := "(No matching products found in stock)"
	if len(products) > 0 {
		lines := make([]string, 0, len(products))
		for i, p := range products {
			if i >= 10 {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s — %s (%s) [SKU: %s]", p.Name, formatLKR(p.Price), stockStatus(p), p.SKU))
		}
		productContext = strings.Join(lines, "\n")
	}

	policy := "Rules:\n" +
		"- Only use the products listed in Available products.\n" +
		"- If no product matches, ask one clarifying question (budget / size / brand).\n" +
		"- Prices must be in LKR.\n" +
		"- If asked to buy/checkout, tell them to type exactly: \"buy now\" to start the purchase flow.\n"

	user := fmt.Sprintf("%s\nAvailable products:\n%s\n\nCustomer question: %s", policy, productContext, req.Text)
	out, err := a.completer.Complete(ctx, a.prompt, req.History, user)
	if err != nil || strings.TrimSpace(out) == "" {
		return "", false
	}
	return strings.TrimSpace(out), true
}
