package handlers

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
	toolx "github.com/electromart/agenthub/agent/tool"
)

// Purchase runs the lead-capture state machine. The flow starts only on the
// exact phrase "buy now", collects product, name, and phone one step at a
// time, and creates exactly one lead when the last step lands.
type Purchase struct {
	tools contractx.Tools
}

func NewPurchase(tools contractx.Tools) *Purchase {
	return &Purchase{tools: tools}
}

var cancelPhrases = map[string]struct{}{
	"cancel":          {},
	"cancel purchase": {},
	"stop":            {},
	"nevermind":       {},
	"never mind":      {},
}

func isCancel(text string) bool {
	_, ok := cancelPhrases[strings.Join(strings.Fields(strings.ToLower(text)), " ")]
	return ok
}

func (a *Purchase) Handle(ctx context.Context, req contractx.AgentRequest) (contractx.AgentResponse, error) {
	mem := req.Memory
	msg := strings.TrimSpace(req.Text)

	if !mem.BuyFlowActive() {
		if !toolx.IsBuyNow(msg) {
			return contractx.AgentResponse{
				Text:   `To start a purchase, type exactly: "buy now".`,
				Memory: mem,
			}, nil
		}
		mem.StartBuyFlow()
		return contractx.AgentResponse{
			Text:   "Sure. What product model or SKU do you want to buy? (Example: iPhone 15 Pro 256GB or SKU: PHN-...)",
			Memory: mem,
		}, nil
	}

	if isCancel(msg) {
		mem.AbortBuyFlow()
		return contractx.AgentResponse{
			Text:   `Purchase cancelled. Type "buy now" whenever you want to start again.`,
			Memory: mem,
		}, nil
	}

	switch mem.BuyFlow.Step {
	case statex.BuyStepAwaitingProduct:
		return a.collectProduct(ctx, mem, msg)
	case statex.BuyStepAwaitingName:
		return a.collectName(mem, msg)
	case statex.BuyStepAwaitingPhone:
		return a.collectPhone(ctx, mem, req.ConversationID, msg)
	}

	// Unknown step: reset rather than loop.
	mem.AbortBuyFlow()
	return contractx.AgentResponse{
		Text:   `Something went wrong with the buy flow. Type "buy now" to start again.`,
		Memory: mem,
	}, nil
}

func (a *Purchase) collectProduct(ctx context.Context, mem *statex.Memory, msg string) (contractx.AgentResponse, error) {
	// Repeating "buy now" mid-flow re-asks instead of restarting.
	if toolx.IsBuyNow(msg) {
		return contractx.AgentResponse{
			Text:   "What product model or SKU do you want to buy?",
			Memory: mem,
		}, nil
	}

	matches, err := a.tools.SearchProducts(ctx, msg, false)
	if err != nil {
		return contractx.AgentResponse{
			Text:   "I couldn't look up products right now. Please try again in a moment.",
			Memory: mem,
		}, nil
	}
	if len(matches) == 0 {
		return contractx.AgentResponse{
			Text:   "I couldn't find that product. Please reply with the exact model name or SKU.",
			Memory: mem,
		}, nil
	}
	if len(matches) > 1 {
		lines := []string{"I found multiple products. Reply with the SKU you want:"}
		for i, p := range matches {
			if i >= 6 {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s [SKU: %s]", p.Name, p.SKU))
		}
		return contractx.AgentResponse{Text: strings.Join(lines, "\n"), Memory: mem}, nil
	}

	chosen := matches[0]
	mem.BuyFlow.Product = chosen.Name
	mem.BuyFlow.ProductSKU = chosen.SKU
	mem.BuyFlow.Step = statex.BuyStepAwaitingName
	return contractx.AgentResponse{
		Text:   fmt.Sprintf("Great. Buying: %s\nWhat's your name?", chosen.Name),
		Memory: mem,
	}, nil
}

func (a *Purchase) collectName(mem *statex.Memory, msg string) (contractx.AgentResponse, error) {
	if !toolx.LooksLikeName(msg) {
		return contractx.AgentResponse{
			Text:   "Please reply with your name (only your name).",
			Memory: mem,
		}, nil
	}

	mem.BuyFlow.Name = msg
	mem.BuyFlow.Step = statex.BuyStepAwaitingPhone
	return contractx.AgentResponse{
		Text:   "Thanks. What's your phone number?",
		Memory: mem,
	}, nil
}

func (a *Purchase) collectPhone(ctx context.Context, mem *statex.Memory, conversationID, msg string) (contractx.AgentResponse, error) {
	phone := toolx.ExtractPhone(msg)
	if phone == "" {
		return contractx.AgentResponse{
			Text:   "Please reply with a valid phone number (e.g., 07XXXXXXXX or +94XXXXXXXXX).",
			Memory: mem,
		}, nil
	}

	mem.BuyFlow.Phone = phone
	flow := mem.BuyFlow

	receipt, err := a.tools.CreateLead(ctx, contractx.Lead{
		ConversationID: conversationID,
		Name:           flow.Name,
		Phone:          flow.Phone,
		Interest:       flow.Product,
		Notes:          "SKU: " + flow.ProductSKU,
	})
	if err != nil {
		// Keep the flow on the phone step so a retry can finish it.
		return contractx.AgentResponse{
			Text:   "I couldn't save your details right now. Please send your phone number again in a moment.",
			Memory: mem,
		}, nil
	}

	product := flow.Product
	name := flow.Name
	mem.FinishBuyFlow(receipt.LeadID, product)

	return contractx.AgentResponse{
		Text: fmt.Sprintf("Done! Lead created.\nLead ID: %d\nProduct: %s\nName: %s\nPhone: %s",
			receipt.LeadID, product, name, phone),
		Memory: mem,
	}, nil
}
