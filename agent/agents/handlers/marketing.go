package handlers

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
)

// Marketing answers promotion and campaign questions from the current
// promotion list. It never invents offers: the deterministic path lists
// what the catalog has, and the model path is fed the same list.
type Marketing struct {
	tools     contractx.Tools
	completer contractx.Completer
	prompt    string
}

func NewMarketing(tools contractx.Tools, completer contractx.Completer, prompt string) *Marketing {
	return &Marketing{tools: tools, completer: completer, prompt: prompt}
}

func (a *Marketing) Handle(ctx context.Context, req contractx.AgentRequest) (contractx.AgentResponse, error) {
	mem := req.Memory

	promos, err := a.tools.ListPromotions(ctx)
	if err != nil {
		return contractx.AgentResponse{
			Text:   "I couldn't load promotions right now. Please try again in a moment.",
			Memory: mem,
		}, nil
	}

	if text, ok := a.completeWithContext(ctx, req, promos); ok {
		return contractx.AgentResponse{Text: text, Memory: mem}, nil
	}

	if len(promos) == 0 {
		return contractx.AgentResponse{Text: "No active promotions right now.", Memory: mem}, nil
	}
	lines := []string{"Current promotions:"}
	for i, p := range promos {
		if i >= 5 {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s (%.0f%%): %s", p.Title, p.DiscountPercent, p.Details))
	}
	return contractx.AgentResponse{Text: strings.Join(lines, "\n"), Memory: mem}, nil
}

func (a *Marketing) completeWithContext(ctx context.Context, req contractx.AgentRequest, promos []contractx.Promotion) (string, bool) {
	if a.completer == nil {
		return "", false
	}

	promoContext := "(no active promotions)"
	if len(promos) > 0 {
		lines := make([]string, 0, len(promos))
		for _, p := range promos {
			lines = append(lines, fmt.Sprintf("- %s (%.0f%% off, valid until %s): %s",
				p.Title, p.DiscountPercent, p.ValidUntil.Format("2006-01-02"), p.Details))
		}
		promoContext = strings.Join(lines, "\n")
	}

	user := fmt.Sprintf("User: %s\nCurrent promotions:\n%s", req.Text, promoContext)
	out, err := a.completer.Complete(ctx, a.prompt, req.History, user)
	if err != nil || strings.TrimSpace(out) == "" {
		return "", false
	}
	return strings.TrimSpace(out), true
}
