package handlers

import (
	"context"
	"testing"
	"time"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
)

func TestMarketingListsCurrentPromotions(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{promotions: []contractx.Promotion{
		{Title: "Avurudu Sale", DiscountPercent: 15, Details: "15% off all TVs", ValidUntil: time.Now().Add(72 * time.Hour)},
		{Title: "Back to School", DiscountPercent: 10, Details: "Laptops and tablets", ValidUntil: time.Now().Add(240 * time.Hour)},
	}}
	agent := NewMarketing(tools, nil, "")

	resp, err := agent.Handle(context.Background(), contractx.AgentRequest{
		ConversationID: "c1",
		Text:           "any discounts going on?",
		Memory:         &statex.Memory{},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !containsText(resp.Text, "Current promotions:") {
		t.Fatalf("expected promotion header, got %q", resp.Text)
	}
	if !containsText(resp.Text, "Avurudu Sale (15%)") || !containsText(resp.Text, "Back to School (10%)") {
		t.Fatalf("expected both promotions listed, got %q", resp.Text)
	}
}

func TestMarketingNoActivePromotions(t *testing.T) {
	t.Parallel()

	agent := NewMarketing(&fakeTools{}, nil, "")
	resp, err := agent.Handle(context.Background(), contractx.AgentRequest{
		ConversationID: "c1",
		Text:           "any promo codes?",
		Memory:         &statex.Memory{},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if resp.Text != "No active promotions right now." {
		t.Fatalf("expected empty-list reply, got %q", resp.Text)
	}
}

func TestMarketingModelGetsPromotionContext(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{promotions: []contractx.Promotion{
		{Title: "Avurudu Sale", DiscountPercent: 15, Details: "15% off all TVs", ValidUntil: time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)},
	}}
	completer := &fakeCompleter{out: "Yes! TVs are 15% off until April 20."}
	agent := NewMarketing(tools, completer, "sys")

	resp, err := agent.Handle(context.Background(), contractx.AgentRequest{
		ConversationID: "c1",
		Text:           "is there a TV sale?",
		Memory:         &statex.Memory{},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if resp.Text != completer.out {
		t.Fatalf("expected model reply, got %q", resp.Text)
	}
	if len(completer.users) != 1 || !containsText(completer.users[0], "valid until 2026-04-20") {
		t.Fatalf("expected promotion context fed to the model, got %v", completer.users)
	}
}
