package router

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	contractx "github.com/electromart/agenthub/agent/contract"
	llmx "github.com/electromart/agenthub/agent/llm"
	statex "github.com/electromart/agenthub/agent/state"
)

type fakeCompleter struct {
	out   string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, history []contractx.Turn, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type intentCase struct {
	text     string
	expected contractx.Route
	memory   statex.Memory
}

// Labeled routing dataset. The classifier must stay above the accuracy gate
// with the model fallback disabled, so routing quality never silently
// depends on an external capability.
var intentCases = []intentCase{
	{text: "hi", expected: contractx.RouteSales},
	{text: "hello!", expected: contractx.RouteSales},
	{text: "gm", expected: contractx.RouteSales},
	{text: "what is the price of iphone 15", expected: contractx.RouteSales},
	{text: "do you have samsung tvs in stock", expected: contractx.RouteSales},
	{text: "recommend a fridge for a small family", expected: contractx.RouteSales},
	{text: "i want to buy a tv", expected: contractx.RouteSales},
	{text: "deliver to colombo possible?", expected: contractx.RouteSales},
	{text: "what payment methods do you accept", expected: contractx.RouteSales},
	{text: "i need a new laptop, what do you suggest", expected: contractx.RouteSales},
	{text: "delivery to kandy for a new tv", expected: contractx.RouteSales},

	{text: "track my order", expected: contractx.RouteOrders},
	{text: "where is my order 101", expected: contractx.RouteOrders},
	{text: "order 101 status", expected: contractx.RouteOrders},
	{text: "i want a refund", expected: contractx.RouteOrders},
	{text: "cancel my order 101", expected: contractx.RouteOrders},
	{text: "exchange this item", expected: contractx.RouteOrders},
	{text: "my order was delivered damaged, i want a refund", expected: contractx.RouteOrders},

	{text: "my phone is not working", expected: contractx.RouteSupport},
	{text: "warranty claim", expected: contractx.RouteSupport},
	{text: "open a support ticket", expected: contractx.RouteSupport},
	{text: "screen is broken", expected: contractx.RouteSupport},
	{text: "help me install the soundbar", expected: contractx.RouteSupport},

	{text: "any discounts today", expected: contractx.RouteMarketing},
	{text: "current promo codes", expected: contractx.RouteMarketing},
	{text: "loyalty program details", expected: contractx.RouteMarketing},

	{text: "buy now", expected: contractx.RoutePurchase},
	{text: "checkout", expected: contractx.RoutePurchase},
	{text: "how to buy", expected: contractx.RoutePurchase},
	{text: "I want to purchase now", expected: contractx.RoutePurchase},

	// Sticky and mid-flow cases.
	{text: "101", expected: contractx.RouteOrders, memory: statex.Memory{LastRoute: "orders"}},
	{text: "my device is broken", expected: contractx.RouteSupport, memory: statex.Memory{LastRoute: "orders"}},
	{text: "order id 12345 status", expected: contractx.RouteOrders, memory: statex.Memory{LastRoute: "sales"}},
	{text: "what about the second one", expected: contractx.RouteSales, memory: statex.Memory{LastRoute: "sales"}},
	{text: "i want to return", expected: contractx.RouteOrders, memory: statex.Memory{ReturnPending: true}},
	{text: "101", expected: contractx.RouteOrders, memory: statex.Memory{ReturnPending: true}},
	{text: "need warranty repair", expected: contractx.RouteSupport, memory: statex.Memory{ReturnPending: true}},
	{text: "yes", expected: contractx.RouteSupport, memory: statex.Memory{TicketPending: true}},
	{text: "thanks", expected: contractx.RoutePurchase, memory: statex.Memory{LastRoute: "purchase"}},
	{text: "what else is on offer", expected: contractx.RouteMarketing, memory: statex.Memory{LastRoute: "purchase"}},
}

func TestIntentAccuracy(t *testing.T) {
	t.Parallel()

	r := New(llmx.Disabled{}, "")
	ctx := context.Background()

	correct := 0
	for _, tc := range intentCases {
		mem := tc.memory
		got := r.Route(ctx, tc.text, nil, &mem)
		if got == tc.expected {
			correct++
		} else {
			t.Logf("text=%q memory=%+v: got %s, want %s", tc.text, tc.memory, got, tc.expected)
		}
	}

	acc := float64(correct) / float64(len(intentCases))
	t.Logf("intent accuracy: %.2f (%d/%d)", acc, correct, len(intentCases))
	if acc < 0.85 {
		t.Fatalf("intent accuracy %.2f below 0.85 gate", acc)
	}
}

func TestRouteIsDeterministicAndReadOnly(t *testing.T) {
	t.Parallel()

	r := New(llmx.Disabled{}, "")
	ctx := context.Background()

	mem := statex.Memory{LastRoute: "orders", LastOrderID: 101}
	before := mem

	first := r.Route(ctx, "what about the return policy", nil, &mem)
	second := r.Route(ctx, "what about the return policy", nil, &mem)
	if first != second {
		t.Fatalf("routing not deterministic: %s then %s", first, second)
	}
	if !reflect.DeepEqual(mem, before) {
		t.Fatalf("router mutated memory: %+v -> %+v", before, mem)
	}
}

func TestGuardPurchaseFlowOwnsEveryMessage(t *testing.T) {
	t.Parallel()

	mem := &statex.Memory{}
	mem.StartBuyFlow()

	for _, text := range []string{"my name is Nimal", "0771234567", "iphone 15", "broken screen"} {
		route, ok := GuardRoute(text, mem)
		if !ok || route != contractx.RoutePurchase {
			t.Fatalf("text %q: expected purchase guard, got %s ok=%t", text, route, ok)
		}
	}
}

func TestGuardReturnPendingEscapes(t *testing.T) {
	t.Parallel()

	mem := &statex.Memory{ReturnPending: true}

	cases := []struct {
		text string
		want contractx.Route
	}{
		{"101", contractx.RouteOrders},
		{"it arrived damaged", contractx.RouteOrders},
		{"actually my tv wont turn on, warranty?", contractx.RouteSupport},
		{"any deal on fridges?", contractx.RouteMarketing},
		{"what is the price of iphone 15", contractx.RouteSales},
	}
	for _, tc := range cases {
		route, ok := GuardRoute(tc.text, mem)
		if !ok {
			t.Fatalf("text %q: expected guard to claim message", tc.text)
		}
		if route != tc.want {
			t.Fatalf("text %q: got %s, want %s", tc.text, route, tc.want)
		}
	}
}

func TestPurchasePhraseBeatsActiveFlows(t *testing.T) {
	t.Parallel()

	r := New(llmx.Disabled{}, "")
	mem := statex.Memory{ReturnPending: true}

	if got := r.Route(context.Background(), "buy now", nil, &mem); got != contractx.RoutePurchase {
		t.Fatalf("expected purchase for explicit phrase, got %s", got)
	}
}

func TestIsPurchasePhraseExactOnly(t *testing.T) {
	t.Parallel()

	if !IsPurchasePhrase("  Buy   Now ") {
		t.Fatalf("expected normalized phrase to match")
	}
	if IsPurchasePhrase("how to buy a tv") {
		t.Fatalf("substring must not match")
	}
}

func TestFallbackRoute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	c := &fakeCompleter{out: " Orders \n"}
	if got := FallbackRoute(ctx, c, "sys", nil, "some message"); got != contractx.RouteOrders {
		t.Fatalf("expected orders from model label, got %s", got)
	}

	c = &fakeCompleter{out: "shipping"}
	if got := FallbackRoute(ctx, c, "sys", nil, "some message"); got != contractx.RouteSales {
		t.Fatalf("expected sales for out-of-set label, got %s", got)
	}

	c = &fakeCompleter{err: fmt.Errorf("%w: nope", contractx.ErrCapabilityUnavailable)}
	if got := FallbackRoute(ctx, c, "sys", nil, "some message"); got != contractx.RouteSales {
		t.Fatalf("expected sales when capability is unavailable, got %s", got)
	}

	c = &fakeCompleter{err: errors.New("timeout")}
	if got := FallbackRoute(ctx, c, "sys", nil, "some message"); got != contractx.RouteSales {
		t.Fatalf("expected sales on model error, got %s", got)
	}
}
