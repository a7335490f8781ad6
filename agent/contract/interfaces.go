package contract

import (
	"context"

	statex "github.com/electromart/agenthub/agent/state"
)

// AgentRequest carries one inbound message to the selected agent. Memory is a
// private snapshot: the agent may mutate it freely and returns the full
// replacement document in AgentResponse.
type AgentRequest struct {
	ConversationID string
	Text           string
	History        []Turn
	Memory         *statex.Memory
}

type AgentResponse struct {
	Text   string
	Memory *statex.Memory
}

// Agent produces exactly one response per invocation. Tool failures are
// absorbed into a degraded response with the pre-call memory returned
// unchanged; an error return is reserved for programming mistakes.
type Agent interface {
	Handle(ctx context.Context, req AgentRequest) (AgentResponse, error)
}

type Registry interface {
	Sales() Agent
	Marketing() Agent
	Support() Agent
	Orders() Agent
	Purchase() Agent
}

// Completer is the external LLM capability. The disabled implementation
// returns ErrCapabilityUnavailable from every call; consumers fall back to
// their deterministic paths on any error.
type Completer interface {
	Complete(ctx context.Context, system string, history []Turn, user string) (string, error)
}

// Tools is the only source of truth for factual claims made by agents.
// Every call is fallible; no method is assumed to succeed.
type Tools interface {
	SearchProducts(ctx context.Context, query string, inStockOnly bool) ([]Product, error)
	ListPromotions(ctx context.Context) ([]Promotion, error)
	OrderStatus(ctx context.Context, orderID int64) (OrderInfo, error)
	CreateReturnRequest(ctx context.Context, orderID int64, reason, notes string) (ReturnReceipt, error)
	ReturnRequest(ctx context.Context, returnRequestID int64) (ReturnInfo, error)
	CreateTicket(ctx context.Context, issue, details string, orderID int64) (TicketReceipt, error)
	CreateLead(ctx context.Context, lead Lead) (LeadReceipt, error)
	SearchFAQ(ctx context.Context, query string, k int) ([]FAQEntry, error)
}

// Notifier dispatches the lead notification side effect. A failed dispatch is
// logged by the caller and never fails the lead creation.
type Notifier interface {
	NotifyLead(ctx context.Context, lead Lead, receipt LeadReceipt) error
}
