package state

import (
	"errors"
	"fmt"
	"time"
)

// Memory is the single persisted state document for a conversation. It is the
// only channel through which multi-turn flows survive across messages; agents
// never re-derive flow state from the message log.
type Memory struct {
	// ActiveFlow marks the gated flow currently in progress, if any.
	ActiveFlow FlowTag `json:"active_flow,omitempty"`

	// LastRoute keeps soft conversational stickiness for the rule classifier.
	LastRoute string `json:"last_route,omitempty"`

	LastProducts []ProductRef `json:"last_products,omitempty"`

	SupportTicketID int64  `json:"support_ticket_id,omitempty"`
	TicketPending   bool   `json:"ticket_pending,omitempty"`
	LastIssue       string `json:"last_issue,omitempty"`

	LastOrderID         int64 `json:"last_order_id,omitempty"`
	ReturnPending       bool  `json:"return_pending,omitempty"`
	LastReturnRequestID int64 `json:"last_return_request_id,omitempty"`

	BuyFlow *BuyFlow `json:"buy_flow,omitempty"`

	LastLeadID      int64  `json:"last_lead_id,omitempty"`
	LastLeadProduct string `json:"last_lead_product,omitempty"`
}

type FlowTag string

const (
	FlowNone     FlowTag = ""
	FlowPurchase FlowTag = "purchase"
	FlowReturn   FlowTag = "return"
	FlowTicket   FlowTag = "ticket"
)

type ProductRef struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	InStock  bool    `json:"in_stock"`
}

// BuyFlow is the purchase-capture state machine. Fields are filled one step at
// a time; a lead exists if and only if Step has reached BuyStepComplete.
type BuyFlow struct {
	Step       BuyStep `json:"step"`
	Product    string  `json:"product,omitempty"`
	ProductSKU string  `json:"product_sku,omitempty"`
	Name       string  `json:"name,omitempty"`
	Phone      string  `json:"phone,omitempty"`
}

type BuyStep string

const (
	BuyStepAwaitingProduct BuyStep = "awaiting_product"
	BuyStepAwaitingName    BuyStep = "awaiting_name"
	BuyStepAwaitingPhone   BuyStep = "awaiting_phone"
	BuyStepComplete        BuyStep = "complete"
)

var (
	ErrInvalidMemory = errors.New("memory document is invalid")
)

/* ------------------------------ Flow helpers ----------------------------- */

// StartBuyFlow enters the purchase flow at the first collection step.
func (m *Memory) StartBuyFlow() {
	m.ActiveFlow = FlowPurchase
	m.BuyFlow = &BuyFlow{Step: BuyStepAwaitingProduct}
}

// FinishBuyFlow records the completed purchase and leaves the gated flow.
func (m *Memory) FinishBuyFlow(leadID int64, product string) {
	if m.BuyFlow != nil {
		m.BuyFlow.Step = BuyStepComplete
	}
	m.LastLeadID = leadID
	m.LastLeadProduct = product
	m.ActiveFlow = FlowNone
	m.BuyFlow = nil
}

// AbortBuyFlow leaves the purchase flow without creating anything.
func (m *Memory) AbortBuyFlow() {
	m.ActiveFlow = FlowNone
	m.BuyFlow = nil
}

// BuyFlowActive reports whether the purchase flow is in a non-terminal step.
func (m *Memory) BuyFlowActive() bool {
	return m != nil && m.ActiveFlow == FlowPurchase && m.BuyFlow != nil && m.BuyFlow.Step != BuyStepComplete
}

// Validate checks the document invariants: at most one gated flow in
// progress, and the active-flow tag consistent with its backing fields.
func (m *Memory) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidMemory)
	}

	inProgress := 0
	if m.BuyFlowActive() {
		inProgress++
	}
	if m.ReturnPending {
		inProgress++
	}
	if m.TicketPending {
		inProgress++
	}
	if inProgress > 1 && m.BuyFlowActive() {
		// The purchase override is total: a half-collected return or a
		// pending ticket offer must not coexist with an active buy flow.
		return fmt.Errorf("%w: purchase flow active alongside another pending flow", ErrInvalidMemory)
	}

	if m.ActiveFlow == FlowPurchase && m.BuyFlow == nil {
		return fmt.Errorf("%w: active_flow=purchase without buy_flow", ErrInvalidMemory)
	}
	if m.BuyFlow != nil {
		switch m.BuyFlow.Step {
		case BuyStepAwaitingProduct, BuyStepAwaitingName, BuyStepAwaitingPhone, BuyStepComplete:
		default:
			return fmt.Errorf("%w: unknown buy_flow step %q", ErrInvalidMemory, m.BuyFlow.Step)
		}
	}
	return nil
}

// Clone returns a deep copy. The orchestrator hands agents a clone so the
// stored document never aliases the one being mutated mid-request.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return &Memory{}
	}
	cp := *m
	if m.BuyFlow != nil {
		bf := *m.BuyFlow
		cp.BuyFlow = &bf
	}
	if m.LastProducts != nil {
		cp.LastProducts = append([]ProductRef(nil), m.LastProducts...)
	}
	return &cp
}

/* ---------------------------- Conversation doc --------------------------- */

// Conversation is the versioned envelope persisted by a Store. Version
// increments on every save; stores reject writes with a stale version.
type Conversation struct {
	ID        string    `json:"conversation_id"`
	Version   int64     `json:"version"`
	Memory    Memory    `json:"memory"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewConversation(id string, now time.Time) *Conversation {
	return &Conversation{
		ID:        id,
		Version:   0,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (c *Conversation) Touch(now time.Time) {
	c.UpdatedAt = now.UTC()
}

/* ------------------------------ Message log ------------------------------ */

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is an append-only log entry. Route is set only on assistant
// messages; Sequence is monotonic per conversation and assigned on append.
type Message struct {
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Text           string    `json:"content"`
	Route          string    `json:"route,omitempty"`
	InputType      string    `json:"input_type,omitempty"`
	Sequence       int64     `json:"sequence"`
	CreatedAt      time.Time `json:"created_at"`
}
