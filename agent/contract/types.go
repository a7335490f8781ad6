package contract

import "time"

// Route identifies which agent owns a message. Every assistant message
// carries the route it was produced by.
type Route string

const (
	RouteSales     Route = "sales"
	RouteMarketing Route = "marketing"
	RouteSupport   Route = "support"
	RouteOrders    Route = "orders"
	RoutePurchase  Route = "purchase"
)

// Routes is the closed label set, in declaration order.
var Routes = []Route{RouteSales, RouteMarketing, RouteSupport, RouteOrders, RoutePurchase}

func ValidRoute(label string) (Route, bool) {
	for _, r := range Routes {
		if string(r) == label {
			return r, true
		}
	}
	return "", false
}

type InputType string

const (
	InputText  InputType = "text"
	InputVoice InputType = "voice"
)

type ChatRequest struct {
	ConversationID string    `json:"conversation_id"`
	Message        string    `json:"message"`
	InputType      InputType `json:"input_type"`

	// Sequence is optional. When set, replaying the same
	// (conversation_id, sequence) pair returns the recorded response
	// instead of processing the message again.
	Sequence int64 `json:"sequence,omitempty"`
}

type ChatResponse struct {
	Route    Route  `json:"route"`
	Response string `json:"response"`
}

// Turn is one prior message handed to an LLM capability as context.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

/* ------------------------------ Domain data ------------------------------ */

type Product struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	InStock     bool    `json:"in_stock"`
}

type Promotion struct {
	Title           string    `json:"title"`
	Details         string    `json:"details"`
	DiscountPercent float64   `json:"discount_percent"`
	ValidUntil      time.Time `json:"valid_until"`
}

// OrderInfo is the order-lookup tool result. Found=false with
// NeedOrderID=true means no id could be resolved from the request.
type OrderInfo struct {
	Found          bool      `json:"found"`
	NeedOrderID    bool      `json:"need_order_id,omitempty"`
	OrderID        int64     `json:"order_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	TotalAmount    float64   `json:"total_amount,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
	Product        *Product  `json:"product,omitempty"`
}

type ReturnReceipt struct {
	ReturnRequestID int64     `json:"return_request_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	AlreadyExists   bool      `json:"already_exists"`
}

type ReturnInfo struct {
	Found           bool     `json:"found"`
	ReturnRequestID int64    `json:"return_request_id"`
	Status          string   `json:"status,omitempty"`
	Reason          string   `json:"reason,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	OrderID         int64    `json:"order_id,omitempty"`
	OrderStatus     string   `json:"order_status,omitempty"`
	TrackingNumber  string   `json:"tracking_number,omitempty"`
	Product         *Product `json:"product,omitempty"`
}

type TicketReceipt struct {
	TicketID  int64     `json:"ticket_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Lead struct {
	ConversationID string `json:"conversation_id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Interest       string `json:"interest,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type LeadReceipt struct {
	LeadID    int64     `json:"lead_id"`
	CreatedAt time.Time `json:"created_at"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
