package handlers

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
	toolx "github.com/electromart/agenthub/agent/tool"
)

// Orders handles tracking, shipping, and the return flow for existing
// orders. A return is created only once both an order id and a real reason
// are known; until then the flow stays pending in memory.
type Orders struct {
	tools     contractx.Tools
	completer contractx.Completer
	prompt    string
}

func NewOrders(tools contractx.Tools, completer contractx.Completer, prompt string) *Orders {
	return &Orders{tools: tools, completer: completer, prompt: prompt}
}

// Only these hints (or "because ...") count as a return reason. Anything
// else keeps the flow pending and re-asks.
var reasonHints = []string{
	"defect", "defective", "broken", "crack", "cracked", "damaged", "not working",
	"wrong item", "wrong product", "late", "delay", "changed my mind", "no longer need",
	"faulty", "missing", "incomplete", "problem", "issue",
	"screen", "battery", "overheat", "overheating",
}

var returnWords = []string{"return", "refund", "cancel", "exchange"}

var returnDetailQueries = []string{
	"tell me about it", "return details", "show details", "details of the return",
}

const askReasonReply = "What's the reason for the return? (e.g., damaged, wrong item, not working, changed mind)"

func hasReturnReason(text string) bool {
	t := strings.TrimSpace(strings.ToLower(text))
	if t == "" {
		return false
	}
	if strings.Contains(t, "because") {
		return true
	}
	return containsAny(t, reasonHints)
}

func itemLine(p *contractx.Product) string {
	if p == nil || p.Name == "" {
		return "Item details not available"
	}
	return fmt.Sprintf("%s (%s)", p.Name, formatLKR(p.Price))
}

func formatReturnInfo(info contractx.ReturnInfo) string {
	return fmt.Sprintf(
		"Return request **#%d** — **%s**.\nOrder: **%d**\nItem: **%s**\nReason: %s",
		info.ReturnRequestID, info.Status, info.OrderID, itemLine(info.Product), info.Reason,
	)
}

func formatReturnReceipt(r contractx.ReturnReceipt) string {
	if r.AlreadyExists {
		return fmt.Sprintf("You already have a return request: **#%d** (status: %s).", r.ReturnRequestID, r.Status)
	}
	return fmt.Sprintf("Return request created: **#%d** (status: %s).", r.ReturnRequestID, r.Status)
}

func (a *Orders) Handle(ctx context.Context, req contractx.AgentRequest) (contractx.AgentResponse, error) {
	mem := req.Memory
	msg := req.Text
	lower := strings.ToLower(msg)

	// Return-request lookup ("tell me about request 1").
	if rrID := toolx.ExtractReturnRequestID(msg); rrID != 0 {
		return a.lookupReturn(ctx, mem, rrID)
	}
	if containsAny(lower, returnDetailQueries) && mem.LastReturnRequestID != 0 {
		return a.lookupReturn(ctx, mem, mem.LastReturnRequestID)
	}

	orderID := toolx.ExtractOrderID(msg)
	if orderID == 0 {
		orderID = mem.LastOrderID
	}
	if orderID != 0 {
		mem.LastOrderID = orderID
	}

	wantsReturn := containsAny(lower, returnWords)

	// Asking to return with no reason starts the pending flow.
	if wantsReturn && !hasReturnReason(msg) {
		mem.ReturnPending = true
		mem.ActiveFlow = statex.FlowReturn
		if orderID != 0 {
			return contractx.AgentResponse{
				Text:   fmt.Sprintf("Please provide a reason for returning order **%d** (e.g., damaged, wrong item, not working, changed mind).", orderID),
				Memory: mem,
			}, nil
		}
		return contractx.AgentResponse{
			Text:   "Please provide your order ID and the reason for the return (e.g., Order 101 — damaged).",
			Memory: mem,
		}, nil
	}

	// Mid-flow: the message should be the reason.
	if mem.ReturnPending && !wantsReturn {
		if id := toolx.ExtractOrderID(msg); id != 0 && len(strings.Fields(msg)) <= 3 {
			mem.LastOrderID = id
			return contractx.AgentResponse{
				Text:   "Got it — what's the reason for the return? (e.g., damaged, wrong item, not working, changed mind)",
				Memory: mem,
			}, nil
		}
		if !hasReturnReason(msg) {
			return contractx.AgentResponse{Text: askReasonReply, Memory: mem}, nil
		}

		reason := strings.TrimSpace(msg)
		if reason == "" {
			reason = "Customer requested return"
		}
		if mem.LastOrderID == 0 {
			return contractx.AgentResponse{
				Text:   "Please provide your order ID to proceed with the return.",
				Memory: mem,
			}, nil
		}
		return a.createReturn(ctx, mem, mem.LastOrderID, truncate(reason, 200), msg)
	}

	// Fetch order context.
	var orderInfo contractx.OrderInfo
	if orderID != 0 {
		info, err := a.tools.OrderStatus(ctx, orderID)
		if err != nil {
			return contractx.AgentResponse{
				Text:   "I couldn't look up that order right now. Please try again in a moment.",
				Memory: mem,
			}, nil
		}
		orderInfo = info
	} else {
		orderInfo = contractx.OrderInfo{NeedOrderID: true}
	}
	if orderInfo.Found {
		mem.LastOrderID = orderInfo.OrderID
	}

	faqs, err := a.tools.SearchFAQ(ctx, msg, 4)
	if err != nil {
		faqs = nil
	}

	if text, done := a.completeGuarded(ctx, req, mem, orderInfo, faqs, wantsReturn); done {
		return contractx.AgentResponse{Text: text, Memory: mem}, nil
	}

	// Deterministic path.
	if orderInfo.NeedOrderID {
		return contractx.AgentResponse{
			Text:   "Please share your order number (e.g., Order 101).",
			Memory: mem,
		}, nil
	}
	if !orderInfo.Found {
		return contractx.AgentResponse{
			Text:   fmt.Sprintf("I couldn't find order %d. Please double-check the number.", orderID),
			Memory: mem,
		}, nil
	}

	if wantsReturn && hasReturnReason(msg) {
		return a.createReturn(ctx, mem, orderInfo.OrderID, truncate(msg, 200), msg)
	}

	tracking := orderInfo.TrackingNumber
	if tracking == "" {
		tracking = "N/A"
	}
	return contractx.AgentResponse{
		Text: fmt.Sprintf("Order **%d** is **%s**.\nItem: **%s**\nTracking: %s",
			orderInfo.OrderID, orderInfo.Status, itemLine(orderInfo.Product), tracking),
		Memory: mem,
	}, nil
}

func (a *Orders) lookupReturn(ctx context.Context, mem *statex.Memory, rrID int64) (contractx.AgentResponse, error) {
	info, err := a.tools.ReturnRequest(ctx, rrID)
	if err != nil {
		return contractx.AgentResponse{
			Text:   "I couldn't look up that return request right now. Please try again in a moment.",
			Memory: mem,
		}, nil
	}
	if !info.Found {
		return contractx.AgentResponse{
			Text:   fmt.Sprintf("I couldn't find return request **#%d**.", rrID),
			Memory: mem,
		}, nil
	}

	mem.LastReturnRequestID = info.ReturnRequestID
	return contractx.AgentResponse{Text: formatReturnInfo(info), Memory: mem}, nil
}

func (a *Orders) createReturn(ctx context.Context, mem *statex.Memory, orderID int64, reason, notes string) (contractx.AgentResponse, error) {
	receipt, err := a.tools.CreateReturnRequest(ctx, orderID, reason, notes)
	if err != nil {
		return contractx.AgentResponse{
			Text:   "I couldn't create the return request right now. Please try again in a moment.",
			Memory: mem,
		}, nil
	}

	mem.ReturnPending = false
	mem.ActiveFlow = statex.FlowNone
	mem.LastReturnRequestID = receipt.ReturnRequestID
	return contractx.AgentResponse{Text: formatReturnReceipt(receipt), Memory: mem}, nil
}

func (a *Orders) completeGuarded(
	ctx context.Context,
	req contractx.AgentRequest,
	mem *statex.Memory,
	orderInfo contractx.OrderInfo,
	faqs []contractx.FAQEntry,
	wantsReturn bool,
) (string, bool) {
	if a.completer == nil {
		return "", false
	}

	faqContext := "(no FAQ matches)"
	if len(faqs) > 0 {
		lines := make([]string, 0, len(faqs))
		for _, f := range faqs {
			lines = append(lines, fmt.Sprintf("- Q: %s A: %s", f.Question, f.Answer))
		}
		faqContext = strings.Join(lines, "\n")
	}

	orderContext := "(no order resolved)"
	if orderInfo.Found {
		orderContext = fmt.Sprintf("order_id=%d status=%s tracking=%s item=%s",
			orderInfo.OrderID, orderInfo.Status, orderInfo.TrackingNumber, itemLine(orderInfo.Product))
	} else if !orderInfo.NeedOrderID {
		orderContext = fmt.Sprintf("order_id=%d not found", orderInfo.OrderID)
	}

	user := fmt.Sprintf(
		"User: %s\n"+
			"Order: %s\n"+
			"FAQ context:\n%s\n"+
			"wants_return=%t return_pending=%t\n\n"+
			"If you want to create a return, reply with: CREATE_RETURN: <reason>\n"+
			"Only output CREATE_RETURN if:\n"+
			"- the order was found, AND\n"+
			"- the user message contains a real reason (keywords or 'because ...') OR return_pending=true and the message is a reason.\n"+
			"Otherwise, ask for the missing info (order id and/or reason).",
		req.Text, orderContext, faqContext, wantsReturn, mem.ReturnPending,
	)

	out, err := a.completer.Complete(ctx, a.prompt, req.History, user)
	if err != nil || strings.TrimSpace(out) == "" {
		return "", false
	}
	text := strings.TrimSpace(out)

	if strings.HasPrefix(text, "CREATE_RETURN:") {
		// Hard gate: ignore a directive the user never asked for.
		if !wantsReturn && !mem.ReturnPending {
			return "", false
		}
		if orderInfo.NeedOrderID {
			mem.ReturnPending = true
			mem.ActiveFlow = statex.FlowReturn
			return "Please provide your order ID to proceed with the return.", true
		}
		if !orderInfo.Found {
			return fmt.Sprintf("I couldn't find order %d. Please double-check the number.", orderInfo.OrderID), true
		}

		reason := strings.TrimSpace(strings.TrimPrefix(text, "CREATE_RETURN:"))
		if reason == "" || !hasReturnReason(reason) {
			mem.ReturnPending = true
			mem.ActiveFlow = statex.FlowReturn
			return askReasonReply, true
		}

		resp, _ := a.createReturn(ctx, mem, orderInfo.OrderID, truncate(reason, 200), req.Text)
		return resp.Text, true
	}

	return text, true
}
