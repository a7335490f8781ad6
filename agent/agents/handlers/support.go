package handlers

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
	toolx "github.com/electromart/agenthub/agent/tool"
)

// Support handles troubleshooting, warranty questions, and support tickets.
// Ticket creation is gated twice: the deterministic path requires an explicit
// request or a confirmed offer, and the model path may only emit a
// CREATE_TICKET directive under the same conditions.
type Support struct {
	tools     contractx.Tools
	completer contractx.Completer
	prompt    string
}

func NewSupport(tools contractx.Tools, completer contractx.Completer, prompt string) *Support {
	return &Support{tools: tools, completer: completer, prompt: prompt}
}

var yesWords = map[string]struct{}{
	"yes": {}, "y": {}, "yeah": {}, "yep": {}, "ok": {}, "okay": {},
	"sure": {}, "please": {}, "go ahead": {}, "do it": {},
}

var ticketTriggers = []string{
	"support ticket", "create ticket", "open ticket", "raise ticket",
	"create a ticket", "open a ticket", "raise a ticket",
	"log a ticket", "make a ticket",
	"contact support", "talk to support", "agent", "representative",
}

var newTicketTriggers = []string{
	"new ticket", "another ticket", "different ticket", "open a new", "create a new",
}

var ticketIDQueries = []string{
	"ticket number", "ticket id", "reference number", "my ticket",
	"what's the ticket", "whats the ticket", "ticket status", "status of my ticket",
}

func wantsTicket(lower string) bool {
	for _, t := range ticketTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func wantsNewTicket(lower string) bool {
	for _, t := range newTicketTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func isYes(text string) bool {
	_, ok := yesWords[strings.TrimSpace(strings.ToLower(text))]
	return ok
}

const ticketOfferReply = "What's the exact model and what happens when you try to use it " +
	"(won't turn on, screen issue, battery, overheating, etc.)?\n" +
	"If you want, I can open a support ticket — reply **yes**."

func (a *Support) Handle(ctx context.Context, req contractx.AgentRequest) (contractx.AgentResponse, error) {
	mem := req.Memory
	msg := req.Text
	lower := strings.ToLower(msg)

	faqs, err := a.tools.SearchFAQ(ctx, msg, 4)
	if err != nil {
		faqs = nil
	}

	// Ticket id queries answer from memory; nothing new is created.
	if mem.SupportTicketID != 0 && containsAny(lower, ticketIDQueries) {
		return contractx.AgentResponse{
			Text:   fmt.Sprintf("Your support ticket number is **#%d**.", mem.SupportTicketID),
			Memory: mem,
		}, nil
	}

	askedNew := wantsNewTicket(lower)
	asked := wantsTicket(lower) || askedNew
	confirmed := mem.TicketPending && isYes(msg)

	if mem.SupportTicketID != 0 {
		if asked && !askedNew {
			return contractx.AgentResponse{
				Text:   fmt.Sprintf("A support ticket is already open for this issue: **#%d**.", mem.SupportTicketID),
				Memory: mem,
			}, nil
		}
		if askedNew {
			mem.SupportTicketID = 0
		}
	}

	if text, done := a.completeGuarded(ctx, req, mem, faqs, asked, confirmed); done {
		return contractx.AgentResponse{Text: text, Memory: mem}, nil
	}

	// Deterministic path.
	if asked || confirmed {
		return a.openTicket(ctx, mem, "Technical issue", msg, msg)
	}

	mem.TicketPending = true
	mem.ActiveFlow = statex.FlowTicket
	if len(faqs) > 0 {
		steps := make([]string, 0, 2)
		for i, f := range faqs {
			if i >= 2 {
				break
			}
			steps = append(steps, "- "+f.Answer)
		}
		return contractx.AgentResponse{
			Text: "Try these steps:\n" + strings.Join(steps, "\n") +
				"\n\nIf this doesn't help, want me to open a support ticket? (yes/no)",
			Memory: mem,
		}, nil
	}
	return contractx.AgentResponse{Text: ticketOfferReply, Memory: mem}, nil
}

func (a *Support) openTicket(ctx context.Context, mem *statex.Memory, issue, details, message string) (contractx.AgentResponse, error) {
	orderID := toolx.ExtractOrderID(message)
	if orderID == 0 {
		orderID = mem.LastOrderID
	}

	receipt, err := a.tools.CreateTicket(ctx, issue, details, orderID)
	if err != nil {
		return contractx.AgentResponse{
			Text:   "I couldn't open a ticket right now. Please try again in a moment.",
			Memory: mem,
		}, nil
	}

	mem.SupportTicketID = receipt.TicketID
	mem.TicketPending = false
	mem.ActiveFlow = statex.FlowNone
	mem.LastIssue = issue
	if orderID != 0 {
		mem.LastOrderID = orderID
	}

	return contractx.AgentResponse{
		Text:   fmt.Sprintf("I opened a support ticket for you: **#%d**.", receipt.TicketID),
		Memory: mem,
	}, nil
}

// completeGuarded runs the model path. The returned bool is true when the
// model produced a usable reply (directive or plain text); false falls back
// to the deterministic path.
func (a *Support) completeGuarded(
	ctx context.Context,
	req contractx.AgentRequest,
	mem *statex.Memory,
	faqs []contractx.FAQEntry,
	asked, confirmed bool,
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

	user := fmt.Sprintf(
		"User: %s\n"+
			"FAQ context:\n%s\n"+
			"wants_ticket=%t ticket_pending=%t has_existing_ticket=%t\n\n"+
			"Rules:\n"+
			"- Only create a ticket if wants_ticket=true OR ticket_pending=true and the user confirms (yes/ok/sure).\n"+
			"- If has_existing_ticket=true, do NOT create a new one unless the user asks for a NEW/ANOTHER ticket.\n"+
			"- Otherwise, give troubleshooting and ask 1-2 necessary questions.\n"+
			"If you create a ticket, reply with: CREATE_TICKET: <issue>|<details>",
		req.Text, faqContext, asked, mem.TicketPending, mem.SupportTicketID != 0,
	)

	out, err := a.completer.Complete(ctx, a.prompt, req.History, user)
	if err != nil || strings.TrimSpace(out) == "" {
		return "", false
	}
	text := strings.TrimSpace(out)

	allowed := asked || confirmed
	if strings.HasPrefix(text, "CREATE_TICKET:") {
		// Hard gate: a directive the user never asked for becomes an offer.
		if !allowed {
			mem.TicketPending = true
			mem.ActiveFlow = statex.FlowTicket
			return "Got it. " + ticketOfferReply, true
		}

		payload := strings.TrimSpace(strings.TrimPrefix(text, "CREATE_TICKET:"))
		issue, details, _ := strings.Cut(payload, "|")
		issue = strings.TrimSpace(issue)
		details = strings.TrimSpace(details)
		if issue == "" {
			issue = "Support request"
		}
		if details == "" {
			details = req.Text
		}

		resp, _ := a.openTicket(ctx, mem, issue, details, req.Text)
		return resp.Text, true
	}

	// Keep the offer pending when the model asked about opening a ticket.
	lowerText := strings.ToLower(text)
	if containsAny(lowerText, []string{"want me to open", "open a support ticket", "create a ticket", "raise a ticket"}) {
		mem.TicketPending = true
		mem.ActiveFlow = statex.FlowTicket
	}
	return text, true
}

func containsAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
