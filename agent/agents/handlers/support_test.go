package handlers

import (
	"context"
	"testing"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
)

func supportStep(t *testing.T, agent *Support, mem *statex.Memory, text string) (contractx.AgentResponse, *statex.Memory) {
	t.Helper()
	resp, err := agent.Handle(context.Background(), contractx.AgentRequest{
		ConversationID: "c1",
		Text:           text,
		Memory:         mem,
	})
	if err != nil {
		t.Fatalf("handle %q: %v", text, err)
	}
	return resp, resp.Memory
}

func TestSupportOffersTicketThenCreatesOnYes(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{
		faqs: []contractx.FAQEntry{
			{Question: "TV won't turn on", Answer: "Check the power cable and wall socket."},
		},
	}
	agent := NewSupport(tools, nil, "")
	mem := &statex.Memory{}

	resp, mem := supportStep(t, agent, mem, "my tv is not working")
	if !mem.TicketPending {
		t.Fatalf("expected pending ticket offer")
	}
	if len(tools.ticketsMade) != 0 {
		t.Fatalf("troubleshooting must not create a ticket")
	}
	if !containsText(resp.Text, "Check the power cable") {
		t.Fatalf("expected FAQ steps in reply, got %q", resp.Text)
	}

	resp, mem = supportStep(t, agent, mem, "yes")
	if len(tools.ticketsMade) != 1 {
		t.Fatalf("expected one ticket after confirmation, got %d", len(tools.ticketsMade))
	}
	if mem.TicketPending {
		t.Fatalf("expected pending flag cleared")
	}
	if mem.SupportTicketID == 0 {
		t.Fatalf("expected ticket id recorded in memory")
	}
	if !containsText(resp.Text, "support ticket") {
		t.Fatalf("expected ticket confirmation, got %q", resp.Text)
	}
}

func TestSupportExplicitRequestCreatesTicket(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{}
	agent := NewSupport(tools, nil, "")
	mem := &statex.Memory{LastOrderID: 101}

	_, mem = supportStep(t, agent, mem, "please open a support ticket for my broken screen")
	if len(tools.ticketsMade) != 1 {
		t.Fatalf("expected ticket created on explicit request")
	}
	if mem.SupportTicketID == 0 {
		t.Fatalf("expected ticket id recorded")
	}
}

func TestSupportExistingTicketNotDuplicated(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{}
	agent := NewSupport(tools, nil, "")
	mem := &statex.Memory{SupportTicketID: 42}

	resp, mem := supportStep(t, agent, mem, "open a support ticket")
	if len(tools.ticketsMade) != 0 {
		t.Fatalf("existing ticket must not be duplicated")
	}
	if !containsText(resp.Text, "#42") {
		t.Fatalf("expected existing ticket id in reply, got %q", resp.Text)
	}

	_, _ = supportStep(t, agent, mem, "please open a new ticket, this is another issue")
	if len(tools.ticketsMade) != 1 {
		t.Fatalf("explicit new-ticket request should create one, got %d", len(tools.ticketsMade))
	}
}

func TestSupportTicketIDQueryAnswersFromMemory(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{}
	agent := NewSupport(tools, nil, "")
	mem := &statex.Memory{SupportTicketID: 42}

	resp, _ := supportStep(t, agent, mem, "what's the ticket number?")
	if !containsText(resp.Text, "#42") {
		t.Fatalf("expected ticket number from memory, got %q", resp.Text)
	}
	if len(tools.ticketsMade) != 0 {
		t.Fatalf("a status query must not create tickets")
	}
}

func TestSupportModelDirectiveHardGate(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{}
	completer := &fakeCompleter{out: "CREATE_TICKET: Broken TV|It never turns on"}
	agent := NewSupport(tools, completer, "sys")
	mem := &statex.Memory{}

	// The user only described a problem; the model tried to create a
	// ticket anyway. The directive must be suppressed into an offer.
	resp, mem := supportStep(t, agent, mem, "my tv is acting weird")
	if len(tools.ticketsMade) != 0 {
		t.Fatalf("ungated directive must not create a ticket")
	}
	if !mem.TicketPending {
		t.Fatalf("expected suppressed directive to leave a pending offer")
	}
	if !containsText(resp.Text, "reply **yes**") {
		t.Fatalf("expected ticket offer, got %q", resp.Text)
	}

	// After confirmation the same directive is allowed through.
	_, mem = supportStep(t, agent, mem, "yes")
	if len(tools.ticketsMade) != 1 {
		t.Fatalf("confirmed directive should create exactly one ticket, got %d", len(tools.ticketsMade))
	}
	if tools.ticketsMade[0] != "Broken TV" {
		t.Fatalf("expected issue from directive payload, got %q", tools.ticketsMade[0])
	}
}

func TestSupportModelFailureFallsBackDeterministically(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{}
	completer := &fakeCompleter{err: errCapability}
	agent := NewSupport(tools, completer, "sys")
	mem := &statex.Memory{}

	resp, mem := supportStep(t, agent, mem, "my phone battery drains fast")
	if completer.calls != 1 {
		t.Fatalf("expected one model attempt, got %d", completer.calls)
	}
	if !mem.TicketPending || !containsText(resp.Text, "reply **yes**") {
		t.Fatalf("expected deterministic offer on model failure, got %q", resp.Text)
	}
}
