package orchestrator

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/electromart/agenthub/agent/contract"
	routerx "github.com/electromart/agenthub/agent/router"
	statex "github.com/electromart/agenthub/agent/state"
)

type scriptedAgent struct {
	reply string
	err   error
	calls int
	reqs  []contractx.AgentRequest
}

func (a *scriptedAgent) Handle(ctx context.Context, req contractx.AgentRequest) (contractx.AgentResponse, error) {
	a.calls++
	a.reqs = append(a.reqs, req)
	if a.err != nil {
		return contractx.AgentResponse{}, a.err
	}
	return contractx.AgentResponse{Text: a.reply, Memory: req.Memory}, nil
}

// fakeRegistry serves the same agent for every route.
type fakeRegistry struct {
	agent contractx.Agent
}

func (r fakeRegistry) Sales() contractx.Agent     { return r.agent }
func (r fakeRegistry) Marketing() contractx.Agent { return r.agent }
func (r fakeRegistry) Support() contractx.Agent   { return r.agent }
func (r fakeRegistry) Orders() contractx.Agent    { return r.agent }
func (r fakeRegistry) Purchase() contractx.Agent  { return r.agent }

type failingStore struct {
	statex.Store
	saveErr error
}

func (s *failingStore) Save(ctx context.Context, conv *statex.Conversation) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, conv)
}

func newTestService(t *testing.T, store statex.Store, msgLog statex.MessageLog, agent contractx.Agent) *Service {
	t.Helper()
	svc, err := New(context.Background(), store, msgLog, routerx.New(nil, ""), fakeRegistry{agent: agent})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestHandleMessagePersistsOneTurn(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	agent := &scriptedAgent{reply: "Hi! How can I help?"}
	svc := newTestService(t, store, store, agent)

	resp, err := svc.HandleMessage(context.Background(), contractx.ChatRequest{
		ConversationID: "c1",
		Message:        "hello",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if resp.Route != contractx.RouteSales || resp.Response != "Hi! How can I help?" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	conv, msgs, err := svc.Conversation(context.Background(), "c1")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if conv.Version != 1 {
		t.Fatalf("expected one saved version, got %d", conv.Version)
	}
	if conv.Memory.LastRoute != string(contractx.RouteSales) {
		t.Fatalf("expected last route persisted, got %q", conv.Memory.LastRoute)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user+assistant messages, got %d", len(msgs))
	}
	if msgs[0].Role != statex.RoleUser || msgs[0].Sequence != 1 {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Role != statex.RoleAssistant || msgs[1].Route != string(contractx.RouteSales) {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}
}

func TestReplayReturnsRecordedResponse(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	agent := &scriptedAgent{reply: "first answer"}
	svc := newTestService(t, store, store, agent)

	req := contractx.ChatRequest{ConversationID: "c1", Message: "hello", Sequence: 7}

	first, err := svc.HandleMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	agent.reply = "second answer"
	second, err := svc.HandleMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if second != first {
		t.Fatalf("replay must return the recorded response: %+v vs %+v", second, first)
	}
	if agent.calls != 1 {
		t.Fatalf("duplicate must not re-run the agent, got %d calls", agent.calls)
	}

	_, msgs, err := svc.Conversation(context.Background(), "c1")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("duplicate must not append messages, got %d", len(msgs))
	}
}

func TestZeroSequenceIsNeverDeduplicated(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	agent := &scriptedAgent{reply: "ok"}
	svc := newTestService(t, store, store, agent)

	req := contractx.ChatRequest{ConversationID: "c1", Message: "hello"}
	for i := 0; i < 2; i++ {
		if _, err := svc.HandleMessage(context.Background(), req); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if agent.calls != 2 {
		t.Fatalf("expected both sends processed, got %d calls", agent.calls)
	}
}

func TestHandleMessageValidation(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	agent := &scriptedAgent{reply: "ok"}
	svc := newTestService(t, store, store, agent)

	cases := []contractx.ChatRequest{
		{ConversationID: "", Message: "hello"},
		{ConversationID: "c1", Message: "   "},
	}
	for _, req := range cases {
		if _, err := svc.HandleMessage(context.Background(), req); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("request %+v: expected validation error, got %v", req, err)
		}
	}
	if agent.calls != 0 {
		t.Fatalf("invalid requests must not reach agents, got %d calls", agent.calls)
	}
}

func TestPersistenceFailureIsFatal(t *testing.T) {
	t.Parallel()

	mem := statex.NewMemoryStore()
	store := &failingStore{Store: mem, saveErr: errors.New("disk full")}
	agent := &scriptedAgent{reply: "ok"}
	svc := newTestService(t, store, mem, agent)

	req := contractx.ChatRequest{ConversationID: "c1", Message: "hello", Sequence: 1}
	if _, err := svc.HandleMessage(context.Background(), req); err == nil {
		t.Fatalf("expected save failure to surface")
	}

	// A failed turn must not be cached as a replayable response.
	store.saveErr = nil
	resp, err := svc.HandleMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if resp.Response != "ok" {
		t.Fatalf("expected retry to run the turn, got %+v", resp)
	}
}

func TestAgentErrorSurfaces(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	agent := &scriptedAgent{err: errors.New("boom")}
	svc := newTestService(t, store, store, agent)

	if _, err := svc.HandleMessage(context.Background(), contractx.ChatRequest{
		ConversationID: "c1",
		Message:        "hello",
	}); err == nil {
		t.Fatalf("expected agent error to surface")
	}

	if _, _, err := svc.Conversation(context.Background(), "c1"); !errors.Is(err, statex.ErrNotFound) {
		t.Fatalf("failed turn must not persist the conversation, got %v", err)
	}
}

func TestHistoryFlowsIntoAgentRequests(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	agent := &scriptedAgent{reply: "noted"}
	svc := newTestService(t, store, store, agent)

	ctx := context.Background()
	if _, err := svc.HandleMessage(ctx, contractx.ChatRequest{ConversationID: "c1", Message: "hello"}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := svc.HandleMessage(ctx, contractx.ChatRequest{ConversationID: "c1", Message: "hi again"}); err != nil {
		t.Fatalf("second: %v", err)
	}

	if len(agent.reqs) != 2 {
		t.Fatalf("expected two agent calls, got %d", len(agent.reqs))
	}
	if len(agent.reqs[0].History) != 0 {
		t.Fatalf("first turn should see empty history, got %d", len(agent.reqs[0].History))
	}
	if len(agent.reqs[1].History) != 2 {
		t.Fatalf("second turn should see both prior messages, got %d", len(agent.reqs[1].History))
	}
	if agent.reqs[1].History[1].Role != contractx.RoleAssistant {
		t.Fatalf("expected assistant turn in history, got %+v", agent.reqs[1].History[1])
	}
}

func TestResetClearsConversation(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	agent := &scriptedAgent{reply: "ok"}
	svc := newTestService(t, store, store, agent)

	ctx := context.Background()
	if _, err := svc.HandleMessage(ctx, contractx.ChatRequest{ConversationID: "c1", Message: "hello"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := svc.Reset(ctx, "c1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := svc.Conversation(ctx, "c1"); !errors.Is(err, statex.ErrNotFound) {
		t.Fatalf("expected conversation gone, got %v", err)
	}
}
