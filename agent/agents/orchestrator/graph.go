package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/electromart/agenthub/agent/contract"
	routerx "github.com/electromart/agenthub/agent/router"
	statex "github.com/electromart/agenthub/agent/state"
)

type turnState struct {
	Req     contractx.ChatRequest
	Conv    *statex.Conversation
	History []contractx.Turn
	Route   contractx.Route
	Reply   string
	Memory  *statex.Memory
}

// compileTurnGraph wires one message turn: validate and load state, route and
// dispatch to the owning agent, then persist. Persistence failures are fatal;
// a turn whose state cannot be saved must not return a response.
func compileTurnGraph(
	ctx context.Context,
	store statex.Store,
	msgLog statex.MessageLog,
	router *routerx.Router,
	registry contractx.Registry,
	historyLimit int,
	now func() time.Time,
) (compose.Runnable[contractx.ChatRequest, contractx.ChatResponse], error) {
	graph := compose.NewGraph[contractx.ChatRequest, contractx.ChatResponse]()

	if err := graph.AddLambdaNode("validate_and_load",
		compose.InvokableLambda(func(ctx context.Context, req contractx.ChatRequest) (*turnState, error) {
			if strings.TrimSpace(req.ConversationID) == "" {
				return nil, fmt.Errorf("%w: conversation_id is required", contractx.ErrValidation)
			}
			if strings.TrimSpace(req.Message) == "" {
				return nil, fmt.Errorf("%w: message is required", contractx.ErrValidation)
			}
			if req.InputType == "" {
				req.InputType = contractx.InputText
			}

			conv, err := store.Load(ctx, req.ConversationID)
			if errors.Is(err, statex.ErrNotFound) {
				conv = statex.NewConversation(req.ConversationID, now())
			} else if err != nil {
				return nil, fmt.Errorf("load conversation %s: %w", req.ConversationID, err)
			}

			msgs, err := msgLog.List(ctx, req.ConversationID, historyLimit)
			if err != nil {
				return nil, fmt.Errorf("list history %s: %w", req.ConversationID, err)
			}
			history := make([]contractx.Turn, 0, len(msgs))
			for _, m := range msgs {
				history = append(history, contractx.Turn{Role: string(m.Role), Text: m.Text})
			}

			return &turnState{Req: req, Conv: conv, History: history}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add validate node: %w", err)
	}

	if err := graph.AddLambdaNode("route_and_dispatch",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (*turnState, error) {
			if st == nil {
				return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}

			st.Route = router.Route(ctx, st.Req.Message, st.History, &st.Conv.Memory)

			agent, err := agentFor(registry, st.Route)
			if err != nil {
				return nil, err
			}

			resp, err := agent.Handle(ctx, contractx.AgentRequest{
				ConversationID: st.Req.ConversationID,
				Text:           st.Req.Message,
				History:        st.History,
				Memory:         st.Conv.Memory.Clone(),
			})
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", st.Route, err)
			}

			st.Reply = resp.Text
			st.Memory = resp.Memory
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add dispatch node: %w", err)
	}

	if err := graph.AddLambdaNode("persist",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (contractx.ChatResponse, error) {
			if st == nil {
				return contractx.ChatResponse{}, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}

			if err := msgLog.Append(ctx, &statex.Message{
				ConversationID: st.Req.ConversationID,
				Role:           statex.RoleUser,
				Text:           st.Req.Message,
				InputType:      string(st.Req.InputType),
			}); err != nil {
				return contractx.ChatResponse{}, fmt.Errorf("append user message: %w", err)
			}

			if st.Memory != nil {
				st.Conv.Memory = *st.Memory
			}
			st.Conv.Memory.LastRoute = string(st.Route)
			if err := store.Save(ctx, st.Conv); err != nil {
				return contractx.ChatResponse{}, fmt.Errorf("save conversation %s: %w", st.Req.ConversationID, err)
			}

			if err := msgLog.Append(ctx, &statex.Message{
				ConversationID: st.Req.ConversationID,
				Role:           statex.RoleAssistant,
				Text:           st.Reply,
				Route:          string(st.Route),
			}); err != nil {
				return contractx.ChatResponse{}, fmt.Errorf("append assistant message: %w", err)
			}

			return contractx.ChatResponse{Route: st.Route, Response: st.Reply}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add persist node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "validate_and_load"); err != nil {
		return nil, fmt.Errorf("add edge start->validate: %w", err)
	}
	if err := graph.AddEdge("validate_and_load", "route_and_dispatch"); err != nil {
		return nil, fmt.Errorf("add edge validate->dispatch: %w", err)
	}
	if err := graph.AddEdge("route_and_dispatch", "persist"); err != nil {
		return nil, fmt.Errorf("add edge dispatch->persist: %w", err)
	}
	if err := graph.AddEdge("persist", compose.END); err != nil {
		return nil, fmt.Errorf("add edge persist->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.turn_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}

func agentFor(registry contractx.Registry, route contractx.Route) (contractx.Agent, error) {
	switch route {
	case contractx.RouteSales:
		return registry.Sales(), nil
	case contractx.RouteMarketing:
		return registry.Marketing(), nil
	case contractx.RouteSupport:
		return registry.Support(), nil
	case contractx.RouteOrders:
		return registry.Orders(), nil
	case contractx.RoutePurchase:
		return registry.Purchase(), nil
	}
	return nil, fmt.Errorf("%w: unknown route %q", contractx.ErrValidation, route)
}
