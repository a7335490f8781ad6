// Package llm wraps the chat model behind the small contract.Completer
// interface so routing and agent code never touch SDK types directly.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/electromart/agenthub/agent/contract"
)

// New builds a completer for one route, with that route's model override
// applied. When the config carries no API key, the disabled completer is
// returned so callers degrade deterministically.
func New(ctx context.Context, cfg Config, route contractx.Route) (contractx.Completer, error) {
	if !cfg.Enabled() {
		return Disabled{}, nil
	}

	modelCfg := cfg.OpenAIFor(route)
	chatModel, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("llm: build chat model for %s: %w", route, err)
	}

	runner, err := compileCompleterGraph(ctx, chatModel, string(route))
	if err != nil {
		return nil, err
	}
	return &graphCompleter{runner: runner, timeout: modelCfg.Timeout}, nil
}

// NewFromModel wires a completer over an already-built chat model. Used by
// tests with a scripted model and by callers that share one model instance.
func NewFromModel(ctx context.Context, chatModel einomodel.BaseChatModel, name string) (contractx.Completer, error) {
	runner, err := compileCompleterGraph(ctx, chatModel, name)
	if err != nil {
		return nil, err
	}
	return &graphCompleter{runner: runner}, nil
}

func compileCompleterGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	name string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("llm: add prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("llm: add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("llm: add edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("llm: add edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("llm: add edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(name+".completer_graph"))
	if err != nil {
		return nil, fmt.Errorf("llm: compile completer graph: %w", err)
	}
	return runner, nil
}

type graphCompleter struct {
	runner  compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

func (c *graphCompleter) Complete(
	ctx context.Context,
	system string,
	history []contractx.Turn,
	user string,
) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msgs := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case contractx.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Text, nil))
		default:
			msgs = append(msgs, schema.UserMessage(turn.Text))
		}
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"system":  system,
		"history": msgs,
		"input":   user,
	})
	if err != nil {
		return "", fmt.Errorf("%w: completer invoke: %v", contractx.ErrModelInvoke, err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("%w: model returned empty content", contractx.ErrSchemaViolation)
	}
	return strings.TrimSpace(out.Content), nil
}
