// Package orchestrator owns the message lifecycle: it serializes turns per
// conversation, runs the routing graph, and guarantees exactly one persisted
// response per accepted message.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	contractx "github.com/electromart/agenthub/agent/contract"
	routerx "github.com/electromart/agenthub/agent/router"
	statex "github.com/electromart/agenthub/agent/state"
)

const (
	defaultHistoryLimit = 20
	replayCacheSize     = 4096
)

type replayKey struct {
	ConversationID string
	Sequence       int64
}

type Service struct {
	store  statex.Store
	msgLog statex.MessageLog
	runner compose.Runnable[contractx.ChatRequest, contractx.ChatResponse]

	replay *lru.Cache[replayKey, contractx.ChatResponse]

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(
	ctx context.Context,
	store statex.Store,
	msgLog statex.MessageLog,
	router *routerx.Router,
	registry contractx.Registry,
) (*Service, error) {
	runner, err := compileTurnGraph(ctx, store, msgLog, router, registry, defaultHistoryLimit, time.Now)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	replay, err := lru.New[replayKey, contractx.ChatResponse](replayCacheSize)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: replay cache: %w", err)
	}

	return &Service{
		store:  store,
		msgLog: msgLog,
		runner: runner,
		replay: replay,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// HandleMessage processes one inbound message and returns exactly one
// response. Turns within a conversation are serialized; a replayed
// (conversation_id, sequence) pair returns the recorded response without
// running the turn again.
func (s *Service) HandleMessage(ctx context.Context, req contractx.ChatRequest) (contractx.ChatResponse, error) {
	key := replayKey{ConversationID: req.ConversationID, Sequence: req.Sequence}
	if req.Sequence > 0 {
		if cached, ok := s.replay.Get(key); ok {
			log.Debug().
				Str("conversation_id", req.ConversationID).
				Int64("sequence", req.Sequence).
				Msg("orchestrator: replayed response")
			return cached, nil
		}
	}

	lock := s.lockFor(req.ConversationID)
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the lock: a concurrent duplicate may have landed first.
	if req.Sequence > 0 {
		if cached, ok := s.replay.Get(key); ok {
			return cached, nil
		}
	}

	resp, err := s.runner.Invoke(ctx, req)
	if err != nil {
		return contractx.ChatResponse{}, err
	}

	if req.Sequence > 0 {
		s.replay.Add(key, resp)
	}
	return resp, nil
}

// Conversation returns the stored document and message history.
func (s *Service) Conversation(ctx context.Context, conversationID string) (*statex.Conversation, []statex.Message, error) {
	conv, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.msgLog.List(ctx, conversationID, 0)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

// Reset deletes the conversation document and its message log.
func (s *Service) Reset(ctx context.Context, conversationID string) error {
	if err := s.store.Delete(ctx, conversationID); err != nil {
		return err
	}
	return s.msgLog.Clear(ctx, conversationID)
}

func (s *Service) lockFor(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	return lock
}
