package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("conversation not found")
	ErrNilConversation = errors.New("conversation is nil")
	ErrInvalidID       = errors.New("conversation id is empty")
	ErrVersionConflict = errors.New("conversation version conflict")
)

// Store persists the versioned conversation document. Save performs an
// optimistic version check: the caller passes the document it loaded, and the
// store rejects the write with ErrVersionConflict if a concurrent writer got
// there first.
type Store interface {
	Load(ctx context.Context, conversationID string) (*Conversation, error)
	Save(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, conversationID string) error
}

// MessageLog is the append-only per-conversation message history. Append
// assigns the next monotonic sequence number and stamps CreatedAt.
type MessageLog interface {
	Append(ctx context.Context, msg *Message) error
	List(ctx context.Context, conversationID string, limit int) ([]Message, error)
	Clear(ctx context.Context, conversationID string) error
}

/* ---------------------------- In-memory driver --------------------------- */

// MemoryStore keeps conversations and message logs in process memory. Used by
// tests and by offline single-process deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	convs    map[string]*Conversation
	messages map[string][]Message
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		convs:    make(map[string]*Conversation),
		messages: make(map[string][]Message),
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, conversationID string) (*Conversation, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneConversation(conv), nil
}

func (s *MemoryStore) Save(ctx context.Context, conv *Conversation) error {
	if conv == nil {
		return ErrNilConversation
	}
	if strings.TrimSpace(conv.ID) == "" {
		return ErrInvalidID
	}
	if err := conv.Memory.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.convs[conv.ID]
	if ok && stored.Version != conv.Version {
		return ErrVersionConflict
	}

	cp := cloneConversation(conv)
	cp.Version++
	cp.Touch(s.now())
	s.convs[conv.ID] = cp
	conv.Version = cp.Version
	conv.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, conversationID)
	delete(s.messages, conversationID)
	return nil
}

func (s *MemoryStore) Append(ctx context.Context, msg *Message) error {
	if msg == nil || strings.TrimSpace(msg.ConversationID) == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.messages[msg.ConversationID]
	msg.Sequence = int64(len(log)) + 1
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}
	s.messages[msg.ConversationID] = append(log, *msg)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.messages[conversationID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	return append([]Message(nil), log...), nil
}

func (s *MemoryStore) Clear(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, conversationID)
	return nil
}

func cloneConversation(conv *Conversation) *Conversation {
	cp := *conv
	cp.Memory = *conv.Memory.Clone()
	return &cp
}
