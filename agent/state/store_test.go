package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSaveIncrementsVersion(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	conv := NewConversation("c1", time.Now())
	if err := s.Save(ctx, conv); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if conv.Version != 1 {
		t.Fatalf("expected version 1 after first save, got %d", conv.Version)
	}

	loaded, err := s.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Memory.LastOrderID = 101
	if err := s.Save(ctx, loaded); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if loaded.Version != 2 {
		t.Fatalf("expected version 2, got %d", loaded.Version)
	}
}

func TestMemoryStoreVersionConflict(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	conv := NewConversation("c1", time.Now())
	if err := s.Save(ctx, conv); err != nil {
		t.Fatalf("save: %v", err)
	}

	a, _ := s.Load(ctx, "c1")
	b, _ := s.Load(ctx, "c1")

	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("first writer: %v", err)
	}
	if err := s.Save(ctx, b); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict for stale writer, got %v", err)
	}
}

func TestMemoryStoreRejectsInvalidMemory(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	conv := NewConversation("c1", time.Now())
	conv.Memory.ActiveFlow = FlowPurchase // no buy_flow backing it

	if err := s.Save(context.Background(), conv); !errors.Is(err, ErrInvalidMemory) {
		t.Fatalf("expected ErrInvalidMemory, got %v", err)
	}
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Load(context.Background(), " "); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestMessageLogSequencing(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		msg := &Message{ConversationID: "c1", Role: RoleUser, Text: "hi"}
		if err := s.Append(ctx, msg); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if msg.Sequence != int64(i)+1 {
			t.Fatalf("expected sequence %d, got %d", i+1, msg.Sequence)
		}
		if msg.CreatedAt.IsZero() {
			t.Fatalf("expected CreatedAt stamped")
		}
	}

	all, err := s.List(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}

	tail, err := s.List(ctx, "c1", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(tail) != 2 || tail[0].Sequence != 2 {
		t.Fatalf("expected last 2 messages, got %+v", tail)
	}
}

func TestDeleteClearsBothSides(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	conv := NewConversation("c1", time.Now())
	if err := s.Save(ctx, conv); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Append(ctx, &Message{ConversationID: "c1", Role: RoleUser, Text: "hi"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected conversation gone, got %v", err)
	}
	msgs, _ := s.List(ctx, "c1", 0)
	if len(msgs) != 0 {
		t.Fatalf("expected message log cleared, got %d entries", len(msgs))
	}
}
