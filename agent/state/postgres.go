package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type conversationRow struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID string    `bun:"conversation_id,notnull,unique"`
	Version        int64     `bun:"version,notnull,default:0"`
	State          Memory    `bun:"state,type:jsonb"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
}

type messageRow struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID string    `bun:"conversation_id,notnull"`
	Role           string    `bun:"role,notnull"`
	Content        string    `bun:"content,notnull"`
	Route          string    `bun:"route,nullzero"`
	InputType      string    `bun:"input_type,nullzero"`
	Sequence       int64     `bun:"sequence,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

// PostgresStore is the durable Store and MessageLog driver. The memory
// document lives in a jsonb column on the conversation row, messages in an
// append-only table keyed by conversation id and sequence.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateTables creates the conversation and message tables if missing.
func (s *PostgresStore) CreateTables(ctx context.Context) error {
	for _, model := range []any{(*conversationRow)(nil), (*messageRow)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, conversationID string) (*Conversation, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidID
	}

	row := new(conversationRow)
	err := s.db.NewSelect().Model(row).
		Where("conversation_id = ?", conversationID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	conv := &Conversation{
		ID:        row.ConversationID,
		Version:   row.Version,
		Memory:    row.State,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := conv.Memory.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conversation loaded from postgres: %w", err)
	}
	return conv, nil
}

func (s *PostgresStore) Save(ctx context.Context, conv *Conversation) error {
	if conv == nil {
		return ErrNilConversation
	}
	if strings.TrimSpace(conv.ID) == "" {
		return ErrInvalidID
	}
	if err := conv.Memory.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if conv.Version == 0 {
		row := &conversationRow{
			ConversationID: conv.ID,
			Version:        1,
			State:          conv.Memory,
			CreatedAt:      conv.CreatedAt,
			UpdatedAt:      now,
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrVersionConflict, err)
		}
		conv.Version = 1
		conv.UpdatedAt = now
		return nil
	}

	res, err := s.db.NewUpdate().Model((*conversationRow)(nil)).
		Set("state = ?", conv.Memory).
		Set("version = version + 1").
		Set("updated_at = ?", now).
		Where("conversation_id = ?", conv.ID).
		Where("version = ?", conv.Version).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	conv.Version++
	conv.UpdatedAt = now
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrInvalidID
	}
	if _, err := s.db.NewDelete().Model((*messageRow)(nil)).
		Where("conversation_id = ?", conversationID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := s.db.NewDelete().Model((*conversationRow)(nil)).
		Where("conversation_id = ?", conversationID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

/* ------------------------------ Message log ------------------------------ */

func (s *PostgresStore) Append(ctx context.Context, msg *Message) error {
	if msg == nil || strings.TrimSpace(msg.ConversationID) == "" {
		return ErrInvalidID
	}

	var last int64
	err := s.db.NewSelect().Model((*messageRow)(nil)).
		ColumnExpr("COALESCE(MAX(sequence), 0)").
		Where("conversation_id = ?", msg.ConversationID).
		Scan(ctx, &last)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	msg.Sequence = last + 1
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	row := &messageRow{
		ConversationID: msg.ConversationID,
		Role:           string(msg.Role),
		Content:        msg.Text,
		Route:          msg.Route,
		InputType:      msg.InputType,
		Sequence:       msg.Sequence,
		CreatedAt:      msg.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidID
	}

	// With a limit the newest messages win, returned in ascending order.
	var rows []messageRow
	q := s.db.NewSelect().Model(&rows).
		Where("conversation_id = ?", conversationID)
	if limit > 0 {
		q = q.Order("sequence DESC").Limit(limit)
	} else {
		q = q.Order("sequence ASC")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if limit > 0 {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	out := make([]Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, Message{
			ConversationID: row.ConversationID,
			Role:           Role(row.Role),
			Text:           row.Content,
			Route:          row.Route,
			InputType:      row.InputType,
			Sequence:       row.Sequence,
			CreatedAt:      row.CreatedAt,
		})
	}
	return out, nil
}

func (s *PostgresStore) Clear(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrInvalidID
	}
	_, err := s.db.NewDelete().Model((*messageRow)(nil)).
		Where("conversation_id = ?", conversationID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}
