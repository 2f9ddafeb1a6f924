// Package repository archives finished conversations. Live session state is
// owned by the bot process; the store is a write-through copy that lets
// /sessions list and reopen past conversations.
package repository

import (
	"context"
	"time"

	"github.com/set-night/rankbot/internal/domain"
)

// SessionRecord is the archive row for one conversation.
type SessionRecord struct {
	ID        int64
	ChatID    int64
	RemoteID  string
	Title     string
	Snippet   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionStore persists sessions keyed by the owning Telegram chat.
// Save with id 0 inserts and returns the new archive id; a non-zero id
// replaces that row's content wholesale.
type SessionStore interface {
	Save(ctx context.Context, id, chatID int64, sess *domain.Session) (int64, error)
	List(ctx context.Context, chatID int64, limit, offset int) ([]SessionRecord, error)
	Count(ctx context.Context, chatID int64) (int64, error)
	Load(ctx context.Context, id int64) (*domain.Session, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context, chatID int64) error
}
