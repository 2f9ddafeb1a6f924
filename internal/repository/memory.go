package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/set-night/rankbot/internal/domain"
)

// MemoryStore is the archive used when no DATABASE_URL is configured.
// Everything is lost on restart, which matches the default ownership model:
// session state lives with the process.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*memoryRow
}

type memoryRow struct {
	record  SessionRecord
	session domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, rows: make(map[int64]*memoryRow)}
}

func (s *MemoryStore) Save(_ context.Context, id, chatID int64, sess *domain.Session) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	row, ok := s.rows[id]
	if id == 0 || !ok {
		id = s.nextID
		s.nextID++
		row = &memoryRow{record: SessionRecord{ID: id, ChatID: chatID, CreatedAt: now}}
		s.rows[id] = row
	}

	row.record.RemoteID = sess.ID
	row.record.Title = sess.Title
	row.record.UpdatedAt = now
	row.record.Snippet = firstUserText(sess)
	row.session = snapshot(sess)
	return id, nil
}

func (s *MemoryStore) List(_ context.Context, chatID int64, limit, offset int) ([]SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []SessionRecord
	for _, row := range s.rows {
		if row.record.ChatID == chatID {
			records = append(records, row.record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	if offset >= len(records) {
		return nil, nil
	}
	records = records[offset:]
	if limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

func (s *MemoryStore) Count(_ context.Context, chatID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, row := range s.rows {
		if row.record.ChatID == chatID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Load(_ context.Context, id int64) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess := snapshot(&row.session)
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *MemoryStore) DeleteAll(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.rows {
		if row.record.ChatID == chatID {
			delete(s.rows, id)
		}
	}
	return nil
}

func snapshot(sess *domain.Session) domain.Session {
	copied := domain.Session{ID: sess.ID, Title: sess.Title}
	copied.Messages = append([]domain.Message(nil), sess.Messages...)
	return copied
}

func firstUserText(sess *domain.Session) string {
	for _, m := range sess.Messages {
		if m.Role == domain.RoleUser {
			return m.Text
		}
	}
	return ""
}
