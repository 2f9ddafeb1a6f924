package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/set-night/rankbot/internal/domain"
	"github.com/set-night/rankbot/internal/repository"
)

// SessionService owns the live session of each Telegram chat and mirrors it
// into the archive after every finished turn. Live state is authoritative;
// the archive exists so /sessions can list and reopen conversations.
type SessionService struct {
	store repository.SessionStore

	mu       sync.Mutex
	active   map[int64]*domain.Session
	archived map[int64]int64 // chat id -> archive id of the active session
	inFlight map[int64]bool
}

func NewSessionService(store repository.SessionStore) *SessionService {
	return &SessionService{
		store:    store,
		active:   make(map[int64]*domain.Session),
		archived: make(map[int64]int64),
		inFlight: make(map[int64]bool),
	}
}

// Active returns the chat's live session, creating an empty one if needed.
func (s *SessionService) Active(chatID int64) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[chatID]
	if !ok {
		sess = &domain.Session{}
		s.active[chatID] = sess
	}
	return sess
}

// Reset discards the live session and starts a fresh one.
func (s *SessionService) Reset(chatID int64) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &domain.Session{}
	s.active[chatID] = sess
	delete(s.archived, chatID)
	return sess
}

// TryBegin takes the advisory one-turn-per-chat lock. It does not guarantee
// atomicity against the backend; it only stops the surface from submitting a
// second turn while one is in flight.
func (s *SessionService) TryBegin(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[chatID] {
		return false
	}
	s.inFlight[chatID] = true
	return true
}

func (s *SessionService) End(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, chatID)
}

// Archive mirrors the live session into the store. Failures are logged, not
// propagated: the turn already committed in memory and archiving is best
// effort.
func (s *SessionService) Archive(ctx context.Context, chatID int64, sess *domain.Session) {
	if len(sess.Messages) == 0 {
		return
	}

	s.mu.Lock()
	id := s.archived[chatID]
	s.mu.Unlock()

	newID, err := s.store.Save(ctx, id, chatID, sess)
	if err != nil {
		slog.Error("archive session", "error", err, "chat_id", chatID)
		return
	}

	s.mu.Lock()
	if s.active[chatID] == sess {
		s.archived[chatID] = newID
	}
	s.mu.Unlock()
}

// Open loads an archived session and makes it the chat's live one.
func (s *SessionService) Open(ctx context.Context, chatID, archiveID int64) (*domain.Session, error) {
	sess, err := s.store.Load(ctx, archiveID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	s.mu.Lock()
	s.active[chatID] = sess
	s.archived[chatID] = archiveID
	s.mu.Unlock()
	return sess, nil
}

func (s *SessionService) List(ctx context.Context, chatID int64, limit, offset int) ([]repository.SessionRecord, error) {
	return s.store.List(ctx, chatID, limit, offset)
}

func (s *SessionService) Count(ctx context.Context, chatID int64) (int64, error) {
	return s.store.Count(ctx, chatID)
}

// Delete removes an archived session; if it is the live one, the chat starts
// over with an empty session.
func (s *SessionService) Delete(ctx context.Context, chatID, archiveID int64) error {
	if err := s.store.Delete(ctx, archiveID); err != nil {
		return err
	}

	s.mu.Lock()
	if s.archived[chatID] == archiveID {
		s.active[chatID] = &domain.Session{}
		delete(s.archived, chatID)
	}
	s.mu.Unlock()
	return nil
}

func (s *SessionService) DeleteAll(ctx context.Context, chatID int64) error {
	if err := s.store.DeleteAll(ctx, chatID); err != nil {
		return err
	}

	s.mu.Lock()
	s.active[chatID] = &domain.Session{}
	delete(s.archived, chatID)
	s.mu.Unlock()
	return nil
}

// ArchiveID reports the archive row backing the chat's live session, 0 if none.
func (s *SessionService) ArchiveID(chatID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archived[chatID]
}
