package chatstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps transcripts in process memory. It is the default
// driver and is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Message
	limit    int
	now      func() time.Time
}

// NewMemoryStore builds an empty store. Load returns at most limit
// messages when limit is positive.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]Message),
		limit:    limit,
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, msg *Message) error {
	if err := checkMessage(msg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uuid.NewString()
	msg.CreatedAt = s.now().UTC()
	s.sessions[msg.SessionID] = append(s.sessions[msg.SessionID], *msg)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) ([]Message, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := tail(s.sessions[sessionID], s.limit)
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
