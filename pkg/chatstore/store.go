// Package chatstore persists chat transcripts per browser session.
package chatstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrSessionRequired is returned when a call carries no session id.
	ErrSessionRequired = errors.New("chatstore: session id required")
	// ErrInvalidRole is returned for roles other than user and ai.
	ErrInvalidRole = errors.New("chatstore: role must be user or ai")
)

// Role is the author of a stored message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Message is one stored chat turn.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store keeps messages grouped by session.
type Store interface {
	// Save appends msg and fills in its ID and CreatedAt.
	Save(ctx context.Context, msg *Message) error
	// Load returns the session's messages oldest first.
	Load(ctx context.Context, sessionID string) ([]Message, error)
	// Clear removes every message of the session.
	Clear(ctx context.Context, sessionID string) error
	Close() error
}

func checkSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	return nil
}

func checkMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("chatstore: nil message")
	}
	if err := checkSession(msg.SessionID); err != nil {
		return err
	}
	if msg.Role != RoleUser && msg.Role != RoleAI {
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}
	return nil
}

// tail keeps the last limit messages; limit <= 0 keeps all.
func tail(msgs []Message, limit int) []Message {
	if limit > 0 && len(msgs) > limit {
		return msgs[len(msgs)-limit:]
	}
	return msgs
}
