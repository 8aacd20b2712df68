// Package history stores and pages chat conversations.
//
// Messages live in a local SQLite database keyed by session and a per-session
// sequence number. Pages are always fetched relative to a sequence number
// (keyset pagination), so loading older or newer content never depends on
// offsets that shift while the conversation grows.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session has no messages.
var ErrNotFound = errors.New("history: not found")

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one stored chat message.
type Message struct {
	ID        uuid.UUID
	Session   string
	Seq       int64
	Role      Role
	Content   string
	CreatedAt time.Time
}

// messageNS derives stable IDs for messages that arrive without one.
var messageNS = uuid.MustParse("6f1c8a52-3c0e-4c1b-9f59-0b6a3f3d2e71")

// StableID returns the ID a message gets from its position alone. Importing
// the same session twice therefore yields the same IDs.
func StableID(session string, seq int64) uuid.UUID {
	b := make([]byte, 0, len(session)+9)
	b = append(b, session...)
	b = append(b, 0)
	for i := 7; i >= 0; i-- {
		b = append(b, byte(seq>>(8*i)))
	}
	return uuid.NewSHA1(messageNS, b)
}

// Source pages a conversation. Results are always in ascending sequence
// order; a short page means that end of the conversation was reached.
type Source interface {
	// Latest returns the newest limit messages.
	Latest(ctx context.Context, session string, limit int) ([]Message, error)
	// Before returns up to limit messages with a sequence below seq.
	Before(ctx context.Context, session string, seq int64, limit int) ([]Message, error)
	// After returns up to limit messages with a sequence above seq.
	After(ctx context.Context, session string, seq int64, limit int) ([]Message, error)
}
