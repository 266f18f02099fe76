package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message senders.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Session is one conversation thread. A session may be pinned to a scan,
// in which case every reply is grounded in that scan's findings.
type Session struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	AccountID uuid.UUID  `json:"account_id" db:"account_id"`
	ScanID    *uuid.UUID `json:"scan_id,omitempty" db:"scan_id"`
	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	// MessageCount is filled on listing, not stored.
	MessageCount int `json:"message_count" db:"-"`
}

type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	Sender    string    `json:"sender" db:"sender"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
