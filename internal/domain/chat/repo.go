package chat

import (
	"context"

	"github.com/google/uuid"
)

type ChatRepository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	ListSessions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Session, int, error)
	EndSession(ctx context.Context, id uuid.UUID) error

	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*Message, int, error)
	// RecentMessages returns the newest n messages of a session in
	// chronological order.
	RecentMessages(ctx context.Context, sessionID uuid.UUID, n int) ([]*Message, error)
}
