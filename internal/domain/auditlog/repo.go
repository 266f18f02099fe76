package auditlog

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows a log search. Zero-value fields are ignored.
type Filter struct {
	Action  string
	ActorID *uuid.UUID
}

type AuditLogRepository interface {
	Append(ctx context.Context, e *Entry) error
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error)
}
