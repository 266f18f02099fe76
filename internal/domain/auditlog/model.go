package auditlog

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only audit record. Entries are never updated or
// deleted.
type Entry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty" db:"actor_id"`
	Action    string     `json:"action" db:"action"`
	Details   string     `json:"details" db:"details"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
