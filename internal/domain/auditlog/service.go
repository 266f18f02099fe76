package auditlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
)

type Service struct {
	repo AuditLogRepository
}

func NewService(repo AuditLogRepository) *Service {
	return &Service{repo: repo}
}

// Record appends an audit entry. It never fails the calling operation: a
// write error is logged and swallowed, and cancellation of the request
// context does not abort the write.
func (s *Service) Record(ctx context.Context, actorID *uuid.UUID, action, details string) {
	e := &Entry{ID: uuid.New(), ActorID: actorID, Action: action, Details: details}
	if err := s.repo.Append(context.WithoutCancel(ctx), e); err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit append failed")
	}
}

// Search is restricted to admins.
func (s *Service) Search(ctx context.Context, actor auth.Principal, f Filter, limit, offset int) ([]*Entry, int, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, 0, apperr.ErrForbidden
	}
	return s.repo.Search(ctx, f, limit, offset)
}
