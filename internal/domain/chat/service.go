package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/radassist/radassist/internal/domain/scan"
	"github.com/radassist/radassist/internal/platform/ai"
	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
)

// historyWindow caps how many stored messages feed the next reply.
const historyWindow = 5

type auditor interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, details string)
}

type scanReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*scan.Scan, error)
}

type replier interface {
	ChatReply(ctx context.Context, message string, history []ai.ChatTurn, scan *ai.ScanContext) (string, error)
}

// TxRunner runs fn atomically; repository calls made with the context passed
// to fn share one transaction. The server wires this to db.WithTx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo  ChatRepository
	scans scanReader
	ai    replier
	audit auditor
	tx    TxRunner
}

func NewService(repo ChatRepository, scans scanReader, ai replier, audit auditor, tx TxRunner) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{repo: repo, scans: scans, ai: ai, audit: audit, tx: tx}
}

type SendInput struct {
	SessionID *uuid.UUID `json:"session_id"`
	ScanID    *uuid.UUID `json:"scan_id"`
	Message   string     `json:"message"`
}

type Reply struct {
	SessionID uuid.UUID `json:"session_id"`
	Message   *Message  `json:"message"`
	Response  *Message  `json:"response"`
}

// SendMessage appends the user's message to a session (creating one on the
// first message) and returns the assistant's reply. The session and the
// user's message are written in one transaction, committed before the model
// is called: a failed insert leaves no empty session behind, and a model
// outage never loses what the user typed.
func (s *Service) SendMessage(ctx context.Context, actor auth.Principal, in SendInput) (*Reply, error) {
	body := strings.TrimSpace(in.Message)
	if body == "" {
		return nil, apperr.ErrEmptyMessage
	}

	var (
		sess    *Session
		scanCtx *ai.ScanContext
		history []ai.ChatTurn
		userMsg *Message
	)
	err := s.tx(ctx, func(ctx context.Context) error {
		var err error
		sess, err = s.resolveSession(ctx, actor, in)
		if err != nil {
			return err
		}

		if sess.ScanID != nil {
			sc, err := s.scans.GetByID(ctx, *sess.ScanID)
			if err != nil {
				return err
			}
			c := sc.Context()
			scanCtx = &c
		}

		recent, err := s.repo.RecentMessages(ctx, sess.ID, historyWindow)
		if err != nil {
			return err
		}
		history = make([]ai.ChatTurn, 0, len(recent))
		for _, m := range recent {
			history = append(history, ai.ChatTurn{Sender: m.Sender, Message: m.Body})
		}

		userMsg = &Message{ID: uuid.New(), SessionID: sess.ID, Sender: SenderUser, Body: body}
		return s.repo.CreateMessage(ctx, userMsg)
	})
	if err != nil {
		return nil, err
	}

	replyText, err := s.ai.ChatReply(ctx, body, history, scanCtx)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("chat reply failed")
		return nil, err
	}

	aiMsg := &Message{ID: uuid.New(), SessionID: sess.ID, Sender: SenderAI, Body: replyText}
	if err := s.repo.CreateMessage(ctx, aiMsg); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &actor.AccountID, "chat_message",
		fmt.Sprintf("message in session %s", sess.ID))
	return &Reply{SessionID: sess.ID, Message: userMsg, Response: aiMsg}, nil
}

func (s *Service) resolveSession(ctx context.Context, actor auth.Principal, in SendInput) (*Session, error) {
	if in.SessionID != nil {
		sess, err := s.repo.GetSession(ctx, *in.SessionID)
		if err != nil {
			return nil, err
		}
		if sess.AccountID != actor.AccountID {
			return nil, apperr.ErrForbidden
		}
		if sess.EndedAt != nil {
			return nil, fmt.Errorf("%w: session has ended", apperr.ErrInvalidState)
		}
		return sess, nil
	}

	if in.ScanID != nil {
		sc, err := s.scans.GetByID(ctx, *in.ScanID)
		if err != nil {
			return nil, err
		}
		if sc.PatientID != actor.AccountID && !actor.IsClinician() {
			return nil, apperr.ErrForbidden
		}
	}

	sess := &Session{ID: uuid.New(), AccountID: actor.AccountID, ScanID: in.ScanID}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) ListSessions(ctx context.Context, actor auth.Principal, limit, offset int) ([]*Session, int, error) {
	return s.repo.ListSessions(ctx, actor.AccountID, limit, offset)
}

// ListMessages returns a session transcript. Clinicians may read any
// session; everyone else only their own.
func (s *Service) ListMessages(ctx context.Context, actor auth.Principal, sessionID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if sess.AccountID != actor.AccountID && !actor.IsClinician() {
		return nil, 0, apperr.ErrForbidden
	}
	return s.repo.ListMessages(ctx, sessionID, limit, offset)
}

func (s *Service) EndSession(ctx context.Context, actor auth.Principal, sessionID uuid.UUID) error {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.AccountID != actor.AccountID {
		return apperr.ErrForbidden
	}
	if sess.EndedAt != nil {
		return fmt.Errorf("%w: session already ended", apperr.ErrInvalidState)
	}
	return s.repo.EndSession(ctx, sessionID)
}
