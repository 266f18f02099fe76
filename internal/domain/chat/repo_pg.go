package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type ChatRepoPG struct {
	pool *pgxpool.Pool
}

func NewChatRepoPG(pool *pgxpool.Pool) *ChatRepoPG {
	return &ChatRepoPG{pool: pool}
}

func (r *ChatRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const sessionCols = "id, account_id, scan_id, started_at, ended_at"

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.AccountID, &s.ScanID, &s.StartedAt, &s.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ChatRepoPG) CreateSession(ctx context.Context, s *Session) error {
	q := `INSERT INTO chat_sessions (id, account_id, scan_id)
		VALUES ($1, $2, $3)
		RETURNING started_at`
	return r.conn(ctx).QueryRow(ctx, q, s.ID, s.AccountID, s.ScanID).Scan(&s.StartedAt)
}

func (r *ChatRepoPG) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	q := fmt.Sprintf("SELECT %s FROM chat_sessions WHERE id = $1", sessionCols)
	return scanSession(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *ChatRepoPG) ListSessions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Session, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM chat_sessions WHERE account_id = $1", accountID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT s.id, s.account_id, s.scan_id, s.started_at, s.ended_at,
			(SELECT COUNT(*) FROM chat_messages m WHERE m.session_id = s.id) AS message_count
		FROM chat_sessions s
		WHERE s.account_id = $1
		ORDER BY s.started_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.conn(ctx).Query(ctx, q, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.AccountID, &s.ScanID, &s.StartedAt, &s.EndedAt, &s.MessageCount); err != nil {
			return nil, 0, err
		}
		items = append(items, &s)
	}
	return items, total, rows.Err()
}

func (r *ChatRepoPG) EndSession(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		"UPDATE chat_sessions SET ended_at = NOW() WHERE id = $1 AND ended_at IS NULL", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ChatRepoPG) CreateMessage(ctx context.Context, m *Message) error {
	q := `INSERT INTO chat_messages (id, session_id, sender, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	return r.conn(ctx).QueryRow(ctx, q, m.ID, m.SessionID, m.Sender, m.Body).Scan(&m.CreatedAt)
}

const messageCols = "id, session_id, sender, body, created_at"

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Body, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ChatRepoPG) ListMessages(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM chat_messages WHERE session_id = $1", sessionID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM chat_messages WHERE session_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3", messageCols)
	rows, err := r.conn(ctx).Query(ctx, q, sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *ChatRepoPG) RecentMessages(ctx context.Context, sessionID uuid.UUID, n int) ([]*Message, error) {
	q := fmt.Sprintf(`SELECT %s FROM (
			SELECT %s FROM chat_messages WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2
		) recent ORDER BY created_at`, messageCols, messageCols)
	rows, err := r.conn(ctx).Query(ctx, q, sessionID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
