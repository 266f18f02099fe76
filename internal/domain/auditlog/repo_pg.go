package auditlog

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

type AuditLogRepoPG struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepoPG(pool *pgxpool.Pool) *AuditLogRepoPG {
	return &AuditLogRepoPG{pool: pool}
}

func (r *AuditLogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const entryCols = "id, actor_id, action, details, created_at"

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.ActorID, &e.Action, &e.Details, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *AuditLogRepoPG) Append(ctx context.Context, e *Entry) error {
	q := `INSERT INTO audit_logs (id, actor_id, action, details)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	return r.conn(ctx).QueryRow(ctx, q, e.ID, e.ActorID, e.Action, e.Details).Scan(&e.CreatedAt)
}

func (r *AuditLogRepoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	where := []string{}
	args := []interface{}{}
	if f.Action != "" {
		args = append(args, f.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if f.ActorID != nil {
		args = append(args, *f.ActorID)
		where = append(where, fmt.Sprintf("actor_id = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := fmt.Sprintf("SELECT %s FROM audit_logs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		entryCols, clause, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
