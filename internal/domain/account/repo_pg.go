package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

type AccountRepoPG struct {
	pool *pgxpool.Pool
}

func NewAccountRepoPG(pool *pgxpool.Pool) *AccountRepoPG {
	return &AccountRepoPG{pool: pool}
}

func (r *AccountRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const accountCols = `id, email, username, full_name, password_hash, role, is_active,
	phone, date_of_birth, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.FullName, &a.PasswordHash, &a.Role, &a.IsActive,
		&a.Phone, &a.DateOfBirth, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return &a, err
}

func (r *AccountRepoPG) Create(ctx context.Context, a *Account) error {
	q := `INSERT INTO accounts (id, email, username, full_name, password_hash, role, is_active, phone, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.conn(ctx).QueryRow(ctx, q,
		a.ID, a.Email, a.Username, a.FullName, a.PasswordHash, a.Role, a.IsActive, a.Phone, a.DateOfBirth,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: username or email already registered", apperr.ErrValidation)
	}
	return err
}

func (r *AccountRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	q := fmt.Sprintf("SELECT %s FROM accounts WHERE id = $1", accountCols)
	return scanAccount(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *AccountRepoPG) GetByUsername(ctx context.Context, username string) (*Account, error) {
	q := fmt.Sprintf("SELECT %s FROM accounts WHERE username = $1", accountCols)
	return scanAccount(r.conn(ctx).QueryRow(ctx, q, username))
}

func (r *AccountRepoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	q := fmt.Sprintf("SELECT %s FROM accounts WHERE email = $1", accountCols)
	return scanAccount(r.conn(ctx).QueryRow(ctx, q, email))
}

func (r *AccountRepoPG) List(ctx context.Context, role string, limit, offset int) ([]*Account, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if role != "" {
		where = append(where, fmt.Sprintf("role = $%d", idx))
		args = append(args, role)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM accounts %s", whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM accounts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		accountCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *AccountRepoPG) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		"UPDATE accounts SET role = $1, updated_at = now() WHERE id = $2", role, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AccountRepoPG) UpdateActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		"UPDATE accounts SET is_active = $1, updated_at = now() WHERE id = $2", active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AccountRepoPG) CountByRole(ctx context.Context, role string) (int, error) {
	q := "SELECT COUNT(*) FROM accounts"
	args := []interface{}{}
	if role != "" {
		q += " WHERE role = $1"
		args = append(args, role)
	}
	var total int
	err := r.conn(ctx).QueryRow(ctx, q, args...).Scan(&total)
	return total, err
}
