package account

import (
	"context"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, role string, limit, offset int) ([]*Account, int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	UpdateActive(ctx context.Context, id uuid.UUID, active bool) error
	CountByRole(ctx context.Context, role string) (int, error)
}
