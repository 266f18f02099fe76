package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
)

// auditor is the slice of the audit log service accounts need. Record is
// best-effort and never returns an error.
type auditor interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, details string)
}

type Service struct {
	repo  AccountRepository
	codec *auth.TokenCodec
	audit auditor
}

func NewService(repo AccountRepository, codec *auth.TokenCodec, audit auditor) *Service {
	return &Service{repo: repo, codec: codec, audit: audit}
}

type RegisterInput struct {
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

func validRole(role string) bool {
	switch role {
	case auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin:
		return true
	}
	return false
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if len(in.Username) < 3 {
		return nil, fmt.Errorf("%w: username must be at least 3 characters", apperr.ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", apperr.ErrValidation)
	}
	if !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", apperr.ErrValidation)
	}
	if in.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", apperr.ErrValidation)
	}
	if in.Role == "" {
		in.Role = auth.RolePatient
	}
	if !validRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", apperr.ErrValidation, in.Role)
	}

	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("%w: username already registered", apperr.ErrValidation)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperr.ErrValidation)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		ID:           uuid.New(),
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		Phone:        in.Phone,
		DateOfBirth:  in.DateOfBirth,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	log.Info().Str("username", a.Username).Str("role", a.Role).Msg("account registered")
	s.audit.Record(ctx, &a.ID, "register", fmt.Sprintf("account %s registered as %s", a.Username, a.Role))
	return a, nil
}

// Bootstrap creates an account unless the username is already taken, in
// which case the existing account is returned untouched. The seed command
// uses it so a fresh deployment gets its admin without open registration,
// and re-running the seed stays harmless.
func (s *Service) Bootstrap(ctx context.Context, in RegisterInput) (*Account, bool, error) {
	existing, err := s.repo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	a, err := s.Register(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// Authenticate verifies a username/password pair and issues a signed token.
// Unknown usernames, disabled accounts, and wrong passwords all collapse
// into ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, *Account, error) {
	a, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !a.IsActive {
		return "", nil, apperr.ErrInvalidCredentials
	}
	ok, err := auth.VerifyPassword(a.PasswordHash, password)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		log.Warn().Str("username", username).Msg("failed login attempt")
		return "", nil, apperr.ErrInvalidCredentials
	}

	token, err := s.codec.Sign(a.ID, a.Username, a.Role)
	if err != nil {
		return "", nil, err
	}
	s.audit.Record(ctx, &a.ID, "login", fmt.Sprintf("account %s logged in", a.Username))
	return token, a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, actor auth.Principal, role string, limit, offset int) ([]*Account, int, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, 0, apperr.ErrForbidden
	}
	if role != "" && !validRole(role) {
		return nil, 0, fmt.Errorf("%w: unknown role %q", apperr.ErrValidation, role)
	}
	return s.repo.List(ctx, role, limit, offset)
}

func (s *Service) ChangeRole(ctx context.Context, actor auth.Principal, targetID uuid.UUID, newRole string) (*Account, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, apperr.ErrForbidden
	}
	if !validRole(newRole) {
		return nil, fmt.Errorf("%w: unknown role %q", apperr.ErrValidation, newRole)
	}
	if actor.AccountID == targetID {
		return nil, fmt.Errorf("%w: cannot change your own role", apperr.ErrValidation)
	}
	if err := s.repo.UpdateRole(ctx, targetID, newRole); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, &actor.AccountID, "role_change",
		fmt.Sprintf("account %s role set to %s", targetID, newRole))
	return s.repo.GetByID(ctx, targetID)
}

func (s *Service) SetActive(ctx context.Context, actor auth.Principal, targetID uuid.UUID, active bool) (*Account, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, apperr.ErrForbidden
	}
	if actor.AccountID == targetID {
		return nil, fmt.Errorf("%w: cannot deactivate your own account", apperr.ErrValidation)
	}
	if err := s.repo.UpdateActive(ctx, targetID, active); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, &actor.AccountID, "active_toggle",
		fmt.Sprintf("account %s active set to %t", targetID, active))
	return s.repo.GetByID(ctx, targetID)
}
