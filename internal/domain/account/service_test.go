package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
)

type mockRepo struct {
	byID       map[uuid.UUID]*Account
	byUsername map[string]*Account
	byEmail    map[string]*Account
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:       map[uuid.UUID]*Account{},
		byUsername: map[string]*Account{},
		byEmail:    map[string]*Account{},
	}
}

func (m *mockRepo) Create(_ context.Context, a *Account) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.byID[a.ID] = a
	m.byUsername[a.Username] = a
	m.byEmail[a.Email] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*Account, error) {
	if a, ok := m.byUsername[username]; ok {
		return a, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	if a, ok := m.byEmail[email]; ok {
		return a, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *mockRepo) List(_ context.Context, role string, limit, offset int) ([]*Account, int, error) {
	var items []*Account
	for _, a := range m.byID {
		if role == "" || a.Role == role {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	a, ok := m.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	a.Role = role
	return nil
}

func (m *mockRepo) UpdateActive(_ context.Context, id uuid.UUID, active bool) error {
	a, ok := m.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	a.IsActive = active
	return nil
}

func (m *mockRepo) CountByRole(_ context.Context, role string) (int, error) {
	n := 0
	for _, a := range m.byID {
		if role == "" || a.Role == role {
			n++
		}
	}
	return n, nil
}

type nopAuditor struct {
	actions []string
}

func (n *nopAuditor) Record(_ context.Context, _ *uuid.UUID, action, _ string) {
	n.actions = append(n.actions, action)
}

func newTestService() (*Service, *mockRepo, *nopAuditor) {
	repo := newMockRepo()
	audit := &nopAuditor{}
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	return NewService(repo, codec, audit), repo, audit
}

func TestRegister(t *testing.T) {
	svc, repo, audit := newTestService()

	a, err := svc.Register(context.Background(), RegisterInput{
		Email:    "pat@example.com",
		Username: "patzero",
		Password: "secret1",
		FullName: "Pat Zero",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Role != auth.RolePatient {
		t.Errorf("default role = %q, want patient", a.Role)
	}
	if !a.IsActive {
		t.Error("new accounts should be active")
	}
	if a.PasswordHash == "secret1" || a.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if _, ok := repo.byUsername["patzero"]; !ok {
		t.Error("account not persisted")
	}
	if len(audit.actions) == 0 || audit.actions[0] != "register" {
		t.Errorf("audit actions = %v", audit.actions)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	cases := []RegisterInput{
		{Email: "a@b.c", Username: "ab", Password: "secret1", FullName: "X"},
		{Email: "a@b.c", Username: "abc", Password: "short", FullName: "X"},
		{Email: "not-an-email", Username: "abc", Password: "secret1", FullName: "X"},
		{Email: "a@b.c", Username: "abc", Password: "secret1"},
		{Email: "a@b.c", Username: "abc", Password: "secret1", FullName: "X", Role: "superuser"},
	}
	for i, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("case %d: want ErrValidation, got %v", i, err)
		}
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService()
	in := RegisterInput{Email: "a@b.c", Username: "dupe", Password: "secret1", FullName: "X"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in.Email = "other@b.c"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestBootstrap(t *testing.T) {
	svc, repo, _ := newTestService()
	in := RegisterInput{
		Email:    "admin@example.com",
		Username: "rootadmin",
		Password: "secret1",
		FullName: "Root Admin",
		Role:     auth.RoleAdmin,
	}

	a, created, err := svc.Bootstrap(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("first bootstrap should create the account")
	}
	if a.Role != auth.RoleAdmin {
		t.Errorf("role = %q, want admin", a.Role)
	}

	// re-running the seed must not duplicate or overwrite
	again, created, err := svc.Bootstrap(context.Background(), in)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if created {
		t.Error("second bootstrap should report the existing account")
	}
	if again.ID != a.ID {
		t.Error("bootstrap created a duplicate account")
	}
	if len(repo.byID) != 1 {
		t.Errorf("accounts = %d, want 1", len(repo.byID))
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	a, err := svc.Register(context.Background(), RegisterInput{
		Email: "doc@example.com", Username: "docone", Password: "secret1",
		FullName: "Doc One", Role: auth.RoleDoctor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, got, err := svc.Authenticate(context.Background(), "docone", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a signed token")
	}
	if got.ID != a.ID {
		t.Error("wrong account returned")
	}

	codec := auth.NewTokenCodec("test-secret", time.Hour)
	p, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if p.AccountID != a.ID || p.Role != auth.RoleDoctor {
		t.Errorf("principal = %+v", p)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	svc, repo, _ := newTestService()
	a, _ := svc.Register(context.Background(), RegisterInput{
		Email: "p@example.com", Username: "patone", Password: "secret1", FullName: "Pat One",
	})

	if _, _, err := svc.Authenticate(context.Background(), "nobody", "secret1"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("unknown user: want ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Authenticate(context.Background(), "patone", "wrong-pass"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", err)
	}

	repo.byID[a.ID].IsActive = false
	if _, _, err := svc.Authenticate(context.Background(), "patone", "secret1"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("disabled account: want ErrInvalidCredentials, got %v", err)
	}
}

func TestChangeRole(t *testing.T) {
	svc, _, audit := newTestService()
	target, _ := svc.Register(context.Background(), RegisterInput{
		Email: "t@example.com", Username: "target1", Password: "secret1", FullName: "T",
	})
	adminID := uuid.New()
	admin := auth.Principal{AccountID: adminID, Username: "root", Role: auth.RoleAdmin}

	got, err := svc.ChangeRole(context.Background(), admin, target.ID, auth.RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Role != auth.RoleDoctor {
		t.Errorf("role = %q", got.Role)
	}
	found := false
	for _, action := range audit.actions {
		if action == "role_change" {
			found = true
		}
	}
	if !found {
		t.Error("role change not audited")
	}

	// non-admin actor
	doctor := auth.Principal{AccountID: uuid.New(), Role: auth.RoleDoctor}
	if _, err := svc.ChangeRole(context.Background(), doctor, target.ID, auth.RoleAdmin); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("want ErrForbidden, got %v", err)
	}

	// self-change
	self := auth.Principal{AccountID: target.ID, Role: auth.RoleAdmin}
	if _, err := svc.ChangeRole(context.Background(), self, target.ID, auth.RolePatient); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("want ErrValidation for self change, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	svc, repo, _ := newTestService()
	target, _ := svc.Register(context.Background(), RegisterInput{
		Email: "t2@example.com", Username: "target2", Password: "secret1", FullName: "T",
	})
	admin := auth.Principal{AccountID: uuid.New(), Role: auth.RoleAdmin}

	if _, err := svc.SetActive(context.Background(), admin, target.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.byID[target.ID].IsActive {
		t.Error("account should be disabled")
	}

	self := auth.Principal{AccountID: target.ID, Role: auth.RoleAdmin}
	if _, err := svc.SetActive(context.Background(), self, target.ID, false); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("want ErrValidation for self deactivate, got %v", err)
	}
}

func TestAge(t *testing.T) {
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	a := &Account{DateOfBirth: &dob}
	now := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)
	if got := a.Age(now); got != 35 {
		t.Errorf("age before birthday = %d, want 35", got)
	}
	now = time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC)
	if got := a.Age(now); got != 36 {
		t.Errorf("age after birthday = %d, want 36", got)
	}
	if got := (&Account{}).Age(now); got != 0 {
		t.Errorf("age without dob = %d, want 0", got)
	}
}
