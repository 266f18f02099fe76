package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
)

type stubAccounts struct {
	byRole map[string]int
}

func (s *stubAccounts) CountByRole(_ context.Context, role string) (int, error) {
	return s.byRole[role], nil
}

type stubScans struct {
	total         int
	analyzedToday int
	lastSince     time.Time
}

func (s *stubScans) Count(_ context.Context) (int, error) { return s.total, nil }

func (s *stubScans) CountAnalyzedSince(_ context.Context, since time.Time) (int, error) {
	s.lastSince = since
	return s.analyzedToday, nil
}

type stubReports struct {
	total    int
	byStatus map[string]int
}

func (s *stubReports) Count(_ context.Context) (int, error) { return s.total, nil }

func (s *stubReports) CountByStatus(_ context.Context, status string) (int, error) {
	return s.byStatus[status], nil
}

func TestStats(t *testing.T) {
	scans := &stubScans{total: 42, analyzedToday: 7}
	svc := NewService(
		&stubAccounts{byRole: map[string]int{auth.RolePatient: 30, auth.RoleDoctor: 5}},
		scans,
		&stubReports{total: 12, byStatus: map[string]int{"pending": 3}},
	)
	admin := auth.Principal{AccountID: uuid.New(), Role: auth.RoleAdmin}

	st, err := svc.Stats(context.Background(), admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Stats{
		TotalPatients: 30, TotalDoctors: 5, TotalScans: 42,
		TotalReports: 12, PendingReports: 3, AIAnalysesToday: 7,
	}
	if *st != want {
		t.Errorf("stats = %+v, want %+v", *st, want)
	}
	if scans.lastSince.IsZero() || scans.lastSince.After(time.Now()) {
		t.Errorf("since = %v", scans.lastSince)
	}
}

func TestStatsForbidden(t *testing.T) {
	svc := NewService(&stubAccounts{}, &stubScans{}, &stubReports{})

	for _, role := range []string{auth.RolePatient, auth.RoleDoctor} {
		p := auth.Principal{AccountID: uuid.New(), Role: role}
		if _, err := svc.Stats(context.Background(), p); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("role %s: want ErrForbidden, got %v", role, err)
		}
	}
}
