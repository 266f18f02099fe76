package admin

import (
	"context"
	"time"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
)

type accountCounter interface {
	CountByRole(ctx context.Context, role string) (int, error)
}

type scanCounter interface {
	Count(ctx context.Context) (int, error)
	CountAnalyzedSince(ctx context.Context, since time.Time) (int, error)
}

type reportCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	TotalPatients   int `json:"total_patients"`
	TotalDoctors    int `json:"total_doctors"`
	TotalScans      int `json:"total_scans"`
	TotalReports    int `json:"total_reports"`
	PendingReports  int `json:"pending_reports"`
	AIAnalysesToday int `json:"ai_analyses_today"`
}

type Service struct {
	accounts accountCounter
	scans    scanCounter
	reports  reportCounter
}

func NewService(accounts accountCounter, scans scanCounter, reports reportCounter) *Service {
	return &Service{accounts: accounts, scans: scans, reports: reports}
}

func (s *Service) Stats(ctx context.Context, actor auth.Principal) (*Stats, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, apperr.ErrForbidden
	}

	var st Stats
	var err error
	if st.TotalPatients, err = s.accounts.CountByRole(ctx, auth.RolePatient); err != nil {
		return nil, err
	}
	if st.TotalDoctors, err = s.accounts.CountByRole(ctx, auth.RoleDoctor); err != nil {
		return nil, err
	}
	if st.TotalScans, err = s.scans.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalReports, err = s.reports.Count(ctx); err != nil {
		return nil, err
	}
	if st.PendingReports, err = s.reports.CountByStatus(ctx, "pending"); err != nil {
		return nil, err
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	if st.AIAnalysesToday, err = s.scans.CountAnalyzedSince(ctx, midnight); err != nil {
		return nil, err
	}
	return &st, nil
}
