package scan

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/radassist/radassist/internal/platform/ai"
)

// Analysis carries the AI fields written back to a scan in one update.
type Analysis struct {
	Abnormalities  []ai.Abnormality
	Classification string
	Confidence     float64
	RiskLevel      string
	Explanation    string
}

type ScanRepository interface {
	Create(ctx context.Context, s *Scan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Scan, error)
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Scan, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Scan, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Scan, int, error)
	SetAnalysis(ctx context.Context, id uuid.UUID, a Analysis) error
	Count(ctx context.Context) (int, error)
	CountAnalyzedSince(ctx context.Context, since time.Time) (int, error)
}
