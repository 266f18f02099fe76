package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Validation carries the doctor's decision fields, written atomically.
type Validation struct {
	DoctorID             uuid.UUID
	Status               string
	DoctorNotes          string
	Diagnosis            string
	RecommendedTreatment string
	MedicineSuggestions  string
	ValidatedAt          time.Time
}

type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Report, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Report, int, error)
	// SetValidation applies the decision only while the report is still
	// pending; it returns ErrInvalidState otherwise.
	SetValidation(ctx context.Context, id uuid.UUID, v Validation) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
