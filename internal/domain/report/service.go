package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/radassist/radassist/internal/domain/account"
	"github.com/radassist/radassist/internal/domain/scan"
	"github.com/radassist/radassist/internal/platform/ai"
	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
)

type auditor interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, details string)
}

type accountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

type scanReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*scan.Scan, error)
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*scan.Scan, error)
}

type provider interface {
	GenerateReportNarrative(ctx context.Context, patient ai.PatientProfile, scanCtx ai.ScanContext, reportType string) (string, error)
	SuggestMedicines(ctx context.Context, classification, symptoms string, patientAge int, scanCtx *ai.ScanContext) (*ai.MedicineSuggestion, error)
}

type Service struct {
	repo     ReportRepository
	scans    scanReader
	accounts accountReader
	ai       provider
	audit    auditor
}

func NewService(repo ReportRepository, scans scanReader, accounts accountReader, ai provider, audit auditor) *Service {
	return &Service{repo: repo, scans: scans, accounts: accounts, ai: ai, audit: audit}
}

type GenerateInput struct {
	PatientID  uuid.UUID `json:"patient_id"`
	ScanID     uuid.UUID `json:"scan_id"`
	ReportType string    `json:"report_type"`
}

// Generate drafts a report from an analyzed scan. The draft stays pending
// until a doctor validates or rejects it; several drafts may exist for the
// same scan.
func (s *Service) Generate(ctx context.Context, actor auth.Principal, in GenerateInput) (*Report, error) {
	if !actor.IsClinician() {
		return nil, fmt.Errorf("%w: only doctors can generate reports", apperr.ErrForbidden)
	}

	patient, err := s.accounts.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	sc, err := s.scans.GetByID(ctx, in.ScanID)
	if err != nil {
		return nil, err
	}
	if sc.PatientID != in.PatientID {
		return nil, fmt.Errorf("%w: scan does not belong to patient", apperr.ErrValidation)
	}
	if !sc.Analyzed {
		return nil, fmt.Errorf("%w: scan must be analyzed before report generation", apperr.ErrPreconditionFailed)
	}
	if in.ReportType == "" {
		in.ReportType = "diagnostic"
	}

	narrative, err := s.ai.GenerateReportNarrative(ctx, ai.PatientProfile{
		Name: patient.FullName,
		Age:  patient.Age(time.Now()),
	}, sc.Context(), in.ReportType)
	if err != nil {
		return nil, err
	}

	rp := &Report{
		ID:         uuid.New(),
		PatientID:  in.PatientID,
		ScanID:     in.ScanID,
		DoctorID:   &actor.AccountID,
		ReportType: in.ReportType,
		AIContent:  narrative,
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, rp); err != nil {
		return nil, err
	}

	log.Info().Str("report_id", rp.ID.String()).Str("scan_id", in.ScanID.String()).Msg("report generated")
	s.audit.Record(ctx, &actor.AccountID, "report_generated",
		fmt.Sprintf("report %s drafted for scan %s", rp.ID, in.ScanID))
	return rp, nil
}

type ValidateInput struct {
	Decision             string `json:"decision"`
	DoctorNotes          string `json:"doctor_notes"`
	Diagnosis            string `json:"diagnosis"`
	RecommendedTreatment string `json:"recommended_treatment"`
	MedicineSuggestions  string `json:"medicine_suggestions"`
}

// Validate applies a doctor's decision to a pending report. Validated and
// rejected are both terminal; a rejected scan can get a fresh draft via
// Generate.
func (s *Service) Validate(ctx context.Context, actor auth.Principal, reportID uuid.UUID, in ValidateInput) (*Report, error) {
	if !actor.IsClinician() {
		return nil, fmt.Errorf("%w: only doctors can validate reports", apperr.ErrForbidden)
	}
	if in.Decision != StatusValidated && in.Decision != StatusRejected {
		return nil, fmt.Errorf("%w: decision must be %q or %q", apperr.ErrValidation, StatusValidated, StatusRejected)
	}

	err := s.repo.SetValidation(ctx, reportID, Validation{
		DoctorID:             actor.AccountID,
		Status:               in.Decision,
		DoctorNotes:          in.DoctorNotes,
		Diagnosis:            in.Diagnosis,
		RecommendedTreatment: in.RecommendedTreatment,
		MedicineSuggestions:  in.MedicineSuggestions,
		ValidatedAt:          time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &actor.AccountID, "report_validated",
		fmt.Sprintf("report %s marked %s", reportID, in.Decision))
	return s.repo.GetByID(ctx, reportID)
}

func (s *Service) Get(ctx context.Context, actor auth.Principal, reportID uuid.UUID) (*Report, error) {
	rp, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rp.PatientID != actor.AccountID && !actor.IsClinician() {
		return nil, apperr.ErrForbidden
	}
	return rp, nil
}

// List returns the actor's own reports for patients, and all reports
// (optionally one patient's) for clinicians.
func (s *Service) List(ctx context.Context, actor auth.Principal, patientID *uuid.UUID, limit, offset int) ([]*Report, int, error) {
	if actor.Role == auth.RolePatient {
		return s.repo.ListByPatient(ctx, actor.AccountID, limit, offset)
	}
	if patientID != nil {
		return s.repo.ListByPatient(ctx, *patientID, limit, offset)
	}
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *Service) ListPending(ctx context.Context, actor auth.Principal, limit, offset int) ([]*Report, int, error) {
	if !actor.IsClinician() {
		return nil, 0, apperr.ErrForbidden
	}
	return s.repo.ListByStatus(ctx, StatusPending, limit, offset)
}

type SuggestInput struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	ScanID         *uuid.UUID `json:"scan_id"`
	Classification string     `json:"classification"`
	Symptoms       string     `json:"symptoms"`
}

// SuggestMedicines produces advisory medicine guidance for a patient from
// their (specified or latest) scan. It is read-only: nothing is persisted.
func (s *Service) SuggestMedicines(ctx context.Context, actor auth.Principal, in SuggestInput) (*ai.MedicineSuggestion, error) {
	if !actor.IsClinician() {
		return nil, fmt.Errorf("%w: only doctors can request medicine suggestions", apperr.ErrForbidden)
	}

	patient, err := s.accounts.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}

	var sc *scan.Scan
	if in.ScanID != nil {
		sc, err = s.scans.GetByID(ctx, *in.ScanID)
		if err != nil {
			return nil, err
		}
		if sc.PatientID != in.PatientID {
			return nil, fmt.Errorf("%w: scan does not belong to patient", apperr.ErrValidation)
		}
	} else {
		sc, err = s.scans.LatestByPatient(ctx, in.PatientID)
		if err != nil {
			return nil, err
		}
	}

	classification := in.Classification
	if classification == "" && sc.Analyzed {
		classification = sc.Classification
	}
	if classification == "" {
		return nil, fmt.Errorf("%w: scan is unanalyzed and no classification was given", apperr.ErrPreconditionFailed)
	}

	symptoms := in.Symptoms
	if symptoms == "" {
		symptoms = "Symptoms based on scan findings and detected abnormalities"
	}

	scanCtx := sc.Context()
	return s.ai.SuggestMedicines(ctx, classification, symptoms, patient.Age(time.Now()), &scanCtx)
}
