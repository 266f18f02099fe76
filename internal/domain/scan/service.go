package scan

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/radassist/radassist/internal/domain/account"
	"github.com/radassist/radassist/internal/platform/ai"
	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
	"github.com/radassist/radassist/internal/platform/blobstore"
)

type auditor interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, details string)
}

// accountReader resolves patient details for prompt context.
type accountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

type analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, imageMIME, modality, patientContext string) (*ai.ImageAnalysis, error)
}

type Service struct {
	repo     ScanRepository
	blobs    blobstore.Store
	provider analyzer
	accounts accountReader
	audit    auditor
}

func NewService(repo ScanRepository, blobs blobstore.Store, provider analyzer, accounts accountReader, audit auditor) *Service {
	return &Service{repo: repo, blobs: blobs, provider: provider, accounts: accounts, audit: audit}
}

// canRead reports whether the actor may see a scan: its owner, any
// clinician, or an admin.
func canRead(actor auth.Principal, s *Scan) bool {
	return s.PatientID == actor.AccountID || actor.IsClinician()
}

type RegisterInput struct {
	Modality    string
	ImageRef    string
	Description string
}

// Register records a freshly uploaded scan. Only patients upload; the image
// itself is already in the blob store under ImageRef.
func (s *Service) Register(ctx context.Context, actor auth.Principal, in RegisterInput) (*Scan, error) {
	if actor.Role != auth.RolePatient {
		return nil, fmt.Errorf("%w: only patients can upload scans", apperr.ErrForbidden)
	}
	if !ValidModality(in.Modality) {
		return nil, fmt.Errorf("%w: unknown modality %q", apperr.ErrValidation, in.Modality)
	}
	if in.ImageRef == "" {
		return nil, fmt.Errorf("%w: image reference is required", apperr.ErrValidation)
	}

	sc := &Scan{
		ID:          uuid.New(),
		PatientID:   actor.AccountID,
		Modality:    in.Modality,
		ImageRef:    in.ImageRef,
		Description: in.Description,
	}
	if err := s.repo.Create(ctx, sc); err != nil {
		return nil, err
	}
	log.Info().Str("scan_id", sc.ID.String()).Str("modality", sc.Modality).Msg("scan registered")
	return sc, nil
}

// Analyze runs the AI vision analysis and attaches the result to the scan.
// On provider or parse failure the scan row is left untouched. Re-analysis
// of an already analyzed scan is allowed and overwrites the prior result.
func (s *Service) Analyze(ctx context.Context, actor auth.Principal, scanID uuid.UUID) (*Scan, error) {
	sc, err := s.repo.GetByID(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, sc) {
		return nil, apperr.ErrForbidden
	}

	blob, meta, err := s.blobs.Load(ctx, sc.ImageRef)
	if err != nil {
		return nil, fmt.Errorf("%w: load image: %v", apperr.ErrAnalysisFailed, err)
	}
	image, err := io.ReadAll(blob)
	blob.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", apperr.ErrAnalysisFailed, err)
	}

	patientContext := ""
	if patient, err := s.accounts.GetByID(ctx, sc.PatientID); err == nil {
		patientContext = fmt.Sprintf("Patient: %s", patient.FullName)
	}

	result, err := s.provider.AnalyzeImage(ctx, image, meta.ContentType, sc.Modality, patientContext)
	if err != nil {
		log.Error().Err(err).Str("scan_id", scanID.String()).Msg("scan analysis failed")
		return nil, err
	}

	analysis := Analysis{
		Abnormalities:  result.Abnormalities,
		Classification: result.Classification,
		Confidence:     result.Confidence,
		RiskLevel:      result.RiskLevel,
		Explanation:    result.Explanation,
	}
	if err := s.repo.SetAnalysis(ctx, scanID, analysis); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &actor.AccountID, "scan_analyzed",
		fmt.Sprintf("scan %s classified as %q risk %s", scanID, result.Classification, result.RiskLevel))
	return s.repo.GetByID(ctx, scanID)
}

func (s *Service) Get(ctx context.Context, actor auth.Principal, scanID uuid.UUID) (*Scan, error) {
	sc, err := s.repo.GetByID(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, sc) {
		return nil, apperr.ErrForbidden
	}
	return sc, nil
}

// List returns the actor's own scans for patients, and all scans
// (optionally narrowed to one patient) for clinicians.
func (s *Service) List(ctx context.Context, actor auth.Principal, patientID *uuid.UUID, limit, offset int) ([]*Scan, int, error) {
	if actor.Role == auth.RolePatient {
		return s.repo.ListByPatient(ctx, actor.AccountID, limit, offset)
	}
	if patientID != nil {
		return s.repo.ListByPatient(ctx, *patientID, limit, offset)
	}
	return s.repo.ListAll(ctx, limit, offset)
}

// Image streams the stored scan image. The caller owns the ReadCloser.
func (s *Service) Image(ctx context.Context, actor auth.Principal, scanID uuid.UUID) (io.ReadCloser, *blobstore.Metadata, error) {
	sc, err := s.repo.GetByID(ctx, scanID)
	if err != nil {
		return nil, nil, err
	}
	if !canRead(actor, sc) {
		return nil, nil, apperr.ErrForbidden
	}
	return s.blobs.Load(ctx, sc.ImageRef)
}
