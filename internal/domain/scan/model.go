package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/radassist/radassist/internal/platform/ai"
)

// Image modalities accepted for upload.
const (
	ModalityXray = "xray"
	ModalityCT   = "ct"
	ModalityMRI  = "mri"
)

func ValidModality(m string) bool {
	switch m {
	case ModalityXray, ModalityCT, ModalityMRI:
		return true
	}
	return false
}

// Scan is one uploaded radiology image plus, once analyzed, the AI findings
// attached to it. The AI fields are written together in a single update and
// are never partially populated.
type Scan struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID    *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	Modality    string     `db:"modality" json:"modality"`
	ImageRef    string     `db:"image_ref" json:"image_ref"`
	Description string     `db:"description" json:"description,omitempty"`
	UploadedAt  time.Time  `db:"uploaded_at" json:"uploaded_at"`

	Analyzed       bool             `db:"analyzed" json:"analyzed"`
	AnalyzedAt     *time.Time       `db:"analyzed_at" json:"analyzed_at,omitempty"`
	Abnormalities  []ai.Abnormality `db:"abnormalities" json:"abnormalities,omitempty"`
	Classification string           `db:"classification" json:"classification,omitempty"`
	Confidence     float64          `db:"confidence" json:"confidence,omitempty"`
	RiskLevel      string           `db:"risk_level" json:"risk_level,omitempty"`
	Explanation    string           `db:"explanation" json:"explanation,omitempty"`
}

// Context shapes the scan for prompt building.
func (s *Scan) Context() ai.ScanContext {
	return ai.ScanContext{
		ScanID:         s.ID.String(),
		Modality:       s.Modality,
		UploadedAt:     s.UploadedAt.Format(time.RFC3339),
		Description:    s.Description,
		Analyzed:       s.Analyzed,
		Classification: s.Classification,
		Confidence:     s.Confidence,
		RiskLevel:      s.RiskLevel,
		Abnormalities:  s.Abnormalities,
		Explanation:    s.Explanation,
	}
}
