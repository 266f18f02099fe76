package report

import (
	"time"

	"github.com/google/uuid"
)

// Report validation states.
const (
	StatusPending   = "pending"
	StatusValidated = "validated"
	StatusRejected  = "rejected"
)

// Report is an AI-drafted medical report awaiting (or past) physician
// review. AIContent is never served to patients while Status is pending.
type Report struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	ScanID    uuid.UUID  `db:"scan_id" json:"scan_id"`
	DoctorID  *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`

	ReportType           string `db:"report_type" json:"report_type"`
	AIContent            string `db:"ai_content" json:"ai_content"`
	DoctorNotes          string `db:"doctor_notes" json:"doctor_notes,omitempty"`
	Diagnosis            string `db:"diagnosis" json:"diagnosis,omitempty"`
	RecommendedTreatment string `db:"recommended_treatment" json:"recommended_treatment,omitempty"`
	MedicineSuggestions  string `db:"medicine_suggestions" json:"medicine_suggestions,omitempty"`

	Status      string     `db:"status" json:"status"`
	GeneratedAt time.Time  `db:"generated_at" json:"generated_at"`
	ValidatedAt *time.Time `db:"validated_at" json:"validated_at,omitempty"`
}
