// Package ai turns domain data into prompts for the external generative
// provider and maps provider output back into typed results. It also owns
// the chat topic firewall: off-topic messages are answered with a fixed
// redirect and never reach the provider.
package ai

import "context"

// Risk tiers shared with the scan domain.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Abnormality is one finding detected on a scan image.
type Abnormality struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	Severity string `json:"severity"`
}

// ImageAnalysis is the validated result of a vision analysis call.
type ImageAnalysis struct {
	Description     string        `json:"description"`
	Abnormalities   []Abnormality `json:"abnormalities"`
	Classification  string        `json:"disease_classification"`
	Confidence      float64       `json:"confidence_score"`
	RiskLevel       string        `json:"risk_level"`
	Explanation     string        `json:"explanation"`
	Recommendations []string      `json:"recommendations"`
}

// DiseaseClassification is the result of a symptom-based classification.
type DiseaseClassification struct {
	PrimaryDiagnosis string   `json:"primary_diagnosis"`
	Differentials    []string `json:"differential_diagnoses"`
	Confidence       float64  `json:"confidence_score"`
	Severity         string   `json:"severity"`
	RiskFactors      []string `json:"risk_factors"`
	RecommendedTests []string `json:"recommended_tests"`
	Explanation      string   `json:"explanation"`
}

// Medicine is a single advisory medicine entry.
type Medicine struct {
	Name         string `json:"name"`
	GenericName  string `json:"generic_name"`
	Purpose      string `json:"purpose"`
	Usage        string `json:"general_usage"`
	Precautions  string `json:"precautions"`
	Availability string `json:"availability"`
}

// MedicineSuggestion is advisory content only; it is never persisted as a
// report mutation. Disclaimer is always non-empty.
type MedicineSuggestion struct {
	Medicines                []Medicine `json:"medicines"`
	LifestyleRecommendations []string   `json:"lifestyle_recommendations"`
	FollowUp                 string     `json:"follow_up"`
	Disclaimer               string     `json:"disclaimer"`
}

// RiskAssessment summarizes a patient's risk from findings and history.
type RiskAssessment struct {
	OverallRisk     string   `json:"overall_risk"`
	RiskFactors     []string `json:"risk_factors"`
	PriorityLevel   string   `json:"priority_level"`
	Recommendations []string `json:"recommendations"`
	Explanation     string   `json:"explanation"`
}

// PatientProfile carries the patient fields prompts may reference.
type PatientProfile struct {
	Name string
	Age  int
}

// ScanContext carries a scan's stored analysis into report and chat prompts.
type ScanContext struct {
	ScanID         string
	Modality       string
	UploadedAt     string
	Description    string
	Analyzed       bool
	Classification string
	Confidence     float64
	RiskLevel      string
	Abnormalities  []Abnormality
	Explanation    string
}

// ChatTurn is one prior message in a conversation.
type ChatTurn struct {
	Sender  string
	Message string
}

// Provider is the contract domain services call. All methods block for at
// most the configured provider timeout and return ErrAnalysisFailed (or
// ErrAIService for chat) on provider or parse failure; partial results are
// never returned.
type Provider interface {
	AnalyzeImage(ctx context.Context, image []byte, imageMIME, modality, patientContext string) (*ImageAnalysis, error)
	GenerateReportNarrative(ctx context.Context, patient PatientProfile, scan ScanContext, reportType string) (string, error)
	ChatReply(ctx context.Context, message string, history []ChatTurn, scan *ScanContext) (string, error)
	ClassifyDisease(ctx context.Context, symptoms, medicalHistory, scanFindings string) (*DiseaseClassification, error)
	SuggestMedicines(ctx context.Context, classification, symptoms string, patientAge int, scan *ScanContext) (*MedicineSuggestion, error)
	AssessRisk(ctx context.Context, findings []string, medicalHistory string) (*RiskAssessment, error)
}
