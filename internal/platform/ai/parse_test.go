package ai

import (
	"errors"
	"testing"

	"github.com/radassist/radassist/internal/platform/apperr"
)

func TestParseImageAnalysis(t *testing.T) {
	reply := "Here is the analysis:\n```json\n" + `{
		"description": "Clear lung fields, normal cardiac silhouette",
		"abnormalities": [{"type": "opacity", "location": "right lower lobe", "severity": "mild"}],
		"disease_classification": "Possible early pneumonia",
		"confidence_score": 0.72,
		"risk_level": "MEDIUM",
		"explanation": "Focal opacity consistent with early consolidation",
		"recommendations": ["Follow-up radiograph in 2 weeks"]
	}` + "\n```\nLet me know if you need more detail."

	out, err := parseImageAnalysis(reply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Classification != "Possible early pneumonia" {
		t.Errorf("classification = %q", out.Classification)
	}
	if out.RiskLevel != RiskMedium {
		t.Errorf("risk level = %q, want %q", out.RiskLevel, RiskMedium)
	}
	if len(out.Abnormalities) != 1 || out.Abnormalities[0].Location != "right lower lobe" {
		t.Errorf("abnormalities = %+v", out.Abnormalities)
	}
}

func TestParseImageAnalysisNoJSON(t *testing.T) {
	_, err := parseImageAnalysis("I cannot analyze this image.")
	if !errors.Is(err, apperr.ErrAnalysisFailed) {
		t.Fatalf("want ErrAnalysisFailed, got %v", err)
	}
}

func TestParseImageAnalysisMissingFields(t *testing.T) {
	_, err := parseImageAnalysis(`{"description": "", "disease_classification": ""}`)
	if !errors.Is(err, apperr.ErrAnalysisFailed) {
		t.Fatalf("want ErrAnalysisFailed, got %v", err)
	}
}

func TestParseImageAnalysisConfidenceOutOfRange(t *testing.T) {
	_, err := parseImageAnalysis(`{"description": "x", "disease_classification": "y", "confidence_score": 1.5}`)
	if !errors.Is(err, apperr.ErrAnalysisFailed) {
		t.Fatalf("want ErrAnalysisFailed, got %v", err)
	}
}

func TestParseMedicineSuggestionDisclaimerDefault(t *testing.T) {
	out, err := parseMedicineSuggestion(`{"medicines": [], "follow_up": "2 weeks"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Disclaimer == "" {
		t.Error("disclaimer must never be empty")
	}
}

func TestParseRiskAssessmentNormalizesRisk(t *testing.T) {
	out, err := parseRiskAssessment(`{"overall_risk": "HIGH", "priority_level": "urgent"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OverallRisk != RiskHigh {
		t.Errorf("overall risk = %q, want %q", out.OverallRisk, RiskHigh)
	}

	out, err = parseRiskAssessment(`{"overall_risk": "unknown-tier"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OverallRisk != RiskMedium {
		t.Errorf("unrecognized risk should fall back to medium, got %q", out.OverallRisk)
	}
}

func TestParseDiseaseClassification(t *testing.T) {
	out, err := parseDiseaseClassification(`{
		"primary_diagnosis": "Community-acquired pneumonia",
		"differential_diagnoses": ["Bronchitis"],
		"confidence_score": 0.6,
		"severity": "moderate"
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.PrimaryDiagnosis != "Community-acquired pneumonia" {
		t.Errorf("primary diagnosis = %q", out.PrimaryDiagnosis)
	}
}
