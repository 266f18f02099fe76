package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/radassist/radassist/internal/platform/apperr"
)

// extractJSON pulls the JSON object out of a model reply. Providers often
// wrap the object in prose or a markdown fence, so we take the span from the
// first '{' to the last '}'.
func extractJSON(text string) ([]byte, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in model reply", apperr.ErrAnalysisFailed)
	}
	return []byte(text[start : end+1]), nil
}

func parseImageAnalysis(text string) (*ImageAnalysis, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var out ImageAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode analysis: %v", apperr.ErrAnalysisFailed, err)
	}
	out.RiskLevel = normalizeRisk(out.RiskLevel)
	if out.Description == "" || out.Classification == "" {
		return nil, fmt.Errorf("%w: analysis missing required fields", apperr.ErrAnalysisFailed)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %.2f out of range", apperr.ErrAnalysisFailed, out.Confidence)
	}
	if out.Abnormalities == nil {
		out.Abnormalities = []Abnormality{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return &out, nil
}

func parseDiseaseClassification(text string) (*DiseaseClassification, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var out DiseaseClassification
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode classification: %v", apperr.ErrAnalysisFailed, err)
	}
	if out.PrimaryDiagnosis == "" {
		return nil, fmt.Errorf("%w: classification missing primary diagnosis", apperr.ErrAnalysisFailed)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %.2f out of range", apperr.ErrAnalysisFailed, out.Confidence)
	}
	return &out, nil
}

func parseMedicineSuggestion(text string) (*MedicineSuggestion, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var out MedicineSuggestion
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode suggestion: %v", apperr.ErrAnalysisFailed, err)
	}
	if out.Medicines == nil {
		out.Medicines = []Medicine{}
	}
	if out.LifestyleRecommendations == nil {
		out.LifestyleRecommendations = []string{}
	}
	// Advisory output always carries a disclaimer, even if the model forgot.
	if strings.TrimSpace(out.Disclaimer) == "" {
		out.Disclaimer = "These suggestions are AI-generated and advisory only. " +
			"Consult a registered healthcare provider before taking any medication."
	}
	return &out, nil
}

func parseRiskAssessment(text string) (*RiskAssessment, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var out RiskAssessment
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode risk assessment: %v", apperr.ErrAnalysisFailed, err)
	}
	out.OverallRisk = normalizeRisk(out.OverallRisk)
	if out.RiskFactors == nil {
		out.RiskFactors = []string{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return &out, nil
}

// normalizeRisk maps model risk spellings onto the platform's tiers.
// Anything unrecognized lands on medium so an odd reply never drops a scan
// into the low-risk bucket.
func normalizeRisk(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case RiskLow:
		return RiskLow
	case RiskHigh:
		return RiskHigh
	default:
		return RiskMedium
	}
}
