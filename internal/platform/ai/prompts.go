package ai

import (
	"fmt"
	"strings"
)

const systemInstruction = "You are a medical AI assistant for a radiology platform. " +
	"You assist with radiology image analysis, disease classification, and patient guidance. " +
	"All of your output is advisory and requires validation by a licensed physician."

func analyzeImagePrompt(modality, patientContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert radiologist AI assistant. Analyze this %s scan image.

Please provide:
1. Detailed description of visible anatomical structures
2. Any abnormalities or suspicious findings detected
3. Possible disease classification or conditions
4. Confidence level (0.0 to 1.0)
5. Risk assessment (LOW, MEDIUM, HIGH)
6. Recommendations for further investigation
`, strings.ToUpper(modality))
	if patientContext != "" {
		fmt.Fprintf(&b, "\nPatient Context: %s\n", patientContext)
	}
	b.WriteString(`
Provide response in the following JSON format:
{
    "description": "detailed anatomical description",
    "abnormalities": [{"type": "finding", "location": "anatomical location", "severity": "mild/moderate/severe"}],
    "disease_classification": "primary suspected condition",
    "confidence_score": 0.0,
    "risk_level": "low/medium/high",
    "explanation": "detailed medical explanation",
    "recommendations": ["list of recommendations"]
}

IMPORTANT: Respond with JSON only. This is AI-assisted analysis and requires professional validation.`)
	return b.String()
}

func classifyDiseasePrompt(symptoms, medicalHistory, scanFindings string) string {
	var b strings.Builder
	b.WriteString("As a medical AI assistant, analyze the following patient information and provide disease classification:\n\n")
	fmt.Fprintf(&b, "Symptoms: %s\n", symptoms)
	if medicalHistory != "" {
		fmt.Fprintf(&b, "Medical History: %s\n", medicalHistory)
	}
	if scanFindings != "" {
		fmt.Fprintf(&b, "Scan Findings: %s\n", scanFindings)
	}
	b.WriteString(`
Provide analysis in JSON format:
{
    "primary_diagnosis": "most likely condition",
    "differential_diagnoses": ["other possible conditions"],
    "confidence_score": 0.0,
    "severity": "mild/moderate/severe",
    "risk_factors": ["identified risk factors"],
    "explanation": "detailed medical explanation",
    "recommended_tests": ["additional tests needed"]
}

Respond with JSON only. Include appropriate medical disclaimers in the explanation.`)
	return b.String()
}

func reportNarrativePrompt(patient PatientProfile, scan ScanContext, reportType string) string {
	var b strings.Builder
	b.WriteString("Generate a professional medical radiology report based on:\n\n")
	b.WriteString("Patient Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", patient.Name)
	if patient.Age > 0 {
		fmt.Fprintf(&b, "- Age: %d\n", patient.Age)
	}
	b.WriteString("\nScan Information:\n")
	fmt.Fprintf(&b, "- Modality: %s\n", strings.ToUpper(scan.Modality))
	fmt.Fprintf(&b, "- Date: %s\n", scan.UploadedAt)
	fmt.Fprintf(&b, "- Description: %s\n", scan.Description)
	fmt.Fprintf(&b, "- Report Type: %s\n", reportType)
	b.WriteString("\nAI Findings:\n")
	fmt.Fprintf(&b, "- Disease Classification: %s\n", scan.Classification)
	fmt.Fprintf(&b, "- Confidence Score: %.2f\n", scan.Confidence)
	fmt.Fprintf(&b, "- Risk Level: %s\n", scan.RiskLevel)
	for _, a := range scan.Abnormalities {
		fmt.Fprintf(&b, "- Abnormality: %s at %s (%s)\n", a.Type, a.Location, a.Severity)
	}
	if scan.Explanation != "" {
		fmt.Fprintf(&b, "- Explanation: %s\n", scan.Explanation)
	}
	b.WriteString(`
Generate a structured medical report with:
1. Patient Demographics
2. Examination Details
3. Clinical Indication
4. Findings
5. Impression
6. Recommendations

Use professional medical terminology and standard report format.
Include disclaimer that AI-generated content requires physician validation.`)
	return b.String()
}

func chatPrompt(message string, history []ChatTurn) string {
	var b strings.Builder
	b.WriteString(`You are a STRICT medical AI assistant for a radiology platform. You MUST ONLY respond to questions about direct patient care, symptoms, medical conditions, treatments, and radiology.

STRICT RULES - REFUSE to discuss:
- General technology topics
- Educational topics not directly related to patient symptoms or treatment
- Science topics unless directly about medical conditions
- Any non-medical topics whatsoever

Previous conversation:
`)
	writeHistory(&b, history)
	fmt.Fprintf(&b, "\nUser: %s\n", message)
	b.WriteString(`
Response Guidelines:
1. Be empathetic and clear about medical topics only
2. Use simple language for medical information
3. Include medical disclaimers for health advice
4. Encourage professional medical consultation
5. Politely redirect non-medical questions
6. Never provide emergency medical advice

Assistant:`)
	return b.String()
}

func chatWithScanPrompt(message string, history []ChatTurn, scan ScanContext) string {
	var b strings.Builder
	b.WriteString("You are a SPECIALIZED medical AI assistant for a radiology platform with access to specific scan analysis results.\n\nSCAN CONTEXT:\n")
	fmt.Fprintf(&b, "- Scan ID: %s\n", scan.ScanID)
	fmt.Fprintf(&b, "- Modality: %s\n", strings.ToUpper(scan.Modality))
	fmt.Fprintf(&b, "- Date: %s\n", scan.UploadedAt)
	fmt.Fprintf(&b, "- Description: %s\n", scan.Description)
	if scan.Analyzed {
		b.WriteString("\nAI ANALYSIS RESULTS:\n")
		fmt.Fprintf(&b, "- Disease Classification: %s\n", scan.Classification)
		fmt.Fprintf(&b, "- Confidence Score: %.2f\n", scan.Confidence)
		fmt.Fprintf(&b, "- Risk Level: %s\n", scan.RiskLevel)
		for _, a := range scan.Abnormalities {
			fmt.Fprintf(&b, "- Detected Abnormality: %s at %s (%s)\n", a.Type, a.Location, a.Severity)
		}
		if scan.Explanation != "" {
			fmt.Fprintf(&b, "- AI Explanation: %s\n", scan.Explanation)
		}
	} else {
		b.WriteString("\nAI ANALYSIS: This scan has not been analyzed yet.\n")
	}
	b.WriteString("\nCONVERSATION HISTORY:\n")
	writeHistory(&b, history)
	fmt.Fprintf(&b, "\nUSER QUESTION: %s\n", message)
	b.WriteString(`
INSTRUCTIONS:
1. Use the scan analysis results to provide context-aware responses
2. Reference specific findings from this scan when relevant
3. Explain medical terms in simple language
4. Always include appropriate medical disclaimers
5. If the scan has not been analyzed, suggest requesting analysis first
6. Focus only on medical and radiology topics related to this scan
7. Encourage consultation with healthcare providers for diagnosis and treatment

Respond in a helpful, clear, and medically appropriate manner:`)
	return b.String()
}

func suggestMedicinesPrompt(classification, symptoms string, patientAge int, scan *ScanContext) string {
	var b strings.Builder
	b.WriteString("As a medical AI assistant, suggest commonly prescribed medicines for:\n\n")
	fmt.Fprintf(&b, "Condition: %s\n", classification)
	fmt.Fprintf(&b, "Symptoms: %s\n", symptoms)
	if patientAge > 0 {
		fmt.Fprintf(&b, "Patient Age: %d\n", patientAge)
	}
	if scan != nil {
		b.WriteString("\nScan Findings:\n")
		fmt.Fprintf(&b, "- Risk Level: %s\n", scan.RiskLevel)
		fmt.Fprintf(&b, "- AI Confidence: %.2f\n", scan.Confidence)
		for _, a := range scan.Abnormalities {
			fmt.Fprintf(&b, "- Abnormality: %s at %s (%s)\n", a.Type, a.Location, a.Severity)
		}
		if scan.Explanation != "" {
			fmt.Fprintf(&b, "- Additional findings: %s\n", scan.Explanation)
		}
	}
	b.WriteString(`
Provide suggestions in JSON format:
{
    "medicines": [
        {
            "name": "medicine name",
            "generic_name": "active ingredient",
            "purpose": "what it treats",
            "general_usage": "typical usage information",
            "precautions": "important precautions",
            "availability": "commonly available/prescription required/OTC"
        }
    ],
    "lifestyle_recommendations": ["lifestyle and dietary recommendations"],
    "follow_up": "Recommended follow-up timeline",
    "disclaimer": "Important medical disclaimer emphasizing consultation with a healthcare provider"
}

CRITICAL:
- Include a strong disclaimer about consulting a registered healthcare provider
- Do NOT provide specific dosages
- Respond with JSON only`)
	return b.String()
}

func assessRiskPrompt(findings []string, medicalHistory string) string {
	var b strings.Builder
	b.WriteString("Assess patient risk profile based on:\n\nFindings:\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	if medicalHistory != "" {
		fmt.Fprintf(&b, "\nMedical History: %s\n", medicalHistory)
	}
	b.WriteString(`
Provide risk assessment in JSON:
{
    "overall_risk": "low/medium/high",
    "risk_factors": ["identified factors"],
    "priority_level": "routine/urgent/immediate",
    "recommendations": ["recommended actions"],
    "explanation": "detailed risk explanation"
}

Respond with JSON only.`)
	return b.String()
}

func writeHistory(b *strings.Builder, history []ChatTurn) {
	// Only the most recent turns stay in the prompt window.
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, t := range history {
		fmt.Fprintf(b, "%s: %s\n", t.Sender, t.Message)
	}
}

const historyWindow = 5
