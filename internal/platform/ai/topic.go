package ai

import "strings"

// RedirectMessage is returned verbatim when a chat message fails the topic
// filter. No provider call is made in that case.
const RedirectMessage = "I'm a specialized medical AI assistant focused on radiology and healthcare topics. " +
	"I can help you with medical questions, radiology image analysis, symptoms discussion, " +
	"and healthcare guidance. How can I assist you with a medical or radiology-related question?"

var healthcareKeywords = []string{
	// medical imaging
	"x-ray", "xray", "ct", "mri", "ultrasound", "scan", "imaging", "radiology",
	"mammography", "fluoroscopy", "angiography", "pet", "tomography",
	// medical conditions
	"disease", "condition", "diagnosis", "symptom", "pain", "treatment",
	"therapy", "medicine", "medication", "drug", "prescription", "doctor",
	"physician", "nurse", "hospital", "clinic", "patient", "health",
	// anatomy
	"heart", "lung", "brain", "kidney", "liver", "bone", "muscle", "blood",
	"chest", "abdomen", "head", "neck", "spine", "joint", "organ",
	// procedures
	"surgery", "operation", "biopsy", "injection", "examination", "checkup",
	"consultation", "screening", "test", "analysis", "report",
	// common terms
	"fever", "headache", "nausea", "fatigue", "infection", "inflammation",
	"tumor", "cancer", "diabetes", "hypertension", "allergy", "fracture",
}

var nonMedicalKeywords = []string{
	// technology and general science
	"weather", "sports", "politics", "entertainment", "movies", "music",
	"games", "fashion", "food", "cooking", "travel", "technology",
	"programming", "software", "computer", "internet", "social media",
	"artificial intelligence", "machine learning", "deep learning",
	"data science", "algorithms", "neural networks", "python", "javascript",
	"coding", "development", "database", "server", "cloud computing",
	// general education, non-medical
	"mathematics", "physics", "chemistry", "history",
	"geography", "literature", "philosophy", "economics", "business",
	"finance", "marketing", "sales", "management", "accounting",
	// entertainment and lifestyle
	"celebrity", "news", "current events", "shopping",
	"beauty", "makeup", "style", "trends", "gossip",
}

var questionPatterns = []string{
	"what is", "what are", "how to", "why do", "when should",
	"i have", "i feel", "my", "hurts", "pain", "ache", "sick",
	"doctor", "medicine", "treatment", "cure", "heal",
}

// IsMedicalTopic reports whether a chat message looks like a direct medical
// question. Denylist hits win over allowlist hits; messages with neither are
// admitted only when they follow a symptom-question pattern and carry at
// least three words.
func IsMedicalTopic(message string) bool {
	if strings.TrimSpace(message) == "" {
		return false
	}
	lower := strings.ToLower(message)

	for _, kw := range nonMedicalKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range healthcareKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, pat := range questionPatterns {
		if strings.Contains(lower, pat) {
			return len(strings.Fields(message)) >= 3
		}
	}
	return false
}
