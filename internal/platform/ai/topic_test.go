package ai

import "testing"

func TestIsMedicalTopic(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"What is Deep Learning?", false},
		{"How does artificial intelligence work?", false},
		{"What is machine learning?", false},
		{"Tell me about programming", false},
		{"What's the weather like?", false},
		{"Who won the football game?", false},

		{"What causes chest pain?", true},
		{"I have a headache, what should I do?", true},
		{"What is an X-ray scan?", true},
		{"What are the symptoms of diabetes?", true},
		{"When should I see a doctor?", true},
		{"What is pneumonia?", true},
		{"My back hurts, what could it be?", true},
		{"What is an MRI scan used for?", true},
	}
	for _, tc := range cases {
		if got := IsMedicalTopic(tc.message); got != tc.want {
			t.Errorf("IsMedicalTopic(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}

func TestIsMedicalTopicEmpty(t *testing.T) {
	if IsMedicalTopic("") {
		t.Error("empty message should not pass the filter")
	}
	if IsMedicalTopic("   ") {
		t.Error("whitespace message should not pass the filter")
	}
}

func TestIsMedicalTopicDenylistWins(t *testing.T) {
	// A denylist hit filters the message even when medical words appear.
	if IsMedicalTopic("Can machine learning detect lung cancer?") {
		t.Error("denylist keyword should override healthcare keywords")
	}
}

func TestIsMedicalTopicShortQuestion(t *testing.T) {
	// Pattern-only matches need at least three words.
	if IsMedicalTopic("what is") {
		t.Error("two-word pattern match should be filtered")
	}
}
