package extract

import (
	"testing"
)

const sampleResume = `Jane Doe
jane.doe@example.com | +1 (555) 123-4567

Senior Backend Engineer with 7 years of experience building services
in Python and Go. Comfortable with Docker, Kubernetes, PostgreSQL and
AWS. Bachelor of Science, Example University.`

func TestExtractSignals(t *testing.T) {
	sig := ExtractSignals(sampleResume)

	if sig.Email != "jane.doe@example.com" {
		t.Fatalf("email = %q", sig.Email)
	}
	if sig.Phone == "" {
		t.Fatalf("expected a phone number")
	}
	if sig.ExperienceYears != "7" {
		t.Fatalf("experience years = %q", sig.ExperienceYears)
	}

	wantSkills := []string{"python", "docker", "kubernetes", "postgresql", "aws"}
	for _, skill := range wantSkills {
		if !containsString(sig.Skills, skill) {
			t.Fatalf("skills %v missing %q", sig.Skills, skill)
		}
	}
	if containsString(sig.Skills, "react") {
		t.Fatalf("skills %v should not contain react", sig.Skills)
	}

	if !containsString(sig.Education, "bachelor") || !containsString(sig.Education, "university") {
		t.Fatalf("education = %v", sig.Education)
	}
	if sig.WordCount == 0 || sig.CharCount == 0 {
		t.Fatalf("counts should be non-zero: %+v", sig)
	}
}

func TestExtractSignalsNoMatches(t *testing.T) {
	sig := ExtractSignals("short note about nothing in particular")
	if sig.Email != "" || sig.Phone != "" || sig.ExperienceYears != "" {
		t.Fatalf("unexpected contact signals: %+v", sig)
	}
	if len(sig.Skills) != 0 || len(sig.Education) != 0 {
		t.Fatalf("unexpected keyword signals: %+v", sig)
	}
	if sig.WordCount != 6 {
		t.Fatalf("word count = %d", sig.WordCount)
	}
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
