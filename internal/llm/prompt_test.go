package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildIsDeterministic(t *testing.T) {
	b := Builder{}
	req := Request{
		Kind:           KindJobMatch,
		ResumeText:     "Jane Doe, Go developer",
		JobDescription: "Backend engineer, Go and Postgres",
	}
	first, err := b.Build(req)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := b.Build(req)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if first != second {
		t.Fatalf("identical requests produced different prompts")
	}
	if !strings.Contains(first, "Jane Doe, Go developer") {
		t.Fatalf("prompt missing resume text:\n%s", first)
	}
	if !strings.Contains(first, "Backend engineer, Go and Postgres") {
		t.Fatalf("prompt missing job description:\n%s", first)
	}
	if strings.Contains(first, "{{") {
		t.Fatalf("unreplaced placeholder in prompt:\n%s", first)
	}
}

func TestBuildMissingFields(t *testing.T) {
	cases := []struct {
		name      string
		req       Request
		wantField string
	}{
		{"resume analysis without resume", Request{Kind: KindResumeAnalysis}, "resume_text"},
		{"job match without jd", Request{Kind: KindJobMatch, ResumeText: "x"}, "job_description"},
		{"job match without resume", Request{Kind: KindJobMatch, JobDescription: "x"}, "resume_text"},
		{"skill gap without role", Request{Kind: KindSkillGap, ResumeText: "x"}, "target_role"},
		{"interview prep without jd", Request{Kind: KindInterviewPrep}, "job_description"},
	}
	b := Builder{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.Build(tc.req)
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if missing.Field != tc.wantField {
				t.Fatalf("field = %q, want %q", missing.Field, tc.wantField)
			}
		})
	}
}

func TestBuildInterviewPrepGenericCandidate(t *testing.T) {
	b := Builder{}
	prompt, err := b.Build(Request{Kind: KindInterviewPrep, JobDescription: "SRE role"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(prompt, genericCandidate) {
		t.Fatalf("expected generic candidate placeholder in prompt:\n%s", prompt)
	}
}

func TestBuildUnknownVariant(t *testing.T) {
	if _, err := (Builder{}).Build(Request{Kind: Kind("salary_negotiation")}); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestTruncateAtWordBoundary(t *testing.T) {
	got := truncateAtWord("alpha beta gamma delta", 12)
	want := "alpha beta" + TruncationMarker
	if got != want {
		t.Fatalf("truncateAtWord = %q, want %q", got, want)
	}
}

func TestTruncateSingleLongToken(t *testing.T) {
	got := truncateAtWord("aaaaaaaaaaaaaaaaaaaa", 5)
	want := "aaaaa" + TruncationMarker
	if got != want {
		t.Fatalf("truncateAtWord = %q, want %q", got, want)
	}
}

func TestTruncateUnderLimitUntouched(t *testing.T) {
	if got := truncateAtWord("short", 100); got != "short" {
		t.Fatalf("truncateAtWord = %q", got)
	}
}

func TestBuildAppliesFieldBudget(t *testing.T) {
	b := Builder{MaxFieldChars: 12}
	prompt, err := b.Build(Request{
		Kind:           KindJobMatch,
		ResumeText:     "alpha beta gamma delta",
		JobDescription: "ops role",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(prompt, "alpha beta"+TruncationMarker) {
		t.Fatalf("expected truncated resume in prompt:\n%s", prompt)
	}
	if strings.Contains(prompt, "gamma") {
		t.Fatalf("truncated content leaked into prompt:\n%s", prompt)
	}
}
