package llm

import (
	"fmt"
	"strings"
	"unicode"
)

// TruncationMarker is appended wherever a field was cut to fit the
// per-field character budget.
const TruncationMarker = "\n[... truncated ...]"

const defaultMaxFieldChars = 12000

// genericCandidate stands in when interview prep is requested without a
// résumé, matching the original product behavior.
const genericCandidate = "General candidate"

// Builder assembles prompt text from a Request. The zero value uses the
// default field budget.
type Builder struct {
	MaxFieldChars int
}

// Build fills the variant's fixed template with the request fields. It is
// deterministic: identical requests produce byte-identical prompts. Empty
// required fields yield a MissingFieldError naming the field.
func (b Builder) Build(req Request) (string, error) {
	template, ok := PromptTemplate(req.Kind)
	if !ok {
		return "", fmt.Errorf("unknown analysis variant: %q", req.Kind)
	}
	if err := validate(req); err != nil {
		return "", err
	}

	limit := b.MaxFieldChars
	if limit <= 0 {
		limit = defaultMaxFieldChars
	}

	resume := req.ResumeText
	if req.Kind == KindInterviewPrep && strings.TrimSpace(resume) == "" {
		resume = genericCandidate
	}
	profile := req.CandidateProfile
	if strings.TrimSpace(profile) == "" {
		profile = "{}"
	}

	replacer := strings.NewReplacer(
		"{{RESUME_TEXT}}", truncateAtWord(resume, limit),
		"{{JOB_DESCRIPTION}}", truncateAtWord(req.JobDescription, limit),
		"{{TARGET_ROLE}}", truncateAtWord(req.TargetRole, limit),
		"{{CANDIDATE_PROFILE}}", truncateAtWord(profile, limit),
	)
	return replacer.Replace(template), nil
}

func validate(req Request) error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	switch req.Kind {
	case KindResumeAnalysis:
		if blank(req.ResumeText) {
			return &MissingFieldError{Field: "resume_text"}
		}
	case KindJobMatch:
		if blank(req.ResumeText) {
			return &MissingFieldError{Field: "resume_text"}
		}
		if blank(req.JobDescription) {
			return &MissingFieldError{Field: "job_description"}
		}
	case KindSkillGap:
		if blank(req.ResumeText) {
			return &MissingFieldError{Field: "resume_text"}
		}
		if blank(req.TargetRole) {
			return &MissingFieldError{Field: "target_role"}
		}
	case KindInterviewPrep:
		// Resume text is optional here; a generic candidate is substituted.
		if blank(req.JobDescription) {
			return &MissingFieldError{Field: "job_description"}
		}
	}
	return nil
}

// truncateAtWord cuts s to at most limit characters, never mid-word: the
// cut lands on the last whitespace boundary before the limit. The marker
// is appended outside the budget so the cut point stays visible.
func truncateAtWord(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !unicode.IsSpace(rune(s[cut])) {
		cut--
	}
	if cut == 0 {
		// A single token longer than the budget; keep the hard cut.
		cut = limit
	}
	return strings.TrimRight(s[:cut], " \t\n\r") + TruncationMarker
}
