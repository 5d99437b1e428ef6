package analysis

import (
	"resume-insight/internal/extract"
	"resume-insight/internal/llm"
)

// Result is the parsed, structured view of one provider reply. Score
// fields are pointers: nil means the provider did not supply the value,
// which is distinct from a zero score. All scores are clamped to [0,100].
type Result struct {
	InvocationID string   `json:"invocationId"`
	Variant      llm.Kind `json:"variant"`
	Parsed       bool     `json:"parsed"`
	Model        string   `json:"model,omitempty"`
	ElapsedMS    int64    `json:"elapsedMs"`

	// RawText carries the verbatim provider reply when parsing failed,
	// so the caller can still display something.
	RawText string `json:"rawText,omitempty"`

	Resume    *ResumeReport    `json:"resume,omitempty"`
	JobMatch  *JobMatchReport  `json:"jobMatch,omitempty"`
	SkillGap  *SkillGapReport  `json:"skillGap,omitempty"`
	Interview *InterviewReport `json:"interview,omitempty"`

	Signals *extract.Signals `json:"signals,omitempty"`
}

type ResumeReport struct {
	OverallScore    *int             `json:"overallScore"`
	SkillsScore     *int             `json:"skillsScore"`
	ExperienceLevel string           `json:"experienceLevel,omitempty"`
	SkillsBreakdown *SkillsBreakdown `json:"skillsBreakdown,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
}

type SkillsBreakdown struct {
	TechnicalSkills   *int `json:"technicalSkills"`
	SoftSkills        *int `json:"softSkills"`
	IndustryKnowledge *int `json:"industryKnowledge"`
}

type JobMatchReport struct {
	MatchScore     *int            `json:"matchScore"`
	Verdict        string          `json:"verdict,omitempty"`
	CategoryScores *CategoryScores `json:"categoryScores,omitempty"`
	Strengths      []string        `json:"strengths,omitempty"`
	Improvements   []string        `json:"improvements,omitempty"`
}

type CategoryScores struct {
	Skills     *int `json:"skills"`
	Experience *int `json:"experience"`
	Education  *int `json:"education"`
	CultureFit *int `json:"cultureFit"`
}

type SkillGapReport struct {
	RequiredSkills []string `json:"requiredSkills,omitempty"`
	CurrentSkills  []string `json:"currentSkills,omitempty"`
	MissingSkills  []string `json:"missingSkills,omitempty"`
	LearningPath   []string `json:"learningPath,omitempty"`
}

type InterviewReport struct {
	TechnicalQuestions  []string `json:"technicalQuestions,omitempty"`
	BehavioralQuestions []string `json:"behavioralQuestions,omitempty"`
	CompanyQuestions    []string `json:"companyQuestions,omitempty"`
}

// clampScore bounds a score to [0,100]; nil stays nil (absent).
func clampScore(v *int) *int {
	if v == nil {
		return nil
	}
	score := *v
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return &score
}

// verdictFor bands a match score the way the product presents it.
func verdictFor(score *int) string {
	if score == nil {
		return ""
	}
	switch {
	case *score >= 80:
		return "strong_match"
	case *score >= 60:
		return "good_match"
	default:
		return "needs_work"
	}
}
