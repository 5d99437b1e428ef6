package llm

import _ "embed"

var (
	//go:embed prompts/resume_analysis.txt
	promptResumeAnalysis string
	//go:embed prompts/job_match.txt
	promptJobMatch string
	//go:embed prompts/skill_gap.txt
	promptSkillGap string
	//go:embed prompts/interview_prep.txt
	promptInterviewPrep string
)

// PromptTemplate returns the template text for a variant and whether the
// variant was recognized. Templates are build-time constants.
func PromptTemplate(kind Kind) (string, bool) {
	switch kind {
	case KindResumeAnalysis:
		return promptResumeAnalysis, true
	case KindJobMatch:
		return promptJobMatch, true
	case KindSkillGap:
		return promptSkillGap, true
	case KindInterviewPrep:
		return promptInterviewPrep, true
	default:
		return "", false
	}
}
