package llm

import (
	"context"
	"time"
)

// Kind identifies an analysis variant.
type Kind string

const (
	KindResumeAnalysis Kind = "resume_analysis"
	KindJobMatch       Kind = "job_match"
	KindSkillGap       Kind = "skill_gap"
	KindInterviewPrep  Kind = "interview_prep"
)

// Request carries the text fields for one analysis variant. All fields are
// plain extracted text; the prompt builder owns truncation and templating.
type Request struct {
	Kind           Kind
	ResumeText     string
	JobDescription string
	TargetRole     string
	// CandidateProfile is an optional JSON blob of locally detected
	// résumé signals, included in the resume-analysis prompt.
	CandidateProfile string
}

// Options are per-call provider parameters. Timeout bounds one completion
// call; zero means only the caller's context deadline applies.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Response is the raw provider reply plus call metadata. It is ephemeral
// and never persisted.
type Response struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Elapsed          time.Duration
}

// Client abstracts the hosted model provider so it can be substituted with
// a fake in tests. The call is the pipeline's only suspension point;
// implementations must honor context cancellation.
type Client interface {
	Complete(ctx context.Context, prompt string, opts Options) (Response, error)
}
