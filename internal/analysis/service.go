package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"resume-insight/internal/extract"
	"resume-insight/internal/llm"
	"resume-insight/internal/shared/metrics"
	"resume-insight/internal/shared/telemetry"
)

// Input is one user-triggered analysis invocation. Exactly one of
// ResumeText / ResumeFile supplies the résumé; the file takes precedence.
type Input struct {
	Variant        llm.Kind
	ResumeText     string
	ResumeFile     *extract.RawDocument
	JobDescription string
	TargetRole     string
	Model          string
}

// Service runs the extraction, prompt-assembly, provider-call, and parsing
// pipeline. It holds no per-invocation state; each call owns its own
// document/prompt/response chain.
type Service struct {
	LLM     llm.Client
	Prompt  llm.Builder
	Options llm.Options
}

// Analyze executes one full pipeline run. Parser failures never surface as
// errors: the result degrades to the raw provider text instead.
func (s *Service) Analyze(ctx context.Context, in Input) (Result, error) {
	invocationID := uuid.NewString()
	variant := string(in.Variant)

	resumeText, signals, err := s.resolveResume(in)
	if err != nil {
		return Result{}, err
	}

	req := llm.Request{
		Kind:           in.Variant,
		ResumeText:     resumeText,
		JobDescription: extract.Normalize(in.JobDescription),
		TargetRole:     extract.Normalize(in.TargetRole),
	}
	if signals != nil {
		profile, merr := json.Marshal(signals)
		if merr == nil {
			req.CandidateProfile = string(profile)
		}
	}

	prompt, err := s.Prompt.Build(req)
	if err != nil {
		return Result{}, err
	}

	opts := s.Options
	if in.Model != "" {
		opts.Model = in.Model
	}

	metrics.IncAnalysisStarted(variant)
	resp, err := s.LLM.Complete(ctx, prompt, opts)
	if err != nil {
		metrics.IncAnalysisFailed(variant)
		return Result{}, fmt.Errorf("analysis %s: %w", variant, err)
	}
	metrics.ObserveProviderDurationMs(float64(resp.Elapsed.Microseconds()) / 1000.0)

	result, perr := Parse(resp.Text, in.Variant)
	if perr != nil {
		if !errors.Is(perr, ErrUnparseable) {
			metrics.IncAnalysisFailed(variant)
			return Result{}, perr
		}
		// Degrade: the caller still gets the provider's raw text.
		telemetry.Warn("analysis.unparseable", map[string]any{
			"invocation_id": invocationID,
			"variant":       variant,
			"model":         resp.Model,
		})
		result = Result{Variant: in.Variant, Parsed: false, RawText: resp.Text}
	}

	result.InvocationID = invocationID
	result.Model = resp.Model
	result.ElapsedMS = resp.Elapsed.Milliseconds()
	result.Signals = signals

	metrics.IncAnalysisCompleted(variant)
	telemetry.Info("analysis.complete", map[string]any{
		"invocation_id": invocationID,
		"variant":       variant,
		"model":         resp.Model,
		"parsed":        result.Parsed,
		"duration_ms":   resp.Elapsed.Milliseconds(),
		"total_tokens":  resp.TotalTokens,
	})
	return result, nil
}

// resolveResume produces the normalized résumé text for the invocation,
// extracting from the uploaded document when one was supplied. Signals are
// only computed for the resume-analysis variant, which uses them in its
// prompt and echoes them to the caller.
func (s *Service) resolveResume(in Input) (string, *extract.Signals, error) {
	var (
		text string
		err  error
	)
	if in.ResumeFile != nil {
		text, err = extract.Extract(*in.ResumeFile)
		if err != nil {
			return "", nil, err
		}
	} else {
		text = extract.Normalize(in.ResumeText)
	}

	if in.Variant != llm.KindResumeAnalysis || text == "" {
		return text, nil, nil
	}
	signals := extract.ExtractSignals(text)
	return text, &signals, nil
}
