package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-insight/internal/analysis"
	"resume-insight/internal/config"
	"resume-insight/internal/extract"
	"resume-insight/internal/llm"
	"resume-insight/internal/llm/groq"
)

// prompttest is a dev tool: it extracts a résumé, builds the prompt for one
// analysis variant, and either prints the prompt or runs the full pipeline
// against the real provider.
func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume file (pdf, docx, or txt)")
	jdPath := flag.String("jd", "", "Path to job description file (optional)")
	role := flag.String("role", "", "Target role (skill gap / interview prep)")
	variant := flag.String("variant", "resume", "Analysis variant: resume, job-match, skill-gap, interview-prep")
	model := flag.String("model", cfg.LLMModel, "Provider model id or alias (fast/powerful)")
	call := flag.Bool("call", false, "Call the provider and print the parsed result")
	outPath := flag.String("out", "", "Path to write output (optional)")
	flag.Parse()

	kind, err := kindFor(*variant)
	if err != nil {
		exitErr(err.Error())
	}

	resumeText := ""
	if strings.TrimSpace(*resumePath) != "" {
		resumeText, err = extractFile(*resumePath)
		if err != nil {
			exitErr(err.Error())
		}
	}

	jobDescription := ""
	if strings.TrimSpace(*jdPath) != "" {
		jdBytes, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobDescription = string(jdBytes)
	}

	if !*call {
		builder := llm.Builder{MaxFieldChars: cfg.MaxPromptFieldChars}
		prompt, err := builder.Build(llm.Request{
			Kind:           kind,
			ResumeText:     resumeText,
			JobDescription: extract.Normalize(jobDescription),
			TargetRole:     *role,
		})
		if err != nil {
			exitErr(fmt.Sprintf("build prompt: %v", err))
		}
		writeOut(*outPath, []byte(prompt))
		return
	}

	provider, err := groq.NewClient(cfg.GroqAPIKey, cfg.LLMTimeout, cfg.LLMFallbackModel)
	if err != nil {
		exitErr(err.Error())
	}
	svc := &analysis.Service{
		LLM:    llm.NewRetrying(provider, cfg.LLMMaxRetries),
		Prompt: llm.Builder{MaxFieldChars: cfg.MaxPromptFieldChars},
		Options: llm.Options{
			Model:       config.ResolveModel(*model, cfg.LLMModel),
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		},
	}

	result, err := svc.Analyze(context.Background(), analysis.Input{
		Variant:        kind,
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		TargetRole:     *role,
	})
	if err != nil {
		exitErr(fmt.Sprintf("analyze: %v", err))
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	writeOut(*outPath, pretty)
}

func kindFor(variant string) (llm.Kind, error) {
	switch strings.TrimSpace(strings.ToLower(variant)) {
	case "resume":
		return llm.KindResumeAnalysis, nil
	case "job-match":
		return llm.KindJobMatch, nil
	case "skill-gap":
		return llm.KindSkillGap, nil
	case "interview-prep":
		return llm.KindInterviewPrep, nil
	default:
		return "", fmt.Errorf("unsupported variant: %s", variant)
	}
}

func extractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	name := filepath.Base(path)
	format, ok := extract.FormatFor("", name)
	if !ok {
		return "", fmt.Errorf("unsupported resume file type: %s", name)
	}
	text, err := extract.Extract(extract.RawDocument{Data: data, Format: format, Name: name})
	if err != nil {
		return "", fmt.Errorf("extract resume text: %w", err)
	}
	return text, nil
}

func writeOut(outPath string, data []byte) {
	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(data); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
