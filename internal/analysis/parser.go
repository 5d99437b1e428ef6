package analysis

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"resume-insight/internal/llm"
)

// Parse extracts a structured Result from a provider reply. It tries the
// requested JSON schema first, then falls back to a tolerant scan of loose
// text driven by a fixed-order rule table. Sections that cannot be located
// stay absent; a reply with no recognizable structure at all returns
// ErrUnparseable so the caller can fall back to the raw text.
func Parse(text string, kind llm.Kind) (Result, error) {
	if payload, ok := sliceJSON(stripFences(text)); ok {
		if res, ok := parseJSON(payload, kind); ok {
			return res, nil
		}
	}
	if res, ok := parseLoose(text, kind); ok {
		return res, nil
	}
	return Result{}, ErrUnparseable
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(text string) string {
	clean := strings.TrimSpace(text)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// sliceJSON cuts the first top-level JSON object out of surrounding prose.
func sliceJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ---- JSON-first parsing ------------------------------------------------

type resumeJSON struct {
	OverallScore    *float64 `json:"overall_score"`
	SkillsScore     *float64 `json:"skills_score"`
	ExperienceLevel string   `json:"experience_level"`
	SkillsBreakdown *struct {
		TechnicalSkills   *float64 `json:"technical_skills"`
		SoftSkills        *float64 `json:"soft_skills"`
		IndustryKnowledge *float64 `json:"industry_knowledge"`
	} `json:"skills_breakdown"`
	Recommendations []string `json:"recommendations"`
}

type jobMatchJSON struct {
	MatchScore     *float64 `json:"match_score"`
	CategoryScores *struct {
		Skills     *float64 `json:"skills"`
		Experience *float64 `json:"experience"`
		Education  *float64 `json:"education"`
		CultureFit *float64 `json:"culture_fit"`
	} `json:"category_scores"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

type skillGapJSON struct {
	RequiredSkills []string `json:"required_skills"`
	CurrentSkills  []string `json:"current_skills"`
	MissingSkills  []string `json:"missing_skills"`
	LearningPath   []string `json:"learning_path"`
}

type interviewJSON struct {
	TechnicalQuestions  []string `json:"technical_questions"`
	BehavioralQuestions []string `json:"behavioral_questions"`
	CompanyQuestions    []string `json:"company_questions"`
}

func parseJSON(payload string, kind llm.Kind) (Result, bool) {
	switch kind {
	case llm.KindResumeAnalysis:
		var raw resumeJSON
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return Result{}, false
		}
		report := &ResumeReport{
			OverallScore:    scoreFromFloat(raw.OverallScore),
			SkillsScore:     scoreFromFloat(raw.SkillsScore),
			ExperienceLevel: strings.TrimSpace(raw.ExperienceLevel),
			Recommendations: cleanList(raw.Recommendations),
		}
		if raw.SkillsBreakdown != nil {
			report.SkillsBreakdown = &SkillsBreakdown{
				TechnicalSkills:   scoreFromFloat(raw.SkillsBreakdown.TechnicalSkills),
				SoftSkills:        scoreFromFloat(raw.SkillsBreakdown.SoftSkills),
				IndustryKnowledge: scoreFromFloat(raw.SkillsBreakdown.IndustryKnowledge),
			}
		}
		if report.OverallScore == nil && report.SkillsScore == nil &&
			report.ExperienceLevel == "" && report.SkillsBreakdown == nil &&
			len(report.Recommendations) == 0 {
			return Result{}, false
		}
		return Result{Variant: kind, Parsed: true, Resume: report}, true

	case llm.KindJobMatch:
		var raw jobMatchJSON
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return Result{}, false
		}
		report := &JobMatchReport{
			MatchScore:   scoreFromFloat(raw.MatchScore),
			Strengths:    cleanList(raw.Strengths),
			Improvements: cleanList(raw.Improvements),
		}
		if raw.CategoryScores != nil {
			report.CategoryScores = &CategoryScores{
				Skills:     scoreFromFloat(raw.CategoryScores.Skills),
				Experience: scoreFromFloat(raw.CategoryScores.Experience),
				Education:  scoreFromFloat(raw.CategoryScores.Education),
				CultureFit: scoreFromFloat(raw.CategoryScores.CultureFit),
			}
		}
		if report.MatchScore == nil && report.CategoryScores == nil &&
			len(report.Strengths) == 0 && len(report.Improvements) == 0 {
			return Result{}, false
		}
		report.Verdict = verdictFor(report.MatchScore)
		return Result{Variant: kind, Parsed: true, JobMatch: report}, true

	case llm.KindSkillGap:
		var raw skillGapJSON
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return Result{}, false
		}
		report := &SkillGapReport{
			RequiredSkills: cleanList(raw.RequiredSkills),
			CurrentSkills:  cleanList(raw.CurrentSkills),
			MissingSkills:  cleanList(raw.MissingSkills),
			LearningPath:   cleanList(raw.LearningPath),
		}
		if len(report.RequiredSkills) == 0 && len(report.CurrentSkills) == 0 &&
			len(report.MissingSkills) == 0 && len(report.LearningPath) == 0 {
			return Result{}, false
		}
		return Result{Variant: kind, Parsed: true, SkillGap: report}, true

	case llm.KindInterviewPrep:
		var raw interviewJSON
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return Result{}, false
		}
		report := &InterviewReport{
			TechnicalQuestions:  cleanList(raw.TechnicalQuestions),
			BehavioralQuestions: cleanList(raw.BehavioralQuestions),
			CompanyQuestions:    cleanList(raw.CompanyQuestions),
		}
		if len(report.TechnicalQuestions) == 0 && len(report.BehavioralQuestions) == 0 &&
			len(report.CompanyQuestions) == 0 {
			return Result{}, false
		}
		return Result{Variant: kind, Parsed: true, Interview: report}, true
	}
	return Result{}, false
}

// ---- loose-text parsing -------------------------------------------------

type captureKind int

const (
	captureScore captureKind = iota
	captureList
	captureText
)

// sectionRule maps a section-header pattern to a result field. Rules are
// evaluated in table order; the first matching header wins and a section
// ends at the next recognized header or end of text.
type sectionRule struct {
	field   string
	capture captureKind
	header  *regexp.Regexp
}

var ruleTables = map[llm.Kind][]sectionRule{
	llm.KindResumeAnalysis: {
		{"overall_score", captureScore, regexp.MustCompile(`(?i)^overall\s*score\b`)},
		{"skills_score", captureScore, regexp.MustCompile(`(?i)^skills?\s*(?:score|match)\b`)},
		{"experience_level", captureText, regexp.MustCompile(`(?i)^experience\s*level\b`)},
		{"technical_skills", captureScore, regexp.MustCompile(`(?i)^technical\s*skills\b`)},
		{"soft_skills", captureScore, regexp.MustCompile(`(?i)^soft\s*skills\b`)},
		{"industry_knowledge", captureScore, regexp.MustCompile(`(?i)^industry\s*knowledge\b`)},
		{"recommendations", captureList, regexp.MustCompile(`(?i)^(?:improvement\s+)?recommendations?\b`)},
	},
	llm.KindJobMatch: {
		{"match_score", captureScore, regexp.MustCompile(`(?i)^(?:overall\s+)?match\s*score\b`)},
		{"skills", captureScore, regexp.MustCompile(`(?i)^skills\b`)},
		{"experience", captureScore, regexp.MustCompile(`(?i)^experience\b`)},
		{"education", captureScore, regexp.MustCompile(`(?i)^education\b`)},
		{"culture_fit", captureScore, regexp.MustCompile(`(?i)^culture\s*fit\b`)},
		{"strengths", captureList, regexp.MustCompile(`(?i)^(?:your\s+)?strengths\b`)},
		{"improvements", captureList, regexp.MustCompile(`(?i)^(?:areas\s+for\s+)?improvements?\b`)},
	},
	llm.KindSkillGap: {
		{"required_skills", captureList, regexp.MustCompile(`(?i)^required\s*skills\b`)},
		{"current_skills", captureList, regexp.MustCompile(`(?i)^(?:your\s+)?current\s*skills\b`)},
		{"missing_skills", captureList, regexp.MustCompile(`(?i)^missing\s*skills\b`)},
		{"learning_path", captureList, regexp.MustCompile(`(?i)^(?:recommended\s+)?learning\s*path\b`)},
	},
	llm.KindInterviewPrep: {
		{"technical_questions", captureList, regexp.MustCompile(`(?i)^technical\s*questions\b`)},
		{"behavioral_questions", captureList, regexp.MustCompile(`(?i)^behavioral\s*questions\b`)},
		{"company_questions", captureList, regexp.MustCompile(`(?i)^company(?:\s*(?:&|and)\s*role)?\s*questions\b`)},
	},
}

var (
	scorePattern  = regexp.MustCompile(`(\d{1,3})`)
	bulletPattern = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.*\S)\s*$`)
)

type capturedSections struct {
	scores map[string]*int
	lists  map[string][]string
	texts  map[string]string
}

func parseLoose(text string, kind llm.Kind) (Result, bool) {
	rules, ok := ruleTables[kind]
	if !ok {
		return Result{}, false
	}

	sections := capturedSections{
		scores: map[string]*int{},
		lists:  map[string][]string{},
		texts:  map[string]string{},
	}
	seen := map[string]bool{}
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		head := normalizeHeaderLine(lines[i])
		rule, rest := matchRule(rules, head, seen)
		if rule == nil {
			continue
		}
		seen[rule.field] = true

		switch rule.capture {
		case captureScore:
			if v, ok := scoreToken(rest); ok {
				sections.scores[rule.field] = clampScore(&v)
			} else if nextLineInSection(rules, lines, i) {
				if v, ok := scoreToken(lines[i+1]); ok {
					sections.scores[rule.field] = clampScore(&v)
				}
			}
		case captureText:
			if rest != "" {
				sections.texts[rule.field] = rest
			} else if nextLineInSection(rules, lines, i) {
				sections.texts[rule.field] = strings.TrimSpace(lines[i+1])
			}
		case captureList:
			var items []string
			j := i + 1
			for ; j < len(lines); j++ {
				if isRecognizedHeader(rules, normalizeHeaderLine(lines[j])) {
					break
				}
				if m := bulletPattern.FindStringSubmatch(lines[j]); m != nil {
					items = append(items, strings.Trim(m[1], "* "))
				}
			}
			i = j - 1
			if len(items) > 0 {
				sections.lists[rule.field] = items
			}
		}
	}

	if !sections.any() {
		return Result{}, false
	}
	return assembleLoose(sections, kind), true
}

func (s capturedSections) any() bool {
	return len(s.scores) > 0 || len(s.lists) > 0 || len(s.texts) > 0
}

func assembleLoose(s capturedSections, kind llm.Kind) Result {
	res := Result{Variant: kind, Parsed: true}
	switch kind {
	case llm.KindResumeAnalysis:
		report := &ResumeReport{
			OverallScore:    s.scores["overall_score"],
			SkillsScore:     s.scores["skills_score"],
			ExperienceLevel: s.texts["experience_level"],
			Recommendations: s.lists["recommendations"],
		}
		tech, soft, industry := s.scores["technical_skills"], s.scores["soft_skills"], s.scores["industry_knowledge"]
		if tech != nil || soft != nil || industry != nil {
			report.SkillsBreakdown = &SkillsBreakdown{
				TechnicalSkills:   tech,
				SoftSkills:        soft,
				IndustryKnowledge: industry,
			}
		}
		res.Resume = report
	case llm.KindJobMatch:
		report := &JobMatchReport{
			MatchScore:   s.scores["match_score"],
			Strengths:    s.lists["strengths"],
			Improvements: s.lists["improvements"],
		}
		skills, exp := s.scores["skills"], s.scores["experience"]
		edu, culture := s.scores["education"], s.scores["culture_fit"]
		if skills != nil || exp != nil || edu != nil || culture != nil {
			report.CategoryScores = &CategoryScores{
				Skills:     skills,
				Experience: exp,
				Education:  edu,
				CultureFit: culture,
			}
		}
		report.Verdict = verdictFor(report.MatchScore)
		res.JobMatch = report
	case llm.KindSkillGap:
		res.SkillGap = &SkillGapReport{
			RequiredSkills: s.lists["required_skills"],
			CurrentSkills:  s.lists["current_skills"],
			MissingSkills:  s.lists["missing_skills"],
			LearningPath:   s.lists["learning_path"],
		}
	case llm.KindInterviewPrep:
		res.Interview = &InterviewReport{
			TechnicalQuestions:  s.lists["technical_questions"],
			BehavioralQuestions: s.lists["behavioral_questions"],
			CompanyQuestions:    s.lists["company_questions"],
		}
	}
	return res
}

// normalizeHeaderLine strips markdown decoration so header patterns can
// anchor at the start of the meaningful text.
func normalizeHeaderLine(line string) string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "#")
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.Trim(trimmed, "*_")
	return strings.TrimSpace(trimmed)
}

// matchRule finds the first rule in table order whose header matches the
// line. Fields already captured are skipped: the first matching header
// wins. Returns the remainder of the line after the header.
func matchRule(rules []sectionRule, line string, seen map[string]bool) (*sectionRule, string) {
	if line == "" {
		return nil, ""
	}
	for i := range rules {
		loc := rules[i].header.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if seen[rules[i].field] {
			continue
		}
		rest := strings.TrimSpace(line[loc[1]:])
		rest = strings.TrimLeft(rest, ":-–")
		rest = strings.TrimSpace(strings.Trim(rest, "*"))
		return &rules[i], rest
	}
	return nil, ""
}

// nextLineInSection reports whether line i+1 exists and still belongs to the
// current section. A recognized header starts a new section and must not be
// consumed as the previous section's value.
func nextLineInSection(rules []sectionRule, lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	return !isRecognizedHeader(rules, normalizeHeaderLine(lines[i+1]))
}

func isRecognizedHeader(rules []sectionRule, line string) bool {
	if line == "" {
		return false
	}
	for i := range rules {
		if rules[i].header.MatchString(line) {
			return true
		}
	}
	return false
}

// scoreToken pulls the first integer out of a fragment like "85", "85%",
// or "85/100".
func scoreToken(s string) (int, bool) {
	m := scorePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

func scoreFromFloat(v *float64) *int {
	if v == nil {
		return nil
	}
	score := int(*v)
	return clampScore(&score)
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
