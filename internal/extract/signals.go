package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Signals are cheap, locally-derived facts about a résumé. They enrich the
// analysis prompt and are echoed in the response; they never replace the
// provider's reasoning.
type Signals struct {
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Education       []string `json:"education,omitempty"`
	ExperienceYears string   `json:"experienceYears,omitempty"`
	WordCount       int      `json:"wordCount"`
	CharCount       int      `json:"charCount"`
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`[+(]?[1-9][0-9 .\-()]{8,}[0-9]`)
	yearsPattern = regexp.MustCompile(`(\d+)\s*(?:years?|yrs?)`)
)

var skillKeywords = []string{
	"python", "java", "javascript", "react", "node.js", "sql", "nosql",
	"aws", "docker", "kubernetes", "machine learning", "deep learning",
	"tensorflow", "pytorch", "data analysis", "tableau", "power bi",
	"agile", "scrum", "devops", "ci/cd", "git", "rest api", "graphql",
	"html", "css", "typescript", "angular", "vue", "mongodb", "postgresql",
	"mysql", "redis", "linux", "unix", "bash", "shell", "powershell",
}

var educationKeywords = []string{
	"bachelor", "master", "phd", "degree", "university", "college",
}

var (
	skillPatterns     = compileWordPatterns(skillKeywords)
	educationPatterns = compileWordPatterns(educationKeywords)
)

func compileWordPatterns(words []string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(words))
	for _, w := range words {
		out[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

// ExtractSignals scans résumé text for contact details, known skills,
// education keywords, and a years-of-experience figure.
func ExtractSignals(text string) Signals {
	lower := strings.ToLower(text)

	sig := Signals{
		WordCount: len(strings.Fields(text)),
		CharCount: len(text),
	}
	if m := emailPattern.FindString(text); m != "" {
		sig.Email = m
	}
	if m := phonePattern.FindString(text); m != "" {
		sig.Phone = strings.TrimSpace(m)
	}
	for _, skill := range skillKeywords {
		if skillPatterns[skill].MatchString(lower) {
			sig.Skills = append(sig.Skills, skill)
		}
	}
	for _, kw := range educationKeywords {
		if educationPatterns[kw].MatchString(lower) {
			sig.Education = append(sig.Education, kw)
		}
	}
	sort.Strings(sig.Education)
	if m := yearsPattern.FindStringSubmatch(lower); m != nil {
		sig.ExperienceYears = m[1]
	}
	return sig
}
