// Package scorer checks generated LaTeX resume sections for structural problems.
package scorer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nikogura/job-tracker/pkg/llm"
)

// Violation is one failed rule.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// Score is the result of checking one section.
type Score struct {
	Section    llm.Section `json:"section"`
	Total      int         `json:"total"`
	Violations []Violation `json:"violations"`
}

// Passed reports whether the section has no critical violations.
func (s Score) Passed() (ok bool) {
	for _, v := range s.Violations {
		if v.Severity == "critical" {
			return false
		}
	}
	return true
}

// Scorer calculates scores for generated sections.
type Scorer struct{}

// NewScorer creates a new scorer instance.
func NewScorer() (scorer *Scorer) {
	scorer = &Scorer{}
	return scorer
}

//nolint:gochecknoglobals // compiled once
var (
	sectionHeaderRe = regexp.MustCompile(`\\section\*?\{`)
	unescapedRe     = regexp.MustCompile(`(^|[^\\])[&#]`)
)

// CheckSection runs every rule against the LaTeX for one section.
func (s *Scorer) CheckSection(section llm.Section, latex string) (score Score) {
	score = Score{Section: section, Violations: []Violation{}}

	trimmed := strings.TrimSpace(latex)
	if trimmed == "" {
		score.Violations = append(score.Violations, violation(RuleEmptySection, "section is empty"))
		score.Total = 0
		return score
	}

	begins := strings.Count(trimmed, `\begin{itemize}`)
	ends := strings.Count(trimmed, `\end{itemize}`)
	if begins != ends {
		score.Violations = append(score.Violations,
			violation(RuleUnbalancedItemize, fmt.Sprintf("%d begin vs %d end", begins, ends)))
	}

	if !sectionHeaderRe.MatchString(trimmed) {
		score.Violations = append(score.Violations, violation(RuleMissingHeader, "no section header"))
	}

	if section == llm.SectionExperience && !strings.Contains(trimmed, `\resumeSubheading`) {
		score.Violations = append(score.Violations, violation(RuleMissingSubheading, "no role headings"))
	}

	if strings.Contains(trimmed, "```") {
		score.Violations = append(score.Violations, violation(RuleLeftoverFence, "code fence present"))
	}

	for _, line := range strings.Split(trimmed, "\n") {
		body := stripComment(line)
		if unescapedRe.MatchString(body) && !strings.Contains(body, `\href`) {
			score.Violations = append(score.Violations, violation(RuleUnescapedSpecial, strings.TrimSpace(line)))
			break
		}
	}

	score.Total = total(score.Violations)
	return score
}

func violation(rule, detail string) (v Violation) {
	v = Violation{Rule: rule, Severity: ScoringRules[rule].Severity, Detail: detail}
	return v
}

func total(violations []Violation) (score int) {
	score = 100
	critical := false

	for _, v := range violations {
		rule, exists := ScoringRules[v.Rule]
		if !exists {
			continue
		}
		score -= rule.Weight
		if rule.Severity == "critical" {
			critical = true
		}
	}

	if critical && score > SeverityThresholds["critical"] {
		score = SeverityThresholds["critical"]
	}

	if score < 0 {
		score = 0
	}

	return score
}

// stripComment drops everything from the first unescaped '%'.
func stripComment(line string) (body string) {
	for i := 0; i < len(line); i++ {
		if line[i] == '%' && (i == 0 || line[i-1] != '\\') {
			return line[:i]
		}
	}
	return line
}

// ExtractLessons turns violations into short notes for the run summary.
func (s *Scorer) ExtractLessons(scores []Score) (lessons []string) {
	lessons = []string{}

	for _, sc := range scores {
		for _, v := range sc.Violations {
			rule := ScoringRules[v.Rule]
			lessons = append(lessons, string(sc.Section)+": "+rule.Description)
		}
	}

	return lessons
}
