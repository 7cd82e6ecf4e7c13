package scorer

// Rule represents a structural check on a generated section.
type Rule struct {
	Name        string
	Severity    string // critical, major, minor
	Description string
	Weight      int // Points deducted for violation
}

const (
	RuleEmptySection      = "EMPTY_SECTION"
	RuleUnbalancedItemize = "UNBALANCED_ITEMIZE"
	RuleMissingHeader     = "MISSING_SECTION_HEADER"
	RuleMissingSubheading = "MISSING_RESUME_SUBHEADING"
	RuleUnescapedSpecial  = "UNESCAPED_SPECIAL_CHAR"
	RuleLeftoverFence     = "LEFTOVER_CODE_FENCE"
)

//nolint:gochecknoglobals // Scoring configuration constants
var ScoringRules = map[string]Rule{
	RuleEmptySection: {
		Name:        RuleEmptySection,
		Severity:    "critical",
		Description: "Model returned no content for the section",
		Weight:      100,
	},
	RuleUnbalancedItemize: {
		Name:        RuleUnbalancedItemize,
		Severity:    "critical",
		Description: `\begin{itemize} and \end{itemize} counts differ; the document will not compile`,
		Weight:      40,
	},
	RuleMissingHeader: {
		Name:        RuleMissingHeader,
		Severity:    "major",
		Description: `No \section{...} header in the output`,
		Weight:      20,
	},
	RuleMissingSubheading: {
		Name:        RuleMissingSubheading,
		Severity:    "major",
		Description: `Experience section without any \resumeSubheading entry`,
		Weight:      20,
	},
	RuleLeftoverFence: {
		Name:        RuleLeftoverFence,
		Severity:    "major",
		Description: "Markdown code fence left in LaTeX output",
		Weight:      15,
	},
	RuleUnescapedSpecial: {
		Name:        RuleUnescapedSpecial,
		Severity:    "minor",
		Description: "Unescaped & or # in section text",
		Weight:      5,
	},
}

//nolint:gochecknoglobals // Scoring configuration constants
var SeverityThresholds = map[string]int{
	"critical": 60, // Any critical violation keeps the score at or below 60
}
