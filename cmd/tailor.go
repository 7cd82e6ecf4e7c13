package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikogura/job-tracker/pkg/config"
	"github.com/nikogura/job-tracker/pkg/jd"
	"github.com/nikogura/job-tracker/pkg/llm"
	"github.com/nikogura/job-tracker/pkg/renderer"
	"github.com/nikogura/job-tracker/pkg/scorer"
	"github.com/nikogura/job-tracker/pkg/tailor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var company string

//nolint:gochecknoglobals // Cobra boilerplate
var knowledgeBank string

//nolint:gochecknoglobals // Cobra boilerplate
var templateDir string

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var skipPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var tailorCmd = &cobra.Command{
	Use:   "tailor <jd-file-or-url>...",
	Short: "Tailor the resume sections to a job description",
	Long: `Rewrite the skills, experience and projects sections of a LaTeX resume for a job description.

Each job description can be provided as:
- A file path (e.g., jd.txt)
- A URL (e.g., https://example.com/jobs/123)
- "-" to read from stdin

The template files are copied into a new output directory, each section is regenerated
from your knowledge bank, and the result is compiled with latexmk.

Example:
  job-tracker tailor jd.txt --company "Acme Corp"
  job-tracker tailor https://example.com/jobs/123 --knowledge-bank bank.yaml --skip-pdf
  pbpaste | job-tracker tailor -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTailor,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tailorCmd)
	tailorCmd.Flags().StringVar(&company, "company", "", "Company name, used for the output directory (default is a timestamp)")
	tailorCmd.Flags().StringVar(&knowledgeBank, "knowledge-bank", "", "Knowledge bank JSON or YAML file (default from config)")
	tailorCmd.Flags().StringVar(&templateDir, "templates", "", "Directory holding the LaTeX template files (default from config)")
	tailorCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	tailorCmd.Flags().BoolVar(&skipPDF, "skip-pdf", false, "Skip PDF compilation")
}

func runTailor(cmd *cobra.Command, args []string) (err error) {
	logger := newLogger()

	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		return err
	}

	credErr := cfg.RequireCredentials()
	if credErr != nil {
		logger.WithError(credErr).Warn("LLM credentials missing, generated sections will be empty")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var provider llm.Provider
	provider, err = llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	client := llm.NewClient(provider, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.Timeout, logger)
	defer client.Close()

	tl := tailor.New(llm.NewGenerator(client), renderer.NewCompiler(cfg.Tailor.Compiler, cfg.Tailor.MainFile), logger)
	fetcher := jd.NewFetcher()
	opts := tailorOptions(cfg.Tailor)

	for _, input := range args {
		var jobDescription string
		jobDescription, err = fetchAndLogJD(ctx, fetcher, input, logger)
		if err != nil {
			return err
		}

		opts.JobDescription = jobDescription

		var result tailor.Result
		result, err = tl.Run(ctx, opts)
		if err != nil {
			return err
		}

		fmt.Println(renderSummary(input, result))
	}

	return err
}

// tailorOptions merges command line flags over the configured defaults.
func tailorOptions(cfg config.TailorConfig) (opts tailor.Options) {
	opts = tailor.Options{
		Company:       company,
		KnowledgeBank: cfg.KnowledgeBank,
		TemplateDir:   cfg.TemplateDir,
		OutputDir:     cfg.OutputDir,
		SkipPDF:       skipPDF,
	}
	if knowledgeBank != "" {
		opts.KnowledgeBank = knowledgeBank
	}
	if templateDir != "" {
		opts.TemplateDir = templateDir
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	return opts
}

func fetchAndLogJD(ctx context.Context, fetcher *jd.Fetcher, input string, logger logrus.FieldLogger) (jobDescription string, err error) {
	logger.WithField("input", input).Info("Fetching job description")

	jobDescription, err = fetcher.Fetch(ctx, input)
	if err != nil {
		return jobDescription, err
	}

	logger.Debugf("Job description: %d characters", len(jobDescription))
	return jobDescription, err
}

//nolint:gochecknoglobals // output styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderSummary formats the outcome of one tailoring run.
func renderSummary(input string, result tailor.Result) (summary string) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Resume tailored for "+input) + "\n")
	b.WriteString(dimStyle.Render("Output: "+result.OutputDir) + "\n")

	if result.Aborted {
		b.WriteString(errStyle.Render("Aborted: "+result.AbortReason) + "\n")
		summary = b.String()
		return summary
	}

	scores := make([]scorer.Score, 0, len(result.Sections))
	for _, sr := range result.Sections {
		line := fmt.Sprintf("  %-11s %3d/100", sr.Section, sr.Score.Total)
		issues := fmt.Sprintf("%s  %d issue(s)", line, len(sr.Score.Violations))
		switch {
		case sr.Empty:
			b.WriteString(errStyle.Render(line+"  empty") + "\n")
		case !sr.Score.Passed():
			b.WriteString(errStyle.Render(issues+", critical") + "\n")
		case len(sr.Score.Violations) > 0:
			b.WriteString(warnStyle.Render(issues) + "\n")
		default:
			b.WriteString(okStyle.Render(line) + "\n")
		}
		if sr.Score.Section == "" {
			sr.Score.Section = sr.Section
		}
		scores = append(scores, sr.Score)
	}

	lessons := scorer.NewScorer().ExtractLessons(scores)
	if len(lessons) > 0 {
		b.WriteString(dimStyle.Render("Lessons:") + "\n")
		for _, lesson := range lessons {
			b.WriteString(dimStyle.Render("  - "+lesson) + "\n")
		}
	}

	for _, missing := range result.MissingTemplates {
		b.WriteString(warnStyle.Render("  missing template: "+missing) + "\n")
	}

	switch {
	case result.Compile == nil:
		b.WriteString(dimStyle.Render("PDF: skipped") + "\n")
	case result.Compile.ToolMissing:
		b.WriteString(errStyle.Render("PDF: latexmk command not found") + "\n")
	case !result.Compile.Success():
		b.WriteString(errStyle.Render(fmt.Sprintf("PDF: latexmk exited with code %d", result.Compile.ExitCode)) + "\n")
	default:
		b.WriteString(okStyle.Render("PDF: "+result.PDFPath()) + "\n")
	}

	summary = b.String()
	return summary
}
