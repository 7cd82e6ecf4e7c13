// Package tailor rewrites the content sections of a LaTeX resume for one job description.
package tailor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/nikogura/job-tracker/pkg/knowledge"
	"github.com/nikogura/job-tracker/pkg/llm"
	"github.com/nikogura/job-tracker/pkg/renderer"
	"github.com/nikogura/job-tracker/pkg/scorer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SectionGenerator produces the LaTeX for one section.
type SectionGenerator interface {
	TailorSection(ctx context.Context, section llm.Section, data interface{}, jobDescription, exampleLatex string) string
}

// Compiler builds the final document in an output directory.
type Compiler interface {
	Compile(ctx context.Context, dir string) (renderer.Report, error)
}

// Options describe one tailoring run.
type Options struct {
	JobDescription string
	Company        string
	KnowledgeBank  string
	TemplateDir    string
	OutputDir      string
	SkipPDF        bool
}

// SectionResult records what was written for one section.
type SectionResult struct {
	Section llm.Section
	Path    string
	Empty   bool
	Score   scorer.Score
}

// Result summarizes a run.
type Result struct {
	OutputDir        string
	Aborted          bool
	AbortReason      string
	MissingTemplates []string
	Sections         []SectionResult
	Compile          *renderer.Report
}

// PDFPath returns the compiled document path, or "" when none was produced.
func (r Result) PDFPath() (path string) {
	if r.Compile != nil {
		path = r.Compile.PDFPath
	}
	return path
}

// Tailor runs the section generation pipeline.
type Tailor struct {
	generator SectionGenerator
	compiler  Compiler
	scorer    *scorer.Scorer
	logger    logrus.FieldLogger
	now       func() time.Time
}

// New creates a Tailor. compiler may be nil when PDFs are never built.
func New(generator SectionGenerator, compiler Compiler, logger logrus.FieldLogger) (t *Tailor) {
	t = &Tailor{
		generator: generator,
		compiler:  compiler,
		scorer:    scorer.NewScorer(),
		logger:    logger,
		now:       time.Now,
	}
	return t
}

// Run tailors the resume for opts.JobDescription.
// A missing or invalid knowledge bank aborts the run with Result.Aborted set and a nil error.
// Compile failures are reported in Result.Compile and never returned as errors.
func (t *Tailor) Run(ctx context.Context, opts Options) (result Result, err error) {
	if opts.JobDescription == "" {
		err = errors.New("job description is empty")
		return result, err
	}

	result.OutputDir, err = t.outputDir(opts)
	if err != nil {
		return result, err
	}
	log := t.logger.WithField("output_dir", result.OutputDir)
	log.Info("Output will be saved to output directory")

	var copied []string
	copied, result.MissingTemplates, err = renderer.CopyTemplates(opts.TemplateDir, result.OutputDir)
	if err != nil {
		return result, err
	}
	for _, missing := range result.MissingTemplates {
		log.WithField("template", missing).Warn("Template file not found, compilation may fail")
	}
	log.Debugf("Copied %d template files", len(copied))

	bank, loadErr := knowledge.Load(opts.KnowledgeBank)
	if loadErr != nil {
		log.WithError(loadErr).Error("Aborting resume generation due to missing or invalid knowledge bank")
		result.Aborted = true
		result.AbortReason = loadErr.Error()
		return result, err
	}

	for _, section := range llm.Sections() {
		var sr SectionResult
		sr, err = t.tailorSection(ctx, log, section, sectionData(bank, section), opts.JobDescription, result.OutputDir)
		if err != nil {
			return result, err
		}
		result.Sections = append(result.Sections, sr)
	}

	if opts.SkipPDF || t.compiler == nil {
		log.Info("Skipping PDF compilation")
		return result, err
	}

	report, compileErr := t.compiler.Compile(ctx, result.OutputDir)
	result.Compile = &report
	switch {
	case compileErr != nil:
		log.WithError(compileErr).Warn("LaTeX compilation could not run")
	case report.ToolMissing:
		log.Warn("latexmk command not found, install a LaTeX distribution and ensure latexmk is in your PATH")
	case !report.Success():
		log.WithFields(logrus.Fields{
			"exit_code": report.ExitCode,
			"stdout":    report.Stdout,
			"stderr":    report.Stderr,
		}).Warn("LaTeX compilation failed")
	default:
		log.WithField("pdf", report.PDFPath).Info("Resume generated successfully")
	}

	return result, err
}

func (t *Tailor) tailorSection(ctx context.Context, log logrus.FieldLogger, section llm.Section, data interface{}, jobDescription, outDir string) (sr SectionResult, err error) {
	sr.Section = section
	sr.Path = filepath.Join(outDir, string(section)+".tex")

	var example string
	example, err = renderer.ReadSection(sr.Path)
	if err != nil {
		return sr, err
	}

	log.Infof("Generating %s section", section)
	latex := t.generator.TailorSection(ctx, section, data, jobDescription, example)
	if latex == "" {
		sr.Empty = true
		log.Warnf("Model returned empty content for %s, this section will be empty in the resume", section)
	}

	err = renderer.WriteSection(latex, sr.Path)
	if err != nil {
		return sr, err
	}

	sr.Score = t.scorer.CheckSection(section, latex)
	for _, v := range sr.Score.Violations {
		log.WithFields(logrus.Fields{
			"section":  section,
			"rule":     v.Rule,
			"severity": v.Severity,
		}).Warn(v.Detail)
	}

	return sr, err
}

func sectionData(bank knowledge.Bank, section llm.Section) (data interface{}) {
	switch section {
	case llm.SectionSkills:
		data = bank.Skills
	case llm.SectionExperience:
		data = bank.Experience
	case llm.SectionProjects:
		data = bank.Projects
	}
	return data
}

func (t *Tailor) outputDir(opts Options) (outDir string, err error) {
	if opts.Company != "" {
		outDir, err = createCompanyOutputDir(opts.OutputDir, opts.Company)
		return outDir, err
	}

	outDir = filepath.Join(opts.OutputDir, "resume_"+t.now().Format("20060102_150405"))
	return outDir, err
}
