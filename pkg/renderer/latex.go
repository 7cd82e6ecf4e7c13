// Package renderer copies LaTeX templates, writes tailored sections and compiles the document.
package renderer

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

// TemplateFiles are the LaTeX files copied into every output directory.
func TemplateFiles() (files []string) {
	files = []string{
		"resume.tex",
		"heading.tex",
		"education.tex",
		"custom-commands.tex",
		"skills.tex",
		"experience.tex",
		"projects.tex",
	}
	return files
}

// Report is the outcome of one compile run.
type Report struct {
	Stdout      string
	Stderr      string
	ExitCode    int
	ToolMissing bool
	PDFPath     string
}

// Success reports whether the compile produced a document.
func (r Report) Success() (ok bool) {
	ok = !r.ToolMissing && r.ExitCode == 0
	return ok
}

// Compiler drives latexmk (or a compatible command) in an output directory.
type Compiler struct {
	Command  string
	MainFile string
}

// NewCompiler returns a compiler, defaulting to latexmk and resume.tex.
func NewCompiler(command, mainFile string) (c *Compiler) {
	if command == "" {
		command = "latexmk"
	}
	if mainFile == "" {
		mainFile = "resume.tex"
	}
	c = &Compiler{Command: command, MainFile: mainFile}
	return c
}

// Compile cleans auxiliary files, then builds the PDF in dir.
// A non-zero exit or a missing tool is reported in the Report, not as an error.
func (c *Compiler) Compile(ctx context.Context, dir string) (report Report, err error) {
	err = validateFiles(filepath.Join(dir, c.MainFile))
	if err != nil {
		return report, err
	}

	// The cleanup pass is best effort; its result is not reported.
	_, _ = c.run(ctx, dir, "-c")

	report, err = c.run(ctx, dir, "-pdf", c.MainFile)
	if err != nil {
		return report, err
	}

	if report.Success() {
		report.PDFPath = filepath.Join(dir, trimExt(c.MainFile)+".pdf")
	}

	return report, err
}

func (c *Compiler) run(ctx context.Context, dir string, args ...string) (report Report, err error) {
	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	report.Stdout = stdout.String()
	report.Stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.Is(runErr, exec.ErrNotFound):
		report.ToolMissing = true
		report.ExitCode = -1
	case errors.As(runErr, &exitErr):
		report.ExitCode = exitErr.ExitCode()
	default:
		err = errors.Wrapf(runErr, "failed to run %s", c.Command)
	}

	return report, err
}

func trimExt(name string) (base string) {
	base = name[:len(name)-len(filepath.Ext(name))]
	return base
}

// validateFiles checks that required files exist.
func validateFiles(paths ...string) (err error) {
	for _, path := range paths {
		_, err = os.Stat(path)
		if os.IsNotExist(err) {
			err = errors.Errorf("file not found: %s", path)
			return err
		}
	}
	return err
}
