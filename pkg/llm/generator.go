package llm

import (
	"context"
	"strings"

	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/pkg/errors"
)

// Submitter sends a prompt and returns the reply text, empty on failure.
type Submitter interface {
	Submit(ctx context.Context, prompt string) string
}

// Generator chains prompt building, model submission and reply parsing.
type Generator struct {
	client Submitter
}

// NewGenerator creates a generator on top of client.
func NewGenerator(client Submitter) (g *Generator) {
	g = &Generator{client: client}
	return g
}

// Description synthesizes a job description for a posting.
func (g *Generator) Description(ctx context.Context, title, company, url string) (description string, err error) {
	text := g.client.Submit(ctx, BuildDescriptionPrompt(title, company, url))
	description = strings.TrimSpace(text)
	if description == "" {
		err = errors.Wrap(ErrEmptyResponse, "failed to generate job description")
		return description, err
	}
	return description, err
}

// Questions generates practice interview questions for a job.
func (g *Generator) Questions(ctx context.Context, job models.JobPosting) (questions []models.InterviewQuestion, err error) {
	text := g.client.Submit(ctx, BuildQuestionsPrompt(job.Title, job.Company, job.Description))
	if strings.TrimSpace(text) == "" {
		err = errors.Wrap(ErrEmptyResponse, "failed to generate interview questions")
		return questions, err
	}

	questions, err = ParseQuestions(text)
	return questions, err
}

// Feedback evaluates one answer to a practice question.
func (g *Generator) Feedback(ctx context.Context, question, category, answer string) (feedback models.AnswerFeedback, err error) {
	text := g.client.Submit(ctx, BuildFeedbackPrompt(question, category, answer))
	if strings.TrimSpace(text) == "" {
		err = errors.Wrap(ErrEmptyResponse, "failed to generate answer feedback")
		return feedback, err
	}

	feedback, err = ParseFeedback(text, question, answer)
	return feedback, err
}

// TailorSection rewrites one resume section and returns the LaTeX with any code fence removed.
// An empty result means the model call failed or found nothing relevant.
func (g *Generator) TailorSection(ctx context.Context, section Section, data interface{}, jobDescription, exampleLatex string) (latex string) {
	text := g.client.Submit(ctx, BuildSectionPrompt(section, data, jobDescription, exampleLatex))
	latex = StripFences(text)
	return latex
}
