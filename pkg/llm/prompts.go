package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Section names a tailorable resume section.
type Section string

const (
	SectionSkills     Section = "skills"
	SectionExperience Section = "experience"
	SectionProjects   Section = "projects"
)

// Sections lists the tailorable sections in the order they are generated.
func Sections() (sections []Section) {
	sections = []Section{SectionSkills, SectionExperience, SectionProjects}
	return sections
}

// BuildDescriptionPrompt asks for a plausible job description from title, company and posting link.
// Each input appears exactly once in the result.
func BuildDescriptionPrompt(title, company, url string) (prompt string) {
	// The fixed text avoids the capital letters X, Y and Z so single-letter inputs stay unique.
	prompt = fmt.Sprintf(`Act as an experienced technical recruiter writing a job posting.

Write a plausible, comprehensive job description for the position below. Base it on the role title and the company. The posting link is given for context only and has not been fetched.

Job title: %s
Company: %s
Posting link: %s

Include these parts:
1. A short overview of the role and the team
2. Key responsibilities (6-8 bullet points)
3. Required qualifications
4. Preferred qualifications
5. Tools and technologies commonly used in this kind of role
6. What the company offers

Write plain text with simple bullet points. Do not wrap the answer in code fences and do not add commentary before or after the description.`, title, company, url)
	return prompt
}

// BuildQuestionsPrompt asks for practice interview questions as a JSON object.
func BuildQuestionsPrompt(title, company, description string) (prompt string) {
	prompt = fmt.Sprintf(`You are an experienced hiring manager preparing a candidate for an interview.

JOB TITLE: %s
COMPANY: %s

JOB DESCRIPTION:
%s

Generate 8 to 10 interview questions a candidate is likely to face for this role.
Mix the categories:
- technical: skills and tools named in the description
- behavioral: past situations, teamwork, conflict, ownership
- company-specific: motivation for this company, its product and market
- general: background, career goals, strengths

Assign each question a difficulty of easy, medium or hard, and spread the difficulties across the set.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "questions": [
    {
      "question": "the question text",
      "category": "technical",
      "difficulty": "medium"
    }
  ]
}`, title, company, description)
	return prompt
}

// BuildFeedbackPrompt asks for an evaluation of one answer as a JSON object.
func BuildFeedbackPrompt(question, category, answer string) (prompt string) {
	if category == "" {
		category = "general"
	}
	prompt = fmt.Sprintf(`You are an interview coach reviewing a candidate's practice answer.

QUESTION (%s):
%s

CANDIDATE ANSWER:
%s

Evaluate the answer for relevance, structure, specificity and evidence of impact.
For behavioral questions, check whether the answer follows a situation, task, action, result structure.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "score": 7,
  "feedback": "two or three sentences of overall feedback",
  "improvement_suggestions": ["3 to 5 concrete suggestions"],
  "ideal_points": ["3 to 5 points an ideal answer would cover"]
}

The score must be an integer from 1 (poor) to 10 (excellent).`, category, question, answer)
	return prompt
}

const latexEscapingRules = `**IMPORTANT**: You MUST escape all special LaTeX characters in the text. For example:
'&' -> '\&'
'%' -> '\%'
'#' -> '\#'
'$' -> '\$'
'_' -> '\_'
'{' -> '\{'
'}' -> '\}'
'~' -> '\textasciitilde{}'
'^' -> '\textasciicircum{}'
'\' -> '\textbackslash{}'`

func sectionInstructions(section Section) (task, rules string) {
	switch section {
	case SectionSkills:
		task = "re-write the technical skills section for a resume to best match the job description, highlighting relevant skills and rephrasing them to align with the job's terminology"
		rules = `Maintain the existing LaTeX structure for a resume skills section. Use \section{Technical Skills} as the main header.
Each category (e.g., Languages, Cloud \& DevOps Tools) should be \textbf{Category Name}{: Skill1, Skill2}.
For certifications, use a nested \begin{itemize} with \item and preserve the full \href link exactly as provided.
Only include skills that are directly mentioned or strongly implied by the job description. If a category has no relevant skills, omit the category.`
	case SectionExperience:
		task = "select and re-write the most relevant achievement bullet points from my experience to match the job description, prioritizing impact and relevance"
		rules = `**For each relevant role, aim for a minimum of 4-5 strong, concise bullet points**, focusing on quantifiable achievements and results.
Maintain the existing LaTeX structure for an experience section.
Do NOT invent new experiences or roles. Stick to the provided content and rephrase or prioritize it.
If a role or its bullet points are not relevant to the job description, omit them entirely.
Format the company name, role title, duration and location with \resumeSubheading.`
	case SectionProjects:
		task = "select and re-write the most relevant projects and their bullet points to match the job description"
		rules = `**Aim to include 3 highly relevant projects.** If fewer than 3 are highly relevant, include all that are.
Maintain the existing LaTeX structure for a projects section.
Do NOT invent new projects. Stick to the provided content and rephrase or prioritize it.`
	}
	return task, rules
}

// BuildSectionPrompt asks for one resume section rewritten in LaTeX for a job description.
// data is rendered as indented JSON; exampleLatex shows the expected format.
func BuildSectionPrompt(section Section, data interface{}, jobDescription, exampleLatex string) (prompt string) {
	dataJSON := marshalData(data)

	task, rules := sectionInstructions(section)
	label := strings.ToUpper(string(section))

	prompt = fmt.Sprintf(`You are an expert resume writer. I will provide you with my comprehensive %s data in JSON format and a job description.
Your task is to %s.
%s
%s
Ensure every \begin{itemize} has a matching \end{itemize}.

---BEGIN MY %s DATA (JSON)---
%s
---END MY %s DATA (JSON)---

---BEGIN JOB DESCRIPTION---
%s
---END JOB DESCRIPTION---

---BEGIN EXAMPLE LATEX OUTPUT (FOR FORMAT REFERENCE)---
%s
---END EXAMPLE LATEX OUTPUT (FOR FORMAT REFERENCE)---

---OUTPUT NEW %s SECTION (LATEX ONLY)---
`, section, task, latexEscapingRules, rules, label, dataJSON, label, jobDescription, exampleLatex, label)
	return prompt
}

// marshalData renders data as indented JSON without HTML escaping, so '&' stays readable.
func marshalData(data interface{}) (out string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
	out = strings.TrimSpace(buf.String())
	return out
}
