package llm

import (
	"errors"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"latex fence", "```latex\n\\section{Skills}\n```", "\\section{Skills}"},
		{"bare fence", "```\nplain\n```", "plain"},
		{"text around fence", "Here you go:\n```tex\nbody\n```\nThanks", "body"},
		{"no fence", "  just text \n", "just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.input)
			if got != tt.want {
				t.Errorf("Expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "Sure!\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"untagged fence", "```\n{\"a\": 2}\n```", `{"a": 2}`},
		{"bare object", `Result: {"a": {"b": "}"}} trailing`, `{"a": {"b": "}"}}`},
		{"skips invalid span", `{not json} then {"ok": true}`, `{"ok": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected '%s', got '%s'", tt.want, got)
			}
		})
	}

	_, err := ExtractJSON("no braces here")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Errorf("Expected ParseError, got %v", err)
	}
}

func TestParseQuestions(t *testing.T) {
	reply := "```json\n" + `{
  "questions": [
    {"question": "How do you design an idempotent API?", "category": "Technical", "difficulty": "hard"},
    {"question": "Why this company?", "category": "company specific", "difficulty": "easy"}
  ]
}` + "\n```"

	questions, err := ParseQuestions(reply)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}

	if questions[0].Category != "technical" {
		t.Errorf("Expected category 'technical', got '%s'", questions[0].Category)
	}

	if questions[1].Category != "company-specific" {
		t.Errorf("Expected category 'company-specific', got '%s'", questions[1].Category)
	}
}

func TestParseQuestionsRejectsMissingDifficulty(t *testing.T) {
	reply := `{"questions": [
		{"question": "Tell me about yourself.", "category": "general", "difficulty": "easy"},
		{"question": "Explain goroutines.", "category": "technical"}
	]}`

	questions, err := ParseQuestions(reply)
	if err == nil {
		t.Fatal("Expected error for question without difficulty")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Errorf("Expected ParseError, got %T", err)
	}

	if questions != nil {
		t.Errorf("Expected no partial result, got %d questions", len(questions))
	}
}

func TestParseQuestionsRejectsBadShapes(t *testing.T) {
	replies := []string{
		`{"items": []}`,
		`{"questions": []}`,
		`{"questions": [{"question": "Q", "category": "trivia", "difficulty": "easy"}]}`,
		`{"questions": [{"question": "Q", "category": "general", "difficulty": "extreme"}]}`,
		`not json at all`,
	}

	for _, reply := range replies {
		_, err := ParseQuestions(reply)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Expected ParseError for %q, got %v", reply, err)
		}
	}
}

func TestParseFeedback(t *testing.T) {
	reply := `Here is my evaluation:
{
  "score": 7,
  "feedback": "Clear answer with a concrete example.",
  "improvement_suggestions": ["Quantify the result", "Mention tradeoffs", "Be more concise"],
  "ideal_points": ["Context", "Action taken", "Measured outcome"]
}`

	fb, err := ParseFeedback(reply, "Describe a hard bug.", "I once found a race.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if fb.Score != 7 {
		t.Errorf("Expected score 7, got %d", fb.Score)
	}

	if fb.Question != "Describe a hard bug." || fb.UserAnswer != "I once found a race." {
		t.Errorf("Expected question and answer to be echoed, got %q / %q", fb.Question, fb.UserAnswer)
	}

	if len(fb.ImprovementSuggestions) != 3 {
		t.Errorf("Expected 3 suggestions, got %d", len(fb.ImprovementSuggestions))
	}

	if len(fb.IdealPoints) != 3 {
		t.Errorf("Expected 3 ideal points, got %d", len(fb.IdealPoints))
	}
}

func TestParseFeedbackRejectsBadScore(t *testing.T) {
	replies := []string{
		`{"score": 11, "feedback": "f", "improvement_suggestions": [], "ideal_points": []}`,
		`{"score": 0, "feedback": "f", "improvement_suggestions": [], "ideal_points": []}`,
		`{"score": 6.5, "feedback": "f", "improvement_suggestions": [], "ideal_points": []}`,
		`{"score": "8", "feedback": "f", "improvement_suggestions": [], "ideal_points": []}`,
		`{"score": 8, "improvement_suggestions": [], "ideal_points": []}`,
		`{"score": 8, "feedback": "f", "ideal_points": []}`,
	}

	for _, reply := range replies {
		_, err := ParseFeedback(reply, "q", "a")
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Expected ParseError for %s, got %v", reply, err)
		}
	}
}
