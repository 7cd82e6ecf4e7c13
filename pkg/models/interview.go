package models

import "time"

// Question categories.
const (
	CategoryTechnical       = "technical"
	CategoryBehavioral      = "behavioral"
	CategoryCompanySpecific = "company-specific"
	CategoryGeneral         = "general"
)

// Question difficulties.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// InterviewQuestion is one generated practice question.
type InterviewQuestion struct {
	Question   string `json:"question" bson:"question"`
	Category   string `json:"category" bson:"category"`
	Difficulty string `json:"difficulty" bson:"difficulty"`
}

// UserAnswer is a candidate's answer to a practice question.
type UserAnswer struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
	Category string `json:"category" bson:"category"`
}

// AnswerFeedback is the evaluation of a single answer.
type AnswerFeedback struct {
	Question               string   `json:"question" bson:"question"`
	UserAnswer             string   `json:"user_answer" bson:"user_answer"`
	Feedback               string   `json:"feedback" bson:"feedback"`
	Score                  int      `json:"score" bson:"score"`
	ImprovementSuggestions []string `json:"improvement_suggestions" bson:"improvement_suggestions"`
	IdealPoints            []string `json:"ideal_points" bson:"ideal_points"`
}

// InterviewSession groups questions, answers and feedback for one job.
type InterviewSession struct {
	ID        string              `json:"id" bson:"-"`
	JobID     string              `json:"job_id" bson:"job_id"`
	Questions []InterviewQuestion `json:"questions" bson:"questions"`
	Answers   []UserAnswer        `json:"answers" bson:"answers"`
	Feedback  []AnswerFeedback    `json:"feedback" bson:"feedback"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at"`
}

// ValidCategory reports whether c is a known question category.
func ValidCategory(c string) (ok bool) {
	switch c {
	case CategoryTechnical, CategoryBehavioral, CategoryCompanySpecific, CategoryGeneral:
		ok = true
	}
	return ok
}

// ValidDifficulty reports whether d is a known difficulty.
func ValidDifficulty(d string) (ok bool) {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		ok = true
	}
	return ok
}
