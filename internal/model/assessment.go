package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType discriminates the question/answer variants.
type QuestionType string

const (
	QuestionTypeMcq    QuestionType = "mcq"
	QuestionTypeCoding QuestionType = "coding"
)

// Assessment represents an authored quiz. It is read-only to the attempt
// engine; authoring happens in a separate surface.
type Assessment struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Skills          []string   `json:"skills"`
	DurationMinutes int        `json:"duration_minutes"`
	Published       bool       `json:"published"`
	LearnerCount    int        `json:"learner_count"`
	Questions       []Question `json:"questions"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Question is a tagged union over the MCQ and coding variants. QuestionType is
// the discriminator; variant-specific fields are empty for the other kind.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	QuestionType QuestionType `json:"question_type"`
	Prompt       string       `json:"prompt"`
	Points       int          `json:"points"`

	// MCQ fields
	Options        []string `json:"options,omitempty"`
	CorrectAnswers []int    `json:"correct_answers,omitempty"`
	ShuffleOptions bool     `json:"shuffle_options,omitempty"`

	// Coding fields
	Language           string   `json:"language,omitempty"`
	StarterCode        string   `json:"starter_code,omitempty"`
	TestCases          []string `json:"test_cases,omitempty"`
	ExpectedOutput     string   `json:"expected_output,omitempty"`
	PlagiarismGroupKey string   `json:"plagiarism_group_key,omitempty"`
}

// QuestionByID locates a question of the given type in the assessment.
// Returns nil when no question matches — callers skip such answers.
func (a *Assessment) QuestionByID(id uuid.UUID, qt QuestionType) *Question {
	for i := range a.Questions {
		if a.Questions[i].ID == id && a.Questions[i].QuestionType == qt {
			return &a.Questions[i]
		}
	}
	return nil
}
