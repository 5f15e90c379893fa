package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt states. InProgress is initial; Submitted
// and Expired are terminal — no event revives a terminal attempt.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
	AttemptStatusExpired    AttemptStatus = "EXPIRED"
)

// Attempt represents one learner's timed instance of taking one assessment.
// ExpiredAt is computed once at creation and is the sole timing authority.
type Attempt struct {
	ID           uuid.UUID      `json:"id"`
	AssessmentID uuid.UUID      `json:"assessment_id"`
	Username     string         `json:"username"`
	StartedAt    time.Time      `json:"started_at"`
	ExpiredAt    time.Time      `json:"expired_at"`
	SubmittedAt  *time.Time     `json:"submitted_at,omitempty"`
	Status       AttemptStatus  `json:"status"`
	Answers      []Answer       `json:"answers"`
	Feedbacks    []FeedbackItem `json:"feedbacks,omitempty"`
	AutoScore    int            `json:"auto_score"`
	ManualScore  int            `json:"manual_score"`
}

// TotalScore is derived, never stored. Keeping it an accessor makes the
// auto+manual invariant unconditionally true.
func (a *Attempt) TotalScore() int {
	return a.AutoScore + a.ManualScore
}

// MarshalJSON includes the derived total_score in API payloads.
func (a Attempt) MarshalJSON() ([]byte, error) {
	type alias Attempt
	return json.Marshal(struct {
		alias
		TotalScore int `json:"total_score"`
	}{alias(a), a.TotalScore()})
}

// Answer is a tagged union over the MCQ and coding variants, discriminated by
// QuestionType. Scoring and similarity logic switch on the discriminator and
// treat unknown values as a submission-fatal error.
type Answer struct {
	QuestionID   uuid.UUID    `json:"question_id"`
	QuestionType QuestionType `json:"question_type"`
	IsCorrect    bool         `json:"is_correct"`

	// MCQ fields
	SelectedOptions []int `json:"selected_options,omitempty"`

	// Coding fields
	Code              string      `json:"code,omitempty"`
	PlagiarismScore   *float64    `json:"plagiarism_score,omitempty"`
	SimilarAttemptIDs []uuid.UUID `json:"similar_attempt_ids,omitempty"`
}

// FeedbackItem is per-question feedback recorded at scoring time.
type FeedbackItem struct {
	QuestionID uuid.UUID `json:"question_id"`
	Feedback   string    `json:"feedback"`
}

// StartAttemptRequest is the payload for starting an attempt.
type StartAttemptRequest struct {
	AssessmentID uuid.UUID `json:"assessment_id" binding:"required"`
}

// SubmitAttemptRequest is the payload for submitting answers.
type SubmitAttemptRequest struct {
	Answers []SubmitAnswer `json:"answers" binding:"required,dive"`
}

// SubmitAnswer is a single incoming answer. The binding rejects unknown
// discriminators before the engine sees them; the scoring switch re-checks.
type SubmitAnswer struct {
	QuestionID      uuid.UUID `json:"question_id" binding:"required"`
	QuestionType    string    `json:"question_type" binding:"required,oneof=mcq coding"`
	SelectedOptions []int     `json:"selected_options"`
	Code            string    `json:"code"`
}

// ToAnswer maps the request DTO onto the domain answer value.
func (s SubmitAnswer) ToAnswer() Answer {
	return Answer{
		QuestionID:      s.QuestionID,
		QuestionType:    QuestionType(s.QuestionType),
		SelectedOptions: s.SelectedOptions,
		Code:            s.Code,
	}
}
