package model

import (
	"time"

	"github.com/google/uuid"
)

// PlagiarismReport is an immutable audit record created when a submitted
// coding answer shows any similarity to prior submissions. It is never
// revised, even if a later scan observes a higher score for the attempt.
type PlagiarismReport struct {
	ID              uuid.UUID   `json:"id"`
	AssessmentID    uuid.UUID   `json:"assessment_id"`
	QuestionID      uuid.UUID   `json:"question_id"`
	AttemptID       uuid.UUID   `json:"attempt_id"`
	SimilarityScore float64     `json:"similarity_score"`
	SimilarDocs     []uuid.UUID `json:"similar_documents"`
	CreatedAt       time.Time   `json:"created_at"`
}
