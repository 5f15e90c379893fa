package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptTotalScore(t *testing.T) {
	a := Attempt{AutoScore: 5, ManualScore: 10}
	assert.Equal(t, 15, a.TotalScore())

	a.ManualScore = 0
	assert.Equal(t, 5, a.TotalScore())
}

func TestAttemptMarshalJSON(t *testing.T) {
	submitted := time.Date(2026, 8, 29, 10, 29, 0, 0, time.UTC)
	a := Attempt{
		ID:           uuid.New(),
		AssessmentID: uuid.New(),
		Username:     "alice",
		Status:       AttemptStatusSubmitted,
		SubmittedAt:  &submitted,
		AutoScore:    5,
		ManualScore:  10,
	}

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, float64(15), decoded["total_score"])
	assert.Equal(t, float64(5), decoded["auto_score"])
	assert.Equal(t, float64(10), decoded["manual_score"])
	assert.Equal(t, "SUBMITTED", decoded["status"])
	assert.Equal(t, "alice", decoded["username"])
}

func TestSubmitAnswerToAnswer(t *testing.T) {
	qID := uuid.New()

	mcq := SubmitAnswer{QuestionID: qID, QuestionType: "mcq", SelectedOptions: []int{1, 2}}
	got := mcq.ToAnswer()
	assert.Equal(t, qID, got.QuestionID)
	assert.Equal(t, QuestionTypeMcq, got.QuestionType)
	assert.Equal(t, []int{1, 2}, got.SelectedOptions)
	assert.False(t, got.IsCorrect)

	coding := SubmitAnswer{QuestionID: qID, QuestionType: "coding", Code: "return a + b;"}
	got = coding.ToAnswer()
	assert.Equal(t, QuestionTypeCoding, got.QuestionType)
	assert.Equal(t, "return a + b;", got.Code)
}

func TestAssessmentQuestionByID(t *testing.T) {
	mcqID := uuid.New()
	codingID := uuid.New()
	a := &Assessment{Questions: []Question{
		{ID: mcqID, QuestionType: QuestionTypeMcq, Points: 5},
		{ID: codingID, QuestionType: QuestionTypeCoding, Points: 10},
	}}

	q := a.QuestionByID(mcqID, QuestionTypeMcq)
	require.NotNil(t, q)
	assert.Equal(t, 5, q.Points)

	assert.Nil(t, a.QuestionByID(mcqID, QuestionTypeCoding), "type must match")
	assert.Nil(t, a.QuestionByID(uuid.New(), QuestionTypeMcq))
}
