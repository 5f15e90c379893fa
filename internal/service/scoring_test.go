package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvaluator struct {
	verdict Verdict
	err     error
	calls   int
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _ model.Question, _ string) (*Verdict, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v := f.verdict
	return &v, nil
}

func newTestScoringEngine(eval CodeEvaluator) *ScoringEngine {
	return NewScoringEngine(eval, zerolog.Nop())
}

func mcqQuestion(id uuid.UUID, points int, correct ...int) model.Question {
	return model.Question{
		ID:             id,
		QuestionType:   model.QuestionTypeMcq,
		Prompt:         "pick the right options",
		Points:         points,
		Options:        []string{"a", "b", "c", "d"},
		CorrectAnswers: correct,
	}
}

func codingQuestion(id uuid.UUID, points int) model.Question {
	return model.Question{
		ID:           id,
		QuestionType: model.QuestionTypeCoding,
		Prompt:       "write add",
		Points:       points,
		Language:     "javascript",
	}
}

func TestScoreMcqSetEquality(t *testing.T) {
	qID := uuid.New()
	assessment := &model.Assessment{
		ID:        uuid.New(),
		Questions: []model.Question{mcqQuestion(qID, 5, 1, 2)},
	}

	tests := []struct {
		name      string
		selected  []int
		correct   bool
		autoScore int
	}{
		{"exact match", []int{1, 2}, true, 5},
		{"order irrelevant", []int{2, 1}, true, 5},
		{"duplicates collapse", []int{1, 2, 2, 1}, true, 5},
		{"strict subset", []int{1}, false, 0},
		{"strict superset", []int{1, 2, 3}, false, 0},
		{"disjoint", []int{0, 3}, false, 0},
		{"empty selection", nil, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestScoringEngine(&fakeEvaluator{})
			answers := []model.Answer{{
				QuestionID:      qID,
				QuestionType:    model.QuestionTypeMcq,
				SelectedOptions: tc.selected,
			}}

			result, err := engine.Score(context.Background(), assessment, answers)
			require.NoError(t, err)
			assert.Equal(t, tc.correct, result.Answers[0].IsCorrect)
			assert.Equal(t, tc.autoScore, result.AutoScore)
			assert.Zero(t, result.ManualScore)

			require.Len(t, result.Feedbacks, 1)
			wantFeedback := "Incorrect"
			if tc.correct {
				wantFeedback = "Correct"
			}
			assert.Equal(t, wantFeedback, result.Feedbacks[0].Feedback)
		})
	}
}

func TestScoreCoding(t *testing.T) {
	qID := uuid.New()
	assessment := &model.Assessment{
		ID:        uuid.New(),
		Questions: []model.Question{codingQuestion(qID, 10)},
	}

	t.Run("passing verdict scores manual points", func(t *testing.T) {
		eval := &fakeEvaluator{verdict: Verdict{IsCorrect: true, Feedback: "All tests passed"}}
		engine := newTestScoringEngine(eval)

		result, err := engine.Score(context.Background(), assessment, []model.Answer{{
			QuestionID:   qID,
			QuestionType: model.QuestionTypeCoding,
			Code:         "function add(a, b) { return a + b; }",
		}})
		require.NoError(t, err)
		assert.Equal(t, 1, eval.calls)
		assert.True(t, result.Answers[0].IsCorrect)
		assert.Equal(t, 10, result.ManualScore)
		assert.Zero(t, result.AutoScore)
		require.Len(t, result.Feedbacks, 1)
		assert.Equal(t, "All tests passed", result.Feedbacks[0].Feedback)
	})

	t.Run("failing verdict scores nothing", func(t *testing.T) {
		eval := &fakeEvaluator{verdict: Verdict{IsCorrect: false, Feedback: "2 of 3 tests failed"}}
		engine := newTestScoringEngine(eval)

		result, err := engine.Score(context.Background(), assessment, []model.Answer{{
			QuestionID:   qID,
			QuestionType: model.QuestionTypeCoding,
			Code:         "function add(a, b) { return a - b; }",
		}})
		require.NoError(t, err)
		assert.False(t, result.Answers[0].IsCorrect)
		assert.Zero(t, result.ManualScore)
	})

	t.Run("blank code never reaches the evaluator", func(t *testing.T) {
		eval := &fakeEvaluator{}
		engine := newTestScoringEngine(eval)

		result, err := engine.Score(context.Background(), assessment, []model.Answer{{
			QuestionID:   qID,
			QuestionType: model.QuestionTypeCoding,
			Code:         "  \n\t ",
		}})
		require.NoError(t, err)
		assert.Zero(t, eval.calls)
		assert.Zero(t, result.ManualScore)
		assert.Empty(t, result.Feedbacks)
	})

	t.Run("evaluator failure rejects the submission", func(t *testing.T) {
		eval := &fakeEvaluator{err: errors.New("connection refused")}
		engine := newTestScoringEngine(eval)

		_, err := engine.Score(context.Background(), assessment, []model.Answer{{
			QuestionID:   qID,
			QuestionType: model.QuestionTypeCoding,
			Code:         "function add(a, b) { return a + b; }",
		}})
		assert.ErrorIs(t, err, ErrEvaluatorUnavailable)
	})
}

func TestScoreEdgeCases(t *testing.T) {
	mcqID := uuid.New()
	codingID := uuid.New()
	assessment := &model.Assessment{
		ID: uuid.New(),
		Questions: []model.Question{
			mcqQuestion(mcqID, 5, 0),
			codingQuestion(codingID, 10),
		},
	}

	t.Run("unmatched question id is skipped silently", func(t *testing.T) {
		engine := newTestScoringEngine(&fakeEvaluator{})

		result, err := engine.Score(context.Background(), assessment, []model.Answer{
			{QuestionID: uuid.New(), QuestionType: model.QuestionTypeMcq, SelectedOptions: []int{0}},
			{QuestionID: mcqID, QuestionType: model.QuestionTypeMcq, SelectedOptions: []int{0}},
		})
		require.NoError(t, err)
		assert.Equal(t, 5, result.AutoScore)
		assert.Len(t, result.Feedbacks, 1)
	})

	t.Run("answer with mismatched type is skipped", func(t *testing.T) {
		engine := newTestScoringEngine(&fakeEvaluator{verdict: Verdict{IsCorrect: true}})

		// References the MCQ question but claims to be coding.
		result, err := engine.Score(context.Background(), assessment, []model.Answer{
			{QuestionID: mcqID, QuestionType: model.QuestionTypeCoding, Code: "x"},
		})
		require.NoError(t, err)
		assert.Zero(t, result.AutoScore)
		assert.Zero(t, result.ManualScore)
		assert.Empty(t, result.Feedbacks)
	})

	t.Run("duplicate answers score once", func(t *testing.T) {
		engine := newTestScoringEngine(&fakeEvaluator{})

		result, err := engine.Score(context.Background(), assessment, []model.Answer{
			{QuestionID: mcqID, QuestionType: model.QuestionTypeMcq, SelectedOptions: []int{0}},
			{QuestionID: mcqID, QuestionType: model.QuestionTypeMcq, SelectedOptions: []int{0}},
		})
		require.NoError(t, err)
		assert.Equal(t, 5, result.AutoScore)
		assert.Len(t, result.Feedbacks, 1)
	})

	t.Run("unknown discriminator rejects the submission", func(t *testing.T) {
		engine := newTestScoringEngine(&fakeEvaluator{})

		_, err := engine.Score(context.Background(), assessment, []model.Answer{
			{QuestionID: mcqID, QuestionType: "essay"},
		})
		assert.ErrorIs(t, err, ErrInvalidAnswer)
	})

	t.Run("mixed submission accumulates both score buckets", func(t *testing.T) {
		engine := newTestScoringEngine(&fakeEvaluator{verdict: Verdict{IsCorrect: true, Feedback: "All tests passed"}})

		result, err := engine.Score(context.Background(), assessment, []model.Answer{
			{QuestionID: mcqID, QuestionType: model.QuestionTypeMcq, SelectedOptions: []int{0}},
			{QuestionID: codingID, QuestionType: model.QuestionTypeCoding, Code: "function add(a, b) { return a + b; }"},
		})
		require.NoError(t, err)
		assert.Equal(t, 5, result.AutoScore)
		assert.Equal(t, 10, result.ManualScore)
		assert.Len(t, result.Feedbacks, 2)
	})
}
