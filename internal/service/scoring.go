package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/rs/zerolog"
)

// ScoringEngine turns raw answers into scores. MCQ answers are checked
// deterministically; coding answers are delegated to the code evaluator.
type ScoringEngine struct {
	evaluator CodeEvaluator
	log       zerolog.Logger
}

// NewScoringEngine creates a new ScoringEngine.
func NewScoringEngine(evaluator CodeEvaluator, log zerolog.Logger) *ScoringEngine {
	return &ScoringEngine{
		evaluator: evaluator,
		log:       log.With().Str("component", "scoring_engine").Logger(),
	}
}

// ScoreResult aggregates one submission's scoring outcome. The answers carry
// their populated correctness flags; the total score stays derived on the
// attempt and is never part of this result.
type ScoreResult struct {
	Answers     []model.Answer
	Feedbacks   []model.FeedbackItem
	AutoScore   int
	ManualScore int
}

// Score evaluates every submitted answer against the assessment's questions.
//
// Answers whose question id matches nothing in the assessment are skipped:
// they contribute no score and no feedback. Blank coding answers never reach
// the evaluator. An unknown discriminator rejects the whole submission with
// ErrInvalidAnswer; an evaluator failure rejects it with
// ErrEvaluatorUnavailable so nothing is partially persisted.
func (e *ScoringEngine) Score(ctx context.Context, assessment *model.Assessment, answers []model.Answer) (*ScoreResult, error) {
	result := &ScoreResult{Answers: answers}
	scored := make(map[string]bool, len(answers))

	for i := range result.Answers {
		ans := &result.Answers[i]

		// An answer is never scored twice: duplicates for the same question
		// after the first are ignored.
		key := ans.QuestionID.String()
		if scored[key] {
			e.log.Debug().Str("question_id", key).Msg("Duplicate answer skipped")
			continue
		}

		switch ans.QuestionType {
		case model.QuestionTypeMcq:
			question := assessment.QuestionByID(ans.QuestionID, model.QuestionTypeMcq)
			if question == nil {
				e.log.Debug().Str("question_id", key).Msg("Unmatched MCQ answer skipped")
				continue
			}
			scored[key] = true

			ans.IsCorrect = sameOptionSet(ans.SelectedOptions, question.CorrectAnswers)
			feedback := "Incorrect"
			if ans.IsCorrect {
				feedback = "Correct"
				result.AutoScore += question.Points
			}
			result.Feedbacks = append(result.Feedbacks, model.FeedbackItem{
				QuestionID: ans.QuestionID,
				Feedback:   feedback,
			})

		case model.QuestionTypeCoding:
			question := assessment.QuestionByID(ans.QuestionID, model.QuestionTypeCoding)
			if question == nil {
				e.log.Debug().Str("question_id", key).Msg("Unmatched coding answer skipped")
				continue
			}
			if strings.TrimSpace(ans.Code) == "" {
				continue // Blank code is unscored; the evaluator is not called.
			}
			scored[key] = true

			verdict, err := e.evaluator.Evaluate(ctx, *question, ans.Code)
			if err != nil {
				e.log.Warn().Err(err).Str("question_id", key).Msg("Evaluator call failed")
				return nil, fmt.Errorf("%w: %v", ErrEvaluatorUnavailable, err)
			}

			ans.IsCorrect = verdict.IsCorrect
			if verdict.IsCorrect {
				result.ManualScore += question.Points
			}
			result.Feedbacks = append(result.Feedbacks, model.FeedbackItem{
				QuestionID: ans.QuestionID,
				Feedback:   verdict.Feedback,
			})

		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidAnswer, ans.QuestionType)
		}
	}

	return result, nil
}

// sameOptionSet reports exact set equality between selected and correct
// option indices. Order and duplicates are irrelevant; any subset, superset
// or mismatch is incorrect — there is no partial credit.
func sameOptionSet(selected, correct []int) bool {
	sel := make(map[int]struct{}, len(selected))
	for _, o := range selected {
		sel[o] = struct{}{}
	}
	cor := make(map[int]struct{}, len(correct))
	for _, o := range correct {
		cor[o] = struct{}{}
	}
	if len(sel) != len(cor) {
		return false
	}
	for o := range sel {
		if _, ok := cor[o]; !ok {
			return false
		}
	}
	return true
}
