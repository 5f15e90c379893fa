package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/learnlytics/learnlytics-backend/internal/similarity"
	"github.com/rs/zerolog"
)

// AssessmentStore is the read surface the attempt engine needs from the
// assessment storage. Authoring writes happen elsewhere.
type AssessmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
	IncrementLearnerCount(ctx context.Context, id uuid.UUID) error
}

// AttemptStore is the attempt persistence surface.
type AttemptStore interface {
	Insert(ctx context.Context, a *model.Attempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
	CompleteSubmission(ctx context.Context, a *model.Attempt) error
	UpdateAnswers(ctx context.Context, id uuid.UUID, answers []model.Answer) error
	ListSubmittedCodeByQuestion(ctx context.Context, assessmentID, questionID, excludeAttemptID uuid.UUID) ([]similarity.CodeSample, error)
}

// AttemptService owns the attempt state machine: start → in-progress →
// submitted/expired. It orchestrates scoring and the similarity pass.
type AttemptService struct {
	assessments AssessmentStore
	attempts    AttemptStore
	scoring     *ScoringEngine
	events      Publisher
	log         zerolog.Logger
	now         func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	assessments AssessmentStore,
	attempts AttemptStore,
	scoring *ScoringEngine,
	events Publisher,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		assessments: assessments,
		attempts:    attempts,
		scoring:     scoring,
		events:      events,
		log:         log.With().Str("component", "attempt_service").Logger(),
		now:         time.Now,
	}
}

// Start creates an attempt against a published assessment. The deadline is
// computed once here and never changes: expired_at is the sole timing
// authority for the whole attempt.
func (s *AttemptService) Start(ctx context.Context, assessmentID uuid.UUID, username string) (*model.Attempt, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if !assessment.Published {
		return nil, ErrAssessmentNotPublished
	}

	now := s.now()
	attempt := &model.Attempt{
		ID:           uuid.New(),
		AssessmentID: assessment.ID,
		Username:     username,
		StartedAt:    now,
		ExpiredAt:    now.Add(time.Duration(assessment.DurationMinutes) * time.Minute),
		Status:       model.AttemptStatusInProgress,
		Answers:      []model.Answer{},
	}

	if err := s.attempts.Insert(ctx, attempt); err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}

	// Non-authoritative bookkeeping; never fails the start.
	if err := s.assessments.IncrementLearnerCount(ctx, assessment.ID); err != nil {
		s.log.Warn().Err(err).Str("assessment_id", assessment.ID.String()).
			Msg("Learner count increment failed")
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("assessment_id", assessment.ID.String()).
		Str("username", username).
		Time("expired_at", attempt.ExpiredAt).
		Msg("Attempt started")

	return attempt, nil
}

// Get retrieves an attempt. Absence is not an error: it returns (nil, nil).
func (s *AttemptService) Get(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

// Submit scores the incoming answers and finishes the attempt.
//
// The expiry check is the only path that mutates a record purely to record an
// expiry; the submitted answers are then discarded unscored. After scoring,
// a single status-guarded update persists answers, feedback, scores and the
// SUBMITTED state; losing that race surfaces ErrSubmissionConflict instead of
// clobbering. The similarity pass runs last and is best-effort.
func (s *AttemptService) Submit(ctx context.Context, attemptID uuid.UUID, answers []model.Answer) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	// Terminal states stay terminal.
	switch attempt.Status {
	case model.AttemptStatusSubmitted:
		return nil, ErrAlreadySubmitted
	case model.AttemptStatusExpired:
		return nil, ErrAttemptExpired
	}

	now := s.now()
	if now.After(attempt.ExpiredAt) {
		if err := s.attempts.MarkExpired(ctx, attempt.ID); err != nil {
			return nil, fmt.Errorf("mark expired: %w", err)
		}
		s.log.Info().Str("attempt_id", attempt.ID.String()).Msg("Attempt expired on submit")
		return nil, ErrAttemptExpired
	}

	assessment, err := s.assessments.GetByID(ctx, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment for attempt: %w", err)
	}

	result, err := s.scoring.Score(ctx, assessment, answers)
	if err != nil {
		// InvalidAnswer and EvaluatorUnavailable surface to the caller with
		// the attempt still IN_PROGRESS; nothing was persisted.
		return nil, err
	}

	attempt.Answers = result.Answers
	attempt.Feedbacks = result.Feedbacks
	attempt.AutoScore = result.AutoScore
	attempt.ManualScore = result.ManualScore
	attempt.Status = model.AttemptStatusSubmitted
	attempt.SubmittedAt = &now

	if err := s.attempts.CompleteSubmission(ctx, attempt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionConflict
		}
		return nil, fmt.Errorf("complete submission: %w", err)
	}

	maxSimilarity, flagged := s.runSimilarityScan(ctx, assessment, attempt)

	s.events.PublishSubmission(ctx, SubmissionEvent{
		AttemptID:     attempt.ID,
		AssessmentID:  attempt.AssessmentID,
		Username:      attempt.Username,
		TotalScore:    attempt.TotalScore(),
		Flagged:       flagged,
		MaxSimilarity: maxSimilarity,
		SubmittedAt:   now,
	})

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("auto_score", attempt.AutoScore).
		Int("manual_score", attempt.ManualScore).
		Int("total_score", attempt.TotalScore()).
		Msg("Attempt submitted")

	return attempt, nil
}

// runSimilarityScan compares each coding answer against the other submitted
// attempts on the same question. The scan never fails the submission: the
// attempt's scored state is authoritative and similarity output is advisory.
// Earlier attempts are not re-compared against this one ("flag as you go").
func (s *AttemptService) runSimilarityScan(ctx context.Context, assessment *model.Assessment, attempt *model.Attempt) (float64, bool) {
	var (
		maxSimilarity float64
		flagged       bool
		changed       bool
	)

	for i := range attempt.Answers {
		ans := &attempt.Answers[i]
		if ans.QuestionType != model.QuestionTypeCoding || strings.TrimSpace(ans.Code) == "" {
			continue
		}
		if assessment.QuestionByID(ans.QuestionID, model.QuestionTypeCoding) == nil {
			continue
		}

		samples, err := s.attempts.ListSubmittedCodeByQuestion(ctx, attempt.AssessmentID, ans.QuestionID, attempt.ID)
		if err != nil {
			s.log.Error().Err(err).
				Str("attempt_id", attempt.ID.String()).
				Str("question_id", ans.QuestionID.String()).
				Msg("Similarity sample fetch failed")
			continue
		}

		res := similarity.Compare(ans.Code, samples)
		score := res.MaxScore
		ans.PlagiarismScore = &score
		ans.SimilarAttemptIDs = res.SimilarAttemptIDs
		changed = true

		if score > maxSimilarity {
			maxSimilarity = score
		}
		if len(res.SimilarAttemptIDs) > 0 {
			flagged = true
		}

		if score > 0 {
			s.events.EnqueueReport(ctx, model.PlagiarismReport{
				ID:              uuid.New(),
				AssessmentID:    attempt.AssessmentID,
				QuestionID:      ans.QuestionID,
				AttemptID:       attempt.ID,
				SimilarityScore: score,
				SimilarDocs:     res.SimilarAttemptIDs,
				CreatedAt:       s.now(),
			})
		}
	}

	if changed {
		if err := s.attempts.UpdateAnswers(ctx, attempt.ID, attempt.Answers); err != nil {
			s.log.Error().Err(err).
				Str("attempt_id", attempt.ID.String()).
				Msg("Similarity answer update failed")
		}
	}

	return maxSimilarity, flagged
}
