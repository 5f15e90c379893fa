package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/learnlytics/learnlytics-backend/internal/similarity"
)

// AttemptRepository handles attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Insert stores a freshly started attempt.
func (r *AttemptRepository) Insert(ctx context.Context, a *model.Attempt) error {
	answersRaw, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempts
		   (id, assessment_id, username, started_at, expired_at, status, answers, auto_score, manual_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.AssessmentID, a.Username, a.StartedAt, a.ExpiredAt,
		a.Status, answersRaw, a.AutoScore, a.ManualScore)
	return err
}

// GetByID retrieves an attempt. Returns pgx.ErrNoRows when absent.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	var answersRaw, feedbacksRaw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, assessment_id, username, started_at, expired_at, submitted_at,
		        status, answers, feedbacks, auto_score, manual_score
		 FROM attempts
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.AssessmentID, &a.Username, &a.StartedAt, &a.ExpiredAt,
		&a.SubmittedAt, &a.Status, &answersRaw, &feedbacksRaw, &a.AutoScore, &a.ManualScore)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersRaw, &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if len(feedbacksRaw) > 0 {
		if err := json.Unmarshal(feedbacksRaw, &a.Feedbacks); err != nil {
			return nil, fmt.Errorf("decode feedbacks: %w", err)
		}
	}
	return a, nil
}

// MarkExpired transitions an in-progress attempt to EXPIRED. The status guard
// keeps terminal states terminal; expiring an already-terminal attempt is a
// no-op.
func (r *AttemptRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $1
		 WHERE id = $2 AND status = $3`,
		model.AttemptStatusExpired, id, model.AttemptStatusInProgress)
	return err
}

// CompleteSubmission persists answers, feedback, scores and the SUBMITTED
// status in one conditional update. The status guard is the optimistic
// concurrency token: a concurrent submit that lost the race sees
// pgx.ErrNoRows instead of silently clobbering the winner's write.
func (r *AttemptRepository) CompleteSubmission(ctx context.Context, a *model.Attempt) error {
	answersRaw, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	feedbacksRaw, err := json.Marshal(a.Feedbacks)
	if err != nil {
		return fmt.Errorf("encode feedbacks: %w", err)
	}

	var submittedAt time.Time
	err = r.pool.QueryRow(ctx,
		`UPDATE attempts
		 SET status = $1, submitted_at = $2, answers = $3, feedbacks = $4,
		     auto_score = $5, manual_score = $6
		 WHERE id = $7 AND status = $8
		 RETURNING submitted_at`,
		model.AttemptStatusSubmitted, a.SubmittedAt, answersRaw, feedbacksRaw,
		a.AutoScore, a.ManualScore, a.ID, model.AttemptStatusInProgress,
	).Scan(&submittedAt)
	return err
}

// UpdateAnswers rewrites the answers document only. Used by the similarity
// pass, which runs after the attempt has reached its terminal SUBMITTED state.
func (r *AttemptRepository) UpdateAnswers(ctx context.Context, id uuid.UUID, answers []model.Answer) error {
	answersRaw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE attempts SET answers = $1 WHERE id = $2`, answersRaw, id)
	return err
}

// ListSubmittedCodeByQuestion returns every other submitted attempt's
// non-blank code for one question on one assessment. This is a point-in-time
// snapshot; attempts submitted during the scan are picked up by their own
// later scans, never retroactively.
func (r *AttemptRepository) ListSubmittedCodeByQuestion(ctx context.Context, assessmentID, questionID, excludeAttemptID uuid.UUID) ([]similarity.CodeSample, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, ans->>'code'
		 FROM attempts a,
		      LATERAL jsonb_array_elements(a.answers) AS ans
		 WHERE a.assessment_id = $1
		   AND a.id <> $2
		   AND a.status = $3
		   AND ans->>'question_type' = $4
		   AND ans->>'question_id' = $5
		   AND btrim(COALESCE(ans->>'code', '')) <> ''`,
		assessmentID, excludeAttemptID, model.AttemptStatusSubmitted,
		model.QuestionTypeCoding, questionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []similarity.CodeSample
	for rows.Next() {
		var s similarity.CodeSample
		if err := rows.Scan(&s.AttemptID, &s.Code); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
