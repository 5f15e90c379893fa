package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnlytics/learnlytics-backend/internal/config"
	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AssessmentRepository handles assessment data access. Published assessments
// are served read-through from Redis since the attempt engine never mutates
// their content.
type AssessmentRepository struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(pool *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *AssessmentRepository {
	return &AssessmentRepository{
		pool: pool,
		rdb:  rdb,
		ttl:  cfg.AssessmentCacheTTL,
		log:  log.With().Str("component", "assessment_repository").Logger(),
	}
}

// GetByID retrieves an assessment, preferring the Redis cache for published
// ones. Returns pgx.ErrNoRows when the assessment does not exist.
func (r *AssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	cacheKey := config.CacheKey.AssessmentKey(id.String())

	if raw, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var a model.Assessment
		if jsonErr := json.Unmarshal([]byte(raw), &a); jsonErr == nil {
			return &a, nil
		}
		// Corrupt cache entry; fall through to the database.
		_ = r.rdb.Del(ctx, cacheKey)
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn().Err(err).Msg("assessment cache read failed, using database")
	}

	a := &model.Assessment{}
	var questionsRaw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, skills, duration_minutes, published,
		        learner_count, questions, created_by, created_at
		 FROM assessments
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.Description, &a.Skills, &a.DurationMinutes,
		&a.Published, &a.LearnerCount, &questionsRaw, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questionsRaw, &a.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	// Self-heal: put published assessments back so the next read is fast.
	if a.Published {
		if raw, err := json.Marshal(a); err == nil {
			_ = r.rdb.Set(ctx, cacheKey, raw, r.ttl).Err()
		}
	}

	return a, nil
}

// IncrementLearnerCount bumps the non-authoritative learner counter.
func (r *AssessmentRepository) IncrementLearnerCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assessments SET learner_count = learner_count + 1 WHERE id = $1`, id)
	return err
}

// Insert stores a new assessment. Used by seeding tools; authoring proper
// lives outside this service.
func (r *AssessmentRepository) Insert(ctx context.Context, a *model.Assessment) error {
	questionsRaw, err := json.Marshal(a.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO assessments
		   (id, title, description, skills, duration_minutes, published, learner_count, questions, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Title, a.Description, a.Skills, a.DurationMinutes,
		a.Published, a.LearnerCount, questionsRaw, a.CreatedBy)
	return err
}
