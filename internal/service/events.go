package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/learnlytics/learnlytics-backend/internal/config"
	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SubmissionEvent is broadcast to the instructor monitor after a successful
// submit.
type SubmissionEvent struct {
	AttemptID     uuid.UUID `json:"attempt_id"`
	AssessmentID  uuid.UUID `json:"assessment_id"`
	Username      string    `json:"username"`
	TotalScore    int       `json:"total_score"`
	Flagged       bool      `json:"flagged"`
	MaxSimilarity float64   `json:"max_similarity"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Publisher fans submission side effects out of the request path. Both
// operations are best-effort: failures are logged, never surfaced, because
// the attempt's scored state is already the authoritative outcome.
type Publisher interface {
	EnqueueReport(ctx context.Context, report model.PlagiarismReport)
	PublishSubmission(ctx context.Context, event SubmissionEvent)
}

// RedisPublisher pushes plagiarism reports onto the persistence queue drained
// by worker.ReportWorker and publishes monitor events over PubSub.
type RedisPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(rdb *redis.Client, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		rdb: rdb,
		log: log.With().Str("component", "redis_publisher").Logger(),
	}
}

// EnqueueReport queues a plagiarism report for batched persistence.
func (p *RedisPublisher) EnqueueReport(ctx context.Context, report model.PlagiarismReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		p.log.Error().Err(err).Msg("Encode plagiarism report failed")
		return
	}
	if err := p.rdb.RPush(ctx, config.WorkerKey.PersistReportsQueue, raw).Err(); err != nil {
		p.log.Error().Err(err).
			Str("attempt_id", report.AttemptID.String()).
			Msg("Enqueue plagiarism report failed")
	}
}

// PublishSubmission notifies monitor subscribers for the assessment.
func (p *RedisPublisher) PublishSubmission(ctx context.Context, event SubmissionEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Msg("Encode submission event failed")
		return
	}
	channel := config.CacheKey.AssessmentMonitorChannel(event.AssessmentID.String())
	if err := p.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		p.log.Warn().Err(err).Str("channel", channel).Msg("Publish submission event failed")
	}
}
