package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/learnlytics/learnlytics-backend/internal/config"
	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/learnlytics/learnlytics-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ReportWorker drains the plagiarism report queue into PostgreSQL. Reports
// are advisory audit records, so the queue trades strict durability for
// keeping inserts off the submit path.
type ReportWorker struct {
	reports *repository.PlagiarismReportRepository
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewReportWorker creates a new ReportWorker.
func NewReportWorker(reports *repository.PlagiarismReportRepository, rdb *redis.Client, log zerolog.Logger) *ReportWorker {
	return &ReportWorker{
		reports: reports,
		rdb:     rdb,
		log:     log.With().Str("component", "report_worker").Logger(),
	}
}

func (w *ReportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ReportWorker started")

	buffer := make([]model.PlagiarismReport, 0, BatchSize)
	lastFlush := time.Now()

	for {
		// 1. Check flush conditions (time or size).
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0] // Clear buffer, keep capacity
				lastFlush = time.Now()
			}
		}

		// 2. Check context (graceful shutdown).
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// 3. Fetch from Redis. BLPop blocks for 1 second, returns
		// immediately if data exists.
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistReportsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // Queue empty, loop back to check flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		// 4. Process data.
		if len(result) < 2 {
			continue
		}

		var report model.PlagiarismReport
		if err := json.Unmarshal([]byte(result[1]), &report); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed report")
			continue
		}

		buffer = append(buffer, report)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *ReportWorker) flushSafe(ctx context.Context, batch []model.PlagiarismReport) {
	if err := w.reports.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *ReportWorker) fallbackInsert(ctx context.Context, batch []model.PlagiarismReport) {
	requeueList := make([]model.PlagiarismReport, 0)

	for i := range batch {
		if err := w.reports.Insert(ctx, &batch[i]); err != nil {
			w.log.Error().Err(err).
				Str("attempt_id", batch[i].AttemptID.String()).
				Msg("Insert failed, requeueing")
			requeueList = append(requeueList, batch[i])
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *ReportWorker) requeue(ctx context.Context, items []model.PlagiarismReport) {
	pipe := w.rdb.Pipeline()
	for i := range items {
		data, _ := json.Marshal(items[i])
		pipe.RPush(ctx, config.WorkerKey.PersistReportsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue reports to Redis. Data loss occurred.")
		return
	}

	w.log.Info().Int("count", len(items)).Msg("Requeued failed reports back to Redis")
	// Sleep a bit to avoid thrashing if the DB is down hard.
	time.Sleep(2 * time.Second)
}

func (w *ReportWorker) shutdown(buffer []model.PlagiarismReport) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
