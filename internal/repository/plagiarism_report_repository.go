package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnlytics/learnlytics-backend/internal/model"
)

// PlagiarismReportRepository handles the append-only plagiarism audit trail.
// Reports are inserted, listed for instructors, and never updated.
type PlagiarismReportRepository struct {
	pool *pgxpool.Pool
}

// NewPlagiarismReportRepository creates a new PlagiarismReportRepository.
func NewPlagiarismReportRepository(pool *pgxpool.Pool) *PlagiarismReportRepository {
	return &PlagiarismReportRepository{pool: pool}
}

// InsertBatch bulk-inserts reports with COPY. Callers fall back to Insert on
// failure.
func (r *PlagiarismReportRepository) InsertBatch(ctx context.Context, reports []model.PlagiarismReport) error {
	rows := make([][]interface{}, 0, len(reports))
	for _, rep := range reports {
		rows = append(rows, []interface{}{
			rep.ID, rep.AssessmentID, rep.QuestionID, rep.AttemptID,
			rep.SimilarityScore, rep.SimilarDocs, rep.CreatedAt,
		})
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"plagiarism_reports"},
		[]string{"id", "assessment_id", "question_id", "attempt_id", "similarity_score", "similar_attempt_ids", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// Insert stores a single report.
func (r *PlagiarismReportRepository) Insert(ctx context.Context, rep *model.PlagiarismReport) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO plagiarism_reports
		   (id, assessment_id, question_id, attempt_id, similarity_score, similar_attempt_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rep.ID, rep.AssessmentID, rep.QuestionID, rep.AttemptID,
		rep.SimilarityScore, rep.SimilarDocs, rep.CreatedAt)
	return err
}

// ListByAssessment retrieves reports for an assessment, newest first, with
// pagination.
func (r *PlagiarismReportRepository) ListByAssessment(ctx context.Context, assessmentID uuid.UUID, page, perPage int) ([]model.PlagiarismReport, int64, error) {
	offset := (page - 1) * perPage

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM plagiarism_reports WHERE assessment_id = $1`,
		assessmentID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, assessment_id, question_id, attempt_id, similarity_score, similar_attempt_ids, created_at
		 FROM plagiarism_reports
		 WHERE assessment_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		assessmentID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []model.PlagiarismReport
	for rows.Next() {
		var rep model.PlagiarismReport
		if err := rows.Scan(&rep.ID, &rep.AssessmentID, &rep.QuestionID, &rep.AttemptID,
			&rep.SimilarityScore, &rep.SimilarDocs, &rep.CreatedAt); err != nil {
			return nil, 0, err
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}
