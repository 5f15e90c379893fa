package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/learnlytics/learnlytics-backend/internal/repository"
	"github.com/learnlytics/learnlytics-backend/internal/response"
)

// ReportHandler exposes the plagiarism audit trail to instructors.
type ReportHandler struct {
	reports *repository.PlagiarismReportRepository
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *repository.PlagiarismReportRepository) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListByAssessment godoc
// GET /api/v1/instructor/assessments/:assessment_id/plagiarism-reports
// Lists plagiarism reports for an assessment, newest first, paginated.
func (h *ReportHandler) ListByAssessment(c *gin.Context) {
	assessmentID, err := uuid.Parse(c.Param("assessment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	reports, total, err := h.reports.ListByAssessment(c.Request.Context(), assessmentID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"reports": reports}, pagination)
}
