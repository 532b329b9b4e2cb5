package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/one-zero-eight/schedule-builder-backend/internal/dto"
	"github.com/one-zero-eight/schedule-builder-backend/internal/middleware"
	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/internal/service"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/response"
)

type reportService interface {
	CreateReport(ctx context.Context, lessons []models.Lesson, flags service.CheckFlags, format models.ReportFormat, requestedBy string) (*models.CollisionReport, error)
	GetReport(ctx context.Context, id string) (*models.CollisionReport, error)
	DownloadURL(ctx context.Context, id string) (string, time.Time, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes asynchronous collision report generation.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler builds the handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create godoc
// @Summary Queue a collision report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportRequest true "Lessons, toggles and output format"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /collisions/reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	requestedBy := ""
	if claims := middleware.CurrentUser(c); claims != nil {
		requestedBy = claims.Email
		if requestedBy == "" {
			requestedBy = claims.Subject
		}
	}

	report, err := h.reports.CreateReport(c.Request.Context(), req.Lessons, flagsFromRequest(&req.CheckCollisionsRequest), req.Format, requestedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Status godoc
// @Summary Get report status
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /collisions/reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	report, err := h.reports.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	status := dto.ReportStatusResponse{CollisionReport: *report}
	if report.Status == models.ReportCompleted {
		token, _, err := h.reports.DownloadURL(c.Request.Context(), report.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		status.DownloadURL = "/collisions/reports/download?token=" + token
	}
	response.JSON(c, http.StatusOK, status)
}

// Download godoc
// @Summary Download a finished report
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /collisions/reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	download, err := h.reports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	contentType := "text/csv"
	if download.Report.Format == models.ReportPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Content-Type", contentType)
	c.File(download.File.Name())
}
