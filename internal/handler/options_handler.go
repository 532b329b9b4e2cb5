package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/one-zero-eight/schedule-builder-backend/internal/dto"
	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/response"
)

type optionsService interface {
	Get(ctx context.Context) (*models.OptionsData, error)
	UpdateSemester(ctx context.Context, semester *models.SemesterOptions) error
	UpdateVerySameLessons(ctx context.Context, groups [][]models.VerySameLessonID) error
	ReplaceTeachersFromTSV(ctx context.Context, r io.Reader) ([]models.Teacher, error)
}

// OptionsHandler exposes checker reference data management.
type OptionsHandler struct {
	options optionsService
}

// NewOptionsHandler builds the handler.
func NewOptionsHandler(options optionsService) *OptionsHandler {
	return &OptionsHandler{options: options}
}

// Get godoc
// @Summary Get checker options
// @Tags Options
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /options [get]
func (h *OptionsHandler) Get(c *gin.Context) {
	opts, err := h.options.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opts)
}

// UpdateSemester godoc
// @Summary Replace the semester configuration
// @Tags Options
// @Accept json
// @Produce json
// @Param payload body models.SemesterOptions true "Semester window and overrides"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /options/semester [put]
func (h *OptionsHandler) UpdateSemester(c *gin.Context) {
	var semester models.SemesterOptions
	if err := c.ShouldBindJSON(&semester); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid semester payload"))
		return
	}
	if err := h.options.UpdateSemester(c.Request.Context(), &semester); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester)
}

// UploadTeachers godoc
// @Summary Replace the teacher roster from a TSV export
// @Tags Options
// @Accept plain
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /options/teachers [post]
func (h *OptionsHandler) UploadTeachers(c *gin.Context) {
	teachers, err := h.options.ReplaceTeachersFromTSV(c.Request.Context(), c.Request.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, map[string]interface{}{"count": len(teachers)})
}

// UpdateVerySame godoc
// @Summary Replace the very-same lesson groups
// @Tags Options
// @Accept json
// @Produce json
// @Param payload body dto.UpdateVerySameRequest true "Pattern groups"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /options/very-same [put]
func (h *OptionsHandler) UpdateVerySame(c *gin.Context) {
	var req dto.UpdateVerySameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid very-same payload"))
		return
	}
	if err := h.options.UpdateVerySameLessons(c.Request.Context(), req.Groups); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req.Groups)
}
