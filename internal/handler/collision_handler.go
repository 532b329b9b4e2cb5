package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/one-zero-eight/schedule-builder-backend/internal/dto"
	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/internal/service"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/response"
)

type collisionChecker interface {
	Check(ctx context.Context, lessons []models.Lesson, flags service.CheckFlags, extraVerySame [][]models.VerySameLessonID) (*models.CheckResults, error)
	CheckSpreadsheets(ctx context.Context, flags service.CheckFlags) (*models.CheckResults, error)
}

// CollisionHandler exposes the collision check endpoints.
type CollisionHandler struct {
	checks collisionChecker
}

// NewCollisionHandler builds the handler.
func NewCollisionHandler(checks collisionChecker) *CollisionHandler {
	return &CollisionHandler{checks: checks}
}

func flagsFromRequest(req *dto.CheckCollisionsRequest) service.CheckFlags {
	return service.CheckFlags{
		Room:     req.RoomEnabled(),
		Teacher:  req.TeacherEnabled(),
		Capacity: req.SpaceEnabled(),
		Outlook:  req.OutlookEnabled(),
	}
}

// Check godoc
// @Summary Check lessons for collisions
// @Tags Collisions
// @Accept json
// @Produce json
// @Param payload body dto.CheckCollisionsRequest true "Lessons and detector toggles"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /collisions/check [post]
func (h *CollisionHandler) Check(c *gin.Context) {
	var req dto.CheckCollisionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check payload"))
		return
	}

	results, err := h.checks.Check(c.Request.Context(), req.Lessons, flagsFromRequest(&req), req.VerySameLessons)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results)
}

// CheckSpreadsheet godoc
// @Summary Check the configured spreadsheet feeds for collisions
// @Tags Collisions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /collisions/check-spreadsheet [get]
func (h *CollisionHandler) CheckSpreadsheet(c *gin.Context) {
	flags := service.CheckFlags{
		Room:     queryFlag(c, "check_room_collisions"),
		Teacher:  queryFlag(c, "check_teacher_collisions"),
		Capacity: queryFlag(c, "check_space_collisions"),
		Outlook:  queryFlag(c, "check_outlook_collisions"),
	}

	results, err := h.checks.CheckSpreadsheets(c.Request.Context(), flags)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results)
}

// queryFlag reads a boolean toggle that defaults to true when absent.
func queryFlag(c *gin.Context, name string) bool {
	value, ok := c.GetQuery(name)
	if !ok {
		return true
	}
	return value != "false" && value != "0"
}
