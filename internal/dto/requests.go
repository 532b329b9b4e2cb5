package dto

import (
	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

// CheckCollisionsRequest is the POST /collisions/check payload. Detector
// toggles default to enabled when omitted.
type CheckCollisionsRequest struct {
	Lessons []models.Lesson `json:"lessons" binding:"required"`

	CheckRoomCollisions    *bool `json:"check_room_collisions,omitempty"`
	CheckTeacherCollisions *bool `json:"check_teacher_collisions,omitempty"`
	CheckSpaceCollisions   *bool `json:"check_space_collisions,omitempty"`
	CheckOutlookCollisions *bool `json:"check_outlook_collisions,omitempty"`

	// VerySameLessons extends the stored configuration for this request.
	VerySameLessons [][]models.VerySameLessonID `json:"very_same_lessons,omitempty"`
}

// RoomEnabled reports the effective room toggle.
func (r *CheckCollisionsRequest) RoomEnabled() bool { return enabled(r.CheckRoomCollisions) }

// TeacherEnabled reports the effective teacher toggle.
func (r *CheckCollisionsRequest) TeacherEnabled() bool { return enabled(r.CheckTeacherCollisions) }

// SpaceEnabled reports the effective capacity toggle.
func (r *CheckCollisionsRequest) SpaceEnabled() bool { return enabled(r.CheckSpaceCollisions) }

// OutlookEnabled reports the effective outlook toggle.
func (r *CheckCollisionsRequest) OutlookEnabled() bool { return enabled(r.CheckOutlookCollisions) }

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

// CreateReportRequest is the POST /collisions/reports payload.
type CreateReportRequest struct {
	CheckCollisionsRequest
	Format models.ReportFormat `json:"format" binding:"required"`
}

// UpdateVerySameRequest is the PUT /options/very-same payload.
type UpdateVerySameRequest struct {
	Groups [][]models.VerySameLessonID `json:"groups" binding:"required"`
}

// ReportStatusResponse augments the stored job with a download URL once the
// report is ready.
type ReportStatusResponse struct {
	models.CollisionReport
	DownloadURL string `json:"download_url,omitempty"`
}
