package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/internal/service"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
)

type checkServiceMock struct {
	results     *models.CheckResults
	err         error
	gotLessons  []models.Lesson
	gotFlags    service.CheckFlags
	gotVerySame [][]models.VerySameLessonID
}

func (m *checkServiceMock) Check(ctx context.Context, lessons []models.Lesson, flags service.CheckFlags, extraVerySame [][]models.VerySameLessonID) (*models.CheckResults, error) {
	m.gotLessons = lessons
	m.gotFlags = flags
	m.gotVerySame = extraVerySame
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *checkServiceMock) CheckSpreadsheets(ctx context.Context, flags service.CheckFlags) (*models.CheckResults, error) {
	m.gotFlags = flags
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func performJSON(t *testing.T, handlerFunc gin.HandlerFunc, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handlerFunc(c)
	return w
}

func TestCollisionHandlerCheck(t *testing.T) {
	mock := &checkServiceMock{results: &models.CheckResults{}}
	handler := NewCollisionHandler(mock)

	body := []byte(`{
		"lessons": [{
			"lesson_name": "Calculus",
			"weekday": "MONDAY",
			"start_time": "09:00",
			"end_time": "10:30",
			"room": "107"
		}],
		"check_outlook_collisions": false
	}`)
	w := performJSON(t, handler.Check, http.MethodPost, "/collisions/check", body)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mock.gotLessons, 1)
	assert.Equal(t, "Calculus", mock.gotLessons[0].LessonName)
	assert.Equal(t, models.StringSet{"107"}, mock.gotLessons[0].Rooms)
	assert.True(t, mock.gotFlags.Room)
	assert.True(t, mock.gotFlags.Teacher)
	assert.True(t, mock.gotFlags.Capacity)
	assert.False(t, mock.gotFlags.Outlook, "explicit false must win over the default")
}

func TestCollisionHandlerCheckInvalidBody(t *testing.T) {
	handler := NewCollisionHandler(&checkServiceMock{})
	w := performJSON(t, handler.Check, http.MethodPost, "/collisions/check", []byte(`{`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollisionHandlerCheckServiceError(t *testing.T) {
	mock := &checkServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "malformed lesson")}
	handler := NewCollisionHandler(mock)

	body := []byte(`{"lessons": [{"lesson_name": "x", "start_time": "09:00", "end_time": "10:30"}]}`)
	w := performJSON(t, handler.Check, http.MethodPost, "/collisions/check", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestCollisionHandlerCheckSpreadsheet(t *testing.T) {
	mock := &checkServiceMock{results: &models.CheckResults{}}
	handler := NewCollisionHandler(mock)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/collisions/check-spreadsheet?check_outlook_collisions=false", nil)
	require.NoError(t, err)
	c.Request = req
	handler.CheckSpreadsheet(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.gotFlags.Room)
	assert.False(t, mock.gotFlags.Outlook)
}
