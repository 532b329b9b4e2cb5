package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
)

// LessonFeedClient pulls pre-normalized lessons from a scraper feed. One
// client per feed; the core-course and elective spreadsheets are separate
// feeds with separate URLs.
type LessonFeedClient struct {
	name       string
	url        string
	sourceType models.SourceType
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLessonFeedClient constructs a feed client.
func NewLessonFeedClient(name, feedURL string, sourceType models.SourceType, timeout time.Duration, logger *zap.Logger) *LessonFeedClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonFeedClient{
		name:       name,
		url:        feedURL,
		sourceType: sourceType,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name identifies the feed in logs and errors.
func (c *LessonFeedClient) Name() string { return c.name }

// GetAllLessons fetches and decodes the feed, stamping each lesson with the
// feed's source type when the feed omits it.
func (c *LessonFeedClient) GetAllLessons(ctx context.Context) ([]models.Lesson, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build lesson feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "lesson feed request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("lesson feed %s returned %d", c.name, resp.StatusCode))
	}

	var lessons []models.Lesson
	if err := json.NewDecoder(resp.Body).Decode(&lessons); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode lesson feed")
	}
	for i := range lessons {
		if lessons[i].SourceType == "" {
			lessons[i].SourceType = c.sourceType
		}
	}
	return lessons, nil
}
