package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/config"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
)

// BookingClient talks to the external room-booking API. It serves two
// consumers: the outlook detector (bookings for a window) and the capacity
// detector (room roster).
type BookingClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBookingClient validates the configured URL against the host allowlist
// and returns a client. An empty allowlist permits any host.
func NewBookingClient(cfg config.BookingConfig, logger *zap.Logger) (*BookingClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("parse booking api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("booking api url %q is not absolute", cfg.APIURL)
	}
	if len(cfg.AllowedHosts) > 0 && !hostAllowed(base.Hostname(), cfg.AllowedHosts) {
		return nil, fmt.Errorf("booking api host %q is not in the allowlist", base.Hostname())
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BookingClient{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func hostAllowed(host string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(host, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}

// GetRooms fetches the full room roster.
func (c *BookingClient) GetRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := c.get(ctx, "/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetAllBookings fetches every booking intersecting the given window.
func (c *BookingClient) GetAllBookings(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	query := url.Values{}
	query.Set("start", start.UTC().Format(time.RFC3339))
	query.Set("end", end.UTC().Format(time.RFC3339))

	var bookings []models.Booking
	if err := c.get(ctx, "/bookings", query, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *BookingClient) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	target := *c.baseURL
	target.Path = strings.TrimSuffix(target.Path, "/") + path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("build booking request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "booking api request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Sugar().Warnw("booking api error",
			"path", path, "status", resp.StatusCode, "body", string(body))
		return appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("booking api returned %d for %s", resp.StatusCode, path))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode booking response")
	}
	return nil
}
