package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

type cacheMetrics interface {
	RecordCacheOperation(hit bool)
	ObserveBookingFetch(err error)
}

// CachedBookingClient is a Redis read-through layer over BookingClient. The
// room roster changes rarely and bookings tolerate short staleness, so both
// are cached with their own TTLs. Cache failures fall through to the API.
type CachedBookingClient struct {
	inner       *BookingClient
	redis       *redis.Client
	roomsTTL    time.Duration
	bookingsTTL time.Duration
	metrics     cacheMetrics
	logger      *zap.Logger
}

// NewCachedBookingClient wraps the client. Metrics may be nil.
func NewCachedBookingClient(inner *BookingClient, rdb *redis.Client, roomsTTL, bookingsTTL time.Duration, metrics cacheMetrics, logger *zap.Logger) *CachedBookingClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if roomsTTL <= 0 {
		roomsTTL = 10 * time.Minute
	}
	if bookingsTTL <= 0 {
		bookingsTTL = time.Minute
	}
	return &CachedBookingClient{
		inner:       inner,
		redis:       rdb,
		roomsTTL:    roomsTTL,
		bookingsTTL: bookingsTTL,
		metrics:     metrics,
		logger:      logger,
	}
}

// GetRooms returns the cached roster, refreshing it on a miss.
func (c *CachedBookingClient) GetRooms(ctx context.Context) ([]models.Room, error) {
	const key = "booking:rooms"
	var rooms []models.Room
	if c.lookup(ctx, key, &rooms) {
		return rooms, nil
	}

	rooms, err := c.inner.GetRooms(ctx)
	if c.metrics != nil {
		c.metrics.ObserveBookingFetch(err)
	}
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, rooms, c.roomsTTL)
	return rooms, nil
}

// GetAllBookings returns cached bookings for the exact window.
func (c *CachedBookingClient) GetAllBookings(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	key := fmt.Sprintf("booking:bookings:%d:%d", start.Unix(), end.Unix())
	var bookings []models.Booking
	if c.lookup(ctx, key, &bookings) {
		return bookings, nil
	}

	bookings, err := c.inner.GetAllBookings(ctx, start, end)
	if c.metrics != nil {
		c.metrics.ObserveBookingFetch(err)
	}
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, bookings, c.bookingsTTL)
	return bookings, nil
}

func (c *CachedBookingClient) lookup(ctx context.Context, key string, dest interface{}) bool {
	if c.redis == nil {
		return false
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	hit := err == nil
	if c.metrics != nil {
		c.metrics.RecordCacheOperation(hit)
	}
	if !hit {
		if err != redis.Nil {
			c.logger.Sugar().Warnw("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Sugar().Warnw("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedBookingClient) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Sugar().Warnw("cache write failed", "key", key, "error", err)
	}
}
