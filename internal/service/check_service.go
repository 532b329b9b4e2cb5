package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
)

// RoomSource supplies the room roster from the external booking system.
type RoomSource interface {
	GetRooms(ctx context.Context) ([]models.Room, error)
}

// LessonSource pulls normalized lessons from a scraped spreadsheet feed.
type LessonSource interface {
	Name() string
	GetAllLessons(ctx context.Context) ([]models.Lesson, error)
}

// CheckService assembles a collision checker per request from the stored
// options and the live room roster, then runs the requested detectors.
type CheckService struct {
	options  optionsRepository
	rooms    RoomSource
	bookings BookingGateway
	sources  []LessonSource
	cfg      CollisionCheckerConfig
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewCheckService constructs the service. The metrics service may be nil.
func NewCheckService(
	options optionsRepository,
	rooms RoomSource,
	bookings BookingGateway,
	sources []LessonSource,
	cfg CollisionCheckerConfig,
	metrics *MetricsService,
	logger *zap.Logger,
) *CheckService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckService{
		options:  options,
		rooms:    rooms,
		bookings: bookings,
		sources:  sources,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// Check runs the enabled detectors over the given lessons. Extra very-same
// groups supplied inline with the request extend the stored configuration
// for this check only.
func (s *CheckService) Check(ctx context.Context, lessons []models.Lesson, flags CheckFlags, extraVerySame [][]models.VerySameLessonID) (*models.CheckResults, error) {
	opts, err := s.options.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load options")
	}
	if len(extraVerySame) > 0 {
		opts.VerySameLessons = append(opts.VerySameLessons, extraVerySame...)
	}

	// A room roster outage degrades capacity checks to the default
	// assumption instead of failing the whole request.
	var rooms []models.Room
	if s.rooms != nil {
		rooms, err = s.rooms.GetRooms(ctx)
		if err != nil {
			s.logger.Sugar().Warnw("room roster unavailable, using default capacities", "error", err)
			rooms = nil
		}
	}

	checker := NewCollisionChecker(opts, rooms, s.bookings, s.cfg, s.logger)
	started := time.Now()
	issues, err := checker.GetCollisions(ctx, lessons, flags)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCheck(issues, time.Since(started))
	return &models.CheckResults{Issues: issues}, nil
}

// CheckSpreadsheets pulls lessons from every configured feed and checks the
// combined set. Every source must respond: a half-loaded timetable would
// produce misleading results.
func (s *CheckService) CheckSpreadsheets(ctx context.Context, flags CheckFlags) (*models.CheckResults, error) {
	if len(s.sources) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no lesson feeds configured")
	}

	var lessons []models.Lesson
	for _, source := range s.sources {
		fetched, err := source.GetAllLessons(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
				"fetch lessons from "+source.Name())
		}
		s.logger.Sugar().Infow("fetched lessons", "source", source.Name(), "lessons", len(fetched))
		lessons = append(lessons, fetched...)
	}
	return s.Check(ctx, lessons, flags, nil)
}
