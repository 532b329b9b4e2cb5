package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	Accounts   AccountsConfig
	Booking    BookingConfig
	LessonFeed LessonFeedConfig
	Collisions CollisionsConfig
	Reports    ReportsConfig
	CORS       CORSConfig
	Log        LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AccountsConfig points at the accounts service that issues user tokens.
type AccountsConfig struct {
	APIURL      string
	JWKSPath    string
	JWKSRefresh time.Duration
}

// BookingConfig configures the external room-booking API integration.
type BookingConfig struct {
	APIURL       string
	Token        string
	AllowedHosts []string
	Timeout      time.Duration
	RoomsTTL     time.Duration
	BookingsTTL  time.Duration
}

// LessonFeedConfig points at the scraper service exposing normalized lessons.
type LessonFeedConfig struct {
	CoreCoursesURL string
	ElectivesURL   string
	Timeout        time.Duration
}

// CollisionsConfig tunes the collision detectors.
type CollisionsConfig struct {
	DefaultRoomCapacity int
	OutlookMinOverlap   time.Duration
	OutlookWindowDays   int
	OutlookMaxWindow    int
	OnlineRoomNames     []string
	ExemptLessonNames   []string
	Timezone            string
}

// ReportsConfig configures asynchronous collision report generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

type CORSConfig struct {
	AllowedOrigins    []string
	AllowOriginRegexp string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Accounts = AccountsConfig{
		APIURL:      v.GetString("ACCOUNTS_API_URL"),
		JWKSPath:    v.GetString("ACCOUNTS_JWKS_PATH"),
		JWKSRefresh: parseDuration(v.GetString("ACCOUNTS_JWKS_REFRESH"), time.Hour),
	}

	cfg.Booking = BookingConfig{
		APIURL:       v.GetString("BOOKING_API_URL"),
		Token:        v.GetString("BOOKING_API_TOKEN"),
		AllowedHosts: splitAndTrim(v.GetString("BOOKING_ALLOWED_HOSTS")),
		Timeout:      parseDuration(v.GetString("BOOKING_TIMEOUT"), 30*time.Second),
		RoomsTTL:     parseDuration(v.GetString("BOOKING_ROOMS_CACHE_TTL"), 10*time.Minute),
		BookingsTTL:  parseDuration(v.GetString("BOOKING_BOOKINGS_CACHE_TTL"), time.Minute),
	}

	cfg.LessonFeed = LessonFeedConfig{
		CoreCoursesURL: v.GetString("LESSON_FEED_CORE_COURSES_URL"),
		ElectivesURL:   v.GetString("LESSON_FEED_ELECTIVES_URL"),
		Timeout:        parseDuration(v.GetString("LESSON_FEED_TIMEOUT"), 60*time.Second),
	}

	cfg.Collisions = CollisionsConfig{
		DefaultRoomCapacity: v.GetInt("COLLISIONS_DEFAULT_ROOM_CAPACITY"),
		OutlookMinOverlap:   parseDuration(v.GetString("COLLISIONS_OUTLOOK_MIN_OVERLAP"), time.Minute),
		OutlookWindowDays:   v.GetInt("COLLISIONS_OUTLOOK_WINDOW_DAYS"),
		OutlookMaxWindow:    v.GetInt("COLLISIONS_OUTLOOK_MAX_WINDOW_DAYS"),
		OnlineRoomNames:     splitAndTrim(v.GetString("COLLISIONS_ONLINE_ROOM_NAMES")),
		ExemptLessonNames:   splitAndTrim(v.GetString("COLLISIONS_EXEMPT_LESSON_NAMES")),
		Timezone:            v.GetString("COLLISIONS_TIMEZONE"),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins:    splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		AllowOriginRegexp: v.GetString("ALLOWED_ORIGIN_REGEXP"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "schedule_builder")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ACCOUNTS_API_URL", "https://api.innohassle.ru/accounts/v0")
	v.SetDefault("ACCOUNTS_JWKS_PATH", "/.well-known/jwks.json")
	v.SetDefault("ACCOUNTS_JWKS_REFRESH", "1h")

	v.SetDefault("BOOKING_API_URL", "https://api.innohassle.ru/room-booking/v0")
	v.SetDefault("BOOKING_API_TOKEN", "")
	v.SetDefault("BOOKING_ALLOWED_HOSTS", "api.innohassle.ru")
	v.SetDefault("BOOKING_TIMEOUT", "30s")
	v.SetDefault("BOOKING_ROOMS_CACHE_TTL", "10m")
	v.SetDefault("BOOKING_BOOKINGS_CACHE_TTL", "1m")

	v.SetDefault("LESSON_FEED_CORE_COURSES_URL", "")
	v.SetDefault("LESSON_FEED_ELECTIVES_URL", "")
	v.SetDefault("LESSON_FEED_TIMEOUT", "60s")

	v.SetDefault("COLLISIONS_DEFAULT_ROOM_CAPACITY", 30)
	v.SetDefault("COLLISIONS_OUTLOOK_MIN_OVERLAP", "1m")
	v.SetDefault("COLLISIONS_OUTLOOK_WINDOW_DAYS", 30)
	v.SetDefault("COLLISIONS_OUTLOOK_MAX_WINDOW_DAYS", 61)
	v.SetDefault("COLLISIONS_ONLINE_ROOM_NAMES", "ONLINE,ОНЛАЙН")
	v.SetDefault("COLLISIONS_EXEMPT_LESSON_NAMES", "Elective course on Physical Education")
	v.SetDefault("COLLISIONS_TIMEZONE", "Europe/Moscow")

	v.SetDefault("ENABLE_REPORTS", false)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("ALLOWED_ORIGIN_REGEXP", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
