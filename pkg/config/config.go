package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Email provider identifiers.
const (
	EmailProviderSMTP   = "smtp"
	EmailProviderResend = "resend"
)

// Rate limiter backends.
const (
	RateLimitBackendRedis  = "redis"
	RateLimitBackendMemory = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	CORS          CORSConfig
	Log           LogConfig
	Notifications NotificationsConfig
	RateLimit     RateLimitConfig
	Attachments   AttachmentsConfig
	Stats         StatsConfig
	Overdue       OverdueConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ApplicationName string
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	KeyPrefix    string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig describes how access tokens minted by the identity provider are verified.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// NotificationsConfig wires delivery providers and dispatch limits.
type NotificationsConfig struct {
	Workers         int
	QueueSize       int
	ChannelTimeout  time.Duration
	DispatchTimeout time.Duration
	PublicBaseURL   string

	EmailProvider string
	EmailFrom     string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	ResendAPIKey  string

	FirebaseCredentialsPath string

	TelegramBotToken string
	TelegramAPIURL   string
}

// RateLimitConfig bounds anonymous public endpoints.
type RateLimitConfig struct {
	Backend      string
	SubmitLimit  int
	SubmitWindow time.Duration
	StatusLimit  int
	StatusWindow time.Duration
}

// AttachmentsConfig controls appeal attachment storage & validation.
type AttachmentsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	MaxPerAppeal     int
	AllowedMIMEs     []string
}

// StatsConfig governs cache behaviour for statistics endpoints.
type StatsConfig struct {
	CacheTTL time.Duration
}

// OverdueConfig toggles the periodic overdue sweep.
type OverdueConfig struct {
	Enabled  bool
	Interval time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
		ApplicationName: v.GetString("DB_APPLICATION_NAME"),
	}

	cfg.Redis = RedisConfig{
		Host:         v.GetString("REDIS_HOST"),
		Port:         v.GetInt("REDIS_PORT"),
		Password:     v.GetString("REDIS_PASSWORD"),
		DB:           v.GetInt("REDIS_DB"),
		KeyPrefix:    v.GetString("REDIS_KEY_PREFIX"),
		DialTimeout:  parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 5*time.Second),
		ReadTimeout:  parseDuration(v.GetString("REDIS_READ_TIMEOUT"), 3*time.Second),
		WriteTimeout: parseDuration(v.GetString("REDIS_WRITE_TIMEOUT"), 3*time.Second),
	}

	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("AUTH_JWT_SECRET"),
		Issuer:    v.GetString("AUTH_JWT_ISSUER"),
		Audience:  splitAndTrim(v.GetString("AUTH_JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Notifications = NotificationsConfig{
		Workers:                 v.GetInt("NOTIFY_WORKERS"),
		QueueSize:               v.GetInt("NOTIFY_QUEUE_SIZE"),
		ChannelTimeout:          parseDuration(v.GetString("NOTIFY_CHANNEL_TIMEOUT"), 10*time.Second),
		DispatchTimeout:         parseDuration(v.GetString("NOTIFY_DISPATCH_TIMEOUT"), 30*time.Second),
		PublicBaseURL:           strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		EmailProvider:           strings.ToLower(v.GetString("EMAIL_PROVIDER")),
		EmailFrom:               v.GetString("EMAIL_FROM"),
		SMTPHost:                v.GetString("SMTP_HOST"),
		SMTPPort:                v.GetInt("SMTP_PORT"),
		SMTPUser:                v.GetString("SMTP_USER"),
		SMTPPassword:            v.GetString("SMTP_PASSWORD"),
		ResendAPIKey:            v.GetString("RESEND_API_KEY"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		TelegramBotToken:        v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramAPIURL:          strings.TrimRight(v.GetString("TELEGRAM_API_URL"), "/"),
	}

	cfg.RateLimit = RateLimitConfig{
		Backend:      strings.ToLower(v.GetString("RATE_LIMIT_BACKEND")),
		SubmitLimit:  v.GetInt("RATE_LIMIT_SUBMIT"),
		SubmitWindow: parseDuration(v.GetString("RATE_LIMIT_SUBMIT_WINDOW"), time.Hour),
		StatusLimit:  v.GetInt("RATE_LIMIT_STATUS"),
		StatusWindow: parseDuration(v.GetString("RATE_LIMIT_STATUS_WINDOW"), time.Minute),
	}

	maxAttachmentSize := v.GetInt64("ATTACHMENTS_MAX_FILE_SIZE")
	if maxAttachmentSize <= 0 {
		maxAttachmentSize = 10 * 1024 * 1024
	}
	cfg.Attachments = AttachmentsConfig{
		StorageDir:       v.GetString("ATTACHMENTS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("ATTACHMENTS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("ATTACHMENTS_SIGNED_URL_TTL"), 15*time.Minute),
		MaxFileSizeBytes: maxAttachmentSize,
		MaxPerAppeal:     v.GetInt("ATTACHMENTS_MAX_PER_APPEAL"),
		AllowedMIMEs:     splitAndTrim(v.GetString("ATTACHMENTS_ALLOWED_MIME_TYPES")),
	}

	cfg.Stats = StatsConfig{
		CacheTTL: parseDuration(v.GetString("STATS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Overdue = OverdueConfig{
		Enabled:  v.GetBool("ENABLE_OVERDUE_SWEEP"),
		Interval: parseDuration(v.GetString("OVERDUE_SWEEP_INTERVAL"), time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "council_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_APPLICATION_NAME", "council-portal-api")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "council")
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	v.SetDefault("AUTH_JWT_SECRET", "dev_secret")
	v.SetDefault("AUTH_JWT_ISSUER", "")
	v.SetDefault("AUTH_JWT_AUDIENCE", "authenticated")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 64)
	v.SetDefault("NOTIFY_CHANNEL_TIMEOUT", "10s")
	v.SetDefault("NOTIFY_DISPATCH_TIMEOUT", "30s")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("EMAIL_PROVIDER", EmailProviderSMTP)
	v.SetDefault("EMAIL_FROM", "council@localhost")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_API_URL", "https://api.telegram.org")

	v.SetDefault("RATE_LIMIT_BACKEND", RateLimitBackendRedis)
	v.SetDefault("RATE_LIMIT_SUBMIT", 5)
	v.SetDefault("RATE_LIMIT_SUBMIT_WINDOW", "1h")
	v.SetDefault("RATE_LIMIT_STATUS", 30)
	v.SetDefault("RATE_LIMIT_STATUS_WINDOW", "1m")

	v.SetDefault("ATTACHMENTS_STORAGE_DIR", "./attachments")
	v.SetDefault("ATTACHMENTS_SIGNED_URL_SECRET", "dev_attachments_secret")
	v.SetDefault("ATTACHMENTS_SIGNED_URL_TTL", "15m")
	v.SetDefault("ATTACHMENTS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("ATTACHMENTS_MAX_PER_APPEAL", 5)
	v.SetDefault("ATTACHMENTS_ALLOWED_MIME_TYPES", "application/pdf,image/jpeg,image/png,application/vnd.openxmlformats-officedocument.wordprocessingml.document")

	v.SetDefault("STATS_CACHE_TTL", "5m")
	v.SetDefault("ENABLE_OVERDUE_SWEEP", false)
	v.SetDefault("OVERDUE_SWEEP_INTERVAL", "1h")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
