// Package config reads process configuration from the environment (and an
// optional .env file). Consumers depend on the narrow getter interfaces below
// rather than on *Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int
	GetDatabaseMinConns() int
}

// JWTConfig is read by httpkit.AuthRequired.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// RedisConfig provides the Redis connection used by caches.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq rescore pipeline.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetRescoreInterval() time.Duration
	GetRescoreStaleAfter() time.Duration
	GetRescoreBatchSize() int
}

// CacheConfig provides cache TTLs.
type CacheConfig interface {
	GetTenantCacheTTL() time.Duration
}

// MinIOConfig is optional; an empty endpoint disables report archiving.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketLeadReports() string
	IsMinIOEnabled() bool
}

// SMTPConfig provides settings for outbound hot lead alerts.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromName() string
	GetSMTPFromAddress() string
	IsSMTPEnabled() bool
}

// Config is the flat set of values; the getters below satisfy the interfaces.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	DatabaseMaxConns       int
	DatabaseMinConns       int
	JWTAccessSecret        string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	RateLimitRPS           float64
	RateLimitBurst         int
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
	RescoreInterval        time.Duration
	RescoreStaleAfter      time.Duration
	RescoreBatchSize       int
	TenantCacheTTL         time.Duration
	MinIOEndpoint          string
	MinIOAccessKey         string
	MinIOSecretKey         string
	MinIOUseSSL            bool
	MinioBucketLeadReports string
	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	SMTPFromName           string
	SMTPFromAddress        string
}

func (c *Config) GetDatabaseURL() string   { return c.DatabaseURL }
func (c *Config) GetDatabaseMaxConns() int { return c.DatabaseMaxConns }
func (c *Config) GetDatabaseMinConns() int { return c.DatabaseMinConns }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

func (c *Config) GetAsynqQueueName() string           { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int            { return c.AsynqConcurrency }
func (c *Config) GetRescoreInterval() time.Duration   { return c.RescoreInterval }
func (c *Config) GetRescoreStaleAfter() time.Duration { return c.RescoreStaleAfter }
func (c *Config) GetRescoreBatchSize() int            { return c.RescoreBatchSize }

func (c *Config) GetTenantCacheTTL() time.Duration { return c.TenantCacheTTL }

func (c *Config) GetMinIOEndpoint() string          { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string         { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string         { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool              { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketLeadReports() string { return c.MinioBucketLeadReports }
func (c *Config) IsMinIOEnabled() bool              { return c.MinIOEndpoint != "" }

func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetSMTPFromName() string    { return c.SMTPFromName }
func (c *Config) GetSMTPFromAddress() string { return c.SMTPFromAddress }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFromAddress != ""
}

// Load applies .env (when present) without overriding real environment
// variables, then calls FromEnv.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reports every malformed value at once, then checks cross-field rules.
func FromEnv() (*Config, error) {
	var e env

	corsOrigins := e.csv("CORS_ORIGINS", "http://localhost:4200")
	cfg := &Config{
		Env:                    e.str("APP_ENV", "development"),
		HTTPAddr:               e.str("HTTP_ADDR", ":8080"),
		DatabaseURL:            e.str("DATABASE_URL", ""),
		DatabaseMaxConns:       e.int("DB_MAX_CONNS", 25),
		DatabaseMinConns:       e.int("DB_MIN_CONNS", 2),
		JWTAccessSecret:        e.str("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:           e.bool("CORS_ALLOW_ALL", false) || slices.Contains(corsOrigins, "*"),
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         e.bool("CORS_ALLOW_CREDENTIALS", true),
		RateLimitRPS:           e.float("RATE_LIMIT_RPS", 10),
		RateLimitBurst:         e.int("RATE_LIMIT_BURST", 20),
		RedisURL:               e.str("REDIS_URL", ""),
		RedisTLSInsecure:       e.bool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:         e.str("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       e.int("ASYNQ_CONCURRENCY", 10),
		RescoreInterval:        e.duration("RESCORE_INTERVAL", time.Hour),
		RescoreStaleAfter:      e.duration("RESCORE_STALE_AFTER", 24*time.Hour),
		RescoreBatchSize:       e.int("RESCORE_BATCH_SIZE", 200),
		TenantCacheTTL:         e.duration("TENANT_CACHE_TTL", 5*time.Minute),
		MinIOEndpoint:          e.str("MINIO_ENDPOINT", ""),
		MinIOAccessKey:         e.str("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:         e.str("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:            e.bool("MINIO_USE_SSL", false),
		MinioBucketLeadReports: e.str("MINIO_BUCKET_LEAD_REPORTS", "lead-reports"),
		SMTPHost:               e.str("SMTP_HOST", ""),
		SMTPPort:               e.int("SMTP_PORT", 587),
		SMTPUsername:           e.str("SMTP_USERNAME", ""),
		SMTPPassword:           e.str("SMTP_PASSWORD", ""),
		SMTPFromName:           e.str("SMTP_FROM_NAME", "Lead Scoring"),
		SMTPFromAddress:        e.str("SMTP_FROM_ADDRESS", ""),
	}
	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("DATABASE_URL is required")
	case c.DatabaseMinConns < 0 || c.DatabaseMaxConns < 1 || c.DatabaseMinConns > c.DatabaseMaxConns:
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d)", c.DatabaseMaxConns)
	case c.JWTAccessSecret == "":
		return errors.New("JWT_ACCESS_SECRET is required")
	case c.CORSAllowAll && c.CORSAllowCreds:
		return errors.New("CORS_ALLOW_CREDENTIALS cannot be combined with CORS_ALLOW_ALL or a * origin")
	case c.SMTPHost != "" && c.SMTPFromAddress == "":
		return errors.New("SMTP_FROM_ADDRESS is required when SMTP_HOST is set")
	}
	return nil
}

// env reads typed variables. Unset or blank typed values take the fallback;
// unparsable ones are collected in errs.
type env struct {
	errs []error
}

func (e *env) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func (e *env) raw(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (e *env) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (e *env) int(key string, fallback int) int {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return n
}

func (e *env) float(key string, fallback float64) float64 {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return f
}

func (e *env) bool(key string, fallback bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return b
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return d
}

func (e *env) csv(key, fallback string) []string {
	return splitCSV(e.str(key, fallback))
}

// splitCSV trims entries and drops empty ones.
func splitCSV(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
