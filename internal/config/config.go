package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL connection and pool settings.
// Zero durations leave the driver or server default in place.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// AppName is reported as application_name in pg_stat_activity.
	AppName          string
	ConnectTimeout   time.Duration
	StatementTimeout time.Duration

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// MinIOConfig holds object storage settings for MinIO.
// PublicBaseURL is the externally reachable prefix for public object URLs;
// when empty, URLs are built from Endpoint and Bucket.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	JWTSecret     string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// OTPConfig controls one-time code issuance and delivery.
// When GatewayURL is empty codes are written to the log instead of being delivered.
type OTPConfig struct {
	TTL            time.Duration
	ResendInterval time.Duration
	MaxAttempts    int
	VerifiedWindow time.Duration
	GatewayURL     string
	GatewayToken   string
	GatewayTimeout time.Duration
}

// LetterheadConfig points at the static base PDF the letterhead template is overlaid on.
type LetterheadConfig struct {
	BasePDFPath string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	AppEnv      string
	CORSOrigins string
	SentryDSN   string
	// RateLimit is requests per minute per IP on /api; 0 disables it.
	RateLimit  int
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Auth       AuthConfig
	OTP        OTPConfig
	Letterhead LetterheadConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"), // default only for non-sensitive value
		AppEnv:      getEnv("APP_ENV", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		RateLimit:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		Database: DatabaseConfig{
			Host:             getEnv("DB_HOST", ""),
			Port:             getEnv("DB_PORT", "5432"),
			User:             getEnv("DB_USER", ""),
			Password:         getEnv("DB_PASSWORD", ""),
			Name:             getEnv("DB_NAME", ""),
			SSLMode:          getEnv("DB_SSLMODE", "disable"),
			AppName:          getEnv("DB_APP_NAME", "planportal"),
			ConnectTimeout:   getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
			StatementTimeout: getEnvDuration("DB_STATEMENT_TIMEOUT", 30*time.Second),
			MaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime:  getEnvDuration("DB_CONN_MAX_IDLE_TIME", 2*time.Minute),
			PingTimeout:      getEnvDuration("DB_PING_TIMEOUT", 5*time.Second),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: getEnv("MINIO_PUBLIC_BASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			AccessExpiry:  getEnvDuration("JWT_ACCESS_EXPIRY", time.Hour),
			RefreshExpiry: getEnvDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),
		},
		OTP: OTPConfig{
			TTL:            getEnvDuration("OTP_TTL", 10*time.Minute),
			ResendInterval: getEnvDuration("OTP_RESEND_INTERVAL", 60*time.Second),
			MaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 5),
			VerifiedWindow: getEnvDuration("OTP_VERIFIED_WINDOW", 24*time.Hour),
			GatewayURL:     getEnv("OTP_GATEWAY_URL", ""),
			GatewayToken:   getEnv("OTP_GATEWAY_TOKEN", ""),
			GatewayTimeout: getEnvDuration("OTP_GATEWAY_TIMEOUT", 10*time.Second),
		},
		Letterhead: LetterheadConfig{
			BasePDFPath: getEnv("LETTERHEAD_BASE_PDF", "assets/letterhead_base.pdf"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
