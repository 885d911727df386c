package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWT JWTConfig

	// Redis (revocation cache)
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Translation provider
	DeepLAuthKey string
	DeepLAPIURL  string

	// MinIO (dish AR models)
	MinIOServerURL    string
	MinIORootUser     string
	MinIORootPassword string
	MinIOUseSSL       bool
	MinIOBucketName   string
	MaxUploadSize     int64

	// Rate Limiting
	RateLimitMaxRequests          int
	RateLimitTimeWindowSeconds    int
	RateLimitBlockDurationMinutes int

	// Login Rate Limiting
	LoginRateLimitMaxAttempts   int
	LoginRateLimitWindowSeconds int
	LoginRateLimitBlockMinutes  int

	// Register Rate Limiting
	RegisterRateLimitMaxAttempts int
	RegisterRateLimitWindowHours int
	RegisterRateLimitBlockHours  int

	// Service URLs
	APIGatewayURL     string
	AuthServiceURL    string
	DishesServiceURL  string
	CORSAllowedOrigin string

	// Super Admin
	SuperAdminUsername string
	SuperAdminEmail    string
	SuperAdminPassword string

	// Logging
	LogLevel  string
	LogFormat string
	GinMode   string
}

// JWTConfig carries the signing secret and token timing parameters.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
	IssueSkew  time.Duration
}

// LoadConfig reads .env (if present) and the process environment into a new Config.
func LoadConfig() *Config {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Info().Str("path", path).Msg("environment loaded")
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Warn().Msg(".env file not found, using system environment variables")
	}

	return &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "restaurant"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "change-this-secret-key"),
			AccessTTL:  time.Duration(getEnvAsInt("JWT_ACCESS_TTL_MINUTES", 60)) * time.Minute,
			RefreshTTL: time.Duration(getEnvAsInt("JWT_REFRESH_TTL_DAYS", 7)) * 24 * time.Hour,
			Leeway:     time.Duration(getEnvAsInt("JWT_LEEWAY_SECONDS", 10)) * time.Second,
			IssueSkew:  time.Duration(getEnvAsInt("JWT_ISSUE_SKEW_SECONDS", 10)) * time.Second,
		},

		// Redis
		RedisEnabled:  getEnvAsBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Translation
		DeepLAuthKey: getEnv("DEEPL_AUTH_KEY", ""),
		DeepLAPIURL:  getEnv("DEEPL_API_URL", "https://api-free.deepl.com"),

		// MinIO
		MinIOServerURL:    getEnv("MINIO_SERVER_URL", "http://localhost:9000"),
		MinIORootUser:     getEnv("MINIO_ROOT_USER", "minioadmin"),
		MinIORootPassword: getEnv("MINIO_ROOT_PASSWORD", "minioadmin"),
		MinIOUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		MinIOBucketName:   getEnv("MINIO_BUCKET_NAME", "restaurant-ar-models"),
		MaxUploadSize:     int64(getEnvAsInt("MAX_UPLOAD_SIZE_MB", 50)) << 20,

		// Rate Limiting
		RateLimitMaxRequests:          getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitTimeWindowSeconds:    getEnvAsInt("RATE_LIMIT_TIME_WINDOW_SECONDS", 60),
		RateLimitBlockDurationMinutes: getEnvAsInt("RATE_LIMIT_BLOCK_DURATION_MINUTES", 15),

		// Login Rate Limiting
		LoginRateLimitMaxAttempts:   getEnvAsInt("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", 5),
		LoginRateLimitWindowSeconds: getEnvAsInt("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 300),
		LoginRateLimitBlockMinutes:  getEnvAsInt("LOGIN_RATE_LIMIT_BLOCK_MINUTES", 30),

		// Register Rate Limiting
		RegisterRateLimitMaxAttempts: getEnvAsInt("REGISTER_RATE_LIMIT_MAX_ATTEMPTS", 3),
		RegisterRateLimitWindowHours: getEnvAsInt("REGISTER_RATE_LIMIT_WINDOW_HOURS", 24),
		RegisterRateLimitBlockHours:  getEnvAsInt("REGISTER_RATE_LIMIT_BLOCK_HOURS", 48),

		// Service URLs
		APIGatewayURL:     getEnv("API_GATEWAY_URL", "http://localhost:8000"),
		AuthServiceURL:    getEnv("AUTH_SERVICE_URL", "http://localhost:8001"),
		DishesServiceURL:  getEnv("DISHES_SERVICE_URL", "http://localhost:8002"),
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),

		// Super Admin
		SuperAdminUsername: getEnv("SUPER_ADMIN_USERNAME", "admin"),
		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "admin@restaurant.local"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		GinMode:   getEnv("GIN_MODE", "debug"),
	}
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// PortOf returns the port of a service URL such as http://localhost:8001, or fallback.
func PortOf(serviceURL, fallback string) string {
	u, err := url.Parse(serviceURL)
	if err != nil || u.Port() == "" {
		return fallback
	}
	return u.Port()
}

// RedisAddr returns host:port of the redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Int("default", defaultValue).
			Msg("could not parse integer setting, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
