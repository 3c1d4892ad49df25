package config

import (
	"fmt"     // Error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values

	"github.com/go-playground/validator/v10" // Struct validation
	"github.com/joho/godotenv"               // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort     string   `validate:"required,numeric"`                     // Application port
	DBDriver    string   `validate:"required,oneof=mysql postgres sqlite"` // Database driver
	DBUser      string   // Database user
	DBPassword  string   // Database password
	DBHost      string   // Database host
	DBPort      string   // Database port
	DBName      string   // Database name
	DBDSN       string   // Full DSN, overrides the individual DB fields
	JWTSecret   string   `validate:"required,min=16"` // JWT secret key
	JWTTTLHours int      `validate:"gte=1"`           // Token lifetime in hours
	RedisAddr   string   // Redis server address, empty disables Redis
	RedisPass   string   // Redis password
	RedisDB     int      // Redis database number
	IsProd      bool     // Is production environment
	LogLevel    string   `validate:"oneof=debug info warn warning error"` // Log level
	LogFormat   string   `validate:"oneof=text json"`                     // Log output format
	LogFile     string   // Optional rotating log file
	UploadDir   string   `validate:"required"` // Directory for uploaded images
	UploadMaxMB int      `validate:"gte=1,lte=50"`
	CORSOrigins []string // Allowed CORS origins
	CacheTTLSec int      `validate:"gte=0"` // TTL for cached list responses
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),        // Application port
		DBDriver:    getEnv("DB_DRIVER", DriverMySQL),  // Database driver
		DBUser:      os.Getenv("DB_USER"),              // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),          // Database password
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),    // Database host
		DBPort:      os.Getenv("DB_PORT"),              // Database port
		DBName:      os.Getenv("DB_NAME"),              // Database name
		DBDSN:       os.Getenv("DB_DSN"),               // Explicit DSN
		JWTSecret:   os.Getenv("JWT_SECRET"),           // JWT secret key
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),    // Token lifetime
		RedisAddr:   os.Getenv("REDIS_ADDR"),           // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),           // Redis password
		RedisDB:     redisDB,                           // Redis database number
		IsProd:      os.Getenv("IS_PROD") == "true",    // Is production environment
		LogLevel:    getEnv("LOG_LEVEL", "info"),       // Log level
		LogFormat:   getEnv("LOG_FORMAT", "text"),      // Log format
		LogFile:     os.Getenv("LOG_FILE"),             // Log file
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"), // Upload directory
		UploadMaxMB: getEnvInt("UPLOAD_MAX_MB", 5),     // Upload size limit
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		CacheTTLSec: getEnvInt("CACHE_TTL_SECONDS", 60), // Cache TTL
	}
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.DBDriver != DriverSQLite && c.DBDSN == "" && c.DBName == "" {
		return fmt.Errorf("invalid configuration: DB_NAME or DB_DSN is required for %s", c.DBDriver)
	}
	return nil
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	case DriverSQLite:
		if c.DBName == "" {
			return "learnshop.db"
		}
		return c.DBName
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
	}
}

// getEnv returns the variable or a fallback when it is unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the variable parsed as int or a fallback
func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
