package config

import (
	"errors"  // Validation errors
	"fmt"     // Error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // List parsing
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported risk providers
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// Config holds the application configuration
type Config struct {
	AppPort        string   // Application port
	IsProd         bool     // Is production environment
	TrustedProxies []string // Proxies gin trusts for client IP
	LogLevel       string   // logrus level name
	LogFormat      string   // text or json

	DBDriver   string // mysql, postgres or sqlite
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBPath     string // SQLite database file

	JWTSecret       string        // JWT secret key
	AccessTokenTTL  time.Duration // Lifetime of access tokens
	RefreshTokenTTL time.Duration // Lifetime of refresh tokens

	RedisAddr string        // Redis server address, empty disables caching
	RedisPass string        // Redis password
	RedisDB   int           // Redis database number
	CacheTTL  time.Duration // TTL of cached list responses

	RiskProvider          string        // openai or azure
	RiskTimeout           time.Duration // Upper bound of one risk analysis call
	OpenAIAPIKey          string        // OpenAI API key
	OpenAIModel           string        // Model name
	OpenAIBaseURL         string        // Optional OpenAI-compatible endpoint
	AzureOpenAIEndpoint   string        // Azure OpenAI resource endpoint
	AzureOpenAIAPIKey     string        // Azure OpenAI key
	AzureOpenAIDeployment string        // Azure deployment name
	AzureOpenAIAPIVersion string        // Azure API version
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:        getEnv("APP_PORT", "8000"),
		IsProd:         os.Getenv("IS_PROD") == "true",
		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "127.0.0.1")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     os.Getenv("DB_PORT"),
		DBName:     os.Getenv("DB_NAME"),
		DBPath:     getEnv("DB_PATH", "travel_risk.db"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 60*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 24*time.Hour),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   getInt("REDIS_DB", 0),
		CacheTTL:  getDuration("CACHE_TTL", 60*time.Second),

		RiskProvider:          strings.ToLower(getEnv("RISK_PROVIDER", ProviderOpenAI)),
		RiskTimeout:           getDuration("RISK_TIMEOUT", 60*time.Second),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:         os.Getenv("OPENAI_BASE_URL"),
		AzureOpenAIEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIAPIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureOpenAIDeployment: os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-06-01"),
	}
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.RiskProvider {
	case ProviderOpenAI, ProviderAzure:
	default:
		return fmt.Errorf("unsupported RISK_PROVIDER %q", c.RiskProvider)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, port, c.DBUser, c.DBPassword, c.DBName)
	case DriverSQLite:
		return c.DBPath
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		// parseTime is needed for DATE/DATETIME columns
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	}
}

// String masks secrets
func (c *Config) String() string {
	return fmt.Sprintf("Config{port: %s, db: %s, redis: %q, risk: %s, jwt: ***}",
		c.AppPort, c.DBDriver, c.RedisAddr, c.RiskProvider)
}

// getEnv retrieves an environment variable with a default fallback
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
