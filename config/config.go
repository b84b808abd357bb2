package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"wink/utils"
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type PasswordConfig struct {
	MinLength       int      `json:"min_length"`
	RequiredClasses []string `json:"required_classes"`
	RequireAll      bool     `json:"require_all"`
	AllowNumeric    bool     `json:"allow_numeric"`
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`

	DBDriver       string `json:"db_driver"`
	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBPath         string `json:"db_path"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`
	DBLogLevel     string `json:"db_log_level"`

	JWTSecret       string        `json:"-"`
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`

	Password PasswordConfig `json:"password"`

	Redis         RedisConfig `json:"redis"`
	RateLimitAuth int         `json:"rate_limit_auth"`

	SentryDSN string `json:"-"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogFile   string `json:"log_file"`

	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

// LoadConfig reads the process environment into a Config and checks the
// values the server cannot start without.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8000"),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "wink"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBPath:         getEnv("DB_PATH", "wink.db"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		DBLogLevel:     getEnv("DB_LOG_LEVEL", "warn"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvAsDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvAsDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		Password: PasswordConfig{
			MinLength:       getEnvAsInt("PASSWORD_MIN_LENGTH", 8),
			RequiredClasses: getEnvAsList("PASSWORD_REQUIRED_CLASSES", []string{"digit", "upper", "lower", "special"}),
			RequireAll:      getEnvAsBool("PASSWORD_REQUIRE_ALL", false),
			AllowNumeric:    getEnvAsBool("PASSWORD_ALLOW_NUMERIC", false),
		},

		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimitAuth: getEnvAsInt("RATE_LIMIT_AUTH", 20),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),
		LogFile:   getEnv("LOG_FILE", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy converts the configured password rules into a utils.PasswordPolicy.
func (p PasswordConfig) Policy() utils.PasswordPolicy {
	return utils.PasswordPolicy{
		MinLength:       p.MinLength,
		RequiredClasses: p.RequiredClasses,
		RequireAll:      p.RequireAll,
		AllowNumeric:    p.AllowNumeric,
	}
}

// Validate checks required configuration values.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required for %s", c.DBDriver)
		}
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.Password.MinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be positive")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}
	return nil
}

// IsProduction reports whether the server runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LogSummary writes the non-secret parts of the configuration.
func (c *Config) LogSummary(logger *logrus.Entry) {
	logger.WithFields(logrus.Fields{
		"environment": c.Environment,
		"server_port": c.ServerPort,
		"db_driver":   c.DBDriver,
		"database":    c.databaseLabel(),
		"redis":       c.Redis.Enabled,
		"sentry":      c.SentryDSN != "",
	}).Info("Loaded configuration")
}

func (c *Config) databaseLabel() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return fmt.Sprintf("%s@%s:%s/%s", c.DBUser, c.DBHost, c.DBPort, c.DBName)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
