package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"teamchat/domain/keys"
)

// Config holds all application configuration
type Config struct {
	Environment string

	// AWS configuration
	AWSRegion     string
	TableName     string
	GSI1IndexName string
	GSI2IndexName string
	GSI3IndexName string
	EventBusName  string

	// UserTopicName is the SNS topic new users are announced on.
	UserTopicName string

	// Dispatch
	DefaultPageSize int32
	HandlerTimeout  time.Duration

	// Logging
	LogLevel string

	// Observability
	ServiceName      string
	MetricsNamespace string
	EnableMetrics    bool
	EnableTracing    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	env := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Environment:   env,
		AWSRegion:     getEnv("AWS_REGION", "eu-west-1"),
		TableName:     getEnv("TABLE_NAME", "teamchat"),
		GSI1IndexName: getEnv("GSI1_INDEX_NAME", "gsi1"),
		GSI2IndexName: getEnv("GSI2_INDEX_NAME", "gsi2"),
		GSI3IndexName: getEnv("GSI3_INDEX_NAME", "gsi3"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "teamchat-events"),
		UserTopicName: getEnv("USER_TOPIC_NAME", "user-provisioned"),

		DefaultPageSize: int32(getEnvInt("DEFAULT_PAGE_SIZE", 25)),
		HandlerTimeout:  time.Duration(getEnvInt("HANDLER_TIMEOUT_MS", 30000)) * time.Millisecond,

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ServiceName:      getEnv("SERVICE_NAME", "teamchat"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", fmt.Sprintf("TeamChat/%s", env)),
		EnableMetrics:    getEnvBool("ENABLE_METRICS", false),
		EnableTracing:    getEnvBool("ENABLE_TRACING", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("TABLE_NAME is required")
	}
	if c.GSI1IndexName == "" || c.GSI2IndexName == "" || c.GSI3IndexName == "" {
		return fmt.Errorf("GSI1_INDEX_NAME, GSI2_INDEX_NAME and GSI3_INDEX_NAME must not be empty")
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize)
	}
	if c.HandlerTimeout <= 0 {
		return fmt.Errorf("HANDLER_TIMEOUT_MS must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}

	if c.IsProduction() {
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required in production")
		}
		if c.UserTopicName == "" {
			return fmt.Errorf("USER_TOPIC_NAME is required in production")
		}
	}

	return nil
}

// IndexNames maps each secondary index to its configured name.
func (c *Config) IndexNames() map[keys.Index]string {
	return map[keys.Index]string{
		keys.GSI1: c.GSI1IndexName,
		keys.GSI2: c.GSI2IndexName,
		keys.GSI3: c.GSI3IndexName,
	}
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
