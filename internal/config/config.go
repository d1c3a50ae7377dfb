package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Pairing   PairingConfig
	Gateway   GatewayConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	History   HistoryConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogLevel string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PairingConfig controls the pairing code store
type PairingConfig struct {
	Store    string // memory or redis
	CodeTTL  time.Duration
	TokenTTL time.Duration
}

// GatewayConfig controls websocket connections
type GatewayConfig struct {
	AllowedOrigins []string
	SendBuffer     int
	PingInterval   time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

type AuthConfig struct {
	AdminKey string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type HistoryConfig struct {
	Limit int
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from the environment, after an optional .env file
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 3001),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			MaxBodyBytes: int64(getEnvAsInt("SERVER_MAX_BODY_BYTES", 1<<20)),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "call_panel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Pairing: PairingConfig{
			Store:    getEnv("PAIRING_STORE", "memory"),
			CodeTTL:  getEnvAsDuration("PAIRING_CODE_TTL", 5*time.Minute),
			TokenTTL: getEnvAsDuration("PAIRING_TOKEN_TTL", 24*time.Hour),
		},
		Gateway: GatewayConfig{
			AllowedOrigins: getEnvAsSlice("GATEWAY_ALLOWED_ORIGINS", []string{"*"}),
			SendBuffer:     getEnvAsInt("GATEWAY_SEND_BUFFER", 32),
			PingInterval:   getEnvAsDuration("GATEWAY_PING_INTERVAL", 25*time.Second),
			WriteWait:      getEnvAsDuration("GATEWAY_WRITE_WAIT", 10*time.Second),
			MaxMessageSize: int64(getEnvAsInt("GATEWAY_MAX_MESSAGE_SIZE", 4096)),
		},
		Auth: AuthConfig{
			AdminKey: getEnv("ADMIN_API_KEY", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{
				"Accept", "Authorization", "Content-Type",
				"X-Auth-Token", "X-Channel-Id", "X-Tenant-Token", "X-Admin-Key",
			}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:   getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		History: HistoryConfig{
			Limit: getEnvAsInt("HISTORY_LIMIT", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if len(c.Auth.AdminKey) < 10 {
		return fmt.Errorf("ADMIN_API_KEY must be set and at least 10 characters long")
	}
	switch c.Pairing.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown pairing store %q (want memory or redis)", c.Pairing.Store)
	}
	if c.Pairing.CodeTTL <= 0 {
		return fmt.Errorf("PAIRING_CODE_TTL must be positive")
	}
	if c.Pairing.TokenTTL <= 0 {
		return fmt.Errorf("PAIRING_TOKEN_TTL must be positive")
	}
	if c.Gateway.SendBuffer <= 0 {
		return fmt.Errorf("GATEWAY_SEND_BUFFER must be positive")
	}
	if c.Gateway.PingInterval <= 0 || c.Gateway.WriteWait <= 0 {
		return fmt.Errorf("gateway ping interval and write wait must be positive")
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
