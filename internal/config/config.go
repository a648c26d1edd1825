package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/practice-engine/internal/models"
)

// Config holds all configuration for practice-engine
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Personas PersonasConfig
	Rooms    RoomsConfig
	Channels ChannelsConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Cleanup  CleanupConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	LogLevel       string
	AllowedOrigins []string
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds the API clients allowed to call /api/v1.
// Empty means authentication is disabled.
type AuthConfig struct {
	Clients []*models.ApiClient
}

// Enabled reports whether any API key is configured
func (c AuthConfig) Enabled() bool {
	return len(c.Clients) > 0
}

// PersonasConfig holds persona catalog configuration
type PersonasConfig struct {
	Dir string
}

// RoomsConfig holds room registry configuration
type RoomsConfig struct {
	NamePrefix      string
	MaxParticipants int
	TimeoutMinutes  int
}

// ChannelsConfig holds room channel configuration
type ChannelsConfig struct {
	SendTimeout time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled       bool
	Address       string
	Password      string
	DB            int
	ChannelPrefix string
}

// DatabaseConfig holds PostgreSQL configuration for the summary archive
type DatabaseConfig struct {
	DSN           string
	MigrationsDir string
	MaxConns      int
}

// Enabled reports whether the summary archive is configured
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != ""
}

// CleanupConfig holds cleanup worker configuration
type CleanupConfig struct {
	Interval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	clients, err := ParseAPIKeys(getEnv("API_KEYS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid API_KEYS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Auth: AuthConfig{
			Clients: clients,
		},
		Personas: PersonasConfig{
			Dir: getEnv("PERSONAS_DIR", ""),
		},
		Rooms: RoomsConfig{
			NamePrefix:      getEnv("ROOM_NAME_PREFIX", "wingman"),
			MaxParticipants: getEnvAsInt("ROOM_MAX_PARTICIPANTS", models.DefaultMaxParticipants),
			TimeoutMinutes:  getEnvAsInt("ROOM_TIMEOUT_MINUTES", models.DefaultTimeoutMinutes),
		},
		Channels: ChannelsConfig{
			SendTimeout: getEnvAsDuration("CHANNEL_SEND_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Enabled:       getEnvAsBool("REDIS_ENABLED", false),
			Address:       getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvAsInt("REDIS_DB", 0),
			ChannelPrefix: getEnv("REDIS_CHANNEL_PREFIX", "practice:room"),
		},
		Database: DatabaseConfig{
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", ""),
			MaxConns:      getEnvAsInt("DATABASE_MAX_CONNS", 10),
		},
		Cleanup: CleanupConfig{
			Interval: getEnvAsDuration("CLEANUP_INTERVAL", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if _, err := ParseLogLevel(c.Server.LogLevel); err != nil {
		return err
	}

	if strings.TrimSpace(c.Rooms.NamePrefix) == "" {
		return fmt.Errorf("room name prefix is required")
	}

	if c.Rooms.MaxParticipants < 1 {
		return fmt.Errorf("invalid room max participants: %d", c.Rooms.MaxParticipants)
	}

	if c.Rooms.TimeoutMinutes < 1 {
		return fmt.Errorf("invalid room timeout minutes: %d", c.Rooms.TimeoutMinutes)
	}

	if c.Channels.SendTimeout <= 0 {
		return fmt.Errorf("invalid channel send timeout: %s", c.Channels.SendTimeout)
	}

	if c.Cleanup.Interval <= 0 {
		return fmt.Errorf("invalid cleanup interval: %s", c.Cleanup.Interval)
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.Database.Enabled() && c.Database.MaxConns < 1 {
		return fmt.Errorf("invalid database max conns: %d", c.Database.MaxConns)
	}

	return nil
}

// ParseLogLevel maps LOG_LEVEL to a slog level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %q", level)
	}
}

// ParseAPIKeys parses a comma separated list of API clients.
//
// Each entry is "name:key" or "name:key:perm1|perm2". Entries without
// permissions get the global wildcard.
func ParseAPIKeys(raw string) ([]*models.ApiClient, error) {
	var clients []*models.ApiClient
	seen := make(map[string]bool)

	for _, entry := range splitList(raw) {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed entry %q, expected name:key[:permissions]", entry)
		}
		if seen[parts[1]] {
			return nil, fmt.Errorf("duplicate key for client %q", parts[0])
		}
		seen[parts[1]] = true

		perms := []string{"*"}
		if len(parts) == 3 && parts[2] != "" {
			perms = strings.Split(parts[2], "|")
		}

		clients = append(clients, &models.ApiClient{
			Name:        parts[0],
			ApiKey:      parts[1],
			IsActive:    true,
			Permissions: perms,
		})
	}

	return clients, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if list := splitList(value); len(list) > 0 {
			return list
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
