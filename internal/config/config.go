package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"it-asset-management/internal/pkg/password"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode    string
	Port       string
	APIBaseURL string
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
	Notify     NotifyConfig
	Seed       SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string

	MaxOpenConns int
	MaxIdleConns int
}

// JWTConfig holds session token and password hashing configuration
type JWTConfig struct {
	Secret     string
	SessionTTL time.Duration
	BcryptCost int
}

// RedisConfig holds Redis configuration for reset tokens.
// An empty Host keeps reset tokens in process memory.
type RedisConfig struct {
	Host          string
	Port          string
	Password      string
	ResetTokenTTL time.Duration
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// NotifyConfig holds assignment notifier configuration
type NotifyConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
	SendTimeout time.Duration
}

// SeedConfig holds the default administrator account
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	port := getEnv("PORT", "5000")
	config := &Config{
		AppMode:    appMode,
		Port:       port,
		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:"+port), "/"),
		Database:   loadDatabaseConfig(appMode),
		JWT:        loadJWTConfig(appMode),
		Redis:      loadRedisConfig(),
		SMTP:       loadSMTPConfig(),
		Notify:     loadNotifyConfig(),
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "password123"),
		},
	}

	if config.IsProd() && config.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "it_asset_management"),

		MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 100),
		MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 10),
	}
}

const defaultJWTSecret = "your-secret-key-change-this-in-production"

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:     getEnv(prefix+"JWT_SECRET", getEnv("JWT_SECRET", defaultJWTSecret)),
		SessionTTL: getDuration("SESSION_TTL", 2*time.Hour),
		BcryptCost: getInt("BCRYPT_COST", password.DefaultCost),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:          getEnv("REDIS_HOST", ""),
		Port:          getEnv("REDIS_PORT", "6379"),
		Password:      getEnv("REDIS_PASSWORD", ""),
		ResetTokenTTL: getDuration("RESET_TOKEN_TTL", time.Hour),
	}
}

func loadSMTPConfig() SMTPConfig {
	user := getEnv("SMTP_USER", "")
	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getInt("SMTP_PORT", 587),
		User:     user,
		Password: getEnv("SMTP_PASS", ""),
		From:     getEnv("SMTP_FROM", getEnv("SENDGRID_FROM_EMAIL", user)),
	}
}

func loadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		Workers:     getInt("NOTIFY_WORKERS", 2),
		QueueSize:   getInt("NOTIFY_QUEUE_SIZE", 100),
		MaxAttempts: getInt("NOTIFY_MAX_ATTEMPTS", 5),
		Backoff:     getDuration("NOTIFY_BACKOFF", 30*time.Second),
		SendTimeout: getDuration("NOTIFY_SEND_TIMEOUT", 30*time.Second),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// RedisEnabled reports whether reset tokens go to Redis
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		return "*"
	}
	return origins
}
