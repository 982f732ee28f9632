package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port        string `yaml:"port"`
	CORSOrigins string `yaml:"cors_origins"`
	RateLimit   int    `yaml:"rate_limit"` // requests per second per client, 0 disables

	// Database configuration
	DBType            string `yaml:"db_type"` // mysql, postgres, sqlite, sqlite-pure, sqlserver
	DBHost            string `yaml:"db_host"`
	DBPort            string `yaml:"db_port"`
	DBDatabase        string `yaml:"db_database"`
	DBUser            string `yaml:"db_user"`
	DBPassword        string `yaml:"db_password"`
	DBConnectionLimit int    `yaml:"db_connection_limit"`
	DBLogLevel        string `yaml:"db_log_level"`

	// Token authentication
	SecretKey   string        `yaml:"secret_key"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	TokenIssuer string        `yaml:"token_issuer"`

	// Listing
	PageSize     int `yaml:"page_size"`
	RecipesLimit int `yaml:"recipes_limit"`

	// Image storage
	StorageType string `yaml:"storage_type"` // local, s3
	MediaRoot   string `yaml:"media_root"`
	MediaURL    string `yaml:"media_url"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3PublicURL string `yaml:"s3_public_url"`

	// Logging
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"` // json, text
	LogFile       string `yaml:"log_file"`
	LogMaxSize    int    `yaml:"log_max_size"`
	LogMaxAge     int    `yaml:"log_max_age"`
	LogMaxBackups int    `yaml:"log_max_backups"`
}

// Defaults returns the configuration used when nothing overrides a value.
func Defaults() *Config {
	return &Config{
		Port:              "8000",
		CORSOrigins:       "*",
		RateLimit:         0,
		DBType:            "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBConnectionLimit: 10,
		DBLogLevel:        "warn",
		TokenTTL:          7 * 24 * time.Hour,
		TokenIssuer:       "foodgram",
		PageSize:          6,
		RecipesLimit:      3,
		StorageType:       "local",
		MediaRoot:         "media",
		MediaURL:          "/media/",
		S3Region:          "us-east-1",
		LogLevel:          "info",
		LogFormat:         "json",
		LogMaxSize:        100,
		LogMaxAge:         30,
		LogMaxBackups:     5,
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE), an optional .env file (ENV_FILE, default ".env") and
// finally the process environment.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.overrideFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) overrideFromEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
	c.RateLimit = getEnvAsInt("RATE_LIMIT", c.RateLimit)

	c.DBType = getEnv("DB_TYPE", c.DBType)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBDatabase = getEnv("DB_DATABASE", c.DBDatabase)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBConnectionLimit = getEnvAsInt("DB_CONNECTION_LIMIT", c.DBConnectionLimit)
	c.DBLogLevel = getEnv("DB_LOG_LEVEL", c.DBLogLevel)

	c.SecretKey = getEnv("SECRET_KEY", c.SecretKey)
	c.TokenTTL = getEnvAsDuration("TOKEN_TTL", c.TokenTTL)
	c.TokenIssuer = getEnv("TOKEN_ISSUER", c.TokenIssuer)

	c.PageSize = getEnvAsInt("PAGE_SIZE", c.PageSize)
	c.RecipesLimit = getEnvAsInt("RECIPES_LIMIT", c.RecipesLimit)

	c.StorageType = getEnv("STORAGE_TYPE", c.StorageType)
	c.MediaRoot = getEnv("MEDIA_ROOT", c.MediaRoot)
	c.MediaURL = getEnv("MEDIA_URL", c.MediaURL)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.S3Region = getEnv("S3_REGION", c.S3Region)
	c.S3Endpoint = getEnv("S3_ENDPOINT", c.S3Endpoint)
	c.S3AccessKey = getEnv("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = getEnv("S3_SECRET_KEY", c.S3SecretKey)
	c.S3PublicURL = getEnv("S3_PUBLIC_URL", c.S3PublicURL)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.LogMaxSize = getEnvAsInt("LOG_MAX_SIZE", c.LogMaxSize)
	c.LogMaxAge = getEnvAsInt("LOG_MAX_AGE", c.LogMaxAge)
	c.LogMaxBackups = getEnvAsInt("LOG_MAX_BACKUPS", c.LogMaxBackups)
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	switch c.StorageType {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
