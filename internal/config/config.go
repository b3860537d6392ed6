package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App    AppConfig
	OCR    OCRConfig
	Render RenderConfig
	Cache  CacheConfig
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
}

// AppConfig holds batch pipeline settings.
type AppConfig struct {
	OutputDir       string `mapstructure:"output_dir"`
	OutputBackend   string `mapstructure:"output_backend"` // "local" or "s3"
	Concurrency     int    `mapstructure:"concurrency"`
	FileTimeoutSecs int    `mapstructure:"file_timeout_secs"`
}

// OCRConfig holds remote OCR service settings.
type OCRConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	Endpoint        string `mapstructure:"endpoint"`
	TimeoutSecs     int    `mapstructure:"timeout_secs"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
	BackoffBaseSecs int    `mapstructure:"backoff_base_secs"`
	BackoffMaxSecs  int    `mapstructure:"backoff_max_secs"`
}

// RenderConfig holds markdown rendering settings.
type RenderConfig struct {
	OrderedLists bool `mapstructure:"ordered_lists"`
}

// CacheConfig holds document cache settings.
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "postgres"
	Path    string `mapstructure:"path"`
}

// DBConfig holds PostgreSQL connection settings for the postgres cache
// backend.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the S3 output backend.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultCachePath returns the XDG-compliant default location of the
// file-backed document cache.
func DefaultCachePath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "intakedoc", "documents.json")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "intakedoc", "documents.json")
}

// Load reads configuration from environment variables with the INTAKE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// App defaults
	v.SetDefault("app.output_dir", "output")
	v.SetDefault("app.output_backend", "local")
	v.SetDefault("app.concurrency", 5)
	v.SetDefault("app.file_timeout_secs", 300)

	// OCR defaults
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.model", "mistral-ocr-latest")
	v.SetDefault("ocr.endpoint", "")
	v.SetDefault("ocr.timeout_secs", 120)
	v.SetDefault("ocr.max_attempts", 3)
	v.SetDefault("ocr.backoff_base_secs", 2)
	v.SetDefault("ocr.backoff_max_secs", 60)

	// Render defaults
	v.SetDefault("render.ordered_lists", false)

	// Cache defaults
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.path", DefaultCachePath())

	// DB defaults (postgres cache backend)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "intakedoc")
	v.SetDefault("db.password", "intakedoc_secret")
	v.SetDefault("db.name", "intakedoc_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults (s3 output backend)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "markdown/")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"app.output_dir":        "INTAKE_APP_OUTPUT_DIR",
		"app.output_backend":    "INTAKE_APP_OUTPUT_BACKEND",
		"app.concurrency":       "INTAKE_APP_CONCURRENCY",
		"app.file_timeout_secs": "INTAKE_APP_FILE_TIMEOUT_SECS",
		"ocr.api_key":           "INTAKE_OCR_API_KEY",
		"ocr.model":             "INTAKE_OCR_MODEL",
		"ocr.endpoint":          "INTAKE_OCR_ENDPOINT",
		"ocr.timeout_secs":      "INTAKE_OCR_TIMEOUT_SECS",
		"ocr.max_attempts":      "INTAKE_OCR_MAX_ATTEMPTS",
		"ocr.backoff_base_secs": "INTAKE_OCR_BACKOFF_BASE_SECS",
		"ocr.backoff_max_secs":  "INTAKE_OCR_BACKOFF_MAX_SECS",
		"render.ordered_lists":  "INTAKE_RENDER_ORDERED_LISTS",
		"cache.backend":         "INTAKE_CACHE_BACKEND",
		"cache.path":            "INTAKE_CACHE_PATH",
		"db.host":               "INTAKE_DB_HOST",
		"db.port":               "INTAKE_DB_PORT",
		"db.user":               "INTAKE_DB_USER",
		"db.password":           "INTAKE_DB_PASSWORD",
		"db.name":               "INTAKE_DB_NAME",
		"db.sslmode":            "INTAKE_DB_SSLMODE",
		"db.max_open":           "INTAKE_DB_MAX_OPEN",
		"db.max_idle":           "INTAKE_DB_MAX_IDLE",
		"s3.region":             "INTAKE_S3_REGION",
		"s3.bucket":             "INTAKE_S3_BUCKET",
		"s3.prefix":             "INTAKE_S3_PREFIX",
		"s3.endpoint":           "INTAKE_S3_ENDPOINT",
		"s3.access_key":         "INTAKE_S3_ACCESS_KEY",
		"s3.secret_key":         "INTAKE_S3_SECRET_KEY",
		"log.level":             "INTAKE_LOG_LEVEL",
		"log.format":            "INTAKE_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	// MISTRAL_API_KEY is honored when the INTAKE-prefixed variable is not
	// explicitly set.
	apiKey := v.GetString("ocr.api_key")
	if key := os.Getenv("MISTRAL_API_KEY"); key != "" && os.Getenv("INTAKE_OCR_API_KEY") == "" {
		apiKey = key
	}

	cfg := &Config{}
	cfg.App = AppConfig{
		OutputDir:       v.GetString("app.output_dir"),
		OutputBackend:   v.GetString("app.output_backend"),
		Concurrency:     v.GetInt("app.concurrency"),
		FileTimeoutSecs: v.GetInt("app.file_timeout_secs"),
	}
	cfg.OCR = OCRConfig{
		APIKey:          apiKey,
		Model:           v.GetString("ocr.model"),
		Endpoint:        v.GetString("ocr.endpoint"),
		TimeoutSecs:     v.GetInt("ocr.timeout_secs"),
		MaxAttempts:     v.GetInt("ocr.max_attempts"),
		BackoffBaseSecs: v.GetInt("ocr.backoff_base_secs"),
		BackoffMaxSecs:  v.GetInt("ocr.backoff_max_secs"),
	}
	cfg.Render = RenderConfig{
		OrderedLists: v.GetBool("render.ordered_lists"),
	}
	cfg.Cache = CacheConfig{
		Backend: v.GetString("cache.backend"),
		Path:    v.GetString("cache.path"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Prefix:    v.GetString("s3.prefix"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
