package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env      Environment `mapstructure:"-"`
	LogLevel string      `mapstructure:"log_level"`
	LogMode  string      `mapstructure:"log_mode"`

	Server     ServerConfig     `mapstructure:"server"`
	DB         DBConfig         `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	CORS       CORSConfig       `mapstructure:"cors"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Image      ImageConfig      `mapstructure:"image"`
	Usage      UsageConfig      `mapstructure:"usage"`
	Generation GenerationConfig `mapstructure:"generation"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DBConfig selects between PostgreSQL and a local SQLite file.
type DBConfig struct {
	Driver        string `mapstructure:"driver"`
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Name          string `mapstructure:"name"`
	SSLMode       string `mapstructure:"ssl_mode"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	URL      string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMConfig configures the text model used for validation and recipe generation.
// Provider is "gemini" or "openai" (any OpenAI-compatible chat completions API).
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ImageConfig configures the optional image provider. With no API key the
// photo-search fallback is used for every recipe.
type ImageConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	APIKey          string        `mapstructure:"api_key"`
	APIURL          string        `mapstructure:"api_url"`
	Model           string        `mapstructure:"model"`
	Size            string        `mapstructure:"size"`
	FallbackBaseURL string        `mapstructure:"fallback_base_url"`
	S3Bucket        string        `mapstructure:"s3_bucket"`
	AWSRegion       string        `mapstructure:"aws_region"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// UsageConfig configures the per-identity daily generation cap.
type UsageConfig struct {
	Store      string `mapstructure:"store"`
	GuestLimit int    `mapstructure:"guest_limit"`
	UserLimit  int    `mapstructure:"user_limit"`
	Timezone   string `mapstructure:"timezone"`
}

type GenerationConfig struct {
	RequireAuth       bool `mapstructure:"require_auth"`
	ApplyDefaults     bool `mapstructure:"apply_defaults"`
	HeuristicFallback bool `mapstructure:"heuristic_fallback"`
}

// LoadConfig reads configuration from .env, the process environment and
// Docker secrets, in that order of increasing precedence for sensitive values.
func LoadConfig() (*Config, error) {
	// .env is optional; containers get their environment directly
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Env = GetEnvironment()
	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_mode", "console")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "recipefy")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.sqlite_path", "recipefy.db")
	v.SetDefault("db.migrations_dir", "migrations")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.url", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("image.enabled", true)
	v.SetDefault("image.api_key", "")
	v.SetDefault("image.api_url", "https://api.openai.com/v1/images/generations")
	v.SetDefault("image.model", "dall-e-3")
	v.SetDefault("image.size", "1024x1024")
	v.SetDefault("image.fallback_base_url", "https://source.unsplash.com/800x600/")
	v.SetDefault("image.s3_bucket", "")
	v.SetDefault("image.aws_region", "us-east-1")
	v.SetDefault("image.timeout", "60s")

	v.SetDefault("usage.store", "memory")
	v.SetDefault("usage.guest_limit", 1)
	v.SetDefault("usage.user_limit", 10)
	v.SetDefault("usage.timezone", "UTC")

	v.SetDefault("generation.require_auth", false)
	v.SetDefault("generation.apply_defaults", true)
	v.SetDefault("generation.heuristic_fallback", true)
}

// bindEnv adds the provider-specific variable names people already export.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("llm.api_key", "LLM_API_KEY", "GEMINI_API_KEY", "DEEPSEEK_API_KEY")
	_ = v.BindEnv("llm.base_url", "LLM_BASE_URL", "DEEPSEEK_API_URL")
	_ = v.BindEnv("image.api_key", "IMAGE_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("image.api_url", "IMAGE_API_URL", "OPENAI_IMAGES_API_URL")
	_ = v.BindEnv("image.s3_bucket", "IMAGE_S3_BUCKET", "S3_BUCKET_NAME")
	_ = v.BindEnv("image.aws_region", "IMAGE_AWS_REGION", "AWS_REGION")
	_ = v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
}

// applySecrets fills sensitive values that were not provided through the
// environment from Docker secrets.
func applySecrets(cfg *Config) {
	secrets := map[string]*string{
		"db_password":    &cfg.DB.Password,
		"jwt_secret":     &cfg.JWT.Secret,
		"redis_password": &cfg.Redis.Password,
		"redis_url":      &cfg.Redis.URL,
		"llm_api_key":    &cfg.LLM.APIKey,
		"image_api_key":  &cfg.Image.APIKey,
	}
	for name, dst := range secrets {
		if *dst != "" {
			continue
		}
		if value := readSecret(name); value != "" {
			*dst = value
		}
	}
}

// DSN returns the lib/pq connection string for the configured database.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns host:port for the HTTP listener.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// MaskSecret hides all but the first and last four characters of a key.
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
