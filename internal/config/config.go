package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret       string   `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes int      `mapstructure:"TOKEN_TTL_MINUTES"`
	GeminiAPIKey    string   `mapstructure:"GEMINI_API_KEY"`
	GeminiModel     string   `mapstructure:"GEMINI_MODEL"`
	AITimeoutSecs   int      `mapstructure:"AI_TIMEOUT_SECONDS"`
	UploadDir       string   `mapstructure:"UPLOAD_DIR"`
	MaxUploadMB     int64    `mapstructure:"MAX_UPLOAD_MB"`
	CORSOrigins     []string `mapstructure:"-"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("TOKEN_TTL_MINUTES", 60)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("AI_TIMEOUT_SECONDS", 30)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("GEMINI_MODEL")
	v.BindEnv("AI_TIMEOUT_SECONDS")
	v.BindEnv("UPLOAD_DIR")
	v.BindEnv("MAX_UPLOAD_MB")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if origins := v.GetString("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET not set; using an insecure development secret.")
		log.Println("WARNING: Set JWT_SECRET before running outside development.")
		cfg.JWTSecret = "dev-insecure-secret"
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// TokenTTL returns the configured session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// AITimeout returns the bound on a single AI provider call. Provider calls
// block the caller's request, so this must stay finite.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSecs) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// a real JWT secret is required, and the Gemini key must be present so AI
// operations can reach the provider.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTSecret == "" || c.JWTSecret == "dev-insecure-secret" {
			return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
		}
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when ENV=%q", c.Env)
		}
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", c.TokenTTLMinutes)
	}
	if c.AITimeoutSecs <= 0 {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be positive, got %d", c.AITimeoutSecs)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}
