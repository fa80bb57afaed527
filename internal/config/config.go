package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// CORS
	AppDomain string

	// Scratch storage for captures and generated artifacts.
	UploadDir string

	// Upload limits
	MaxUploadBytes int64

	// How long an undownloaded artifact is kept.
	OutputTTL time.Duration

	// Optional unidoc metered license key; the PDF engine runs
	// unlicensed without it.
	UnidocLicenseKey string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		AppDomain: envOr("APP_DOMAIN", "localhost"),

		UploadDir: envOr("UPLOAD_DIR", os.TempDir()),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 67108864), // 64MB

		OutputTTL: envDuration("OUTPUT_TTL", 1*time.Hour),

		UnidocLicenseKey: os.Getenv("UNIDOC_LICENSE_API_KEY"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 67108864
	}
	if cfg.OutputTTL <= 0 {
		cfg.OutputTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	return nil
}

// AllowedOrigins lists the CORS origins for the upload and download
// routes: the deployed domain plus local development.
func (c Config) AllowedOrigins() []string {
	return []string{"https://" + c.AppDomain, "http://localhost"}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
