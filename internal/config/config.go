package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"onboardkit/internal/storage"
)

const (
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultJWTTTL      = "24h"
	defaultMaxFileSize = 50 * 1024 * 1024 // 50 MB
	defaultMaxFiles    = 10
)

// Config is the whole environment surface of the service, read once at
// startup and injected explicitly; there are no module-level singletons.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	// primary provider (AWS S3)
	AWSRegion          string
	S3Bucket           string
	BackupS3Bucket     string
	S3Endpoint         string
	S3ForcePathStyle   bool
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// secondary provider (supabase)
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	// hybrid dispatch
	HybridStorage bool   // FEATURE_HYBRID_STORAGE: enables dual mode
	HybridBackup  bool   // FEATURE_HYBRID_BACKUP: enables the S3 backup bucket leg
	DualPrimary   string // HYBRID_PRIMARY_PROVIDER: aws-s3 (default) or supabase

	// upload limits applied by the HTTP layer
	MaxFileSize   int64
	MaxFiles      int
	AcceptedTypes []string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      strings.ToLower(getEnv("APP_ENV", "dev")),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),

		AWSRegion:          os.Getenv("AWS_REGION"),
		S3Bucket:           os.Getenv("AWS_S3_BUCKET"),
		BackupS3Bucket:     os.Getenv("BACKUP_S3_BUCKET"),
		S3Endpoint:         os.Getenv("AWS_S3_ENDPOINT"),
		S3ForcePathStyle:   parseBoolEnv("AWS_S3_FORCE_PATH_STYLE", "false"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),

		SupabaseURL:        strings.TrimSuffix(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:     getEnv("SUPABASE_STORAGE_BUCKET", "kit-files"),

		HybridStorage: parseBoolEnv("FEATURE_HYBRID_STORAGE", "false"),
		HybridBackup:  parseBoolEnv("FEATURE_HYBRID_BACKUP", "true"),
		DualPrimary:   getEnv("HYBRID_PRIMARY_PROVIDER", string(storage.ProviderPrimary)),
	}

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.MaxFileSize, err = parseInt64Env("UPLOAD_MAX_FILE_SIZE", defaultMaxFileSize)
	if err != nil {
		return nil, err
	}
	maxFiles, err := parseInt64Env("UPLOAD_MAX_FILES", defaultMaxFiles)
	if err != nil {
		return nil, err
	}
	cfg.MaxFiles = int(maxFiles)
	cfg.AcceptedTypes = splitList(os.Getenv("UPLOAD_ACCEPTED_TYPES"))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be > 0")
	}
	if cfg.MaxFiles <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be > 0")
	}
	switch cfg.DualPrimary {
	case string(storage.ProviderPrimary), string(storage.ProviderSecondary):
	default:
		return fmt.Errorf("HYBRID_PRIMARY_PROVIDER must be %q or %q",
			storage.ProviderPrimary, storage.ProviderSecondary)
	}
	if isProdLike(cfg.AppEnv) && cfg.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

// HasAWS reports whether the primary provider is fully configured.
func (c *Config) HasAWS() bool {
	return c.AWSRegion != "" && c.S3Bucket != "" &&
		c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

// HasSupabase reports whether the secondary provider is fully configured.
func (c *Config) HasSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// ResolveStorageMode turns the raw environment into an explicit, validated
// mode exactly once: dual when the feature flag is set (failing fast if
// either provider is unconfigured), otherwise primary when AWS credentials
// are present, otherwise secondary.
func (c *Config) ResolveStorageMode() (storage.Mode, storage.Provider, error) {
	dualPrimary := storage.Provider(c.DualPrimary)

	if c.HybridStorage {
		if !c.HasAWS() {
			return "", "", fmt.Errorf("FEATURE_HYBRID_STORAGE set but AWS S3 is not configured")
		}
		if !c.HasSupabase() {
			return "", "", fmt.Errorf("FEATURE_HYBRID_STORAGE set but supabase is not configured")
		}
		return storage.ModeDual, dualPrimary, nil
	}
	if c.HasAWS() {
		return storage.ModePrimary, dualPrimary, nil
	}
	if c.HasSupabase() {
		return storage.ModeSecondary, dualPrimary, nil
	}
	return "", "", fmt.Errorf("no storage provider configured: set AWS_* or SUPABASE_* variables")
}

// S3Config builds the primary-provider config. The backup bucket leg is
// dropped when FEATURE_HYBRID_BACKUP is off.
func (c *Config) S3Config() storage.S3Config {
	backup := c.BackupS3Bucket
	if !c.HybridBackup {
		backup = ""
	}
	return storage.S3Config{
		Region:          c.AWSRegion,
		Bucket:          c.S3Bucket,
		BackupBucket:    backup,
		Endpoint:        c.S3Endpoint,
		ForcePathStyle:  c.S3ForcePathStyle,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
	}
}

func (c *Config) SupabaseConfig() storage.SupabaseConfig {
	return storage.SupabaseConfig{
		URL:        c.SupabaseURL,
		ServiceKey: c.SupabaseServiceKey,
		Bucket:     c.SupabaseBucket,
	}
}

func (c *Config) FileConfig() storage.FileConfig {
	return storage.FileConfig{
		MaxFileSize:   c.MaxFileSize,
		MaxFiles:      c.MaxFiles,
		AcceptedTypes: c.AcceptedTypes,
	}
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

// splitList parses comma-separated values, dropping empties. An empty list
// means "accept any type" downstream.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInt64Env(name string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

// LogStorageMode prints the resolved mode once at startup.
func LogStorageMode(mode storage.Mode, dualPrimary storage.Provider) {
	if mode == storage.ModeDual {
		log.Printf("storage mode=%s dual_primary=%s", mode, dualPrimary)
		return
	}
	log.Printf("storage mode=%s", mode)
}
