package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type (
	// Config is built once at startup and handed to constructors by value.
	// Nothing mutates it afterwards.
	Config struct {
		HTTP
		App
		Global
		Database
		Token
		Auth
		Storage
		Admin
		LoginHistory
		Tasks
		Logging
		Metrics
	}

	HTTP struct {
		Port int32
		Host string
	}
	App struct {
		Name        string
		Environment string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Token struct {
		Secret    string
		Algorithm string
		TTL       time.Duration
	}
	Auth struct {
		BcryptCost        int
		MinPasswordLength int
		SecureCookies     bool   // Set to false for local dev without HTTPS
		CSRFSecret        string // CSRF protection for /admin is disabled when empty

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Storage struct {
		AccessKey      string
		SecretKey      string
		Bucket         string
		Region         string
		Endpoint       string // S3-compatible endpoint (MinIO, R2, ...); empty means AWS
		KeyPrefix      string
		DefaultExpires time.Duration
		MaxExpires     time.Duration
	}
	Admin struct {
		Email            string
		Password         string
		BootstrapOnStart bool
	}
	LoginHistory struct {
		RetentionDays   int    // 0 disables cleanup
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Logging struct {
		Level  string
		Format string // "text" or "json"
	}
	Metrics struct {
		Enabled bool
	}
)

// Configured reports whether all credentials needed to mint upload tokens are present.
func (s Storage) Configured() bool {
	return s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("app_name", "Upload Auth Service")
	v.SetDefault("env", "development")
	v.SetDefault("database_path", DefaultDatabasePath)

	// Token defaults
	v.SetDefault("jwt_secret_key", "dev-secret-change-me")
	v.SetDefault("jwt_algorithm", "HS256")
	v.SetDefault("access_token_expire_minutes", DefaultAccessTokenMinutes)

	// Auth defaults
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_min_password_length", 1)
	v.SetDefault("auth_secure_cookies", false)
	v.SetDefault("auth_csrf_secret", "")
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Object storage defaults
	v.SetDefault("storage_access_key", "")
	v.SetDefault("storage_secret_key", "")
	v.SetDefault("storage_bucket", "")
	v.SetDefault("storage_region", "us-east-1")
	v.SetDefault("storage_endpoint", "")
	v.SetDefault("storage_key_prefix", "uploads")
	v.SetDefault("storage_default_expires", DefaultUploadExpiresSeconds)
	v.SetDefault("storage_max_expires", MaxUploadExpiresSeconds)

	// Admin bootstrap defaults
	v.SetDefault("admin_email", "admin@example.com")
	v.SetDefault("admin_password", "admin123")
	v.SetDefault("admin_bootstrap_on_start", false)

	v.SetDefault("login_history_retention_days", 90)
	v.SetDefault("login_history_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		App: App{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("ENV"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Token: Token{
			Secret:    v.GetString("JWT_SECRET_KEY"),
			Algorithm: v.GetString("JWT_ALGORITHM"),
			TTL:       time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		},
		Auth: Auth{
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
			MinPasswordLength: v.GetInt("AUTH_MIN_PASSWORD_LENGTH"),
			SecureCookies:     v.GetBool("AUTH_SECURE_COOKIES"),
			CSRFSecret:        v.GetString("AUTH_CSRF_SECRET"),
			MaxLoginAttempts:  v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:   v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:   v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Storage: Storage{
			AccessKey:      v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:      v.GetString("STORAGE_SECRET_KEY"),
			Bucket:         v.GetString("STORAGE_BUCKET"),
			Region:         v.GetString("STORAGE_REGION"),
			Endpoint:       v.GetString("STORAGE_ENDPOINT"),
			KeyPrefix:      v.GetString("STORAGE_KEY_PREFIX"),
			DefaultExpires: time.Duration(v.GetInt("STORAGE_DEFAULT_EXPIRES")) * time.Second,
			MaxExpires:     time.Duration(v.GetInt("STORAGE_MAX_EXPIRES")) * time.Second,
		},
		Admin: Admin{
			Email:            v.GetString("ADMIN_EMAIL"),
			Password:         v.GetString("ADMIN_PASSWORD"),
			BootstrapOnStart: v.GetBool("ADMIN_BOOTSTRAP_ON_START"),
		},
		LoginHistory: LoginHistory{
			RetentionDays:   v.GetInt("LOGIN_HISTORY_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("LOGIN_HISTORY_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}

// Validate reports the first setting that would make the service unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.Token.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY must not be empty"))
	}
	if !slices.Contains(SupportedAlgorithms, c.Token.Algorithm) {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported (want one of %v)", c.Token.Algorithm, SupportedAlgorithms))
	}
	if c.Token.TTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Storage.DefaultExpires <= 0 || c.Storage.DefaultExpires > c.Storage.MaxExpires {
		errs = append(errs, errors.New("STORAGE_DEFAULT_EXPIRES must be positive and not exceed STORAGE_MAX_EXPIRES"))
	}
	if c.LoginHistory.RetentionDays < 0 {
		errs = append(errs, errors.New("LOGIN_HISTORY_RETENTION_DAYS must not be negative"))
	}

	return errors.Join(errs...)
}
