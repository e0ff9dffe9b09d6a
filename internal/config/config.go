package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Log       LogFileConfig
	Recaptcha RecaptchaConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// IndexPath is the static landing page served at GET /
	IndexPath string
}

// StorageConfig configures where accepted resumes are stored
type StorageConfig struct {
	Mode                  string
	UploadDir             string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadMB           int64
}

// LogFileConfig configures the tabular application log workbook
type LogFileConfig struct {
	// Path is the xlsx workbook that receives one row per accepted application
	Path string
	// SheetName is the worksheet the rows are written to
	SheetName string
}

// RecaptchaConfig configures the optional reCAPTCHA v3 verification.
// An empty Secret disables verification entirely.
type RecaptchaConfig struct {
	Secret string
	// VerifyURL is the siteverify endpoint; overridable for tests
	VerifyURL string
	// MinScore is the minimum trust score a token must reach
	MinScore float64
	// TimeoutSeconds bounds the verification call
	TimeoutSeconds int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout  int
	WriteTimeout int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistIPs      []string
	WhitelistPaths    []string
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// TimeoutDuration returns the verification call timeout as duration
func (r *RecaptchaConfig) TimeoutDuration() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload ceiling in bytes
func (s *StorageConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB * 1024 * 1024
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Flat env names kept for deployment compatibility
	if dir := v.GetString("UPLOAD_DIR"); dir != "" {
		cfg.Storage.UploadDir = dir
	}
	if path := v.GetString("EXCEL_PATH"); path != "" {
		cfg.Log.Path = path
	}
	if mb := v.GetInt64("MAX_UPLOAD_MB"); mb > 0 {
		cfg.Storage.MaxUploadMB = mb
	}
	if cfg.Recaptcha.Secret == "" {
		cfg.Recaptcha.Secret = v.GetString("RECAPTCHA_SECRET")
	}
	if cfg.Storage.CloudConnectionString == "" {
		cfg.Storage.CloudConnectionString = v.GetString("STORAGE_CONNECTION_STRING")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Kedorion Careers API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.indexPath", "./web/index.html")

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.uploadDir", "./storage/uploads")
	v.SetDefault("storage.cloudContainer", "resumes")
	v.SetDefault("storage.maxUploadMB", 15)

	// Application log defaults
	v.SetDefault("log.path", "./storage/applications.xlsx")
	v.SetDefault("log.sheetName", "Applications")

	// Recaptcha defaults (empty secret = verification disabled)
	v.SetDefault("recaptcha.secret", "")
	v.SetDefault("recaptcha.verifyURL", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("recaptcha.minScore", 0.4)
	v.SetDefault("recaptcha.timeoutSeconds", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Content-Type"})
	v.SetDefault("cors.allowCredentials", false)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 30)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health"})
}
