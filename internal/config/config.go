package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "CONSOLIDATOR"

// Config represents the complete application configuration.
//
// Defaults live in Default() rather than in `default` struct tags so that
// values coming from a YAML file are not overwritten by tag defaults when the
// environment is processed afterwards.
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Limits        LimitsConfig        `yaml:"limits" envconfig:"LIMITS"`
	Consolidation ConsolidationConfig `yaml:"consolidation" envconfig:"CONSOLIDATION"`
	Telemetry     TelemetryConfig     `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// LimitsConfig bounds the size of a single consolidation request.
type LimitsConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	MaxFiles       int   `yaml:"max_files" envconfig:"MAX_FILES"`
	MaxRangeDays   int   `yaml:"max_range_days" envconfig:"MAX_RANGE_DAYS"`
}

// ConsolidationConfig controls how uploaded CSV files are normalized and
// how the consolidated table is exported.
type ConsolidationConfig struct {
	PrimaryEncoding  string `yaml:"primary_encoding" envconfig:"PRIMARY_ENCODING"`
	FallbackEncoding string `yaml:"fallback_encoding" envconfig:"FALLBACK_ENCODING"`
	KeepDuplicate    string `yaml:"keep_duplicate" envconfig:"KEEP_DUPLICATE"`
	SkipInvalidFiles bool   `yaml:"skip_invalid_files" envconfig:"SKIP_INVALID_FILES"`
	ParseWorkers     int    `yaml:"parse_workers" envconfig:"PARSE_WORKERS"`
	PreviewRows      int    `yaml:"preview_rows" envconfig:"PREVIEW_ROWS"`
	DefaultStart     string `yaml:"default_start" envconfig:"DEFAULT_START"`
	DefaultEnd       string `yaml:"default_end" envconfig:"DEFAULT_END"`
	SheetName        string `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	OutputName       string `yaml:"output_name" envconfig:"OUTPUT_NAME"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load loads configuration from the first config file found in the usual
// locations and then from environment variables (env takes precedence).
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Address returns the listen address of the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		c.Logging.Format = "json"
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/consolidator.log"
	}

	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Limits.MaxFiles <= 0 {
		return fmt.Errorf("max files must be positive")
	}

	if c.Limits.MaxRangeDays <= 0 {
		return fmt.Errorf("max range days must be positive")
	}

	switch c.Consolidation.KeepDuplicate {
	case "first", "last":
	default:
		return fmt.Errorf("keep_duplicate must be first or last, got %q", c.Consolidation.KeepDuplicate)
	}

	if c.Consolidation.ParseWorkers <= 0 {
		c.Consolidation.ParseWorkers = 1
	}

	if c.Consolidation.PreviewRows <= 0 {
		return fmt.Errorf("preview rows must be positive")
	}

	if c.Consolidation.SheetName == "" {
		c.Consolidation.SheetName = "Sheet1"
	}

	if c.Consolidation.OutputName == "" {
		c.Consolidation.OutputName = "acciones_consolidadas"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Limits: LimitsConfig{
			MaxUploadBytes: 32 << 20, // 32MB
			MaxFiles:       200,
			MaxRangeDays:   36600,
		},
		Consolidation: ConsolidationConfig{
			PrimaryEncoding:  "utf-8",
			FallbackEncoding: "windows-1252",
			KeepDuplicate:    "first",
			ParseWorkers:     4,
			PreviewRows:      10,
			DefaultStart:     "2024-04-17",
			DefaultEnd:       "2025-04-17",
			SheetName:        "Sheet1",
			OutputName:       "acciones_consolidadas",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "stock-consolidator",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
