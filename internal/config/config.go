// Package config loads service configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"maintenance-cloud/internal/dataaccess"
)

// EnvConfigPath names the YAML config file when no path is passed.
const EnvConfigPath = "MAINTENANCE_CONFIG"

// DefaultModelFile is the model artifact name under the models directory.
const DefaultModelFile = "rf_model.json"

// Config is the service configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	// DataRoot holds data/staging, data/complaints.csv and models/.
	DataRoot       string `yaml:"data_root"`
	StagingDir     string `yaml:"staging_dir"`
	ModelPath      string `yaml:"model_path"`
	ComplaintsPath string `yaml:"complaints_path"`
	// AuditPath is the JSON-lines audit trail; "off" disables it.
	AuditPath string `yaml:"audit_path"`

	RiskThreshold       float64 `yaml:"risk_threshold"`
	ComplaintRatePerMin int     `yaml:"complaint_rate_per_min"`
	WatchFiles          bool    `yaml:"watch_files"`

	Auth AuthConfig `yaml:"auth"`
	Log  LogConfig  `yaml:"log"`
}

// AuthConfig configures bearer token checks. An empty secret disables them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:            ":8080",
		DataRoot:            ".",
		RiskThreshold:       0.7,
		ComplaintRatePerMin: 30,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads path (or $MAINTENANCE_CONFIG) over the defaults, applies
// environment overrides and derives unset file paths from the data root.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	cfg.derivePaths()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DataRoot = getenvDefault("DATA_ROOT", cfg.DataRoot)
	cfg.StagingDir = getenvDefault("STAGING_DIR", cfg.StagingDir)
	cfg.ModelPath = getenvDefault("MODEL_PATH", cfg.ModelPath)
	cfg.ComplaintsPath = getenvDefault("COMPLAINTS_PATH", cfg.ComplaintsPath)
	cfg.AuditPath = getenvDefault("AUDIT_LOG_PATH", cfg.AuditPath)
	cfg.RiskThreshold = getenvFloatDefault("RISK_THRESHOLD", cfg.RiskThreshold)
	cfg.ComplaintRatePerMin = getenvIntDefault("COMPLAINT_RATE_PER_MIN", cfg.ComplaintRatePerMin)
	cfg.WatchFiles = getenvBoolDefault("WATCH_FILES", cfg.WatchFiles)
	cfg.Auth.JWTSecret = getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", cfg.Auth.JWTSecret))
	cfg.Log.Level = getenvDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenvDefault("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Output = getenvDefault("LOG_OUTPUT", cfg.Log.Output)
}

func (c *Config) derivePaths() {
	if c.StagingDir == "" {
		c.StagingDir = filepath.Join(c.DataRoot, "data", "staging")
	}
	if c.ModelPath == "" {
		c.ModelPath = filepath.Join(c.DataRoot, "models", DefaultModelFile)
	}
	if c.ComplaintsPath == "" {
		c.ComplaintsPath = filepath.Join(c.DataRoot, "data", dataaccess.DefaultComplaints)
	}
	if c.AuditPath == "" {
		c.AuditPath = filepath.Join(c.DataRoot, "data", "audit.jsonl")
	}
}

// AuditEnabled reports whether operator actions are recorded.
func (c Config) AuditEnabled() bool {
	return c.AuditPath != "" && c.AuditPath != "off"
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("config: http_addr required")
	}
	if c.RiskThreshold < 0 || c.RiskThreshold > 1 {
		return fmt.Errorf("config: risk_threshold %v outside [0,1]", c.RiskThreshold)
	}
	if c.ComplaintRatePerMin < 0 {
		return errors.New("config: complaint_rate_per_min must not be negative")
	}
	if c.StagingDir == "" || c.ModelPath == "" || c.ComplaintsPath == "" {
		return errors.New("config: data paths required")
	}
	return nil
}

// Paths returns the data access file layout.
func (c Config) Paths() dataaccess.Paths {
	return dataaccess.StagingPaths(c.StagingDir, c.ComplaintsPath)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
