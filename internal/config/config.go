package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"codecoach/internal/complexity"
)

// CurrentVersion is the config schema version
const CurrentVersion = 1

// DirName is the per-project configuration directory
const DirName = ".coach"

// Config represents the complete coach configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Analysis    AnalysisConfig    `json:"analysis" mapstructure:"analysis"`
	Correctness CorrectnessConfig `json:"correctness" mapstructure:"correctness"`
	Storage     StorageConfig     `json:"storage" mapstructure:"storage"`
	Server      ServerConfig      `json:"server" mapstructure:"server"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// AnalysisConfig contains engine limits and heuristics
type AnalysisConfig struct {
	MaxSourceBytes   int     `json:"maxSourceBytes" mapstructure:"maxSourceBytes"`
	TimeBudgetMs     int     `json:"timeBudgetMs" mapstructure:"timeBudgetMs"`
	TieBreak         string  `json:"tieBreak" mapstructure:"tieBreak"`
	PatternThreshold float64 `json:"patternThreshold" mapstructure:"patternThreshold"`
	MasteryThreshold float64 `json:"masteryThreshold" mapstructure:"masteryThreshold"`
	MaxConcepts      int     `json:"maxConcepts" mapstructure:"maxConcepts"`
	MaxProblems      int     `json:"maxProblems" mapstructure:"maxProblems"`
	BatchConcurrency int     `json:"batchConcurrency" mapstructure:"batchConcurrency"`
}

// CorrectnessConfig contains the optional correctness checker settings
type CorrectnessConfig struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	Model         string `json:"model" mapstructure:"model"`
	BaseURL       string `json:"baseUrl,omitempty" mapstructure:"baseUrl"`
	TimeoutMs     int    `json:"timeoutMs" mapstructure:"timeoutMs"`
	RatePerMinute int    `json:"ratePerMinute" mapstructure:"ratePerMinute"`
	APIKey        string `json:"-" mapstructure:"apiKey"` // env only
}

// StorageConfig contains profile store settings
type StorageConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr           string `json:"addr" mapstructure:"addr"`
	ReadTimeoutMs  int    `json:"readTimeoutMs" mapstructure:"readTimeoutMs"`
	WriteTimeoutMs int    `json:"writeTimeoutMs" mapstructure:"writeTimeoutMs"`
	MaxBodyBytes   int64  `json:"maxBodyBytes" mapstructure:"maxBodyBytes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups,omitempty" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Analysis: AnalysisConfig{
			MaxSourceBytes:   10000,
			TimeBudgetMs:     30000,
			TieBreak:         string(complexity.TieHighest),
			PatternThreshold: 0.5,
			MasteryThreshold: 0.6,
			MaxConcepts:      5,
			MaxProblems:      6,
			BatchConcurrency: 4,
		},
		Correctness: CorrectnessConfig{
			Enabled:       false,
			Model:         "gpt-4o-mini",
			TimeoutMs:     20000,
			RatePerMinute: 20,
		},
		Storage: StorageConfig{
			Path: filepath.Join(DirName, "coach.db"),
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			ReadTimeoutMs:  10000,
			WriteTimeoutMs: 40000,
			MaxBodyBytes:   1 << 20,
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// setDefaults registers every key so environment overrides apply even
// without a config file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)

	v.SetDefault("analysis.maxSourceBytes", d.Analysis.MaxSourceBytes)
	v.SetDefault("analysis.timeBudgetMs", d.Analysis.TimeBudgetMs)
	v.SetDefault("analysis.tieBreak", d.Analysis.TieBreak)
	v.SetDefault("analysis.patternThreshold", d.Analysis.PatternThreshold)
	v.SetDefault("analysis.masteryThreshold", d.Analysis.MasteryThreshold)
	v.SetDefault("analysis.maxConcepts", d.Analysis.MaxConcepts)
	v.SetDefault("analysis.maxProblems", d.Analysis.MaxProblems)
	v.SetDefault("analysis.batchConcurrency", d.Analysis.BatchConcurrency)

	v.SetDefault("correctness.enabled", d.Correctness.Enabled)
	v.SetDefault("correctness.model", d.Correctness.Model)
	v.SetDefault("correctness.baseUrl", d.Correctness.BaseURL)
	v.SetDefault("correctness.timeoutMs", d.Correctness.TimeoutMs)
	v.SetDefault("correctness.ratePerMinute", d.Correctness.RatePerMinute)

	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.readTimeoutMs", d.Server.ReadTimeoutMs)
	v.SetDefault("server.writeTimeoutMs", d.Server.WriteTimeoutMs)
	v.SetDefault("server.maxBodyBytes", d.Server.MaxBodyBytes)

	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads configuration from <root>/.coach/config.{json,yaml,toml}.
// A missing file yields defaults; COACH_* environment variables override
// both (e.g. COACH_ANALYSIS_MAXSOURCEBYTES). The OpenAI key is read from
// OPENAI_API_KEY.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(root, DirName))

	v.SetEnvPrefix("COACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("correctness.apiKey", "COACH_CORRECTNESS_APIKEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.coach/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	a := c.Analysis
	if a.MaxSourceBytes <= 0 {
		return &ConfigError{Field: "analysis.maxSourceBytes", Message: "must be positive"}
	}
	if a.TimeBudgetMs <= 0 {
		return &ConfigError{Field: "analysis.timeBudgetMs", Message: "must be positive"}
	}
	if _, err := complexity.ParseTieBreak(a.TieBreak); err != nil {
		return &ConfigError{Field: "analysis.tieBreak", Message: err.Error()}
	}
	if a.PatternThreshold <= 0 || a.PatternThreshold > 1 {
		return &ConfigError{Field: "analysis.patternThreshold", Message: "must be in (0, 1]"}
	}
	if a.MasteryThreshold <= 0 || a.MasteryThreshold > 1 {
		return &ConfigError{Field: "analysis.masteryThreshold", Message: "must be in (0, 1]"}
	}
	if a.BatchConcurrency < 1 {
		return &ConfigError{Field: "analysis.batchConcurrency", Message: "must be at least 1"}
	}
	if c.Correctness.Enabled && c.Correctness.TimeoutMs <= 0 {
		return &ConfigError{Field: "correctness.timeoutMs", Message: "must be positive"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn or error"}
	}
	return nil
}

// TimeBudget returns the analysis time budget.
func (c *Config) TimeBudget() time.Duration {
	return time.Duration(c.Analysis.TimeBudgetMs) * time.Millisecond
}

// CorrectnessTimeout returns the per-call correctness timeout.
func (c *Config) CorrectnessTimeout() time.Duration {
	return time.Duration(c.Correctness.TimeoutMs) * time.Millisecond
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
