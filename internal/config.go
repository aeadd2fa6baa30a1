package internal

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds user-tunable settings loaded from an optional YAML file
type Config struct {
	DatabasePath  string        `yaml:"database_path"`
	StorageKey    string        `yaml:"storage_key"`
	LogLevel      string        `yaml:"log_level"`
	HistoryWindow int           `yaml:"history_window"`
	TurnTimeout   time.Duration `yaml:"turn_timeout"`
	// SupersedeInFlight lets a new message cancel the turn still thinking
	SupersedeInFlight bool             `yaml:"supersede_in_flight"`
	Latency           LatencyConfig    `yaml:"latency"`
	Confidence        ConfidenceConfig `yaml:"confidence"`
}

// LatencyConfig controls the simulated processing delay
type LatencyConfig struct {
	Short              time.Duration `yaml:"short"`
	Long               time.Duration `yaml:"long"`
	Jitter             time.Duration `yaml:"jitter"`
	Regenerate         time.Duration `yaml:"regenerate"`
	LongInputThreshold int           `yaml:"long_input_threshold"`
}

// ConfidenceConfig sets the confidence stamped on assistant replies
type ConfidenceConfig struct {
	First      float64 `yaml:"first"`
	Regenerate float64 `yaml:"regenerate"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	policy := DefaultTurnPolicy()
	return &Config{
		DatabasePath:  defaultDatabasePath(),
		StorageKey:    DefaultStorageKey,
		LogLevel:      "info",
		HistoryWindow: policy.HistoryWindow,
		Latency: LatencyConfig{
			Short:              policy.ShortLatency,
			Long:               policy.LongLatency,
			Jitter:             policy.Jitter,
			Regenerate:         policy.RegenerateLatency,
			LongInputThreshold: policy.LongInputThreshold,
		},
		Confidence: ConfidenceConfig{
			First:      policy.FirstConfidence,
			Regenerate: policy.RegenerateConfidence,
		},
	}
}

// LoadConfig reads path over the defaults; an empty path or missing file yields the defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			LogDebug("Config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{Source: "config", Key: path, Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot honor
func (c *Config) Validate() error {
	if c.StorageKey == "" {
		return fmt.Errorf("storage_key must not be empty")
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("history_window must not be negative")
	}
	for name, v := range map[string]float64{"confidence.first": c.Confidence.First, "confidence.regenerate": c.Confidence.Regenerate} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
		}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// TurnPolicy converts the configuration into a controller policy
func (c *Config) TurnPolicy() TurnPolicy {
	return TurnPolicy{
		ShortLatency:         c.Latency.Short,
		LongLatency:          c.Latency.Long,
		LongInputThreshold:   c.Latency.LongInputThreshold,
		Jitter:               c.Latency.Jitter,
		RegenerateLatency:    c.Latency.Regenerate,
		HistoryWindow:        c.HistoryWindow,
		FirstConfidence:      c.Confidence.First,
		RegenerateConfidence: c.Confidence.Regenerate,
		TurnTimeout:          c.TurnTimeout,
		SupersedeInFlight:    c.SupersedeInFlight,
	}
}

func defaultDatabasePath() string {
	paths, err := DetectDataPaths()
	if err != nil {
		return "chatsession.db"
	}
	return paths.DatabasePath()
}

// DefaultConfigPath returns the config file location for the current user, or "" if unknown
func DefaultConfigPath() string {
	paths, err := DetectDataPaths()
	if err != nil {
		return ""
	}
	return paths.ConfigPath()
}
