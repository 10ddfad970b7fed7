// Package config loads rtac-cim settings from a YAML file, environment
// variables and command-line flags, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/scada-studio/rtac-cim/pkg/source"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RTACCIM_"

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Config holds rtac-cim settings.
type Config struct {
	RepoRoot      string `yaml:"repo_root" validate:"required"`
	Substation    string `yaml:"substation"`
	RTUName       string `yaml:"rtu_name"`
	Authority     string `yaml:"authority" validate:"omitempty,alphanum"`
	EquipmentFile string `yaml:"equipment_file"`

	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`

	EventLog string `yaml:"event_log"`
	// EventLogMaxBytes rotates the event log past this size. Zero disables rotation.
	EventLogMaxBytes int64  `yaml:"event_log_max_bytes" validate:"min=0"`
	MetricsFile      string `yaml:"metrics_file"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig controls collaborator retries.
type RetryConfig struct {
	Attempts int           `yaml:"attempts" validate:"min=1,max=20"`
	Initial  time.Duration `yaml:"initial" validate:"min=0"`
	Max      time.Duration `yaml:"max" validate:"min=0,gtefield=Initial"`
}

// Backoff returns the retry delays as a source.BackoffConfig.
func (r RetryConfig) Backoff() source.BackoffConfig {
	return source.BackoffConfig{Initial: r.Initial, Max: r.Max, Jitter: source.JitterFactor}
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		RepoRoot:  ".",
		Authority: "SA",
		LogLevel:  "info",
		LogFormat: "text",
		Retry: RetryConfig{
			Attempts: 3,
			Initial:  source.InitialBackoff,
			Max:      source.MaxBackoff,
		},
	}
}

// Parse applies YAML bytes over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Load reads path, or returns the defaults when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// ApplyEnv overrides settings from RTACCIM_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"REPO_ROOT":      &c.RepoRoot,
		"SUBSTATION":     &c.Substation,
		"RTU_NAME":       &c.RTUName,
		"AUTHORITY":      &c.Authority,
		"EQUIPMENT_FILE": &c.EquipmentFile,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
		"EVENT_LOG":      &c.EventLog,
		"METRICS_FILE":   &c.MetricsFile,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "EVENT_LOG_MAX_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sEVENT_LOG_MAX_BYTES: %w", EnvPrefix, err)
		}
		c.EventLogMaxBytes = n
	}
	if v, ok := lookup(EnvPrefix + "RETRY_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRETRY_ATTEMPTS: %w", EnvPrefix, err)
		}
		c.Retry.Attempts = n
	}
	durs := map[string]*time.Duration{
		"RETRY_INITIAL": &c.Retry.Initial,
		"RETRY_MAX":     &c.Retry.Max,
	}
	for key, dst := range durs {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns an slog.Logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
