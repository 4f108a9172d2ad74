package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/poverty-forecast/internal/config"
	"github.com/iwvelando/poverty-forecast/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string               `yaml:"address"`
	SessionTTL    string               `yaml:"sessionTTL"`
	SweepInterval string               `yaml:"sweepInterval"`
	MaxBodySize   string               `yaml:"maxBodySize"`
	Logging       config.LoggingConfig `yaml:"logging"`

	sessionTTL    time.Duration
	sweepInterval time.Duration
	maxBodyBytes  int64
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	// the defaults are constants and always parse
	_ = cfg.normalize()
	return cfg
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SessionTTLDuration is how long an idle session survives.
func (c *Config) SessionTTLDuration() time.Duration {
	return c.sessionTTL
}

// SweepIntervalDuration is how often idle sessions are evicted.
func (c *Config) SweepIntervalDuration() time.Duration {
	return c.sweepInterval
}

// MaxBodyBytes returns the request body limit in bytes.
func (c *Config) MaxBodyBytes() int64 {
	return c.maxBodyBytes
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}

	ttl, err := parseDuration(c.SessionTTL, constants.DefaultSessionTTL)
	if err != nil {
		return fmt.Errorf("invalid sessionTTL: %w", err)
	}
	c.sessionTTL = ttl
	c.SessionTTL = ttl.String()

	interval, err := parseDuration(c.SweepInterval, constants.DefaultSweepInterval)
	if err != nil {
		return fmt.Errorf("invalid sweepInterval: %w", err)
	}
	c.sweepInterval = interval
	c.SweepInterval = interval.String()

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.maxBodyBytes = constants.DefaultMaxBodyBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodyBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodyBytes
	}
	c.maxBodyBytes = bytes
	return nil
}

func parseDuration(value, fallback string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = fallback
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", trimmed)
	}
	return d, nil
}

// ParseSize converts a human-friendly byte string (e.g., "4K", "1MB") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodyBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
