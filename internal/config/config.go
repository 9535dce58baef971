package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	do "github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var Package = do.Package(
	do.Lazy[*Config](NewConfig),
)

const (
	defaultBaseURL       = "https://dummyjson.com"
	defaultUserID        = 1
	defaultPageLimit     = 10
	defaultListenAddress = ":8080"
	defaultLogLevel      = "info"
	defaultRetryMax      = 2
	defaultTimeout       = 10 * time.Second
)

// Config holds the application configuration.
type Config struct {
	BaseURL         string        `yaml:"base_url"`
	UserID          int           `yaml:"user_id"`
	PageLimit       int           `yaml:"page_limit"`
	ListenAddress   string        `yaml:"listen_address"`
	LogLevel        string        `yaml:"log_level"`
	RetryMax        int           `yaml:"retry_max"`
	Timeout         time.Duration `yaml:"timeout"`
	PostURLTemplate string        `yaml:"post_url_template"`
}

// NewConfig creates a new configuration from environment variables (for DI).
func NewConfig(_ do.Injector) (*Config, error) {
	return New()
}

// New creates a new configuration. Defaults are overridden by the YAML file
// named in PA_CONFIG, which is in turn overridden by PA_* environment variables.
func New() (*Config, error) {
	cfg := &Config{
		BaseURL:       defaultBaseURL,
		UserID:        defaultUserID,
		PageLimit:     defaultPageLimit,
		ListenAddress: defaultListenAddress,
		LogLevel:      defaultLogLevel,
		RetryMax:      defaultRetryMax,
		Timeout:       defaultTimeout,
	}

	if path := os.Getenv("PA_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("PA_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PA_LISTEN_ADDRESS"); v != "" {
		c.ListenAddress = v
	}
	if v := os.Getenv("PA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PA_POST_URL_TEMPLATE"); v != "" {
		c.PostURLTemplate = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"PA_USER_ID", &c.UserID},
		{"PA_PAGE_LIMIT", &c.PageLimit},
		{"PA_RETRY_MAX", &c.RetryMax},
	}
	for _, i := range ints {
		v := os.Getenv(i.name)
		if v == "" {
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", i.name, err)
		}
		*i.dst = n
	}

	if v := os.Getenv("PA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PA_TIMEOUT must be a duration: %w", err)
		}
		c.Timeout = d
	}

	return nil
}

func (c *Config) validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if c.UserID <= 0 {
		errs = append(errs, fmt.Errorf("user id must be positive, got %d", c.UserID))
	}
	if c.PageLimit <= 0 {
		errs = append(errs, fmt.Errorf("page limit must be positive, got %d", c.PageLimit))
	}
	if c.RetryMax < 0 {
		errs = append(errs, fmt.Errorf("retry max must not be negative, got %d", c.RetryMax))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}

	return errors.Join(errs...)
}
