// Package config provides configuration management for the librarian bot.
// It supports loading configuration from a YAML file and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LogFormat defines the supported log output formats.
type LogFormat string

const (
	// LogFormatConsole is human-readable output for interactive use.
	LogFormatConsole LogFormat = "console"
	// LogFormatJSON is structured output for log collectors.
	LogFormatJSON LogFormat = "json"
)

// Default configuration values.
const (
	DefaultPollInterval = 5 * time.Minute
	DefaultLogLevel     = "info"
	DefaultLogFormat    = LogFormatConsole
	DefaultConfigDir    = ".librarian"
	DefaultConfigFile   = "config.yaml"
)

// Config holds the bot configuration.
type Config struct {
	// User is the bot's reddit account name, the handle mentions must
	// target.
	User string `yaml:"user"`

	// UserAgent overrides the user-agent string sent on reddit requests.
	// If empty, "<user>/<version>" is used.
	UserAgent string `yaml:"user_agent,omitempty"`

	// PollInterval is the time between inbox polls.
	PollInterval time.Duration `yaml:"poll_interval"`

	// MessageLimit caps the messages fetched per poll. Zero means all.
	MessageLimit int `yaml:"message_limit,omitempty"`

	// Subreddits is the allow-list of subreddits to answer in. Empty means
	// all. Direct messages are always answered.
	Subreddits []string `yaml:"subreddits,omitempty"`

	// RedditBaseURL overrides the authenticated reddit API root.
	RedditBaseURL string `yaml:"reddit_base_url,omitempty"`

	// RedditTokenURL overrides the OAuth token endpoint.
	RedditTokenURL string `yaml:"reddit_token_url,omitempty"`

	// WikiEndpoint overrides the MediaWiki api.php URL.
	WikiEndpoint string `yaml:"wiki_endpoint,omitempty"`

	// MetricsAddress is the listen address for the Prometheus endpoint.
	// Empty disables the listener.
	MetricsAddress string `yaml:"metrics_address,omitempty"`

	// LogLevel sets the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogFormat selects console or json log output.
	LogFormat LogFormat `yaml:"log_format"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $LIBRARIAN_CONFIG_DIR if set, otherwise ~/.librarian
func ConfigDir() (string, error) {
	if dir := os.Getenv("LIBRARIAN_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the configuration. Sources are applied in order, later
// overriding earlier:
// 1. Default values
// 2. Config file (~/.librarian/config.yaml or $LIBRARIAN_CONFIG_DIR/config.yaml)
// 3. Environment variables (LIBRARIAN_USER, LIBRARIAN_POLL_INTERVAL, ...)
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// A temp struct so the duration can be unmarshaled from a string.
	type configFile struct {
		User           string    `yaml:"user"`
		UserAgent      string    `yaml:"user_agent"`
		PollInterval   string    `yaml:"poll_interval"`
		MessageLimit   int       `yaml:"message_limit"`
		Subreddits     []string  `yaml:"subreddits"`
		RedditBaseURL  string    `yaml:"reddit_base_url"`
		RedditTokenURL string    `yaml:"reddit_token_url"`
		WikiEndpoint   string    `yaml:"wiki_endpoint"`
		MetricsAddress string    `yaml:"metrics_address"`
		LogLevel       string    `yaml:"log_level"`
		LogFormat      LogFormat `yaml:"log_format"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.User != "" {
		cfg.User = fileCfg.User
	}
	if fileCfg.UserAgent != "" {
		cfg.UserAgent = fileCfg.UserAgent
	}
	if fileCfg.PollInterval != "" {
		interval, err := time.ParseDuration(fileCfg.PollInterval)
		if err != nil {
			return fmt.Errorf("parsing poll_interval: %w", err)
		}
		cfg.PollInterval = interval
	}
	if fileCfg.MessageLimit != 0 {
		cfg.MessageLimit = fileCfg.MessageLimit
	}
	if len(fileCfg.Subreddits) != 0 {
		cfg.Subreddits = fileCfg.Subreddits
	}
	if fileCfg.RedditBaseURL != "" {
		cfg.RedditBaseURL = fileCfg.RedditBaseURL
	}
	if fileCfg.RedditTokenURL != "" {
		cfg.RedditTokenURL = fileCfg.RedditTokenURL
	}
	if fileCfg.WikiEndpoint != "" {
		cfg.WikiEndpoint = fileCfg.WikiEndpoint
	}
	if fileCfg.MetricsAddress != "" {
		cfg.MetricsAddress = fileCfg.MetricsAddress
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogFormat != "" {
		cfg.LogFormat = fileCfg.LogFormat
	}

	return nil
}

// loadFromEnv overlays environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("LIBRARIAN_USER"); v != "" {
		cfg.User = v
	}

	if v := os.Getenv("LIBRARIAN_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}

	if v := os.Getenv("LIBRARIAN_POLL_INTERVAL"); v != "" {
		if interval, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = interval
		}
	}

	if v := os.Getenv("LIBRARIAN_MESSAGE_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.MessageLimit = limit
		}
	}

	if v := os.Getenv("LIBRARIAN_SUBREDDITS"); v != "" {
		cfg.Subreddits = splitList(v)
	}

	if v := os.Getenv("LIBRARIAN_REDDIT_BASE_URL"); v != "" {
		cfg.RedditBaseURL = v
	}

	if v := os.Getenv("LIBRARIAN_REDDIT_TOKEN_URL"); v != "" {
		cfg.RedditTokenURL = v
	}

	if v := os.Getenv("LIBRARIAN_WIKI_ENDPOINT"); v != "" {
		cfg.WikiEndpoint = v
	}

	if v := os.Getenv("LIBRARIAN_METRICS_ADDRESS"); v != "" {
		cfg.MetricsAddress = v
	}

	if v := os.Getenv("LIBRARIAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("LIBRARIAN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = LogFormat(v)
	}
}

// splitList splits a comma-separated env value, dropping empty entries.
func splitList(v string) []string {
	var list []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	if c.MessageLimit < 0 {
		return fmt.Errorf("message_limit must not be negative")
	}

	if !c.LogFormat.IsValid() {
		return fmt.Errorf("invalid log_format: %q (must be console or json)", c.LogFormat)
	}

	return nil
}

// Set assigns a value to the named configuration key, parsing it from its
// string form. Keys match the YAML field names.
func (c *Config) Set(key, value string) error {
	switch key {
	case "user":
		c.User = value
	case "user_agent":
		c.UserAgent = value
	case "poll_interval":
		interval, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid poll_interval value: %w", err)
		}
		c.PollInterval = interval
	case "message_limit":
		limit, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid message_limit value: %w", err)
		}
		c.MessageLimit = limit
	case "subreddits":
		c.Subreddits = splitList(value)
	case "reddit_base_url":
		c.RedditBaseURL = value
	case "reddit_token_url":
		c.RedditTokenURL = value
	case "wiki_endpoint":
		c.WikiEndpoint = value
	case "metrics_address":
		c.MetricsAddress = value
	case "log_level":
		c.LogLevel = value
	case "log_format":
		format := LogFormat(value)
		if !format.IsValid() {
			return fmt.Errorf("invalid log_format: %q (must be console or json)", value)
		}
		c.LogFormat = format
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// IsValid checks if the log format is valid.
func (f LogFormat) IsValid() bool {
	switch f {
	case LogFormatConsole, LogFormatJSON:
		return true
	default:
		return false
	}
}

// String returns the string representation of the log format.
func (f LogFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *Config) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// YAML-friendly shape with the duration as a string.
	type configFile struct {
		User           string    `yaml:"user"`
		UserAgent      string    `yaml:"user_agent,omitempty"`
		PollInterval   string    `yaml:"poll_interval"`
		MessageLimit   int       `yaml:"message_limit,omitempty"`
		Subreddits     []string  `yaml:"subreddits,omitempty"`
		RedditBaseURL  string    `yaml:"reddit_base_url,omitempty"`
		RedditTokenURL string    `yaml:"reddit_token_url,omitempty"`
		WikiEndpoint   string    `yaml:"wiki_endpoint,omitempty"`
		MetricsAddress string    `yaml:"metrics_address,omitempty"`
		LogLevel       string    `yaml:"log_level"`
		LogFormat      LogFormat `yaml:"log_format"`
	}

	fileCfg := configFile{
		User:           cfg.User,
		UserAgent:      cfg.UserAgent,
		PollInterval:   cfg.PollInterval.String(),
		MessageLimit:   cfg.MessageLimit,
		Subreddits:     cfg.Subreddits,
		RedditBaseURL:  cfg.RedditBaseURL,
		RedditTokenURL: cfg.RedditTokenURL,
		WikiEndpoint:   cfg.WikiEndpoint,
		MetricsAddress: cfg.MetricsAddress,
		LogLevel:       cfg.LogLevel,
		LogFormat:      cfg.LogFormat,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
