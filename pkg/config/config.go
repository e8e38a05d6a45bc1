// Package config provides configuration management for modlist.
// It handles loading, validating and saving the YAML settings file that
// holds the provider API key, the download and manifest directories and
// network and logging options.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/modlist/pkg/auth"
	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Provider configuration
	Nexus NexusConfig `yaml:"nexus"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// NexusConfig holds the Nexus Mods API settings.
type NexusConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"api_base_url,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// Directories
	DownloadDir string `yaml:"download_dir,omitempty"`
	ManifestDir string `yaml:"manifest_dir,omitempty"`

	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	ChunkSize   int           `yaml:"chunk_size"`

	// Output settings
	LogLevel    string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat   string `yaml:"log_format"` // text, json
	ColorOutput bool   `yaml:"color_output"`
}

// Default configuration values.
const (
	// DefaultHTTPTimeout bounds provider API calls and the wait for download response headers.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultChunkSize is the transfer buffer size in bytes.
	DefaultChunkSize = 32 * 1024

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	downloadDir, err := fsutil.GetDownloadDir()
	if err != nil {
		// Fallback to current directory if we can't determine the data dir
		downloadDir = "downloads"
	}
	manifestDir, err := fsutil.GetManifestDir()
	if err != nil {
		manifestDir = "manifests"
	}

	return &Config{
		Settings: Settings{
			DownloadDir: downloadDir,
			ManifestDir: manifestDir,
			HTTPTimeout: DefaultHTTPTimeout,
			ChunkSize:   DefaultChunkSize,
			LogLevel:    "info",
			LogFormat:   "text",
			ColorOutput: true,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := Config{Settings: Settings{ColorOutput: true}}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig saves configuration to a file. The file holds the API key and
// is written with owner-only permissions.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	data, err := c.ToYAML()
	if err != nil {
		return err
	}

	tempPath := absPath + ".tmp"
	if err := os.WriteFile(tempPath, data, fsutil.FileModeSecure); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	// Atomically replace the config file
	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	if err := os.Chmod(absPath, fsutil.FileModeSecure); err != nil {
		return errors.Wrap(errors.ErrConfigFileChmod, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return buf.Bytes(), nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateNexus(c.Nexus); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateNexus(n NexusConfig) error {
	if n.BaseURL == "" {
		return nil
	}
	if !strings.HasPrefix(n.BaseURL, "http://") && !strings.HasPrefix(n.BaseURL, "https://") {
		return fmt.Errorf("api_base_url must be an http(s) URL, got %q: %w", n.BaseURL, errors.ErrConfigValidation)
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative: %w", errors.ErrConfigValidation)
	}
	if s.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be at least 1, got %d: %w", s.ChunkSize, errors.ErrConfigValidation)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.LogFormat] {
		return fmt.Errorf("invalid log format %q, must be one of: text, json: %w", s.LogFormat, errors.ErrConfigValidation)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error: %w", s.LogLevel, errors.ErrConfigValidation)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// Credential returns the provider credential built from the configured API key.
func (c *Config) Credential() auth.APIKey {
	return auth.APIKey{Key: c.Nexus.APIKey}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.DownloadDir == "" {
		c.Settings.DownloadDir = defaults.Settings.DownloadDir
	}
	if c.Settings.ManifestDir == "" {
		c.Settings.ManifestDir = defaults.Settings.ManifestDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.ChunkSize == 0 {
		c.Settings.ChunkSize = defaults.Settings.ChunkSize
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
