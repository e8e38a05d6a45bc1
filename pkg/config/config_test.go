package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 32*1024, cfg.Settings.ChunkSize)
	assert.True(t, cfg.Settings.ColorOutput)
	assert.NotEmpty(t, cfg.Settings.DownloadDir)
	assert.NotEmpty(t, cfg.Settings.ManifestDir)
	assert.Empty(t, cfg.Nexus.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `nexus:
  api_key: abc123
settings:
  download_dir: /srv/mods
  http_timeout: 1m
  log_level: debug
  color_output: false`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "abc123", cfg.Nexus.APIKey)
	assert.Equal(t, "/srv/mods", cfg.Settings.DownloadDir)
	assert.Equal(t, time.Minute, cfg.Settings.HTTPTimeout)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.False(t, cfg.Settings.ColorOutput)

	// Defaults fill the rest
	assert.Equal(t, DefaultChunkSize, cfg.Settings.ChunkSize)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
	assert.NotEmpty(t, cfg.Settings.ManifestDir)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		errMsg  string
	}{
		{name: "invalid yaml", input: "settings: [", wantErr: errors.ErrConfigParse},
		{name: "invalid log level", input: "settings:\n  log_level: loud\n", wantErr: errors.ErrConfigValidation, errMsg: "invalid log level"},
		{name: "invalid log format", input: "settings:\n  log_format: xml\n", wantErr: errors.ErrConfigValidation, errMsg: "invalid log format"},
		{name: "negative timeout", input: "settings:\n  http_timeout: -1s\n", wantErr: errors.ErrConfigValidation, errMsg: "http_timeout"},
		{name: "negative chunk size", input: "settings:\n  chunk_size: -5\n", wantErr: errors.ErrConfigValidation, errMsg: "chunk_size"},
		{name: "bad base url", input: "nexus:\n  api_base_url: ftp://x\n", wantErr: errors.ErrConfigValidation, errMsg: "api_base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nexus.APIKey = "secret"
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.HTTPTimeout = 90 * time.Second

	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http_timeout: 1m30s")
	assert.Contains(t, string(data), "nexus:\n  api_key: secret\n", "nested keys use two-space indentation")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configPath)
		require.NoError(t, err)
		assert.Equal(t, fsutil.FileModeSecure, info.Mode().Perm())
	}

	_, err = os.Stat(configPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	assert.ErrorIs(t, cfg.SaveConfig(""), errors.ErrEmptyConfigPath)
}

func TestSetValueGetValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{key: "api_key", value: "  key  ", want: "key"},
		{key: "api_base_url", value: "http://localhost:8080/v1", want: "http://localhost:8080/v1"},
		{key: "download_dir", value: "/tmp/dl", want: "/tmp/dl"},
		{key: "manifest_dir", value: "/tmp/lists", want: "/tmp/lists"},
		{key: "http_timeout", value: "45s", want: "45s"},
		{key: "http_timeout", value: "soon", wantErr: true},
		{key: "chunk_size", value: "65536", want: "65536"},
		{key: "chunk_size", value: "big", wantErr: true},
		{key: "log_level", value: "warn", want: "warn"},
		{key: "log_format", value: "json", want: "json"},
		{key: "color_output", value: "false", want: "false"},
		{key: "color_output", value: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.SetValue(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			got, err := cfg.GetValue(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownKey(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.SetValue("cache_dir", "x"), errors.ErrUnknownConfigKey)

	_, err := cfg.GetValue("cache_dir")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
}

func TestToMap(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.ToMap()

	for _, key := range []string{"api_key", "api_base_url", "download_dir", "manifest_dir", "http_timeout", "chunk_size", "log_level", "log_format", "color_output"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "", m["api_key"])
	assert.Equal(t, "30s", m["http_timeout"])
	assert.Equal(t, "32768", m["chunk_size"])
	assert.Equal(t, "true", m["color_output"])

	cfg.Nexus.APIKey = "secret"
	assert.Equal(t, maskedValue, cfg.ToMap()["api_key"])
}

func TestCredential(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nexus.APIKey = "k"
	assert.Equal(t, "k", cfg.Credential().Key)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, fsutil.AppName, filepath.Base(filepath.Dir(path)))
}
