package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/modlist/pkg/errors"
)

// maskedValue replaces secrets in ToMap output.
const maskedValue = "********"

// SetValue sets a configuration value by key
// Supported keys:
//   - api_key: string - Nexus Mods personal API key
//   - api_base_url: string - Nexus Mods API root
//   - download_dir: string - Directory downloads are written to
//   - manifest_dir: string - Directory searched for named modlists
//   - http_timeout: duration - Timeout for API calls and response headers (e.g. 30s)
//   - chunk_size: int - Transfer buffer size in bytes
//   - log_level: string - Logging level (debug, info, warn, error)
//   - log_format: string - Log output format (text, json)
//   - color_output: bool - Whether to use colored output
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "api_key":
		c.Nexus.APIKey = strings.TrimSpace(value)
	case "api_base_url":
		c.Nexus.BaseURL = value
	case "download_dir":
		c.Settings.DownloadDir = value
	case "manifest_dir":
		c.Settings.ManifestDir = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "chunk_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		c.Settings.ChunkSize = n
	case "log_level":
		c.Settings.LogLevel = value
	case "log_format":
		c.Settings.LogFormat = value
	case "color_output":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		c.Settings.ColorOutput = boolVal
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return nil
}

// GetValue returns the value of a configuration key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "api_key":
		return c.Nexus.APIKey, nil
	case "api_base_url":
		return c.Nexus.BaseURL, nil
	case "download_dir":
		return c.Settings.DownloadDir, nil
	case "manifest_dir":
		return c.Settings.ManifestDir, nil
	case "http_timeout":
		return c.Settings.HTTPTimeout.String(), nil
	case "chunk_size":
		return strconv.Itoa(c.Settings.ChunkSize), nil
	case "log_level":
		return c.Settings.LogLevel, nil
	case "log_format":
		return c.Settings.LogFormat, nil
	case "color_output":
		return strconv.FormatBool(c.Settings.ColorOutput), nil
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
}

// ToMap flattens the configuration into key/value strings for display.
// The API key is masked.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	addFields(result, reflect.ValueOf(c.Nexus))
	addFields(result, reflect.ValueOf(c.Settings))

	if c.Nexus.APIKey != "" {
		result["api_key"] = maskedValue
	}
	return result
}

func addFields(result map[string]string, v reflect.Value) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "download_dir,omitempty")
		yamlKey := strings.Split(yamlTag, ",")[0]

		fieldValue := v.Field(i)
		var strValue string

		switch fieldValue.Kind() {
		case reflect.Bool:
			strValue = strconv.FormatBool(fieldValue.Bool())
		case reflect.Int64:
			if d, ok := fieldValue.Interface().(time.Duration); ok {
				strValue = d.String()
			} else {
				strValue = strconv.FormatInt(fieldValue.Int(), 10)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
			strValue = strconv.FormatInt(fieldValue.Int(), 10)
		case reflect.String:
			strValue = fieldValue.String()
		default:
			strValue = fmt.Sprintf("%v", fieldValue.Interface())
		}

		result[yamlKey] = strValue
	}
}
