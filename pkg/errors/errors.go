// Package errors holds the sentinel errors shared across modlist packages
// together with small wrapping helpers.
package errors

import (
	"fmt"
	"io/fs"
)

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrConfigFileChmod   = fmt.Errorf("failed to set config file permissions")

	// Manifest errors.
	ErrManifestParse    = fmt.Errorf("failed to parse manifest")
	ErrManifestFormat   = fmt.Errorf("unsupported manifest format")
	ErrManifestNotFound = fmt.Errorf("manifest not found")

	// Descriptor errors.
	ErrInvalidDescriptor = fmt.Errorf("invalid download descriptor")
	ErrMissingCredential = fmt.Errorf("an API key is required for provider downloads")

	// Resolve error kinds.
	ErrNetwork           = fmt.Errorf("network error")
	ErrAuthRejected      = fmt.Errorf("credential rejected by provider")
	ErrProvider          = fmt.Errorf("provider reported an error")
	ErrNotFound          = fmt.Errorf("not found")
	ErrMalformedResponse = fmt.Errorf("malformed provider response")

	// Transfer error kinds.
	ErrSizeUnknown        = fmt.Errorf("response did not declare a content length")
	ErrIO                 = fmt.Errorf("i/o error")
	ErrDestinationExists  = fmt.Errorf("destination already exists: %w", fs.ErrExist)
	ErrIncompleteTransfer = fmt.Errorf("body ended before the declared content length")

	// Verification errors.
	ErrHashMismatch = fmt.Errorf("downloaded file's hash doesn't match one on record")

	// Path errors.
	ErrInvalidPath = fmt.Errorf("invalid path")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
