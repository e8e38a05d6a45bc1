// Package model provides the value types shared by the download pipeline:
// download descriptors and their sources, resolved targets, progress
// snapshots and verification outcomes.
package model

import (
	"fmt"
	"net/url"

	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/fsutil"
)

// SourceKind identifies where a descriptor's bytes come from.
type SourceKind string

const (
	// SourceDirect is a fully resolved HTTP(S) URL.
	SourceDirect SourceKind = "direct"
	// SourceNexus is an archive resolved through the Nexus Mods API.
	SourceNexus SourceKind = "nexus"
)

// LatestVersion may be used as NexusSource.Version to select the highest
// version listed by the provider.
const LatestVersion = "latest"

// Source is implemented by DirectSource and NexusSource only.
type Source interface {
	Kind() SourceKind
	validate() error
}

// DirectSource downloads from a URL that is ready to fetch.
type DirectSource struct {
	URL string
}

// NexusSource resolves a download through the Nexus Mods API.
type NexusSource struct {
	Game     string // provider namespace, e.g. "skyrimspecialedition"
	ModID    string
	Version  string // release to match against the provider's file listing
	FileName string // optional; when set the listing entry's file_name must match exactly
}

// Kind returns SourceDirect.
func (DirectSource) Kind() SourceKind { return SourceDirect }

// Kind returns SourceNexus.
func (NexusSource) Kind() SourceKind { return SourceNexus }

func (s DirectSource) validate() error {
	if s.URL == "" {
		return fmt.Errorf("direct source has no url: %w", errors.ErrInvalidDescriptor)
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("direct source url %q: %v: %w", s.URL, err, errors.ErrInvalidDescriptor)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("direct source url %q must be http(s): %w", s.URL, errors.ErrInvalidDescriptor)
	}
	return nil
}

func (s NexusSource) validate() error {
	switch {
	case s.Game == "":
		return fmt.Errorf("nexus source has no game: %w", errors.ErrInvalidDescriptor)
	case s.ModID == "":
		return fmt.Errorf("nexus source has no mod id: %w", errors.ErrInvalidDescriptor)
	case s.Version == "":
		return fmt.Errorf("nexus source has no version: %w", errors.ErrInvalidDescriptor)
	}
	return nil
}

// Descriptor describes one artifact to obtain. It is read-only once built.
type Descriptor struct {
	FileName string // target file name on disk, also the display label
	Hash     string // hex-encoded SHA-256, compared exactly against the computed digest
	Source   Source
}

// Validate rejects descriptors that cannot be downloaded. It never touches the network.
func (d Descriptor) Validate() error {
	if d.FileName == "" {
		return fmt.Errorf("descriptor has no file name: %w", errors.ErrInvalidDescriptor)
	}
	if !fsutil.IsBaseName(d.FileName) {
		return fmt.Errorf("file name %q must not contain path elements: %w", d.FileName, errors.ErrInvalidDescriptor)
	}
	if d.Hash == "" {
		return fmt.Errorf("%s: descriptor has no hash: %w", d.FileName, errors.ErrInvalidDescriptor)
	}
	if !isSHA256Hex(d.Hash) {
		return fmt.Errorf("%s: hash %q is not %d lowercase hex characters: %w", d.FileName, d.Hash, HashLength, errors.ErrInvalidDescriptor)
	}
	if d.Source == nil {
		return fmt.Errorf("%s: descriptor has no source: %w", d.FileName, errors.ErrInvalidDescriptor)
	}
	if err := d.Source.validate(); err != nil {
		return errors.Wrap(err, d.FileName)
	}
	return nil
}

// Kind returns the kind of the descriptor's source, or "" when it has none.
func (d Descriptor) Kind() SourceKind {
	if d.Source == nil {
		return ""
	}
	return d.Source.Kind()
}

// NeedsCredential reports whether resolving d requires a provider API key.
func (d Descriptor) NeedsCredential() bool {
	return d.Kind() == SourceNexus
}

// HashLength is the length of a hex-encoded SHA-256 digest.
const HashLength = 64

// isSHA256Hex matches the digest form the hasher produces.
func isSHA256Hex(s string) bool {
	if len(s) != HashLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
