// Package manifest reads modlist manifests into download descriptors.
//
// A manifest is a YAML (.yaml, .yml) or TOML (.toml) document:
//
//	name: my-list
//	downloads:
//	  - file_name: a.7z
//	    hash: <sha256>
//	    direct: {url: "https://example.com/a.7z"}
//	  - file_name: b.7z
//	    hash: <sha256>
//	    nexus: {game: skyrimspecialedition, mod_id: "266", version: 4.3.0a}
//	nexus_downloads:
//	  - {file_name: c.7z, version: "1.0", mod_id: "12", mod_game: skyrim, hash: <sha256>}
//
// nexus_downloads is the flat list format of earlier releases.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/model"
	"gopkg.in/yaml.v3"
)

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Extensions lists the file extensions tried when a manifest is looked up by name.
var Extensions = []string{".yaml", ".yml", ".toml"}

// Manifest is a parsed modlist.
type Manifest struct {
	Name        string
	Path        string
	Descriptors []model.Descriptor
}

type document struct {
	Name           string        `yaml:"name" toml:"name"`
	Downloads      []entry       `yaml:"downloads" toml:"downloads"`
	NexusDownloads []legacyEntry `yaml:"nexus_downloads" toml:"nexus_downloads"`
}

type entry struct {
	FileName string       `yaml:"file_name" toml:"file_name"`
	Hash     string       `yaml:"hash" toml:"hash"`
	Direct   *directEntry `yaml:"direct" toml:"direct"`
	Nexus    *nexusEntry  `yaml:"nexus" toml:"nexus"`
}

type directEntry struct {
	URL string `yaml:"url" toml:"url"`
}

type nexusEntry struct {
	Game     string `yaml:"game" toml:"game"`
	ModID    string `yaml:"mod_id" toml:"mod_id"`
	Version  string `yaml:"version" toml:"version"`
	FileName string `yaml:"file_name" toml:"file_name"`
}

type legacyEntry struct {
	FileName string `yaml:"file_name" toml:"file_name"`
	Version  string `yaml:"version" toml:"version"`
	ModID    string `yaml:"mod_id" toml:"mod_id"`
	ModGame  string `yaml:"mod_game" toml:"mod_game"`
	Hash     string `yaml:"hash" toml:"hash"`
}

// FormatFor returns the format implied by a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, errors.ErrManifestFormat)
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, errors.ErrManifestNotFound)
		}
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}

	m, err := Parse(bytes.NewReader(data), format)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	m.Path = path
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Parse decodes a manifest in the given format. Every descriptor is
// validated; the first invalid entry fails the whole manifest.
func Parse(r io.Reader, format Format) (*Manifest, error) {
	var doc document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %w", errors.ErrManifestParse, err)
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrManifestParse, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %s", errors.ErrManifestParse, undecoded[0])
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, errors.ErrManifestFormat)
	}

	descs, err := doc.descriptors()
	if err != nil {
		return nil, err
	}
	return &Manifest{Name: doc.Name, Descriptors: descs}, nil
}

func (doc document) descriptors() ([]model.Descriptor, error) {
	descs := make([]model.Descriptor, 0, len(doc.Downloads)+len(doc.NexusDownloads))

	for i, e := range doc.Downloads {
		d, err := e.descriptor()
		if err != nil {
			return nil, fmt.Errorf("downloads[%d]: %w", i, err)
		}
		descs = append(descs, d)
	}
	for i, e := range doc.NexusDownloads {
		d := model.Descriptor{
			FileName: e.FileName,
			Hash:     e.Hash,
			Source:   model.NexusSource{Game: e.ModGame, ModID: e.ModID, Version: e.Version},
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("nexus_downloads[%d]: %w", i, err)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func (e entry) descriptor() (model.Descriptor, error) {
	d := model.Descriptor{FileName: e.FileName, Hash: e.Hash}
	switch {
	case e.Direct != nil && e.Nexus != nil:
		return d, fmt.Errorf("%s: entry has both a direct and a nexus source: %w", e.FileName, errors.ErrInvalidDescriptor)
	case e.Direct != nil:
		d.Source = model.DirectSource{URL: e.Direct.URL}
	case e.Nexus != nil:
		d.Source = model.NexusSource{Game: e.Nexus.Game, ModID: e.Nexus.ModID, Version: e.Nexus.Version, FileName: e.Nexus.FileName}
	default:
		return d, fmt.Errorf("%s: entry has neither a direct nor a nexus source: %w", e.FileName, errors.ErrInvalidDescriptor)
	}
	if err := d.Validate(); err != nil {
		return d, err
	}
	return d, nil
}

// Resolve finds a manifest by path or by name. A value naming an existing
// file is used as is; otherwise it is looked up as <manifestDir>/<name> with
// each of Extensions.
func Resolve(nameOrPath, manifestDir string) (string, error) {
	if nameOrPath == "" {
		return "", fmt.Errorf("empty modlist name: %w", errors.ErrManifestNotFound)
	}
	if info, err := os.Stat(nameOrPath); err == nil && !info.IsDir() {
		return nameOrPath, nil
	}
	if manifestDir != "" && !strings.ContainsAny(nameOrPath, `/\`) {
		for _, ext := range Extensions {
			candidate := filepath.Join(manifestDir, nameOrPath+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%s: %w", nameOrPath, errors.ErrManifestNotFound)
}
