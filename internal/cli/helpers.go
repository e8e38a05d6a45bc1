package cli

import (
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/modlist/internal/logger"
	"github.com/glorpus-work/modlist/pkg/config"
	"github.com/glorpus-work/modlist/pkg/digest"
	"github.com/glorpus-work/modlist/pkg/download"
	"github.com/glorpus-work/modlist/pkg/manifest"
	"github.com/glorpus-work/modlist/pkg/nexus"
	"github.com/glorpus-work/modlist/pkg/orchestrator"
	"github.com/glorpus-work/modlist/pkg/source"
	"github.com/glorpus-work/modlist/pkg/transfer"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
)

// loadConfig loads the configuration, applies the global flags and
// initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with CLI flags if provided
	if NoColor != nil && *NoColor {
		cfg.Settings.ColorOutput = false
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.ParseFormat(cfg.Settings.LogFormat))
	return cfg, nil
}

// loadManifest finds and parses the modlist named by nameOrPath.
func loadManifest(nameOrPath string, cfg *config.Config) (*manifest.Manifest, error) {
	path, err := manifest.Resolve(nameOrPath, cfg.Settings.ManifestDir)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded modlist", logger.Fields{"name": m.Name, "path": m.Path, "downloads": len(m.Descriptors)})
	return m, nil
}

// downloadDir returns dir, or the configured download directory when dir is
// empty, as an absolute path.
func downloadDir(dir string, cfg *config.Config) (string, error) {
	if dir == "" {
		dir = cfg.Settings.DownloadDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid download directory %q: %w", dir, err)
	}
	return abs, nil
}

// newOrchestrator wires the provider client, resolver, transfer client and
// hasher together as configured.
func newOrchestrator(cfg *config.Config, hooks download.Hooks) (*orchestrator.Orchestrator, error) {
	client, err := nexus.NewClient(cfg.Nexus.BaseURL, cfg.Settings.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	dl := download.New(
		source.NewResolver(client),
		transfer.NewClient(cfg.Settings.HTTPTimeout, cfg.Settings.ChunkSize),
		digest.SHA256{},
	)
	dl.Hooks = hooks

	return &orchestrator.Orchestrator{
		DL: dl,
		Hooks: orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
			logger.Debug("Install phase", logger.Fields{"phase": e.Phase, "id": e.ID, "msg": e.Msg})
		}},
	}, nil
}
