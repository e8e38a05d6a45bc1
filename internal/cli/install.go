package cli

import (
	"context"
	"os"

	"github.com/glorpus-work/modlist/internal/logger"
	"github.com/glorpus-work/modlist/pkg/download"
	"github.com/glorpus-work/modlist/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var (
		dir     string
		repair  bool
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "install MODLIST",
		Short: "Download and verify a modlist",
		Long: `Download every file of a modlist into the download directory and verify
each one against its recorded SHA-256 hash. MODLIST is a manifest path or the
name of a manifest in the manifest directory.

Files that already exist are an error unless --repair or --replace is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := download.ExistingFail
			switch {
			case repair:
				policy = download.ExistingRepair
			case replace:
				policy = download.ExistingReplace
			}
			return runInstall(cmd.Context(), args[0], dir, policy)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Download directory (defaults to config)")
	cmd.Flags().BoolVar(&repair, "repair", false, "Keep existing files whose hash matches, download the rest again")
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete existing files and download them again")
	cmd.MarkFlagsMutuallyExclusive("repair", "replace")

	return cmd
}

// NewRepairCmd creates the repair command.
func NewRepairCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "repair MODLIST",
		Short: "Re-download missing or corrupt files of a modlist",
		Long: `Check every file of a modlist that is already downloaded. Files whose hash
matches are kept; missing and mismatched files are downloaded again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), args[0], dir, download.ExistingRepair)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Download directory (defaults to config)")

	return cmd
}

func runInstall(ctx context.Context, name, dir string, policy download.ExistingPolicy) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := loadManifest(name, cfg)
	if err != nil {
		return err
	}
	absDir, err := downloadDir(dir, cfg)
	if err != nil {
		return err
	}

	renderer := newProgressRenderer(os.Stdout, cfg.Settings.ColorOutput)
	orch, err := newOrchestrator(cfg, renderer.Hooks())
	if err != nil {
		return err
	}

	logger.Debug("Installing modlist", logger.Fields{"modlist": m.Name, "dir": absDir, "existing": policy.String()})
	results, err := orch.RunAll(ctx, m.Descriptors, cfg.Credential(), orchestrator.Options{Dir: absDir, Existing: policy})
	if err != nil {
		return err
	}

	reused := 0
	for _, r := range results {
		if r.Reused {
			reused++
		}
	}
	logger.Success("Modlist installed", logger.Fields{"modlist": m.Name, "files": len(results), "reused": reused, "dir": absDir})
	return nil
}
