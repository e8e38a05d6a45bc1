package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/glorpus-work/modlist/internal/logger"
	"github.com/glorpus-work/modlist/pkg/digest"
	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/fsutil"
	"github.com/glorpus-work/modlist/pkg/model"
	"github.com/spf13/cobra"
)

// verifyStatus is the offline check result of one file.
type verifyStatus string

const (
	statusVerified   verifyStatus = "verified"
	statusMismatched verifyStatus = "mismatched"
	statusMissing    verifyStatus = "missing"
	statusUnresolved verifyStatus = "unresolved" // local name is only known after asking the provider
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "verify MODLIST",
		Short: "Check downloaded files against their hashes",
		Long: `Hash the files of a modlist that are already in the download directory and
compare them with the recorded hashes. Nothing is downloaded. Nexus entries
without a file_name filter are reported as unresolved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runVerify(args[0], dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Download directory (defaults to config)")

	return cmd
}

// localName returns the on-disk name of desc when it is known without a provider lookup.
func localName(desc model.Descriptor) string {
	switch src := desc.Source.(type) {
	case model.DirectSource:
		return desc.FileName
	case model.NexusSource:
		return src.FileName
	default:
		return ""
	}
}

func checkFile(desc model.Descriptor, dir string) (verifyStatus, error) {
	name := localName(desc)
	if name == "" {
		return statusUnresolved, nil
	}
	path := filepath.Join(dir, name)
	exists, err := fsutil.Exists(path)
	if err != nil {
		return "", err
	}
	if !exists {
		return statusMissing, nil
	}
	actual, err := digest.File(path)
	if err != nil {
		return "", err
	}
	if model.Verify(desc.Hash, actual).Outcome == model.OutcomeVerified {
		return statusVerified, nil
	}
	logger.Debug("Hash mismatch", logger.Fields{"path": path, "expected": desc.Hash, "actual": actual})
	return statusMismatched, nil
}

func runVerify(name, dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := loadManifest(name, cfg)
	if err != nil {
		return err
	}
	absDir, err := downloadDir(dir, cfg)
	if err != nil {
		return err
	}

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "FILE\tSTATUS")
	_, _ = fmt.Fprintln(tabWriter, "----\t------")

	failed := 0
	for _, desc := range m.Descriptors {
		status, err := checkFile(desc, absDir)
		if err != nil {
			_ = tabWriter.Flush()
			return errors.Wrapf(err, "failed to check %s", desc.FileName)
		}
		if status == statusMismatched || status == statusMissing {
			failed++
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\n", desc.FileName, status)
	}
	_ = tabWriter.Flush()

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification: %w", failed, len(m.Descriptors), errors.ErrHashMismatch)
	}
	logger.Success("Modlist verified", logger.Fields{"modlist": m.Name, "files": len(m.Descriptors)})
	return nil
}
