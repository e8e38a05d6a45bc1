// Package source turns download descriptors into concrete, retrievable
// targets. Direct sources resolve to themselves; Nexus sources are negotiated
// through the provider API.
package source

import (
	"context"
	"fmt"

	"github.com/glorpus-work/modlist/internal/logger"
	"github.com/glorpus-work/modlist/pkg/auth"
	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/fsutil"
	"github.com/glorpus-work/modlist/pkg/model"
	"github.com/glorpus-work/modlist/pkg/nexus"
	"github.com/hashicorp/go-version"
)

// Error is a failed resolution. Its Kind matches one of the resolve
// sentinels in pkg/errors.
type Error = nexus.Error

// Provider is the subset of the provider API the resolver needs.
type Provider interface {
	ListFiles(ctx context.Context, game, modID string, cred auth.Authenticator) ([]nexus.File, error)
	DownloadLinks(ctx context.Context, game, modID string, fileID int64, cred auth.Authenticator) ([]nexus.DownloadLink, error)
}

// Resolver resolves descriptors to targets.
type Resolver struct {
	provider Provider
}

// NewResolver creates a resolver. provider may be nil when only direct
// sources are resolved.
func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve returns the target for desc. Direct sources never touch the
// network. Nexus sources require cred and issue at most two requests.
func (r *Resolver) Resolve(ctx context.Context, desc model.Descriptor, cred auth.Authenticator) (model.ResolvedTarget, error) {
	switch src := desc.Source.(type) {
	case model.DirectSource:
		return model.ResolvedTarget{URL: src.URL, LocalFileName: desc.FileName}, nil
	case model.NexusSource:
		return r.resolveNexus(ctx, src, cred)
	default:
		return model.ResolvedTarget{}, fmt.Errorf("%s: unsupported source %T: %w", desc.FileName, desc.Source, errors.ErrInvalidDescriptor)
	}
}

func (r *Resolver) resolveNexus(ctx context.Context, src model.NexusSource, cred auth.Authenticator) (model.ResolvedTarget, error) {
	if err := auth.Require(cred); err != nil {
		return model.ResolvedTarget{}, err
	}
	if r.provider == nil {
		return model.ResolvedTarget{}, fmt.Errorf("no provider configured for %s/%s: %w", src.Game, src.ModID, errors.ErrInvalidDescriptor)
	}

	logger.Debug("Listing provider files", logger.Fields{"game": src.Game, "mod_id": src.ModID, "version": src.Version})
	files, err := r.provider.ListFiles(ctx, src.Game, src.ModID, cred)
	if err != nil {
		return model.ResolvedTarget{}, err
	}

	file, err := SelectFile(files, src.Version, src.FileName)
	if err != nil {
		return model.ResolvedTarget{}, err
	}
	if !fsutil.IsBaseName(file.FileName) {
		return model.ResolvedTarget{}, &Error{
			Kind:    errors.ErrMalformedResponse,
			Op:      "select file",
			Message: fmt.Sprintf("provider file name %q is not a plain file name", file.FileName),
		}
	}

	links, err := r.provider.DownloadLinks(ctx, src.Game, src.ModID, file.FileID, cred)
	if err != nil {
		return model.ResolvedTarget{}, err
	}
	if len(links) == 0 || links[0].URI == "" {
		return model.ResolvedTarget{}, &Error{Kind: errors.ErrMalformedResponse, Op: "download link", Message: "no download link returned"}
	}

	header, err := auth.Headers(cred)
	if err != nil {
		return model.ResolvedTarget{}, err
	}

	logger.Debug("Resolved provider file", logger.Fields{"file_id": file.FileID, "file_name": file.FileName, "mirror": links[0].ShortName})
	return model.ResolvedTarget{URL: links[0].URI, LocalFileName: file.FileName, Header: header}, nil
}

// SelectFile picks the listing entry for wantVersion, optionally filtered by
// an exact file name. When several entries match, the last one wins.
// model.LatestVersion selects the highest parseable version.
func SelectFile(files []nexus.File, wantVersion, fileName string) (nexus.File, error) {
	if wantVersion == model.LatestVersion {
		return selectLatest(files, fileName)
	}

	var (
		selected nexus.File
		matches  int
	)
	for _, f := range files {
		if f.Version != wantVersion {
			continue
		}
		if fileName != "" && f.FileName != fileName {
			continue
		}
		selected = f
		matches++
	}

	if matches == 0 {
		return nexus.File{}, notFound(wantVersion)
	}
	if matches > 1 {
		logger.Warn("Several provider files match the requested version, using the last one", logger.Fields{
			"version": wantVersion, "matches": matches, "file_name": selected.FileName,
		})
	}
	return selected, nil
}

func selectLatest(files []nexus.File, fileName string) (nexus.File, error) {
	var (
		selected nexus.File
		best     *version.Version
	)
	for _, f := range files {
		if fileName != "" && f.FileName != fileName {
			continue
		}
		v, err := version.NewVersion(f.Version)
		if err != nil {
			logger.Debug("Skipping unparseable provider version", logger.Fields{"version": f.Version, "file_name": f.FileName})
			continue
		}
		if best == nil || !v.LessThan(best) {
			best, selected = v, f
		}
	}
	if best == nil {
		return nexus.File{}, notFound(model.LatestVersion)
	}
	return selected, nil
}

func notFound(wantVersion string) error {
	return &Error{Kind: errors.ErrNotFound, Op: "select file", Message: fmt.Sprintf("version %q not found for item", wantVersion)}
}
