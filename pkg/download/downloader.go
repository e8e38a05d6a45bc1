// Package download runs a single descriptor through resolution, transfer and
// hash verification.
package download

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/modlist/internal/logger"
	"github.com/glorpus-work/modlist/pkg/auth"
	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/fsutil"
	"github.com/glorpus-work/modlist/pkg/model"
)

// Downloader ties a Resolver, a Transferer and a Hasher together.
type Downloader struct {
	Resolver Resolver
	Transfer Transferer
	Hasher   Hasher
	Hooks    Hooks
}

// New creates a Downloader from its collaborators.
func New(resolver Resolver, transfer Transferer, hasher Hasher) *Downloader {
	return &Downloader{Resolver: resolver, Transfer: transfer, Hasher: hasher}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Execute downloads desc into dir and verifies it. A returned error is a
// *Error naming the failed stage. Partially written and mismatched files are
// left on disk. Nothing is retried.
func (d *Downloader) Execute(ctx context.Context, desc model.Descriptor, cred auth.Authenticator, dir string, opts Options) (Result, error) {
	if d.Resolver == nil || d.Transfer == nil || d.Hasher == nil {
		return Result{}, fmt.Errorf("downloader is not fully configured")
	}
	emit(d.Hooks, Event{State: StateStart, FileName: desc.FileName})

	if err := desc.Validate(); err != nil {
		return Result{}, d.fail(desc, StageResolve, err)
	}

	emit(d.Hooks, Event{State: StateResolving, FileName: desc.FileName, Msg: string(desc.Kind())})
	target, err := d.Resolver.Resolve(ctx, desc, cred)
	if err != nil {
		return Result{}, d.fail(desc, StageResolve, err)
	}
	if !fsutil.IsBaseName(target.LocalFileName) {
		err := fmt.Errorf("resolved file name %q: %w", target.LocalFileName, errors.ErrInvalidPath)
		return Result{}, d.fail(desc, StageResolve, err)
	}

	path := filepath.Join(dir, target.LocalFileName)
	result := Result{FileName: desc.FileName, Path: path, Kind: desc.Kind()}

	reused, err := d.handleExisting(desc, path, opts.Existing)
	if err != nil {
		return Result{}, err
	}
	if reused != nil {
		result.Verification = *reused
		result.Reused = true
		emit(d.Hooks, Event{State: StateVerified, FileName: desc.FileName, Msg: "existing file verified"})
		return result, nil
	}

	emit(d.Hooks, Event{State: StateTransferring, FileName: desc.FileName, Msg: target.URL})
	onProgress := func(p model.Progress) {
		if d.Hooks.OnProgress != nil {
			d.Hooks.OnProgress(desc.FileName, p)
		}
	}
	if err := d.Transfer.StreamToFile(ctx, target.URL, target.Header, path, onProgress); err != nil {
		return Result{}, d.fail(desc, StageTransfer, err)
	}

	v, err := d.verify(desc, path)
	if err != nil {
		return Result{}, err
	}
	result.Verification = v
	emit(d.Hooks, Event{State: StateVerified, FileName: desc.FileName})
	return result, nil
}

// handleExisting applies policy to a file already at path. It returns a
// verification when the existing file can be kept as is.
func (d *Downloader) handleExisting(desc model.Descriptor, path string, policy ExistingPolicy) (*model.Verification, error) {
	if policy == ExistingFail {
		return nil, nil
	}
	exists, err := fsutil.Exists(path)
	if err != nil {
		return nil, d.fail(desc, StageTransfer, fmt.Errorf("%w: %w", errors.ErrIO, err))
	}
	if !exists {
		return nil, nil
	}

	if policy == ExistingRepair {
		emit(d.Hooks, Event{State: StateVerifying, FileName: desc.FileName, Msg: "existing file"})
		actual, err := d.Hasher.Digest(path)
		if err != nil {
			return nil, d.fail(desc, StageVerify, err)
		}
		if v := model.Verify(desc.Hash, actual); v.Outcome == model.OutcomeVerified {
			return &v, nil
		}
		logger.Info("Existing file does not match its hash, downloading again", logger.Fields{"file": desc.FileName, "path": path})
	}

	if err := fsutil.RemoveIfExists(path); err != nil {
		return nil, d.fail(desc, StageTransfer, fmt.Errorf("%w: %w", errors.ErrIO, err))
	}
	logger.Debug("Removed existing file", logger.Fields{"path": path, "policy": policy.String()})
	return nil, nil
}

func (d *Downloader) verify(desc model.Descriptor, path string) (model.Verification, error) {
	emit(d.Hooks, Event{State: StateVerifying, FileName: desc.FileName})
	actual, err := d.Hasher.Digest(path)
	if err != nil {
		return model.Verification{}, d.fail(desc, StageVerify, err)
	}
	v := model.Verify(desc.Hash, actual)
	if v.Outcome != model.OutcomeVerified {
		return v, d.fail(desc, StageVerify, &HashMismatchError{Path: path, Expected: desc.Hash, Actual: actual})
	}
	return v, nil
}

func (d *Downloader) fail(desc model.Descriptor, stage Stage, err error) error {
	wrapped := &Error{Stage: stage, FileName: desc.FileName, Err: err}
	logger.Debug("Download failed", logger.Fields{"file": desc.FileName, "stage": string(stage), "error": err.Error()})
	emit(d.Hooks, Event{State: StateFailed, FileName: desc.FileName, Msg: string(stage), Err: wrapped})
	return wrapped
}
