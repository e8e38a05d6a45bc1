// Package orchestrator downloads a whole modlist, one descriptor at a time.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/modlist/pkg/auth"
	"github.com/glorpus-work/modlist/pkg/download"
	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/fsutil"
	"github.com/glorpus-work/modlist/pkg/model"
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Validate checks every descriptor and the credential before anything is
// downloaded.
func Validate(descs []model.Descriptor, cred auth.Authenticator) error {
	needsCred := false
	for i, d := range descs {
		if err := d.Validate(); err != nil {
			return errors.Wrapf(err, "download %d", i+1)
		}
		needsCred = needsCred || d.NeedsCredential()
	}
	if needsCred {
		if err := auth.Require(cred); err != nil {
			return err
		}
	}
	return nil
}

// RunAll downloads descs in declaration order and stops at the first
// failure. It returns the results of every completed download together with
// the error that stopped the run.
func (o *Orchestrator) RunAll(ctx context.Context, descs []model.Descriptor, cred auth.Authenticator, opts Options) ([]download.Result, error) {
	if o.DL == nil {
		return nil, fmt.Errorf("download executor is not configured")
	}
	if opts.Dir == "" || !filepath.IsAbs(opts.Dir) {
		return nil, fmt.Errorf("download dir must be absolute: %s: %w", opts.Dir, errors.ErrInvalidPath)
	}

	emit(o.Hooks, Event{Phase: "planning", Msg: fmt.Sprintf("%d downloads", len(descs))})
	if err := Validate(descs, cred); err != nil {
		emit(o.Hooks, Event{Phase: "error", Msg: err.Error()})
		return nil, err
	}
	if err := fsutil.EnsureDir(opts.Dir); err != nil {
		return nil, errors.Wrap(err, "could not create download dir")
	}

	results := make([]download.Result, 0, len(descs))
	for _, d := range descs {
		if err := ctx.Err(); err != nil {
			emit(o.Hooks, Event{Phase: "error", ID: d.FileName, Msg: err.Error()})
			return results, err
		}

		emit(o.Hooks, Event{Phase: "downloading", ID: d.FileName})
		res, err := o.DL.Execute(ctx, d, cred, opts.Dir, download.Options{Existing: opts.Existing})
		if err != nil {
			emit(o.Hooks, Event{Phase: "error", ID: d.FileName, Msg: err.Error()})
			return results, err
		}
		results = append(results, res)
	}

	emit(o.Hooks, Event{Phase: "done", Msg: fmt.Sprintf("%d downloads verified", len(results))})
	return results, nil
}
