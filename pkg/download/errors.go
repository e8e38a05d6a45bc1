package download

import (
	"fmt"

	"github.com/glorpus-work/modlist/pkg/errors"
)

// Stage names the step a download failed in.
type Stage string

const (
	StageResolve  Stage = "resolve"
	StageTransfer Stage = "transfer"
	StageVerify   Stage = "verify"
)

// Error is a failed download. Err is the resolve, transfer or hash error.
type Error struct {
	Stage    Stage
	FileName string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.FileName, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HashMismatchError reports a file whose digest differs from the recorded
// hash. The file is left on disk. It matches errors.ErrHashMismatch.
type HashMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("%s: %v: expected %s, got %s", e.Path, errors.ErrHashMismatch, e.Expected, e.Actual)
}

func (e *HashMismatchError) Unwrap() error { return errors.ErrHashMismatch }
