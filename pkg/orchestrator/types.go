//go:generate mockgen -destination=./mocks/orchestrator.go . Executor

package orchestrator

import (
	"context"

	"github.com/glorpus-work/modlist/pkg/auth"
	"github.com/glorpus-work/modlist/pkg/download"
	"github.com/glorpus-work/modlist/pkg/model"
)

// Executor downloads and verifies one descriptor.
type Executor interface {
	Execute(ctx context.Context, desc model.Descriptor, cred auth.Authenticator, dir string, opts download.Options) (download.Result, error)
}

// Orchestrator runs a modlist's descriptors through an Executor.
type Orchestrator struct {
	DL    Executor
	Hooks Hooks // Hooks for progress and event notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // planning|downloading|done|error
	ID    string // descriptor file name
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Options control orchestrator execution.
type Options struct {
	Dir      string // download directory, must be absolute
	Existing download.ExistingPolicy
}
