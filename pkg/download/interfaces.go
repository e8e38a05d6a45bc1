//go:generate mockgen -destination=./mocks/download.go . Resolver,Transferer,Hasher

package download

import (
	"context"
	"net/http"

	"github.com/glorpus-work/modlist/pkg/auth"
	"github.com/glorpus-work/modlist/pkg/model"
)

// Resolver turns a descriptor into a retrievable target.
type Resolver interface {
	Resolve(ctx context.Context, desc model.Descriptor, cred auth.Authenticator) (model.ResolvedTarget, error)
}

// Transferer streams a URL into a file that must not exist yet.
type Transferer interface {
	StreamToFile(ctx context.Context, url string, header http.Header, dest string, onProgress func(model.Progress)) error
}

// Hasher computes the hex digest of a file.
type Hasher interface {
	Digest(path string) (string, error)
}
