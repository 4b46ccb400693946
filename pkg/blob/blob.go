// Package blob abstracts the byte-store collaborator: put a stream, get a
// retrievable URL back. The portal only ever consumes this narrow surface,
// so swapping the local store for an object store is a constructor change.
package blob

import (
	"context"
	"io"
)

// Store accepts byte streams and hands back retrievable URLs. Both calls
// must honor ctx deadlines; a failed or timed-out store surfaces as
// CollaboratorUnavailable to the caller, never as a fabricated URL.
type Store interface {
	Put(ctx context.Context, path string, r io.Reader) (url string, err error)
	Get(ctx context.Context, url string) ([]byte, error)
}
