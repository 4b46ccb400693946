// Package ledger is the portal core: the application, fee, document and
// receipt operations plus the account store. Every operation takes an
// already-resolved caller identity, consults the authorization gate before
// mutating anything and returns either a typed result or a taxonomy error
// from pkg/apperrors. The package has no HTTP awareness; handlers in the
// root package are thin translations over it.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"portal/pkg/apperrors"
	"portal/pkg/authz"
	"portal/pkg/blob"
)

// defaultBlobTimeout bounds a single call to the blob collaborator so an
// upload can never hang a request handler indefinitely.
const defaultBlobTimeout = 10 * time.Second

// Ledger carries the shared collaborators. All cross-request coordination
// happens through the database; Ledger itself holds no mutable state.
type Ledger struct {
	db          *gorm.DB
	blobs       blob.Store
	blobTimeout time.Duration
}

func New(db *gorm.DB, blobs blob.Store) *Ledger {
	return &Ledger{db: db, blobs: blobs, blobTimeout: defaultBlobTimeout}
}

// File is an uploaded byte payload plus the metadata persisted with it.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// gateErr converts a gate denial into the matching taxonomy error.
func gateErr(d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	if d.Reason == authz.ReasonUnauthenticated {
		return apperrors.ErrUnauthenticated
	}
	return apperrors.Forbidden(d.Reason)
}

// notFoundOr translates gorm's record-not-found into the taxonomy, leaving
// other persistence failures wrapped as-is.
func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return err
}

// isUniqueViolation sniffs driver-level unique-constraint failures so a
// lost check-then-insert race still surfaces as Conflict.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

// putBlob stores bytes with a bounded timeout, mapping failure onto
// CollaboratorUnavailable. It never fabricates a URL.
func (l *Ledger) putBlob(ctx context.Context, path string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.blobTimeout)
	defer cancel()
	url, err := l.blobs.Put(ctx, path, bytes.NewReader(data))
	if err != nil {
		return "", apperrors.Collaborator("blob put "+path, err)
	}
	return url, nil
}

func (l *Ledger) getBlob(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.blobTimeout)
	defer cancel()
	data, err := l.blobs.Get(ctx, url)
	if err != nil {
		return nil, apperrors.Collaborator("blob get "+url, err)
	}
	return data, nil
}
