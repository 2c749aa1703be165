// Package record persists file metadata. A FileRecord is written only
// after the blob it describes is durably stored, and is immutable apart
// from its soft-delete timestamp.
package record

import (
	"context"
	"errors"
	"time"

	"github.com/namkata/imagestore/internal/storage"
)

// ErrNotFound is returned when a file record does not exist or has been
// soft-deleted.
var ErrNotFound = errors.New("file record not found")

// FileRecord is the persisted metadata for one stored blob.
type FileRecord struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	ContentType string           `json:"contentType"`
	SizeBytes   int64            `json:"sizeBytes"`
	Backend     storage.Kind     `json:"backend"`
	Locator     storage.Locator  `json:"locator"`
	CreatedAt   time.Time        `json:"createdAt"`
	DeletedAt   *time.Time       `json:"deletedAt,omitempty"`
}

// Store is the persistence contract the gateway depends on. The relational
// implementation lives in this package; tests substitute an in-memory one.
type Store interface {
	// CreateFileRecord inserts the record and returns its generated id.
	CreateFileRecord(ctx context.Context, rec *FileRecord) (string, error)
	// GetFileRecord returns a record by id. Soft-deleted records come back
	// with DeletedAt set; it is the caller's call whether that is a hit.
	GetFileRecord(ctx context.Context, id string) (*FileRecord, error)
	// SoftDeleteFileRecord marks the record deleted without touching the
	// stored bytes. Deleting an already-deleted record is not an error.
	SoftDeleteFileRecord(ctx context.Context, id string) error
	// PurgeFileRecord removes the row entirely; callers delete the blob
	// first.
	PurgeFileRecord(ctx context.Context, id string) error
}
