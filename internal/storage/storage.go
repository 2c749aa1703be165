// Package storage provides the multi-backend blob storage gateway: a
// capability interface with SeaweedFS, S3-compatible, and local-disk
// implementations, selected once at process start.
package storage

import "context"

// Kind identifies which backend implementation produced a Locator.
type Kind string

const (
	KindSeaweedFS Kind = "seaweedfs"
	KindS3        Kind = "s3"
	KindLocal     Kind = "local"
)

// Locator is the backend-specific address of a stored blob. Exactly the
// fields for its Kind are set; the struct is serialized as-is into the
// file record row.
type Locator struct {
	Kind Kind `json:"kind"`

	// SeaweedFS: file id ("3,01637037d6") and the volume node that held it
	// at write time. Reads re-resolve the volume via the master.
	FileID    string `json:"file_id,omitempty"`
	VolumeURL string `json:"volume_url,omitempty"`

	// S3-compatible object store.
	Bucket   string `json:"bucket,omitempty"`
	Key      string `json:"key,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`

	// Local disk, relative to the configured upload directory.
	Path string `json:"path,omitempty"`
}

// Backend is the capability interface every storage implementation
// satisfies. Implementations are safe for concurrent use; their HTTP
// connection pools are process-wide.
type Backend interface {
	// Put stores the blob and returns its locator. The call is atomic from
	// the caller's view: on success the blob is fully retrievable, on
	// failure nothing observable was stored (a failed two-phase write may
	// leave an orphaned id, reported via the returned *Error).
	Put(ctx context.Context, data []byte, contentType, suggestedName string) (Locator, error)

	// Get returns the blob bytes for a locator. Returns a not-found error
	// when the locator no longer resolves.
	Get(ctx context.Context, loc Locator) ([]byte, error)

	// Delete removes the blob. Idempotent: deleting an absent locator is
	// not an error.
	Delete(ctx context.Context, loc Locator) error

	// Kind reports the locator tag this backend produces.
	Kind() Kind
}
