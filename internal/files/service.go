// Package files serves stored files: metadata lookup, content download,
// soft delete, and explicit purge.
package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/namkata/imagestore/internal/record"
	"github.com/namkata/imagestore/internal/storage"
	"github.com/namkata/imagestore/internal/thumbnail"
)

// Service contains business logic for retrieving and removing stored files.
type Service struct {
	records record.Store
	backend storage.Backend
}

// NewService creates a new files Service.
func NewService(records record.Store, backend storage.Backend) *Service {
	return &Service{records: records, backend: backend}
}

// Get returns the metadata record for a live file. Soft-deleted records
// read as not found.
func (s *Service) Get(ctx context.Context, id string) (*record.FileRecord, error) {
	rec, err := s.records.GetFileRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.DeletedAt != nil {
		return nil, record.ErrNotFound
	}
	return rec, nil
}

// Download returns the stored bytes and content type for a live file.
func (s *Service) Download(ctx context.Context, id string) ([]byte, string, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.backend.Get(ctx, rec.Locator)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s from %s: %w", id, rec.Backend, err)
	}
	return data, rec.ContentType, nil
}

// Thumbnail derives a scaled-down rendition of a live image file from its
// stored bytes. Dimensions are clamped to the supported range.
func (s *Service) Thumbnail(ctx context.Context, id string, width, height int) ([]byte, string, error) {
	data, contentType, err := s.Download(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return thumbnail.Fit(data, contentType, thumbnail.Clamp(width), thumbnail.Clamp(height))
}

// Delete soft-deletes the record. The stored bytes stay on the backend
// until an explicit purge.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.records.SoftDeleteFileRecord(ctx, id)
}

// Purge removes the stored bytes (an idempotent backend delete) and then
// drops the record row. Works on soft-deleted records too; that is the
// normal path.
func (s *Service) Purge(ctx context.Context, id string) error {
	rec, err := s.records.GetFileRecord(ctx, id)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, rec.Locator); err != nil {
		return fmt.Errorf("purge %s: %w", id, err)
	}
	return s.records.PurgeFileRecord(ctx, id)
}

// IsNotFound returns true when the error indicates a missing file, either
// in the record store or on the storage backend.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, record.ErrNotFound) || storage.IsNotFound(err)
}
