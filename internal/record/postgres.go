package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namkata/imagestore/internal/storage"
)

// PostgresStore implements Store on a pgx connection pool. Each insert is
// its own transaction; the pool provides per-statement isolation, which is
// all the per-file unit of work needs.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore with the given connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateFileRecord inserts a new record and returns the generated id.
func (s *PostgresStore) CreateFileRecord(ctx context.Context, rec *FileRecord) (string, error) {
	locator, err := json.Marshal(rec.Locator)
	if err != nil {
		return "", fmt.Errorf("marshal locator: %w", err)
	}

	var id string
	err = s.db.QueryRow(ctx,
		`INSERT INTO file_records (filename, content_type, size_bytes, backend, locator)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		rec.Filename, rec.ContentType, rec.SizeBytes, string(rec.Backend), locator,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create file record: %w", err)
	}
	return id, nil
}

// GetFileRecord fetches a record by id. Soft-deleted rows are returned
// with DeletedAt set; callers decide whether a tombstone counts as found
// (purge needs the locator, reads do not).
func (s *PostgresStore) GetFileRecord(ctx context.Context, id string) (*FileRecord, error) {
	rec := &FileRecord{}
	var backend string
	var locator []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, filename, content_type, size_bytes, backend, locator, created_at, deleted_at
		 FROM file_records
		 WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Filename, &rec.ContentType, &rec.SizeBytes, &backend, &locator, &rec.CreatedAt, &rec.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file record: %w", err)
	}

	rec.Backend = storage.Kind(backend)
	if err := json.Unmarshal(locator, &rec.Locator); err != nil {
		return nil, fmt.Errorf("unmarshal locator: %w", err)
	}
	return rec, nil
}

// SoftDeleteFileRecord sets deleted_at. Already-deleted and never-existed
// rows are distinguished so the handler can 404 on the latter.
func (s *PostgresStore) SoftDeleteFileRecord(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE file_records SET deleted_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete file record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Idempotent when the record exists but is already deleted.
		var exists bool
		if err := s.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM file_records WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("soft delete file record: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// PurgeFileRecord removes the row for good.
func (s *PostgresStore) PurgeFileRecord(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM file_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("purge file record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
